package main

import "arbt/internal/cli"

func main() {
	cli.Execute()
}
