// Package cli implements the harvest command: one-shot dataset harvests and
// dataset listing against the configured registries.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"arbt/internal/evidence/registry"
	"arbt/internal/platform/config"
	"arbt/internal/platform/logger"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "harvest",
		Short:        "Harvest Arbeidstilsynet registry evidence for an organization",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv("ARBT_CONFIG"), "config file (default: $XDG_CONFIG_HOME/arbt/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log upstream calls to stderr")

	cmd.AddCommand(runCmd(opts))
	cmd.AddCommand(datasetsCmd(opts))
	return cmd
}

// service loads config and wires the pipeline. Logs go to stderr so
// stdout carries only results.
func (o *rootOptions) service(stderr io.Writer) (*registry.Service, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	level := "error"
	if o.debug {
		level = "debug"
	}
	log := logger.New(stderr, logger.Config{Level: level, Format: "text"})
	return registry.NewService(cfg, log, nil)
}
