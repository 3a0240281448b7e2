package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func datasetsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List datasets and their declared values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.service(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, code := range svc.Providers().Codes() {
				fmt.Fprintf(w, "%s\t(%s)\n", code.Name, code.Source)
				for _, v := range code.Values {
					fmt.Fprintf(w, "  %s\t%s\n", v.Name, v.Type)
				}
			}
			return w.Flush()
		},
	}
}
