package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"arbt/internal/evidence/registry/providers"
)

func runCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <dataset> <organization-number>",
		Short: "Harvest one dataset and print its evidence values as JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			values, err := svc.Harvest(cmd.Context(), args[0], args[1])
			if err != nil {
				if kind := providers.KindOf(err); kind != providers.ErrorInternal {
					return fmt.Errorf("%s (retryable: %t): %w", kind, providers.IsRetryable(err), err)
				}
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(values)
		},
	}
}
