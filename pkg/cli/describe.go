package cli

import (
	"fmt"

	"cltv-predict/pkg/loader"
	"cltv-predict/pkg/prep"
	"cltv-predict/pkg/report"

	"github.com/spf13/cobra"
)

func newDescribeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe",
		Short: "Show descriptive statistics of the raw transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := loader.Load(cmd.Context(), a.cfg.Input, a.logger)
			if err != nil {
				return fmt.Errorf("load transactions: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d rows read from %s\n", len(raw), a.cfg.Input.Path)
			report.NewConsole(cmd.OutOrStdout()).Describe(prep.DescribeRaw(raw))
			return nil
		},
	}
}
