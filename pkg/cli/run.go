package cli

import (
	"fmt"

	"cltv-predict/pkg/calculator"
	"cltv-predict/pkg/loader"
	"cltv-predict/pkg/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full CLTV pipeline",
		Long: `Charge les transactions, ajuste BG/NBD et Gamma-Gamma et affiche la CLTV.
Les tableaux vont sur stdout, la barre de progression et les logs sur stderr.`,
		Args: cobra.NoArgs,
		RunE: a.runPipeline,
	}
}

func (a *app) runPipeline(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	raw, err := loader.Load(ctx, a.cfg.Input, a.logger)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	rep, err := calculator.Run(ctx, raw, a.cfg, calculator.Options{
		Logger:   a.logger,
		Progress: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}

	report.NewConsole(cmd.OutOrStdout()).Render(rep, a.cfg)

	if path := a.cfg.Report.ChartPath; path != "" {
		if err := report.SavePeriodChart(path, rep.PeriodTransactions); err != nil {
			return err
		}
		a.logger.Info("chart written", zap.String("path", path))
	}
	if path := a.cfg.Report.ExportPath; path != "" {
		written, err := report.Export(path, rep)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Exported to:", written)
	}
	return nil
}
