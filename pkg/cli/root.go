// Package cli expose le pipeline CLTV en ligne de commande (cobra).
package cli

import (
	"context"
	"fmt"
	"os"

	"cltv-predict/pkg/config"
	"cltv-predict/pkg/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version est fixée au build (-ldflags "-X cltv-predict/pkg/cli.Version=...").
var Version = "0.1.0"

// app porte l'état partagé entre les commandes d'une exécution.
type app struct {
	cfgFile string
	cfg     models.Config
	logger  *zap.Logger
}

// NewRootCmd construit la commande racine. Sans sous-commande, elle lance le pipeline complet.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "cltv",
		Short: "Customer lifetime value prediction (BG/NBD + Gamma-Gamma)",
		Long: `cltv lit des lignes de facture (xlsx, csv, parquet ou table MySQL), les nettoie,
agrège les métriques RFM par client, ajuste les modèles BG/NBD et Gamma-Gamma
puis affiche la CLTV de chaque client.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE:          a.runPipeline,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./"+config.DefaultConfigFile+")")
	flags.String("input", "", "input file (.xlsx, .csv, .parquet) or mysql:// DSN")
	flags.String("sheet", "", "xlsx sheet name")
	flags.String("table", "", "SQL table name")
	flags.String("country", "", "keep only this country (empty: all)")
	flags.Int("top", 0, "number of customers in the top-N tables")
	flags.String("export", "", "export results to a .json/.csv file or a directory")
	flags.String("chart", "", "write the repeat transactions chart (.png, .svg, .pdf)")
	flags.BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newRunCommand(a))
	rootCmd.AddCommand(newDescribeCommand(a))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// setup charge la configuration et prépare le logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, used, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = newLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if used != "" {
		a.logger.Info("using config file", zap.String("path", used))
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zc.Build()
}

// Execute lance la commande racine.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
