// Package loader lit les transactions depuis un classeur xlsx, un fichier csv/parquet (DuckDB)
// ou une table MySQL/MariaDB.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cltv-predict/pkg/database"
	"cltv-predict/pkg/models"

	"go.uber.org/zap"
)

// ErrUnsupportedSource est renvoyée quand la source n'est ni un fichier connu ni un DSN.
var ErrUnsupportedSource = errors.New("unsupported input source")

// Load lit toutes les lignes de facture de la source configurée.
func Load(ctx context.Context, in models.InputConfig, logger *zap.Logger) ([]models.RawTransaction, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if in.Path == "" {
		return nil, fmt.Errorf("%w: empty input path", ErrUnsupportedSource)
	}

	if database.IsDSN(in.Path) {
		db, _, err := database.Open(in.Path)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		logger.Info("loading transactions", zap.String("source", "mysql"), zap.String("table", in.Table))
		return database.LoadTransactions(ctx, db, in.Table, logger)
	}

	if _, err := os.Stat(in.Path); err != nil {
		return nil, fmt.Errorf("input %s: %w", in.Path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(in.Path)); ext {
	case ".xlsx", ".xlsm":
		logger.Info("loading transactions", zap.String("source", "xlsx"), zap.String("path", in.Path), zap.String("sheet", in.Sheet))
		return LoadExcel(in.Path, in.Sheet, logger)
	case ".csv", ".tsv", ".txt", ".parquet":
		db, err := database.OpenDuckDB(ctx)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		logger.Info("loading transactions", zap.String("source", "duckdb"), zap.String("path", in.Path))
		return database.LoadFile(ctx, db, in.Path, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, ext)
	}
}
