package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cltv-predict/pkg/models"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	"go.uber.org/zap"
)

// ErrUnsupportedFile est renvoyée pour une extension que DuckDB ne sait pas lire ici.
var ErrUnsupportedFile = errors.New("unsupported file type")

// OpenDuckDB ouvre une base DuckDB en mémoire, utilisée uniquement comme lecteur csv/parquet.
func OpenDuckDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	return db, nil
}

// tableFunction renvoie l'appel read_csv_auto/read_parquet pour un fichier.
func tableFunction(path string) (string, error) {
	lit := "'" + strings.ReplaceAll(path, "'", "''") + "'"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return fmt.Sprintf("read_csv_auto(%s, header=true)", lit), nil
	case ".parquet":
		return fmt.Sprintf("read_parquet(%s)", lit), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// LoadFile lit un fichier csv ou parquet via DuckDB et renvoie les lignes brutes.
func LoadFile(ctx context.Context, db *sql.DB, path string, logger *zap.Logger) ([]models.RawTransaction, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	from, err := tableFunction(path)
	if err != nil {
		return nil, err
	}

	header, err := describeColumns(ctx, db, from)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}
	idx, err := ResolveColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	col := func(c string) string { return quoteIdent(header[idx[c]]) }

	// Les identifiants clients sont souvent lus en DOUBLE ("17850.0"), scanTransactions les normalise.
	q := fmt.Sprintf(`
		SELECT
			CAST(%s AS VARCHAR),
			CAST(%s AS VARCHAR),
			CAST(%s AS VARCHAR),
			TRY_CAST(%s AS DOUBLE),
			TRY_CAST(%s AS TIMESTAMP),
			TRY_CAST(%s AS DOUBLE),
			CAST(%s AS VARCHAR),
			CAST(%s AS VARCHAR)
		FROM %s
	`,
		col(ColInvoice), col(ColStockCode), col(ColDescription), col(ColQuantity),
		col(ColInvoiceDate), col(ColPrice), col(ColCustomerID), col(ColCountry),
		from,
	)

	start := time.Now()
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	logger.Debug("transactions loaded from duckdb",
		zap.String("path", path),
		zap.Int("rows", len(txns)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return txns, nil
}

func describeColumns(ctx context.Context, db *sql.DB, from string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var names []string
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		// column_name est la première colonne de DESCRIBE
		names = append(names, fmt.Sprint(values[0]))
	}
	return names, rows.Err()
}
