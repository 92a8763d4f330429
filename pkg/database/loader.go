package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"cltv-predict/pkg/models"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// IsDSN indique si la source est un DSN MySQL/MariaDB plutôt qu'un fichier.
func IsDSN(source string) bool {
	return strings.HasPrefix(source, "mariadb://") ||
		strings.HasPrefix(source, "mysql://") ||
		strings.Contains(source, "@tcp(")
}

// Open DSN mariadb:// ou mysql:// → format MySQL driver
func Open(dsn string) (*sql.DB, string, error) {
	mysqlDSN, err := toMySQLDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		return nil, "", err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, mysqlDSN, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("incomplete dsn (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// LoadTransactions lit toutes les lignes de facture d'une table MySQL.
// Les colonnes attendues sont en snake_case (invoice, stock_code, ..., customer_id, country).
func LoadTransactions(ctx context.Context, db *sql.DB, tableName string, logger *zap.Logger) ([]models.RawTransaction, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !tableNameRe.MatchString(tableName) {
		return nil, fmt.Errorf("invalid table name %q", tableName)
	}

	q := fmt.Sprintf(`
		SELECT invoice, stock_code, description, quantity, invoice_date, price, customer_id, country
		FROM %s
	`, tableName)

	start := time.Now()
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", tableName, err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", tableName, err)
	}
	logger.Debug("transactions loaded from mysql",
		zap.String("table", tableName),
		zap.Int("rows", len(txns)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return txns, nil
}

// scanTransactions lit des lignes dans l'ordre de Columns.
func scanTransactions(rows *sql.Rows) ([]models.RawTransaction, error) {
	var out []models.RawTransaction
	for rows.Next() {
		var (
			invoice sql.NullString
			tx      models.RawTransaction
		)
		if err := rows.Scan(
			&invoice,
			&tx.StockCode,
			&tx.Description,
			&tx.Quantity,
			&tx.InvoiceDate,
			&tx.Price,
			&tx.CustomerID,
			&tx.Country,
		); err != nil {
			return nil, err
		}
		if invoice.Valid {
			tx.Invoice = invoice.String
		}
		tx.CustomerID.String = NormalizeCustomerID(tx.CustomerID.String)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// NormalizeCustomerID transforme "17850.0" en "17850" (identifiants lus comme flottants).
func NormalizeCustomerID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.IndexByte(id, '.'); i > 0 && strings.Trim(id[i+1:], "0") == "" {
		return id[:i]
	}
	return id
}
