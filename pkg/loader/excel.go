package loader

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cltv-predict/pkg/database"
	"cltv-predict/pkg/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// formats textuels acceptés quand la date n'est pas un numéro de série Excel
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04",
	"01/02/2006 15:04",
	"2006-01-02",
}

// LoadExcel lit une feuille xlsx (en-tête sur la première ligne) en lignes brutes.
func LoadExcel(path, sheet string, logger *zap.Logger) ([]models.RawTransaction, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: sheet %q not found in %s", ErrUnsupportedSource, sheet, path)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	start := time.Now()
	var (
		idx  map[string]int
		out  []models.RawTransaction
		line int
	)
	for rows.Next() {
		line++
		cells, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if idx == nil {
			if idx, err = database.ResolveColumns(cells); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			continue
		}
		cell := func(c string) string {
			i := idx[c]
			if i >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[i])
		}
		if isBlank(cells) {
			continue
		}
		out = append(out, models.RawTransaction{
			Invoice:     cell(database.ColInvoice),
			StockCode:   nullString(cell(database.ColStockCode)),
			Description: nullString(cell(database.ColDescription)),
			Quantity:    nullFloat(cell(database.ColQuantity)),
			InvoiceDate: nullTime(cell(database.ColInvoiceDate), date1904),
			Price:       nullFloat(cell(database.ColPrice)),
			CustomerID:  nullString(database.NormalizeCustomerID(cell(database.ColCustomerID))),
			Country:     nullString(cell(database.ColCountry)),
		})
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("iterate sheet %q: %w", sheet, err)
	}
	if idx == nil {
		return nil, fmt.Errorf("%s: %w: empty sheet %q", path, database.ErrMissingColumn, sheet)
	}

	logger.Debug("transactions loaded from workbook",
		zap.String("path", path),
		zap.String("sheet", sheet),
		zap.Int("rows", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(s string) sql.NullFloat64 {
	if s == "" {
		return sql.NullFloat64{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// nullTime accepte un numéro de série Excel ou un des formats textuels connus.
func nullTime(s string, date1904 bool) sql.NullTime {
	if s == "" {
		return sql.NullTime{}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return sql.NullTime{}
		}
		return sql.NullTime{Time: t.Round(time.Second).UTC(), Valid: true}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return sql.NullTime{Time: t, Valid: true}
		}
	}
	return sql.NullTime{}
}
