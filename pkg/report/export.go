package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cltv-predict/pkg/models"
)

// ErrUnsupportedFormat est renvoyée pour une extension d'export inconnue.
var ErrUnsupportedFormat = errors.New("unsupported export format")

type resultRow struct {
	CustomerID            string   `json:"customer_id"`
	RecencyDays           int      `json:"recency_days"`
	TenureDays            int      `json:"tenure_days"`
	Frequency             int      `json:"frequency"`
	MonetaryAvg           float64  `json:"monetary_avg"`
	RecencyWeekly         float64  `json:"recency_weekly"`
	TenureWeekly          float64  `json:"tenure_weekly"`
	ExpSales              float64  `json:"exp_sales"`
	ProbAlive             float64  `json:"prob_alive"`
	ExpectedAverageProfit float64  `json:"expected_average_profit"`
	CLV                   *float64 `json:"clv"`
}

type exportDoc struct {
	RunID        string                  `json:"run_id"`
	AnalysisDate time.Time               `json:"analysis_date"`
	BetaGeo      models.BetaGeoParams    `json:"beta_geo"`
	GammaGamma   models.GammaGammaParams `json:"gamma_gamma"`
	Results      []resultRow             `json:"results"`
}

// TimestampedFilename construit <baseDir>/<name>_<horodatage>.<ext>.
func TimestampedFilename(baseDir, name, ext string) string {
	t := time.Now().Format("20060102_150405")
	return filepath.Join(baseDir, fmt.Sprintf("%s_%s.%s", name, t, ext))
}

// Export écrit le rapport dans path (.json ou .csv). Si path est un dossier existant,
// un fichier json horodaté y est créé. Renvoie le chemin effectivement écrit.
func Export(path string, rep *models.Report) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = TimestampedFilename(path, "cltv", "json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return path, ExportJSON(path, rep)
	case ".csv":
		return path, ExportCSV(path, rep.Results)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ExportJSON écrit les paramètres et la table finale en JSON indenté.
func ExportJSON(filename string, rep *models.Report) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	doc := exportDoc{
		RunID:        rep.RunID,
		AnalysisDate: rep.AnalysisDate,
		BetaGeo:      rep.BetaGeo,
		GammaGamma:   rep.GammaGamma,
		Results:      make([]resultRow, 0, len(rep.Results)),
	}
	for _, r := range rep.Results {
		row := resultRow{
			CustomerID:            r.CustomerID,
			RecencyDays:           r.RecencyDays,
			TenureDays:            r.TenureDays,
			Frequency:             r.Frequency,
			MonetaryAvg:           r.MonetaryAvg,
			RecencyWeekly:         r.RecencyWeekly,
			TenureWeekly:          r.TenureWeekly,
			ExpSales:              r.ExpSales,
			ProbAlive:             r.ProbAlive,
			ExpectedAverageProfit: r.ExpectedAverageProfit,
		}
		if r.CLV.Valid {
			v := r.CLV.Float64
			row.CLV = &v
		}
		doc.Results = append(doc.Results, row)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// ExportCSV écrit la table finale avec un en-tête ResultColumns. Une CLV nulle donne une cellule vide.
func ExportCSV(filename string, rows []models.CLTVResult) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(ResultColumns); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	for _, r := range rows {
		values := Values(r)
		record := make([]string, len(values))
		for i, v := range values {
			switch x := v.(type) {
			case string:
				record[i] = x
			case int:
				record[i] = strconv.Itoa(x)
			case float64:
				record[i] = strconv.FormatFloat(x, 'f', -1, 64)
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
