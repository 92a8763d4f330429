// Package report affiche les résultats d'un run dans le terminal et les exporte (json, csv, png).
package report

import (
	"fmt"
	"io"

	"cltv-predict/pkg/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ResultColumns sont les colonnes de la table finale, dans l'ordre d'affichage et d'export.
var ResultColumns = []string{
	"customer_id", "recency_days", "tenure_days", "frequency", "monetary_avg",
	"recency_weekly", "tenure_weekly", "exp_sales", "prob_alive", "expected_average_profit", "clv",
}

// Console écrit les tableaux du rapport sur w.
type Console struct {
	w io.Writer
	p *message.Printer
}

// NewConsole crée un Console; les nombres sont formatés en anglais (séparateur de milliers).
func NewConsole(w io.Writer) *Console {
	return &Console{w: w, p: message.NewPrinter(language.English)}
}

func (c *Console) newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(c.w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.SetTitle(title)
	return t
}

func (c *Console) num(v float64) string {
	return c.p.Sprintf("%.5f", v)
}

// Describe affiche les statistiques descriptives des colonnes brutes.
func (c *Console) Describe(stats []models.Stats) {
	if len(stats) == 0 {
		return
	}
	t := c.newTable("Descriptive statistics")
	header := table.Row{"column", "count", "mean", "std", "min"}
	for _, p := range stats[0].Percentiles {
		header = append(header, fmt.Sprintf("%g%%", p.P*100))
	}
	header = append(header, "max")
	t.AppendHeader(header)
	for _, s := range stats {
		row := table.Row{s.Column, c.p.Sprintf("%d", s.Count), c.num(s.Mean), c.num(s.Std), c.num(s.Min)}
		for _, p := range s.Percentiles {
			row = append(row, c.num(p.Value))
		}
		row = append(row, c.num(s.Max))
		t.AppendRow(row)
	}
	t.Render()
}

// TopPurchases affiche les clients avec le plus d'achats attendus.
func (c *Console) TopPurchases(rows []models.CustomerPrediction, weeks float64) {
	t := c.newTable(fmt.Sprintf("Top %d customers by expected purchases (%g weeks)", len(rows), weeks))
	t.AppendHeader(table.Row{"customer_id", "expected_purchases"})
	for _, r := range rows {
		t.AppendRow(table.Row{r.CustomerID, c.num(r.ExpectedPurchases)})
	}
	t.Render()
}

// ExpectedTransactions affiche le nombre total d'achats attendus.
func (c *Console) ExpectedTransactions(weeks, count float64) {
	_, _ = fmt.Fprintln(c.w, c.p.Sprintf("Number of transaction in %g week is: %.5f", weeks, count))
}

// PeriodTransactions compare les fréquences observées et simulées.
func (c *Console) PeriodTransactions(counts []models.PeriodCount) {
	t := c.newTable("Frequency of repeat transactions")
	t.AppendHeader(table.Row{"frequency", "actual", "model"})
	for _, pc := range counts {
		t.AppendRow(table.Row{pc.Label, c.p.Sprintf("%d", pc.Actual), c.p.Sprintf("%d", pc.Simulated)})
	}
	t.Render()
}

// Params affiche les paramètres ajustés des deux modèles.
func (c *Console) Params(bg models.BetaGeoParams, gg models.GammaGammaParams) {
	t := c.newTable("Fitted parameters")
	t.AppendHeader(table.Row{"model", "parameter", "value"})
	t.AppendRows([]table.Row{
		{"BG/NBD", "r", c.num(bg.R)},
		{"BG/NBD", "alpha", c.num(bg.Alpha)},
		{"BG/NBD", "a", c.num(bg.A)},
		{"BG/NBD", "b", c.num(bg.B)},
		{"Gamma-Gamma", "p", c.num(gg.P)},
		{"Gamma-Gamma", "q", c.num(gg.Q)},
		{"Gamma-Gamma", "v", c.num(gg.V)},
	})
	t.Render()
}

// Results affiche les n premières lignes puis la forme (lignes, colonnes) de la table.
func (c *Console) Results(title string, rows []models.CLTVResult, n int) {
	t := c.newTable(title)
	header := make(table.Row, len(ResultColumns))
	for i, col := range ResultColumns {
		header[i] = col
	}
	t.AppendHeader(header)
	if n > len(rows) || n < 0 {
		n = len(rows)
	}
	for _, r := range rows[:n] {
		values := Values(r)
		row := make(table.Row, len(values))
		for i, v := range values {
			switch x := v.(type) {
			case float64:
				row[i] = c.num(x)
			case nil:
				row[i] = "NULL"
			default:
				row[i] = x
			}
		}
		t.AppendRow(row)
	}
	t.Render()
}

// Shape affiche (lignes, colonnes) de la table finale.
func (c *Console) Shape(rows []models.CLTVResult) {
	_, _ = fmt.Fprintf(c.w, "(%d, %d)\n", len(rows), len(ResultColumns))
}

// Render affiche tout le rapport.
func (c *Console) Render(rep *models.Report, cfg models.Config) {
	_, _ = fmt.Fprintf(c.w, "run %s | analysis date %s | rows %s raw, %s clean\n",
		rep.RunID, rep.AnalysisDate.Format("2006-01-02 15:04:05"),
		c.p.Sprintf("%d", rep.RawRows), c.p.Sprintf("%d", rep.CleanRows))
	c.Describe(rep.Describe)
	c.TopPurchases(rep.TopPurchases, cfg.Model.PredictionWeeks)
	c.ExpectedTransactions(cfg.Model.PredictionWeeks, rep.ExpectedTransactions)
	c.PeriodTransactions(rep.PeriodTransactions)
	c.Params(rep.BetaGeo, rep.GammaGamma)
	_, _ = fmt.Fprintln(c.w, c.p.Sprintf("Frequency/monetary correlation (Pearson): %.5f", rep.FrequencyMonetaryCorr))
	c.Results("Top customers by expected average profit", rep.TopProfit, len(rep.TopProfit))
	c.Results("CLTV", rep.Results, cfg.Report.HeadRows)
	c.Shape(rep.Results)
}

// Values renvoie les valeurs d'une ligne dans l'ordre de ResultColumns (nil pour une CLV nulle).
func Values(r models.CLTVResult) []any {
	var clv any
	if r.CLV.Valid {
		clv = r.CLV.Float64
	}
	return []any{
		r.CustomerID, r.RecencyDays, r.TenureDays, r.Frequency, r.MonetaryAvg,
		r.RecencyWeekly, r.TenureWeekly, r.ExpSales, r.ProbAlive, r.ExpectedAverageProfit, clv,
	}
}
