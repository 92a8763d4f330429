package calculator

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"cltv-predict/pkg/lifetimes"
	"cltv-predict/pkg/models"
	"cltv-predict/pkg/prep"
	"cltv-predict/pkg/rfm"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// au-delà, l'hypothèse d'indépendance du Gamma-Gamma est signalée
const correlationWarning = 0.3

// étapes suivies par la barre de progression
var stages = []string{"clean", "rfm", "bg/nbd", "gamma-gamma", "cltv"}

// Options regroupe ce qui n'est pas de la configuration métier.
type Options struct {
	Logger   *zap.Logger
	Progress io.Writer // nil: pas de barre de progression
}

// Run enchaîne nettoyage → RFM → BG/NBD → Gamma-Gamma → CLTV sur les lignes brutes.
// Chaque étape ne dépend que de ses entrées; toute erreur interrompt le run.
func Run(ctx context.Context, raw []models.RawTransaction, cfg models.Config, opts Options) (*models.Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(stages),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("cltv"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	step := func(name string) error {
		if bar != nil {
			bar.Describe(name)
			_ = bar.Add(1)
		}
		return ctx.Err()
	}

	start := time.Now()
	report := &models.Report{
		RunID:    uuid.NewString(),
		RawRows:  len(raw),
		Describe: prep.DescribeRaw(raw),
	}
	logger = logger.With(zap.String("run_id", report.RunID))

	// 1) Nettoyage
	txns := prep.Clean(raw, cfg.Prep, logger)
	report.CleanRows = len(txns)
	logger.Info("transactions cleaned", zap.Int("raw_rows", len(raw)), zap.Int("clean_rows", len(txns)))
	if err := step("rfm"); err != nil {
		return nil, err
	}

	// 2) RFM
	report.AnalysisDate = rfm.AnalysisDate(txns, cfg.RFM.AnalysisOffsetDays)
	customers := rfm.Aggregate(txns, report.AnalysisDate)
	logger.Info("rfm aggregated",
		zap.Time("analysis_date", report.AnalysisDate),
		zap.Int("customers", len(customers)),
	)
	if err := step("bg/nbd"); err != nil {
		return nil, err
	}

	x, tx, T, m := columns(customers)

	// 3) BG/NBD
	bgf, err := lifetimes.BetaGeoFitter{
		Penalizer:     cfg.Model.BGFPenalizer,
		MaxIterations: cfg.Model.MaxIterations,
	}.Fit(x, tx, T)
	if err != nil {
		return nil, fmt.Errorf("fit bg/nbd: %w", err)
	}
	report.BetaGeo = bgf.Params
	logger.Info("bg/nbd fitted",
		zap.Float64("r", bgf.Params.R),
		zap.Float64("alpha", bgf.Params.Alpha),
		zap.Float64("a", bgf.Params.A),
		zap.Float64("b", bgf.Params.B),
	)

	weeks := cfg.Model.PredictionWeeks
	results := make([]models.CLTVResult, len(customers))
	for i, c := range customers {
		results[i] = models.CLTVResult{
			RFM:       c,
			ExpSales:  bgf.ConditionalExpectedPurchases(weeks, x[i], tx[i], T[i]),
			ProbAlive: bgf.ConditionalProbabilityAlive(x[i], tx[i], T[i]),
		}
		report.ExpectedTransactions += results[i].ExpSales
	}
	report.TopPurchases = topPurchases(results, cfg.Report.TopN)
	logger.Info("expected transactions",
		zap.Float64("weeks", weeks),
		zap.Float64("transactions", report.ExpectedTransactions),
	)

	report.PeriodTransactions, err = bgf.PeriodTransactions(cfg.Report.MaxFrequency, cfg.Report.Seed)
	if err != nil {
		return nil, fmt.Errorf("period transactions: %w", err)
	}
	if err := step("gamma-gamma"); err != nil {
		return nil, err
	}

	// 4) Gamma-Gamma
	report.FrequencyMonetaryCorr = frequencyMonetaryCorrelation(x, m)
	if math.Abs(report.FrequencyMonetaryCorr) > correlationWarning {
		logger.Warn("frequency and monetary value are correlated, gamma-gamma assumes independence",
			zap.Float64("pearson", report.FrequencyMonetaryCorr))
	}
	ggf, err := lifetimes.GammaGammaFitter{
		Penalizer:     cfg.Model.GGFPenalizer,
		MaxIterations: cfg.Model.MaxIterations,
	}.Fit(x, m)
	if err != nil {
		return nil, fmt.Errorf("fit gamma-gamma: %w", err)
	}
	report.GammaGamma = ggf.Params
	logger.Info("gamma-gamma fitted",
		zap.Float64("p", ggf.Params.P),
		zap.Float64("q", ggf.Params.Q),
		zap.Float64("v", ggf.Params.V),
	)
	for i := range results {
		results[i].ExpectedAverageProfit = ggf.ConditionalExpectedAverageProfit(x[i], m[i])
	}
	report.TopProfit = topProfit(results, cfg.Report.TopN)
	if err := step("cltv"); err != nil {
		return nil, err
	}

	// 5) CLTV
	clv, err := Combine(bgf, ggf, customers, lifetimes.CLVOptions{
		Months:       cfg.CLTV.Months,
		Freq:         cfg.CLTV.Freq,
		DiscountRate: cfg.CLTV.DiscountRate,
	})
	if err != nil {
		return nil, fmt.Errorf("cltv: %w", err)
	}
	report.Results = Join(results, clv)
	if err := step("done"); err != nil {
		return nil, err
	}

	logger.Info("cltv computed",
		zap.Int("customers", len(report.Results)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

func frequencyMonetaryCorrelation(x, m []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(x, m, nil)
}

// columns extrait les vecteurs attendus par les modèles (temps en semaines).
func columns(customers []models.RFM) (x, tx, T, m []float64) {
	x = make([]float64, len(customers))
	tx = make([]float64, len(customers))
	T = make([]float64, len(customers))
	m = make([]float64, len(customers))
	for i, c := range customers {
		x[i] = float64(c.Frequency)
		tx[i] = c.RecencyWeekly
		T[i] = c.TenureWeekly
		m[i] = c.MonetaryAvg
	}
	return x, tx, T, m
}

// Combine calcule la CLTV de chaque client, indexée par identifiant client.
func Combine(tm lifetimes.TransactionModel, mm lifetimes.MonetaryModel, customers []models.RFM, opts lifetimes.CLVOptions) (map[string]float64, error) {
	out := make(map[string]float64, len(customers))
	for _, c := range customers {
		v, err := lifetimes.CustomerLifetimeValue(tm, mm,
			float64(c.Frequency), c.RecencyWeekly, c.TenureWeekly, c.MonetaryAvg, opts)
		if err != nil {
			return nil, err
		}
		out[c.CustomerID] = v
	}
	return out, nil
}

// Join rattache la CLTV à chaque ligne (jointure gauche: CLV reste null si absente)
// puis trie par CLV décroissante, les nulls en dernier.
func Join(results []models.CLTVResult, clv map[string]float64) []models.CLTVResult {
	out := make([]models.CLTVResult, len(results))
	copy(out, results)
	for i := range out {
		if v, ok := clv[out[i].CustomerID]; ok {
			out[i].CLV = sql.NullFloat64{Float64: v, Valid: true}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].CLV, out[j].CLV
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Float64 > b.Float64
	})
	return out
}

func topPurchases(results []models.CLTVResult, n int) []models.CustomerPrediction {
	ranked := make([]models.CustomerPrediction, len(results))
	for i, r := range results {
		ranked[i] = models.CustomerPrediction{CustomerID: r.CustomerID, ExpectedPurchases: r.ExpSales}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].ExpectedPurchases > ranked[j].ExpectedPurchases })
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func topProfit(results []models.CLTVResult, n int) []models.CLTVResult {
	ranked := make([]models.CLTVResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].ExpectedAverageProfit > ranked[j].ExpectedAverageProfit })
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
