package config

// Valeurs par défaut du run.
const (
	DefaultInputPath    = "datasets/online_retail_II.xlsx"
	DefaultSheet        = "Year 2010-2011"
	DefaultTable        = "online_retail"
	DefaultCountry      = "United Kingdom"
	DefaultCancelMarker = "C"
	DefaultConfigFile   = "cltv.yaml"
	EnvPrefix           = "CLTV_"
)

func defaults() map[string]any {
	return map[string]any{
		"input.path":               DefaultInputPath,
		"input.sheet":              DefaultSheet,
		"input.table":              DefaultTable,
		"prep.country":             DefaultCountry,
		"prep.cancel_marker":       DefaultCancelMarker,
		"prep.lower_quantile":      0.01,
		"prep.upper_quantile":      0.99,
		"prep.iqr_multiplier":      1.5,
		"rfm.analysis_offset_days": 2,
		"model.bgf_penalizer":      0.001,
		"model.ggf_penalizer":      0.01,
		"model.prediction_weeks":   24.0,
		"model.max_iterations":     5000,
		"cltv.months":              6,
		"cltv.freq":                "W",
		"cltv.discount_rate":       0.01,
		"report.top_n":             10,
		"report.head_rows":         5,
		"report.max_frequency":     7,
		"report.chart_path":        "",
		"report.export_path":       "",
		"report.seed":              uint64(42),
		"verbose":                  false,
	}
}
