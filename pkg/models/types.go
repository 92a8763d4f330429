package models

import (
	"database/sql"
	"time"
)

/*
LOAD → types simples pour les lignes de facture brutes (xlsx, csv/parquet, MySQL).
*/

// RawTransaction représente une ligne de facture telle que lue depuis la source.
// Les champs nullables reprennent les types database/sql pour que toutes les sources partagent la même forme.
type RawTransaction struct {
	Invoice     string
	StockCode   sql.NullString
	Description sql.NullString
	Quantity    sql.NullFloat64
	InvoiceDate sql.NullTime
	Price       sql.NullFloat64
	CustomerID  sql.NullString
	Country     sql.NullString
}

// Complete indique si aucun champ n'est manquant (équivalent d'un dropna).
func (r RawTransaction) Complete() bool {
	return r.Invoice != "" &&
		r.StockCode.Valid &&
		r.Description.Valid &&
		r.Quantity.Valid &&
		r.InvoiceDate.Valid &&
		r.Price.Valid &&
		r.CustomerID.Valid && r.CustomerID.String != "" &&
		r.Country.Valid
}

/*
PREP → ligne nettoyée, tous les champs présents.
*/

// Transaction est une ligne de facture nettoyée. Quantity et Price sont en float64 car le plafonnement
// des outliers peut produire des valeurs fractionnaires.
type Transaction struct {
	Invoice     string
	StockCode   string
	Description string
	Quantity    float64
	Price       float64
	TotalPrice  float64 // Price × Quantity
	InvoiceDate time.Time
	CustomerID  string
	Country     string
}

/*
RFM → une ligne par client retenu.
*/

// RFM contient les métriques agrégées d'un client. Invariant: Frequency > 1 et MonetaryAvg > 0.
type RFM struct {
	CustomerID    string
	RecencyDays   int     // jours entre le premier et le dernier achat
	TenureDays    int     // jours entre le premier achat et la date d'analyse
	Frequency     int     // nombre de factures distinctes
	Monetary      float64 // chiffre d'affaires total
	MonetaryAvg   float64 // Monetary / Frequency
	RecencyWeekly float64 // RecencyDays / 7
	TenureWeekly  float64 // TenureDays / 7
}

/*
COMPUTE → résultats par client et rapport global
*/

// CLTVResult joint les métriques RFM aux prédictions des deux modèles.
type CLTVResult struct {
	RFM
	ExpSales              float64         // achats attendus sur l'horizon de prédiction (semaines)
	ProbAlive             float64         // probabilité que le client soit encore actif
	ExpectedAverageProfit float64         // panier moyen attendu (Gamma-Gamma)
	CLV                   sql.NullFloat64 // null si la jointure ne trouve pas de valeur
}

// CustomerPrediction est une ligne du classement top-N.
type CustomerPrediction struct {
	CustomerID        string
	ExpectedPurchases float64
}

// PeriodCount compare le nombre de clients réels et simulés pour une fréquence donnée.
type PeriodCount struct {
	Label     string
	Actual    int
	Simulated int
}

// Stats résume une colonne numérique (équivalent d'un describe).
type Stats struct {
	Column      string
	Count       int
	Mean        float64
	Std         float64
	Min         float64
	Max         float64
	Percentiles []Percentile
}

// Percentile est une paire (p, valeur).
type Percentile struct {
	P     float64
	Value float64
}

// Report contient tout ce qui est produit par un run.
type Report struct {
	RunID                 string
	AnalysisDate          time.Time
	RawRows               int
	CleanRows             int
	Describe              []Stats
	BetaGeo               BetaGeoParams
	GammaGamma            GammaGammaParams
	TopPurchases          []CustomerPrediction
	ExpectedTransactions  float64
	PeriodTransactions    []PeriodCount
	// corrélation de Pearson fréquence / panier moyen; NaN avec moins de deux clients
	FrequencyMonetaryCorr float64
	TopProfit             []CLTVResult
	Results               []CLTVResult
}

// BetaGeoParams sont les paramètres du modèle BG/NBD.
type BetaGeoParams struct {
	R     float64
	Alpha float64
	A     float64
	B     float64
}

// GammaGammaParams sont les paramètres du modèle Gamma-Gamma.
type GammaGammaParams struct {
	P float64
	Q float64
	V float64
}

/*
CONFIG → paramètres globaux
*/

// Config contient les paramètres du run. Les valeurs par défaut sont dans pkg/config.
type Config struct {
	Input   InputConfig  `koanf:"input"`
	Prep    PrepConfig   `koanf:"prep"`
	RFM     RFMConfig    `koanf:"rfm"`
	Model   ModelConfig  `koanf:"model"`
	CLTV    CLTVConfig   `koanf:"cltv"`
	Report  ReportConfig `koanf:"report"`
	Verbose bool         `koanf:"verbose"` // Flag pour activer les logs détaillés.
}

// InputConfig décrit la source des transactions.
type InputConfig struct {
	Path  string `koanf:"path"`  // fichier .xlsx/.csv/.parquet ou DSN mysql:// / mariadb://
	Sheet string `koanf:"sheet"` // feuille xlsx
	Table string `koanf:"table"` // table SQL
}

// PrepConfig pilote le nettoyage.
type PrepConfig struct {
	Country       string  `koanf:"country"`
	CancelMarker  string  `koanf:"cancel_marker"`
	LowerQuantile float64 `koanf:"lower_quantile"`
	UpperQuantile float64 `koanf:"upper_quantile"`
	IQRMultiplier float64 `koanf:"iqr_multiplier"`
}

// RFMConfig pilote l'agrégation.
type RFMConfig struct {
	AnalysisOffsetDays int `koanf:"analysis_offset_days"`
}

// ModelConfig pilote l'ajustement des deux modèles.
type ModelConfig struct {
	BGFPenalizer    float64 `koanf:"bgf_penalizer"`
	GGFPenalizer    float64 `koanf:"ggf_penalizer"`
	PredictionWeeks float64 `koanf:"prediction_weeks"`
	MaxIterations   int     `koanf:"max_iterations"`
}

// CLTVConfig pilote le calcul de la CLTV.
type CLTVConfig struct {
	Months       int     `koanf:"months"`
	Freq         string  `koanf:"freq"` // unité de temps du modèle: W, D, H, M
	DiscountRate float64 `koanf:"discount_rate"`
}

// ReportConfig pilote l'affichage et l'export.
type ReportConfig struct {
	TopN         int    `koanf:"top_n"`
	HeadRows     int    `koanf:"head_rows"`
	MaxFrequency int    `koanf:"max_frequency"`
	ChartPath    string `koanf:"chart_path"`
	ExportPath   string `koanf:"export_path"`
	Seed         uint64 `koanf:"seed"`
}
