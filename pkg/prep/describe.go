package prep

import (
	"math"
	"sort"

	"cltv-predict/pkg/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultPercentiles sont les percentiles affichés dans le tableau descriptif.
var DefaultPercentiles = []float64{0.05, 0.25, 0.50, 0.75, 0.95, 0.99, 1}

// Describe résume une colonne: effectif, moyenne, écart-type (n-1), min, percentiles, max.
func Describe(column string, values []float64, percentiles []float64) models.Stats {
	s := models.Stats{Column: column, Count: len(values)}
	if len(values) == 0 {
		s.Mean, s.Std, s.Min, s.Max = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return s
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	} else {
		s.Std = math.NaN()
	}
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	for _, p := range percentiles {
		s.Percentiles = append(s.Percentiles, models.Percentile{P: p, Value: quantileSorted(sorted, p)})
	}
	return s
}

// DescribeRaw décrit Quantity et Price des lignes brutes (valeurs présentes uniquement).
func DescribeRaw(raw []models.RawTransaction) []models.Stats {
	var qty, price []float64
	for _, r := range raw {
		if r.Quantity.Valid {
			qty = append(qty, r.Quantity.Float64)
		}
		if r.Price.Valid {
			price = append(price, r.Price.Float64)
		}
	}
	return []models.Stats{
		Describe("Quantity", qty, DefaultPercentiles),
		Describe("Price", price, DefaultPercentiles),
	}
}
