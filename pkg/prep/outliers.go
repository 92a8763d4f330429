package prep

import (
	"math"
	"sort"
)

// Quantile renvoie le quantile p de values par interpolation linéaire à la position (n-1)·p.
// values n'est pas modifié. NaN si values est vide.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := float64(len(sorted)-1) * p
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Thresholds sont les bornes d'outliers d'une colonne.
type Thresholds struct {
	Low float64
	Up  float64
}

// OutlierThresholds calcule low = q_low - k·(q_up - q_low) et up = q_up + k·(q_up - q_low).
func OutlierThresholds(values []float64, lowQ, upQ, k float64) Thresholds {
	q1 := Quantile(values, lowQ)
	q3 := Quantile(values, upQ)
	spread := q3 - q1
	return Thresholds{
		Low: q1 - k*spread,
		Up:  q3 + k*spread,
	}
}

// Cap plafonne les valeurs au-dessus de up. La borne basse n'est pas appliquée.
func Cap(values []float64, up float64) int {
	n := 0
	for i, v := range values {
		if v > up {
			values[i] = up
			n++
		}
	}
	return n
}
