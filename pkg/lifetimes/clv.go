package lifetimes

import (
	"fmt"
	"math"
	"strings"
)

// nombre d'unités de temps du modèle par mois
var monthFactors = map[string]float64{
	"W": 4.345,
	"M": 1.0,
	"D": 30,
	"H": 30 * 24,
}

// MonthFactor renvoie le nombre d'unités de temps (W, M, D, H) par mois.
func MonthFactor(freq string) (float64, error) {
	f, ok := monthFactors[strings.ToUpper(freq)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown frequency %q", ErrInvalidInput, freq)
	}
	return f, nil
}

// CLVOptions paramètre l'horizon et l'actualisation.
type CLVOptions struct {
	Months       int
	Freq         string
	DiscountRate float64
}

// CustomerLifetimeValue renvoie la valeur actualisée attendue d'un client sur opts.Months mois:
// somme des achats attendus de chaque mois × panier moyen attendu / (1+taux)^mois.
func CustomerLifetimeValue(tm TransactionModel, mm MonetaryModel, x, tx, T, m float64, opts CLVOptions) (float64, error) {
	factor, err := MonthFactor(opts.Freq)
	if err != nil {
		return 0, err
	}
	if opts.Months <= 0 {
		return 0, fmt.Errorf("%w: non-positive horizon %d", ErrInvalidInput, opts.Months)
	}

	profit := mm.ConditionalExpectedAverageProfit(x, m)
	var clv float64
	prev := 0.0
	for i := 1; i <= opts.Months; i++ {
		cur := tm.ConditionalExpectedPurchases(float64(i)*factor, x, tx, T)
		clv += profit * (cur - prev) / math.Pow(1+opts.DiscountRate, float64(i))
		prev = cur
	}
	return clv, nil
}
