package lifetimes

import "math"

const (
	hypMaxTerms  = 200000
	hypTolerance = 1e-16
)

// hyp2f1 évalue la série de Gauss 2F1(a, b; c; z) pour 0 <= z < 1.
// ok est faux si la série ne converge pas en hypMaxTerms termes ou déborde.
func hyp2f1(a, b, c, z float64) (float64, bool) {
	if z < 0 || z >= 1 {
		return math.NaN(), false
	}
	sum, term := 1.0, 1.0
	for k := 0.0; k < hypMaxTerms; k++ {
		ratio := (a + k) * (b + k) / ((c + k) * (k + 1)) * z
		term *= ratio
		sum += term
		if math.IsInf(sum, 0) || math.IsNaN(sum) {
			return sum, false
		}
		// série finie (a ou b entier négatif) ou termes décroissants sous la tolérance
		if term == 0 || (math.Abs(term) <= hypTolerance*math.Abs(sum) && math.Abs(ratio) < 1) {
			return sum, true
		}
	}
	return sum, false
}

// eulerLogHyp2f1 utilise 2F1(a, b; c; z) = (1-z)^(c-a-b) 2F1(c-a, c-b; c; z).
func eulerLogHyp2f1(a, b, c, z float64) (float64, bool) {
	v, ok := hyp2f1(c-a, c-b, c, z)
	if !ok || v <= 0 {
		return math.NaN(), false
	}
	return math.Log(v) + (c-a-b)*math.Log1p(-z), true
}

func directLogHyp2f1(a, b, c, z float64) (float64, bool) {
	v, ok := hyp2f1(a, b, c, z)
	if !ok || v <= 0 {
		return math.NaN(), false
	}
	return math.Log(v), true
}

// logHyp2f1 renvoie log(2F1(a, b; c; z)). Quand c-a-b < 0 et z > 1/2, la série directe croît
// comme (1-z)^(c-a-b); la transformation d'Euler sort ce facteur du logarithme.
// Si la forme choisie échoue, l'autre est essayée.
func logHyp2f1(a, b, c, z float64) float64 {
	first, second := directLogHyp2f1, eulerLogHyp2f1
	if c-a-b < 0 && z > 0.5 {
		first, second = second, first
	}
	if v, ok := first(a, b, c, z); ok {
		return v
	}
	v, _ := second(a, b, c, z)
	return v
}
