package lifetimes

import (
	"fmt"
	"math"

	"cltv-predict/pkg/models"

	"gonum.org/v1/gonum/floats"
)

// BetaGeoFitter ajuste un modèle BG/NBD.
type BetaGeoFitter struct {
	Penalizer     float64
	MaxIterations int
}

// BetaGeoModel est un modèle BG/NBD ajusté. Les paramètres ne changent plus après Fit.
type BetaGeoModel struct {
	Params models.BetaGeoParams
	// NegLogLikelihood est la log-vraisemblance moyenne négative pénalisée au point optimal.
	NegLogLikelihood float64
	// observations d'origine, utilisées par la comparaison des périodes
	Frequency []float64
	Recency   []float64
	T         []float64
}

func checkBetaGeoInput(x, tx, T []float64) error {
	if len(x) == 0 {
		return fmt.Errorf("%w: no observations", ErrInvalidInput)
	}
	if len(x) != len(tx) || len(x) != len(T) {
		return fmt.Errorf("%w: frequency/recency/T lengths differ (%d/%d/%d)", ErrInvalidInput, len(x), len(tx), len(T))
	}
	for i := range x {
		switch {
		case x[i] < 0 || tx[i] < 0 || T[i] <= 0:
			return fmt.Errorf("%w: negative value at row %d", ErrInvalidInput, i)
		case tx[i] > T[i]:
			return fmt.Errorf("%w: recency larger than T at row %d", ErrInvalidInput, i)
		case x[i] != math.Trunc(x[i]):
			return fmt.Errorf("%w: non-integer frequency at row %d", ErrInvalidInput, i)
		}
	}
	return nil
}

// betaGeoNLL renvoie la log-vraisemblance moyenne négative, pénalisée, pour des paramètres (r, alpha, a, b).
func betaGeoNLL(r, alpha, a, b float64, x, tx, T []float64, penalizer float64) float64 {
	var ll float64
	for i := range x {
		xi := x[i]
		a1 := lgamma(r+xi) - lgamma(r) + r*math.Log(alpha)
		a2 := lgamma(a+b) + lgamma(b+xi) - lgamma(b) - lgamma(a+b+xi)
		a3 := -(r + xi) * math.Log(alpha+T[i])

		xd := xi
		if xd == 0 {
			xd = 1
		}
		a4 := math.Log(a) - math.Log(b+xd-1) - (r+xi)*math.Log(tx[i]+alpha)

		m := math.Max(a3, a4)
		mix := math.Exp(a3 - m)
		if xi > 0 {
			mix += math.Exp(a4 - m)
		}
		ll += a1 + a2 + math.Log(mix) + m
	}
	return -ll/float64(len(x)) + penalty(penalizer, r, alpha, a, b)
}

// Fit ajuste le modèle sur (frequency, recency, T). Les durées sont remises à l'échelle (max T = 10)
// pendant l'optimisation, alpha est ramené à l'échelle d'origine ensuite.
func (f BetaGeoFitter) Fit(x, tx, T []float64) (*BetaGeoModel, error) {
	if err := checkBetaGeoInput(x, tx, T); err != nil {
		return nil, err
	}

	scale := 10 / floats.Max(T)
	stx := make([]float64, len(tx))
	sT := make([]float64, len(T))
	floats.ScaleTo(stx, scale, tx)
	floats.ScaleTo(sT, scale, T)

	nll := func(lp []float64) float64 {
		return betaGeoNLL(math.Exp(lp[0]), math.Exp(lp[1]), math.Exp(lp[2]), math.Exp(lp[3]), x, stx, sT, f.Penalizer)
	}
	params, value, err := minimize(nll, 4, f.MaxIterations)
	if err != nil {
		return nil, fmt.Errorf("bg/nbd: %w", err)
	}

	return &BetaGeoModel{
		Params: models.BetaGeoParams{
			R:     params[0],
			Alpha: params[1] / scale,
			A:     params[2],
			B:     params[3],
		},
		NegLogLikelihood: value,
		Frequency:        append([]float64(nil), x...),
		Recency:          append([]float64(nil), tx...),
		T:                append([]float64(nil), T...),
	}, nil
}

// ConditionalExpectedPurchases renvoie le nombre d'achats attendus sur (T, T+t] pour un client (x, tx, T).
func (m *BetaGeoModel) ConditionalExpectedPurchases(t, x, tx, T float64) float64 {
	if t == 0 {
		return 0
	}
	p := m.Params
	hypA := p.R + x
	hypB := p.B + x
	hypC := p.A + p.B + x - 1
	z := t / (p.Alpha + T + t)

	lnHyp := logHyp2f1(hypA, hypB, hypC, z)
	first := (p.A + p.B + x - 1) / (p.A - 1)
	second := 1 - math.Exp(lnHyp+(p.R+x)*math.Log((p.Alpha+T)/(p.Alpha+t+T)))
	numerator := first * second

	denominator := 1.0
	if x > 0 {
		denominator += (p.A / (p.B + x - 1)) * math.Pow((p.Alpha+T)/(p.Alpha+tx), p.R+x)
	}
	return numerator / denominator
}

// Predict est un alias de ConditionalExpectedPurchases.
func (m *BetaGeoModel) Predict(t, x, tx, T float64) float64 {
	return m.ConditionalExpectedPurchases(t, x, tx, T)
}

// ExpectedPurchases renvoie le nombre d'achats attendus sur [0, t] pour un nouveau client.
func (m *BetaGeoModel) ExpectedPurchases(t float64) float64 {
	p := m.Params
	hyp := math.Exp(logHyp2f1(p.R, p.B, p.A+p.B-1, t/(p.Alpha+t)))
	return (p.A + p.B - 1) / (p.A - 1) * (1 - hyp*math.Pow(p.Alpha/(p.Alpha+t), p.R))
}

// ConditionalProbabilityAlive renvoie la probabilité qu'un client (x, tx, T) soit encore actif.
func (m *BetaGeoModel) ConditionalProbabilityAlive(x, tx, T float64) float64 {
	if x == 0 {
		return 1
	}
	p := m.Params
	logDiv := (p.R+x)*math.Log((p.Alpha+T)/(p.Alpha+tx)) + math.Log(p.A/(p.B+x-1))
	return 1 / (1 + math.Exp(logDiv))
}
