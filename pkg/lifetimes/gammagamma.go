package lifetimes

import (
	"fmt"
	"math"

	"cltv-predict/pkg/models"
)

// GammaGammaFitter ajuste un modèle Gamma-Gamma du panier moyen.
// Le modèle suppose l'indépendance entre fréquence et panier moyen; ce n'est pas vérifié ici.
type GammaGammaFitter struct {
	Penalizer     float64
	MaxIterations int
}

// GammaGammaModel est un modèle Gamma-Gamma ajusté.
type GammaGammaModel struct {
	Params           models.GammaGammaParams
	NegLogLikelihood float64
}

func gammaGammaNLL(p, q, v float64, x, m []float64, penalizer float64) float64 {
	var ll float64
	for i := range x {
		px := p * x[i]
		ll += lgamma(px+q) - lgamma(px) - lgamma(q) +
			q*math.Log(v) +
			(px-1)*math.Log(m[i]) +
			px*math.Log(x[i]) -
			(px+q)*math.Log(x[i]*m[i]+v)
	}
	return -ll/float64(len(x)) + penalty(penalizer, p, q, v)
}

// Fit ajuste le modèle sur (frequency, monetary_avg). Les deux vecteurs doivent être strictement positifs.
func (f GammaGammaFitter) Fit(x, m []float64) (*GammaGammaModel, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no observations", ErrInvalidInput)
	}
	if len(x) != len(m) {
		return nil, fmt.Errorf("%w: frequency/monetary lengths differ (%d/%d)", ErrInvalidInput, len(x), len(m))
	}
	for i := range x {
		if x[i] <= 0 || m[i] <= 0 {
			return nil, fmt.Errorf("%w: non-positive frequency or monetary value at row %d", ErrInvalidInput, i)
		}
	}

	nll := func(lp []float64) float64 {
		return gammaGammaNLL(math.Exp(lp[0]), math.Exp(lp[1]), math.Exp(lp[2]), x, m, f.Penalizer)
	}
	params, value, err := minimize(nll, 3, f.MaxIterations)
	if err != nil {
		return nil, fmt.Errorf("gamma-gamma: %w", err)
	}
	return &GammaGammaModel{
		Params:           models.GammaGammaParams{P: params[0], Q: params[1], V: params[2]},
		NegLogLikelihood: value,
	}, nil
}

// ConditionalExpectedAverageProfit renvoie le panier moyen attendu d'un client (x achats, panier moyen m).
func (g *GammaGammaModel) ConditionalExpectedAverageProfit(x, m float64) float64 {
	p := g.Params
	individualWeight := p.P * x / (p.P*x + p.Q - 1)
	populationMean := p.V * p.P / (p.Q - 1)
	return (1-individualWeight)*populationMean + individualWeight*m
}
