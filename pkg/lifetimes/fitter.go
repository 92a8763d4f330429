// Package lifetimes ajuste les modèles BG/NBD (fréquence d'achat) et Gamma-Gamma (panier moyen)
// par maximum de vraisemblance pénalisé (L2), et combine leurs prédictions en CLTV.
package lifetimes

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

var (
	// ErrInvalidInput est renvoyée quand les observations ne permettent pas l'ajustement.
	ErrInvalidInput = errors.New("invalid model input")
	// ErrFitFailed est renvoyée quand l'optimisation ne converge pas vers une valeur finie.
	ErrFitFailed = errors.New("model fit failed")
)

// DefaultMaxIterations borne le nombre d'itérations de Nelder-Mead.
const DefaultMaxIterations = 5000

// TransactionModel prédit un nombre d'achats sur un horizon t, sachant l'historique (x, tx, T).
type TransactionModel interface {
	ConditionalExpectedPurchases(t, x, tx, T float64) float64
}

// MonetaryModel prédit le panier moyen attendu d'un client.
type MonetaryModel interface {
	ConditionalExpectedAverageProfit(x, m float64) float64
}

// minimize cherche le minimum de nll sur les log-paramètres, en partant de params = 1.
func minimize(nll func(logParams []float64) float64, dim, maxIter int) ([]float64, float64, error) {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	problem := optimize.Problem{Func: func(lp []float64) float64 {
		// les zones non définies du simplexe sont simplement rejetées
		if v := nll(lp); !math.IsNaN(v) {
			return v
		}
		return math.Inf(1)
	}}
	settings := &optimize.Settings{MajorIterations: maxIter}

	result, err := optimize.Minimize(problem, make([]float64, dim), settings, &optimize.NelderMead{})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	switch result.Status {
	case optimize.Success, optimize.FunctionThreshold, optimize.FunctionConvergence,
		optimize.GradientThreshold, optimize.StepConvergence, optimize.MethodConverge:
	default:
		return nil, 0, fmt.Errorf("%w: optimizer stopped without converging (%v after %d iterations)",
			ErrFitFailed, result.Status, result.Stats.MajorIterations)
	}
	if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return nil, 0, fmt.Errorf("%w: non-finite log-likelihood", ErrFitFailed)
	}
	params := make([]float64, dim)
	for i, v := range result.X {
		params[i] = math.Exp(v)
		if math.IsNaN(params[i]) || math.IsInf(params[i], 0) || params[i] == 0 {
			return nil, 0, fmt.Errorf("%w: degenerate parameter %d", ErrFitFailed, i)
		}
	}
	return params, result.F, nil
}

func penalty(coef float64, params ...float64) float64 {
	if coef == 0 {
		return 0
	}
	var s float64
	for _, p := range params {
		s += p * p
	}
	return coef * s
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}
