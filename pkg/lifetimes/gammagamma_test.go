package lifetimes

import (
	"math/rand/v2"
	"testing"

	"cltv-predict/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

var cdnowGG = models.GammaGammaParams{P: 6.25, Q: 3.74, V: 15.44}

func syntheticGammaGamma(n int) (x, m []float64) {
	src := rand.NewPCG(7, 11)
	nu := distuv.Gamma{Alpha: cdnowGG.Q, Beta: cdnowGG.V, Src: src}
	for i := 0; i < n; i++ {
		freq := 2 + i%6
		spend := distuv.Gamma{Alpha: cdnowGG.P, Beta: nu.Rand(), Src: src}
		var total float64
		for j := 0; j < freq; j++ {
			total += spend.Rand()
		}
		x = append(x, float64(freq))
		m = append(m, total/float64(freq))
	}
	return x, m
}

func TestGammaGammaFitter_Fit(t *testing.T) {
	x, m := syntheticGammaGamma(1000)

	model, err := GammaGammaFitter{}.Fit(x, m)
	require.NoError(t, err)

	p := model.Params
	assert.Greater(t, p.P, 0.0)
	assert.Greater(t, p.Q, 0.0)
	assert.Greater(t, p.V, 0.0)

	fitted := gammaGammaNLL(p.P, p.Q, p.V, x, m, 0)
	truth := gammaGammaNLL(cdnowGG.P, cdnowGG.Q, cdnowGG.V, x, m, 0)
	assert.LessOrEqual(t, fitted, truth+1e-6)
}

func TestGammaGammaFitter_IterationLimit(t *testing.T) {
	x, m := syntheticGammaGamma(1000)

	_, err := GammaGammaFitter{MaxIterations: 2}.Fit(x, m)
	assert.ErrorIs(t, err, ErrFitFailed)
}

func TestGammaGammaFitter_InvalidInput(t *testing.T) {
	_, err := GammaGammaFitter{}.Fit(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = GammaGammaFitter{}.Fit([]float64{2, 3}, []float64{10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = GammaGammaFitter{}.Fit([]float64{2, 3}, []float64{10, 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestConditionalExpectedAverageProfit(t *testing.T) {
	g := &GammaGammaModel{Params: cdnowGG}
	assert.InDelta(t, 35.039370078740156, g.ConditionalExpectedAverageProfit(2, 35), 1e-9)
	assert.InDelta(t, 39.140419947506560, g.ConditionalExpectedAverageProfit(2, 40), 1e-9)

	// more transactions pull the estimate towards the observed average
	far := 500.0
	low := g.ConditionalExpectedAverageProfit(2, far)
	high := g.ConditionalExpectedAverageProfit(50, far)
	assert.Greater(t, high, low)
	assert.Less(t, high, far)
}
