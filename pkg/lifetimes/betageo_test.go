package lifetimes

import (
	"math"
	"math/rand/v2"
	"testing"

	"cltv-predict/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

// CDNOW reference parameters.
var cdnow = models.BetaGeoParams{R: 0.243, Alpha: 4.414, A: 0.793, B: 2.426}

func syntheticBetaGeo(t *testing.T, n int) (x, tx, T []float64) {
	t.Helper()
	truth := &BetaGeoModel{Params: cdnow}
	horizons := make([]float64, n)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range horizons {
		horizons[i] = 30 + 9*rng.Float64()
	}
	for _, c := range truth.Simulate(horizons, rand.NewPCG(3, 4)) {
		x = append(x, float64(c.Frequency))
		tx = append(tx, c.Recency)
		T = append(T, c.T)
	}
	return x, tx, T
}

func TestBetaGeoFitter_Fit(t *testing.T) {
	x, tx, T := syntheticBetaGeo(t, 1500)

	model, err := BetaGeoFitter{}.Fit(x, tx, T)
	require.NoError(t, err)

	p := model.Params
	for _, v := range []float64{p.R, p.Alpha, p.A, p.B} {
		assert.Greater(t, v, 0.0)
		assert.False(t, math.IsInf(v, 0))
	}

	fitted := betaGeoNLL(p.R, p.Alpha, p.A, p.B, x, tx, T, 0)
	truth := betaGeoNLL(cdnow.R, cdnow.Alpha, cdnow.A, cdnow.B, x, tx, T, 0)
	assert.LessOrEqual(t, fitted, truth+1e-6)
	assert.Len(t, model.Frequency, len(x))
}

func TestBetaGeoFitter_IterationLimit(t *testing.T) {
	x, tx, T := syntheticBetaGeo(t, 1500)

	model, err := BetaGeoFitter{MaxIterations: 3}.Fit(x, tx, T)
	require.ErrorIs(t, err, ErrFitFailed)
	assert.Nil(t, model)
	assert.Contains(t, err.Error(), "without converging")
}

func TestBetaGeoFitter_PenalizerShrinksParameters(t *testing.T) {
	x, tx, T := syntheticBetaGeo(t, 500)

	plain, err := BetaGeoFitter{}.Fit(x, tx, T)
	require.NoError(t, err)
	penalized, err := BetaGeoFitter{Penalizer: 0.1}.Fit(x, tx, T)
	require.NoError(t, err)

	// the penalty applies to the rescaled alpha (max T = 10)
	scale := 10 / floats.Max(T)
	norm := func(p models.BetaGeoParams) float64 {
		alpha := p.Alpha * scale
		return p.R*p.R + alpha*alpha + p.A*p.A + p.B*p.B
	}
	assert.Less(t, norm(penalized.Params), norm(plain.Params))
}

func TestBetaGeoFitter_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		x, tx, T  []float64
		errSubstr string
	}{
		{name: "empty", errSubstr: "no observations"},
		{name: "length mismatch", x: []float64{1, 2}, tx: []float64{1}, T: []float64{2, 3}, errSubstr: "lengths differ"},
		{name: "recency larger than T", x: []float64{2}, tx: []float64{5}, T: []float64{4}, errSubstr: "recency larger than T"},
		{name: "negative", x: []float64{-1}, tx: []float64{1}, T: []float64{4}, errSubstr: "negative"},
		{name: "non integer frequency", x: []float64{1.5}, tx: []float64{1}, T: []float64{4}, errSubstr: "non-integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BetaGeoFitter{}.Fit(tt.x, tt.tx, tt.T)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestBetaGeoNLL_Penalty(t *testing.T) {
	x := []float64{0, 2, 5}
	tx := []float64{0, 10, 30}
	T := []float64{40, 38, 35}
	base := betaGeoNLL(1, 2, 0.5, 3, x, tx, T, 0)
	pen := betaGeoNLL(1, 2, 0.5, 3, x, tx, T, 0.01)
	assert.InDelta(t, 0.01*(1+4+0.25+9), pen-base, 1e-12)
}

func TestConditionalExpectedPurchases(t *testing.T) {
	m := &BetaGeoModel{Params: cdnow}

	assert.Equal(t, 0.0, m.ConditionalExpectedPurchases(0, 2, 30.43, 38.86))

	prev := 0.0
	for _, h := range []float64{1, 4, 12, 24, 52} {
		got := m.ConditionalExpectedPurchases(h, 2, 30.43, 38.86)
		assert.Greater(t, got, prev, "horizon %v", h)
		prev = got
	}
	assert.Equal(t, m.ConditionalExpectedPurchases(24, 5, 20, 38), m.Predict(24, 5, 20, 38))
}

func TestConditionalExpectedPurchases_ReferenceValues(t *testing.T) {
	m := &BetaGeoModel{Params: cdnow}

	tests := []struct {
		name        string
		t, x, tx, T float64
		want        float64
	}{
		{name: "one week", t: 1, x: 2, tx: 30.43, T: 38.86, want: 0.037447969741737},
		{name: "24 weeks", t: 24, x: 2, tx: 30.43, T: 38.86, want: 0.802290127496568},
		// z = 0.9 with c-a-b < 0: computed through the Euler transform
		{name: "long horizon", t: 500, x: 10, tx: 50, T: 52, want: 29.669930192466},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.ConditionalExpectedPurchases(tt.t, tt.x, tt.tx, tt.T), 1e-9)
		})
	}
}

func TestExpectedPurchases_ReferenceValues(t *testing.T) {
	m := &BetaGeoModel{Params: cdnow}
	assert.InDelta(t, 0.053267891171656, m.ExpectedPurchases(1), 1e-9)
	assert.InDelta(t, 1.196723193320803, m.ExpectedPurchases(39), 1e-9)
	assert.InDelta(t, 0.0, m.ExpectedPurchases(0), 1e-15)
}

func TestConditionalExpectedPurchases_MatchesUnconditionalForNewCustomer(t *testing.T) {
	m := &BetaGeoModel{Params: cdnow}
	for _, h := range []float64{1, 10, 39} {
		assert.InDelta(t, m.ExpectedPurchases(h), m.ConditionalExpectedPurchases(h, 0, 0, 0), 1e-9)
	}
}

func TestConditionalExpectedPurchases_RecentBuyerExpectsMore(t *testing.T) {
	m := &BetaGeoModel{Params: cdnow}
	recent := m.ConditionalExpectedPurchases(24, 5, 38, 39)
	lapsed := m.ConditionalExpectedPurchases(24, 5, 5, 39)
	assert.Greater(t, recent, lapsed)
}

func TestConditionalProbabilityAlive(t *testing.T) {
	m := &BetaGeoModel{Params: cdnow}
	assert.Equal(t, 1.0, m.ConditionalProbabilityAlive(0, 0, 39))
	assert.InDelta(t, 0.726578570080673, m.ConditionalProbabilityAlive(2, 30.43, 38.86), 1e-9)

	p := m.ConditionalProbabilityAlive(3, 20, 39)
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)
	assert.Greater(t, p, m.ConditionalProbabilityAlive(3, 20, 60))
}

func TestPeriodTransactions(t *testing.T) {
	x, tx, T := syntheticBetaGeo(t, 400)
	model, err := BetaGeoFitter{}.Fit(x, tx, T)
	require.NoError(t, err)

	counts, err := model.PeriodTransactions(7, 42)
	require.NoError(t, err)
	require.Len(t, counts, 8)
	assert.Equal(t, "0", counts[0].Label)
	assert.Equal(t, "7+", counts[7].Label)

	var actual, simulated int
	for _, c := range counts {
		actual += c.Actual
		simulated += c.Simulated
	}
	assert.Equal(t, len(x), actual)
	assert.Equal(t, len(x), simulated)

	again, err := model.PeriodTransactions(7, 42)
	require.NoError(t, err)
	assert.Equal(t, counts, again)

	_, err = model.PeriodTransactions(0, 42)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
