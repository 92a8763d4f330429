package lifetimes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// linearModel buys rate purchases per time unit.
type linearModel struct{ rate float64 }

func (l linearModel) ConditionalExpectedPurchases(t, _, _, _ float64) float64 { return l.rate * t }

type flatProfit struct{ value float64 }

func (f flatProfit) ConditionalExpectedAverageProfit(_, _ float64) float64 { return f.value }

func TestCustomerLifetimeValue(t *testing.T) {
	opts := CLVOptions{Months: 6, Freq: "W", DiscountRate: 0.01}
	got, err := CustomerLifetimeValue(linearModel{rate: 0.5}, flatProfit{value: 20}, 3, 10, 20, 18, opts)
	require.NoError(t, err)

	var want float64
	for i := 1; i <= 6; i++ {
		want += 20 * 0.5 * 4.345 / math.Pow(1.01, float64(i))
	}
	assert.InDelta(t, want, got, 1e-9)
}

func TestCustomerLifetimeValue_NoDiscount(t *testing.T) {
	opts := CLVOptions{Months: 3, Freq: "M"}
	got, err := CustomerLifetimeValue(linearModel{rate: 2}, flatProfit{value: 10}, 1, 1, 1, 1, opts)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, got, 1e-12)
}

func TestCustomerLifetimeValue_WithFittedModels(t *testing.T) {
	bg := &BetaGeoModel{Params: cdnow}
	gg := &GammaGammaModel{Params: cdnowGG}
	opts := CLVOptions{Months: 6, Freq: "W", DiscountRate: 0.01}

	got, err := CustomerLifetimeValue(bg, gg, 4, 30, 38, 50, opts)
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)

	undiscounted := gg.ConditionalExpectedAverageProfit(4, 50) * bg.ConditionalExpectedPurchases(6*4.345, 4, 30, 38)
	assert.Less(t, got, undiscounted)
}

func TestCustomerLifetimeValue_InvalidOptions(t *testing.T) {
	_, err := CustomerLifetimeValue(linearModel{}, flatProfit{}, 1, 1, 1, 1, CLVOptions{Months: 6, Freq: "Y"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = CustomerLifetimeValue(linearModel{}, flatProfit{}, 1, 1, 1, 1, CLVOptions{Months: 0, Freq: "W"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestMonthFactor(t *testing.T) {
	for freq, want := range map[string]float64{"W": 4.345, "w": 4.345, "M": 1, "D": 30, "H": 720} {
		got, err := MonthFactor(freq)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
