package prep

import (
	"database/sql"
	"math"
	"testing"

	"cltv-predict/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	s := Describe("Quantity", []float64{1, 2, 3, 4, 5}, []float64{0.5, 1})
	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), s.Std, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	require.Len(t, s.Percentiles, 2)
	assert.InDelta(t, 3.0, s.Percentiles[0].Value, 1e-12)
	assert.InDelta(t, 5.0, s.Percentiles[1].Value, 1e-12)
}

func TestDescribe_Empty(t *testing.T) {
	s := Describe("Price", nil, DefaultPercentiles)
	assert.Equal(t, 0, s.Count)
	assert.True(t, math.IsNaN(s.Mean))
}

func TestDescribeRaw_SkipsNulls(t *testing.T) {
	stats := DescribeRaw([]models.RawTransaction{
		{Quantity: sql.NullFloat64{Float64: 2, Valid: true}, Price: sql.NullFloat64{Float64: 1.5, Valid: true}},
		{Quantity: sql.NullFloat64{}, Price: sql.NullFloat64{Float64: 2.5, Valid: true}},
	})
	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[0].Count)
	assert.Equal(t, 2, stats[1].Count)
	assert.InDelta(t, 2.0, stats[1].Mean, 1e-12)
}
