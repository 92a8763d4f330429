package lifetimes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHyp2f1_ClosedForms(t *testing.T) {
	for _, z := range []float64{0, 0.1, 0.5, 0.9, 0.99} {
		got, ok := hyp2f1(1, 1, 2, z)
		require.True(t, ok, "z=%v", z)
		want := 1.0
		if z > 0 {
			want = -math.Log1p(-z) / z
		}
		assert.InDelta(t, want, got, 1e-10*want, "z=%v", z)
	}

	// 2F1(1/2, 1/2; 3/2; x²) = asin(x) / x
	got, ok := hyp2f1(0.5, 0.5, 1.5, 0.25)
	require.True(t, ok)
	assert.InDelta(t, math.Asin(0.5)/0.5, got, 1e-14)

	// terminating series: 2F1(-2, b; c; z) is a degree-2 polynomial
	got, ok = hyp2f1(-2, 3, 4, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 1-2*3.0/4*0.5+(3.0*4)/(4*5)*0.25, got, 1e-14)
}

func TestHyp2f1_OutOfDomain(t *testing.T) {
	_, ok := hyp2f1(1, 1, 2, 1)
	assert.False(t, ok)
	_, ok = hyp2f1(1, 1, 2, -0.1)
	assert.False(t, ok)
}

func TestLogHyp2f1_EulerMatchesDirect(t *testing.T) {
	// c-a-b < 0 and z > 1/2: the Euler form is used
	a, b, c, z := 10.243, 12.426, 12.219, 0.9
	require.Less(t, c-a-b, 0.0)

	direct, ok := directLogHyp2f1(a, b, c, z)
	require.True(t, ok)
	euler, ok := eulerLogHyp2f1(a, b, c, z)
	require.True(t, ok)

	assert.InDelta(t, direct, euler, 1e-10)
	assert.Equal(t, euler, logHyp2f1(a, b, c, z))
}
