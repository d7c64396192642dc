package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sumWeights(ws []Weight) float64 {
	var sum float64
	for _, w := range ws {
		sum += w.Weight
	}
	return sum
}

func TestSoftmaxSumsToOne(t *testing.T) {
	for _, temp := range []float64{0.001, 0.1, 0.3, 1, 1e6} {
		ws := Softmax([]float64{0.2, 0.5, 0.9}, temp)
		assert.InDelta(t, 1.0, sumWeights(ws), 1e-9, "temperature %v", temp)
	}
}

func TestSoftmaxUniformFallback(t *testing.T) {
	for _, temp := range []float64{0, 1e-12, 0.0009} {
		ws := Softmax([]float64{0.2, 0.8}, temp)
		require.Len(t, ws, 2)
		assert.InDelta(t, 0.5, ws[0].Weight, 1e-9)
		assert.InDelta(t, 0.5, ws[1].Weight, 1e-9)
	}
}

func TestSoftmaxOrdering(t *testing.T) {
	ws := Softmax([]float64{0.3, 0.7}, 0.3)
	assert.Greater(t, ws[1].Weight, ws[0].Weight)
}

func TestSoftmaxExtremeTemperatureStaysFinite(t *testing.T) {
	ws := Softmax([]float64{0, 1}, 1e-3)
	for _, w := range ws {
		assert.False(t, math.IsNaN(w.Weight))
		assert.False(t, math.IsInf(w.Weight, 0))
	}
	assert.InDelta(t, 1.0, sumWeights(ws), 1e-9)
}

func TestSoftmaxOutlierFlags(t *testing.T) {
	ws := Softmax([]float64{0.95, 0.5, 0.1, 0.96, 0.05}, 0.3)
	assert.True(t, ws[0].Outlier)
	assert.False(t, ws[1].Outlier)
	assert.True(t, ws[2].Outlier)
	assert.True(t, ws[3].Outlier)
	assert.True(t, ws[4].Outlier)
}

func TestSoftmaxEmpty(t *testing.T) {
	assert.Nil(t, Softmax(nil, 0.3))
}

func TestSoftmaxSingle(t *testing.T) {
	ws := Softmax([]float64{0.8}, 0.3)
	require.Len(t, ws, 1)
	assert.InDelta(t, 1.0, ws[0].Weight, 1e-9)
}
