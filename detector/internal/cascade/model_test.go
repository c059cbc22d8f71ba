package cascade

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearModelPredictBatch(t *testing.T) {
	m := &LinearModel{
		Weights: [][]float64{
			{1, 0},
			{0, 2},
		},
		Bias: []float64{0.5, -1},
	}

	scores, err := m.PredictBatch([][]float64{
		{3, 4},
		{0, 0},
	})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.InDelta(t, 3.5, scores[0][0], 1e-12)
	assert.InDelta(t, 7.0, scores[0][1], 1e-12)
	assert.InDelta(t, 0.5, scores[1][0], 1e-12)
	assert.InDelta(t, -1.0, scores[1][1], 1e-12)
}

func TestLinearModelDimensionMismatch(t *testing.T) {
	m := &LinearModel{Weights: [][]float64{{1, 2}}, Bias: []float64{0}}
	_, err := m.PredictBatch([][]float64{{1, 2, 3}})
	assert.Error(t, err)

	m = &LinearModel{Weights: [][]float64{{1}}, Bias: []float64{0, 1}}
	_, err = m.PredictBatch([][]float64{{1}})
	assert.Error(t, err)
}

func TestMLPForwardPass(t *testing.T) {
	// Hidden relu layer then identity output; values chosen so the relu
	// clamps one unit.
	m := &MLPModel{Layers: []Layer{
		{
			Weights:    [][]float64{{1, -1}, {-1, 1}},
			Bias:       []float64{0, 0},
			Activation: "relu",
		},
		{
			Weights: [][]float64{{2, 3}},
			Bias:    []float64{1},
		},
	}}

	scores, err := m.PredictBatch([][]float64{{5, 2}})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	// Hidden: relu(5-2)=3, relu(-5+2)=0. Output: 2*3 + 3*0 + 1 = 7.
	assert.InDelta(t, 7.0, scores[0][0], 1e-12)
}

func TestMLPActivations(t *testing.T) {
	assert.Equal(t, 0.0, activate("relu", -2))
	assert.Equal(t, 2.0, activate("relu", 2))
	assert.InDelta(t, 0.5, activate("sigmoid", 0), 1e-12)
	assert.InDelta(t, math.Tanh(0.3), activate("tanh", 0.3), 1e-12)
	assert.Equal(t, -1.5, activate("", -1.5))
}

func TestMLPLayerMismatch(t *testing.T) {
	m := &MLPModel{Layers: []Layer{
		{Weights: [][]float64{{1, 1}}, Bias: []float64{0}},
	}}
	_, err := m.PredictBatch([][]float64{{1, 2, 3}})
	assert.Error(t, err)
}
