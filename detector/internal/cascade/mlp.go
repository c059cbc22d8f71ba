package cascade

import (
	"fmt"
	"math"
)

// Layer is one dense layer of an MLP: out = activation(W*in + b).
type Layer struct {
	// Weights is out x in.
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
	// Activation is "relu", "sigmoid", "tanh", or "" for identity.
	Activation string `json:"activation,omitempty"`
}

// MLPModel is a feed-forward network evaluated in inference mode only;
// there is no training path in the detector.
type MLPModel struct {
	Layers []Layer
}

// PredictBatch runs the forward pass for every row. The final layer's raw
// outputs are returned as scores; decoding (sigmoid threshold or argmax)
// is the cascade's concern.
func (m *MLPModel) PredictBatch(x [][]float64) ([][]float64, error) {
	if len(m.Layers) == 0 {
		return nil, fmt.Errorf("mlp model has no layers")
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		cur := row
		for li, layer := range m.Layers {
			next, err := layer.forward(cur)
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", li, err)
			}
			cur = next
		}
		out[i] = cur
	}
	return out, nil
}

func (l Layer) forward(in []float64) ([]float64, error) {
	if len(l.Bias) != len(l.Weights) {
		return nil, fmt.Errorf("bias length %d does not match %d units", len(l.Bias), len(l.Weights))
	}
	out := make([]float64, len(l.Weights))
	for u, w := range l.Weights {
		if len(w) != len(in) {
			return nil, fmt.Errorf("input has %d values, layer expects %d", len(in), len(w))
		}
		s := l.Bias[u]
		for j, v := range in {
			s += w[j] * v
		}
		out[u] = activate(l.Activation, s)
	}
	return out, nil
}

func activate(name string, x float64) float64 {
	switch name {
	case "relu":
		if x < 0 {
			return 0
		}
		return x
	case "sigmoid":
		return sigmoid(x)
	case "tanh":
		return math.Tanh(x)
	default:
		return x
	}
}
