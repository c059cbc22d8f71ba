package cascade

import "fmt"

// LinearModel is a direct classifier: per-class scores are an affine map of
// the feature vector. A single weight row makes it a binary logit model.
type LinearModel struct {
	// Weights is classes x features.
	Weights [][]float64
	// Bias has one entry per class.
	Bias []float64
}

// PredictBatch computes W*x + b for every row.
func (m *LinearModel) PredictBatch(x [][]float64) ([][]float64, error) {
	if len(m.Weights) == 0 {
		return nil, fmt.Errorf("linear model has no weights")
	}
	if len(m.Bias) != len(m.Weights) {
		return nil, fmt.Errorf("linear model bias length %d does not match %d classes", len(m.Bias), len(m.Weights))
	}

	out := make([][]float64, len(x))
	for i, row := range x {
		scores := make([]float64, len(m.Weights))
		for c, w := range m.Weights {
			if len(w) != len(row) {
				return nil, fmt.Errorf("feature vector has %d values, model expects %d", len(row), len(w))
			}
			s := m.Bias[c]
			for j, v := range row {
				s += w[j] * v
			}
			scores[c] = s
		}
		out[i] = scores
	}
	return out, nil
}
