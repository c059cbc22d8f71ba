// Package cascade implements the two-stage classifier: a binary
// benign/malicious decision per row, followed by a subtype decision from
// whichever branch model Stage 1 selected.
package cascade

import (
	"fmt"
	"math"
)

// Model is the single capability the cascade depends on. PredictBatch
// scores a feature matrix and returns one score row per input row: either a
// single score (binary logit) or one score per class. The cascade never
// depends on a concrete model kind.
type Model interface {
	PredictBatch(x [][]float64) ([][]float64, error)
}

// decodeClass turns one score row into a class index. A single score is
// treated as a malicious-probability logit thresholded at 0.5 after a
// sigmoid; a score vector decodes by argmax.
func decodeClass(scores []float64) (int, error) {
	switch {
	case len(scores) == 0:
		return 0, fmt.Errorf("empty score row")
	case len(scores) == 1:
		if sigmoid(scores[0]) > 0.5 {
			return 1, nil
		}
		return 0, nil
	default:
		return argmax(scores), nil
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
