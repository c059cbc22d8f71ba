package cascade

import (
	"encoding/json"
	"fmt"
	"os"
)

// Artifact is the on-disk form of one serialized model: the model kind and
// parameters, paired with the ordered feature-name list it was trained on.
type Artifact struct {
	Kind     string      `json:"kind"` // "linear" or "mlp"
	Features []string    `json:"features"`
	Weights  [][]float64 `json:"weights,omitempty"`
	Bias     []float64   `json:"bias,omitempty"`
	Layers   []Layer     `json:"layers,omitempty"`
}

// LoadResult is the outcome of loading one model artifact. A load failure
// is carried as a value, not raised: callers inspect Err and degrade to a
// disabled cascade instead of aborting the process.
type LoadResult struct {
	Path     string
	Model    Model
	Features []string
	Err      error
}

// Available reports whether the artifact loaded into a usable model.
func (r LoadResult) Available() bool {
	return r.Err == nil && r.Model != nil
}

// Load reads and decodes a model artifact from disk.
func Load(path string) LoadResult {
	res := LoadResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read artifact: %w", err)
		return res
	}

	var art Artifact
	if err := json.Unmarshal(data, &art); err != nil {
		res.Err = fmt.Errorf("parse artifact: %w", err)
		return res
	}

	model, err := art.Build()
	if err != nil {
		res.Err = err
		return res
	}

	res.Model = model
	res.Features = art.Features
	return res
}

// Build constructs the runtime model from artifact parameters.
func (a Artifact) Build() (Model, error) {
	switch a.Kind {
	case "linear":
		if len(a.Weights) == 0 {
			return nil, fmt.Errorf("linear artifact has no weights")
		}
		return &LinearModel{Weights: a.Weights, Bias: a.Bias}, nil
	case "mlp":
		if len(a.Layers) == 0 {
			return nil, fmt.Errorf("mlp artifact has no layers")
		}
		return &MLPModel{Layers: a.Layers}, nil
	default:
		return nil, fmt.Errorf("unknown model kind %q", a.Kind)
	}
}
