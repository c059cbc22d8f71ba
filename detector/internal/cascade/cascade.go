package cascade

import (
	"fmt"

	"github.com/ranwatch-systems/ranwatch/common/logging"
	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
	"github.com/ranwatch-systems/ranwatch/detector/internal/schema"
)

// Labels holds the subtype vocabularies the Stage-2 models decode into.
type Labels struct {
	Benign    []string
	Malicious []string
}

// DefaultLabels returns the trained class orderings.
func DefaultLabels() Labels {
	return Labels{
		Benign: []string{"embb", "mtc", "urllc", "voip"},
		Malicious: []string{
			"parallel_tcp_flood",
			"udp_fragmentation_flood",
			"udp_flood",
			"small_packet_flood",
			"pulsing_udp_flood",
			"parallel_udp_flood",
		},
	}
}

// RowPrediction is the cascade's per-row output.
type RowPrediction struct {
	AgentID   string
	EntityID  string
	Malicious bool
	Subtype   string
}

// Label renders "Benign-<subtype>" or "Malicious-<subtype>".
func (p RowPrediction) Label() string {
	if p.Malicious {
		return models.LabelMalicious + "-" + p.Subtype
	}
	return models.LabelBenign + "-" + p.Subtype
}

// Cascade applies Stage 1 then the branch-selected Stage 2 model per row.
// If any artifact failed to load the cascade starts disabled: Predict is a
// logged no-op that yields no verdicts, so a broken model file in the field
// degrades detection instead of taking the xApp down.
type Cascade struct {
	s1          Model
	s2Benign    Model
	s2Malicious Model
	labels      Labels
	sch         *schema.Schema
	logger      *logging.Logger
	disabled    bool
	reason      string
}

// New wires the three loaded artifacts into a cascade. Any load failure
// disables prediction; the failure is logged once here.
func New(sch *schema.Schema, labels Labels, s1, s2Benign, s2Malicious LoadResult, logger *logging.Logger) *Cascade {
	if logger == nil {
		logger = logging.Default()
	}
	c := &Cascade{
		s1:          s1.Model,
		s2Benign:    s2Benign.Model,
		s2Malicious: s2Malicious.Model,
		labels:      labels,
		sch:         sch,
		logger:      logger,
	}

	for _, res := range []struct {
		name string
		r    LoadResult
	}{
		{"stage1", s1},
		{"stage2-benign", s2Benign},
		{"stage2-malicious", s2Malicious},
	} {
		if !res.r.Available() {
			c.disabled = true
			c.reason = fmt.Sprintf("%s model unavailable", res.name)
			logger.Warn("model artifact unavailable, prediction disabled",
				"model", res.name, "path", res.r.Path, "error", res.r.Err)
		}
	}
	if !c.disabled {
		logger.Info("cascade models loaded",
			"stage1", s1.Path, "stage2_benign", s2Benign.Path, "stage2_malicious", s2Malicious.Path)
	}
	return c
}

// Disabled reports whether prediction is unavailable.
func (c *Cascade) Disabled() bool {
	return c.disabled
}

// DisabledReason returns why prediction is unavailable, or "".
func (c *Cascade) DisabledReason() string {
	return c.reason
}

// Predict classifies a batch of schema-aligned feature rows. A disabled
// cascade returns no predictions and no error; an inference failure returns
// an error and the whole batch yields nothing.
func (c *Cascade) Predict(rows []models.FeatureRow) ([]RowPrediction, error) {
	if c.disabled {
		c.logger.Debug("prediction skipped, cascade disabled", "reason", c.reason)
		return nil, nil
	}
	if len(rows) == 0 {
		return nil, nil
	}

	x := c.sch.Matrix(rows)

	s1Scores, err := c.s1.PredictBatch(x)
	if err != nil {
		return nil, fmt.Errorf("stage1 inference: %w", err)
	}
	if len(s1Scores) != len(rows) {
		return nil, fmt.Errorf("stage1 returned %d score rows for %d inputs", len(s1Scores), len(rows))
	}

	preds := make([]RowPrediction, len(rows))
	var benignIdx, maliciousIdx []int
	for i, scores := range s1Scores {
		cls, err := decodeClass(scores)
		if err != nil {
			return nil, fmt.Errorf("stage1 row %d: %w", i, err)
		}
		malicious := cls == 1
		preds[i] = RowPrediction{
			AgentID:   rows[i].AgentID,
			EntityID:  rows[i].EntityID,
			Malicious: malicious,
		}
		if malicious {
			maliciousIdx = append(maliciousIdx, i)
		} else {
			benignIdx = append(benignIdx, i)
		}
	}

	if err := c.runStage2(x, preds, benignIdx, c.s2Benign, c.labels.Benign, "benign"); err != nil {
		return nil, err
	}
	if err := c.runStage2(x, preds, maliciousIdx, c.s2Malicious, c.labels.Malicious, "malicious"); err != nil {
		return nil, err
	}

	return preds, nil
}

// runStage2 scores the branch subset as one batch and decodes subtypes
// against the branch vocabulary.
func (c *Cascade) runStage2(x [][]float64, preds []RowPrediction, idx []int, model Model, vocab []string, branch string) error {
	if len(idx) == 0 {
		return nil
	}

	sub := make([][]float64, len(idx))
	for i, ri := range idx {
		sub[i] = x[ri]
	}

	scores, err := model.PredictBatch(sub)
	if err != nil {
		return fmt.Errorf("stage2 %s inference: %w", branch, err)
	}
	if len(scores) != len(idx) {
		return fmt.Errorf("stage2 %s returned %d score rows for %d inputs", branch, len(scores), len(idx))
	}

	for i, ri := range idx {
		cls, err := decodeClass(scores[i])
		if err != nil {
			return fmt.Errorf("stage2 %s row %d: %w", branch, ri, err)
		}
		if cls < 0 || cls >= len(vocab) {
			return fmt.Errorf("stage2 %s class index %d outside vocabulary of %d", branch, cls, len(vocab))
		}
		preds[ri].Subtype = vocab[cls]
	}
	return nil
}
