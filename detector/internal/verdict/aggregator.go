// Package verdict reduces per-row cascade predictions to one verdict per
// UE per processed batch, and fans finished batches out to sinks.
package verdict

import (
	"sort"
	"time"

	"github.com/ranwatch-systems/ranwatch/detector/internal/cascade"
	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
)

// Batch is one processed batch's worth of verdicts.
type Batch struct {
	ID        string           `json:"batch_id"`
	EmittedAt time.Time        `json:"emitted_at"`
	Verdicts  []models.Verdict `json:"verdicts"`
}

// Aggregate groups row predictions by UE and applies the consensus rule:
// any malicious row promotes the UE to Malicious, with the subtype decided
// by majority vote among that UE's malicious rows; otherwise the UE is
// Benign with the majority benign subtype. Equal-count ties break to the
// lexicographically smallest subtype so results never depend on row order.
// A UE whose rows carry no usable branch label comes back Unknown.
func Aggregate(batchID string, at time.Time, preds []cascade.RowPrediction) map[string]models.Verdict {
	type tally struct {
		rows      int
		malicious map[string]int
		benign    map[string]int
	}

	byEntity := make(map[string]*tally)
	order := make([]string, 0)
	for _, p := range preds {
		t, ok := byEntity[p.EntityID]
		if !ok {
			t = &tally{malicious: map[string]int{}, benign: map[string]int{}}
			byEntity[p.EntityID] = t
			order = append(order, p.EntityID)
		}
		t.rows++
		if p.Subtype == "" {
			continue
		}
		if p.Malicious {
			t.malicious[p.Subtype]++
		} else {
			t.benign[p.Subtype]++
		}
	}

	out := make(map[string]models.Verdict, len(byEntity))
	for _, entity := range order {
		t := byEntity[entity]
		v := models.Verdict{
			EntityID: entity,
			Rows:     t.rows,
			BatchID:  batchID,
			Time:     at,
		}
		switch {
		case len(t.malicious) > 0:
			v.Label = models.LabelMalicious
			v.Subtype = majority(t.malicious)
		case len(t.benign) > 0:
			v.Label = models.LabelBenign
			v.Subtype = majority(t.benign)
		default:
			v.Label = models.LabelUnknown
		}
		out[entity] = v
	}
	return out
}

// majority picks the subtype with the highest count; ties resolve to the
// lexicographically smallest name.
func majority(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	best := names[0]
	for _, name := range names[1:] {
		if counts[name] > counts[best] {
			best = name
		}
	}
	return best
}
