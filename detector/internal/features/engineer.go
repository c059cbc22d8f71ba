// Package features turns batches of raw telemetry records into the
// rolling-window feature rows the cascade models consume.
//
// The transform is deterministic and side-effect-free: records are coerced,
// re-sorted by (agent, UE, timestamp), enriched with epsilon-guarded derived
// signals, rolled per (agent, UE) group with a causal window, and finally
// aligned onto the model's fixed column layout.
package features

import (
	"math"
	"sort"

	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
	"github.com/ranwatch-systems/ranwatch/detector/internal/schema"
)

// epsilon guards every ratio denominator so zero availability/volume
// metrics never produce Inf or NaN.
const epsilon = 1e-5

// DefaultWindow is the rolling window length in samples.
const DefaultWindow = 5

// Engineer computes feature rows from raw telemetry batches.
type Engineer struct {
	sch         *schema.Schema
	metricNames []string
	window      int
}

// Option configures an Engineer.
type Option func(*Engineer)

// WithWindow overrides the rolling window length.
func WithWindow(n int) Option {
	return func(e *Engineer) {
		if n >= 1 {
			e.window = n
		}
	}
}

// NewEngineer creates an engineer that aligns its output to sch and treats
// metricNames as the declared raw metric vocabulary.
func NewEngineer(sch *schema.Schema, metricNames []string, opts ...Option) *Engineer {
	e := &Engineer{
		sch:         sch,
		metricNames: append([]string(nil), metricNames...),
		window:      DefaultWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// groupKey identifies one (agent, UE) series.
type groupKey struct {
	agentID  string
	entityID string
}

// Transform derives one feature row per input record. An empty input yields
// an empty output; malformed numeric input was already coerced away at
// ingestion, and missing metrics read as 0.
func (e *Engineer) Transform(records []models.TelemetryRecord) []models.FeatureRow {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]models.TelemetryRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.AgentID != b.AgentID {
			return a.AgentID < b.AgentID
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		return a.Timestamp.Before(b.Timestamp)
	})

	// Group rows are contiguous after sorting.
	rows := make([]models.FeatureRow, 0, len(sorted))
	for start := 0; start < len(sorted); {
		end := start + 1
		key := groupKey{sorted[start].AgentID, sorted[start].EntityID}
		for end < len(sorted) && sorted[end].AgentID == key.agentID && sorted[end].EntityID == key.entityID {
			end++
		}
		rows = append(rows, e.transformGroup(sorted[start:end])...)
		start = end
	}

	return e.sch.Align(rows)
}

// transformGroup runs derivation, jitter, and rolling aggregation for one
// (agent, UE) series already sorted by timestamp.
func (e *Engineer) transformGroup(group []models.TelemetryRecord) []models.FeatureRow {
	n := len(group)

	// Instantaneous values per signal name, in timestamp order.
	series := make(map[string][]float64)
	put := func(name string, i int, v float64) {
		s, ok := series[name]
		if !ok {
			s = make([]float64, n)
			series[name] = s
		}
		s[i] = v
	}

	for i, rec := range group {
		for _, m := range e.metricNames {
			put(m, i, coerceFinite(rec.Metric(m)))
		}
		derived := deriveRow(rec)
		for name, v := range derived {
			put(name, i, v)
		}
	}

	// First-order delay differences within the group; first row is 0.
	series[schema.FeatureDelayJitterDl] = diffSeries(series[schema.MetricDelayDl])
	series[schema.FeatureDelayJitterUl] = diffSeries(series[schema.MetricDelayUl])

	rolled := append(schema.RollingFeatures(), schema.FlagFeatures()...)
	out := make([]models.FeatureRow, n)
	for i := range out {
		out[i] = models.FeatureRow{
			AgentID:   group[i].AgentID,
			EntityID:  group[i].EntityID,
			Timestamp: group[i].Timestamp,
			Values:    make(map[string]float64, 2*len(rolled)),
		}
	}
	for _, name := range rolled {
		means, stds := rollingStats(series[name], e.window)
		for i := range out {
			out[i].Values[name+"_mean"] = means[i]
			out[i].Values[name+"_std"] = stds[i]
		}
	}
	return out
}

// deriveRow computes the instantaneous derived signals for one record.
func deriveRow(rec models.TelemetryRecord) map[string]float64 {
	prbAvailDl := coerceFinite(rec.Metric(schema.MetricPrbAvailDl))
	prbAvailUl := coerceFinite(rec.Metric(schema.MetricPrbAvailUl))
	prbUsedDl := coerceFinite(rec.Metric(schema.MetricPrbUsedDl))
	prbUsedUl := coerceFinite(rec.Metric(schema.MetricPrbUsedUl))
	thpDl := coerceFinite(rec.Metric(schema.MetricThpDl))
	thpUl := coerceFinite(rec.Metric(schema.MetricThpUl))
	volDl := coerceFinite(rec.Metric(schema.MetricVolumeDl))
	volUl := coerceFinite(rec.Metric(schema.MetricVolumeUl))
	delayDl := coerceFinite(rec.Metric(schema.MetricDelayDl))
	delayUl := coerceFinite(rec.Metric(schema.MetricDelayUl))
	cqi := coerceFinite(rec.Metric(schema.MetricCQI))
	rsrp := coerceFinite(rec.Metric(schema.MetricRSRP))
	rsrq := coerceFinite(rec.Metric(schema.MetricRSRQ))

	utilDl := prbUsedDl / (prbAvailDl + epsilon)
	utilUl := prbUsedUl / (prbAvailUl + epsilon)

	out := map[string]float64{
		schema.FeaturePrbUtilDl:       utilDl,
		schema.FeaturePrbUtilUl:       utilUl,
		schema.FeatureUlPrbEfficiency: thpUl / (prbUsedUl + epsilon),
		schema.FeatureDlPrbEfficiency: thpDl / (prbUsedDl + epsilon),
		schema.FeatureResourceImbal:   math.Abs(utilDl - utilUl),
		schema.FeatureSignalQuality:   (rsrp + rsrq + cqi) / 3,
		schema.FeatureThpAsymmetry:    thpDl / (thpUl + epsilon),
		schema.FeatureUlThpPerVolume:  thpUl / (volUl + epsilon),
		schema.FeatureDlThpPerVolume:  thpDl / (volDl + epsilon),
		schema.FeatureAvgRlcDelay:     (delayDl + delayUl) / 2,
		schema.FeatureDelayImbalance:  delayDl - delayUl,
		schema.FeatureCQINormalized:   cqi / 15.0,
	}

	out[schema.FeatureZeroPrbFlag] = boolToFloat(prbUsedDl == 0 && prbUsedUl == 0)
	out[schema.FeatureZeroThpFlag] = boolToFloat(thpDl == 0 && thpUl == 0)
	out[schema.FeaturePoorSignalFlag] = boolToFloat(cqi < 5 || rsrp < -110 || rsrq < -15)

	return out
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// coerceFinite maps NaN/Inf to 0 so a pathological upstream value can never
// poison a rolling aggregate.
func coerceFinite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
