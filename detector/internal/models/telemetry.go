// Package models defines the data types that flow through the detector:
// raw telemetry records, engineered feature rows, and per-UE verdicts.
package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// TelemetryRecord is one per-UE observation extracted from a KPM indication.
// It is immutable once appended to the ingestion buffer.
type TelemetryRecord struct {
	Timestamp time.Time          `json:"timestamp"`
	AgentID   string             `json:"e2_agent_id"`
	EntityID  string             `json:"ue_id"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Metric returns the named metric, or 0 when it was never reported.
func (r TelemetryRecord) Metric(name string) float64 {
	return r.Metrics[name]
}

// FeatureRow is the engineered representation of one observation for a
// single (agent, UE) pair. Values holds the rolling-statistic columns;
// ordering and zero-fill against the model's column layout is the job of
// schema.Schema.
type FeatureRow struct {
	AgentID   string
	EntityID  string
	Timestamp time.Time
	Values    map[string]float64
}

// Verdict labels.
const (
	LabelBenign    = "Benign"
	LabelMalicious = "Malicious"
	LabelUnknown   = "Unknown"
)

// Verdict is the per-UE, per-batch classification result.
type Verdict struct {
	EntityID string    `json:"ue_id"`
	Label    string    `json:"label"`
	Subtype  string    `json:"subtype"`
	Rows     int       `json:"rows"`
	BatchID  string    `json:"batch_id"`
	Time     time.Time `json:"time"`
}

// String renders the verdict in "Label-subtype" form.
func (v Verdict) String() string {
	if v.Subtype == "" {
		return v.Label
	}
	return v.Label + "-" + v.Subtype
}

// CoerceValue converts a raw indication measurement into a float64.
// KPM measurements arrive in several shapes: plain numbers, numeric
// strings, or list-wrapped values where only the first element matters.
// Anything missing or non-numeric coerces to 0 rather than failing.
func CoerceValue(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	case []any:
		if len(t) == 0 {
			return 0
		}
		return CoerceValue(t[0])
	default:
		return 0
	}
}
