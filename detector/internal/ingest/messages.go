// Package ingest consumes KPM indication messages from the bus and feeds
// the resulting telemetry records into the pipeline.
package ingest

import (
	"time"

	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
)

// UEMeasurement is one UE's measurement block inside an indication.
type UEMeasurement struct {
	GranularityPeriod int            `json:"granul_period"`
	MeasData          map[string]any `json:"meas_data"`
}

// IndicationMessage is the JSON payload published per KPM report. The
// measurement values are left untyped: RIC stacks variously encode them as
// numbers, strings, or single-element lists.
type IndicationMessage struct {
	AgentID        string                   `json:"e2_agent_id"`
	SubscriptionID string                   `json:"subscription_id"`
	Timestamp      time.Time                `json:"timestamp"`
	UEMeasData     map[string]UEMeasurement `json:"ue_meas_data"`
}

// Records flattens the indication into one record per UE, coercing each
// declared metric to a float. Metrics absent from a UE's block are simply
// omitted and later read as 0. A zero message timestamp falls back to the
// receive time.
func (m IndicationMessage) Records(metricNames []string, received time.Time) []models.TelemetryRecord {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = received
	}

	records := make([]models.TelemetryRecord, 0, len(m.UEMeasData))
	for ueID, meas := range m.UEMeasData {
		rec := models.TelemetryRecord{
			Timestamp: ts,
			AgentID:   m.AgentID,
			EntityID:  ueID,
			Metrics:   make(map[string]float64, len(metricNames)),
		}
		for _, name := range metricNames {
			raw, ok := meas.MeasData[name]
			if !ok {
				continue
			}
			rec.Metrics[name] = models.CoerceValue(raw)
		}
		records = append(records, rec)
	}
	return records
}
