package ingest

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndicationRecords(t *testing.T) {
	raw := `{
		"e2_agent_id": "gnbd_001_001_00019b_0",
		"subscription_id": "sub-42",
		"timestamp": "2026-03-01T12:00:00Z",
		"ue_meas_data": {
			"0": {"granul_period": 1000, "meas_data": {"CQI": 12, "RSRP": "-85.5", "DRB.UEThpDl": [48000.0]}},
			"1": {"granul_period": 1000, "meas_data": {"CQI": null}}
		}
	}`

	var ind IndicationMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &ind))

	records := ind.Records([]string{"CQI", "RSRP", "DRB.UEThpDl"}, time.Now())
	require.Len(t, records, 2)

	byUE := map[string]map[string]float64{}
	for _, rec := range records {
		assert.Equal(t, "gnbd_001_001_00019b_0", rec.AgentID)
		assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), rec.Timestamp)
		byUE[rec.EntityID] = rec.Metrics
	}

	// Plain number, numeric string, and list-wrapped value all coerce.
	assert.Equal(t, 12.0, byUE["0"]["CQI"])
	assert.Equal(t, -85.5, byUE["0"]["RSRP"])
	assert.Equal(t, 48000.0, byUE["0"]["DRB.UEThpDl"])

	// Null coerces to 0; absent metrics are omitted and read as 0 later.
	assert.Equal(t, 0.0, byUE["1"]["CQI"])
	_, present := byUE["1"]["RSRP"]
	assert.False(t, present)
}

func TestIndicationZeroTimestampUsesReceiveTime(t *testing.T) {
	ind := IndicationMessage{
		AgentID: "g1",
		UEMeasData: map[string]UEMeasurement{
			"0": {MeasData: map[string]any{"CQI": 10.0}},
		},
	}

	received := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	records := ind.Records([]string{"CQI"}, received)
	require.Len(t, records, 1)
	assert.Equal(t, received, records[0].Timestamp)
}

func TestIndicationNoUEs(t *testing.T) {
	ind := IndicationMessage{AgentID: "g1"}
	assert.Empty(t, ind.Records([]string{"CQI"}, time.Now()))
}

func TestIndicationOnlyDeclaredMetricsExtracted(t *testing.T) {
	ind := IndicationMessage{
		AgentID: "g1",
		UEMeasData: map[string]UEMeasurement{
			"0": {MeasData: map[string]any{"CQI": 10.0, "Vendor.Custom": 3.0}},
		},
	}

	records := ind.Records([]string{"CQI"}, time.Now())
	require.Len(t, records, 1)
	assert.Equal(t, map[string]float64{"CQI": 10}, records[0].Metrics)
}
