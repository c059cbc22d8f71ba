package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
	"github.com/ranwatch-systems/ranwatch/detector/internal/schema"
)

func record(agent, ue string, at time.Time, metrics map[string]float64) models.TelemetryRecord {
	return models.TelemetryRecord{Timestamp: at, AgentID: agent, EntityID: ue, Metrics: metrics}
}

func healthyMetrics() map[string]float64 {
	return map[string]float64{
		schema.MetricPrbAvailDl: 106, schema.MetricPrbAvailUl: 106,
		schema.MetricPrbUsedDl: 50, schema.MetricPrbUsedUl: 20,
		schema.MetricThpDl: 80000, schema.MetricThpUl: 12000,
		schema.MetricVolumeDl: 10000, schema.MetricVolumeUl: 1500,
		schema.MetricDelayDl: 8, schema.MetricDelayUl: 10,
		schema.MetricCQI: 12, schema.MetricRSRP: -85, schema.MetricRSRQ: -10,
	}
}

func TestTransformEmptyInput(t *testing.T) {
	e := NewEngineer(schema.Default(), schema.DefaultMetricNames())
	assert.Nil(t, e.Transform(nil))
	assert.Nil(t, e.Transform([]models.TelemetryRecord{}))
}

func TestTransformAlignsToSchema(t *testing.T) {
	sch := schema.Default()
	e := NewEngineer(sch, schema.DefaultMetricNames())

	rows := e.Transform([]models.TelemetryRecord{
		record("g1", "7", time.Unix(100, 0), healthyMetrics()),
	})

	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Values, sch.Len())
	for _, col := range sch.Columns() {
		assert.Contains(t, rows[0].Values, col)
	}
}

func TestTransformAllZeroMetricsStaysFinite(t *testing.T) {
	sch := schema.Default()
	e := NewEngineer(sch, schema.DefaultMetricNames())

	rows := e.Transform([]models.TelemetryRecord{
		record("g1", "7", time.Unix(100, 0), map[string]float64{}),
		record("g1", "7", time.Unix(101, 0), map[string]float64{}),
	})

	require.Len(t, rows, 2)
	for _, row := range rows {
		for col, v := range row.Values {
			assert.Falsef(t, math.IsNaN(v) || math.IsInf(v, 0), "column %s is %v", col, v)
		}
	}
}

func TestTransformSingleRecordStdIsZero(t *testing.T) {
	sch := schema.Default()
	e := NewEngineer(sch, schema.DefaultMetricNames())

	rows := e.Transform([]models.TelemetryRecord{
		record("g1", "7", time.Unix(100, 0), healthyMetrics()),
	})

	require.Len(t, rows, 1)
	for col, v := range rows[0].Values {
		if len(col) > 4 && col[len(col)-4:] == "_std" {
			assert.Zerof(t, v, "column %s", col)
		}
	}
	// Mean of a single sample is the sample itself.
	assert.Equal(t, 12.0, rows[0].Values[schema.MetricCQI+"_mean"])
}

func TestTransformDerivedFormulas(t *testing.T) {
	cols := []string{
		schema.FeaturePrbUtilDl + "_mean",
		schema.FeatureSignalQuality + "_mean",
		schema.FeatureCQINormalized + "_mean",
		schema.FeatureDelayImbalance + "_mean",
		schema.FeatureAvgRlcDelay + "_mean",
	}
	e := NewEngineer(schema.New(cols), schema.DefaultMetricNames())

	rows := e.Transform([]models.TelemetryRecord{
		record("g1", "7", time.Unix(100, 0), healthyMetrics()),
	})
	require.Len(t, rows, 1)
	v := rows[0].Values

	assert.InDelta(t, 50.0/(106.0+1e-5), v[schema.FeaturePrbUtilDl+"_mean"], 1e-9)
	assert.InDelta(t, (-85.0-10.0+12.0)/3, v[schema.FeatureSignalQuality+"_mean"], 1e-9)
	assert.InDelta(t, 12.0/15.0, v[schema.FeatureCQINormalized+"_mean"], 1e-9)
	// Signed downlink-minus-uplink delay difference.
	assert.InDelta(t, -2.0, v[schema.FeatureDelayImbalance+"_mean"], 1e-9)
	assert.InDelta(t, 9.0, v[schema.FeatureAvgRlcDelay+"_mean"], 1e-9)
}

func TestTransformFlags(t *testing.T) {
	cols := []string{
		schema.FeatureZeroPrbFlag + "_mean",
		schema.FeatureZeroThpFlag + "_mean",
		schema.FeaturePoorSignalFlag + "_mean",
	}
	e := NewEngineer(schema.New(cols), schema.DefaultMetricNames())

	// Silent UE with bad signal: everything zero except a weak RSRP.
	rows := e.Transform([]models.TelemetryRecord{
		record("g1", "7", time.Unix(100, 0), map[string]float64{
			schema.MetricRSRP: -120, schema.MetricCQI: 9, schema.MetricRSRQ: -10,
		}),
	})
	require.Len(t, rows, 1)
	assert.Equal(t, 1.0, rows[0].Values[schema.FeatureZeroPrbFlag+"_mean"])
	assert.Equal(t, 1.0, rows[0].Values[schema.FeatureZeroThpFlag+"_mean"])
	assert.Equal(t, 1.0, rows[0].Values[schema.FeaturePoorSignalFlag+"_mean"])

	// Healthy UE: all flags clear.
	rows = e.Transform([]models.TelemetryRecord{
		record("g1", "7", time.Unix(100, 0), healthyMetrics()),
	})
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].Values[schema.FeatureZeroPrbFlag+"_mean"])
	assert.Equal(t, 0.0, rows[0].Values[schema.FeatureZeroThpFlag+"_mean"])
	assert.Equal(t, 0.0, rows[0].Values[schema.FeaturePoorSignalFlag+"_mean"])
}

func TestTransformJitterFirstRowZero(t *testing.T) {
	cols := []string{schema.FeatureDelayJitterDl + "_mean"}
	e := NewEngineer(schema.New(cols), schema.DefaultMetricNames(), WithWindow(1))

	m1 := healthyMetrics()
	m2 := healthyMetrics()
	m2[schema.MetricDelayDl] = 14 // +6 over m1's 8

	rows := e.Transform([]models.TelemetryRecord{
		record("g1", "7", time.Unix(100, 0), m1),
		record("g1", "7", time.Unix(101, 0), m2),
	})
	require.Len(t, rows, 2)
	assert.Equal(t, 0.0, rows[0].Values[schema.FeatureDelayJitterDl+"_mean"])
	assert.InDelta(t, 6.0, rows[1].Values[schema.FeatureDelayJitterDl+"_mean"], 1e-9)
}

func TestTransformGroupsAreIndependent(t *testing.T) {
	cols := []string{schema.MetricCQI + "_mean", schema.MetricCQI + "_std"}
	e := NewEngineer(schema.New(cols), schema.DefaultMetricNames())

	m1 := healthyMetrics()
	m1[schema.MetricCQI] = 4
	m2 := healthyMetrics()
	m2[schema.MetricCQI] = 14

	// Interleaved arrival; grouping must separate the two UEs.
	rows := e.Transform([]models.TelemetryRecord{
		record("g1", "a", time.Unix(100, 0), m1),
		record("g1", "b", time.Unix(100, 0), m2),
		record("g1", "a", time.Unix(101, 0), m1),
		record("g1", "b", time.Unix(101, 0), m2),
	})
	require.Len(t, rows, 4)

	for _, row := range rows {
		switch row.EntityID {
		case "a":
			assert.Equal(t, 4.0, row.Values[schema.MetricCQI+"_mean"])
		case "b":
			assert.Equal(t, 14.0, row.Values[schema.MetricCQI+"_mean"])
		}
		assert.Zero(t, row.Values[schema.MetricCQI+"_std"])
	}
}

func TestTransformSortsWithinGroupByTimestamp(t *testing.T) {
	cols := []string{schema.FeatureDelayJitterDl + "_mean"}
	e := NewEngineer(schema.New(cols), schema.DefaultMetricNames(), WithWindow(1))

	m1 := healthyMetrics()
	m1[schema.MetricDelayDl] = 10
	m2 := healthyMetrics()
	m2[schema.MetricDelayDl] = 13

	// Out-of-order arrival: the later sample first.
	rows := e.Transform([]models.TelemetryRecord{
		record("g1", "7", time.Unix(200, 0), m2),
		record("g1", "7", time.Unix(100, 0), m1),
	})
	require.Len(t, rows, 2)

	// Output follows timestamp order and jitter reflects it.
	assert.Equal(t, time.Unix(100, 0), rows[0].Timestamp)
	assert.Equal(t, 0.0, rows[0].Values[schema.FeatureDelayJitterDl+"_mean"])
	assert.InDelta(t, 3.0, rows[1].Values[schema.FeatureDelayJitterDl+"_mean"], 1e-9)
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	e := NewEngineer(schema.Default(), schema.DefaultMetricNames())

	in := []models.TelemetryRecord{
		record("g1", "b", time.Unix(101, 0), healthyMetrics()),
		record("g1", "a", time.Unix(100, 0), healthyMetrics()),
	}
	_ = e.Transform(in)

	assert.Equal(t, "b", in[0].EntityID)
	assert.Equal(t, "a", in[1].EntityID)
}
