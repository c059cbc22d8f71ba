// Package schema fixes the feature column layout the cascade models were
// trained on. Every feature row handed to a model must carry exactly these
// columns, in this order; anything the engineering stage did not produce is
// zero-filled and anything extra is dropped.
package schema

import (
	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
)

// Raw KPM metric names reported per UE by E2SM-KPM Style 5.
const (
	MetricPrbAvailDl    = "RRU.PrbAvailDl"
	MetricPrbAvailUl    = "RRU.PrbAvailUl"
	MetricPrbUsedDl     = "RRU.PrbUsedDl"
	MetricPrbUsedUl     = "RRU.PrbUsedUl"
	MetricPreambleCell  = "RACH.PreambleDedCell"
	MetricThpDl         = "DRB.UEThpDl"
	MetricThpUl         = "DRB.UEThpUl"
	MetricDropRateDl    = "DRB.RlcPacketDropRateDl"
	MetricVolumeDl      = "DRB.RlcSduTransmittedVolumeDL"
	MetricVolumeUl      = "DRB.RlcSduTransmittedVolumeUL"
	MetricCQI           = "CQI"
	MetricRSRP          = "RSRP"
	MetricRSRQ          = "RSRQ"
	MetricDelayDl       = "DRB.RlcSduDelayDl"
	MetricDelayUl       = "DRB.RlcDelayUl"
)

// Derived feature names produced by the engineering stage.
const (
	FeaturePrbUtilDl        = "PRB_Utilization_Ratio_DL"
	FeaturePrbUtilUl        = "PRB_Utilization_Ratio_UL"
	FeatureUlPrbEfficiency  = "UL_PRB_Efficiency"
	FeatureDlPrbEfficiency  = "DL_PRB_Efficiency"
	FeatureResourceImbal    = "Resource_Imbalance"
	FeatureSignalQuality    = "Signal_Quality_Index"
	FeatureThpAsymmetry     = "Throughput_Asymmetry"
	FeatureUlThpPerVolume   = "UL_Throughput_per_Volume"
	FeatureDlThpPerVolume   = "DL_Throughput_per_Volume"
	FeatureAvgRlcDelay      = "Avg_RlcDelay"
	FeatureDelayImbalance   = "Delay_Imbalance"
	FeatureCQINormalized    = "CQI_Normalized"
	FeatureDelayJitterDl    = "DelayJitterDl"
	FeatureDelayJitterUl    = "DelayJitterUl"
	FeatureZeroPrbFlag      = "Zero_PRB_Flag"
	FeatureZeroThpFlag      = "Zero_Throughput_Flag"
	FeaturePoorSignalFlag   = "Poor_Signal_Flag"
)

// DefaultMetricNames returns the raw KPM metrics the detector subscribes to,
// in subscription order.
func DefaultMetricNames() []string {
	return []string{
		MetricPrbAvailDl, MetricPrbAvailUl, MetricPrbUsedDl, MetricPrbUsedUl,
		MetricPreambleCell, MetricThpDl, MetricThpUl, MetricDropRateDl,
		MetricVolumeDl, MetricVolumeUl, MetricCQI, MetricRSRP, MetricRSRQ,
		MetricDelayDl, MetricDelayUl,
	}
}

// RollingFeatures returns the raw and derived signals that get rolling
// mean/std aggregates, excluding the boolean flags.
func RollingFeatures() []string {
	return []string{
		MetricPrbUsedUl, MetricThpUl, MetricThpDl, MetricVolumeUl,
		MetricVolumeDl, MetricDelayDl, MetricDelayUl, MetricCQI, MetricRSRP,
		FeatureUlPrbEfficiency, FeatureDlPrbEfficiency,
		FeatureUlThpPerVolume, FeatureDlThpPerVolume,
		FeatureAvgRlcDelay, FeatureDelayImbalance, FeatureCQINormalized,
		FeaturePrbUtilDl, FeaturePrbUtilUl, FeatureResourceImbal,
		FeatureSignalQuality, FeatureThpAsymmetry,
		FeatureDelayJitterDl, FeatureDelayJitterUl,
	}
}

// FlagFeatures returns the boolean flag signals, also rolled.
func FlagFeatures() []string {
	return []string{FeatureZeroPrbFlag, FeatureZeroThpFlag, FeaturePoorSignalFlag}
}

// Schema is an ordered list of feature column names.
type Schema struct {
	columns []string
	index   map[string]int
}

// New builds a schema from an ordered column list.
func New(columns []string) *Schema {
	s := &Schema{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range s.columns {
		s.index[c] = i
	}
	return s
}

// Default returns the canonical 52-column layout: mean and std for every
// rolling feature and flag, in rolling order.
func Default() *Schema {
	rolled := append(RollingFeatures(), FlagFeatures()...)
	columns := make([]string, 0, 2*len(rolled))
	for _, f := range rolled {
		columns = append(columns, f+"_mean", f+"_std")
	}
	return New(columns)
}

// Columns returns the ordered column names. The returned slice is shared;
// callers must not mutate it.
func (s *Schema) Columns() []string {
	return s.columns
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Contains reports whether the schema includes the named column.
func (s *Schema) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Vector projects a feature row onto the schema: one value per column in
// schema order, with absent columns zero-filled and extra columns dropped.
func (s *Schema) Vector(row models.FeatureRow) []float64 {
	vec := make([]float64, len(s.columns))
	for i, c := range s.columns {
		vec[i] = row.Values[c] // missing keys read as 0
	}
	return vec
}

// Matrix vectorizes a batch of rows, preserving row order.
func (s *Schema) Matrix(rows []models.FeatureRow) [][]float64 {
	m := make([][]float64, len(rows))
	for i, row := range rows {
		m[i] = s.Vector(row)
	}
	return m
}

// Align rewrites each row's value map to contain exactly the schema columns,
// zero-filling what is missing and dropping what is extra. Row order is
// preserved.
func (s *Schema) Align(rows []models.FeatureRow) []models.FeatureRow {
	out := make([]models.FeatureRow, len(rows))
	for i, row := range rows {
		values := make(map[string]float64, len(s.columns))
		for _, c := range s.columns {
			values[c] = row.Values[c]
		}
		out[i] = models.FeatureRow{
			AgentID:   row.AgentID,
			EntityID:  row.EntityID,
			Timestamp: row.Timestamp,
			Values:    values,
		}
	}
	return out
}
