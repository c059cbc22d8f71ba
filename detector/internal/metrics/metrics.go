package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics
	IndicationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranwatch_detector_indications_total",
			Help: "Total number of KPM indications received",
		},
	)

	RecordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranwatch_detector_records_total",
			Help: "Total number of per-UE telemetry records ingested",
		},
	)

	// Buffer metrics
	BufferDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranwatch_detector_buffer_depth",
			Help: "Current number of records in the ingestion buffer",
		},
	)

	BufferResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranwatch_detector_buffer_resets_total",
			Help: "Total number of hard-cap buffer resets",
		},
	)

	// Batch processing metrics
	BatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranwatch_detector_batches_total",
			Help: "Total number of processed batches",
		},
	)

	BatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranwatch_detector_batch_failures_total",
			Help: "Total number of batches that yielded no verdicts due to inference failure",
		},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranwatch_detector_batch_duration_seconds",
			Help:    "Duration of feature engineering plus inference per batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Verdict metrics
	VerdictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranwatch_detector_verdicts_total",
			Help: "Total number of emitted per-UE verdicts",
		},
		[]string{"label"},
	)

	// Model state
	CascadeDisabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ranwatch_detector_cascade_disabled",
			Help: "1 when prediction is disabled due to a model load failure",
		},
	)
)
