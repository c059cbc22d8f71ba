// Package pipeline ties the buffer, feature engineer, cascade, and
// aggregator into the detector's ingest-and-process loop.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ranwatch-systems/ranwatch/common/logging"
	"github.com/ranwatch-systems/ranwatch/detector/internal/buffer"
	"github.com/ranwatch-systems/ranwatch/detector/internal/cascade"
	"github.com/ranwatch-systems/ranwatch/detector/internal/features"
	"github.com/ranwatch-systems/ranwatch/detector/internal/metrics"
	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
	"github.com/ranwatch-systems/ranwatch/detector/internal/verdict"
)

// Config bounds the buffer-driven processing cycle.
type Config struct {
	// BatchSize is the buffer depth that triggers processing.
	BatchSize int
	// HardCap is the buffer depth that forces a full reset after
	// processing, bounding memory during long captures.
	HardCap int
}

// DefaultConfig matches the trained deployment: process every 30 records,
// reset at one day of 1 Hz samples.
func DefaultConfig() Config {
	return Config{BatchSize: 30, HardCap: 1440}
}

// Stats is a point-in-time snapshot for the status endpoint.
type Stats struct {
	BufferDepth      int    `json:"buffer_depth"`
	BatchSize        int    `json:"batch_size"`
	HardCap          int    `json:"hard_cap"`
	Batches          uint64 `json:"batches"`
	FailedBatches    uint64 `json:"failed_batches"`
	Resets           uint64 `json:"resets"`
	Records          uint64 `json:"records"`
	CascadeDisabled  bool   `json:"cascade_disabled"`
	LastBatchID      string `json:"last_batch_id,omitempty"`
	LastBatchAt      string `json:"last_batch_at,omitempty"`
	LastBatchRecords int    `json:"last_batch_records,omitempty"`
}

// Pipeline serializes ingestion and processing behind one mutex: batches are
// evaluated in arrival order and the buffer is never mutated mid-inference.
type Pipeline struct {
	cfg      Config
	buf      *buffer.Buffer
	engineer *features.Engineer
	casc     *cascade.Cascade
	sink     verdict.Sink
	logger   *logging.Logger
	now      func() time.Time

	mu               sync.Mutex
	batches          uint64
	failedBatches    uint64
	resets           uint64
	records          uint64
	lastBatchID      string
	lastBatchAt      time.Time
	lastBatchRecords int
}

// New assembles a pipeline. Zero or negative config fields fall back to
// DefaultConfig values.
func New(cfg Config, eng *features.Engineer, casc *cascade.Cascade, sink verdict.Sink, logger *logging.Logger) *Pipeline {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.HardCap <= 0 {
		cfg.HardCap = def.HardCap
	}
	if cfg.HardCap < cfg.BatchSize {
		cfg.HardCap = cfg.BatchSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	if casc.Disabled() {
		metrics.CascadeDisabled.Set(1)
	}

	return &Pipeline{
		cfg:      cfg,
		buf:      buffer.New(cfg.HardCap),
		engineer: eng,
		casc:     casc,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
	}
}

// Ingest appends records and, when the batch threshold is met, processes the
// whole buffer. The hard-cap check runs after processing regardless of
// whether inference succeeded, so a broken model cannot grow the buffer
// without bound.
func (p *Pipeline) Ingest(ctx context.Context, records []models.TelemetryRecord) {
	if len(records) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, rec := range records {
		p.buf.Append(rec)
	}
	p.records += uint64(len(records))
	metrics.RecordsTotal.Add(float64(len(records)))
	metrics.BufferDepth.Set(float64(p.buf.Len()))

	if p.buf.Len() >= p.cfg.BatchSize {
		p.process(ctx)
	}

	if p.buf.Len() >= p.cfg.HardCap {
		p.logger.Info("buffer hard cap reached, resetting",
			"depth", p.buf.Len(), "hard_cap", p.cfg.HardCap)
		p.buf.Reset()
		p.resets++
		metrics.BufferResets.Inc()
		metrics.BufferDepth.Set(0)
	}
}

// process runs one full buffer snapshot through features, cascade, and
// aggregation, then emits the resulting batch. Inference failure drops the
// batch's verdicts but leaves the buffer intact. Caller holds the mutex.
func (p *Pipeline) process(ctx context.Context) {
	snapshot := p.buf.Snapshot()
	batchID := uuid.NewString()
	started := p.now()

	rows := p.engineer.Transform(snapshot)
	preds, err := p.casc.Predict(rows)
	metrics.BatchDuration.Observe(time.Since(started).Seconds())

	p.batches++
	metrics.BatchesTotal.Inc()
	p.lastBatchID = batchID
	p.lastBatchAt = started
	p.lastBatchRecords = len(snapshot)

	if err != nil {
		p.failedBatches++
		metrics.BatchFailures.Inc()
		p.logger.Error("batch inference failed, no verdicts emitted",
			"batch_id", batchID, "records", len(snapshot), "error", err)
		return
	}
	if len(preds) == 0 {
		p.logger.Debug("batch produced no predictions",
			"batch_id", batchID, "records", len(snapshot))
		return
	}

	byEntity := verdict.Aggregate(batchID, started, preds)
	batch := verdict.Batch{ID: batchID, EmittedAt: started}
	for _, v := range byEntity {
		batch.Verdicts = append(batch.Verdicts, v)
		metrics.VerdictsTotal.WithLabelValues(v.Label).Inc()
	}

	if err := p.sink.Emit(ctx, batch); err != nil {
		p.logger.Error("verdict emission failed",
			"batch_id", batchID, "verdicts", len(batch.Verdicts), "error", err)
	}
}

// Stats snapshots pipeline state for the status endpoint.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Stats{
		BufferDepth:     p.buf.Len(),
		BatchSize:       p.cfg.BatchSize,
		HardCap:         p.cfg.HardCap,
		Batches:         p.batches,
		FailedBatches:   p.failedBatches,
		Resets:          p.resets,
		Records:         p.records,
		CascadeDisabled: p.casc.Disabled(),
	}
	if p.lastBatchID != "" {
		s.LastBatchID = p.lastBatchID
		s.LastBatchAt = p.lastBatchAt.UTC().Format(time.RFC3339Nano)
		s.LastBatchRecords = p.lastBatchRecords
	}
	return s
}
