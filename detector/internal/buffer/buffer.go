// Package buffer implements the bounded ingestion buffer for telemetry
// records. The buffer is passive storage: the pipeline decides when to
// process and when to reset, the buffer never triggers anything itself.
package buffer

import (
	"sync"

	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
)

// Buffer accumulates telemetry records in arrival order.
type Buffer struct {
	mu      sync.Mutex
	records []models.TelemetryRecord
}

// New creates a buffer. capacityHint pre-sizes the backing slice; pass the
// hard cap to avoid re-allocation during a full fill cycle.
func New(capacityHint int) *Buffer {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &Buffer{records: make([]models.TelemetryRecord, 0, capacityHint)}
}

// Append adds one record. It never fails and never drops.
func (b *Buffer) Append(rec models.TelemetryRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, rec)
}

// Len returns the current record count.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Snapshot returns a copy of the full ordered contents. Feature engineering
// may run several times against a growing buffer before it is cleared, so
// the contents are never handed out by reference.
func (b *Buffer) Snapshot() []models.TelemetryRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.TelemetryRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Reset empties the buffer entirely, keeping the backing capacity.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = b.records[:0]
}
