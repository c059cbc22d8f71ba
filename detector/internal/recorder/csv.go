// Package recorder appends raw telemetry records to a CSV file so field
// captures can be replayed through training later.
package recorder

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
)

// CSV writes one row per (agent, UE) record with a fixed metric column set.
// The header is written once when the file is created; reopening an existing
// file appends.
type CSV struct {
	mu      sync.Mutex
	file    *os.File
	w       *csv.Writer
	metrics []string
}

// OpenCSV opens or creates path and prepares it for appending. metricNames
// fixes the column order for every subsequent row.
func OpenCSV(path string, metricNames []string) (*CSV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create recorder dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open recorder file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat recorder file: %w", err)
	}

	r := &CSV{
		file:    f,
		w:       csv.NewWriter(f),
		metrics: append([]string(nil), metricNames...),
	}

	if info.Size() == 0 {
		header := append([]string{"Timestamp", "E2AgentID", "UE_ID"}, r.metrics...)
		if err := r.w.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write recorder header: %w", err)
		}
		r.w.Flush()
		if err := r.w.Error(); err != nil {
			f.Close()
			return nil, fmt.Errorf("flush recorder header: %w", err)
		}
	}
	return r, nil
}

// Record appends one row per record, flushing after the group so a crash
// loses at most the in-flight indication.
func (r *CSV) Record(records []models.TelemetryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range records {
		row := make([]string, 0, 3+len(r.metrics))
		row = append(row,
			rec.Timestamp.UTC().Format(time.RFC3339Nano),
			rec.AgentID,
			rec.EntityID,
		)
		for _, name := range r.metrics {
			row = append(row, strconv.FormatFloat(rec.Metric(name), 'g', -1, 64))
		}
		if err := r.w.Write(row); err != nil {
			return fmt.Errorf("write recorder row: %w", err)
		}
	}

	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("flush recorder rows: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (r *CSV) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}
