package verdict

import (
	"context"
	"errors"
	"sort"

	"github.com/ranwatch-systems/ranwatch/common/logging"
	"github.com/ranwatch-systems/ranwatch/common/messaging"
	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
)

// Sink receives every finished batch. The core mandates no transport:
// logging, forwarding over the bus, and writing to the shared data layer
// are all sinks.
type Sink interface {
	Emit(ctx context.Context, batch Batch) error
}

// LogSink writes one line per verdict plus a batch summary.
type LogSink struct {
	logger *logging.Logger
}

// NewLogSink creates a sink that logs verdicts.
func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

// Emit logs each verdict in stable UE order.
func (s *LogSink) Emit(_ context.Context, batch Batch) error {
	verdicts := append([]models.Verdict(nil), batch.Verdicts...)
	sort.Slice(verdicts, func(i, j int) bool { return verdicts[i].EntityID < verdicts[j].EntityID })
	for _, v := range verdicts {
		s.logger.Info("verdict",
			"batch_id", batch.ID, "ue_id", v.EntityID,
			"label", v.Label, "subtype", v.Subtype, "rows", v.Rows)
	}
	s.logger.Info("batch complete", "batch_id", batch.ID, "ues", len(verdicts))
	return nil
}

// NATSSink forwards finished batches to the message bus.
type NATSSink struct {
	publisher messaging.Publisher
	subject   string
}

// NewNATSSink creates a sink publishing to subject (defaults to
// messaging.SubjectDetectorVerdictsCreated).
func NewNATSSink(publisher messaging.Publisher, subject string) *NATSSink {
	if subject == "" {
		subject = messaging.SubjectDetectorVerdictsCreated
	}
	return &NATSSink{publisher: publisher, subject: subject}
}

// Emit publishes the batch as one JSON message.
func (s *NATSSink) Emit(ctx context.Context, batch Batch) error {
	return s.publisher.PublishJSON(ctx, s.subject, batch)
}

// MultiSink fans a batch out to several sinks. Every sink sees the batch
// even when an earlier one fails; failures are joined into one error.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Emit delivers the batch to every sink.
func (s *MultiSink) Emit(ctx context.Context, batch Batch) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Emit(ctx, batch); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
