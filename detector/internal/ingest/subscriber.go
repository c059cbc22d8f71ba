package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ranwatch-systems/ranwatch/common/logging"
	"github.com/ranwatch-systems/ranwatch/common/messaging"
	"github.com/ranwatch-systems/ranwatch/detector/internal/metrics"
	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
	"github.com/ranwatch-systems/ranwatch/detector/internal/pipeline"
)

// Recorder persists raw records as they arrive. Optional.
type Recorder interface {
	Record(records []models.TelemetryRecord) error
}

// Subscriber consumes KPM indications off the bus and pushes them through
// the pipeline. Workers in the same queue group share the subject, so each
// indication is processed exactly once per deployment.
type Subscriber struct {
	bus         messaging.Subscriber
	pipe        *pipeline.Pipeline
	recorder    Recorder
	logger      *logging.Logger
	subject     string
	queue       string
	metricNames []string

	sub messaging.Subscription
}

// Config configures a Subscriber.
type Config struct {
	// Subject defaults to messaging.SubjectTelemetryKPMIndicationAll.
	Subject string
	// Queue defaults to messaging.QueueDetectorWorkers.
	Queue string
	// MetricNames is the raw metric vocabulary extracted per UE.
	MetricNames []string
	// Recorder, when non-nil, receives every decoded record.
	Recorder Recorder
}

// NewSubscriber wires a subscriber to the bus and pipeline.
func NewSubscriber(bus messaging.Subscriber, pipe *pipeline.Pipeline, cfg Config, logger *logging.Logger) *Subscriber {
	if cfg.Subject == "" {
		cfg.Subject = messaging.SubjectTelemetryKPMIndicationAll
	}
	if cfg.Queue == "" {
		cfg.Queue = messaging.QueueDetectorWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Subscriber{
		bus:         bus,
		pipe:        pipe,
		recorder:    cfg.Recorder,
		logger:      logger,
		subject:     cfg.Subject,
		queue:       cfg.Queue,
		metricNames: append([]string(nil), cfg.MetricNames...),
	}
}

// Start subscribes to the indication subject. Message handling runs until
// Stop or the bus connection closes.
func (s *Subscriber) Start(ctx context.Context) error {
	sub, err := s.bus.QueueSubscribe(s.subject, s.queue, func(_ context.Context, msg *messaging.Message) error {
		return s.handle(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	s.sub = sub
	s.logger.Info("ingestion started", "subject", s.subject, "queue", s.queue)
	return nil
}

// Stop unsubscribes from the bus.
func (s *Subscriber) Stop() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Unsubscribe()
}

// handle decodes one indication and ingests its records. Decode failures are
// logged and dropped; one malformed publisher must not stall the queue.
func (s *Subscriber) handle(ctx context.Context, msg *messaging.Message) error {
	metrics.IndicationsTotal.Inc()

	var ind IndicationMessage
	if err := json.Unmarshal(msg.Data, &ind); err != nil {
		s.logger.Warn("dropping malformed indication",
			"subject", msg.Subject, "bytes", len(msg.Data), "error", err)
		return nil
	}

	records := ind.Records(s.metricNames, time.Now())
	if len(records) == 0 {
		s.logger.Debug("indication carried no UE measurements",
			"agent_id", ind.AgentID, "subscription_id", ind.SubscriptionID)
		return nil
	}

	if s.recorder != nil {
		if err := s.recorder.Record(records); err != nil {
			s.logger.Warn("recorder write failed", "records", len(records), "error", err)
		}
	}

	s.pipe.Ingest(ctx, records)
	return nil
}
