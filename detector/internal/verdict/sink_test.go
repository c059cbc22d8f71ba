package verdict

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ranwatch-systems/ranwatch/common/messaging"
	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
)

// mockPublisher records published subjects and payloads.
type mockPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *mockPublisher) Publish(_ context.Context, subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func (p *mockPublisher) PublishJSON(ctx context.Context, subject string, data interface{}) error {
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return p.Publish(ctx, subject, bytes)
}

func (p *mockPublisher) Close() error { return nil }

// captureSink remembers every batch it sees.
type captureSink struct {
	batches []Batch
	err     error
}

func (s *captureSink) Emit(_ context.Context, batch Batch) error {
	s.batches = append(s.batches, batch)
	return s.err
}

func testBatch() Batch {
	return Batch{
		ID:        "batch-1",
		EmittedAt: time.Unix(1000, 0).UTC(),
		Verdicts: []models.Verdict{
			{EntityID: "7", Label: models.LabelBenign, Subtype: "embb", Rows: 5, BatchID: "batch-1"},
		},
	}
}

func TestNATSSinkPublishesBatch(t *testing.T) {
	pub := &mockPublisher{}
	sink := NewNATSSink(pub, "")

	require.NoError(t, sink.Emit(context.Background(), testBatch()))
	require.Len(t, pub.subjects, 1)
	assert.Equal(t, messaging.SubjectDetectorVerdictsCreated, pub.subjects[0])

	var got Batch
	require.NoError(t, json.Unmarshal(pub.payloads[0], &got))
	assert.Equal(t, "batch-1", got.ID)
	require.Len(t, got.Verdicts, 1)
	assert.Equal(t, "7", got.Verdicts[0].EntityID)
	assert.Equal(t, models.LabelBenign, got.Verdicts[0].Label)
}

func TestNATSSinkCustomSubject(t *testing.T) {
	pub := &mockPublisher{}
	sink := NewNATSSink(pub, "custom.subject")

	require.NoError(t, sink.Emit(context.Background(), testBatch()))
	assert.Equal(t, []string{"custom.subject"}, pub.subjects)
}

func TestMultiSinkDeliversToAll(t *testing.T) {
	a := &captureSink{}
	b := &captureSink{}
	sink := NewMultiSink(a, b)

	require.NoError(t, sink.Emit(context.Background(), testBatch()))
	assert.Len(t, a.batches, 1)
	assert.Len(t, b.batches, 1)
}

func TestMultiSinkFailureDoesNotSkipOthers(t *testing.T) {
	a := &captureSink{err: errors.New("a failed")}
	b := &captureSink{}
	sink := NewMultiSink(a, b)

	err := sink.Emit(context.Background(), testBatch())
	assert.Error(t, err)
	// The failing sink does not block the healthy one.
	assert.Len(t, b.batches, 1)
}

func TestLogSinkNeverFails(t *testing.T) {
	sink := NewLogSink(nil)
	assert.NoError(t, sink.Emit(context.Background(), testBatch()))
	assert.NoError(t, sink.Emit(context.Background(), Batch{ID: "empty"}))
}
