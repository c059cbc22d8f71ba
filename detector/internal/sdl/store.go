// Package sdl keeps the latest verdict per UE in Redis, mirroring the RIC
// shared-data-layer convention so co-located xApps (admission control,
// slicing) can read detection state without talking to the detector.
package sdl

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ranwatch-systems/ranwatch/detector/internal/models"
	"github.com/ranwatch-systems/ranwatch/detector/internal/verdict"
)

const defaultKeyPrefix = "ranwatch:verdict:"

// Store holds per-UE verdicts as Redis hashes keyed by UE ID.
type Store struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets an expiry on verdict keys; zero means keep forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithKeyPrefix overrides the key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.keyPrefix = prefix }
}

// New connects to Redis at url (redis://...) and verifies the connection.
func New(ctx context.Context, url string, opts ...Option) (*Store, error) {
	ropts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	s := &Store{client: client, keyPrefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Put upserts the latest verdict for one UE.
func (s *Store) Put(ctx context.Context, v models.Verdict) error {
	key := s.keyPrefix + v.EntityID
	fields := map[string]any{
		"label":      v.Label,
		"subtype":    v.Subtype,
		"rows":       v.Rows,
		"batch_id":   v.BatchID,
		"updated_at": v.Time.UTC().Format(time.RFC3339Nano),
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return nil
}

// Get fetches the stored verdict for a UE. The second return is false when
// nothing is stored.
func (s *Store) Get(ctx context.Context, entityID string) (models.Verdict, bool, error) {
	key := s.keyPrefix + entityID
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return models.Verdict{}, false, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(fields) == 0 {
		return models.Verdict{}, false, nil
	}

	v := models.Verdict{
		EntityID: entityID,
		Label:    fields["label"],
		Subtype:  fields["subtype"],
		BatchID:  fields["batch_id"],
	}
	if ts, err := time.Parse(time.RFC3339Nano, fields["updated_at"]); err == nil {
		v.Time = ts
	}
	if n, err := strconv.Atoi(fields["rows"]); err == nil {
		v.Rows = n
	}
	return v, true, nil
}

// Emit implements verdict.Sink by upserting every verdict in the batch.
func (s *Store) Emit(ctx context.Context, batch verdict.Batch) error {
	for _, v := range batch.Verdicts {
		if err := s.Put(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
