package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stream sink defaults.
const (
	DefaultStream   = "breakdown:events"
	DefaultDedupTTL = 24 * time.Hour
	DefaultMaxLen   = 100_000
)

// RedisSinkOptions configures a RedisSink.
type RedisSinkOptions struct {
	// Stream is the stream key events are appended to.
	Stream string
	// DedupTTL bounds how long idempotency keys are remembered.
	DedupTTL time.Duration
	// MaxLen caps the stream length (approximate trimming).
	MaxLen int64
}

// RedisSink appends events to a Redis stream. Deduplication uses a SET NX
// marker per idempotency key, so replayed activities do not append twice.
type RedisSink struct {
	client redis.UniversalClient
	opts   RedisSinkOptions
}

// NewRedisSink creates a sink writing through client.
func NewRedisSink(client redis.UniversalClient, opts RedisSinkOptions) *RedisSink {
	if opts.Stream == "" {
		opts.Stream = DefaultStream
	}
	if opts.DedupTTL <= 0 {
		opts.DedupTTL = DefaultDedupTTL
	}
	if opts.MaxLen <= 0 {
		opts.MaxLen = DefaultMaxLen
	}
	return &RedisSink{client: client, opts: opts}
}

// Stream returns the stream key events are written to.
func (s *RedisSink) Stream() string { return s.opts.Stream }

func (s *RedisSink) dedupKey(idempotencyKey string) string {
	return s.opts.Stream + ":seen:" + idempotencyKey
}

// Append implements EventSink.
func (s *RedisSink) Append(ctx context.Context, envelope Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if envelope.IdempotencyKey != "" {
		fresh, err := s.client.SetNX(ctx, s.dedupKey(envelope.IdempotencyKey), envelope.ID, s.opts.DedupTTL).Result()
		if err != nil {
			return fmt.Errorf("redis dedup check: %w", err)
		}
		if !fresh {
			return nil
		}
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.opts.Stream,
		MaxLen: s.opts.MaxLen,
		Approx: true,
		Values: map[string]any{
			"type":            envelope.Type,
			"idempotency_key": envelope.IdempotencyKey,
			"envelope":        data,
		},
	}).Err()
	if err != nil {
		// Release the marker so a retry can append the event.
		if envelope.IdempotencyKey != "" {
			_ = s.client.Del(ctx, s.dedupKey(envelope.IdempotencyKey)).Err()
		}
		return fmt.Errorf("redis xadd %s: %w", s.opts.Stream, err)
	}
	return nil
}

// Read returns up to count envelopes from the start of the stream.
func (s *RedisSink) Read(ctx context.Context, count int64) ([]Envelope, error) {
	msgs, err := s.client.XRangeN(ctx, s.opts.Stream, "-", "+", count).Result()
	if err != nil {
		return nil, fmt.Errorf("redis xrange %s: %w", s.opts.Stream, err)
	}
	out := make([]Envelope, 0, len(msgs))
	for _, msg := range msgs {
		raw, ok := msg.Values["envelope"].(string)
		if !ok {
			return nil, fmt.Errorf("stream entry %s has no envelope", msg.ID)
		}
		var env Envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			return nil, fmt.Errorf("decode stream entry %s: %w", msg.ID, err)
		}
		out = append(out, env)
	}
	return out, nil
}
