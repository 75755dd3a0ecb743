// Package worker provides initialization and setup utilities for Temporal workers.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"
	sdklog "go.temporal.io/sdk/log"

	"github.com/ahrav/go-breakdown/internal/configuration"
	"github.com/ahrav/go-breakdown/pkg/events"
)

// InitializeClient dials the Temporal cluster described by cfg.
func InitializeClient(cfg configuration.TemporalConfig, logger *slog.Logger) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    sdklog.NewStructuredLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to temporal at %s: %w", cfg.HostPort, err)
	}
	return c, nil
}

// InitializeEventSink returns the sink activities emit to: a Redis stream
// when events are enabled, a no-op sink otherwise. The returned close
// function releases the Redis connection.
func InitializeEventSink(ctx context.Context, cfg configuration.EventsConfig) (events.EventSink, func() error, error) {
	if !cfg.Enabled {
		return events.NewNoOpEventSink(), func() error { return nil }, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	sink := events.NewRedisSink(rdb, events.RedisSinkOptions{Stream: cfg.Stream})
	return sink, rdb.Close, nil
}
