package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/ledgerview/internal/dash/metrics"
)

// RedisConfig holds the Pub/Sub subscription settings.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	Channel  string `yaml:"channel"`
}

// RedisSource subscribes to the indexer's Redis Pub/Sub channel. Some
// deployments publish the same new_block / new_transaction envelopes there
// instead of (or in addition to) the websocket endpoint.
type RedisSource struct {
	rdb     *redis.Client
	channel string
}

// NewRedisSource connects to Redis and verifies the connection.
func NewRedisSource(cfg RedisConfig) (*RedisSource, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	channel := cfg.Channel
	if channel == "" {
		channel = "ledger.events"
	}
	return &RedisSource{rdb: rdb, channel: channel}, nil
}

// Run consumes the Pub/Sub channel until the context ends. go-redis handles
// reconnection internally; a malformed message is dropped, never fatal.
func (s *RedisSource) Run(ctx context.Context, emit func(Message)) error {
	sub := s.rdb.Subscribe(ctx, s.channel)
	defer sub.Close()

	// Confirm the subscription before consuming.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	slog.Info("Push feed connected", "channel", s.channel)
	metrics.StreamConnected.Set(1)
	defer metrics.StreamConnected.Set(0)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-sub.Channel():
			if !ok {
				return fmt.Errorf("subscription channel closed")
			}
			var msg Message
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil || msg.Type == "" {
				metrics.StreamDropped.Inc()
				slog.Debug("Dropping malformed push message", "error", err)
				continue
			}
			metrics.StreamEvents.WithLabelValues(msg.Type).Inc()
			emit(msg)
		}
	}
}

// Close releases the Redis connection.
func (s *RedisSource) Close() error {
	return s.rdb.Close()
}
