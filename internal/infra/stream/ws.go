package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vietddude/ledgerview/internal/dash/metrics"
)

// WSSource subscribes to the indexer's websocket push endpoint.
type WSSource struct {
	url         string
	dialTimeout time.Duration
	backoff     time.Duration
	maxBackoff  time.Duration
}

// NewWSSource creates a websocket source for the given ws:// or wss:// URL.
func NewWSSource(url string) *WSSource {
	return &WSSource{
		url:         url,
		dialTimeout: 10 * time.Second,
		backoff:     time.Second,
		maxBackoff:  30 * time.Second,
	}
}

// Run connects and reads messages until the context ends, reconnecting with
// exponential backoff on any connection failure. A single malformed message
// is dropped; it never tears the subscription down.
func (s *WSSource) Run(ctx context.Context, emit func(Message)) error {
	delay := s.backoff
	for {
		if err := s.readLoop(ctx, emit); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Push feed disconnected", "url", s.url, "error", err, "retry_in", delay)
		}

		metrics.StreamConnected.Set(0)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > s.maxBackoff {
			delay = s.maxBackoff
		}
	}
}

func (s *WSSource) readLoop(ctx context.Context, emit func(Message)) error {
	dialer := websocket.Dialer{HandshakeTimeout: s.dialTimeout}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	slog.Info("Push feed connected", "url", s.url)
	metrics.StreamConnected.Set(1)

	// Unblock ReadMessage when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			metrics.StreamDropped.Inc()
			slog.Debug("Dropping malformed push message", "error", err)
			continue
		}
		metrics.StreamEvents.WithLabelValues(msg.Type).Inc()
		emit(msg)
	}
}
