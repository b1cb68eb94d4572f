package config

import (
	"time"

	"github.com/vietddude/ledgerview/internal/infra/stream"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Indexer  IndexerConfig  `yaml:"indexer"`
	Stream   StreamConfig   `yaml:"stream"`
	Feed     FeedConfig     `yaml:"feed"`
	Coverage CoverageConfig `yaml:"coverage"`
	Rate     RateConfig     `yaml:"rate"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the monitor HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// IndexerConfig holds settings for the remote indexer API.
type IndexerConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	StatusInterval time.Duration `yaml:"status_interval"`
	PageLimit      int           `yaml:"page_limit"`
}

// StreamConfig selects and configures the push-feed source.
type StreamConfig struct {
	Source       string             `yaml:"source"` // "websocket" or "redis"
	WebsocketURL string             `yaml:"websocket_url"`
	Redis        stream.RedisConfig `yaml:"redis"`
}

// FeedConfig bounds the merged lists.
type FeedConfig struct {
	Capacity        int           `yaml:"capacity"`
	HighlightWindow time.Duration `yaml:"highlight_window"`
}

// CoverageConfig sizes the coverage mosaic.
type CoverageConfig struct {
	ChunkSize uint64 `yaml:"chunk_size"`
}

// RateConfig holds the exponential smoothing weights for the throughput
// estimators. The defaults heavily favor history to damp polling noise.
type RateConfig struct {
	HistoryWeight float64 `yaml:"history_weight"`
	SampleWeight  float64 `yaml:"sample_weight"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
