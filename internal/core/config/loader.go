package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/ledgerview/internal/view/progress"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Indexer.BaseURL == "" {
		return nil, fmt.Errorf("indexer.base_url is required")
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Indexer.RequestTimeout == 0 {
		cfg.Indexer.RequestTimeout = 15 * time.Second
	}
	if cfg.Indexer.StatusInterval == 0 {
		cfg.Indexer.StatusInterval = 3 * time.Second
	}
	if cfg.Indexer.PageLimit == 0 {
		cfg.Indexer.PageLimit = 20
	}
	if cfg.Stream.Source == "" {
		cfg.Stream.Source = "websocket"
	}
	if cfg.Feed.Capacity == 0 {
		cfg.Feed.Capacity = 200
	}
	if cfg.Feed.HighlightWindow == 0 {
		cfg.Feed.HighlightWindow = 3 * time.Second
	}
	if cfg.Coverage.ChunkSize == 0 {
		cfg.Coverage.ChunkSize = 10000
	}
	if cfg.Rate.HistoryWeight == 0 {
		cfg.Rate.HistoryWeight = progress.DefaultHistoryWeight
	}
	if cfg.Rate.SampleWeight == 0 {
		cfg.Rate.SampleWeight = progress.DefaultSampleWeight
	}
}
