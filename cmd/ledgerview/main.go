package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/vietddude/ledgerview/internal/core/config"
	"github.com/vietddude/ledgerview/internal/dash"
	"github.com/vietddude/ledgerview/internal/infra/indexer"
	"github.com/vietddude/ledgerview/internal/infra/stream"
	"github.com/vietddude/ledgerview/internal/monitor"
	"github.com/vietddude/stylelog"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	isDebug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Optional .env for the variables expanded inside the config file
	if err := godotenv.Load(); err != nil {
		// No .env is fine; the environment may already be set.
		_ = err
	}

	// Load Configuration first (before setting up logger)
	cfg, err := config.Load(*configPath)
	if err != nil {
		// Fall back to default logger for config load errors
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Simplifed logging logic (debug < info)
	slogLevel := slog.LevelInfo
	if *isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	// Initialize stylelog with tint.Options for level control
	stylelog.InitDefault(
		&tint.Options{
			Level:      slogLevel,
			TimeFormat: time.RFC3339,
		})
	slog.Info("Logger initialized", "level", slogLevel.String())

	if flag.Arg(0) == "status" {
		if err := runStatus(cfg); err != nil {
			slog.Error("Status query failed", "error", err)
			os.Exit(1)
		}
		return
	}

	client := indexer.New(cfg.Indexer.BaseURL, cfg.Indexer.RequestTimeout)

	var source stream.Source
	switch cfg.Stream.Source {
	case "redis":
		redisSource, err := stream.NewRedisSource(cfg.Stream.Redis)
		if err != nil {
			slog.Error("Failed to connect push feed", "error", err)
			os.Exit(1)
		}
		defer redisSource.Close()
		source = redisSource
	case "websocket":
		if cfg.Stream.WebsocketURL == "" {
			slog.Warn("No websocket URL configured, running on polling only")
		} else {
			source = stream.NewWSSource(cfg.Stream.WebsocketURL)
		}
	default:
		slog.Error("Unknown stream source", "source", cfg.Stream.Source)
		os.Exit(1)
	}

	svc := dash.New(dash.Config{
		StatusInterval:  cfg.Indexer.StatusInterval,
		PageLimit:       cfg.Indexer.PageLimit,
		FeedCapacity:    cfg.Feed.Capacity,
		HighlightWindow: cfg.Feed.HighlightWindow,
		ChunkSize:       cfg.Coverage.ChunkSize,
		HistoryWeight:   cfg.Rate.HistoryWeight,
		SampleWeight:    cfg.Rate.SampleWeight,
	}, client, source)

	server := monitor.NewServer(svc, cfg.Server.Port, 5*cfg.Indexer.StatusInterval)

	// Setup Context with Cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS Signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Monitor server listening", "port", cfg.Server.Port)
		if err := server.Start(); err != nil && ctx.Err() == nil {
			slog.Error("Monitor server failed", "error", err)
			cancel()
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("Dashboard service failed", "error", err)
		}
	}()

	// Wait for Signal
	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
	case <-ctx.Done():
	}
	cancel()

	// Graceful Shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}
	<-done

	slog.Info("Dashboard stopped gracefully")
}
