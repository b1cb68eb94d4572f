// Package dash wires the dashboard core together: the indexer API client,
// the push-feed hub, the merged list views, the per-direction throughput
// estimators and the coverage mosaic.
package dash

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/vietddude/ledgerview/internal/core/domain"
	"github.com/vietddude/ledgerview/internal/dash/metrics"
	"github.com/vietddude/ledgerview/internal/infra/indexer"
	"github.com/vietddude/ledgerview/internal/infra/stream"
	"github.com/vietddude/ledgerview/internal/view"
	"github.com/vietddude/ledgerview/internal/view/coverage"
	"github.com/vietddude/ledgerview/internal/view/feed"
	"github.com/vietddude/ledgerview/internal/view/highlight"
	"github.com/vietddude/ledgerview/internal/view/progress"
)

// Fetcher is the slice of the indexer client the service needs.
type Fetcher interface {
	FetchBlocks(ctx context.Context, cursor string, limit int) (indexer.Page, error)
	FetchTransactions(ctx context.Context, cursor string, limit int) (indexer.Page, error)
	FetchStatus(ctx context.Context) (domain.ProgressSnapshot, error)
}

// Config holds the service settings.
type Config struct {
	StatusInterval  time.Duration
	PageLimit       int
	FeedCapacity    int
	HighlightWindow time.Duration
	ChunkSize       uint64
	HistoryWeight   float64
	SampleWeight    float64
}

// RateState reports one direction's smoothed rate. ETASeconds is nil while
// no positive rate is established.
type RateState struct {
	Rate       float64  `json:"rate"`
	ETASeconds *float64 `json:"eta_seconds"`
}

// Overview is the full outward-facing dashboard snapshot.
type Overview struct {
	Blocks       view.State               `json:"blocks"`
	Transactions view.State               `json:"transactions"`
	Status       *domain.ProgressSnapshot `json:"status"`
	StatusAt     time.Time                `json:"status_at"`
	Forward      RateState                `json:"forward"`
	Backward     RateState                `json:"backward"`
	Coverage     []coverage.Chunk         `json:"coverage"`
	Summary      coverage.Summary         `json:"coverage_summary"`
}

// Service is the live dashboard state owner. All shared mutation is
// serialized: views carry their own locks, the snapshot and estimators are
// guarded here.
type Service struct {
	cfg    Config
	client Fetcher
	hub    *stream.Hub
	source stream.Source

	blocks *view.View
	txs    *view.View

	mu         sync.Mutex
	snapshot   *domain.ProgressSnapshot
	snapshotAt time.Time
	statusErr  error
	forward    *progress.Estimator
	backward   *progress.Estimator
}

// New creates a service around the given client and push-feed source. The
// source may be nil when no live feed is configured; the dashboard then runs
// on polling alone.
func New(cfg Config, client Fetcher, source stream.Source) *Service {
	if cfg.StatusInterval <= 0 {
		cfg.StatusInterval = 3 * time.Second
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = 20
	}
	if cfg.FeedCapacity <= 0 {
		cfg.FeedCapacity = 200
	}
	return &Service{
		cfg:    cfg,
		client: client,
		hub:    stream.NewHub(),
		source: source,
		blocks: view.New(domain.BlockKey, feed.OrderInsertion, cfg.FeedCapacity,
			highlight.New(cfg.HighlightWindow)),
		txs: view.New(domain.TransactionKey, feed.OrderComposite, cfg.FeedCapacity,
			highlight.New(cfg.HighlightWindow)),
		forward:  progress.NewWeighted(progress.Forward, cfg.HistoryWeight, cfg.SampleWeight),
		backward: progress.NewWeighted(progress.Backward, cfg.HistoryWeight, cfg.SampleWeight),
	}
}

// Run drives the service until the context ends: the push-feed source, the
// hub consumer, and the status poll loop. Initial pages are loaded before
// the loops start so the first snapshot is not empty.
func (s *Service) Run(ctx context.Context) error {
	if err := s.LoadBlocksPage(ctx, 1); err != nil {
		slog.Warn("Initial block page load failed", "error", err)
	}
	if err := s.LoadTransactionsPage(ctx, 1); err != nil {
		slog.Warn("Initial transaction page load failed", "error", err)
	}
	s.pollStatus(ctx)

	var wg sync.WaitGroup

	if s.source != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.source.Run(ctx, s.hub.Publish); err != nil && ctx.Err() == nil {
				slog.Error("Push feed terminated", "error", err)
			}
		}()

		msgs, cancel := s.hub.Subscribe(256)
		defer cancel()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range msgs {
				s.dispatch(msg)
			}
		}()
	}

	ticker := time.NewTicker(s.cfg.StatusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.hub.Close()
			s.blocks.Close()
			s.txs.Close()
			wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			s.pollStatus(ctx)
		}
	}
}

// Hub exposes the push-feed hub for additional consumers.
func (s *Service) Hub() *stream.Hub { return s.hub }

// LoadBlocksPage fetches and merges one page of the block list. A result
// arriving after another fetch superseded it is discarded.
func (s *Service) LoadBlocksPage(ctx context.Context, page int) error {
	seq, cursor := s.blocks.BeginFetch(page)
	fetched, err := s.client.FetchBlocks(ctx, cursor, s.cfg.PageLimit)
	if err != nil {
		return err
	}
	if !s.blocks.ApplyPage(seq, page, fetched.Items, fetched.NextCursor) {
		metrics.StaleResults.WithLabelValues("blocks").Inc()
		return nil
	}
	metrics.FeedSize.WithLabelValues("blocks").Set(float64(len(s.blocks.Snapshot().Items)))
	return nil
}

// LoadTransactionsPage fetches and merges one page of the transaction list.
func (s *Service) LoadTransactionsPage(ctx context.Context, page int) error {
	seq, cursor := s.txs.BeginFetch(page)
	fetched, err := s.client.FetchTransactions(ctx, cursor, s.cfg.PageLimit)
	if err != nil {
		return err
	}
	if !s.txs.ApplyPage(seq, page, fetched.Items, fetched.NextCursor) {
		metrics.StaleResults.WithLabelValues("transactions").Inc()
		return nil
	}
	metrics.FeedSize.WithLabelValues("transactions").Set(float64(len(s.txs.Snapshot().Items)))
	return nil
}

// SetTransactionQuery changes the transaction list's governing query,
// clearing its cursors and list.
func (s *Service) SetTransactionQuery(q view.Query) {
	s.txs.SetQuery(q)
}

// dispatch routes one push-feed message into the matching view.
func (s *Service) dispatch(msg stream.Message) {
	var rec domain.Record
	if err := json.Unmarshal(msg.Payload, &rec); err != nil {
		metrics.StreamDropped.Inc()
		slog.Debug("Dropping push payload", "type", msg.Type, "error", err)
		return
	}

	switch msg.Type {
	case stream.TypeNewBlock:
		s.blocks.ApplyPush([]domain.Record{rec})
		metrics.FeedSize.WithLabelValues("blocks").Set(float64(len(s.blocks.Snapshot().Items)))
	case stream.TypeNewTransaction:
		s.txs.ApplyPush([]domain.Record{rec})
		metrics.FeedSize.WithLabelValues("transactions").Set(float64(len(s.txs.Snapshot().Items)))
	default:
		metrics.StreamDropped.Inc()
	}
}

// pollStatus fetches a fresh progress snapshot and feeds the estimators. A
// failed poll keeps the previous snapshot; the display degrades to stale,
// never to inconsistent.
func (s *Service) pollStatus(ctx context.Context) {
	snap, err := s.client.FetchStatus(ctx)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.statusErr = err
		slog.Warn("Status poll failed", "error", err)
		return
	}
	s.statusErr = nil
	s.snapshot = &snap
	s.snapshotAt = now

	s.forward.Observe(now, snap.IndexedHeight)
	s.backward.Observe(now, snap.HistoryHeight)

	metrics.IndexRate.WithLabelValues("forward").Set(s.forward.Rate())
	metrics.IndexRate.WithLabelValues("backward").Set(s.backward.Rate())
}

// Snapshot assembles the outward-facing dashboard state.
func (s *Service) Snapshot() Overview {
	out := Overview{
		Blocks:       s.blocks.Snapshot(),
		Transactions: s.txs.Snapshot(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil {
		snap := *s.snapshot
		out.Status = &snap
		out.StatusAt = s.snapshotAt
		out.Forward = rateState(s.forward, snap.ForwardRemaining())
		out.Backward = rateState(s.backward, snap.BackwardRemaining())
		out.Coverage, out.Summary = coverage.Classify(s.cfg.ChunkSize, snap)
		metrics.CoveragePercent.Set(out.Summary.Percent)
	}
	return out
}

// Stale reports how old the current snapshot is and whether the last poll
// failed. Used by the health endpoint.
func (s *Service) Stale() (age time.Duration, lastErr error, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return 0, s.statusErr, false
	}
	return time.Since(s.snapshotAt), s.statusErr, true
}

func rateState(e *progress.Estimator, remaining uint64) RateState {
	out := RateState{Rate: e.Rate()}
	if eta, ok := e.ETA(remaining); ok {
		secs := eta.Seconds()
		out.ETASeconds = &secs
	}
	return out
}
