// Package monitor exposes the dashboard state over HTTP: a health probe, the
// full state snapshot and Prometheus metrics.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/ledgerview/internal/dash"
)

// SystemStatus represents the overall health state of the dashboard.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// Report is the /health response body.
type Report struct {
	Status      SystemStatus `json:"status"`
	SnapshotAge string       `json:"snapshot_age,omitempty"`
	LastError   string       `json:"last_error,omitempty"`
}

// Server provides the HTTP endpoints.
type Server struct {
	svc        *dash.Service
	staleAfter time.Duration
	server     *http.Server
}

// NewServer creates a monitor server. staleAfter is how old a snapshot may
// get before the dashboard reports degraded.
func NewServer(svc *dash.Service, port int, staleAfter time.Duration) *Server {
	if staleAfter <= 0 {
		staleAfter = 15 * time.Second
	}
	mux := http.NewServeMux()
	s := &Server{
		svc:        svc,
		staleAfter: staleAfter,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/state", s.handleState)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	age, lastErr, ok := s.svc.Stale()

	report := Report{Status: StatusHealthy}
	code := http.StatusOK
	switch {
	case !ok:
		// Never obtained a snapshot: the indexer is unreachable.
		report.Status = StatusCritical
		code = http.StatusServiceUnavailable
	case lastErr != nil || age > s.staleAfter:
		report.Status = StatusDegraded
	}
	if ok {
		report.SnapshotAge = age.Round(time.Millisecond).String()
	}
	if lastErr != nil {
		report.LastError = lastErr.Error()
	}

	writeJSON(w, code, report)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Snapshot())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
