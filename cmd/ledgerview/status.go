package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/vietddude/ledgerview/internal/core/config"
	"github.com/vietddude/ledgerview/internal/dash"
)

// runStatus queries a running dashboard's /state endpoint and prints a
// human-readable summary.
func runStatus(cfg *config.AppConfig) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/state", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("dashboard not reachable: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var ov dash.Overview
	if err := json.NewDecoder(resp.Body).Decode(&ov); err != nil {
		return fmt.Errorf("failed to decode state: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "FIELD\tVALUE")

	if ov.Status == nil {
		_, _ = fmt.Fprintln(w, "status\tunavailable")
		return w.Flush()
	}

	_, _ = fmt.Fprintf(w, "latest height\t%d\n", ov.Status.LatestHeight)
	_, _ = fmt.Fprintf(w, "indexed height\t%d\n", ov.Status.IndexedHeight)
	_, _ = fmt.Fprintf(w, "history height\t%d\n", ov.Status.HistoryHeight)
	_, _ = fmt.Fprintf(w, "behind\t%d\n", ov.Status.Behind)
	_, _ = fmt.Fprintf(w, "forward rate\t%.2f blocks/s\n", ov.Forward.Rate)
	if ov.Forward.ETASeconds != nil {
		_, _ = fmt.Fprintf(w, "forward ETA\t%s\n", time.Duration(*ov.Forward.ETASeconds*float64(time.Second)).Round(time.Second))
	}
	_, _ = fmt.Fprintf(w, "backward rate\t%.2f blocks/s\n", ov.Backward.Rate)
	if ov.Backward.ETASeconds != nil {
		_, _ = fmt.Fprintf(w, "backward ETA\t%s\n", time.Duration(*ov.Backward.ETASeconds*float64(time.Second)).Round(time.Second))
	}
	_, _ = fmt.Fprintf(w, "coverage\t%.1f%% (%d/%d chunks)\n", ov.Summary.Percent, ov.Summary.IndexedCount, ov.Summary.Total)
	_, _ = fmt.Fprintf(w, "blocks listed\t%d\n", len(ov.Blocks.Items))
	_, _ = fmt.Fprintf(w, "transactions listed\t%d\n", len(ov.Transactions.Items))
	_, _ = fmt.Fprintf(w, "snapshot at\t%s\n", ov.StatusAt.Format(time.RFC3339))

	return w.Flush()
}
