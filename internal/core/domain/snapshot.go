package domain

import "time"

// ProgressSnapshot is the authoritative set of height counters published by
// the indexer's /status endpoint. A snapshot is immutable; each poll replaces
// the previous one wholesale.
type ProgressSnapshot struct {
	ChainID           string    `json:"chain_id"`
	LatestHeight      uint64    `json:"latest_height"`
	IndexedHeight     uint64    `json:"indexed_height"`
	HistoryHeight     uint64    `json:"history_height"`
	MinHeight         uint64    `json:"min_height"`
	MaxHeight         uint64    `json:"max_height"`
	StartHeight       uint64    `json:"start_height"`
	TotalBlocks       uint64    `json:"total_blocks"`
	TotalTransactions uint64    `json:"total_transactions"`
	Behind            uint64    `json:"behind"`
	Progress          string    `json:"progress"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// Tip returns the highest height known to the system: the larger of the
// chain-reported latest height and the highest locally indexed block.
func (s ProgressSnapshot) Tip() uint64 {
	if s.LatestHeight > s.MaxHeight {
		return s.LatestHeight
	}
	return s.MaxHeight
}

// ForwardRemaining is the distance the forward ingester still has to cover.
func (s ProgressSnapshot) ForwardRemaining() uint64 {
	if s.LatestHeight > s.IndexedHeight {
		return s.LatestHeight - s.IndexedHeight
	}
	return 0
}

// BackwardRemaining is the distance the history backfill still has to cover
// down to the configured start height.
func (s ProgressSnapshot) BackwardRemaining() uint64 {
	if s.HistoryHeight > s.StartHeight {
		return s.HistoryHeight - s.StartHeight
	}
	return 0
}
