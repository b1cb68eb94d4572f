// Package coverage turns raw indexer height counters into a coarse-grained
// mosaic: the height axis partitioned into fixed-size chunks, each classified
// against the currently covered range.
package coverage

import "github.com/vietddude/ledgerview/internal/core/domain"

// Status classifies one chunk against a progress snapshot.
type Status string

const (
	// StatusIndexed marks a chunk fully inside the covered contiguous range.
	StatusIndexed Status = "indexed"
	// StatusIndexing marks the chunk holding the active forward frontier.
	StatusIndexing Status = "indexing"
	// StatusMissing marks a chunk entirely behind the oldest backfilled
	// ancestor, a historical gap.
	StatusMissing Status = "missing"
	// StatusPending marks a chunk entirely ahead of the forward frontier.
	StatusPending Status = "pending"
	// StatusBackfilling marks a chunk straddling the backfill boundary.
	StatusBackfilling Status = "backfilling"
	// StatusUnknown is the fallback for snapshots outside the five defined
	// cases.
	StatusUnknown Status = "unknown"
)

// Chunk is one contiguous, non-overlapping cell of the height axis.
type Chunk struct {
	Index  int    `json:"index"`
	Start  uint64 `json:"start"`
	End    uint64 `json:"end"`
	Status Status `json:"status"`
}

// Summary aggregates a classified mosaic.
type Summary struct {
	Total        int     `json:"total"`
	IndexedCount int     `json:"indexed"`
	Percent      float64 `json:"percent"`
}

// Classify partitions the heights below the snapshot tip into chunks of
// chunkSize and assigns each a status. The chunk covering height tip itself
// only exists when the tip is not an exact chunk-count boundary: chunk count
// is ceil(tip / chunkSize) and the last chunk is truncated at tip-1.
func Classify(chunkSize uint64, snap domain.ProgressSnapshot) ([]Chunk, Summary) {
	if chunkSize == 0 {
		chunkSize = 1
	}
	tip := snap.Tip()
	if tip == 0 {
		return nil, Summary{}
	}

	count := int((tip + chunkSize - 1) / chunkSize)
	chunks := make([]Chunk, 0, count)
	indexed := 0

	for i := 0; i < count; i++ {
		start := uint64(i) * chunkSize
		end := start + chunkSize - 1
		if end > tip-1 {
			end = tip - 1
		}
		status := classify(start, end, snap)
		if status == StatusIndexed {
			indexed++
		}
		chunks = append(chunks, Chunk{Index: i, Start: start, End: end, Status: status})
	}

	summary := Summary{Total: count, IndexedCount: indexed}
	if count > 0 {
		summary.Percent = float64(indexed) / float64(count) * 100
	}
	return chunks, summary
}

// classify evaluates the status cases in precedence order. The first match
// wins; StatusUnknown must never be reached for a valid snapshot.
func classify(start, end uint64, snap domain.ProgressSnapshot) Status {
	switch {
	case start >= snap.MinHeight && end <= snap.MaxHeight:
		return StatusIndexed
	case snap.MaxHeight >= start && snap.MaxHeight <= end:
		return StatusIndexing
	case end < snap.MinHeight:
		return StatusMissing
	case start > snap.MaxHeight:
		return StatusPending
	case start < snap.MinHeight && end >= snap.MinHeight:
		return StatusBackfilling
	default:
		return StatusUnknown
	}
}
