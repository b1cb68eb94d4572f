// Package feed maintains the canonical in-memory list behind a live
// dashboard view. It merges cursor-paginated bulk loads with push-feed
// arrivals into one deduplicated, ordered, size-bounded list.
//
// # Merge Semantics
//
// Every incoming record is keyed by a normalized primary key. A record whose
// key is already present overlays the stored one (incoming fields win, fields
// the incoming record lacks are kept). A new key is inserted at the front for
// push arrivals and at the back for page loads; feeds with composite ordering
// re-sort the whole list after every merge, so the insertion point only
// matters for insertion-ordered feeds.
//
// Merging is idempotent and never fails: records without a usable key are
// dropped, malformed ordering fields sort as zero.
package feed

import (
	"sort"
	"strconv"

	"github.com/vietddude/ledgerview/internal/core/domain"
)

// Order selects how the merged list is kept sorted.
type Order int

const (
	// OrderInsertion keeps records in merge order. Block feeds use this:
	// their numeric keys already arrive newest-first.
	OrderInsertion Order = iota

	// OrderComposite re-sorts the full list after every merge, descending by
	// (block height, intra-block index, timestamp, key). Transaction feeds
	// use this because page loads and push arrivals interleave arbitrarily.
	OrderComposite
)

// Feed is the authoritative merged list for one dashboard view.
// It is not safe for concurrent use; the owning view serializes access.
type Feed struct {
	key      domain.KeyFunc
	order    Order
	capacity int

	items []domain.Record
	index map[string]int

	dropped  uint64
	evicted  uint64
	lastNew  []string
	sortKeys map[string]sortKey
}

type sortKey struct {
	height uint64
	index  uint64
	millis int64
	key    string
}

// New creates an empty feed bounded to capacity records.
func New(key domain.KeyFunc, order Order, capacity int) *Feed {
	if capacity <= 0 {
		capacity = 100
	}
	return &Feed{
		key:      key,
		order:    order,
		capacity: capacity,
		index:    make(map[string]int),
	}
}

// MergePage merges a bulk page load. New records go to the back.
func (f *Feed) MergePage(batch []domain.Record) {
	f.merge(batch, false)
}

// MergeLive merges push-feed arrivals. New records go to the front, keeping
// the batch's own arrival order.
func (f *Feed) MergeLive(batch []domain.Record) {
	f.merge(batch, true)
}

func (f *Feed) merge(batch []domain.Record, prependNew bool) {
	f.lastNew = f.lastNew[:0]

	var fresh []domain.Record
	freshIdx := make(map[string]int, len(batch))
	for _, in := range batch {
		if in == nil {
			f.dropped++
			continue
		}
		k := f.key(in)
		if k == "" {
			f.dropped++
			continue
		}
		in = in.Clone()
		in.Canonicalize()
		if pos, ok := f.index[k]; ok {
			f.items[pos].Overlay(in)
			continue
		}
		// A duplicate key within the batch overlays the earlier occurrence.
		if pos, ok := freshIdx[k]; ok {
			fresh[pos].Overlay(in)
			continue
		}
		freshIdx[k] = len(fresh)
		fresh = append(fresh, in)
		f.lastNew = append(f.lastNew, k)
	}

	if len(fresh) > 0 {
		if prependNew {
			merged := make([]domain.Record, 0, len(fresh)+len(f.items))
			merged = append(merged, fresh...)
			f.items = append(merged, f.items...)
		} else {
			f.items = append(f.items, fresh...)
		}
		f.reindex()
	}

	if f.order == OrderComposite {
		f.sortComposite()
	}
	f.truncate()
}

// sortComposite orders the list descending by (height, index, timestamp, key).
// Each later field only breaks ties in the earlier ones; an absent timestamp
// sorts as zero so the order stays total.
func (f *Feed) sortComposite() {
	keys := f.sortKeys
	if keys == nil {
		keys = make(map[string]sortKey, len(f.items))
		f.sortKeys = keys
	}
	for k := range keys {
		delete(keys, k)
	}
	for _, r := range f.items {
		k := f.key(r)
		keys[k] = sortKey{
			height: r.Height(),
			index:  r.OrderIndex(),
			millis: r.TimestampMillis(),
			key:    k,
		}
	}
	sort.SliceStable(f.items, func(i, j int) bool {
		a := keys[f.key(f.items[i])]
		b := keys[f.key(f.items[j])]
		if a.height != b.height {
			return a.height > b.height
		}
		if a.index != b.index {
			return a.index > b.index
		}
		if a.millis != b.millis {
			return a.millis > b.millis
		}
		return a.key > b.key
	})
	f.reindex()
}

func (f *Feed) truncate() {
	if len(f.items) <= f.capacity {
		return
	}
	f.evicted += uint64(len(f.items) - f.capacity)
	for _, r := range f.items[f.capacity:] {
		delete(f.index, f.key(r))
	}
	f.items = f.items[:f.capacity]
}

func (f *Feed) reindex() {
	for k := range f.index {
		delete(f.index, k)
	}
	for i, r := range f.items {
		f.index[f.key(r)] = i
	}
}

// LastNewKeys returns the keys inserted (not overlaid) by the most recent
// merge, in batch order. The slice is reused across merges.
func (f *Feed) LastNewKeys() []string {
	return f.lastNew
}

// Items returns a copy of the current list in display order.
func (f *Feed) Items() []domain.Record {
	out := make([]domain.Record, len(f.items))
	for i, r := range f.items {
		out[i] = r.Clone()
	}
	return out
}

// Get returns the record stored under the normalized key.
func (f *Feed) Get(key string) (domain.Record, bool) {
	pos, ok := f.index[domain.NormalizeKey(key)]
	if !ok {
		return nil, false
	}
	return f.items[pos].Clone(), true
}

// Len returns the number of records currently held.
func (f *Feed) Len() int { return len(f.items) }

// Capacity returns the feed's size bound.
func (f *Feed) Capacity() int { return f.capacity }

// Dropped returns how many keyless records have been discarded.
func (f *Feed) Dropped() uint64 { return f.dropped }

// Evicted returns how many records have been truncated off the tail.
func (f *Feed) Evicted() uint64 { return f.evicted }

// Clear empties the feed. Drop and eviction counters survive.
func (f *Feed) Clear() {
	f.items = f.items[:0]
	f.lastNew = f.lastNew[:0]
	for k := range f.index {
		delete(f.index, k)
	}
}

// String describes the feed for logs.
func (f *Feed) String() string {
	return "feed(len=" + strconv.Itoa(len(f.items)) + "/" + strconv.Itoa(f.capacity) + ")"
}
