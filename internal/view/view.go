// Package view owns the mutable state behind one dashboard list: the merged
// feed, the pagination cursor store and the transient highlight set. All
// mutation happens under one lock, so no reader ever observes a half-updated
// list.
package view

import (
	"sync"

	"github.com/vietddude/ledgerview/internal/core/domain"
	"github.com/vietddude/ledgerview/internal/view/feed"
	"github.com/vietddude/ledgerview/internal/view/highlight"
	"github.com/vietddude/ledgerview/internal/view/pager"
)

// Query is the governing context of a list view. Changing any field makes
// previously recorded cursors meaningless.
type Query struct {
	Filter  string
	Subject string
	Sort    string
}

// State is an immutable snapshot of a view, safe to hand to renderers and
// encoders.
type State struct {
	Items       []domain.Record `json:"items"`
	CurrentPage int             `json:"current_page"`
	HasNext     bool            `json:"has_next"`
	Highlights  []string        `json:"highlights"`
}

// View is one live dashboard list. Safe for concurrent use.
type View struct {
	mu sync.Mutex

	feed       *feed.Feed
	pager      *pager.CursorStore
	highlights *highlight.Tracker

	query   Query
	page    int
	hasNext bool

	// seq invalidates in-flight fetches: a result tagged with an older
	// sequence number arrived after its triggering page or query was
	// superseded and must be discarded, not merged.
	seq uint64
}

// New creates a view over an empty feed.
func New(key domain.KeyFunc, order feed.Order, capacity int, tracker *highlight.Tracker) *View {
	if tracker == nil {
		tracker = highlight.New(highlight.DefaultWindow)
	}
	return &View{
		feed:       feed.New(key, order, capacity),
		pager:      pager.New(),
		highlights: tracker,
		page:       1,
	}
}

// BeginFetch registers intent to load the given page and returns the
// sequence number that must accompany the eventual ApplyPage, together with
// the cursor token to request the page with.
func (v *View) BeginFetch(page int) (seq uint64, cursor string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if page < 1 {
		page = 1
	}
	v.seq++
	return v.seq, v.pager.CursorFor(page)
}

// ApplyPage merges a fetched page into the feed. It reports false, leaving
// all state untouched, when the sequence number shows the result is stale.
func (v *View) ApplyPage(seq uint64, page int, items []domain.Record, nextCursor string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		return false
	}
	if page < 1 {
		page = 1
	}
	v.feed.MergePage(items)
	v.pager.Record(page, nextCursor)
	v.page = page
	v.hasNext = nextCursor != ""
	return true
}

// ApplyPush merges live arrivals at the front of the feed and marks their
// keys for transient emphasis. Push delivery is never stale: it reflects the
// present regardless of which page is showing.
func (v *View) ApplyPush(items []domain.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.feed.MergeLive(items)
	for _, key := range v.feed.LastNewKeys() {
		v.highlights.Mark(key)
	}
}

// SetQuery replaces the governing query. A changed query clears the cursor
// store and the merged list, invalidates in-flight fetches and rewinds to
// page 1. Setting an identical query is a no-op.
func (v *View) SetQuery(q Query) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if q == v.query {
		return
	}
	v.query = q
	v.pager.Reset()
	v.feed.Clear()
	v.page = 1
	v.hasNext = false
	v.seq++
}

// Query returns the current governing query.
func (v *View) Query() Query {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// Snapshot returns a consistent copy of the view state.
func (v *View) Snapshot() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return State{
		Items:       v.feed.Items(),
		CurrentPage: v.page,
		HasNext:     v.hasNext,
		Highlights:  v.highlights.Keys(),
	}
}

// Highlighted reports whether the key is in the active highlight set.
func (v *View) Highlighted(key string) bool {
	return v.highlights.Active(key)
}

// Close cancels pending highlight removals.
func (v *View) Close() {
	v.highlights.Stop()
}
