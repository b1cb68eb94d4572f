// Package pager tracks opaque pagination cursors for a forward-only
// cursor-paginated feed.
package pager

// CursorStore remembers, per page number, the cursor token that requests that
// page. Page 1 is always reachable with the empty sentinel token; the cursor
// for page N+1 only becomes known once page N has been fetched. No backward
// cursor is ever derived, so only pages visited in the current session are
// directly reachable.
//
// Tokens are opaque: they are stored and replayed verbatim, never parsed.
//
// CursorStore is not safe for concurrent use; the owning view serializes
// access.
type CursorStore struct {
	cursors map[int]string
}

// New returns a store seeded with the page-1 sentinel.
func New() *CursorStore {
	s := &CursorStore{}
	s.Reset()
	return s
}

// CursorFor returns the token that requests the given page. A page whose
// cursor was never recorded falls back to the page-1 sentinel "", so a direct
// jump lands on the first page; use Known to detect that case.
func (s *CursorStore) CursorFor(page int) string {
	return s.cursors[page]
}

// Known reports whether a cursor for the page has actually been recorded
// (or is page 1). Callers can use it to disable jumps to unreachable pages.
func (s *CursorStore) Known(page int) bool {
	_, ok := s.cursors[page]
	return ok
}

// Record stores token as the cursor that requests page+1, typically the
// next_cursor returned by fetching page. An empty token marks the feed's
// terminal page and is not recorded.
func (s *CursorStore) Record(page int, token string) {
	if token == "" {
		return
	}
	s.cursors[page+1] = token
}

// Reset clears the store back to the page-1 sentinel. Invoked whenever the
// governing filter, subject or sort changes.
func (s *CursorStore) Reset() {
	s.cursors = map[int]string{1: ""}
}

// Pages returns how many pages currently have a recorded cursor.
func (s *CursorStore) Pages() int {
	return len(s.cursors)
}
