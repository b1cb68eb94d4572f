package pager

import "testing"

func TestSeededWithFirstPageSentinel(t *testing.T) {
	s := New()
	if got := s.CursorFor(1); got != "" {
		t.Errorf("CursorFor(1) = %q, want empty sentinel", got)
	}
	if !s.Known(1) {
		t.Error("page 1 should always be known")
	}
}

func TestRecordStoresCursorForNextPage(t *testing.T) {
	s := New()
	s.Record(1, "abc")
	s.Record(2, "def")

	if got := s.CursorFor(2); got != "abc" {
		t.Errorf("CursorFor(2) = %q, want abc", got)
	}
	if got := s.CursorFor(3); got != "def" {
		t.Errorf("CursorFor(3) = %q, want def", got)
	}
}

func TestTerminalPageNotRecorded(t *testing.T) {
	s := New()
	s.Record(1, "")
	if s.Known(2) {
		t.Error("empty next_cursor must not create a page-2 entry")
	}
}

func TestUnvisitedPageFallsBackToSentinel(t *testing.T) {
	// Jumping straight to a page whose cursor was never recorded silently
	// yields the page-1 sentinel, landing the caller on the first page.
	s := New()
	s.Record(1, "abc")
	if got := s.CursorFor(7); got != "" {
		t.Errorf("CursorFor(7) = %q, want sentinel", got)
	}
	if s.Known(7) {
		t.Error("Known(7) = true for an unvisited page")
	}
}

func TestTokensAreOpaque(t *testing.T) {
	// Whatever shape the backend hands out comes back verbatim.
	s := New()
	token := "1234:7:0xAbC=="
	s.Record(3, token)
	if got := s.CursorFor(4); got != token {
		t.Errorf("CursorFor(4) = %q, want %q", got, token)
	}
}

func TestResetClearsToSentinel(t *testing.T) {
	s := New()
	s.Record(1, "abc")
	s.Record(2, "def")
	s.Reset()

	if s.Pages() != 1 {
		t.Errorf("Pages() = %d after Reset, want 1", s.Pages())
	}
	if got := s.CursorFor(2); got != "" {
		t.Errorf("CursorFor(2) = %q after Reset, want sentinel", got)
	}
}
