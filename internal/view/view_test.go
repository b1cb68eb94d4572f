package view

import (
	"testing"

	"github.com/vietddude/ledgerview/internal/core/domain"
	"github.com/vietddude/ledgerview/internal/view/feed"
)

func newTxView() *View {
	return New(domain.TransactionKey, feed.OrderComposite, 50, nil)
}

func rec(id string, height uint64) domain.Record {
	return domain.Record{"id": id, "block_height": float64(height)}
}

func TestApplyPageUpdatesPagination(t *testing.T) {
	v := newTxView()

	seq, cursor := v.BeginFetch(1)
	if cursor != "" {
		t.Fatalf("cursor for page 1 = %q, want sentinel", cursor)
	}
	if !v.ApplyPage(seq, 1, []domain.Record{rec("a", 10)}, "next-token") {
		t.Fatal("fresh result rejected as stale")
	}

	state := v.Snapshot()
	if state.CurrentPage != 1 || !state.HasNext {
		t.Errorf("state = page %d hasNext %v, want page 1 with next", state.CurrentPage, state.HasNext)
	}

	// The recorded token requests page 2.
	_, cursor = v.BeginFetch(2)
	if cursor != "next-token" {
		t.Errorf("cursor for page 2 = %q, want next-token", cursor)
	}
}

func TestPageNumberClamped(t *testing.T) {
	v := newTxView()

	seq, cursor := v.BeginFetch(0)
	if cursor != "" {
		t.Fatalf("cursor for clamped page = %q, want sentinel", cursor)
	}
	if !v.ApplyPage(seq, 0, []domain.Record{rec("a", 10)}, "") {
		t.Fatal("result rejected")
	}
	if got := v.Snapshot().CurrentPage; got != 1 {
		t.Errorf("CurrentPage = %d, want 1", got)
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	v := newTxView()

	stale, _ := v.BeginFetch(1)
	fresh, _ := v.BeginFetch(2)

	if v.ApplyPage(stale, 1, []domain.Record{rec("old", 1)}, "x") {
		t.Fatal("superseded result was applied")
	}
	if len(v.Snapshot().Items) != 0 {
		t.Fatal("stale result mutated the list")
	}

	if !v.ApplyPage(fresh, 2, []domain.Record{rec("new", 2)}, "") {
		t.Fatal("current result rejected")
	}
	state := v.Snapshot()
	if len(state.Items) != 1 || state.HasNext {
		t.Errorf("state after terminal page = %+v", state)
	}
}

func TestQueryChangeResetsEverything(t *testing.T) {
	v := newTxView()
	seq, _ := v.BeginFetch(1)
	v.ApplyPage(seq, 1, []domain.Record{rec("a", 10)}, "tok")

	inflight, _ := v.BeginFetch(2)
	v.SetQuery(Query{Subject: "0xfeed"})

	// The in-flight fetch for the old query must not merge.
	if v.ApplyPage(inflight, 2, []domain.Record{rec("b", 11)}, "tok2") {
		t.Fatal("result for superseded query was applied")
	}

	state := v.Snapshot()
	if len(state.Items) != 0 || state.CurrentPage != 1 || state.HasNext {
		t.Errorf("state after query change = %+v, want empty page 1", state)
	}
	if _, cursor := v.BeginFetch(2); cursor != "" {
		t.Errorf("cursor survived query change: %q", cursor)
	}
}

func TestSameQueryIsNoop(t *testing.T) {
	v := newTxView()
	q := Query{Filter: "evm"}
	v.SetQuery(q)

	seq, _ := v.BeginFetch(1)
	v.ApplyPage(seq, 1, []domain.Record{rec("a", 10)}, "tok")

	v.SetQuery(q)
	if len(v.Snapshot().Items) != 1 {
		t.Error("re-setting the identical query cleared the list")
	}
}

func TestPushMarksOnlyNewKeys(t *testing.T) {
	v := newTxView()
	seq, _ := v.BeginFetch(1)
	v.ApplyPage(seq, 1, []domain.Record{rec("a", 10)}, "")

	v.ApplyPush([]domain.Record{rec("a", 10), rec("b", 11)})

	if !v.Highlighted("b") {
		t.Error("new key not highlighted")
	}
	if v.Highlighted("a") {
		t.Error("overlaid existing key highlighted")
	}

	state := v.Snapshot()
	if len(state.Items) != 2 {
		t.Errorf("list length = %d, want 2", len(state.Items))
	}
	if len(state.Highlights) != 1 || state.Highlights[0] != "b" {
		t.Errorf("highlights = %v, want [b]", state.Highlights)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	v := newTxView()
	seq, _ := v.BeginFetch(1)
	v.ApplyPage(seq, 1, []domain.Record{rec("a", 10)}, "")

	state := v.Snapshot()
	state.Items[0]["id"] = "tampered"

	if got := v.Snapshot().Items[0]["id"]; got != "a" {
		t.Errorf("mutating a snapshot leaked into the view: %v", got)
	}
}
