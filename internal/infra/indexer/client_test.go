package indexer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	c := New(srv.URL, 5*time.Second).WithRetry(RetryConfig{
		MaxAttempts:     2,
		InitialDelay:    time.Millisecond,
		MaxDelay:        time.Millisecond,
		BackoffMultiple: 2.0,
	})
	return c, srv
}

func TestFetchBlocksPage(t *testing.T) {
	var gotCursor, gotLimit string
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/blocks" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotCursor = r.URL.Query().Get("cursor")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"height":100,"id":"0xaa"},{"height":99,"id":"0xbb"}],"next_cursor":"99"}`))
	})
	defer srv.Close()

	page, err := c.FetchBlocks(context.Background(), "opaque-token", 2)
	if err != nil {
		t.Fatalf("FetchBlocks() = %v", err)
	}
	if gotCursor != "opaque-token" || gotLimit != "2" {
		t.Errorf("request cursor=%q limit=%q", gotCursor, gotLimit)
	}
	if len(page.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(page.Items))
	}
	if page.Items[0].Height() != 100 {
		t.Errorf("first item height = %d, want 100", page.Items[0].Height())
	}
	if page.NextCursor != "99" {
		t.Errorf("next_cursor = %q, want 99", page.NextCursor)
	}
}

func TestFetchTransactionsTerminalPage(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/transactions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"items":[{"id":"0xAB","block_height":7,"transaction_index":1}],"next_cursor":""}`))
	})
	defer srv.Close()

	page, err := c.FetchTransactions(context.Background(), "", 20)
	if err != nil {
		t.Fatalf("FetchTransactions() = %v", err)
	}
	if page.NextCursor != "" {
		t.Errorf("next_cursor = %q, want terminal", page.NextCursor)
	}
	if len(page.Items) != 1 || page.Items[0].OrderIndex() != 1 {
		t.Errorf("items = %+v", page.Items)
	}
}

func TestFetchStatus(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{
			"chain_id": "flow",
			"latest_height": 5000,
			"indexed_height": 4200,
			"history_height": 900,
			"min_height": 900,
			"max_height": 4200,
			"start_height": 100,
			"total_blocks": 3300,
			"behind": 800
		}`))
	})
	defer srv.Close()

	snap, err := c.FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStatus() = %v", err)
	}
	if snap.Tip() != 5000 {
		t.Errorf("Tip() = %d, want 5000", snap.Tip())
	}
	if snap.ForwardRemaining() != 800 {
		t.Errorf("ForwardRemaining() = %d, want 800", snap.ForwardRemaining())
	}
	if snap.BackwardRemaining() != 800 {
		t.Errorf("BackwardRemaining() = %d, want 800", snap.BackwardRemaining())
	}
}

func TestTransientServerErrorIsRetried(t *testing.T) {
	calls := 0
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"items":[],"next_cursor":""}`))
	})
	defer srv.Close()

	if _, err := c.FetchBlocks(context.Background(), "", 20); err != nil {
		t.Fatalf("FetchBlocks() = %v after retryable failure", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestClientErrorIsNotRetried(t *testing.T) {
	calls := 0
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`invalid cursor`))
	})
	defer srv.Close()

	if _, err := c.FetchBlocks(context.Background(), "bogus", 20); err == nil {
		t.Fatal("FetchBlocks() = nil, want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestMalformedBodyFailsWithoutRetry(t *testing.T) {
	calls := 0
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"items": [`))
	})
	defer srv.Close()

	if _, err := c.FetchStatus(context.Background()); err == nil {
		t.Fatal("FetchStatus() = nil, want decode error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (decode failures are fatal)", calls)
	}
}
