// Package indexer is the HTTP client for the remote indexer API: cursor
// paginated list endpoints and the periodic status snapshot.
package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vietddude/ledgerview/internal/core/domain"
	"github.com/vietddude/ledgerview/internal/dash/metrics"
)

// Page is one cursor-paginated batch. An empty NextCursor marks the terminal
// page. Cursor tokens are opaque; the client stores and replays them
// verbatim.
type Page struct {
	Items      []domain.Record `json:"items"`
	NextCursor string          `json:"next_cursor"`
}

// Client talks to one indexer instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      RetryConfig
}

// New creates a client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry: DefaultRetryConfig,
	}
}

// WithRetry overrides the retry configuration.
func (c *Client) WithRetry(cfg RetryConfig) *Client {
	c.retry = cfg
	return c
}

// FetchBlocks fetches one page of the block list.
func (c *Client) FetchBlocks(ctx context.Context, cursor string, limit int) (Page, error) {
	return c.fetchPage(ctx, "blocks", "/api/blocks", cursor, limit)
}

// FetchTransactions fetches one page of the transaction list.
func (c *Client) FetchTransactions(ctx context.Context, cursor string, limit int) (Page, error) {
	return c.fetchPage(ctx, "transactions", "/api/transactions", cursor, limit)
}

func (c *Client) fetchPage(ctx context.Context, list, path, cursor string, limit int) (Page, error) {
	if limit <= 0 {
		limit = 20
	}
	q := url.Values{}
	q.Set("cursor", cursor)
	q.Set("limit", strconv.Itoa(limit))

	var page Page
	start := time.Now()
	err := callWithRetry(ctx, c.retry, func() error {
		return c.getJSON(ctx, path, q, &page)
	})
	metrics.FetchLatency.WithLabelValues(list).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchErrors.WithLabelValues(list).Inc()
		return Page{}, fmt.Errorf("fetch %s page: %w", list, err)
	}
	metrics.PagesFetched.WithLabelValues(list).Inc()
	return page, nil
}

// FetchStatus fetches the current progress snapshot.
func (c *Client) FetchStatus(ctx context.Context) (domain.ProgressSnapshot, error) {
	var snap domain.ProgressSnapshot
	start := time.Now()
	err := callWithRetry(ctx, c.retry, func() error {
		return c.getJSON(ctx, "/status", nil, &snap)
	})
	metrics.FetchLatency.WithLabelValues("status").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchErrors.WithLabelValues("status").Inc()
		return domain.ProgressSnapshot{}, fmt.Errorf("fetch status: %w", err)
	}
	return snap, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Status: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
