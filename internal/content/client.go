package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gojson "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

// FetchError is a typed upstream failure: a non-2xx status or an
// unusable response body. It is never cached; callers decide whether to
// substitute a fallback payload or propagate.
type FetchError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream request %s failed with status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("upstream request %s failed: %s", e.Path, e.Message)
}

// Client fetches JSON from the upstream content API. A circuit breaker
// sheds load when the upstream is failing consecutively, so a dead API
// degrades into fast errors rather than piled-up timeouts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[json.RawMessage]
}

// NewClient creates a content API client for baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
			Name:    "content-api",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Fetch performs a GET for path against the upstream and returns the raw
// JSON body. Implements cache.Fetcher.
func (c *Client) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	return c.breaker.Execute(func() (json.RawMessage, error) {
		return c.fetch(ctx, path)
	})
}

func (c *Client) fetch(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Path: path, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Path: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Path: path, Message: err.Error()}
	}
	if !gojson.Valid(body) {
		return nil, &FetchError{Path: path, Message: "response is not valid JSON"}
	}
	return body, nil
}
