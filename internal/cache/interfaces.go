package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Fetcher produces the raw JSON response for an upstream request path.
// The content API client implements this.
type Fetcher interface {
	// Fetch performs the underlying request for path and returns the
	// response body. A non-2xx status or transport error is returned as
	// an error and must never be cached.
	Fetch(ctx context.Context, path string) (json.RawMessage, error)
}

// ResponseCache memoizes successful upstream responses per request path
// for a bounded TTL and collapses concurrent identical requests into one
// underlying fetch.
type ResponseCache interface {
	// Get returns the cached value for path if a non-expired entry
	// exists. Otherwise it joins an in-flight fetch for the same path if
	// one exists, or issues a new fetch. A successful result is cached
	// only when ttl > 0; a failed fetch is never cached and the error is
	// delivered to every caller sharing the flight.
	Get(ctx context.Context, path string, ttl time.Duration) (json.RawMessage, error)

	// Clear unconditionally empties the cache and forgets all pending
	// flights. In-flight fetches are not cancelled; their settlement does
	// not repopulate the emptied cache.
	Clear()

	// ClearByPattern removes only entries whose path contains substring.
	// Pending flights are untouched.
	ClearByPattern(substring string)
}
