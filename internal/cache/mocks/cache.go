package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/stretchr/testify/mock"
)

// ResponseCache is a mock implementation of cache.ResponseCache
type ResponseCache struct {
	mock.Mock
}

// Get returns the cached or fetched response for path
func (m *ResponseCache) Get(ctx context.Context, path string, ttl time.Duration) (json.RawMessage, error) {
	args := m.Called(ctx, path, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// Clear empties the cache and pending flights
func (m *ResponseCache) Clear() {
	m.Called()
}

// ClearByPattern removes entries whose path contains substring
func (m *ResponseCache) ClearByPattern(substring string) {
	m.Called(substring)
}

// Fetcher is a mock implementation of cache.Fetcher
type Fetcher struct {
	mock.Mock
}

// Fetch performs the underlying request for path
func (m *Fetcher) Fetch(ctx context.Context, path string) (json.RawMessage, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}
