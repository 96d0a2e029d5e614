package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cachemocks "github.com/kdramahub/kdramahub/internal/cache/mocks"
	"github.com/kdramahub/kdramahub/internal/content"
)

func testPolicy() TTLPolicy {
	return TTLPolicy{
		Recent:   time.Minute,
		Search:   2 * time.Minute,
		Popular:  3 * time.Minute,
		Drama:    4 * time.Minute,
		Episode:  5 * time.Minute,
		Schedule: time.Minute,
		Rankings: 3 * time.Minute,
	}
}

func TestCatalog_RecentlyAdded(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		setupMock func(*cachemocks.ResponseCache)
		wantLen   int
	}{
		{
			name: "successful fetch",
			setupMock: func(c *cachemocks.ResponseCache) {
				c.On("Get", ctx, "/recently-added?page=1", time.Minute).
					Return(json.RawMessage(`{"results":[{"slug":"a"},{"slug":"b"}]}`), nil)
			},
			wantLen: 2,
		},
		{
			name: "upstream failure degrades to empty page",
			setupMock: func(c *cachemocks.ResponseCache) {
				c.On("Get", ctx, "/recently-added?page=1", time.Minute).
					Return(nil, &content.FetchError{Path: "/recently-added?page=1", StatusCode: http.StatusBadGateway})
			},
			wantLen: 0,
		},
		{
			name: "malformed payload degrades to empty page",
			setupMock: func(c *cachemocks.ResponseCache) {
				c.On("Get", ctx, "/recently-added?page=1", time.Minute).
					Return(json.RawMessage(`"surprise"`), nil)
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCache := &cachemocks.ResponseCache{}
			tt.setupMock(mockCache)

			svc := New(mockCache, testPolicy())
			dramas, err := svc.RecentlyAdded(ctx, 1)

			require.NoError(t, err)
			assert.Len(t, dramas, tt.wantLen)
			mockCache.AssertExpectations(t)
		})
	}
}

func TestCatalog_TTLSelection(t *testing.T) {
	ctx := context.Background()
	policy := testPolicy()
	mockCache := &cachemocks.ResponseCache{}

	mockCache.On("Get", ctx, "/popular?page=2", policy.Popular).
		Return(json.RawMessage(`{"results":[]}`), nil)
	mockCache.On("Get", ctx, "/drama/my-drama", policy.Drama).
		Return(json.RawMessage(`{"slug":"my-drama","title":"My Drama"}`), nil)
	mockCache.On("Get", ctx, "/episode/my-drama/3", policy.Episode).
		Return(json.RawMessage(`{"slug":"my-drama","number":"3"}`), nil)

	svc := New(mockCache, policy)

	_, err := svc.Popular(ctx, 2)
	require.NoError(t, err)
	_, err = svc.DramaDetail(ctx, "my-drama")
	require.NoError(t, err)
	_, err = svc.EpisodeDetail(ctx, "my-drama", "3")
	require.NoError(t, err)

	mockCache.AssertExpectations(t)
}

func TestCatalog_Search(t *testing.T) {
	ctx := context.Background()
	policy := testPolicy()
	mockCache := &cachemocks.ResponseCache{}

	mockCache.On("Get", ctx, "/search?q=my+drama&page=1", policy.Search).
		Return(json.RawMessage(`{"totalPages":3,"results":[{"slug":"my-drama"}]}`), nil)

	svc := New(mockCache, policy)
	result, err := svc.Search(ctx, "my drama", 1)

	require.NoError(t, err)
	assert.Equal(t, "my drama", result.Query)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "my-drama", result.Results[0].Slug)
}

func TestCatalog_Search_DegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	mockCache := &cachemocks.ResponseCache{}

	mockCache.On("Get", ctx, "/search?q=x&page=1", testPolicy().Search).
		Return(nil, &content.FetchError{Path: "/search?q=x&page=1", StatusCode: http.StatusServiceUnavailable})

	svc := New(mockCache, testPolicy())
	result, err := svc.Search(ctx, "x", 1)

	require.NoError(t, err)
	assert.Empty(t, result.Results)
}

func TestCatalog_DramaDetail_PropagatesFailure(t *testing.T) {
	ctx := context.Background()
	mockCache := &cachemocks.ResponseCache{}

	wantErr := &content.FetchError{Path: "/drama/missing", StatusCode: http.StatusNotFound}
	mockCache.On("Get", ctx, "/drama/missing", testPolicy().Drama).
		Return(nil, wantErr)

	svc := New(mockCache, testPolicy())
	_, err := svc.DramaDetail(ctx, "missing")

	var fetchErr *content.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestCatalog_EpisodeDetail_PropagatesFailure(t *testing.T) {
	ctx := context.Background()
	mockCache := &cachemocks.ResponseCache{}

	mockCache.On("Get", ctx, "/episode/my-drama/99", testPolicy().Episode).
		Return(nil, &content.FetchError{Path: "/episode/my-drama/99", StatusCode: http.StatusNotFound})

	svc := New(mockCache, testPolicy())
	_, err := svc.EpisodeDetail(ctx, "my-drama", "99")
	assert.Error(t, err)
}

func TestCatalog_InvalidateDrama(t *testing.T) {
	mockCache := &cachemocks.ResponseCache{}
	mockCache.On("ClearByPattern", "/my-drama").Return()

	svc := New(mockCache, testPolicy())
	svc.InvalidateDrama("my-drama")

	mockCache.AssertExpectations(t)
}

func TestCatalog_InvalidateAll(t *testing.T) {
	mockCache := &cachemocks.ResponseCache{}
	mockCache.On("Clear").Return()

	svc := New(mockCache, testPolicy())
	svc.InvalidateAll()

	mockCache.AssertExpectations(t)
}
