package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kdramahub/kdramahub/internal/domain"
)

// Catalog is a mock implementation of catalog.Catalog
type Catalog struct {
	mock.Mock
}

// RecentlyAdded returns the freshest listings page
func (m *Catalog) RecentlyAdded(ctx context.Context, page int) ([]domain.Drama, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Drama), args.Error(1)
}

// Popular returns the popular listings page
func (m *Catalog) Popular(ctx context.Context, page int) ([]domain.Drama, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Drama), args.Error(1)
}

// Search returns one page of search results for query
func (m *Catalog) Search(ctx context.Context, query string, page int) (*domain.SearchResult, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchResult), args.Error(1)
}

// DramaDetail returns the detail record for one series
func (m *Catalog) DramaDetail(ctx context.Context, slug string) (*domain.Drama, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Drama), args.Error(1)
}

// EpisodeDetail returns playback metadata for one episode
func (m *Catalog) EpisodeDetail(ctx context.Context, slug, episode string) (*domain.Episode, error) {
	args := m.Called(ctx, slug, episode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Episode), args.Error(1)
}

// Schedule returns the weekly broadcast schedule
func (m *Catalog) Schedule(ctx context.Context) ([]domain.ScheduleEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScheduleEntry), args.Error(1)
}

// TopRankings returns the hot-series top list
func (m *Catalog) TopRankings(ctx context.Context) ([]domain.Ranking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ranking), args.Error(1)
}

// InvalidateDrama drops cached entries mentioning slug
func (m *Catalog) InvalidateDrama(slug string) {
	m.Called(slug)
}

// InvalidateAll empties the response cache
func (m *Catalog) InvalidateAll() {
	m.Called()
}
