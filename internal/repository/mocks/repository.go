package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kdramahub/kdramahub/internal/domain"
)

// UserRepository is a mock implementation of repository.UserRepository
type UserRepository struct {
	mock.Mock
}

// GetProfile retrieves a user's profile
func (m *UserRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// UpsertProfile creates or replaces a user's profile
func (m *UserRepository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// AddToWatchlist saves one drama to a user's watchlist
func (m *UserRepository) AddToWatchlist(ctx context.Context, item *domain.WatchlistItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// RemoveFromWatchlist deletes one watchlist entry
func (m *UserRepository) RemoveFromWatchlist(ctx context.Context, userID, slug string) error {
	args := m.Called(ctx, userID, slug)
	return args.Error(0)
}

// GetWatchlist retrieves a user's watchlist, newest first
func (m *UserRepository) GetWatchlist(ctx context.Context, userID string) ([]*domain.WatchlistItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WatchlistItem), args.Error(1)
}

// SaveProgress creates or replaces a continue-watching bookmark
func (m *UserRepository) SaveProgress(ctx context.Context, progress *domain.Progress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

// GetContinueWatching retrieves a user's bookmarks, most recent first
func (m *UserRepository) GetContinueWatching(ctx context.Context, userID string, limit int) ([]*domain.Progress, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Progress), args.Error(1)
}

// ClearProgress deletes the bookmark for one drama
func (m *UserRepository) ClearProgress(ctx context.Context, userID, slug string) error {
	args := m.Called(ctx, userID, slug)
	return args.Error(0)
}

// Close closes the repository connection
func (m *UserRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
