package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kdramahub/kdramahub/internal/domain"
)

// Service is a mock implementation of profile.Service
type Service struct {
	mock.Mock
}

// GetProfile retrieves a user's profile
func (m *Service) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// SaveProfile validates and persists a user's profile
func (m *Service) SaveProfile(ctx context.Context, userID, displayName, avatarURL string) (*domain.Profile, error) {
	args := m.Called(ctx, userID, displayName, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

// AddToWatchlist saves a drama to the user's watchlist
func (m *Service) AddToWatchlist(ctx context.Context, userID, slug, title, poster string) error {
	args := m.Called(ctx, userID, slug, title, poster)
	return args.Error(0)
}

// RemoveFromWatchlist removes a drama from the user's watchlist
func (m *Service) RemoveFromWatchlist(ctx context.Context, userID, slug string) error {
	args := m.Called(ctx, userID, slug)
	return args.Error(0)
}

// GetWatchlist returns the user's watchlist, newest first
func (m *Service) GetWatchlist(ctx context.Context, userID string) ([]*domain.WatchlistItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WatchlistItem), args.Error(1)
}

// SaveProgress records a continue-watching bookmark
func (m *Service) SaveProgress(ctx context.Context, userID, slug, episode string, position, duration float64) error {
	args := m.Called(ctx, userID, slug, episode, position, duration)
	return args.Error(0)
}

// GetContinueWatching returns recent bookmarks, most recent first
func (m *Service) GetContinueWatching(ctx context.Context, userID string) ([]*domain.Progress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Progress), args.Error(1)
}

// ClearProgress removes the bookmark for one drama
func (m *Service) ClearProgress(ctx context.Context, userID, slug string) error {
	args := m.Called(ctx, userID, slug)
	return args.Error(0)
}
