package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kdramahub/kdramahub/internal/domain"
	"github.com/kdramahub/kdramahub/internal/repository"
)

// defaultContinueWatchingLimit caps the continue-watching rail.
const defaultContinueWatchingLimit = 20

// Service exposes profile, watchlist and continue-watching operations.
type Service interface {
	// GetProfile retrieves a user's profile
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)

	// SaveProfile validates and persists a user's profile
	SaveProfile(ctx context.Context, userID, displayName, avatarURL string) (*domain.Profile, error)

	// AddToWatchlist saves a drama to the user's watchlist
	AddToWatchlist(ctx context.Context, userID, slug, title, poster string) error

	// RemoveFromWatchlist removes a drama from the user's watchlist
	RemoveFromWatchlist(ctx context.Context, userID, slug string) error

	// GetWatchlist returns the user's watchlist, newest first
	GetWatchlist(ctx context.Context, userID string) ([]*domain.WatchlistItem, error)

	// SaveProgress records a continue-watching bookmark
	SaveProgress(ctx context.Context, userID, slug, episode string, position, duration float64) error

	// GetContinueWatching returns recent bookmarks, most recent first
	GetContinueWatching(ctx context.Context, userID string) ([]*domain.Progress, error)

	// ClearProgress removes the bookmark for one drama
	ClearProgress(ctx context.Context, userID, slug string) error
}

type service struct {
	repo repository.UserRepository
	now  func() time.Time
}

// New creates a profile service over repo.
func New(repo repository.UserRepository) Service {
	return &service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *service) SaveProfile(ctx context.Context, userID, displayName, avatarURL string) (*domain.Profile, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("display name cannot be empty")
	}

	profile := &domain.Profile{
		UserID:      userID,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		UpdatedAt:   s.now(),
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}

func (s *service) AddToWatchlist(ctx context.Context, userID, slug, title, poster string) error {
	if strings.TrimSpace(slug) == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}

	return s.repo.AddToWatchlist(ctx, &domain.WatchlistItem{
		UserID:  userID,
		Slug:    slug,
		Title:   title,
		Poster:  poster,
		AddedAt: s.now(),
	})
}

func (s *service) RemoveFromWatchlist(ctx context.Context, userID, slug string) error {
	return s.repo.RemoveFromWatchlist(ctx, userID, slug)
}

func (s *service) GetWatchlist(ctx context.Context, userID string) ([]*domain.WatchlistItem, error) {
	return s.repo.GetWatchlist(ctx, userID)
}

func (s *service) SaveProgress(ctx context.Context, userID, slug, episode string, position, duration float64) error {
	if strings.TrimSpace(slug) == "" {
		return fmt.Errorf("slug cannot be empty")
	}
	if strings.TrimSpace(episode) == "" {
		return fmt.Errorf("episode cannot be empty")
	}
	if position < 0 {
		return fmt.Errorf("position must be non-negative, got: %v", position)
	}

	return s.repo.SaveProgress(ctx, &domain.Progress{
		UserID:    userID,
		Slug:      slug,
		Episode:   episode,
		Position:  position,
		Duration:  duration,
		UpdatedAt: s.now(),
	})
}

func (s *service) GetContinueWatching(ctx context.Context, userID string) ([]*domain.Progress, error) {
	return s.repo.GetContinueWatching(ctx, userID, defaultContinueWatchingLimit)
}

func (s *service) ClearProgress(ctx context.Context, userID, slug string) error {
	return s.repo.ClearProgress(ctx, userID, slug)
}
