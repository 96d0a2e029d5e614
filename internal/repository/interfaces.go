package repository

import (
	"context"
	"errors"

	"github.com/kdramahub/kdramahub/internal/domain"
)

// ErrProfileNotFound indicates no profile row exists for the user.
var ErrProfileNotFound = errors.New("profile not found")

// UserRepository defines persistence for profiles, watchlists and
// continue-watching bookmarks.
type UserRepository interface {
	// GetProfile retrieves a user's profile
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)

	// UpsertProfile creates or replaces a user's profile
	UpsertProfile(ctx context.Context, profile *domain.Profile) error

	// AddToWatchlist saves one drama to a user's watchlist; re-adding an
	// existing slug refreshes the row
	AddToWatchlist(ctx context.Context, item *domain.WatchlistItem) error

	// RemoveFromWatchlist deletes one watchlist entry
	RemoveFromWatchlist(ctx context.Context, userID, slug string) error

	// GetWatchlist retrieves a user's watchlist, newest first
	GetWatchlist(ctx context.Context, userID string) ([]*domain.WatchlistItem, error)

	// SaveProgress creates or replaces a continue-watching bookmark
	SaveProgress(ctx context.Context, progress *domain.Progress) error

	// GetContinueWatching retrieves a user's bookmarks, most recent first
	GetContinueWatching(ctx context.Context, userID string, limit int) ([]*domain.Progress, error)

	// ClearProgress deletes the bookmark for one drama
	ClearProgress(ctx context.Context, userID, slug string) error

	// Close closes the repository connection
	Close() error
}
