package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kdramahub/kdramahub/internal/domain"
	"github.com/kdramahub/kdramahub/internal/repository"
)

// Repository implements repository.UserRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(databasePath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better performance
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	repo := &Repository{db: db}

	if err := repo.runMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// GetProfile retrieves a user's profile
func (r *Repository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, avatar_url, updated_at FROM profiles WHERE user_id = ?`,
		userID)

	var p domain.Profile
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.AvatarURL, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// UpsertProfile creates or replaces a user's profile
func (r *Repository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id, display_name, avatar_url, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		   display_name = excluded.display_name,
		   avatar_url = excluded.avatar_url,
		   updated_at = excluded.updated_at`,
		profile.UserID, profile.DisplayName, profile.AvatarURL, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// AddToWatchlist saves one drama to a user's watchlist
func (r *Repository) AddToWatchlist(ctx context.Context, item *domain.WatchlistItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO watchlist (user_id, slug, title, poster, added_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, slug) DO UPDATE SET
		   title = excluded.title,
		   poster = excluded.poster,
		   added_at = excluded.added_at`,
		item.UserID, item.Slug, item.Title, item.Poster, item.AddedAt)
	if err != nil {
		return fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return nil
}

// RemoveFromWatchlist deletes one watchlist entry
func (r *Repository) RemoveFromWatchlist(ctx context.Context, userID, slug string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM watchlist WHERE user_id = ? AND slug = ?`, userID, slug)
	if err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return nil
}

// GetWatchlist retrieves a user's watchlist, newest first
func (r *Repository) GetWatchlist(ctx context.Context, userID string) ([]*domain.WatchlistItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, slug, title, poster, added_at FROM watchlist
		 WHERE user_id = ? ORDER BY added_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	defer rows.Close()

	var items []*domain.WatchlistItem
	for rows.Next() {
		var item domain.WatchlistItem
		if err := rows.Scan(&item.UserID, &item.Slug, &item.Title, &item.Poster, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist row: %w", err)
		}
		items = append(items, &item)
	}
	return items, rows.Err()
}

// SaveProgress creates or replaces a continue-watching bookmark
func (r *Repository) SaveProgress(ctx context.Context, progress *domain.Progress) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO progress (user_id, slug, episode, position, duration, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, slug) DO UPDATE SET
		   episode = excluded.episode,
		   position = excluded.position,
		   duration = excluded.duration,
		   updated_at = excluded.updated_at`,
		progress.UserID, progress.Slug, progress.Episode, progress.Position, progress.Duration, progress.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// GetContinueWatching retrieves a user's bookmarks, most recent first
func (r *Repository) GetContinueWatching(ctx context.Context, userID string, limit int) ([]*domain.Progress, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, slug, episode, position, duration, updated_at FROM progress
		 WHERE user_id = ? ORDER BY updated_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get continue watching: %w", err)
	}
	defer rows.Close()

	var entries []*domain.Progress
	for rows.Next() {
		var p domain.Progress
		if err := rows.Scan(&p.UserID, &p.Slug, &p.Episode, &p.Position, &p.Duration, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress row: %w", err)
		}
		entries = append(entries, &p)
	}
	return entries, rows.Err()
}

// ClearProgress deletes the bookmark for one drama
func (r *Repository) ClearProgress(ctx context.Context, userID, slug string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM progress WHERE user_id = ? AND slug = ?`, userID, slug)
	if err != nil {
		return fmt.Errorf("failed to clear progress: %w", err)
	}
	return nil
}

// Close closes the repository connection
func (r *Repository) Close() error {
	return r.db.Close()
}

var _ repository.UserRepository = (*Repository)(nil)
