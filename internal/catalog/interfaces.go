package catalog

import (
	"context"

	"github.com/kdramahub/kdramahub/internal/domain"
)

// Catalog exposes typed reads over the upstream content API, cached per
// resource with distinct staleness tolerances.
//
// Listing reads (recently added, popular, search, schedule, rankings)
// degrade to an empty result on upstream failure so listing pages render
// a placeholder state. Entity reads (drama, episode) propagate the typed
// failure because absence is meaningful there.
type Catalog interface {
	// RecentlyAdded returns the freshest listings page.
	RecentlyAdded(ctx context.Context, page int) ([]domain.Drama, error)

	// Popular returns the popular listings page.
	Popular(ctx context.Context, page int) ([]domain.Drama, error)

	// Search returns one page of search results for query.
	Search(ctx context.Context, query string, page int) (*domain.SearchResult, error)

	// DramaDetail returns the detail record for one series.
	DramaDetail(ctx context.Context, slug string) (*domain.Drama, error)

	// EpisodeDetail returns playback metadata for one episode.
	EpisodeDetail(ctx context.Context, slug, episode string) (*domain.Episode, error)

	// Schedule returns the weekly broadcast schedule.
	Schedule(ctx context.Context) ([]domain.ScheduleEntry, error)

	// TopRankings returns the hot-series top list.
	TopRankings(ctx context.Context) ([]domain.Ranking, error)

	// InvalidateDrama drops cached entries mentioning slug.
	InvalidateDrama(slug string)

	// InvalidateAll empties the response cache.
	InvalidateAll()
}
