package catalog

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	gojson "github.com/goccy/go-json"

	"github.com/kdramahub/kdramahub/internal/cache"
	"github.com/kdramahub/kdramahub/internal/domain"
)

// TTLPolicy holds the per-resource staleness tolerances. The exact values
// are a policy knob; what must hold is the ordering
// recent <= search <= popular <= drama <= episode (validated by config).
type TTLPolicy struct {
	Recent   time.Duration
	Search   time.Duration
	Popular  time.Duration
	Drama    time.Duration
	Episode  time.Duration
	Schedule time.Duration
	Rankings time.Duration
}

// DefaultTTLPolicy mirrors how quickly each resource actually changes:
// recency listings churn in minutes, episode playback metadata is close
// to immutable.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Recent:   5 * time.Minute,
		Search:   10 * time.Minute,
		Popular:  30 * time.Minute,
		Drama:    2 * time.Hour,
		Episode:  6 * time.Hour,
		Schedule: 15 * time.Minute,
		Rankings: 30 * time.Minute,
	}
}

// service implements Catalog over a ResponseCache.
type service struct {
	cache cache.ResponseCache
	ttl   TTLPolicy
}

// New creates a catalog service reading through c with the given TTLs.
func New(c cache.ResponseCache, ttl TTLPolicy) Catalog {
	return &service{
		cache: c,
		ttl:   ttl,
	}
}

// listingResponse is the upstream wire shape for listing endpoints.
type listingResponse struct {
	Results []domain.Drama `json:"results"`
}

// RecentlyAdded degrades to an empty page on upstream failure.
func (s *service) RecentlyAdded(ctx context.Context, page int) ([]domain.Drama, error) {
	return s.listing(ctx, fmt.Sprintf("/recently-added?page=%d", page), s.ttl.Recent)
}

// Popular degrades to an empty page on upstream failure.
func (s *service) Popular(ctx context.Context, page int) ([]domain.Drama, error) {
	return s.listing(ctx, fmt.Sprintf("/popular?page=%d", page), s.ttl.Popular)
}

func (s *service) listing(ctx context.Context, path string, ttl time.Duration) ([]domain.Drama, error) {
	data, err := s.cache.Get(ctx, path, ttl)
	if err != nil {
		log.Printf("[ERROR] Listing fetch %s failed, serving empty page: %v", path, err)
		return []domain.Drama{}, nil
	}

	var resp listingResponse
	if err := gojson.Unmarshal(data, &resp); err != nil {
		log.Printf("[ERROR] Listing decode %s failed, serving empty page: %v", path, err)
		return []domain.Drama{}, nil
	}
	if resp.Results == nil {
		return []domain.Drama{}, nil
	}
	return resp.Results, nil
}

// Search degrades to an empty result set on upstream failure.
func (s *service) Search(ctx context.Context, query string, page int) (*domain.SearchResult, error) {
	empty := &domain.SearchResult{Query: query, Page: page, Results: []domain.Drama{}}

	path := fmt.Sprintf("/search?q=%s&page=%d", url.QueryEscape(query), page)
	data, err := s.cache.Get(ctx, path, s.ttl.Search)
	if err != nil {
		log.Printf("[ERROR] Search fetch for %q failed, serving empty results: %v", query, err)
		return empty, nil
	}

	var result domain.SearchResult
	if err := gojson.Unmarshal(data, &result); err != nil {
		log.Printf("[ERROR] Search decode for %q failed, serving empty results: %v", query, err)
		return empty, nil
	}
	result.Query = query
	result.Page = page
	if result.Results == nil {
		result.Results = []domain.Drama{}
	}
	return &result, nil
}

// DramaDetail propagates failures: a missing drama is meaningful.
func (s *service) DramaDetail(ctx context.Context, slug string) (*domain.Drama, error) {
	data, err := s.cache.Get(ctx, "/drama/"+slug, s.ttl.Drama)
	if err != nil {
		return nil, err
	}

	var drama domain.Drama
	if err := gojson.Unmarshal(data, &drama); err != nil {
		return nil, fmt.Errorf("failed to decode drama %s: %w", slug, err)
	}
	return &drama, nil
}

// EpisodeDetail propagates failures: a missing episode is meaningful.
func (s *service) EpisodeDetail(ctx context.Context, slug, episode string) (*domain.Episode, error) {
	data, err := s.cache.Get(ctx, fmt.Sprintf("/episode/%s/%s", slug, episode), s.ttl.Episode)
	if err != nil {
		return nil, err
	}

	var ep domain.Episode
	if err := gojson.Unmarshal(data, &ep); err != nil {
		return nil, fmt.Errorf("failed to decode episode %s/%s: %w", slug, episode, err)
	}
	return &ep, nil
}

// Schedule degrades to an empty schedule on upstream failure.
func (s *service) Schedule(ctx context.Context) ([]domain.ScheduleEntry, error) {
	data, err := s.cache.Get(ctx, "/schedule", s.ttl.Schedule)
	if err != nil {
		log.Printf("[ERROR] Schedule fetch failed, serving empty schedule: %v", err)
		return []domain.ScheduleEntry{}, nil
	}

	var entries []domain.ScheduleEntry
	if err := gojson.Unmarshal(data, &entries); err != nil {
		log.Printf("[ERROR] Schedule decode failed, serving empty schedule: %v", err)
		return []domain.ScheduleEntry{}, nil
	}
	return entries, nil
}

// TopRankings degrades to an empty list on upstream failure.
func (s *service) TopRankings(ctx context.Context) ([]domain.Ranking, error) {
	data, err := s.cache.Get(ctx, "/hot-series", s.ttl.Rankings)
	if err != nil {
		log.Printf("[ERROR] Rankings fetch failed, serving empty list: %v", err)
		return []domain.Ranking{}, nil
	}

	var rankings []domain.Ranking
	if err := gojson.Unmarshal(data, &rankings); err != nil {
		log.Printf("[ERROR] Rankings decode failed, serving empty list: %v", err)
		return []domain.Ranking{}, nil
	}
	return rankings, nil
}

// InvalidateDrama drops every cached path mentioning slug, covering the
// detail page and its episode entries.
func (s *service) InvalidateDrama(slug string) {
	s.cache.ClearByPattern("/" + slug)
}

// InvalidateAll empties the response cache.
func (s *service) InvalidateAll() {
	s.cache.Clear()
}
