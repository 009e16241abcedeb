// Package search runs a role search end to end: cache, fetch, normalize,
// dedupe, sort and bucket.
package search

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/amishk599/jobscout/internal/cache"
	"github.com/amishk599/jobscout/internal/dedupe"
	"github.com/amishk599/jobscout/internal/metrics"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/normalize"
	"github.com/amishk599/jobscout/internal/window"
)

// Settings are the search defaults and source parameters.
type Settings struct {
	DefaultLocation string
	MaxResults      int
	HoursWindow     int
	RequestTimeout  time.Duration // per search-term fetch; zero disables
	Sites           []string
}

// Service orchestrates searches.
type Service struct {
	settings   Settings
	catalog    model.RoleCatalog
	source     model.JobSource
	cache      cache.Cache
	normalizer *normalize.Normalizer
	metrics    *metrics.Recorder
	logger     *slog.Logger
	now        model.Clock
	group      singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for generated_at.
func WithClock(now model.Clock) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires a search service from its collaborators.
func NewService(
	settings Settings,
	catalog model.RoleCatalog,
	source model.JobSource,
	c cache.Cache,
	normalizer *normalize.Normalizer,
	rec *metrics.Recorder,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		settings:   settings,
		catalog:    catalog,
		source:     source,
		cache:      c,
		normalizer: normalizer,
		metrics:    rec,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Roles lists every role in the catalog.
func (s *Service) Roles() []model.Role {
	return s.catalog.All()
}

// Search runs req and returns the windowed response. It returns
// *model.UnknownRoleError for a role not in the catalog and *model.FetchError
// when the source fails; failed fetches are never cached.
func (s *Service) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	start := time.Now()
	resp, err := s.search(ctx, req)
	s.metrics.Search(time.Since(start), err)
	return resp, err
}

func (s *Service) search(ctx context.Context, req model.SearchRequest) (*model.SearchResponse, error) {
	role, ok := s.catalog.Lookup(req.Role)
	if !ok {
		return nil, &model.UnknownRoleError{Key: req.Role}
	}

	location := s.location(req.Location)
	maxResults := s.maxResults(req.MaxResults)
	remote := req.Remote()

	logger := s.logger.With("search_id", uuid.NewString(), "role", role.Key)
	logger.Debug("search started",
		"location", location,
		"include_remote", remote,
		"max_results", maxResults,
		"skills", len(req.Skills),
	)

	key := cache.Key(role.Key, location, remote, maxResults)
	raw, hit := s.cached(ctx, logger, key)
	if !hit {
		var err error
		raw, err = s.fetchShared(ctx, logger, key, role, s.query(location, remote, maxResults), false)
		if err != nil {
			logger.Error("search failed", "error", err)
			return nil, err
		}
	}

	jobs, dropped := s.normalizer.NormalizeAll(raw, req.Skills)
	unique := dedupe.ByLink(jobs)
	window.SortByAge(unique)
	windows := window.Bucket(unique)
	s.metrics.Pipeline(len(jobs), dropped, len(jobs)-len(unique))

	logger.Info("search completed",
		"cache_hit", hit,
		"raw", len(raw),
		"dropped", dropped,
		"duplicates", len(jobs)-len(unique),
		"total_jobs", len(unique),
	)

	return &model.SearchResponse{
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
		Role:        role,
		Location:    location,
		Windows:     windows,
		TotalJobs:   len(unique),
		SearchTerms: append([]string(nil), role.SearchTerms...),
	}, nil
}

// Prefetch fetches roleKey with default parameters and stores the result,
// replacing any cached entry. It returns how many raw records were cached.
func (s *Service) Prefetch(ctx context.Context, roleKey string) (int, error) {
	role, ok := s.catalog.Lookup(roleKey)
	if !ok {
		return 0, &model.UnknownRoleError{Key: roleKey}
	}

	location := s.settings.DefaultLocation
	key := cache.Key(role.Key, location, true, s.settings.MaxResults)
	logger := s.logger.With("search_id", uuid.NewString(), "role", role.Key, "prefetch", true)

	raw, err := s.fetchShared(ctx, logger, key, role, s.query(location, true, s.settings.MaxResults), true)
	if err != nil {
		return 0, err
	}
	return len(raw), nil
}

func (s *Service) cached(ctx context.Context, logger *slog.Logger, key string) ([]model.RawJob, bool) {
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache lookup failed, treating as miss", "key", key, "error", err)
		ok = false
	}
	s.metrics.CacheLookup(ok)
	return raw, ok
}

// fetchShared fetches every search term for role and caches the combined
// records. Concurrent callers for the same key share one fetch, which runs
// detached from any single caller's cancellation. Unless refresh is set, a
// flight first re-checks the cache so callers that missed just before an
// earlier flight landed do not fetch again.
func (s *Service) fetchShared(ctx context.Context, logger *slog.Logger, key string, role model.Role, q model.Query, refresh bool) ([]model.RawJob, error) {
	detached := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(key, func() (any, error) {
		if !refresh {
			if raw, ok, err := s.cache.Get(detached, key); err == nil && ok {
				return raw, nil
			}
		}
		raw, err := s.fetchAll(detached, logger, role, q)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(detached, key, raw); err != nil {
			logger.Warn("cache store failed", "key", key, "error", err)
		}
		return raw, nil
	})
	if shared {
		logger.Debug("joined in-flight fetch", "key", key)
	}
	if err != nil {
		return nil, err
	}
	return v.([]model.RawJob), nil
}

// fetchAll queries the source once per search term, in order, tagging each
// record with the term that produced it.
func (s *Service) fetchAll(ctx context.Context, logger *slog.Logger, role model.Role, q model.Query) ([]model.RawJob, error) {
	var all []model.RawJob
	for _, term := range role.SearchTerms {
		q.SearchTerm = term
		records, err := s.fetchTerm(ctx, q)
		if err != nil {
			return nil, &model.FetchError{SearchTerm: term, Err: err}
		}
		logger.Debug("fetched search term", "search_term", term, "records", len(records))

		for _, r := range records {
			tagged := maps.Clone(r)
			if tagged == nil {
				tagged = model.RawJob{}
			}
			tagged[model.SearchTermKey] = term
			all = append(all, tagged)
		}
	}
	if all == nil {
		all = []model.RawJob{}
	}
	return all, nil
}

func (s *Service) fetchTerm(ctx context.Context, q model.Query) ([]model.RawJob, error) {
	if s.settings.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	records, err := s.source.Fetch(ctx, q)
	s.metrics.Fetch(time.Since(start), err)

	// A source that ignores its context can still return after the deadline.
	if err == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, ctx.Err()
	}
	return records, err
}

func (s *Service) query(location string, remote bool, maxResults int) model.Query {
	return model.Query{
		Location:      location,
		HoursOld:      s.settings.HoursWindow,
		MaxResults:    maxResults,
		IncludeRemote: remote,
		Sites:         s.settings.Sites,
	}
}

func (s *Service) location(override *string) string {
	if override != nil {
		if loc := strings.TrimSpace(*override); loc != "" {
			return loc
		}
	}
	return s.settings.DefaultLocation
}

func (s *Service) maxResults(override *int) int {
	if override != nil && *override > 0 {
		return *override
	}
	return s.settings.MaxResults
}
