package search

import (
	"context"
	"log/slog"
	"time"

	"playfinder/internal/location"
	"playfinder/internal/place/models"
	"playfinder/internal/place/normalize"
	"playfinder/internal/provider"
	"playfinder/internal/search/cache"
	"playfinder/internal/search/metrics"
	dErrors "playfinder/pkg/domain-errors"
	"playfinder/pkg/geo"
)

// Ingestor accepts normalized provider places for background persistence.
// Enqueue must never block the search path.
type Ingestor interface {
	Enqueue(places []models.Place)
}

// Request is one search as the handler hands it to the service. Text wins
// over coordinates; with neither, the service resolves coordinates itself.
type Request struct {
	Text         string
	Coords       *geo.Coordinates
	RadiusMeters int
}

// Config carries the search service tunables.
type Config struct {
	DefaultRadiusMeters int
	RegionTTL           time.Duration
	TextTTL             time.Duration
}

// Service runs the search pipeline.
type Service struct {
	resolver *location.Resolver
	cache    *cache.Cache
	provider provider.Client
	ingest   Ingestor
	metrics  *metrics.Metrics
	logger   *slog.Logger
	cfg      Config
}

func NewService(
	resolver *location.Resolver,
	resultCache *cache.Cache,
	client provider.Client,
	ingest Ingestor,
	m *metrics.Metrics,
	logger *slog.Logger,
	cfg Config,
) *Service {
	return &Service{
		resolver: resolver,
		cache:    resultCache,
		provider: client,
		ingest:   ingest,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
	}
}

// Search returns normalized places for the request.
//
// The pipeline: build the provider query (resolving coordinates when the
// request carries none), consult the result cache, and on miss run a single
// provider attempt. An empty first result for a region query triggers exactly
// one re-query against the fallback region; whatever that yields is cached
// under the original key. Empty text results are returned as-is. Normalized results are handed to the ingestor for best-effort
// persistence; persistence failures never fail the search.
func (s *Service) Search(ctx context.Context, req Request) ([]models.Place, error) {
	start := time.Now()

	query, key, ttl := s.plan(ctx, req)
	defer func() {
		s.metrics.ObserveSearchLatency(string(query.Mode), time.Since(start))
	}()

	places, hit, err := s.cache.GetOrCompute(ctx, key, ttl, func(ctx context.Context) ([]models.Place, error) {
		return s.fetch(ctx, query)
	})
	s.metrics.IncrementCacheLookup(string(query.Mode), hit)
	if err != nil {
		return nil, err
	}
	return places, nil
}

// plan turns the request into a provider query, cache key, and TTL.
func (s *Service) plan(ctx context.Context, req Request) (provider.Query, string, time.Duration) {
	if req.Text != "" {
		return provider.TextQuery(req.Text), TextKey(req.Text), s.cfg.TextTTL
	}

	var coords geo.Coordinates
	if req.Coords != nil && req.Coords.Valid() {
		coords = *req.Coords
	} else {
		coords = s.resolver.Resolve(ctx)
	}

	radius := req.RadiusMeters
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusMeters
	}
	return provider.RegionQuery(coords, radius), RegionKey(coords, radius), s.cfg.RegionTTL
}

func (s *Service) fetch(ctx context.Context, query provider.Query) ([]models.Place, error) {
	records, err := s.search(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		if fallback, ok := s.fallbackQuery(query); ok {
			s.metrics.IncrementFallbackRequery()
			s.logger.InfoContext(ctx, "empty search result, re-querying fallback region",
				"mode", query.Mode,
				"fallback", s.resolver.Fallback().String(),
			)
			records, err = s.search(ctx, fallback)
			if err != nil {
				return nil, err
			}
		}
	}

	places, dropped := normalize.Batch(records)
	s.metrics.AddRecordsDropped(len(dropped))
	for _, dropErr := range dropped {
		s.logger.WarnContext(ctx, "dropped malformed provider record", "error", dropErr)
	}

	if s.ingest != nil && len(places) > 0 {
		s.ingest.Enqueue(places)
	}
	return places, nil
}

func (s *Service) search(ctx context.Context, query provider.Query) ([]provider.Record, error) {
	records, err := s.provider.Search(ctx, query)
	s.metrics.IncrementProviderCall(string(query.Mode), err)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "place provider unavailable")
	}
	return records, nil
}

// fallbackQuery builds the one-shot fallback-region re-query. Only region
// queries fall back; an empty text result stays empty. No re-query when the
// original query already targeted the fallback region.
func (s *Service) fallbackQuery(query provider.Query) (provider.Query, bool) {
	if query.Mode != provider.ModeRegion {
		return provider.Query{}, false
	}
	fallback := s.resolver.Fallback()
	if query.Coords.Round(keyCoordDecimals) == fallback.Round(keyCoordDecimals) {
		return provider.Query{}, false
	}

	radius := query.RadiusMeters
	if radius <= 0 {
		radius = s.cfg.DefaultRadiusMeters
	}
	return provider.RegionQuery(fallback, radius), true
}
