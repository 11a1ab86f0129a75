package search

import (
	"cmp"
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/go-tripboard/internal/app/models"
	"github.com/FACorreiaa/go-tripboard/internal/app/observability/metrics"
	"github.com/FACorreiaa/go-tripboard/internal/pkg/cache"
	"github.com/FACorreiaa/go-tripboard/internal/pkg/config"
)

const (
	unnamedPlace          = "Unnamed place"
	defaultGeocodeTimeout = 10 * time.Second
)

var (
	ErrNotConfigured = models.NewConfigError("Server API key not configured")
	ErrMissingQuery  = models.NewValidationError("Missing q")
)

type Service interface {
	Search(ctx context.Context, query, interest string) (models.SearchResponse, error)
}

var _ Service = (*ServiceImpl)(nil)

// geocodeHit is cached even when empty so unknown places are not re-queried.
type geocodeHit struct {
	Center *Point
}

type ServiceImpl struct {
	logger       *zap.Logger
	client       Client
	categories   *CategoryTable
	geocodeCache *cache.UnifiedCache[geocodeHit]
	group        singleflight.Group

	configured   bool
	radiusMeters int
	limit        int
	// geocodeTimeout bounds a shared geocode, which outlives the request
	// that started it.
	geocodeTimeout time.Duration
}

func NewService(client Client, categories *CategoryTable, cfg config.SearchConfig, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:         logger,
		client:         client,
		categories:     categories,
		geocodeCache:   cache.NewUnifiedCache[geocodeHit](cfg.GeocodeCacheTTL, "geocode", logger),
		configured:     cfg.APIKey != "",
		radiusMeters:   cfg.RadiusMeters,
		limit:          cfg.Limit,
		geocodeTimeout: cmp.Or(cfg.HTTPTimeout, defaultGeocodeTimeout),
	}
}

// Search geocodes query and lists places around it for the interest tag.
// An empty result is retried once with the fallback filter.
func (s *ServiceImpl) Search(ctx context.Context, query, interest string) (resp models.SearchResponse, err error) {
	ctx, span := otel.Tracer("SearchService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("search.interest", interest),
	))
	defer span.End()

	outcome := "ok"
	defer func() {
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.Get().SearchRequestsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("interest", interest),
			attribute.String("outcome", outcome),
		))
	}()

	l := s.logger.With(zap.String("method", "Search"), zap.String("interest", interest))

	if !s.configured {
		l.Error("Places API key is not configured")
		return models.SearchResponse{}, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return models.SearchResponse{}, ErrMissingQuery
	}
	filter := s.categories.FilterFor(interest)
	span.SetAttributes(attribute.String("search.filter", filter))

	center, err := s.geocode(ctx, query)
	if err != nil {
		l.Warn("Geocode failed", zap.Error(err))
		return models.SearchResponse{}, err
	}
	if center == nil {
		outcome = "no_match"
		l.Debug("Location not found", zap.String("query", query))
		return models.SearchResponse{Results: []models.Place{}}, nil
	}

	pq := PlacesQuery{Categories: filter, Center: *center, RadiusMeters: s.radiusMeters, Limit: s.limit}
	features, err := s.client.Places(ctx, pq)
	if err != nil {
		l.Warn("Places query failed", zap.Error(err))
		return models.SearchResponse{}, err
	}

	if len(features) == 0 && filter != s.categories.FallbackFilter {
		metrics.Get().SearchFallbacksTotal.Add(ctx, 1)
		pq.Categories = s.categories.FallbackFilter
		fb, fbErr := s.client.Places(ctx, pq)
		if fbErr != nil {
			// A failed fallback leaves the empty primary result in place.
			l.Warn("Fallback places query failed", zap.Error(fbErr))
		} else {
			features = fb
		}
	}

	lat, lon := center.Lat, center.Lon
	resp = models.SearchResponse{
		Center:  models.Coordinates{Lat: &lat, Lon: &lon},
		Results: make([]models.Place, 0, len(features)),
	}
	for _, f := range features {
		resp.Results = append(resp.Results, s.toPlace(f))
	}
	span.SetAttributes(attribute.Int("search.results", len(resp.Results)))
	l.Info("Search completed", zap.Int("results", len(resp.Results)))
	return resp, nil
}

func (s *ServiceImpl) toPlace(f PlaceFeature) models.Place {
	name := f.Name
	if name == "" {
		name = f.AddressLine1
	}
	if name == "" {
		name = unnamedPlace
	}
	return models.Place{
		ID:       f.PlaceID,
		Name:     name,
		Category: s.categories.PickCategory(f.Categories),
		Lon:      f.Lon,
		Lat:      f.Lat,
		Address:  f.Formatted,
	}
}

// geocode resolves query through the cache; concurrent misses for the same
// query share one upstream call.
func (s *ServiceImpl) geocode(ctx context.Context, query string) (*Point, error) {
	key := cache.NewCacheKeyBuilder(s.logger).AddQuery(query).BuildOrDefault()
	if hit, ok := s.geocodeCache.Get(key); ok {
		return hit.Center, nil
	}

	// The shared call must not fail every waiter when the caller that
	// started it goes away, so it runs detached with its own deadline.
	ch := s.group.DoChan(key, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.geocodeTimeout)
		defer cancel()
		center, err := s.client.Geocode(callCtx, query)
		if err != nil {
			return nil, err
		}
		s.geocodeCache.Set(key, geocodeHit{Center: center})
		return center, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		s.logger.Debug("Geocode shared with a concurrent request", zap.String("query", query))
	}
	center, ok := res.Val.(*Point)
	if !ok {
		return nil, errors.New("unexpected geocode result type")
	}
	return center, nil
}
