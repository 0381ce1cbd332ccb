package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/network"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/ports"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/metrics"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/telemetry"
)

// Geocode result sources.
const (
	SourceLandmark = "landmark"
	SourceCache    = "cache"
	SourceGeocoder = "geocoder"
	SourceFallback = "fallback"
)

// ErrEmptyQuery is returned for blank geocode queries.
var ErrEmptyQuery = errors.New("query must not be empty")

// GeocodeOptions configures GeocodeService.
type GeocodeOptions struct {
	Fallback       domain.GeoPoint
	CacheTTL       int     // seconds
	LandmarkRadius float64 // meters, reverse lookups
}

// GeocodeService resolves place names against the gazetteer first and an
// external geocoder second. It never fails on collaborator errors.
type GeocodeService struct {
	net      *network.Network
	geocoder ports.Geocoder
	cache    ports.CacheService
	opts     GeocodeOptions
	log      *slog.Logger
}

// NewGeocodeService creates a GeocodeService. geocoder and cache may be nil.
func NewGeocodeService(net *network.Network, geocoder ports.Geocoder, cache ports.CacheService, opts GeocodeOptions, logger *slog.Logger) *GeocodeService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.LandmarkRadius <= 0 {
		opts.LandmarkRadius = network.TransferLabelRadiusMeters
	}
	return &GeocodeService{net: net, geocoder: geocoder, cache: cache, opts: opts, log: logger}
}

// Geocode resolves free text to a coordinate.
func (s *GeocodeService) Geocode(ctx context.Context, query string) (*domain.GeocodeResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}

	ctx, span := telemetry.Tracer().Start(ctx, "GeocodeService.Geocode")
	defer span.End()

	res := s.geocode(ctx, q)
	span.SetAttributes(telemetry.AttrGeocodeSource.String(res.Source))
	metrics.GeocodeRequests.WithLabelValues("forward", res.Source).Inc()
	return res, nil
}

func (s *GeocodeService) geocode(ctx context.Context, q string) *domain.GeocodeResult {
	if l, ok := s.net.MatchLandmark(q); ok {
		return &domain.GeocodeResult{Query: q, Location: l.Location, DisplayName: l.Name, Source: SourceLandmark}
	}

	cacheKey := "geocode:fwd:" + strings.ToLower(q)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var res domain.GeocodeResult
			if err := json.Unmarshal(data, &res); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				res.Source = SourceCache
				return &res
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	if s.geocoder != nil {
		res, err := s.geocoder.Geocode(ctx, q)
		if err == nil && res != nil && res.Location.Valid() {
			res.Query = q
			res.Source = SourceGeocoder
			if s.cache != nil {
				if data, err := json.Marshal(res); err == nil {
					_ = s.cache.Set(ctx, cacheKey, data, s.opts.CacheTTL)
				}
			}
			return res
		}
		s.log.Warn("geocoder failed, using city centroid", "query", q, "error", err)
	}

	return &domain.GeocodeResult{Query: q, Location: s.opts.Fallback, DisplayName: q, Source: SourceFallback}
}

// ReverseGeocode names a coordinate: a nearby landmark, then the external
// geocoder, then the formatted coordinate itself.
func (s *GeocodeService) ReverseGeocode(ctx context.Context, p domain.GeoPoint) (string, error) {
	if !p.Valid() {
		return "", domain.ErrInvalidCoordinate
	}

	ctx, span := telemetry.Tracer().Start(ctx, "GeocodeService.ReverseGeocode")
	defer span.End()

	name, source := s.reverse(ctx, p)
	span.SetAttributes(telemetry.AttrGeocodeSource.String(source))
	metrics.GeocodeRequests.WithLabelValues("reverse", source).Inc()
	return name, nil
}

func (s *GeocodeService) reverse(ctx context.Context, p domain.GeoPoint) (string, string) {
	if l, ok := s.net.LandmarkNear(p, s.opts.LandmarkRadius); ok {
		return l.Name, SourceLandmark
	}

	cacheKey := fmt.Sprintf("geocode:rev:%.5f:%.5f", p.Lat, p.Lon)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil && len(data) > 0 {
			metrics.CacheHits.WithLabelValues("reverse_geocode").Inc()
			return string(data), SourceCache
		}
		metrics.CacheMisses.WithLabelValues("reverse_geocode").Inc()
	}

	if s.geocoder != nil {
		name, err := s.geocoder.ReverseGeocode(ctx, p)
		if err == nil && name != "" {
			if s.cache != nil {
				_ = s.cache.Set(ctx, cacheKey, []byte(name), s.opts.CacheTTL)
			}
			return name, SourceGeocoder
		}
		s.log.Warn("reverse geocoder failed", "lat", p.Lat, "lon", p.Lon, "error", err)
	}

	return FormatCoordinate(p), SourceFallback
}

// FormatCoordinate renders p as "lat, lon" with five decimals.
func FormatCoordinate(p domain.GeoPoint) string {
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lon)
}
