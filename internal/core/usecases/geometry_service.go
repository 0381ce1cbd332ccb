package usecases

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/network"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/ports"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/traffic"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/geospatial"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/metrics"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/telemetry"
)

// RouteGeometry is a drawable route with its travel estimate.
type RouteGeometry struct {
	RouteID        string           `json:"route_id"`
	RouteName      string           `json:"route_name"`
	Color          string           `json:"color"`
	Feature        *geojson.Feature `json:"feature"`
	Bounds         domain.Bounds    `json:"bounds"`
	DistanceMeters float64          `json:"distance_meters"`
	Snapped        bool             `json:"snapped"`
	ETA            domain.ETA       `json:"eta"`
}

// GeometryService snaps route paths to roads and caches the result.
type GeometryService struct {
	net      *network.Network
	snapper  ports.PathSnapper
	cache    ports.CacheService
	traffic  *traffic.Table
	cacheTTL int
	log      *slog.Logger
}

// NewGeometryService creates a GeometryService. snapper and cache may be nil;
// without a snapper every route is drawn through its raw points.
func NewGeometryService(net *network.Network, snapper ports.PathSnapper, cache ports.CacheService, table *traffic.Table, cacheTTL int, logger *slog.Logger) *GeometryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeometryService{net: net, snapper: snapper, cache: cache, traffic: table, cacheTTL: cacheTTL, log: logger}
}

func geometryKey(routeID string) string { return "geometry:route:" + routeID }

// Snap returns the road-following path for a route. Failures fall back to
// the raw point sequence with zero distance and are not cached.
func (s *GeometryService) Snap(ctx context.Context, routeID string) (*domain.SnappedPath, error) {
	r, err := s.net.RouteByID(routeID)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.Tracer().Start(ctx, "GeometryService.Snap")
	defer span.End()
	span.SetAttributes(telemetry.AttrRouteID.String(routeID))

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, geometryKey(routeID)); err == nil {
			var path domain.SnappedPath
			if err := json.Unmarshal(data, &path); err == nil {
				metrics.CacheHits.WithLabelValues("geometry").Inc()
				span.SetAttributes(telemetry.AttrSnapped.Bool(path.Snapped))
				return &path, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geometry").Inc()
	}

	path := s.snap(ctx, r)
	span.SetAttributes(telemetry.AttrSnapped.Bool(path.Snapped))

	if path.Snapped && s.cache != nil {
		if data, err := json.Marshal(path); err == nil {
			_ = s.cache.Set(ctx, geometryKey(routeID), data, s.cacheTTL)
		}
	}
	return path, nil
}

func (s *GeometryService) snap(ctx context.Context, r *domain.Route) *domain.SnappedPath {
	seq := r.Sequence()
	raw := &domain.SnappedPath{Geometry: seq}
	if s.snapper == nil {
		metrics.SnapRequests.WithLabelValues("disabled").Inc()
		return raw
	}

	start := time.Now()
	path, err := s.snapper.SnapPath(ctx, seq)
	metrics.SnapDuration.Observe(time.Since(start).Seconds())
	if err != nil || path == nil || len(path.Geometry) < 2 {
		metrics.SnapRequests.WithLabelValues("fallback").Inc()
		s.log.Warn("route snap failed, drawing raw path", "route", r.ID, "error", err)
		return raw
	}
	metrics.SnapRequests.WithLabelValues("ok").Inc()
	path.Snapped = true
	return path
}

// RouteGeometry returns the route as a GeoJSON feature with a
// traffic-adjusted ETA for hour on day.
func (s *GeometryService) RouteGeometry(ctx context.Context, routeID string, hour int, day time.Weekday) (*RouteGeometry, error) {
	path, err := s.Snap(ctx, routeID)
	if err != nil {
		return nil, err
	}
	r, err := s.net.RouteByID(routeID)
	if err != nil {
		return nil, err
	}

	base := float64(r.BaseDurationMinutes)
	if path.Snapped && path.DurationSeconds > 0 {
		base = math.Round(path.DurationSeconds / 60)
	}
	eta, err := s.traffic.Estimate(base, r.StopCount, hour, day)
	if err != nil {
		return nil, err
	}

	feature := geospatial.LineStringFeature(path.Geometry, map[string]any{
		"route_id": r.ID,
		"name":     r.Name,
		"kind":     string(r.Kind),
		"color":    r.Color,
		"snapped":  path.Snapped,
	})

	return &RouteGeometry{
		RouteID:        r.ID,
		RouteName:      r.Name,
		Color:          r.Color,
		Feature:        feature,
		Bounds:         geospatial.BoundsOf(path.Geometry),
		DistanceMeters: path.DistanceMeters,
		Snapped:        path.Snapped,
		ETA:            eta,
	}, nil
}

// RouteIDs lists every route ID in catalog order.
func (s *GeometryService) RouteIDs() []string {
	routes := s.net.AllRoutes()
	ids := make([]string, len(routes))
	for i, r := range routes {
		ids[i] = r.ID
	}
	return ids
}

// Invalidate drops a cached geometry so the next Snap refreshes it.
func (s *GeometryService) Invalidate(ctx context.Context, routeID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, geometryKey(routeID))
}
