package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/traffic"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
)

func TestGeometry_SnappedAndCached(t *testing.T) {
	net, _ := batangas(t)
	snapper := &mockSnapper{
		snapFn: func(ctx context.Context, pts []domain.GeoPoint) (*domain.SnappedPath, error) {
			return &domain.SnappedPath{
				Geometry:        []domain.GeoPoint{pts[0], {Lat: 13.78, Lon: 121.065}, pts[len(pts)-1]},
				DistanceMeters:  12000,
				DurationSeconds: 1800,
			}, nil
		},
	}
	cache := newMockCache()
	svc := usecases.NewGeometryService(net, snapper, cache, traffic.DefaultTable(), 60, nil)

	g, err := svc.RouteGeometry(context.Background(), "route_001", 3, time.Monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !g.Snapped || g.DistanceMeters != 12000 {
		t.Errorf("expected snapped geometry, got %+v", g)
	}
	// 30 min from the router + 12 stops × 0.5
	if g.ETA.Minutes != 36 || g.ETA.BaseMinutes != 30 {
		t.Errorf("unexpected eta %+v", g.ETA)
	}
	if g.Feature == nil || g.Feature.Geometry == nil || len(g.Feature.Geometry.LineString) != 3 {
		t.Fatalf("unexpected feature %+v", g.Feature)
	}

	if _, err := svc.RouteGeometry(context.Background(), "route_001", 8, time.Monday); err != nil {
		t.Fatal(err)
	}
	if snapper.calls != 1 {
		t.Errorf("expected cached second call, got %d snapper calls", snapper.calls)
	}
}

func TestGeometry_FallbackNotCached(t *testing.T) {
	net, _ := batangas(t)
	snapper := &mockSnapper{
		snapFn: func(ctx context.Context, pts []domain.GeoPoint) (*domain.SnappedPath, error) {
			return nil, errors.New("osrm unavailable")
		},
	}
	cache := newMockCache()
	svc := usecases.NewGeometryService(net, snapper, cache, traffic.DefaultTable(), 60, nil)

	g, err := svc.RouteGeometry(context.Background(), "route_003", 3, time.Monday)
	if err != nil {
		t.Fatalf("snap failure should not surface: %v", err)
	}
	r, _ := net.RouteByID("route_003")
	if g.Snapped || g.DistanceMeters != 0 {
		t.Errorf("expected raw fallback, got %+v", g)
	}
	if len(g.Feature.Geometry.LineString) != len(r.Sequence()) {
		t.Errorf("expected %d raw points, got %d", len(r.Sequence()), len(g.Feature.Geometry.LineString))
	}
	if g.ETA.BaseMinutes != r.BaseDurationMinutes {
		t.Errorf("expected base minutes from catalog, got %d", g.ETA.BaseMinutes)
	}
	if cache.sets != 0 {
		t.Errorf("fallback geometry should not be cached")
	}
}

func TestGeometry_UnknownRoute(t *testing.T) {
	net, _ := batangas(t)
	svc := usecases.NewGeometryService(net, nil, nil, traffic.DefaultTable(), 60, nil)

	if _, err := svc.RouteGeometry(context.Background(), "nope", 3, time.Monday); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if len(svc.RouteIDs()) != 10 {
		t.Errorf("expected 10 route ids")
	}
}
