package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/ports"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
)

func newGeocodeService(t *testing.T, g *mockGeocoder, cache *mockCache) *usecases.GeocodeService {
	t.Helper()
	net, _ := batangas(t)
	var c ports.CacheService
	if cache != nil {
		c = cache
	}
	return usecases.NewGeocodeService(net, g, c, usecases.GeocodeOptions{
		Fallback: centroid,
		CacheTTL: 60,
	}, nil)
}

func TestGeocode_GazetteerFirst(t *testing.T) {
	g := &mockGeocoder{}
	svc := newGeocodeService(t, g, newMockCache())

	res, err := svc.Geocode(context.Background(), "sm city batangas")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Source != usecases.SourceLandmark || res.DisplayName != "SM City Batangas" {
		t.Errorf("unexpected result %+v", res)
	}
	if g.calls != 0 {
		t.Errorf("geocoder should not be called for gazetteer hits, got %d calls", g.calls)
	}
}

func TestGeocode_ExternalThenCache(t *testing.T) {
	g := &mockGeocoder{
		geocodeFn: func(ctx context.Context, q string) (*domain.GeocodeResult, error) {
			return &domain.GeocodeResult{
				Location:    domain.GeoPoint{Lat: 13.7700, Lon: 121.0700},
				DisplayName: "Kumintang Ilaya, Batangas City",
			}, nil
		},
	}
	cache := newMockCache()
	svc := newGeocodeService(t, g, cache)

	first, err := svc.Geocode(context.Background(), "Kumintang Ilaya")
	if err != nil {
		t.Fatal(err)
	}
	if first.Source != usecases.SourceGeocoder || first.Query != "Kumintang Ilaya" {
		t.Errorf("unexpected first result %+v", first)
	}

	second, err := svc.Geocode(context.Background(), "kumintang ilaya")
	if err != nil {
		t.Fatal(err)
	}
	if second.Source != usecases.SourceCache || second.Location != first.Location {
		t.Errorf("expected cached result, got %+v", second)
	}
	if g.calls != 1 {
		t.Errorf("expected 1 geocoder call, got %d", g.calls)
	}
}

func TestGeocode_FallbackToCentroid(t *testing.T) {
	g := &mockGeocoder{
		geocodeFn: func(ctx context.Context, q string) (*domain.GeocodeResult, error) {
			return nil, errors.New("timeout")
		},
	}
	svc := newGeocodeService(t, g, nil)

	res, err := svc.Geocode(context.Background(), "Nowhere Street")
	if err != nil {
		t.Fatalf("geocoder failure should not surface: %v", err)
	}
	if res.Source != usecases.SourceFallback || res.Location != centroid {
		t.Errorf("expected centroid fallback, got %+v", res)
	}
}

func TestGeocode_EmptyQuery(t *testing.T) {
	svc := newGeocodeService(t, &mockGeocoder{}, nil)
	if _, err := svc.Geocode(context.Background(), "   "); !errors.Is(err, usecases.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestReverseGeocode(t *testing.T) {
	g := &mockGeocoder{
		reverseFn: func(ctx context.Context, p domain.GeoPoint) (string, error) {
			return "Barangay Cuta", nil
		},
	}
	svc := newGeocodeService(t, g, newMockCache())
	ctx := context.Background()

	name, err := svc.ReverseGeocode(ctx, domain.GeoPoint{Lat: 13.755992307747455, Lon: 121.0688025248553})
	if err != nil {
		t.Fatal(err)
	}
	if name != "SM City Batangas" {
		t.Errorf("expected landmark name, got %q", name)
	}

	name, _ = svc.ReverseGeocode(ctx, domain.GeoPoint{Lat: 13.7400, Lon: 121.0300})
	if name != "Barangay Cuta" {
		t.Errorf("expected geocoder name, got %q", name)
	}
}

func TestReverseGeocode_FormattedFallback(t *testing.T) {
	svc := newGeocodeService(t, &mockGeocoder{}, nil)

	name, err := svc.ReverseGeocode(context.Background(), domain.GeoPoint{Lat: 13.74, Lon: 121.03})
	if err != nil {
		t.Fatal(err)
	}
	if name != "13.74000, 121.03000" {
		t.Errorf("unexpected fallback %q", name)
	}

	if _, err := svc.ReverseGeocode(context.Background(), domain.GeoPoint{Lat: 100}); !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Errorf("expected ErrInvalidCoordinate, got %v", err)
	}
}
