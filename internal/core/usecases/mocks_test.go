package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/boarding"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/network"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
	"github.com/ALfish152/Jeep-Route-Finder/internal/seed"
)

var errCacheMiss = errors.New("cache miss")

// --- Mock CacheService ---

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache { return &mockCache{data: make(map[string][]byte)} }

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock Geocoder ---

type mockGeocoder struct {
	geocodeFn func(ctx context.Context, q string) (*domain.GeocodeResult, error)
	reverseFn func(ctx context.Context, p domain.GeoPoint) (string, error)
	calls     int
}

func (m *mockGeocoder) Geocode(ctx context.Context, q string) (*domain.GeocodeResult, error) {
	m.calls++
	if m.geocodeFn != nil {
		return m.geocodeFn(ctx, q)
	}
	return nil, errors.New("not configured")
}

func (m *mockGeocoder) ReverseGeocode(ctx context.Context, p domain.GeoPoint) (string, error) {
	m.calls++
	if m.reverseFn != nil {
		return m.reverseFn(ctx, p)
	}
	return "", errors.New("not configured")
}

// --- Mock PathSnapper ---

type mockSnapper struct {
	snapFn func(ctx context.Context, pts []domain.GeoPoint) (*domain.SnappedPath, error)
	calls  int
}

func (m *mockSnapper) SnapPath(ctx context.Context, pts []domain.GeoPoint) (*domain.SnappedPath, error) {
	m.calls++
	if m.snapFn != nil {
		return m.snapFn(ctx, pts)
	}
	return nil, errors.New("not configured")
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	err    error
	events []*domain.PlanComputedEvent
}

func (m *mockPublisher) PublishPlanComputed(ctx context.Context, ev *domain.PlanComputedEvent) error {
	m.events = append(m.events, ev)
	return m.err
}

// --- Mock NetworkRepository ---

type mockNetworkRepo struct {
	*seed.Catalog
	routesErr error
}

func (m *mockNetworkRepo) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	if m.routesErr != nil {
		return nil, m.routesErr
	}
	return m.Catalog.ListRoutes(ctx)
}

func batangas(t *testing.T) (*network.Network, *boarding.Rules) {
	t.Helper()
	c, err := seed.Batangas()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	net, rules, err := usecases.LoadCatalog(context.Background(), c)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return net, rules
}

var centroid = domain.GeoPoint{Lat: 13.7565, Lon: 121.0583}
