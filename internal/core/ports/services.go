package ports

import (
	"context"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishPlanComputed(ctx context.Context, event *domain.PlanComputedEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// PathSnapper turns an ordered list of points into a road-following path.
type PathSnapper interface {
	SnapPath(ctx context.Context, points []domain.GeoPoint) (*domain.SnappedPath, error)
}

// Geocoder resolves free text to coordinates and back.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*domain.GeocodeResult, error)
	ReverseGeocode(ctx context.Context, p domain.GeoPoint) (string, error)
}
