package ports

import (
	"context"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

// NetworkRepository supplies the static route catalog. It is read once at
// startup.
type NetworkRepository interface {
	ListRoutes(ctx context.Context) ([]domain.Route, error)
	ListLandmarks(ctx context.Context) ([]domain.Landmark, error)
	ListBoardingZones(ctx context.Context) ([]domain.BoardingZone, error)
	ListInvalidBoardings(ctx context.Context) ([]domain.InvalidBoarding, error)
}

// NetworkWriter persists a route catalog.
type NetworkWriter interface {
	UpsertRoutes(ctx context.Context, routes []domain.Route) error
	UpsertLandmarks(ctx context.Context, landmarks []domain.Landmark) error
	ReplaceBoardingRules(ctx context.Context, zones []domain.BoardingZone, invalid []domain.InvalidBoarding) error
}
