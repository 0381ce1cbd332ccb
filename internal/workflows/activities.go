package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
)

// ErrNotSnapped is returned when the routing engine could not snap a route.
// The activity is retried.
var ErrNotSnapped = errors.New("route geometry not snapped")

// SnapOutcome reports one snapped route.
type SnapOutcome struct {
	RouteID        string
	Points         int
	DistanceMeters float64
}

// GeometryActivities holds the activity implementations for geometry warming.
type GeometryActivities struct {
	Geometry *usecases.GeometryService
	Logger   *slog.Logger
}

func (a *GeometryActivities) log() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// ListRouteIDs returns every route in the loaded catalog.
func (a *GeometryActivities) ListRouteIDs(ctx context.Context) ([]string, error) {
	return a.Geometry.RouteIDs(), nil
}

// InvalidateGeometry drops the cached geometry of one route.
func (a *GeometryActivities) InvalidateGeometry(ctx context.Context, routeID string) error {
	if err := a.Geometry.Invalidate(ctx, routeID); err != nil {
		return fmt.Errorf("invalidate %s: %w", routeID, err)
	}
	return nil
}

// SnapRoute snaps one route and caches the result. Unknown routes fail
// without retry; a raw fallback path is an error so Temporal retries it.
func (a *GeometryActivities) SnapRoute(ctx context.Context, routeID string) (SnapOutcome, error) {
	path, err := a.Geometry.Snap(ctx, routeID)
	if errors.Is(err, domain.ErrNotFound) {
		return SnapOutcome{}, temporal.NewNonRetryableApplicationError(err.Error(), "RouteNotFound", err)
	}
	if err != nil {
		return SnapOutcome{}, fmt.Errorf("snap %s: %w", routeID, err)
	}
	if !path.Snapped {
		return SnapOutcome{}, fmt.Errorf("%s: %w", routeID, ErrNotSnapped)
	}

	a.log().Info("route geometry cached", "route", routeID, "points", len(path.Geometry), "distance_m", path.DistanceMeters)
	return SnapOutcome{RouteID: routeID, Points: len(path.Geometry), DistanceMeters: path.DistanceMeters}, nil
}
