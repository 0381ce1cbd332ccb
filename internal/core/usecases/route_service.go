package usecases

import (
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/network"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/geospatial"
)

const (
	nearestStartRadius = 100.0
	nearestStepRadius  = 200.0
	nearestMaxRadius   = 2000.0
	nearestLimit       = 5
)

// Walk recommendations for nearest-route results.
const (
	RecommendVeryClose = "very close"
	RecommendWalkable  = "walkable"
	RecommendFar       = "far"
)

// NearbyRoute is a route close to a query point.
type NearbyRoute struct {
	Route          *domain.Route   `json:"-"`
	ClosestPoint   domain.GeoPoint `json:"closest_point"`
	DistanceMeters float64         `json:"distance_meters"`
	WalkMinutes    int             `json:"walk_minutes"`
	Recommendation string          `json:"recommendation"`
}

// NearestRoutes is the result of an expanding-radius search.
type NearestRoutes struct {
	RadiusMeters float64       `json:"radius_meters"`
	Routes       []NearbyRoute `json:"routes"`
}

// RouteService handles route and landmark lookups.
type RouteService struct {
	net *network.Network
}

// NewRouteService creates a new RouteService.
func NewRouteService(net *network.Network) *RouteService {
	return &RouteService{net: net}
}

// List returns routes matching q, or every route when q is empty.
func (s *RouteService) List(q string) []*domain.Route {
	return s.net.SearchRoutes(q)
}

// GetByID returns a route by its catalog ID.
func (s *RouteService) GetByID(id string) (*domain.Route, error) {
	return s.net.RouteByID(id)
}

// Landmarks returns gazetteer entries matching q.
func (s *RouteService) Landmarks(q string) []domain.Landmark {
	return s.net.SearchLandmarks(q)
}

// Stats returns catalog counts.
func (s *RouteService) Stats() network.Stats {
	return s.net.Stats()
}

// Nearest grows the search radius from 100 m in 200 m steps up to 2 km and
// returns the closest routes at the first radius that finds any.
func (s *RouteService) Nearest(p domain.GeoPoint) (*NearestRoutes, error) {
	if !p.Valid() {
		return nil, domain.ErrInvalidCoordinate
	}
	for r := nearestStartRadius; r <= nearestMaxRadius; r += nearestStepRadius {
		found, err := s.net.RoutesWithin(p, r)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			continue
		}
		if len(found) > nearestLimit {
			found = found[:nearestLimit]
		}
		out := &NearestRoutes{RadiusMeters: r, Routes: make([]NearbyRoute, len(found))}
		for i, f := range found {
			out.Routes[i] = NearbyRoute{
				Route:          f.Route,
				ClosestPoint:   f.Nearest,
				DistanceMeters: f.DistanceMeters,
				WalkMinutes:    geospatial.WalkMinutes(f.DistanceMeters),
				Recommendation: Recommendation(f.DistanceMeters),
			}
		}
		return out, nil
	}
	return &NearestRoutes{RadiusMeters: nearestMaxRadius, Routes: []NearbyRoute{}}, nil
}

// Recommendation labels a walking distance.
func Recommendation(distanceMeters float64) string {
	switch {
	case distanceMeters <= 300:
		return RecommendVeryClose
	case distanceMeters <= 1000:
		return RecommendWalkable
	default:
		return RecommendFar
	}
}
