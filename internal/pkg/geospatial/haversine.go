package geospatial

import (
	"fmt"
	"math"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

const earthRadiusMeters = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
// Inputs are not validated; use DistanceMeters for untrusted coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// DistanceMeters returns the haversine distance between a and b.
func DistanceMeters(a, b domain.GeoPoint) (float64, error) {
	if !a.Valid() {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidCoordinate, a)
	}
	if !b.Valid() {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidCoordinate, b)
	}
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon), nil
}

// Nearest is the result of a nearest-point search.
type Nearest struct {
	Point          domain.GeoPoint
	Index          int
	DistanceMeters float64
}

// NearestPoint scans points linearly. Ties keep the earliest point.
func NearestPoint(target domain.GeoPoint, points []domain.GeoPoint) (Nearest, error) {
	if len(points) == 0 {
		return Nearest{}, domain.ErrEmptySequence
	}
	if !target.Valid() {
		return Nearest{}, fmt.Errorf("%w: %v", domain.ErrInvalidCoordinate, target)
	}

	best := Nearest{Index: -1, DistanceMeters: math.Inf(1)}
	for i, p := range points {
		d, err := DistanceMeters(target, p)
		if err != nil {
			return Nearest{}, err
		}
		if d < best.DistanceMeters {
			best = Nearest{Point: p, Index: i, DistanceMeters: d}
		}
	}
	return best, nil
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

// Box is BoundingBox returning a domain.Bounds.
func Box(center domain.GeoPoint, radiusMeters float64) domain.Bounds {
	minLat, minLon, maxLat, maxLon := BoundingBox(center.Lat, center.Lon, radiusMeters)
	return domain.Bounds{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
}

// WalkMinutes converts a walking distance to whole minutes at 80 m/min.
func WalkMinutes(distanceMeters float64) int {
	return int(math.Round(distanceMeters / WalkingSpeedMetersPerMinute))
}

// WalkingSpeedMetersPerMinute is the assumed pedestrian pace.
const WalkingSpeedMetersPerMinute = 80.0

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
