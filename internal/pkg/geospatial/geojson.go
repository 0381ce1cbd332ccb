package geospatial

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

// LineStringFeature encodes points as a GeoJSON LineString feature. GeoJSON
// positions are [lon, lat].
func LineStringFeature(points []domain.GeoPoint, props map[string]any) *geojson.Feature {
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lon, p.Lat})
	}
	f := geojson.NewLineStringFeature(coords)
	for k, v := range props {
		f.SetProperty(k, v)
	}
	return f
}

// PointFeature encodes a single point as a GeoJSON feature.
func PointFeature(p domain.GeoPoint, props map[string]any) *geojson.Feature {
	f := geojson.NewPointFeature([]float64{p.Lon, p.Lat})
	for k, v := range props {
		f.SetProperty(k, v)
	}
	return f
}

// FromPositions converts GeoJSON [lon, lat] positions back to points.
// Positions with fewer than two values are skipped.
func FromPositions(positions [][]float64) []domain.GeoPoint {
	pts := make([]domain.GeoPoint, 0, len(positions))
	for _, pos := range positions {
		if len(pos) < 2 {
			continue
		}
		pts = append(pts, domain.GeoPoint{Lat: pos[1], Lon: pos[0]})
	}
	return pts
}

// BoundsOf returns the bounding box of points. An empty slice yields a zero box.
func BoundsOf(points []domain.GeoPoint) domain.Bounds {
	if len(points) == 0 {
		return domain.Bounds{}
	}
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, orb.Point{p.Lon, p.Lat})
	}
	b := ls.Bound()
	return domain.Bounds{
		MinLat: b.Min[1],
		MinLon: b.Min[0],
		MaxLat: b.Max[1],
		MaxLon: b.Max[0],
	}
}
