// Package seed embeds the Batangas City jeepney catalog and serves it as a
// read-only ports.NetworkRepository.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

//go:embed batangas.json
var batangasJSON []byte

type pair [2]float64

func (p pair) point() domain.GeoPoint { return domain.GeoPoint{Lat: p[0], Lon: p[1]} }

type routeDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Color       string `json:"color"`
	Stops       []pair `json:"stops"`
	Shaping     []pair `json:"shaping"`
	Fare        string `json:"fare"`
	BaseMinutes int    `json:"base_minutes"`
	StopCount   int    `json:"stop_count"`
	Operator    string `json:"operator"`
	Frequency   string `json:"frequency"`
	Description string `json:"description"`
}

type catalogDoc struct {
	City      string     `json:"city"`
	Centroid  pair       `json:"centroid"`
	Routes    []routeDoc `json:"routes"`
	Landmarks []struct {
		Name     string `json:"name"`
		Location pair   `json:"location"`
	} `json:"landmarks"`
	BoardingZones []struct {
		Route      string   `json:"route"`
		Primary    []string `json:"primary"`
		Secondary  []string `json:"secondary"`
		Restricted []string `json:"restricted"`
	} `json:"boarding_zones"`
	InvalidBoardings []struct {
		Landmark string   `json:"landmark"`
		Routes   []string `json:"routes"`
	} `json:"invalid_boardings"`
}

// Catalog is a decoded route catalog.
type Catalog struct {
	City             string
	Centroid         domain.GeoPoint
	Routes           []domain.Route
	Landmarks        []domain.Landmark
	BoardingZones    []domain.BoardingZone
	InvalidBoardings []domain.InvalidBoarding
}

// Batangas decodes the embedded catalog.
func Batangas() (*Catalog, error) {
	return Parse(batangasJSON)
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{City: doc.City, Centroid: doc.Centroid.point()}
	for _, r := range doc.Routes {
		route := domain.Route{
			ID:                  r.ID,
			Name:                r.Name,
			Kind:                domain.RouteKind(r.Kind),
			Color:               r.Color,
			StopPoints:          make([]domain.GeoPoint, 0, len(r.Stops)),
			ShapingPoints:       make([]domain.GeoPoint, 0, len(r.Shaping)),
			FareRange:           r.Fare,
			BaseDurationMinutes: r.BaseMinutes,
			StopCount:           r.StopCount,
			Operator:            r.Operator,
			Frequency:           r.Frequency,
			Description:         r.Description,
		}
		for _, p := range r.Stops {
			route.StopPoints = append(route.StopPoints, p.point())
		}
		for _, p := range r.Shaping {
			route.ShapingPoints = append(route.ShapingPoints, p.point())
		}
		c.Routes = append(c.Routes, route)
	}
	for _, l := range doc.Landmarks {
		c.Landmarks = append(c.Landmarks, domain.Landmark{Name: l.Name, Location: l.Location.point()})
	}
	for _, z := range doc.BoardingZones {
		c.BoardingZones = append(c.BoardingZones, domain.BoardingZone{
			RouteName:  z.Route,
			Primary:    z.Primary,
			Secondary:  z.Secondary,
			Restricted: z.Restricted,
		})
	}
	for _, ib := range doc.InvalidBoardings {
		c.InvalidBoardings = append(c.InvalidBoardings, domain.InvalidBoarding{
			Landmark:   ib.Landmark,
			RouteNames: ib.Routes,
		})
	}
	return c, nil
}

// ListRoutes implements ports.NetworkRepository.
func (c *Catalog) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	return c.Routes, nil
}

// ListLandmarks implements ports.NetworkRepository.
func (c *Catalog) ListLandmarks(ctx context.Context) ([]domain.Landmark, error) {
	return c.Landmarks, nil
}

// ListBoardingZones implements ports.NetworkRepository.
func (c *Catalog) ListBoardingZones(ctx context.Context) ([]domain.BoardingZone, error) {
	return c.BoardingZones, nil
}

// ListInvalidBoardings implements ports.NetworkRepository.
func (c *Catalog) ListInvalidBoardings(ctx context.Context) ([]domain.InvalidBoarding, error) {
	return c.InvalidBoardings, nil
}
