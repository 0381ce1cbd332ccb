// Package osrm snaps jeepney paths onto the road network using an OSRM
// route service.
package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

// ErrNoRoute is returned when OSRM answers without a usable route.
var ErrNoRoute = errors.New("osrm: no route")

// Client implements ports.PathSnapper.
type Client struct {
	baseURL string
	profile string
	http    *http.Client
}

// New creates a client for baseURL, e.g. https://router.project-osrm.org.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		profile: "driving",
		http:    &http.Client{Timeout: timeout},
	}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry *geojson.Geometry `json:"geometry"`
		Distance float64           `json:"distance"`
		Duration float64           `json:"duration"`
	} `json:"routes"`
}

// coordinates renders points as OSRM's "lon,lat;lon,lat" path segment.
func coordinates(points []domain.GeoPoint) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = strconv.FormatFloat(p.Lon, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lat, 'f', 6, 64)
	}
	return strings.Join(parts, ";")
}

// SnapPath asks OSRM for a driving route through points in order.
func (c *Client) SnapPath(ctx context.Context, points []domain.GeoPoint) (*domain.SnappedPath, error) {
	if len(points) < 2 {
		return nil, domain.ErrEmptySequence
	}

	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=geojson", c.baseURL, c.profile, coordinates(points))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("osrm status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("osrm decode: %w", err)
	}
	if out.Code != "Ok" || len(out.Routes) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNoRoute, out.Code, out.Message)
	}

	best := out.Routes[0]
	if best.Geometry == nil || !best.Geometry.IsLineString() {
		return nil, fmt.Errorf("%w: missing line geometry", ErrNoRoute)
	}

	geometry := make([]domain.GeoPoint, 0, len(best.Geometry.LineString))
	for _, pt := range best.Geometry.LineString {
		if len(pt) < 2 {
			continue
		}
		geometry = append(geometry, domain.GeoPoint{Lat: pt[1], Lon: pt[0]})
	}

	return &domain.SnappedPath{
		Geometry:        geometry,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
		Snapped:         true,
	}, nil
}
