// Package nominatim resolves place names through an OpenStreetMap Nominatim
// server.
package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

// ErrNoMatch is returned when the server finds nothing for a query.
var ErrNoMatch = errors.New("nominatim: no match")

// Config configures a Client.
type Config struct {
	BaseURL    string
	CitySuffix string // appended to every forward query, e.g. "Batangas City"
	UserAgent  string
	Timeout    time.Duration
}

// Client implements ports.Geocoder.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a client for cfg.BaseURL, e.g. https://nominatim.openstreetmap.org.
// An empty UserAgent defaults to "jeepney-planner".
func New(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.UserAgent == "" {
		cfg.UserAgent = "jeepney-planner"
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("nominatim decode: %w", err)
	}
	return nil
}

// Geocode returns the best match for query inside the configured city.
func (c *Client) Geocode(ctx context.Context, query string) (*domain.GeocodeResult, error) {
	full := query
	if c.cfg.CitySuffix != "" {
		full = query + ", " + c.cfg.CitySuffix
	}
	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", full)
	q.Set("limit", "1")

	var places []place
	if err := c.get(ctx, "/search", q, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, query)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim lat %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("nominatim lon %q: %w", places[0].Lon, err)
	}

	return &domain.GeocodeResult{
		Query:       query,
		Location:    domain.GeoPoint{Lat: lat, Lon: lon},
		DisplayName: places[0].DisplayName,
	}, nil
}

// ReverseGeocode returns the display name of the place at p.
func (c *Client) ReverseGeocode(ctx context.Context, p domain.GeoPoint) (string, error) {
	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(p.Lon, 'f', 6, 64))

	var pl place
	if err := c.get(ctx, "/reverse", q, &pl); err != nil {
		return "", err
	}
	if pl.Error != "" || pl.DisplayName == "" {
		return "", fmt.Errorf("%w: %s", ErrNoMatch, pl.Error)
	}
	return pl.DisplayName, nil
}
