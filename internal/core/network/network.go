// Package network holds the immutable jeepney route catalog and landmark
// gazetteer. A Network is built once and is safe for concurrent reads.
package network

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/geospatial"
)

const (
	// TransferRadiusMeters caps the walk between two routes at a transfer.
	TransferRadiusMeters = 300.0
	// TransferLabelRadiusMeters is how far a landmark may be from a transfer
	// point and still name it.
	TransferLabelRadiusMeters = 150.0
	// GenericTransferLabel names transfers with no landmark nearby.
	GenericTransferLabel = "Transfer Point"
)

// Transfer is the closest walkable pair of points between two routes.
type Transfer struct {
	From           domain.GeoPoint // on the first route
	To             domain.GeoPoint // on the second route
	DistanceMeters float64
	LandmarkName   string
	Label          string
}

type pairKey struct{ from, to string }

// Network is the static route catalog.
type Network struct {
	routes    []*domain.Route
	byName    map[string]*domain.Route
	byID      map[string]*domain.Route
	landmarks []domain.Landmark
	transfers map[pairKey]Transfer
}

// New validates and indexes routes and landmarks. Inputs are deep-copied.
func New(routes []domain.Route, landmarks []domain.Landmark) (*Network, error) {
	n := &Network{
		byName:    make(map[string]*domain.Route, len(routes)),
		byID:      make(map[string]*domain.Route, len(routes)),
		landmarks: make([]domain.Landmark, 0, len(landmarks)),
		transfers: make(map[pairKey]Transfer),
	}

	seenLandmark := make(map[string]bool, len(landmarks))
	for _, l := range landmarks {
		if l.Name == "" {
			return nil, fmt.Errorf("landmark with empty name")
		}
		if seenLandmark[l.Name] {
			return nil, fmt.Errorf("duplicate landmark %q", l.Name)
		}
		if !l.Location.Valid() {
			return nil, fmt.Errorf("landmark %q: %w", l.Name, domain.ErrInvalidCoordinate)
		}
		seenLandmark[l.Name] = true
		n.landmarks = append(n.landmarks, l)
	}

	for i := range routes {
		r := cloneRoute(routes[i])
		if err := validateRoute(r); err != nil {
			return nil, err
		}
		if _, dup := n.byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate route name %q", r.Name)
		}
		if _, dup := n.byID[r.ID]; dup {
			return nil, fmt.Errorf("duplicate route id %q", r.ID)
		}
		n.routes = append(n.routes, r)
		n.byName[r.Name] = r
		n.byID[r.ID] = r
	}

	for _, a := range n.routes {
		for _, b := range n.routes {
			if a == b {
				continue
			}
			if t, ok := n.closestPair(a, b); ok {
				n.transfers[pairKey{a.Name, b.Name}] = t
			}
		}
	}

	return n, nil
}

func validateRoute(r *domain.Route) error {
	if r.Name == "" || r.ID == "" {
		return fmt.Errorf("route %q: id and name are required", r.ID)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("route %q: unknown kind %q", r.Name, r.Kind)
	}
	if len(r.StopPoints) < 2 {
		return fmt.Errorf("route %q: needs at least 2 stop points, got %d", r.Name, len(r.StopPoints))
	}
	for _, p := range r.FullPointSet() {
		if !p.Valid() {
			return fmt.Errorf("route %q: %w", r.Name, domain.ErrInvalidCoordinate)
		}
	}
	if r.BaseDurationMinutes < 0 || r.StopCount < 0 {
		return fmt.Errorf("route %q: negative duration or stop count", r.Name)
	}
	return nil
}

func cloneRoute(r domain.Route) *domain.Route {
	c := r
	c.StopPoints = append([]domain.GeoPoint{}, r.StopPoints...)
	c.ShapingPoints = append([]domain.GeoPoint{}, r.ShapingPoints...)
	return &c
}

// closestPair finds the minimum-distance pair within TransferRadiusMeters.
// Strict comparison keeps the first pair found on ties.
func (n *Network) closestPair(a, b *domain.Route) (Transfer, bool) {
	best := Transfer{DistanceMeters: math.Inf(1)}
	found := false
	for _, pa := range a.FullPointSet() {
		for _, pb := range b.FullPointSet() {
			d := geospatial.Haversine(pa.Lat, pa.Lon, pb.Lat, pb.Lon)
			if d <= TransferRadiusMeters && d < best.DistanceMeters {
				best = Transfer{From: pa, To: pb, DistanceMeters: d}
				found = true
			}
		}
	}
	if !found {
		return Transfer{}, false
	}
	best.Label = GenericTransferLabel
	if l, ok := n.LandmarkNear(best.From, TransferLabelRadiusMeters); ok {
		best.LandmarkName = l.Name
		best.Label = l.Name
	}
	return best, true
}

// AllRoutes returns every route in catalog order.
func (n *Network) AllRoutes() []*domain.Route {
	return append([]*domain.Route{}, n.routes...)
}

// RouteByName looks up a route by its unique name.
func (n *Network) RouteByName(name string) (*domain.Route, error) {
	r, ok := n.byName[name]
	if !ok {
		return nil, fmt.Errorf("route %q: %w", name, domain.ErrNotFound)
	}
	return r, nil
}

// RouteByID looks up a route by ID.
func (n *Network) RouteByID(id string) (*domain.Route, error) {
	r, ok := n.byID[id]
	if !ok {
		return nil, fmt.Errorf("route id %q: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

// Landmarks returns the gazetteer in load order.
func (n *Network) Landmarks() []domain.Landmark {
	return append([]domain.Landmark{}, n.landmarks...)
}

// LandmarkNear returns the nearest landmark within maxDistanceMeters. The
// first landmark in gazetteer order wins ties.
func (n *Network) LandmarkNear(p domain.GeoPoint, maxDistanceMeters float64) (domain.Landmark, bool) {
	if !p.Valid() {
		return domain.Landmark{}, false
	}
	box := geospatial.Box(p, maxDistanceMeters)

	var best domain.Landmark
	bestDist := math.Inf(1)
	for _, l := range n.landmarks {
		if !box.Contains(l.Location) {
			continue
		}
		d := geospatial.Haversine(p.Lat, p.Lon, l.Location.Lat, l.Location.Lon)
		if d <= maxDistanceMeters && d < bestDist {
			best, bestDist = l, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// FullPointSet returns a route's stops and shaping points for proximity tests.
func (n *Network) FullPointSet(r *domain.Route) []domain.GeoPoint {
	return r.FullPointSet()
}

// Transfer returns the precomputed transfer from route a to route b.
func (n *Network) Transfer(a, b *domain.Route) (Transfer, bool) {
	t, ok := n.transfers[pairKey{a.Name, b.Name}]
	return t, ok
}

// MatchLandmark finds a landmark whose name contains text or is contained in
// it, ignoring case. Exact matches win over partial ones.
func (n *Network) MatchLandmark(text string) (domain.Landmark, bool) {
	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		return domain.Landmark{}, false
	}
	for _, l := range n.landmarks {
		if strings.ToLower(l.Name) == q {
			return l, true
		}
	}
	for _, l := range n.landmarks {
		name := strings.ToLower(l.Name)
		if strings.Contains(name, q) || strings.Contains(q, name) {
			return l, true
		}
	}
	return domain.Landmark{}, false
}

// SearchLandmarks returns landmarks whose name contains term, ignoring case.
func (n *Network) SearchLandmarks(term string) []domain.Landmark {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return n.Landmarks()
	}
	var out []domain.Landmark
	for _, l := range n.landmarks {
		if strings.Contains(strings.ToLower(l.Name), q) {
			out = append(out, l)
		}
	}
	return out
}

// SearchRoutes matches term against route name, description and operator.
func (n *Network) SearchRoutes(term string) []*domain.Route {
	q := strings.ToLower(strings.TrimSpace(term))
	if q == "" {
		return n.AllRoutes()
	}
	var out []*domain.Route
	for _, r := range n.routes {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Description), q) ||
			strings.Contains(strings.ToLower(r.Operator), q) {
			out = append(out, r)
		}
	}
	return out
}

// RouteDistance pairs a route with the distance to its nearest point.
type RouteDistance struct {
	Route          *domain.Route
	Nearest        domain.GeoPoint
	DistanceMeters float64
}

// RoutesWithin returns routes whose nearest point lies within radiusMeters,
// closest first.
func (n *Network) RoutesWithin(p domain.GeoPoint, radiusMeters float64) ([]RouteDistance, error) {
	var out []RouteDistance
	for _, r := range n.routes {
		near, err := geospatial.NearestPoint(p, r.FullPointSet())
		if err != nil {
			return nil, err
		}
		if near.DistanceMeters <= radiusMeters {
			out = append(out, RouteDistance{Route: r, Nearest: near.Point, DistanceMeters: near.DistanceMeters})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	return out, nil
}

// Stats summarises the catalog.
type Stats struct {
	Routes    int                      `json:"routes"`
	Landmarks int                      `json:"landmarks"`
	Transfers int                      `json:"transfers"`
	ByKind    map[domain.RouteKind]int `json:"by_kind"`
}

// Stats returns catalog counts.
func (n *Network) Stats() Stats {
	s := Stats{
		Routes:    len(n.routes),
		Landmarks: len(n.landmarks),
		Transfers: len(n.transfers),
		ByKind:    make(map[domain.RouteKind]int),
	}
	for _, r := range n.routes {
		s.ByKind[r.Kind]++
	}
	return s
}
