package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RouteKind classifies a jeepney line.
type RouteKind string

const (
	KindTrunk    RouteKind = "trunk"
	KindFeeder   RouteKind = "feeder"
	KindSpecial  RouteKind = "special"
	KindCircular RouteKind = "circular"
)

// Valid reports whether k is one of the known kinds.
func (k RouteKind) Valid() bool {
	switch k {
	case KindTrunk, KindFeeder, KindSpecial, KindCircular:
		return true
	}
	return false
}

// Route is one named jeepney line. StopPoints are where riders board and
// alight; ShapingPoints only pull the drawn path through specific streets.
type Route struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Kind                RouteKind  `json:"kind"`
	Color               string     `json:"color"`
	StopPoints          []GeoPoint `json:"stop_points"`
	ShapingPoints       []GeoPoint `json:"shaping_points"`
	FareRange           string     `json:"fare_range"`
	BaseDurationMinutes int        `json:"base_duration_minutes"`
	StopCount           int        `json:"stop_count"`
	Operator            string     `json:"operator"`
	Frequency           string     `json:"frequency"`
	Description         string     `json:"description,omitempty"`
}

// FullPointSet returns stops and shaping points as one slice. Order carries
// no meaning; use it for proximity tests only.
func (r *Route) FullPointSet() []GeoPoint {
	pts := make([]GeoPoint, 0, len(r.StopPoints)+len(r.ShapingPoints))
	pts = append(pts, r.StopPoints...)
	return append(pts, r.ShapingPoints...)
}

// Sequence returns the ordered travel path: first stop, every shaping point,
// then the remaining stops.
func (r *Route) Sequence() []GeoPoint {
	if len(r.StopPoints) == 0 {
		return append([]GeoPoint{}, r.ShapingPoints...)
	}
	pts := make([]GeoPoint, 0, len(r.StopPoints)+len(r.ShapingPoints))
	pts = append(pts, r.StopPoints[0])
	pts = append(pts, r.ShapingPoints...)
	return append(pts, r.StopPoints[1:]...)
}

// Landmark is a named place from the city gazetteer.
type Landmark struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
}

// BoardingZone classifies landmarks for a single route.
type BoardingZone struct {
	RouteName  string   `json:"route_name"`
	Primary    []string `json:"primary"`
	Secondary  []string `json:"secondary"`
	Restricted []string `json:"restricted"`
}

// InvalidBoarding states that RouteNames never pick up at Landmark.
type InvalidBoarding struct {
	Landmark   string   `json:"landmark"`
	RouteNames []string `json:"route_names"`
}

// Confidence is an ordered reliability tier: Low < Medium < High.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceMedium:
		return "medium"
	default:
		return "low"
	}
}

// MinConfidence returns the weaker of two tiers.
func MinConfidence(a, b Confidence) Confidence {
	if a < b {
		return a
	}
	return b
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Confidence) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "high":
		*c = ConfidenceHigh
	case "medium":
		*c = ConfidenceMedium
	case "low":
		*c = ConfidenceLow
	default:
		return fmt.Errorf("unknown confidence %q", s)
	}
	return nil
}

// CandidateKind names the strategy that produced a trip candidate.
type CandidateKind string

const (
	CandidateDirect       CandidateKind = "direct"
	CandidateWalkThenRide CandidateKind = "walk_then_ride"
	CandidateTwoLeg       CandidateKind = "two_leg_transfer"
	CandidateThreeLeg     CandidateKind = "three_leg_transfer"
)

// Walk is a walking segment.
type Walk struct {
	DistanceMeters float64 `json:"distance_meters"`
	TimeMinutes    int     `json:"time_minutes"`
}

// TransferPoint is where a rider changes from one leg to the next.
type TransferPoint struct {
	LandmarkName       string   `json:"landmark_name,omitempty"`
	Label              string   `json:"label"`
	Location           GeoPoint `json:"location"`
	WalkDistanceMeters float64  `json:"walk_distance_meters"`
}

// ETA is a traffic-adjusted travel estimate.
type ETA struct {
	Minutes             int    `json:"minutes"`
	BaseMinutes         int    `json:"base_minutes"`
	TrafficDelayMinutes int    `json:"traffic_delay_minutes"`
	TrafficLevel        string `json:"traffic_level"`
}

// TripCandidate is one proposed itinerary. Legs point into the shared,
// read-only network.
type TripCandidate struct {
	Kind             CandidateKind   `json:"kind"`
	Legs             []*Route        `json:"-"`
	StartWalk        *Walk           `json:"start_walk,omitempty"`
	EndWalk          *Walk           `json:"end_walk,omitempty"`
	TransferPoints   []TransferPoint `json:"transfer_points,omitempty"`
	TotalFare        int             `json:"total_fare"`
	TotalTimeMinutes int             `json:"total_time_minutes"`
	ETA              ETA             `json:"eta"`
	Confidence       Confidence      `json:"confidence"`
	BoardingValid    bool            `json:"boarding_valid"`
	BoardingTier     string          `json:"boarding_tier"`
	Score            float64         `json:"score"`
}

// LegNames returns the route names of the candidate's legs in order.
func (c *TripCandidate) LegNames() []string {
	names := make([]string, len(c.Legs))
	for i, l := range c.Legs {
		names[i] = l.Name
	}
	return names
}

// PlanComputedEvent is published after every planning request.
type PlanComputedEvent struct {
	ID            string    `json:"id"`
	Start         GeoPoint  `json:"start"`
	End           GeoPoint  `json:"end"`
	StartLandmark string    `json:"start_landmark,omitempty"`
	Hour          int       `json:"hour"`
	Weekday       int       `json:"weekday"`
	Candidates    int       `json:"candidates"`
	BestKind      string    `json:"best_kind,omitempty"`
	BestRoutes    []string  `json:"best_routes,omitempty"`
	ComputedAt    time.Time `json:"computed_at"`
}
