// Package planner composes ranked jeepney trip plans from the static network.
// Planning is pure CPU work over immutable data and is safe to call
// concurrently.
package planner

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/boarding"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/fare"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/network"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/traffic"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/geospatial"
)

// Options tunes candidate generation and ranking.
type Options struct {
	MaxStartWalkDirect float64
	MaxEndWalkDirect   float64

	WalkRideMaxEndWalk   float64
	WalkRideMinStartWalk float64
	WalkRideMaxStartWalk float64
	WalkRideFactor       float64

	TransferMinWalk float64
	TransferMaxWalk float64
	MaxLegs         int

	MaxTotalMinutes int
	MaxResults      int
}

// DefaultOptions returns the standard planning profile.
func DefaultOptions() Options {
	return Options{
		MaxStartWalkDirect:   1000,
		MaxEndWalkDirect:     800,
		WalkRideMaxEndWalk:   1000,
		WalkRideMinStartWalk: 50,
		WalkRideMaxStartWalk: 1500,
		WalkRideFactor:       0.8,
		TransferMinWalk:      50,
		TransferMaxWalk:      2000,
		MaxLegs:              3,
		MaxTotalMinutes:      90,
		MaxResults:           8,
	}
}

// Request is one planning query. StartLandmark may be empty when the start
// point could not be matched to the gazetteer.
type Request struct {
	Start         domain.GeoPoint
	End           domain.GeoPoint
	StartLandmark string
	Hour          int
	Weekday       time.Weekday
	Discount      bool
}

// Result carries the ranked plans and per-generator counts.
type Result struct {
	Plans     []domain.TripCandidate
	Generated map[domain.CandidateKind]int
	Traffic   traffic.Condition
}

// Planner composes trip plans.
type Planner struct {
	net     *network.Network
	rules   *boarding.Rules
	traffic *traffic.Table
	opts    Options
	log     *slog.Logger
}

// New creates a Planner. A nil logger uses slog.Default().
func New(net *network.Network, rules *boarding.Rules, table *traffic.Table, opts Options, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxLegs < 1 {
		opts.MaxLegs = 1
	}
	return &Planner{net: net, rules: rules, traffic: table, opts: opts, log: logger}
}

// Options returns the planner's configuration.
func (p *Planner) Options() Options { return p.opts }

// Plan returns up to MaxResults ranked candidates. No feasible trip yields an
// empty slice, not an error.
func (p *Planner) Plan(req Request) ([]domain.TripCandidate, error) {
	res, err := p.PlanDetailed(req)
	if err != nil {
		return nil, err
	}
	return res.Plans, nil
}

// PlanDetailed is Plan plus generator statistics.
func (p *Planner) PlanDetailed(req Request) (*Result, error) {
	if !req.Start.Valid() {
		return nil, fmt.Errorf("start %v: %w", req.Start, domain.ErrInvalidCoordinate)
	}
	if !req.End.Valid() {
		return nil, fmt.Errorf("end %v: %w", req.End, domain.ErrInvalidCoordinate)
	}
	cond, err := p.traffic.Multiplier(req.Hour, req.Weekday)
	if err != nil {
		return nil, err
	}

	s, err := p.newScan(req, cond)
	if err != nil {
		return nil, err
	}

	var raw []domain.TripCandidate
	raw = append(raw, s.direct()...)
	raw = append(raw, s.walkThenRide()...)
	raw = append(raw, s.transfers()...)

	generated := make(map[domain.CandidateKind]int)
	for _, c := range raw {
		generated[c.Kind]++
	}

	return &Result{
		Plans:     Rank(raw, p.opts.MaxResults, p.opts.MaxTotalMinutes),
		Generated: generated,
		Traffic:   cond,
	}, nil
}

// proximity caches the nearest point of each endpoint on one route.
type proximity struct {
	start geospatial.Nearest
	end   geospatial.Nearest
}

// scan holds per-request state shared by the generators.
type scan struct {
	p      *Planner
	req    Request
	cond   traffic.Condition
	routes []*domain.Route
	prox   []proximity
}

func (p *Planner) newScan(req Request, cond traffic.Condition) (*scan, error) {
	routes := p.net.AllRoutes()
	prox := make([]proximity, len(routes))
	for i, r := range routes {
		pts := p.net.FullPointSet(r)
		s, err := geospatial.NearestPoint(req.Start, pts)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", r.Name, err)
		}
		e, err := geospatial.NearestPoint(req.End, pts)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", r.Name, err)
		}
		prox[i] = proximity{start: s, end: e}
	}
	return &scan{p: p, req: req, cond: cond, routes: routes, prox: prox}, nil
}

func walk(distanceMeters float64) *domain.Walk {
	return &domain.Walk{DistanceMeters: distanceMeters, TimeMinutes: geospatial.WalkMinutes(distanceMeters)}
}

// finalize fills fare, boarding and ETA fields. factor is the share of each
// leg's base duration actually ridden; overhead is fixed transfer time.
func (s *scan) finalize(c domain.TripCandidate, factor float64, overhead int) domain.TripCandidate {
	c.TotalFare = fare.Total(c.Legs, s.req.Discount)

	v := s.p.rules.BoardingMessageFor(s.req.StartLandmark, c.Legs[0].Name)
	c.BoardingValid = v.Valid
	c.BoardingTier = string(v.Tier)
	c.Confidence = domain.MinConfidence(c.Confidence, v.Confidence)
	if v.Tier == boarding.TierUnknown || v.Tier == boarding.TierUnresolved {
		s.p.log.Debug("boarding resolved permissively",
			"landmark", s.req.StartLandmark,
			"route", c.Legs[0].Name,
			"tier", v.Tier,
		)
	}

	var minutes, base, delay float64
	if c.StartWalk != nil {
		minutes += float64(c.StartWalk.TimeMinutes)
		base += float64(c.StartWalk.TimeMinutes)
	}
	if c.EndWalk != nil {
		minutes += float64(c.EndWalk.TimeMinutes)
		base += float64(c.EndWalk.TimeMinutes)
	}
	for _, tp := range c.TransferPoints {
		wm := float64(geospatial.WalkMinutes(tp.WalkDistanceMeters))
		minutes += wm
		base += wm
	}
	for _, leg := range c.Legs {
		ride := factor * float64(leg.BaseDurationMinutes)
		stops := int(math.Round(factor * float64(leg.StopCount)))
		m, err := s.p.traffic.EstimateMinutes(ride, stops, s.req.Hour, s.req.Weekday)
		if err != nil {
			m = int(math.Round(ride))
		}
		minutes += float64(m)
		base += ride
		delay += ride * (s.cond.Multiplier - 1)
	}
	minutes += float64(overhead)
	base += float64(overhead)

	c.ETA = domain.ETA{
		Minutes:             int(math.Round(minutes)),
		BaseMinutes:         int(math.Round(base)),
		TrafficDelayMinutes: int(math.Round(delay)),
		TrafficLevel:        s.cond.Level,
	}
	return c
}
