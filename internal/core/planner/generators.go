package planner

import (
	"math"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/network"
	"github.com/ALfish152/Jeep-Route-Finder/internal/pkg/geospatial"
)

// chainShape describes a multi-leg itinerary of a given length.
type chainShape struct {
	kind       domain.CandidateKind
	factor     float64 // share of each leg's base duration ridden
	overhead   int     // fixed minutes spent waiting at transfers
	maxMinutes int
	confidence domain.Confidence
}

var chainShapes = map[int]chainShape{
	2: {kind: domain.CandidateTwoLeg, factor: 0.6, overhead: 5, maxMinutes: 60, confidence: domain.ConfidenceMedium},
	3: {kind: domain.CandidateThreeLeg, factor: 0.5, overhead: 10, maxMinutes: 45, confidence: domain.ConfidenceLow},
}

// direct proposes single rides where both endpoints sit near the route and
// the route actually travels between them.
func (s *scan) direct() []domain.TripCandidate {
	opts := s.p.opts
	var out []domain.TripCandidate
	for i, r := range s.routes {
		sd, ed := s.prox[i].start.DistanceMeters, s.prox[i].end.DistanceMeters
		if sd > opts.MaxStartWalkDirect || ed > opts.MaxEndWalkDirect {
			continue
		}
		if r.Kind != domain.KindCircular && !s.ridesBetween(r) {
			continue
		}
		if !s.p.rules.CanBoard(s.req.StartLandmark, r.Name) {
			continue
		}

		sw, ew := walk(sd), walk(ed)
		c := domain.TripCandidate{
			Kind:             domain.CandidateDirect,
			Legs:             []*domain.Route{r},
			StartWalk:        sw,
			EndWalk:          ew,
			TotalTimeMinutes: sw.TimeMinutes + r.BaseDurationMinutes + ew.TimeMinutes,
			Confidence:       directConfidence(sd, ed),
		}
		out = append(out, s.finalize(c, 1, 0))
	}
	return out
}

// directConfidence grades a direct ride by its longer walk.
func directConfidence(startMeters, endMeters float64) domain.Confidence {
	switch {
	case startMeters <= 300 && endMeters <= 300:
		return domain.ConfidenceHigh
	case startMeters <= 500 && endMeters <= 500:
		return domain.ConfidenceMedium
	}
	return domain.ConfidenceLow
}

// ridesBetween projects start and end onto the route's ordered path and
// requires at least two points of travel without wrapping the whole line.
func (s *scan) ridesBetween(r *domain.Route) bool {
	seq := r.Sequence()
	from, err := geospatial.NearestPoint(s.req.Start, seq)
	if err != nil {
		return false
	}
	to, err := geospatial.NearestPoint(s.req.End, seq)
	if err != nil {
		return false
	}
	gap := to.Index - from.Index
	if gap < 0 {
		gap = -gap
	}
	return gap >= 2 && gap <= len(seq)-2
}

// walkThenRide proposes a longer walk to a route that drops the rider close
// to the destination.
func (s *scan) walkThenRide() []domain.TripCandidate {
	opts := s.p.opts
	var out []domain.TripCandidate
	for i, r := range s.routes {
		if s.prox[i].end.DistanceMeters > opts.WalkRideMaxEndWalk {
			continue
		}
		sd := s.prox[i].start.DistanceMeters
		if sd < opts.WalkRideMinStartWalk || sd > opts.WalkRideMaxStartWalk {
			continue
		}
		sw := walk(sd)
		c := domain.TripCandidate{
			Kind:             domain.CandidateWalkThenRide,
			Legs:             []*domain.Route{r},
			StartWalk:        sw,
			TotalTimeMinutes: int(math.Round(float64(sw.TimeMinutes) + opts.WalkRideFactor*float64(r.BaseDurationMinutes))),
			Confidence:       domain.ConfidenceMedium,
		}
		out = append(out, s.finalize(c, opts.WalkRideFactor, 0))
	}
	return out
}

// transfers searches chains of distinct routes linked by precomputed
// transfer points, up to MaxLegs.
func (s *scan) transfers() []domain.TripCandidate {
	if s.p.opts.MaxLegs < 2 {
		return nil
	}
	var out []domain.TripCandidate
	for i := range s.routes {
		if !s.walkable(s.prox[i].start.DistanceMeters) {
			continue
		}
		out = s.extend(out, []int{i}, nil)
	}
	return out
}

func (s *scan) walkable(d float64) bool {
	return d >= s.p.opts.TransferMinWalk && d <= s.p.opts.TransferMaxWalk
}

func (s *scan) extend(out []domain.TripCandidate, chain []int, links []network.Transfer) []domain.TripCandidate {
	n := len(chain)
	if n >= 2 {
		if c, ok := s.closeChain(chain, links); ok {
			out = append(out, c)
		}
	}
	if n >= s.p.opts.MaxLegs || !s.canGrow(chain, links) {
		return out
	}

	last := s.routes[chain[n-1]]
	for j, next := range s.routes {
		if contains(chain, j) {
			continue
		}
		t, ok := s.p.net.Transfer(last, next)
		if !ok {
			continue
		}
		grown := append(append([]int{}, chain...), j)
		out = s.extend(out, grown, append(append([]network.Transfer{}, links...), t))
	}
	return out
}

// canGrow prunes chains whose partial time already exceeds the cap of every
// longer shape they could become.
func (s *scan) canGrow(chain []int, links []network.Transfer) bool {
	for legs := len(chain) + 1; legs <= s.p.opts.MaxLegs; legs++ {
		shape, ok := chainShapes[legs]
		if !ok {
			continue
		}
		if s.partialMinutes(chain, links, shape) <= float64(shape.maxMinutes) {
			return true
		}
	}
	return false
}

func (s *scan) partialMinutes(chain []int, links []network.Transfer, shape chainShape) float64 {
	m := float64(geospatial.WalkMinutes(s.prox[chain[0]].start.DistanceMeters)) + float64(shape.overhead)
	for _, i := range chain {
		m += shape.factor * float64(s.routes[i].BaseDurationMinutes)
	}
	for _, t := range links {
		m += float64(geospatial.WalkMinutes(t.DistanceMeters))
	}
	return m
}

func (s *scan) closeChain(chain []int, links []network.Transfer) (domain.TripCandidate, bool) {
	shape, ok := chainShapes[len(chain)]
	if !ok {
		return domain.TripCandidate{}, false
	}
	lastIdx := chain[len(chain)-1]
	ed := s.prox[lastIdx].end.DistanceMeters
	if !s.walkable(ed) {
		return domain.TripCandidate{}, false
	}

	sw, ew := walk(s.prox[chain[0]].start.DistanceMeters), walk(ed)
	total := s.partialMinutes(chain, links, shape) + float64(ew.TimeMinutes)
	minutes := int(math.Round(total))
	if minutes > shape.maxMinutes {
		return domain.TripCandidate{}, false
	}

	legs := make([]*domain.Route, len(chain))
	for k, i := range chain {
		legs[k] = s.routes[i]
	}
	points := make([]domain.TransferPoint, len(links))
	for k, t := range links {
		points[k] = domain.TransferPoint{
			LandmarkName:       t.LandmarkName,
			Label:              t.Label,
			Location:           t.From,
			WalkDistanceMeters: t.DistanceMeters,
		}
	}

	c := domain.TripCandidate{
		Kind:             shape.kind,
		Legs:             legs,
		StartWalk:        sw,
		EndWalk:          ew,
		TransferPoints:   points,
		TotalTimeMinutes: minutes,
		Confidence:       shape.confidence,
	}
	return s.finalize(c, shape.factor, shape.overhead), true
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}
