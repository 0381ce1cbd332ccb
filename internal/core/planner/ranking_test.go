package planner_test

import (
	"math"
	"testing"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/planner"
)

var (
	trunk  = &domain.Route{Name: "Trunk", Kind: domain.KindTrunk}
	feeder = &domain.Route{Name: "Feeder", Kind: domain.KindFeeder}
	spec   = &domain.Route{Name: "Special", Kind: domain.KindSpecial}
)

func candidate(kind domain.CandidateKind, minutes int, legs ...*domain.Route) domain.TripCandidate {
	return domain.TripCandidate{
		Kind:             kind,
		Legs:             legs,
		StartWalk:        &domain.Walk{DistanceMeters: 100},
		EndWalk:          &domain.Walk{DistanceMeters: 100},
		TotalTimeMinutes: minutes,
		BoardingValid:    true,
		Confidence:       domain.ConfidenceMedium,
	}
}

func withWalks(c domain.TripCandidate, start, end float64) domain.TripCandidate {
	c.StartWalk = &domain.Walk{DistanceMeters: start}
	c.EndWalk = &domain.Walk{DistanceMeters: end}
	return c
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		c    domain.TripCandidate
		want float64
	}{
		// walkScore 80 (200 m walked), timeScore 50 (30 min)
		{"trunk direct", candidate(domain.CandidateDirect, 30, trunk), 80 + 50 + 20},
		{"special direct", candidate(domain.CandidateDirect, 30, spec), 80 + 50},
		{"two legs averaged bonus", candidate(domain.CandidateTwoLeg, 30, trunk, feeder), 80 + 50 + 15},
		{"no walks", func() domain.TripCandidate {
			c := candidate(domain.CandidateDirect, 30, spec)
			c.StartWalk, c.EndWalk = nil, nil
			return c
		}(), 100 + 50},
		{"walk of exactly 200 m", withWalks(candidate(domain.CandidateDirect, 30, spec), 200, 100), 70 + 50},
		{"walk of 201 m", withWalks(candidate(domain.CandidateDirect, 30, spec), 201, 100), 69.9 + 50 - 40},
		{"long end walk", withWalks(candidate(domain.CandidateDirect, 30, spec), 100, 400), 50 + 50 - 40},
		{"walk score floors at zero", withWalks(candidate(domain.CandidateDirect, 30, spec), 700, 600), 0 + 50 - 40},
		{"time score floors at zero", candidate(domain.CandidateDirect, 75, trunk), 80 + 0 + 20},
		{"primary boarding", func() domain.TripCandidate {
			c := candidate(domain.CandidateDirect, 30, spec)
			c.BoardingTier = "primary"
			return c
		}(), 80 + 50 + 10},
		{"secondary boarding", func() domain.TripCandidate {
			c := candidate(domain.CandidateDirect, 30, spec)
			c.BoardingTier = "secondary"
			return c
		}(), 80 + 50 + 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planner.Score(&tt.c)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score = %v, want %v", got, tt.want)
			}
			if again := planner.Score(&tt.c); again != got {
				t.Errorf("Score not deterministic: %v then %v", got, again)
			}
		})
	}
}

func TestRank_FewerLegsFirst(t *testing.T) {
	one := candidate(domain.CandidateDirect, 30, trunk)
	two := candidate(domain.CandidateTwoLeg, 30, trunk, feeder)

	got := planner.Rank([]domain.TripCandidate{two, one}, 8, 90)
	if len(got) != 2 || got[0].Kind != domain.CandidateDirect {
		t.Fatalf("expected direct first, got %+v", got)
	}
}

func TestRank_ShorterWalkFirst(t *testing.T) {
	tests := []struct {
		name               string
		nearStart, nearEnd float64
		farStart, farEnd   float64
	}{
		{"both under 200 m", 120, 120, 150, 150},
		{"one side longer", 100, 100, 100, 190},
		{"both over 200 m", 250, 250, 300, 300},
		{"penalty on the longer only", 150, 150, 150, 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// "A-far" would win the name tie-break if walks did not count.
			far := withWalks(candidate(domain.CandidateDirect, 30, &domain.Route{Name: "A-far", Kind: domain.KindSpecial}), tt.farStart, tt.farEnd)
			near := withWalks(candidate(domain.CandidateDirect, 30, &domain.Route{Name: "B-near", Kind: domain.KindSpecial}), tt.nearStart, tt.nearEnd)
			far.Confidence = domain.ConfidenceHigh
			near.Confidence = domain.ConfidenceHigh

			got := planner.Rank([]domain.TripCandidate{far, near}, 8, 90)
			if len(got) != 2 {
				t.Fatalf("expected 2 candidates, got %d", len(got))
			}
			if got[0].Legs[0].Name != "B-near" {
				t.Errorf("longer walk ranked first: %s (scores %v, %v)", got[0].Legs[0].Name, got[0].Score, got[1].Score)
			}
		})
	}
}

func TestRank_TieBreaks(t *testing.T) {
	a := candidate(domain.CandidateDirect, 30, &domain.Route{Name: "X", Kind: domain.KindSpecial})
	b := candidate(domain.CandidateDirect, 30, &domain.Route{Name: "Y", Kind: domain.KindSpecial})
	b.Confidence = domain.ConfidenceHigh

	got := planner.Rank([]domain.TripCandidate{a, b}, 8, 90)
	if got[0].Legs[0].Name != "Y" {
		t.Errorf("expected higher confidence first, got %s", got[0].Legs[0].Name)
	}

	b.Confidence = a.Confidence
	b.TotalFare = 10
	a.TotalFare = 12
	got = planner.Rank([]domain.TripCandidate{a, b}, 8, 90)
	if got[0].Legs[0].Name != "Y" {
		t.Errorf("expected cheaper fare first, got %s", got[0].Legs[0].Name)
	}
}

func TestRank_FiltersAndDedups(t *testing.T) {
	ok := candidate(domain.CandidateDirect, 30, trunk)
	dup := candidate(domain.CandidateDirect, 40, trunk)
	slow := candidate(domain.CandidateDirect, 91, feeder)
	blocked := candidate(domain.CandidateWalkThenRide, 20, feeder)
	blocked.BoardingValid = false
	sameLegOtherKind := candidate(domain.CandidateWalkThenRide, 35, trunk)

	got := planner.Rank([]domain.TripCandidate{dup, slow, blocked, ok, sameLegOtherKind}, 8, 90)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d: %+v", len(got), got)
	}
	if got[0].Kind != domain.CandidateDirect || got[0].TotalTimeMinutes != 30 {
		t.Errorf("expected the faster direct duplicate kept, got %+v", got[0])
	}
	if got[1].Kind != domain.CandidateWalkThenRide {
		t.Errorf("expected walk_then_ride second, got %s", got[1].Kind)
	}
	if got[0].Score == 0 {
		t.Error("score should be populated")
	}
}

func TestRank_Truncates(t *testing.T) {
	var in []domain.TripCandidate
	for i := 0; i < 12; i++ {
		in = append(in, candidate(domain.CandidateDirect, 20+i, &domain.Route{Name: string(rune('A' + i)), Kind: domain.KindTrunk}))
	}
	got := planner.Rank(in, 8, 90)
	if len(got) != 8 {
		t.Fatalf("expected 8, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("not sorted at %d", i)
		}
	}
}

func TestRank_Empty(t *testing.T) {
	got := planner.Rank(nil, 8, 90)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
