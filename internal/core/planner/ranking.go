package planner

import (
	"math"
	"sort"
	"strings"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/boarding"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

// Score weights. Higher scores rank first.
const (
	scoreCeiling         = 100.0
	walkBudgetMeters     = 1000.0
	timeBudgetMinutes    = 60.0
	longWalkMeters       = 200.0
	longWalkPenalty      = 40.0
	trunkBonus           = 20.0
	feederBonus          = 10.0
	primaryBoardingBonus = 10.0
	secondaryBoardBonus  = 5.0
)

// Score is a pure function of the candidate's fields:
// walkScore + timeScore + kindBonus + preferenceBonus - longWalkPenalty.
func Score(c *domain.TripCandidate) float64 {
	sw, ew := walkMeters(c.StartWalk), walkMeters(c.EndWalk)

	score := walkScore(sw + ew)
	score += timeScore(c.TotalTimeMinutes)
	score += kindBonus(c.Legs)
	score += preferenceBonus(c.BoardingTier)
	if sw > longWalkMeters || ew > longWalkMeters {
		score -= longWalkPenalty
	}
	return score
}

func walkMeters(w *domain.Walk) float64 {
	if w == nil {
		return 0
	}
	return w.DistanceMeters
}

// walkScore falls linearly from 100 at no walking to 0 at 1 km.
func walkScore(meters float64) float64 {
	return math.Max(0, scoreCeiling-meters*scoreCeiling/walkBudgetMeters)
}

// timeScore falls linearly from 100 at zero minutes to 0 at one hour.
func timeScore(minutes int) float64 {
	return math.Max(0, scoreCeiling-float64(minutes)*scoreCeiling/timeBudgetMinutes)
}

// kindBonus averages the per-leg route kind bonus.
func kindBonus(legs []*domain.Route) float64 {
	if len(legs) == 0 {
		return 0
	}
	var sum float64
	for _, r := range legs {
		switch r.Kind {
		case domain.KindTrunk:
			sum += trunkBonus
		case domain.KindFeeder:
			sum += feederBonus
		}
	}
	return sum / float64(len(legs))
}

func preferenceBonus(tier string) float64 {
	switch boarding.Tier(tier) {
	case boarding.TierPrimary:
		return primaryBoardingBonus
	case boarding.TierSecondary:
		return secondaryBoardBonus
	}
	return 0
}

// Rank scores, filters, orders and deduplicates candidates, keeping at most
// maxResults. Candidates that cannot be boarded or exceed maxTotalMinutes
// are dropped. The result is never nil.
func Rank(cands []domain.TripCandidate, maxResults, maxTotalMinutes int) []domain.TripCandidate {
	kept := make([]domain.TripCandidate, 0, len(cands))
	for _, c := range cands {
		if !c.BoardingValid || c.TotalTimeMinutes > maxTotalMinutes || len(c.Legs) == 0 {
			continue
		}
		c.Score = Score(&c)
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return less(&kept[i], &kept[j])
	})

	out := make([]domain.TripCandidate, 0, len(kept))
	seen := make(map[string]bool, len(kept))
	for _, c := range kept {
		key := string(c.Kind) + "|" + strings.Join(c.LegNames(), ">")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if maxResults > 0 && len(out) == maxResults {
			break
		}
	}
	return out
}

func less(a, b *domain.TripCandidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.TotalTimeMinutes != b.TotalTimeMinutes {
		return a.TotalTimeMinutes < b.TotalTimeMinutes
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.TotalFare != b.TotalFare {
		return a.TotalFare < b.TotalFare
	}
	an, bn := strings.Join(a.LegNames(), ">"), strings.Join(b.LegNames(), ">")
	if an != bn {
		return an < bn
	}
	return a.Kind < b.Kind
}
