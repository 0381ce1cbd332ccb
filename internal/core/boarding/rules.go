// Package boarding decides whether a route picks up riders at a landmark.
package boarding

import (
	"fmt"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

// Tier explains how a boarding verdict was reached.
type Tier string

const (
	TierUnresolved Tier = "unresolved" // no landmark supplied
	TierInvalid    Tier = "invalid"    // invalid-combination table
	TierNoData     Tier = "no_data"    // route has no zone entry
	TierPrimary    Tier = "primary"
	TierSecondary  Tier = "secondary"
	TierRestricted Tier = "restricted"
	TierUnknown    Tier = "unknown" // landmark absent from the route's zone
)

// Verdict is the outcome of a boarding check.
type Verdict struct {
	Valid      bool
	Tier       Tier
	Confidence domain.Confidence
}

type zone struct {
	primary, secondary, restricted map[string]bool
}

// Rules holds the boarding zones and the invalid-combination table.
type Rules struct {
	zones   map[string]zone
	invalid map[string]map[string]bool
}

// NewRules indexes zones and invalid combinations. A landmark may appear in
// only one set per route.
func NewRules(zones []domain.BoardingZone, invalid []domain.InvalidBoarding) (*Rules, error) {
	r := &Rules{
		zones:   make(map[string]zone, len(zones)),
		invalid: make(map[string]map[string]bool, len(invalid)),
	}

	for _, z := range zones {
		if _, dup := r.zones[z.RouteName]; dup {
			return nil, fmt.Errorf("duplicate boarding zone for %q", z.RouteName)
		}
		idx := zone{
			primary:    toSet(z.Primary),
			secondary:  toSet(z.Secondary),
			restricted: toSet(z.Restricted),
		}
		for name := range idx.primary {
			if idx.secondary[name] || idx.restricted[name] {
				return nil, fmt.Errorf("route %q: landmark %q in more than one zone set", z.RouteName, name)
			}
		}
		for name := range idx.secondary {
			if idx.restricted[name] {
				return nil, fmt.Errorf("route %q: landmark %q in more than one zone set", z.RouteName, name)
			}
		}
		r.zones[z.RouteName] = idx
	}

	for _, ib := range invalid {
		set, ok := r.invalid[ib.Landmark]
		if !ok {
			set = make(map[string]bool, len(ib.RouteNames))
			r.invalid[ib.Landmark] = set
		}
		for _, rn := range ib.RouteNames {
			set[rn] = true
		}
	}

	return r, nil
}

func toSet(names []string) map[string]bool {
	s := make(map[string]bool, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// CanBoard reports whether routeName picks up at landmarkName. An empty
// landmark name means the location could not be resolved and is allowed.
func (r *Rules) CanBoard(landmarkName, routeName string) bool {
	return r.BoardingMessageFor(landmarkName, routeName).Valid
}

// BoardingMessageFor applies the boarding precedence: unresolved landmark,
// invalid combination, missing zone data, primary/secondary, restricted, unknown.
func (r *Rules) BoardingMessageFor(landmarkName, routeName string) Verdict {
	if landmarkName == "" {
		return Verdict{Valid: true, Tier: TierUnresolved, Confidence: domain.ConfidenceLow}
	}
	if r.invalid[landmarkName][routeName] {
		return Verdict{Valid: false, Tier: TierInvalid, Confidence: domain.ConfidenceLow}
	}
	z, ok := r.zones[routeName]
	if !ok {
		return Verdict{Valid: true, Tier: TierNoData, Confidence: domain.ConfidenceLow}
	}
	switch {
	case z.primary[landmarkName]:
		return Verdict{Valid: true, Tier: TierPrimary, Confidence: domain.ConfidenceHigh}
	case z.secondary[landmarkName]:
		return Verdict{Valid: true, Tier: TierSecondary, Confidence: domain.ConfidenceMedium}
	case z.restricted[landmarkName]:
		return Verdict{Valid: false, Tier: TierRestricted, Confidence: domain.ConfidenceLow}
	}
	return Verdict{Valid: true, Tier: TierUnknown, Confidence: domain.ConfidenceLow}
}
