// Package fare parses jeepney fare ranges.
package fare

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

const (
	// DefaultFare applies when a fare string carries no digits.
	DefaultFare = 15
	// Discount is the flat student/senior/PWD reduction per ride.
	Discount = 2
	// Currency is the peso sign used in fare strings.
	Currency = "₱"
)

var digits = regexp.MustCompile(`\d+`)

// Extract returns the first integer embedded in s, or DefaultFare.
func Extract(s string) int {
	m := digits.FindString(s)
	if m == "" {
		return DefaultFare
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return DefaultFare
	}
	return n
}

// ApplyDiscount subtracts the flat discount when enabled, never going below zero.
func ApplyDiscount(fare int, discounted bool) int {
	if discounted {
		fare -= Discount
	}
	if fare < 0 {
		return 0
	}
	return fare
}

// Total sums the discounted fare of every leg.
func Total(legs []*domain.Route, discounted bool) int {
	total := 0
	for _, r := range legs {
		total += ApplyDiscount(Extract(r.FareRange), discounted)
	}
	return total
}

// FormatRange renders a fare range with the discount applied to both bounds,
// e.g. "₱12-20" becomes "₱10-18". Strings without two bounds are returned
// unchanged when no discount applies.
func FormatRange(s string, discounted bool) string {
	bounds := digits.FindAllString(s, 2)
	if !discounted {
		return s
	}
	switch len(bounds) {
	case 0:
		return fmt.Sprintf("%s%d", Currency, ApplyDiscount(DefaultFare, true))
	case 1:
		n, _ := strconv.Atoi(bounds[0])
		return fmt.Sprintf("%s%d", Currency, ApplyDiscount(n, true))
	}
	lo, _ := strconv.Atoi(bounds[0])
	hi, _ := strconv.Atoi(bounds[1])
	return fmt.Sprintf("%s%d-%d", Currency, ApplyDiscount(lo, true), ApplyDiscount(hi, true))
}
