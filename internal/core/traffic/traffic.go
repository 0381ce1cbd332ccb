// Package traffic maps time of day to a travel-time multiplier.
package traffic

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
)

// Qualitative traffic levels.
const (
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// DwellMinutesPerStop is the time added for each stop along a ride.
const DwellMinutesPerStop = 0.5

var (
	// ErrOverlappingWindows is returned when two windows share a weekday and an hour.
	ErrOverlappingWindows = errors.New("overlapping traffic windows")
	// ErrInvalidHour is returned for hours outside 0..23.
	ErrInvalidHour = errors.New("hour must be between 0 and 23")
)

// Window is a named, inclusive hour range on some weekdays.
type Window struct {
	Name       string         `json:"name" mapstructure:"name"`
	StartHour  int            `json:"start_hour" mapstructure:"start_hour"`
	EndHour    int            `json:"end_hour" mapstructure:"end_hour"`
	Multiplier float64        `json:"multiplier" mapstructure:"multiplier"`
	Level      string         `json:"level" mapstructure:"level"`
	Days       []time.Weekday `json:"days" mapstructure:"days"`
}

func (w Window) covers(hour int, day time.Weekday) bool {
	if hour < w.StartHour || hour > w.EndHour {
		return false
	}
	for _, d := range w.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Condition is the traffic state at a given hour.
type Condition struct {
	Window     string  `json:"window"`
	Multiplier float64 `json:"multiplier"`
	Level      string  `json:"level"`
}

// Normal is the fallback when no window matches.
var Normal = Condition{Window: "normal", Multiplier: 1.0, Level: LevelLow}

// Table is an immutable set of non-overlapping traffic windows.
type Table struct {
	windows []Window
}

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}
var weekend = []time.Weekday{time.Saturday, time.Sunday}

// DefaultWindows is the Batangas City time-of-day profile.
func DefaultWindows() []Window {
	return []Window{
		{Name: "morning_rush", StartHour: 7, EndHour: 9, Multiplier: 1.8, Level: LevelHigh, Days: weekdays},
		{Name: "evening_rush", StartHour: 17, EndHour: 19, Multiplier: 1.6, Level: LevelHigh, Days: weekdays},
		{Name: "lunch_time", StartHour: 12, EndHour: 13, Multiplier: 1.3, Level: LevelMedium, Days: weekdays},
		{Name: "weekend_peak", StartHour: 9, EndHour: 12, Multiplier: 1.4, Level: LevelMedium, Days: weekend},
	}
}

// DefaultTable returns a table built from DefaultWindows.
func DefaultTable() *Table {
	t, err := NewTable(DefaultWindows())
	if err != nil {
		panic("traffic: default windows: " + err.Error())
	}
	return t
}

// NewTable validates windows and rejects any overlap on a shared weekday.
func NewTable(windows []Window) (*Table, error) {
	for i, w := range windows {
		if w.StartHour < 0 || w.EndHour > 23 || w.StartHour > w.EndHour {
			return nil, fmt.Errorf("window %q: bad hour range %d-%d", w.Name, w.StartHour, w.EndHour)
		}
		if w.Multiplier <= 0 {
			return nil, fmt.Errorf("window %q: multiplier must be positive", w.Name)
		}
		for _, other := range windows[:i] {
			if sharesDay(w, other) && w.StartHour <= other.EndHour && other.StartHour <= w.EndHour {
				return nil, fmt.Errorf("%w: %q and %q", ErrOverlappingWindows, other.Name, w.Name)
			}
		}
	}
	cp := make([]Window, len(windows))
	for i, w := range windows {
		w.Days = append([]time.Weekday{}, w.Days...)
		cp[i] = w
	}
	return &Table{windows: cp}, nil
}

func sharesDay(a, b Window) bool {
	for _, x := range a.Days {
		for _, y := range b.Days {
			if x == y {
				return true
			}
		}
	}
	return false
}

// Windows returns a copy of the table's windows.
func (t *Table) Windows() []Window {
	return append([]Window{}, t.windows...)
}

// Multiplier returns the traffic condition for hour on day.
func (t *Table) Multiplier(hour int, day time.Weekday) (Condition, error) {
	if hour < 0 || hour > 23 {
		return Condition{}, fmt.Errorf("%w: got %d", ErrInvalidHour, hour)
	}
	for _, w := range t.windows {
		if w.covers(hour, day) {
			return Condition{Window: w.Name, Multiplier: w.Multiplier, Level: w.Level}, nil
		}
	}
	return Normal, nil
}

// EstimateMinutes returns round(base × multiplier + stops × 0.5).
func (t *Table) EstimateMinutes(baseMinutes float64, stopCount, hour int, day time.Weekday) (int, error) {
	c, err := t.Multiplier(hour, day)
	if err != nil {
		return 0, err
	}
	return int(math.Round(baseMinutes*c.Multiplier + float64(stopCount)*DwellMinutesPerStop)), nil
}

// Estimate returns the full ETA breakdown for one ride.
func (t *Table) Estimate(baseMinutes float64, stopCount, hour int, day time.Weekday) (domain.ETA, error) {
	c, err := t.Multiplier(hour, day)
	if err != nil {
		return domain.ETA{}, err
	}
	adjusted := baseMinutes * c.Multiplier
	return domain.ETA{
		Minutes:             int(math.Round(adjusted + float64(stopCount)*DwellMinutesPerStop)),
		BaseMinutes:         int(math.Round(baseMinutes)),
		TrafficDelayMinutes: int(math.Round(adjusted - baseMinutes)),
		TrafficLevel:        c.Level,
	}, nil
}
