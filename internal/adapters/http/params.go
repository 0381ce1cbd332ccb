package http

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ALfish152/Jeep-Route-Finder/internal/core/domain"
	"github.com/ALfish152/Jeep-Route-Finder/internal/core/usecases"
)

var dayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseWeekday accepts 0-6 (Sunday = 0) or an English day name, full or
// abbreviated to three letters.
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		return weekday(n)
	}
	if len(s) >= 3 {
		if d, ok := dayNames[s[:3]]; ok && strings.HasPrefix(strings.ToLower(d.String()), s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", s)
}

// weekday converts 0 (Sunday) through 6 (Saturday).
func weekday(n int) (time.Weekday, error) {
	if n < 0 || n > 6 {
		return 0, fmt.Errorf("day %d out of range 0-6", n)
	}
	return time.Weekday(n), nil
}

// queryHour reads ?hour=. Missing means nil; range checks are left to the
// traffic table.
func queryHour(c *fiber.Ctx) (*int, error) {
	raw := c.Query("hour")
	if raw == "" {
		return nil, nil
	}
	h, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("hour must be an integer")
	}
	return &h, nil
}

func queryDay(c *fiber.Ctx) (*time.Weekday, error) {
	raw := c.Query("day")
	if raw == "" {
		return nil, nil
	}
	d, err := ParseWeekday(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// queryPoint reads a coordinate from two query keys. Both missing means nil.
func queryPoint(c *fiber.Ctx, latKey, lonKey string) (*domain.GeoPoint, error) {
	latRaw, lonRaw := c.Query(latKey), c.Query(lonKey)
	if latRaw == "" && lonRaw == "" {
		return nil, nil
	}
	lat, err1 := strconv.ParseFloat(latRaw, 64)
	lon, err2 := strconv.ParseFloat(lonRaw, 64)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("%s and %s must both be numbers", latKey, lonKey)
	}
	return &domain.GeoPoint{Lat: lat, Lon: lon}, nil
}

// clock resolves optional hour and day against the current Manila time.
func clock(hour *int, day *time.Weekday) (int, time.Weekday) {
	now := time.Now().In(usecases.Manila)
	h, d := now.Hour(), now.Weekday()
	if hour != nil {
		h = *hour
	}
	if day != nil {
		d = *day
	}
	return h, d
}
