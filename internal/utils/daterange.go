package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

// ParseDateRange parses created_from/created_to style bounds. Bounds may be
// dates ("2024-05-01") or timestamps; a date-only upper bound covers the
// whole day. Empty bounds are returned as nil.
func ParseDateRange(from, to string, loc *time.Location) (*time.Time, *time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	cfg := &now.Config{WeekStartDay: time.Sunday, TimeLocation: loc, TimeFormats: now.TimeFormats}

	var start, end *time.Time

	if from = strings.TrimSpace(from); from != "" {
		t, err := cfg.Parse(from)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid created_from %q: %w", from, err)
		}
		if isDateOnly(from) {
			t = cfg.With(t).BeginningOfDay()
		}
		start = &t
	}

	if to = strings.TrimSpace(to); to != "" {
		t, err := cfg.Parse(to)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid created_to %q: %w", to, err)
		}
		if isDateOnly(to) {
			t = cfg.With(t).EndOfDay()
		}
		end = &t
	}

	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, fmt.Errorf("created_to is before created_from")
	}
	return start, end, nil
}

func isDateOnly(value string) bool {
	_, err := time.Parse(time.DateOnly, value)
	return err == nil
}
