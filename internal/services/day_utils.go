package services

import (
	"errors"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

var (
	ErrInvalidDay        = errors.New("invalid day")
	ErrInvalidRangeStart = errors.New("invalid range start")
	ErrInvalidRangeEnd   = errors.New("invalid range end")
	ErrInvalidRange      = errors.New("range end is before range start")
)

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// CalendarDay returns the calendar date of value in location as UTC midnight.
// Stored day columns always hold this form, so they compare the same for every viewer timezone.
func CalendarDay(value time.Time, location *time.Location) time.Time {
	local := DateAtLocation(value, location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func DayRange(day time.Time) (time.Time, time.Time) {
	start := CalendarDay(day, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func ParseDay(raw string) (time.Time, error) {
	parsed, err := time.Parse(DayLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	return parsed, nil
}

func FormatDay(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(DayLayout)
}

// ParseDayRange parses optional from/to query values. Blank values stay nil.
func ParseDayRange(rawFrom string, rawTo string) (*time.Time, *time.Time, error) {
	var from *time.Time
	if strings.TrimSpace(rawFrom) != "" {
		parsed, err := ParseDay(rawFrom)
		if err != nil {
			return nil, nil, ErrInvalidRangeStart
		}
		from = &parsed
	}

	var to *time.Time
	if strings.TrimSpace(rawTo) != "" {
		parsed, err := ParseDay(rawTo)
		if err != nil {
			return nil, nil, ErrInvalidRangeEnd
		}
		to = &parsed
	}

	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, ErrInvalidRange
	}
	return from, to, nil
}

// rangeBounds converts inclusive calendar days into half-open [start, end) bounds.
func rangeBounds(from *time.Time, to *time.Time) (*time.Time, *time.Time) {
	var fromStart *time.Time
	var toEnd *time.Time
	if from != nil {
		start, _ := DayRange(*from)
		fromStart = &start
	}
	if to != nil {
		_, end := DayRange(*to)
		toEnd = &end
	}
	return fromStart, toEnd
}

func normalizeClock(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{"15:04", "15:04:05", "15:04:05.999999"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.Format("15:04"), true
		}
	}
	return "", false
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
