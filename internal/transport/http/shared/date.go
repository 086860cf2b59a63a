package shared

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateLayout, value)
}

// ParseDateIn is ParseDate with date-only values placed at midnight in loc.
func ParseDateIn(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.ParseInLocation(dateLayout, value, loc)
}

// IsDateOnly reports whether value has no time component.
func IsDateOnly(value string) bool {
	value = strings.TrimSpace(value)
	return len(value) == len(dateLayout) && !strings.Contains(value, "T")
}

// EndOfRange turns a date-only upper bound into the last instant of that day.
func EndOfRange(raw string, parsed time.Time) time.Time {
	if parsed.IsZero() || !IsDateOnly(raw) {
		return parsed
	}
	return parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
