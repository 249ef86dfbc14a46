package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/steady/internal/models"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// ClockIn returns a clock reporting the current time in timezone. An invalid
// timezone falls back to the system zone.
func ClockIn(timezone string) func() time.Time {
	loc, err := LoadLocation(timezone)
	if err != nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

// ResolveDay turns a CLI day argument into a calendar day relative to now.
// Accepted forms: "" or "today", "yesterday", "tomorrow", a signed offset
// such as "-2", or an explicit YYYY-MM-DD date.
func ResolveDay(arg string, now time.Time) (models.Day, error) {
	today := models.DayOf(now)
	switch s := strings.ToLower(strings.TrimSpace(arg)); s {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	case "tomorrow":
		return today.AddDays(1), nil
	default:
		if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
			n, err := strconv.Atoi(s)
			if err != nil {
				return "", fmt.Errorf("invalid day offset %q", arg)
			}
			return today.AddDays(n), nil
		}
		return models.ParseDay(s)
	}
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	if timezone == "" || timezone == "Local" {
		return true
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
