package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/steady/internal/constants"
)

// Day is a calendar date in YYYY-MM-DD form.
type Day string

// ParseDay validates s as a calendar date.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Day(t.Format(constants.DateFormat)), nil
}

// DayOf returns the local calendar day of t.
func DayOf(t time.Time) Day {
	return Day(t.Format(constants.DateFormat))
}

// Time returns midnight UTC of the day. Invalid days yield the zero time.
func (d Day) Time() time.Time {
	t, err := time.Parse(constants.DateFormat, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the day n days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

func (d Day) String() string { return string(d) }
