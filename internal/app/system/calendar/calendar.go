// Package calendar models civil dates (no time of day, no zone) as used by
// the nutrition records: one document per user per yyyy-MM-dd day.
//
// A Day is derived from an instant in a particular location ("what date is it
// for this user right now") and from then on behaves as a plain calendar date,
// so month and year boundaries are handled by time.Date normalisation.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the canonical key format for nutrition records (yyyy-MM-dd).
const Layout = "2006-01-02"

// LongLayout renders a day the way the dashboard header does ("January 2, 2006").
const LongLayout = "January 2, 2006"

// Day is a calendar date. The zero value is not a valid day; use IsZero.
type Day struct {
	t time.Time // always midnight UTC
}

// Date returns the Day for the given year, month and day, normalising
// out-of-range values the way time.Date does (e.g. Jan 32 -> Feb 1).
func Date(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// On returns the calendar date of instant t as seen in loc.
// A nil loc means UTC.
func On(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return Date(lt.Year(), lt.Month(), lt.Day())
}

// Parse reads a yyyy-MM-dd string.
func Parse(s string) (Day, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("calendar: parse %q: %w", s, err)
	}
	return Day{t: t}, nil
}

// ParseOr reads a yyyy-MM-dd string and falls back to def when s is blank
// or malformed.
func ParseOr(s string, def Day) Day {
	if strings.TrimSpace(s) == "" {
		return def
	}
	d, err := Parse(s)
	if err != nil {
		return def
	}
	return d
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool { return d.t.IsZero() }

// AddDays moves the day by n calendar days (negative n moves back).
func (d Day) AddDays(n int) Day {
	return Date(d.t.Year(), d.t.Month(), d.t.Day()+n)
}

// Next is the following calendar day.
func (d Day) Next() Day { return d.AddDays(1) }

// Prev is the preceding calendar day.
func (d Day) Prev() Day { return d.AddDays(-1) }

// Equal reports whether both values name the same date.
func (d Day) Equal(o Day) bool { return d.t.Equal(o.t) }

// Format returns the canonical yyyy-MM-dd form.
func (d Day) Format() string { return d.t.Format(Layout) }

// String implements fmt.Stringer with the canonical form.
func (d Day) String() string { return d.Format() }

// Long returns the header form, e.g. "March 4, 2025".
func (d Day) Long() string { return d.t.Format(LongLayout) }

// Week returns the seven days ending at d, oldest first.
func (d Day) Week() []Day {
	days := make([]Day, 7)
	for i := 0; i < 7; i++ {
		days[i] = d.AddDays(i - 6)
	}
	return days
}
