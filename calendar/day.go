// Package calendar provides the calendar-day value type used as the
// bucketing key for activity records, and the week arithmetic built on it.
//
// A Day is a (year, month, day) triple. It carries no time of day and no
// location: conversion from a time.Time happens once, at the boundary, with
// DayOf. All arithmetic normalizes through UTC midnight so daylight saving
// transitions and local offsets never move a record to another day.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the wire format of a Day.
const Layout = "2006-01-02"

// =============================================================================
// DAY - Calendar date without time of day
// =============================================================================

type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// Constructors
func NewDay(year int, month time.Month, day int) Day {
	return Day{Year: year, Month: month, Day: day}
}

// DayOf returns the calendar day of t as observed in loc.
// A nil loc uses t's own location.
func DayOf(t time.Time, loc *time.Location) Day {
	if loc != nil {
		t = t.In(loc)
	}
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Today returns the current day in loc according to now.
func Today(now func() time.Time, loc *time.Location) Day {
	if now == nil {
		now = time.Now
	}
	return DayOf(now(), loc)
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q (use YYYY-MM-DD): %w", s, err)
	}
	return DayOf(t, nil), nil
}

// Valid reports whether d names a real date in years 1 through 9999.
func (d Day) Valid() bool {
	if d.Year < 1 || d.Year > 9999 || d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	return d.Day <= daysIn(d.Year, d.Month)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Comparison
func (d Day) Before(other Day) bool        { return d.Compare(other) < 0 }
func (d Day) After(other Day) bool         { return d.Compare(other) > 0 }
func (d Day) Equal(other Day) bool         { return d == other }
func (d Day) BeforeOrEqual(other Day) bool { return d.Compare(other) <= 0 }
func (d Day) AfterOrEqual(other Day) bool  { return d.Compare(other) >= 0 }

// Compare returns -1, 0 or +1. It compares the triple field by field and
// never goes through time.Time.
func (d Day) Compare(other Day) int {
	switch {
	case d.Year != other.Year:
		return cmp(d.Year, other.Year)
	case d.Month != other.Month:
		return cmp(int(d.Month), int(other.Month))
	default:
		return cmp(d.Day, other.Day)
	}
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Arithmetic
func (d Day) AddDays(n int) Day { return DayOf(d.utc().AddDate(0, 0, n), nil) }

// Properties
func (d Day) Weekday() time.Weekday { return d.utc().Weekday() }
func (d Day) IsZero() bool          { return d == Day{} }

// IsoWeekday returns 1 for Monday through 7 for Sunday.
func (d Day) IsoWeekday() int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Time returns midnight of d in loc.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Day) utc() time.Time { return d.Time(time.UTC) }

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes d as YYYY-MM-DD.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD string.
func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// WEEK UTILITIES - Weeks run Monday through Sunday
// =============================================================================

// WeekStart returns the Monday on or before d. A Sunday belongs to the week
// that started six days earlier.
func WeekStart(d Day) Day { return d.AddDays(1 - d.IsoWeekday()) }

// WeekEnd returns the Sunday on or after d.
func WeekEnd(d Day) Day { return d.AddDays(7 - d.IsoWeekday()) }

// DaysBetween returns the number of days from a to b (negative if b < a).
// Both ends are UTC midnights, so their Unix seconds divide evenly by a day.
func DaysBetween(from, to Day) int {
	const secondsPerDay = 24 * 60 * 60
	return int(to.utc().Unix()/secondsPerDay - from.utc().Unix()/secondsPerDay)
}

func StartOfMonth(year int, month time.Month) Day { return NewDay(year, month, 1) }
func EndOfMonth(year int, month time.Month) Day {
	return NewDay(year, month, daysIn(year, month))
}
