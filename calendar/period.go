package calendar

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Inclusive range of days
// =============================================================================

// Period is the inclusive range [Start, End].
type Period struct {
	Start Day
	End   Day
}

// MonthPeriod returns the first through last day of a month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// Valid reports whether both ends are real dates and Start <= End.
func (p Period) Valid() bool {
	return p.Start.Valid() && p.End.Valid() && p.Start.BeforeOrEqual(p.End)
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Day) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every day in the period in order.
func (p Period) Days() []Day {
	if p.End.Before(p.Start) {
		return nil
	}
	days := make([]Day, 0, p.Len())
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len returns the number of days in the period.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return fmt.Sprintf("[%s, %s]", p.Start, p.End)
}

// AlignToWeeks widens p to whole calendar weeks: from the Monday on or
// before Start to the Sunday on or after End. Record reads for an
// aggregation must cover this range so week-boundary days are present.
func AlignToWeeks(p Period) Period {
	return Period{Start: WeekStart(p.Start), End: WeekEnd(p.End)}
}

// Weeks returns the Monday of every calendar week intersecting p.
func Weeks(p Period) []Day {
	aligned := AlignToWeeks(p)
	var mondays []Day
	for monday := aligned.Start; monday.BeforeOrEqual(aligned.End); monday = monday.AddDays(7) {
		mondays = append(mondays, monday)
	}
	return mondays
}
