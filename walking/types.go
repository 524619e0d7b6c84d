/*
Package walking implements the walk ledger: daily walking records turned
into week-aligned earnings and penalties.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: raw activity for one owner on one calendar day (input)
  - DayResult / WeekResult / MonthResult: computed statistics (output)
  - Kind and Category: record tag vs. computed classification

DESIGN PRINCIPLES:
  1. Records are the only durable state. Results are recomputed on every
     request and never stored.
  2. Days are calendar.Day triples, converted once at the boundary.
  3. "Today" is always a parameter. Nothing in this package reads the clock.

SEE ALSO:
  - classifier.go: per-day rules
  - aggregator.go: week alignment and folding
  - service.go: read/write collaborator logic over a RecordStore
*/
package walking

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/walk-ledger/calendar"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OwnerID string
type RecordID string

// =============================================================================
// RECORD - Raw activity for one day (input)
// =============================================================================

// Kind is the optional tag on a record. Only KindOff affects classification;
// KindStandard and KindSuper are the write side's inference from duration.
type Kind string

const (
	KindNone     Kind = ""
	KindStandard Kind = "STANDARD"
	KindSuper    Kind = "SUPER"
	KindOff      Kind = "OFF"
)

// Valid reports whether k is one of the known tags or empty.
func (k Kind) Valid() bool {
	switch k {
	case KindNone, KindStandard, KindSuper, KindOff:
		return true
	}
	return false
}

// Record is one raw activity entry. At most one record per (OwnerID, Day)
// is expected; the aggregator merges duplicates by summing durations.
type Record struct {
	ID              RecordID
	OwnerID         OwnerID
	Day             calendar.Day
	DurationMinutes int
	Kind            Kind
	CreatedAt       time.Time
}

// =============================================================================
// RESULTS - Computed statistics (output)
// =============================================================================

// Category is the classification of a single day.
type Category string

const (
	CategoryStandard Category = "STANDARD"
	CategorySuper    Category = "SUPER"
	CategoryOff      Category = "OFF"
	CategoryPenalty  Category = "PENALTY"
	CategoryNone     Category = "NONE"
)

// Qualifying reports whether the category is a paid walking tier.
func (c Category) Qualifying() bool {
	return c == CategoryStandard || c == CategorySuper
}

type DayResult struct {
	Day                   calendar.Day
	HasQualifyingActivity bool
	DurationMinutes       int
	EarningsDelta         int
	Category              Category
}

// WeekResult holds the seven days of one Monday..Sunday week.
type WeekResult struct {
	Start        calendar.Day
	Days         [7]DayResult
	WeekEarnings int
	OffDaysUsed  int
	SuperUsed    bool

	// OffCapExceeded flags weeks holding more OFF records than the policy
	// allows. Such weeks can only come from data written around the
	// entry-time check; every OFF day is still counted.
	OffCapExceeded bool
}

// End returns the Sunday of the week.
func (w WeekResult) End() calendar.Day { return w.Start.AddDays(6) }

// MonthResult covers every calendar week intersecting [Start, End].
// Weeks may extend outside the requested range; renderers that want a
// strict month view filter days with InRange.
type MonthResult struct {
	Start         calendar.Day
	End           calendar.Day
	TotalEarnings int
	Weeks         []WeekResult
}

// InRange reports whether d lies inside the requested range.
func (m MonthResult) InRange(d calendar.Day) bool {
	return calendar.Period{Start: m.Start, End: m.End}.Contains(d)
}

// =============================================================================
// USER
// =============================================================================

// User is the owner of records. Balance is informational and is not
// derived from computed results.
type User struct {
	ID        OwnerID
	Name      string
	Balance   decimal.Decimal
	CreatedAt time.Time
}
