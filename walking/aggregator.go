/*
aggregator.go - Week-aligned folding of daily results

ALGORITHM:
  1. Validate the range and every record. Nothing is computed on failure.
  2. Index records by calendar day. Same-day records merge: durations add
     up, the first record's Kind is kept.
  3. Widen [start, end] to Monday..Sunday weeks.
  4. For each week, fold the seven days through Classify starting from a
     zero WeekState.
  5. Sum week earnings into the month total.

The result depends only on the arguments. Calling Aggregate twice with the
same input yields equal results.
*/
package walking

import (
	"github.com/warp/walk-ledger/calendar"
)

// Aggregate computes week and month statistics for [start, end] as of today.
// Records outside the week-aligned range are ignored.
func Aggregate(records []Record, start, end, today calendar.Day) (MonthResult, error) {
	if !start.Valid() || !end.Valid() || !today.Valid() || start.After(end) {
		return MonthResult{}, &RangeError{Start: start, End: end}
	}
	for _, rec := range records {
		if err := validateRecord(rec); err != nil {
			return MonthResult{}, err
		}
	}

	byDay := MergeByDay(records)

	month := MonthResult{Start: start, End: end}
	for _, monday := range calendar.Weeks(calendar.Period{Start: start, End: end}) {
		week, err := aggregateWeek(monday, byDay, today)
		if err != nil {
			return MonthResult{}, err
		}
		month.Weeks = append(month.Weeks, week)
		month.TotalEarnings += week.WeekEarnings
	}
	return month, nil
}

func aggregateWeek(monday calendar.Day, byDay map[calendar.Day]Record, today calendar.Day) (WeekResult, error) {
	week := WeekResult{Start: monday}
	var state WeekState

	for i, day := range (calendar.Period{Start: monday, End: monday.AddDays(6)}).Days() {
		var rec *Record
		if r, ok := byDay[day]; ok {
			rec = &r
		}

		result, next, err := Classify(rec, day, today, state)
		if err != nil {
			return WeekResult{}, err
		}
		state = next
		week.Days[i] = result
		week.WeekEarnings += result.EarningsDelta
	}

	week.OffDaysUsed = state.OffDaysUsed
	week.SuperUsed = state.SuperUsed
	week.OffCapExceeded = state.OffDaysUsed > MaxOffDaysPerWeek
	return week, nil
}

// MergeByDay indexes records by day. Records sharing a day are combined
// into one whose duration is the sum; ID, owner and Kind come from the
// first of them in input order.
func MergeByDay(records []Record) map[calendar.Day]Record {
	byDay := make(map[calendar.Day]Record, len(records))
	for _, rec := range records {
		if existing, ok := byDay[rec.Day]; ok {
			existing.DurationMinutes += rec.DurationMinutes
			byDay[rec.Day] = existing
			continue
		}
		byDay[rec.Day] = rec
	}
	return byDay
}
