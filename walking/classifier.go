package walking

import (
	"github.com/warp/walk-ledger/calendar"
)

// WeekState is the per-week counter carried through the day fold.
// It is a value: Classify returns the next state rather than mutating.
type WeekState struct {
	OffDaysUsed int
	SuperUsed   bool
}

// Classify decides the category and earnings of one day.
//
// Rules, first match wins:
//  1. no qualifying record, day after today  -> NONE, 0
//  2. no qualifying record, day on/before today -> PENALTY, -200
//  3. OFF record                             -> OFF, 0, one more off day
//  4. >= 60 minutes, SUPER slot unused       -> SUPER, +150, slot used
//  5. >= 45 minutes                          -> STANDARD, +100
//
// A record under 45 minutes is not qualifying and falls back to 1 or 2.
func Classify(rec *Record, day, today calendar.Day, state WeekState) (DayResult, WeekState, error) {
	result := DayResult{Day: day, Category: CategoryNone, EarningsDelta: NoneEarnings}

	if rec != nil {
		if err := validateRecord(*rec); err != nil {
			return DayResult{}, state, err
		}
		result.DurationMinutes = rec.DurationMinutes

		switch {
		case rec.Kind == KindOff:
			result.Category = CategoryOff
			result.EarningsDelta = OffEarnings
			state.OffDaysUsed++
			return result, state, nil

		case rec.DurationMinutes >= SuperMinMinutes && !state.SuperUsed:
			result.Category = CategorySuper
			result.EarningsDelta = SuperEarnings
			result.HasQualifyingActivity = true
			state.SuperUsed = true
			return result, state, nil

		case rec.DurationMinutes >= StandardMinMinutes:
			result.Category = CategoryStandard
			result.EarningsDelta = StandardEarnings
			result.HasQualifyingActivity = true
			return result, state, nil
		}
	}

	if day.After(today) {
		return result, state, nil
	}
	result.Category = CategoryPenalty
	result.EarningsDelta = PenaltyEarnings
	return result, state, nil
}

func validateRecord(rec Record) error {
	if rec.DurationMinutes < 0 {
		return &RecordError{Record: rec, Reason: "negative duration"}
	}
	if !rec.Day.Valid() {
		return &RecordError{Record: rec, Reason: "day outside calendar range"}
	}
	if !rec.Kind.Valid() {
		return &RecordError{Record: rec, Reason: "unknown kind " + string(rec.Kind)}
	}
	return nil
}
