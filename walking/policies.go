package walking

// =============================================================================
// RULES - Fixed incentive and penalty schedule
// =============================================================================

// Duration thresholds in minutes.
const (
	SuperMinMinutes    = 60
	StandardMinMinutes = 45
)

// Earnings per day category.
const (
	SuperEarnings    = 150
	StandardEarnings = 100
	OffEarnings      = 0
	NoneEarnings     = 0
	PenaltyEarnings  = -200
)

// MaxOffDaysPerWeek is the weekly allowance of OFF days. It is enforced when
// an OFF day is logged, not during aggregation.
const MaxOffDaysPerWeek = 2

// InferKind returns the tag the write side stores for a walk of the given
// duration. Short walks carry no tag.
func InferKind(durationMinutes int) Kind {
	switch {
	case durationMinutes >= SuperMinMinutes:
		return KindSuper
	case durationMinutes >= StandardMinMinutes:
		return KindStandard
	default:
		return KindNone
	}
}
