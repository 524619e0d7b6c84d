/*
errors.go - Error taxonomy for the walk ledger

ERROR CATEGORIES:
  1. Core validation - ErrInvalidRange, ErrInvalidRecord. Raised before any
     work is done; aggregation is all-or-nothing.
  2. Write-side policy - ErrOffDayLimit, ErrInvalidInput.
  3. Lookup - ErrUserNotFound.

USAGE:
    if errors.Is(err, walking.ErrInvalidRange) { ... }

    var limit *walking.OffDayLimitError
    if errors.As(err, &limit) { ... limit.Used ... }
*/
package walking

import (
	"errors"
	"fmt"

	"github.com/warp/walk-ledger/calendar"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a range starts after it ends or names
	// a day outside the representable calendar.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidRecord is returned for a record with a negative duration or
	// an invalid day.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrOffDayLimit is returned when logging an OFF day would exceed the
	// weekly allowance.
	ErrOffDayLimit = errors.New("weekly off-day limit reached")

	// ErrInvalidInput is returned for malformed write requests.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RangeError describes a rejected aggregation range.
type RangeError struct {
	Start calendar.Day
	End   calendar.Day
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: %s to %s", e.Start, e.End)
}

func (e *RangeError) Unwrap() error { return ErrInvalidRange }

// RecordError describes a rejected record.
type RecordError struct {
	Record Record
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("invalid record %q for %s on %s: %s",
		e.Record.ID, e.Record.OwnerID, e.Record.Day, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrInvalidRecord }

// OffDayLimitError reports the week that is already full.
type OffDayLimitError struct {
	WeekStart calendar.Day
	Used      int
	Limit     int
}

func (e *OffDayLimitError) Error() string {
	return fmt.Sprintf("weekly off-day limit reached: week of %s already has %d of %d",
		e.WeekStart, e.Used, e.Limit)
}

func (e *OffDayLimitError) Unwrap() error { return ErrOffDayLimit }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidRecord) ||
		errors.Is(err, ErrInvalidInput)
}

// IsConflict returns true if the request clashes with stored state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOffDayLimit)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
