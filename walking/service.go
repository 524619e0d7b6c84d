/*
service.go - Read and write operations over the record store

PURPOSE:

	Everything around the pure core: entry-time policy for new records,
	create-or-replace writes, and widening a requested range to whole weeks
	before reading records and aggregating them.

WRITE FLOW (LogWalk):
 1. Validate input (owner, day, duration, kind)
 2. Infer Kind from duration when not given
 3. OFF only: reject if the week already holds MaxOffDaysPerWeek other
    OFF days
 4. ReplaceDay: remove the day's existing records, store the new one

READ FLOW (MonthlyStats / RangeStats):
 1. AlignToWeeks(range) -> fetch range
 2. RecordStore.LoadRange
 3. Aggregate(records, range.Start, range.End, today)

TIME:

	"Today" comes from Clock observed in Location. Tests pin Clock.

CONCURRENCY:

	Read-then-write sequences (the OFF allowance check followed by
	ReplaceDay, and creating the first user) run under the service's write
	lock, so concurrent requests cannot both pass the same check. One
	Service must own the store's writes.
*/
package walking

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/walk-ledger/calendar"
)

// DefaultUserName is given to the user created on first access.
const DefaultUserName = "Walker"

// Service coordinates record storage with the aggregation core.
type Service struct {
	Records  RecordStore
	Users    UserStore
	Location *time.Location
	Clock    func() time.Time
	Logger   *slog.Logger

	// writeMu serializes check-then-write sequences.
	writeMu sync.Mutex
}

// NewService creates a service. A nil location means time.Local and a nil
// logger discards output.
func NewService(records RecordStore, users UserStore, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		Records:  records,
		Users:    users,
		Location: loc,
		Clock:    time.Now,
		Logger:   logger,
	}
}

// Today returns the current calendar day in the service's location.
func (s *Service) Today() calendar.Day {
	return calendar.Today(s.Clock, s.Location)
}

// =============================================================================
// USERS
// =============================================================================

// CurrentUser returns the first user, creating it if the store is empty.
func (s *Service) CurrentUser(ctx context.Context) (*User, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	u, err := s.Users.FirstUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u != nil {
		return u, nil
	}

	created := User{
		ID:        OwnerID(uuid.NewString()),
		Name:      DefaultUserName,
		Balance:   decimal.Zero,
		CreatedAt: s.Clock().UTC(),
	}
	if err := s.Users.SaveUser(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.Logger.InfoContext(ctx, "created default user", "user_id", created.ID)
	return &created, nil
}

// User returns the user with id or ErrUserNotFound.
func (s *Service) User(ctx context.Context, id OwnerID) (*User, error) {
	u, err := s.Users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return u, nil
}

// =============================================================================
// WRITES
// =============================================================================

// LogWalkInput is a request to record a day.
type LogWalkInput struct {
	OwnerID         OwnerID
	Day             calendar.Day
	DurationMinutes int
	Kind            Kind
}

func (in LogWalkInput) validate() error {
	switch {
	case in.OwnerID == "":
		return fmt.Errorf("%w: missing owner", ErrInvalidInput)
	case !in.Day.Valid():
		return fmt.Errorf("%w: invalid day %s", ErrInvalidInput, in.Day)
	case in.DurationMinutes < 0:
		return fmt.Errorf("%w: negative duration %d", ErrInvalidInput, in.DurationMinutes)
	case !in.Kind.Valid():
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, in.Kind)
	}
	return nil
}

// LogWalk stores the record for a day, replacing whatever was there.
func (s *Service) LogWalk(ctx context.Context, in LogWalkInput) (Record, error) {
	if err := in.validate(); err != nil {
		return Record{}, err
	}

	kind := in.Kind
	if kind == KindNone {
		kind = InferKind(in.DurationMinutes)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if kind == KindOff {
		if err := s.checkOffAllowance(ctx, in.OwnerID, in.Day); err != nil {
			return Record{}, err
		}
	}

	rec := Record{
		ID:              RecordID(uuid.NewString()),
		OwnerID:         in.OwnerID,
		Day:             in.Day,
		DurationMinutes: in.DurationMinutes,
		Kind:            kind,
		CreatedAt:       s.Clock().UTC(),
	}
	if err := s.Records.ReplaceDay(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("failed to store record: %w", err)
	}

	s.Logger.InfoContext(ctx, "walk logged",
		"owner_id", rec.OwnerID, "day", rec.Day.String(),
		"duration_minutes", rec.DurationMinutes, "kind", string(rec.Kind))
	return rec, nil
}

// checkOffAllowance rejects a new OFF day when the week already holds the
// maximum on other days. Re-logging a day that is already OFF is allowed.
func (s *Service) checkOffAllowance(ctx context.Context, owner OwnerID, day calendar.Day) error {
	weekStart := calendar.WeekStart(day)
	recs, err := s.Records.LoadRange(ctx, owner, weekStart, calendar.WeekEnd(day))
	if err != nil {
		return fmt.Errorf("failed to load week: %w", err)
	}

	offDays := make(map[calendar.Day]bool)
	for d, rec := range MergeByDay(recs) {
		if rec.Kind == KindOff {
			offDays[d] = true
		}
	}
	if offDays[day] {
		return nil
	}
	if len(offDays) >= MaxOffDaysPerWeek {
		return &OffDayLimitError{WeekStart: weekStart, Used: len(offDays), Limit: MaxOffDaysPerWeek}
	}
	return nil
}

// RemoveWalk deletes the owner's records on day.
func (s *Service) RemoveWalk(ctx context.Context, owner OwnerID, day calendar.Day) (int, error) {
	if owner == "" {
		return 0, fmt.Errorf("%w: missing owner", ErrInvalidInput)
	}
	if !day.Valid() {
		return 0, fmt.Errorf("%w: invalid day %s", ErrInvalidInput, day)
	}

	s.writeMu.Lock()
	n, err := s.Records.DeleteDay(ctx, owner, day)
	s.writeMu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	s.Logger.InfoContext(ctx, "walk removed", "owner_id", owner, "day", day.String(), "removed", n)
	return n, nil
}

// =============================================================================
// READS
// =============================================================================

// MonthlyStats aggregates the calendar month, widened to whole weeks.
func (s *Service) MonthlyStats(ctx context.Context, owner OwnerID, year int, month time.Month) (MonthResult, error) {
	if month < time.January || month > time.December {
		return MonthResult{}, fmt.Errorf("%w: month %d", ErrInvalidInput, int(month))
	}
	return s.RangeStats(ctx, owner, calendar.MonthPeriod(year, month))
}

// RangeStats aggregates an arbitrary range, widened to whole weeks.
func (s *Service) RangeStats(ctx context.Context, owner OwnerID, p calendar.Period) (MonthResult, error) {
	if owner == "" {
		return MonthResult{}, fmt.Errorf("%w: missing owner", ErrInvalidInput)
	}
	if !p.Valid() {
		return MonthResult{}, &RangeError{Start: p.Start, End: p.End}
	}

	fetch := calendar.AlignToWeeks(p)
	recs, err := s.Records.LoadRange(ctx, owner, fetch.Start, fetch.End)
	if err != nil {
		return MonthResult{}, fmt.Errorf("failed to load records: %w", err)
	}

	result, err := Aggregate(recs, p.Start, p.End, s.Today())
	if err != nil {
		return MonthResult{}, err
	}
	s.Logger.DebugContext(ctx, "stats computed",
		"owner_id", owner, "range", p.String(),
		"records", len(recs), "weeks", len(result.Weeks), "total", result.TotalEarnings)
	return result, nil
}
