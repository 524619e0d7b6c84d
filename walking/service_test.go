package walking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/walk-ledger/calendar"
	"github.com/warp/walk-ledger/walking"
	"github.com/warp/walk-ledger/walking/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService(t *testing.T, now time.Time) (*walking.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := walking.NewService(mem, mem, time.UTC, nil)
	svc.Clock = func() time.Time { return now }
	return svc, mem
}

func noon(d calendar.Day) time.Time {
	return d.Time(time.UTC).Add(12 * time.Hour)
}

// slowStore delays reads so concurrent callers overlap between their read
// and their write.
type slowStore struct {
	*store.Memory
	delay time.Duration
}

func (s slowStore) LoadRange(ctx context.Context, owner walking.OwnerID, from, to calendar.Day) ([]walking.Record, error) {
	time.Sleep(s.delay)
	return s.Memory.LoadRange(ctx, owner, from, to)
}

func (s slowStore) FirstUser(ctx context.Context) (*walking.User, error) {
	time.Sleep(s.delay)
	return s.Memory.FirstUser(ctx)
}

func newSlowService(t *testing.T, now time.Time) (*walking.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	slow := slowStore{Memory: mem, delay: 20 * time.Millisecond}
	svc := walking.NewService(slow, slow, time.UTC, nil)
	svc.Clock = func() time.Time { return now }
	return svc, mem
}

// =============================================================================
// USERS
// =============================================================================

func TestService_CurrentUser_CreatedOnce(t *testing.T) {
	svc, _ := newTestService(t, noon(wed))
	ctx := context.Background()

	first, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, walking.DefaultUserName, first.Name)
	assert.True(t, first.Balance.IsZero())
	assert.NotEmpty(t, first.ID)

	second, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	found, err := svc.User(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, found.Name)

	_, err = svc.User(ctx, "missing")
	assert.ErrorIs(t, err, walking.ErrUserNotFound)
}

func TestService_CurrentUser_ConcurrentFirstCalls(t *testing.T) {
	// GIVEN: an empty store with slow reads
	// WHEN: eight requests ask for the current user at once
	// THEN: one user is created and everyone gets it

	svc, mem := newSlowService(t, noon(wed))
	ctx := context.Background()

	ids := make([]walking.OwnerID, 8)
	var wg sync.WaitGroup
	for i := range ids {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := svc.CurrentUser(ctx)
			if assert.NoError(t, err) {
				ids[i] = u.ID
			}
		}()
	}
	wg.Wait()

	first, err := mem.FirstUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, first)
	for _, id := range ids {
		assert.Equal(t, first.ID, id)
	}
}

// =============================================================================
// WRITES
// =============================================================================

func TestService_LogWalk_ReplacesDay(t *testing.T) {
	// GIVEN: a 30 minute walk on Monday
	// WHEN: logging 50 minutes for Monday
	// THEN: only the 50 minute record remains

	svc, mem := newTestService(t, noon(sun))
	ctx := context.Background()

	_, err := svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: mon, DurationMinutes: 30})
	require.NoError(t, err)
	rec, err := svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: mon, DurationMinutes: 50})
	require.NoError(t, err)
	assert.Equal(t, walking.KindStandard, rec.Kind)

	recs, err := mem.LoadRange(ctx, "u", mon, mon)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 50, recs[0].DurationMinutes)
	assert.Equal(t, rec.ID, recs[0].ID)
}

func TestService_LogWalk_InfersKind(t *testing.T) {
	svc, _ := newTestService(t, noon(sun))
	ctx := context.Background()

	cases := map[int]walking.Kind{
		20: walking.KindNone,
		45: walking.KindStandard,
		60: walking.KindSuper,
	}
	for minutes, want := range cases {
		rec, err := svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: mon, DurationMinutes: minutes})
		require.NoError(t, err)
		assert.Equal(t, want, rec.Kind, "%d minutes", minutes)
	}
}

func TestService_LogWalk_Validation(t *testing.T) {
	svc, _ := newTestService(t, noon(sun))
	ctx := context.Background()

	inputs := []walking.LogWalkInput{
		{Day: mon, DurationMinutes: 30},
		{OwnerID: "u", Day: calendar.Day{}, DurationMinutes: 30},
		{OwnerID: "u", Day: mon, DurationMinutes: -1},
		{OwnerID: "u", Day: mon, DurationMinutes: 30, Kind: "LONG"},
	}
	for _, in := range inputs {
		_, err := svc.LogWalk(ctx, in)
		assert.ErrorIs(t, err, walking.ErrInvalidInput, "%+v", in)
		assert.True(t, walking.IsClientError(err))
	}
}

func TestService_LogWalk_OffDayLimit(t *testing.T) {
	// GIVEN: Monday and Tuesday already OFF
	// WHEN: logging Wednesday as OFF
	// THEN: the request is rejected; re-logging Monday as OFF is accepted

	svc, _ := newTestService(t, noon(sun))
	ctx := context.Background()

	for _, d := range []calendar.Day{mon, tue} {
		_, err := svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: d, Kind: walking.KindOff})
		require.NoError(t, err)
	}

	_, err := svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: wed, Kind: walking.KindOff})
	require.Error(t, err)
	assert.True(t, walking.IsConflict(err))

	var limitErr *walking.OffDayLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, mon, limitErr.WeekStart)
	assert.Equal(t, 2, limitErr.Used)
	assert.Equal(t, walking.MaxOffDaysPerWeek, limitErr.Limit)

	_, err = svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: mon, Kind: walking.KindOff})
	assert.NoError(t, err, "re-confirming an OFF day is allowed")

	_, err = svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: wed, DurationMinutes: 50})
	assert.NoError(t, err, "walks are not limited")

	_, err = svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: mon.AddDays(7), Kind: walking.KindOff})
	assert.NoError(t, err, "the allowance resets the next week")
}

func TestService_LogWalk_ConcurrentOffDaysRespectLimit(t *testing.T) {
	// GIVEN: a store whose reads are slow enough for writers to overlap
	// WHEN: OFF is logged for Monday through Thursday concurrently
	// THEN: exactly two succeed and the stored week holds two OFF days

	svc, mem := newSlowService(t, noon(sun))
	ctx := context.Background()

	days := []calendar.Day{mon, tue, wed, thu}
	errs := make([]error, len(days))
	var wg sync.WaitGroup
	for i, d := range days {
		i, d := i, d
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: d, Kind: walking.KindOff})
		}()
	}
	wg.Wait()

	var accepted, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case walking.IsConflict(err):
			rejected++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, walking.MaxOffDaysPerWeek, accepted)
	assert.Equal(t, len(days)-walking.MaxOffDaysPerWeek, rejected)

	recs, err := mem.LoadRange(ctx, "u", mon, sun)
	require.NoError(t, err)
	result, err := walking.Aggregate(recs, mon, sun, sun)
	require.NoError(t, err)
	assert.Equal(t, walking.MaxOffDaysPerWeek, result.Weeks[0].OffDaysUsed)
	assert.False(t, result.Weeks[0].OffCapExceeded)
}

func TestService_LogWalk_WalkOverOffDayFreesAllowance(t *testing.T) {
	// Turning an OFF day back into a walk frees the allowance.
	svc, _ := newTestService(t, noon(sun))
	ctx := context.Background()

	for _, d := range []calendar.Day{mon, tue} {
		_, err := svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: d, Kind: walking.KindOff})
		require.NoError(t, err)
	}
	_, err := svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: tue, DurationMinutes: 45})
	require.NoError(t, err)

	_, err = svc.LogWalk(ctx, walking.LogWalkInput{OwnerID: "u", Day: wed, Kind: walking.KindOff})
	assert.NoError(t, err)
}

func TestService_RemoveWalk(t *testing.T) {
	svc, mem := newTestService(t, noon(sun))
	ctx := context.Background()

	mem.Seed(walk("u", mon, 20), walk("u", mon, 30), walk("u", tue, 45))

	n, err := svc.RemoveWalk(ctx, "u", mon)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.RemoveWalk(ctx, "u", mon)
	require.NoError(t, err)
	assert.Zero(t, n, "deleting an empty day is a no-op")

	recs, err := mem.LoadRange(ctx, "u", mon, sun)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	_, err = svc.RemoveWalk(ctx, "", mon)
	assert.ErrorIs(t, err, walking.ErrInvalidInput)
}

// =============================================================================
// READS
// =============================================================================

func TestService_MonthlyStats_FetchesWholeWeeks(t *testing.T) {
	// GIVEN: a SUPER walk on Monday Feb 24, outside March but in its first week,
	// and another 60 minute walk on Saturday March 1
	// WHEN: computing March stats
	// THEN: the February walk is used, so March 1 only earns STANDARD

	svc, mem := newTestService(t, noon(date(2025, time.March, 1)))
	ctx := context.Background()

	mem.Seed(walk("u", date(2025, time.February, 24), 60), walk("u", date(2025, time.March, 1), 60))

	result, err := svc.MonthlyStats(ctx, "u", 2025, time.March)
	require.NoError(t, err)
	require.Len(t, result.Weeks, 6)

	first := result.Weeks[0]
	assert.Equal(t, walking.CategorySuper, first.Days[0].Category)
	assert.Equal(t, walking.CategoryStandard, first.Days[5].Category)
	assert.Equal(t, walking.CategoryNone, first.Days[6].Category)

	// 150 + 100, Tue-Fri penalties, everything after March 1 is in the future.
	assert.Equal(t, 250-800, result.TotalEarnings)
}

func TestService_MonthlyStats_IgnoresOtherOwners(t *testing.T) {
	svc, mem := newTestService(t, noon(sun))
	ctx := context.Background()

	mem.Seed(walk("someone-else", mon, 60))

	result, err := svc.RangeStats(ctx, "u", calendar.Period{Start: mon, End: sun})
	require.NoError(t, err)
	assert.Equal(t, -1400, result.TotalEarnings)
}

func TestService_Stats_Errors(t *testing.T) {
	svc, _ := newTestService(t, noon(sun))
	ctx := context.Background()

	_, err := svc.MonthlyStats(ctx, "u", 2025, 13)
	assert.ErrorIs(t, err, walking.ErrInvalidInput)

	_, err = svc.RangeStats(ctx, "u", calendar.Period{Start: sun, End: mon})
	assert.ErrorIs(t, err, walking.ErrInvalidRange)

	_, err = svc.RangeStats(ctx, "", calendar.Period{Start: mon, End: sun})
	assert.ErrorIs(t, err, walking.ErrInvalidInput)
}

func TestService_Today_UsesLocation(t *testing.T) {
	svc, _ := newTestService(t, time.Date(2025, time.March, 4, 22, 0, 0, 0, time.UTC))
	assert.Equal(t, tue, svc.Today())

	svc.Location = time.FixedZone("UTC+3", 3*60*60)
	assert.Equal(t, wed, svc.Today())
}
