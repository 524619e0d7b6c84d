package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/walk-ledger/walking"
	"github.com/warp/walk-ledger/walking/store"
)

func loadScenario(t *testing.T, router http.Handler, id string) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]string](t, rec)["user_id"]
}

func lastWeekStats(t *testing.T, router http.Handler, userID string) WeekStatsDTO {
	t.Helper()
	target := fmt.Sprintf("/api/stats/range?user_id=%s&start=2025-03-03&end=2025-03-09", userID)
	rec := do(t, router, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stats := decode[StatsDTO](t, rec)
	require.Len(t, stats.Weeks, 1)
	return stats.Weeks[0]
}

func TestScenarios_LastWeekEarnings(t *testing.T) {
	// GIVEN: the clock on Wednesday March 12
	// WHEN: loading each single-week scenario
	// THEN: the week of March 3 earns what the rules say

	cases := map[string]int{
		"perfect-week": 150 + 4*100,
		"lazy-week":    -7 * 200,
		"super-streak": 150 + 6*100,
	}
	for id, want := range cases {
		t.Run(id, func(t *testing.T) {
			router, _, _ := newTestRouter(t)
			userID := loadScenario(t, router, id)

			week := lastWeekStats(t, router, userID)
			assert.Equal(t, want, week.Earnings)
			assert.LessOrEqual(t, week.OffDaysUsed, walking.MaxOffDaysPerWeek)
			assert.False(t, week.OffCapExceeded)
		})
	}
}

func TestScenarios_MixedMonth(t *testing.T) {
	router, _, _ := newTestRouter(t)
	userID := loadScenario(t, router, "mixed-month")

	rec := do(t, router, http.MethodGet, "/api/stats/range?user_id="+userID+"&start=2025-02-10&end=2025-03-09", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[StatsDTO](t, rec)
	require.Len(t, stats.Weeks, 4)

	// Feb 10: STANDARD, SUPER, penalty, OFF, penalty x3
	assert.Equal(t, 100+150-200+0-3*200, stats.Weeks[0].Earnings)
	// Feb 17: SUPER, STANDARD x4, OFF x2
	assert.Equal(t, 150+4*100, stats.Weeks[1].Earnings)
	// Feb 24: short walk, penalty, STANDARD, penalty, SUPER, penalty x2
	assert.Equal(t, -200-200+100-200+150-400, stats.Weeks[2].Earnings)
	// Mar 3: OFF, STANDARD x2, SUPER, STANDARD x3
	assert.Equal(t, 5*100+150, stats.Weeks[3].Earnings)
}

func TestScenarios_ResetReplacesData(t *testing.T) {
	router, _, _ := newTestRouter(t)

	first := loadScenario(t, router, "perfect-week")
	second := loadScenario(t, router, "lazy-week")
	assert.NotEqual(t, first, second, "reset drops the previous user")

	rec := do(t, router, http.MethodGet, "/api/scenarios/current", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "lazy-week", decode[ScenarioDTO](t, rec).ID)

	rec = do(t, router, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", do(t, router, http.MethodGet, "/api/scenarios/current", nil).Body.String())
}

func TestScenarios_ListAndUnknown(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]ScenarioDTO](t, rec)
	assert.Len(t, list, len(scenarioEntries))

	rec = do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenarios_NotMountedWithoutStore(t *testing.T) {
	mem := store.NewMemory()
	svc := walking.NewService(mem, mem, time.UTC, nil)
	router := NewRouter(NewHandler(svc, nil, nil), Options{})

	rec := do(t, router, http.MethodGet, "/api/scenarios", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
