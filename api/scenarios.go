/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	walking data. Each scenario fills the previous calendar week (relative
	to the service clock) so its earnings are final. mixed-month also fills
	the three weeks before it.

AVAILABLE SCENARIOS:

	perfect-week:  one SUPER walk, STANDARD walks, two OFF days
	lazy-week:     short walks only, every day is a penalty
	super-streak:  60+ minutes every day, only the first is SUPER
	mixed-month:   four weeks of varied activity

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Create the current user
 3. Log every entry through walking.Service, so the OFF-day allowance and
    kind inference apply exactly as for API writes

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "perfect-week"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler, error helpers
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/walk-ledger/calendar"
	"github.com/warp/walk-ledger/walking"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "perfect-week",
		Name:        "Perfect Week",
		Description: "One SUPER walk, four STANDARD walks and two OFF days last week",
	},
	{
		ID:          "lazy-week",
		Name:        "Lazy Week",
		Description: "Only short walks last week, every day is a penalty",
	},
	{
		ID:          "super-streak",
		Name:        "Super Streak",
		Description: "An hour every day last week; only one SUPER walk counts",
	},
	{
		ID:          "mixed-month",
		Name:        "Mixed Month",
		Description: "Four weeks of varied activity ending last week",
	},
}

// scenarioEntry is one day of a scenario, relative to the Monday of the
// week before the current one.
type scenarioEntry struct {
	offset  int
	minutes int
	kind    walking.Kind
}

var scenarioEntries = map[string][]scenarioEntry{
	"perfect-week": {
		{offset: 0, minutes: 65},
		{offset: 1, minutes: 45},
		{offset: 2, minutes: 50},
		{offset: 3, minutes: 45},
		{offset: 4, minutes: 55},
		{offset: 5, kind: walking.KindOff},
		{offset: 6, kind: walking.KindOff},
	},
	"lazy-week": {
		{offset: 0, minutes: 20},
		{offset: 2, minutes: 30},
		{offset: 4, minutes: 44},
	},
	"super-streak": {
		{offset: 0, minutes: 60},
		{offset: 1, minutes: 75},
		{offset: 2, minutes: 90},
		{offset: 3, minutes: 60},
		{offset: 4, minutes: 61},
		{offset: 5, minutes: 120},
		{offset: 6, minutes: 60},
	},
	"mixed-month": {
		// three weeks back
		{offset: -21, minutes: 45},
		{offset: -20, minutes: 60},
		{offset: -18, kind: walking.KindOff},
		{offset: -16, minutes: 30},
		// two weeks back
		{offset: -14, minutes: 70},
		{offset: -13, minutes: 45},
		{offset: -12, minutes: 45},
		{offset: -11, minutes: 45},
		{offset: -10, minutes: 45},
		{offset: -9, kind: walking.KindOff},
		{offset: -8, kind: walking.KindOff},
		// one week back
		{offset: -7, minutes: 10},
		{offset: -5, minutes: 50},
		{offset: -3, minutes: 65},
		// last week
		{offset: 0, kind: walking.KindOff},
		{offset: 1, minutes: 45},
		{offset: 2, minutes: 45},
		{offset: 3, minutes: 60},
		{offset: 4, minutes: 45},
		{offset: 5, minutes: 45},
		{offset: 6, minutes: 45},
	},
}

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	entries, ok := scenarioEntries[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", fmt.Errorf("no scenario %q", req.ScenarioID))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	user, err := h.loadScenario(ctx, entries)
	if err != nil {
		h.writeServiceError(w, r, "Failed to load scenario", err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.Logger.InfoContext(ctx, "scenario loaded", "scenario", req.ScenarioID, "entries", len(entries))
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "loaded",
		"scenario": req.ScenarioID,
		"user_id":  string(user.ID),
	})
}

// ResetStore clears all data.
// POST /api/scenarios/reset
func (h *Handler) ResetStore(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SCENARIO LOADER
// =============================================================================

func (h *Handler) loadScenario(ctx context.Context, entries []scenarioEntry) (*walking.User, error) {
	user, err := h.Service.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	lastMonday := calendar.WeekStart(h.Service.Today()).AddDays(-7)
	for _, e := range entries {
		_, err := h.Service.LogWalk(ctx, walking.LogWalkInput{
			OwnerID:         user.ID,
			Day:             lastMonday.AddDays(e.offset),
			DurationMinutes: e.minutes,
			Kind:            e.kind,
		})
		if err != nil {
			return nil, fmt.Errorf("day %+d: %w", e.offset, err)
		}
	}
	return user, nil
}
