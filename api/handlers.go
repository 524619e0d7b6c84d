/*
handlers.go - HTTP API handlers for the walk ledger

PURPOSE:

	Exposes the walking service via REST API. Handles HTTP request/response,
	JSON serialization, and delegates to walking.Service.

ENDPOINTS:

	Users:
	  GET    /api/user                   Current user (created on first call)
	  GET    /api/users/{id}             User by ID

	Walks:
	  POST   /api/walk                   Create or replace the day's record
	  DELETE /api/walk?user_id=&date=    Remove the day's records

	Stats:
	  GET    /api/stats?user_id=&year=&month=     Calendar month (month 1-12)
	  GET    /api/stats/range?user_id=&start=&end= Arbitrary range

	Scenarios:
	  GET    /api/scenarios              List demo scenarios
	  POST   /api/scenarios/load         Load a demo scenario

REQUEST FLOW:
 1. Parse HTTP request
 2. Validate input shape (dates, integers)
 3. Call walking.Service
 4. Serialize response
 5. Map errors to status codes

ERROR HANDLING:

	Errors are returned as JSON {error, details}:
	- 400: invalid input, invalid range, invalid record
	- 404: user not found
	- 409: weekly OFF-day allowance used up
	- 500: everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/walk-ledger/calendar"
	"github.com/warp/walk-ledger/logging"
	"github.com/warp/walk-ledger/walking"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// DataStore is the maintenance surface of the backing store, used by the
// demo scenarios.
type DataStore interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *walking.Service
	Store   DataStore
	Logger  *slog.Logger

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler. store may be nil, in which case the
// scenario endpoints are not mounted.
func NewHandler(svc *walking.Service, store DataStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		Service: svc,
		Store:   store,
		Logger:  logging.WithComponent(logger, logging.ComponentHTTP),
	}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// GetCurrentUser returns the current user, creating it on first use.
// GET /api/user
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.CurrentUser(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "Failed to load user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// GetUser returns a user by ID.
// GET /api/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := walking.OwnerID(chi.URLParam(r, "id"))

	user, err := h.Service.User(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, "Failed to load user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// =============================================================================
// WALK HANDLERS
// =============================================================================

// LogWalk creates or replaces the record for a day.
// POST /api/walk
func (h *Handler) LogWalk(w http.ResponseWriter, r *http.Request) {
	var req LogWalkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.UserID == "" || req.Date == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields", errors.New("user_id and date are required"))
		return
	}
	kind := walking.Kind(req.Type)
	duration := 0
	switch {
	case req.Duration != nil:
		duration = *req.Duration
	case kind != walking.KindOff:
		writeError(w, http.StatusBadRequest, "Missing required fields", errors.New("duration is required unless type is OFF"))
		return
	}

	day, err := calendar.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	rec, err := h.Service.LogWalk(r.Context(), walking.LogWalkInput{
		OwnerID:         walking.OwnerID(req.UserID),
		Day:             day,
		DurationMinutes: duration,
		Kind:            kind,
	})
	if err != nil {
		if walking.IsConflict(err) {
			offDayRejectionsTotal.Inc()
		}
		h.writeServiceError(w, r, "Failed to log walk", err)
		return
	}

	walksLoggedTotal.WithLabelValues(kindLabel(rec.Kind)).Inc()
	writeJSON(w, http.StatusCreated, toWalkDTO(rec))
}

// RemoveWalk deletes all records of a day. Removing an empty day succeeds.
// DELETE /api/walk?user_id=&date=
func (h *Handler) RemoveWalk(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID, date := q.Get("user_id"), q.Get("date")
	if userID == "" || date == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters", errors.New("user_id and date are required"))
		return
	}

	day, err := calendar.ParseDay(date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	n, err := h.Service.RemoveWalk(r.Context(), walking.OwnerID(userID), day)
	if err != nil {
		h.writeServiceError(w, r, "Failed to remove walk", err)
		return
	}
	writeJSON(w, http.StatusOK, RemoveWalkResponse{Date: day.String(), Removed: n})
}

// =============================================================================
// STATS HANDLERS
// =============================================================================

// GetMonthlyStats returns the statistics of a calendar month. year and month
// default to the current ones.
// GET /api/stats?user_id=&year=&month=
func (h *Handler) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters", errors.New("user_id is required"))
		return
	}

	today := h.Service.Today()
	year, err := intParam(q.Get("year"), today.Year)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := intParam(q.Get("month"), int(today.Month))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	owner := walking.OwnerID(userID)
	result, err := h.Service.MonthlyStats(r.Context(), owner, year, time.Month(month))
	if err != nil {
		h.writeServiceError(w, r, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(owner, today.String(), result))
}

// GetRangeStats returns the statistics of an arbitrary date range.
// GET /api/stats/range?user_id=&start=&end=
func (h *Handler) GetRangeStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	if userID == "" || q.Get("start") == "" || q.Get("end") == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameters", errors.New("user_id, start and end are required"))
		return
	}

	start, err := calendar.ParseDay(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	end, err := calendar.ParseDay(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date", err)
		return
	}

	owner := walking.OwnerID(userID)
	result, err := h.Service.RangeStats(r.Context(), owner, calendar.Period{Start: start, End: end})
	if err != nil {
		h.writeServiceError(w, r, "Failed to compute stats", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(owner, h.Service.Today().String(), result))
}

// =============================================================================
// HEALTH
// =============================================================================

// Healthz reports liveness, pinging the store when it supports it.
// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps walking errors to a status code. Unexpected errors
// are logged; their details still go to the client.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), message, logging.FieldError, err)
	}
	writeError(w, status, message, err)
}

func statusFor(err error) int {
	switch {
	case walking.IsClientError(err):
		return http.StatusBadRequest
	case walking.IsNotFound(err):
		return http.StatusNotFound
	case walking.IsConflict(err):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return v, nil
}

func kindLabel(k walking.Kind) string {
	if k == walking.KindNone {
		return "NONE"
	}
	return string(k)
}
