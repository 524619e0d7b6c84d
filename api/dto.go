/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the walking package's result types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Wrappers

TYPES:
  User:      UserDTO
  Walks:     LogWalkRequest, WalkDTO, RemoveWalkResponse
  Stats:     StatsDTO, WeekStatsDTO, DayStatsDTO
  Scenarios: ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in handlers and the walking service, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/walk-ledger/walking"
)

// =============================================================================
// USER
// =============================================================================

// UserDTO represents the record owner. Balance is a decimal string.
type UserDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserDTO(u *walking.User) UserDTO {
	return UserDTO{
		ID:        string(u.ID),
		Name:      u.Name,
		Balance:   u.Balance.StringFixed(2),
		CreatedAt: u.CreatedAt,
	}
}

// =============================================================================
// WALKS
// =============================================================================

// LogWalkRequest is the body of POST /api/walk. Duration is a pointer so a
// missing field can be told apart from zero minutes.
type LogWalkRequest struct {
	UserID   string `json:"user_id"`
	Date     string `json:"date"`
	Duration *int   `json:"duration"`
	Type     string `json:"type,omitempty"`
}

type WalkDTO struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Duration  int       `json:"duration"`
	Type      string    `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toWalkDTO(rec walking.Record) WalkDTO {
	return WalkDTO{
		ID:        string(rec.ID),
		UserID:    string(rec.OwnerID),
		Date:      rec.Day.String(),
		Duration:  rec.DurationMinutes,
		Type:      string(rec.Kind),
		CreatedAt: rec.CreatedAt,
	}
}

type RemoveWalkResponse struct {
	Date    string `json:"date"`
	Removed int    `json:"removed"`
}

// =============================================================================
// STATS
// =============================================================================

type DayStatsDTO struct {
	Date     string `json:"date"`
	Walked   bool   `json:"walked"`
	Duration int    `json:"duration"`
	Earnings int    `json:"earnings"`
	Type     string `json:"type"`
	InRange  bool   `json:"in_range"`
}

type WeekStatsDTO struct {
	Start          string        `json:"start"`
	End            string        `json:"end"`
	Days           []DayStatsDTO `json:"days"`
	Earnings       int           `json:"earnings"`
	OffDaysUsed    int           `json:"off_days_used"`
	SuperWalkUsed  bool          `json:"super_walk_used"`
	OffCapExceeded bool          `json:"off_cap_exceeded"`
}

// StatsDTO is the response of the stats endpoints.
type StatsDTO struct {
	UserID        string         `json:"user_id"`
	Start         string         `json:"start"`
	End           string         `json:"end"`
	Today         string         `json:"today"`
	TotalEarnings int            `json:"total_earnings"`
	Weeks         []WeekStatsDTO `json:"weeks"`
}

func toStatsDTO(owner walking.OwnerID, today string, m walking.MonthResult) StatsDTO {
	out := StatsDTO{
		UserID:        string(owner),
		Start:         m.Start.String(),
		End:           m.End.String(),
		Today:         today,
		TotalEarnings: m.TotalEarnings,
		Weeks:         make([]WeekStatsDTO, 0, len(m.Weeks)),
	}

	for _, w := range m.Weeks {
		week := WeekStatsDTO{
			Start:          w.Start.String(),
			End:            w.End().String(),
			Days:           make([]DayStatsDTO, 0, len(w.Days)),
			Earnings:       w.WeekEarnings,
			OffDaysUsed:    w.OffDaysUsed,
			SuperWalkUsed:  w.SuperUsed,
			OffCapExceeded: w.OffCapExceeded,
		}
		for _, d := range w.Days {
			week.Days = append(week.Days, DayStatsDTO{
				Date:     d.Day.String(),
				Walked:   d.HasQualifyingActivity,
				Duration: d.DurationMinutes,
				Earnings: d.EarningsDelta,
				Type:     string(d.Category),
				InRange:  m.InRange(d.Day),
			})
		}
		out.Weeks = append(out.Weeks, week)
	}
	return out
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
