package shift

import (
	"strings"
	"time"

	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/validator"
)

// ========================================
// SHIFT LIFECYCLE DTOs
// ========================================

const (
	// Extension request bounds. Out-of-range values are clamped to the
	// bounds; an absent value falls back to DefaultExtendMinutes.
	MinExtendMinutes     = 15
	MaxExtendMinutes     = 240
	DefaultExtendMinutes = 60
)

type ExtendShiftRequest struct {
	Minutes *int `json:"minutes,omitempty"`
}

// ResolveMinutes clamps the requested extension to
// [MinExtendMinutes, MaxExtendMinutes], defaulting when absent.
func (r *ExtendShiftRequest) ResolveMinutes() int {
	if r == nil || r.Minutes == nil {
		return DefaultExtendMinutes
	}
	m := *r.Minutes
	if m < MinExtendMinutes {
		return MinExtendMinutes
	}
	if m > MaxExtendMinutes {
		return MaxExtendMinutes
	}
	return m
}

type AssignShiftRequest struct {
	CaregiverID string `json:"caregiver_id"`
	ShiftType   string `json:"shift_type"`
}

func (r *AssignShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CaregiverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "caregiver_id",
			Message: "caregiver_id is required",
		})
	} else if !validator.IsValidUUID(r.CaregiverID) {
		errs = append(errs, validator.ValidationError{
			Field:   "caregiver_id",
			Message: "caregiver_id must be a valid UUID",
		})
	}

	if _, ok := ParseShiftType(strings.ToUpper(r.ShiftType)); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_type",
			Message: "shift_type must be one of: MORNING, AFTERNOON, NIGHT",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *SessionFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSES
// ========================================

// StatusResponse is the externally visible duty status for one
// caregiver. All timestamps are RFC3339 in UTC.
type StatusResponse struct {
	Assigned          bool    `json:"assigned"`
	ShiftType         *string `json:"shift_type,omitempty"`
	ScheduledStart    *string `json:"scheduled_start,omitempty"`
	ScheduledEnd      *string `json:"scheduled_end,omitempty"`
	EffectiveEnd      *string `json:"effective_end,omitempty"`
	ClockInAt         *string `json:"clock_in_at,omitempty"`
	DelayMinutes      *int    `json:"delay_minutes,omitempty"`
	BreakTotalMinutes *int    `json:"break_total_minutes,omitempty"`
	IsOnShift         bool    `json:"is_on_shift"`
	IsOnBreak         bool    `json:"is_on_break"`
	CanExtend         bool    `json:"can_extend"`
	CanBreak          bool    `json:"can_break"`
	CanResume         bool    `json:"can_resume"`
	CanStop           bool    `json:"can_stop"`
}

type StartShiftResponse struct {
	DelayMinutes int            `json:"delay_minutes"`
	Status       StatusResponse `json:"status"`
}

type AssignmentResponse struct {
	CaregiverID string `json:"caregiver_id"`
	ShiftType   string `json:"shift_type"`
	Active      bool   `json:"active"`
	UpdatedAt   string `json:"updated_at"`
}

type SessionResponse struct {
	ID                string  `json:"id"`
	CaregiverID       string  `json:"caregiver_id"`
	ShiftType         string  `json:"shift_type"`
	ScheduledStart    string  `json:"scheduled_start"`
	ScheduledEnd      string  `json:"scheduled_end"`
	ClockInAt         string  `json:"clock_in_at"`
	DelayMinutes      int     `json:"delay_minutes"`
	ExtendedUntil     *string `json:"extended_until,omitempty"`
	BreakStartedAt    *string `json:"break_started_at,omitempty"`
	BreakTotalMinutes int     `json:"break_total_minutes"`
	CreatedAt         string  `json:"created_at"`
}

type ListSessionsResponse struct {
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
	Sessions   []SessionResponse `json:"sessions"`
}

// formatUTC renders a timestamp in the single unambiguous wire format.
func formatUTC(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatUTCPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatUTC(*t)
	return &s
}

// MapSessionToResponse converts a Session entity to its wire shape.
func MapSessionToResponse(s Session) SessionResponse {
	return SessionResponse{
		ID:                s.ID,
		CaregiverID:       s.CaregiverID,
		ShiftType:         string(s.ShiftType),
		ScheduledStart:    formatUTC(s.ScheduledStart),
		ScheduledEnd:      formatUTC(s.ScheduledEnd),
		ClockInAt:         formatUTC(s.ClockInAt),
		DelayMinutes:      s.DelayMinutes,
		ExtendedUntil:     formatUTCPtr(s.ExtendedUntil),
		BreakStartedAt:    formatUTCPtr(s.BreakStartedAt),
		BreakTotalMinutes: s.BreakTotalMinutes,
		CreatedAt:         formatUTC(s.CreatedAt),
	}
}
