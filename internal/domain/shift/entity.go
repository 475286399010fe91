package shift

import (
	"time"
)

// ShiftType is the fixed shift a caregiver is assigned to.
type ShiftType string

const (
	ShiftMorning   ShiftType = "MORNING"
	ShiftAfternoon ShiftType = "AFTERNOON"
	ShiftNight     ShiftType = "NIGHT"
)

// ParseShiftType returns the shift type for s, or false if unrecognized.
func ParseShiftType(s string) (ShiftType, bool) {
	switch ShiftType(s) {
	case ShiftMorning, ShiftAfternoon, ShiftNight:
		return ShiftType(s), true
	}
	return "", false
}

// MaxSessionAge is the hard ceiling on how long a session stays
// active after clock-in, regardless of extensions. Guards against
// sessions left open by crashed clients.
const MaxSessionAge = 18 * time.Hour

// Assignment maps a caregiver to their fixed shift type.
// At most one active assignment exists per caregiver.
type Assignment struct {
	ID          string
	CaregiverID string
	ShiftType   ShiftType
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session is one clock-in record. ScheduledStart/ScheduledEnd are
// captured at creation and never recomputed, so window definition
// changes cannot retroactively alter an open session.
type Session struct {
	ID                string
	CaregiverID       string
	ShiftType         ShiftType
	ScheduledStart    time.Time
	ScheduledEnd      time.Time
	ClockInAt         time.Time
	DelayMinutes      int
	ExtendedUntil     *time.Time
	BreakStartedAt    *time.Time
	BreakTotalMinutes int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EffectiveEnd is the session's current end: ExtendedUntil when set
// (extensions and break refunds both move it), else ScheduledEnd.
func (s *Session) EffectiveEnd() time.Time {
	if s.ExtendedUntil != nil {
		return *s.ExtendedUntil
	}
	return s.ScheduledEnd
}

// OnBreak reports whether a break is currently open.
func (s *Session) OnBreak() bool {
	return s.BreakStartedAt != nil
}

// IsActiveAt is the single active-now predicate every endpoint shares:
// clocked in, now within [clock-in, effective end], and not past the
// MaxSessionAge ceiling. Stored break state does not matter here.
func (s *Session) IsActiveAt(now time.Time) bool {
	if s == nil || s.ClockInAt.IsZero() {
		return false
	}
	if now.Before(s.ClockInAt) {
		return false
	}
	if now.After(s.EffectiveEnd()) {
		return false
	}
	return now.Sub(s.ClockInAt) <= MaxSessionAge
}
