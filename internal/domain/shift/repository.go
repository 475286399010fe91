package shift

import (
	"context"
	"time"
)

// AssignmentRepository defines data access for shift assignments.
type AssignmentRepository interface {
	// GetActiveByCaregiver returns the caregiver's active assignment,
	// or nil when none exists.
	GetActiveByCaregiver(ctx context.Context, caregiverID string) (*Assignment, error)

	// Upsert creates the caregiver's assignment or replaces its shift
	// type, keeping at most one active row per caregiver.
	Upsert(ctx context.Context, assignment Assignment) (Assignment, error)
}

// SessionRepository defines data access for shift sessions.
type SessionRepository interface {
	// Create inserts a new session row for a clock-in event.
	Create(ctx context.Context, session Session) (Session, error)

	// GetLatestByCaregiver returns the caregiver's most recent session
	// ordered by clock-in descending, or nil when none exists. Only the
	// latest session is ever mutated; older rows are history.
	GetLatestByCaregiver(ctx context.Context, caregiverID string) (*Session, error)

	// Update persists the mutable fields of an existing session.
	Update(ctx context.Context, session Session) error

	// ListByCaregiver returns the caregiver's sessions with filters and
	// pagination, newest first.
	ListByCaregiver(ctx context.Context, caregiverID string, filter SessionFilter) ([]Session, int64, error)

	// GetStaleOpen returns sessions clocked in at or before cutoff that
	// have not been closed yet (open break, or effective end still in
	// the future as of now). Used by the stale-session sweep.
	GetStaleOpen(ctx context.Context, cutoff time.Time, now time.Time) ([]Session, error)
}
