package shift

import (
	"context"
)

// Service defines the shift lifecycle operations. Every mutation
// returns a freshly projected status so the caller never renders stale
// state.
type Service interface {
	// GetStatus returns the caregiver's current duty status.
	GetStatus(ctx context.Context, caregiverID string) (StatusResponse, error)

	// StartShift clocks the caregiver in. A no-op returning current
	// status when an active session already exists. Fails with
	// ErrNoAssignment when the caregiver has no shift assignment and
	// the seed rule does not apply.
	StartShift(ctx context.Context, caregiverID string) (StartShiftResponse, error)

	// ExtendShift pushes the effective end forward by the clamped
	// minutes. Fails with ErrNoActiveSession or ErrOnBreak.
	ExtendShift(ctx context.Context, caregiverID string, req ExtendShiftRequest) (StatusResponse, error)

	// StopShift closes the session now, discarding any open break.
	// Fails with ErrNoActiveSession.
	StopShift(ctx context.Context, caregiverID string) (StatusResponse, error)

	// StartBreak opens a break. Fails with ErrNoActiveSession or
	// ErrOnBreak when one is already open.
	StartBreak(ctx context.Context, caregiverID string) (StatusResponse, error)

	// ResumeBreak closes the open break, refunding its duration onto
	// the effective end. Fails with ErrNoActiveSession or ErrNotOnBreak.
	ResumeBreak(ctx context.Context, caregiverID string) (StatusResponse, error)

	// AssignShift upserts a caregiver's shift assignment (admin).
	AssignShift(ctx context.Context, req AssignShiftRequest) (AssignmentResponse, error)

	// GetAssignment returns the caregiver's active assignment.
	GetAssignment(ctx context.Context, caregiverID string) (AssignmentResponse, error)

	// ListMySessions returns the caregiver's session history.
	ListMySessions(ctx context.Context, caregiverID string, filter SessionFilter) (ListSessionsResponse, error)
}
