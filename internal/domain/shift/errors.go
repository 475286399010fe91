package shift

import "errors"

// Shift domain errors
var (
	// Lifecycle errors
	ErrNoAssignment    = errors.New("caregiver has no shift assignment")
	ErrNoActiveSession = errors.New("no active shift session")
	ErrOnBreak         = errors.New("shift session is on break")
	ErrNotOnBreak      = errors.New("shift session is not on break")

	// General errors
	ErrAssignmentNotFound = errors.New("shift assignment not found")
	ErrSessionNotFound    = errors.New("shift session not found")

	// StorageUnavailable is the only transient error in the taxonomy.
	// The caller may retry at the request layer; the state machine never
	// retries on its own.
	ErrStorageUnavailable = errors.New("shift storage unavailable")
)
