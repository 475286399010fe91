package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hcmclinic/triage-shift-backend-go/internal/domain/shift"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftAssignmentRepository struct {
	db *database.DB
}

// GetActiveByCaregiver implements shift.AssignmentRepository.
func (r *shiftAssignmentRepository) GetActiveByCaregiver(ctx context.Context, caregiverID string) (*shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, caregiver_id, shift_type, active, created_at, updated_at
		FROM shift_assignments
		WHERE caregiver_id = $1
		  AND active
		LIMIT 1
	`

	var a shift.Assignment
	err := q.QueryRow(ctx, query, caregiverID).Scan(
		&a.ID, &a.CaregiverID, &a.ShiftType, &a.Active, &a.CreatedAt, &a.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No active assignment
		}
		return nil, fmt.Errorf("failed to get active assignment: %v: %w", err, shift.ErrStorageUnavailable)
	}

	return &a, nil
}

// Upsert implements shift.AssignmentRepository. The partial unique
// index on (caregiver_id) WHERE active makes the ON CONFLICT update
// replace the shift type in place, so a caregiver never ends up with
// two active rows.
func (r *shiftAssignmentRepository) Upsert(ctx context.Context, assignment shift.Assignment) (shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shift_assignments (id, caregiver_id, shift_type, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (caregiver_id) WHERE active
		DO UPDATE SET shift_type = EXCLUDED.shift_type, updated_at = $4
		RETURNING id, caregiver_id, shift_type, active, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		uuid.NewString(),
		assignment.CaregiverID,
		assignment.ShiftType,
		time.Now().UTC(),
	).Scan(
		&assignment.ID, &assignment.CaregiverID, &assignment.ShiftType,
		&assignment.Active, &assignment.CreatedAt, &assignment.UpdatedAt,
	)

	if err != nil {
		return shift.Assignment{}, fmt.Errorf("failed to upsert assignment: %v: %w", err, shift.ErrStorageUnavailable)
	}

	return assignment, nil
}

func NewShiftAssignmentRepository(db *database.DB) shift.AssignmentRepository {
	return &shiftAssignmentRepository{db: db}
}
