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

type shiftSessionRepository struct {
	db *database.DB
}

const sessionColumns = `
	id, caregiver_id, shift_type, scheduled_start, scheduled_end,
	clock_in_at, delay_minutes, extended_until, break_started_at,
	break_total_minutes, created_at, updated_at`

func scanSession(row pgx.Row) (shift.Session, error) {
	var s shift.Session
	err := row.Scan(
		&s.ID, &s.CaregiverID, &s.ShiftType, &s.ScheduledStart, &s.ScheduledEnd,
		&s.ClockInAt, &s.DelayMinutes, &s.ExtendedUntil, &s.BreakStartedAt,
		&s.BreakTotalMinutes, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// Create implements shift.SessionRepository.
func (r *shiftSessionRepository) Create(ctx context.Context, session shift.Session) (shift.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO shift_sessions (
			id, caregiver_id, shift_type, scheduled_start, scheduled_end,
			clock_in_at, delay_minutes, extended_until, break_started_at,
			break_total_minutes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		uuid.NewString(),
		session.CaregiverID,
		session.ShiftType,
		session.ScheduledStart,
		session.ScheduledEnd,
		session.ClockInAt,
		session.DelayMinutes,
		session.ExtendedUntil,
		session.BreakStartedAt,
		session.BreakTotalMinutes,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err != nil {
		return shift.Session{}, fmt.Errorf("failed to create shift session: %v: %w", err, shift.ErrStorageUnavailable)
	}

	return session, nil
}

// GetLatestByCaregiver implements shift.SessionRepository.
func (r *shiftSessionRepository) GetLatestByCaregiver(ctx context.Context, caregiverID string) (*shift.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM shift_sessions
		WHERE caregiver_id = $1
		ORDER BY clock_in_at DESC
		LIMIT 1
	`

	s, err := scanSession(q.QueryRow(ctx, query, caregiverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // No session yet
		}
		return nil, fmt.Errorf("failed to get latest shift session: %v: %w", err, shift.ErrStorageUnavailable)
	}

	return &s, nil
}

// Update implements shift.SessionRepository. Only lifecycle-mutable
// fields are written; scheduled_start/scheduled_end and clock_in_at are
// fixed at creation.
func (r *shiftSessionRepository) Update(ctx context.Context, session shift.Session) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE shift_sessions
		SET extended_until = $1,
		    break_started_at = $2,
		    break_total_minutes = $3,
		    updated_at = $4
		WHERE id = $5
		RETURNING id
	`

	var updatedID string
	err := q.QueryRow(ctx, query,
		session.ExtendedUntil,
		session.BreakStartedAt,
		session.BreakTotalMinutes,
		time.Now().UTC(),
		session.ID,
	).Scan(&updatedID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.ErrSessionNotFound
		}
		return fmt.Errorf("failed to update shift session: %v: %w", err, shift.ErrStorageUnavailable)
	}

	return nil
}

// ListByCaregiver implements shift.SessionRepository.
func (r *shiftSessionRepository) ListByCaregiver(ctx context.Context, caregiverID string, filter shift.SessionFilter) ([]shift.Session, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "caregiver_id = $1"
	args := []interface{}{caregiverID}
	argIdx := 2

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND clock_in_at >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND clock_in_at < ($%d::date + 1)", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM shift_sessions WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count shift sessions: %v: %w", err, shift.ErrStorageUnavailable)
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM shift_sessions
		WHERE %s
		ORDER BY clock_in_at DESC
		LIMIT $%d OFFSET $%d
	`, sessionColumns, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query shift sessions: %v: %w", err, shift.ErrStorageUnavailable)
	}
	defer rows.Close()

	var sessions []shift.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan shift session: %v: %w", err, shift.ErrStorageUnavailable)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read shift sessions: %v: %w", err, shift.ErrStorageUnavailable)
	}

	return sessions, total, nil
}

// GetStaleOpen implements shift.SessionRepository. A session is stale
// when its clock-in is at or before cutoff but it still looks open: a
// break never closed, or an effective end still in the future.
func (r *shiftSessionRepository) GetStaleOpen(ctx context.Context, cutoff time.Time, now time.Time) ([]shift.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM shift_sessions
		WHERE clock_in_at <= $1
		  AND (
			break_started_at IS NOT NULL
			OR COALESCE(extended_until, scheduled_end) > $2
		  )
	`

	rows, err := q.Query(ctx, query, cutoff, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale shift sessions: %v: %w", err, shift.ErrStorageUnavailable)
	}
	defer rows.Close()

	var sessions []shift.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stale shift session: %v: %w", err, shift.ErrStorageUnavailable)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stale shift sessions: %v: %w", err, shift.ErrStorageUnavailable)
	}

	return sessions, nil
}

func NewShiftSessionRepository(db *database.DB) shift.SessionRepository {
	return &shiftSessionRepository{db: db}
}
