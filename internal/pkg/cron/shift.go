package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hcmclinic/triage-shift-backend-go/internal/domain/shift"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/database"
	"github.com/hcmclinic/triage-shift-backend-go/internal/repository/postgresql"
	"github.com/jackc/pgx/v5"
)

type ShiftJobs struct {
	sessionRepo shift.SessionRepository
	db          *database.DB
}

func NewShiftJobs(sessionRepo shift.SessionRepository, db *database.DB) *ShiftJobs {
	return &ShiftJobs{
		sessionRepo: sessionRepo,
		db:          db,
	}
}

func (j *ShiftJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("close_stale_shift_sessions", 1*time.Hour, j.CloseStaleSessions)
}

// CloseStaleSessions force-stops sessions that passed the max-age
// ceiling without being stopped (crashed clients, lost devices). The
// active-now predicate already ignores them; this persists the closure
// so history reads clean. The sweep runs in one transaction so a
// failure leaves everything for the next run.
func (j *ShiftJobs) CloseStaleSessions(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-shift.MaxSessionAge)

	closedCount := 0
	err := postgresql.WithTransaction(ctx, j.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		staleSessions, err := j.sessionRepo.GetStaleOpen(txCtx, cutoff, now)
		if err != nil {
			return fmt.Errorf("failed to get stale sessions: %w", err)
		}

		for _, session := range staleSessions {
			closeAt := session.ClockInAt.Add(shift.MaxSessionAge)
			session.ExtendedUntil = &closeAt
			session.BreakStartedAt = nil

			if err := j.sessionRepo.Update(txCtx, session); err != nil {
				return fmt.Errorf("failed to close stale session %s: %w", session.ID, err)
			}
			closedCount++
		}

		return nil
	})
	if err != nil {
		return err
	}

	if closedCount > 0 {
		slog.Info("Cron: closed stale shift sessions", "closed", closedCount)
	}
	return nil
}
