package shift

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hcmclinic/triage-shift-backend-go/internal/config"
	"github.com/hcmclinic/triage-shift-backend-go/internal/domain/shift"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory repositories so lifecycle rules can be exercised without a
// database. Persistence behavior itself is covered by the postgresql
// integration tests.

type fakeAssignmentRepo struct {
	assignments map[string]shift.Assignment
	upsertCalls int
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[string]shift.Assignment)}
}

func (r *fakeAssignmentRepo) GetActiveByCaregiver(_ context.Context, caregiverID string) (*shift.Assignment, error) {
	a, ok := r.assignments[caregiverID]
	if !ok || !a.Active {
		return nil, nil
	}
	return &a, nil
}

func (r *fakeAssignmentRepo) Upsert(_ context.Context, assignment shift.Assignment) (shift.Assignment, error) {
	r.upsertCalls++
	if assignment.ID == "" {
		assignment.ID = fmt.Sprintf("assignment-%d", r.upsertCalls)
	}
	assignment.UpdatedAt = time.Now().UTC()
	r.assignments[assignment.CaregiverID] = assignment
	return assignment, nil
}

type fakeSessionRepo struct {
	sessions    []shift.Session
	createCalls int
	updateCalls int
}

func (r *fakeSessionRepo) Create(_ context.Context, session shift.Session) (shift.Session, error) {
	r.createCalls++
	session.ID = fmt.Sprintf("session-%d", r.createCalls)
	session.CreatedAt = time.Now().UTC()
	r.sessions = append(r.sessions, session)
	return session, nil
}

func (r *fakeSessionRepo) GetLatestByCaregiver(_ context.Context, caregiverID string) (*shift.Session, error) {
	var latest *shift.Session
	for i := range r.sessions {
		s := r.sessions[i]
		if s.CaregiverID != caregiverID {
			continue
		}
		if latest == nil || s.ClockInAt.After(latest.ClockInAt) {
			latest = &r.sessions[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeSessionRepo) Update(_ context.Context, session shift.Session) error {
	r.updateCalls++
	for i := range r.sessions {
		if r.sessions[i].ID == session.ID {
			r.sessions[i] = session
			return nil
		}
	}
	return shift.ErrSessionNotFound
}

func (r *fakeSessionRepo) ListByCaregiver(_ context.Context, caregiverID string, filter shift.SessionFilter) ([]shift.Session, int64, error) {
	var all []shift.Session
	for _, s := range r.sessions {
		if s.CaregiverID == caregiverID {
			all = append(all, s)
		}
	}
	total := int64(len(all))
	offset := (filter.Page - 1) * filter.Limit
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeSessionRepo) GetStaleOpen(_ context.Context, cutoff time.Time, now time.Time) ([]shift.Session, error) {
	var stale []shift.Session
	for _, s := range r.sessions {
		if s.ClockInAt.After(cutoff) {
			continue
		}
		if s.BreakStartedAt != nil || s.EffectiveEnd().After(now) {
			stale = append(stale, s)
		}
	}
	return stale, nil
}

const testCaregiverID = "b2c9f3a0-1111-4222-8333-444455556666"

func newTestService(assignmentRepo *fakeAssignmentRepo, sessionRepo *fakeSessionRepo, seed config.SeedConfig) shift.Service {
	return NewShiftService(assignmentRepo, sessionRepo, sse.NewHub(), seed)
}

// seedActiveSession inserts a session that is active right now.
func seedActiveSession(repo *fakeSessionRepo, caregiverID string) shift.Session {
	now := time.Now().UTC()
	session := shift.Session{
		ID:             "session-active",
		CaregiverID:    caregiverID,
		ShiftType:      shift.ShiftMorning,
		ScheduledStart: now.Add(-2 * time.Hour),
		ScheduledEnd:   now.Add(3 * time.Hour),
		ClockInAt:      now.Add(-2 * time.Hour),
	}
	repo.sessions = append(repo.sessions, session)
	return session
}

func TestStartShift_NoAssignment(t *testing.T) {
	svc := newTestService(newFakeAssignmentRepo(), &fakeSessionRepo{}, config.SeedConfig{})

	_, err := svc.StartShift(context.Background(), testCaregiverID)
	assert.ErrorIs(t, err, shift.ErrNoAssignment)
}

func TestStartShift_SeedRule(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	seed := config.SeedConfig{CaregiverID: testCaregiverID, ShiftType: "NIGHT"}
	svc := newTestService(assignmentRepo, sessionRepo, seed)

	resp, err := svc.StartShift(context.Background(), testCaregiverID)
	require.NoError(t, err)

	seeded, ok := assignmentRepo.assignments[testCaregiverID]
	require.True(t, ok, "seed rule should create the assignment")
	assert.Equal(t, shift.ShiftNight, seeded.ShiftType)
	assert.True(t, seeded.Active)
	assert.Equal(t, 1, sessionRepo.createCalls)
	assert.True(t, resp.Status.Assigned)

	// The seed applies only to the configured caregiver.
	_, err = svc.StartShift(context.Background(), "someone-else")
	assert.ErrorIs(t, err, shift.ErrNoAssignment)
}

func TestStartShift_CapturesWindow(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	assignmentRepo.assignments[testCaregiverID] = shift.Assignment{
		ID: "assignment-1", CaregiverID: testCaregiverID, ShiftType: shift.ShiftMorning, Active: true,
	}
	svc := newTestService(assignmentRepo, sessionRepo, config.SeedConfig{})

	resp, err := svc.StartShift(context.Background(), testCaregiverID)
	require.NoError(t, err)

	require.Equal(t, 1, sessionRepo.createCalls)
	created := sessionRepo.sessions[0]
	window := shift.ComputeWindow(shift.ShiftMorning, created.ClockInAt)
	assert.Equal(t, window.Start, created.ScheduledStart)
	assert.Equal(t, window.End, created.ScheduledEnd)
	assert.GreaterOrEqual(t, resp.DelayMinutes, 0)
	if created.ClockInAt.After(window.Start) {
		expected := int(created.ClockInAt.Sub(window.Start) / time.Minute)
		assert.Equal(t, expected, resp.DelayMinutes)
	} else {
		assert.Zero(t, resp.DelayMinutes)
	}
}

func TestStartShift_NoOpWhenActive(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	assignmentRepo.assignments[testCaregiverID] = shift.Assignment{
		ID: "assignment-1", CaregiverID: testCaregiverID, ShiftType: shift.ShiftMorning, Active: true,
	}
	seedActiveSession(sessionRepo, testCaregiverID)
	svc := newTestService(assignmentRepo, sessionRepo, config.SeedConfig{})

	resp, err := svc.StartShift(context.Background(), testCaregiverID)
	require.NoError(t, err)

	assert.Zero(t, sessionRepo.createCalls, "no second session while one is active")
	assert.True(t, resp.Status.IsOnShift)
}

func TestExtendShift_Compounds(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	assignmentRepo.assignments[testCaregiverID] = shift.Assignment{
		ID: "assignment-1", CaregiverID: testCaregiverID, ShiftType: shift.ShiftMorning, Active: true,
	}
	seeded := seedActiveSession(sessionRepo, testCaregiverID)
	svc := newTestService(assignmentRepo, sessionRepo, config.SeedConfig{})
	ctx := context.Background()

	_, err := svc.ExtendShift(ctx, testCaregiverID, shift.ExtendShiftRequest{})
	require.NoError(t, err)

	thirty := 30
	_, err = svc.ExtendShift(ctx, testCaregiverID, shift.ExtendShiftRequest{Minutes: &thirty})
	require.NoError(t, err)

	latest, err := sessionRepo.GetLatestByCaregiver(ctx, testCaregiverID)
	require.NoError(t, err)
	require.NotNil(t, latest.ExtendedUntil)
	assert.Equal(t, seeded.ScheduledEnd.Add(90*time.Minute), *latest.ExtendedUntil)
}

func TestExtendShift_ClampsOutOfRangeMinutes(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	assignmentRepo.assignments[testCaregiverID] = shift.Assignment{
		ID: "assignment-1", CaregiverID: testCaregiverID, ShiftType: shift.ShiftMorning, Active: true,
	}
	seeded := seedActiveSession(sessionRepo, testCaregiverID)
	svc := newTestService(assignmentRepo, sessionRepo, config.SeedConfig{})
	ctx := context.Background()

	threeHundred := 300
	_, err := svc.ExtendShift(ctx, testCaregiverID, shift.ExtendShiftRequest{Minutes: &threeHundred})
	require.NoError(t, err)

	latest, err := sessionRepo.GetLatestByCaregiver(ctx, testCaregiverID)
	require.NoError(t, err)
	require.NotNil(t, latest.ExtendedUntil)
	assert.Equal(t, seeded.ScheduledEnd.Add(shift.MaxExtendMinutes*time.Minute), *latest.ExtendedUntil)

	ten := 10
	_, err = svc.ExtendShift(ctx, testCaregiverID, shift.ExtendShiftRequest{Minutes: &ten})
	require.NoError(t, err)

	latest, err = sessionRepo.GetLatestByCaregiver(ctx, testCaregiverID)
	require.NoError(t, err)
	assert.Equal(t,
		seeded.ScheduledEnd.Add((shift.MaxExtendMinutes+shift.MinExtendMinutes)*time.Minute),
		*latest.ExtendedUntil)
}

func TestExtendShift_RequiresActiveSession(t *testing.T) {
	svc := newTestService(newFakeAssignmentRepo(), &fakeSessionRepo{}, config.SeedConfig{})

	_, err := svc.ExtendShift(context.Background(), testCaregiverID, shift.ExtendShiftRequest{})
	assert.ErrorIs(t, err, shift.ErrNoActiveSession)
}

func TestExtendShift_RejectedOnBreak(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	assignmentRepo.assignments[testCaregiverID] = shift.Assignment{
		ID: "assignment-1", CaregiverID: testCaregiverID, ShiftType: shift.ShiftMorning, Active: true,
	}
	seedActiveSession(sessionRepo, testCaregiverID)
	breakStart := time.Now().UTC()
	sessionRepo.sessions[0].BreakStartedAt = &breakStart
	svc := newTestService(assignmentRepo, sessionRepo, config.SeedConfig{})

	_, err := svc.ExtendShift(context.Background(), testCaregiverID, shift.ExtendShiftRequest{})
	assert.ErrorIs(t, err, shift.ErrOnBreak)
}

func TestBreakRoundTrip_RefundsTime(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	assignmentRepo.assignments[testCaregiverID] = shift.Assignment{
		ID: "assignment-1", CaregiverID: testCaregiverID, ShiftType: shift.ShiftMorning, Active: true,
	}
	seeded := seedActiveSession(sessionRepo, testCaregiverID)
	svc := newTestService(assignmentRepo, sessionRepo, config.SeedConfig{})
	ctx := context.Background()

	status, err := svc.StartBreak(ctx, testCaregiverID)
	require.NoError(t, err)
	assert.True(t, status.IsOnBreak)
	assert.False(t, status.IsOnShift)
	assert.False(t, status.CanExtend)
	assert.True(t, status.CanResume)

	// Backdate the break start so the refund is observable.
	breakStart := time.Now().UTC().Add(-25 * time.Minute)
	sessionRepo.sessions[0].BreakStartedAt = &breakStart

	status, err = svc.ResumeBreak(ctx, testCaregiverID)
	require.NoError(t, err)
	assert.False(t, status.IsOnBreak)
	assert.True(t, status.IsOnShift)

	latest, err := sessionRepo.GetLatestByCaregiver(ctx, testCaregiverID)
	require.NoError(t, err)
	assert.Nil(t, latest.BreakStartedAt)
	assert.Equal(t, 25, latest.BreakTotalMinutes)
	require.NotNil(t, latest.ExtendedUntil)
	// Refund lands on the effective end, within scheduling jitter of the
	// wall clock read inside the call.
	refunded := latest.ExtendedUntil.Sub(seeded.ScheduledEnd)
	assert.InDelta(t, (25 * time.Minute).Seconds(), refunded.Seconds(), 5)
}

func TestResumeBreak_CountsWholeMinutesOnly(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	assignmentRepo.assignments[testCaregiverID] = shift.Assignment{
		ID: "assignment-1", CaregiverID: testCaregiverID, ShiftType: shift.ShiftMorning, Active: true,
	}
	seedActiveSession(sessionRepo, testCaregiverID)
	breakStart := time.Now().UTC().Add(-(10*time.Minute + 45*time.Second))
	sessionRepo.sessions[0].BreakStartedAt = &breakStart
	svc := newTestService(assignmentRepo, sessionRepo, config.SeedConfig{})

	_, err := svc.ResumeBreak(context.Background(), testCaregiverID)
	require.NoError(t, err)

	latest, _ := sessionRepo.GetLatestByCaregiver(context.Background(), testCaregiverID)
	assert.Equal(t, 10, latest.BreakTotalMinutes, "partial minute is dropped")
}

func TestResumeBreak_NotOnBreak(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	assignmentRepo.assignments[testCaregiverID] = shift.Assignment{
		ID: "assignment-1", CaregiverID: testCaregiverID, ShiftType: shift.ShiftMorning, Active: true,
	}
	seedActiveSession(sessionRepo, testCaregiverID)
	svc := newTestService(assignmentRepo, sessionRepo, config.SeedConfig{})

	_, err := svc.ResumeBreak(context.Background(), testCaregiverID)
	assert.ErrorIs(t, err, shift.ErrNotOnBreak)
	assert.Zero(t, sessionRepo.updateCalls, "failed resume must not mutate the session")
}

func TestStartBreak_AlreadyOnBreak(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	assignmentRepo.assignments[testCaregiverID] = shift.Assignment{
		ID: "assignment-1", CaregiverID: testCaregiverID, ShiftType: shift.ShiftMorning, Active: true,
	}
	seedActiveSession(sessionRepo, testCaregiverID)
	breakStart := time.Now().UTC()
	sessionRepo.sessions[0].BreakStartedAt = &breakStart
	svc := newTestService(assignmentRepo, sessionRepo, config.SeedConfig{})

	_, err := svc.StartBreak(context.Background(), testCaregiverID)
	assert.ErrorIs(t, err, shift.ErrOnBreak)
}

func TestStopShift_ClosesAndDiscardsBreak(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	sessionRepo := &fakeSessionRepo{}
	assignmentRepo.assignments[testCaregiverID] = shift.Assignment{
		ID: "assignment-1", CaregiverID: testCaregiverID, ShiftType: shift.ShiftMorning, Active: true,
	}
	seedActiveSession(sessionRepo, testCaregiverID)
	breakStart := time.Now().UTC().Add(-10 * time.Minute)
	sessionRepo.sessions[0].BreakStartedAt = &breakStart
	svc := newTestService(assignmentRepo, sessionRepo, config.SeedConfig{})

	status, err := svc.StopShift(context.Background(), testCaregiverID)
	require.NoError(t, err)
	assert.False(t, status.IsOnBreak)

	// The effective end is inclusive, so inactivity shows up on the next
	// status read rather than in the stop response itself.
	status, err = svc.GetStatus(context.Background(), testCaregiverID)
	require.NoError(t, err)
	assert.False(t, status.IsOnShift)
	assert.False(t, status.IsOnBreak)
	assert.False(t, status.CanStop)

	latest, _ := sessionRepo.GetLatestByCaregiver(context.Background(), testCaregiverID)
	assert.Nil(t, latest.BreakStartedAt, "open break is discarded on stop")
	assert.Zero(t, latest.BreakTotalMinutes, "discarded break is not accounted")
	require.NotNil(t, latest.ExtendedUntil)
	assert.WithinDuration(t, time.Now().UTC(), *latest.ExtendedUntil, 5*time.Second)
}

func TestStopShift_NoActiveSession(t *testing.T) {
	svc := newTestService(newFakeAssignmentRepo(), &fakeSessionRepo{}, config.SeedConfig{})

	_, err := svc.StopShift(context.Background(), testCaregiverID)
	assert.ErrorIs(t, err, shift.ErrNoActiveSession)
}

func TestGetStatus_Unassigned(t *testing.T) {
	svc := newTestService(newFakeAssignmentRepo(), &fakeSessionRepo{}, config.SeedConfig{})

	status, err := svc.GetStatus(context.Background(), testCaregiverID)
	require.NoError(t, err)
	assert.False(t, status.Assigned)
}

func TestAssignShift(t *testing.T) {
	assignmentRepo := newFakeAssignmentRepo()
	svc := newTestService(assignmentRepo, &fakeSessionRepo{}, config.SeedConfig{})

	resp, err := svc.AssignShift(context.Background(), shift.AssignShiftRequest{
		CaregiverID: testCaregiverID,
		ShiftType:   "afternoon",
	})
	require.NoError(t, err)
	assert.Equal(t, "AFTERNOON", resp.ShiftType)
	assert.True(t, resp.Active)

	_, err = svc.AssignShift(context.Background(), shift.AssignShiftRequest{
		CaregiverID: testCaregiverID,
		ShiftType:   "EVENING",
	})
	assert.Error(t, err)
}

func TestGetAssignment_NotFound(t *testing.T) {
	svc := newTestService(newFakeAssignmentRepo(), &fakeSessionRepo{}, config.SeedConfig{})

	_, err := svc.GetAssignment(context.Background(), testCaregiverID)
	assert.ErrorIs(t, err, shift.ErrAssignmentNotFound)
}

func TestListMySessions_Pagination(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	base := time.Now().UTC().Add(-72 * time.Hour)
	for i := 0; i < 5; i++ {
		sessionRepo.sessions = append(sessionRepo.sessions, shift.Session{
			ID:             fmt.Sprintf("session-%d", i),
			CaregiverID:    testCaregiverID,
			ShiftType:      shift.ShiftMorning,
			ScheduledStart: base.Add(time.Duration(i) * 24 * time.Hour),
			ScheduledEnd:   base.Add(time.Duration(i)*24*time.Hour + 5*time.Hour),
			ClockInAt:      base.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	svc := newTestService(newFakeAssignmentRepo(), sessionRepo, config.SeedConfig{})

	resp, err := svc.ListMySessions(context.Background(), testCaregiverID, shift.SessionFilter{Page: 2, Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(5), resp.TotalCount)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Sessions, 2)
}
