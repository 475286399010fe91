package shift

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hcmclinic/triage-shift-backend-go/internal/config"
	"github.com/hcmclinic/triage-shift-backend-go/internal/domain/shift"
	"github.com/hcmclinic/triage-shift-backend-go/internal/pkg/sse"
)

// ShiftServiceImpl needs no transaction handle: every lifecycle
// operation is a single-row write serialized by the per-caregiver lock.
// The transactional stale-session sweep lives in pkg/cron.
type ShiftServiceImpl struct {
	shift.AssignmentRepository
	shift.SessionRepository
	hub    *sse.Hub
	seed   config.SeedConfig
	locker *caregiverLocker
}

func NewShiftService(
	assignmentRepo shift.AssignmentRepository,
	sessionRepo shift.SessionRepository,
	hub *sse.Hub,
	seed config.SeedConfig,
) shift.Service {
	return &ShiftServiceImpl{
		AssignmentRepository: assignmentRepo,
		SessionRepository:    sessionRepo,
		hub:                  hub,
		seed:                 seed,
		locker:               newCaregiverLocker(),
	}
}

// GetStatus implements shift.Service.
func (s *ShiftServiceImpl) GetStatus(ctx context.Context, caregiverID string) (shift.StatusResponse, error) {
	now := time.Now().UTC()

	assignment, err := s.AssignmentRepository.GetActiveByCaregiver(ctx, caregiverID)
	if err != nil {
		return shift.StatusResponse{}, err
	}

	latest, err := s.SessionRepository.GetLatestByCaregiver(ctx, caregiverID)
	if err != nil {
		return shift.StatusResponse{}, err
	}

	return shift.ProjectStatus(assignment, latest, now), nil
}

// StartShift implements shift.Service. When an active session already
// exists this is a no-op that still returns current status.
func (s *ShiftServiceImpl) StartShift(ctx context.Context, caregiverID string) (shift.StartShiftResponse, error) {
	unlock := s.locker.Lock(caregiverID)
	defer unlock()

	// One "now" per operation so clock_in_at and delay_minutes cannot skew.
	now := time.Now().UTC()

	assignment, err := s.resolveAssignment(ctx, caregiverID)
	if err != nil {
		return shift.StartShiftResponse{}, err
	}

	latest, err := s.SessionRepository.GetLatestByCaregiver(ctx, caregiverID)
	if err != nil {
		return shift.StartShiftResponse{}, err
	}

	if latest.IsActiveAt(now) {
		status := shift.ProjectStatus(assignment, latest, now)
		return shift.StartShiftResponse{DelayMinutes: latest.DelayMinutes, Status: status}, nil
	}

	window := shift.ComputeWindow(assignment.ShiftType, now)
	if window == nil {
		return shift.StartShiftResponse{}, fmt.Errorf("assignment has unknown shift type %q", assignment.ShiftType)
	}

	delayMinutes := 0
	if now.After(window.Start) {
		delayMinutes = int(math.Floor(now.Sub(window.Start).Seconds() / 60))
	}

	session, err := s.SessionRepository.Create(ctx, shift.Session{
		CaregiverID:    caregiverID,
		ShiftType:      assignment.ShiftType,
		ScheduledStart: window.Start,
		ScheduledEnd:   window.End,
		ClockInAt:      now,
		DelayMinutes:   delayMinutes,
	})
	if err != nil {
		return shift.StartShiftResponse{}, err
	}

	status := shift.ProjectStatus(assignment, &session, now)
	s.publishStatus(caregiverID, status)

	return shift.StartShiftResponse{DelayMinutes: delayMinutes, Status: status}, nil
}

// ExtendShift implements shift.Service. Extensions compound onto the
// previous effective end, never onto the original schedule.
func (s *ShiftServiceImpl) ExtendShift(ctx context.Context, caregiverID string, req shift.ExtendShiftRequest) (shift.StatusResponse, error) {
	unlock := s.locker.Lock(caregiverID)
	defer unlock()

	now := time.Now().UTC()

	latest, err := s.SessionRepository.GetLatestByCaregiver(ctx, caregiverID)
	if err != nil {
		return shift.StatusResponse{}, err
	}
	if !latest.IsActiveAt(now) {
		return shift.StatusResponse{}, shift.ErrNoActiveSession
	}
	if latest.OnBreak() {
		return shift.StatusResponse{}, shift.ErrOnBreak
	}

	minutes := req.ResolveMinutes()
	extended := latest.EffectiveEnd().Add(time.Duration(minutes) * time.Minute)
	latest.ExtendedUntil = &extended

	if err := s.SessionRepository.Update(ctx, *latest); err != nil {
		return shift.StatusResponse{}, err
	}

	return s.projectAndPublish(ctx, caregiverID, latest, now)
}

// StopShift implements shift.Service. An open break is discarded, not
// accounted.
func (s *ShiftServiceImpl) StopShift(ctx context.Context, caregiverID string) (shift.StatusResponse, error) {
	unlock := s.locker.Lock(caregiverID)
	defer unlock()

	now := time.Now().UTC()

	latest, err := s.SessionRepository.GetLatestByCaregiver(ctx, caregiverID)
	if err != nil {
		return shift.StatusResponse{}, err
	}
	if !latest.IsActiveAt(now) {
		return shift.StatusResponse{}, shift.ErrNoActiveSession
	}

	latest.ExtendedUntil = &now
	latest.BreakStartedAt = nil

	if err := s.SessionRepository.Update(ctx, *latest); err != nil {
		return shift.StatusResponse{}, err
	}

	return s.projectAndPublish(ctx, caregiverID, latest, now)
}

// StartBreak implements shift.Service.
func (s *ShiftServiceImpl) StartBreak(ctx context.Context, caregiverID string) (shift.StatusResponse, error) {
	unlock := s.locker.Lock(caregiverID)
	defer unlock()

	now := time.Now().UTC()

	latest, err := s.SessionRepository.GetLatestByCaregiver(ctx, caregiverID)
	if err != nil {
		return shift.StatusResponse{}, err
	}
	if !latest.IsActiveAt(now) {
		return shift.StatusResponse{}, shift.ErrNoActiveSession
	}
	if latest.OnBreak() {
		return shift.StatusResponse{}, shift.ErrOnBreak
	}

	latest.BreakStartedAt = &now

	if err := s.SessionRepository.Update(ctx, *latest); err != nil {
		return shift.StatusResponse{}, err
	}

	return s.projectAndPublish(ctx, caregiverID, latest, now)
}

// ResumeBreak implements shift.Service. Break time is refunded onto the
// effective end so a break never shortens the shift; the cumulative
// counter advances by whole minutes only.
func (s *ShiftServiceImpl) ResumeBreak(ctx context.Context, caregiverID string) (shift.StatusResponse, error) {
	unlock := s.locker.Lock(caregiverID)
	defer unlock()

	now := time.Now().UTC()

	latest, err := s.SessionRepository.GetLatestByCaregiver(ctx, caregiverID)
	if err != nil {
		return shift.StatusResponse{}, err
	}
	if !latest.IsActiveAt(now) {
		return shift.StatusResponse{}, shift.ErrNoActiveSession
	}
	if !latest.OnBreak() {
		return shift.StatusResponse{}, shift.ErrNotOnBreak
	}

	delta := now.Sub(*latest.BreakStartedAt)
	if delta < 0 {
		delta = 0
	}

	extended := latest.EffectiveEnd().Add(delta)
	latest.ExtendedUntil = &extended
	latest.BreakTotalMinutes += int(delta / time.Minute)
	latest.BreakStartedAt = nil

	if err := s.SessionRepository.Update(ctx, *latest); err != nil {
		return shift.StatusResponse{}, err
	}

	return s.projectAndPublish(ctx, caregiverID, latest, now)
}

// AssignShift implements shift.Service.
func (s *ShiftServiceImpl) AssignShift(ctx context.Context, req shift.AssignShiftRequest) (shift.AssignmentResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.AssignmentResponse{}, err
	}

	shiftType, _ := shift.ParseShiftType(strings.ToUpper(req.ShiftType))

	assignment, err := s.AssignmentRepository.Upsert(ctx, shift.Assignment{
		CaregiverID: req.CaregiverID,
		ShiftType:   shiftType,
		Active:      true,
	})
	if err != nil {
		return shift.AssignmentResponse{}, err
	}

	return mapAssignmentToResponse(assignment), nil
}

// GetAssignment implements shift.Service.
func (s *ShiftServiceImpl) GetAssignment(ctx context.Context, caregiverID string) (shift.AssignmentResponse, error) {
	assignment, err := s.AssignmentRepository.GetActiveByCaregiver(ctx, caregiverID)
	if err != nil {
		return shift.AssignmentResponse{}, err
	}
	if assignment == nil {
		return shift.AssignmentResponse{}, shift.ErrAssignmentNotFound
	}

	return mapAssignmentToResponse(*assignment), nil
}

// ListMySessions implements shift.Service.
func (s *ShiftServiceImpl) ListMySessions(ctx context.Context, caregiverID string, filter shift.SessionFilter) (shift.ListSessionsResponse, error) {
	sessions, total, err := s.SessionRepository.ListByCaregiver(ctx, caregiverID, filter)
	if err != nil {
		return shift.ListSessionsResponse{}, err
	}

	responses := make([]shift.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, shift.MapSessionToResponse(session))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))

	return shift.ListSessionsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Sessions:   responses,
	}, nil
}

// resolveAssignment loads the caregiver's assignment, applying the
// bootstrap seed rule when configured for this caregiver.
func (s *ShiftServiceImpl) resolveAssignment(ctx context.Context, caregiverID string) (*shift.Assignment, error) {
	assignment, err := s.AssignmentRepository.GetActiveByCaregiver(ctx, caregiverID)
	if err != nil {
		return nil, err
	}
	if assignment != nil {
		return assignment, nil
	}

	if s.seed.CaregiverID == "" || s.seed.CaregiverID != caregiverID {
		return nil, shift.ErrNoAssignment
	}

	seedType, ok := shift.ParseShiftType(s.seed.ShiftType)
	if !ok {
		seedType = shift.ShiftMorning
	}

	seeded, err := s.AssignmentRepository.Upsert(ctx, shift.Assignment{
		CaregiverID: caregiverID,
		ShiftType:   seedType,
		Active:      true,
	})
	if err != nil {
		return nil, err
	}

	return &seeded, nil
}

// projectAndPublish builds the post-mutation status and pushes it to
// SSE subscribers.
func (s *ShiftServiceImpl) projectAndPublish(ctx context.Context, caregiverID string, latest *shift.Session, now time.Time) (shift.StatusResponse, error) {
	assignment, err := s.AssignmentRepository.GetActiveByCaregiver(ctx, caregiverID)
	if err != nil {
		return shift.StatusResponse{}, err
	}

	status := shift.ProjectStatus(assignment, latest, now)
	s.publishStatus(caregiverID, status)
	return status, nil
}

func (s *ShiftServiceImpl) publishStatus(caregiverID string, status shift.StatusResponse) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(caregiverID, sse.Event{
		CaregiverID: caregiverID,
		Event:       "shift_status",
		Data:        status,
	})
}

func mapAssignmentToResponse(a shift.Assignment) shift.AssignmentResponse {
	return shift.AssignmentResponse{
		CaregiverID: a.CaregiverID,
		ShiftType:   string(a.ShiftType),
		Active:      a.Active,
		UpdatedAt:   a.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
