package shift

import "time"

// ProjectStatus assembles the externally visible status payload from
// the caregiver's assignment and latest session. Pure: every endpoint
// that answers "is this caregiver on duty" goes through here so the
// derived flags cannot drift between call sites.
func ProjectStatus(assignment *Assignment, latest *Session, now time.Time) StatusResponse {
	if assignment == nil || !assignment.Active {
		return StatusResponse{Assigned: false}
	}

	shiftType := string(assignment.ShiftType)
	resp := StatusResponse{
		Assigned:  true,
		ShiftType: &shiftType,
	}

	// Effective schedule: the latest session's captured window when one
	// exists, else a fresh window for now.
	if latest != nil {
		start := formatUTC(latest.ScheduledStart)
		end := formatUTC(latest.ScheduledEnd)
		effective := formatUTC(latest.EffectiveEnd())
		clockIn := formatUTC(latest.ClockInAt)
		delay := latest.DelayMinutes
		if delay == 0 && latest.ClockInAt.After(latest.ScheduledStart) {
			delay = int(latest.ClockInAt.Sub(latest.ScheduledStart) / time.Minute)
		}
		breakTotal := latest.BreakTotalMinutes

		resp.ScheduledStart = &start
		resp.ScheduledEnd = &end
		resp.EffectiveEnd = &effective
		resp.ClockInAt = &clockIn
		resp.DelayMinutes = &delay
		resp.BreakTotalMinutes = &breakTotal
	} else if window := ComputeWindow(assignment.ShiftType, now); window != nil {
		start := formatUTC(window.Start)
		end := formatUTC(window.End)
		resp.ScheduledStart = &start
		resp.ScheduledEnd = &end
		resp.EffectiveEnd = &end
	}

	activeNow := latest.IsActiveAt(now)
	onBreak := activeNow && latest.OnBreak()

	resp.IsOnBreak = onBreak
	resp.IsOnShift = activeNow && !onBreak
	resp.CanExtend = activeNow && !onBreak
	resp.CanBreak = activeNow && !onBreak
	resp.CanResume = activeNow && onBreak
	resp.CanStop = activeNow

	return resp
}
