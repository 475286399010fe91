package shift

import "time"

// Window is the canonical start/end of a shift on a given calendar day.
// Derived, never persisted.
type Window struct {
	Start time.Time
	End   time.Time
}

// Fixed shift hours. NIGHT ends the next morning.
var shiftHours = map[ShiftType]struct {
	startHour, startMin int
	endHour, endMin     int
}{
	ShiftMorning:   {7, 30, 13, 0},
	ShiftAfternoon: {13, 0, 20, 0},
	ShiftNight:     {20, 0, 7, 30},
}

// ComputeWindow overlays the shift's fixed hours onto ref's calendar
// date, with seconds zeroed. When the naive end is not after the start
// (NIGHT, and only NIGHT), the end rolls forward one calendar day.
// Returns nil for an unrecognized shift type.
func ComputeWindow(shiftType ShiftType, ref time.Time) *Window {
	hours, ok := shiftHours[shiftType]
	if !ok {
		return nil
	}

	start := time.Date(ref.Year(), ref.Month(), ref.Day(), hours.startHour, hours.startMin, 0, 0, ref.Location())
	end := time.Date(ref.Year(), ref.Month(), ref.Day(), hours.endHour, hours.endMin, 0, 0, ref.Location())

	if !end.After(start) {
		end = end.AddDate(0, 0, 1)
	}

	return &Window{Start: start, End: end}
}
