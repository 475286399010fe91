package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestExtendShiftRequest_ResolveMinutes(t *testing.T) {
	tests := []struct {
		name     string
		request  *ExtendShiftRequest
		expected int
	}{
		{"nil request", nil, DefaultExtendMinutes},
		{"absent minutes", &ExtendShiftRequest{}, DefaultExtendMinutes},
		{"minimum", &ExtendShiftRequest{Minutes: intPtr(15)}, 15},
		{"maximum", &ExtendShiftRequest{Minutes: intPtr(240)}, 240},
		{"in range", &ExtendShiftRequest{Minutes: intPtr(30)}, 30},
		{"below minimum clamps up", &ExtendShiftRequest{Minutes: intPtr(14)}, MinExtendMinutes},
		{"above maximum clamps down", &ExtendShiftRequest{Minutes: intPtr(241)}, MaxExtendMinutes},
		{"well above maximum", &ExtendShiftRequest{Minutes: intPtr(300)}, MaxExtendMinutes},
		{"well below minimum", &ExtendShiftRequest{Minutes: intPtr(10)}, MinExtendMinutes},
		{"zero", &ExtendShiftRequest{Minutes: intPtr(0)}, MinExtendMinutes},
		{"negative", &ExtendShiftRequest{Minutes: intPtr(-60)}, MinExtendMinutes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.request.ResolveMinutes())
		})
	}
}

func TestAssignShiftRequest_Validate(t *testing.T) {
	caregiverID := "b2c9f3a0-1111-4222-8333-444455556666"

	valid := AssignShiftRequest{CaregiverID: caregiverID, ShiftType: "NIGHT"}
	assert.NoError(t, valid.Validate())

	lowercase := AssignShiftRequest{CaregiverID: caregiverID, ShiftType: "morning"}
	assert.NoError(t, lowercase.Validate())

	missing := AssignShiftRequest{ShiftType: "MORNING"}
	require.Error(t, missing.Validate())

	notUUID := AssignShiftRequest{CaregiverID: "caregiver-1", ShiftType: "MORNING"}
	require.Error(t, notUUID.Validate())

	badType := AssignShiftRequest{CaregiverID: caregiverID, ShiftType: "EVENING"}
	require.Error(t, badType.Validate())
}

func TestSessionFilter_Validate(t *testing.T) {
	filter := SessionFilter{}
	require.NoError(t, filter.Validate())
	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 20, filter.Limit)

	over := SessionFilter{Limit: 101}
	assert.Error(t, over.Validate())

	negative := SessionFilter{Page: -1}
	assert.Error(t, negative.Validate())

	badDate := "10-03-2025"
	withBadDate := SessionFilter{StartDate: &badDate}
	assert.Error(t, withBadDate.Validate())

	goodDate := "2025-03-10"
	withGoodDate := SessionFilter{StartDate: &goodDate, EndDate: &goodDate}
	assert.NoError(t, withGoodDate.Validate())
}

func TestMapSessionToResponse(t *testing.T) {
	clockIn := time.Date(2025, 3, 10, 7, 45, 0, 0, time.UTC)
	session := *morningSession(clockIn)
	session.DelayMinutes = 15
	extended := session.ScheduledEnd.Add(time.Hour)
	session.ExtendedUntil = &extended

	resp := MapSessionToResponse(session)

	assert.Equal(t, "MORNING", resp.ShiftType)
	assert.Equal(t, "2025-03-10T07:45:00Z", resp.ClockInAt)
	assert.Equal(t, "2025-03-10T07:30:00Z", resp.ScheduledStart)
	require.NotNil(t, resp.ExtendedUntil)
	assert.Equal(t, "2025-03-10T14:00:00Z", *resp.ExtendedUntil)
	assert.Nil(t, resp.BreakStartedAt)
}

func TestFormatUTC_NormalizesZone(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	local := time.Date(2025, 3, 10, 14, 30, 0, 0, loc)

	assert.Equal(t, "2025-03-10T07:30:00Z", formatUTC(local))
}
