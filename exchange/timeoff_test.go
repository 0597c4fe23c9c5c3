package exchange_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/exchange"
	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// TIME OFF
// =============================================================================

func TestAssignedShiftTimeOffRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bobsShift := f.assignShift(t, monday, schedule.ShiftMorning, f.bob)

	_, err := f.svc.CreateTimeOffRequest(ctx, f.alice, exchange.TimeOffParams{
		Type:    schedule.TimeOffAssignedShift,
		ShiftID: &bobsShift,
	})
	assert.ErrorIs(t, err, schedule.ErrNotAuthorized)
}

func TestApproveAssignedShiftTimeOffReopensShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.assignShift(t, monday, schedule.ShiftMorning, f.alice)

	req, err := f.svc.CreateTimeOffRequest(ctx, f.alice, exchange.TimeOffParams{
		Type:    schedule.TimeOffAssignedShift,
		ShiftID: &shiftID,
		Reason:  "appointment",
	})
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusPending, req.Status)

	approved, err := f.svc.ApproveTimeOff(ctx, f.admin, req.ID, "get well")
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusApproved, approved.Status)

	shift := f.shift(t, shiftID)
	assert.True(t, shift.IsOpen, "the released shift is open for cover")
	assert.Nil(t, shift.AssignedTo)
}

func TestDenyTimeOffLeavesShiftAlone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.assignShift(t, monday, schedule.ShiftMorning, f.alice)

	req, err := f.svc.CreateTimeOffRequest(ctx, f.alice, exchange.TimeOffParams{
		Type:    schedule.TimeOffAssignedShift,
		ShiftID: &shiftID,
	})
	require.NoError(t, err)

	denied, err := f.svc.DenyTimeOff(ctx, f.admin, req.ID, "short staffed")
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusDenied, denied.Status)

	shift := f.shift(t, shiftID)
	assert.False(t, shift.IsOpen)
	require.NotNil(t, shift.AssignedTo)
	assert.Equal(t, f.alice, *shift.AssignedTo)

	_, err = f.svc.ApproveTimeOff(ctx, f.admin, req.ID, "")
	assert.ErrorIs(t, err, schedule.ErrAlreadyProcessed)
}

func TestVacationRequestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTimeOffRequest(ctx, f.alice, exchange.TimeOffParams{
		Type: schedule.TimeOffFutureVacation,
	})
	assert.ErrorIs(t, err, schedule.ErrInvalidState, "start date is required")

	end := monday
	start := friday
	_, err = f.svc.CreateTimeOffRequest(ctx, f.alice, exchange.TimeOffParams{
		Type:      schedule.TimeOffFutureVacation,
		StartDate: &start,
		EndDate:   &end,
	})
	assert.ErrorIs(t, err, schedule.ErrInvalidState, "end before start")

	// A single day defaults the end date to the start date.
	req, err := f.svc.CreateTimeOffRequest(ctx, f.alice, exchange.TimeOffParams{
		Type:      schedule.TimeOffFutureVacation,
		StartDate: &end,
	})
	require.NoError(t, err)
	require.NotNil(t, req.EndDate)
	assert.True(t, req.EndDate.Equal(monday))
}

// =============================================================================
// ABSENCES
// =============================================================================

func TestReportAbsenceRecordsAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.assignShift(t, monday, schedule.ShiftMorning, f.alice)

	absence, err := f.svc.ReportAbsence(ctx, f.alice, shiftID, "flu")
	require.NoError(t, err)
	assert.Equal(t, f.alice, absence.StaffID)
	assert.Equal(t, f.alice, absence.ReportedBy)
	assert.Equal(t, "flu", absence.Reason)
}

func TestAdminMayReportForAnyone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.assignShift(t, monday, schedule.ShiftMorning, f.alice)

	absence, err := f.svc.ReportAbsence(ctx, f.admin, shiftID, "called in")
	require.NoError(t, err)
	assert.Equal(t, f.alice, absence.StaffID, "the absence belongs to the assignee")
	assert.Equal(t, f.admin, absence.ReportedBy)
}

func TestStaffMayNotReportOthersAbsence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.assignShift(t, monday, schedule.ShiftMorning, f.alice)

	_, err := f.svc.ReportAbsence(ctx, f.bob, shiftID, "saw her leave")
	assert.ErrorIs(t, err, schedule.ErrNotAuthorized)
}

func TestReportAbsenceRequiresAssignedShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.openShift(t, monday, schedule.ShiftMorning)

	_, err := f.svc.ReportAbsence(ctx, f.admin, shiftID, "")
	assert.ErrorIs(t, err, schedule.ErrInvalidState)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestAdminCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	open := f.openShift(t, monday, schedule.ShiftMorning)
	_, err := f.svc.CreateShiftRequest(ctx, f.alice, open)
	require.NoError(t, err)

	mine := f.assignShift(t, tuesday, schedule.ShiftMorning, f.alice)
	theirs := f.assignShift(t, wednesday, schedule.ShiftMorning, f.bob)
	trade, err := f.svc.ProposeTrade(ctx, f.alice, mine, theirs, "")
	require.NoError(t, err)
	_, err = f.svc.ApproveTradeAsTarget(ctx, f.bob, trade.ID, "")
	require.NoError(t, err)

	held := f.assignShift(t, thursday, schedule.ShiftMorning, f.bob)
	_, err = f.svc.CreateTimeOffRequest(ctx, f.bob, exchange.TimeOffParams{
		Type:    schedule.TimeOffAssignedShift,
		ShiftID: &held,
	})
	require.NoError(t, err)

	_, err = f.svc.ReportAbsence(ctx, f.alice, mine, "sick")
	require.NoError(t, err)

	counts, err := f.svc.AdminCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.PendingShiftRequests)
	assert.Equal(t, 1, counts.FinalizableTrades)
	assert.Equal(t, 1, counts.PendingTimeOff)
	assert.Equal(t, 1, counts.RecentAbsences)
}
