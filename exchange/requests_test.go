package exchange_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// CREATE
// =============================================================================

func TestCreateShiftRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.openShift(t, monday, schedule.ShiftMorning)

	req, err := f.svc.CreateShiftRequest(ctx, f.alice, shiftID)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusPending, req.Status)
	assert.Equal(t, f.alice, req.RequesterID)
	assert.Equal(t, shiftID, req.ShiftID)
}

func TestCreateShiftRequestRejectsClosedShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.assignShift(t, monday, schedule.ShiftMorning, f.bob)

	_, err := f.svc.CreateShiftRequest(ctx, f.alice, shiftID)
	assert.ErrorIs(t, err, schedule.ErrInvalidState)
}

func TestCreateShiftRequestRejectsDuplicatePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.openShift(t, monday, schedule.ShiftMorning)

	_, err := f.svc.CreateShiftRequest(ctx, f.alice, shiftID)
	require.NoError(t, err)

	_, err = f.svc.CreateShiftRequest(ctx, f.alice, shiftID)
	assert.ErrorIs(t, err, schedule.ErrDuplicatePending)
}

func TestCreateShiftRequestRejectsCapViolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Alice already works 36 hours this week.
	f.assignShift(t, sunday, schedule.ShiftOvernight, f.alice)
	f.assignShift(t, monday, schedule.ShiftOvernight, f.alice)
	f.assignShift(t, tuesday, schedule.ShiftOvernight, f.alice)

	shiftID := f.openShift(t, thursday, schedule.ShiftOvernight)
	_, err := f.svc.CreateShiftRequest(ctx, f.alice, shiftID)

	require.ErrorIs(t, err, schedule.ErrCapExceeded)
	var capErr *schedule.CapExceededError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, "36", capErr.Check.CurrentHours.String())
	assert.Equal(t, "48", capErr.Check.ProjectedHours.String())
	assert.False(t, capErr.Check.IsExempt)

	// Nothing was written.
	requests, err := f.store.ListShiftRequests(ctx, &f.alice)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

func TestCreateShiftRequestHouseManagerBypassesCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Morgan already works 48 hours; a fifth overnight lands on 60.
	f.assignShift(t, sunday, schedule.ShiftOvernight, f.hm)
	f.assignShift(t, monday, schedule.ShiftOvernight, f.hm)
	f.assignShift(t, tuesday, schedule.ShiftOvernight, f.hm)
	f.assignShift(t, wednesday, schedule.ShiftOvernight, f.hm)

	shiftID := f.openShift(t, thursday, schedule.ShiftOvernight)
	req, err := f.svc.CreateShiftRequest(ctx, f.hm, shiftID)
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusPending, req.Status)
}

// =============================================================================
// APPROVE / DENY
// =============================================================================

func TestApproveShiftRequestAssignsAndCloses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.openShift(t, monday, schedule.ShiftMorning)

	req, err := f.svc.CreateShiftRequest(ctx, f.alice, shiftID)
	require.NoError(t, err)

	approved, err := f.svc.ApproveShiftRequest(ctx, f.admin, req.ID, "welcome aboard")
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusApproved, approved.Status)
	assert.Equal(t, "welcome aboard", approved.AdminNote)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, f.admin, *approved.ApprovedBy)

	shift := f.shift(t, shiftID)
	assert.False(t, shift.IsOpen)
	require.NotNil(t, shift.AssignedTo)
	assert.Equal(t, f.alice, *shift.AssignedTo)
}

func TestApproveShiftRequestIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.openShift(t, monday, schedule.ShiftMorning)

	req, err := f.svc.CreateShiftRequest(ctx, f.alice, shiftID)
	require.NoError(t, err)

	_, err = f.svc.ApproveShiftRequest(ctx, f.admin, req.ID, "")
	require.NoError(t, err)

	_, err = f.svc.ApproveShiftRequest(ctx, f.admin, req.ID, "")
	assert.ErrorIs(t, err, schedule.ErrAlreadyProcessed)

	_, err = f.svc.DenyShiftRequest(ctx, f.admin, req.ID, "")
	assert.ErrorIs(t, err, schedule.ErrAlreadyProcessed)
}

func TestDenyShiftRequestLeavesShiftOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.openShift(t, monday, schedule.ShiftMorning)

	req, err := f.svc.CreateShiftRequest(ctx, f.alice, shiftID)
	require.NoError(t, err)

	denied, err := f.svc.DenyShiftRequest(ctx, f.admin, req.ID, "overstaffed")
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusDenied, denied.Status)

	shift := f.shift(t, shiftID)
	assert.True(t, shift.IsOpen)
	assert.Nil(t, shift.AssignedTo)
}

func TestApproveShiftRequestDoesNotRecheckCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shiftID := f.openShift(t, thursday, schedule.ShiftOvernight)

	// Under the cap at request time.
	req, err := f.svc.CreateShiftRequest(ctx, f.alice, shiftID)
	require.NoError(t, err)

	// Schedule drifts: Alice is now at 36 hours before the approval.
	f.assignShift(t, sunday, schedule.ShiftOvernight, f.alice)
	f.assignShift(t, monday, schedule.ShiftOvernight, f.alice)
	f.assignShift(t, tuesday, schedule.ShiftOvernight, f.alice)

	// Approval still lands her on 48: the cap is only checked at creation.
	approved, err := f.svc.ApproveShiftRequest(ctx, f.admin, req.ID, "")
	require.NoError(t, err)
	assert.Equal(t, schedule.StatusApproved, approved.Status)
}

// =============================================================================
// DIRECT ASSIGNMENT
// =============================================================================

func TestCreateShiftRejectsDuplicateSlot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.openShift(t, monday, schedule.ShiftMorning)

	_, err := f.svc.CreateShift(ctx, f.admin, createParams(monday, schedule.ShiftMorning, nil, true))
	assert.ErrorIs(t, err, schedule.ErrDuplicateShift)
}

func TestCreateShiftCapChecksAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.assignShift(t, sunday, schedule.ShiftOvernight, f.alice)
	f.assignShift(t, monday, schedule.ShiftOvernight, f.alice)
	f.assignShift(t, tuesday, schedule.ShiftOvernight, f.alice)

	_, err := f.svc.CreateShift(ctx, f.admin, createParams(thursday, schedule.ShiftOvernight, &f.alice, false))
	assert.ErrorIs(t, err, schedule.ErrCapExceeded)

	// The same slot as an open shift is fine.
	shift, err := f.svc.CreateShift(ctx, f.admin, createParams(thursday, schedule.ShiftOvernight, nil, true))
	require.NoError(t, err)
	assert.True(t, shift.IsOpen)
}

func TestReassignmentCapChecksNewAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.assignShift(t, sunday, schedule.ShiftOvernight, f.bob)
	f.assignShift(t, monday, schedule.ShiftOvernight, f.bob)
	f.assignShift(t, tuesday, schedule.ShiftOvernight, f.bob)
	shiftID := f.assignShift(t, thursday, schedule.ShiftOvernight, f.alice)

	_, err := f.svc.UpdateShift(ctx, shiftID, updateAssignee(&f.bob))
	assert.ErrorIs(t, err, schedule.ErrCapExceeded)

	// The original assignment is untouched.
	shift := f.shift(t, shiftID)
	require.NotNil(t, shift.AssignedTo)
	assert.Equal(t, f.alice, *shift.AssignedTo)
}
