package exchange_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/exchange"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/schedule/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// The week of 2026-02-15 (Sunday) through 2026-02-21 (Saturday).
var (
	sunday    = schedule.MustDate("2026-02-15")
	monday    = schedule.MustDate("2026-02-16")
	tuesday   = schedule.MustDate("2026-02-17")
	wednesday = schedule.MustDate("2026-02-18")
	thursday  = schedule.MustDate("2026-02-19")
	friday    = schedule.MustDate("2026-02-20")
	saturday  = schedule.MustDate("2026-02-21")
)

type fixture struct {
	svc   *exchange.Service
	store *store.Memory

	admin schedule.StaffID
	alice schedule.StaffID
	bob   schedule.StaffID
	hm    schedule.StaffID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	seed := func(username, fullName string, role schedule.Role, jobTitle string) schedule.StaffID {
		s := &schedule.Staff{
			Username: username,
			FullName: fullName,
			Role:     role,
			JobTitle: jobTitle,
			IsActive: true,
		}
		require.NoError(t, mem.CreateStaff(ctx, s))
		return s.ID
	}

	f := &fixture{svc: exchange.New(mem, nil, zerolog.Nop()), store: mem}
	f.admin = seed("admin", "Admin", schedule.RoleAdmin, "")
	f.alice = seed("alice", "Alice", schedule.RoleStaff, "Care Assistant")
	f.bob = seed("bob", "Bob", schedule.RoleStaff, "Care Assistant")
	f.hm = seed("hm", "Morgan", schedule.RoleStaff, schedule.HouseManagerTitle)
	return f
}

// openShift creates an unassigned, biddable shift.
func (f *fixture) openShift(t *testing.T, date schedule.Date, typ schedule.ShiftType) schedule.ShiftID {
	t.Helper()
	s := &schedule.Shift{Date: date, Type: typ, IsOpen: true, CreatedBy: f.admin}
	require.NoError(t, f.store.CreateShift(context.Background(), s))
	return s.ID
}

// assignShift creates a shift directly assigned to staffID, bypassing checks.
func (f *fixture) assignShift(t *testing.T, date schedule.Date, typ schedule.ShiftType, staffID schedule.StaffID) schedule.ShiftID {
	t.Helper()
	id := staffID
	s := &schedule.Shift{Date: date, Type: typ, AssignedTo: &id, CreatedBy: f.admin}
	require.NoError(t, f.store.CreateShift(context.Background(), s))
	return s.ID
}

func (f *fixture) shift(t *testing.T, id schedule.ShiftID) *schedule.Shift {
	t.Helper()
	s, err := f.store.GetShift(context.Background(), id)
	require.NoError(t, err)
	return s
}

func createParams(date schedule.Date, typ schedule.ShiftType, assignee *schedule.StaffID, open bool) exchange.CreateShiftParams {
	return exchange.CreateShiftParams{Date: date, Type: typ, AssignedTo: assignee, IsOpen: open}
}

func updateAssignee(id *schedule.StaffID) exchange.ShiftUpdate {
	return exchange.ShiftUpdate{AssignedTo: id}
}
