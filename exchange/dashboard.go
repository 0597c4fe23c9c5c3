/*
dashboard.go - Read-only dashboard aggregates

  Two views: the admin card counts (items that need action) and a staff
  member's personal summary (upcoming shifts, weekly hours against the
  cap, their pending requests).
*/
package exchange

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/warp/shift-engine/schedule"
)

const recentAbsenceWindowDays = 7

// AdminDashboard is the action-needed card counts.
type AdminDashboard struct {
	PendingShiftRequests int
	FinalizableTrades    int
	PendingTimeOff       int
	RecentAbsences       int
}

// AdminCounts collects the pending-work counts shown on the admin landing
// page. Absences are counted over the last seven days.
func (svc *Service) AdminCounts(ctx context.Context) (AdminDashboard, error) {
	var d AdminDashboard
	var err error

	if d.PendingShiftRequests, err = svc.store.CountPendingShiftRequests(ctx); err != nil {
		return d, err
	}
	if d.FinalizableTrades, err = svc.store.CountFinalizableTrades(ctx); err != nil {
		return d, err
	}
	if d.PendingTimeOff, err = svc.store.CountPendingTimeOff(ctx); err != nil {
		return d, err
	}
	if d.RecentAbsences, err = svc.store.CountRecentAbsences(ctx, recentAbsenceWindowDays); err != nil {
		return d, err
	}
	return d, nil
}

// StaffDashboard is one member's personal summary.
type StaffDashboard struct {
	UpcomingShifts  []schedule.Shift
	WeeklyHours     decimal.Decimal
	WeeklyCap       decimal.Decimal
	HoursStatus     string
	PendingRequests int
}

// StaffSummary builds the member view: shifts over the next two weeks,
// hours in the current pay period, and their pending shift requests.
func (svc *Service) StaffSummary(ctx context.Context, staffID schedule.StaffID) (StaffDashboard, error) {
	var d StaffDashboard

	today := schedule.Today()
	upcoming, err := svc.store.ShiftsForStaff(ctx, staffID, today, today.AddDays(13))
	if err != nil {
		return d, err
	}
	d.UpcomingShifts = upcoming

	week, err := weekShifts(ctx, svc.store, staffID, today)
	if err != nil {
		return d, err
	}
	d.WeeklyHours = schedule.WeeklyHours(week, staffID, today, 0)
	d.WeeklyCap = schedule.WeeklyCap
	d.HoursStatus = schedule.HoursStatus(d.WeeklyHours)

	if d.PendingRequests, err = svc.store.CountPendingShiftRequestsFor(ctx, staffID); err != nil {
		return d, err
	}
	return d, nil
}
