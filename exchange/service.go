/*
Package exchange implements the shift-exchange engine.

PURPOSE:
  The state machines that move shifts between staff: open-shift requests,
  multi-party trade requests, direct assignment, time-off requests, and
  emergency absences. Every transition validates role/state/cap before any
  mutation, runs inside a store transaction, and reports notifications
  after commit.

TRANSITION SHAPE:
  Each operation follows the same pattern:
    1. WithTx: load -> validate (state, relationship, cap) -> mutate
    2. After commit: fire-and-forget notifications

  Validation failures surface one of the schedule error taxonomy values
  before anything is written; a failed transaction leaves no partial state.

CAP CHECKS:
  - Shift request creation checks the requester's cap.
  - Trade proposal checks BOTH parties against their post-trade state
    (each party's outgoing shift excluded from their current total).
  - Trade finalization re-runs both checks against current shift state;
    drift since proposal fails the finalize and leaves the trade pending.
  - Shift request APPROVAL does not re-check the cap; see the note in
    requests.go.

SEE ALSO:
  - schedule/hours.go: the cap computation
  - notify: the fire-and-forget message dispatch
*/
package exchange

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/warp/shift-engine/notify"
	"github.com/warp/shift-engine/schedule"
)

// Service orchestrates all exchange state transitions.
type Service struct {
	store    schedule.TxStore
	notifier notify.Notifier
	logger   zerolog.Logger
}

func New(store schedule.TxStore, notifier notify.Notifier, logger zerolog.Logger) *Service {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	return &Service{store: store, notifier: notifier, logger: logger}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// weekShifts returns the shifts assigned to staffID in the pay period
// containing anchor.
func weekShifts(ctx context.Context, s schedule.Store, staffID schedule.StaffID, anchor schedule.Date) ([]schedule.Shift, error) {
	period := schedule.PayPeriodFor(anchor)
	shifts, err := s.ShiftsForStaff(ctx, staffID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load pay-period shifts: %w", err)
	}
	return shifts, nil
}

// checkCap runs the weekly cap check for staff against a prospective shift,
// logging the data-integrity signal for unknown shift types.
func (svc *Service) checkCap(ctx context.Context, s schedule.Store, staff *schedule.Staff, date schedule.Date, shiftType schedule.ShiftType, exclude schedule.ShiftID) (schedule.CapCheck, error) {
	if !shiftType.Valid() {
		svc.logger.Warn().
			Str("shift_type", string(shiftType)).
			Str("date", date.String()).
			Msg("unknown shift type in cap check; counting zero hours")
	}

	shifts, err := weekShifts(ctx, s, staff.ID, date)
	if err != nil {
		return schedule.CapCheck{}, err
	}
	return schedule.CheckCap(shifts, staff, date, shiftType, exclude), nil
}

// HoursCheck evaluates the cap for a prospective assignment without mutating
// anything. Backs the hours-check endpoint; always succeeds for valid ids.
func (svc *Service) HoursCheck(ctx context.Context, staffID schedule.StaffID, date schedule.Date, shiftType schedule.ShiftType, exclude schedule.ShiftID) (schedule.CapCheck, error) {
	staff, err := svc.store.GetStaff(ctx, staffID)
	if err != nil {
		return schedule.CapCheck{}, err
	}
	return svc.checkCap(ctx, svc.store, staff, date, shiftType, exclude)
}

// notifyAdmins fans a message out to every active admin.
func (svc *Service) notifyAdmins(ctx context.Context, kind, message string) {
	admins, err := svc.store.ListAdmins(ctx)
	if err != nil {
		svc.logger.Warn().Err(err).Msg("failed to list admins for notification")
		return
	}
	svc.notifier.NotifyAll(admins, kind, message)
}
