/*
requests.go - Open-shift request lifecycle

STATES:
  pending -> approved | denied (terminal)

  One pending request per (shift, requester) pair. The cap is checked at
  creation; approval assigns the shift to the requester and closes it.

NOTE ON APPROVAL:
  Approve does NOT re-run the cap check. Hours are validated when the bid
  is created, so a request created under the cap can be approved after
  other assignments pushed the requester over it. Trade finalization
  (trades.go) is the tight side of the asymmetry: it re-validates both
  parties at commit time.
*/
package exchange

import (
	"context"
	"fmt"

	"github.com/warp/shift-engine/notify"
	"github.com/warp/shift-engine/schedule"
)

// CreateShiftRequest records a staff member's bid on an open shift.
// Fails with ErrInvalidState when the shift is not open, ErrDuplicatePending
// when the member already has a pending bid on it, and CapExceededError when
// the shift would push them past the weekly cap.
func (svc *Service) CreateShiftRequest(ctx context.Context, requesterID schedule.StaffID, shiftID schedule.ShiftID) (*schedule.ShiftRequest, error) {
	var (
		request *schedule.ShiftRequest
		shift   *schedule.Shift
		staff   *schedule.Staff
	)

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		shift, err = s.GetShift(ctx, shiftID)
		if err != nil {
			return err
		}
		if !shift.IsOpen {
			return fmt.Errorf("shift %d is not open for requests: %w", shiftID, schedule.ErrInvalidState)
		}

		if _, err := s.PendingShiftRequest(ctx, shiftID, requesterID); err == nil {
			return fmt.Errorf("shift %d already requested: %w", shiftID, schedule.ErrDuplicatePending)
		} else if !schedule.IsNotFound(err) {
			return err
		}

		staff, err = s.GetStaff(ctx, requesterID)
		if err != nil {
			return err
		}

		check, err := svc.checkCap(ctx, s, staff, shift.Date, shift.Type, 0)
		if err != nil {
			return err
		}
		if check.WouldExceed {
			return &schedule.CapExceededError{StaffID: requesterID, Check: check}
		}

		request = &schedule.ShiftRequest{
			ShiftID:     shiftID,
			RequesterID: requesterID,
			Status:      schedule.StatusPending,
		}
		return s.CreateShiftRequest(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	svc.notifyAdmins(ctx, notify.KindRequestReceived,
		notify.ShiftRequestReceived(staff.FullName, shift.Date, shift.Type))

	return request, nil
}

// ApproveShiftRequest assigns the shift to the requester and closes it.
// Fails with ErrAlreadyProcessed once the request has left pending; the
// approved/denied states are terminal.
func (svc *Service) ApproveShiftRequest(ctx context.Context, adminID schedule.StaffID, requestID schedule.ShiftRequestID, note string) (*schedule.ShiftRequest, error) {
	var (
		request *schedule.ShiftRequest
		shift   *schedule.Shift
	)

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		request, err = s.GetShiftRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if request.Status != schedule.StatusPending {
			return fmt.Errorf("request %d is %s: %w", requestID, request.Status, schedule.ErrAlreadyProcessed)
		}

		shift, err = s.GetShift(ctx, request.ShiftID)
		if err != nil {
			return err
		}

		// The cap is not re-checked here; see the file header.
		request.Status = schedule.StatusApproved
		request.AdminNote = note
		request.ApprovedBy = &adminID
		if err := s.UpdateShiftRequest(ctx, request); err != nil {
			return err
		}

		requesterID := request.RequesterID
		shift.AssignedTo = &requesterID
		shift.IsOpen = false
		return s.UpdateShift(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	if requester, err := svc.store.GetStaff(ctx, request.RequesterID); err == nil {
		svc.notifier.Notify(requester, notify.KindRequestApproved,
			notify.ShiftRequestApproved(shift.Date, shift.Type, note))
	}

	return request, nil
}

// DenyShiftRequest marks the request denied. No shift mutation.
func (svc *Service) DenyShiftRequest(ctx context.Context, adminID schedule.StaffID, requestID schedule.ShiftRequestID, note string) (*schedule.ShiftRequest, error) {
	var (
		request *schedule.ShiftRequest
		shift   *schedule.Shift
	)

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		request, err = s.GetShiftRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if request.Status != schedule.StatusPending {
			return fmt.Errorf("request %d is %s: %w", requestID, request.Status, schedule.ErrAlreadyProcessed)
		}

		shift, err = s.GetShift(ctx, request.ShiftID)
		if err != nil {
			return err
		}

		request.Status = schedule.StatusDenied
		request.AdminNote = note
		request.ApprovedBy = &adminID
		return s.UpdateShiftRequest(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	if requester, err := svc.store.GetStaff(ctx, request.RequesterID); err == nil {
		svc.notifier.Notify(requester, notify.KindRequestDenied,
			notify.ShiftRequestDenied(shift.Date, shift.Type, note))
	}

	return request, nil
}
