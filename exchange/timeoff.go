/*
timeoff.go - Time-off request lifecycle

STATES:
  pending -> approved | denied (terminal)

  Two flavors: assigned_shift gives back a specific shift (approval
  reopens it), future_vacation blocks out a date range before shifts
  exist (approval records the range; no shift is touched).
*/
package exchange

import (
	"context"
	"fmt"

	"github.com/warp/shift-engine/notify"
	"github.com/warp/shift-engine/schedule"
)

// TimeOffParams carries staff input for a new time-off request.
type TimeOffParams struct {
	Type      schedule.TimeOffType
	ShiftID   *schedule.ShiftID // assigned_shift
	StartDate *schedule.Date    // future_vacation
	EndDate   *schedule.Date
	Reason    string
}

// CreateTimeOffRequest records a request to be released from a shift or to
// block out future dates. assigned_shift requires the requester to hold the
// named shift; future_vacation requires at least a start date.
func (svc *Service) CreateTimeOffRequest(ctx context.Context, requesterID schedule.StaffID, p TimeOffParams) (*schedule.TimeOffRequest, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("invalid time-off type %q: %w", p.Type, schedule.ErrInvalidState)
	}

	var (
		request *schedule.TimeOffRequest
		staff   *schedule.Staff
		shift   *schedule.Shift
	)

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		staff, err = s.GetStaff(ctx, requesterID)
		if err != nil {
			return err
		}

		switch p.Type {
		case schedule.TimeOffAssignedShift:
			if p.ShiftID == nil {
				return fmt.Errorf("shift id required for an assigned-shift request: %w", schedule.ErrInvalidState)
			}
			shift, err = s.GetShift(ctx, *p.ShiftID)
			if err != nil {
				return err
			}
			if !shift.AssignedToStaff(requesterID) {
				return fmt.Errorf("you are not assigned to shift %d: %w", *p.ShiftID, schedule.ErrNotAuthorized)
			}
		case schedule.TimeOffFutureVacation:
			if p.StartDate == nil {
				return fmt.Errorf("start date required for a vacation request: %w", schedule.ErrInvalidState)
			}
			if p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
				return fmt.Errorf("end date precedes start date: %w", schedule.ErrInvalidState)
			}
		}

		endDate := p.EndDate
		if p.Type == schedule.TimeOffFutureVacation && endDate == nil {
			endDate = p.StartDate
		}

		request = &schedule.TimeOffRequest{
			RequesterID: requesterID,
			Type:        p.Type,
			ShiftID:     p.ShiftID,
			StartDate:   p.StartDate,
			EndDate:     endDate,
			Reason:      p.Reason,
			Status:      schedule.StatusPending,
		}
		return s.CreateTimeOffRequest(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	var detail string
	if shift != nil {
		detail = fmt.Sprintf("%s requests time off from their %s shift on %s.",
			staff.FullName, shift.Type.Label(), shift.Date.Format())
	} else {
		span := request.StartDate.Format()
		if request.EndDate != nil && !request.EndDate.Equal(*request.StartDate) {
			span += " - " + request.EndDate.Format()
		}
		detail = fmt.Sprintf("%s requests vacation: %s.", staff.FullName, span)
	}
	svc.notifyAdmins(ctx, notify.KindRequestReceived,
		"*New time off request*\n"+detail+"\nLog in to approve or deny.")

	return request, nil
}

// ApproveTimeOff approves the request. For an assigned-shift request the
// shift is reopened in the same transaction so it can be rebid or covered.
func (svc *Service) ApproveTimeOff(ctx context.Context, adminID schedule.StaffID, requestID schedule.TimeOffRequestID, note string) (*schedule.TimeOffRequest, error) {
	var (
		request *schedule.TimeOffRequest
		shift   *schedule.Shift
	)

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		request, err = s.GetTimeOffRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if request.Status != schedule.StatusPending {
			return fmt.Errorf("time-off request %d is %s: %w", requestID, request.Status, schedule.ErrAlreadyProcessed)
		}

		if request.ShiftID != nil {
			shift, err = s.GetShift(ctx, *request.ShiftID)
			if err != nil {
				return err
			}
			shift.AssignedTo = nil
			shift.IsOpen = true
			if err := s.UpdateShift(ctx, shift); err != nil {
				return err
			}
		}

		request.Status = schedule.StatusApproved
		request.AdminNote = note
		request.ApprovedBy = &adminID
		return s.UpdateTimeOffRequest(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	if requester, err := svc.store.GetStaff(ctx, request.RequesterID); err == nil {
		svc.notifier.Notify(requester, notify.KindTimeOffApproved,
			notify.TimeOffApproved(request, shift, note))
	}

	return request, nil
}

// DenyTimeOff marks the request denied. No shift mutation.
func (svc *Service) DenyTimeOff(ctx context.Context, adminID schedule.StaffID, requestID schedule.TimeOffRequestID, note string) (*schedule.TimeOffRequest, error) {
	var request *schedule.TimeOffRequest

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		request, err = s.GetTimeOffRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if request.Status != schedule.StatusPending {
			return fmt.Errorf("time-off request %d is %s: %w", requestID, request.Status, schedule.ErrAlreadyProcessed)
		}

		request.Status = schedule.StatusDenied
		request.AdminNote = note
		request.ApprovedBy = &adminID
		return s.UpdateTimeOffRequest(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	if requester, err := svc.store.GetStaff(ctx, request.RequesterID); err == nil {
		svc.notifier.Notify(requester, notify.KindTimeOffDenied,
			notify.TimeOffDenied(request, note))
	}

	return request, nil
}
