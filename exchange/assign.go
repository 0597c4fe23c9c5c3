/*
assign.go - Admin shift creation, reassignment, and removal

  Direct assignment is the admin-side entry into the hour accounting: a
  shift created for (or moved to) a staff member is cap-checked exactly
  like a request would be. Open shifts carry no assignee and skip the
  check.
*/
package exchange

import (
	"context"
	"fmt"

	"github.com/warp/shift-engine/notify"
	"github.com/warp/shift-engine/schedule"
)

// CreateShiftParams carries admin input for a new shift.
type CreateShiftParams struct {
	Date          schedule.Date
	Type          schedule.ShiftType
	AssignedTo    *schedule.StaffID // ignored when IsOpen
	IsOpen        bool
	IsPreliminary bool
	Notes         string
}

// CreateShift creates one calendar slot. Rejects a duplicate (date, type)
// pair, an unassignable assignee, and cap violations.
func (svc *Service) CreateShift(ctx context.Context, adminID schedule.StaffID, p CreateShiftParams) (*schedule.Shift, error) {
	if !p.Type.Valid() {
		return nil, fmt.Errorf("invalid shift type %q: %w", p.Type, schedule.ErrInvalidState)
	}

	var (
		shift    *schedule.Shift
		assignee *schedule.Staff
	)

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		if _, err := s.ShiftAt(ctx, p.Date, p.Type); err == nil {
			return schedule.ErrDuplicateShift
		} else if !schedule.IsNotFound(err) {
			return err
		}

		assignedTo := p.AssignedTo
		if p.IsOpen {
			assignedTo = nil
		}

		if assignedTo != nil {
			var err error
			assignee, err = s.GetStaff(ctx, *assignedTo)
			if err != nil {
				return err
			}
			if assignee.IsOpenPlaceholder() {
				return fmt.Errorf("cannot assign the open-shift placeholder: %w", schedule.ErrInvalidState)
			}

			check, err := svc.checkCap(ctx, s, assignee, p.Date, p.Type, 0)
			if err != nil {
				return err
			}
			if check.WouldExceed {
				return &schedule.CapExceededError{StaffID: assignee.ID, Check: check}
			}
		}

		shift = &schedule.Shift{
			Date:          p.Date,
			Type:          p.Type,
			AssignedTo:    assignedTo,
			IsOpen:        p.IsOpen,
			IsPreliminary: p.IsPreliminary,
			Notes:         p.Notes,
			CreatedBy:     adminID,
		}
		return s.CreateShift(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	if assignee != nil {
		svc.notifier.Notify(assignee, notify.KindShiftAssigned,
			notify.ShiftAssigned(shift.Date, shift.Type))
	}

	return shift, nil
}

// ShiftUpdate carries partial updates; nil fields are left unchanged.
type ShiftUpdate struct {
	AssignedTo    *schedule.StaffID
	ClearAssignee bool
	IsOpen        *bool
	IsPreliminary *bool
	Notes         *string
}

// UpdateShift applies a partial update. Moving the shift to a new assignee
// re-runs the cap check for that member and notifies them.
func (svc *Service) UpdateShift(ctx context.Context, shiftID schedule.ShiftID, u ShiftUpdate) (*schedule.Shift, error) {
	var (
		shift       *schedule.Shift
		newAssignee *schedule.Staff
	)

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		shift, err = s.GetShift(ctx, shiftID)
		if err != nil {
			return err
		}

		willBeOpen := shift.IsOpen
		if u.IsOpen != nil {
			willBeOpen = *u.IsOpen
		}

		reassigning := u.AssignedTo != nil && !shift.AssignedToStaff(*u.AssignedTo) && !willBeOpen
		if reassigning {
			newAssignee, err = s.GetStaff(ctx, *u.AssignedTo)
			if err != nil {
				return err
			}
			if newAssignee.IsOpenPlaceholder() {
				return fmt.Errorf("cannot assign the open-shift placeholder: %w", schedule.ErrInvalidState)
			}

			check, err := svc.checkCap(ctx, s, newAssignee, shift.Date, shift.Type, 0)
			if err != nil {
				return err
			}
			if check.WouldExceed {
				return &schedule.CapExceededError{StaffID: newAssignee.ID, Check: check}
			}
		}

		if u.AssignedTo != nil {
			if willBeOpen {
				shift.AssignedTo = nil
			} else {
				id := *u.AssignedTo
				shift.AssignedTo = &id
			}
		}
		if u.ClearAssignee {
			shift.AssignedTo = nil
		}
		if u.IsOpen != nil {
			shift.IsOpen = *u.IsOpen
			if shift.IsOpen {
				shift.AssignedTo = nil
			}
		}
		if u.IsPreliminary != nil {
			shift.IsPreliminary = *u.IsPreliminary
		}
		if u.Notes != nil {
			shift.Notes = *u.Notes
		}

		return s.UpdateShift(ctx, shift)
	})
	if err != nil {
		return nil, err
	}

	if newAssignee != nil && shift.AssignedToStaff(newAssignee.ID) {
		svc.notifier.Notify(newAssignee, notify.KindShiftAssigned,
			notify.ShiftAssigned(shift.Date, shift.Type))
	}

	return shift, nil
}

// DeleteShift removes a slot outright. Admin action; no notifications.
func (svc *Service) DeleteShift(ctx context.Context, shiftID schedule.ShiftID) error {
	return svc.store.WithTx(ctx, func(s schedule.Store) error {
		return s.DeleteShift(ctx, shiftID)
	})
}
