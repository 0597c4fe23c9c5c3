/*
absence.go - Emergency absence reporting

  An absence is an audit record, not a request: there is no approval
  flow. Reporting one fans an urgent message out to every admin so
  coverage can be arranged. The shift itself is left assigned; an admin
  decides whether to reopen or reassign it.
*/
package exchange

import (
	"context"
	"fmt"

	"github.com/warp/shift-engine/notify"
	"github.com/warp/shift-engine/schedule"
)

// ReportAbsence records that the assignee of shiftID cannot make it.
// Non-admin reporters may only report their own shifts.
func (svc *Service) ReportAbsence(ctx context.Context, reporterID schedule.StaffID, shiftID schedule.ShiftID, reason string) (*schedule.Absence, error) {
	var (
		absence *schedule.Absence
		shift   *schedule.Shift
		absent  *schedule.Staff
	)

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		shift, err = s.GetShift(ctx, shiftID)
		if err != nil {
			return err
		}
		if shift.AssignedTo == nil {
			return fmt.Errorf("shift %d has no assignee: %w", shiftID, schedule.ErrInvalidState)
		}

		reporter, err := s.GetStaff(ctx, reporterID)
		if err != nil {
			return err
		}
		if reporter.Role != schedule.RoleAdmin && !shift.AssignedToStaff(reporterID) {
			return fmt.Errorf("shift %d is not yours to report: %w", shiftID, schedule.ErrNotAuthorized)
		}

		absent, err = s.GetStaff(ctx, *shift.AssignedTo)
		if err != nil {
			return err
		}

		absence = &schedule.Absence{
			ShiftID:    shiftID,
			StaffID:    absent.ID,
			ReportedBy: reporterID,
			Reason:     reason,
		}
		return s.CreateAbsence(ctx, absence)
	})
	if err != nil {
		return nil, err
	}

	svc.notifyAdmins(ctx, notify.KindAbsence, notify.EmergencyAbsence(absent.FullName, shift))

	return absence, nil
}
