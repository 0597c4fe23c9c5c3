package notify

import (
	"fmt"

	"github.com/warp/shift-engine/schedule"
)

// Notification kinds, recorded in the notification log.
const (
	KindShiftAssigned   = "shift_assigned"
	KindRequestReceived = "shift_request"
	KindRequestApproved = "request_approved"
	KindRequestDenied   = "request_denied"
	KindTradeReceived   = "trade_request"
	KindTradeSent       = "trade_sent"
	KindTradeApproved   = "trade_approved"
	KindTradeDenied     = "trade_denied"
	KindTradeFinalized  = "trade_finalized"
	KindTimeOffApproved = "time_off_approved"
	KindTimeOffDenied   = "time_off_denied"
	KindAbsence         = "emergency_absence"
)

// =============================================================================
// MESSAGE TEMPLATES - Slack mrkdwn
// =============================================================================

func slot(date schedule.Date, t schedule.ShiftType) string {
	return fmt.Sprintf("%s (%s) · %s, %s", date.Format(), date.DayName(), t.Label(), t.TimeRange())
}

func withNote(msg, label, note string) string {
	if note == "" {
		return msg
	}
	return msg + fmt.Sprintf("\n%s: %s", label, note)
}

func ShiftAssigned(date schedule.Date, t schedule.ShiftType) string {
	return fmt.Sprintf("*New shift assigned*\nYou have been assigned:\n%s", slot(date, t))
}

func ShiftRequestReceived(requesterName string, date schedule.Date, t schedule.ShiftType) string {
	return fmt.Sprintf("*New open shift request*\n%s has requested:\n%s\nLog in to approve or deny.",
		requesterName, slot(date, t))
}

func ShiftRequestApproved(date schedule.Date, t schedule.ShiftType, note string) string {
	msg := fmt.Sprintf("*Shift request approved*\nThe shift is now on your schedule:\n%s", slot(date, t))
	return withNote(msg, "Note", note)
}

func ShiftRequestDenied(date schedule.Date, t schedule.ShiftType, note string) string {
	msg := fmt.Sprintf("*Shift request denied*\nYour request for %s was not approved.", slot(date, t))
	return withNote(msg, "Note", note)
}

func TradeReceived(requesterName string, give, get *schedule.Shift) string {
	return fmt.Sprintf("*Shift swap request received*\n%s proposes a swap.\nThey give you: %s\nYou give them: %s\nLog in to accept or decline.",
		requesterName, slot(give.Date, give.Type), slot(get.Date, get.Type))
}

func TradeSent(targetName string, give, get *schedule.Shift) string {
	return fmt.Sprintf("*Shift swap request sent*\nYou proposed a swap with %s.\nYou give: %s\nYou receive: %s\nYou will be notified when they respond.",
		targetName, slot(give.Date, give.Type), slot(get.Date, get.Type))
}

func TradeProposedAdmin(requesterName, targetName string, reqShift, tgtShift *schedule.Shift) string {
	return fmt.Sprintf("*New shift swap request*\n%s: %s\n%s: %s\nAwaiting staff approval before admin action is needed.",
		requesterName, slot(reqShift.Date, reqShift.Type), targetName, slot(tgtShift.Date, tgtShift.Type))
}

func TradeApprovedByPartner(partnerName string, incoming *schedule.Shift) string {
	return fmt.Sprintf("*Trade approved by partner*\n%s approved your swap request. Waiting for admin final approval.\nYou'll get: %s",
		partnerName, slot(incoming.Date, incoming.Type))
}

func TradeDeniedByPartner(partnerName, note string) string {
	msg := fmt.Sprintf("*Trade request denied*\n%s declined your swap request.", partnerName)
	return withNote(msg, "Reason", note)
}

func TradeFinalized(newShift *schedule.Shift, note string) string {
	msg := fmt.Sprintf("*Trade finalized*\nAdmin approved the swap. Your new shift:\n%s", slot(newShift.Date, newShift.Type))
	return withNote(msg, "Admin note", note)
}

func TimeOffApproved(r *schedule.TimeOffRequest, shift *schedule.Shift, note string) string {
	var span string
	switch {
	case shift != nil:
		span = slot(shift.Date, shift.Type)
	case r.StartDate != nil && r.EndDate != nil && !r.EndDate.Equal(*r.StartDate):
		span = r.StartDate.Format() + " - " + r.EndDate.Format()
	case r.StartDate != nil:
		span = r.StartDate.Format()
	}
	msg := fmt.Sprintf("*Time off approved*\nYour time-off request has been approved:\n%s", span)
	return withNote(msg, "Note", note)
}

func TimeOffDenied(r *schedule.TimeOffRequest, note string) string {
	msg := "*Time off request denied*\nYour time-off request was not approved."
	return withNote(msg, "Reason", note)
}

func EmergencyAbsence(staffName string, shift *schedule.Shift) string {
	return fmt.Sprintf("*Emergency absence reported*\n%s cannot make their shift:\n%s\nURGENT: coverage needed.",
		staffName, slot(shift.Date, shift.Type))
}
