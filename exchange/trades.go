/*
trades.go - Trade request lifecycle

STATES:
  pending -> approved | denied (terminal)

  Within pending, two independent approvals advance: the requester's
  (implicit at proposal) and the target's. An admin finalizes only once
  both hold.

FLOW:
  1. Propose: requester must hold their shift; target shift must be
     assigned (the target party is derived from it, never chosen).
     Both parties are cap-checked against their POST-trade state: each
     side's check uses the incoming shift's date/type with the outgoing
     shift excluded from the current total.
  2. Target approve/deny: only the stored target may act.
  3. Admin finalize: re-runs both cap checks against current shift state.
     If the schedule drifted since proposal and either side would now
     exceed, the finalize fails and the trade STAYS pending for retry.
     On success the two assignments swap as a single transaction.
*/
package exchange

import (
	"context"
	"fmt"

	"github.com/warp/shift-engine/notify"
	"github.com/warp/shift-engine/schedule"
)

// ProposeTrade creates a trade request offering requesterShift for
// targetShift. The target staff member is the current assignee of
// targetShift.
func (svc *Service) ProposeTrade(ctx context.Context, requesterID schedule.StaffID, requesterShiftID, targetShiftID schedule.ShiftID, note string) (*schedule.TradeRequest, error) {
	var (
		trade      *schedule.TradeRequest
		myShift    *schedule.Shift
		theirShift *schedule.Shift
		requester  *schedule.Staff
		target     *schedule.Staff
	)

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		myShift, err = s.GetShift(ctx, requesterShiftID)
		if err != nil {
			return err
		}
		theirShift, err = s.GetShift(ctx, targetShiftID)
		if err != nil {
			return err
		}

		if !myShift.AssignedToStaff(requesterID) {
			return fmt.Errorf("you are not assigned to shift %d: %w", requesterShiftID, schedule.ErrNotAuthorized)
		}
		if theirShift.AssignedTo == nil {
			return fmt.Errorf("target shift %d is not assigned: %w", targetShiftID, schedule.ErrInvalidState)
		}

		requester, err = s.GetStaff(ctx, requesterID)
		if err != nil {
			return err
		}
		target, err = s.GetStaff(ctx, *theirShift.AssignedTo)
		if err != nil {
			return err
		}

		// Requester gives myShift away and gains theirShift.
		requesterCheck, err := svc.checkCap(ctx, s, requester, theirShift.Date, theirShift.Type, requesterShiftID)
		if err != nil {
			return err
		}
		if requesterCheck.WouldExceed {
			return &schedule.CapExceededError{StaffID: requesterID, Party: schedule.PartyRequester, Check: requesterCheck}
		}

		// Target gives theirShift away and gains myShift.
		targetCheck, err := svc.checkCap(ctx, s, target, myShift.Date, myShift.Type, targetShiftID)
		if err != nil {
			return err
		}
		if targetCheck.WouldExceed {
			return &schedule.CapExceededError{StaffID: target.ID, Party: schedule.PartyTarget, Check: targetCheck}
		}

		trade = &schedule.TradeRequest{
			RequesterShift:    requesterShiftID,
			TargetShift:       targetShiftID,
			RequesterID:       requesterID,
			TargetID:          target.ID,
			RequesterNote:     note,
			RequesterApproved: true, // proposing is approving
			Status:            schedule.StatusPending,
		}
		return s.CreateTradeRequest(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	svc.notifier.Notify(requester, notify.KindTradeSent,
		notify.TradeSent(target.FullName, myShift, theirShift))
	svc.notifier.Notify(target, notify.KindTradeReceived,
		notify.TradeReceived(requester.FullName, myShift, theirShift))
	svc.notifyAdmins(ctx, notify.KindTradeReceived,
		notify.TradeProposedAdmin(requester.FullName, target.FullName, myShift, theirShift))

	return trade, nil
}

// ApproveTradeAsTarget records the target's approval; the trade then waits
// for admin finalization. Only the stored target may act.
func (svc *Service) ApproveTradeAsTarget(ctx context.Context, actorID schedule.StaffID, tradeID schedule.TradeRequestID, note string) (*schedule.TradeRequest, error) {
	var trade *schedule.TradeRequest

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		trade, err = s.GetTradeRequest(ctx, tradeID)
		if err != nil {
			return err
		}
		if trade.TargetID != actorID {
			return fmt.Errorf("trade %d: %w", tradeID, schedule.ErrNotAuthorized)
		}
		if trade.Status != schedule.StatusPending {
			return fmt.Errorf("trade %d is %s: %w", tradeID, trade.Status, schedule.ErrAlreadyProcessed)
		}

		trade.TargetApproved = true
		trade.TargetNote = note
		return s.UpdateTradeRequest(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	requester, rerr := svc.store.GetStaff(ctx, trade.RequesterID)
	target, terr := svc.store.GetStaff(ctx, trade.TargetID)
	incoming, serr := svc.store.GetShift(ctx, trade.TargetShift)
	if rerr == nil && terr == nil && serr == nil {
		svc.notifier.Notify(requester, notify.KindTradeApproved,
			notify.TradeApprovedByPartner(target.FullName, incoming))
	}

	return trade, nil
}

// DenyTradeAsTarget declines the trade on behalf of the target; terminal.
func (svc *Service) DenyTradeAsTarget(ctx context.Context, actorID schedule.StaffID, tradeID schedule.TradeRequestID, note string) (*schedule.TradeRequest, error) {
	var trade *schedule.TradeRequest

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		trade, err = s.GetTradeRequest(ctx, tradeID)
		if err != nil {
			return err
		}
		if trade.TargetID != actorID {
			return fmt.Errorf("trade %d: %w", tradeID, schedule.ErrNotAuthorized)
		}
		if trade.Status != schedule.StatusPending {
			return fmt.Errorf("trade %d is %s: %w", tradeID, trade.Status, schedule.ErrAlreadyProcessed)
		}

		trade.Status = schedule.StatusDenied
		trade.TargetNote = note
		return s.UpdateTradeRequest(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	requester, rerr := svc.store.GetStaff(ctx, trade.RequesterID)
	target, terr := svc.store.GetStaff(ctx, trade.TargetID)
	if rerr == nil && terr == nil {
		svc.notifier.Notify(requester, notify.KindTradeDenied,
			notify.TradeDeniedByPartner(target.FullName, note))
	}

	return trade, nil
}

// FinalizeTrade is the admin gate: requires the target's approval, re-runs
// both cap checks against current shift state, and swaps the two
// assignments atomically. A cap failure here leaves the trade pending so it
// can be retried after the schedule changes.
func (svc *Service) FinalizeTrade(ctx context.Context, adminID schedule.StaffID, tradeID schedule.TradeRequestID, note string) (*schedule.TradeRequest, error) {
	var (
		trade      *schedule.TradeRequest
		myShift    *schedule.Shift
		theirShift *schedule.Shift
	)

	err := svc.store.WithTx(ctx, func(s schedule.Store) error {
		var err error
		trade, err = s.GetTradeRequest(ctx, tradeID)
		if err != nil {
			return err
		}
		if trade.Status != schedule.StatusPending {
			return fmt.Errorf("trade %d is %s: %w", tradeID, trade.Status, schedule.ErrAlreadyProcessed)
		}
		if !trade.RequesterApproved || !trade.TargetApproved {
			return fmt.Errorf("trade %d: %w", tradeID, schedule.ErrIncompleteApprovals)
		}

		myShift, err = s.GetShift(ctx, trade.RequesterShift)
		if err != nil {
			return err
		}
		theirShift, err = s.GetShift(ctx, trade.TargetShift)
		if err != nil {
			return err
		}

		requester, err := s.GetStaff(ctx, trade.RequesterID)
		if err != nil {
			return err
		}
		target, err := s.GetStaff(ctx, trade.TargetID)
		if err != nil {
			return err
		}

		// Re-validate both sides against the shifts as they are NOW; other
		// assignments may have landed since the proposal.
		requesterCheck, err := svc.checkCap(ctx, s, requester, theirShift.Date, theirShift.Type, trade.RequesterShift)
		if err != nil {
			return err
		}
		if requesterCheck.WouldExceed {
			return &schedule.CapExceededError{StaffID: requester.ID, Party: schedule.PartyRequester, Check: requesterCheck}
		}

		targetCheck, err := svc.checkCap(ctx, s, target, myShift.Date, myShift.Type, trade.TargetShift)
		if err != nil {
			return err
		}
		if targetCheck.WouldExceed {
			return &schedule.CapExceededError{StaffID: target.ID, Party: schedule.PartyTarget, Check: targetCheck}
		}

		// Swap. Both updates commit together or not at all.
		requesterID, targetID := trade.RequesterID, trade.TargetID
		theirShift.AssignedTo = &requesterID
		if err := s.UpdateShift(ctx, theirShift); err != nil {
			return err
		}
		myShift.AssignedTo = &targetID
		if err := s.UpdateShift(ctx, myShift); err != nil {
			return err
		}

		trade.Status = schedule.StatusApproved
		trade.AdminApproved = true
		trade.AdminNote = note
		trade.ApprovedBy = &adminID
		return s.UpdateTradeRequest(ctx, trade)
	})
	if err != nil {
		return nil, err
	}

	requester, rerr := svc.store.GetStaff(ctx, trade.RequesterID)
	target, terr := svc.store.GetStaff(ctx, trade.TargetID)
	if rerr == nil {
		svc.notifier.Notify(requester, notify.KindTradeFinalized, notify.TradeFinalized(theirShift, note))
	}
	if terr == nil {
		svc.notifier.Notify(target, notify.KindTradeFinalized, notify.TradeFinalized(myShift, note))
	}

	return trade, nil
}
