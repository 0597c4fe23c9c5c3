/*
request_handlers.go - Exchange flow endpoints

PURPOSE:
  Open-shift requests, trade requests, time-off requests, absence reports,
  and the dashboard. Thin HTTP shims over exchange.Service; all rules live
  there.

VISIBILITY:
  List endpoints are scoped: admins see everything, staff see their own
  items (for trades, anything they are a party to).
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/warp/shift-engine/exchange"
	"github.com/warp/shift-engine/schedule"
)

// scopeFor returns the list filter for the caller: nil (all) for admins,
// their own id otherwise.
func scopeFor(r *http.Request) *schedule.StaffID {
	identity := caller(r)
	if identity.IsAdmin() {
		return nil
	}
	id := identity.StaffID
	return &id
}

// =============================================================================
// SHIFT REQUESTS
// =============================================================================

func (h *Handler) ListShiftRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListShiftRequests(r.Context(), scopeFor(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]ShiftRequestDTO, len(requests))
	for i := range requests {
		dtos[i] = toShiftRequestDTO(&requests[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateShiftRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	request, err := h.Exchange.CreateShiftRequest(r.Context(), caller(r).StaffID, schedule.ShiftID(req.ShiftID))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftRequestDTO(request))
}

func (h *Handler) ApproveShiftRequest(w http.ResponseWriter, r *http.Request) {
	h.decideShiftRequest(w, r, true)
}

func (h *Handler) DenyShiftRequest(w http.ResponseWriter, r *http.Request) {
	h.decideShiftRequest(w, r, false)
}

func (h *Handler) decideShiftRequest(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id", err)
		return
	}
	note := decisionNote(r)

	var request *schedule.ShiftRequest
	if approve {
		request, err = h.Exchange.ApproveShiftRequest(r.Context(), caller(r).StaffID, schedule.ShiftRequestID(id), note)
	} else {
		request, err = h.Exchange.DenyShiftRequest(r.Context(), caller(r).StaffID, schedule.ShiftRequestID(id), note)
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftRequestDTO(request))
}

// =============================================================================
// TRADE REQUESTS
// =============================================================================

func (h *Handler) ListTradeRequests(w http.ResponseWriter, r *http.Request) {
	trades, err := h.Store.ListTradeRequests(r.Context(), scopeFor(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]TradeRequestDTO, len(trades))
	for i := range trades {
		dtos[i] = toTradeDTO(&trades[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTradeRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	trade, err := h.Exchange.ProposeTrade(r.Context(), caller(r).StaffID,
		schedule.ShiftID(req.RequesterShiftID), schedule.ShiftID(req.TargetShiftID), req.Note)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTradeDTO(trade))
}

func (h *Handler) ApproveTrade(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid trade id", err)
		return
	}

	trade, err := h.Exchange.ApproveTradeAsTarget(r.Context(), caller(r).StaffID,
		schedule.TradeRequestID(id), decisionNote(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTradeDTO(trade))
}

func (h *Handler) DenyTrade(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid trade id", err)
		return
	}

	trade, err := h.Exchange.DenyTradeAsTarget(r.Context(), caller(r).StaffID,
		schedule.TradeRequestID(id), decisionNote(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTradeDTO(trade))
}

func (h *Handler) FinalizeTrade(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid trade id", err)
		return
	}

	trade, err := h.Exchange.FinalizeTrade(r.Context(), caller(r).StaffID,
		schedule.TradeRequestID(id), decisionNote(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTradeDTO(trade))
}

// =============================================================================
// TIME OFF
// =============================================================================

func (h *Handler) ListTimeOffRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.Store.ListTimeOffRequests(r.Context(), scopeFor(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]TimeOffRequestDTO, len(requests))
	for i := range requests {
		dtos[i] = toTimeOffDTO(&requests[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateTimeOffRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	params := exchange.TimeOffParams{
		Type:   schedule.TimeOffType(req.Type),
		Reason: req.Reason,
	}
	if req.ShiftID != nil {
		id := schedule.ShiftID(*req.ShiftID)
		params.ShiftID = &id
	}
	if req.StartDate != "" {
		d, err := schedule.ParseDate(req.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date", err)
			return
		}
		params.StartDate = &d
	}
	if req.EndDate != "" {
		d, err := schedule.ParseDate(req.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		params.EndDate = &d
	}

	request, err := h.Exchange.CreateTimeOffRequest(r.Context(), caller(r).StaffID, params)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTimeOffDTO(request))
}

func (h *Handler) ApproveTimeOff(w http.ResponseWriter, r *http.Request) {
	h.decideTimeOff(w, r, true)
}

func (h *Handler) DenyTimeOff(w http.ResponseWriter, r *http.Request) {
	h.decideTimeOff(w, r, false)
}

func (h *Handler) decideTimeOff(w http.ResponseWriter, r *http.Request, approve bool) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request id", err)
		return
	}
	note := decisionNote(r)

	var request *schedule.TimeOffRequest
	if approve {
		request, err = h.Exchange.ApproveTimeOff(r.Context(), caller(r).StaffID, schedule.TimeOffRequestID(id), note)
	} else {
		request, err = h.Exchange.DenyTimeOff(r.Context(), caller(r).StaffID, schedule.TimeOffRequestID(id), note)
	}
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTimeOffDTO(request))
}

// =============================================================================
// ABSENCES
// =============================================================================

func (h *Handler) ReportAbsence(w http.ResponseWriter, r *http.Request) {
	var req ReportAbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	absence, err := h.Exchange.ReportAbsence(r.Context(), caller(r).StaffID,
		schedule.ShiftID(req.ShiftID), req.Reason)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAbsenceDTO(absence))
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard is role-dependent: admins get the action-needed counts, staff
// get their personal summary.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	identity := caller(r)

	if identity.IsAdmin() {
		counts, err := h.Exchange.AdminCounts(r.Context())
		if err != nil {
			h.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, AdminDashboardDTO{
			PendingShiftRequests: counts.PendingShiftRequests,
			FinalizableTrades:    counts.FinalizableTrades,
			PendingTimeOff:       counts.PendingTimeOff,
			RecentAbsences:       counts.RecentAbsences,
		})
		return
	}

	summary, err := h.Exchange.StaffSummary(r.Context(), identity.StaffID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	shifts := make([]ShiftDTO, len(summary.UpcomingShifts))
	for i := range summary.UpcomingShifts {
		shifts[i] = toShiftDTO(&summary.UpcomingShifts[i])
	}
	writeJSON(w, http.StatusOK, StaffDashboardDTO{
		UpcomingShifts:  shifts,
		WeeklyHours:     summary.WeeklyHours.StringFixed(1),
		WeeklyCap:       summary.WeeklyCap.StringFixed(1),
		HoursStatus:     summary.HoursStatus,
		PendingRequests: summary.PendingRequests,
	})
}

// decisionNote reads the optional note body; an empty or absent body is fine.
func decisionNote(r *http.Request) string {
	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ""
	}
	return req.Note
}
