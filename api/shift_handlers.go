/*
shift_handlers.go - Calendar endpoints

PURPOSE:
  The shift calendar: range listing with per-tile running hour totals,
  admin create/update/delete, and the read-only hours check used by the
  scheduling UI before committing an assignment.
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/warp/shift-engine/exchange"
	"github.com/warp/shift-engine/schedule"
)

// ListShifts returns shifts in [from, to] (defaults: the current pay period).
// Assigned tiles carry the assignee's cumulative pay-period hours so far.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	shifts, err := h.Store.ShiftsInRange(r.Context(), from, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	staff, err := h.Store.ListStaff(r.Context(), false)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	names := make(map[schedule.StaffID]string, len(staff))
	for i := range staff {
		names[staff[i].ID] = staff[i].FullName
	}

	// Running totals reset at each pay-period boundary inside the range.
	totals := make(map[schedule.TotalsKey]decimal.Decimal)
	for start := schedule.PayPeriodStart(from); start.BeforeOrEqual(to); start = start.AddDays(7) {
		for k, v := range schedule.RunningTotals(shifts, start) {
			totals[k] = v
		}
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i := range shifts {
		dto := toShiftDTO(&shifts[i])
		if shifts[i].AssignedTo != nil {
			dto.AssigneeName = names[*shifts[i].AssignedTo]
			key := schedule.TotalsKey{
				Date:    shifts[i].Date.String(),
				StaffID: *shifts[i].AssignedTo,
				Type:    shifts[i].Type,
			}
			if sum, ok := totals[key]; ok {
				dto.RunningHours = sum.StringFixed(1)
				dto.HoursStatus = schedule.HoursStatus(sum)
			}
		}
		dtos[i] = dto
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	params := exchange.CreateShiftParams{
		Date:          date,
		Type:          schedule.ShiftType(req.Type),
		IsOpen:        req.IsOpen,
		IsPreliminary: req.IsPreliminary,
		Notes:         req.Notes,
	}
	if req.AssignedTo != nil {
		id := schedule.StaffID(*req.AssignedTo)
		params.AssignedTo = &id
	}

	shift, err := h.Exchange.CreateShift(r.Context(), caller(r).StaffID, params)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toShiftDTO(shift))
}

func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift id", err)
		return
	}

	var req UpdateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	update := exchange.ShiftUpdate{
		ClearAssignee: req.ClearAssignee,
		IsOpen:        req.IsOpen,
		IsPreliminary: req.IsPreliminary,
		Notes:         req.Notes,
	}
	if req.AssignedTo != nil {
		sid := schedule.StaffID(*req.AssignedTo)
		update.AssignedTo = &sid
	}

	shift, err := h.Exchange.UpdateShift(r.Context(), schedule.ShiftID(id), update)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(shift))
}

func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift id", err)
		return
	}

	if err := h.Exchange.DeleteShift(r.Context(), schedule.ShiftID(id)); err != nil {
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HoursCheck evaluates the weekly cap for a prospective assignment without
// mutating anything. Query: staff_id, date, type, and optional exclude_shift.
func (h *Handler) HoursCheck(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	staffID, err := strconv.ParseInt(q.Get("staff_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid staff_id", err)
		return
	}
	date, err := schedule.ParseDate(q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	var exclude schedule.ShiftID
	if raw := q.Get("exclude_shift"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid exclude_shift", err)
			return
		}
		exclude = schedule.ShiftID(id)
	}

	check, err := h.Exchange.HoursCheck(r.Context(),
		schedule.StaffID(staffID), date, schedule.ShiftType(q.Get("type")), exclude)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toHoursCheckDTO(check))
}

// parseRange reads from/to query parameters, defaulting to the current pay
// period.
func parseRange(r *http.Request) (schedule.Date, schedule.Date, error) {
	period := schedule.PayPeriodFor(schedule.Today())
	from, to := period.Start, period.End

	if raw := r.URL.Query().Get("from"); raw != "" {
		d, err := schedule.ParseDate(raw)
		if err != nil {
			return from, to, err
		}
		from = d
		to = d.AddDays(6)
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		d, err := schedule.ParseDate(raw)
		if err != nil {
			return from, to, err
		}
		to = d
	}
	return from, to, nil
}
