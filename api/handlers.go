/*
handlers.go - HTTP handlers: shared plumbing, auth, and staff admin

PURPOSE:
  The Handler struct with its dependencies, the JSON/error helpers shared by
  every endpoint, and the auth and staff-management handlers. Calendar and
  request-flow handlers live in shift_handlers.go and request_handlers.go.

ERROR HANDLING:
  Domain errors map to HTTP status through their taxonomy:
  - 400: validation (invalid state, cap exceeded, duplicates, processed)
  - 401: missing/invalid session
  - 403: role or relationship failure
  - 404: stale identifiers
  - 500: everything else
  Cap failures additionally carry the hour computation so the client can
  explain the rejection.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: route wiring
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/shift-engine/auth"
	"github.com/warp/shift-engine/exchange"
	"github.com/warp/shift-engine/schedule"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    schedule.TxStore
	Exchange *exchange.Service
	Auth     *auth.Service
	Logger   zerolog.Logger
}

func NewHandler(store schedule.TxStore, ex *exchange.Service, authSvc *auth.Service, logger zerolog.Logger) *Handler {
	return &Handler{Store: store, Exchange: ex, Auth: authSvc, Logger: logger}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error   string         `json:"error"`
	Details *HoursCheckDTO `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := errorResponse{Error: msg}
	if err != nil {
		resp.Error = msg + ": " + err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps a domain error to its HTTP status.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var capErr *schedule.CapExceededError
	switch {
	case errors.As(err, &capErr):
		check := toHoursCheckDTO(capErr.Check)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: capErr.Error(), Details: &check})
	case errors.Is(err, schedule.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "Not authorized", err)
	case schedule.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case schedule.IsValidation(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		h.Logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
	}
}

func toHoursCheckDTO(c schedule.CapCheck) HoursCheckDTO {
	return HoursCheckDTO{
		WouldExceed:    c.WouldExceed,
		CurrentHours:   c.CurrentHours.StringFixed(1),
		ProjectedHours: c.ProjectedHours.StringFixed(1),
		ShiftHours:     c.ShiftHours.StringFixed(1),
		IsExempt:       c.IsExempt,
	}
}

// idParam parses the {id} URL parameter.
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// caller returns the authenticated identity; requireAuth guarantees presence.
func caller(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) || errors.Is(err, auth.ErrAccountDisabled) {
			writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
			return
		}
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:              result.Token,
		Staff:              toStaffDTO(result.Staff),
		MustChangePassword: result.MustChangePassword,
	})
}

// Logout exists for client symmetry. Tokens are stateless; the client
// discards it.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	staff, err := h.Store.GetStaff(r.Context(), caller(r).StaffID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStaffDTO(staff))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := h.Auth.ChangePassword(r.Context(), caller(r).StaffID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "Current password is incorrect", nil)
			return
		}
		h.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// STAFF HANDLERS
// =============================================================================

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") == ""
	staff, err := h.Store.ListStaff(r.Context(), activeOnly)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]StaffDTO, len(staff))
	for i := range staff {
		dtos[i] = toStaffDTO(&staff[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid staff id", err)
		return
	}

	staff, err := h.Store.GetStaff(r.Context(), schedule.StaffID(id))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStaffDTO(staff))
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Username == "" || req.FullName == "" {
		writeError(w, http.StatusBadRequest, "username and full_name are required", nil)
		return
	}
	if req.Username == schedule.OpenShiftUsername {
		writeError(w, http.StatusBadRequest, "username is reserved", nil)
		return
	}
	role := schedule.Role(req.Role)
	if role == "" {
		role = schedule.RoleStaff
	}
	if role != schedule.RoleStaff && role != schedule.RoleAdmin {
		writeError(w, http.StatusBadRequest, "role must be staff or admin", nil)
		return
	}

	tempPassword, err := auth.TempPassword()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	staff := &schedule.Staff{
		Username:           req.Username,
		FullName:           req.FullName,
		Role:               role,
		JobTitle:           req.JobTitle,
		ChatHandle:         req.ChatHandle,
		IsActive:           true,
		MustChangePassword: true,
		PasswordHash:       hash,
	}
	if err := h.Store.CreateStaff(r.Context(), staff); err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateStaffResponse{
		Staff:        toStaffDTO(staff),
		TempPassword: tempPassword,
	})
}

func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid staff id", err)
		return
	}

	var req UpdateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	staff, err := h.Store.GetStaff(r.Context(), schedule.StaffID(id))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if staff.IsOpenPlaceholder() {
		writeError(w, http.StatusBadRequest, "Cannot modify the open-shift placeholder", nil)
		return
	}

	if req.FullName != nil {
		staff.FullName = *req.FullName
	}
	if req.Role != nil {
		role := schedule.Role(*req.Role)
		if role != schedule.RoleStaff && role != schedule.RoleAdmin {
			writeError(w, http.StatusBadRequest, "role must be staff or admin", nil)
			return
		}
		staff.Role = role
	}
	if req.JobTitle != nil {
		staff.JobTitle = *req.JobTitle
	}
	if req.ChatHandle != nil {
		staff.ChatHandle = *req.ChatHandle
	}
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}

	if err := h.Store.UpdateStaff(r.Context(), staff); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStaffDTO(staff))
}

func (h *Handler) ResetStaffPassword(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid staff id", err)
		return
	}

	staff, err := h.Store.GetStaff(r.Context(), schedule.StaffID(id))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if staff.IsOpenPlaceholder() {
		writeError(w, http.StatusBadRequest, "Cannot reset the open-shift placeholder", nil)
		return
	}

	tempPassword, err := auth.TempPassword()
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	staff.PasswordHash = hash
	staff.MustChangePassword = true
	if err := h.Store.UpdateStaff(r.Context(), staff); err != nil {
		h.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ResetPasswordResponse{TempPassword: tempPassword})
}
