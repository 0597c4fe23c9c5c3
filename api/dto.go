/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the API contract, decoupled from the domain model.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Done in handlers; DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: conversion helpers and usage
*/
package api

import (
	"time"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// AUTH
// =============================================================================

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token              string   `json:"token"`
	Staff              StaffDTO `json:"staff"`
	MustChangePassword bool     `json:"must_change_password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// =============================================================================
// STAFF
// =============================================================================

type StaffDTO struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	JobTitle   string `json:"job_title,omitempty"`
	ChatHandle string `json:"chat_handle,omitempty"`
	IsActive   bool   `json:"is_active"`
	CapExempt  bool   `json:"cap_exempt"`
}

type CreateStaffRequest struct {
	Username   string `json:"username"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
	JobTitle   string `json:"job_title"`
	ChatHandle string `json:"chat_handle"`
}

// CreateStaffResponse includes the generated one-time password; it is shown
// once and never retrievable again.
type CreateStaffResponse struct {
	Staff        StaffDTO `json:"staff"`
	TempPassword string   `json:"temp_password"`
}

type UpdateStaffRequest struct {
	FullName   *string `json:"full_name,omitempty"`
	Role       *string `json:"role,omitempty"`
	JobTitle   *string `json:"job_title,omitempty"`
	ChatHandle *string `json:"chat_handle,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

type ResetPasswordResponse struct {
	TempPassword string `json:"temp_password"`
}

// =============================================================================
// SHIFTS
// =============================================================================

type ShiftDTO struct {
	ID            int64  `json:"id"`
	Date          string `json:"date"`
	Type          string `json:"type"`
	AssignedTo    *int64 `json:"assigned_to,omitempty"`
	AssigneeName  string `json:"assignee_name,omitempty"`
	IsOpen        bool   `json:"is_open"`
	IsPreliminary bool   `json:"is_preliminary"`
	Notes         string `json:"notes,omitempty"`

	// RunningHours is the assignee's cumulative pay-period total after this
	// shift, e.g. "24.0". Empty for unassigned shifts.
	RunningHours string `json:"running_hours,omitempty"`
	HoursStatus  string `json:"hours_status,omitempty"`
}

type CreateShiftRequest struct {
	Date          string `json:"date"`
	Type          string `json:"type"`
	AssignedTo    *int64 `json:"assigned_to,omitempty"`
	IsOpen        bool   `json:"is_open"`
	IsPreliminary bool   `json:"is_preliminary"`
	Notes         string `json:"notes"`
}

type UpdateShiftRequest struct {
	AssignedTo    *int64  `json:"assigned_to,omitempty"`
	ClearAssignee bool    `json:"clear_assignee,omitempty"`
	IsOpen        *bool   `json:"is_open,omitempty"`
	IsPreliminary *bool   `json:"is_preliminary,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

type HoursCheckDTO struct {
	WouldExceed    bool   `json:"would_exceed"`
	CurrentHours   string `json:"current_hours"`
	ProjectedHours string `json:"projected_hours"`
	ShiftHours     string `json:"shift_hours"`
	IsExempt       bool   `json:"is_exempt"`
}

// =============================================================================
// SHIFT REQUESTS
// =============================================================================

type ShiftRequestDTO struct {
	ID          int64     `json:"id"`
	ShiftID     int64     `json:"shift_id"`
	RequesterID int64     `json:"requester_id"`
	Status      string    `json:"status"`
	AdminNote   string    `json:"admin_note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateShiftRequestRequest struct {
	ShiftID int64 `json:"shift_id"`
}

// DecisionRequest is the body for approve/deny/finalize endpoints.
type DecisionRequest struct {
	Note string `json:"note"`
}

// =============================================================================
// TRADE REQUESTS
// =============================================================================

type TradeRequestDTO struct {
	ID                int64     `json:"id"`
	RequesterShiftID  int64     `json:"requester_shift_id"`
	TargetShiftID     int64     `json:"target_shift_id"`
	RequesterID       int64     `json:"requester_id"`
	TargetID          int64     `json:"target_id"`
	RequesterNote     string    `json:"requester_note,omitempty"`
	TargetNote        string    `json:"target_note,omitempty"`
	AdminNote         string    `json:"admin_note,omitempty"`
	RequesterApproved bool      `json:"requester_approved"`
	TargetApproved    bool      `json:"target_approved"`
	AdminApproved     bool      `json:"admin_approved"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

type CreateTradeRequest struct {
	RequesterShiftID int64  `json:"requester_shift_id"`
	TargetShiftID    int64  `json:"target_shift_id"`
	Note             string `json:"note"`
}

// =============================================================================
// TIME OFF
// =============================================================================

type TimeOffRequestDTO struct {
	ID          int64     `json:"id"`
	RequesterID int64     `json:"requester_id"`
	Type        string    `json:"type"`
	ShiftID     *int64    `json:"shift_id,omitempty"`
	StartDate   string    `json:"start_date,omitempty"`
	EndDate     string    `json:"end_date,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Status      string    `json:"status"`
	AdminNote   string    `json:"admin_note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateTimeOffRequest struct {
	Type      string `json:"type"`
	ShiftID   *int64 `json:"shift_id,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Reason    string `json:"reason"`
}

// =============================================================================
// ABSENCES
// =============================================================================

type ReportAbsenceRequest struct {
	ShiftID int64  `json:"shift_id"`
	Reason  string `json:"reason"`
}

type AbsenceDTO struct {
	ID         int64     `json:"id"`
	ShiftID    int64     `json:"shift_id"`
	StaffID    int64     `json:"staff_id"`
	ReportedBy int64     `json:"reported_by"`
	Reason     string    `json:"reason,omitempty"`
	ReportedAt time.Time `json:"reported_at"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

type AdminDashboardDTO struct {
	PendingShiftRequests int `json:"pending_shift_requests"`
	FinalizableTrades    int `json:"finalizable_trades"`
	PendingTimeOff       int `json:"pending_time_off"`
	RecentAbsences       int `json:"recent_absences"`
}

type StaffDashboardDTO struct {
	UpcomingShifts  []ShiftDTO `json:"upcoming_shifts"`
	WeeklyHours     string     `json:"weekly_hours"`
	WeeklyCap       string     `json:"weekly_cap"`
	HoursStatus     string     `json:"hours_status"`
	PendingRequests int        `json:"pending_requests"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toStaffDTO(s *schedule.Staff) StaffDTO {
	return StaffDTO{
		ID:         int64(s.ID),
		Username:   s.Username,
		FullName:   s.FullName,
		Role:       string(s.Role),
		JobTitle:   s.JobTitle,
		ChatHandle: s.ChatHandle,
		IsActive:   s.IsActive,
		CapExempt:  s.IsCapExempt(),
	}
}

func toShiftDTO(s *schedule.Shift) ShiftDTO {
	dto := ShiftDTO{
		ID:            int64(s.ID),
		Date:          s.Date.String(),
		Type:          string(s.Type),
		IsOpen:        s.IsOpen,
		IsPreliminary: s.IsPreliminary,
		Notes:         s.Notes,
	}
	if s.AssignedTo != nil {
		id := int64(*s.AssignedTo)
		dto.AssignedTo = &id
	}
	return dto
}

func toShiftRequestDTO(r *schedule.ShiftRequest) ShiftRequestDTO {
	return ShiftRequestDTO{
		ID:          int64(r.ID),
		ShiftID:     int64(r.ShiftID),
		RequesterID: int64(r.RequesterID),
		Status:      string(r.Status),
		AdminNote:   r.AdminNote,
		CreatedAt:   r.CreatedAt,
	}
}

func toTradeDTO(t *schedule.TradeRequest) TradeRequestDTO {
	return TradeRequestDTO{
		ID:                int64(t.ID),
		RequesterShiftID:  int64(t.RequesterShift),
		TargetShiftID:     int64(t.TargetShift),
		RequesterID:       int64(t.RequesterID),
		TargetID:          int64(t.TargetID),
		RequesterNote:     t.RequesterNote,
		TargetNote:        t.TargetNote,
		AdminNote:         t.AdminNote,
		RequesterApproved: t.RequesterApproved,
		TargetApproved:    t.TargetApproved,
		AdminApproved:     t.AdminApproved,
		Status:            string(t.Status),
		CreatedAt:         t.CreatedAt,
	}
}

func toTimeOffDTO(r *schedule.TimeOffRequest) TimeOffRequestDTO {
	dto := TimeOffRequestDTO{
		ID:          int64(r.ID),
		RequesterID: int64(r.RequesterID),
		Type:        string(r.Type),
		Reason:      r.Reason,
		Status:      string(r.Status),
		AdminNote:   r.AdminNote,
		CreatedAt:   r.CreatedAt,
	}
	if r.ShiftID != nil {
		id := int64(*r.ShiftID)
		dto.ShiftID = &id
	}
	if r.StartDate != nil {
		dto.StartDate = r.StartDate.String()
	}
	if r.EndDate != nil {
		dto.EndDate = r.EndDate.String()
	}
	return dto
}

func toAbsenceDTO(a *schedule.Absence) AbsenceDTO {
	return AbsenceDTO{
		ID:         int64(a.ID),
		ShiftID:    int64(a.ShiftID),
		StaffID:    int64(a.StaffID),
		ReportedBy: int64(a.ReportedBy),
		Reason:     a.Reason,
		ReportedAt: a.ReportedAt,
	}
}
