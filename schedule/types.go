/*
Package schedule provides the core shift calendar domain.

PURPOSE:
  This package contains the data model and the hours-accounting engine for
  the care-home roster: shift records, staff records, the request/trade
  entities, pay-period math, and the 40-hour weekly cap check.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: one slot on the calendar (date + shift type + assignee)
  - Staff: a roster member; the "_open" pseudo-user stands in for "no one"
  - ShiftRequest: a bid on an open shift
  - TradeRequest: a proposed swap of two assigned shifts
  - Role: the two real roles plus the system pseudo-role

DESIGN PRINCIPLES:
  1. Precision: all hour quantities use decimal.Decimal, never float64
  2. Type Safety: strong typing for IDs prevents mixing shift/staff IDs
  3. Explicit state: request statuses are enumerated, not free-form strings

SEE ALSO:
  - hours.go: hour values, pay periods, running totals, cap check
  - errors.go: failure taxonomy for all state transitions
  - store.go: persistence contracts
*/
package schedule

import (
	"time"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ShiftID int64
type StaffID int64
type ShiftRequestID int64
type TradeRequestID int64
type TimeOffRequestID int64
type AbsenceID int64

// =============================================================================
// SHIFT TYPE - The three fixed shift templates
// =============================================================================

type ShiftType string

const (
	ShiftMorning   ShiftType = "morning"   // 7:00 AM - 3:00 PM
	ShiftAfternoon ShiftType = "afternoon" // 3:00 PM - 7:00 PM
	ShiftOvernight ShiftType = "overnight" // 7:00 PM - 7:00 AM next day
)

// ShiftTypes lists the templates in day order. RunningTotals and list
// endpoints rely on this ordering as the within-day tie-break.
var ShiftTypes = []ShiftType{ShiftMorning, ShiftAfternoon, ShiftOvernight}

func (t ShiftType) Valid() bool {
	switch t {
	case ShiftMorning, ShiftAfternoon, ShiftOvernight:
		return true
	}
	return false
}

// DayOrder returns the within-day sort position (morning=1 .. overnight=3).
// Unknown types sort last.
func (t ShiftType) DayOrder() int {
	switch t {
	case ShiftMorning:
		return 1
	case ShiftAfternoon:
		return 2
	case ShiftOvernight:
		return 3
	}
	return 4
}

func (t ShiftType) Label() string {
	switch t {
	case ShiftMorning:
		return "Morning"
	case ShiftAfternoon:
		return "Afternoon"
	case ShiftOvernight:
		return "Overnight"
	}
	return string(t)
}

// TimeRange returns the human-readable clock span for notifications.
func (t ShiftType) TimeRange() string {
	switch t {
	case ShiftMorning:
		return "7:00 AM - 3:00 PM"
	case ShiftAfternoon:
		return "3:00 PM - 7:00 PM"
	case ShiftOvernight:
		return "7:00 PM - 7:00 AM"
	}
	return ""
}

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleStaff  Role = "staff"
	RoleAdmin  Role = "admin"
	RoleSystem Role = "system" // reserved for the "_open" placeholder only
)

func (r Role) Valid() bool {
	return r == RoleStaff || r == RoleAdmin || r == RoleSystem
}

// OpenShiftUsername is the reserved username of the pseudo-staff record that
// represents "no one". It must never be assignable or login-capable.
const OpenShiftUsername = "_open"

// HouseManagerTitle is the job title that exempts a staff member from the
// weekly hour cap. Matched exactly.
const HouseManagerTitle = "House Manager"

// =============================================================================
// SHIFT - One slot on the calendar
// =============================================================================

// Shift is a single slot on the calendar. At most one shift exists per
// (Date, Type) pair.
//
// Invariant: IsOpen == true implies AssignedTo == nil. The reverse is
// expected but tolerated transiently during multi-step updates.
type Shift struct {
	ID            ShiftID
	Date          Date
	Type          ShiftType
	AssignedTo    *StaffID // nil when open or unassigned
	IsOpen        bool     // true iff unassigned and biddable
	IsPreliminary bool     // informational only
	Notes         string

	CreatedBy StaffID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignedToStaff reports whether the shift is currently assigned to id.
func (s *Shift) AssignedToStaff(id StaffID) bool {
	return s.AssignedTo != nil && *s.AssignedTo == id
}

// =============================================================================
// STAFF
// =============================================================================

type Staff struct {
	ID       StaffID
	Username string
	FullName string
	Role     Role
	JobTitle string

	// ChatHandle is the chat-bot address used by the notification sink.
	// Empty means the member is unreachable; delivery is skipped silently.
	ChatHandle string

	IsActive           bool
	MustChangePassword bool
	PasswordHash       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCapExempt reports whether the weekly cap does not apply to this member.
func (s *Staff) IsCapExempt() bool {
	return s.JobTitle == HouseManagerTitle
}

// IsOpenPlaceholder reports whether this is the reserved "_open" pseudo-user.
func (s *Staff) IsOpenPlaceholder() bool {
	return s.Username == OpenShiftUsername || s.Role == RoleSystem
}

// =============================================================================
// REQUEST STATUS - Shared by shift, trade, and time-off requests
// =============================================================================

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusDenied   RequestStatus = "denied"
)

// Terminal reports whether the status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusDenied
}

// =============================================================================
// SHIFT REQUEST - A bid on an open shift
// =============================================================================

// ShiftRequest is a staff member's bid on an open shift. One pending request
// per (shift, requester) pair; terminal once approved or denied.
type ShiftRequest struct {
	ID          ShiftRequestID
	ShiftID     ShiftID
	RequesterID StaffID
	Status      RequestStatus
	AdminNote   string
	ApprovedBy  *StaffID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// =============================================================================
// TRADE REQUEST - A proposed swap of two assigned shifts
// =============================================================================

// TradeRequest proposes swapping RequesterShiftID (held by Requester) for
// TargetShiftID (held by Target). RequesterApproved is set at creation; the
// trade becomes finalizable once TargetApproved is also set. Terminal once
// Status leaves pending.
type TradeRequest struct {
	ID              TradeRequestID
	RequesterShift  ShiftID
	TargetShift     ShiftID
	RequesterID     StaffID
	TargetID        StaffID
	RequesterNote   string
	TargetNote      string
	AdminNote       string
	RequesterApproved bool
	TargetApproved    bool
	AdminApproved     bool
	Status          RequestStatus
	ApprovedBy      *StaffID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Finalizable reports whether an admin may finalize the trade.
func (tr *TradeRequest) Finalizable() bool {
	return tr.Status == StatusPending && tr.RequesterApproved && tr.TargetApproved
}

// =============================================================================
// TIME OFF REQUEST
// =============================================================================

type TimeOffType string

const (
	TimeOffAssignedShift  TimeOffType = "assigned_shift"  // give back an assigned shift
	TimeOffFutureVacation TimeOffType = "future_vacation" // block out future dates
)

func (t TimeOffType) Valid() bool {
	return t == TimeOffAssignedShift || t == TimeOffFutureVacation
}

// TimeOffRequest asks to be released from an assigned shift, or to block out
// a future date range before shifts are generated. Approving an
// assigned_shift request reopens the shift.
type TimeOffRequest struct {
	ID          TimeOffRequestID
	RequesterID StaffID
	Type        TimeOffType
	ShiftID     *ShiftID // set for assigned_shift
	StartDate   *Date    // set for future_vacation
	EndDate     *Date
	Reason      string
	Status      RequestStatus
	AdminNote   string
	ApprovedBy  *StaffID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// =============================================================================
// ABSENCE - Emergency call-out against an assigned shift
// =============================================================================

type Absence struct {
	ID         AbsenceID
	ShiftID    ShiftID
	StaffID    StaffID // the assignee who is absent
	ReportedBy StaffID
	Reason     string
	ReportedAt time.Time
}

// =============================================================================
// NOTIFICATION LOG ENTRY
// =============================================================================

// Notification records a delivered chat message for audit. Only successful
// deliveries are logged.
type Notification struct {
	ID        int64
	StaffID   StaffID
	Kind      string
	Message   string
	SentVia   string
	CreatedAt time.Time
}
