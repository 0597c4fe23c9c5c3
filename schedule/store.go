/*
store.go - Persistence contracts for the shift calendar

PURPOSE:
  Defines the interface between the domain/exchange logic and the database.
  Implementations: store/sqlite (production) and schedule/store (in-memory,
  for tests and dev).

TRANSACTIONS:
  Every exchange state transition (assign, request create/approve/deny,
  trade propose/approve/finalize) runs inside WithTx so the cap check and
  the mutation commit together or not at all. An unisolated
  check-then-write would leave a double-booking window between the cap
  check and the assignment.

SEE ALSO:
  - schedule/store/memory.go: in-memory implementation
  - store/sqlite/sqlite.go: persistent implementation
*/
package schedule

import "context"

// =============================================================================
// STORE INTERFACES
// =============================================================================

// ShiftStore owns shift records.
type ShiftStore interface {
	GetShift(ctx context.Context, id ShiftID) (*Shift, error)
	// ShiftAt returns the shift for a (date, type) slot, or ErrNotFound.
	ShiftAt(ctx context.Context, date Date, shiftType ShiftType) (*Shift, error)
	// ShiftsInRange returns all shifts with Date in [from, to], assigned or
	// not, ordered by date then day order.
	ShiftsInRange(ctx context.Context, from, to Date) ([]Shift, error)
	// ShiftsForStaff returns shifts in [from, to] assigned to staffID.
	ShiftsForStaff(ctx context.Context, staffID StaffID, from, to Date) ([]Shift, error)
	CreateShift(ctx context.Context, s *Shift) error
	UpdateShift(ctx context.Context, s *Shift) error
	DeleteShift(ctx context.Context, id ShiftID) error
}

// StaffStore owns staff records.
type StaffStore interface {
	GetStaff(ctx context.Context, id StaffID) (*Staff, error)
	GetStaffByUsername(ctx context.Context, username string) (*Staff, error)
	// ListStaff returns real staff (never the "_open" placeholder). With
	// activeOnly, inactive and unapproved members are filtered out.
	ListStaff(ctx context.Context, activeOnly bool) ([]Staff, error)
	// ListAdmins returns active admin members, for notification fan-out.
	ListAdmins(ctx context.Context) ([]Staff, error)
	CreateStaff(ctx context.Context, s *Staff) error
	UpdateStaff(ctx context.Context, s *Staff) error
}

// RequestStore owns shift requests, trade requests, time-off requests, and
// absences.
type RequestStore interface {
	CreateShiftRequest(ctx context.Context, r *ShiftRequest) error
	GetShiftRequest(ctx context.Context, id ShiftRequestID) (*ShiftRequest, error)
	// PendingShiftRequest returns the pending request for (shift, requester),
	// or ErrNotFound.
	PendingShiftRequest(ctx context.Context, shiftID ShiftID, requesterID StaffID) (*ShiftRequest, error)
	UpdateShiftRequest(ctx context.Context, r *ShiftRequest) error
	// ListShiftRequests returns requests newest-first; a nil requester means
	// all requests (admin view).
	ListShiftRequests(ctx context.Context, requesterID *StaffID) ([]ShiftRequest, error)

	CreateTradeRequest(ctx context.Context, t *TradeRequest) error
	GetTradeRequest(ctx context.Context, id TradeRequestID) (*TradeRequest, error)
	UpdateTradeRequest(ctx context.Context, t *TradeRequest) error
	// ListTradeRequests returns trades newest-first; a nil staff means all
	// trades, otherwise trades where staff is requester or target.
	ListTradeRequests(ctx context.Context, staffID *StaffID) ([]TradeRequest, error)

	CreateTimeOffRequest(ctx context.Context, r *TimeOffRequest) error
	GetTimeOffRequest(ctx context.Context, id TimeOffRequestID) (*TimeOffRequest, error)
	UpdateTimeOffRequest(ctx context.Context, r *TimeOffRequest) error
	ListTimeOffRequests(ctx context.Context, requesterID *StaffID) ([]TimeOffRequest, error)

	CreateAbsence(ctx context.Context, a *Absence) error
	// CountRecentAbsences counts absences reported within the last n days.
	CountRecentAbsences(ctx context.Context, days int) (int, error)

	// Dashboard counts.
	CountPendingShiftRequests(ctx context.Context) (int, error)
	CountFinalizableTrades(ctx context.Context) (int, error)
	CountPendingTimeOff(ctx context.Context) (int, error)
	CountPendingShiftRequestsFor(ctx context.Context, staffID StaffID) (int, error)
}

// NotificationLog records delivered chat messages. Append-only.
type NotificationLog interface {
	LogNotification(ctx context.Context, n *Notification) error
}

// Store aggregates everything the exchange engine reads and writes.
type Store interface {
	ShiftStore
	StaffStore
	RequestStore
	NotificationLog
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with transaction support. fn runs against a view of
// the store whose writes commit together when fn returns nil, and roll back
// entirely when fn returns an error.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}
