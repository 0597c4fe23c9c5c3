// Package store provides an in-memory Store implementation for tests/dev.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	nextID   int64
	shifts   map[schedule.ShiftID]schedule.Shift
	staff    map[schedule.StaffID]schedule.Staff
	requests map[schedule.ShiftRequestID]schedule.ShiftRequest
	trades   map[schedule.TradeRequestID]schedule.TradeRequest
	timeOff  map[schedule.TimeOffRequestID]schedule.TimeOffRequest
	absences map[schedule.AbsenceID]schedule.Absence
	notices  []schedule.Notification
}

func NewMemory() *Memory {
	return &Memory{
		nextID:   1,
		shifts:   make(map[schedule.ShiftID]schedule.Shift),
		staff:    make(map[schedule.StaffID]schedule.Staff),
		requests: make(map[schedule.ShiftRequestID]schedule.ShiftRequest),
		trades:   make(map[schedule.TradeRequestID]schedule.TradeRequest),
		timeOff:  make(map[schedule.TimeOffRequestID]schedule.TimeOffRequest),
		absences: make(map[schedule.AbsenceID]schedule.Absence),
	}
}

func (m *Memory) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

// =============================================================================
// SHIFTS
// =============================================================================

func (m *Memory) GetShift(_ context.Context, id schedule.ShiftID) (*schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shifts[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return &s, nil
}

func (m *Memory) ShiftAt(_ context.Context, date schedule.Date, shiftType schedule.ShiftType) (*schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.shifts {
		if s.Date.Equal(date) && s.Type == shiftType {
			s := s
			return &s, nil
		}
	}
	return nil, schedule.ErrNotFound
}

func (m *Memory) ShiftsInRange(_ context.Context, from, to schedule.Date) ([]schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.Shift
	for _, s := range m.shifts {
		if s.Date.AfterOrEqual(from) && s.Date.BeforeOrEqual(to) {
			result = append(result, s)
		}
	}
	sortShifts(result)
	return result, nil
}

func (m *Memory) ShiftsForStaff(_ context.Context, staffID schedule.StaffID, from, to schedule.Date) ([]schedule.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.Shift
	for _, s := range m.shifts {
		if s.AssignedToStaff(staffID) && s.Date.AfterOrEqual(from) && s.Date.BeforeOrEqual(to) {
			result = append(result, s)
		}
	}
	sortShifts(result)
	return result, nil
}

func (m *Memory) CreateShift(_ context.Context, s *schedule.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.shifts {
		if existing.Date.Equal(s.Date) && existing.Type == s.Type {
			return schedule.ErrDuplicateShift
		}
	}
	s.ID = schedule.ShiftID(m.id())
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.shifts[s.ID] = *s
	return nil
}

func (m *Memory) UpdateShift(_ context.Context, s *schedule.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[s.ID]; !ok {
		return schedule.ErrNotFound
	}
	s.UpdatedAt = time.Now()
	m.shifts[s.ID] = *s
	return nil
}

func (m *Memory) DeleteShift(_ context.Context, id schedule.ShiftID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(m.shifts, id)
	return nil
}

func sortShifts(shifts []schedule.Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		if !shifts[i].Date.Equal(shifts[j].Date) {
			return shifts[i].Date.Before(shifts[j].Date)
		}
		return shifts[i].Type.DayOrder() < shifts[j].Type.DayOrder()
	})
}

// =============================================================================
// STAFF
// =============================================================================

func (m *Memory) GetStaff(_ context.Context, id schedule.StaffID) (*schedule.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.staff[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return &s, nil
}

func (m *Memory) GetStaffByUsername(_ context.Context, username string) (*schedule.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.staff {
		if s.Username == username {
			s := s
			return &s, nil
		}
	}
	return nil, schedule.ErrNotFound
}

func (m *Memory) ListStaff(_ context.Context, activeOnly bool) ([]schedule.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.Staff
	for _, s := range m.staff {
		if s.IsOpenPlaceholder() {
			continue
		}
		if activeOnly && !s.IsActive {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (m *Memory) ListAdmins(_ context.Context) ([]schedule.Staff, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.Staff
	for _, s := range m.staff {
		if s.Role == schedule.RoleAdmin && s.IsActive {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) CreateStaff(_ context.Context, s *schedule.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = schedule.StaffID(m.id())
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.staff[s.ID] = *s
	return nil
}

func (m *Memory) UpdateStaff(_ context.Context, s *schedule.Staff) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.staff[s.ID]; !ok {
		return schedule.ErrNotFound
	}
	s.UpdatedAt = time.Now()
	m.staff[s.ID] = *s
	return nil
}

// =============================================================================
// SHIFT REQUESTS
// =============================================================================

func (m *Memory) CreateShiftRequest(_ context.Context, r *schedule.ShiftRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = schedule.ShiftRequestID(m.id())
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	m.requests[r.ID] = *r
	return nil
}

func (m *Memory) GetShiftRequest(_ context.Context, id schedule.ShiftRequestID) (*schedule.ShiftRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return &r, nil
}

func (m *Memory) PendingShiftRequest(_ context.Context, shiftID schedule.ShiftID, requesterID schedule.StaffID) (*schedule.ShiftRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.requests {
		if r.ShiftID == shiftID && r.RequesterID == requesterID && r.Status == schedule.StatusPending {
			r := r
			return &r, nil
		}
	}
	return nil, schedule.ErrNotFound
}

func (m *Memory) UpdateShiftRequest(_ context.Context, r *schedule.ShiftRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.ID]; !ok {
		return schedule.ErrNotFound
	}
	r.UpdatedAt = time.Now()
	m.requests[r.ID] = *r
	return nil
}

func (m *Memory) ListShiftRequests(_ context.Context, requesterID *schedule.StaffID) ([]schedule.ShiftRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.ShiftRequest
	for _, r := range m.requests {
		if requesterID != nil && r.RequesterID != *requesterID {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// =============================================================================
// TRADE REQUESTS
// =============================================================================

func (m *Memory) CreateTradeRequest(_ context.Context, t *schedule.TradeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = schedule.TradeRequestID(m.id())
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	m.trades[t.ID] = *t
	return nil
}

func (m *Memory) GetTradeRequest(_ context.Context, id schedule.TradeRequestID) (*schedule.TradeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.trades[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return &t, nil
}

func (m *Memory) UpdateTradeRequest(_ context.Context, t *schedule.TradeRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trades[t.ID]; !ok {
		return schedule.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	m.trades[t.ID] = *t
	return nil
}

func (m *Memory) ListTradeRequests(_ context.Context, staffID *schedule.StaffID) ([]schedule.TradeRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.TradeRequest
	for _, t := range m.trades {
		if staffID != nil && t.RequesterID != *staffID && t.TargetID != *staffID {
			continue
		}
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// =============================================================================
// TIME OFF REQUESTS
// =============================================================================

func (m *Memory) CreateTimeOffRequest(_ context.Context, r *schedule.TimeOffRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = schedule.TimeOffRequestID(m.id())
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	m.timeOff[r.ID] = *r
	return nil
}

func (m *Memory) GetTimeOffRequest(_ context.Context, id schedule.TimeOffRequestID) (*schedule.TimeOffRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.timeOff[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return &r, nil
}

func (m *Memory) UpdateTimeOffRequest(_ context.Context, r *schedule.TimeOffRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.timeOff[r.ID]; !ok {
		return schedule.ErrNotFound
	}
	r.UpdatedAt = time.Now()
	m.timeOff[r.ID] = *r
	return nil
}

func (m *Memory) ListTimeOffRequests(_ context.Context, requesterID *schedule.StaffID) ([]schedule.TimeOffRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []schedule.TimeOffRequest
	for _, r := range m.timeOff {
		if requesterID != nil && r.RequesterID != *requesterID {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

// =============================================================================
// ABSENCES
// =============================================================================

func (m *Memory) CreateAbsence(_ context.Context, a *schedule.Absence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = schedule.AbsenceID(m.id())
	a.ReportedAt = time.Now()
	m.absences[a.ID] = *a
	return nil
}

func (m *Memory) CountRecentAbsences(_ context.Context, days int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cutoff := time.Now().AddDate(0, 0, -days)
	count := 0
	for _, a := range m.absences {
		if a.ReportedAt.After(cutoff) {
			count++
		}
	}
	return count, nil
}

// =============================================================================
// DASHBOARD COUNTS
// =============================================================================

func (m *Memory) CountPendingShiftRequests(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.requests {
		if r.Status == schedule.StatusPending {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CountFinalizableTrades(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, t := range m.trades {
		if t.Finalizable() {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CountPendingTimeOff(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.timeOff {
		if r.Status == schedule.StatusPending {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CountPendingShiftRequestsFor(_ context.Context, staffID schedule.StaffID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, r := range m.requests {
		if r.RequesterID == staffID && r.Status == schedule.StatusPending {
			count++
		}
	}
	return count, nil
}

// =============================================================================
// NOTIFICATION LOG
// =============================================================================

func (m *Memory) LogNotification(_ context.Context, n *schedule.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = m.id()
	n.CreatedAt = time.Now()
	m.notices = append(m.notices, *n)
	return nil
}

// Notifications returns a copy of the log, oldest first. Test helper.
func (m *Memory) Notifications() []schedule.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schedule.Notification, len(m.notices))
	copy(out, m.notices)
	return out
}

// =============================================================================
// TRANSACTIONS - Snapshot + rollback on error
// =============================================================================

// WithTx executes fn against the store. For the memory store, atomicity is
// simulated with a full snapshot restored if fn returns an error.
func (m *Memory) WithTx(_ context.Context, fn func(schedule.Store) error) error {
	m.mu.Lock()
	snap := m.snapshot()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.restore(snap)
		m.mu.Unlock()
		return err
	}
	return nil
}

type memorySnapshot struct {
	nextID   int64
	shifts   map[schedule.ShiftID]schedule.Shift
	staff    map[schedule.StaffID]schedule.Staff
	requests map[schedule.ShiftRequestID]schedule.ShiftRequest
	trades   map[schedule.TradeRequestID]schedule.TradeRequest
	timeOff  map[schedule.TimeOffRequestID]schedule.TimeOffRequest
	absences map[schedule.AbsenceID]schedule.Absence
	notices  []schedule.Notification
}

func (m *Memory) snapshot() memorySnapshot {
	snap := memorySnapshot{
		nextID:   m.nextID,
		shifts:   make(map[schedule.ShiftID]schedule.Shift, len(m.shifts)),
		staff:    make(map[schedule.StaffID]schedule.Staff, len(m.staff)),
		requests: make(map[schedule.ShiftRequestID]schedule.ShiftRequest, len(m.requests)),
		trades:   make(map[schedule.TradeRequestID]schedule.TradeRequest, len(m.trades)),
		timeOff:  make(map[schedule.TimeOffRequestID]schedule.TimeOffRequest, len(m.timeOff)),
		absences: make(map[schedule.AbsenceID]schedule.Absence, len(m.absences)),
		notices:  append([]schedule.Notification{}, m.notices...),
	}
	for k, v := range m.shifts {
		snap.shifts[k] = v
	}
	for k, v := range m.staff {
		snap.staff[k] = v
	}
	for k, v := range m.requests {
		snap.requests[k] = v
	}
	for k, v := range m.trades {
		snap.trades[k] = v
	}
	for k, v := range m.timeOff {
		snap.timeOff[k] = v
	}
	for k, v := range m.absences {
		snap.absences[k] = v
	}
	return snap
}

func (m *Memory) restore(snap memorySnapshot) {
	m.nextID = snap.nextID
	m.shifts = snap.shifts
	m.staff = snap.staff
	m.requests = snap.requests
	m.trades = snap.trades
	m.timeOff = snap.timeOff
	m.absences = snap.absences
	m.notices = snap.notices
}
