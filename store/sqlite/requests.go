package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/warp/shift-engine/schedule"
)

// =============================================================================
// SHIFT REQUESTS
// =============================================================================

const shiftRequestColumns = `id, shift_id, requester_id, status, admin_note, approved_by,
	created_at, updated_at`

func (q *queries) CreateShiftRequest(ctx context.Context, r *schedule.ShiftRequest) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO shift_requests (shift_id, requester_id, status, admin_note, approved_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ShiftID, r.RequesterID, r.Status, r.AdminNote, nullStaffID(r.ApprovedBy), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create shift request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read request id: %w", err)
	}
	r.ID = schedule.ShiftRequestID(id)
	r.CreatedAt = parseTime(ts)
	r.UpdatedAt = r.CreatedAt
	return nil
}

func (q *queries) GetShiftRequest(ctx context.Context, id schedule.ShiftRequestID) (*schedule.ShiftRequest, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+shiftRequestColumns+" FROM shift_requests WHERE id = ?", id)
	r, err := scanShiftRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("shift request %d: %w", id, schedule.ErrNotFound)
	}
	return r, err
}

func (q *queries) PendingShiftRequest(ctx context.Context, shiftID schedule.ShiftID, requesterID schedule.StaffID) (*schedule.ShiftRequest, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+shiftRequestColumns+` FROM shift_requests
		WHERE shift_id = ? AND requester_id = ? AND status = ?`,
		shiftID, requesterID, schedule.StatusPending)
	r, err := scanShiftRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pending request for shift %d: %w", shiftID, schedule.ErrNotFound)
	}
	return r, err
}

func (q *queries) UpdateShiftRequest(ctx context.Context, r *schedule.ShiftRequest) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		UPDATE shift_requests
		SET status = ?, admin_note = ?, approved_by = ?, updated_at = ?
		WHERE id = ?`,
		r.Status, r.AdminNote, nullStaffID(r.ApprovedBy), ts, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shift request %d: %w", r.ID, schedule.ErrNotFound)
	}
	r.UpdatedAt = parseTime(ts)
	return nil
}

func (q *queries) ListShiftRequests(ctx context.Context, requesterID *schedule.StaffID) ([]schedule.ShiftRequest, error) {
	query := "SELECT " + shiftRequestColumns + " FROM shift_requests"
	var args []any
	if requesterID != nil {
		query += " WHERE requester_id = ?"
		args = append(args, *requesterID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shift requests: %w", err)
	}
	defer rows.Close()

	var requests []schedule.ShiftRequest
	for rows.Next() {
		r, err := scanShiftRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanShiftRequest(r rowScanner) (*schedule.ShiftRequest, error) {
	var (
		req        schedule.ShiftRequest
		approvedBy sql.NullInt64
		createdAt  string
		updatedAt  string
	)
	err := r.Scan(&req.ID, &req.ShiftID, &req.RequesterID, &req.Status, &req.AdminNote,
		&approvedBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan shift request: %w", err)
	}
	req.ApprovedBy = staffIDPtr(approvedBy)
	req.CreatedAt = parseTime(createdAt)
	req.UpdatedAt = parseTime(updatedAt)
	return &req, nil
}

// =============================================================================
// TRADE REQUESTS
// =============================================================================

const tradeColumns = `id, requester_shift_id, target_shift_id, requester_id, target_id,
	requester_note, target_note, admin_note, requester_approved, target_approved,
	admin_approved, status, approved_by, created_at, updated_at`

func (q *queries) CreateTradeRequest(ctx context.Context, t *schedule.TradeRequest) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO trade_requests (requester_shift_id, target_shift_id, requester_id, target_id,
			requester_note, target_note, admin_note, requester_approved, target_approved,
			admin_approved, status, approved_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.RequesterShift, t.TargetShift, t.RequesterID, t.TargetID,
		t.RequesterNote, t.TargetNote, t.AdminNote, t.RequesterApproved, t.TargetApproved,
		t.AdminApproved, t.Status, nullStaffID(t.ApprovedBy), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create trade request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read trade id: %w", err)
	}
	t.ID = schedule.TradeRequestID(id)
	t.CreatedAt = parseTime(ts)
	t.UpdatedAt = t.CreatedAt
	return nil
}

func (q *queries) GetTradeRequest(ctx context.Context, id schedule.TradeRequestID) (*schedule.TradeRequest, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+tradeColumns+" FROM trade_requests WHERE id = ?", id)
	t, err := scanTrade(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("trade request %d: %w", id, schedule.ErrNotFound)
	}
	return t, err
}

func (q *queries) UpdateTradeRequest(ctx context.Context, t *schedule.TradeRequest) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		UPDATE trade_requests
		SET requester_note = ?, target_note = ?, admin_note = ?,
			requester_approved = ?, target_approved = ?, admin_approved = ?,
			status = ?, approved_by = ?, updated_at = ?
		WHERE id = ?`,
		t.RequesterNote, t.TargetNote, t.AdminNote,
		t.RequesterApproved, t.TargetApproved, t.AdminApproved,
		t.Status, nullStaffID(t.ApprovedBy), ts, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("trade request %d: %w", t.ID, schedule.ErrNotFound)
	}
	t.UpdatedAt = parseTime(ts)
	return nil
}

func (q *queries) ListTradeRequests(ctx context.Context, staffID *schedule.StaffID) ([]schedule.TradeRequest, error) {
	query := "SELECT " + tradeColumns + " FROM trade_requests"
	var args []any
	if staffID != nil {
		query += " WHERE requester_id = ? OR target_id = ?"
		args = append(args, *staffID, *staffID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade requests: %w", err)
	}
	defer rows.Close()

	var trades []schedule.TradeRequest
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, *t)
	}
	return trades, rows.Err()
}

func scanTrade(r rowScanner) (*schedule.TradeRequest, error) {
	var (
		t          schedule.TradeRequest
		approvedBy sql.NullInt64
		createdAt  string
		updatedAt  string
	)
	err := r.Scan(&t.ID, &t.RequesterShift, &t.TargetShift, &t.RequesterID, &t.TargetID,
		&t.RequesterNote, &t.TargetNote, &t.AdminNote, &t.RequesterApproved, &t.TargetApproved,
		&t.AdminApproved, &t.Status, &approvedBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan trade request: %w", err)
	}
	t.ApprovedBy = staffIDPtr(approvedBy)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

// =============================================================================
// TIME OFF REQUESTS
// =============================================================================

const timeOffColumns = `id, requester_id, type, shift_id, start_date, end_date, reason,
	status, admin_note, approved_by, created_at, updated_at`

func (q *queries) CreateTimeOffRequest(ctx context.Context, r *schedule.TimeOffRequest) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO time_off_requests (requester_id, type, shift_id, start_date, end_date,
			reason, status, admin_note, approved_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RequesterID, r.Type, nullShiftID(r.ShiftID), nullDate(r.StartDate), nullDate(r.EndDate),
		r.Reason, r.Status, r.AdminNote, nullStaffID(r.ApprovedBy), ts, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create time-off request: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read time-off id: %w", err)
	}
	r.ID = schedule.TimeOffRequestID(id)
	r.CreatedAt = parseTime(ts)
	r.UpdatedAt = r.CreatedAt
	return nil
}

func (q *queries) GetTimeOffRequest(ctx context.Context, id schedule.TimeOffRequestID) (*schedule.TimeOffRequest, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+timeOffColumns+" FROM time_off_requests WHERE id = ?", id)
	r, err := scanTimeOff(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("time-off request %d: %w", id, schedule.ErrNotFound)
	}
	return r, err
}

func (q *queries) UpdateTimeOffRequest(ctx context.Context, r *schedule.TimeOffRequest) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		UPDATE time_off_requests
		SET status = ?, admin_note = ?, approved_by = ?, updated_at = ?
		WHERE id = ?`,
		r.Status, r.AdminNote, nullStaffID(r.ApprovedBy), ts, r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update time-off request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("time-off request %d: %w", r.ID, schedule.ErrNotFound)
	}
	r.UpdatedAt = parseTime(ts)
	return nil
}

func (q *queries) ListTimeOffRequests(ctx context.Context, requesterID *schedule.StaffID) ([]schedule.TimeOffRequest, error) {
	query := "SELECT " + timeOffColumns + " FROM time_off_requests"
	var args []any
	if requesterID != nil {
		query += " WHERE requester_id = ?"
		args = append(args, *requesterID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query time-off requests: %w", err)
	}
	defer rows.Close()

	var requests []schedule.TimeOffRequest
	for rows.Next() {
		r, err := scanTimeOff(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanTimeOff(r rowScanner) (*schedule.TimeOffRequest, error) {
	var (
		req        schedule.TimeOffRequest
		shiftID    sql.NullInt64
		startDate  sql.NullString
		endDate    sql.NullString
		approvedBy sql.NullInt64
		createdAt  string
		updatedAt  string
	)
	err := r.Scan(&req.ID, &req.RequesterID, &req.Type, &shiftID, &startDate, &endDate,
		&req.Reason, &req.Status, &req.AdminNote, &approvedBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan time-off request: %w", err)
	}
	if shiftID.Valid {
		id := schedule.ShiftID(shiftID.Int64)
		req.ShiftID = &id
	}
	req.StartDate = datePtr(startDate)
	req.EndDate = datePtr(endDate)
	req.ApprovedBy = staffIDPtr(approvedBy)
	req.CreatedAt = parseTime(createdAt)
	req.UpdatedAt = parseTime(updatedAt)
	return &req, nil
}

// =============================================================================
// ABSENCES
// =============================================================================

func (q *queries) CreateAbsence(ctx context.Context, a *schedule.Absence) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO absences (shift_id, staff_id, reported_by, reason, reported_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ShiftID, a.StaffID, a.ReportedBy, a.Reason, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create absence: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read absence id: %w", err)
	}
	a.ID = schedule.AbsenceID(id)
	a.ReportedAt = parseTime(ts)
	return nil
}

func (q *queries) CountRecentAbsences(ctx context.Context, days int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	var count int
	err := q.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM absences WHERE reported_at >= ?", cutoff,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count absences: %w", err)
	}
	return count, nil
}

// =============================================================================
// DASHBOARD COUNTS
// =============================================================================

func (q *queries) CountPendingShiftRequests(ctx context.Context) (int, error) {
	return q.countRows(ctx,
		"SELECT COUNT(*) FROM shift_requests WHERE status = ?", schedule.StatusPending)
}

func (q *queries) CountFinalizableTrades(ctx context.Context) (int, error) {
	return q.countRows(ctx, `
		SELECT COUNT(*) FROM trade_requests
		WHERE status = ? AND requester_approved = 1 AND target_approved = 1`,
		schedule.StatusPending)
}

func (q *queries) CountPendingTimeOff(ctx context.Context) (int, error) {
	return q.countRows(ctx,
		"SELECT COUNT(*) FROM time_off_requests WHERE status = ?", schedule.StatusPending)
}

func (q *queries) CountPendingShiftRequestsFor(ctx context.Context, staffID schedule.StaffID) (int, error) {
	return q.countRows(ctx,
		"SELECT COUNT(*) FROM shift_requests WHERE status = ? AND requester_id = ?",
		schedule.StatusPending, staffID)
}

func (q *queries) countRows(ctx context.Context, query string, args ...any) (int, error) {
	var count int
	if err := q.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

// =============================================================================
// NOTIFICATION LOG
// =============================================================================

func (q *queries) LogNotification(ctx context.Context, n *schedule.Notification) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO notifications (staff_id, kind, message, sent_via, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		n.StaffID, n.Kind, n.Message, n.SentVia, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to log notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read notification id: %w", err)
	}
	n.ID = id
	n.CreatedAt = parseTime(ts)
	return nil
}
