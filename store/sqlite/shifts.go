package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/shift-engine/schedule"
)

const shiftColumns = `id, date, shift_type, assigned_to, is_open, is_preliminary, notes,
	created_by, created_at, updated_at`

func (q *queries) GetShift(ctx context.Context, id schedule.ShiftID) (*schedule.Shift, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE id = ?", id)
	s, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("shift %d: %w", id, schedule.ErrNotFound)
	}
	return s, err
}

func (q *queries) ShiftAt(ctx context.Context, date schedule.Date, shiftType schedule.ShiftType) (*schedule.Shift, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE date = ? AND shift_type = ?",
		date.String(), shiftType)
	s, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("shift on %s/%s: %w", date, shiftType, schedule.ErrNotFound)
	}
	return s, err
}

func (q *queries) ShiftsInRange(ctx context.Context, from, to schedule.Date) ([]schedule.Shift, error) {
	// Date is stored as "YYYY-MM-DD", so lexical range matches chronology.
	// The CASE expression gives the fixed within-day ordering.
	query := `
		SELECT ` + shiftColumns + ` FROM shifts
		WHERE date >= ? AND date <= ?
		ORDER BY date,
			CASE shift_type WHEN 'morning' THEN 1 WHEN 'afternoon' THEN 2 WHEN 'overnight' THEN 3 ELSE 4 END
	`
	return q.queryShifts(ctx, query, from.String(), to.String())
}

func (q *queries) ShiftsForStaff(ctx context.Context, staffID schedule.StaffID, from, to schedule.Date) ([]schedule.Shift, error) {
	query := `
		SELECT ` + shiftColumns + ` FROM shifts
		WHERE assigned_to = ? AND date >= ? AND date <= ?
		ORDER BY date,
			CASE shift_type WHEN 'morning' THEN 1 WHEN 'afternoon' THEN 2 WHEN 'overnight' THEN 3 ELSE 4 END
	`
	return q.queryShifts(ctx, query, staffID, from.String(), to.String())
}

func (q *queries) CreateShift(ctx context.Context, s *schedule.Shift) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO shifts (date, shift_type, assigned_to, is_open, is_preliminary, notes, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Date.String(), s.Type, nullStaffID(s.AssignedTo), s.IsOpen, s.IsPreliminary,
		s.Notes, s.CreatedBy, ts, ts,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return schedule.ErrDuplicateShift
		}
		return fmt.Errorf("failed to create shift: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read shift id: %w", err)
	}
	s.ID = schedule.ShiftID(id)
	s.CreatedAt = parseTime(ts)
	s.UpdatedAt = s.CreatedAt
	return nil
}

func (q *queries) UpdateShift(ctx context.Context, s *schedule.Shift) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		UPDATE shifts
		SET assigned_to = ?, is_open = ?, is_preliminary = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		nullStaffID(s.AssignedTo), s.IsOpen, s.IsPreliminary, s.Notes, ts, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shift %d: %w", s.ID, schedule.ErrNotFound)
	}
	s.UpdatedAt = parseTime(ts)
	return nil
}

func (q *queries) DeleteShift(ctx context.Context, id schedule.ShiftID) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete shift: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("shift %d: %w", id, schedule.ErrNotFound)
	}
	return nil
}

func (q *queries) queryShifts(ctx context.Context, query string, args ...any) ([]schedule.Shift, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []schedule.Shift
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *s)
	}
	return shifts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(r rowScanner) (*schedule.Shift, error) {
	var (
		s          schedule.Shift
		date       string
		assignedTo sql.NullInt64
		createdAt  string
		updatedAt  string
	)
	err := r.Scan(&s.ID, &date, &s.Type, &assignedTo, &s.IsOpen, &s.IsPreliminary,
		&s.Notes, &s.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan shift: %w", err)
	}

	s.Date, err = schedule.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("failed to scan shift date: %w", err)
	}
	s.AssignedTo = staffIDPtr(assignedTo)
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}
