package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/shift-engine/schedule"
)

const staffColumns = `id, username, full_name, role, job_title, chat_handle,
	is_active, must_change_password, password_hash, created_at, updated_at`

func (q *queries) GetStaff(ctx context.Context, id schedule.StaffID) (*schedule.Staff, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+staffColumns+" FROM users WHERE id = ?", id)
	s, err := scanStaff(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("staff %d: %w", id, schedule.ErrNotFound)
	}
	return s, err
}

func (q *queries) GetStaffByUsername(ctx context.Context, username string) (*schedule.Staff, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+staffColumns+" FROM users WHERE username = ?", username)
	s, err := scanStaff(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("staff %q: %w", username, schedule.ErrNotFound)
	}
	return s, err
}

func (q *queries) ListStaff(ctx context.Context, activeOnly bool) ([]schedule.Staff, error) {
	query := "SELECT " + staffColumns + " FROM users WHERE username != ? AND role != ?"
	args := []any{schedule.OpenShiftUsername, schedule.RoleSystem}
	if activeOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY full_name"
	return q.queryStaff(ctx, query, args...)
}

func (q *queries) ListAdmins(ctx context.Context) ([]schedule.Staff, error) {
	return q.queryStaff(ctx,
		"SELECT "+staffColumns+" FROM users WHERE role = ? AND is_active = 1 ORDER BY full_name",
		schedule.RoleAdmin)
}

func (q *queries) CreateStaff(ctx context.Context, s *schedule.Staff) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO users (username, full_name, role, job_title, chat_handle,
			is_active, must_change_password, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Username, s.FullName, s.Role, s.JobTitle, s.ChatHandle,
		s.IsActive, s.MustChangePassword, s.PasswordHash, ts, ts,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("username %q is taken: %w", s.Username, schedule.ErrInvalidState)
		}
		return fmt.Errorf("failed to create staff: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read staff id: %w", err)
	}
	s.ID = schedule.StaffID(id)
	s.CreatedAt = parseTime(ts)
	s.UpdatedAt = s.CreatedAt
	return nil
}

func (q *queries) UpdateStaff(ctx context.Context, s *schedule.Staff) error {
	ts := now()
	res, err := q.db.ExecContext(ctx, `
		UPDATE users
		SET full_name = ?, role = ?, job_title = ?, chat_handle = ?,
			is_active = ?, must_change_password = ?, password_hash = ?, updated_at = ?
		WHERE id = ?`,
		s.FullName, s.Role, s.JobTitle, s.ChatHandle,
		s.IsActive, s.MustChangePassword, s.PasswordHash, ts, s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("staff %d: %w", s.ID, schedule.ErrNotFound)
	}
	s.UpdatedAt = parseTime(ts)
	return nil
}

func (q *queries) queryStaff(ctx context.Context, query string, args ...any) ([]schedule.Staff, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var staff []schedule.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, *s)
	}
	return staff, rows.Err()
}

func scanStaff(r rowScanner) (*schedule.Staff, error) {
	var (
		s         schedule.Staff
		createdAt string
		updatedAt string
	)
	err := r.Scan(&s.ID, &s.Username, &s.FullName, &s.Role, &s.JobTitle, &s.ChatHandle,
		&s.IsActive, &s.MustChangePassword, &s.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan staff: %w", err)
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}
