/*
Package sqlite provides the SQLite-backed implementation of the roster
storage interfaces.

PURPOSE:
  Implements schedule.TxStore over a single SQLite file. The schema is
  applied through versioned embedded migrations on New().

KEY TABLES:
  users:             staff accounts, including the "_open" placeholder
  shifts:            one row per calendar slot; UNIQUE(date, shift_type)
  shift_requests:    bids on open shifts
  trade_requests:    proposed swaps with per-party approval flags
  time_off_requests: assigned-shift and future-vacation requests
  absences:          emergency call-out audit records
  notifications:     delivered chat messages

CONCURRENCY:
  Opened with WAL journaling and foreign keys on. Every exchange state
  transition runs through WithTx so the cap check and the mutation commit
  together. SQLite serializes writers; a conflicting concurrent transition
  blocks rather than interleaves.

DATE STORAGE:
  Calendar dates are TEXT "YYYY-MM-DD" so lexical comparison matches
  chronological order. Timestamps are RFC 3339 TEXT.

SEE ALSO:
  - schedule/store.go: the interfaces implemented here
  - schedule/store/memory.go: the in-memory counterpart used in tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/shift-engine/schedule"
)

// Store implements schedule.TxStore over SQLite.
// Use ":memory:" as the path for an in-memory database.
type Store struct {
	queries
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{queries: queries{db: db}, db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn against a transactional view. All writes inside fn commit
// together when it returns nil and roll back entirely otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(schedule.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// Bootstrap seeds the placeholder "_open" user and the given admin account
// when the users table is empty. Safe to call on every startup.
func (s *Store) Bootstrap(ctx context.Context, admin *schedule.Staff) error {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	placeholder := &schedule.Staff{
		Username: schedule.OpenShiftUsername,
		FullName: "Open Shift",
		Role:     schedule.RoleSystem,
		IsActive: false,
	}
	if err := s.CreateStaff(ctx, placeholder); err != nil {
		return fmt.Errorf("failed to seed placeholder user: %w", err)
	}
	if err := s.CreateStaff(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	return nil
}

// =============================================================================
// QUERY LAYER - shared between the root connection and transactions
// =============================================================================

// dbtx is the common surface of *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements schedule.Store against either connection kind. The
// per-entity method groups live in shifts.go, staff.go, and requests.go.
type queries struct {
	db dbtx
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullStaffID(id *schedule.StaffID) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

func staffIDPtr(n sql.NullInt64) *schedule.StaffID {
	if !n.Valid {
		return nil
	}
	id := schedule.StaffID(n.Int64)
	return &id
}

func nullShiftID(id *schedule.ShiftID) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}

func nullDate(d *schedule.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func datePtr(n sql.NullString) *schedule.Date {
	if !n.Valid {
		return nil
	}
	d, err := schedule.ParseDate(n.String)
	if err != nil {
		return nil
	}
	return &d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
