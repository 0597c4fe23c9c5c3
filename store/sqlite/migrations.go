package sqlite

import (
	"database/sql"
	"embed"

	"github.com/GuiaBolso/darwin"
	"github.com/diegoclair/sqlmigrator"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func migrate(db *sql.DB) error {
	m := sqlmigrator.New(db, darwin.SqliteDialect{})
	return m.Migrate(migrationFiles, "migrations")
}
