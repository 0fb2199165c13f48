package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed sql
var migrationsFS embed.FS

var dialects = map[string]struct {
	goose string
	dir   string
}{
	"sqlite":   {goose: "sqlite3", dir: "sql/sqlite"},
	"postgres": {goose: "postgres", dir: "sql/postgres"},
}

// Up runs all pending embedded SQL migrations for the given driver.
func Up(db *sql.DB, driver string) error {
	d, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("no migrations for driver %q", driver)
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(d.goose); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(db, d.dir); err != nil {
		return fmt.Errorf("run goose up migrations: %w", err)
	}

	return nil
}

// Version reports the current schema version.
func Version(db *sql.DB, driver string) (int64, error) {
	d, ok := dialects[driver]
	if !ok {
		return 0, fmt.Errorf("no migrations for driver %q", driver)
	}
	if err := goose.SetDialect(d.goose); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}

	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("read goose db version: %w", err)
	}
	return v, nil
}
