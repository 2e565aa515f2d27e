// Package migrations embeds the SQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

// goose keeps its base FS and dialect in package state
var mu sync.Mutex

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Dialect maps a database driver name to the goose dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case "sqlite", "sqlite3", "sqliteshim":
		return "sqlite3", nil
	case "postgres", "pgx":
		return "pgx", nil
	}
	return "", fmt.Errorf("migrations: unsupported driver %q", driver)
}

// Up applies every pending migration to db. A nil logger silences goose.
func Up(ctx context.Context, db *sql.DB, driver string, logger goose.Logger) error {
	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		logger = goose.NopLogger()
	}
	goose.SetLogger(logger)
	goose.SetBaseFS(Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	return gooseUpContext(ctx, db, ".")
}
