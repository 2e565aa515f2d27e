package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/goliatone/go-messagely"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to dsn with driver and returns a bun DB using the
// matching dialect.
func Open(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case DriverSQLite, "sqlite3":
		sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, err
		}
		// every in memory connection is a separate database
		if strings.Contains(dsn, ":memory:") {
			sqldb.SetMaxOpenConns(1)
		}
		db := bun.NewDB(sqldb, sqlitedialect.New())
		if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	case DriverPostgres, "pgx":
		sqldb, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
	return nil, fmt.Errorf("repository: unsupported driver %q", driver)
}

// NewClient wraps db in a persistence client and checks the connection
// within cfg.GetPingTimeout. The client shares the connection pool of db,
// closing db closes it.
func NewClient(cfg persistence.Config, db *bun.DB) (*persistence.Client, error) {
	persistence.RegisterModel((*messagely.User)(nil), (*messagely.Message)(nil))
	return persistence.New(cfg, db.DB, db.Dialect())
}
