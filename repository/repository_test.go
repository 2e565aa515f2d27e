package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-messagely/migrations"
	"github.com/goliatone/go-messagely/repository"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

func setupDB(t *testing.T) *bun.DB {
	t.Helper()

	db, err := repository.Open(repository.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(context.Background(), db.DB, repository.DriverSQLite, nil))

	return db
}

// stepClock advances one second on every call
func stepClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func setupManager(t *testing.T) repository.Manager {
	t.Helper()
	return repository.NewRepositoryManager(setupDB(t), repository.WithPasswordCost(bcrypt.MinCost))
}
