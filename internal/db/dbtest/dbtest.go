// Package dbtest opens a migrated SQLite database for tests.
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/mindtab/mindtab/internal/db"
)

// New returns a fresh database file under t.TempDir with all migrations applied.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Init("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })

	require.NoError(t, db.RunMigrations(conn.DB, "sqlite"))
	return conn
}

// User inserts a bare user row and returns its id.
func User(t testing.TB, conn *sqlx.DB, email string) string {
	t.Helper()

	id := uuid.New().String()
	_, err := conn.Exec(`INSERT INTO users (id, email, created_at) VALUES ($1, $2, $3)`, id, email, time.Now())
	require.NoError(t, err)
	return id
}
