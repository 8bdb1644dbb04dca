// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/video-rental/internal/database"
)

// NewSQLite returns a migrated SQLite database in a per-test directory.
// It is closed when the test finishes.
func NewSQLite(t testing.TB) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "vidly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db, database.DriverSQLite, zap.NewNop()))
	return db
}
