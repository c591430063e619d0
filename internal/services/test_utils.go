//go:build integration

package services

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"feedbackapp/internal/database"
	"feedbackapp/internal/observability"

	"github.com/stretchr/testify/require"
)

// SharedTestDBSetup provides a migrated database with empty feedback tables for each integration test.
func SharedTestDBSetup(t *testing.T) *sql.DB {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Fatal("TEST_DATABASE_URL environment variable must be set for integration tests")
	}

	dbManager := database.NewManager(observability.NewNopLogger())
	db, err := dbManager.InitDBWithConfig(database.DefaultDatabaseConfig(databaseURL))
	require.NoError(t, err)

	CleanupTestDatabase(db, t)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// CleanupTestDatabase truncates every application table.
func CleanupTestDatabase(db *sql.DB, t *testing.T) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), "TRUNCATE TABLE feedback, products, users RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}
