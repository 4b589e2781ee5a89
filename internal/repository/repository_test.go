package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightwash/catalog-server/internal/database"
)

// setupTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// every table. Tests are skipped when the variable is unset.
func setupTestDB(t *testing.T) *database.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, database.RunMigrations(url))

	pool := database.NewPool(url)
	t.Cleanup(func() { _ = pool.Close() })

	_, err := pool.ExecContext(context.Background(),
		`TRUNCATE admin_users, packages RESTART IDENTITY`)
	require.NoError(t, err)
	return pool
}
