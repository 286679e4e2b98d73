// Package repotest provides a migrated PostgreSQL database for integration tests.
package repotest

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/mishasvintus/bugcake/internal/repository"
)

// tables in dependency order, children first.
var tables = []string{
	"access_requests",
	"members",
	"checklist_executors",
	"checklist_items",
	"checklists",
	"test_case_status_history",
	"test_cases",
	"modules",
	"sheets",
	"users",
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// SetupTestDB connects to the TEST_DB_* database, applies migrations and
// empties every table. The test is skipped when no database is reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test skipped in short mode")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		env("TEST_DB_HOST", "localhost"),
		env("TEST_DB_PORT", "5432"),
		env("TEST_DB_USER", "bugcake"),
		env("TEST_DB_PASSWORD", "bugcake"),
		env("TEST_DB_NAME", "bugcake_test"),
	)
	db, err := repository.NewPostgresDB(dsn)
	if err != nil {
		t.Skipf("postgres unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = CleanupTestDB(db)
		_ = db.Close()
	})

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := CleanupTestDB(db); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	return db
}

// CleanupTestDB truncates all tables.
func CleanupTestDB(db *sql.DB) error {
	_, err := db.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE")
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
