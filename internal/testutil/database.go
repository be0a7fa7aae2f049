package testutil

import (
	"database/sql"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/database"
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The schema is created by the same migrations production runs.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// CleanDatabase deletes all rows in dependency order.
// Useful for reusing the same database across multiple sub-tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	tables := []string{
		`"transaction"`,
		"holding",
		"portfolio",
		"quote_cache",
	}

	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}
