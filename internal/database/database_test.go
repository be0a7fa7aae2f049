package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/database"
)

// TestOpen tests database creation and migration.
//
// WHY: The server runs migrations on startup. Opening an existing database
// must be idempotent and a new file must be created with its directory.
func TestOpen(t *testing.T) {
	t.Run("in-memory database is migrated", func(t *testing.T) {
		db, err := database.Open(":memory:")
		require.NoError(t, err)
		defer db.Close()

		v, err := database.SchemaVersion(db)
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		for _, table := range []string{"portfolio", "holding", "transaction", "quote_cache"} {
			var name string
			err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
			assert.NoError(t, err, table)
		}
	})

	t.Run("file database reopens without re-running migrations", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "engine.db")

		db, err := database.Open(path)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO portfolio (id, name, cash_balance, created_at) VALUES ('p1', 'Main', 0, '2024-01-01T00:00:00.000000000Z')`)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db, err = database.Open(path)
		require.NoError(t, err)
		defer db.Close()

		var count int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM portfolio`).Scan(&count))
		assert.Equal(t, 1, count)
		assert.NoError(t, database.HealthCheck(db))
	})

	t.Run("foreign keys are enforced", func(t *testing.T) {
		db, err := database.Open(":memory:")
		require.NoError(t, err)
		defer db.Close()

		_, err = db.Exec(`INSERT INTO holding (id, portfolio_id, symbol, name, category, quantity) VALUES ('h1', 'missing', 'AAPL', 'Apple', 'equity', 1)`)
		assert.Error(t, err)
	})
}
