package history

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/pricescout/pricescout/internal/client/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:history_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS history (
  id            TEXT PRIMARY KEY,
  product       TEXT NOT NULL,
  timestamp     TEXT NOT NULL,
  results_count INTEGER NOT NULL,
  position      INTEGER NOT NULL
);
DELETE FROM history;
`)
	require.NoError(t, err)
	return db
}

func sampleEntries() []models.HistoryEntry {
	return []models.HistoryEntry{
		{ID: "h2", Product: "MacBook Air", Timestamp: "2025-06-02T10:00:00", ResultsCount: 4},
		{ID: "h1", Product: "iPhone 15", Timestamp: "2025-06-01T09:00:00", ResultsCount: 6},
	}
}

func TestReplaceAllPreservesServerOrder(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleEntries()))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, sampleEntries(), got)
}

func TestReplaceAllDropsPreviousCache(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleEntries()))
	replacement := []models.HistoryEntry{
		{ID: "h3", Product: "iPad Pro", Timestamp: "2025-06-03T11:00:00", ResultsCount: 2},
	}
	require.NoError(t, repo.ReplaceAll(ctx, replacement))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, replacement, got)
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleEntries()))
	require.NoError(t, repo.Delete(ctx, "h2"))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "h1", got[0].ID)
}

func TestClearAndEmptyList(t *testing.T) {
	db := setupDB(t)
	repo := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleEntries()))
	require.NoError(t, repo.Clear(ctx))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}
