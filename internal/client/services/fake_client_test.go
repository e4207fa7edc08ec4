package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/client/session"
	"github.com/pricescout/pricescout/internal/logging"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
  id            TEXT PRIMARY KEY,
  product       TEXT NOT NULL,
  timestamp     TEXT NOT NULL,
  results_count INTEGER NOT NULL,
  position      INTEGER NOT NULL
);
DELETE FROM metadata;
DELETE FROM history;
`)
	require.NoError(t, err)
	return db
}

func testLogger() logging.Logger {
	return logging.NewDefault(io.Discard, slog.LevelDebug)
}

func loggedInStore(t *testing.T, db *sql.DB) *session.Store {
	t.Helper()
	st := session.NewStore(db, testLogger())
	require.NoError(t, st.Login(context.Background(), testUser(), "tok-1"))
	return st
}

func testUser() *models.UserProfile {
	return &models.UserProfile{
		ID:    "u1",
		Name:  "Alice",
		Email: "alice@example.com",
	}
}

// ---- fake gateway ----

// fakeClient implements api.Client for unit tests.
type fakeClient struct {
	mu sync.Mutex

	CloseErr error

	ExchangeUser   *models.UserProfile
	ExchangeToken  string
	ExchangeErr    error
	LastCredential string

	// SearchFn, when set, overrides the canned result; used to control
	// completion timing in supersession tests.
	SearchFn     func(ctx context.Context, q string) (*models.ComparisonResult, error)
	SearchResult *models.ComparisonResult
	SearchErr    error
	LastQuery    string

	TrendingRet   []models.TrendingProduct
	TrendingErr   error
	TrendingCalls int

	UploadRet string
	UploadErr error

	ProfileRet *models.UserProfile
	ProfileErr error

	UpdateRet *models.UserProfile
	UpdateErr error
	LastName  string

	HistoryRet   []models.HistoryEntry
	HistoryErr   error
	HistoryCalls int

	DeleteErr     error
	LastDeletedID string

	ClearErr   error
	ClearCalls int

	PingErr error
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) ExchangeGoogleCredential(ctx context.Context, credential string) (*models.UserProfile, string, error) {
	f.mu.Lock()
	f.LastCredential = credential
	f.mu.Unlock()
	return f.ExchangeUser, f.ExchangeToken, f.ExchangeErr
}

func (f *fakeClient) Search(ctx context.Context, productName string) (*models.ComparisonResult, error) {
	f.mu.Lock()
	f.LastQuery = productName
	fn := f.SearchFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, productName)
	}
	return f.SearchResult, f.SearchErr
}

func (f *fakeClient) Trending(ctx context.Context) ([]models.TrendingProduct, error) {
	f.mu.Lock()
	f.TrendingCalls++
	f.mu.Unlock()
	return f.TrendingRet, f.TrendingErr
}

func (f *fakeClient) UploadImage(ctx context.Context, artifact *models.CaptureArtifact) (string, error) {
	return f.UploadRet, f.UploadErr
}

func (f *fakeClient) Profile(ctx context.Context) (*models.UserProfile, error) {
	return f.ProfileRet, f.ProfileErr
}

func (f *fakeClient) UpdateProfile(ctx context.Context, name string) (*models.UserProfile, error) {
	f.mu.Lock()
	f.LastName = name
	f.mu.Unlock()
	return f.UpdateRet, f.UpdateErr
}

func (f *fakeClient) SearchHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	f.mu.Lock()
	f.HistoryCalls++
	f.mu.Unlock()
	return f.HistoryRet, f.HistoryErr
}

func (f *fakeClient) DeleteSearch(ctx context.Context, id string) error {
	f.mu.Lock()
	f.LastDeletedID = id
	f.mu.Unlock()
	return f.DeleteErr
}

func (f *fakeClient) ClearSearchHistory(ctx context.Context) error {
	f.mu.Lock()
	f.ClearCalls++
	f.mu.Unlock()
	return f.ClearErr
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }
