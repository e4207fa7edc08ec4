package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pricescout/pricescout/internal/client/api"
	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/common"
)

func intPtr(v int) *int { return &v }

func awaitSnapshot(t *testing.T, ch <-chan SearchSnapshot) (SearchSnapshot, bool) {
	t.Helper()
	select {
	case snap, ok := <-ch:
		return snap, ok
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for search completion")
		return SearchSnapshot{}, false
	}
}

func TestSearchSubmitEmptyQuery(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	o := NewSearchOrchestrator(&fakeClient{}, loggedInStore(t, db), testLogger())

	_, err := o.Submit(ctx, "   ")
	require.ErrorIs(t, err, common.ErrValidation)
	require.Equal(t, SearchIdle, o.Snapshot().State)
}

func TestSearchSubmitSucceeds(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	client := &fakeClient{
		SearchResult: &models.ComparisonResult{
			Product:      "iPhone 15",
			BestPrice:    intPtr(65000),
			TotalResults: 3,
			Results: []models.PriceEntry{
				{Platform: "Amazon", Original: 67000},
				{Platform: "Flipkart", Original: 65000},
				{Platform: "Croma", Original: 68500},
			},
		},
	}
	o := NewSearchOrchestrator(client, loggedInStore(t, db), testLogger())

	ch, err := o.Submit(ctx, "  iPhone 15  ")
	require.NoError(t, err)

	snap, ok := awaitSnapshot(t, ch)
	require.True(t, ok)
	require.Equal(t, SearchSucceeded, snap.State)
	require.Equal(t, "iPhone 15", snap.Query)
	require.Equal(t, "iPhone 15", client.LastQuery)
	require.NotNil(t, snap.Result)
	require.Equal(t, 65000, *snap.Result.BestPrice)
	require.Len(t, snap.Result.Results, 3)
	require.Equal(t, snap, o.Snapshot())
}

func TestSearchFailureClearsPreviousResult(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	client := &fakeClient{
		SearchResult: &models.ComparisonResult{Product: "laptop", BestPrice: intPtr(42000)},
	}
	o := NewSearchOrchestrator(client, loggedInStore(t, db), testLogger())

	ch, err := o.Submit(ctx, "laptop")
	require.NoError(t, err)
	snap, _ := awaitSnapshot(t, ch)
	require.Equal(t, SearchSucceeded, snap.State)

	client.mu.Lock()
	client.SearchResult = nil
	client.SearchErr = &api.ServerError{Status: 500, Message: "scraper exploded"}
	client.mu.Unlock()

	ch, err = o.Submit(ctx, "laptop")
	require.NoError(t, err)
	snap, _ = awaitSnapshot(t, ch)
	require.Equal(t, SearchFailed, snap.State)
	require.Equal(t, "scraper exploded", snap.Err)
	require.Nil(t, snap.Result, "a failed search must not keep showing the stale result")
	require.Nil(t, o.Snapshot().Result)
}

func TestSearchSupersession(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)

	firstStarted := make(chan struct{})
	release := make(chan struct{})
	client := &fakeClient{}
	client.SearchFn = func(ctx context.Context, q string) (*models.ComparisonResult, error) {
		if q == "slow" {
			close(firstStarted)
			<-release
			return &models.ComparisonResult{Product: "slow"}, nil
		}
		return &models.ComparisonResult{Product: q, BestPrice: intPtr(100)}, nil
	}
	o := NewSearchOrchestrator(client, loggedInStore(t, db), testLogger())

	slowCh, err := o.Submit(ctx, "slow")
	require.NoError(t, err)
	<-firstStarted

	fastCh, err := o.Submit(ctx, "fast")
	require.NoError(t, err)

	fast, ok := awaitSnapshot(t, fastCh)
	require.True(t, ok)
	require.Equal(t, SearchSucceeded, fast.State)
	require.Equal(t, "fast", fast.Query)

	// Let the superseded request finish; its completion must be discarded.
	close(release)
	_, ok = awaitSnapshot(t, slowCh)
	require.False(t, ok, "superseded submission must close without a value")

	snap := o.Snapshot()
	require.Equal(t, SearchSucceeded, snap.State)
	require.Equal(t, "fast", snap.Query)
	require.Equal(t, "fast", snap.Result.Product)
}

func TestSearchDiscardedAfterLogout(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	store := loggedInStore(t, db)

	started := make(chan struct{})
	release := make(chan struct{})
	client := &fakeClient{}
	client.SearchFn = func(ctx context.Context, q string) (*models.ComparisonResult, error) {
		close(started)
		<-release
		return &models.ComparisonResult{Product: q}, nil
	}
	o := NewSearchOrchestrator(client, store, testLogger())

	ch, err := o.Submit(ctx, "headphones")
	require.NoError(t, err)
	<-started

	require.NoError(t, store.Logout(ctx))
	close(release)

	_, ok := awaitSnapshot(t, ch)
	require.False(t, ok, "completion from a dead session must be discarded")
	require.Equal(t, SearchIdle, o.Snapshot().State)
}

func TestSearchUnauthenticatedLogsOut(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	store := loggedInStore(t, db)

	client := &fakeClient{SearchErr: api.ErrUnauthenticated}
	o := NewSearchOrchestrator(client, store, testLogger())

	ch, err := o.Submit(ctx, "tablet")
	require.NoError(t, err)
	snap, ok := awaitSnapshot(t, ch)
	require.True(t, ok)
	require.Equal(t, SearchFailed, snap.State)
	require.Equal(t, "session expired, please sign in again", snap.Err)
	require.False(t, store.IsAuthenticated())
}
