// Package history is the local cache of the user's search history. The
// backend owns the data; this cache mirrors the last server response in
// server order so the history view can render without waiting on the network.
package history

import (
	"context"

	"github.com/pricescout/pricescout/internal/client/models"
)

type Repository interface {
	// List returns cached entries in server order.
	List(ctx context.Context) ([]models.HistoryEntry, error)
	// ReplaceAll drops the cache and stores entries in the given order.
	ReplaceAll(ctx context.Context, entries []models.HistoryEntry) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}
