package services

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/pricescout/pricescout/internal/client/api"
	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/client/repositories/history"
	"github.com/pricescout/pricescout/internal/client/session"
	"github.com/pricescout/pricescout/internal/logging"
)

// HistoryService manages the user's search history: fetch-and-replace loads,
// optimistic deletes with rollback, and a confirm-gated clear. The server is
// authoritative; a local sqlite cache mirrors its last response so the list
// can render while offline.
type HistoryService struct {
	client   api.Client
	sessions *session.Store
	cache    history.Repository
	log      logging.Logger

	mu      sync.Mutex
	entries []models.HistoryEntry
}

func NewHistoryService(client api.Client, sessions *session.Store, cache history.Repository, log logging.Logger) *HistoryService {
	return &HistoryService{client: client, sessions: sessions, cache: cache, log: log}
}

// Load fetches the history and replaces the local list and cache wholesale.
// When the backend is unreachable the cached copy is served instead.
func (s *HistoryService) Load(ctx context.Context) ([]models.HistoryEntry, error) {
	entries, err := s.client.SearchHistory(ctx)
	if err != nil {
		logoutOnUnauthenticated(ctx, s.sessions, err)

		var ne *api.NetworkError
		if errors.As(err, &ne) {
			cached, cacheErr := s.cache.List(ctx)
			if cacheErr == nil {
				s.log.Warn(ctx, "serving cached history, backend unreachable")
				s.setEntries(cached)
				return cached, nil
			}
		}
		return nil, err
	}

	s.setEntries(entries)
	if err := s.cache.ReplaceAll(ctx, entries); err != nil {
		s.log.Warn(ctx, "history cache write failed", "error", err)
	}
	return entries, nil
}

// Entries returns a copy of the current local list.
func (s *HistoryService) Entries() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Delete optimistically removes the entry from the local list, then issues
// the server delete. On failure the entry is restored at its original
// position and the error is surfaced.
func (s *HistoryService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	idx := slices.IndexFunc(s.entries, func(e models.HistoryEntry) bool { return e.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}
	removed := s.entries[idx]
	s.entries = slices.Delete(slices.Clone(s.entries), idx, idx+1)
	s.mu.Unlock()

	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn(ctx, "history cache delete failed", "error", err)
	}

	if err := s.client.DeleteSearch(ctx, id); err != nil {
		logoutOnUnauthenticated(ctx, s.sessions, err)

		// Roll back the optimistic removal.
		s.mu.Lock()
		restored := slices.Insert(slices.Clone(s.entries), min(idx, len(s.entries)), removed)
		s.entries = restored
		s.mu.Unlock()
		if cacheErr := s.cache.ReplaceAll(ctx, restored); cacheErr != nil {
			s.log.Warn(ctx, "history cache rollback failed", "error", cacheErr)
		}
		return err
	}

	return nil
}

// ClearAll deletes every entry server-side, then empties the local list and
// cache. The local list is only emptied after the server confirms, so the UI
// never shows an empty list the server did not actually clear. Confirmation
// prompts live upstream; once invoked the clear is unconditional.
func (s *HistoryService) ClearAll(ctx context.Context) error {
	if err := s.client.ClearSearchHistory(ctx); err != nil {
		logoutOnUnauthenticated(ctx, s.sessions, err)
		return err
	}

	s.setEntries(nil)
	if err := s.cache.Clear(ctx); err != nil {
		s.log.Warn(ctx, "history cache clear failed", "error", err)
	}
	return nil
}

func (s *HistoryService) setEntries(entries []models.HistoryEntry) {
	s.mu.Lock()
	s.entries = slices.Clone(entries)
	s.mu.Unlock()
}
