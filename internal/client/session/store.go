// Package session owns the authenticated identity context of the client:
// the backend token and the last known user profile. It is the single writer
// of that state; every other component reads through accessors and never
// keeps its own copy of the token beyond one outgoing request.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/client/repositories/metadata"
	"github.com/pricescout/pricescout/internal/dbx"
	"github.com/pricescout/pricescout/internal/logging"
)

// Durable record keys in the metadata table.
const (
	keyToken = "token"
	keyUser  = "user"
)

// Session is the authenticated identity context. Token and User are either
// both set or both absent; a partial pair is invalid and is treated as
// logged out.
type Session struct {
	Token string
	User  *models.UserProfile
}

// Store is the source of truth for "is the user authenticated". State
// survives restarts through the metadata repository.
type Store struct {
	db  *sql.DB
	log logging.Logger

	mu    sync.RWMutex
	token string
	user  *models.UserProfile
	epoch uint64
}

func NewStore(db *sql.DB, log logging.Logger) *Store {
	return &Store{db: db, log: log}
}

func (s *Store) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Restore loads the persisted token/profile pair. It returns a Session only
// when both records exist and the profile parses; any partial or corrupt
// state is wiped from durable storage and reported as logged out. Calling
// Restore twice yields the same result.
func (s *Store) Restore(ctx context.Context) (*Session, error) {
	repo := s.repo(s.db)

	token, err := repo.Get(ctx, keyToken)
	if err != nil {
		return nil, err
	}
	userBlob, err := repo.Get(ctx, keyUser)
	if err != nil {
		return nil, err
	}

	if len(token) == 0 || len(userBlob) == 0 {
		if len(token) != 0 || len(userBlob) != 0 {
			s.log.Warn(ctx, "partial session record, clearing")
			if err := s.eraseRecords(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	var user models.UserProfile
	if err := json.Unmarshal(userBlob, &user); err != nil {
		s.log.Warn(ctx, "corrupt session profile, clearing", "error", err)
		if err := s.eraseRecords(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	s.mu.Lock()
	s.token = string(token)
	s.user = &user
	s.mu.Unlock()

	return &Session{Token: string(token), User: &user}, nil
}

// Login stores the authenticated identity in memory and durably, as one
// transaction. The token row is written first so that the only partial state
// an interrupted write could leave behind is "token without user", which
// Restore treats as logged out.
func (s *Store) Login(ctx context.Context, user *models.UserProfile, token string) error {
	blob, err := json.Marshal(user)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, keyUser, blob)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	return nil
}

// Logout clears the in-memory identity, bumps the session epoch so that any
// in-flight authenticated completion is discarded, and erases both durable
// records. Memory is cleared even when erasing fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.epoch++
	s.mu.Unlock()

	return s.eraseRecords(ctx)
}

// UpdateUser replaces the stored profile with a fresh server-authoritative
// object. The token is untouched. No-op when logged out.
func (s *Store) UpdateUser(ctx context.Context, user *models.UserProfile) error {
	s.mu.RLock()
	loggedIn := s.token != ""
	s.mu.RUnlock()
	if !loggedIn {
		return nil
	}

	blob, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.repo(s.db).Set(ctx, keyUser, blob); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

func (s *Store) eraseRecords(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repo(tx)
		if err := repo.Delete(ctx, keyToken); err != nil {
			return err
		}
		return repo.Delete(ctx, keyUser)
	})
}

// Token returns the current token, or "" when logged out. Satisfies
// api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current profile snapshot, or nil when logged out.
func (s *Store) User() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Epoch increases on every logout. Orchestrators capture it when a request
// starts and discard completions whose epoch is no longer current.
func (s *Store) Epoch() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epoch
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}
