package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pricescout/pricescout/internal/client/api"
	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/client/session"
	"github.com/pricescout/pricescout/internal/common"
	"github.com/pricescout/pricescout/internal/logging"
)

// ProfileService loads and saves the user's profile. The server's response
// is authoritative: every load or save replaces the whole local profile,
// including the session store's persisted copy.
type ProfileService struct {
	client   api.Client
	sessions *session.Store
	log      logging.Logger
}

func NewProfileService(client api.Client, sessions *session.Store, log logging.Logger) *ProfileService {
	return &ProfileService{client: client, sessions: sessions, log: log}
}

// Load fetches the authoritative profile and refreshes the session snapshot.
func (s *ProfileService) Load(ctx context.Context) (*models.UserProfile, error) {
	user, err := s.client.Profile(ctx)
	if err != nil {
		logoutOnUnauthenticated(ctx, s.sessions, err)
		return nil, err
	}

	if err := s.sessions.UpdateUser(ctx, user); err != nil {
		s.log.Warn(ctx, "session profile refresh failed", "error", err)
	}
	return user, nil
}

// Save sends only the mutable name field. On success the entire local
// profile is replaced with the server's returned object.
func (s *ProfileService) Save(ctx context.Context, name string) (*models.UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is empty", common.ErrValidation)
	}

	user, err := s.client.UpdateProfile(ctx, name)
	if err != nil {
		logoutOnUnauthenticated(ctx, s.sessions, err)
		return nil, err
	}

	if err := s.sessions.UpdateUser(ctx, user); err != nil {
		s.log.Warn(ctx, "session profile refresh failed", "error", err)
	}
	return user, nil
}
