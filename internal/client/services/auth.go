package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pricescout/pricescout/internal/client/api"
	"github.com/pricescout/pricescout/internal/client/models"
	"github.com/pricescout/pricescout/internal/client/session"
	"github.com/pricescout/pricescout/internal/common"
	"github.com/pricescout/pricescout/internal/logging"
)

// AuthService defines the authentication operations of the CLI.
//
// Contract:
//   - Preview: locally inspect a pasted Google ID credential before the
//     network exchange.
//   - Login: exchange the credential and persist the session.
//   - Logout: drop the session everywhere.
//   - Restore: rehydrate a persisted session at startup.
//   - Ping: check backend liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Preview(credential string) (*CredentialPreview, error)
	Login(ctx context.Context, credential string) (*models.UserProfile, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (*models.UserProfile, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// CredentialPreview carries unverified claims read from a Google ID token.
// Verification is the backend's job; the preview exists only to greet the
// user and to reject obviously unusable credentials before any network I/O.
type CredentialPreview struct {
	Name  string
	Email string
}

type authService struct {
	client   api.Client
	sessions *session.Store
	log      logging.Logger
	now      func() time.Time
}

// NewAuthService constructs an AuthService bound to the given gateway and
// session store.
func NewAuthService(client api.Client, sessions *session.Store, log logging.Logger) AuthService {
	return &authService{client: client, sessions: sessions, log: log, now: time.Now}
}

// Preview parses the credential without verifying its signature. Structurally
// invalid or already-expired credentials fail with common.ErrValidation.
func (a *authService) Preview(credential string) (*CredentialPreview, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(credential, claims); err != nil {
		return nil, fmt.Errorf("%w: malformed credential", common.ErrValidation)
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(a.now()) {
		return nil, fmt.Errorf("%w: credential expired", common.ErrValidation)
	}

	p := &CredentialPreview{}
	if name, ok := claims["name"].(string); ok {
		p.Name = name
	}
	if email, ok := claims["email"].(string); ok {
		p.Email = email
	}
	return p, nil
}

// Login exchanges the Google credential for the backend's own token and
// persists the resulting session as one unit.
func (a *authService) Login(ctx context.Context, credential string) (*models.UserProfile, error) {
	if _, err := a.Preview(credential); err != nil {
		return nil, err
	}

	user, token, err := a.client.ExchangeGoogleCredential(ctx, credential)
	if err != nil {
		return nil, err
	}

	if err := a.sessions.Login(ctx, user, token); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}

	a.log.Info(ctx, "signed in", "email", user.Email)
	return user, nil
}

func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.Logout(ctx)
}

// Restore rehydrates the persisted session. A nil profile with a nil error
// means "not authenticated".
func (a *authService) Restore(ctx context.Context) (*models.UserProfile, error) {
	sess, err := a.sessions.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	return sess.User, nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
