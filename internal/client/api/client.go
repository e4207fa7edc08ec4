// Package api is the gateway to the pricescout backend. It owns the HTTP
// contract: request shaping, bearer-token injection and error normalization.
// Every failure surfaces as one of ErrUnauthenticated, *NetworkError or
// *ServerError; raw transport errors never escape. The gateway does not
// retry; idempotence differs per operation, so retry policy belongs to
// callers.
package api

import (
	"context"

	"github.com/pricescout/pricescout/internal/client/models"
)

// TokenSource yields the current session token, or "" when logged out.
// The gateway re-reads it for every request; tokens are never cached here.
type TokenSource interface {
	Token() string
}

// Client is the backend API surface consumed by the services layer.
type Client interface {
	Close() error

	// ExchangeGoogleCredential trades a Google ID credential for the
	// backend's own token and the user's profile.
	ExchangeGoogleCredential(ctx context.Context, credential string) (*models.UserProfile, string, error)

	// Search runs a product price comparison for productName.
	Search(ctx context.Context, productName string) (*models.ComparisonResult, error)

	// Trending returns the public trending-searches list.
	Trending(ctx context.Context) ([]models.TrendingProduct, error)

	// UploadImage posts an image artifact and returns the detected product name.
	UploadImage(ctx context.Context, artifact *models.CaptureArtifact) (string, error)

	// Profile fetches the authoritative profile of the signed-in user.
	Profile(ctx context.Context) (*models.UserProfile, error)

	// UpdateProfile saves the user's display name and returns the refreshed profile.
	UpdateProfile(ctx context.Context, name string) (*models.UserProfile, error)

	// SearchHistory fetches the user's search history, newest first.
	SearchHistory(ctx context.Context) ([]models.HistoryEntry, error)

	// DeleteSearch removes one history entry.
	DeleteSearch(ctx context.Context, id string) error

	// ClearSearchHistory removes every history entry.
	ClearSearchHistory(ctx context.Context) error

	// Ping checks backend liveness.
	Ping(ctx context.Context) error
}
