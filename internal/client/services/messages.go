// Package services contains the application services of the pricescout
// client: authentication, the search orchestrator, trending, history and
// profile management. Services convert gateway errors into user-visible
// state and never rethrow raw transport failures to the presentation layer.
package services

import (
	"context"
	"errors"

	"github.com/pricescout/pricescout/internal/client/api"
	"github.com/pricescout/pricescout/internal/client/session"
)

// userMessage converts a gateway error into a message fit for display.
func userMessage(err error) string {
	var se *api.ServerError
	var ne *api.NetworkError
	switch {
	case errors.Is(err, api.ErrUnauthenticated):
		return "session expired, please sign in again"
	case errors.As(err, &se):
		return se.Message
	case errors.As(err, &ne):
		return "cannot reach the server"
	default:
		return err.Error()
	}
}

// logoutOnUnauthenticated drops the session when the backend rejected the
// token, so the UI falls back to the signed-out view everywhere at once.
func logoutOnUnauthenticated(ctx context.Context, sessions *session.Store, err error) {
	if errors.Is(err, api.ErrUnauthenticated) {
		_ = sessions.Logout(ctx)
	}
}
