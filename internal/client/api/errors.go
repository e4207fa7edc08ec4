package api

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when a protected call has no token to send,
// or when the backend rejects the presented token. Callers are expected to
// fall back to the logged-out state.
var ErrUnauthenticated = errors.New("unauthenticated")

// NetworkError wraps a transport failure: no HTTP response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError reports a request the backend received and rejected, or a
// response body the client could not decode. Message carries the backend's
// error payload when one was parseable.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.Status, e.Message)
}
