// Package common defines shared sentinel errors used across client
// components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// ErrValidation marks malformed client input (empty query, bad
	// credential shape). No request is issued for such input.
	ErrValidation = errors.New("validation error")

	// ErrDevice marks a capture device that is denied, missing or broken.
	ErrDevice = errors.New("device unavailable")
)
