// Package common defines shared constants and sentinel errors used across
// fileshare components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Lookup errors (missing path, unknown share token, unknown session).
	ErrorNotFound = errors.New("not found")

	// Registration errors.
	ErrorAlreadyExists = errors.New("already exists")
	ErrorValidation    = errors.New("validation error")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Filesystem and persistence errors.
	ErrorIO      = errors.New("io error")
	ErrorStorage = errors.New("storage error")

	// Session cookie errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
