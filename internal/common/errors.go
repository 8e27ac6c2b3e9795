// Package common defines shared constants and sentinel errors used across
// the authkeeper server, its transports and the CLI client. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Validation errors. Local to the call, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// Identity errors.
	ErrDuplicateIdentity  = errors.New("identity already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")

	// Token errors. Transports surface all of them as "re-authenticate".
	ErrTamperedToken  = errors.New("tampered token")
	ErrExpiredToken   = errors.New("expired token")
	ErrMalformedToken = errors.New("malformed token")
	ErrRevokedToken   = errors.New("revoked token")
)

// IsTokenError reports whether err is one of the token validation failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrTamperedToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrRevokedToken)
}
