package domain

import (
	"github.com/allisson/idcore/internal/errors"
)

// Session and cookie errors.
var (
	// ErrSessionNotFound indicates no auth session exists for an id.
	ErrSessionNotFound = errors.Wrap(errors.ErrNotFound, "auth session not found")

	// ErrCookieNotFound indicates no stored cookie matches a ciphertext hash.
	ErrCookieNotFound = errors.Wrap(errors.ErrNotFound, "sso cookie not found")

	// ErrInvalidCookie indicates a presented cookie does not resolve to a session.
	ErrInvalidCookie = errors.Wrap(errors.ErrUnauthorized, "invalid sso cookie")

	// ErrSessionInactive indicates the session behind a cookie or token was deactivated.
	ErrSessionInactive = errors.Wrap(errors.ErrUnauthorized, "auth session inactive")

	// ErrFingerprintMismatch indicates the request comes from a different device
	// than the one the session was created on.
	ErrFingerprintMismatch = errors.Wrap(errors.ErrUnauthorized, "session fingerprint mismatch")
)
