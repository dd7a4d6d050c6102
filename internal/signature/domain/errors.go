// Package domain defines body signature errors.
package domain

import (
	"github.com/allisson/idcore/internal/errors"
)

var (
	// ErrSigningKeyUnavailable indicates a token that should sign bodies carries no key.
	ErrSigningKeyUnavailable = errors.Wrap(errors.ErrInvalidState, "token signing key unavailable")

	// ErrSignatureMismatch indicates no candidate key reproduces the presented signature.
	ErrSignatureMismatch = errors.Wrap(errors.ErrUnauthorized, "body signature mismatch")

	// ErrMissingSignature indicates the request carries no signature header.
	ErrMissingSignature = errors.Wrap(errors.ErrUnauthorized, "body signature missing")
)
