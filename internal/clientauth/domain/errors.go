package domain

import (
	"github.com/allisson/idcore/internal/errors"
)

var (
	// ErrNotApplicable means an authenticator does not handle the request and
	// the next one in a chain should be tried.
	ErrNotApplicable = errors.New("client authentication method not applicable")

	// ErrInvalidClient is the single outward failure for unknown clients, bad
	// signatures, bad claims and exhausted credential slots.
	ErrInvalidClient = errors.Wrap(errors.ErrUnauthorized, "invalid_client")

	// ErrMalformedAssertion means the assertion could not be decoded at all.
	ErrMalformedAssertion = errors.Wrap(ErrInvalidClient, "malformed client assertion")
)
