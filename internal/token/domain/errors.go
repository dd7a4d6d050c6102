package domain

import (
	"github.com/allisson/idcore/internal/errors"
)

// Token errors.
var (
	// ErrTokenNotFound indicates no token matches a value hash and type.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidToken indicates a presented token is unknown, expired or
	// belongs to an inactive session.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrInvalidTokenType indicates an unknown token type.
	ErrInvalidTokenType = errors.Wrap(errors.ErrInvalidInput, "invalid token type")
)
