// Package domain defines issued tokens, the scopes that drive claim
// assembly, and the claim names written to introspection responses.
package domain

import (
	"time"

	"github.com/google/uuid"

	sessionDomain "github.com/allisson/idcore/internal/session/domain"
)

// TokenType distinguishes the kinds of token the server issues.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
	TokenID      TokenType = "id"
	TokenCode    TokenType = "code"
)

// ParseTokenType converts a string into a TokenType.
func ParseTokenType(s string) (TokenType, error) {
	switch TokenType(s) {
	case TokenAccess, TokenRefresh, TokenID, TokenCode:
		return TokenType(s), nil
	default:
		return "", ErrInvalidTokenType
	}
}

// Token is an issued token. Only ValueHash is persisted; Value is filled in
// when the token is created or resolved from a presented value. SigningKey
// never leaves the database, so it is not part of the cached encoding.
type Token struct {
	ID            uuid.UUID  `cbor:"1,keyasint"`
	Type          TokenType  `cbor:"2,keyasint"`
	ValueHash     string     `cbor:"3,keyasint"`
	SessionID     uuid.UUID  `cbor:"4,keyasint"`
	ApplicationID uuid.UUID  `cbor:"5,keyasint"`
	SubjectID     string     `cbor:"6,keyasint"`
	Opaque        bool       `cbor:"7,keyasint"`
	SigningKey    []byte     `cbor:"-"`
	ExpiresAt     *time.Time `cbor:"9,keyasint,omitempty"`
	CreatedAt     time.Time  `cbor:"10,keyasint"`

	Value string `cbor:"-"`
}

// IsActive reports whether the token has an expiry in the future and its
// session is active. A token is never alive on its own.
func (t *Token) IsActive(now time.Time, session *sessionDomain.AuthSession) bool {
	if t.ExpiresAt == nil || !now.Before(*t.ExpiresAt) {
		return false
	}
	return session != nil && session.ID == t.SessionID && session.IsActive()
}

// CreateTokenInput persists a token whose value was produced by the caller.
type CreateTokenInput struct {
	Type          TokenType
	ApplicationID uuid.UUID
	SubjectID     string
	SessionID     uuid.UUID
	Value         string
	Opaque        bool
	SigningKey    []byte
	TTL           time.Duration
}

// IssueTokenInput mints a new opaque token for a session.
type IssueTokenInput struct {
	Type           TokenType
	SessionID      uuid.UUID
	WithSigningKey bool
}
