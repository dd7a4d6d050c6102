// Package domain defines authentication sessions and the single sign-on
// cookies that let a browser resume them.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of an AuthSession.
type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionInactive SessionStatus = "inactive"
)

// AuthSession anchors the tokens and cookies issued after a subject authenticates.
type AuthSession struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	SubjectID     string
	Scopes        []string
	Status        SessionStatus
	Fingerprint   []byte // nil when fingerprinting was disabled at creation
	RedirectURI   string
	Branding      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive reports whether the session may back live tokens.
func (s *AuthSession) IsActive() bool {
	return s.Status == SessionActive
}

// HasScope reports whether scope was granted to the session.
func (s *AuthSession) HasScope(scope string) bool {
	for _, granted := range s.Scopes {
		if granted == scope {
			return true
		}
	}
	return false
}

// SingleSignOnCookie is one issued cookie generation. It is looked up by the
// SHA-256 of its ciphertext and never updated; regeneration inserts a new row.
type SingleSignOnCookie struct {
	ID             uuid.UUID
	SessionID      uuid.UUID
	CiphertextHash string
	Ciphertext     []byte
	Key            []byte
	CreatedAt      time.Time
}

// IssuedCookie is returned to the caller after generating a cookie. Value is
// the base64url ciphertext placed in the browser cookie.
type IssuedCookie struct {
	SessionID uuid.UUID
	Value     string
	Cookie    *SingleSignOnCookie
}

// CreateAuthSessionInput opens a new session.
type CreateAuthSessionInput struct {
	ApplicationID uuid.UUID
	SubjectID     string
	Scopes        []string
	Fingerprint   []byte
	RedirectURI   string
	Branding      string
}

// RequestFingerprint carries the request headers a device fingerprint is derived from.
type RequestFingerprint struct {
	DeviceFingerprint string // explicit header value, wins when present
	UserAgent         string
	AcceptLanguage    string
	ClientHints       []string
}
