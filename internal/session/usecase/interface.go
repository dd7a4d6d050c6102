// Package usecase manages auth sessions and the SSO cookies that resume them.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

// AuthSessionRepository persists auth sessions.
type AuthSessionRepository interface {
	Create(ctx context.Context, session *sessionDomain.AuthSession) error
	Get(ctx context.Context, id uuid.UUID) (*sessionDomain.AuthSession, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status sessionDomain.SessionStatus, updatedAt time.Time) error
}

// CookieRepository persists issued SSO cookies by ciphertext hash.
type CookieRepository interface {
	Create(ctx context.Context, cookie *sessionDomain.SingleSignOnCookie) error
	GetByHash(ctx context.Context, ciphertextHash string) (*sessionDomain.SingleSignOnCookie, error)
}

// AuditRecorder stores signed audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event *auditDomain.Event) error
}

// TokenIssuer mints tokens for a session.
type TokenIssuer interface {
	Issue(ctx context.Context, input *tokenDomain.IssueTokenInput) (*tokenDomain.Token, error)
}

// SessionUseCase is the SSO session manager.
type SessionUseCase interface {
	// CreateAuthSession opens an active session for an authenticated subject.
	CreateAuthSession(
		ctx context.Context,
		input *sessionDomain.CreateAuthSessionInput,
	) (*sessionDomain.AuthSession, error)

	GetAuthSession(ctx context.Context, id uuid.UUID) (*sessionDomain.AuthSession, error)

	// DeactivateAuthSession marks a session inactive. Tokens and cookies that
	// reference it stop resolving immediately.
	DeactivateAuthSession(ctx context.Context, id uuid.UUID) error

	// GenerateCookie encrypts the session id under a fresh key and stores the
	// result. Every call produces a new cookie generation.
	GenerateCookie(ctx context.Context, sessionID uuid.UUID) (*sessionDomain.IssuedCookie, error)

	// GetAuthSessionFromCookie resolves a cookie value. Any failure, including
	// unknown or tampered values, returns ErrInvalidCookie.
	GetAuthSessionFromCookie(ctx context.Context, value string) (*sessionDomain.AuthSession, error)

	// ValidateSession returns ErrSessionInactive or ErrFingerprintMismatch when
	// the session may not be resumed from the presented request.
	ValidateSession(
		ctx context.Context,
		session *sessionDomain.AuthSession,
		request sessionDomain.RequestFingerprint,
	) error

	IsValidAuthSession(
		ctx context.Context,
		session *sessionDomain.AuthSession,
		request sessionDomain.RequestFingerprint,
	) bool

	// GetAccessToken resumes the session behind a cookie and issues a fresh
	// access token carrying a signing key.
	GetAccessToken(
		ctx context.Context,
		value string,
		request sessionDomain.RequestFingerprint,
	) (*tokenDomain.Token, error)

	// Logout deactivates the session behind a cookie.
	Logout(ctx context.Context, value string) error
}
