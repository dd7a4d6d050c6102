// Package usecase issues tokens, resolves presented values through the
// read-through cache and assembles introspection claims.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

// TokenRepository persists tokens by value hash.
type TokenRepository interface {
	Create(ctx context.Context, token *tokenDomain.Token) error
	GetByHash(ctx context.Context, valueHash string, tokenType tokenDomain.TokenType) (*tokenDomain.Token, error)
	// ListByApplicationWithin returns unexpired tokens carrying a signing key
	// that were created in [from, to], newest first, at most limit of them.
	ListByApplicationWithin(
		ctx context.Context,
		applicationID uuid.UUID,
		from, to time.Time,
		limit int,
	) ([]*tokenDomain.Token, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// SessionReader resolves the session a token belongs to.
type SessionReader interface {
	Get(ctx context.Context, id uuid.UUID) (*sessionDomain.AuthSession, error)
}

// DirectoryReader exposes the directory records claim assembly reads.
type DirectoryReader interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*directoryDomain.Application, error)
	GetOrganization(ctx context.Context, id uuid.UUID) (*directoryDomain.Organization, error)
	GetUser(ctx context.Context, id uuid.UUID) (*directoryDomain.User, error)
	ListPermissions(ctx context.Context, userID uuid.UUID) ([]directoryDomain.Permission, error)
	ListURLPermissions(ctx context.Context, applicationID, userID uuid.UUID) ([]string, error)
}

// TokenUseCase is the token service.
type TokenUseCase interface {
	// Create persists a token whose value the caller generated.
	Create(ctx context.Context, input *tokenDomain.CreateTokenInput) (*tokenDomain.Token, error)

	// Issue mints an opaque token for an active session, with an optional
	// signing key, using the application's TTL for the type.
	Issue(ctx context.Context, input *tokenDomain.IssueTokenInput) (*tokenDomain.Token, error)

	// GetByValue resolves a presented value. Returns ErrTokenNotFound when unknown.
	GetByValue(ctx context.Context, value string, tokenType tokenDomain.TokenType) (*tokenDomain.Token, error)

	// IsActive reports whether the token is unexpired and its session active.
	IsActive(ctx context.Context, token *tokenDomain.Token) (bool, error)

	// Authenticate resolves a presented value to an active token. Unknown,
	// expired and orphaned tokens all return ErrInvalidToken.
	Authenticate(ctx context.Context, value string, tokenType tokenDomain.TokenType) (*tokenDomain.Token, error)

	// GetClaimsForToken returns {active:false} for inactive tokens, otherwise
	// the claims selected by the session's granted scopes.
	GetClaimsForToken(ctx context.Context, token *tokenDomain.Token) (tokenDomain.Claims, error)

	ListByApplicationWithin(
		ctx context.Context,
		applicationID uuid.UUID,
		from, to time.Time,
		limit int,
	) ([]*tokenDomain.Token, error)

	// DeleteExpired removes tokens that expired before the given time.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
