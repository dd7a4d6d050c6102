// Package usecase signs response bodies and verifies request bodies against
// the per-token signing keys issued by the token service.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

// TokenSource is the slice of the token service signatures depend on.
type TokenSource interface {
	Authenticate(ctx context.Context, value string, tokenType tokenDomain.TokenType) (*tokenDomain.Token, error)
	IsActive(ctx context.Context, token *tokenDomain.Token) (bool, error)
	ListByApplicationWithin(
		ctx context.Context,
		applicationID uuid.UUID,
		from, to time.Time,
		limit int,
	) ([]*tokenDomain.Token, error)
}

// ApplicationReader resolves applications by OAuth client id.
type ApplicationReader interface {
	GetApplicationByClientID(ctx context.Context, clientID string) (*directoryDomain.Application, error)
}

// SignatureUseCase is the body signature service.
type SignatureUseCase interface {
	// SignBody returns the base64 HMAC-SHA256 of body under the token's
	// signing key, or ErrSigningKeyUnavailable when it has none.
	SignBody(ctx context.Context, token *tokenDomain.Token, body []byte) (string, error)

	// Verify resolves the bearer token in authorization and checks signature
	// against body. It returns the token whose key matched.
	Verify(ctx context.Context, authorization, signature string, body []byte) (*tokenDomain.Token, error)

	// VerifyForClientID accepts the signature when any live token of the
	// client, created in the window ending at requestTime, reproduces it.
	VerifyForClientID(
		ctx context.Context,
		clientID string,
		requestTime time.Time,
		signature string,
		body []byte,
	) (*tokenDomain.Token, error)
}
