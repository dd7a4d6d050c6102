// Package usecase authenticates OAuth2 clients from JWT assertions. Each
// strategy handles one token endpoint auth method and returns
// ErrNotApplicable for requests it does not own, so strategies can be chained.
package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwk"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

// ApplicationReader resolves applications by OAuth client id.
type ApplicationReader interface {
	GetApplicationByClientID(ctx context.Context, clientID string) (*directoryDomain.Application, error)
}

// CredentialSource exposes the credential registry read side.
type CredentialSource interface {
	ActiveSlots(ctx context.Context, applicationID uuid.UUID) ([]registryDomain.CredentialSlot, error)
	LoadSecret(ctx context.Context, secretID uuid.UUID) ([]byte, error)
}

// CertificateSource loads decrypted certificate chains.
type CertificateSource interface {
	LoadMaterial(ctx context.Context, id uuid.UUID) (*registryDomain.CertificateMaterial, error)
}

// Authenticator verifies one client authentication request.
type Authenticator interface {
	// Authenticate returns the authenticated client, ErrNotApplicable when the
	// request uses a method this authenticator does not handle, or ErrInvalidClient.
	Authenticate(ctx context.Context, req *clientAuthDomain.Request) (*clientAuthDomain.Client, error)
}

// KeySetUseCase publishes the verification keys of a client.
type KeySetUseCase interface {
	// PublishedKeys returns the JWK set built from the client's active
	// public key certificates.
	PublishedKeys(ctx context.Context, clientID string) (jwk.Set, error)
}
