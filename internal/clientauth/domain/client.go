// Package domain defines client assertion requests, authenticated clients and
// the errors a client authentication attempt can end with.
package domain

import (
	"github.com/google/uuid"

	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
)

// AssertionTypeJWTBearer is the only client_assertion_type this engine handles.
const AssertionTypeJWTBearer = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// Request carries the client authentication parameters of a token endpoint
// style request. ClientID may be empty, in which case it is read from the
// assertion subject.
type Request struct {
	ClientID      string
	AssertionType string
	Assertion     string
}

// Client is the outcome of a successful authentication.
type Client struct {
	ClientID       string
	ApplicationID  uuid.UUID
	OrganizationID uuid.UUID
	Method         directoryDomain.AuthMethod

	// Slot is the 1-based credential slot that verified the assertion. Zero
	// when the key came from the application's JWKS URL.
	Slot         int
	CredentialID uuid.UUID
	KeyID        string
}

// Endpoints lists the URLs an assertion audience may name.
type Endpoints struct {
	Issuer        string
	Token         string
	Introspection string
	Revocation    string
}

// Audiences returns the non-empty endpoint URLs.
func (e Endpoints) Audiences() []string {
	audiences := make([]string, 0, 4)
	for _, aud := range []string{e.Issuer, e.Token, e.Introspection, e.Revocation} {
		if aud != "" {
			audiences = append(audiences, aud)
		}
	}
	return audiences
}
