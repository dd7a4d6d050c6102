// Package domain defines the read-only directory the trust core consults:
// applications (OAuth clients), their organizations, users and permissions.
// Records are owned and written by the administration layer.
package domain

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/allisson/idcore/internal/errors"
	customValidation "github.com/allisson/idcore/internal/validation"
)

// AuthMethod is the token endpoint authentication method an application uses.
type AuthMethod string

const (
	// AuthMethodNone marks a public client.
	AuthMethodNone AuthMethod = "none"
	// AuthMethodClientSecretJWT authenticates with an HMAC-signed assertion.
	AuthMethodClientSecretJWT AuthMethod = "client_secret_jwt"
	// AuthMethodPrivateKeyJWT authenticates with an asymmetrically signed assertion.
	AuthMethodPrivateKeyJWT AuthMethod = "private_key_jwt"
)

// ParseAuthMethod converts a stored or configured string into an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch AuthMethod(s) {
	case AuthMethodNone, AuthMethodClientSecretJWT, AuthMethodPrivateKeyJWT:
		return AuthMethod(s), nil
	default:
		return "", ErrUnknownAuthMethod
	}
}

// ParseJWKSURL checks a stored key set location. An empty value means the
// application publishes no key set.
func ParseJWKSURL(s string) (string, error) {
	if err := validation.Validate(s, customValidation.HTTPSURL); err != nil {
		return "", ErrInvalidJWKSURL
	}
	return s, nil
}

// Application is an OAuth client registered under an organization.
type Application struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	ClientID       string
	Name           string
	AuthMethod     AuthMethod
	RequirePKCE    bool
	JWKSURL        string // optional published key set for private_key_jwt
	TokenSettings  TokenSettings
	CreatedAt      time.Time
}

// IsPublic reports whether the application has no client authentication.
func (a *Application) IsPublic() bool {
	return a.AuthMethod == AuthMethodNone
}

// TokenSettings are per-application overrides. Zero values fall back to the
// server defaults.
type TokenSettings struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	MaxTransitTime  time.Duration
}

// Organization owns applications and certificates.
type Organization struct {
	ID   uuid.UUID
	GUID string
	Name string
}

// User is an authenticated end user.
type User struct {
	ID            uuid.UUID
	GroupID       string
	RowID         int64
	Name          string
	PhoneNumber   string
	Email         string
	LinkedLoginID string
	Metadata      map[string]any
}

// Permission grants a verb on a named resource.
type Permission struct {
	Resource string
	Verb     string
}

// Directory lookup errors.
var (
	ErrApplicationNotFound  = errors.Wrap(errors.ErrNotFound, "application not found")
	ErrOrganizationNotFound = errors.Wrap(errors.ErrNotFound, "organization not found")
	ErrUserNotFound         = errors.Wrap(errors.ErrNotFound, "user not found")
	ErrUnknownAuthMethod    = errors.Wrap(errors.ErrInvalidInput, "unknown auth method")
	ErrInvalidJWKSURL       = errors.Wrap(errors.ErrInvalidInput, "jwks url must be an absolute https URL")
)
