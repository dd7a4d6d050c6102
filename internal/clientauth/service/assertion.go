// Package service verifies JWT client assertions and converts certificates
// and remote key sets into verification keys.
package service

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	apperrors "github.com/allisson/idcore/internal/errors"
)

// HMACMethods are the signing algorithms accepted for shared secret assertions.
var HMACMethods = []string{"HS256", "HS384", "HS512"}

// PeekClientID reads the subject of an assertion without verifying it. The
// result only selects which keys to verify against.
func PeekClientID(assertion string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(assertion, claims); err != nil {
		return "", clientAuthDomain.ErrMalformedAssertion
	}
	if claims.Subject != "" {
		return claims.Subject, nil
	}
	if claims.Issuer != "" {
		return claims.Issuer, nil
	}
	return "", clientAuthDomain.ErrMalformedAssertion
}

// PeekKeyID returns the kid header of an assertion, or "" when absent.
func PeekKeyID(assertion string) string {
	token, _, err := jwt.NewParser().ParseUnverified(assertion, &jwt.RegisteredClaims{})
	if err != nil {
		return ""
	}
	kid, _ := token.Header["kid"].(string)
	return kid
}

// AssertionVerifier checks an assertion's signature and its standard claims.
type AssertionVerifier struct {
	endpoints clientAuthDomain.Endpoints
	leeway    time.Duration
	now       func() time.Time
}

// NewAssertionVerifier creates an AssertionVerifier accepting any of the
// endpoint URLs as audience. leeway absorbs clock skew on exp, nbf and iat.
func NewAssertionVerifier(endpoints clientAuthDomain.Endpoints, leeway time.Duration) *AssertionVerifier {
	return &AssertionVerifier{
		endpoints: endpoints,
		leeway:    leeway,
		now:       time.Now,
	}
}

// Verify validates assertion with key. iss and sub must both equal clientID,
// exp must be present and in the future and aud must name this server.
func (v *AssertionVerifier) Verify(
	assertion string,
	clientID string,
	key any,
	methods []string,
) (*jwt.RegisteredClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)

	claims := &jwt.RegisteredClaims{}
	_, err := parser.ParseWithClaims(assertion, claims, func(*jwt.Token) (any, error) {
		return key, nil
	})
	if err != nil {
		return nil, apperrors.Wrap(clientAuthDomain.ErrInvalidClient, err.Error())
	}

	if claims.Issuer != clientID || claims.Subject != clientID {
		return nil, apperrors.Wrap(clientAuthDomain.ErrInvalidClient, "issuer and subject must equal the client id")
	}

	accepted := v.endpoints.Audiences()
	if !slices.ContainsFunc(claims.Audience, func(aud string) bool {
		return slices.Contains(accepted, aud)
	}) {
		return nil, apperrors.Wrap(clientAuthDomain.ErrInvalidClient, "audience does not name this server")
	}
	return claims, nil
}

// MethodsFor returns the asymmetric signing algorithms usable with pub.
func MethodsFor(pub any) []string {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return []string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512"}
	case *ecdsa.PublicKey:
		switch k.Curve.Params().BitSize {
		case 256:
			return []string{"ES256"}
		case 384:
			return []string{"ES384"}
		case 521:
			return []string{"ES512"}
		}
	case ed25519.PublicKey:
		return []string{"EdDSA"}
	}
	return nil
}
