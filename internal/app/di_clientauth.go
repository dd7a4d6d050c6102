package app

import (
	"context"
	"fmt"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	clientAuthService "github.com/allisson/idcore/internal/clientauth/service"
	clientAuthUseCase "github.com/allisson/idcore/internal/clientauth/usecase"
)

// JWKSCache returns the cache of application-published key sets.
func (c *Container) JWKSCache() (*clientAuthService.JWKSCache, error) {
	var err error
	c.jwksCacheInit.Do(func() {
		c.jwksCache, err = clientAuthService.NewJWKSCache(context.Background(), c.config.JWKSFetchTimeout)
		if err != nil {
			c.initErrors["jwksCache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["jwksCache"]; exists {
		return nil, storedErr
	}
	return c.jwksCache, nil
}

// ClientAuthenticator returns the chain of client assertion authenticators.
func (c *Container) ClientAuthenticator() (clientAuthUseCase.Authenticator, error) {
	var err error
	c.clientAuthenticatorInit.Do(func() {
		c.clientAuthenticator, err = c.initClientAuthenticator()
		if err != nil {
			c.initErrors["clientAuthenticator"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["clientAuthenticator"]; exists {
		return nil, storedErr
	}
	return c.clientAuthenticator, nil
}

// KeySetUseCase returns the use case publishing client verification keys.
func (c *Container) KeySetUseCase() (clientAuthUseCase.KeySetUseCase, error) {
	var err error
	c.keySetUseCaseInit.Do(func() {
		c.keySetUseCase, err = c.initKeySetUseCase()
		if err != nil {
			c.initErrors["keySetUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keySetUseCase"]; exists {
		return nil, storedErr
	}
	return c.keySetUseCase, nil
}

// assertionEndpoints lists the audiences a client assertion may name.
func (c *Container) assertionEndpoints() clientAuthDomain.Endpoints {
	return clientAuthDomain.Endpoints{
		Issuer:        c.config.IssuerURL,
		Token:         c.config.TokenEndpointURL,
		Introspection: c.config.IntrospectionEndpointURL,
		Revocation:    c.config.RevocationEndpointURL,
	}
}

// initClientAuthenticator chains client_secret_jwt and private_key_jwt and
// audits every decision the chain makes.
func (c *Container) initClientAuthenticator() (clientAuthUseCase.Authenticator, error) {
	directory, err := c.Directory()
	if err != nil {
		return nil, err
	}
	credentials, err := c.CredentialUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential use case for client authentication: %w", err)
	}
	certificates, err := c.CertificateUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate use case for client authentication: %w", err)
	}
	remoteKeys, err := c.JWKSCache()
	if err != nil {
		return nil, err
	}

	logger := c.Logger()
	verifier := clientAuthService.NewAssertionVerifier(c.assertionEndpoints(), c.config.AssertionClockSkew)

	secretJWT := clientAuthUseCase.NewSecretJWTAuthenticator(
		directory,
		credentials,
		remoteKeys,
		verifier,
		c.config.MaxActiveSecrets,
		logger,
	)
	privateKeyJWT := clientAuthUseCase.NewPrivateKeyJWTAuthenticator(
		directory,
		credentials,
		certificates,
		remoteKeys,
		verifier,
		logger,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for client authentication: %w", err)
		}
		secretJWT = clientAuthUseCase.NewAuthenticatorWithMetrics(secretJWT, "client_secret_jwt", businessMetrics)
		privateKeyJWT = clientAuthUseCase.NewAuthenticatorWithMetrics(
			privateKeyJWT,
			"private_key_jwt",
			businessMetrics,
		)
	}

	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for client authentication: %w", err)
	}
	return clientAuthUseCase.NewAuthenticatorWithAudit(
		clientAuthUseCase.NewChain(secretJWT, privateKeyJWT),
		auditUseCase,
		logger,
	), nil
}

// initKeySetUseCase creates the key set use case with all its dependencies.
func (c *Container) initKeySetUseCase() (clientAuthUseCase.KeySetUseCase, error) {
	directory, err := c.Directory()
	if err != nil {
		return nil, err
	}
	credentials, err := c.CredentialUseCase()
	if err != nil {
		return nil, err
	}
	certificates, err := c.CertificateUseCase()
	if err != nil {
		return nil, err
	}

	baseUseCase := clientAuthUseCase.NewKeySetUseCase(directory, credentials, certificates, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for key set use case: %w", err)
		}
		return clientAuthUseCase.NewKeySetUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}
