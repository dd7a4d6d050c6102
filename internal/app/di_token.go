package app

import (
	"context"
	"fmt"

	clientAuthHTTP "github.com/allisson/idcore/internal/clientauth/http"
	"github.com/allisson/idcore/internal/http"
	sessionHTTP "github.com/allisson/idcore/internal/session/http"
	sessionMySQL "github.com/allisson/idcore/internal/session/repository/mysql"
	sessionPostgreSQL "github.com/allisson/idcore/internal/session/repository/postgresql"
	sessionService "github.com/allisson/idcore/internal/session/service"
	sessionUseCase "github.com/allisson/idcore/internal/session/usecase"
	signatureHTTP "github.com/allisson/idcore/internal/signature/http"
	signatureUseCase "github.com/allisson/idcore/internal/signature/usecase"
	tokenHTTP "github.com/allisson/idcore/internal/token/http"
	tokenMySQL "github.com/allisson/idcore/internal/token/repository/mysql"
	tokenPostgreSQL "github.com/allisson/idcore/internal/token/repository/postgresql"
	tokenService "github.com/allisson/idcore/internal/token/service"
	tokenUseCase "github.com/allisson/idcore/internal/token/usecase"
)

// TokenRepository returns the token repository based on database driver.
func (c *Container) TokenRepository() (tokenUseCase.TokenRepository, error) {
	var err error
	c.tokenRepositoryInit.Do(func() {
		c.tokenRepository, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepository"]; exists {
		return nil, storedErr
	}
	return c.tokenRepository, nil
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (tokenUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// SessionRepository returns the auth session repository based on database driver.
func (c *Container) SessionRepository() (sessionUseCase.AuthSessionRepository, error) {
	var err error
	c.sessionRepositoryInit.Do(func() {
		c.sessionRepository, err = c.initSessionRepository()
		if err != nil {
			c.initErrors["sessionRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionRepository"]; exists {
		return nil, storedErr
	}
	return c.sessionRepository, nil
}

// CookieRepository returns the SSO cookie repository based on database driver.
func (c *Container) CookieRepository() (sessionUseCase.CookieRepository, error) {
	var err error
	c.cookieRepositoryInit.Do(func() {
		c.cookieRepository, err = c.initCookieRepository()
		if err != nil {
			c.initErrors["cookieRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["cookieRepository"]; exists {
		return nil, storedErr
	}
	return c.cookieRepository, nil
}

// SessionUseCase returns the SSO session use case.
func (c *Container) SessionUseCase() (sessionUseCase.SessionUseCase, error) {
	var err error
	c.sessionUseCaseInit.Do(func() {
		c.sessionUseCase, err = c.initSessionUseCase()
		if err != nil {
			c.initErrors["sessionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sessionUseCase"]; exists {
		return nil, storedErr
	}
	return c.sessionUseCase, nil
}

// SignatureUseCase returns the body signature use case.
func (c *Container) SignatureUseCase() (signatureUseCase.SignatureUseCase, error) {
	var err error
	c.signatureUseCaseInit.Do(func() {
		c.signatureUseCase, err = c.initSignatureUseCase()
		if err != nil {
			c.initErrors["signatureUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["signatureUseCase"]; exists {
		return nil, storedErr
	}
	return c.signatureUseCase, nil
}

// HTTPServer returns the HTTP server instance with its router configured.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	var err error
	c.httpServerInit.Do(func() {
		c.httpServer, err = c.initHTTPServer(ctx)
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	var err error
	c.metricsServerInit.Do(func() {
		c.metricsServer, err = c.initMetricsServer()
		if err != nil {
			c.initErrors["metricsServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// initTokenRepository creates the token repository based on the database driver.
func (c *Container) initTokenRepository() (tokenUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tokenPostgreSQL.NewPostgreSQLTokenRepository(db), nil
	case "mysql":
		return tokenMySQL.NewMySQLTokenRepository(db), nil
	default:
		return nil, c.unsupportedDriver()
	}
}

// initSessionRepository creates the auth session repository based on the database driver.
func (c *Container) initSessionRepository() (sessionUseCase.AuthSessionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for session repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return sessionPostgreSQL.NewPostgreSQLAuthSessionRepository(db), nil
	case "mysql":
		return sessionMySQL.NewMySQLAuthSessionRepository(db), nil
	default:
		return nil, c.unsupportedDriver()
	}
}

// initCookieRepository creates the SSO cookie repository based on the database driver.
func (c *Container) initCookieRepository() (sessionUseCase.CookieRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for cookie repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return sessionPostgreSQL.NewPostgreSQLCookieRepository(db), nil
	case "mysql":
		return sessionMySQL.NewMySQLCookieRepository(db), nil
	default:
		return nil, c.unsupportedDriver()
	}
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (tokenUseCase.TokenUseCase, error) {
	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, err
	}
	sessions, err := c.SessionRepository()
	if err != nil {
		return nil, err
	}
	directory, err := c.Directory()
	if err != nil {
		return nil, err
	}
	lookupCache, err := c.LookupCache()
	if err != nil {
		return nil, err
	}

	baseUseCase := tokenUseCase.NewTokenUseCase(
		tokenRepo,
		sessions,
		directory,
		tokenService.NewGenerator(),
		lookupCache,
		tokenUseCase.Settings{
			AccessTokenTTL:      c.config.AccessTokenTTL,
			RefreshTokenTTL:     c.config.RefreshTokenTTL,
			IDTokenTTL:          c.config.IDTokenTTL,
			CodeTTL:             c.config.CodeTTL,
			MaxTransitTime:      c.config.MaxTransitTime,
			FingerprintEnabled:  c.config.FingerprintEnabled,
			URLPermissionsScope: c.config.URLPermissionsScope,
			CacheTTL:            c.config.CacheTTL,
		},
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return tokenUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}

// initSessionUseCase creates the session use case with all its dependencies.
func (c *Container) initSessionUseCase() (sessionUseCase.SessionUseCase, error) {
	sessionRepo, err := c.SessionRepository()
	if err != nil {
		return nil, err
	}
	cookieRepo, err := c.CookieRepository()
	if err != nil {
		return nil, err
	}
	tokens, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for session use case: %w", err)
	}
	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for session use case: %w", err)
	}

	baseUseCase := sessionUseCase.NewSessionUseCase(
		sessionRepo,
		cookieRepo,
		tokens,
		sessionService.NewCookieCipher(),
		c.config.FingerprintEnabled,
		auditUseCase,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for session use case: %w", err)
		}
		return sessionUseCase.NewSessionUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}

// initSignatureUseCase creates the signature use case with all its dependencies.
func (c *Container) initSignatureUseCase() (signatureUseCase.SignatureUseCase, error) {
	tokens, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for signature use case: %w", err)
	}
	directory, err := c.Directory()
	if err != nil {
		return nil, err
	}

	baseUseCase := signatureUseCase.NewSignatureUseCase(
		tokens,
		directory,
		signatureUseCase.Settings{
			Window:        c.config.SignatureWindow,
			MaxCandidates: c.config.SignatureMaxCandidates,
		},
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for signature use case: %w", err)
		}
		return signatureUseCase.NewSignatureUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}

// initHTTPServer creates the HTTP server and mounts every handler.
func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}
	lookupCache, err := c.LookupCache()
	if err != nil {
		return nil, err
	}
	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	clients, err := c.ClientAuthenticator()
	if err != nil {
		return nil, fmt.Errorf("failed to get client authenticator for http server: %w", err)
	}
	keySets, err := c.KeySetUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get key set use case for http server: %w", err)
	}
	tokens, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}
	sessions, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for http server: %w", err)
	}
	signatures, err := c.SignatureUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get signature use case for http server: %w", err)
	}

	handlers := http.Handlers{
		Token: tokenHTTP.NewTokenHandler(clients, tokens, signatures, c.config.SignatureHeader, logger),
		SSO: sessionHTTP.NewSSOHandler(
			sessions,
			sessionHTTP.CookieSettings{Name: c.config.SSOCookieName, Secure: c.config.SSOCookieSecure},
			logger,
		),
		Callback: signatureHTTP.NewCallbackHandler(signatures, c.config.SignatureHeader, logger),
		KeySet:   clientAuthHTTP.NewKeySetHandler(keySets, logger),
		Signature: signatureHTTP.SignatureMiddleware(
			signatures,
			signatureHTTP.MiddlewareSettings{
				Header:   c.config.SignatureHeader,
				Required: c.config.SignatureRequired,
			},
			logger,
		),
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, logger)
	server.SetupRouter(ctx, c.config, handlers, lookupCache, metricsProvider)
	return server, nil
}

// initMetricsServer creates the metrics server when metrics are enabled.
func (c *Container) initMetricsServer() (*http.MetricsServer, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, nil
	}
	return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
}
