// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	auditService "github.com/allisson/idcore/internal/audit/service"
	auditUseCase "github.com/allisson/idcore/internal/audit/usecase"
	"github.com/allisson/idcore/internal/cache"
	clientAuthService "github.com/allisson/idcore/internal/clientauth/service"
	clientAuthUseCase "github.com/allisson/idcore/internal/clientauth/usecase"
	"github.com/allisson/idcore/internal/config"
	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	cryptoService "github.com/allisson/idcore/internal/crypto/service"
	cryptoUseCase "github.com/allisson/idcore/internal/crypto/usecase"
	"github.com/allisson/idcore/internal/database"
	directoryUseCase "github.com/allisson/idcore/internal/directory/usecase"
	"github.com/allisson/idcore/internal/http"
	"github.com/allisson/idcore/internal/metrics"
	registryUseCase "github.com/allisson/idcore/internal/registry/usecase"
	sessionUseCase "github.com/allisson/idcore/internal/session/usecase"
	signatureUseCase "github.com/allisson/idcore/internal/signature/usecase"
	tokenUseCase "github.com/allisson/idcore/internal/token/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	lookupCache     cache.Cache
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Managers
	txManager database.TxManager

	// Crypto
	kmsService            cryptoService.KMSService
	masterPassword        *cryptoDomain.MasterPassword
	envelope              cryptoService.Envelope
	keyMaterialRepository cryptoUseCase.KeyMaterialRepository
	envelopeStore         cryptoUseCase.EnvelopeStore
	masterPasswordUseCase cryptoUseCase.MasterPasswordUseCase

	// Audit
	auditSigner          auditService.Signer
	auditEventRepository auditUseCase.EventRepository
	auditUseCase         auditUseCase.AuditUseCase

	// Directory and registry
	directory             *directoryUseCase.Directory
	certificateRepository registryUseCase.CertificateRepository
	secretRepository      registryUseCase.SecretRepository
	credentialRepository  registryUseCase.CredentialRepository
	certificateUseCase    registryUseCase.CertificateUseCase
	credentialUseCase     registryUseCase.CredentialUseCase

	// Client authentication
	jwksCache           *clientAuthService.JWKSCache
	clientAuthenticator clientAuthUseCase.Authenticator
	keySetUseCase       clientAuthUseCase.KeySetUseCase

	// Tokens, sessions and signatures
	tokenRepository   tokenUseCase.TokenRepository
	tokenUseCase      tokenUseCase.TokenUseCase
	sessionRepository sessionUseCase.AuthSessionRepository
	cookieRepository  sessionUseCase.CookieRepository
	sessionUseCase    sessionUseCase.SessionUseCase
	signatureUseCase  signatureUseCase.SignatureUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                        sync.Mutex
	loggerInit                sync.Once
	dbInit                    sync.Once
	lookupCacheInit           sync.Once
	metricsProviderInit       sync.Once
	businessMetricsInit       sync.Once
	txManagerInit             sync.Once
	kmsServiceInit            sync.Once
	masterPasswordInit        sync.Once
	envelopeInit              sync.Once
	keyMaterialRepositoryInit sync.Once
	envelopeStoreInit         sync.Once
	masterPasswordUseCaseInit sync.Once
	auditSignerInit           sync.Once
	auditEventRepositoryInit  sync.Once
	auditUseCaseInit          sync.Once
	directoryInit             sync.Once
	certificateRepositoryInit sync.Once
	secretRepositoryInit      sync.Once
	credentialRepositoryInit  sync.Once
	certificateUseCaseInit    sync.Once
	credentialUseCaseInit     sync.Once
	jwksCacheInit             sync.Once
	clientAuthenticatorInit   sync.Once
	keySetUseCaseInit         sync.Once
	tokenRepositoryInit       sync.Once
	tokenUseCaseInit          sync.Once
	sessionRepositoryInit     sync.Once
	cookieRepositoryInit      sync.Once
	sessionUseCaseInit        sync.Once
	signatureUseCaseInit      sync.Once
	httpServerInit            sync.Once
	metricsServerInit         sync.Once
	initErrors                map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	var err error
	c.dbInit.Do(func() {
		c.db, err = c.initDB()
		if err != nil {
			c.initErrors["db"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	var err error
	c.txManagerInit.Do(func() {
		c.txManager, err = c.initTxManager()
		if err != nil {
			c.initErrors["txManager"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// LookupCache returns the Redis lookup cache, or a no-op cache when caching is disabled.
func (c *Container) LookupCache() (cache.Cache, error) {
	var err error
	c.lookupCacheInit.Do(func() {
		c.lookupCache, err = c.initLookupCache()
		if err != nil {
			c.initErrors["lookupCache"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["lookupCache"]; exists {
		return nil, storedErr
	}
	return c.lookupCache, nil
}

// MetricsProvider returns the Prometheus-backed meter provider, or nil when
// metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	var err error
	c.metricsProviderInit.Do(func() {
		c.metricsProvider, err = c.initMetricsProvider()
		if err != nil {
			c.initErrors["metricsProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	var err error
	c.businessMetricsInit.Do(func() {
		c.businessMetrics, err = c.initBusinessMetrics()
		if err != nil {
			c.initErrors["businessMetrics"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.jwksCache != nil {
		c.jwksCache.Close()
	}

	if c.lookupCache != nil {
		if err := c.lookupCache.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("lookup cache close: %w", err))
		}
	}

	if c.auditSigner != nil {
		c.auditSigner.Close()
	}

	if c.masterPassword != nil {
		c.masterPassword.Close()
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(shutdownErrors...))
	}
	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initTxManager creates the transaction manager using the database connection.
func (c *Container) initTxManager() (database.TxManager, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
	}
	return database.NewTxManager(db), nil
}

// initLookupCache connects to Redis when caching is enabled.
func (c *Container) initLookupCache() (cache.Cache, error) {
	if !c.config.CacheEnabled {
		return cache.NewNoopCache(), nil
	}

	redisCache, err := cache.NewRedisCache(context.Background(), cache.RedisConfig{
		URL:        c.config.RedisURL,
		KeyPrefix:  c.config.CacheKeyPrefix,
		DefaultTTL: c.config.CacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to lookup cache: %w", err)
	}
	return redisCache, nil
}

// initMetricsProvider creates the metrics provider when metrics are enabled.
func (c *Container) initMetricsProvider() (*metrics.Provider, error) {
	if !c.config.MetricsEnabled {
		return nil, nil
	}
	provider, err := metrics.NewProvider(c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics provider: %w", err)
	}
	return provider, nil
}

// initBusinessMetrics creates the business metrics recorder on top of the provider.
func (c *Container) initBusinessMetrics() (metrics.BusinessMetrics, error) {
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return metrics.NewNoOpBusinessMetrics(), nil
	}
	businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return businessMetrics, nil
}

// unsupportedDriver reports a DB_DRIVER value no repository exists for.
func (c *Container) unsupportedDriver() error {
	return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
}
