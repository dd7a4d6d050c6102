// Package http provides the HTTP server, its router and shared middleware.
package http

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/cache"
	clientAuthHTTP "github.com/allisson/idcore/internal/clientauth/http"
	"github.com/allisson/idcore/internal/config"
	"github.com/allisson/idcore/internal/metrics"
	sessionHTTP "github.com/allisson/idcore/internal/session/http"
	signatureHTTP "github.com/allisson/idcore/internal/signature/http"
	tokenHTTP "github.com/allisson/idcore/internal/token/http"
)

const readinessTimeout = 2 * time.Second

// Server is the public HTTP server of the trust core.
type Server struct {
	db     *sql.DB
	cache  cache.Cache
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// Handlers groups the endpoint handlers mounted by SetupRouter.
type Handlers struct {
	Token     *tokenHTTP.TokenHandler
	SSO       *sessionHTTP.SSOHandler
	Callback  *signatureHTTP.CallbackHandler
	KeySet    *clientAuthHTTP.KeySetHandler
	Signature gin.HandlerFunc
}

// NewServer creates a new HTTP server. SetupRouter must be called before Start.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:       15 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// SetupRouter builds the router. ctx bounds background middleware workers.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	handlers Handlers,
	lookupCache cache.Cache,
	metricsProvider *metrics.Provider,
) {
	s.cache = lookupCache

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, cfg.SignatureHeader, s.logger)
	if corsMiddleware != nil {
		router.Use(corsMiddleware)
	}
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	v1.POST("/oauth/introspect", handlers.Token.IntrospectHandler)

	userinfo := v1.Group("/userinfo", handlers.Signature)
	userinfo.GET("", handlers.Token.UserInfoHandler)
	userinfo.POST("", handlers.Token.UserInfoHandler)

	sso := v1.Group("/sso")
	sso.POST("/continue", handlers.SSO.ContinueHandler)
	sso.POST("/logout", handlers.SSO.LogoutHandler)

	v1.POST("/callbacks/:client_id", handlers.Callback.ReceiveHandler)
	v1.GET("/clients/:client_id/jwks.json", handlers.KeySet.GetHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the database, and the lookup cache when
// one is configured, answer.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	components := gin.H{}
	ready := true

	if s.db == nil || s.db.PingContext(ctx) != nil {
		components["database"] = "error"
		ready = false
	} else {
		components["database"] = "ok"
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			components["cache"] = "error"
			ready = false
		} else {
			components["cache"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
