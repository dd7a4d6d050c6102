package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	sessionHTTP "github.com/allisson/idcore/internal/session/http"
	signatureHTTP "github.com/allisson/idcore/internal/signature/http"
)

// createCORSMiddleware returns the CORS middleware for browser front ends that
// call the SSO and userinfo endpoints directly, or nil when CORS is disabled
// or no origin is configured.
//
// Credentials are allowed so the SSO cookie travels with cross-origin
// requests. The body signature header is both accepted and exposed.
func createCORSMiddleware(enabled bool, allowOriginsStr, signatureHeader string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	if allowOriginsStr == "" {
		logger.Warn("CORS enabled but no origins configured - CORS will not be applied")
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no valid origins found")
		return nil
	}

	logger.Info("CORS enabled",
		slog.Int("origin_count", len(origins)),
		slog.Any("origins", origins))

	return cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{
			"Authorization",
			"Content-Type",
			signatureHeader,
			signatureHTTP.RequestTimeHeader,
			sessionHTTP.DeviceFingerprintHeader,
		},
		ExposeHeaders: []string{
			"X-Request-Id",
			signatureHeader,
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// parseOrigins splits a comma-separated origin list, dropping blanks.
func parseOrigins(originsStr string) []string {
	if originsStr == "" {
		return nil
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
