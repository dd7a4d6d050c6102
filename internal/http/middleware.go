package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// CustomLoggerMiddleware logs one structured line per request, tagged with
// the request id when the requestid middleware runs first.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("http request", attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn("http request", attrs...)
		default:
			logger.Info("http request", attrs...)
		}
	}
}

// ipRateLimiterStore holds per-IP rate limiters with automatic cleanup.
type ipRateLimiterStore struct {
	limiters sync.Map // client IP -> *ipRateLimiterEntry
	rps      float64
	burst    int
}

type ipRateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

// RateLimitMiddleware enforces a per-IP token bucket on the unauthenticated
// trust endpoints (introspection, SSO and callbacks), where assertion and
// cookie guessing would otherwise be unbounded.
//
// Stale limiters are swept until ctx is cancelled. A rejected request gets
// 429 with a Retry-After header.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &ipRateLimiterStore{
		rps:   rps,
		burst: burst,
	}

	go store.cleanupStale(ctx, 5*time.Minute, time.Hour)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		limiter := store.getLimiter(clientIP)

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds())
			reservation.Cancel()
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.Debug("rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests from this IP. Please retry after the specified delay.",
			})
			return
		}

		c.Next()
	}
}

func (s *ipRateLimiterStore) getLimiter(ip string) *rate.Limiter {
	now := time.Now()
	entry := &ipRateLimiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: now,
	}
	val, loaded := s.limiters.LoadOrStore(ip, entry)
	if loaded {
		entry = val.(*ipRateLimiterEntry)
		entry.mu.Lock()
		entry.lastAccess = now
		entry.mu.Unlock()
	}
	return entry.limiter
}

// cleanupStale drops limiters idle for longer than maxIdle.
func (s *ipRateLimiterStore) cleanupStale(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(time.Now().Add(-maxIdle))
		}
	}
}

func (s *ipRateLimiterStore) sweep(threshold time.Time) {
	s.limiters.Range(func(key, value any) bool {
		entry := value.(*ipRateLimiterEntry)
		entry.mu.Lock()
		stale := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if stale {
			s.limiters.Delete(key)
		}
		return true
	})
}
