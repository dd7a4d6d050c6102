// Package http provides HTTP handlers for resuming and ending SSO sessions.
package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/idcore/internal/httputil"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	"github.com/allisson/idcore/internal/session/http/dto"
	sessionUseCase "github.com/allisson/idcore/internal/session/usecase"
)

// DeviceFingerprintHeader carries an explicit device fingerprint set by the
// login front end. It takes precedence over the derived header fingerprint.
const DeviceFingerprintHeader = "X-Device-Fingerprint"

// CookieSettings controls how the SSO cookie is written.
type CookieSettings struct {
	Name   string
	Secure bool
}

// SSOHandler resumes sessions from the SSO cookie and logs them out.
type SSOHandler struct {
	sessionUseCase sessionUseCase.SessionUseCase
	cookie         CookieSettings
	logger         *slog.Logger
}

// NewSSOHandler creates a new SSO handler with required dependencies.
func NewSSOHandler(
	sessionUseCase sessionUseCase.SessionUseCase,
	cookie CookieSettings,
	logger *slog.Logger,
) *SSOHandler {
	return &SSOHandler{
		sessionUseCase: sessionUseCase,
		cookie:         cookie,
		logger:         logger,
	}
}

// ContinueHandler issues a fresh access token for the session behind the SSO
// cookie and rotates the cookie to a new generation.
// POST /v1/sso/continue
func (h *SSOHandler) ContinueHandler(c *gin.Context) {
	value, err := c.Cookie(h.cookie.Name)
	if err != nil || value == "" {
		httputil.HandleErrorGin(c, sessionDomain.ErrInvalidCookie, h.logger)
		return
	}

	ctx := c.Request.Context()
	token, err := h.sessionUseCase.GetAccessToken(ctx, value, RequestFingerprintFromHeaders(c.Request.Header))
	if err != nil {
		if isRejectedCookie(err) {
			h.clearCookie(c)
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	issued, err := h.sessionUseCase.GenerateCookie(ctx, token.SessionID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	h.setCookie(c, issued.Value)

	c.JSON(http.StatusOK, dto.MapTokenToAccessTokenResponse(token, time.Now().UTC()))
}

// LogoutHandler deactivates the session behind the SSO cookie and clears it.
// A missing or unresolvable cookie still clears the browser state.
// POST /v1/sso/logout
func (h *SSOHandler) LogoutHandler(c *gin.Context) {
	value, err := c.Cookie(h.cookie.Name)
	if err == nil && value != "" {
		if err := h.sessionUseCase.Logout(c.Request.Context(), value); err != nil &&
			!errors.Is(err, sessionDomain.ErrInvalidCookie) {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
	}

	h.clearCookie(c)
	c.Status(http.StatusNoContent)
}

func (h *SSOHandler) setCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, 0, "/", "", h.cookie.Secure, true)
}

func (h *SSOHandler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
}

func isRejectedCookie(err error) bool {
	return errors.Is(err, sessionDomain.ErrInvalidCookie) ||
		errors.Is(err, sessionDomain.ErrSessionInactive) ||
		errors.Is(err, sessionDomain.ErrFingerprintMismatch)
}

// RequestFingerprintFromHeaders collects the headers a device fingerprint is
// derived from. Client hints are read in a fixed order.
func RequestFingerprintFromHeaders(header http.Header) sessionDomain.RequestFingerprint {
	hints := make([]string, 0, len(clientHintHeaders))
	for _, name := range clientHintHeaders {
		if v := strings.TrimSpace(header.Get(name)); v != "" {
			hints = append(hints, name+"="+v)
		}
	}
	return sessionDomain.RequestFingerprint{
		DeviceFingerprint: strings.TrimSpace(header.Get(DeviceFingerprintHeader)),
		UserAgent:         header.Get("User-Agent"),
		AcceptLanguage:    header.Get("Accept-Language"),
		ClientHints:       hints,
	}
}

var clientHintHeaders = []string{
	"Sec-CH-UA",
	"Sec-CH-UA-Mobile",
	"Sec-CH-UA-Platform",
}
