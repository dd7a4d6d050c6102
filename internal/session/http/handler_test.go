package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	"github.com/allisson/idcore/internal/session/http/dto"
	httpMocks "github.com/allisson/idcore/internal/session/http/mocks"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

const testCookieName = "idcore_sso"

func setupSSOTestHandler(t *testing.T) (*SSOHandler, *httpMocks.MockSessionUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &httpMocks.MockSessionUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewSSOHandler(mockUseCase, CookieSettings{Name: testCookieName, Secure: true}, logger)
	return handler, mockUseCase
}

func createCookieContext(path, cookieValue string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Accept-Language", "en-US")
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: cookieValue})
	}
	c.Request = req

	return c, w
}

func findCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == testCookieName {
			return cookie
		}
	}
	return nil
}

func TestSSOHandler_ContinueHandler(t *testing.T) {
	t.Run("Success_IssuesTokenAndRotatesCookie", func(t *testing.T) {
		handler, mockUseCase := setupSSOTestHandler(t)

		sessionID := uuid.Must(uuid.NewV7())
		expiresAt := time.Now().UTC().Add(time.Hour)
		token := &tokenDomain.Token{Value: "access", SessionID: sessionID, ExpiresAt: &expiresAt}
		fingerprint := sessionDomain.RequestFingerprint{
			UserAgent:      "test-agent",
			AcceptLanguage: "en-US",
			ClientHints:    []string{},
		}

		mockUseCase.On("GetAccessToken", mock.Anything, "old-cookie", fingerprint).Return(token, nil).Once()
		mockUseCase.On("GenerateCookie", mock.Anything, sessionID).
			Return(&sessionDomain.IssuedCookie{SessionID: sessionID, Value: "new-cookie"}, nil).Once()

		c, w := createCookieContext("/v1/sso/continue", "old-cookie")
		handler.ContinueHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.AccessTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "access", response.AccessToken)
		assert.Equal(t, "Bearer", response.TokenType)
		assert.InDelta(t, 3600, response.ExpiresIn, 5)

		cookie := findCookie(w)
		require.NotNil(t, cookie)
		assert.Equal(t, "new-cookie", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)

		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_MissingCookie", func(t *testing.T) {
		handler, mockUseCase := setupSSOTestHandler(t)

		c, w := createCookieContext("/v1/sso/continue", "")
		handler.ContinueHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_InactiveSessionClearsCookie", func(t *testing.T) {
		handler, mockUseCase := setupSSOTestHandler(t)

		mockUseCase.On("GetAccessToken", mock.Anything, "old-cookie", mock.Anything).
			Return(nil, sessionDomain.ErrSessionInactive).Once()

		c, w := createCookieContext("/v1/sso/continue", "old-cookie")
		handler.ContinueHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		cookie := findCookie(w)
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
		assert.Less(t, cookie.MaxAge, 0)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_CookieGenerationFails", func(t *testing.T) {
		handler, mockUseCase := setupSSOTestHandler(t)

		sessionID := uuid.Must(uuid.NewV7())
		token := &tokenDomain.Token{Value: "access", SessionID: sessionID}

		mockUseCase.On("GetAccessToken", mock.Anything, "old-cookie", mock.Anything).Return(token, nil).Once()
		mockUseCase.On("GenerateCookie", mock.Anything, sessionID).
			Return(nil, errors.New("database down")).Once()

		c, w := createCookieContext("/v1/sso/continue", "old-cookie")
		handler.ContinueHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

func TestSSOHandler_LogoutHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupSSOTestHandler(t)

		mockUseCase.On("Logout", mock.Anything, "cookie").Return(nil).Once()

		c, w := createCookieContext("/v1/sso/logout", "cookie")
		handler.LogoutHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		cookie := findCookie(w)
		require.NotNil(t, cookie)
		assert.Less(t, cookie.MaxAge, 0)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_UnknownCookie", func(t *testing.T) {
		handler, mockUseCase := setupSSOTestHandler(t)

		mockUseCase.On("Logout", mock.Anything, "cookie").Return(sessionDomain.ErrInvalidCookie).Once()

		c, w := createCookieContext("/v1/sso/logout", "cookie")
		handler.LogoutHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Success_NoCookie", func(t *testing.T) {
		handler, mockUseCase := setupSSOTestHandler(t)

		c, w := createCookieContext("/v1/sso/logout", "")
		handler.LogoutHandler(c)
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockUseCase.AssertExpectations(t)
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		handler, mockUseCase := setupSSOTestHandler(t)

		mockUseCase.On("Logout", mock.Anything, "cookie").Return(errors.New("database down")).Once()

		c, w := createCookieContext("/v1/sso/logout", "cookie")
		handler.LogoutHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		mockUseCase.AssertExpectations(t)
	})
}

func TestRequestFingerprintFromHeaders(t *testing.T) {
	header := http.Header{}
	header.Set(DeviceFingerprintHeader, " device-123 ")
	header.Set("User-Agent", "agent")
	header.Set("Accept-Language", "pt-BR")
	header.Set("Sec-CH-UA-Platform", `"Linux"`)
	header.Set("Sec-CH-UA", `"Chromium";v="120"`)

	fp := RequestFingerprintFromHeaders(header)

	assert.Equal(t, "device-123", fp.DeviceFingerprint)
	assert.Equal(t, "agent", fp.UserAgent)
	assert.Equal(t, "pt-BR", fp.AcceptLanguage)
	assert.Equal(t, []string{`Sec-CH-UA="Chromium";v="120"`, `Sec-CH-UA-Platform="Linux"`}, fp.ClientHints)
}
