package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	signatureHTTP "github.com/allisson/idcore/internal/signature/http"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
	httpMocks "github.com/allisson/idcore/internal/token/http/mocks"
)

const testSignatureHeader = "X-Body-Signature"

type tokenHandlerMocks struct {
	clients    *httpMocks.MockAuthenticator
	tokens     *httpMocks.MockTokenUseCase
	signatures *httpMocks.MockSignatureUseCase
}

func setupTokenTestHandler(t *testing.T) (*TokenHandler, *tokenHandlerMocks) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	m := &tokenHandlerMocks{
		clients:    &httpMocks.MockAuthenticator{},
		tokens:     &httpMocks.MockTokenUseCase{},
		signatures: &httpMocks.MockSignatureUseCase{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewTokenHandler(m.clients, m.tokens, m.signatures, testSignatureHeader, logger)
	return handler, m
}

func (m *tokenHandlerMocks) assertExpectations(t *testing.T) {
	m.clients.AssertExpectations(t)
	m.tokens.AssertExpectations(t)
	m.signatures.AssertExpectations(t)
}

func createFormContext(path string, form url.Values) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req

	return c, w
}

func introspectionForm(token string) url.Values {
	return url.Values{
		"token":                 {token},
		"client_id":             {"client-1"},
		"client_assertion_type": {clientAuthDomain.AssertionTypeJWTBearer},
		"client_assertion":      {"header.payload.signature"},
	}
}

func TestTokenHandler_IntrospectHandler(t *testing.T) {
	applicationID := uuid.Must(uuid.NewV7())
	client := &clientAuthDomain.Client{ClientID: "client-1", ApplicationID: applicationID}

	t.Run("Success_ActiveToken", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		token := &tokenDomain.Token{ID: uuid.Must(uuid.NewV7()), ApplicationID: applicationID}
		claims := tokenDomain.Claims{"active": true, "sub": "user-1"}

		m.clients.On("Authenticate", mock.Anything, mock.MatchedBy(func(r *clientAuthDomain.Request) bool {
			return r.ClientID == "client-1" && r.Assertion == "header.payload.signature"
		})).Return(client, nil).Once()
		m.tokens.On("GetByValue", mock.Anything, "opaque", tokenDomain.TokenAccess).Return(token, nil).Once()
		m.tokens.On("GetClaimsForToken", mock.Anything, token).Return(claims, nil).Once()

		c, w := createFormContext("/v1/oauth/introspect", introspectionForm("opaque"))
		handler.IntrospectHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, true, response["active"])
		assert.Equal(t, "user-1", response["sub"])
		m.assertExpectations(t)
	})

	t.Run("Success_FallsBackToRefreshToken", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		token := &tokenDomain.Token{ID: uuid.Must(uuid.NewV7()), ApplicationID: applicationID}

		m.clients.On("Authenticate", mock.Anything, mock.Anything).Return(client, nil).Once()
		m.tokens.On("GetByValue", mock.Anything, "opaque", tokenDomain.TokenAccess).
			Return(nil, tokenDomain.ErrTokenNotFound).Once()
		m.tokens.On("GetByValue", mock.Anything, "opaque", tokenDomain.TokenRefresh).Return(token, nil).Once()
		m.tokens.On("GetClaimsForToken", mock.Anything, token).
			Return(tokenDomain.Claims{"active": true}, nil).Once()

		c, w := createFormContext("/v1/oauth/introspect", introspectionForm("opaque"))
		handler.IntrospectHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		m.assertExpectations(t)
	})

	t.Run("Inactive_UnknownToken", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		m.clients.On("Authenticate", mock.Anything, mock.Anything).Return(client, nil).Once()
		m.tokens.On("GetByValue", mock.Anything, "opaque", mock.Anything).
			Return(nil, tokenDomain.ErrTokenNotFound).Twice()

		c, w := createFormContext("/v1/oauth/introspect", introspectionForm("opaque"))
		handler.IntrospectHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"active":false}`, w.Body.String())
		m.assertExpectations(t)
	})

	t.Run("Inactive_TokenOfAnotherApplication", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		token := &tokenDomain.Token{ID: uuid.Must(uuid.NewV7()), ApplicationID: uuid.Must(uuid.NewV7())}

		m.clients.On("Authenticate", mock.Anything, mock.Anything).Return(client, nil).Once()
		m.tokens.On("GetByValue", mock.Anything, "opaque", tokenDomain.TokenAccess).Return(token, nil).Once()

		c, w := createFormContext("/v1/oauth/introspect", introspectionForm("opaque"))
		handler.IntrospectHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"active":false}`, w.Body.String())
		m.assertExpectations(t)
	})

	t.Run("Error_InvalidClient", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		m.clients.On("Authenticate", mock.Anything, mock.Anything).
			Return(nil, clientAuthDomain.ErrInvalidClient).Once()

		c, w := createFormContext("/v1/oauth/introspect", introspectionForm("opaque"))
		handler.IntrospectHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_client")
		m.assertExpectations(t)
	})

	t.Run("Error_NoApplicableMethod", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		m.clients.On("Authenticate", mock.Anything, mock.Anything).
			Return(nil, clientAuthDomain.ErrNotApplicable).Once()

		c, w := createFormContext("/v1/oauth/introspect", introspectionForm("opaque"))
		handler.IntrospectHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_client")
		m.assertExpectations(t)
	})

	t.Run("Error_MissingToken", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		c, w := createFormContext("/v1/oauth/introspect", introspectionForm(""))
		handler.IntrospectHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		m.assertExpectations(t)
	})

	t.Run("Error_StoreFailure", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		m.clients.On("Authenticate", mock.Anything, mock.Anything).Return(client, nil).Once()
		m.tokens.On("GetByValue", mock.Anything, "opaque", tokenDomain.TokenAccess).
			Return(nil, errors.New("database down")).Once()

		c, w := createFormContext("/v1/oauth/introspect", introspectionForm("opaque"))
		handler.IntrospectHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		m.assertExpectations(t)
	})
}

func TestTokenHandler_UserInfoHandler(t *testing.T) {
	newRequest := func(authorization string) (*gin.Context, *httptest.ResponseRecorder) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		req := httptest.NewRequest(http.MethodGet, "/v1/userinfo", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		c.Request = req
		return c, w
	}

	t.Run("Success_SignsResponse", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		expiresAt := time.Now().Add(time.Hour)
		token := &tokenDomain.Token{ID: uuid.Must(uuid.NewV7()), SigningKey: []byte("key"), ExpiresAt: &expiresAt}
		claims := tokenDomain.Claims{"active": true, "sub": "user-1"}
		body, err := json.Marshal(claims)
		require.NoError(t, err)

		m.tokens.On("Authenticate", mock.Anything, "opaque", tokenDomain.TokenAccess).Return(token, nil).Once()
		m.tokens.On("GetClaimsForToken", mock.Anything, token).Return(claims, nil).Once()
		m.signatures.On("SignBody", mock.Anything, token, body).Return("c2lnbmF0dXJl", nil).Once()

		c, w := newRequest("Bearer opaque")
		handler.UserInfoHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "c2lnbmF0dXJl", w.Header().Get(testSignatureHeader))
		assert.JSONEq(t, string(body), w.Body.String())
		m.assertExpectations(t)
	})

	t.Run("Success_ReusesTokenVerifiedBySignature", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		token := &tokenDomain.Token{ID: uuid.Must(uuid.NewV7()), SigningKey: []byte("key")}
		claims := tokenDomain.Claims{"active": true, "sub": "user-1"}
		requestBody := []byte(`{"fields":["email"]}`)
		requestSignature := base64.StdEncoding.EncodeToString(make([]byte, 32))
		body, err := json.Marshal(claims)
		require.NoError(t, err)

		m.signatures.On("Verify", mock.Anything, "Bearer opaque", requestSignature, requestBody).
			Return(token, nil).Once()
		m.tokens.On("GetClaimsForToken", mock.Anything, token).Return(claims, nil).Once()
		m.signatures.On("SignBody", mock.Anything, token, body).Return("c2lnbmF0dXJl", nil).Once()

		router := gin.New()
		router.POST("/v1/userinfo",
			signatureHTTP.SignatureMiddleware(
				m.signatures,
				signatureHTTP.MiddlewareSettings{Header: testSignatureHeader},
				slog.New(slog.NewTextHandler(io.Discard, nil)),
			),
			handler.UserInfoHandler,
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/userinfo", bytes.NewReader(requestBody))
		req.Header.Set("Authorization", "Bearer opaque")
		req.Header.Set(testSignatureHeader, requestSignature)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, string(body), w.Body.String())
		m.tokens.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
		m.assertExpectations(t)
	})

	t.Run("Error_MissingBearer", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		c, w := newRequest("")
		handler.UserInfoHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		m.assertExpectations(t)
	})

	t.Run("Error_InvalidToken", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		m.tokens.On("Authenticate", mock.Anything, "opaque", tokenDomain.TokenAccess).
			Return(nil, tokenDomain.ErrInvalidToken).Once()

		c, w := newRequest("Bearer opaque")
		handler.UserInfoHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		m.assertExpectations(t)
	})

	t.Run("Error_NoSigningKey", func(t *testing.T) {
		handler, m := setupTokenTestHandler(t)

		token := &tokenDomain.Token{ID: uuid.Must(uuid.NewV7())}
		claims := tokenDomain.Claims{"active": true}

		m.tokens.On("Authenticate", mock.Anything, "opaque", tokenDomain.TokenAccess).Return(token, nil).Once()
		m.tokens.On("GetClaimsForToken", mock.Anything, token).Return(claims, nil).Once()
		m.signatures.On("SignBody", mock.Anything, token, mock.Anything).
			Return("", errors.New("signing key unavailable")).Once()

		c, w := newRequest("Bearer opaque")
		handler.UserInfoHandler(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, w.Header().Get(testSignatureHeader))
		m.assertExpectations(t)
	})
}
