// Package http provides HTTP handlers for token introspection and user info.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	clientAuthUseCase "github.com/allisson/idcore/internal/clientauth/usecase"
	"github.com/allisson/idcore/internal/httputil"
	signatureHTTP "github.com/allisson/idcore/internal/signature/http"
	signatureUseCase "github.com/allisson/idcore/internal/signature/usecase"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
	"github.com/allisson/idcore/internal/token/http/dto"
	tokenUseCase "github.com/allisson/idcore/internal/token/usecase"
	customValidation "github.com/allisson/idcore/internal/validation"
)

// TokenHandler serves the token endpoints that sit on top of the trust core.
type TokenHandler struct {
	clients         clientAuthUseCase.Authenticator
	tokenUseCase    tokenUseCase.TokenUseCase
	signatures      signatureUseCase.SignatureUseCase
	signatureHeader string
	logger          *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	clients clientAuthUseCase.Authenticator,
	tokenUseCase tokenUseCase.TokenUseCase,
	signatures signatureUseCase.SignatureUseCase,
	signatureHeader string,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		clients:         clients,
		tokenUseCase:    tokenUseCase,
		signatures:      signatures,
		signatureHeader: signatureHeader,
		logger:          logger,
	}
}

// IntrospectHandler reports whether a token is active and returns its claims.
// POST /v1/oauth/introspect - authenticated with a client assertion.
// Tokens that are unknown, inactive or owned by another application all
// yield {"active": false}.
func (h *TokenHandler) IntrospectHandler(c *gin.Context) {
	var req dto.IntrospectionRequest
	if err := c.ShouldBind(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()
	client, err := h.clients.Authenticate(ctx, req.ClientRequest())
	if err != nil {
		// No strategy owns the request, e.g. a public client presenting an assertion.
		if errors.Is(err, clientAuthDomain.ErrNotApplicable) {
			err = clientAuthDomain.ErrInvalidClient
		}
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	var token *tokenDomain.Token
	for _, tokenType := range req.LookupOrder() {
		token, err = h.tokenUseCase.GetByValue(ctx, req.Token, tokenType)
		if err == nil {
			break
		}
		if !errors.Is(err, tokenDomain.ErrTokenNotFound) {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
	}
	if token == nil || token.ApplicationID != client.ApplicationID {
		c.JSON(http.StatusOK, tokenDomain.InactiveClaims())
		return
	}

	claims, err := h.tokenUseCase.GetClaimsForToken(ctx, token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, claims)
}

// UserInfoHandler returns the claims of the bearer token and signs the
// response body with the token's signing key.
// GET|POST /v1/userinfo - bearer token required.
func (h *TokenHandler) UserInfoHandler(c *gin.Context) {
	ctx := c.Request.Context()
	token, err := h.bearerToken(c)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	claims, err := h.tokenUseCase.GetClaimsForToken(ctx, token)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	body, err := json.Marshal(claims)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	signature, err := h.signatures.SignBody(ctx, token, body)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Header(h.signatureHeader, signature)
	c.Data(http.StatusOK, "application/json", body)
}

// bearerToken returns the access token the signature middleware verified the
// body with, or resolves the Authorization header when no signature was sent.
func (h *TokenHandler) bearerToken(c *gin.Context) (*tokenDomain.Token, error) {
	if token, ok := signatureHTTP.GetVerifiedToken(c); ok {
		return token, nil
	}
	value, ok := signatureUseCase.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		return nil, tokenDomain.ErrInvalidToken
	}
	return h.tokenUseCase.Authenticate(c.Request.Context(), value, tokenDomain.TokenAccess)
}
