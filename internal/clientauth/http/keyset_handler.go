// Package http publishes client verification keys.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	clientAuthUseCase "github.com/allisson/idcore/internal/clientauth/usecase"
	apperrors "github.com/allisson/idcore/internal/errors"
	"github.com/allisson/idcore/internal/httputil"
)

// KeySetHandler serves the JWK set of a client.
type KeySetHandler struct {
	keySetUseCase clientAuthUseCase.KeySetUseCase
	logger        *slog.Logger
}

// NewKeySetHandler creates a new key set handler with required dependencies.
func NewKeySetHandler(keySetUseCase clientAuthUseCase.KeySetUseCase, logger *slog.Logger) *KeySetHandler {
	return &KeySetHandler{
		keySetUseCase: keySetUseCase,
		logger:        logger,
	}
}

// GetHandler returns the client's published keys.
// GET /v1/clients/:client_id/jwks.json
func (h *KeySetHandler) GetHandler(c *gin.Context) {
	set, err := h.keySetUseCase.PublishedKeys(c.Request.Context(), c.Param("client_id"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	body, err := json.Marshal(set)
	if err != nil {
		httputil.HandleErrorGin(c, apperrors.Wrap(err, "failed to encode key set"), h.logger)
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, "application/jwk-set+json", body)
}
