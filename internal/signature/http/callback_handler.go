package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/allisson/idcore/internal/httputil"
	signatureUseCase "github.com/allisson/idcore/internal/signature/usecase"
)

// RequestTimeHeader carries the unix time, in seconds, the caller signed the
// callback at. Missing means now.
const RequestTimeHeader = "X-Request-Time"

// CallbackResponse acknowledges a verified callback.
type CallbackResponse struct {
	Status  string `json:"status"`
	Subject string `json:"subject"`
}

// CallbackHandler accepts out-of-band callbacks signed with the key of any
// recent token of the named client.
type CallbackHandler struct {
	signatures      signatureUseCase.SignatureUseCase
	signatureHeader string
	logger          *slog.Logger
}

// NewCallbackHandler creates a new callback handler with required dependencies.
func NewCallbackHandler(
	signatures signatureUseCase.SignatureUseCase,
	signatureHeader string,
	logger *slog.Logger,
) *CallbackHandler {
	return &CallbackHandler{
		signatures:      signatures,
		signatureHeader: signatureHeader,
		logger:          logger,
	}
}

// ReceiveHandler verifies a signed callback body.
// POST /v1/callbacks/:client_id
func (h *CallbackHandler) ReceiveHandler(c *gin.Context) {
	requestTime, err := parseRequestTime(c.GetHeader(RequestTimeHeader))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	body, err := readAndRestoreBody(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	token, err := h.signatures.VerifyForClientID(
		c.Request.Context(),
		c.Param("client_id"),
		requestTime,
		c.GetHeader(h.signatureHeader),
		body,
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	h.logger.Info("callback accepted",
		slog.String("client_id", c.Param("client_id")),
		slog.String("token_id", token.ID.String()),
	)
	c.JSON(http.StatusOK, CallbackResponse{Status: "accepted", Subject: token.SubjectID})
}

func parseRequestTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(seconds, 0).UTC(), nil
}
