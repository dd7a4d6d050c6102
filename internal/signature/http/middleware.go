// Package http provides the body signature middleware and the signed
// callback endpoint.
package http

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/idcore/internal/errors"
	"github.com/allisson/idcore/internal/httputil"
	signatureDomain "github.com/allisson/idcore/internal/signature/domain"
	signatureUseCase "github.com/allisson/idcore/internal/signature/usecase"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
	customValidation "github.com/allisson/idcore/internal/validation"
)

// MaxSignedBodySize caps the request body read for signature verification.
const MaxSignedBodySize = 1 << 20

const verifiedTokenKey = "signature_verified_token"

// MiddlewareSettings controls the body signature middleware.
type MiddlewareSettings struct {
	Header   string
	Required bool
}

// SignatureMiddleware verifies the body signature of bearer requests.
//
// A present signature must be a well-formed digest and must always verify.
// A missing signature is rejected when Required is set and only logged
// otherwise. The body is restored so downstream handlers can read it again,
// and the verified token is left for them in GetVerifiedToken.
func SignatureMiddleware(
	signatures signatureUseCase.SignatureUseCase,
	settings MiddlewareSettings,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := readAndRestoreBody(c)
		if err != nil {
			httputil.HandleBadRequestGin(c, err, logger)
			c.Abort()
			return
		}

		signature := c.GetHeader(settings.Header)
		if signature == "" {
			if settings.Required {
				httputil.HandleErrorGin(c, signatureDomain.ErrMissingSignature, logger)
				c.Abort()
				return
			}
			logger.Debug("request without body signature",
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
			)
			c.Next()
			return
		}

		if err := validation.Validate(signature, customValidation.BodySignature); err != nil {
			httputil.HandleErrorGin(c, apperrors.Wrap(signatureDomain.ErrSignatureMismatch, err.Error()), logger)
			c.Abort()
			return
		}

		token, err := signatures.Verify(c.Request.Context(), c.GetHeader("Authorization"), signature, body)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Set(verifiedTokenKey, token)
		c.Next()
	}
}

// GetVerifiedToken returns the token whose key verified the request body,
// if the signature middleware verified one.
func GetVerifiedToken(c *gin.Context) (*tokenDomain.Token, bool) {
	value, ok := c.Get(verifiedTokenKey)
	if !ok {
		return nil, false
	}
	token, ok := value.(*tokenDomain.Token)
	return token, ok
}

func readAndRestoreBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxSignedBodySize))
	if err != nil {
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
