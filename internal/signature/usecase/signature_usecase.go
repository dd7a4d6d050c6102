package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	signatureDomain "github.com/allisson/idcore/internal/signature/domain"
	signatureService "github.com/allisson/idcore/internal/signature/service"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

// Settings bounds the multi-token scan of VerifyForClientID.
type Settings struct {
	Window        time.Duration
	MaxCandidates int
}

type signatureUseCase struct {
	tokens   TokenSource
	apps     ApplicationReader
	settings Settings
	logger   *slog.Logger
}

// NewSignatureUseCase creates a SignatureUseCase.
func NewSignatureUseCase(
	tokens TokenSource,
	apps ApplicationReader,
	settings Settings,
	logger *slog.Logger,
) SignatureUseCase {
	if settings.MaxCandidates < 1 {
		settings.MaxCandidates = 1
	}
	return &signatureUseCase{tokens: tokens, apps: apps, settings: settings, logger: logger}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(authorization string) (string, bool) {
	scheme, value, ok := strings.Cut(strings.TrimSpace(authorization), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (s *signatureUseCase) SignBody(_ context.Context, token *tokenDomain.Token, body []byte) (string, error) {
	if token == nil || len(token.SigningKey) == 0 {
		return "", signatureDomain.ErrSigningKeyUnavailable
	}
	return signatureService.Sign(token.SigningKey, body), nil
}

func (s *signatureUseCase) Verify(
	ctx context.Context,
	authorization, signature string,
	body []byte,
) (*tokenDomain.Token, error) {
	if signature == "" {
		return nil, signatureDomain.ErrMissingSignature
	}
	value, ok := BearerToken(authorization)
	if !ok {
		return nil, tokenDomain.ErrInvalidToken
	}

	token, err := s.tokens.Authenticate(ctx, value, tokenDomain.TokenAccess)
	if err != nil {
		return nil, err
	}
	if len(token.SigningKey) == 0 {
		s.logger.ErrorContext(ctx, "token has no signing key", slog.String("token_id", token.ID.String()))
		return nil, signatureDomain.ErrSigningKeyUnavailable
	}

	if !signatureService.Verify(token.SigningKey, body, signature) {
		s.logger.WarnContext(ctx, "body signature mismatch",
			slog.String("token_id", token.ID.String()),
			slog.String("application_id", token.ApplicationID.String()),
		)
		return nil, signatureDomain.ErrSignatureMismatch
	}
	return token, nil
}

func (s *signatureUseCase) VerifyForClientID(
	ctx context.Context,
	clientID string,
	requestTime time.Time,
	signature string,
	body []byte,
) (*tokenDomain.Token, error) {
	if signature == "" {
		return nil, signatureDomain.ErrMissingSignature
	}

	app, err := s.apps.GetApplicationByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, directoryDomain.ErrApplicationNotFound) {
			s.logger.DebugContext(ctx, "signature for unknown client", slog.String("client_id", clientID))
			return nil, signatureDomain.ErrSignatureMismatch
		}
		return nil, err
	}

	if requestTime.IsZero() {
		requestTime = time.Now()
	}
	requestTime = requestTime.UTC()

	candidates, err := s.tokens.ListByApplicationWithin(
		ctx,
		app.ID,
		requestTime.Add(-s.settings.Window),
		requestTime,
		s.settings.MaxCandidates,
	)
	if err != nil {
		return nil, err
	}

	for i, token := range candidates {
		if i >= s.settings.MaxCandidates {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(token.SigningKey) == 0 || !signatureService.Verify(token.SigningKey, body, signature) {
			continue
		}

		active, err := s.tokens.IsActive(ctx, token)
		if err != nil {
			return nil, err
		}
		if !active {
			s.logger.DebugContext(ctx, "signature matched inactive token",
				slog.String("client_id", clientID),
				slog.String("token_id", token.ID.String()),
			)
			continue
		}
		return token, nil
	}

	s.logger.WarnContext(ctx, "no candidate token matched signature",
		slog.String("client_id", clientID),
		slog.Int("candidates", len(candidates)),
	)
	return nil, signatureDomain.ErrSignatureMismatch
}
