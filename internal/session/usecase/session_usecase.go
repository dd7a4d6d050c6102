package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	sessionService "github.com/allisson/idcore/internal/session/service"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
	appValidation "github.com/allisson/idcore/internal/validation"
)

type sessionUseCase struct {
	sessionRepo        AuthSessionRepository
	cookieRepo         CookieRepository
	tokens             TokenIssuer
	cipher             sessionService.CookieCipher
	fingerprintEnabled bool
	audit              AuditRecorder
	logger             *slog.Logger
}

// NewSessionUseCase creates a SessionUseCase.
func NewSessionUseCase(
	sessionRepo AuthSessionRepository,
	cookieRepo CookieRepository,
	tokens TokenIssuer,
	cipher sessionService.CookieCipher,
	fingerprintEnabled bool,
	audit AuditRecorder,
	logger *slog.Logger,
) SessionUseCase {
	return &sessionUseCase{
		sessionRepo:        sessionRepo,
		cookieRepo:         cookieRepo,
		tokens:             tokens,
		cipher:             cipher,
		fingerprintEnabled: fingerprintEnabled,
		audit:              audit,
		logger:             logger,
	}
}

func validateCreateAuthSessionInput(input *sessionDomain.CreateAuthSessionInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.ApplicationID, appValidation.NotNilUUID),
		validation.Field(&input.SubjectID,
			validation.Required.Error("subject_id is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("subject_id must be between 1 and 255 characters"),
		),
		validation.Field(&input.Scopes,
			validation.Each(appValidation.NotBlank, appValidation.NoWhitespace),
		),
		validation.Field(&input.RedirectURI,
			validation.Length(0, 2048).Error("redirect_uri must be at most 2048 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

func (s *sessionUseCase) CreateAuthSession(
	ctx context.Context,
	input *sessionDomain.CreateAuthSessionInput,
) (*sessionDomain.AuthSession, error) {
	if err := validateCreateAuthSessionInput(input); err != nil {
		return nil, err
	}

	var fingerprint []byte
	if s.fingerprintEnabled && len(input.Fingerprint) > 0 {
		fingerprint = input.Fingerprint
	}

	now := time.Now().UTC()
	session := &sessionDomain.AuthSession{
		ID:            uuid.Must(uuid.NewV7()),
		ApplicationID: input.ApplicationID,
		SubjectID:     input.SubjectID,
		Scopes:        input.Scopes,
		Status:        sessionDomain.SessionActive,
		Fingerprint:   fingerprint,
		RedirectURI:   input.RedirectURI,
		Branding:      input.Branding,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "auth session created",
		slog.String("session_id", session.ID.String()),
		slog.String("application_id", session.ApplicationID.String()),
	)
	return session, nil
}

func (s *sessionUseCase) GetAuthSession(ctx context.Context, id uuid.UUID) (*sessionDomain.AuthSession, error) {
	return s.sessionRepo.Get(ctx, id)
}

func (s *sessionUseCase) DeactivateAuthSession(ctx context.Context, id uuid.UUID) error {
	if err := s.sessionRepo.UpdateStatus(ctx, id, sessionDomain.SessionInactive, time.Now().UTC()); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "auth session deactivated", slog.String("session_id", id.String()))
	return nil
}

func (s *sessionUseCase) GenerateCookie(
	ctx context.Context,
	sessionID uuid.UUID,
) (*sessionDomain.IssuedCookie, error) {
	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, sessionDomain.ErrSessionInactive
	}

	ciphertext, key, err := s.cipher.Seal(session.ID)
	if err != nil {
		return nil, err
	}

	cookie := &sessionDomain.SingleSignOnCookie{
		ID:             uuid.Must(uuid.NewV7()),
		SessionID:      session.ID,
		CiphertextHash: sessionService.HashCiphertext(ciphertext),
		Ciphertext:     ciphertext,
		Key:            key,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.cookieRepo.Create(ctx, cookie); err != nil {
		return nil, err
	}

	return &sessionDomain.IssuedCookie{
		SessionID: session.ID,
		Value:     sessionService.EncodeCookie(ciphertext),
		Cookie:    cookie,
	}, nil
}

func (s *sessionUseCase) GetAuthSessionFromCookie(
	ctx context.Context,
	value string,
) (*sessionDomain.AuthSession, error) {
	ciphertext, err := sessionService.DecodeCookie(value)
	if err != nil || len(ciphertext) == 0 {
		return nil, sessionDomain.ErrInvalidCookie
	}

	cookie, err := s.cookieRepo.GetByHash(ctx, sessionService.HashCiphertext(ciphertext))
	if err != nil {
		if errors.Is(err, sessionDomain.ErrCookieNotFound) {
			return nil, s.rejectCookie(ctx, "sso cookie not found", nil)
		}
		return nil, err
	}

	sessionID, err := s.cipher.Open(cookie.Ciphertext, cookie.Key)
	if err != nil {
		return nil, s.rejectCookie(ctx, "sso cookie decryption failed", err)
	}
	if sessionID != cookie.SessionID {
		return nil, s.rejectCookie(ctx, "sso cookie session mismatch", nil)
	}

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sessionDomain.ErrSessionNotFound) {
			return nil, s.rejectCookie(ctx, "sso cookie session not found", nil)
		}
		return nil, err
	}
	return session, nil
}

// rejectCookie logs the internal reason and returns the single error callers see.
func (s *sessionUseCase) rejectCookie(ctx context.Context, msg string, cause error) error {
	if cause != nil {
		s.logger.DebugContext(ctx, msg, slog.Any("error", cause))
	} else {
		s.logger.DebugContext(ctx, msg)
	}
	return sessionDomain.ErrInvalidCookie
}

func (s *sessionUseCase) ValidateSession(
	ctx context.Context,
	session *sessionDomain.AuthSession,
	request sessionDomain.RequestFingerprint,
) error {
	if !session.IsActive() {
		return sessionDomain.ErrSessionInactive
	}
	if !s.fingerprintEnabled || len(session.Fingerprint) == 0 {
		return nil
	}
	if !sessionService.FingerprintsMatch(session.Fingerprint, sessionService.Fingerprint(request)) {
		s.logger.WarnContext(ctx, "session fingerprint mismatch",
			slog.String("session_id", session.ID.String()),
			slog.String("application_id", session.ApplicationID.String()),
		)
		s.recordMismatch(ctx, session)
		return sessionDomain.ErrFingerprintMismatch
	}
	return nil
}

// recordMismatch audits a rejected fingerprint. The session is rejected
// whether or not the event is stored.
func (s *sessionUseCase) recordMismatch(ctx context.Context, session *sessionDomain.AuthSession) {
	event := auditDomain.NewEvent(auditDomain.EventFingerprintMismatch, auditDomain.OutcomeFailure)
	event.TargetID = session.ID.String()
	event.Metadata = map[string]string{"application_id": session.ApplicationID.String()}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to record fingerprint mismatch audit event",
			slog.String("session_id", session.ID.String()),
			slog.Any("error", err),
		)
	}
}

func (s *sessionUseCase) IsValidAuthSession(
	ctx context.Context,
	session *sessionDomain.AuthSession,
	request sessionDomain.RequestFingerprint,
) bool {
	return s.ValidateSession(ctx, session, request) == nil
}

func (s *sessionUseCase) GetAccessToken(
	ctx context.Context,
	value string,
	request sessionDomain.RequestFingerprint,
) (*tokenDomain.Token, error) {
	session, err := s.GetAuthSessionFromCookie(ctx, value)
	if err != nil {
		return nil, err
	}
	if err := s.ValidateSession(ctx, session, request); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, &tokenDomain.IssueTokenInput{
		Type:           tokenDomain.TokenAccess,
		SessionID:      session.ID,
		WithSigningKey: true,
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "access token issued from sso cookie",
		slog.String("session_id", session.ID.String()),
		slog.String("token_id", token.ID.String()),
	)
	return token, nil
}

func (s *sessionUseCase) Logout(ctx context.Context, value string) error {
	session, err := s.GetAuthSessionFromCookie(ctx, value)
	if err != nil {
		return err
	}
	if !session.IsActive() {
		return nil
	}
	return s.DeactivateAuthSession(ctx, session.ID)
}
