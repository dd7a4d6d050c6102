package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/metrics"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

const metricsDomain = "session"

func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RecordOperation(ctx, metricsDomain, operation, status)
	m.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

type sessionUseCaseWithMetrics struct {
	next    SessionUseCase
	metrics metrics.BusinessMetrics
}

// NewSessionUseCaseWithMetrics wraps a SessionUseCase with metrics recording.
func NewSessionUseCaseWithMetrics(useCase SessionUseCase, m metrics.BusinessMetrics) SessionUseCase {
	return &sessionUseCaseWithMetrics{next: useCase, metrics: m}
}

func (s *sessionUseCaseWithMetrics) CreateAuthSession(
	ctx context.Context,
	input *sessionDomain.CreateAuthSessionInput,
) (*sessionDomain.AuthSession, error) {
	start := time.Now()
	session, err := s.next.CreateAuthSession(ctx, input)
	record(ctx, s.metrics, "session_create", start, err)
	return session, err
}

func (s *sessionUseCaseWithMetrics) GetAuthSession(
	ctx context.Context,
	id uuid.UUID,
) (*sessionDomain.AuthSession, error) {
	start := time.Now()
	session, err := s.next.GetAuthSession(ctx, id)
	record(ctx, s.metrics, "session_get", start, err)
	return session, err
}

func (s *sessionUseCaseWithMetrics) DeactivateAuthSession(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := s.next.DeactivateAuthSession(ctx, id)
	record(ctx, s.metrics, "session_deactivate", start, err)
	return err
}

func (s *sessionUseCaseWithMetrics) GenerateCookie(
	ctx context.Context,
	sessionID uuid.UUID,
) (*sessionDomain.IssuedCookie, error) {
	start := time.Now()
	cookie, err := s.next.GenerateCookie(ctx, sessionID)
	record(ctx, s.metrics, "cookie_generate", start, err)
	return cookie, err
}

func (s *sessionUseCaseWithMetrics) GetAuthSessionFromCookie(
	ctx context.Context,
	value string,
) (*sessionDomain.AuthSession, error) {
	start := time.Now()
	session, err := s.next.GetAuthSessionFromCookie(ctx, value)
	record(ctx, s.metrics, "cookie_resolve", start, err)
	return session, err
}

func (s *sessionUseCaseWithMetrics) ValidateSession(
	ctx context.Context,
	session *sessionDomain.AuthSession,
	request sessionDomain.RequestFingerprint,
) error {
	start := time.Now()
	err := s.next.ValidateSession(ctx, session, request)
	record(ctx, s.metrics, "session_validate", start, err)
	return err
}

// IsValidAuthSession delegates to ValidateSession so it is recorded once.
func (s *sessionUseCaseWithMetrics) IsValidAuthSession(
	ctx context.Context,
	session *sessionDomain.AuthSession,
	request sessionDomain.RequestFingerprint,
) bool {
	return s.ValidateSession(ctx, session, request) == nil
}

func (s *sessionUseCaseWithMetrics) GetAccessToken(
	ctx context.Context,
	value string,
	request sessionDomain.RequestFingerprint,
) (*tokenDomain.Token, error) {
	start := time.Now()
	token, err := s.next.GetAccessToken(ctx, value, request)
	record(ctx, s.metrics, "session_access_token", start, err)
	return token, err
}

func (s *sessionUseCaseWithMetrics) Logout(ctx context.Context, value string) error {
	start := time.Now()
	err := s.next.Logout(ctx, value)
	record(ctx, s.metrics, "session_logout", start, err)
	return err
}
