package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockAuthSessionRepository struct {
	mock.Mock
}

func (m *mockAuthSessionRepository) Create(ctx context.Context, session *sessionDomain.AuthSession) error {
	return m.Called(ctx, session).Error(0)
}

func (m *mockAuthSessionRepository) Get(ctx context.Context, id uuid.UUID) (*sessionDomain.AuthSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.AuthSession), args.Error(1)
}

func (m *mockAuthSessionRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status sessionDomain.SessionStatus,
	updatedAt time.Time,
) error {
	return m.Called(ctx, id, status, updatedAt).Error(0)
}

type mockAuditRecorder struct {
	mock.Mock
}

func (m *mockAuditRecorder) Record(ctx context.Context, event *auditDomain.Event) error {
	return m.Called(ctx, event).Error(0)
}

type mockCookieRepository struct {
	mock.Mock
}

func (m *mockCookieRepository) Create(ctx context.Context, cookie *sessionDomain.SingleSignOnCookie) error {
	return m.Called(ctx, cookie).Error(0)
}

func (m *mockCookieRepository) GetByHash(
	ctx context.Context,
	ciphertextHash string,
) (*sessionDomain.SingleSignOnCookie, error) {
	args := m.Called(ctx, ciphertextHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.SingleSignOnCookie), args.Error(1)
}

type mockTokenIssuer struct {
	mock.Mock
}

func (m *mockTokenIssuer) Issue(ctx context.Context, input *tokenDomain.IssueTokenInput) (*tokenDomain.Token, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

type mockSessionUseCase struct {
	mock.Mock
}

func (m *mockSessionUseCase) CreateAuthSession(
	ctx context.Context,
	input *sessionDomain.CreateAuthSessionInput,
) (*sessionDomain.AuthSession, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.AuthSession), args.Error(1)
}

func (m *mockSessionUseCase) GetAuthSession(ctx context.Context, id uuid.UUID) (*sessionDomain.AuthSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.AuthSession), args.Error(1)
}

func (m *mockSessionUseCase) DeactivateAuthSession(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockSessionUseCase) GenerateCookie(
	ctx context.Context,
	sessionID uuid.UUID,
) (*sessionDomain.IssuedCookie, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.IssuedCookie), args.Error(1)
}

func (m *mockSessionUseCase) GetAuthSessionFromCookie(
	ctx context.Context,
	value string,
) (*sessionDomain.AuthSession, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.AuthSession), args.Error(1)
}

func (m *mockSessionUseCase) ValidateSession(
	ctx context.Context,
	session *sessionDomain.AuthSession,
	request sessionDomain.RequestFingerprint,
) error {
	return m.Called(ctx, session, request).Error(0)
}

func (m *mockSessionUseCase) IsValidAuthSession(
	ctx context.Context,
	session *sessionDomain.AuthSession,
	request sessionDomain.RequestFingerprint,
) bool {
	return m.Called(ctx, session, request).Bool(0)
}

func (m *mockSessionUseCase) GetAccessToken(
	ctx context.Context,
	value string,
	request sessionDomain.RequestFingerprint,
) (*tokenDomain.Token, error) {
	args := m.Called(ctx, value, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

func (m *mockSessionUseCase) Logout(ctx context.Context, value string) error {
	return m.Called(ctx, value).Error(0)
}

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}
