package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Create(ctx context.Context, token *tokenDomain.Token) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockTokenRepository) GetByHash(
	ctx context.Context,
	valueHash string,
	tokenType tokenDomain.TokenType,
) (*tokenDomain.Token, error) {
	args := m.Called(ctx, valueHash, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

func (m *mockTokenRepository) ListByApplicationWithin(
	ctx context.Context,
	applicationID uuid.UUID,
	from, to time.Time,
	limit int,
) ([]*tokenDomain.Token, error) {
	args := m.Called(ctx, applicationID, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tokenDomain.Token), args.Error(1)
}

func (m *mockTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockSessionReader struct {
	mock.Mock
}

func (m *mockSessionReader) Get(ctx context.Context, id uuid.UUID) (*sessionDomain.AuthSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.AuthSession), args.Error(1)
}

type mockDirectoryReader struct {
	mock.Mock
}

func (m *mockDirectoryReader) GetApplication(ctx context.Context, id uuid.UUID) (*directoryDomain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directoryDomain.Application), args.Error(1)
}

func (m *mockDirectoryReader) GetOrganization(
	ctx context.Context,
	id uuid.UUID,
) (*directoryDomain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directoryDomain.Organization), args.Error(1)
}

func (m *mockDirectoryReader) GetUser(ctx context.Context, id uuid.UUID) (*directoryDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directoryDomain.User), args.Error(1)
}

func (m *mockDirectoryReader) ListPermissions(
	ctx context.Context,
	userID uuid.UUID,
) ([]directoryDomain.Permission, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]directoryDomain.Permission), args.Error(1)
}

func (m *mockDirectoryReader) ListURLPermissions(
	ctx context.Context,
	applicationID, userID uuid.UUID,
) ([]string, error) {
	args := m.Called(ctx, applicationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) NewValue() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockGenerator) NewSigningKey(valueHash string) ([]byte, error) {
	args := m.Called(valueHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
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
