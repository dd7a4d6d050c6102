package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockTokenSource struct {
	mock.Mock
}

func (m *mockTokenSource) Authenticate(
	ctx context.Context,
	value string,
	tokenType tokenDomain.TokenType,
) (*tokenDomain.Token, error) {
	args := m.Called(ctx, value, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

func (m *mockTokenSource) IsActive(ctx context.Context, token *tokenDomain.Token) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenSource) ListByApplicationWithin(
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

type mockApplicationReader struct {
	mock.Mock
}

func (m *mockApplicationReader) GetApplicationByClientID(
	ctx context.Context,
	clientID string,
) (*directoryDomain.Application, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directoryDomain.Application), args.Error(1)
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
