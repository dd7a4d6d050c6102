// Package mocks provides mock implementations for testing SSO HTTP handlers.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

// MockSessionUseCase is a mock implementation of SessionUseCase for testing.
type MockSessionUseCase struct {
	mock.Mock
}

// CreateAuthSession mocks the CreateAuthSession method of SessionUseCase.
func (m *MockSessionUseCase) CreateAuthSession(
	ctx context.Context,
	input *sessionDomain.CreateAuthSessionInput,
) (*sessionDomain.AuthSession, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.AuthSession), args.Error(1)
}

// GetAuthSession mocks the GetAuthSession method of SessionUseCase.
func (m *MockSessionUseCase) GetAuthSession(ctx context.Context, id uuid.UUID) (*sessionDomain.AuthSession, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.AuthSession), args.Error(1)
}

// DeactivateAuthSession mocks the DeactivateAuthSession method of SessionUseCase.
func (m *MockSessionUseCase) DeactivateAuthSession(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// GenerateCookie mocks the GenerateCookie method of SessionUseCase.
func (m *MockSessionUseCase) GenerateCookie(
	ctx context.Context,
	sessionID uuid.UUID,
) (*sessionDomain.IssuedCookie, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.IssuedCookie), args.Error(1)
}

// GetAuthSessionFromCookie mocks the GetAuthSessionFromCookie method of SessionUseCase.
func (m *MockSessionUseCase) GetAuthSessionFromCookie(
	ctx context.Context,
	value string,
) (*sessionDomain.AuthSession, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sessionDomain.AuthSession), args.Error(1)
}

// ValidateSession mocks the ValidateSession method of SessionUseCase.
func (m *MockSessionUseCase) ValidateSession(
	ctx context.Context,
	session *sessionDomain.AuthSession,
	request sessionDomain.RequestFingerprint,
) error {
	args := m.Called(ctx, session, request)
	return args.Error(0)
}

// IsValidAuthSession mocks the IsValidAuthSession method of SessionUseCase.
func (m *MockSessionUseCase) IsValidAuthSession(
	ctx context.Context,
	session *sessionDomain.AuthSession,
	request sessionDomain.RequestFingerprint,
) bool {
	args := m.Called(ctx, session, request)
	return args.Bool(0)
}

// GetAccessToken mocks the GetAccessToken method of SessionUseCase.
func (m *MockSessionUseCase) GetAccessToken(
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

// Logout mocks the Logout method of SessionUseCase.
func (m *MockSessionUseCase) Logout(ctx context.Context, value string) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}
