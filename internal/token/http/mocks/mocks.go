// Package mocks provides mock implementations for testing token HTTP handlers.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

// MockTokenUseCase is a mock implementation of TokenUseCase for testing.
type MockTokenUseCase struct {
	mock.Mock
}

// Create mocks the Create method of TokenUseCase.
func (m *MockTokenUseCase) Create(
	ctx context.Context,
	input *tokenDomain.CreateTokenInput,
) (*tokenDomain.Token, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

// Issue mocks the Issue method of TokenUseCase.
func (m *MockTokenUseCase) Issue(
	ctx context.Context,
	input *tokenDomain.IssueTokenInput,
) (*tokenDomain.Token, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

// GetByValue mocks the GetByValue method of TokenUseCase.
func (m *MockTokenUseCase) GetByValue(
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

// IsActive mocks the IsActive method of TokenUseCase.
func (m *MockTokenUseCase) IsActive(ctx context.Context, token *tokenDomain.Token) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// Authenticate mocks the Authenticate method of TokenUseCase.
func (m *MockTokenUseCase) Authenticate(
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

// GetClaimsForToken mocks the GetClaimsForToken method of TokenUseCase.
func (m *MockTokenUseCase) GetClaimsForToken(
	ctx context.Context,
	token *tokenDomain.Token,
) (tokenDomain.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(tokenDomain.Claims), args.Error(1)
}

// ListByApplicationWithin mocks the ListByApplicationWithin method of TokenUseCase.
func (m *MockTokenUseCase) ListByApplicationWithin(
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

// DeleteExpired mocks the DeleteExpired method of TokenUseCase.
func (m *MockTokenUseCase) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthenticator is a mock implementation of the client Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

// Authenticate mocks the Authenticate method of Authenticator.
func (m *MockAuthenticator) Authenticate(
	ctx context.Context,
	req *clientAuthDomain.Request,
) (*clientAuthDomain.Client, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clientAuthDomain.Client), args.Error(1)
}

// MockSignatureUseCase is a mock implementation of SignatureUseCase.
type MockSignatureUseCase struct {
	mock.Mock
}

// SignBody mocks the SignBody method of SignatureUseCase.
func (m *MockSignatureUseCase) SignBody(ctx context.Context, token *tokenDomain.Token, body []byte) (string, error) {
	args := m.Called(ctx, token, body)
	return args.String(0), args.Error(1)
}

// Verify mocks the Verify method of SignatureUseCase.
func (m *MockSignatureUseCase) Verify(
	ctx context.Context,
	authorization, signature string,
	body []byte,
) (*tokenDomain.Token, error) {
	args := m.Called(ctx, authorization, signature, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}

// VerifyForClientID mocks the VerifyForClientID method of SignatureUseCase.
func (m *MockSignatureUseCase) VerifyForClientID(
	ctx context.Context,
	clientID string,
	requestTime time.Time,
	signature string,
	body []byte,
) (*tokenDomain.Token, error) {
	args := m.Called(ctx, clientID, requestTime, signature, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tokenDomain.Token), args.Error(1)
}
