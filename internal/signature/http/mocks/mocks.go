// Package mocks provides mock implementations for testing signature HTTP handlers.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

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
