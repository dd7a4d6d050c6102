// Package mocks provides mock implementations for testing client HTTP handlers.
package mocks

import (
	"context"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/mock"
)

// MockKeySetUseCase is a mock implementation of KeySetUseCase for testing.
type MockKeySetUseCase struct {
	mock.Mock
}

// PublishedKeys mocks the PublishedKeys method of KeySetUseCase.
func (m *MockKeySetUseCase) PublishedKeys(ctx context.Context, clientID string) (jwk.Set, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(jwk.Set), args.Error(1)
}
