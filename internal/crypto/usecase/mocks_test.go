package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
)

type mockKeyMaterialRepository struct {
	mock.Mock
}

func (m *mockKeyMaterialRepository) Create(ctx context.Context, pair *cryptoDomain.KeyMaterialPair) error {
	args := m.Called(ctx, pair)
	return args.Error(0)
}

func (m *mockKeyMaterialRepository) Get(ctx context.Context, id uuid.UUID) (*cryptoDomain.KeyMaterialPair, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.KeyMaterialPair), args.Error(1)
}

func (m *mockKeyMaterialRepository) ListPendingRotation(
	ctx context.Context,
	rotationStartedAt time.Time,
	limit int,
) ([]*cryptoDomain.KeyMaterialPair, error) {
	args := m.Called(ctx, rotationStartedAt, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.KeyMaterialPair), args.Error(1)
}

func (m *mockKeyMaterialRepository) UpdatePasswordContainer(
	ctx context.Context,
	id uuid.UUID,
	container cryptoDomain.PasswordContainer,
	rotatedAt time.Time,
) error {
	args := m.Called(ctx, id, container, rotatedAt)
	return args.Error(0)
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
