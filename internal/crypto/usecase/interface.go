// Package usecase orchestrates the secret envelope: storing and loading wrapped
// payloads and rotating the master password across every persisted pair.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
)

// KeyMaterialRepository persists KeyMaterialPairs. Implementations exist for
// PostgreSQL and MySQL; both honor a transaction carried in ctx.
type KeyMaterialRepository interface {
	// Create stores a new pair.
	Create(ctx context.Context, pair *cryptoDomain.KeyMaterialPair) error

	// Get returns the pair with id or ErrKeyMaterialNotFound.
	Get(ctx context.Context, id uuid.UUID) (*cryptoDomain.KeyMaterialPair, error)

	// ListPendingRotation returns up to limit pairs not yet rewrapped by the
	// rotation that started at rotationStartedAt.
	ListPendingRotation(
		ctx context.Context,
		rotationStartedAt time.Time,
		limit int,
	) ([]*cryptoDomain.KeyMaterialPair, error)

	// UpdatePasswordContainer replaces one pair's password container.
	UpdatePasswordContainer(
		ctx context.Context,
		id uuid.UUID,
		container cryptoDomain.PasswordContainer,
		rotatedAt time.Time,
	) error
}

// EnvelopeStore wraps payloads with the process master password and persists them.
type EnvelopeStore interface {
	// Store wraps payload and persists the resulting pair, returning its id.
	Store(ctx context.Context, payload *cryptoDomain.Payload) (uuid.UUID, error)

	// Load reads and unwraps the pair with id. The caller owns the returned
	// payload and should Zero it when done.
	Load(ctx context.Context, id uuid.UUID) (*cryptoDomain.Payload, error)
}

// MasterPasswordUseCase rotates the master password protecting every pair.
type MasterPasswordUseCase interface {
	// Rotate rewraps every password container from oldPassword to newPassword
	// and returns how many pairs were rewritten. It is safe to re-run after a
	// partial failure.
	Rotate(ctx context.Context, oldPassword, newPassword *cryptoDomain.MasterPassword) (int, error)
}
