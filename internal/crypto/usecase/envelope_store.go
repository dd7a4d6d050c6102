package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	cryptoService "github.com/allisson/idcore/internal/crypto/service"
)

type envelopeStore struct {
	envelope       cryptoService.Envelope
	repo           KeyMaterialRepository
	masterPassword *cryptoDomain.MasterPassword
}

// NewEnvelopeStore creates an EnvelopeStore bound to masterPassword.
func NewEnvelopeStore(
	envelope cryptoService.Envelope,
	repo KeyMaterialRepository,
	masterPassword *cryptoDomain.MasterPassword,
) EnvelopeStore {
	return &envelopeStore{
		envelope:       envelope,
		repo:           repo,
		masterPassword: masterPassword,
	}
}

func (e *envelopeStore) Store(ctx context.Context, payload *cryptoDomain.Payload) (uuid.UUID, error) {
	pair, err := e.envelope.Wrap(payload, e.masterPassword)
	if err != nil {
		return uuid.Nil, err
	}

	pair.ID = uuid.Must(uuid.NewV7())
	pair.CreatedAt = time.Now().UTC()

	if err := e.repo.Create(ctx, pair); err != nil {
		return uuid.Nil, err
	}
	return pair.ID, nil
}

func (e *envelopeStore) Load(ctx context.Context, id uuid.UUID) (*cryptoDomain.Payload, error) {
	pair, err := e.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.envelope.Unwrap(pair, e.masterPassword)
}
