package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

// MySQLSecretRepository persists generated shared secrets by reference.
type MySQLSecretRepository struct {
	db *sql.DB
}

// Create inserts a new secret record.
func (m *MySQLSecretRepository) Create(ctx context.Context, secret *registryDomain.Secret) error {
	querier := database.GetTx(ctx, m.db)

	id, err := secret.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal secret id")
	}
	appID, err := secret.ApplicationID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal application id")
	}
	keyMaterialID, err := secret.KeyMaterialID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key material id")
	}

	query := `INSERT INTO secrets (id, application_id, fingerprint, key_material_id, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, appID, secret.Fingerprint, keyMaterialID, secret.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Get retrieves a secret record by id.
func (m *MySQLSecretRepository) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Secret, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal secret id")
	}

	query := `SELECT id, application_id, fingerprint, key_material_id, created_at FROM secrets WHERE id = ?`

	var secret registryDomain.Secret
	var scannedID, appID, keyMaterialID []byte
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(
		&scannedID,
		&appID,
		&secret.Fingerprint,
		&keyMaterialID,
		&secret.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registryDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret")
	}

	if err := secret.ID.UnmarshalBinary(scannedID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal secret id")
	}
	if err := secret.ApplicationID.UnmarshalBinary(appID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal application id")
	}
	if err := secret.KeyMaterialID.UnmarshalBinary(keyMaterialID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal key material id")
	}
	return &secret, nil
}

// NewMySQLSecretRepository creates a new MySQL secret repository.
func NewMySQLSecretRepository(db *sql.DB) *MySQLSecretRepository {
	return &MySQLSecretRepository{db: db}
}
