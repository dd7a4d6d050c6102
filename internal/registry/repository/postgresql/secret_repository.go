package postgresql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

// PostgreSQLSecretRepository persists generated shared secrets by reference.
type PostgreSQLSecretRepository struct {
	db *sql.DB
}

// Create inserts a new secret record.
func (p *PostgreSQLSecretRepository) Create(ctx context.Context, secret *registryDomain.Secret) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO secrets (id, application_id, fingerprint, key_material_id, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		secret.ID,
		secret.ApplicationID,
		secret.Fingerprint,
		secret.KeyMaterialID,
		secret.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create secret")
	}
	return nil
}

// Get retrieves a secret record by id.
func (p *PostgreSQLSecretRepository) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Secret, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, application_id, fingerprint, key_material_id, created_at FROM secrets WHERE id = $1`

	var secret registryDomain.Secret
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&secret.ID,
		&secret.ApplicationID,
		&secret.Fingerprint,
		&secret.KeyMaterialID,
		&secret.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registryDomain.ErrSecretNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get secret")
	}
	return &secret, nil
}

// NewPostgreSQLSecretRepository creates a new PostgreSQL secret repository.
func NewPostgreSQLSecretRepository(db *sql.DB) *PostgreSQLSecretRepository {
	return &PostgreSQLSecretRepository{db: db}
}
