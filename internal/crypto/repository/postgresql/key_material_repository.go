// Package postgresql implements key material persistence for PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
)

// PostgreSQLKeyMaterialRepository persists KeyMaterialPairs using native UUID
// and BYTEA columns. All methods honor a transaction carried in ctx.
type PostgreSQLKeyMaterialRepository struct {
	db *sql.DB
}

// Create inserts a new key material pair.
func (p *PostgreSQLKeyMaterialRepository) Create(ctx context.Context, pair *cryptoDomain.KeyMaterialPair) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_materials (id, alias, algorithm, password_container, main_container, created_at, rotated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		pair.ID,
		pair.Alias,
		pair.Algorithm,
		[]byte(pair.PasswordContainer),
		[]byte(pair.MainContainer),
		pair.CreatedAt,
		pair.RotatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create key material")
	}
	return nil
}

// Get retrieves a key material pair by id.
func (p *PostgreSQLKeyMaterialRepository) Get(
	ctx context.Context,
	id uuid.UUID,
) (*cryptoDomain.KeyMaterialPair, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, alias, algorithm, password_container, main_container, created_at, rotated_at
			  FROM key_materials
			  WHERE id = $1`

	pair, err := scanKeyMaterial(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cryptoDomain.ErrKeyMaterialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get key material")
	}
	return pair, nil
}

// ListPendingRotation returns up to limit pairs whose password container was
// not rewrapped at or after rotationStartedAt, oldest first.
func (p *PostgreSQLKeyMaterialRepository) ListPendingRotation(
	ctx context.Context,
	rotationStartedAt time.Time,
	limit int,
) ([]*cryptoDomain.KeyMaterialPair, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, alias, algorithm, password_container, main_container, created_at, rotated_at
			  FROM key_materials
			  WHERE rotated_at IS NULL OR rotated_at < $1
			  ORDER BY created_at ASC
			  LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, rotationStartedAt, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query key materials")
	}
	defer func() {
		_ = rows.Close()
	}()

	var pairs []*cryptoDomain.KeyMaterialPair
	for rows.Next() {
		pair, err := scanKeyMaterial(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan key material")
		}
		pairs = append(pairs, pair)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating key materials")
	}

	return pairs, nil
}

// UpdatePasswordContainer replaces the password container of a single pair.
// The main container is never written after creation.
func (p *PostgreSQLKeyMaterialRepository) UpdatePasswordContainer(
	ctx context.Context,
	id uuid.UUID,
	container cryptoDomain.PasswordContainer,
	rotatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_materials SET password_container = $1, rotated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, []byte(container), rotatedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update password container")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return cryptoDomain.ErrKeyMaterialNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKeyMaterial(row rowScanner) (*cryptoDomain.KeyMaterialPair, error) {
	var pair cryptoDomain.KeyMaterialPair
	var passwordContainer, mainContainer []byte
	var rotatedAt sql.NullTime

	if err := row.Scan(
		&pair.ID,
		&pair.Alias,
		&pair.Algorithm,
		&passwordContainer,
		&mainContainer,
		&pair.CreatedAt,
		&rotatedAt,
	); err != nil {
		return nil, err
	}

	pair.PasswordContainer = passwordContainer
	pair.MainContainer = mainContainer
	if rotatedAt.Valid {
		pair.RotatedAt = &rotatedAt.Time
	}
	return &pair, nil
}

// NewPostgreSQLKeyMaterialRepository creates a new PostgreSQL key material repository.
func NewPostgreSQLKeyMaterialRepository(db *sql.DB) *PostgreSQLKeyMaterialRepository {
	return &PostgreSQLKeyMaterialRepository{db: db}
}
