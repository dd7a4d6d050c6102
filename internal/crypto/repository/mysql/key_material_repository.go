// Package mysql implements key material persistence for MySQL.
package mysql

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

// MySQLKeyMaterialRepository persists KeyMaterialPairs using BINARY(16) ids and
// BLOB columns. All methods honor a transaction carried in ctx.
type MySQLKeyMaterialRepository struct {
	db *sql.DB
}

// Create inserts a new key material pair.
func (m *MySQLKeyMaterialRepository) Create(ctx context.Context, pair *cryptoDomain.KeyMaterialPair) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_materials (id, alias, algorithm, password_container, main_container, created_at, rotated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := pair.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key material id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
func (m *MySQLKeyMaterialRepository) Get(ctx context.Context, id uuid.UUID) (*cryptoDomain.KeyMaterialPair, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, alias, algorithm, password_container, main_container, created_at, rotated_at
			  FROM key_materials
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key material id")
	}

	pair, err := scanKeyMaterial(querier.QueryRowContext(ctx, query, idBytes))
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
func (m *MySQLKeyMaterialRepository) ListPendingRotation(
	ctx context.Context,
	rotationStartedAt time.Time,
	limit int,
) ([]*cryptoDomain.KeyMaterialPair, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, alias, algorithm, password_container, main_container, created_at, rotated_at
			  FROM key_materials
			  WHERE rotated_at IS NULL OR rotated_at < ?
			  ORDER BY created_at ASC
			  LIMIT ?`

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
func (m *MySQLKeyMaterialRepository) UpdatePasswordContainer(
	ctx context.Context,
	id uuid.UUID,
	container cryptoDomain.PasswordContainer,
	rotatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key material id")
	}

	query := `UPDATE key_materials SET password_container = ?, rotated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, []byte(container), rotatedAt, idBytes)
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
	var idBytes, passwordContainer, mainContainer []byte
	var rotatedAt sql.NullTime

	if err := row.Scan(
		&idBytes,
		&pair.Alias,
		&pair.Algorithm,
		&passwordContainer,
		&mainContainer,
		&pair.CreatedAt,
		&rotatedAt,
	); err != nil {
		return nil, err
	}

	if err := pair.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal key material id")
	}
	pair.PasswordContainer = passwordContainer
	pair.MainContainer = mainContainer
	if rotatedAt.Valid {
		pair.RotatedAt = &rotatedAt.Time
	}
	return &pair, nil
}

// NewMySQLKeyMaterialRepository creates a new MySQL key material repository.
func NewMySQLKeyMaterialRepository(db *sql.DB) *MySQLKeyMaterialRepository {
	return &MySQLKeyMaterialRepository{db: db}
}
