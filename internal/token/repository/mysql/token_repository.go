// Package mysql implements token persistence for MySQL.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

// MySQLTokenRepository persists tokens by value hash with BINARY(16) ids.
type MySQLTokenRepository struct {
	db *sql.DB
}

const tokenColumns = `id, type, value_hash, session_id, application_id, subject_id, opaque, signing_key,
	expires_at, created_at`

// Create inserts a new token.
func (m *MySQLTokenRepository) Create(ctx context.Context, token *tokenDomain.Token) error {
	querier := database.GetTx(ctx, m.db)

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}
	sessionID, err := token.SessionID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session id")
	}
	appID, err := token.ApplicationID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal application id")
	}

	query := `INSERT INTO tokens (` + tokenColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		token.Type,
		token.ValueHash,
		sessionID,
		appID,
		token.SubjectID,
		token.Opaque,
		token.SigningKey,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create token")
	}
	return nil
}

// GetByHash retrieves a token by value hash and type.
func (m *MySQLTokenRepository) GetByHash(
	ctx context.Context,
	valueHash string,
	tokenType tokenDomain.TokenType,
) (*tokenDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE value_hash = ? AND type = ?`

	token, err := scanToken(querier.QueryRowContext(ctx, query, valueHash, tokenType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tokenDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}
	return token, nil
}

// ListByApplicationWithin returns unexpired signing tokens of an application
// created inside [from, to], newest first.
func (m *MySQLTokenRepository) ListByApplicationWithin(
	ctx context.Context,
	applicationID uuid.UUID,
	from, to time.Time,
	limit int,
) ([]*tokenDomain.Token, error) {
	querier := database.GetTx(ctx, m.db)

	appID, err := applicationID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal application id")
	}

	query := `SELECT ` + tokenColumns + ` FROM tokens
			  WHERE application_id = ?
			    AND created_at BETWEEN ? AND ?
			    AND signing_key IS NOT NULL
			    AND expires_at > ?
			  ORDER BY created_at DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, appID, from, to, to, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*tokenDomain.Token
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan token")
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating tokens")
	}
	return tokens, nil
}

// DeleteExpired removes tokens that expired before the given time.
func (m *MySQLTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired tokens")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*tokenDomain.Token, error) {
	var token tokenDomain.Token
	var id, sessionID, appID []byte
	var expiresAt sql.NullTime

	if err := row.Scan(
		&id,
		&token.Type,
		&token.ValueHash,
		&sessionID,
		&appID,
		&token.SubjectID,
		&token.Opaque,
		&token.SigningKey,
		&expiresAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := token.ID.UnmarshalBinary(id); err != nil {
		return nil, err
	}
	if err := token.SessionID.UnmarshalBinary(sessionID); err != nil {
		return nil, err
	}
	if err := token.ApplicationID.UnmarshalBinary(appID); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		token.ExpiresAt = &expiresAt.Time
	}
	return &token, nil
}

// NewMySQLTokenRepository creates a new MySQL token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}
