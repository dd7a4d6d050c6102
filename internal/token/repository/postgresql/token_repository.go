// Package postgresql implements token persistence for PostgreSQL.
package postgresql

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

// PostgreSQLTokenRepository persists tokens by value hash. Rows are never
// updated; expired rows are removed by DeleteExpired.
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

const tokenColumns = `id, type, value_hash, session_id, application_id, subject_id, opaque, signing_key,
	expires_at, created_at`

// Create inserts a new token.
func (p *PostgreSQLTokenRepository) Create(ctx context.Context, token *tokenDomain.Token) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO tokens (` + tokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.Type,
		token.ValueHash,
		token.SessionID,
		token.ApplicationID,
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
func (p *PostgreSQLTokenRepository) GetByHash(
	ctx context.Context,
	valueHash string,
	tokenType tokenDomain.TokenType,
) (*tokenDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE value_hash = $1 AND type = $2`

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
func (p *PostgreSQLTokenRepository) ListByApplicationWithin(
	ctx context.Context,
	applicationID uuid.UUID,
	from, to time.Time,
	limit int,
) ([]*tokenDomain.Token, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + tokenColumns + ` FROM tokens
			  WHERE application_id = $1
			    AND created_at BETWEEN $2 AND $3
			    AND signing_key IS NOT NULL
			    AND expires_at > $3
			  ORDER BY created_at DESC
			  LIMIT $4`

	rows, err := querier.QueryContext(ctx, query, applicationID, from, to, limit)
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
func (p *PostgreSQLTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM tokens WHERE expires_at < $1`, before)
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
	var expiresAt sql.NullTime

	if err := row.Scan(
		&token.ID,
		&token.Type,
		&token.ValueHash,
		&token.SessionID,
		&token.ApplicationID,
		&token.SubjectID,
		&token.Opaque,
		&token.SigningKey,
		&expiresAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		token.ExpiresAt = &expiresAt.Time
	}
	return &token, nil
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}
