package postgresql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
)

// PostgreSQLCookieRepository persists issued SSO cookies, indexed by ciphertext hash.
type PostgreSQLCookieRepository struct {
	db *sql.DB
}

// Create inserts a new cookie generation.
func (p *PostgreSQLCookieRepository) Create(ctx context.Context, cookie *sessionDomain.SingleSignOnCookie) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO sso_cookies (id, session_id, ciphertext_hash, ciphertext, cookie_key, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		cookie.ID,
		cookie.SessionID,
		cookie.CiphertextHash,
		cookie.Ciphertext,
		cookie.Key,
		cookie.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create sso cookie")
	}
	return nil
}

// GetByHash retrieves a cookie by the SHA-256 of its ciphertext.
func (p *PostgreSQLCookieRepository) GetByHash(
	ctx context.Context,
	ciphertextHash string,
) (*sessionDomain.SingleSignOnCookie, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, session_id, ciphertext_hash, ciphertext, cookie_key, created_at
			  FROM sso_cookies WHERE ciphertext_hash = $1`

	var cookie sessionDomain.SingleSignOnCookie
	err := querier.QueryRowContext(ctx, query, ciphertextHash).Scan(
		&cookie.ID,
		&cookie.SessionID,
		&cookie.CiphertextHash,
		&cookie.Ciphertext,
		&cookie.Key,
		&cookie.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sessionDomain.ErrCookieNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get sso cookie")
	}
	return &cookie, nil
}

// NewPostgreSQLCookieRepository creates a new PostgreSQL SSO cookie repository.
func NewPostgreSQLCookieRepository(db *sql.DB) *PostgreSQLCookieRepository {
	return &PostgreSQLCookieRepository{db: db}
}
