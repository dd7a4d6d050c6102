package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
)

// MySQLCookieRepository persists issued SSO cookies, indexed by ciphertext hash.
type MySQLCookieRepository struct {
	db *sql.DB
}

// Create inserts a new cookie generation.
func (m *MySQLCookieRepository) Create(ctx context.Context, cookie *sessionDomain.SingleSignOnCookie) error {
	querier := database.GetTx(ctx, m.db)

	id, err := cookie.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal cookie id")
	}
	sessionID, err := cookie.SessionID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session id")
	}

	query := `INSERT INTO sso_cookies (id, session_id, ciphertext_hash, ciphertext, cookie_key, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		sessionID,
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
func (m *MySQLCookieRepository) GetByHash(
	ctx context.Context,
	ciphertextHash string,
) (*sessionDomain.SingleSignOnCookie, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, session_id, ciphertext_hash, ciphertext, cookie_key, created_at
			  FROM sso_cookies WHERE ciphertext_hash = ?`

	var cookie sessionDomain.SingleSignOnCookie
	var id, sessionID []byte
	err := querier.QueryRowContext(ctx, query, ciphertextHash).Scan(
		&id,
		&sessionID,
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
	if err := cookie.ID.UnmarshalBinary(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal cookie id")
	}
	if err := cookie.SessionID.UnmarshalBinary(sessionID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal session id")
	}
	return &cookie, nil
}

// NewMySQLCookieRepository creates a new MySQL SSO cookie repository.
func NewMySQLCookieRepository(db *sql.DB) *MySQLCookieRepository {
	return &MySQLCookieRepository{db: db}
}
