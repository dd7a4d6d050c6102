// Package postgresql implements auth session and SSO cookie persistence for PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
)

// PostgreSQLAuthSessionRepository persists auth sessions. Scopes are stored
// space separated, the way they are granted.
type PostgreSQLAuthSessionRepository struct {
	db *sql.DB
}

const sessionColumns = `id, application_id, subject_id, scopes, status, fingerprint, redirect_uri, branding,
	created_at, updated_at`

// Create inserts a new auth session.
func (p *PostgreSQLAuthSessionRepository) Create(ctx context.Context, session *sessionDomain.AuthSession) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO auth_sessions (` + sessionColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID,
		session.ApplicationID,
		session.SubjectID,
		strings.Join(session.Scopes, " "),
		session.Status,
		session.Fingerprint,
		session.RedirectURI,
		session.Branding,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create auth session")
	}
	return nil
}

// Get retrieves an auth session by id.
func (p *PostgreSQLAuthSessionRepository) Get(ctx context.Context, id uuid.UUID) (*sessionDomain.AuthSession, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + sessionColumns + ` FROM auth_sessions WHERE id = $1`

	var session sessionDomain.AuthSession
	var scopes string
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.ApplicationID,
		&session.SubjectID,
		&scopes,
		&session.Status,
		&session.Fingerprint,
		&session.RedirectURI,
		&session.Branding,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sessionDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get auth session")
	}
	session.Scopes = strings.Fields(scopes)
	return &session, nil
}

// UpdateStatus changes the status of a single auth session.
func (p *PostgreSQLAuthSessionRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status sessionDomain.SessionStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE auth_sessions SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, status, updatedAt, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update auth session status")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return sessionDomain.ErrSessionNotFound
	}
	return nil
}

// NewPostgreSQLAuthSessionRepository creates a new PostgreSQL auth session repository.
func NewPostgreSQLAuthSessionRepository(db *sql.DB) *PostgreSQLAuthSessionRepository {
	return &PostgreSQLAuthSessionRepository{db: db}
}
