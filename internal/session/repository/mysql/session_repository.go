// Package mysql implements auth session and SSO cookie persistence for MySQL.
package mysql

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

// MySQLAuthSessionRepository persists auth sessions with BINARY(16) ids.
type MySQLAuthSessionRepository struct {
	db *sql.DB
}

const sessionColumns = `id, application_id, subject_id, scopes, status, fingerprint, redirect_uri, branding,
	created_at, updated_at`

// Create inserts a new auth session.
func (m *MySQLAuthSessionRepository) Create(ctx context.Context, session *sessionDomain.AuthSession) error {
	querier := database.GetTx(ctx, m.db)

	id, err := session.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session id")
	}
	appID, err := session.ApplicationID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal application id")
	}

	query := `INSERT INTO auth_sessions (` + sessionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		appID,
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
func (m *MySQLAuthSessionRepository) Get(ctx context.Context, id uuid.UUID) (*sessionDomain.AuthSession, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal session id")
	}

	query := `SELECT ` + sessionColumns + ` FROM auth_sessions WHERE id = ?`

	var session sessionDomain.AuthSession
	var scannedID, appID []byte
	var scopes string
	err = querier.QueryRowContext(ctx, query, idBytes).Scan(
		&scannedID,
		&appID,
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
	if err := session.ID.UnmarshalBinary(scannedID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal session id")
	}
	if err := session.ApplicationID.UnmarshalBinary(appID); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal application id")
	}
	session.Scopes = strings.Fields(scopes)
	return &session, nil
}

// UpdateStatus changes the status of a single auth session.
func (m *MySQLAuthSessionRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status sessionDomain.SessionStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal session id")
	}

	result, err := querier.ExecContext(
		ctx,
		`UPDATE auth_sessions SET status = ?, updated_at = ? WHERE id = ?`,
		status,
		updatedAt,
		idBytes,
	)
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

// NewMySQLAuthSessionRepository creates a new MySQL auth session repository.
func NewMySQLAuthSessionRepository(db *sql.DB) *MySQLAuthSessionRepository {
	return &MySQLAuthSessionRepository{db: db}
}
