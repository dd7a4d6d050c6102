// Package postgresql implements read-only directory lookups for PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/database"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	apperrors "github.com/allisson/idcore/internal/errors"
)

// PostgreSQLDirectoryRepository reads applications, organizations, users and
// permissions. It never writes.
type PostgreSQLDirectoryRepository struct {
	db *sql.DB
}

const applicationColumns = `id, organization_id, client_id, name, auth_method, require_pkce, jwks_url,
	access_token_ttl_seconds, refresh_token_ttl_seconds, max_transit_time_seconds, created_at`

// GetApplicationByClientID retrieves an application by its OAuth client id.
func (p *PostgreSQLDirectoryRepository) GetApplicationByClientID(
	ctx context.Context,
	clientID string,
) (*directoryDomain.Application, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE client_id = $1`
	return scanApplication(querier.QueryRowContext(ctx, query, clientID))
}

// GetApplication retrieves an application by id.
func (p *PostgreSQLDirectoryRepository) GetApplication(
	ctx context.Context,
	id uuid.UUID,
) (*directoryDomain.Application, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(querier.QueryRowContext(ctx, query, id))
}

// GetOrganization retrieves an organization by id.
func (p *PostgreSQLDirectoryRepository) GetOrganization(
	ctx context.Context,
	id uuid.UUID,
) (*directoryDomain.Organization, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, guid, name FROM organizations WHERE id = $1`

	var org directoryDomain.Organization
	err := querier.QueryRowContext(ctx, query, id).Scan(&org.ID, &org.GUID, &org.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, directoryDomain.ErrOrganizationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get organization")
	}
	return &org, nil
}

// GetUser retrieves a user by id.
func (p *PostgreSQLDirectoryRepository) GetUser(ctx context.Context, id uuid.UUID) (*directoryDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, group_id, row_id, name, phone_number, email, linked_login_id, metadata
			  FROM users
			  WHERE id = $1`

	var user directoryDomain.User
	var metadata []byte
	err := querier.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.GroupID,
		&user.RowID,
		&user.Name,
		&user.PhoneNumber,
		&user.Email,
		&user.LinkedLoginID,
		&metadata,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, directoryDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &user.Metadata); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal user metadata")
		}
	}
	return &user, nil
}

// ListPermissions returns the resource permissions granted to a user.
func (p *PostgreSQLDirectoryRepository) ListPermissions(
	ctx context.Context,
	userID uuid.UUID,
) ([]directoryDomain.Permission, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT resource, verb FROM user_permissions WHERE user_id = $1 ORDER BY resource, verb`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list permissions")
	}
	defer func() {
		_ = rows.Close()
	}()

	var permissions []directoryDomain.Permission
	for rows.Next() {
		var perm directoryDomain.Permission
		if err := rows.Scan(&perm.Resource, &perm.Verb); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan permission")
		}
		permissions = append(permissions, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating permissions")
	}
	return permissions, nil
}

// ListURLPermissions returns the URL patterns a user may call through an application.
func (p *PostgreSQLDirectoryRepository) ListURLPermissions(
	ctx context.Context,
	applicationID, userID uuid.UUID,
) ([]string, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT url FROM url_permissions WHERE application_id = $1 AND user_id = $2 ORDER BY url`

	rows, err := querier.QueryContext(ctx, query, applicationID, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list url permissions")
	}
	defer func() {
		_ = rows.Close()
	}()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan url permission")
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating url permissions")
	}
	return urls, nil
}

func scanApplication(row *sql.Row) (*directoryDomain.Application, error) {
	var app directoryDomain.Application
	var authMethod string
	var jwksURL sql.NullString
	var accessTTL, refreshTTL, maxTransit int64

	err := row.Scan(
		&app.ID,
		&app.OrganizationID,
		&app.ClientID,
		&app.Name,
		&authMethod,
		&app.RequirePKCE,
		&jwksURL,
		&accessTTL,
		&refreshTTL,
		&maxTransit,
		&app.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, directoryDomain.ErrApplicationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get application")
	}

	if app.AuthMethod, err = directoryDomain.ParseAuthMethod(authMethod); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse application auth method")
	}
	if app.JWKSURL, err = directoryDomain.ParseJWKSURL(jwksURL.String); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse application jwks url")
	}
	app.TokenSettings = directoryDomain.TokenSettings{
		AccessTokenTTL:  time.Duration(accessTTL) * time.Second,
		RefreshTokenTTL: time.Duration(refreshTTL) * time.Second,
		MaxTransitTime:  time.Duration(maxTransit) * time.Second,
	}
	return &app, nil
}

// NewPostgreSQLDirectoryRepository creates a new PostgreSQL directory repository.
func NewPostgreSQLDirectoryRepository(db *sql.DB) *PostgreSQLDirectoryRepository {
	return &PostgreSQLDirectoryRepository{db: db}
}
