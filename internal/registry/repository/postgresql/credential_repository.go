package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/database"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	apperrors "github.com/allisson/idcore/internal/errors"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

// PostgreSQLCredentialRepository persists application credentials.
type PostgreSQLCredentialRepository struct {
	db *sql.DB
}

const credentialColumns = `id, application_id, name, auth_method, status, expires_at, secret_id, certificate_id,
	created_at, updated_at`

// Create inserts a new credential.
func (p *PostgreSQLCredentialRepository) Create(ctx context.Context, cred *registryDomain.Credential) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO credentials (` + credentialColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		cred.ID,
		cred.ApplicationID,
		cred.Name,
		cred.AuthMethod,
		cred.Status,
		cred.ExpiresAt,
		cred.SecretID,
		cred.CertificateID,
		cred.CreatedAt,
		cred.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return registryDomain.ErrCredentialNameConflict
		}
		return apperrors.Wrap(err, "failed to create credential")
	}
	return nil
}

// Get retrieves a credential by id.
func (p *PostgreSQLCredentialRepository) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = $1`

	cred, err := scanCredential(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registryDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}
	return cred, nil
}

// ListByApplication returns every credential of an application, oldest first.
// The order defines the credential slots used by client authentication.
func (p *PostgreSQLCredentialRepository) ListByApplication(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]*registryDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE application_id = $1 ORDER BY created_at ASC, id ASC`
	return p.list(ctx, query, applicationID)
}

// ListByCertificate returns the credentials backed by a certificate.
func (p *PostgreSQLCredentialRepository) ListByCertificate(
	ctx context.Context,
	certificateID uuid.UUID,
) ([]*registryDomain.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE certificate_id = $1 ORDER BY created_at ASC`
	return p.list(ctx, query, certificateID)
}

// UpdateStatus changes the status of a single credential.
func (p *PostgreSQLCredentialRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CredentialStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE credentials SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, status, updatedAt, id)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return registryDomain.ErrCredentialNameConflict
		}
		return apperrors.Wrap(err, "failed to update credential status")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return registryDomain.ErrCredentialNotFound
	}
	return nil
}

// LockApplication takes a FOR UPDATE lock on the application row. It only
// serializes anything when ctx carries a transaction.
func (p *PostgreSQLCredentialRepository) LockApplication(ctx context.Context, applicationID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	var id uuid.UUID
	err := querier.QueryRowContext(ctx, `SELECT id FROM applications WHERE id = $1 FOR UPDATE`, applicationID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return directoryDomain.ErrApplicationNotFound
		}
		return apperrors.Wrap(err, "failed to lock application")
	}
	return nil
}

func (p *PostgreSQLCredentialRepository) list(
	ctx context.Context,
	query string,
	arg any,
) ([]*registryDomain.Credential, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list credentials")
	}
	defer func() {
		_ = rows.Close()
	}()

	var creds []*registryDomain.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan credential")
		}
		creds = append(creds, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "error iterating credentials")
	}
	return creds, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCredential(row rowScanner) (*registryDomain.Credential, error) {
	var cred registryDomain.Credential
	var expiresAt sql.NullTime
	var secretID, certificateID uuid.NullUUID

	if err := row.Scan(
		&cred.ID,
		&cred.ApplicationID,
		&cred.Name,
		&cred.AuthMethod,
		&cred.Status,
		&expiresAt,
		&secretID,
		&certificateID,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		cred.ExpiresAt = &expiresAt.Time
	}
	if secretID.Valid {
		cred.SecretID = &secretID.UUID
	}
	if certificateID.Valid {
		cred.CertificateID = &certificateID.UUID
	}
	return &cred, nil
}

// NewPostgreSQLCredentialRepository creates a new PostgreSQL credential repository.
func NewPostgreSQLCredentialRepository(db *sql.DB) *PostgreSQLCredentialRepository {
	return &PostgreSQLCredentialRepository{db: db}
}
