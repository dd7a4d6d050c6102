package mysql

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

// MySQLCredentialRepository persists application credentials with BINARY(16) ids.
type MySQLCredentialRepository struct {
	db *sql.DB
}

const credentialColumns = `id, application_id, name, auth_method, status, expires_at, secret_id, certificate_id,
	created_at, updated_at`

// Create inserts a new credential.
func (m *MySQLCredentialRepository) Create(ctx context.Context, cred *registryDomain.Credential) error {
	querier := database.GetTx(ctx, m.db)

	id, err := cred.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}
	appID, err := cred.ApplicationID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal application id")
	}

	query := `INSERT INTO credentials (` + credentialColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		appID,
		cred.Name,
		cred.AuthMethod,
		cred.Status,
		cred.ExpiresAt,
		nullableUUID(cred.SecretID),
		nullableUUID(cred.CertificateID),
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
func (m *MySQLCredentialRepository) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE id = ?`

	cred, err := scanCredential(querier.QueryRowContext(ctx, query, idBytes))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registryDomain.ErrCredentialNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get credential")
	}
	return cred, nil
}

// ListByApplication returns every credential of an application, oldest first.
func (m *MySQLCredentialRepository) ListByApplication(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]*registryDomain.Credential, error) {
	idBytes, err := applicationID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal application id")
	}
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE application_id = ? ORDER BY created_at ASC, id ASC`
	return m.list(ctx, query, idBytes)
}

// ListByCertificate returns the credentials backed by a certificate.
func (m *MySQLCredentialRepository) ListByCertificate(
	ctx context.Context,
	certificateID uuid.UUID,
) ([]*registryDomain.Credential, error) {
	idBytes, err := certificateID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal certificate id")
	}
	query := `SELECT ` + credentialColumns + ` FROM credentials WHERE certificate_id = ? ORDER BY created_at ASC`
	return m.list(ctx, query, idBytes)
}

// UpdateStatus changes the status of a single credential.
func (m *MySQLCredentialRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CredentialStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal credential id")
	}

	query := `UPDATE credentials SET status = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, status, updatedAt, idBytes)
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
func (m *MySQLCredentialRepository) LockApplication(ctx context.Context, applicationID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := applicationID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal application id")
	}

	var locked []byte
	err = querier.QueryRowContext(ctx, `SELECT id FROM applications WHERE id = ? FOR UPDATE`, idBytes).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return directoryDomain.ErrApplicationNotFound
		}
		return apperrors.Wrap(err, "failed to lock application")
	}
	return nil
}

func (m *MySQLCredentialRepository) list(
	ctx context.Context,
	query string,
	arg any,
) ([]*registryDomain.Credential, error) {
	querier := database.GetTx(ctx, m.db)

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
	var idBytes, appBytes, secretBytes, certificateBytes []byte
	var expiresAt sql.NullTime

	if err := row.Scan(
		&idBytes,
		&appBytes,
		&cred.Name,
		&cred.AuthMethod,
		&cred.Status,
		&expiresAt,
		&secretBytes,
		&certificateBytes,
		&cred.CreatedAt,
		&cred.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := cred.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal credential id")
	}
	if err := cred.ApplicationID.UnmarshalBinary(appBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal application id")
	}
	if expiresAt.Valid {
		cred.ExpiresAt = &expiresAt.Time
	}

	var err error
	if cred.SecretID, err = parseNullableUUID(secretBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal secret id")
	}
	if cred.CertificateID, err = parseNullableUUID(certificateBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal certificate id")
	}
	return &cred, nil
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	b, _ := id.MarshalBinary()
	return b
}

func parseNullableUUID(b []byte) (*uuid.UUID, error) {
	if b == nil {
		return nil, nil
	}
	var id uuid.UUID
	if err := id.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return &id, nil
}

// NewMySQLCredentialRepository creates a new MySQL credential repository.
func NewMySQLCredentialRepository(db *sql.DB) *MySQLCredentialRepository {
	return &MySQLCredentialRepository{db: db}
}
