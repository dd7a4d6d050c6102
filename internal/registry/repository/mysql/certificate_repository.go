// Package mysql implements certificate, secret and credential persistence for MySQL.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

// MySQLCertificateRepository persists certificate metadata with BINARY(16) ids.
type MySQLCertificateRepository struct {
	db *sql.DB
}

const certificateColumns = `id, organization_id, type, status, subject, fingerprint, not_before, not_after,
	key_material_id, created_at, updated_at`

// Create inserts a new certificate. A duplicate fingerprint returns ErrCertificateDuplicate.
func (m *MySQLCertificateRepository) Create(ctx context.Context, cert *registryDomain.Certificate) error {
	querier := database.GetTx(ctx, m.db)

	id, err := cert.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal certificate id")
	}
	orgID, err := cert.OrganizationID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal organization id")
	}
	keyMaterialID, err := cert.KeyMaterialID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key material id")
	}

	query := `INSERT INTO certificates (` + certificateColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		orgID,
		cert.Type,
		cert.Status,
		cert.Subject,
		cert.Fingerprint,
		cert.NotBefore,
		cert.NotAfter,
		keyMaterialID,
		cert.CreatedAt,
		cert.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return registryDomain.ErrCertificateDuplicate
		}
		return apperrors.Wrap(err, "failed to create certificate")
	}
	return nil
}

// Get retrieves a certificate by id.
func (m *MySQLCertificateRepository) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Certificate, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal certificate id")
	}

	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id = ?`
	return scanCertificate(querier.QueryRowContext(ctx, query, idBytes))
}

// GetByFingerprint retrieves a certificate by its SHA-256 fingerprint.
func (m *MySQLCertificateRepository) GetByFingerprint(
	ctx context.Context,
	fingerprint string,
) (*registryDomain.Certificate, error) {
	querier := database.GetTx(ctx, m.db)
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE fingerprint = ?`
	return scanCertificate(querier.QueryRowContext(ctx, query, fingerprint))
}

// UpdateStatus changes the status of a single certificate.
func (m *MySQLCertificateRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CertificateStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal certificate id")
	}

	query := `UPDATE certificates SET status = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, status, updatedAt, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to update certificate status")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return registryDomain.ErrCertificateNotFound
	}
	return nil
}

func scanCertificate(row *sql.Row) (*registryDomain.Certificate, error) {
	var cert registryDomain.Certificate
	var idBytes, orgBytes, keyMaterialBytes []byte

	err := row.Scan(
		&idBytes,
		&orgBytes,
		&cert.Type,
		&cert.Status,
		&cert.Subject,
		&cert.Fingerprint,
		&cert.NotBefore,
		&cert.NotAfter,
		&keyMaterialBytes,
		&cert.CreatedAt,
		&cert.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registryDomain.ErrCertificateNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get certificate")
	}

	if err := cert.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal certificate id")
	}
	if err := cert.OrganizationID.UnmarshalBinary(orgBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal organization id")
	}
	if err := cert.KeyMaterialID.UnmarshalBinary(keyMaterialBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal key material id")
	}
	return &cert, nil
}

// NewMySQLCertificateRepository creates a new MySQL certificate repository.
func NewMySQLCertificateRepository(db *sql.DB) *MySQLCertificateRepository {
	return &MySQLCertificateRepository{db: db}
}
