// Package postgresql implements certificate, secret and credential persistence for PostgreSQL.
package postgresql

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

// PostgreSQLCertificateRepository persists certificate metadata.
type PostgreSQLCertificateRepository struct {
	db *sql.DB
}

const certificateColumns = `id, organization_id, type, status, subject, fingerprint, not_before, not_after,
	key_material_id, created_at, updated_at`

// Create inserts a new certificate. A duplicate fingerprint returns ErrCertificateDuplicate.
func (p *PostgreSQLCertificateRepository) Create(ctx context.Context, cert *registryDomain.Certificate) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO certificates (` + certificateColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		cert.ID,
		cert.OrganizationID,
		cert.Type,
		cert.Status,
		cert.Subject,
		cert.Fingerprint,
		cert.NotBefore,
		cert.NotAfter,
		cert.KeyMaterialID,
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
func (p *PostgreSQLCertificateRepository) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Certificate, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id = $1`
	return scanCertificate(querier.QueryRowContext(ctx, query, id))
}

// GetByFingerprint retrieves a certificate by its SHA-256 fingerprint.
func (p *PostgreSQLCertificateRepository) GetByFingerprint(
	ctx context.Context,
	fingerprint string,
) (*registryDomain.Certificate, error) {
	querier := database.GetTx(ctx, p.db)
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE fingerprint = $1`
	return scanCertificate(querier.QueryRowContext(ctx, query, fingerprint))
}

// UpdateStatus changes the status of a single certificate.
func (p *PostgreSQLCertificateRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CertificateStatus,
	updatedAt time.Time,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE certificates SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, status, updatedAt, id)
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
	err := row.Scan(
		&cert.ID,
		&cert.OrganizationID,
		&cert.Type,
		&cert.Status,
		&cert.Subject,
		&cert.Fingerprint,
		&cert.NotBefore,
		&cert.NotAfter,
		&cert.KeyMaterialID,
		&cert.CreatedAt,
		&cert.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registryDomain.ErrCertificateNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get certificate")
	}
	return &cert, nil
}

// NewPostgreSQLCertificateRepository creates a new PostgreSQL certificate repository.
func NewPostgreSQLCertificateRepository(db *sql.DB) *PostgreSQLCertificateRepository {
	return &PostgreSQLCertificateRepository{db: db}
}
