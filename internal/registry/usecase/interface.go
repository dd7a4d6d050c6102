// Package usecase manages organization certificates and application
// credentials. Key material is wrapped through the envelope store and every
// write that can change client authentication moves the application to a new
// credential slot generation, orphaning whatever slots were cached before.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

// CertificateRepository persists certificate metadata.
type CertificateRepository interface {
	Create(ctx context.Context, cert *registryDomain.Certificate) error
	Get(ctx context.Context, id uuid.UUID) (*registryDomain.Certificate, error)
	GetByFingerprint(ctx context.Context, fingerprint string) (*registryDomain.Certificate, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status registryDomain.CertificateStatus, updatedAt time.Time) error
}

// SecretRepository persists shared secret references.
type SecretRepository interface {
	Create(ctx context.Context, secret *registryDomain.Secret) error
	Get(ctx context.Context, id uuid.UUID) (*registryDomain.Secret, error)
}

// CredentialRepository persists application credentials.
type CredentialRepository interface {
	Create(ctx context.Context, cred *registryDomain.Credential) error
	Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error)
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*registryDomain.Credential, error)
	ListByCertificate(ctx context.Context, certificateID uuid.UUID) ([]*registryDomain.Credential, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status registryDomain.CredentialStatus, updatedAt time.Time) error

	// LockApplication holds a row lock on the application until the
	// surrounding transaction ends, serializing credential writers.
	LockApplication(ctx context.Context, applicationID uuid.UUID) error
}

// DirectoryReader resolves the owners of certificates and credentials.
type DirectoryReader interface {
	GetApplication(ctx context.Context, id uuid.UUID) (*directoryDomain.Application, error)
	GetOrganization(ctx context.Context, id uuid.UUID) (*directoryDomain.Organization, error)
}

// AuditRecorder stores signed audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event *auditDomain.Event) error
}

// CertificateUseCase manages organization certificates.
type CertificateUseCase interface {
	// Create parses, fingerprints and stores an uploaded bundle. New
	// certificates start active.
	Create(ctx context.Context, input *registryDomain.CreateCertificateInput) (*registryDomain.Certificate, error)

	Get(ctx context.Context, id uuid.UUID) (*registryDomain.Certificate, error)

	// UpdateStatus applies a lifecycle transition and invalidates the cached
	// slots of every application whose credentials use the certificate.
	UpdateStatus(ctx context.Context, id uuid.UUID, status registryDomain.CertificateStatus) error

	// Delete deactivates the certificate. Rows are never removed.
	Delete(ctx context.Context, id uuid.UUID) error

	// LoadMaterial decrypts the certificate chain and private key.
	LoadMaterial(ctx context.Context, id uuid.UUID) (*registryDomain.CertificateMaterial, error)
}

// CredentialUseCase manages per-application credentials.
type CredentialUseCase interface {
	// CreateSecret generates a shared secret credential. The plain secret is
	// returned once and never again.
	CreateSecret(
		ctx context.Context,
		input *registryDomain.CreateSecretCredentialInput,
	) (*registryDomain.CreateSecretCredentialOutput, error)

	// CreatePrivateKey binds a credential to an active public key certificate
	// and copies its expiry.
	CreatePrivateKey(
		ctx context.Context,
		input *registryDomain.CreatePrivateKeyCredentialInput,
	) (*registryDomain.Credential, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, status registryDomain.CredentialStatus) error

	// Delete deactivates the credential.
	Delete(ctx context.Context, id uuid.UUID) error

	Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error)

	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*registryDomain.Credential, error)

	// ActiveSlots returns the application's usable credentials in slot order
	// (oldest first, starting at 1). Results are cached per slot generation.
	ActiveSlots(ctx context.Context, applicationID uuid.UUID) ([]registryDomain.CredentialSlot, error)

	// LoadSecret decrypts a shared secret. The caller should clear the bytes when done.
	LoadSecret(ctx context.Context, secretID uuid.UUID) ([]byte, error)
}
