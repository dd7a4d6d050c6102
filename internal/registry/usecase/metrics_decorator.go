package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/metrics"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

const metricsDomain = "registry"

func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RecordOperation(ctx, metricsDomain, operation, status)
	m.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// certificateUseCaseWithMetrics decorates CertificateUseCase with metrics instrumentation.
type certificateUseCaseWithMetrics struct {
	next    CertificateUseCase
	metrics metrics.BusinessMetrics
}

// NewCertificateUseCaseWithMetrics wraps a CertificateUseCase with metrics recording.
func NewCertificateUseCaseWithMetrics(useCase CertificateUseCase, m metrics.BusinessMetrics) CertificateUseCase {
	return &certificateUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *certificateUseCaseWithMetrics) Create(
	ctx context.Context,
	input *registryDomain.CreateCertificateInput,
) (*registryDomain.Certificate, error) {
	start := time.Now()
	cert, err := c.next.Create(ctx, input)
	record(ctx, c.metrics, "certificate_create", start, err)
	return cert, err
}

func (c *certificateUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Certificate, error) {
	start := time.Now()
	cert, err := c.next.Get(ctx, id)
	record(ctx, c.metrics, "certificate_get", start, err)
	return cert, err
}

func (c *certificateUseCaseWithMetrics) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CertificateStatus,
) error {
	start := time.Now()
	err := c.next.UpdateStatus(ctx, id, status)
	record(ctx, c.metrics, "certificate_update_status", start, err)
	return err
}

func (c *certificateUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := c.next.Delete(ctx, id)
	record(ctx, c.metrics, "certificate_delete", start, err)
	return err
}

func (c *certificateUseCaseWithMetrics) LoadMaterial(
	ctx context.Context,
	id uuid.UUID,
) (*registryDomain.CertificateMaterial, error) {
	start := time.Now()
	material, err := c.next.LoadMaterial(ctx, id)
	record(ctx, c.metrics, "certificate_load_material", start, err)
	return material, err
}

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *credentialUseCaseWithMetrics) CreateSecret(
	ctx context.Context,
	input *registryDomain.CreateSecretCredentialInput,
) (*registryDomain.CreateSecretCredentialOutput, error) {
	start := time.Now()
	output, err := c.next.CreateSecret(ctx, input)
	record(ctx, c.metrics, "credential_create_secret", start, err)
	return output, err
}

func (c *credentialUseCaseWithMetrics) CreatePrivateKey(
	ctx context.Context,
	input *registryDomain.CreatePrivateKeyCredentialInput,
) (*registryDomain.Credential, error) {
	start := time.Now()
	cred, err := c.next.CreatePrivateKey(ctx, input)
	record(ctx, c.metrics, "credential_create_private_key", start, err)
	return cred, err
}

func (c *credentialUseCaseWithMetrics) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CredentialStatus,
) error {
	start := time.Now()
	err := c.next.UpdateStatus(ctx, id, status)
	record(ctx, c.metrics, "credential_update_status", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := c.next.Delete(ctx, id)
	record(ctx, c.metrics, "credential_delete", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error) {
	start := time.Now()
	cred, err := c.next.Get(ctx, id)
	record(ctx, c.metrics, "credential_get", start, err)
	return cred, err
}

func (c *credentialUseCaseWithMetrics) ListByApplication(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]*registryDomain.Credential, error) {
	start := time.Now()
	creds, err := c.next.ListByApplication(ctx, applicationID)
	record(ctx, c.metrics, "credential_list", start, err)
	return creds, err
}

func (c *credentialUseCaseWithMetrics) ActiveSlots(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]registryDomain.CredentialSlot, error) {
	start := time.Now()
	slots, err := c.next.ActiveSlots(ctx, applicationID)
	record(ctx, c.metrics, "credential_active_slots", start, err)
	return slots, err
}

func (c *credentialUseCaseWithMetrics) LoadSecret(ctx context.Context, secretID uuid.UUID) ([]byte, error) {
	start := time.Now()
	secret, err := c.next.LoadSecret(ctx, secretID)
	record(ctx, c.metrics, "credential_load_secret", start, err)
	return secret, err
}
