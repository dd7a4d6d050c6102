package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

type passthroughTxManager struct{}

func (passthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockCertificateRepository struct {
	mock.Mock
}

func (m *mockCertificateRepository) Create(ctx context.Context, cert *registryDomain.Certificate) error {
	return m.Called(ctx, cert).Error(0)
}

func (m *mockCertificateRepository) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Certificate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Certificate), args.Error(1)
}

func (m *mockCertificateRepository) GetByFingerprint(
	ctx context.Context,
	fingerprint string,
) (*registryDomain.Certificate, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Certificate), args.Error(1)
}

func (m *mockCertificateRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CertificateStatus,
	updatedAt time.Time,
) error {
	return m.Called(ctx, id, status, updatedAt).Error(0)
}

type mockSecretRepository struct {
	mock.Mock
}

func (m *mockSecretRepository) Create(ctx context.Context, secret *registryDomain.Secret) error {
	return m.Called(ctx, secret).Error(0)
}

func (m *mockSecretRepository) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Secret, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Secret), args.Error(1)
}

type mockCredentialRepository struct {
	mock.Mock
}

func (m *mockCredentialRepository) Create(ctx context.Context, cred *registryDomain.Credential) error {
	return m.Called(ctx, cred).Error(0)
}

func (m *mockCredentialRepository) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Credential), args.Error(1)
}

func (m *mockCredentialRepository) ListByApplication(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]*registryDomain.Credential, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registryDomain.Credential), args.Error(1)
}

func (m *mockCredentialRepository) ListByCertificate(
	ctx context.Context,
	certificateID uuid.UUID,
) ([]*registryDomain.Credential, error) {
	args := m.Called(ctx, certificateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registryDomain.Credential), args.Error(1)
}

func (m *mockCredentialRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CredentialStatus,
	updatedAt time.Time,
) error {
	return m.Called(ctx, id, status, updatedAt).Error(0)
}

func (m *mockCredentialRepository) LockApplication(ctx context.Context, applicationID uuid.UUID) error {
	return m.Called(ctx, applicationID).Error(0)
}

type mockDirectoryReader struct {
	mock.Mock
}

func (m *mockDirectoryReader) GetApplication(ctx context.Context, id uuid.UUID) (*directoryDomain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directoryDomain.Application), args.Error(1)
}

func (m *mockDirectoryReader) GetOrganization(
	ctx context.Context,
	id uuid.UUID,
) (*directoryDomain.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directoryDomain.Organization), args.Error(1)
}

type mockEnvelopeStore struct {
	mock.Mock
}

func (m *mockEnvelopeStore) Store(ctx context.Context, payload *cryptoDomain.Payload) (uuid.UUID, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockEnvelopeStore) Load(ctx context.Context, id uuid.UUID) (*cryptoDomain.Payload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Payload), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCache) Counter(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCache) Incr(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCache) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockCache) Close() error {
	return m.Called().Error(0)
}

type mockAuditRecorder struct {
	mock.Mock
}

func (m *mockAuditRecorder) Record(ctx context.Context, event *auditDomain.Event) error {
	return m.Called(ctx, event).Error(0)
}

// recordedEvents returns every event passed to Record.
func (m *mockAuditRecorder) recordedEvents() []*auditDomain.Event {
	var events []*auditDomain.Event
	for _, call := range m.Calls {
		if call.Method == "Record" {
			events = append(events, call.Arguments.Get(1).(*auditDomain.Event))
		}
	}
	return events
}

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}
