package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	cryptoService "github.com/allisson/idcore/internal/crypto/service"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

type MockKMSService struct {
	mock.Mock
}

func (m *MockKMSService) OpenKeeper(ctx context.Context, keyURI string) (cryptoService.KMSKeeper, error) {
	args := m.Called(ctx, keyURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoService.KMSKeeper), args.Error(1)
}

func (m *MockKMSService) EncryptMasterPassword(
	ctx context.Context,
	keyURI string,
	mp *cryptoDomain.MasterPassword,
) (string, error) {
	args := m.Called(ctx, keyURI, mp)
	return args.String(0), args.Error(1)
}

func (m *MockKMSService) DecryptMasterPassword(
	ctx context.Context,
	keyURI, ciphertext string,
) (*cryptoDomain.MasterPassword, error) {
	args := m.Called(ctx, keyURI, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.MasterPassword), args.Error(1)
}

type MockMasterPasswordUseCase struct {
	mock.Mock
}

func (m *MockMasterPasswordUseCase) Rotate(
	ctx context.Context,
	oldPassword, newPassword *cryptoDomain.MasterPassword,
) (int, error) {
	args := m.Called(ctx, oldPassword, newPassword)
	return args.Int(0), args.Error(1)
}

type MockCertificateUseCase struct {
	mock.Mock
}

func (m *MockCertificateUseCase) Create(
	ctx context.Context,
	input *registryDomain.CreateCertificateInput,
) (*registryDomain.Certificate, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Certificate), args.Error(1)
}

func (m *MockCertificateUseCase) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Certificate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Certificate), args.Error(1)
}

func (m *MockCertificateUseCase) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CertificateStatus,
) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockCertificateUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCertificateUseCase) LoadMaterial(
	ctx context.Context,
	id uuid.UUID,
) (*registryDomain.CertificateMaterial, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.CertificateMaterial), args.Error(1)
}

type MockCredentialUseCase struct {
	mock.Mock
}

func (m *MockCredentialUseCase) CreateSecret(
	ctx context.Context,
	input *registryDomain.CreateSecretCredentialInput,
) (*registryDomain.CreateSecretCredentialOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.CreateSecretCredentialOutput), args.Error(1)
}

func (m *MockCredentialUseCase) CreatePrivateKey(
	ctx context.Context,
	input *registryDomain.CreatePrivateKeyCredentialInput,
) (*registryDomain.Credential, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Credential), args.Error(1)
}

func (m *MockCredentialUseCase) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CredentialStatus,
) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockCredentialUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCredentialUseCase) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.Credential), args.Error(1)
}

func (m *MockCredentialUseCase) ListByApplication(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]*registryDomain.Credential, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*registryDomain.Credential), args.Error(1)
}

func (m *MockCredentialUseCase) ActiveSlots(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]registryDomain.CredentialSlot, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registryDomain.CredentialSlot), args.Error(1)
}

func (m *MockCredentialUseCase) LoadSecret(ctx context.Context, secretID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockExpiredTokenCleaner struct {
	mock.Mock
}

func (m *MockExpiredTokenCleaner) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockAuditEventVerifier struct {
	mock.Mock
}

func (m *MockAuditEventVerifier) VerifyRange(
	ctx context.Context,
	from, to time.Time,
) (*auditDomain.VerificationReport, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auditDomain.VerificationReport), args.Error(1)
}

type MockAuditEventCleaner struct {
	mock.Mock
}

func (m *MockAuditEventCleaner) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	args := m.Called(ctx, days)
	return args.Get(0).(int64), args.Error(1)
}
