package usecase

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"io"
	"log/slog"
	"math/big"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	clientAuthService "github.com/allisson/idcore/internal/clientauth/service"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

var testEndpoints = clientAuthDomain.Endpoints{
	Issuer: "https://id.example.com",
	Token:  "https://id.example.com/oauth/token",
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testVerifier() *clientAuthService.AssertionVerifier {
	return clientAuthService.NewAssertionVerifier(testEndpoints, 5*time.Second)
}

func assertionClaims(clientID string) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    clientID,
		Subject:   clientID,
		Audience:  jwt.ClaimStrings{testEndpoints.Token},
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func signHS256(t *testing.T, clientID string, key []byte) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, assertionClaims(clientID)).SignedString(key)
	require.NoError(t, err)
	return signed
}

func signES256(t *testing.T, clientID string, key *ecdsa.PrivateKey, kid string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, assertionClaims(clientID))
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func bearerRequest(clientID, assertion string) *clientAuthDomain.Request {
	return &clientAuthDomain.Request{
		ClientID:      clientID,
		AssertionType: clientAuthDomain.AssertionTypeJWTBearer,
		Assertion:     assertion,
	}
}

func testApplication(method directoryDomain.AuthMethod) *directoryDomain.Application {
	return &directoryDomain.Application{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		ClientID:       "acme",
		AuthMethod:     method,
	}
}

// testMaterial issues a self-signed certificate and returns its material and key.
func testMaterial(t *testing.T, status registryDomain.CertificateStatus) (*registryDomain.CertificateMaterial, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: "acme"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	sum := sha256.Sum256(der)
	return &registryDomain.CertificateMaterial{
		Certificate: &registryDomain.Certificate{
			ID:          uuid.New(),
			Type:        registryDomain.CertificatePublicKey,
			Status:      status,
			Fingerprint: hex.EncodeToString(sum[:]),
			NotBefore:   leaf.NotBefore,
			NotAfter:    leaf.NotAfter,
		},
		Chain: []*x509.Certificate{leaf},
	}, key
}

func secretSlot(slot int) registryDomain.CredentialSlot {
	secretID := uuid.New()
	return registryDomain.CredentialSlot{
		Slot:         slot,
		CredentialID: uuid.New(),
		AuthMethod:   directoryDomain.AuthMethodClientSecretJWT,
		SecretID:     &secretID,
	}
}

func certificateSlot(slot int, certificateID uuid.UUID) registryDomain.CredentialSlot {
	return registryDomain.CredentialSlot{
		Slot:          slot,
		CredentialID:  uuid.New(),
		AuthMethod:    directoryDomain.AuthMethodPrivateKeyJWT,
		CertificateID: &certificateID,
	}
}

type mockApplicationReader struct {
	mock.Mock
}

func (m *mockApplicationReader) GetApplicationByClientID(
	ctx context.Context,
	clientID string,
) (*directoryDomain.Application, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*directoryDomain.Application), args.Error(1)
}

type mockCredentialSource struct {
	mock.Mock
}

func (m *mockCredentialSource) ActiveSlots(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]registryDomain.CredentialSlot, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]registryDomain.CredentialSlot), args.Error(1)
}

func (m *mockCredentialSource) LoadSecret(ctx context.Context, secretID uuid.UUID) ([]byte, error) {
	args := m.Called(ctx, secretID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type mockCertificateSource struct {
	mock.Mock
}

func (m *mockCertificateSource) LoadMaterial(
	ctx context.Context,
	id uuid.UUID,
) (*registryDomain.CertificateMaterial, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registryDomain.CertificateMaterial), args.Error(1)
}

type mockRemoteKeySet struct {
	mock.Mock
}

func (m *mockRemoteKeySet) Fetch(ctx context.Context, url string) (jwk.Set, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(jwk.Set), args.Error(1)
}

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(
	ctx context.Context,
	req *clientAuthDomain.Request,
) (*clientAuthDomain.Client, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clientAuthDomain.Client), args.Error(1)
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
