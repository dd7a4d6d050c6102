package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCertificateStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to CertificateStatus
		want     bool
	}{
		{CertificateActive, CertificateSuspended, true},
		{CertificateActive, CertificateInactive, true},
		{CertificateActive, CertificateExpired, true},
		{CertificateSuspended, CertificateActive, true},
		{CertificateExpired, CertificateInactive, true},
		{CertificateExpired, CertificateActive, false},
		{CertificateInactive, CertificateActive, false},
		{CertificateInactive, CertificateSuspended, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestCredentialStatus_CanTransition(t *testing.T) {
	assert.True(t, CredentialActive.CanTransition(CredentialDisabled))
	assert.True(t, CredentialDisabled.CanTransition(CredentialActive))
	assert.True(t, CredentialDisabled.CanTransition(CredentialInactive))
	assert.False(t, CredentialInactive.CanTransition(CredentialActive))
	assert.False(t, CredentialActive.CanTransition(CredentialStatus("unknown")))
}

func TestParseStatuses(t *testing.T) {
	status, err := ParseCertificateStatus("suspended")
	require.NoError(t, err)
	assert.Equal(t, CertificateSuspended, status)

	_, err = ParseCertificateStatus("revoked")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseCredentialStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = ParseCertificateType("x509")
	assert.ErrorIs(t, err, ErrInvalidCertificateType)
}

func TestCertificate_IsUsable(t *testing.T) {
	now := time.Now()
	cert := &Certificate{
		Status:    CertificateActive,
		NotBefore: now.Add(-time.Hour),
		NotAfter:  now.Add(time.Hour),
	}
	assert.True(t, cert.IsUsable(now))
	assert.False(t, cert.IsUsable(now.Add(2*time.Hour)))

	cert.Status = CertificateSuspended
	assert.False(t, cert.IsUsable(now))
}

func TestCredential_IsExpired(t *testing.T) {
	now := time.Now()
	cred := &Credential{}
	assert.False(t, cred.IsExpired(now))

	cred.ExpiresAt = &now
	assert.True(t, cred.IsExpired(now))
}

func TestSlotsCacheKey(t *testing.T) {
	id := uuid.MustParse("0190f2f4-8c3a-7d1e-9b6a-2f1e5c4d3b2a")
	assert.Equal(t, "credential-slots:0190f2f4-8c3a-7d1e-9b6a-2f1e5c4d3b2a:7", SlotsCacheKey(id, 7))
	assert.Equal(t, "credential-slots-gen:0190f2f4-8c3a-7d1e-9b6a-2f1e5c4d3b2a", SlotsGenerationKey(id))
	assert.True(t, CredentialDisabled.IsLive())
	assert.False(t, CredentialInactive.IsLive())
}
