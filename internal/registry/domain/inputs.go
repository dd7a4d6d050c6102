package domain

import (
	"crypto"
	"crypto/x509"

	"github.com/google/uuid"
)

// CreateCertificateInput carries an uploaded PEM or PKCS#12 bundle.
type CreateCertificateInput struct {
	OrganizationID uuid.UUID
	Type           CertificateType
	Data           []byte
	Password       string
}

// CreateSecretCredentialInput names a new shared secret credential.
type CreateSecretCredentialInput struct {
	ApplicationID uuid.UUID
	Name          string
}

// CreateSecretCredentialOutput returns the plain secret exactly once.
type CreateSecretCredentialOutput struct {
	Credential  *Credential
	PlainSecret string
}

// CreatePrivateKeyCredentialInput binds a new credential to an uploaded certificate.
type CreatePrivateKeyCredentialInput struct {
	ApplicationID uuid.UUID
	CertificateID uuid.UUID
	Name          string
}

// CertificateMaterial is a decrypted certificate chain with its optional key.
type CertificateMaterial struct {
	Certificate *Certificate
	Chain       []*x509.Certificate // leaf first
	PrivateKey  crypto.Signer       // nil for public key certificates
}

// Leaf returns the end-entity certificate.
func (m *CertificateMaterial) Leaf() *x509.Certificate {
	if len(m.Chain) == 0 {
		return nil
	}
	return m.Chain[0]
}
