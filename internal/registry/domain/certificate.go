// Package domain defines organization certificates and per-application
// credentials, with their status lifecycles.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// CertificateType distinguishes certificates that carry a signing key from
// those that only publish a public key.
type CertificateType string

const (
	// CertificateOrganizationSigning carries a private key and certificate chain.
	CertificateOrganizationSigning CertificateType = "organization_signing"
	// CertificatePublicKey carries only a certificate chain.
	CertificatePublicKey CertificateType = "public_key"
)

// ParseCertificateType converts a string into a CertificateType.
func ParseCertificateType(s string) (CertificateType, error) {
	switch CertificateType(s) {
	case CertificateOrganizationSigning, CertificatePublicKey:
		return CertificateType(s), nil
	default:
		return "", ErrInvalidCertificateType
	}
}

// CertificateStatus is the lifecycle state of a certificate.
type CertificateStatus string

const (
	CertificateInactive  CertificateStatus = "inactive"
	CertificateActive    CertificateStatus = "active"
	CertificateExpired   CertificateStatus = "expired"
	CertificateSuspended CertificateStatus = "suspended"
)

// ParseCertificateStatus converts a string into a CertificateStatus.
func ParseCertificateStatus(s string) (CertificateStatus, error) {
	switch CertificateStatus(s) {
	case CertificateInactive, CertificateActive, CertificateExpired, CertificateSuspended:
		return CertificateStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// certificateTransitions lists the allowed target states per state. Inactive
// is terminal: certificates are never hard deleted.
var certificateTransitions = map[CertificateStatus][]CertificateStatus{
	CertificateActive:    {CertificateInactive, CertificateSuspended, CertificateExpired},
	CertificateSuspended: {CertificateActive, CertificateInactive, CertificateExpired},
	CertificateExpired:   {CertificateInactive},
	CertificateInactive:  {},
}

// CanTransition reports whether a certificate may move from s to next.
func (s CertificateStatus) CanTransition(next CertificateStatus) bool {
	for _, allowed := range certificateTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Certificate is an uploaded X.509 certificate owned by an organization. The
// chain and optional private key live in the referenced key material.
type Certificate struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Type           CertificateType
	Status         CertificateStatus
	Subject        string
	Fingerprint    string // hex SHA-256 of the leaf DER
	NotBefore      time.Time
	NotAfter       time.Time
	KeyMaterialID  uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsUsable reports whether the certificate is active and inside its validity window.
func (c *Certificate) IsUsable(now time.Time) bool {
	return c.Status == CertificateActive && !now.Before(c.NotBefore) && now.Before(c.NotAfter)
}
