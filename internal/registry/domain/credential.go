package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
)

// MaxLiveCredentials is the number of non-inactive credentials an application
// may hold at once: one current and one being rotated in.
const MaxLiveCredentials = 2

// CredentialStatus is the lifecycle state of a credential.
type CredentialStatus string

const (
	CredentialInactive CredentialStatus = "inactive"
	CredentialActive   CredentialStatus = "active"
	CredentialDisabled CredentialStatus = "disabled"
)

// ParseCredentialStatus converts a string into a CredentialStatus.
func ParseCredentialStatus(s string) (CredentialStatus, error) {
	switch CredentialStatus(s) {
	case CredentialInactive, CredentialActive, CredentialDisabled:
		return CredentialStatus(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// IsLive reports whether the credential still counts against the per-application cap.
func (s CredentialStatus) IsLive() bool {
	return s == CredentialActive || s == CredentialDisabled
}

// CanTransition reports whether a credential may move from s to next.
// Inactive is terminal: deleting a credential deactivates it for good.
func (s CredentialStatus) CanTransition(next CredentialStatus) bool {
	switch s {
	case CredentialActive:
		return next == CredentialDisabled || next == CredentialInactive
	case CredentialDisabled:
		return next == CredentialActive || next == CredentialInactive
	default:
		return false
	}
}

// Credential backs one client authentication method for an application. A
// shared secret credential references a Secret, a private key credential
// references a Certificate.
type Credential struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Name          string
	AuthMethod    directoryDomain.AuthMethod
	Status        CredentialStatus
	ExpiresAt     *time.Time
	SecretID      *uuid.UUID
	CertificateID *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsExpired reports whether the credential has an expiry at or before now.
func (c *Credential) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// Secret is a generated shared secret. Only its fingerprint is stored in the
// clear; the value lives in the referenced key material.
type Secret struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Fingerprint   string
	KeyMaterialID uuid.UUID
	CreatedAt     time.Time
}

// CredentialSlot is the cacheable view of one active credential used by
// client authentication. It never carries secret material.
type CredentialSlot struct {
	Slot          int                        `cbor:"1,keyasint"`
	CredentialID  uuid.UUID                  `cbor:"2,keyasint"`
	Name          string                     `cbor:"3,keyasint"`
	AuthMethod    directoryDomain.AuthMethod `cbor:"4,keyasint"`
	SecretID      *uuid.UUID                 `cbor:"5,keyasint,omitempty"`
	CertificateID *uuid.UUID                 `cbor:"6,keyasint,omitempty"`
	ExpiresAt     *time.Time                 `cbor:"7,keyasint,omitempty"`
}

// SlotsGenerationKey is the counter every status change touching the
// application increments. It scopes SlotsCacheKey.
func SlotsGenerationKey(applicationID uuid.UUID) string {
	return "credential-slots-gen:" + applicationID.String()
}

// SlotsCacheKey is the cache key holding the ordered active credential slots
// of an application as computed under one generation.
func SlotsCacheKey(applicationID uuid.UUID, generation int64) string {
	return "credential-slots:" + applicationID.String() + ":" + strconv.FormatInt(generation, 10)
}
