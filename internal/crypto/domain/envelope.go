// Package domain defines the value types of the two-tier secret envelope.
//
// The key-wrapping chain is master password -> alias-keyed WrappingKey -> payload.
// A PasswordContainer holds exactly one WrappingKey under a random alias and is
// encrypted with the process-wide master password. A MainContainer holds the
// payload encrypted with that WrappingKey. Rotating the master password only
// rewrites PasswordContainers.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// WrappingKey is the random 256-bit key protecting one item's MainContainer.
// It only exists in plaintext while a container is being built or opened.
type WrappingKey []byte

// PasswordContainer is the serialized, master-password encrypted container
// holding a single alias -> WrappingKey entry.
type PasswordContainer []byte

// MainContainer is the serialized container holding the payload encrypted
// under the WrappingKey.
type MainContainer []byte

// KeyMaterialPair is the unit persisted for every secret, certificate and
// credential. Immutable after creation except for PasswordContainer, which is
// replaced when the master password rotates.
type KeyMaterialPair struct {
	ID                uuid.UUID
	Alias             string // hex-encoded 128-bit password alias
	Algorithm         Algorithm
	PasswordContainer PasswordContainer
	MainContainer     MainContainer
	CreatedAt         time.Time
	RotatedAt         *time.Time
}

// PayloadKind identifies what a MainContainer carries.
type PayloadKind string

const (
	// PayloadSecret is a bare symmetric secret.
	PayloadSecret PayloadKind = "secret"

	// PayloadKeyPair is a private key with its certificate chain.
	PayloadKeyPair PayloadKind = "key_pair"

	// PayloadCertificate is a certificate chain without a private key.
	PayloadCertificate PayloadKind = "certificate"
)

// Payload is the sensitive content of a MainContainer.
type Payload struct {
	Kind         PayloadKind `cbor:"1,keyasint"`
	Secret       []byte      `cbor:"2,keyasint,omitempty"`
	PrivateKey   []byte      `cbor:"3,keyasint,omitempty"` // PKCS#8 DER
	Certificates [][]byte    `cbor:"4,keyasint,omitempty"` // DER, leaf first
}

// Validate checks that the payload carries the material its kind requires.
func (p *Payload) Validate() error {
	switch p.Kind {
	case PayloadSecret:
		if len(p.Secret) == 0 {
			return ErrInvalidPayload
		}
	case PayloadKeyPair:
		if len(p.PrivateKey) == 0 || len(p.Certificates) == 0 {
			return ErrInvalidPayload
		}
	case PayloadCertificate:
		if len(p.Certificates) == 0 {
			return ErrInvalidPayload
		}
	default:
		return ErrInvalidPayload
	}
	return nil
}

// Zero clears the secret parts of the payload.
func (p *Payload) Zero() {
	if p == nil {
		return
	}
	Zero(p.Secret)
	Zero(p.PrivateKey)
}
