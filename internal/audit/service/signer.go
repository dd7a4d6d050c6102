// Package service signs and verifies audit events.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	"github.com/allisson/idcore/internal/codec"
	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
)

const signingInfo = "idcore-audit-event-signing-v1"

// Signer computes event signatures under a key derived from the master password.
type Signer interface {
	// KeyID identifies the signing key without revealing it.
	KeyID() string
	Sign(event *auditDomain.Event) ([]byte, error)
	// Verify returns ErrForeignKey when the event was signed under another
	// key and ErrSignatureInvalid when it was altered.
	Verify(event *auditDomain.Event) error
	Close()
}

type hmacSigner struct {
	key   []byte
	keyID string
}

// NewSigner derives the audit signing key from the master password with
// HKDF-SHA256 so the password itself never keys an HMAC directly.
func NewSigner(masterPassword *cryptoDomain.MasterPassword) (Signer, error) {
	reader := hkdf.New(sha256.New, []byte(masterPassword.Reveal()), nil, []byte(signingInfo))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive audit signing key: %w", err)
	}
	digest := sha256.Sum256(key)
	return &hmacSigner{key: key, keyID: hex.EncodeToString(digest[:8])}, nil
}

func (s *hmacSigner) KeyID() string {
	return s.keyID
}

// canonicalEvent is the signed projection of an event. Timestamps are unix
// microseconds and empty metadata is nil so a database round trip
// reproduces the same bytes.
type canonicalEvent struct {
	ID        [16]byte          `cbor:"1,keyasint"`
	Kind      string            `cbor:"2,keyasint"`
	Outcome   string            `cbor:"3,keyasint"`
	ClientID  string            `cbor:"4,keyasint"`
	TargetID  string            `cbor:"5,keyasint"`
	Slot      int               `cbor:"6,keyasint"`
	Metadata  map[string]string `cbor:"7,keyasint,omitempty"`
	CreatedAt int64             `cbor:"8,keyasint"`
}

func canonicalize(event *auditDomain.Event) ([]byte, error) {
	c := canonicalEvent{
		ID:        event.ID,
		Kind:      string(event.Kind),
		Outcome:   string(event.Outcome),
		ClientID:  event.ClientID,
		TargetID:  event.TargetID,
		Slot:      event.Slot,
		CreatedAt: event.CreatedAt.UnixMicro(),
	}
	if len(event.Metadata) > 0 {
		c.Metadata = event.Metadata
	}
	return codec.Marshal(c)
}

func (s *hmacSigner) Sign(event *auditDomain.Event) ([]byte, error) {
	canonical, err := canonicalize(event)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize audit event: %w", err)
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

func (s *hmacSigner) Verify(event *auditDomain.Event) error {
	if event.KeyID != s.keyID {
		return auditDomain.ErrForeignKey
	}
	expected, err := s.Sign(event)
	if err != nil {
		return err
	}
	if !hmac.Equal(event.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}

func (s *hmacSigner) Close() {
	cryptoDomain.Zero(s.key)
}
