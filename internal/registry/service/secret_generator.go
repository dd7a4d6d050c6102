package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// SecretSize is the number of random bytes behind a generated client secret.
const SecretSize = 32

// SecretGenerator produces client secrets for shared secret credentials.
type SecretGenerator interface {
	// Generate returns a new secret in its transport form. The returned bytes
	// are also the HMAC key clients sign assertions with.
	Generate() ([]byte, error)
}

type secretGenerator struct{}

// NewSecretGenerator creates a SecretGenerator backed by crypto/rand.
func NewSecretGenerator() SecretGenerator {
	return &secretGenerator{}
}

func (g *secretGenerator) Generate() ([]byte, error) {
	raw := make([]byte, SecretSize)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}
	encoded := make([]byte, base64.RawURLEncoding.EncodedLen(len(raw)))
	base64.RawURLEncoding.Encode(encoded, raw)
	clear(raw)
	return encoded, nil
}

// SecretFingerprint returns the hex SHA-256 digest of a secret.
func SecretFingerprint(secret []byte) string {
	sum := sha256.Sum256(secret)
	return hex.EncodeToString(sum[:])
}
