// Package service provides token value generation, hashing and claim assembly.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/hkdf"

	apperrors "github.com/allisson/idcore/internal/errors"
)

const (
	valueSize      = 32
	signingKeySize = 32
	signingKeyInfo = "idcore-token-signing-key-v1"
)

// Generator creates opaque token values and per-token signing keys.
type Generator interface {
	// NewValue returns a new random token value and its lookup hash.
	NewValue() (value string, hash string, err error)
	// NewSigningKey derives a fresh HMAC key bound to a token value hash.
	NewSigningKey(valueHash string) ([]byte, error)
}

type generator struct {
	rand io.Reader
}

// NewGenerator creates a Generator reading from crypto/rand.
func NewGenerator() Generator {
	return &generator{rand: rand.Reader}
}

func (g *generator) NewValue() (string, string, error) {
	raw := make([]byte, valueSize)
	if _, err := io.ReadFull(g.rand, raw); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate token value")
	}
	value := base64.RawURLEncoding.EncodeToString(raw)
	return value, HashValue(value), nil
}

// NewSigningKey expands fresh randomness with HKDF-SHA256 using the token's
// value hash as salt, so keys of different tokens never share a derivation.
func (g *generator) NewSigningKey(valueHash string) ([]byte, error) {
	seed := make([]byte, signingKeySize)
	if _, err := io.ReadFull(g.rand, seed); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate signing key seed")
	}

	key := make([]byte, signingKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, seed, []byte(valueHash), []byte(signingKeyInfo)), key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive signing key")
	}
	return key, nil
}

// HashValue returns the hex SHA-256 of a token value. Tokens are stored and
// looked up by this hash only.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
