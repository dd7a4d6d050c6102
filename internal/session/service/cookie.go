// Package service provides the SSO cookie cipher and request fingerprint derivation.
package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	cryptoService "github.com/allisson/idcore/internal/crypto/service"
	apperrors "github.com/allisson/idcore/internal/errors"
)

var cookieAAD = []byte("idcore-sso-cookie-v1")

// CookieCipher encrypts session ids for SSO cookies. Every cookie gets its
// own AES-256-GCM key and random nonce; the blob is nonce||ciphertext.
type CookieCipher interface {
	Seal(sessionID uuid.UUID) (ciphertext, key []byte, err error)
	Open(ciphertext, key []byte) (uuid.UUID, error)
}

type cookieCipher struct{}

// NewCookieCipher creates a CookieCipher.
func NewCookieCipher() CookieCipher {
	return cookieCipher{}
}

func (cookieCipher) Seal(sessionID uuid.UUID) ([]byte, []byte, error) {
	key := make([]byte, cryptoDomain.WrappingKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to generate cookie key")
	}

	aead, err := cryptoService.NewAEAD(key, cryptoDomain.AESGCM)
	if err != nil {
		return nil, nil, err
	}
	ciphertext, err := cryptoService.SealBlob(aead, sessionID[:], cookieAAD)
	if err != nil {
		return nil, nil, err
	}
	return ciphertext, key, nil
}

func (cookieCipher) Open(ciphertext, key []byte) (uuid.UUID, error) {
	aead, err := cryptoService.NewAEAD(key, cryptoDomain.AESGCM)
	if err != nil {
		return uuid.Nil, err
	}
	plaintext, err := cryptoService.OpenBlob(aead, ciphertext, cookieAAD)
	if err != nil {
		return uuid.Nil, cryptoDomain.ErrDecryptionFailed
	}
	id, err := uuid.FromBytes(plaintext)
	if err != nil {
		return uuid.Nil, cryptoDomain.ErrCorruptContainer
	}
	return id, nil
}

// HashCiphertext returns the hex SHA-256 used to index stored cookies.
func HashCiphertext(ciphertext []byte) string {
	sum := sha256.Sum256(ciphertext)
	return hex.EncodeToString(sum[:])
}

// EncodeCookie renders a ciphertext as the cookie value.
func EncodeCookie(ciphertext []byte) string {
	return base64.RawURLEncoding.EncodeToString(ciphertext)
}

// DecodeCookie parses a cookie value back into its ciphertext.
func DecodeCookie(value string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(value)
}
