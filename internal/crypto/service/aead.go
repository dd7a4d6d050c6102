package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
)

// aeadCipher adapts a cipher.AEAD to the AEAD interface with random nonces.
type aeadCipher struct {
	aead cipher.AEAD
}

// NewAEAD creates a cipher for alg keyed with a 32-byte key.
// Returns ErrInvalidKeySize or ErrUnsupportedAlgorithm on bad input.
func NewAEAD(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	if len(key) != cryptoDomain.WrappingKeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	switch alg {
	case cryptoDomain.AESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create AES cipher: %w", err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("failed to create GCM: %w", err)
		}
		return &aeadCipher{aead: aead}, nil
	case cryptoDomain.ChaCha20:
		aead, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
		}
		return &aeadCipher{aead: aead}, nil
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
}

// Encrypt seals plaintext under a fresh random nonce. The nonce must be stored
// next to the ciphertext; it is never reused with the same key.
func (a *aeadCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt opens ciphertext. Authentication failure returns no plaintext.
func (a *aeadCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

// SealBlob encrypts plaintext and returns nonce||ciphertext as a single blob.
func SealBlob(a AEAD, plaintext, aad []byte) ([]byte, error) {
	ciphertext, nonce, err := a.Encrypt(plaintext, aad)
	if err != nil {
		return nil, err
	}
	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	return append(blob, ciphertext...), nil
}

// OpenBlob reverses SealBlob.
func OpenBlob(a AEAD, blob, aad []byte) ([]byte, error) {
	const nonceSize = chacha20poly1305.NonceSize // 12, same as GCM
	if len(blob) <= nonceSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return a.Decrypt(blob[nonceSize:], blob[:nonceSize], aad)
}
