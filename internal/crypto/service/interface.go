// Package service implements the secret envelope: AEAD ciphers for MainContainers,
// master-password protected PasswordContainers, and master password loading
// through a KMS.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// Envelope wraps and unwraps payloads. Implementations hold no mutable state;
// every call is a pure function of its inputs plus fresh randomness.
type Envelope interface {
	// Wrap generates a fresh WrappingKey and alias and seals payload into a
	// KeyMaterialPair. The pair ID and timestamps are left for the caller.
	Wrap(payload *cryptoDomain.Payload, masterPassword *cryptoDomain.MasterPassword) (*cryptoDomain.KeyMaterialPair, error)

	// Unwrap reverses Wrap. It never returns a partial payload.
	Unwrap(pair *cryptoDomain.KeyMaterialPair, masterPassword *cryptoDomain.MasterPassword) (*cryptoDomain.Payload, error)

	// RewrapPasswordContainer re-encrypts the PasswordContainer of pair from
	// oldPassword to newPassword, leaving the MainContainer untouched.
	RewrapPasswordContainer(
		pair *cryptoDomain.KeyMaterialPair,
		oldPassword, newPassword *cryptoDomain.MasterPassword,
	) (cryptoDomain.PasswordContainer, error)
}

// KMSKeeper is the subset of *secrets.Keeper the master password loader uses.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
