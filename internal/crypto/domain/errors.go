package domain

import (
	"github.com/allisson/idcore/internal/errors"
)

// Envelope errors. Every one of them fails closed: no partial payload is ever
// returned alongside an error.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is unknown.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a wrapping key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a MainContainer could not be opened with the
	// recovered wrapping key. The cause (wrong key, tampering) is not disclosed.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidState, "decryption failed")

	// ErrWrongMasterPassword indicates a PasswordContainer rejected the master password.
	ErrWrongMasterPassword = errors.Wrap(errors.ErrInvalidState, "master password rejected")

	// ErrCorruptContainer indicates a container decrypted but its contents are
	// malformed, or the password alias entry is missing.
	ErrCorruptContainer = errors.Wrap(errors.ErrInvalidState, "corrupt container")

	// ErrInvalidPayload indicates a payload does not carry the material its kind requires.
	ErrInvalidPayload = errors.Wrap(errors.ErrInvalidInput, "invalid payload")

	// ErrMasterPasswordNotSet indicates neither MASTER_PASSWORD nor a KMS ciphertext is configured.
	ErrMasterPasswordNotSet = errors.Wrap(errors.ErrInvalidInput, "master password not set")

	// ErrMasterPasswordTooShort indicates the master password is below MinMasterPasswordLength.
	ErrMasterPasswordTooShort = errors.Wrap(errors.ErrInvalidInput, "master password too short")

	// ErrKeyMaterialNotFound indicates no KeyMaterialPair exists for an id.
	ErrKeyMaterialNotFound = errors.Wrap(errors.ErrNotFound, "key material not found")
)
