package domain

import (
	"github.com/allisson/idcore/internal/errors"
)

// Registry errors.
var (
	ErrCertificateNotFound = errors.Wrap(errors.ErrNotFound, "certificate not found")
	ErrCredentialNotFound  = errors.Wrap(errors.ErrNotFound, "credential not found")
	ErrSecretNotFound      = errors.Wrap(errors.ErrNotFound, "secret not found")

	ErrInvalidCertificateType = errors.Wrap(errors.ErrInvalidInput, "invalid certificate type")
	ErrInvalidStatus          = errors.Wrap(errors.ErrInvalidInput, "invalid status")
	ErrInvalidCertificateData = errors.Wrap(errors.ErrInvalidInput, "invalid certificate data")
	ErrMissingPrivateKey      = errors.Wrap(errors.ErrInvalidInput, "organization signing certificate requires a private key")
	ErrMissingCertificate     = errors.Wrap(errors.ErrInvalidInput, "certificate data contains no certificate")
	ErrKeyMismatch            = errors.Wrap(errors.ErrInvalidInput, "private key does not match certificate")
	ErrUnsupportedKeyType     = errors.Wrap(errors.ErrInvalidInput, "unsupported key type")
	ErrCertificateExpired     = errors.Wrap(errors.ErrInvalidInput, "certificate is outside its validity window")

	ErrInvalidTransition       = errors.Wrap(errors.ErrConflict, "status transition not allowed")
	ErrCertificateNotActive    = errors.Wrap(errors.ErrConflict, "certificate is not active")
	ErrCertificateWrongType    = errors.Wrap(errors.ErrConflict, "certificate type cannot back this credential")
	ErrCertificateDuplicate    = errors.Wrap(errors.ErrConflict, "certificate already registered")
	ErrCredentialLimitReached  = errors.Wrap(errors.ErrConflict, "application credential limit reached")
	ErrCredentialNameConflict  = errors.Wrap(errors.ErrConflict, "an active credential with this name already exists")
	ErrActiveCredentialLimit   = errors.Wrap(errors.ErrConflict, "maximum number of active credentials reached")
	ErrCredentialMethodInvalid = errors.Wrap(errors.ErrInvalidInput, "credential method does not match application")
)
