package domain

import (
	"os"
)

// MasterPassword is the operator-supplied secret protecting every
// PasswordContainer. It is never persisted with the data it protects.
type MasterPassword struct {
	secret []byte
}

// NewMasterPassword copies b into a MasterPassword. The caller may zero b afterwards.
func NewMasterPassword(b []byte) (*MasterPassword, error) {
	if len(b) == 0 {
		return nil, ErrMasterPasswordNotSet
	}
	if len(b) < MinMasterPasswordLength {
		return nil, ErrMasterPasswordTooShort
	}
	secret := make([]byte, len(b))
	copy(secret, b)
	return &MasterPassword{secret: secret}, nil
}

// LoadMasterPasswordFromEnv reads the plaintext MASTER_PASSWORD variable.
// Deployments using a KMS decrypt MASTER_PASSWORD_CIPHERTEXT instead.
func LoadMasterPasswordFromEnv() (*MasterPassword, error) {
	raw := os.Getenv("MASTER_PASSWORD")
	if raw == "" {
		return nil, ErrMasterPasswordNotSet
	}
	return NewMasterPassword([]byte(raw))
}

// Reveal returns the password as the string form the container cipher expects.
func (m *MasterPassword) Reveal() string {
	return string(m.secret)
}

// String never prints the password.
func (m *MasterPassword) String() string {
	return "[REDACTED]"
}

// Close zeroes the password bytes.
func (m *MasterPassword) Close() {
	Zero(m.secret)
	m.secret = nil
}
