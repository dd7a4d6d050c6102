package domain

// Algorithm represents the AEAD algorithm protecting a MainContainer.
//
// Both algorithms use 256-bit keys, 12-byte nonces and 16-byte tags, so a
// WrappingKey works with either one.
type Algorithm string

const (
	// AESGCM is AES-256-GCM. Preferred on CPUs with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305. Preferred without AES hardware acceleration.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

const (
	// WrappingKeySize is the size in bytes of a WrappingKey.
	WrappingKeySize = 32

	// AliasSize is the size in bytes of a password alias before hex encoding.
	AliasSize = 16

	// MinMasterPasswordLength is the shortest accepted master password.
	MinMasterPasswordLength = 16
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
