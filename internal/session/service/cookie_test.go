package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
)

func TestCookieCipher_RoundTrip(t *testing.T) {
	c := NewCookieCipher()
	sessionID := uuid.New()

	ciphertext, key, err := c.Seal(sessionID)
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.Len(t, ciphertext, 12+16+16)

	opened, err := c.Open(ciphertext, key)
	require.NoError(t, err)
	assert.Equal(t, sessionID, opened)
}

func TestCookieCipher_FreshKeyAndNonce(t *testing.T) {
	c := NewCookieCipher()
	sessionID := uuid.New()

	ct1, key1, err := c.Seal(sessionID)
	require.NoError(t, err)
	ct2, key2, err := c.Seal(sessionID)
	require.NoError(t, err)

	assert.NotEqual(t, ct1, ct2)
	assert.NotEqual(t, key1, key2)
}

func TestCookieCipher_Tampering(t *testing.T) {
	c := NewCookieCipher()
	ciphertext, key, err := c.Seal(uuid.New())
	require.NoError(t, err)

	for i := range ciphertext {
		flipped := append([]byte(nil), ciphertext...)
		flipped[i] ^= 0x01
		_, err := c.Open(flipped, key)
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed, "byte %d", i)
	}

	otherKey := append([]byte(nil), key...)
	otherKey[0] ^= 0xff
	_, err = c.Open(ciphertext, otherKey)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)

	_, err = c.Open(ciphertext[:8], key)
	assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
}

func TestHashCiphertext(t *testing.T) {
	a := HashCiphertext([]byte{1, 2, 3})
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashCiphertext([]byte{1, 2, 3}))
	assert.NotEqual(t, a, HashCiphertext([]byte{1, 2, 4}))
}

func TestEncodeDecodeCookie(t *testing.T) {
	raw := []byte{0xff, 0x00, 0x10, 0x20}
	decoded, err := DecodeCookie(EncodeCookie(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)

	_, err = DecodeCookie("not base64!")
	assert.Error(t, err)
}
