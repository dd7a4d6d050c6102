package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMasterPassword(t *testing.T) {
	t.Run("valid password is copied", func(t *testing.T) {
		raw := []byte("correct-horse-battery-staple")
		mp, err := NewMasterPassword(raw)
		require.NoError(t, err)

		Zero(raw)
		assert.Equal(t, "correct-horse-battery-staple", mp.Reveal())
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := NewMasterPassword(nil)
		assert.ErrorIs(t, err, ErrMasterPasswordNotSet)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := NewMasterPassword([]byte("short"))
		assert.ErrorIs(t, err, ErrMasterPasswordTooShort)
	})
}

func TestMasterPassword_StringIsRedacted(t *testing.T) {
	mp, err := NewMasterPassword([]byte("correct-horse-battery-staple"))
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED]", mp.String())
}

func TestMasterPassword_Close(t *testing.T) {
	mp, err := NewMasterPassword([]byte("correct-horse-battery-staple"))
	require.NoError(t, err)
	mp.Close()
	assert.Equal(t, "", mp.Reveal())
}

func TestLoadMasterPasswordFromEnv(t *testing.T) {
	t.Run("not set", func(t *testing.T) {
		t.Setenv("MASTER_PASSWORD", "")
		_, err := LoadMasterPasswordFromEnv()
		assert.ErrorIs(t, err, ErrMasterPasswordNotSet)
	})

	t.Run("set", func(t *testing.T) {
		t.Setenv("MASTER_PASSWORD", "an-operator-supplied-password")
		mp, err := LoadMasterPasswordFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "an-operator-supplied-password", mp.Reveal())
	})
}
