package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	apperrors "github.com/allisson/idcore/internal/errors"
)

func TestRunCreateMasterPassword(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("plaintext", func(t *testing.T) {
		mockKMS := &MockKMSService{}

		var out bytes.Buffer
		err := RunCreateMasterPassword(ctx, mockKMS, logger, &out, "")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "MASTER_PASSWORD=\"")
		assert.NotContains(t, out.String(), "MASTER_PASSWORD_CIPHERTEXT")
		mockKMS.AssertExpectations(t)
	})

	t.Run("kms", func(t *testing.T) {
		mockKMS := &MockKMSService{}
		mockKMS.On("EncryptMasterPassword", ctx, "base64key://key", mock.AnythingOfType("*domain.MasterPassword")).
			Return("c2VhbGVk", nil).
			Once()

		var out bytes.Buffer
		err := RunCreateMasterPassword(ctx, mockKMS, logger, &out, "base64key://key")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "KMS_KEY_URI=\"base64key://key\"")
		assert.Contains(t, out.String(), "MASTER_PASSWORD_CIPHERTEXT=\"c2VhbGVk\"")
		assert.NotContains(t, out.String(), "MASTER_PASSWORD=\"")
		mockKMS.AssertExpectations(t)
	})

	t.Run("kms-failure", func(t *testing.T) {
		mockKMS := &MockKMSService{}
		mockKMS.On("EncryptMasterPassword", ctx, "base64key://key", mock.Anything).
			Return("", errors.New("keeper unavailable")).
			Once()

		err := RunCreateMasterPassword(ctx, mockKMS, logger, &bytes.Buffer{}, "base64key://key")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "keeper unavailable")
	})
}

func TestRunRotateMasterPassword(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	current, err := cryptoDomain.NewMasterPassword([]byte("current-master-password"))
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		mockUseCase := &MockMasterPasswordUseCase{}
		mockUseCase.On("Rotate", ctx, current, mock.AnythingOfType("*domain.MasterPassword")).
			Return(7, nil).
			Once()

		var out bytes.Buffer
		err := RunRotateMasterPassword(ctx, mockUseCase, &MockKMSService{}, current, logger, &out, "", "")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "MASTER_PASSWORD=\"")
		assert.Contains(t, out.String(), "Rewrapped 7 key material(s)")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("partial-failure", func(t *testing.T) {
		mockUseCase := &MockMasterPasswordUseCase{}
		mockUseCase.On("Rotate", ctx, current, mock.Anything).
			Return(3, errors.New("connection reset")).
			Once()

		var out bytes.Buffer
		err := RunRotateMasterPassword(ctx, mockUseCase, &MockKMSService{}, current, logger, &out, "", "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 key material(s)")
		// The new password was printed before the rewrap so the run can resume.
		assert.Contains(t, out.String(), "MASTER_PASSWORD=\"")
	})

	t.Run("resume", func(t *testing.T) {
		resume := "Resumed-master-password-value-2026"
		mockUseCase := &MockMasterPasswordUseCase{}
		mockUseCase.On("Rotate", ctx, current, mock.MatchedBy(func(mp *cryptoDomain.MasterPassword) bool {
			return mp.Reveal() == resume
		})).Return(4, nil).Once()

		var out bytes.Buffer
		err := RunRotateMasterPassword(ctx, mockUseCase, &MockKMSService{}, current, logger, &out, "", resume)

		require.NoError(t, err)
		assert.Contains(t, out.String(), "MASTER_PASSWORD=\"Resumed-master-password-value-2026\"")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("resume-too-short", func(t *testing.T) {
		err := RunRotateMasterPassword(
			ctx, &MockMasterPasswordUseCase{}, &MockKMSService{}, current, logger, &bytes.Buffer{}, "", "short",
		)

		assert.ErrorIs(t, err, cryptoDomain.ErrMasterPasswordTooShort)
	})

	t.Run("resume-weak", func(t *testing.T) {
		mockUseCase := &MockMasterPasswordUseCase{}
		var out bytes.Buffer
		err := RunRotateMasterPassword(
			ctx, mockUseCase, &MockKMSService{}, current, logger, &out, "", "all-lowercase-master-password-without-digits",
		)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "uppercase")
		assert.Empty(t, out.String())
		mockUseCase.AssertNotCalled(t, "Rotate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGenerateMasterPassword(t *testing.T) {
	for range 20 {
		mp, err := generateMasterPassword()
		require.NoError(t, err)
		assert.NoError(t, checkMasterPasswordStrength(mp))
		assert.GreaterOrEqual(t, len(mp.Reveal()), masterPasswordMinChars)
		mp.Close()
	}
}
