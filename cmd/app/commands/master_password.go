package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	cryptoService "github.com/allisson/idcore/internal/crypto/service"
	cryptoUseCase "github.com/allisson/idcore/internal/crypto/usecase"
	customValidation "github.com/allisson/idcore/internal/validation"
)

const (
	masterPasswordBytes    = 32
	maxGenerateAttempts    = 16
	masterPasswordMinChars = 32
)

// masterPasswordPolicy applies to every master password these commands print.
var masterPasswordPolicy = customValidation.PasswordStrength{
	MinLength:     masterPasswordMinChars,
	RequireUpper:  true,
	RequireLower:  true,
	RequireNumber: true,
}

// checkMasterPasswordStrength rejects a master password below masterPasswordPolicy.
func checkMasterPasswordStrength(mp *cryptoDomain.MasterPassword) error {
	if err := validation.Validate(mp.Reveal(), masterPasswordPolicy); err != nil {
		return customValidation.WrapValidationError(err)
	}
	return nil
}

// generateMasterPassword returns a random base64url master password that
// satisfies masterPasswordPolicy.
func generateMasterPassword() (*cryptoDomain.MasterPassword, error) {
	for range maxGenerateAttempts {
		mp, err := randomMasterPassword()
		if err != nil {
			return nil, err
		}
		if checkMasterPasswordStrength(mp) == nil {
			return mp, nil
		}
		mp.Close()
	}
	return nil, fmt.Errorf("failed to generate master password: no candidate met the strength policy")
}

func randomMasterPassword() (*cryptoDomain.MasterPassword, error) {
	raw := make([]byte, masterPasswordBytes)
	defer cryptoDomain.Zero(raw)

	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("failed to generate master password: %w", err)
	}
	encoded := []byte(base64.RawURLEncoding.EncodeToString(raw))
	defer cryptoDomain.Zero(encoded)

	return cryptoDomain.NewMasterPassword(encoded)
}

// writeMasterPasswordConfig prints the environment variables that load mp.
// With a KMS key URI the password is sealed and only the ciphertext is printed.
func writeMasterPasswordConfig(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	writer io.Writer,
	kmsKeyURI string,
	mp *cryptoDomain.MasterPassword,
) error {
	if kmsKeyURI == "" {
		_, _ = fmt.Fprintln(writer, "# Plaintext mode: keep this value in a secrets manager")
		_, _ = fmt.Fprintf(writer, "MASTER_PASSWORD=\"%s\"\n", mp.Reveal())
		return nil
	}

	ciphertext, err := kmsService.EncryptMasterPassword(ctx, kmsKeyURI, mp)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(writer, "# KMS mode: the master password is sealed by the KMS key")
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "MASTER_PASSWORD_CIPHERTEXT=\"%s\"\n", ciphertext)
	return nil
}

// RunCreateMasterPassword generates a new master password and prints its
// configuration. Use localsecrets (base64key://) only for local development.
func RunCreateMasterPassword(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
) error {
	mp, err := generateMasterPassword()
	if err != nil {
		return err
	}
	defer mp.Close()

	if err := writeMasterPasswordConfig(ctx, kmsService, writer, kmsKeyURI, mp); err != nil {
		return err
	}

	logger.Info("master password created", slog.Bool("kms", kmsKeyURI != ""))
	return nil
}

// RunRotateMasterPassword rewraps every stored password container from the
// current master password to a new one. When resumePassword is empty a new
// password is generated; a given one must meet masterPasswordPolicy. The new configuration is printed before the rewrap
// starts; an interrupted run is resumed by passing the printed password back
// as resumePassword.
func RunRotateMasterPassword(
	ctx context.Context,
	masterPasswordUseCase cryptoUseCase.MasterPasswordUseCase,
	kmsService cryptoService.KMSService,
	currentPassword *cryptoDomain.MasterPassword,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI, resumePassword string,
) error {
	var newPassword *cryptoDomain.MasterPassword
	var err error
	if resumePassword != "" {
		newPassword, err = cryptoDomain.NewMasterPassword([]byte(resumePassword))
		if err == nil {
			if err = checkMasterPasswordStrength(newPassword); err != nil {
				newPassword.Close()
				newPassword = nil
			}
		}
	} else {
		newPassword, err = generateMasterPassword()
	}
	if err != nil {
		return err
	}
	defer newPassword.Close()

	if err := writeMasterPasswordConfig(ctx, kmsService, writer, kmsKeyURI, newPassword); err != nil {
		return err
	}

	logger.Info("rotating master password")

	count, err := masterPasswordUseCase.Rotate(ctx, currentPassword, newPassword)
	if err != nil {
		return fmt.Errorf("failed to rotate master password after %d key material(s): %w", count, err)
	}

	_, _ = fmt.Fprintf(writer, "# Rewrapped %d key material(s); deploy the configuration above\n", count)
	logger.Info("master password rotated", slog.Int("count", count))
	return nil
}
