package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSService opens KMS keepers and uses them to seal or recover the master password.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for the configured KMS provider.
	// Returns an error if the KMS provider URI is invalid or connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)

	// EncryptMasterPassword seals a master password and returns base64 ciphertext
	// suitable for MASTER_PASSWORD_CIPHERTEXT.
	EncryptMasterPassword(ctx context.Context, keyURI string, mp *cryptoDomain.MasterPassword) (string, error)

	// DecryptMasterPassword reverses EncryptMasterPassword.
	DecryptMasterPassword(ctx context.Context, keyURI, ciphertext string) (*cryptoDomain.MasterPassword, error)
}

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a secrets.Keeper for the configured KMS provider using the keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

func (k *kmsService) EncryptMasterPassword(
	ctx context.Context,
	keyURI string,
	mp *cryptoDomain.MasterPassword,
) (string, error) {
	keeper, err := k.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() { _ = keeper.Close() }()

	plaintext := []byte(mp.Reveal())
	defer cryptoDomain.Zero(plaintext)

	ciphertext, err := keeper.Encrypt(ctx, plaintext)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt master password: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (k *kmsService) DecryptMasterPassword(
	ctx context.Context,
	keyURI, ciphertext string,
) (*cryptoDomain.MasterPassword, error) {
	if ciphertext == "" {
		return nil, cryptoDomain.ErrMasterPasswordNotSet
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode master password ciphertext: %w", err)
	}

	keeper, err := k.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, err
	}
	defer func() { _ = keeper.Close() }()

	plaintext, err := keeper.Decrypt(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt master password: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	return cryptoDomain.NewMasterPassword(plaintext)
}

// LoadMasterPassword resolves the master password from configuration. When
// keyURI is set the ciphertext is decrypted through the KMS, otherwise the
// plaintext MASTER_PASSWORD variable is used.
func LoadMasterPassword(
	ctx context.Context,
	kms KMSService,
	keyURI, ciphertext string,
) (*cryptoDomain.MasterPassword, error) {
	if keyURI != "" {
		return kms.DecryptMasterPassword(ctx, keyURI, ciphertext)
	}
	return cryptoDomain.LoadMasterPasswordFromEnv()
}
