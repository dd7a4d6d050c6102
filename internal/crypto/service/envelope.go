package service

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/allisson/idcore/internal/codec"
	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
)

// containerVersion is bumped when the serialized container layout changes.
const containerVersion = 1

// passwordContents is the plaintext of a PasswordContainer.
type passwordContents struct {
	Version int               `cbor:"1,keyasint"`
	Entries map[string][]byte `cbor:"2,keyasint"`
}

// mainContents is the serialized form of a MainContainer.
type mainContents struct {
	Version    int                    `cbor:"1,keyasint"`
	Algorithm  cryptoDomain.Algorithm `cbor:"2,keyasint"`
	Nonce      []byte                 `cbor:"3,keyasint"`
	Ciphertext []byte                 `cbor:"4,keyasint"`
}

type envelope struct {
	algorithm  cryptoDomain.Algorithm
	workFactor int
}

// NewEnvelope creates an Envelope sealing MainContainers with alg and protecting
// PasswordContainers with age scrypt recipients at the given work factor (log2 N).
func NewEnvelope(alg cryptoDomain.Algorithm, workFactor int) (Envelope, error) {
	if _, err := cryptoDomain.ParseAlgorithm(string(alg)); err != nil {
		return nil, err
	}
	if workFactor < 1 || workFactor > 22 {
		return nil, fmt.Errorf("scrypt work factor must be between 1 and 22, got %d", workFactor)
	}
	return &envelope{algorithm: alg, workFactor: workFactor}, nil
}

func (e *envelope) Wrap(
	payload *cryptoDomain.Payload,
	masterPassword *cryptoDomain.MasterPassword,
) (*cryptoDomain.KeyMaterialPair, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	wrappingKey := make(cryptoDomain.WrappingKey, cryptoDomain.WrappingKeySize)
	if _, err := rand.Read(wrappingKey); err != nil {
		return nil, fmt.Errorf("failed to generate wrapping key: %w", err)
	}
	defer cryptoDomain.Zero(wrappingKey)

	rawAlias := make([]byte, cryptoDomain.AliasSize)
	if _, err := rand.Read(rawAlias); err != nil {
		return nil, fmt.Errorf("failed to generate password alias: %w", err)
	}
	alias := hex.EncodeToString(rawAlias)

	passwordContainer, err := e.sealPasswordContainer(alias, wrappingKey, masterPassword)
	if err != nil {
		return nil, err
	}

	mainContainer, err := e.sealMainContainer(alias, wrappingKey, payload)
	if err != nil {
		return nil, err
	}

	return &cryptoDomain.KeyMaterialPair{
		Alias:             alias,
		Algorithm:         e.algorithm,
		PasswordContainer: passwordContainer,
		MainContainer:     mainContainer,
	}, nil
}

func (e *envelope) Unwrap(
	pair *cryptoDomain.KeyMaterialPair,
	masterPassword *cryptoDomain.MasterPassword,
) (*cryptoDomain.Payload, error) {
	wrappingKey, err := openPasswordContainer(pair.PasswordContainer, pair.Alias, masterPassword)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(wrappingKey)

	return openMainContainer(pair.MainContainer, pair.Alias, wrappingKey)
}

func (e *envelope) RewrapPasswordContainer(
	pair *cryptoDomain.KeyMaterialPair,
	oldPassword, newPassword *cryptoDomain.MasterPassword,
) (cryptoDomain.PasswordContainer, error) {
	wrappingKey, err := openPasswordContainer(pair.PasswordContainer, pair.Alias, oldPassword)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(wrappingKey)

	return e.sealPasswordContainer(pair.Alias, wrappingKey, newPassword)
}

func (e *envelope) sealPasswordContainer(
	alias string,
	wrappingKey cryptoDomain.WrappingKey,
	masterPassword *cryptoDomain.MasterPassword,
) (cryptoDomain.PasswordContainer, error) {
	contents, err := codec.Marshal(passwordContents{
		Version: containerVersion,
		Entries: map[string][]byte{alias: wrappingKey},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode password container: %w", err)
	}
	defer cryptoDomain.Zero(contents)

	recipient, err := age.NewScryptRecipient(masterPassword.Reveal())
	if err != nil {
		return nil, fmt.Errorf("failed to create scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(e.workFactor)

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to create password container writer: %w", err)
	}
	if _, err := w.Write(contents); err != nil {
		return nil, fmt.Errorf("failed to write password container: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize password container: %w", err)
	}

	return cryptoDomain.PasswordContainer(buf.Bytes()), nil
}

func (e *envelope) sealMainContainer(
	alias string,
	wrappingKey cryptoDomain.WrappingKey,
	payload *cryptoDomain.Payload,
) (cryptoDomain.MainContainer, error) {
	plaintext, err := codec.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	cipher, err := NewAEAD(wrappingKey, e.algorithm)
	if err != nil {
		return nil, err
	}

	// The alias is bound as AAD so a MainContainer cannot be paired with
	// another item's PasswordContainer.
	ciphertext, nonce, err := cipher.Encrypt(plaintext, []byte(alias))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt payload: %w", err)
	}

	encoded, err := codec.Marshal(mainContents{
		Version:    containerVersion,
		Algorithm:  e.algorithm,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode main container: %w", err)
	}
	return cryptoDomain.MainContainer(encoded), nil
}

// openPasswordContainer decrypts the container and returns a copy of the
// wrapping key stored under alias.
func openPasswordContainer(
	container cryptoDomain.PasswordContainer,
	alias string,
	masterPassword *cryptoDomain.MasterPassword,
) (cryptoDomain.WrappingKey, error) {
	identity, err := age.NewScryptIdentity(masterPassword.Reveal())
	if err != nil {
		return nil, fmt.Errorf("failed to create scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(container), identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, cryptoDomain.ErrWrongMasterPassword
		}
		return nil, cryptoDomain.ErrCorruptContainer
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, cryptoDomain.ErrCorruptContainer
	}
	defer cryptoDomain.Zero(raw)

	var contents passwordContents
	if err := codec.Unmarshal(raw, &contents); err != nil {
		return nil, cryptoDomain.ErrCorruptContainer
	}
	defer func() {
		for _, v := range contents.Entries {
			cryptoDomain.Zero(v)
		}
	}()

	key, ok := contents.Entries[alias]
	if !ok || len(key) != cryptoDomain.WrappingKeySize {
		return nil, cryptoDomain.ErrCorruptContainer
	}

	wrappingKey := make(cryptoDomain.WrappingKey, len(key))
	copy(wrappingKey, key)
	return wrappingKey, nil
}

func openMainContainer(
	container cryptoDomain.MainContainer,
	alias string,
	wrappingKey cryptoDomain.WrappingKey,
) (*cryptoDomain.Payload, error) {
	var contents mainContents
	if err := codec.Unmarshal(container, &contents); err != nil {
		return nil, cryptoDomain.ErrCorruptContainer
	}

	cipher, err := NewAEAD(wrappingKey, contents.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Decrypt(contents.Ciphertext, contents.Nonce, []byte(alias))
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(plaintext)

	var payload cryptoDomain.Payload
	if err := codec.Unmarshal(plaintext, &payload); err != nil {
		return nil, cryptoDomain.ErrCorruptContainer
	}
	if err := payload.Validate(); err != nil {
		payload.Zero()
		return nil, cryptoDomain.ErrCorruptContainer
	}
	return &payload, nil
}
