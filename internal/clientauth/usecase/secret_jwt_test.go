package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

func TestSecretJWTAuthenticator_Authenticate(t *testing.T) {
	ctx := context.Background()
	key1 := []byte("slot-one-secret-value-0000000000000")
	key2 := []byte("slot-two-secret-value-0000000000000")

	t.Run("Success_FirstSlot", func(t *testing.T) {
		app := testApplication(directoryDomain.AuthMethodClientSecretJWT)
		slot1 := secretSlot(1)

		apps := &mockApplicationReader{}
		creds := &mockCredentialSource{}
		apps.On("GetApplicationByClientID", ctx, "acme").Return(app, nil)
		creds.On("ActiveSlots", ctx, app.ID).Return([]registryDomain.CredentialSlot{slot1}, nil)
		creds.On("LoadSecret", ctx, *slot1.SecretID).Return(append([]byte(nil), key1...), nil).Once()

		auth := NewSecretJWTAuthenticator(apps, creds, nil, testVerifier(), 2, discardLogger())
		client, err := auth.Authenticate(ctx, bearerRequest("acme", signHS256(t, "acme", key1)))

		require.NoError(t, err)
		assert.Equal(t, "acme", client.ClientID)
		assert.Equal(t, app.ID, client.ApplicationID)
		assert.Equal(t, app.OrganizationID, client.OrganizationID)
		assert.Equal(t, 1, client.Slot)
		assert.Equal(t, slot1.CredentialID, client.CredentialID)
		creds.AssertExpectations(t)
	})

	t.Run("Success_SecondSlotDuringRotation", func(t *testing.T) {
		app := testApplication(directoryDomain.AuthMethodClientSecretJWT)
		slot1, slot2 := secretSlot(1), secretSlot(2)

		apps := &mockApplicationReader{}
		creds := &mockCredentialSource{}
		apps.On("GetApplicationByClientID", ctx, "acme").Return(app, nil)
		creds.On("ActiveSlots", ctx, app.ID).Return([]registryDomain.CredentialSlot{slot1, slot2}, nil)
		creds.On("LoadSecret", ctx, *slot1.SecretID).Return(nil, cryptoDomain.ErrDecryptionFailed).Once()
		creds.On("LoadSecret", ctx, *slot2.SecretID).Return(append([]byte(nil), key2...), nil).Once()

		auth := NewSecretJWTAuthenticator(apps, creds, nil, testVerifier(), 2, discardLogger())
		client, err := auth.Authenticate(ctx, bearerRequest("", signHS256(t, "acme", key2)))

		require.NoError(t, err)
		assert.Equal(t, 2, client.Slot)
		assert.Equal(t, slot2.CredentialID, client.CredentialID)
		creds.AssertExpectations(t)
	})

	t.Run("Error_SlotsBeyondMaxActiveAreNotTried", func(t *testing.T) {
		app := testApplication(directoryDomain.AuthMethodClientSecretJWT)
		slot1, slot2 := secretSlot(1), secretSlot(2)

		apps := &mockApplicationReader{}
		creds := &mockCredentialSource{}
		apps.On("GetApplicationByClientID", ctx, "acme").Return(app, nil)
		creds.On("ActiveSlots", ctx, app.ID).Return([]registryDomain.CredentialSlot{slot1, slot2}, nil)
		creds.On("LoadSecret", ctx, *slot1.SecretID).Return(append([]byte(nil), key1...), nil).Once()

		auth := NewSecretJWTAuthenticator(apps, creds, nil, testVerifier(), 1, discardLogger())
		client, err := auth.Authenticate(ctx, bearerRequest("acme", signHS256(t, "acme", key2)))

		assert.Nil(t, client)
		assert.ErrorIs(t, err, clientAuthDomain.ErrInvalidClient)
		creds.AssertNotCalled(t, "LoadSecret", mock.Anything, *slot2.SecretID)
	})

	t.Run("Error_AllSlotsExhausted", func(t *testing.T) {
		app := testApplication(directoryDomain.AuthMethodClientSecretJWT)
		slot1, slot2 := secretSlot(1), secretSlot(2)

		apps := &mockApplicationReader{}
		creds := &mockCredentialSource{}
		apps.On("GetApplicationByClientID", ctx, "acme").Return(app, nil)
		creds.On("ActiveSlots", ctx, app.ID).Return([]registryDomain.CredentialSlot{slot1, slot2}, nil)
		creds.On("LoadSecret", ctx, *slot1.SecretID).Return(append([]byte(nil), key1...), nil).Once()
		creds.On("LoadSecret", ctx, *slot2.SecretID).Return(append([]byte(nil), key2...), nil).Once()

		auth := NewSecretJWTAuthenticator(apps, creds, nil, testVerifier(), 3, discardLogger())
		_, err := auth.Authenticate(ctx, bearerRequest("acme", signHS256(t, "acme", []byte("unknown-secret-value-000000000000"))))

		assert.ErrorIs(t, err, clientAuthDomain.ErrInvalidClient)
		creds.AssertExpectations(t)
	})

	t.Run("Error_NoActiveSlots", func(t *testing.T) {
		app := testApplication(directoryDomain.AuthMethodClientSecretJWT)

		apps := &mockApplicationReader{}
		creds := &mockCredentialSource{}
		apps.On("GetApplicationByClientID", ctx, "acme").Return(app, nil)
		creds.On("ActiveSlots", ctx, app.ID).Return([]registryDomain.CredentialSlot{}, nil)

		auth := NewSecretJWTAuthenticator(apps, creds, nil, testVerifier(), 2, discardLogger())
		_, err := auth.Authenticate(ctx, bearerRequest("acme", signHS256(t, "acme", key1)))

		assert.ErrorIs(t, err, clientAuthDomain.ErrInvalidClient)
	})

	t.Run("NotApplicable_OtherMethod", func(t *testing.T) {
		apps := &mockApplicationReader{}
		apps.On("GetApplicationByClientID", ctx, "acme").
			Return(testApplication(directoryDomain.AuthMethodPrivateKeyJWT), nil)

		auth := NewSecretJWTAuthenticator(apps, &mockCredentialSource{}, nil, testVerifier(), 2, discardLogger())
		_, err := auth.Authenticate(ctx, bearerRequest("acme", signHS256(t, "acme", key1)))

		assert.ErrorIs(t, err, clientAuthDomain.ErrNotApplicable)
	})

	t.Run("NotApplicable_WrongAssertionType", func(t *testing.T) {
		auth := NewSecretJWTAuthenticator(
			&mockApplicationReader{}, &mockCredentialSource{}, nil, testVerifier(), 2, discardLogger(),
		)
		req := bearerRequest("acme", signHS256(t, "acme", key1))
		req.AssertionType = "urn:example:other"

		_, err := auth.Authenticate(ctx, req)
		assert.ErrorIs(t, err, clientAuthDomain.ErrNotApplicable)
	})

	t.Run("Error_UnknownClient", func(t *testing.T) {
		apps := &mockApplicationReader{}
		apps.On("GetApplicationByClientID", ctx, "acme").Return(nil, directoryDomain.ErrApplicationNotFound)

		auth := NewSecretJWTAuthenticator(apps, &mockCredentialSource{}, nil, testVerifier(), 2, discardLogger())
		_, err := auth.Authenticate(ctx, bearerRequest("acme", signHS256(t, "acme", key1)))

		assert.ErrorIs(t, err, clientAuthDomain.ErrInvalidClient)
	})

	t.Run("Error_ClientIDMismatch", func(t *testing.T) {
		auth := NewSecretJWTAuthenticator(
			&mockApplicationReader{}, &mockCredentialSource{}, nil, testVerifier(), 2, discardLogger(),
		)
		_, err := auth.Authenticate(ctx, bearerRequest("other", signHS256(t, "acme", key1)))

		assert.ErrorIs(t, err, clientAuthDomain.ErrInvalidClient)
	})

	t.Run("Error_SlotLookupFails", func(t *testing.T) {
		app := testApplication(directoryDomain.AuthMethodClientSecretJWT)
		dbErr := errors.New("connection refused")

		apps := &mockApplicationReader{}
		creds := &mockCredentialSource{}
		apps.On("GetApplicationByClientID", ctx, "acme").Return(app, nil)
		creds.On("ActiveSlots", ctx, app.ID).Return(nil, dbErr)

		auth := NewSecretJWTAuthenticator(apps, creds, nil, testVerifier(), 2, discardLogger())
		_, err := auth.Authenticate(ctx, bearerRequest("acme", signHS256(t, "acme", key1)))

		assert.ErrorIs(t, err, dbErr)
	})
}
