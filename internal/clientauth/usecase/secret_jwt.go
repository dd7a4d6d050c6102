package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	clientAuthService "github.com/allisson/idcore/internal/clientauth/service"
	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	apperrors "github.com/allisson/idcore/internal/errors"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
)

type secretJWTAuthenticator struct {
	apps        ApplicationReader
	credentials CredentialSource
	remoteKeys  clientAuthService.RemoteKeySet
	verifier    *clientAuthService.AssertionVerifier
	maxActive   int
	logger      *slog.Logger
}

// NewSecretJWTAuthenticator creates the client_secret_jwt strategy. It tries
// the application's active credential slots in order, at most maxActive of
// them, and accepts the first one that verifies the assertion.
func NewSecretJWTAuthenticator(
	apps ApplicationReader,
	credentials CredentialSource,
	remoteKeys clientAuthService.RemoteKeySet,
	verifier *clientAuthService.AssertionVerifier,
	maxActive int,
	logger *slog.Logger,
) Authenticator {
	if maxActive < 1 {
		maxActive = 1
	}
	return &secretJWTAuthenticator{
		apps:        apps,
		credentials: credentials,
		remoteKeys:  remoteKeys,
		verifier:    verifier,
		maxActive:   maxActive,
		logger:      logger,
	}
}

func (a *secretJWTAuthenticator) Authenticate(
	ctx context.Context,
	req *clientAuthDomain.Request,
) (*clientAuthDomain.Client, error) {
	app, clientID, err := resolveApplication(ctx, a.apps, req, directoryDomain.AuthMethodClientSecretJWT)
	if err != nil {
		return nil, err
	}

	slots, err := a.credentials.ActiveSlots(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	tried := 0
	for _, slot := range slots {
		if tried >= a.maxActive {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tried++

		keyID, err := a.verifySlot(ctx, app, clientID, req.Assertion, slot)
		if err != nil {
			a.logger.DebugContext(ctx, "credential slot rejected assertion",
				slog.String("client_id", clientID),
				slog.Int("slot", slot.Slot),
				slog.String("credential_id", slot.CredentialID.String()),
				slog.Any("error", err),
			)
			continue
		}

		a.logger.InfoContext(ctx, "client authenticated",
			slog.String("client_id", clientID),
			slog.String("method", string(app.AuthMethod)),
			slog.Int("slot", slot.Slot),
			slog.String("credential_id", slot.CredentialID.String()),
		)
		return &clientAuthDomain.Client{
			ClientID:       clientID,
			ApplicationID:  app.ID,
			OrganizationID: app.OrganizationID,
			Method:         app.AuthMethod,
			Slot:           slot.Slot,
			CredentialID:   slot.CredentialID,
			KeyID:          keyID,
		}, nil
	}

	a.logger.WarnContext(ctx, "client assertion rejected by every credential slot",
		slog.String("client_id", clientID),
		slog.Int("slots_tried", tried),
	)
	return nil, clientAuthDomain.ErrInvalidClient
}

// verifySlot checks the assertion against one credential slot. Secret slots
// verify with the decrypted HMAC key; other slots fall back to the
// application's published key set.
func (a *secretJWTAuthenticator) verifySlot(
	ctx context.Context,
	app *directoryDomain.Application,
	clientID string,
	assertion string,
	slot registryDomain.CredentialSlot,
) (string, error) {
	if slot.SecretID != nil {
		secret, err := a.credentials.LoadSecret(ctx, *slot.SecretID)
		if err != nil {
			return "", err
		}
		defer cryptoDomain.Zero(secret)

		_, err = a.verifier.Verify(assertion, clientID, secret, clientAuthService.HMACMethods)
		return "", err
	}

	if app.JWKSURL == "" || a.remoteKeys == nil {
		return "", apperrors.Wrap(clientAuthDomain.ErrInvalidClient, "slot has no verification key")
	}
	set, err := a.remoteKeys.Fetch(ctx, app.JWKSURL)
	if err != nil {
		return "", err
	}
	for _, candidate := range remoteCandidates(set, 0, uuid.Nil) {
		if _, err := a.verifier.Verify(assertion, clientID, candidate.key, candidate.methods); err == nil {
			return candidate.keyID, nil
		}
	}
	return "", clientAuthDomain.ErrInvalidClient
}
