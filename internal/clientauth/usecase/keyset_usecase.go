package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"

	clientAuthService "github.com/allisson/idcore/internal/clientauth/service"
	apperrors "github.com/allisson/idcore/internal/errors"
)

type keySetUseCase struct {
	apps         ApplicationReader
	credentials  CredentialSource
	certificates CertificateSource
	logger       *slog.Logger
}

// NewKeySetUseCase creates a KeySetUseCase.
func NewKeySetUseCase(
	apps ApplicationReader,
	credentials CredentialSource,
	certificates CertificateSource,
	logger *slog.Logger,
) KeySetUseCase {
	return &keySetUseCase{
		apps:         apps,
		credentials:  credentials,
		certificates: certificates,
		logger:       logger,
	}
}

func (k *keySetUseCase) PublishedKeys(ctx context.Context, clientID string) (jwk.Set, error) {
	app, err := k.apps.GetApplicationByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	slots, err := k.credentials.ActiveSlots(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	set := jwk.NewSet()
	for _, slot := range slots {
		if slot.CertificateID == nil {
			continue
		}
		material, err := k.certificates.LoadMaterial(ctx, *slot.CertificateID)
		if err != nil {
			return nil, err
		}
		if !material.Certificate.IsUsable(now) {
			continue
		}
		key, err := clientAuthService.CertificateJWK(material.Leaf())
		if err != nil {
			return nil, err
		}
		if err := set.AddKey(key); err != nil {
			return nil, apperrors.Wrap(err, "failed to add key to set")
		}
	}

	k.logger.DebugContext(ctx, "published client keys",
		slog.String("client_id", clientID),
		slog.Int("keys", set.Len()),
	)
	return set, nil
}
