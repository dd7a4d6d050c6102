package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwk"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	clientAuthService "github.com/allisson/idcore/internal/clientauth/service"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
)

// verificationKey is one public key a private_key_jwt assertion may be signed with.
type verificationKey struct {
	keyID        string
	key          any
	methods      []string
	slot         int
	credentialID uuid.UUID
}

type privateKeyJWTAuthenticator struct {
	apps         ApplicationReader
	credentials  CredentialSource
	certificates CertificateSource
	remoteKeys   clientAuthService.RemoteKeySet
	verifier     *clientAuthService.AssertionVerifier
	logger       *slog.Logger
}

// NewPrivateKeyJWTAuthenticator creates the private_key_jwt strategy. Every
// key published for the client is a candidate; the first that verifies wins.
func NewPrivateKeyJWTAuthenticator(
	apps ApplicationReader,
	credentials CredentialSource,
	certificates CertificateSource,
	remoteKeys clientAuthService.RemoteKeySet,
	verifier *clientAuthService.AssertionVerifier,
	logger *slog.Logger,
) Authenticator {
	return &privateKeyJWTAuthenticator{
		apps:         apps,
		credentials:  credentials,
		certificates: certificates,
		remoteKeys:   remoteKeys,
		verifier:     verifier,
		logger:       logger,
	}
}

func (a *privateKeyJWTAuthenticator) Authenticate(
	ctx context.Context,
	req *clientAuthDomain.Request,
) (*clientAuthDomain.Client, error) {
	app, clientID, err := resolveApplication(ctx, a.apps, req, directoryDomain.AuthMethodPrivateKeyJWT)
	if err != nil {
		return nil, err
	}

	candidates, err := a.candidates(ctx, app)
	if err != nil {
		return nil, err
	}
	candidates = preferKeyID(candidates, clientAuthService.PeekKeyID(req.Assertion))

	for _, candidate := range candidates {
		if _, err := a.verifier.Verify(req.Assertion, clientID, candidate.key, candidate.methods); err != nil {
			continue
		}

		a.logger.InfoContext(ctx, "client authenticated",
			slog.String("client_id", clientID),
			slog.String("method", string(app.AuthMethod)),
			slog.Int("slot", candidate.slot),
			slog.String("key_id", candidate.keyID),
		)
		return &clientAuthDomain.Client{
			ClientID:       clientID,
			ApplicationID:  app.ID,
			OrganizationID: app.OrganizationID,
			Method:         app.AuthMethod,
			Slot:           candidate.slot,
			CredentialID:   candidate.credentialID,
			KeyID:          candidate.keyID,
		}, nil
	}

	a.logger.WarnContext(ctx, "client assertion matched no published key",
		slog.String("client_id", clientID),
		slog.Int("keys_tried", len(candidates)),
	)
	return nil, clientAuthDomain.ErrInvalidClient
}

// candidates collects the public keys of the application's active
// certificate-backed slots, then the keys behind its JWKS URL.
func (a *privateKeyJWTAuthenticator) candidates(
	ctx context.Context,
	app *directoryDomain.Application,
) ([]verificationKey, error) {
	slots, err := a.credentials.ActiveSlots(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var keys []verificationKey
	for _, slot := range slots {
		if slot.CertificateID == nil {
			continue
		}
		material, err := a.certificates.LoadMaterial(ctx, *slot.CertificateID)
		if err != nil {
			a.logger.WarnContext(ctx, "certificate unavailable for client authentication",
				slog.String("client_id", app.ClientID),
				slog.String("certificate_id", slot.CertificateID.String()),
				slog.Any("error", err),
			)
			continue
		}
		if !material.Certificate.IsUsable(now) {
			continue
		}
		leaf := material.Leaf()
		keys = append(keys, verificationKey{
			keyID:        material.Certificate.Fingerprint,
			key:          leaf.PublicKey,
			methods:      clientAuthService.MethodsFor(leaf.PublicKey),
			slot:         slot.Slot,
			credentialID: slot.CredentialID,
		})
	}

	if app.JWKSURL != "" && a.remoteKeys != nil {
		set, err := a.remoteKeys.Fetch(ctx, app.JWKSURL)
		if err != nil {
			a.logger.WarnContext(ctx, "client JWKS unavailable",
				slog.String("client_id", app.ClientID),
				slog.Any("error", err),
			)
		} else {
			keys = append(keys, remoteCandidates(set, 0, uuid.Nil)...)
		}
	}
	return keys, nil
}

// remoteCandidates converts a fetched key set into verification keys,
// skipping keys that cannot sign.
func remoteCandidates(set jwk.Set, slot int, credentialID uuid.UUID) []verificationKey {
	keys := make([]verificationKey, 0, set.Len())
	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		if !ok {
			continue
		}
		raw, err := clientAuthService.ExportPublicKey(key)
		if err != nil {
			continue
		}
		methods := clientAuthService.MethodsFor(raw)
		if len(methods) == 0 {
			continue
		}
		kid, _ := key.KeyID()
		keys = append(keys, verificationKey{
			keyID:        kid,
			key:          raw,
			methods:      methods,
			slot:         slot,
			credentialID: credentialID,
		})
	}
	return keys
}

// preferKeyID narrows candidates to those named by the assertion's kid
// header. Without a kid, or when no candidate carries it, all are kept.
func preferKeyID(candidates []verificationKey, kid string) []verificationKey {
	if kid == "" {
		return candidates
	}
	var matching []verificationKey
	for _, c := range candidates {
		if c.keyID == kid {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		return candidates
	}
	return matching
}
