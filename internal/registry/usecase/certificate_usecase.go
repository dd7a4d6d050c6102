package usecase

import (
	"context"
	"crypto"
	"crypto/x509"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	"github.com/allisson/idcore/internal/cache"
	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/idcore/internal/crypto/usecase"
	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
	registryService "github.com/allisson/idcore/internal/registry/service"
	customValidation "github.com/allisson/idcore/internal/validation"
)

type certificateUseCase struct {
	txManager database.TxManager
	certRepo  CertificateRepository
	credRepo  CredentialRepository
	directory DirectoryReader
	envelope  cryptoUseCase.EnvelopeStore
	parser    registryService.CertificateParser
	cache     cache.Cache
	audit     AuditRecorder
	logger    *slog.Logger
}

// NewCertificateUseCase creates a CertificateUseCase.
func NewCertificateUseCase(
	txManager database.TxManager,
	certRepo CertificateRepository,
	credRepo CredentialRepository,
	directory DirectoryReader,
	envelope cryptoUseCase.EnvelopeStore,
	parser registryService.CertificateParser,
	lookupCache cache.Cache,
	audit AuditRecorder,
	logger *slog.Logger,
) CertificateUseCase {
	return &certificateUseCase{
		txManager: txManager,
		certRepo:  certRepo,
		credRepo:  credRepo,
		directory: directory,
		envelope:  envelope,
		parser:    parser,
		cache:     lookupCache,
		audit:     audit,
		logger:    logger,
	}
}

func validateCreateCertificateInput(input *registryDomain.CreateCertificateInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.OrganizationID, customValidation.NotNilUUID),
		validation.Field(&input.Type,
			validation.Required,
			validation.In(registryDomain.CertificateOrganizationSigning, registryDomain.CertificatePublicKey),
		),
		validation.Field(&input.Data, validation.Required),
	)
	return customValidation.WrapValidationError(err)
}

func (c *certificateUseCase) Create(
	ctx context.Context,
	input *registryDomain.CreateCertificateInput,
) (*registryDomain.Certificate, error) {
	if err := validateCreateCertificateInput(input); err != nil {
		return nil, err
	}

	if _, err := c.directory.GetOrganization(ctx, input.OrganizationID); err != nil {
		return nil, err
	}

	bundle, err := c.parser.Parse(input.Data, input.Password, input.Type)
	if err != nil {
		return nil, err
	}

	leaf := bundle.Leaf()
	now := time.Now().UTC()
	if now.Before(leaf.NotBefore) || !now.Before(leaf.NotAfter) {
		return nil, registryDomain.ErrCertificateExpired
	}

	fingerprint := registryService.Fingerprint(leaf)
	if _, err := c.certRepo.GetByFingerprint(ctx, fingerprint); err == nil {
		return nil, registryDomain.ErrCertificateDuplicate
	} else if !errors.Is(err, registryDomain.ErrCertificateNotFound) {
		return nil, err
	}

	payload, err := certificatePayload(bundle)
	if err != nil {
		return nil, err
	}
	defer payload.Zero()

	cert := &registryDomain.Certificate{
		ID:             uuid.Must(uuid.NewV7()),
		OrganizationID: input.OrganizationID,
		Type:           input.Type,
		Status:         registryDomain.CertificateActive,
		Subject:        leaf.Subject.String(),
		Fingerprint:    fingerprint,
		NotBefore:      leaf.NotBefore.UTC(),
		NotAfter:       leaf.NotAfter.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		keyMaterialID, err := c.envelope.Store(txCtx, payload)
		if err != nil {
			return err
		}
		cert.KeyMaterialID = keyMaterialID
		if err := c.certRepo.Create(txCtx, cert); err != nil {
			return err
		}
		event := statusEvent(auditDomain.EventCertificateStatus, cert.ID, string(cert.Status), "create")
		return c.audit.Record(txCtx, event)
	})
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "certificate created",
		slog.String("certificate_id", cert.ID.String()),
		slog.String("organization_id", cert.OrganizationID.String()),
		slog.String("type", string(cert.Type)),
		slog.String("fingerprint", cert.Fingerprint),
	)
	return cert, nil
}

func certificatePayload(bundle *registryService.ParsedBundle) (*cryptoDomain.Payload, error) {
	payload := &cryptoDomain.Payload{Kind: cryptoDomain.PayloadCertificate}
	for _, cert := range bundle.Certificates {
		payload.Certificates = append(payload.Certificates, cert.Raw)
	}
	if bundle.PrivateKey != nil {
		der, err := registryService.MarshalPrivateKey(bundle.PrivateKey)
		if err != nil {
			return nil, err
		}
		payload.Kind = cryptoDomain.PayloadKeyPair
		payload.PrivateKey = der
	}
	return payload, nil
}

func (c *certificateUseCase) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Certificate, error) {
	return c.certRepo.Get(ctx, id)
}

func (c *certificateUseCase) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CertificateStatus,
) error {
	if _, err := registryDomain.ParseCertificateStatus(string(status)); err != nil {
		return err
	}

	var applicationIDs []uuid.UUID
	changed := false
	err := c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		cert, err := c.certRepo.Get(txCtx, id)
		if err != nil {
			return err
		}
		if cert.Status == status {
			return nil
		}
		if !cert.Status.CanTransition(status) {
			return registryDomain.ErrInvalidTransition
		}
		if err := c.certRepo.UpdateStatus(txCtx, id, status, time.Now().UTC()); err != nil {
			return err
		}

		creds, err := c.credRepo.ListByCertificate(txCtx, id)
		if err != nil {
			return err
		}
		applicationIDs = uniqueApplicationIDs(creds)
		changed = true

		event := statusEvent(auditDomain.EventCertificateStatus, id, string(status), "update")
		event.Metadata["previous_status"] = string(cert.Status)
		if err := c.audit.Record(txCtx, event); err != nil {
			return err
		}
		return invalidateSlots(txCtx, c.cache, applicationIDs...)
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	c.logger.InfoContext(ctx, "certificate status changed",
		slog.String("certificate_id", id.String()),
		slog.String("status", string(status)),
		slog.Int("affected_applications", len(applicationIDs)),
	)
	return invalidateSlots(ctx, c.cache, applicationIDs...)
}

func (c *certificateUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return c.UpdateStatus(ctx, id, registryDomain.CertificateInactive)
}

func (c *certificateUseCase) LoadMaterial(
	ctx context.Context,
	id uuid.UUID,
) (*registryDomain.CertificateMaterial, error) {
	cert, err := c.certRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := c.envelope.Load(ctx, cert.KeyMaterialID)
	if err != nil {
		return nil, err
	}
	defer payload.Zero()

	material := &registryDomain.CertificateMaterial{Certificate: cert}
	for _, der := range payload.Certificates {
		parsed, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, apperrors.Wrap(cryptoDomain.ErrCorruptContainer, "stored certificate is unreadable")
		}
		material.Chain = append(material.Chain, parsed)
	}
	if len(material.Chain) == 0 {
		return nil, cryptoDomain.ErrCorruptContainer
	}

	if len(payload.PrivateKey) > 0 {
		key, err := x509.ParsePKCS8PrivateKey(payload.PrivateKey)
		if err != nil {
			return nil, apperrors.Wrap(cryptoDomain.ErrCorruptContainer, "stored private key is unreadable")
		}
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, registryDomain.ErrUnsupportedKeyType
		}
		material.PrivateKey = signer
	}
	return material, nil
}

func uniqueApplicationIDs(creds []*registryDomain.Credential) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(creds))
	ids := make([]uuid.UUID, 0, len(creds))
	for _, cred := range creds {
		if _, ok := seen[cred.ApplicationID]; ok {
			continue
		}
		seen[cred.ApplicationID] = struct{}{}
		ids = append(ids, cred.ApplicationID)
	}
	return ids
}

// invalidateSlots moves each application to a new credential slot
// generation. Writers call it before commit, so an unreachable cache aborts
// the write, and again after commit, so slots a reader computed from
// pre-commit rows in between land under a generation nobody reads. A failure
// after commit is returned; the row change stands and the entry TTL bounds
// how long the previous generation can be served.
func invalidateSlots(ctx context.Context, lookupCache cache.Cache, applicationIDs ...uuid.UUID) error {
	if len(applicationIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(applicationIDs))
	for _, id := range applicationIDs {
		keys = append(keys, registryDomain.SlotsGenerationKey(id))
	}
	if err := lookupCache.Incr(ctx, keys...); err != nil {
		return apperrors.Wrap(err, "failed to invalidate credential slots")
	}
	return nil
}

// statusEvent builds the audit event for a certificate or credential
// lifecycle write.
func statusEvent(kind auditDomain.EventKind, targetID uuid.UUID, status, action string) *auditDomain.Event {
	event := auditDomain.NewEvent(kind, auditDomain.OutcomeSuccess)
	event.TargetID = targetID.String()
	event.Metadata = map[string]string{"status": status, "action": action}
	return event
}
