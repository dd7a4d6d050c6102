package usecase

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	"github.com/allisson/idcore/internal/cache"
	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	cryptoUseCase "github.com/allisson/idcore/internal/crypto/usecase"
	"github.com/allisson/idcore/internal/database"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
	registryService "github.com/allisson/idcore/internal/registry/service"
	customValidation "github.com/allisson/idcore/internal/validation"
)

type credentialUseCase struct {
	txManager  database.TxManager
	credRepo   CredentialRepository
	secretRepo SecretRepository
	certRepo   CertificateRepository
	directory  DirectoryReader
	envelope   cryptoUseCase.EnvelopeStore
	generator  registryService.SecretGenerator
	cache      cache.Cache
	audit      AuditRecorder
	logger     *slog.Logger
	maxActive  int
	slotsTTL   time.Duration
}

// NewCredentialUseCase creates a CredentialUseCase. maxActive caps how many
// credentials of one application may be active at once; slotsTTL bounds how
// long ActiveSlots results stay cached.
func NewCredentialUseCase(
	txManager database.TxManager,
	credRepo CredentialRepository,
	secretRepo SecretRepository,
	certRepo CertificateRepository,
	directory DirectoryReader,
	envelope cryptoUseCase.EnvelopeStore,
	generator registryService.SecretGenerator,
	lookupCache cache.Cache,
	audit AuditRecorder,
	logger *slog.Logger,
	maxActive int,
	slotsTTL time.Duration,
) CredentialUseCase {
	if maxActive < 1 {
		maxActive = 1
	}
	return &credentialUseCase{
		txManager:  txManager,
		credRepo:   credRepo,
		secretRepo: secretRepo,
		certRepo:   certRepo,
		directory:  directory,
		envelope:   envelope,
		generator:  generator,
		cache:      lookupCache,
		audit:      audit,
		logger:     logger,
		maxActive:  maxActive,
		slotsTTL:   slotsTTL,
	}
}

func validateCredentialName(name *string) *validation.FieldRules {
	return validation.Field(name, validation.Required, customValidation.Identifier)
}

func (c *credentialUseCase) CreateSecret(
	ctx context.Context,
	input *registryDomain.CreateSecretCredentialInput,
) (*registryDomain.CreateSecretCredentialOutput, error) {
	err := validation.ValidateStruct(input,
		validation.Field(&input.ApplicationID, customValidation.NotNilUUID),
		validateCredentialName(&input.Name),
	)
	if err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	app, err := c.directory.GetApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app.AuthMethod != directoryDomain.AuthMethodClientSecretJWT {
		return nil, registryDomain.ErrCredentialMethodInvalid
	}

	plainSecret, err := c.generator.Generate()
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plainSecret)

	now := time.Now().UTC()
	secret := &registryDomain.Secret{
		ID:            uuid.Must(uuid.NewV7()),
		ApplicationID: app.ID,
		Fingerprint:   registryService.SecretFingerprint(plainSecret),
		CreatedAt:     now,
	}
	cred := &registryDomain.Credential{
		ID:            uuid.Must(uuid.NewV7()),
		ApplicationID: app.ID,
		Name:          input.Name,
		AuthMethod:    directoryDomain.AuthMethodClientSecretJWT,
		Status:        registryDomain.CredentialActive,
		SecretID:      &secret.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := c.checkCreate(txCtx, cred); err != nil {
			return err
		}

		payload := &cryptoDomain.Payload{
			Kind:   cryptoDomain.PayloadSecret,
			Secret: append([]byte(nil), plainSecret...),
		}
		defer payload.Zero()

		keyMaterialID, err := c.envelope.Store(txCtx, payload)
		if err != nil {
			return err
		}
		secret.KeyMaterialID = keyMaterialID

		if err := c.secretRepo.Create(txCtx, secret); err != nil {
			return err
		}
		return c.persistCreated(txCtx, cred)
	})
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "secret credential created",
		slog.String("credential_id", cred.ID.String()),
		slog.String("application_id", cred.ApplicationID.String()),
		slog.String("secret_fingerprint", secret.Fingerprint),
	)

	output := &registryDomain.CreateSecretCredentialOutput{
		Credential:  cred,
		PlainSecret: string(plainSecret),
	}
	return output, invalidateSlots(ctx, c.cache, cred.ApplicationID)
}

func (c *credentialUseCase) CreatePrivateKey(
	ctx context.Context,
	input *registryDomain.CreatePrivateKeyCredentialInput,
) (*registryDomain.Credential, error) {
	err := validation.ValidateStruct(input,
		validation.Field(&input.ApplicationID, customValidation.NotNilUUID),
		validation.Field(&input.CertificateID, customValidation.NotNilUUID),
		validateCredentialName(&input.Name),
	)
	if err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	app, err := c.directory.GetApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app.AuthMethod != directoryDomain.AuthMethodPrivateKeyJWT {
		return nil, registryDomain.ErrCredentialMethodInvalid
	}

	now := time.Now().UTC()
	var cred *registryDomain.Credential

	err = c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		cert, err := c.certRepo.Get(txCtx, input.CertificateID)
		if err != nil {
			return err
		}
		if cert.OrganizationID != app.OrganizationID {
			return registryDomain.ErrCertificateNotFound
		}
		if cert.Type != registryDomain.CertificatePublicKey {
			return registryDomain.ErrCertificateWrongType
		}
		if !cert.IsUsable(now) {
			return registryDomain.ErrCertificateNotActive
		}

		expiresAt := cert.NotAfter
		cred = &registryDomain.Credential{
			ID:            uuid.Must(uuid.NewV7()),
			ApplicationID: app.ID,
			Name:          input.Name,
			AuthMethod:    directoryDomain.AuthMethodPrivateKeyJWT,
			Status:        registryDomain.CredentialActive,
			ExpiresAt:     &expiresAt,
			CertificateID: &cert.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := c.checkCreate(txCtx, cred); err != nil {
			return err
		}
		return c.persistCreated(txCtx, cred)
	})
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "private key credential created",
		slog.String("credential_id", cred.ID.String()),
		slog.String("application_id", cred.ApplicationID.String()),
		slog.String("certificate_id", input.CertificateID.String()),
	)
	return cred, invalidateSlots(ctx, c.cache, cred.ApplicationID)
}

// persistCreated inserts a credential checked by checkCreate, audits it and
// invalidates the application's slots before the transaction commits.
func (c *credentialUseCase) persistCreated(ctx context.Context, cred *registryDomain.Credential) error {
	if err := c.credRepo.Create(ctx, cred); err != nil {
		return err
	}
	event := statusEvent(auditDomain.EventCredentialStatus, cred.ID, string(cred.Status), "create")
	if err := c.audit.Record(ctx, event); err != nil {
		return err
	}
	return invalidateSlots(ctx, c.cache, cred.ApplicationID)
}

// checkCreate enforces the live credential cap and the activation rules for
// a credential about to be created active. It locks the application first so
// concurrent creators count each other's rows.
func (c *credentialUseCase) checkCreate(ctx context.Context, cred *registryDomain.Credential) error {
	if err := c.credRepo.LockApplication(ctx, cred.ApplicationID); err != nil {
		return err
	}
	existing, err := c.credRepo.ListByApplication(ctx, cred.ApplicationID)
	if err != nil {
		return err
	}

	live := 0
	for _, other := range existing {
		if other.Status.IsLive() {
			live++
		}
	}
	if live >= registryDomain.MaxLiveCredentials {
		return registryDomain.ErrCredentialLimitReached
	}
	return c.checkActivation(existing, cred)
}

// checkActivation rejects activating cred when another live credential of
// the application already uses its name or the active cap is reached.
func (c *credentialUseCase) checkActivation(
	existing []*registryDomain.Credential,
	cred *registryDomain.Credential,
) error {
	active := 0
	for _, other := range existing {
		if other.ID == cred.ID || !other.Status.IsLive() {
			continue
		}
		if other.Name == cred.Name {
			return registryDomain.ErrCredentialNameConflict
		}
		if other.Status == registryDomain.CredentialActive {
			active++
		}
	}
	if active >= c.maxActive {
		return registryDomain.ErrActiveCredentialLimit
	}
	return nil
}

func (c *credentialUseCase) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status registryDomain.CredentialStatus,
) error {
	if _, err := registryDomain.ParseCredentialStatus(string(status)); err != nil {
		return err
	}

	var applicationID uuid.UUID
	changed := false
	err := c.txManager.WithTx(ctx, func(txCtx context.Context) error {
		cred, err := c.lockedCredential(txCtx, id)
		if err != nil {
			return err
		}
		applicationID = cred.ApplicationID

		if cred.Status == status {
			return nil
		}
		if !cred.Status.CanTransition(status) {
			return registryDomain.ErrInvalidTransition
		}

		if status == registryDomain.CredentialActive {
			existing, err := c.credRepo.ListByApplication(txCtx, cred.ApplicationID)
			if err != nil {
				return err
			}
			if err := c.checkActivation(existing, cred); err != nil {
				return err
			}
			if cred.CertificateID != nil {
				cert, err := c.certRepo.Get(txCtx, *cred.CertificateID)
				if err != nil {
					return err
				}
				if !cert.IsUsable(time.Now().UTC()) {
					return registryDomain.ErrCertificateNotActive
				}
			}
		}

		if err := c.credRepo.UpdateStatus(txCtx, id, status, time.Now().UTC()); err != nil {
			return err
		}
		changed = true

		event := statusEvent(auditDomain.EventCredentialStatus, id, string(status), "update")
		event.Metadata["previous_status"] = string(cred.Status)
		if err := c.audit.Record(txCtx, event); err != nil {
			return err
		}
		return invalidateSlots(txCtx, c.cache, applicationID)
	})
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	c.logger.InfoContext(ctx, "credential status changed",
		slog.String("credential_id", id.String()),
		slog.String("application_id", applicationID.String()),
		slog.String("status", string(status)),
	)
	return invalidateSlots(ctx, c.cache, applicationID)
}

// lockedCredential reads a credential, locks its application and reads it
// again so the status it returns cannot change before the transaction ends.
func (c *credentialUseCase) lockedCredential(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error) {
	cred, err := c.credRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.credRepo.LockApplication(ctx, cred.ApplicationID); err != nil {
		return nil, err
	}
	return c.credRepo.Get(ctx, id)
}

func (c *credentialUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return c.UpdateStatus(ctx, id, registryDomain.CredentialInactive)
}

func (c *credentialUseCase) Get(ctx context.Context, id uuid.UUID) (*registryDomain.Credential, error) {
	return c.credRepo.Get(ctx, id)
}

func (c *credentialUseCase) ListByApplication(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]*registryDomain.Credential, error) {
	return c.credRepo.ListByApplication(ctx, applicationID)
}

func (c *credentialUseCase) ActiveSlots(
	ctx context.Context,
	applicationID uuid.UUID,
) ([]registryDomain.CredentialSlot, error) {
	generationKey := registryDomain.SlotsGenerationKey(applicationID)
	now := time.Now().UTC()

	// The generation is read before the rows. A writer that commits after
	// this point also bumps it, which keeps the write-back below from ever
	// being served.
	generation, err := c.cache.Counter(ctx, generationKey)
	cacheable := err == nil
	if err != nil {
		c.logger.WarnContext(ctx, "credential slot generation read failed", slog.Any("error", err))
	}

	var slots []registryDomain.CredentialSlot
	if cacheable {
		found, err := c.cache.Get(ctx, registryDomain.SlotsCacheKey(applicationID, generation), &slots)
		if err != nil {
			c.logger.WarnContext(ctx, "credential slot cache read failed", slog.Any("error", err))
		}
		if found {
			return unexpiredSlots(slots, now), nil
		}
	}

	creds, err := c.credRepo.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	slots = make([]registryDomain.CredentialSlot, 0, len(creds))
	for _, cred := range creds {
		if cred.Status != registryDomain.CredentialActive {
			continue
		}
		if cred.CertificateID != nil {
			cert, err := c.certRepo.Get(ctx, *cred.CertificateID)
			if err != nil {
				return nil, err
			}
			if cert.Status != registryDomain.CertificateActive {
				continue
			}
		}
		slots = append(slots, registryDomain.CredentialSlot{
			Slot:          len(slots) + 1,
			CredentialID:  cred.ID,
			Name:          cred.Name,
			AuthMethod:    cred.AuthMethod,
			SecretID:      cred.SecretID,
			CertificateID: cred.CertificateID,
			ExpiresAt:     cred.ExpiresAt,
		})
	}

	if cacheable {
		c.storeSlots(ctx, applicationID, generation, slots)
	}
	return unexpiredSlots(slots, now), nil
}

// storeSlots caches slots computed under generation unless a writer moved
// the application on while they were being read.
func (c *credentialUseCase) storeSlots(
	ctx context.Context,
	applicationID uuid.UUID,
	generation int64,
	slots []registryDomain.CredentialSlot,
) {
	current, err := c.cache.Counter(ctx, registryDomain.SlotsGenerationKey(applicationID))
	if err != nil || current != generation {
		return
	}
	key := registryDomain.SlotsCacheKey(applicationID, generation)
	if err := c.cache.Set(ctx, key, slots, c.slotsTTL); err != nil {
		c.logger.WarnContext(ctx, "credential slot cache write failed", slog.Any("error", err))
	}
}

// unexpiredSlots drops slots past their expiry without renumbering, so a
// slot index keeps naming the same credential in audit logs.
func unexpiredSlots(slots []registryDomain.CredentialSlot, now time.Time) []registryDomain.CredentialSlot {
	result := make([]registryDomain.CredentialSlot, 0, len(slots))
	for _, slot := range slots {
		if slot.ExpiresAt != nil && !now.Before(*slot.ExpiresAt) {
			continue
		}
		result = append(result, slot)
	}
	return result
}

func (c *credentialUseCase) LoadSecret(ctx context.Context, secretID uuid.UUID) ([]byte, error) {
	secret, err := c.secretRepo.Get(ctx, secretID)
	if err != nil {
		return nil, err
	}

	payload, err := c.envelope.Load(ctx, secret.KeyMaterialID)
	if err != nil {
		return nil, err
	}
	defer payload.Zero()

	if payload.Kind != cryptoDomain.PayloadSecret {
		return nil, cryptoDomain.ErrCorruptContainer
	}
	fingerprint := registryService.SecretFingerprint(payload.Secret)
	if subtle.ConstantTimeCompare([]byte(fingerprint), []byte(secret.Fingerprint)) != 1 {
		return nil, cryptoDomain.ErrCorruptContainer
	}
	return append([]byte(nil), payload.Secret...), nil
}
