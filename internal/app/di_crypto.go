package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	cryptoMySQL "github.com/allisson/idcore/internal/crypto/repository/mysql"
	cryptoPostgreSQL "github.com/allisson/idcore/internal/crypto/repository/postgresql"
	cryptoService "github.com/allisson/idcore/internal/crypto/service"
	cryptoUseCase "github.com/allisson/idcore/internal/crypto/usecase"
)

// KMSService returns the KMS service.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// MasterPassword returns the process master password, decrypted through the
// KMS when KMS_KEY_URI is set.
func (c *Container) MasterPassword() (*cryptoDomain.MasterPassword, error) {
	var err error
	c.masterPasswordInit.Do(func() {
		c.masterPassword, err = c.initMasterPassword()
		if err != nil {
			c.initErrors["masterPassword"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterPassword"]; exists {
		return nil, storedErr
	}
	return c.masterPassword, nil
}

// Envelope returns the two-container envelope cipher.
func (c *Container) Envelope() (cryptoService.Envelope, error) {
	var err error
	c.envelopeInit.Do(func() {
		c.envelope, err = c.initEnvelope()
		if err != nil {
			c.initErrors["envelope"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelope"]; exists {
		return nil, storedErr
	}
	return c.envelope, nil
}

// KeyMaterialRepository returns the key material repository based on database driver.
func (c *Container) KeyMaterialRepository() (cryptoUseCase.KeyMaterialRepository, error) {
	var err error
	c.keyMaterialRepositoryInit.Do(func() {
		c.keyMaterialRepository, err = c.initKeyMaterialRepository()
		if err != nil {
			c.initErrors["keyMaterialRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyMaterialRepository"]; exists {
		return nil, storedErr
	}
	return c.keyMaterialRepository, nil
}

// EnvelopeStore returns the envelope store.
func (c *Container) EnvelopeStore() (cryptoUseCase.EnvelopeStore, error) {
	var err error
	c.envelopeStoreInit.Do(func() {
		c.envelopeStore, err = c.initEnvelopeStore()
		if err != nil {
			c.initErrors["envelopeStore"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["envelopeStore"]; exists {
		return nil, storedErr
	}
	return c.envelopeStore, nil
}

// MasterPasswordUseCase returns the master password rotation use case.
func (c *Container) MasterPasswordUseCase() (cryptoUseCase.MasterPasswordUseCase, error) {
	var err error
	c.masterPasswordUseCaseInit.Do(func() {
		c.masterPasswordUseCase, err = c.initMasterPasswordUseCase()
		if err != nil {
			c.initErrors["masterPasswordUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["masterPasswordUseCase"]; exists {
		return nil, storedErr
	}
	return c.masterPasswordUseCase, nil
}

// initMasterPassword loads the master password with fail-fast validation.
func (c *Container) initMasterPassword() (*cryptoDomain.MasterPassword, error) {
	masterPassword, err := cryptoService.LoadMasterPassword(
		context.Background(),
		c.KMSService(),
		c.config.KMSKeyURI,
		c.config.MasterPasswordCiphertext,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load master password: %w", err)
	}
	return masterPassword, nil
}

// initEnvelope creates the envelope cipher from the configured algorithm.
func (c *Container) initEnvelope() (cryptoService.Envelope, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.EnvelopeAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid envelope algorithm: %w", err)
	}
	envelope, err := cryptoService.NewEnvelope(alg, c.config.EnvelopeScryptWorkFactor)
	if err != nil {
		return nil, fmt.Errorf("failed to create envelope: %w", err)
	}
	return envelope, nil
}

// initKeyMaterialRepository creates the key material repository based on the database driver.
func (c *Container) initKeyMaterialRepository() (cryptoUseCase.KeyMaterialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for key material repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return cryptoPostgreSQL.NewPostgreSQLKeyMaterialRepository(db), nil
	case "mysql":
		return cryptoMySQL.NewMySQLKeyMaterialRepository(db), nil
	default:
		return nil, c.unsupportedDriver()
	}
}

// initEnvelopeStore creates the envelope store bound to the process master password.
func (c *Container) initEnvelopeStore() (cryptoUseCase.EnvelopeStore, error) {
	envelope, err := c.Envelope()
	if err != nil {
		return nil, err
	}

	repo, err := c.KeyMaterialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key material repository for envelope store: %w", err)
	}

	masterPassword, err := c.MasterPassword()
	if err != nil {
		return nil, err
	}

	baseStore := cryptoUseCase.NewEnvelopeStore(envelope, repo, masterPassword)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for envelope store: %w", err)
		}
		return cryptoUseCase.NewEnvelopeStoreWithMetrics(baseStore, businessMetrics), nil
	}
	return baseStore, nil
}

// initMasterPasswordUseCase creates the rotation use case. It does not need
// the process master password; rotation receives both passwords explicitly.
func (c *Container) initMasterPasswordUseCase() (cryptoUseCase.MasterPasswordUseCase, error) {
	envelope, err := c.Envelope()
	if err != nil {
		return nil, err
	}

	repo, err := c.KeyMaterialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get key material repository for rotation: %w", err)
	}

	return cryptoUseCase.NewMasterPasswordUseCase(
		envelope,
		repo,
		c.Logger(),
		c.config.RotationBatchSize,
		c.config.RotationConcurrency,
	), nil
}
