package app

import (
	"fmt"

	directoryMySQL "github.com/allisson/idcore/internal/directory/repository/mysql"
	directoryPostgreSQL "github.com/allisson/idcore/internal/directory/repository/postgresql"
	directoryUseCase "github.com/allisson/idcore/internal/directory/usecase"
	registryMySQL "github.com/allisson/idcore/internal/registry/repository/mysql"
	registryPostgreSQL "github.com/allisson/idcore/internal/registry/repository/postgresql"
	registryService "github.com/allisson/idcore/internal/registry/service"
	registryUseCase "github.com/allisson/idcore/internal/registry/usecase"
)

// Directory returns the cached directory reader.
func (c *Container) Directory() (*directoryUseCase.Directory, error) {
	var err error
	c.directoryInit.Do(func() {
		c.directory, err = c.initDirectory()
		if err != nil {
			c.initErrors["directory"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["directory"]; exists {
		return nil, storedErr
	}
	return c.directory, nil
}

// CertificateRepository returns the certificate repository based on database driver.
func (c *Container) CertificateRepository() (registryUseCase.CertificateRepository, error) {
	var err error
	c.certificateRepositoryInit.Do(func() {
		c.certificateRepository, err = c.initCertificateRepository()
		if err != nil {
			c.initErrors["certificateRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["certificateRepository"]; exists {
		return nil, storedErr
	}
	return c.certificateRepository, nil
}

// SecretRepository returns the secret repository based on database driver.
func (c *Container) SecretRepository() (registryUseCase.SecretRepository, error) {
	var err error
	c.secretRepositoryInit.Do(func() {
		c.secretRepository, err = c.initSecretRepository()
		if err != nil {
			c.initErrors["secretRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretRepository"]; exists {
		return nil, storedErr
	}
	return c.secretRepository, nil
}

// CredentialRepository returns the credential repository based on database driver.
func (c *Container) CredentialRepository() (registryUseCase.CredentialRepository, error) {
	var err error
	c.credentialRepositoryInit.Do(func() {
		c.credentialRepository, err = c.initCredentialRepository()
		if err != nil {
			c.initErrors["credentialRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepository"]; exists {
		return nil, storedErr
	}
	return c.credentialRepository, nil
}

// CertificateUseCase returns the certificate use case.
func (c *Container) CertificateUseCase() (registryUseCase.CertificateUseCase, error) {
	var err error
	c.certificateUseCaseInit.Do(func() {
		c.certificateUseCase, err = c.initCertificateUseCase()
		if err != nil {
			c.initErrors["certificateUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["certificateUseCase"]; exists {
		return nil, storedErr
	}
	return c.certificateUseCase, nil
}

// CredentialUseCase returns the credential use case.
func (c *Container) CredentialUseCase() (registryUseCase.CredentialUseCase, error) {
	var err error
	c.credentialUseCaseInit.Do(func() {
		c.credentialUseCase, err = c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// initDirectory creates the directory repository for the driver and wraps it with the lookup cache.
func (c *Container) initDirectory() (*directoryUseCase.Directory, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for directory: %w", err)
	}

	lookupCache, err := c.LookupCache()
	if err != nil {
		return nil, err
	}

	var repo directoryUseCase.DirectoryRepository
	switch c.config.DBDriver {
	case "postgres":
		repo = directoryPostgreSQL.NewPostgreSQLDirectoryRepository(db)
	case "mysql":
		repo = directoryMySQL.NewMySQLDirectoryRepository(db)
	default:
		return nil, c.unsupportedDriver()
	}

	return directoryUseCase.NewDirectory(repo, lookupCache, c.config.CacheTTL, c.Logger()), nil
}

// initCertificateRepository creates the certificate repository based on the database driver.
func (c *Container) initCertificateRepository() (registryUseCase.CertificateRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for certificate repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return registryPostgreSQL.NewPostgreSQLCertificateRepository(db), nil
	case "mysql":
		return registryMySQL.NewMySQLCertificateRepository(db), nil
	default:
		return nil, c.unsupportedDriver()
	}
}

// initSecretRepository creates the secret repository based on the database driver.
func (c *Container) initSecretRepository() (registryUseCase.SecretRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for secret repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return registryPostgreSQL.NewPostgreSQLSecretRepository(db), nil
	case "mysql":
		return registryMySQL.NewMySQLSecretRepository(db), nil
	default:
		return nil, c.unsupportedDriver()
	}
}

// initCredentialRepository creates the credential repository based on the database driver.
func (c *Container) initCredentialRepository() (registryUseCase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return registryPostgreSQL.NewPostgreSQLCredentialRepository(db), nil
	case "mysql":
		return registryMySQL.NewMySQLCredentialRepository(db), nil
	default:
		return nil, c.unsupportedDriver()
	}
}

// initCertificateUseCase creates the certificate use case with all its dependencies.
func (c *Container) initCertificateUseCase() (registryUseCase.CertificateUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for certificate use case: %w", err)
	}
	certRepo, err := c.CertificateRepository()
	if err != nil {
		return nil, err
	}
	credRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, err
	}
	directory, err := c.Directory()
	if err != nil {
		return nil, err
	}
	envelopeStore, err := c.EnvelopeStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope store for certificate use case: %w", err)
	}
	lookupCache, err := c.LookupCache()
	if err != nil {
		return nil, err
	}
	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for certificate use case: %w", err)
	}

	baseUseCase := registryUseCase.NewCertificateUseCase(
		txManager,
		certRepo,
		credRepo,
		directory,
		envelopeStore,
		registryService.NewCertificateParser(),
		lookupCache,
		auditUseCase,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for certificate use case: %w", err)
		}
		return registryUseCase.NewCertificateUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}

// initCredentialUseCase creates the credential use case with all its dependencies.
func (c *Container) initCredentialUseCase() (registryUseCase.CredentialUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for credential use case: %w", err)
	}
	credRepo, err := c.CredentialRepository()
	if err != nil {
		return nil, err
	}
	secretRepo, err := c.SecretRepository()
	if err != nil {
		return nil, err
	}
	certRepo, err := c.CertificateRepository()
	if err != nil {
		return nil, err
	}
	directory, err := c.Directory()
	if err != nil {
		return nil, err
	}
	envelopeStore, err := c.EnvelopeStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get envelope store for credential use case: %w", err)
	}
	lookupCache, err := c.LookupCache()
	if err != nil {
		return nil, err
	}
	auditUseCase, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for credential use case: %w", err)
	}

	baseUseCase := registryUseCase.NewCredentialUseCase(
		txManager,
		credRepo,
		secretRepo,
		certRepo,
		directory,
		envelopeStore,
		registryService.NewSecretGenerator(),
		lookupCache,
		auditUseCase,
		c.Logger(),
		c.config.MaxActiveSecrets,
		c.config.CacheTTL,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
		}
		return registryUseCase.NewCredentialUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}
	return baseUseCase, nil
}
