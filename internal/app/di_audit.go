package app

import (
	"fmt"

	auditMySQL "github.com/allisson/idcore/internal/audit/repository/mysql"
	auditPostgreSQL "github.com/allisson/idcore/internal/audit/repository/postgresql"
	auditService "github.com/allisson/idcore/internal/audit/service"
	auditUseCase "github.com/allisson/idcore/internal/audit/usecase"
)

// AuditSigner returns the audit event signer keyed from the master password.
func (c *Container) AuditSigner() (auditService.Signer, error) {
	var err error
	c.auditSignerInit.Do(func() {
		c.auditSigner, err = c.initAuditSigner()
		if err != nil {
			c.initErrors["auditSigner"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditSigner"]; exists {
		return nil, storedErr
	}
	return c.auditSigner, nil
}

// AuditEventRepository returns the audit event repository based on database driver.
func (c *Container) AuditEventRepository() (auditUseCase.EventRepository, error) {
	var err error
	c.auditEventRepositoryInit.Do(func() {
		c.auditEventRepository, err = c.initAuditEventRepository()
		if err != nil {
			c.initErrors["auditEventRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditEventRepository"]; exists {
		return nil, storedErr
	}
	return c.auditEventRepository, nil
}

// AuditUseCase returns the audit trail use case.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	var err error
	c.auditUseCaseInit.Do(func() {
		c.auditUseCase, err = c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

func (c *Container) initAuditSigner() (auditService.Signer, error) {
	masterPassword, err := c.MasterPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to get master password for audit signer: %w", err)
	}
	return auditService.NewSigner(masterPassword)
}

func (c *Container) initAuditEventRepository() (auditUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit event repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditPostgreSQL.NewPostgreSQLEventRepository(db), nil
	case "mysql":
		return auditMySQL.NewMySQLEventRepository(db), nil
	default:
		return nil, c.unsupportedDriver()
	}
}

func (c *Container) initAuditUseCase() (auditUseCase.AuditUseCase, error) {
	repo, err := c.AuditEventRepository()
	if err != nil {
		return nil, err
	}
	signer, err := c.AuditSigner()
	if err != nil {
		return nil, err
	}
	return auditUseCase.NewAuditUseCase(repo, signer), nil
}
