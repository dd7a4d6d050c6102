// Package usecase provides the directory reader the trust core consults,
// with application lookups served through the lookup cache.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/cache"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
)

// DirectoryRepository reads directory records from the database.
type DirectoryRepository interface {
	GetApplicationByClientID(ctx context.Context, clientID string) (*directoryDomain.Application, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*directoryDomain.Application, error)
	GetOrganization(ctx context.Context, id uuid.UUID) (*directoryDomain.Organization, error)
	GetUser(ctx context.Context, id uuid.UUID) (*directoryDomain.User, error)
	ListPermissions(ctx context.Context, userID uuid.UUID) ([]directoryDomain.Permission, error)
	ListURLPermissions(ctx context.Context, applicationID, userID uuid.UUID) ([]string, error)
}

// Directory reads directory records. Applications are cached by client id
// and by id for ttl; the administration layer owns those rows, so expiry is
// the only invalidation.
type Directory struct {
	DirectoryRepository

	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewDirectory wraps repo with the lookup cache.
func NewDirectory(repo DirectoryRepository, lookupCache cache.Cache, ttl time.Duration, logger *slog.Logger) *Directory {
	return &Directory{
		DirectoryRepository: repo,
		cache:               lookupCache,
		ttl:                 ttl,
		logger:              logger,
	}
}

// GetApplicationByClientID returns the application registered under clientID.
func (d *Directory) GetApplicationByClientID(
	ctx context.Context,
	clientID string,
) (*directoryDomain.Application, error) {
	return d.cachedApplication(ctx, cache.Key("app", "client", clientID), func() (*directoryDomain.Application, error) {
		return d.DirectoryRepository.GetApplicationByClientID(ctx, clientID)
	})
}

// GetApplication returns the application with the given id.
func (d *Directory) GetApplication(ctx context.Context, id uuid.UUID) (*directoryDomain.Application, error) {
	return d.cachedApplication(ctx, cache.Key("app", "id", id.String()), func() (*directoryDomain.Application, error) {
		return d.DirectoryRepository.GetApplication(ctx, id)
	})
}

func (d *Directory) cachedApplication(
	ctx context.Context,
	key string,
	load func() (*directoryDomain.Application, error),
) (*directoryDomain.Application, error) {
	var cached directoryDomain.Application
	found, err := d.cache.Get(ctx, key, &cached)
	if err != nil {
		d.logger.WarnContext(ctx, "application cache read failed", slog.Any("error", err))
	}
	if found {
		return &cached, nil
	}

	app, err := load()
	if err != nil {
		return nil, err
	}

	if err := d.cache.Set(ctx, key, app, d.ttl); err != nil {
		d.logger.WarnContext(ctx, "application cache write failed", slog.Any("error", err))
	}
	return app, nil
}
