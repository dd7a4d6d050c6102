package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	cryptoService "github.com/allisson/idcore/internal/crypto/service"
)

type masterPasswordUseCase struct {
	envelope    cryptoService.Envelope
	repo        KeyMaterialRepository
	logger      *slog.Logger
	batchSize   int
	concurrency int
}

// NewMasterPasswordUseCase creates a MasterPasswordUseCase. Pairs are read in
// batches of batchSize and rewrapped by up to concurrency workers.
func NewMasterPasswordUseCase(
	envelope cryptoService.Envelope,
	repo KeyMaterialRepository,
	logger *slog.Logger,
	batchSize, concurrency int,
) MasterPasswordUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &masterPasswordUseCase{
		envelope:    envelope,
		repo:        repo,
		logger:      logger,
		batchSize:   batchSize,
		concurrency: concurrency,
	}
}

func (m *masterPasswordUseCase) Rotate(
	ctx context.Context,
	oldPassword, newPassword *cryptoDomain.MasterPassword,
) (int, error) {
	// Every rewritten row is stamped with startedAt, which takes it out of
	// ListPendingRotation for the rest of this run.
	startedAt := time.Now().UTC().Truncate(time.Microsecond)

	var total atomic.Int64
	for {
		pairs, err := m.repo.ListPendingRotation(ctx, startedAt, m.batchSize)
		if err != nil {
			return int(total.Load()), err
		}
		if len(pairs) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(m.concurrency)
		for _, pair := range pairs {
			g.Go(func() error {
				container, err := m.rewrap(pair, oldPassword, newPassword)
				if err != nil {
					m.logger.Error("failed to rewrap password container",
						slog.String("key_material_id", pair.ID.String()),
						slog.Any("error", err),
					)
					return err
				}
				if err := m.repo.UpdatePasswordContainer(gctx, pair.ID, container, startedAt); err != nil {
					return err
				}
				total.Add(1)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return int(total.Load()), err
		}

		m.logger.Info("rotated password containers batch",
			slog.Int("batch", len(pairs)),
			slog.Int64("total", total.Load()),
		)
	}

	return int(total.Load()), nil
}

// rewrap moves a container from oldPassword to newPassword. A container already
// readable with newPassword, left behind by an interrupted run, is accepted as is.
func (m *masterPasswordUseCase) rewrap(
	pair *cryptoDomain.KeyMaterialPair,
	oldPassword, newPassword *cryptoDomain.MasterPassword,
) (cryptoDomain.PasswordContainer, error) {
	container, err := m.envelope.RewrapPasswordContainer(pair, oldPassword, newPassword)
	if err == nil {
		return container, nil
	}
	if !errors.Is(err, cryptoDomain.ErrWrongMasterPassword) {
		return nil, err
	}
	if _, verr := m.envelope.RewrapPasswordContainer(pair, newPassword, newPassword); verr != nil {
		return nil, err
	}
	return pair.PasswordContainer, nil
}
