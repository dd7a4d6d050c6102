package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	auditService "github.com/allisson/idcore/internal/audit/service"
	apperrors "github.com/allisson/idcore/internal/errors"
)

const verifyBatchSize = 500

type auditUseCase struct {
	repo   EventRepository
	signer auditService.Signer
}

// NewAuditUseCase creates an AuditUseCase.
func NewAuditUseCase(repo EventRepository, signer auditService.Signer) AuditUseCase {
	return &auditUseCase{repo: repo, signer: signer}
}

func (a *auditUseCase) Record(ctx context.Context, event *auditDomain.Event) error {
	event.KeyID = a.signer.KeyID()
	signature, err := a.signer.Sign(event)
	if err != nil {
		return err
	}
	event.Signature = signature

	if err := a.repo.Create(ctx, event); err != nil {
		return apperrors.Wrap(err, "failed to record audit event")
	}
	return nil
}

func (a *auditUseCase) VerifyRange(
	ctx context.Context,
	from, to time.Time,
) (*auditDomain.VerificationReport, error) {
	if !to.After(from) {
		return nil, auditDomain.ErrInvalidRange
	}

	report := &auditDomain.VerificationReport{InvalidEvents: []uuid.UUID{}}
	for offset := 0; ; offset += verifyBatchSize {
		events, err := a.repo.ListBetween(ctx, from, to, offset, verifyBatchSize)
		if err != nil {
			return nil, err
		}
		for _, event := range events {
			report.TotalChecked++
			err := a.signer.Verify(event)
			switch {
			case err == nil:
				report.ValidCount++
			case errors.Is(err, auditDomain.ErrForeignKey):
				report.ForeignCount++
			default:
				report.InvalidCount++
				report.InvalidEvents = append(report.InvalidEvents, event.ID)
			}
		}
		if len(events) < verifyBatchSize {
			return report, nil
		}
	}
}

func (a *auditUseCase) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "days must be zero or positive")
	}
	before := time.Now().UTC().AddDate(0, 0, -days)
	return a.repo.DeleteOlderThan(ctx, before)
}
