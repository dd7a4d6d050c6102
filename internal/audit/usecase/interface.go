// Package usecase records signed audit events and verifies their integrity.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
)

// EventRepository persists audit events.
type EventRepository interface {
	Create(ctx context.Context, event *auditDomain.Event) error
	// ListBetween returns events with from <= created_at < to, oldest first.
	ListBetween(ctx context.Context, from, to time.Time, offset, limit int) ([]*auditDomain.Event, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// AuditUseCase is the audit trail.
type AuditUseCase interface {
	// Record signs and stores an event. Inside a transaction it joins it, so
	// a failed write rolls back the decision it describes.
	Record(ctx context.Context, event *auditDomain.Event) error

	// VerifyRange checks every event in [from, to).
	VerifyRange(ctx context.Context, from, to time.Time) (*auditDomain.VerificationReport, error)

	// DeleteOlderThan removes events created before now minus days.
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}
