package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	"github.com/allisson/idcore/internal/metrics"
)

// envelopeStoreWithMetrics decorates EnvelopeStore with metrics instrumentation.
type envelopeStoreWithMetrics struct {
	next    EnvelopeStore
	metrics metrics.BusinessMetrics
}

// NewEnvelopeStoreWithMetrics wraps an EnvelopeStore with metrics recording.
func NewEnvelopeStoreWithMetrics(store EnvelopeStore, m metrics.BusinessMetrics) EnvelopeStore {
	return &envelopeStoreWithMetrics{
		next:    store,
		metrics: m,
	}
}

// Store records metrics for envelope wrap operations.
func (e *envelopeStoreWithMetrics) Store(ctx context.Context, payload *cryptoDomain.Payload) (uuid.UUID, error) {
	start := time.Now()
	id, err := e.next.Store(ctx, payload)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "crypto", "envelope_store", status)
	e.metrics.RecordDuration(ctx, "crypto", "envelope_store", time.Since(start), status)

	return id, err
}

// Load records metrics for envelope unwrap operations.
func (e *envelopeStoreWithMetrics) Load(ctx context.Context, id uuid.UUID) (*cryptoDomain.Payload, error) {
	start := time.Now()
	payload, err := e.next.Load(ctx, id)

	status := "success"
	if err != nil {
		status = "error"
	}

	e.metrics.RecordOperation(ctx, "crypto", "envelope_load", status)
	e.metrics.RecordDuration(ctx, "crypto", "envelope_load", time.Since(start), status)

	return payload, err
}
