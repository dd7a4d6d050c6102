package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"

	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	"github.com/allisson/idcore/internal/metrics"
)

const metricsDomain = "clientauth"

// authenticatorWithMetrics records one operation per authentication attempt,
// labelled with the strategy name.
type authenticatorWithMetrics struct {
	next      Authenticator
	operation string
	metrics   metrics.BusinessMetrics
}

// NewAuthenticatorWithMetrics wraps an Authenticator with metrics recording.
// Requests the authenticator does not handle are recorded as "skipped".
func NewAuthenticatorWithMetrics(next Authenticator, operation string, m metrics.BusinessMetrics) Authenticator {
	return &authenticatorWithMetrics{next: next, operation: operation, metrics: m}
}

func (a *authenticatorWithMetrics) Authenticate(
	ctx context.Context,
	req *clientAuthDomain.Request,
) (*clientAuthDomain.Client, error) {
	start := time.Now()
	client, err := a.next.Authenticate(ctx, req)

	status := "success"
	switch {
	case errors.Is(err, clientAuthDomain.ErrNotApplicable):
		status = "skipped"
	case err != nil:
		status = "error"
	}
	a.metrics.RecordOperation(ctx, metricsDomain, a.operation, status)
	a.metrics.RecordDuration(ctx, metricsDomain, a.operation, time.Since(start), status)
	return client, err
}

type keySetUseCaseWithMetrics struct {
	next    KeySetUseCase
	metrics metrics.BusinessMetrics
}

// NewKeySetUseCaseWithMetrics wraps a KeySetUseCase with metrics recording.
func NewKeySetUseCaseWithMetrics(next KeySetUseCase, m metrics.BusinessMetrics) KeySetUseCase {
	return &keySetUseCaseWithMetrics{next: next, metrics: m}
}

func (k *keySetUseCaseWithMetrics) PublishedKeys(ctx context.Context, clientID string) (jwk.Set, error) {
	start := time.Now()
	set, err := k.next.PublishedKeys(ctx, clientID)

	status := "success"
	if err != nil {
		status = "error"
	}
	k.metrics.RecordOperation(ctx, metricsDomain, "published_keys", status)
	k.metrics.RecordDuration(ctx, metricsDomain, "published_keys", time.Since(start), status)
	return set, err
}
