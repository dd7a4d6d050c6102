package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/metrics"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

const metricsDomain = "token"

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{next: useCase, metrics: m}
}

func (t *tokenUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	t.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	t.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (t *tokenUseCaseWithMetrics) Create(
	ctx context.Context,
	input *tokenDomain.CreateTokenInput,
) (*tokenDomain.Token, error) {
	start := time.Now()
	token, err := t.next.Create(ctx, input)
	t.record(ctx, "token_create", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *tokenDomain.IssueTokenInput,
) (*tokenDomain.Token, error) {
	start := time.Now()
	token, err := t.next.Issue(ctx, input)
	t.record(ctx, "token_issue", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) GetByValue(
	ctx context.Context,
	value string,
	tokenType tokenDomain.TokenType,
) (*tokenDomain.Token, error) {
	start := time.Now()
	token, err := t.next.GetByValue(ctx, value, tokenType)
	t.record(ctx, "token_get_by_value", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) IsActive(ctx context.Context, token *tokenDomain.Token) (bool, error) {
	start := time.Now()
	active, err := t.next.IsActive(ctx, token)
	t.record(ctx, "token_is_active", start, err)
	return active, err
}

func (t *tokenUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	value string,
	tokenType tokenDomain.TokenType,
) (*tokenDomain.Token, error) {
	start := time.Now()
	token, err := t.next.Authenticate(ctx, value, tokenType)
	t.record(ctx, "token_authenticate", start, err)
	return token, err
}

func (t *tokenUseCaseWithMetrics) GetClaimsForToken(
	ctx context.Context,
	token *tokenDomain.Token,
) (tokenDomain.Claims, error) {
	start := time.Now()
	claims, err := t.next.GetClaimsForToken(ctx, token)
	t.record(ctx, "token_claims", start, err)
	return claims, err
}

func (t *tokenUseCaseWithMetrics) ListByApplicationWithin(
	ctx context.Context,
	applicationID uuid.UUID,
	from, to time.Time,
	limit int,
) ([]*tokenDomain.Token, error) {
	start := time.Now()
	tokens, err := t.next.ListByApplicationWithin(ctx, applicationID, from, to, limit)
	t.record(ctx, "token_list_within", start, err)
	return tokens, err
}

func (t *tokenUseCaseWithMetrics) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	start := time.Now()
	count, err := t.next.DeleteExpired(ctx, before)
	t.record(ctx, "token_delete_expired", start, err)
	return count, err
}
