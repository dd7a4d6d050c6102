package usecase

import (
	"context"
	"time"

	"github.com/allisson/idcore/internal/metrics"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
)

const metricsDomain = "signature"

func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RecordOperation(ctx, metricsDomain, operation, status)
	m.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

type signatureUseCaseWithMetrics struct {
	next    SignatureUseCase
	metrics metrics.BusinessMetrics
}

// NewSignatureUseCaseWithMetrics wraps a SignatureUseCase with metrics recording.
func NewSignatureUseCaseWithMetrics(useCase SignatureUseCase, m metrics.BusinessMetrics) SignatureUseCase {
	return &signatureUseCaseWithMetrics{next: useCase, metrics: m}
}

func (s *signatureUseCaseWithMetrics) SignBody(
	ctx context.Context,
	token *tokenDomain.Token,
	body []byte,
) (string, error) {
	start := time.Now()
	sig, err := s.next.SignBody(ctx, token, body)
	record(ctx, s.metrics, "signature_sign", start, err)
	return sig, err
}

func (s *signatureUseCaseWithMetrics) Verify(
	ctx context.Context,
	authorization, signature string,
	body []byte,
) (*tokenDomain.Token, error) {
	start := time.Now()
	token, err := s.next.Verify(ctx, authorization, signature, body)
	record(ctx, s.metrics, "signature_verify", start, err)
	return token, err
}

func (s *signatureUseCaseWithMetrics) VerifyForClientID(
	ctx context.Context,
	clientID string,
	requestTime time.Time,
	signature string,
	body []byte,
) (*tokenDomain.Token, error) {
	start := time.Now()
	token, err := s.next.VerifyForClientID(ctx, clientID, requestTime, signature, body)
	record(ctx, s.metrics, "signature_verify_client", start, err)
	return token, err
}
