package commands

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
)

func TestRunVerifyAuditEvents(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 12, 30, 0, 0, time.UTC)

	t.Run("passed-text", func(t *testing.T) {
		verifier := &MockAuditEventVerifier{}
		verifier.On("VerifyRange", ctx, start, end).
			Return(&auditDomain.VerificationReport{TotalChecked: 3, ValidCount: 2, ForeignCount: 1}, nil).Once()

		var out bytes.Buffer
		err := RunVerifyAuditEvents(ctx, verifier, logger, &out, "2026-01-01", "2026-01-31 12:30:00", "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Total Checked:  3")
		assert.Contains(t, out.String(), "Other Key:      1")
		assert.Contains(t, out.String(), "Status: PASSED")
		verifier.AssertExpectations(t)
	})

	t.Run("empty-range", func(t *testing.T) {
		verifier := &MockAuditEventVerifier{}
		verifier.On("VerifyRange", ctx, start, end).
			Return(&auditDomain.VerificationReport{InvalidEvents: []uuid.UUID{}}, nil).Once()

		var out bytes.Buffer
		err := RunVerifyAuditEvents(ctx, verifier, logger, &out, "2026-01-01", "2026-01-31 12:30:00", "text")

		require.NoError(t, err)
		assert.Contains(t, out.String(), "No events found")
	})

	t.Run("tampered-json", func(t *testing.T) {
		tampered := uuid.New()
		verifier := &MockAuditEventVerifier{}
		verifier.On("VerifyRange", ctx, start, end).Return(&auditDomain.VerificationReport{
			TotalChecked:  2,
			ValidCount:    1,
			InvalidCount:  1,
			InvalidEvents: []uuid.UUID{tampered},
		}, nil).Once()

		var out bytes.Buffer
		err := RunVerifyAuditEvents(ctx, verifier, logger, &out, "2026-01-01", "2026-01-31 12:30:00", "json")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "integrity check failed: 1 invalid signature(s)")
		assert.Contains(t, out.String(), `"passed": false`)
		assert.Contains(t, out.String(), tampered.String())
	})

	t.Run("invalid-dates", func(t *testing.T) {
		verifier := &MockAuditEventVerifier{}

		err := RunVerifyAuditEvents(ctx, verifier, logger, &bytes.Buffer{}, "01/01/2026", "2026-01-31", "text")
		assert.ErrorContains(t, err, "invalid start date")

		err = RunVerifyAuditEvents(ctx, verifier, logger, &bytes.Buffer{}, "2026-01-31", "2026-01-01", "text")
		assert.ErrorContains(t, err, "end date must be after start date")

		verifier.AssertNumberOfCalls(t, "VerifyRange", 0)
	})

	t.Run("store-error", func(t *testing.T) {
		verifier := &MockAuditEventVerifier{}
		verifier.On("VerifyRange", ctx, start, end).Return(nil, errors.New("db down")).Once()

		err := RunVerifyAuditEvents(ctx, verifier, logger, &bytes.Buffer{}, "2026-01-01", "2026-01-31 12:30:00", "text")
		assert.ErrorContains(t, err, "failed to verify audit events")
	})
}

func TestRunCleanAuditEvents(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	t.Run("text-output", func(t *testing.T) {
		cleaner := &MockAuditEventCleaner{}
		cleaner.On("DeleteOlderThan", ctx, 90).Return(int64(12), nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunCleanAuditEvents(ctx, cleaner, logger, &out, 90, "text"))
		assert.Contains(t, out.String(), "Successfully deleted 12 audit event(s) older than 90 day(s)")
		cleaner.AssertExpectations(t)
	})

	t.Run("json-output", func(t *testing.T) {
		cleaner := &MockAuditEventCleaner{}
		cleaner.On("DeleteOlderThan", ctx, 0).Return(int64(4), nil).Once()

		var out bytes.Buffer
		require.NoError(t, RunCleanAuditEvents(ctx, cleaner, logger, &out, 0, "json"))
		assert.Contains(t, out.String(), `"count": 4`)
	})

	t.Run("invalid-days", func(t *testing.T) {
		err := RunCleanAuditEvents(ctx, &MockAuditEventCleaner{}, logger, &bytes.Buffer{}, -1, "text")
		assert.ErrorContains(t, err, "days must be a positive number")
	})

	t.Run("store-error", func(t *testing.T) {
		cleaner := &MockAuditEventCleaner{}
		cleaner.On("DeleteOlderThan", ctx, 30).Return(int64(0), errors.New("db down")).Once()

		err := RunCleanAuditEvents(ctx, cleaner, logger, &bytes.Buffer{}, 30, "text")
		assert.ErrorContains(t, err, "failed to delete audit events")
	})
}
