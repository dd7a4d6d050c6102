package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
)

// AuditEventVerifier checks the signatures of stored audit events.
type AuditEventVerifier interface {
	VerifyRange(ctx context.Context, from, to time.Time) (*auditDomain.VerificationReport, error)
}

// AuditEventCleaner removes old audit events.
type AuditEventCleaner interface {
	DeleteOlderThan(ctx context.Context, days int) (int64, error)
}

// RunVerifyAuditEvents verifies every audit event created in [startDate, endDate)
// and fails when any signature does not match. Events signed under another
// master password are counted but do not fail the run.
func RunVerifyAuditEvents(
	ctx context.Context,
	verifier AuditEventVerifier,
	logger *slog.Logger,
	writer io.Writer,
	startDate, endDate string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	start, err := parseDate(startDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	end, err := parseDate(endDate)
	if err != nil {
		return fmt.Errorf("invalid end date: %w", err)
	}
	if !end.After(start) {
		return fmt.Errorf("end date must be after start date")
	}

	logger.Info("verifying audit events",
		slog.Time("start_date", start),
		slog.Time("end_date", end),
	)

	report, err := verifier.VerifyRange(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to verify audit events: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"total_checked":     report.TotalChecked,
			"valid_count":       report.ValidCount,
			"invalid_count":     report.InvalidCount,
			"foreign_key_count": report.ForeignCount,
			"invalid_events":    report.InvalidEvents,
			"passed":            report.Passed(),
		}); err != nil {
			return err
		}
	} else {
		writeVerifyText(writer, report, start, end)
	}

	logger.Info("verification completed",
		slog.Int64("total_checked", report.TotalChecked),
		slog.Int64("valid", report.ValidCount),
		slog.Int64("invalid", report.InvalidCount),
		slog.Int64("foreign_key", report.ForeignCount),
	)

	if !report.Passed() {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", report.InvalidCount)
	}
	return nil
}

// parseDate accepts "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD" (start of day), in UTC.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateTime, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf(
			"invalid date format (expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS): %s",
			value,
		)
	}
	return t, nil
}

func writeVerifyText(writer io.Writer, report *auditDomain.VerificationReport, start, end time.Time) {
	_, _ = fmt.Fprintf(writer, "Audit Event Integrity Verification\n\n")
	_, _ = fmt.Fprintf(writer, "Time Range:     %s to %s\n\n", start.Format(time.DateTime), end.Format(time.DateTime))
	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", report.TotalChecked)
	_, _ = fmt.Fprintf(writer, "Valid:          %d\n", report.ValidCount)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n", report.InvalidCount)
	_, _ = fmt.Fprintf(writer, "Other Key:      %d\n\n", report.ForeignCount)

	switch {
	case report.InvalidCount > 0:
		_, _ = fmt.Fprintf(writer, "WARNING: %d event(s) failed integrity check\n\n", report.InvalidCount)
		_, _ = fmt.Fprintf(writer, "Invalid Event IDs:\n")
		for _, id := range report.InvalidEvents {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
		_, _ = fmt.Fprintf(writer, "\nStatus: FAILED\n")
	case report.TotalChecked == 0:
		_, _ = fmt.Fprintf(writer, "Status: No events found in specified time range\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}

// RunCleanAuditEvents deletes audit events older than days.
func RunCleanAuditEvents(
	ctx context.Context,
	cleaner AuditEventCleaner,
	logger *slog.Logger,
	writer io.Writer,
	days int,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}
	if err := validateFormat(format); err != nil {
		return err
	}

	logger.Info("cleaning audit events", slog.Int("days", days))

	count, err := cleaner.DeleteOlderThan(ctx, days)
	if err != nil {
		return fmt.Errorf("failed to delete audit events: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"count": count, "days": days}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d audit event(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed", slog.Int64("count", count), slog.Int("days", days))
	return nil
}
