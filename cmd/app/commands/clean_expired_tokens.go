package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// ExpiredTokenCleaner removes tokens past their expiration.
type ExpiredTokenCleaner interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// RunCleanExpiredTokens deletes tokens that expired more than days ago.
// days may be zero to delete everything already expired.
func RunCleanExpiredTokens(
	ctx context.Context,
	cleaner ExpiredTokenCleaner,
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

	before := time.Now().UTC().AddDate(0, 0, -days)
	logger.Info("cleaning expired tokens",
		slog.Int("days", days),
		slog.Time("before", before),
	)

	count, err := cleaner.DeleteExpired(ctx, before)
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"count": count, "days": days}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Successfully deleted %d expired token(s) older than %d day(s)\n", count, days)
	}

	logger.Info("cleanup completed", slog.Int64("count", count), slog.Int("days", days))
	return nil
}
