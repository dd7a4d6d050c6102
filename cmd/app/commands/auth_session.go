package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	sessionService "github.com/allisson/idcore/internal/session/service"
	sessionUseCase "github.com/allisson/idcore/internal/session/usecase"
)

// CreateAuthSessionInput carries the create-auth-session flags.
type CreateAuthSessionInput struct {
	ApplicationID     string
	SubjectID         string
	Scopes            string // space or comma separated
	RedirectURI       string
	DeviceFingerprint string
	Format            string
}

// RunCreateAuthSession opens an active session for a subject and issues its
// first SSO cookie. It bootstraps sessions for operators and integration tests
// that have no login front end.
func RunCreateAuthSession(
	ctx context.Context,
	sessions sessionUseCase.SessionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	input CreateAuthSessionInput,
) error {
	if err := validateFormat(input.Format); err != nil {
		return err
	}
	appID, err := parseID("application id", input.ApplicationID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(input.SubjectID) == "" {
		return fmt.Errorf("subject id is required")
	}

	var fingerprint []byte
	if input.DeviceFingerprint != "" {
		fingerprint = sessionService.Fingerprint(sessionDomain.RequestFingerprint{
			DeviceFingerprint: input.DeviceFingerprint,
		})
	}

	session, err := sessions.CreateAuthSession(ctx, &sessionDomain.CreateAuthSessionInput{
		ApplicationID: appID,
		SubjectID:     input.SubjectID,
		Scopes:        splitScopes(input.Scopes),
		Fingerprint:   fingerprint,
		RedirectURI:   input.RedirectURI,
	})
	if err != nil {
		return fmt.Errorf("failed to create auth session: %w", err)
	}

	cookie, err := sessions.GenerateCookie(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to generate sso cookie: %w", err)
	}

	logger.Info("auth session created",
		slog.String("session_id", session.ID.String()),
		slog.String("application_id", appID.String()),
	)

	if input.Format == "json" {
		return writeJSON(writer, map[string]any{
			"session_id": session.ID.String(),
			"scopes":     session.Scopes,
			"cookie":     cookie.Value,
		})
	}
	_, _ = fmt.Fprintf(writer, "Auth session created successfully\n")
	_, _ = fmt.Fprintf(writer, "Session ID: %s\n", session.ID)
	_, _ = fmt.Fprintf(writer, "Scopes: %s\n", strings.Join(session.Scopes, " "))
	_, _ = fmt.Fprintf(writer, "SSO cookie: %s\n", cookie.Value)
	return nil
}

// splitScopes accepts "openid profile" as well as "openid,profile".
func splitScopes(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' '
	})
}
