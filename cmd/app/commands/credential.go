package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	registryDomain "github.com/allisson/idcore/internal/registry/domain"
	registryUseCase "github.com/allisson/idcore/internal/registry/usecase"
)

// credentialOutput is the JSON shape printed for a credential.
type credentialOutput struct {
	ID            string  `json:"id"`
	ApplicationID string  `json:"application_id"`
	Name          string  `json:"name"`
	AuthMethod    string  `json:"auth_method"`
	Status        string  `json:"status"`
	ExpiresAt     *string `json:"expires_at,omitempty"`
	Secret        string  `json:"secret,omitempty"`
}

func newCredentialOutput(cred *registryDomain.Credential, secret string) credentialOutput {
	out := credentialOutput{
		ID:            cred.ID.String(),
		ApplicationID: cred.ApplicationID.String(),
		Name:          cred.Name,
		AuthMethod:    string(cred.AuthMethod),
		Status:        string(cred.Status),
		Secret:        secret,
	}
	if cred.ExpiresAt != nil {
		expiresAt := cred.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z")
		out.ExpiresAt = &expiresAt
	}
	return out
}

// RunCreateSecretCredential generates a client_secret_jwt credential. The
// plain secret is printed once and cannot be retrieved later.
func RunCreateSecretCredential(
	ctx context.Context,
	credentialUseCase registryUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	applicationID, name, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	appID, err := parseID("application id", applicationID)
	if err != nil {
		return err
	}

	output, err := credentialUseCase.CreateSecret(ctx, &registryDomain.CreateSecretCredentialInput{
		ApplicationID: appID,
		Name:          name,
	})
	if err != nil {
		return fmt.Errorf("failed to create secret credential: %w", err)
	}

	logger.Info("secret credential created",
		slog.String("credential_id", output.Credential.ID.String()),
		slog.String("application_id", appID.String()),
	)

	if format == "json" {
		return writeJSON(writer, newCredentialOutput(output.Credential, output.PlainSecret))
	}
	_, _ = fmt.Fprintf(writer, "Secret credential created successfully\n")
	_, _ = fmt.Fprintf(writer, "ID: %s\n", output.Credential.ID)
	_, _ = fmt.Fprintf(writer, "Name: %s\n", output.Credential.Name)
	_, _ = fmt.Fprintf(writer, "Secret: %s\n", output.PlainSecret)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "WARNING: Save the secret now. It will not be shown again.")
	return nil
}

// RunCreatePrivateKeyCredential binds a private_key_jwt credential to an
// active public key certificate.
func RunCreatePrivateKeyCredential(
	ctx context.Context,
	credentialUseCase registryUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	applicationID, certificateID, name, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	appID, err := parseID("application id", applicationID)
	if err != nil {
		return err
	}
	certID, err := parseID("certificate id", certificateID)
	if err != nil {
		return err
	}

	cred, err := credentialUseCase.CreatePrivateKey(ctx, &registryDomain.CreatePrivateKeyCredentialInput{
		ApplicationID: appID,
		CertificateID: certID,
		Name:          name,
	})
	if err != nil {
		return fmt.Errorf("failed to create private key credential: %w", err)
	}

	logger.Info("private key credential created",
		slog.String("credential_id", cred.ID.String()),
		slog.String("application_id", appID.String()),
		slog.String("certificate_id", certID.String()),
	)

	if format == "json" {
		return writeJSON(writer, newCredentialOutput(cred, ""))
	}
	_, _ = fmt.Fprintf(writer, "Private key credential created successfully\n")
	_, _ = fmt.Fprintf(writer, "ID: %s\n", cred.ID)
	_, _ = fmt.Fprintf(writer, "Name: %s\n", cred.Name)
	if cred.ExpiresAt != nil {
		_, _ = fmt.Fprintf(writer, "Expires: %s\n", cred.ExpiresAt.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// RunUpdateCredentialStatus activates, deactivates or disables a credential.
func RunUpdateCredentialStatus(
	ctx context.Context,
	credentialUseCase registryUseCase.CredentialUseCase,
	logger *slog.Logger,
	writer io.Writer,
	credentialID, status, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	id, err := parseID("credential id", credentialID)
	if err != nil {
		return err
	}
	newStatus, err := registryDomain.ParseCredentialStatus(status)
	if err != nil {
		return fmt.Errorf("invalid credential status %q: %w", status, err)
	}

	if err := credentialUseCase.UpdateStatus(ctx, id, newStatus); err != nil {
		return fmt.Errorf("failed to update credential status: %w", err)
	}

	logger.Info("credential status updated",
		slog.String("credential_id", id.String()),
		slog.String("status", string(newStatus)),
	)

	if format == "json" {
		return writeJSON(writer, map[string]string{"id": id.String(), "status": string(newStatus)})
	}
	_, _ = fmt.Fprintf(writer, "Credential %s is now %s\n", id, newStatus)
	return nil
}
