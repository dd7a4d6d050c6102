package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	registryDomain "github.com/allisson/idcore/internal/registry/domain"
	registryUseCase "github.com/allisson/idcore/internal/registry/usecase"
)

// certificateOutput is the JSON shape printed for a certificate.
type certificateOutput struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	Subject        string `json:"subject"`
	Fingerprint    string `json:"fingerprint"`
	NotBefore      string `json:"not_before"`
	NotAfter       string `json:"not_after"`
}

func newCertificateOutput(cert *registryDomain.Certificate) certificateOutput {
	return certificateOutput{
		ID:             cert.ID.String(),
		OrganizationID: cert.OrganizationID.String(),
		Type:           string(cert.Type),
		Status:         string(cert.Status),
		Subject:        cert.Subject,
		Fingerprint:    cert.Fingerprint,
		NotBefore:      cert.NotBefore.UTC().Format("2006-01-02T15:04:05Z"),
		NotAfter:       cert.NotAfter.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// RunCreateCertificate uploads a PEM or PKCS#12 bundle read from path for an
// organization. The password is only used for PKCS#12 bundles.
func RunCreateCertificate(
	ctx context.Context,
	certificateUseCase registryUseCase.CertificateUseCase,
	logger *slog.Logger,
	writer io.Writer,
	organizationID, certificateType, path, password, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	orgID, err := parseID("organization id", organizationID)
	if err != nil {
		return err
	}
	certType, err := registryDomain.ParseCertificateType(certificateType)
	if err != nil {
		return fmt.Errorf("invalid certificate type %q: %w", certificateType, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read certificate bundle: %w", err)
	}

	cert, err := certificateUseCase.Create(ctx, &registryDomain.CreateCertificateInput{
		OrganizationID: orgID,
		Type:           certType,
		Data:           data,
		Password:       password,
	})
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	logger.Info("certificate created",
		slog.String("certificate_id", cert.ID.String()),
		slog.String("organization_id", cert.OrganizationID.String()),
		slog.String("fingerprint", cert.Fingerprint),
	)

	if format == "json" {
		return writeJSON(writer, newCertificateOutput(cert))
	}
	_, _ = fmt.Fprintf(writer, "Certificate created successfully\n")
	_, _ = fmt.Fprintf(writer, "ID: %s\n", cert.ID)
	_, _ = fmt.Fprintf(writer, "Subject: %s\n", cert.Subject)
	_, _ = fmt.Fprintf(writer, "Fingerprint: %s\n", cert.Fingerprint)
	_, _ = fmt.Fprintf(writer, "Valid until: %s\n", cert.NotAfter.UTC().Format("2006-01-02T15:04:05Z"))
	return nil
}

// RunUpdateCertificateStatus applies a certificate lifecycle transition.
func RunUpdateCertificateStatus(
	ctx context.Context,
	certificateUseCase registryUseCase.CertificateUseCase,
	logger *slog.Logger,
	writer io.Writer,
	certificateID, status, format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	id, err := parseID("certificate id", certificateID)
	if err != nil {
		return err
	}
	newStatus, err := registryDomain.ParseCertificateStatus(status)
	if err != nil {
		return fmt.Errorf("invalid certificate status %q: %w", status, err)
	}

	if err := certificateUseCase.UpdateStatus(ctx, id, newStatus); err != nil {
		return fmt.Errorf("failed to update certificate status: %w", err)
	}

	logger.Info("certificate status updated",
		slog.String("certificate_id", id.String()),
		slog.String("status", string(newStatus)),
	)

	if format == "json" {
		return writeJSON(writer, map[string]string{"id": id.String(), "status": string(newStatus)})
	}
	_, _ = fmt.Fprintf(writer, "Certificate %s is now %s\n", id, newStatus)
	return nil
}
