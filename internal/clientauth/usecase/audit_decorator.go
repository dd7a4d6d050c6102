package usecase

import (
	"context"
	"errors"
	"log/slog"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
)

// AuditRecorder stores signed audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event *auditDomain.Event) error
}

type authenticatorWithAudit struct {
	next   Authenticator
	audit  AuditRecorder
	logger *slog.Logger
}

// NewAuthenticatorWithAudit records one audit event per authentication
// decision. Requests no strategy claims are not recorded. A failed write is
// logged and does not change the decision.
func NewAuthenticatorWithAudit(next Authenticator, audit AuditRecorder, logger *slog.Logger) Authenticator {
	return &authenticatorWithAudit{next: next, audit: audit, logger: logger}
}

func (a *authenticatorWithAudit) Authenticate(
	ctx context.Context,
	req *clientAuthDomain.Request,
) (*clientAuthDomain.Client, error) {
	client, err := a.next.Authenticate(ctx, req)
	if errors.Is(err, clientAuthDomain.ErrNotApplicable) {
		return client, err
	}

	var event *auditDomain.Event
	if err != nil {
		event = auditDomain.NewEvent(auditDomain.EventClientAuthentication, auditDomain.OutcomeFailure)
		event.ClientID = req.ClientID
		event.Metadata = map[string]string{"reason": err.Error()}
	} else {
		event = auditDomain.NewEvent(auditDomain.EventClientAuthentication, auditDomain.OutcomeSuccess)
		event.ClientID = client.ClientID
		event.Slot = client.Slot
		event.Metadata = map[string]string{"method": string(client.Method)}
		if client.Slot > 0 {
			event.TargetID = client.CredentialID.String()
		}
		if client.KeyID != "" {
			event.Metadata["key_id"] = client.KeyID
		}
	}

	if recordErr := a.audit.Record(ctx, event); recordErr != nil {
		a.logger.ErrorContext(ctx, "failed to record client authentication audit event",
			slog.String("client_id", event.ClientID),
			slog.String("outcome", string(event.Outcome)),
			slog.Int("slot", event.Slot),
			slog.Any("error", recordErr),
		)
	}
	return client, err
}
