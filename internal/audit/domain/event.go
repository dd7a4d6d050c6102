// Package domain defines the audit events persisted for trust decisions:
// client authentication outcomes, certificate and credential status changes,
// and session fingerprint mismatches. Every event is HMAC signed when written.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/errors"
)

// EventKind names the decision an event records.
type EventKind string

const (
	EventClientAuthentication EventKind = "client_authentication"
	EventCredentialStatus     EventKind = "credential_status"
	EventCertificateStatus    EventKind = "certificate_status"
	EventFingerprintMismatch  EventKind = "fingerprint_mismatch"
)

// Outcome is the result of the recorded decision.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one audit record. ClientID is the OAuth client id when known and
// TargetID the credential, certificate or session the decision concerns.
// Slot is the credential slot that authenticated the client, zero otherwise.
type Event struct {
	ID        uuid.UUID
	Kind      EventKind
	Outcome   Outcome
	ClientID  string
	TargetID  string
	Slot      int
	Metadata  map[string]string
	KeyID     string
	Signature []byte
	CreatedAt time.Time
}

// NewEvent returns an unsigned event stamped with a UUIDv7 and the current
// time truncated to the microsecond precision both databases keep.
func NewEvent(kind EventKind, outcome Outcome) *Event {
	return &Event{
		ID:        uuid.Must(uuid.NewV7()),
		Kind:      kind,
		Outcome:   outcome,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// VerificationReport summarizes an integrity check over a time range.
type VerificationReport struct {
	TotalChecked  int64       `json:"total_checked"`
	ValidCount    int64       `json:"valid_count"`
	InvalidCount  int64       `json:"invalid_count"`
	ForeignCount  int64       `json:"foreign_key_count"`
	InvalidEvents []uuid.UUID `json:"invalid_events"`
}

// Passed reports whether no event failed verification.
func (r *VerificationReport) Passed() bool {
	return r.InvalidCount == 0
}

// Audit errors.
var (
	ErrSignatureInvalid = errors.Wrap(errors.ErrInvalidState, "audit event signature is invalid")
	ErrForeignKey       = errors.Wrap(errors.ErrInvalidState, "audit event was signed under another master password")
	ErrInvalidRange     = errors.Wrap(errors.ErrInvalidInput, "end of range must be after its start")
)
