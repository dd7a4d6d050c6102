// Package mysql persists audit events in MySQL.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
)

// MySQLEventRepository stores audit events with BINARY(16) ids.
type MySQLEventRepository struct {
	db *sql.DB
}

const eventColumns = `id, kind, outcome, client_id, target_id, slot, metadata, key_id, signature, created_at`

// Create inserts an event, joining the transaction in ctx when there is one.
func (m *MySQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := event.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal audit event id")
	}

	var metadataJSON []byte
	if len(event.Metadata) > 0 {
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit event metadata")
		}
	}

	query := `INSERT INTO audit_events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		idBytes,
		event.Kind,
		event.Outcome,
		event.ClientID,
		event.TargetID,
		event.Slot,
		metadataJSON,
		event.KeyID,
		event.Signature,
		event.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit event")
	}
	return nil
}

// ListBetween returns events created in [from, to), oldest first.
func (m *MySQLEventRepository) ListBetween(
	ctx context.Context,
	from, to time.Time,
	offset, limit int,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + eventColumns + ` FROM audit_events
			  WHERE created_at >= ? AND created_at < ?
			  ORDER BY created_at ASC, id ASC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, from, to, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit events")
	}
	defer func() {
		_ = rows.Close()
	}()

	events := make([]*auditDomain.Event, 0)
	for rows.Next() {
		var event auditDomain.Event
		var idBytes, metadataJSON []byte
		if err := rows.Scan(
			&idBytes,
			&event.Kind,
			&event.Outcome,
			&event.ClientID,
			&event.TargetID,
			&event.Slot,
			&metadataJSON,
			&event.KeyID,
			&event.Signature,
			&event.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit event")
		}
		id, err := uuid.FromBytes(idBytes)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal audit event id")
		}
		event.ID = id
		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit event metadata")
			}
		}
		event.CreatedAt = event.CreatedAt.UTC()
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}
	return events, nil
}

// DeleteOlderThan removes events created before the cutoff.
func (m *MySQLEventRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return count, nil
}

// NewMySQLEventRepository creates a new MySQL audit event repository.
func NewMySQLEventRepository(db *sql.DB) *MySQLEventRepository {
	return &MySQLEventRepository{db: db}
}
