// Package postgresql persists audit events in PostgreSQL.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	auditDomain "github.com/allisson/idcore/internal/audit/domain"
	"github.com/allisson/idcore/internal/database"
	apperrors "github.com/allisson/idcore/internal/errors"
)

// PostgreSQLEventRepository stores audit events with native UUID ids.
type PostgreSQLEventRepository struct {
	db *sql.DB
}

const eventColumns = `id, kind, outcome, client_id, target_id, slot, metadata, key_id, signature, created_at`

// Create inserts an event, joining the transaction in ctx when there is one.
func (p *PostgreSQLEventRepository) Create(ctx context.Context, event *auditDomain.Event) error {
	querier := database.GetTx(ctx, p.db)

	var metadataJSON []byte
	if len(event.Metadata) > 0 {
		var err error
		metadataJSON, err = json.Marshal(event.Metadata)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal audit event metadata")
		}
	}

	query := `INSERT INTO audit_events (` + eventColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := querier.ExecContext(
		ctx,
		query,
		event.ID,
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
func (p *PostgreSQLEventRepository) ListBetween(
	ctx context.Context,
	from, to time.Time,
	offset, limit int,
) ([]*auditDomain.Event, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + eventColumns + ` FROM audit_events
			  WHERE created_at >= $1 AND created_at < $2
			  ORDER BY created_at ASC, id ASC
			  LIMIT $3 OFFSET $4`

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
		var metadataJSON []byte
		if err := rows.Scan(
			&event.ID,
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
		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &event.Metadata); err != nil {
				return nil, apperrors.Wrap(err, "failed to unmarshal audit event metadata")
			}
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit events")
	}
	return events, nil
}

// DeleteOlderThan removes events created before the cutoff.
func (p *PostgreSQLEventRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM audit_events WHERE created_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete audit events")
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return count, nil
}

// NewPostgreSQLEventRepository creates a new PostgreSQL audit event repository.
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{db: db}
}
