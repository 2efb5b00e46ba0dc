package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// PostgresChangeLogRepository implements ChangeLogRepository using
// PostgreSQL. The table is append-only; there is no update or delete.
type PostgresChangeLogRepository struct {
	db *sql.DB
}

// NewPostgresChangeLogRepository creates a new PostgreSQL change log repository
func NewPostgresChangeLogRepository(db *sql.DB) ports.ChangeLogRepository {
	return &PostgresChangeLogRepository{db: db}
}

// Append records a change log entry
func (r *PostgresChangeLogRepository) Append(ctx context.Context, entry *domain.ChangeLogEntry) error {
	query := `
		INSERT INTO change_log (id, entity_type, entity_id, action, summary, actor_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var metadataJSON []byte
	var err error
	if entry.Metadata != nil {
		metadataJSON, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		string(entry.EntityType),
		entry.EntityID,
		string(entry.Action),
		entry.Summary,
		entry.ActorID,
		metadataJSON,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append change log entry: %w", err)
	}

	return nil
}

// ListByEntity retrieves entries for one entity, newest first
func (r *PostgresChangeLogRepository) ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string, limit int) ([]*domain.ChangeLogEntry, error) {
	query := `
		SELECT id, entity_type, entity_id, action, summary, actor_id, metadata, created_at
		FROM change_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, string(entityType), entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query change log: %w", err)
	}
	defer rows.Close()

	var entries []*domain.ChangeLogEntry
	for rows.Next() {
		var entry domain.ChangeLogEntry
		var metadataJSON []byte

		err := rows.Scan(
			&entry.ID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Action,
			&entry.Summary,
			&entry.ActorID,
			&metadataJSON,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change log entry: %w", err)
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}

		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change log: %w", err)
	}

	return entries, nil
}
