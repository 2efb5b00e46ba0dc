package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// PostgresInspectionRepository implements InspectionRepository using PostgreSQL
type PostgresInspectionRepository struct {
	db *sql.DB
}

// NewPostgresInspectionRepository creates a new PostgreSQL inspection repository
func NewPostgresInspectionRepository(db *sql.DB) ports.InspectionRepository {
	return &PostgresInspectionRepository{db: db}
}

// Create saves a new inspection
func (r *PostgresInspectionRepository) Create(ctx context.Context, inspection *domain.Inspection) error {
	query := `
		INSERT INTO inspections (id, asset_ref, type, version_id, inspector_id, status, started_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		inspection.ID,
		inspection.AssetRef,
		string(inspection.Type),
		inspection.VersionID,
		inspection.InspectorID,
		string(inspection.Status),
		inspection.StartedAt,
		inspection.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inspection: %w", err)
	}

	return nil
}

// FindByID retrieves an inspection by its ID
func (r *PostgresInspectionRepository) FindByID(ctx context.Context, id string) (*domain.Inspection, error) {
	query := `
		SELECT id, asset_ref, type, version_id, inspector_id, status, started_at, updated_at
		FROM inspections
		WHERE id = $1
	`

	var inspection domain.Inspection
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inspection.ID,
		&inspection.AssetRef,
		&inspection.Type,
		&inspection.VersionID,
		&inspection.InspectorID,
		&inspection.Status,
		&inspection.StartedAt,
		&inspection.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrInspectionNotFound
		}
		return nil, fmt.Errorf("failed to find inspection: %w", err)
	}

	return &inspection, nil
}

// UpdateStatus persists a recomputed inspection status
func (r *PostgresInspectionRepository) UpdateStatus(ctx context.Context, inspection *domain.Inspection) error {
	query := `UPDATE inspections SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, inspection.ID, string(inspection.Status), inspection.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update inspection: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrInspectionNotFound
	}

	return nil
}

// List retrieves inspections for an asset, newest first
func (r *PostgresInspectionRepository) List(ctx context.Context, assetRef string, limit, offset int) ([]*domain.Inspection, error) {
	query := `
		SELECT id, asset_ref, type, version_id, inspector_id, status, started_at, updated_at
		FROM inspections
		WHERE asset_ref = $1
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3
	`

	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, query, assetRef, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query inspections: %w", err)
	}
	defer rows.Close()

	var inspections []*domain.Inspection
	for rows.Next() {
		var inspection domain.Inspection
		err := rows.Scan(
			&inspection.ID,
			&inspection.AssetRef,
			&inspection.Type,
			&inspection.VersionID,
			&inspection.InspectorID,
			&inspection.Status,
			&inspection.StartedAt,
			&inspection.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		inspections = append(inspections, &inspection)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inspections: %w", err)
	}

	return inspections, nil
}
