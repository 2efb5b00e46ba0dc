package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// PostgresInspectorRepository implements InspectorRepository using PostgreSQL
type PostgresInspectorRepository struct {
	db *sql.DB
}

// NewPostgresInspectorRepository creates a new PostgreSQL inspector repository
func NewPostgresInspectorRepository(db *sql.DB) ports.InspectorRepository {
	return &PostgresInspectorRepository{db: db}
}

// Create saves a new inspector
func (r *PostgresInspectorRepository) Create(ctx context.Context, inspector *domain.Inspector) error {
	query := `
		INSERT INTO inspectors (id, name, badge, access_code_hash, qualified_for_triage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		inspector.ID,
		inspector.Name,
		inspector.Badge,
		inspector.AccessCodeHash,
		inspector.QualifiedForTriage,
		inspector.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create inspector: %w", err)
	}

	return nil
}

// FindByID retrieves an inspector by its ID
func (r *PostgresInspectorRepository) FindByID(ctx context.Context, id string) (*domain.Inspector, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByBadge retrieves an inspector by badge number
func (r *PostgresInspectorRepository) FindByBadge(ctx context.Context, badge string) (*domain.Inspector, error) {
	return r.findOne(ctx, `WHERE badge = $1`, badge)
}

func (r *PostgresInspectorRepository) findOne(ctx context.Context, where string, arg interface{}) (*domain.Inspector, error) {
	query := `
		SELECT id, name, badge, access_code_hash, qualified_for_triage, created_at
		FROM inspectors ` + where

	var inspector domain.Inspector
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&inspector.ID,
		&inspector.Name,
		&inspector.Badge,
		&inspector.AccessCodeHash,
		&inspector.QualifiedForTriage,
		&inspector.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrInspectorNotFound
		}
		return nil, fmt.Errorf("failed to find inspector: %w", err)
	}

	return &inspector, nil
}
