package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// PostgresSourceRepository implements SourceRepository using PostgreSQL
type PostgresSourceRepository struct {
	db *sql.DB
}

// NewPostgresSourceRepository creates a new PostgreSQL source repository
func NewPostgresSourceRepository(db *sql.DB) ports.SourceRepository {
	return &PostgresSourceRepository{db: db}
}

// Create saves a new regulatory source
func (r *PostgresSourceRepository) Create(ctx context.Context, source *domain.RegulatorySource) error {
	query := `
		INSERT INTO regulatory_sources (id, title, type, url, published_at, content_hash, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		source.ID,
		source.Title,
		string(source.Type),
		source.URL,
		source.PublishedAt,
		source.ContentHash,
		source.Notes,
		source.CreatedAt,
		source.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	return nil
}

// FindByID retrieves a regulatory source by its ID
func (r *PostgresSourceRepository) FindByID(ctx context.Context, id string) (*domain.RegulatorySource, error) {
	query := `
		SELECT id, title, type, url, published_at, content_hash, notes, created_at, updated_at
		FROM regulatory_sources
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// FindByTitle retrieves a regulatory source by its exact title
func (r *PostgresSourceRepository) FindByTitle(ctx context.Context, title string) (*domain.RegulatorySource, error) {
	query := `
		SELECT id, title, type, url, published_at, content_hash, notes, created_at, updated_at
		FROM regulatory_sources
		WHERE title = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, title))
}

// List retrieves all regulatory sources
func (r *PostgresSourceRepository) List(ctx context.Context) ([]*domain.RegulatorySource, error) {
	query := `
		SELECT id, title, type, url, published_at, content_hash, notes, created_at, updated_at
		FROM regulatory_sources
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []*domain.RegulatorySource
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sources: %w", err)
	}

	return sources, nil
}

// Update applies a corrective edit to an existing source
func (r *PostgresSourceRepository) Update(ctx context.Context, source *domain.RegulatorySource) error {
	query := `
		UPDATE regulatory_sources
		SET title = $2, type = $3, url = $4, published_at = $5, content_hash = $6, notes = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		source.ID,
		source.Title,
		string(source.Type),
		source.URL,
		source.PublishedAt,
		source.ContentHash,
		source.Notes,
		source.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrSourceNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresSourceRepository) scanOne(row *sql.Row) (*domain.RegulatorySource, error) {
	source, err := scanSource(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrSourceNotFound
		}
		return nil, err
	}
	return source, nil
}

func scanSource(row rowScanner) (*domain.RegulatorySource, error) {
	var source domain.RegulatorySource
	var url, contentHash, notes sql.NullString
	var publishedAt sql.NullTime

	err := row.Scan(
		&source.ID,
		&source.Title,
		&source.Type,
		&url,
		&publishedAt,
		&contentHash,
		&notes,
		&source.CreatedAt,
		&source.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}

	source.URL = url.String
	source.ContentHash = contentHash.String
	source.Notes = notes.String
	if publishedAt.Valid {
		source.PublishedAt = &publishedAt.Time
	}

	return &source, nil
}
