package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// CreateSourceRequest carries the attributes of a regulatory source
type CreateSourceRequest struct {
	Title       string            `json:"title" validate:"required"`
	Type        domain.SourceType `json:"type" validate:"required"`
	URL         string            `json:"url,omitempty"`
	Content     string            `json:"content,omitempty"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
	Notes       string            `json:"notes,omitempty"`
}

// SourceUseCase manages regulatory source provenance records
type SourceUseCase struct {
	sourceRepo ports.SourceRepository
}

// NewSourceUseCase creates a new source use case
func NewSourceUseCase(sourceRepo ports.SourceRepository) *SourceUseCase {
	return &SourceUseCase{sourceRepo: sourceRepo}
}

// CreateSource registers a regulatory source, hashing its cited content
// for later change detection
func (uc *SourceUseCase) CreateSource(ctx context.Context, req CreateSourceRequest) (*domain.RegulatorySource, error) {
	source := domain.NewRegulatorySource(req.Title, req.Type, req.URL, req.Content, req.Notes)
	source.PublishedAt = req.PublishedAt
	if err := source.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid source: %w", err)
	}
	if err := uc.sourceRepo.Create(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to create source: %w", err)
	}
	return source, nil
}

// GetSource retrieves a regulatory source by ID
func (uc *SourceUseCase) GetSource(ctx context.Context, sourceID string) (*domain.RegulatorySource, error) {
	if sourceID == "" {
		return nil, fmt.Errorf("source ID is required")
	}
	source, err := uc.sourceRepo.FindByID(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}
	return source, nil
}

// ListSources retrieves all regulatory sources
func (uc *SourceUseCase) ListSources(ctx context.Context) ([]*domain.RegulatorySource, error) {
	sources, err := uc.sourceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	return sources, nil
}

// SeedSource upserts a source by title: new titles are created, existing
// ones get a corrective edit only when the content hash changed. Returns
// the source and whether anything was written.
func (uc *SourceUseCase) SeedSource(ctx context.Context, req CreateSourceRequest) (*domain.RegulatorySource, bool, error) {
	existing, err := uc.sourceRepo.FindByTitle(ctx, req.Title)
	if err != nil {
		if !errors.Is(err, domain.ErrSourceNotFound) {
			return nil, false, fmt.Errorf("failed to look up source: %w", err)
		}
		source, err := uc.CreateSource(ctx, req)
		if err != nil {
			return nil, false, err
		}
		return source, true, nil
	}

	newHash := domain.HashContent(req.Content)
	if newHash == existing.ContentHash {
		return existing, false, nil
	}

	existing.ContentHash = newHash
	existing.URL = req.URL
	existing.PublishedAt = req.PublishedAt
	existing.Notes = req.Notes
	existing.UpdatedAt = time.Now().UTC()
	if err := uc.sourceRepo.Update(ctx, existing); err != nil {
		return nil, false, fmt.Errorf("failed to update source: %w", err)
	}
	return existing, true, nil
}
