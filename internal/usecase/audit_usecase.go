package usecase

import (
	"context"
	"fmt"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// AuditUseCase exposes the append-only change log for review
type AuditUseCase struct {
	changeLogRepo ports.ChangeLogRepository
}

// NewAuditUseCase creates a new audit use case
func NewAuditUseCase(changeLogRepo ports.ChangeLogRepository) *AuditUseCase {
	return &AuditUseCase{changeLogRepo: changeLogRepo}
}

// ListByEntity retrieves the audit trail for one entity, newest first
func (uc *AuditUseCase) ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string, limit int) ([]*domain.ChangeLogEntry, error) {
	if entityID == "" {
		return nil, fmt.Errorf("entity ID is required")
	}
	switch entityType {
	case domain.AuditEntityRuleVersion, domain.AuditEntityFinding:
	default:
		return nil, fmt.Errorf("unknown audit entity type: %s", entityType)
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	entries, err := uc.changeLogRepo.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
