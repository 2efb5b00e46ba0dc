package ports

import (
	"context"
	"time"

	"github.com/fleetworks/fleetworks/internal/domain"
)

// SourceRepository defines the interface for regulatory source persistence
type SourceRepository interface {
	// Create saves a new regulatory source
	Create(ctx context.Context, source *domain.RegulatorySource) error

	// FindByID retrieves a regulatory source by its ID
	FindByID(ctx context.Context, id string) (*domain.RegulatorySource, error)

	// FindByTitle retrieves a regulatory source by its exact title
	FindByTitle(ctx context.Context, title string) (*domain.RegulatorySource, error)

	// List retrieves all regulatory sources
	List(ctx context.Context) ([]*domain.RegulatorySource, error)

	// Update applies a corrective edit to an existing source
	Update(ctx context.Context, source *domain.RegulatorySource) error
}

// VersionRepository defines the interface for rule version persistence.
// Lifecycle mutations go through UpdateWithRevision, which enforces the
// single-writer discipline: the update only applies if the stored
// revision still equals expectedRevision, otherwise it returns
// StaleVersionError.
type VersionRepository interface {
	// Create saves a new rule version
	Create(ctx context.Context, version *domain.RuleVersion) error

	// FindByID retrieves a rule version by its ID
	FindByID(ctx context.Context, id string) (*domain.RuleVersion, error)

	// List retrieves all rule versions, newest first
	List(ctx context.Context) ([]*domain.RuleVersion, error)

	// ListEvaluable retrieves the enabled ACTIVE versions whose
	// effective window covers the given instant
	ListEvaluable(ctx context.Context, at time.Time) ([]*domain.RuleVersion, error)

	// UpdateWithRevision persists a lifecycle mutation under the
	// optimistic revision check, bumping the stored revision on success
	UpdateWithRevision(ctx context.Context, version *domain.RuleVersion, expectedRevision int) error

	// AddRule appends a rule to a DRAFT version
	AddRule(ctx context.Context, rule *domain.Rule) error

	// ListRules retrieves a version's rules in insertion order
	ListRules(ctx context.Context, versionID string) ([]*domain.Rule, error)

	// CountRules returns the number of rules in a version
	CountRules(ctx context.Context, versionID string) (int, error)
}

// InspectionRepository defines the interface for inspection persistence
type InspectionRepository interface {
	// Create saves a new inspection
	Create(ctx context.Context, inspection *domain.Inspection) error

	// FindByID retrieves an inspection by its ID
	FindByID(ctx context.Context, id string) (*domain.Inspection, error)

	// UpdateStatus persists a recomputed inspection status
	UpdateStatus(ctx context.Context, inspection *domain.Inspection) error

	// List retrieves inspections for an asset, newest first
	List(ctx context.Context, assetRef string, limit, offset int) ([]*domain.Inspection, error)
}

// FindingRepository defines the interface for finding persistence
type FindingRepository interface {
	// Create saves a new finding
	Create(ctx context.Context, finding *domain.Finding) error

	// FindByID retrieves a finding by its ID
	FindByID(ctx context.Context, id string) (*domain.Finding, error)

	// ListByInspection retrieves all findings for an inspection
	ListByInspection(ctx context.Context, inspectionID string) ([]*domain.Finding, error)

	// UpdateResolution persists a triage resolution
	UpdateResolution(ctx context.Context, finding *domain.Finding) error
}

// ChangeLogRepository defines the interface for the append-only audit log
type ChangeLogRepository interface {
	// Append records a change log entry
	Append(ctx context.Context, entry *domain.ChangeLogEntry) error

	// ListByEntity retrieves entries for one entity, newest first
	ListByEntity(ctx context.Context, entityType domain.AuditEntityType, entityID string, limit int) ([]*domain.ChangeLogEntry, error)
}

// InspectorRepository defines the interface for inspector identity lookup
type InspectorRepository interface {
	// Create saves a new inspector
	Create(ctx context.Context, inspector *domain.Inspector) error

	// FindByID retrieves an inspector by its ID
	FindByID(ctx context.Context, id string) (*domain.Inspector, error)

	// FindByBadge retrieves an inspector by badge number
	FindByBadge(ctx context.Context, badge string) (*domain.Inspector, error)
}
