package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntityType keys change log entries to the entity they describe
type AuditEntityType string

const (
	AuditEntityRuleVersion AuditEntityType = "RULE_VERSION"
	AuditEntityFinding     AuditEntityType = "FINDING"
)

// AuditAction is the structured reason for a change log entry
type AuditAction string

const (
	AuditActionVersionCreated   AuditAction = "VERSION_CREATED"
	AuditActionVersionActivated AuditAction = "VERSION_ACTIVATED"
	AuditActionVersionRetired   AuditAction = "VERSION_RETIRED"
	AuditActionVersionEnabled   AuditAction = "VERSION_ENABLED"
	AuditActionVersionDisabled  AuditAction = "VERSION_DISABLED"
	AuditActionTriageConfirmed  AuditAction = "TRIAGE_CONFIRMED"
	AuditActionTriageDowngraded AuditAction = "TRIAGE_DOWNGRADED"
)

// ChangeLogEntry is one append-only audit record. Every rule-version
// state transition and every triage resolution produces exactly one.
type ChangeLogEntry struct {
	ID         string            `json:"id"`
	EntityType AuditEntityType   `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Action     AuditAction       `json:"action"`
	Summary    string            `json:"summary"`
	ActorID    string            `json:"actor_id"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewChangeLogEntry creates an audit record
func NewChangeLogEntry(entityType AuditEntityType, entityID string, action AuditAction, summary, actorID string, metadata map[string]string) *ChangeLogEntry {
	return &ChangeLogEntry{
		ID:         "log_" + uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Summary:    summary,
		ActorID:    actorID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
}
