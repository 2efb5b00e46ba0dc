package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// AddRuleRequest carries the attributes of a rule being added to a draft
type AddRuleRequest struct {
	VersionID     string               `json:"version_id"`
	Category      domain.RuleCategory  `json:"category" validate:"required"`
	ComponentCode string               `json:"component_code,omitempty"`
	Title         string               `json:"title" validate:"required,min=3,max=200"`
	Condition     *domain.Condition    `json:"condition" validate:"required"`
	Outcome       domain.Outcome       `json:"outcome" validate:"required"`
	IsTriageOnly  bool                 `json:"is_triage_only"`
	Citation      string               `json:"citation,omitempty"`
	CitationURL   string               `json:"citation_url,omitempty"`
	Explanation   string               `json:"explanation,omitempty"`
}

// VersionUseCase manages the rule-version lifecycle: drafting, rule
// population, activation, retirement, and the enabled toggle. Every
// state transition writes exactly one change log entry.
type VersionUseCase struct {
	versionRepo   ports.VersionRepository
	sourceRepo    ports.SourceRepository
	changeLogRepo ports.ChangeLogRepository
	codeResolver  ports.ComponentCodeResolver
	ruleCache     ports.RuleCache
}

// NewVersionUseCase creates a new version use case
func NewVersionUseCase(
	versionRepo ports.VersionRepository,
	sourceRepo ports.SourceRepository,
	changeLogRepo ports.ChangeLogRepository,
	codeResolver ports.ComponentCodeResolver,
	ruleCache ports.RuleCache,
) *VersionUseCase {
	return &VersionUseCase{
		versionRepo:   versionRepo,
		sourceRepo:    sourceRepo,
		changeLogRepo: changeLogRepo,
		codeResolver:  codeResolver,
		ruleCache:     ruleCache,
	}
}

// CreateVersion creates a rule version in DRAFT derived from the given
// regulatory sources
func (uc *VersionUseCase) CreateVersion(ctx context.Context, name string, sourceIDs []string, effectiveStart time.Time, actorID string) (*domain.RuleVersion, error) {
	if name == "" {
		return nil, fmt.Errorf("version name is required")
	}
	if effectiveStart.IsZero() {
		return nil, fmt.Errorf("effective start is required")
	}
	if actorID == "" {
		return nil, domain.ErrEmptyActor
	}

	for _, sourceID := range sourceIDs {
		if _, err := uc.sourceRepo.FindByID(ctx, sourceID); err != nil {
			return nil, fmt.Errorf("failed to resolve source %s: %w", sourceID, err)
		}
	}

	version := domain.NewRuleVersion(name, sourceIDs, effectiveStart)
	if err := uc.versionRepo.Create(ctx, version); err != nil {
		return nil, fmt.Errorf("failed to create version: %w", err)
	}

	entry := domain.NewChangeLogEntry(
		domain.AuditEntityRuleVersion,
		version.ID,
		domain.AuditActionVersionCreated,
		fmt.Sprintf("Created draft version %q effective from %s", name, effectiveStart.Format("2006-01-02")),
		actorID,
		map[string]string{"name": name},
	)
	if err := uc.changeLogRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record version creation: %w", err)
	}

	return version, nil
}

// GetVersion retrieves a rule version by ID
func (uc *VersionUseCase) GetVersion(ctx context.Context, versionID string) (*domain.RuleVersion, error) {
	if versionID == "" {
		return nil, fmt.Errorf("version ID is required")
	}
	version, err := uc.versionRepo.FindByID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// ListVersions retrieves all rule versions, newest first
func (uc *VersionUseCase) ListVersions(ctx context.Context) ([]*domain.RuleVersion, error) {
	versions, err := uc.versionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

// ListRules retrieves a version's rules in insertion order
func (uc *VersionUseCase) ListRules(ctx context.Context, versionID string) ([]*domain.Rule, error) {
	if versionID == "" {
		return nil, fmt.Errorf("version ID is required")
	}
	rules, err := uc.versionRepo.ListRules(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, nil
}

// AddRule appends a rule to a DRAFT version. Condition-tree
// well-formedness is deliberately deferred to activation; only basic
// field and taxonomy checks happen here so drafting stays permissive.
func (uc *VersionUseCase) AddRule(ctx context.Context, req AddRuleRequest) (*domain.Rule, error) {
	if req.VersionID == "" {
		return nil, fmt.Errorf("version ID is required")
	}

	version, err := uc.versionRepo.FindByID(ctx, req.VersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	if version.Status != domain.VersionStatusDraft {
		return nil, domain.ErrVersionNotDraft
	}

	if req.ComponentCode != "" && uc.codeResolver != nil {
		known, err := uc.codeResolver.IsKnown(ctx, req.ComponentCode)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve component code: %w", err)
		}
		if !known {
			return nil, fmt.Errorf("unknown component code: %s", req.ComponentCode)
		}
	}

	position, err := uc.versionRepo.CountRules(ctx, req.VersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count rules: %w", err)
	}

	rule := domain.NewRule(req.VersionID, req.Category, req.ComponentCode, req.Title, req.Condition, req.Outcome, req.IsTriageOnly, req.Citation, req.CitationURL, req.Explanation, position+1)
	if err := rule.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid rule: %w", err)
	}

	if err := uc.versionRepo.AddRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to add rule: %w", err)
	}

	return rule, nil
}

// ActivateVersion promotes a DRAFT version to ACTIVE. All condition
// trees are statically validated here; a malformed tree fails the whole
// activation with RuleDefinitionError and leaves the version in DRAFT.
// Concurrent activations of the same draft are serialized by the
// repository's revision check: exactly one writer wins, the other gets
// StaleVersionError.
func (uc *VersionUseCase) ActivateVersion(ctx context.Context, versionID, actorID string) (*domain.RuleVersion, error) {
	if actorID == "" {
		return nil, domain.ErrEmptyActor
	}

	version, err := uc.versionRepo.FindByID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	loadedRevision := version.Revision

	rules, err := uc.versionRepo.ListRules(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	if err := version.Activate(rules); err != nil {
		return nil, fmt.Errorf("failed to activate version: %w", err)
	}

	if err := uc.versionRepo.UpdateWithRevision(ctx, version, loadedRevision); err != nil {
		return nil, fmt.Errorf("failed to persist activation: %w", err)
	}

	entry := domain.NewChangeLogEntry(
		domain.AuditEntityRuleVersion,
		version.ID,
		domain.AuditActionVersionActivated,
		fmt.Sprintf("Activated version %q with %d rules", version.Name, len(rules)),
		actorID,
		map[string]string{"rule_count": fmt.Sprintf("%d", len(rules))},
	)
	if err := uc.changeLogRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record activation: %w", err)
	}

	// Rules are immutable from here on; prime the cache for inspections.
	if uc.ruleCache != nil {
		_ = uc.ruleCache.PutRules(ctx, version.ID, rules)
	}

	return version, nil
}

// RetireVersion moves an ACTIVE version to its terminal RETIRED state
func (uc *VersionUseCase) RetireVersion(ctx context.Context, versionID, actorID string) (*domain.RuleVersion, error) {
	if actorID == "" {
		return nil, domain.ErrEmptyActor
	}

	version, err := uc.versionRepo.FindByID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	loadedRevision := version.Revision

	if err := version.Retire(); err != nil {
		return nil, fmt.Errorf("failed to retire version: %w", err)
	}

	if err := uc.versionRepo.UpdateWithRevision(ctx, version, loadedRevision); err != nil {
		return nil, fmt.Errorf("failed to persist retirement: %w", err)
	}

	entry := domain.NewChangeLogEntry(
		domain.AuditEntityRuleVersion,
		version.ID,
		domain.AuditActionVersionRetired,
		fmt.Sprintf("Retired version %q", version.Name),
		actorID,
		nil,
	)
	if err := uc.changeLogRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record retirement: %w", err)
	}

	return version, nil
}

// SetVersionEnabled toggles a version's evaluation eligibility without a
// lifecycle transition. The toggle is audited like a transition.
func (uc *VersionUseCase) SetVersionEnabled(ctx context.Context, versionID string, enabled bool, actorID string) (*domain.RuleVersion, error) {
	if actorID == "" {
		return nil, domain.ErrEmptyActor
	}

	version, err := uc.versionRepo.FindByID(ctx, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	loadedRevision := version.Revision

	if err := version.SetEnabled(enabled); err != nil {
		return nil, fmt.Errorf("failed to toggle version: %w", err)
	}

	if err := uc.versionRepo.UpdateWithRevision(ctx, version, loadedRevision); err != nil {
		return nil, fmt.Errorf("failed to persist toggle: %w", err)
	}

	action := domain.AuditActionVersionEnabled
	verb := "Enabled"
	if !enabled {
		action = domain.AuditActionVersionDisabled
		verb = "Disabled"
	}
	entry := domain.NewChangeLogEntry(
		domain.AuditEntityRuleVersion,
		version.ID,
		action,
		fmt.Sprintf("%s version %q for evaluation", verb, version.Name),
		actorID,
		nil,
	)
	if err := uc.changeLogRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record toggle: %w", err)
	}

	return version, nil
}
