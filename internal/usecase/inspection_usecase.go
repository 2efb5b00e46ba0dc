package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/engine"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// RecordFindingRequest carries one observed condition to evaluate
type RecordFindingRequest struct {
	InspectionID  string              `json:"inspection_id"`
	FindingType   string              `json:"finding_type" validate:"required"`
	Category      domain.RuleCategory `json:"category" validate:"required"`
	ComponentCode string              `json:"component_code,omitempty"`
	ObservedData  domain.ObservedData `json:"observed_data"`
	Notes         string              `json:"notes,omitempty"`
}

// InspectionUseCase drives the inspection flow: start, record findings
// (matcher + evaluator + aggregator run synchronously in-process on
// already-loaded rules), and triage resolution. Inspection status is
// always re-derived from persisted findings, never set directly.
type InspectionUseCase struct {
	versionRepo    ports.VersionRepository
	inspectionRepo ports.InspectionRepository
	findingRepo    ports.FindingRepository
	changeLogRepo  ports.ChangeLogRepository
	inspectorRepo  ports.InspectorRepository
	ruleCache      ports.RuleCache
}

// NewInspectionUseCase creates a new inspection use case
func NewInspectionUseCase(
	versionRepo ports.VersionRepository,
	inspectionRepo ports.InspectionRepository,
	findingRepo ports.FindingRepository,
	changeLogRepo ports.ChangeLogRepository,
	inspectorRepo ports.InspectorRepository,
	ruleCache ports.RuleCache,
) *InspectionUseCase {
	return &InspectionUseCase{
		versionRepo:    versionRepo,
		inspectionRepo: inspectionRepo,
		findingRepo:    findingRepo,
		changeLogRepo:  changeLogRepo,
		inspectorRepo:  inspectorRepo,
		ruleCache:      ruleCache,
	}
}

// StartInspection creates a PENDING inspection against a rule version.
// With an explicit versionID the version must be evaluable right now:
// ACTIVE, enabled, and inside its effective window. Without one, exactly
// one such version must exist: zero is ErrNoActiveVersion, more than one
// is ErrAmbiguousActiveVersion so cross-version precedence is never
// decided implicitly.
func (uc *InspectionUseCase) StartInspection(ctx context.Context, assetRef string, inspType domain.InspectionType, versionID, inspectorID string) (*domain.Inspection, error) {
	if inspectorID == "" {
		return nil, domain.ErrEmptyActor
	}

	if versionID != "" {
		version, err := uc.versionRepo.FindByID(ctx, versionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get version: %w", err)
		}
		if version.Status != domain.VersionStatusActive {
			return nil, fmt.Errorf("version %s is %s, new inspections require an ACTIVE version", versionID, version.Status)
		}
		if !version.IsEvaluable(time.Now().UTC()) {
			return nil, fmt.Errorf("version %s: %w", versionID, domain.ErrVersionNotEvaluable)
		}
	} else {
		candidates, err := uc.versionRepo.ListEvaluable(ctx, time.Now().UTC())
		if err != nil {
			return nil, fmt.Errorf("failed to select rule version: %w", err)
		}
		switch len(candidates) {
		case 0:
			return nil, domain.ErrNoActiveVersion
		case 1:
			versionID = candidates[0].ID
		default:
			return nil, domain.ErrAmbiguousActiveVersion
		}
	}

	inspection := domain.NewInspection(assetRef, inspType, versionID, inspectorID)
	if err := inspection.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid inspection: %w", err)
	}

	if err := uc.inspectionRepo.Create(ctx, inspection); err != nil {
		return nil, fmt.Errorf("failed to create inspection: %w", err)
	}

	return inspection, nil
}

// GetInspection retrieves an inspection by ID
func (uc *InspectionUseCase) GetInspection(ctx context.Context, inspectionID string) (*domain.Inspection, error) {
	if inspectionID == "" {
		return nil, fmt.Errorf("inspection ID is required")
	}
	inspection, err := uc.inspectionRepo.FindByID(ctx, inspectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inspection: %w", err)
	}
	return inspection, nil
}

// ListFindings retrieves all findings for an inspection
func (uc *InspectionUseCase) ListFindings(ctx context.Context, inspectionID string) ([]*domain.Finding, error) {
	if inspectionID == "" {
		return nil, fmt.Errorf("inspection ID is required")
	}
	findings, err := uc.findingRepo.ListByInspection(ctx, inspectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	return findings, nil
}

// RecordFinding records one observed condition, evaluates it against the
// inspection's rule version, and rolls the result up into the inspection
// status. Matching, evaluation, and aggregation run as a single
// synchronous step with no I/O in between.
func (uc *InspectionUseCase) RecordFinding(ctx context.Context, req RecordFindingRequest) (*domain.Finding, error) {
	if req.InspectionID == "" {
		return nil, fmt.Errorf("inspection ID is required")
	}

	inspection, err := uc.inspectionRepo.FindByID(ctx, req.InspectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inspection: %w", err)
	}

	rules, err := uc.loadRules(ctx, inspection.VersionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	finding := domain.NewFinding(req.InspectionID, req.FindingType, req.Category, req.ComponentCode, req.ObservedData, req.Notes)
	if err := finding.IsValid(); err != nil {
		return nil, fmt.Errorf("invalid finding: %w", err)
	}

	matched := engine.MatchRules(rules, req.Category, req.ComponentCode)
	result := engine.Score(matched, req.ObservedData)
	finding.Outcome = result.Outcome
	finding.MatchedRuleIDs = result.MatchedRuleIDs
	finding.TriggeredRuleIDs = result.TriggeredRuleIDs
	finding.Explanations = result.Explanations

	if err := uc.findingRepo.Create(ctx, finding); err != nil {
		return nil, fmt.Errorf("failed to create finding: %w", err)
	}

	if err := uc.recomputeInspection(ctx, inspection); err != nil {
		return nil, err
	}

	return finding, nil
}

// ResolveTriage confirms or downgrades a TRIAGE finding. Only a
// triage-qualified inspector may resolve; the resolution is audited and
// the inspection status recomputed.
func (uc *InspectionUseCase) ResolveTriage(ctx context.Context, findingID string, resolved domain.Outcome, actorID, reason string) (*domain.Finding, error) {
	if findingID == "" {
		return nil, fmt.Errorf("finding ID is required")
	}

	inspector, err := uc.inspectorRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	if !inspector.QualifiedForTriage {
		return nil, domain.ErrInspectorNotQualified
	}

	finding, err := uc.findingRepo.FindByID(ctx, findingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get finding: %w", err)
	}

	if err := finding.ResolveTriage(resolved, actorID, reason); err != nil {
		return nil, fmt.Errorf("failed to resolve triage: %w", err)
	}

	if err := uc.findingRepo.UpdateResolution(ctx, finding); err != nil {
		return nil, fmt.Errorf("failed to persist resolution: %w", err)
	}

	action := domain.AuditActionTriageConfirmed
	summary := fmt.Sprintf("Confirmed %s on finding %s", resolved, finding.ID)
	if resolved == domain.OutcomeNotOOS {
		action = domain.AuditActionTriageDowngraded
		summary = fmt.Sprintf("Downgraded finding %s to NOT_OOS", finding.ID)
	}
	entry := domain.NewChangeLogEntry(
		domain.AuditEntityFinding,
		finding.ID,
		action,
		summary,
		actorID,
		map[string]string{
			"resolved_outcome": string(resolved),
			"reason":           reason,
		},
	)
	if err := uc.changeLogRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record triage resolution: %w", err)
	}

	inspection, err := uc.inspectionRepo.FindByID(ctx, finding.InspectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inspection: %w", err)
	}
	if err := uc.recomputeInspection(ctx, inspection); err != nil {
		return nil, err
	}

	return finding, nil
}

// loadRules fetches a version's rule set, preferring the cache. ACTIVE
// rule sets are immutable so cache hits never serve stale data.
func (uc *InspectionUseCase) loadRules(ctx context.Context, versionID string) ([]*domain.Rule, error) {
	if uc.ruleCache != nil {
		if rules, err := uc.ruleCache.GetRules(ctx, versionID); err == nil && rules != nil {
			return rules, nil
		}
	}

	rules, err := uc.versionRepo.ListRules(ctx, versionID)
	if err != nil {
		return nil, err
	}

	if uc.ruleCache != nil {
		_ = uc.ruleCache.PutRules(ctx, versionID, rules)
	}
	return rules, nil
}

func (uc *InspectionUseCase) recomputeInspection(ctx context.Context, inspection *domain.Inspection) error {
	findings, err := uc.findingRepo.ListByInspection(ctx, inspection.ID)
	if err != nil {
		return fmt.Errorf("failed to list findings: %w", err)
	}
	inspection.Recompute(findings)
	if err := uc.inspectionRepo.UpdateStatus(ctx, inspection); err != nil {
		return fmt.Errorf("failed to update inspection status: %w", err)
	}
	return nil
}
