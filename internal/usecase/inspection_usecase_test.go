package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetworks/fleetworks/internal/adapter/persistence"
	"github.com/fleetworks/fleetworks/internal/domain"
)

type inspectionFixture struct {
	uc            *InspectionUseCase
	versions      *VersionUseCase
	versionRepo   *persistence.MemoryVersionRepository
	findingRepo   *persistence.MemoryFindingRepository
	inspectorRepo *persistence.MemoryInspectorRepository
	changeLog     *persistence.MemoryChangeLogRepository
}

func newInspectionFixture(t *testing.T) *inspectionFixture {
	t.Helper()
	versionRepo := persistence.NewMemoryVersionRepository()
	findingRepo := persistence.NewMemoryFindingRepository()
	inspectorRepo := persistence.NewMemoryInspectorRepository()
	changeLog := persistence.NewMemoryChangeLogRepository()

	return &inspectionFixture{
		uc: NewInspectionUseCase(
			versionRepo,
			persistence.NewMemoryInspectionRepository(),
			findingRepo,
			changeLog,
			inspectorRepo,
			nil,
		),
		versions:      NewVersionUseCase(versionRepo, persistence.NewMemorySourceRepository(), changeLog, nil, nil),
		versionRepo:   versionRepo,
		findingRepo:   findingRepo,
		inspectorRepo: inspectorRepo,
		changeLog:     changeLog,
	}
}

// activeVersion seeds and activates a version with the brake lining OOS
// rule and a triage-only frame rule.
func (f *inspectionFixture) activeVersion(t *testing.T) *domain.RuleVersion {
	t.Helper()
	ctx := context.Background()

	version, err := f.versions.CreateVersion(ctx, "OOSC 2026", nil, time.Now().UTC().Add(-time.Hour), "inspr_admin")
	require.NoError(t, err)

	rules := []AddRuleRequest{
		{
			VersionID:     version.ID,
			Category:      domain.RuleCategoryVehicle,
			ComponentCode: "BRAKE_LINING",
			Title:         "Brake lining below minimum",
			Condition:     &domain.Condition{Kind: domain.ConditionNumericCompare, Field: "lining_mm", Op: domain.CompareLT, Threshold: 3.0},
			Outcome:       domain.OutcomeOOSVehicle,
			Explanation:   "Brake lining measured {lining_mm}mm, below the 3.0mm minimum",
		},
		{
			VersionID:     version.ID,
			Category:      domain.RuleCategoryVehicle,
			ComponentCode: "FRAME_RAIL",
			Title:         "Frame crack near hanger needs review",
			Condition:     &domain.Condition{Kind: domain.ConditionEquals, Field: "frame_cracked", Value: true},
			Outcome:       domain.OutcomeTriage,
			IsTriageOnly:  true,
		},
	}
	for _, req := range rules {
		_, err := f.versions.AddRule(ctx, req)
		require.NoError(t, err)
	}

	activated, err := f.versions.ActivateVersion(ctx, version.ID, "inspr_admin")
	require.NoError(t, err)
	return activated
}

func (f *inspectionFixture) qualifiedInspector(t *testing.T) *domain.Inspector {
	t.Helper()
	inspector := domain.NewInspector("Sam Reyes", "INSP-7", "hash", true)
	require.NoError(t, f.inspectorRepo.Create(context.Background(), inspector))
	return inspector
}

func TestInspectionUseCase_StartInspectionDefaultVersion(t *testing.T) {
	f := newInspectionFixture(t)
	version := f.activeVersion(t)

	inspection, err := f.uc.StartInspection(context.Background(), "TRK-4821", domain.InspectionTypeRoadside, "", "inspr_1")
	require.NoError(t, err)

	assert.Equal(t, version.ID, inspection.VersionID)
	assert.Equal(t, domain.InspectionStatusPending, inspection.Status)
}

func TestInspectionUseCase_StartInspectionNoActiveVersion(t *testing.T) {
	f := newInspectionFixture(t)

	_, err := f.uc.StartInspection(context.Background(), "TRK-4821", domain.InspectionTypeRoadside, "", "inspr_1")
	assert.ErrorIs(t, err, domain.ErrNoActiveVersion)
}

func TestInspectionUseCase_StartInspectionAmbiguousVersions(t *testing.T) {
	f := newInspectionFixture(t)
	f.activeVersion(t)
	f.activeVersion(t)

	_, err := f.uc.StartInspection(context.Background(), "TRK-4821", domain.InspectionTypeRoadside, "", "inspr_1")
	assert.ErrorIs(t, err, domain.ErrAmbiguousActiveVersion)
}

func TestInspectionUseCase_StartInspectionExplicitVersionMustBeActive(t *testing.T) {
	f := newInspectionFixture(t)
	ctx := context.Background()

	draft, err := f.versions.CreateVersion(ctx, "Draft", nil, time.Now().UTC(), "inspr_admin")
	require.NoError(t, err)

	_, err = f.uc.StartInspection(ctx, "TRK-4821", domain.InspectionTypeRoadside, draft.ID, "inspr_1")
	assert.Error(t, err)
}

func TestInspectionUseCase_StartInspectionExplicitDisabledVersionRejected(t *testing.T) {
	f := newInspectionFixture(t)
	version := f.activeVersion(t)
	ctx := context.Background()

	_, err := f.versions.SetVersionEnabled(ctx, version.ID, false, "inspr_admin")
	require.NoError(t, err)

	_, err = f.uc.StartInspection(ctx, "TRK-4821", domain.InspectionTypeRoadside, version.ID, "inspr_1")
	assert.ErrorIs(t, err, domain.ErrVersionNotEvaluable, "a disabled version cannot anchor new inspections even when named explicitly")
}

func TestInspectionUseCase_RecordFindingOOS(t *testing.T) {
	f := newInspectionFixture(t)
	f.activeVersion(t)
	ctx := context.Background()

	inspection, err := f.uc.StartInspection(ctx, "TRK-4821", domain.InspectionTypeRoadside, "", "inspr_1")
	require.NoError(t, err)

	finding, err := f.uc.RecordFinding(ctx, RecordFindingRequest{
		InspectionID:  inspection.ID,
		FindingType:   "measurement",
		Category:      domain.RuleCategoryVehicle,
		ComponentCode: "BRAKE_LINING",
		ObservedData:  domain.ObservedData{"lining_mm": 2.5},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeOOSVehicle, finding.Outcome)
	assert.Len(t, finding.TriggeredRuleIDs, 1)
	require.Len(t, finding.Explanations, 1)
	assert.Equal(t, "Brake lining measured 2.5mm, below the 3.0mm minimum", finding.Explanations[0])

	updated, err := f.uc.GetInspection(ctx, inspection.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InspectionStatusOOS, updated.Status)
}

func TestInspectionUseCase_RecordFindingCleanPass(t *testing.T) {
	f := newInspectionFixture(t)
	f.activeVersion(t)
	ctx := context.Background()

	inspection, err := f.uc.StartInspection(ctx, "TRK-4821", domain.InspectionTypeLevel1, "", "inspr_1")
	require.NoError(t, err)

	finding, err := f.uc.RecordFinding(ctx, RecordFindingRequest{
		InspectionID:  inspection.ID,
		FindingType:   "measurement",
		Category:      domain.RuleCategoryVehicle,
		ComponentCode: "BRAKE_LINING",
		ObservedData:  domain.ObservedData{},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeNotOOS, finding.Outcome, "empty observed data must not trigger predicates")
	assert.Empty(t, finding.TriggeredRuleIDs)

	updated, err := f.uc.GetInspection(ctx, inspection.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InspectionStatusPass, updated.Status)
}

func TestInspectionUseCase_TriageFlow(t *testing.T) {
	f := newInspectionFixture(t)
	f.activeVersion(t)
	inspector := f.qualifiedInspector(t)
	ctx := context.Background()

	inspection, err := f.uc.StartInspection(ctx, "TRK-4821", domain.InspectionTypeAnnual, "", "inspr_1")
	require.NoError(t, err)

	finding, err := f.uc.RecordFinding(ctx, RecordFindingRequest{
		InspectionID:  inspection.ID,
		FindingType:   "visual",
		Category:      domain.RuleCategoryVehicle,
		ComponentCode: "FRAME_RAIL",
		ObservedData:  domain.ObservedData{"frame_cracked": true},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeTriage, finding.Outcome)

	pending, err := f.uc.GetInspection(ctx, inspection.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InspectionStatusPending, pending.Status, "unresolved triage keeps the inspection PENDING")

	resolved, err := f.uc.ResolveTriage(ctx, finding.ID, domain.OutcomeOOSVehicle, inspector.ID, "Crack runs through the hanger bracket")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeOOSVehicle, resolved.Outcome)
	assert.Equal(t, inspector.ID, resolved.ResolvedBy)

	final, err := f.uc.GetInspection(ctx, inspection.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InspectionStatusOOS, final.Status)

	entries, err := f.changeLog.ListByEntity(ctx, domain.AuditEntityFinding, finding.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionTriageConfirmed, entries[0].Action)
	assert.Equal(t, inspector.ID, entries[0].ActorID)
}

func TestInspectionUseCase_TriageDowngrade(t *testing.T) {
	f := newInspectionFixture(t)
	f.activeVersion(t)
	inspector := f.qualifiedInspector(t)
	ctx := context.Background()

	inspection, err := f.uc.StartInspection(ctx, "TRK-4821", domain.InspectionTypeAnnual, "", "inspr_1")
	require.NoError(t, err)

	finding, err := f.uc.RecordFinding(ctx, RecordFindingRequest{
		InspectionID:  inspection.ID,
		FindingType:   "visual",
		Category:      domain.RuleCategoryVehicle,
		ComponentCode: "FRAME_RAIL",
		ObservedData:  domain.ObservedData{"frame_cracked": true},
	})
	require.NoError(t, err)

	resolved, err := f.uc.ResolveTriage(ctx, finding.ID, domain.OutcomeNotOOS, inspector.ID, "Paint crack only, frame intact")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNotOOS, resolved.Outcome)

	final, err := f.uc.GetInspection(ctx, inspection.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InspectionStatusPass, final.Status, "downgraded triage with no triggered non-triage rules passes")

	entries, err := f.changeLog.ListByEntity(ctx, domain.AuditEntityFinding, finding.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionTriageDowngraded, entries[0].Action)
}

func TestInspectionUseCase_TriageRequiresQualifiedInspector(t *testing.T) {
	f := newInspectionFixture(t)
	f.activeVersion(t)
	ctx := context.Background()

	unqualified := domain.NewInspector("Lee Park", "INSP-9", "hash", false)
	require.NoError(t, f.inspectorRepo.Create(ctx, unqualified))

	inspection, err := f.uc.StartInspection(ctx, "TRK-4821", domain.InspectionTypeAnnual, "", "inspr_1")
	require.NoError(t, err)

	finding, err := f.uc.RecordFinding(ctx, RecordFindingRequest{
		InspectionID:  inspection.ID,
		FindingType:   "visual",
		Category:      domain.RuleCategoryVehicle,
		ComponentCode: "FRAME_RAIL",
		ObservedData:  domain.ObservedData{"frame_cracked": true},
	})
	require.NoError(t, err)

	_, err = f.uc.ResolveTriage(ctx, finding.ID, domain.OutcomeOOSVehicle, unqualified.ID, "reason")
	assert.ErrorIs(t, err, domain.ErrInspectorNotQualified)

	stored, err := f.findingRepo.FindByID(ctx, finding.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeTriage, stored.Outcome, "rejected resolution must not mutate the finding")
}

func TestInspectionUseCase_MixedFindingsSeverestWins(t *testing.T) {
	f := newInspectionFixture(t)
	f.activeVersion(t)
	ctx := context.Background()

	inspection, err := f.uc.StartInspection(ctx, "TRK-4821", domain.InspectionTypeLevel1, "", "inspr_1")
	require.NoError(t, err)

	_, err = f.uc.RecordFinding(ctx, RecordFindingRequest{
		InspectionID:  inspection.ID,
		FindingType:   "measurement",
		Category:      domain.RuleCategoryVehicle,
		ComponentCode: "BRAKE_LINING",
		ObservedData:  domain.ObservedData{"lining_mm": 5.0},
	})
	require.NoError(t, err)

	_, err = f.uc.RecordFinding(ctx, RecordFindingRequest{
		InspectionID:  inspection.ID,
		FindingType:   "measurement",
		Category:      domain.RuleCategoryVehicle,
		ComponentCode: "BRAKE_LINING",
		ObservedData:  domain.ObservedData{"lining_mm": 2.0},
	})
	require.NoError(t, err)

	updated, err := f.uc.GetInspection(ctx, inspection.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InspectionStatusOOS, updated.Status, "one OOS finding outranks any number of clean ones")
}
