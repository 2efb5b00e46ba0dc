package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetworks/fleetworks/internal/adapter/persistence"
	"github.com/fleetworks/fleetworks/internal/domain"
)

func newVersionFixture(t *testing.T) (*VersionUseCase, *persistence.MemoryVersionRepository, *persistence.MemoryChangeLogRepository) {
	t.Helper()
	versionRepo := persistence.NewMemoryVersionRepository()
	changeLog := persistence.NewMemoryChangeLogRepository()
	uc := NewVersionUseCase(versionRepo, persistence.NewMemorySourceRepository(), changeLog, nil, nil)
	return uc, versionRepo, changeLog
}

func draftWithRule(t *testing.T, uc *VersionUseCase) *domain.RuleVersion {
	t.Helper()
	ctx := context.Background()

	version, err := uc.CreateVersion(ctx, "OOSC 2026", nil, time.Now().UTC().Add(-time.Hour), "inspr_admin")
	require.NoError(t, err)

	_, err = uc.AddRule(ctx, AddRuleRequest{
		VersionID:     version.ID,
		Category:      domain.RuleCategoryVehicle,
		ComponentCode: "BRAKE_LINING",
		Title:         "Brake lining below minimum",
		Condition:     &domain.Condition{Kind: domain.ConditionNumericCompare, Field: "lining_mm", Op: domain.CompareLT, Threshold: 3.0},
		Outcome:       domain.OutcomeOOSVehicle,
		Citation:      "CVSA OOSC Part II",
	})
	require.NoError(t, err)
	return version
}

func TestVersionUseCase_CreateVersion(t *testing.T) {
	uc, _, changeLog := newVersionFixture(t)
	ctx := context.Background()

	version, err := uc.CreateVersion(ctx, "OOSC 2026", nil, time.Now().UTC(), "inspr_admin")
	require.NoError(t, err)

	assert.Equal(t, domain.VersionStatusDraft, version.Status)
	assert.False(t, version.Enabled)

	entries, err := changeLog.ListByEntity(ctx, domain.AuditEntityRuleVersion, version.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditActionVersionCreated, entries[0].Action)
	assert.Equal(t, "inspr_admin", entries[0].ActorID)
}

func TestVersionUseCase_CreateVersionRequiresActor(t *testing.T) {
	uc, _, _ := newVersionFixture(t)

	_, err := uc.CreateVersion(context.Background(), "OOSC 2026", nil, time.Now().UTC(), "")
	assert.ErrorIs(t, err, domain.ErrEmptyActor)
}

func TestVersionUseCase_CreateVersionUnknownSource(t *testing.T) {
	uc, _, _ := newVersionFixture(t)

	_, err := uc.CreateVersion(context.Background(), "OOSC 2026", []string{"src_missing"}, time.Now().UTC(), "inspr_admin")
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestVersionUseCase_AddRuleToActiveVersion(t *testing.T) {
	uc, _, _ := newVersionFixture(t)
	ctx := context.Background()

	version := draftWithRule(t, uc)
	_, err := uc.ActivateVersion(ctx, version.ID, "inspr_admin")
	require.NoError(t, err)

	_, err = uc.AddRule(ctx, AddRuleRequest{
		VersionID: version.ID,
		Category:  domain.RuleCategoryVehicle,
		Title:     "Late addition",
		Condition: &domain.Condition{Kind: domain.ConditionPresent, Field: "x"},
		Outcome:   domain.OutcomeNotOOS,
	})
	assert.ErrorIs(t, err, domain.ErrVersionNotDraft)
}

func TestVersionUseCase_AddRulePositions(t *testing.T) {
	uc, _, _ := newVersionFixture(t)
	ctx := context.Background()

	version := draftWithRule(t, uc)
	second, err := uc.AddRule(ctx, AddRuleRequest{
		VersionID: version.ID,
		Category:  domain.RuleCategoryDriver,
		Title:     "Medical cert missing",
		Condition: &domain.Condition{Kind: domain.ConditionAbsent, Field: "medical_cert_id"},
		Outcome:   domain.OutcomeOOSDriver,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)
}

func TestVersionUseCase_AddRuleCitationFields(t *testing.T) {
	uc, versionRepo, _ := newVersionFixture(t)
	ctx := context.Background()

	version := draftWithRule(t, uc)
	rule, err := uc.AddRule(ctx, AddRuleRequest{
		VersionID:   version.ID,
		Category:    domain.RuleCategoryDriver,
		Title:       "Medical cert missing",
		Condition:   &domain.Condition{Kind: domain.ConditionAbsent, Field: "medical_cert_id"},
		Outcome:     domain.OutcomeOOSDriver,
		Citation:    "49 CFR 391.41",
		CitationURL: "https://www.ecfr.gov/current/title-49/section-391.41",
		Explanation: "Driver could not produce a valid medical certificate",
	})
	require.NoError(t, err)

	rules, err := versionRepo.ListRules(ctx, version.ID)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	stored := rules[1]
	assert.Equal(t, rule.ID, stored.ID)
	assert.Equal(t, "49 CFR 391.41", stored.Citation)
	assert.Equal(t, "https://www.ecfr.gov/current/title-49/section-391.41", stored.CitationURL)
	assert.Equal(t, "Driver could not produce a valid medical certificate", stored.Explanation)
}

func TestVersionUseCase_ActivateVersion(t *testing.T) {
	uc, versionRepo, changeLog := newVersionFixture(t)
	ctx := context.Background()

	version := draftWithRule(t, uc)
	activated, err := uc.ActivateVersion(ctx, version.ID, "inspr_admin")
	require.NoError(t, err)

	assert.Equal(t, domain.VersionStatusActive, activated.Status)
	assert.True(t, activated.Enabled)

	stored, err := versionRepo.FindByID(ctx, version.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VersionStatusActive, stored.Status)
	assert.Equal(t, 2, stored.Revision)

	entries, err := changeLog.ListByEntity(ctx, domain.AuditEntityRuleVersion, version.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditActionVersionActivated, entries[0].Action)
}

func TestVersionUseCase_ActivateEmptyVersion(t *testing.T) {
	uc, _, _ := newVersionFixture(t)
	ctx := context.Background()

	version, err := uc.CreateVersion(ctx, "Empty", nil, time.Now().UTC(), "inspr_admin")
	require.NoError(t, err)

	_, err = uc.ActivateVersion(ctx, version.ID, "inspr_admin")
	assert.ErrorIs(t, err, domain.ErrEmptyRuleSet)
}

func TestVersionUseCase_ActivateMalformedRuleLeavesDraft(t *testing.T) {
	uc, versionRepo, _ := newVersionFixture(t)
	ctx := context.Background()

	version := draftWithRule(t, uc)
	_, err := uc.AddRule(ctx, AddRuleRequest{
		VersionID: version.ID,
		Category:  domain.RuleCategoryVehicle,
		Title:     "Composite without children",
		Condition: &domain.Condition{Kind: domain.ConditionAnd},
		Outcome:   domain.OutcomeOOSVehicle,
	})
	require.NoError(t, err, "drafting stays permissive, validation happens at activation")

	_, err = uc.ActivateVersion(ctx, version.ID, "inspr_admin")
	var defErr *domain.RuleDefinitionError
	require.ErrorAs(t, err, &defErr)

	stored, err := versionRepo.FindByID(ctx, version.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VersionStatusDraft, stored.Status, "failed activation must leave the version in DRAFT")
}

func TestVersionUseCase_ConcurrentActivationSingleWinner(t *testing.T) {
	uc, versionRepo, changeLog := newVersionFixture(t)
	ctx := context.Background()

	version := draftWithRule(t, uc)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.ActivateVersion(ctx, version.ID, "inspr_admin")
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		losses++
		var staleErr *domain.StaleVersionError
		var transErr *domain.InvalidTransitionError
		assert.True(t, errors.As(err, &staleErr) || errors.As(err, &transErr),
			"loser must observe a stale revision or an already-active version, got %v", err)
	}
	assert.Equal(t, 1, wins, "exactly one activation must win")
	assert.Equal(t, 1, losses)

	stored, err := versionRepo.FindByID(ctx, version.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VersionStatusActive, stored.Status)

	entries, err := changeLog.ListByEntity(ctx, domain.AuditEntityRuleVersion, version.ID, 10)
	require.NoError(t, err)
	activations := 0
	for _, e := range entries {
		if e.Action == domain.AuditActionVersionActivated {
			activations++
		}
	}
	assert.Equal(t, 1, activations, "exactly one activation entry in the change log")
}

func TestVersionUseCase_RetireVersion(t *testing.T) {
	uc, _, changeLog := newVersionFixture(t)
	ctx := context.Background()

	version := draftWithRule(t, uc)
	_, err := uc.ActivateVersion(ctx, version.ID, "inspr_admin")
	require.NoError(t, err)

	retired, err := uc.RetireVersion(ctx, version.ID, "inspr_admin")
	require.NoError(t, err)
	assert.Equal(t, domain.VersionStatusRetired, retired.Status)
	assert.False(t, retired.Enabled)

	// RETIRED is terminal
	_, err = uc.RetireVersion(ctx, version.ID, "inspr_admin")
	var transErr *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &transErr)

	entries, err := changeLog.ListByEntity(ctx, domain.AuditEntityRuleVersion, version.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.AuditActionVersionRetired, entries[0].Action)
}

func TestVersionUseCase_SetVersionEnabled(t *testing.T) {
	uc, _, changeLog := newVersionFixture(t)
	ctx := context.Background()

	version := draftWithRule(t, uc)

	_, err := uc.SetVersionEnabled(ctx, version.ID, true, "inspr_admin")
	assert.ErrorIs(t, err, domain.ErrDraftNotEnableable)

	_, err = uc.ActivateVersion(ctx, version.ID, "inspr_admin")
	require.NoError(t, err)

	disabled, err := uc.SetVersionEnabled(ctx, version.ID, false, "inspr_admin")
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)
	assert.Equal(t, domain.VersionStatusActive, disabled.Status)

	entries, err := changeLog.ListByEntity(ctx, domain.AuditEntityRuleVersion, version.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.AuditActionVersionDisabled, entries[0].Action)

	enabled, err := uc.SetVersionEnabled(ctx, version.ID, true, "inspr_admin")
	require.NoError(t, err)
	assert.True(t, enabled.Enabled)
}
