package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetworks/fleetworks/internal/domain"
)

func TestMemoryVersionRepository_RevisionCheck(t *testing.T) {
	repo := NewMemoryVersionRepository()
	ctx := context.Background()

	version := domain.NewRuleVersion("OOSC 2026", nil, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, version))

	// writer A and writer B both load revision 1
	loadedA, err := repo.FindByID(ctx, version.ID)
	require.NoError(t, err)
	loadedB, err := repo.FindByID(ctx, version.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateWithRevision(ctx, loadedA, loadedA.Revision))
	assert.Equal(t, 2, loadedA.Revision, "winner observes the bumped revision")

	err = repo.UpdateWithRevision(ctx, loadedB, 1)
	var staleErr *domain.StaleVersionError
	assert.ErrorAs(t, err, &staleErr, "second writer with the stale revision must be rejected")
}

func TestMemoryVersionRepository_UpdateUnknownVersion(t *testing.T) {
	repo := NewMemoryVersionRepository()

	missing := domain.NewRuleVersion("ghost", nil, time.Now().UTC())
	err := repo.UpdateWithRevision(context.Background(), missing, 1)
	assert.ErrorIs(t, err, domain.ErrVersionNotFound)
}

func TestMemoryVersionRepository_ListEvaluable(t *testing.T) {
	repo := NewMemoryVersionRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	active := domain.NewRuleVersion("active", nil, now.Add(-time.Hour))
	active.Status = domain.VersionStatusActive
	active.Enabled = true
	require.NoError(t, repo.Create(ctx, active))

	disabled := domain.NewRuleVersion("disabled", nil, now.Add(-time.Hour))
	disabled.Status = domain.VersionStatusActive
	require.NoError(t, repo.Create(ctx, disabled))

	future := domain.NewRuleVersion("future", nil, now.Add(time.Hour))
	future.Status = domain.VersionStatusActive
	future.Enabled = true
	require.NoError(t, repo.Create(ctx, future))

	draft := domain.NewRuleVersion("draft", nil, now.Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, draft))

	evaluable, err := repo.ListEvaluable(ctx, now)
	require.NoError(t, err)
	require.Len(t, evaluable, 1)
	assert.Equal(t, active.ID, evaluable[0].ID)
}

func TestMemoryVersionRepository_RulesRoundTrip(t *testing.T) {
	repo := NewMemoryVersionRepository()
	ctx := context.Background()

	version := domain.NewRuleVersion("OOSC 2026", nil, time.Now().UTC())
	require.NoError(t, repo.Create(ctx, version))

	cond := &domain.Condition{Kind: domain.ConditionNumericCompare, Field: "lining_mm", Op: domain.CompareLT, Threshold: 3.0}
	rule := domain.NewRule(version.ID, domain.RuleCategoryVehicle, "BRAKE_LINING", "Brake lining", cond, domain.OutcomeOOSVehicle, false, "", "", "", 1)
	require.NoError(t, repo.AddRule(ctx, rule))

	count, err := repo.CountRules(ctx, version.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	rules, err := repo.ListRules(ctx, version.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, rule.ID, rules[0].ID)

	orphan := domain.NewRule("ver_missing", domain.RuleCategoryVehicle, "", "orphan", cond, domain.OutcomeNotOOS, false, "", "", "", 1)
	assert.ErrorIs(t, repo.AddRule(ctx, orphan), domain.ErrVersionNotFound)
}

func TestMemorySourceRepository_FindByTitle(t *testing.T) {
	repo := NewMemorySourceRepository()
	ctx := context.Background()

	source := domain.NewRegulatorySource("CVSA OOSC", domain.SourceTypeCVSA, "", "handbook text", "")
	require.NoError(t, repo.Create(ctx, source))

	found, err := repo.FindByTitle(ctx, "CVSA OOSC")
	require.NoError(t, err)
	assert.Equal(t, source.ID, found.ID)

	_, err = repo.FindByTitle(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
}

func TestMemoryChangeLogRepository_NewestFirstWithLimit(t *testing.T) {
	repo := NewMemoryChangeLogRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		entry := domain.NewChangeLogEntry(domain.AuditEntityRuleVersion, "ver_1", domain.AuditActionVersionCreated, "entry", "inspr_1", nil)
		require.NoError(t, repo.Append(ctx, entry))
	}
	other := domain.NewChangeLogEntry(domain.AuditEntityFinding, "find_1", domain.AuditActionTriageConfirmed, "other entity", "inspr_1", nil)
	require.NoError(t, repo.Append(ctx, other))

	entries, err := repo.ListByEntity(ctx, domain.AuditEntityRuleVersion, "ver_1", 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	all, err := repo.ListByEntity(ctx, domain.AuditEntityRuleVersion, "ver_1", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryInspectorRepository_FindByBadge(t *testing.T) {
	repo := NewMemoryInspectorRepository()
	ctx := context.Background()

	inspector := domain.NewInspector("Sam Reyes", "INSP-7", "hash", true)
	require.NoError(t, repo.Create(ctx, inspector))

	found, err := repo.FindByBadge(ctx, "INSP-7")
	require.NoError(t, err)
	assert.Equal(t, inspector.ID, found.ID)

	_, err = repo.FindByBadge(ctx, "INSP-404")
	assert.ErrorIs(t, err, domain.ErrInspectorNotFound)
}

func TestMemoryFindingRepository_ListByInspectionOrder(t *testing.T) {
	repo := NewMemoryFindingRepository()
	ctx := context.Background()

	first := domain.NewFinding("insp_1", "visual", domain.RuleCategoryVehicle, "", domain.ObservedData{}, "")
	first.CreatedAt = time.Now().UTC().Add(-time.Minute)
	second := domain.NewFinding("insp_1", "visual", domain.RuleCategoryVehicle, "", domain.ObservedData{}, "")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	unrelated := domain.NewFinding("insp_2", "visual", domain.RuleCategoryVehicle, "", domain.ObservedData{}, "")
	require.NoError(t, repo.Create(ctx, unrelated))

	findings, err := repo.ListByInspection(ctx, "insp_1")
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, first.ID, findings[0].ID, "findings come back in recording order")
}
