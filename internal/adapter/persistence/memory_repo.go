package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// In-memory repository implementations. Used by the test suites and by
// the server when no database is configured (demo mode). The version
// repository enforces the same revision discipline as the Postgres one
// so concurrency semantics are identical across backends.

// MemorySourceRepository implements SourceRepository in memory
type MemorySourceRepository struct {
	mu      sync.RWMutex
	sources map[string]*domain.RegulatorySource
}

// NewMemorySourceRepository creates an empty in-memory source repository
func NewMemorySourceRepository() *MemorySourceRepository {
	return &MemorySourceRepository{sources: make(map[string]*domain.RegulatorySource)}
}

func (r *MemorySourceRepository) Create(_ context.Context, source *domain.RegulatorySource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *source
	r.sources[source.ID] = &copied
	return nil
}

func (r *MemorySourceRepository) FindByID(_ context.Context, id string) (*domain.RegulatorySource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.sources[id]
	if !ok {
		return nil, domain.ErrSourceNotFound
	}
	copied := *source
	return &copied, nil
}

func (r *MemorySourceRepository) FindByTitle(_ context.Context, title string) (*domain.RegulatorySource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, source := range r.sources {
		if source.Title == title {
			copied := *source
			return &copied, nil
		}
	}
	return nil, domain.ErrSourceNotFound
}

func (r *MemorySourceRepository) List(_ context.Context) ([]*domain.RegulatorySource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sources := make([]*domain.RegulatorySource, 0, len(r.sources))
	for _, source := range r.sources {
		copied := *source
		sources = append(sources, &copied)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].CreatedAt.After(sources[j].CreatedAt) })
	return sources, nil
}

func (r *MemorySourceRepository) Update(_ context.Context, source *domain.RegulatorySource) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[source.ID]; !ok {
		return domain.ErrSourceNotFound
	}
	copied := *source
	r.sources[source.ID] = &copied
	return nil
}

// MemoryVersionRepository implements VersionRepository in memory
type MemoryVersionRepository struct {
	mu       sync.Mutex
	versions map[string]*domain.RuleVersion
	rules    map[string][]*domain.Rule
}

// NewMemoryVersionRepository creates an empty in-memory version repository
func NewMemoryVersionRepository() *MemoryVersionRepository {
	return &MemoryVersionRepository{
		versions: make(map[string]*domain.RuleVersion),
		rules:    make(map[string][]*domain.Rule),
	}
}

func (r *MemoryVersionRepository) Create(_ context.Context, version *domain.RuleVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *version
	r.versions[version.ID] = &copied
	return nil
}

func (r *MemoryVersionRepository) FindByID(_ context.Context, id string) (*domain.RuleVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	version, ok := r.versions[id]
	if !ok {
		return nil, domain.ErrVersionNotFound
	}
	copied := *version
	return &copied, nil
}

func (r *MemoryVersionRepository) List(_ context.Context) ([]*domain.RuleVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	versions := make([]*domain.RuleVersion, 0, len(r.versions))
	for _, version := range r.versions {
		copied := *version
		versions = append(versions, &copied)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].CreatedAt.After(versions[j].CreatedAt) })
	return versions, nil
}

func (r *MemoryVersionRepository) ListEvaluable(_ context.Context, at time.Time) ([]*domain.RuleVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var versions []*domain.RuleVersion
	for _, version := range r.versions {
		if version.IsEvaluable(at) {
			copied := *version
			versions = append(versions, &copied)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i].EffectiveStart.After(versions[j].EffectiveStart) })
	return versions, nil
}

func (r *MemoryVersionRepository) UpdateWithRevision(_ context.Context, version *domain.RuleVersion, expectedRevision int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.versions[version.ID]
	if !ok {
		return domain.ErrVersionNotFound
	}
	if stored.Revision != expectedRevision {
		return &domain.StaleVersionError{VersionID: version.ID}
	}
	copied := *version
	copied.Revision = expectedRevision + 1
	r.versions[version.ID] = &copied
	version.Revision = copied.Revision
	return nil
}

func (r *MemoryVersionRepository) AddRule(_ context.Context, rule *domain.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.versions[rule.VersionID]; !ok {
		return domain.ErrVersionNotFound
	}
	copied := *rule
	r.rules[rule.VersionID] = append(r.rules[rule.VersionID], &copied)
	return nil
}

func (r *MemoryVersionRepository) ListRules(_ context.Context, versionID string) ([]*domain.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := r.rules[versionID]
	rules := make([]*domain.Rule, 0, len(stored))
	for _, rule := range stored {
		copied := *rule
		rules = append(rules, &copied)
	}
	return rules, nil
}

func (r *MemoryVersionRepository) CountRules(_ context.Context, versionID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rules[versionID]), nil
}

// MemoryInspectionRepository implements InspectionRepository in memory
type MemoryInspectionRepository struct {
	mu          sync.RWMutex
	inspections map[string]*domain.Inspection
}

// NewMemoryInspectionRepository creates an empty in-memory inspection repository
func NewMemoryInspectionRepository() *MemoryInspectionRepository {
	return &MemoryInspectionRepository{inspections: make(map[string]*domain.Inspection)}
}

func (r *MemoryInspectionRepository) Create(_ context.Context, inspection *domain.Inspection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *inspection
	r.inspections[inspection.ID] = &copied
	return nil
}

func (r *MemoryInspectionRepository) FindByID(_ context.Context, id string) (*domain.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inspection, ok := r.inspections[id]
	if !ok {
		return nil, domain.ErrInspectionNotFound
	}
	copied := *inspection
	return &copied, nil
}

func (r *MemoryInspectionRepository) UpdateStatus(_ context.Context, inspection *domain.Inspection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inspections[inspection.ID]; !ok {
		return domain.ErrInspectionNotFound
	}
	copied := *inspection
	r.inspections[inspection.ID] = &copied
	return nil
}

func (r *MemoryInspectionRepository) List(_ context.Context, assetRef string, limit, offset int) ([]*domain.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var inspections []*domain.Inspection
	for _, inspection := range r.inspections {
		if inspection.AssetRef == assetRef {
			copied := *inspection
			inspections = append(inspections, &copied)
		}
	}
	sort.Slice(inspections, func(i, j int) bool { return inspections[i].StartedAt.After(inspections[j].StartedAt) })
	if offset >= len(inspections) {
		return nil, nil
	}
	inspections = inspections[offset:]
	if limit > 0 && limit < len(inspections) {
		inspections = inspections[:limit]
	}
	return inspections, nil
}

// MemoryFindingRepository implements FindingRepository in memory
type MemoryFindingRepository struct {
	mu       sync.RWMutex
	findings map[string]*domain.Finding
}

// NewMemoryFindingRepository creates an empty in-memory finding repository
func NewMemoryFindingRepository() *MemoryFindingRepository {
	return &MemoryFindingRepository{findings: make(map[string]*domain.Finding)}
}

func (r *MemoryFindingRepository) Create(_ context.Context, finding *domain.Finding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *finding
	r.findings[finding.ID] = &copied
	return nil
}

func (r *MemoryFindingRepository) FindByID(_ context.Context, id string) (*domain.Finding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	finding, ok := r.findings[id]
	if !ok {
		return nil, domain.ErrFindingNotFound
	}
	copied := *finding
	return &copied, nil
}

func (r *MemoryFindingRepository) ListByInspection(_ context.Context, inspectionID string) ([]*domain.Finding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var findings []*domain.Finding
	for _, finding := range r.findings {
		if finding.InspectionID == inspectionID {
			copied := *finding
			findings = append(findings, &copied)
		}
	}
	sort.Slice(findings, func(i, j int) bool { return findings[i].CreatedAt.Before(findings[j].CreatedAt) })
	return findings, nil
}

func (r *MemoryFindingRepository) UpdateResolution(_ context.Context, finding *domain.Finding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.findings[finding.ID]; !ok {
		return domain.ErrFindingNotFound
	}
	copied := *finding
	r.findings[finding.ID] = &copied
	return nil
}

// MemoryChangeLogRepository implements ChangeLogRepository in memory
type MemoryChangeLogRepository struct {
	mu      sync.RWMutex
	entries []*domain.ChangeLogEntry
}

// NewMemoryChangeLogRepository creates an empty in-memory change log
func NewMemoryChangeLogRepository() *MemoryChangeLogRepository {
	return &MemoryChangeLogRepository{}
}

func (r *MemoryChangeLogRepository) Append(_ context.Context, entry *domain.ChangeLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *MemoryChangeLogRepository) ListByEntity(_ context.Context, entityType domain.AuditEntityType, entityID string, limit int) ([]*domain.ChangeLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var entries []*domain.ChangeLogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if entry.EntityType == entityType && entry.EntityID == entityID {
			copied := *entry
			entries = append(entries, &copied)
			if limit > 0 && len(entries) >= limit {
				break
			}
		}
	}
	return entries, nil
}

// MemoryInspectorRepository implements InspectorRepository in memory
type MemoryInspectorRepository struct {
	mu         sync.RWMutex
	inspectors map[string]*domain.Inspector
}

// NewMemoryInspectorRepository creates an empty in-memory inspector repository
func NewMemoryInspectorRepository() *MemoryInspectorRepository {
	return &MemoryInspectorRepository{inspectors: make(map[string]*domain.Inspector)}
}

func (r *MemoryInspectorRepository) Create(_ context.Context, inspector *domain.Inspector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *inspector
	r.inspectors[inspector.ID] = &copied
	return nil
}

func (r *MemoryInspectorRepository) FindByID(_ context.Context, id string) (*domain.Inspector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inspector, ok := r.inspectors[id]
	if !ok {
		return nil, domain.ErrInspectorNotFound
	}
	copied := *inspector
	return &copied, nil
}

func (r *MemoryInspectorRepository) FindByBadge(_ context.Context, badge string) (*domain.Inspector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inspector := range r.inspectors {
		if inspector.Badge == badge {
			copied := *inspector
			return &copied, nil
		}
	}
	return nil, domain.ErrInspectorNotFound
}

// interface checks
var (
	_ ports.SourceRepository     = (*MemorySourceRepository)(nil)
	_ ports.VersionRepository    = (*MemoryVersionRepository)(nil)
	_ ports.InspectionRepository = (*MemoryInspectionRepository)(nil)
	_ ports.FindingRepository    = (*MemoryFindingRepository)(nil)
	_ ports.ChangeLogRepository  = (*MemoryChangeLogRepository)(nil)
	_ ports.InspectorRepository  = (*MemoryInspectorRepository)(nil)
)
