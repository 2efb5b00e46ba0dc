package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// PostgresFindingRepository implements FindingRepository using PostgreSQL
type PostgresFindingRepository struct {
	db *sql.DB
}

// NewPostgresFindingRepository creates a new PostgreSQL finding repository
func NewPostgresFindingRepository(db *sql.DB) ports.FindingRepository {
	return &PostgresFindingRepository{db: db}
}

// Create saves a new finding
func (r *PostgresFindingRepository) Create(ctx context.Context, finding *domain.Finding) error {
	query := `
		INSERT INTO findings (id, inspection_id, finding_type, category, component_code, observed_data, matched_rule_ids, triggered_rule_ids, explanations, outcome, notes, resolved_by, resolved_at, resolution_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	observedJSON, err := json.Marshal(finding.ObservedData)
	if err != nil {
		return fmt.Errorf("failed to marshal observed data: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		finding.ID,
		finding.InspectionID,
		finding.FindingType,
		string(finding.Category),
		finding.ComponentCode,
		observedJSON,
		pq.Array(finding.MatchedRuleIDs),
		pq.Array(finding.TriggeredRuleIDs),
		pq.Array(finding.Explanations),
		string(finding.Outcome),
		finding.Notes,
		finding.ResolvedBy,
		finding.ResolvedAt,
		finding.ResolutionReason,
		finding.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create finding: %w", err)
	}

	return nil
}

const findingColumns = `id, inspection_id, finding_type, category, component_code, observed_data, matched_rule_ids, triggered_rule_ids, explanations, outcome, notes, resolved_by, resolved_at, resolution_reason, created_at`

// FindByID retrieves a finding by its ID
func (r *PostgresFindingRepository) FindByID(ctx context.Context, id string) (*domain.Finding, error) {
	query := `SELECT ` + findingColumns + ` FROM findings WHERE id = $1`

	finding, err := scanFinding(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrFindingNotFound
		}
		return nil, err
	}
	return finding, nil
}

// ListByInspection retrieves all findings for an inspection in creation order
func (r *PostgresFindingRepository) ListByInspection(ctx context.Context, inspectionID string) ([]*domain.Finding, error) {
	query := `SELECT ` + findingColumns + ` FROM findings WHERE inspection_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, inspectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []*domain.Finding
	for rows.Next() {
		finding, err := scanFinding(rows)
		if err != nil {
			return nil, err
		}
		findings = append(findings, finding)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating findings: %w", err)
	}

	return findings, nil
}

// UpdateResolution persists a triage resolution
func (r *PostgresFindingRepository) UpdateResolution(ctx context.Context, finding *domain.Finding) error {
	query := `
		UPDATE findings
		SET outcome = $2, resolved_by = $3, resolved_at = $4, resolution_reason = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		finding.ID,
		string(finding.Outcome),
		finding.ResolvedBy,
		finding.ResolvedAt,
		finding.ResolutionReason,
	)
	if err != nil {
		return fmt.Errorf("failed to update finding: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrFindingNotFound
	}

	return nil
}

func scanFinding(row rowScanner) (*domain.Finding, error) {
	var finding domain.Finding
	var componentCode, notes, resolvedBy, resolutionReason sql.NullString
	var resolvedAt sql.NullTime
	var observedJSON []byte
	var matchedIDs, triggeredIDs, explanations pq.StringArray

	err := row.Scan(
		&finding.ID,
		&finding.InspectionID,
		&finding.FindingType,
		&finding.Category,
		&componentCode,
		&observedJSON,
		&matchedIDs,
		&triggeredIDs,
		&explanations,
		&finding.Outcome,
		&notes,
		&resolvedBy,
		&resolvedAt,
		&resolutionReason,
		&finding.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan finding: %w", err)
	}

	finding.ComponentCode = componentCode.String
	finding.Notes = notes.String
	finding.ResolvedBy = resolvedBy.String
	finding.ResolutionReason = resolutionReason.String
	finding.MatchedRuleIDs = []string(matchedIDs)
	finding.TriggeredRuleIDs = []string(triggeredIDs)
	finding.Explanations = []string(explanations)
	if resolvedAt.Valid {
		finding.ResolvedAt = &resolvedAt.Time
	}

	if len(observedJSON) > 0 {
		if err := json.Unmarshal(observedJSON, &finding.ObservedData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal observed data: %w", err)
		}
	}

	return &finding, nil
}
