package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/fleetworks/fleetworks/internal/domain"
	"github.com/fleetworks/fleetworks/internal/ports"
)

// PostgresVersionRepository implements VersionRepository using
// PostgreSQL. Lifecycle writes are guarded by a revision column: an
// UPDATE conditioned on the expected revision either applies and bumps
// it, or affects zero rows and surfaces StaleVersionError.
type PostgresVersionRepository struct {
	db *sql.DB
}

// NewPostgresVersionRepository creates a new PostgreSQL version repository
func NewPostgresVersionRepository(db *sql.DB) ports.VersionRepository {
	return &PostgresVersionRepository{db: db}
}

// Create saves a new rule version
func (r *PostgresVersionRepository) Create(ctx context.Context, version *domain.RuleVersion) error {
	query := `
		INSERT INTO rule_versions (id, name, status, enabled, effective_start, effective_end, source_ids, revision, activated_at, retired_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.ExecContext(ctx, query,
		version.ID,
		version.Name,
		string(version.Status),
		version.Enabled,
		version.EffectiveStart,
		version.EffectiveEnd,
		pq.Array(version.SourceIDs),
		version.Revision,
		version.ActivatedAt,
		version.RetiredAt,
		version.CreatedAt,
		version.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create version: %w", err)
	}

	return nil
}

const versionColumns = `id, name, status, enabled, effective_start, effective_end, source_ids, revision, activated_at, retired_at, created_at, updated_at`

// FindByID retrieves a rule version by its ID
func (r *PostgresVersionRepository) FindByID(ctx context.Context, id string) (*domain.RuleVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM rule_versions WHERE id = $1`

	version, err := scanVersion(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrVersionNotFound
		}
		return nil, err
	}
	return version, nil
}

// List retrieves all rule versions, newest first
func (r *PostgresVersionRepository) List(ctx context.Context) ([]*domain.RuleVersion, error) {
	query := `SELECT ` + versionColumns + ` FROM rule_versions ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	return collectVersions(rows)
}

// ListEvaluable retrieves the enabled ACTIVE versions effective at the
// given instant
func (r *PostgresVersionRepository) ListEvaluable(ctx context.Context, at time.Time) ([]*domain.RuleVersion, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM rule_versions
		WHERE status = $1
		  AND enabled = TRUE
		  AND effective_start <= $2
		  AND (effective_end IS NULL OR effective_end >= $2)
		ORDER BY effective_start DESC
	`

	rows, err := r.db.QueryContext(ctx, query, string(domain.VersionStatusActive), at)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluable versions: %w", err)
	}
	defer rows.Close()

	return collectVersions(rows)
}

// UpdateWithRevision persists a lifecycle mutation under the optimistic
// revision check
func (r *PostgresVersionRepository) UpdateWithRevision(ctx context.Context, version *domain.RuleVersion, expectedRevision int) error {
	query := `
		UPDATE rule_versions
		SET status = $2, enabled = $3, effective_end = $4, revision = revision + 1,
			activated_at = $5, retired_at = $6, updated_at = $7
		WHERE id = $1 AND revision = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		version.ID,
		string(version.Status),
		version.Enabled,
		version.EffectiveEnd,
		version.ActivatedAt,
		version.RetiredAt,
		version.UpdatedAt,
		expectedRevision,
	)
	if err != nil {
		return fmt.Errorf("failed to update version: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either the version vanished or another writer got there first.
		if _, err := r.FindByID(ctx, version.ID); err != nil {
			return err
		}
		return &domain.StaleVersionError{VersionID: version.ID}
	}

	version.Revision = expectedRevision + 1
	return nil
}

// AddRule appends a rule to a DRAFT version
func (r *PostgresVersionRepository) AddRule(ctx context.Context, rule *domain.Rule) error {
	query := `
		INSERT INTO rules (id, version_id, category, component_code, title, condition_tree, outcome, is_triage_only, citation, citation_url, explanation, position, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	conditionJSON, err := json.Marshal(rule.Condition)
	if err != nil {
		return fmt.Errorf("failed to marshal condition tree: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		rule.ID,
		rule.VersionID,
		string(rule.Category),
		rule.ComponentCode,
		rule.Title,
		conditionJSON,
		string(rule.Outcome),
		rule.IsTriageOnly,
		rule.Citation,
		rule.CitationURL,
		rule.Explanation,
		rule.Position,
		rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add rule: %w", err)
	}

	return nil
}

// ListRules retrieves a version's rules in insertion order
func (r *PostgresVersionRepository) ListRules(ctx context.Context, versionID string) ([]*domain.Rule, error) {
	query := `
		SELECT id, version_id, category, component_code, title, condition_tree, outcome, is_triage_only, citation, citation_url, explanation, position, created_at
		FROM rules
		WHERE version_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, versionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer rows.Close()

	var rules []*domain.Rule
	for rows.Next() {
		var rule domain.Rule
		var componentCode, citation, citationURL, explanation sql.NullString
		var conditionJSON []byte

		err := rows.Scan(
			&rule.ID,
			&rule.VersionID,
			&rule.Category,
			&componentCode,
			&rule.Title,
			&conditionJSON,
			&rule.Outcome,
			&rule.IsTriageOnly,
			&citation,
			&citationURL,
			&explanation,
			&rule.Position,
			&rule.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		rule.ComponentCode = componentCode.String
		rule.Citation = citation.String
		rule.CitationURL = citationURL.String
		rule.Explanation = explanation.String

		condition, err := domain.ParseCondition(conditionJSON)
		if err != nil {
			return nil, err
		}
		rule.Condition = condition

		rules = append(rules, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// CountRules returns the number of rules in a version
func (r *PostgresVersionRepository) CountRules(ctx context.Context, versionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rules WHERE version_id = $1`, versionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rules: %w", err)
	}
	return count, nil
}

func scanVersion(row rowScanner) (*domain.RuleVersion, error) {
	var version domain.RuleVersion
	var effectiveEnd, activatedAt, retiredAt sql.NullTime
	var sourceIDs pq.StringArray

	err := row.Scan(
		&version.ID,
		&version.Name,
		&version.Status,
		&version.Enabled,
		&version.EffectiveStart,
		&effectiveEnd,
		&sourceIDs,
		&version.Revision,
		&activatedAt,
		&retiredAt,
		&version.CreatedAt,
		&version.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan version: %w", err)
	}

	version.SourceIDs = []string(sourceIDs)
	if effectiveEnd.Valid {
		version.EffectiveEnd = &effectiveEnd.Time
	}
	if activatedAt.Valid {
		version.ActivatedAt = &activatedAt.Time
	}
	if retiredAt.Valid {
		version.RetiredAt = &retiredAt.Time
	}

	return &version, nil
}

func collectVersions(rows *sql.Rows) ([]*domain.RuleVersion, error) {
	var versions []*domain.RuleVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating versions: %w", err)
	}
	return versions, nil
}
