package ports

import (
	"context"

	"github.com/fleetworks/fleetworks/internal/domain"
)

// RuleCache caches loaded rule sets keyed by version ID. Rules are
// immutable once their version is ACTIVE, so cached entries never go
// stale; the cache exists to keep concurrent inspection reads off the
// database. A miss or cache failure always falls back to the repository.
type RuleCache interface {
	// GetRules returns the cached rule set for a version, or (nil, nil)
	// on a miss
	GetRules(ctx context.Context, versionID string) ([]*domain.Rule, error)

	// PutRules stores a version's rule set
	PutRules(ctx context.Context, versionID string, rules []*domain.Rule) error
}

// TokenService issues and validates inspector bearer tokens
type TokenService interface {
	// GenerateToken issues a signed token for an inspector
	GenerateToken(inspectorID string) (string, error)

	// ValidateToken verifies a token and returns the inspector ID
	ValidateToken(token string) (string, error)
}

// PasswordService hashes and verifies inspector access codes
type PasswordService interface {
	// Hash returns the hash of an access code
	Hash(accessCode string) (string, error)

	// Verify checks an access code against its stored hash
	Verify(hash, accessCode string) error
}

// ComponentCodeResolver validates component codes against the host
// application's maintenance taxonomy. The engine never interprets the
// codes, it only checks that matcher keys exist.
type ComponentCodeResolver interface {
	// IsKnown reports whether the component code exists in the taxonomy
	IsKnown(ctx context.Context, code string) (bool, error)
}
