package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// StaleVersionError reports an optimistic-concurrency conflict on a rule
// version. The caller must re-read the version and retry.
type StaleVersionError struct {
	VersionID string
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("rule version %s was modified concurrently, re-read and retry", e.VersionID)
}

// InvalidTransitionError reports a rejected lifecycle transition, such as
// attempting to reactivate a RETIRED version. It is never a silent no-op.
type InvalidTransitionError struct {
	VersionID string
	From      VersionStatus
	To        VersionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("rule version %s cannot transition from %s to %s", e.VersionID, e.From, e.To)
}

// Shared not-found and validation errors
var (
	ErrSourceNotFound     = NewDomainError("regulatory source not found")
	ErrVersionNotFound    = NewDomainError("rule version not found")
	ErrRuleNotFound       = NewDomainError("rule not found")
	ErrInspectionNotFound = NewDomainError("inspection not found")
	ErrFindingNotFound    = NewDomainError("finding not found")
	ErrInspectorNotFound  = NewDomainError("inspector not found")

	ErrNoActiveVersion        = NewDomainError("no enabled active rule version is effective")
	ErrAmbiguousActiveVersion = NewDomainError("multiple enabled active rule versions are effective, specify one explicitly")
)
