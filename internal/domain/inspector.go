package domain

import (
	"time"

	"github.com/google/uuid"
)

// Inspector is the minimal identity record the engine consults: it
// identifies actors on audited transitions and gates triage resolution.
// Full user and role management belongs to the host application.
type Inspector struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Badge              string    `json:"badge"`
	AccessCodeHash     string    `json:"-"`
	QualifiedForTriage bool      `json:"qualified_for_triage"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewInspector creates an inspector with a pre-hashed access code
func NewInspector(name, badge, accessCodeHash string, qualifiedForTriage bool) *Inspector {
	return &Inspector{
		ID:                 "inspr_" + uuid.NewString(),
		Name:               name,
		Badge:              badge,
		AccessCodeHash:     accessCodeHash,
		QualifiedForTriage: qualifiedForTriage,
		CreatedAt:          time.Now().UTC(),
	}
}

// Inspector errors
var (
	ErrInspectorNotQualified = NewDomainError("inspector is not qualified to resolve triage")
	ErrInvalidAccessCode     = NewDomainError("invalid badge or access code")
)
