package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// SourceType classifies where a rule family originates
type SourceType string

const (
	SourceTypeFederal SourceType = "FEDERAL"
	SourceTypeCVSA    SourceType = "CVSA"
	SourceTypeState   SourceType = "STATE"
	SourceTypeCompany SourceType = "COMPANY"
	SourceTypeOther   SourceType = "OTHER"
)

// RegulatorySource records the provenance of a rule family. It is
// immutable once referenced by a version except for corrective edits,
// and never deleted while a version references it.
type RegulatorySource struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Type          SourceType `json:"type"`
	URL           string     `json:"url,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	ContentHash   string     `json:"content_hash,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewRegulatorySource creates a regulatory source, hashing the cited
// content so later seeding runs can detect upstream changes.
func NewRegulatorySource(title string, sourceType SourceType, url, content, notes string) *RegulatorySource {
	now := time.Now().UTC()
	return &RegulatorySource{
		ID:          "src_" + uuid.NewString(),
		Title:       title,
		Type:        sourceType,
		URL:         url,
		ContentHash: HashContent(content),
		Notes:       notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HashContent returns the hex SHA-256 of cited source content. Empty
// content hashes to the empty string so unhashed sources stay distinguishable.
func HashContent(content string) string {
	if content == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// IsValid checks the source fields
func (s *RegulatorySource) IsValid() error {
	if s.Title == "" {
		return ErrEmptySourceTitle
	}
	switch s.Type {
	case SourceTypeFederal, SourceTypeCVSA, SourceTypeState, SourceTypeCompany, SourceTypeOther:
	default:
		return ErrInvalidSourceType
	}
	return nil
}

// Source errors
var (
	ErrEmptySourceTitle  = NewDomainError("source title cannot be empty")
	ErrInvalidSourceType = NewDomainError("invalid source type")
)
