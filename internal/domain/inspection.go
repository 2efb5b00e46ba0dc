package domain

import (
	"time"

	"github.com/google/uuid"
)

// InspectionType represents the kind of inspection event
type InspectionType string

const (
	InspectionTypeLevel1   InspectionType = "LEVEL_1"
	InspectionTypeLevel2   InspectionType = "LEVEL_2"
	InspectionTypeLevel3   InspectionType = "LEVEL_3"
	InspectionTypePreTrip  InspectionType = "SHOP_PRE_TRIP"
	InspectionTypeRoadside InspectionType = "ROADSIDE"
	InspectionTypeAnnual   InspectionType = "ANNUAL"
)

// InspectionStatus represents the derived overall status of an inspection
type InspectionStatus string

const (
	InspectionStatusPending InspectionStatus = "PENDING"
	InspectionStatusPass    InspectionStatus = "PASS"
	InspectionStatusFail    InspectionStatus = "FAIL"
	InspectionStatusOOS     InspectionStatus = "OOS"
)

// Inspection is one real-world inspection event. Status is always
// derived from the findings; it is never set directly by a user except
// through triage resolution, which recomputes it.
type Inspection struct {
	ID          string           `json:"id"`
	AssetRef    string           `json:"asset_ref"`
	Type        InspectionType   `json:"type"`
	VersionID   string           `json:"version_id"`
	InspectorID string           `json:"inspector_id"`
	Status      InspectionStatus `json:"status"`
	StartedAt   time.Time        `json:"started_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewInspection creates an inspection in PENDING against a rule version
func NewInspection(assetRef string, inspType InspectionType, versionID, inspectorID string) *Inspection {
	now := time.Now().UTC()
	return &Inspection{
		ID:          "insp_" + uuid.NewString(),
		AssetRef:    assetRef,
		Type:        inspType,
		VersionID:   versionID,
		InspectorID: inspectorID,
		Status:      InspectionStatusPending,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

// IsValid checks the inspection fields
func (i *Inspection) IsValid() error {
	if i.AssetRef == "" {
		return ErrEmptyAssetRef
	}
	switch i.Type {
	case InspectionTypeLevel1, InspectionTypeLevel2, InspectionTypeLevel3,
		InspectionTypePreTrip, InspectionTypeRoadside, InspectionTypeAnnual:
	default:
		return ErrInvalidInspectionType
	}
	return nil
}

// DeriveStatus computes the overall status from the findings. The
// precedence OOS > PENDING > FAIL > PASS is fixed: a more severe finding
// is never silently downgraded by a later, milder one.
func DeriveStatus(findings []*Finding) InspectionStatus {
	hasTriage := false
	hasFail := false
	for _, f := range findings {
		if f.Outcome.IsOOS() {
			return InspectionStatusOOS
		}
		if f.Outcome == OutcomeTriage {
			hasTriage = true
		}
		if f.FailsInspection() {
			hasFail = true
		}
	}
	if hasTriage {
		return InspectionStatusPending
	}
	if hasFail {
		return InspectionStatusFail
	}
	return InspectionStatusPass
}

// Recompute re-derives the inspection status from its findings
func (i *Inspection) Recompute(findings []*Finding) {
	i.Status = DeriveStatus(findings)
	i.UpdatedAt = time.Now().UTC()
}

// Inspection errors
var (
	ErrEmptyAssetRef         = NewDomainError("asset reference cannot be empty")
	ErrInvalidInspectionType = NewDomainError("invalid inspection type")
)
