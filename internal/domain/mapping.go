package domain

import (
	"time"

	"github.com/google/uuid"
)

// MappingStatus is the desired-state marker on a facility/boundary
// association. Mapping rows are status-transitioned, never deleted.
type MappingStatus string

const (
	MappingStatusToBeMapped   MappingStatus = "TO_BE_MAPPED"
	MappingStatusToBeDemapped MappingStatus = "TO_BE_DEMAPPED"
)

// CampaignMappingRow associates a resource (facility) with a boundary code.
type CampaignMappingRow struct {
	ID                      uuid.UUID     `json:"id"`
	CampaignNumber          string        `json:"campaign_number"`
	Type                    ResourceType  `json:"type"`
	UniqueIdentifierForData string        `json:"unique_identifier_for_data"`
	BoundaryCode            string        `json:"boundary_code"`
	MappingID               *string       `json:"mapping_id,omitempty"`
	Status                  MappingStatus `json:"status"`
	CreatedAt               time.Time     `json:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at"`
}

// NewCampaignMappingRow creates a mapping row awaiting downstream mapping.
func NewCampaignMappingRow(campaignNumber string, resourceType ResourceType, uniqueIdentifier, boundaryCode string) CampaignMappingRow {
	now := time.Now()
	return CampaignMappingRow{
		ID:                      uuid.New(),
		CampaignNumber:          campaignNumber,
		Type:                    resourceType,
		UniqueIdentifierForData: uniqueIdentifier,
		BoundaryCode:            boundaryCode,
		Status:                  MappingStatusToBeMapped,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
}

// Key returns the identity used when diffing desired against stored mappings.
func (m CampaignMappingRow) Key() string {
	return m.UniqueIdentifierForData + "|" + m.BoundaryCode
}
