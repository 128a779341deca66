package domain

import "github.com/google/uuid"

// Campaign is the configured health-campaign instance rows are processed
// against. Fetched from the campaign service, never mutated here.
type Campaign struct {
	ID             uuid.UUID           `json:"id"`
	CampaignNumber string              `json:"campaignNumber"`
	TenantID       string              `json:"tenantId"`
	ProjectType    string              `json:"projectType"`
	HierarchyType  string              `json:"hierarchyType"`
	StartDate      int64               `json:"startDate"`
	EndDate        int64               `json:"endDate"`
	Boundaries     []BoundarySelection `json:"boundaries"`
}
