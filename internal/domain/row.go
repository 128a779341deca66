package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType identifies the kind of sheet a campaign row came from.
type ResourceType string

const (
	ResourceTypeBoundary ResourceType = "boundary"
	ResourceTypeFacility ResourceType = "facility"
	ResourceTypeUser     ResourceType = "user"
)

// RowStatus is the lifecycle state of a campaign row.
type RowStatus string

const (
	RowStatusPending   RowStatus = "pending"
	RowStatusCompleted RowStatus = "completed"
	RowStatusFailed    RowStatus = "failed"
)

// CampaignRow is one persisted unit of uploaded sheet data, keyed by
// (CampaignNumber, Type, UniqueIdentifier).
type CampaignRow struct {
	ID                   uuid.UUID      `json:"id"`
	CampaignNumber       string         `json:"campaign_number"`
	Type                 ResourceType   `json:"type"`
	UniqueIdentifier     string         `json:"unique_identifier"`
	Data                 map[string]any `json:"data"`
	Status               RowStatus      `json:"status"`
	UniqueIDAfterProcess *string        `json:"unique_id_after_process,omitempty"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// NewCampaignRow creates a pending row for a freshly seen unique identifier.
func NewCampaignRow(campaignNumber string, resourceType ResourceType, uniqueIdentifier string, data map[string]any) CampaignRow {
	now := time.Now()
	return CampaignRow{
		ID:               uuid.New(),
		CampaignNumber:   campaignNumber,
		Type:             resourceType,
		UniqueIdentifier: uniqueIdentifier,
		Data:             copyData(data),
		Status:           RowStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// WithStatus returns a copy of the row with an updated lifecycle status.
func (r CampaignRow) WithStatus(status RowStatus) CampaignRow {
	r.Status = status
	r.UpdatedAt = time.Now()
	return r
}

// WithDownstreamID returns a copy of the row marked completed with the ID
// assigned by the downstream create call.
func (r CampaignRow) WithDownstreamID(id string) CampaignRow {
	r.UniqueIDAfterProcess = &id
	r.Status = RowStatusCompleted
	r.UpdatedAt = time.Now()
	return r
}

// SetValue writes a single column value into the row data map.
func (r *CampaignRow) SetValue(column string, value any) {
	if r.Data == nil {
		r.Data = make(map[string]any)
	}
	r.Data[column] = value
}

// Value reads a column value, returning nil when absent.
func (r CampaignRow) Value(column string) any {
	if r.Data == nil {
		return nil
	}
	return r.Data[column]
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
