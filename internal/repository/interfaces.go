package repository

import (
	"context"

	"github.com/hcm-console/project-factory/internal/domain"
)

// RowRepository reads and upserts campaign rows. Reads are synchronous; all
// writes issued by processors travel through the bus producer and land here
// asynchronously, which is why callers observe a settle delay after pushing.
type RowRepository interface {
	// ListByCampaign returns all rows for a type/campaign, optionally
	// filtered to the given statuses.
	ListByCampaign(ctx context.Context, resourceType domain.ResourceType, campaignNumber string, statuses ...domain.RowStatus) ([]domain.CampaignRow, error)
	// Upsert inserts or replaces rows keyed by (campaign, type, identifier).
	Upsert(ctx context.Context, rows []domain.CampaignRow) error
}

// MappingRepository reads and upserts facility/boundary mapping rows.
// Mapping rows are status-transitioned, never deleted.
type MappingRepository interface {
	ListByCampaign(ctx context.Context, resourceType domain.ResourceType, campaignNumber string) ([]domain.CampaignMappingRow, error)
	Upsert(ctx context.Context, rows []domain.CampaignMappingRow) error
}
