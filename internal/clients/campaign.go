package clients

import (
	"context"
	"fmt"

	"github.com/hcm-console/project-factory/internal/domain"
)

type campaignClient struct {
	http *HTTPClient
	url  string
}

// NewCampaignService wires the campaign manager search endpoint.
func NewCampaignService(http *HTTPClient, url string) CampaignService {
	return &campaignClient{http: http, url: url}
}

type campaignSearchRequest struct {
	TenantID string   `json:"tenantId"`
	IDs      []string `json:"ids"`
}

type campaignSearchResponse struct {
	CampaignDetails []domain.Campaign `json:"CampaignDetails"`
}

func (c *campaignClient) Search(ctx context.Context, tenantID string, ids []string) ([]domain.Campaign, error) {
	var resp campaignSearchResponse
	err := c.http.PostJSON(ctx, c.url, campaignSearchRequest{TenantID: tenantID, IDs: ids}, &resp)
	if err != nil {
		return nil, fmt.Errorf("campaign search failed: %w", err)
	}
	return resp.CampaignDetails, nil
}
