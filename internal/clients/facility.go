package clients

import (
	"context"
	"fmt"
)

type facilityClient struct {
	http *HTTPClient
	url  string
}

// NewFacilityService wires the facility service create endpoint.
func NewFacilityService(http *HTTPClient, url string) FacilityService {
	return &facilityClient{http: http, url: url}
}

func (c *facilityClient) Create(ctx context.Context, req FacilityCreateRequest) (string, error) {
	var resp struct {
		Facility struct {
			ID string `json:"id"`
		} `json:"Facility"`
	}
	if err := c.http.PostJSON(ctx, c.url, map[string]any{"Facility": req}, &resp); err != nil {
		return "", fmt.Errorf("facility create for %s failed: %w", req.Name, err)
	}
	if resp.Facility.ID == "" {
		return "", fmt.Errorf("facility create for %s returned no facility id", req.Name)
	}
	return resp.Facility.ID, nil
}
