package clients

import (
	"context"
	"fmt"
)

type projectClient struct {
	http      *HTTPClient
	createURL string
	updateURL string
	searchURL string
}

// NewProjectService wires the project service create/update/search endpoints.
func NewProjectService(http *HTTPClient, createURL, updateURL, searchURL string) ProjectService {
	return &projectClient{http: http, createURL: createURL, updateURL: updateURL, searchURL: searchURL}
}

type projectEnvelope struct {
	Projects []Project `json:"Project"`
}

func (c *projectClient) Create(ctx context.Context, req ProjectCreateRequest) (string, error) {
	var resp projectEnvelope
	if err := c.http.PostJSON(ctx, c.createURL, map[string]any{"Projects": []ProjectCreateRequest{req}}, &resp); err != nil {
		return "", fmt.Errorf("project create for boundary %s failed: %w", req.BoundaryCode, err)
	}
	if len(resp.Projects) == 0 || resp.Projects[0].ID == "" {
		return "", fmt.Errorf("project create for boundary %s returned no project id", req.BoundaryCode)
	}
	return resp.Projects[0].ID, nil
}

func (c *projectClient) Update(ctx context.Context, req ProjectUpdateRequest) error {
	if err := c.http.PostJSON(ctx, c.updateURL, map[string]any{"Projects": []ProjectUpdateRequest{req}}, nil); err != nil {
		return fmt.Errorf("project update for %s failed: %w", req.ID, err)
	}
	return nil
}

func (c *projectClient) Search(ctx context.Context, tenantID string, ids []string) ([]Project, error) {
	var resp projectEnvelope
	err := c.http.PostJSON(ctx, c.searchURL, map[string]any{"tenantId": tenantID, "ids": ids}, &resp)
	if err != nil {
		return nil, fmt.Errorf("project search failed: %w", err)
	}
	return resp.Projects, nil
}
