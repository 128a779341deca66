package clients

import (
	"context"
	"fmt"

	"github.com/hcm-console/project-factory/internal/domain"
)

type boundaryClient struct {
	http  *HTTPClient
	url   string
	cache *Cache
}

// NewBoundaryService wires the boundary relationship search endpoint.
// Relationship trees change rarely, so responses are cached per
// tenant/hierarchy.
func NewBoundaryService(http *HTTPClient, url string, cache *Cache) BoundaryService {
	return &boundaryClient{http: http, url: url, cache: cache}
}

type boundaryRelationshipRequest struct {
	TenantID        string `json:"tenantId"`
	HierarchyType   string `json:"hierarchyType"`
	IncludeChildren bool   `json:"includeChildren"`
}

type boundaryRelationshipResponse struct {
	TenantBoundary []struct {
		Boundary []domain.BoundaryTreeNode `json:"boundary"`
	} `json:"TenantBoundary"`
}

func (c *boundaryClient) RelationshipTree(ctx context.Context, tenantID, hierarchyType string) ([]domain.BoundaryTreeNode, error) {
	cacheKey := "boundary|" + tenantID + "|" + hierarchyType
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]domain.BoundaryTreeNode), nil
	}

	var resp boundaryRelationshipResponse
	err := c.http.PostJSON(ctx, c.url, boundaryRelationshipRequest{
		TenantID:        tenantID,
		HierarchyType:   hierarchyType,
		IncludeChildren: true,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("boundary relationship search failed: %w", err)
	}

	var tree []domain.BoundaryTreeNode
	for _, tenantBoundary := range resp.TenantBoundary {
		tree = append(tree, tenantBoundary.Boundary...)
	}
	if len(tree) == 0 {
		return nil, fmt.Errorf("no boundary relationship found for tenant %s hierarchy %s", tenantID, hierarchyType)
	}

	c.cache.Set(cacheKey, tree)
	return tree, nil
}
