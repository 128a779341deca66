package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hcm-console/project-factory/internal/domain"
)

type mdmsClient struct {
	http  *HTTPClient
	url   string
	cache *Cache
}

// NewSchemaService wires the MDMS v2 search endpoint for sheet schemas and
// project-type metadata. Schema documents are cached.
func NewSchemaService(http *HTTPClient, url string, cache *Cache) SchemaService {
	return &mdmsClient{http: http, url: url, cache: cache}
}

type mdmsSearchRequest struct {
	TenantID   string `json:"tenantId"`
	SchemaCode string `json:"schemaCode"`
	UniqueID   string `json:"uniqueIdentifier,omitempty"`
}

type mdmsSearchResponse struct {
	MDMS []struct {
		Data json.RawMessage `json:"data"`
	} `json:"mdms"`
}

func (c *mdmsClient) SheetSchema(ctx context.Context, tenantID string, resourceType domain.ResourceType) (domain.SheetSchema, error) {
	cacheKey := "schema|" + tenantID + "|" + string(resourceType)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.(domain.SheetSchema), nil
	}

	var resp mdmsSearchResponse
	err := c.http.PostJSON(ctx, c.url, mdmsSearchRequest{
		TenantID:   tenantID,
		SchemaCode: "HCM-ADMIN-CONSOLE.sheetSchema",
		UniqueID:   string(resourceType),
	}, &resp)
	if err != nil {
		return domain.SheetSchema{}, fmt.Errorf("mdms schema search failed: %w", err)
	}
	if len(resp.MDMS) == 0 {
		return domain.SheetSchema{}, fmt.Errorf("no sheet schema configured for resource type %s", resourceType)
	}

	var schema domain.SheetSchema
	if err := json.Unmarshal(resp.MDMS[0].Data, &schema); err != nil {
		return domain.SheetSchema{}, fmt.Errorf("failed to decode sheet schema: %w", err)
	}

	c.cache.Set(cacheKey, schema)
	return schema, nil
}

func (c *mdmsClient) BeneficiaryMappings(ctx context.Context, tenantID, projectType string) ([]domain.BeneficiaryTargetMapping, error) {
	cacheKey := "beneficiaries|" + tenantID + "|" + projectType
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]domain.BeneficiaryTargetMapping), nil
	}

	var resp mdmsSearchResponse
	err := c.http.PostJSON(ctx, c.url, mdmsSearchRequest{
		TenantID:   tenantID,
		SchemaCode: "HCM-PROJECT-TYPES.projectType",
		UniqueID:   projectType,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("mdms project type search failed: %w", err)
	}
	if len(resp.MDMS) == 0 {
		return nil, fmt.Errorf("no project type config found for %s", projectType)
	}

	var config struct {
		Beneficiaries []domain.BeneficiaryTargetMapping `json:"beneficiaries"`
	}
	if err := json.Unmarshal(resp.MDMS[0].Data, &config); err != nil {
		return nil, fmt.Errorf("failed to decode project type config: %w", err)
	}

	c.cache.Set(cacheKey, config.Beneficiaries)
	return config.Beneficiaries, nil
}
