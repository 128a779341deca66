package clients

import (
	"context"

	"github.com/hcm-console/project-factory/internal/domain"
)

// CampaignService fetches campaign metadata from the campaign manager.
type CampaignService interface {
	Search(ctx context.Context, tenantID string, ids []string) ([]domain.Campaign, error)
}

// BoundaryService fetches the full boundary relationship tree for a tenant.
type BoundaryService interface {
	RelationshipTree(ctx context.Context, tenantID, hierarchyType string) ([]domain.BoundaryTreeNode, error)
}

// SchemaService fetches dynamic sheet schemas and project-type metadata from
// MDMS.
type SchemaService interface {
	SheetSchema(ctx context.Context, tenantID string, resourceType domain.ResourceType) (domain.SheetSchema, error)
	BeneficiaryMappings(ctx context.Context, tenantID, projectType string) ([]domain.BeneficiaryTargetMapping, error)
}

// ProjectTarget is one per-beneficiary target attached to a project.
type ProjectTarget struct {
	BeneficiaryType string `json:"beneficiaryType"`
	TotalNo         int64  `json:"totalNo"`
}

// Project is the subset of the project service's model this system reads.
type Project struct {
	ID      string          `json:"id"`
	Targets []ProjectTarget `json:"targets"`
}

// ProjectCreateRequest creates one project for a boundary.
type ProjectCreateRequest struct {
	TenantID     string          `json:"tenantId"`
	Name         string          `json:"name"`
	ProjectType  string          `json:"projectType"`
	BoundaryCode string          `json:"boundaryCode"`
	BoundaryType string          `json:"boundaryType"`
	Parent       *string         `json:"parent,omitempty"`
	StartDate    int64           `json:"startDate"`
	EndDate      int64           `json:"endDate"`
	Targets      []ProjectTarget `json:"targets"`
}

// ProjectUpdateRequest replaces the targets of an existing project.
type ProjectUpdateRequest struct {
	ID       string          `json:"id"`
	TenantID string          `json:"tenantId"`
	Targets  []ProjectTarget `json:"targets"`
}

// ProjectService drives project create/update/search downstream calls.
type ProjectService interface {
	Create(ctx context.Context, req ProjectCreateRequest) (string, error)
	Update(ctx context.Context, req ProjectUpdateRequest) error
	Search(ctx context.Context, tenantID string, ids []string) ([]Project, error)
}

// FacilityCreateRequest creates one facility.
type FacilityCreateRequest struct {
	TenantID    string `json:"tenantId"`
	Name        string `json:"name"`
	Usage       string `json:"usage"`
	IsPermanent bool   `json:"isPermanent"`
	Capacity    int64  `json:"storageCapacity,omitempty"`
}

// FacilityService drives facility creation downstream calls.
type FacilityService interface {
	Create(ctx context.Context, req FacilityCreateRequest) (string, error)
}

// EmployeeCreateRequest creates one campaign worker.
type EmployeeCreateRequest struct {
	TenantID    string   `json:"tenantId"`
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phoneNumber"`
	Role        string   `json:"role"`
	Boundaries  []string `json:"boundaries,omitempty"`
}

// EmployeeResult is the per-item outcome of a batch employee create, keyed
// back to its request by phone number.
type EmployeeResult struct {
	UserServiceUUID string `json:"userServiceUuid"`
	UserName        string `json:"userName"`
	Password        string `json:"password"`
}

// EmployeeService drives batch employee creation against HRMS.
type EmployeeService interface {
	CreateBatch(ctx context.Context, reqs []EmployeeCreateRequest) (map[string]EmployeeResult, error)
}

// Encrypter protects generated credentials before they are written into
// row data columns.
type Encrypter interface {
	Encrypt(plaintext string) (string, error)
}
