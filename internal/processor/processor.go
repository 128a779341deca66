package processor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/sheet"
)

// ProcessRequest carries one parsed sheet for one campaign.
type ProcessRequest struct {
	Campaign domain.Campaign
	Rows     []sheet.Row
}

// ProcessResult summarizes one processing pass. Partial success is normal:
// a sheet may end with some rows completed, some failed, and validation
// errors for the operator to fix and re-upload.
type ProcessResult struct {
	SheetErrors []domain.SheetError `json:"sheetErrors,omitempty"`
	Inserted    int                 `json:"inserted"`
	Updated     int                 `json:"updated"`
	Unchanged   int                 `json:"unchanged"`
	Completed   int                 `json:"completed"`
	Failed      int                 `json:"failed"`
}

// ResourceProcessor reconciles one resource type's sheet against the row
// store and drives downstream object creation.
type ResourceProcessor interface {
	Type() domain.ResourceType
	Process(ctx context.Context, req ProcessRequest) (ProcessResult, error)
}

// Registry selects a processor by resource type.
type Registry struct {
	processors map[domain.ResourceType]ResourceProcessor
}

// NewRegistry indexes the given processors by type.
func NewRegistry(processors ...ResourceProcessor) *Registry {
	registry := &Registry{processors: make(map[domain.ResourceType]ResourceProcessor, len(processors))}
	for _, p := range processors {
		registry.processors[p.Type()] = p
	}
	return registry
}

// For returns the processor registered for a resource type.
func (r *Registry) For(resourceType domain.ResourceType) (ResourceProcessor, error) {
	p, ok := r.processors[resourceType]
	if !ok {
		return nil, fmt.Errorf("no processor registered for resource type %q", resourceType)
	}
	return p, nil
}

// retrySelection is the predicate every creation engine uses to pick up
// rows needing work: fresh rows plus rows that failed a previous attempt.
var retrySelection = []domain.RowStatus{domain.RowStatusPending, domain.RowStatusFailed}

// rowInt reads a numeric column from persisted row data. Values round-trip
// through JSON, so integers may come back as float64.
func rowInt(row domain.CampaignRow, column string) int64 {
	switch v := row.Value(column).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return int64(n)
		}
	}
	return 0
}

// rowString reads a string column from persisted row data.
func rowString(row domain.CampaignRow, column string) string {
	switch v := row.Value(column).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
