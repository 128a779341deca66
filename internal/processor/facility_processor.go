package processor

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/hcm-console/project-factory/internal/boundary"
	"github.com/hcm-console/project-factory/internal/clients"
	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/sheet"
	"github.com/hcm-console/project-factory/internal/validation"
)

// FacilityTransformer turns a campaign row into the facility service's
// create payload.
type FacilityTransformer func(tenantID string, row domain.CampaignRow) clients.FacilityCreateRequest

// DefaultFacilityTransform maps the standard facility template columns.
func DefaultFacilityTransform(tenantID string, row domain.CampaignRow) clients.FacilityCreateRequest {
	capacity, _ := strconv.ParseInt(rowString(row, domain.ColumnFacilityCapacity), 10, 64)
	return clients.FacilityCreateRequest{
		TenantID:    tenantID,
		Name:        rowString(row, domain.ColumnFacilityName),
		Usage:       rowString(row, domain.ColumnFacilityUsage),
		IsPermanent: strings.EqualFold(rowString(row, domain.ColumnFacilityStatus), "Permanent"),
		Capacity:    capacity,
	}
}

// FacilityProcessor reconciles facility sheets, creates facilities that the
// downstream service does not know yet, and reconciles facility/boundary
// mappings. Rows already carrying a facility code skip creation entirely.
type FacilityProcessor struct {
	reconciler *Reconciler
	boundaries clients.BoundaryService
	schemas    clients.SchemaService
	facilities clients.FacilityService
	mapper     *MappingReconciler
	transform  FacilityTransformer
}

// NewFacilityProcessor wires a processor for facility sheets.
func NewFacilityProcessor(
	reconciler *Reconciler,
	boundaries clients.BoundaryService,
	schemas clients.SchemaService,
	facilities clients.FacilityService,
	mapper *MappingReconciler,
) *FacilityProcessor {
	return &FacilityProcessor{
		reconciler: reconciler,
		boundaries: boundaries,
		schemas:    schemas,
		facilities: facilities,
		mapper:     mapper,
		transform:  DefaultFacilityTransform,
	}
}

func (p *FacilityProcessor) Type() domain.ResourceType {
	return domain.ResourceTypeFacility
}

func (p *FacilityProcessor) Process(ctx context.Context, req ProcessRequest) (ProcessResult, error) {
	campaign := req.Campaign

	schema, err := p.schemas.SheetSchema(ctx, campaign.TenantID, domain.ResourceTypeFacility)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("facility sheet schema unavailable: %w", err)
	}

	tree, err := p.boundaries.RelationshipTree(ctx, campaign.TenantID, campaign.HierarchyType)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("boundary relationship unavailable: %w", err)
	}
	enriched, err := boundary.Expand(tree, campaign.Boundaries)
	if err != nil {
		return ProcessResult{}, err
	}

	sheetErrors := validation.Collect(
		validation.ValidateRequired(req.Rows, schema),
		validation.ValidateUnique(req.Rows, schema, domain.ColumnFacilityCode),
		validation.ValidateBoundaryCodes(req.Rows, domain.ColumnFacilityBoundaries, boundary.CodeSet(enriched)),
		validation.ValidateActivePresence(req.Rows, domain.ColumnFacilityUsage),
	)
	if len(sheetErrors) > 0 {
		sheet.Annotate(req.Rows, sheetErrors)
		return ProcessResult{SheetErrors: sheetErrors}, nil
	}

	incoming := make([]domain.CampaignRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		name := row.Get(domain.ColumnFacilityName)
		if name == "" {
			continue
		}

		data := make(map[string]any, len(row.Cells))
		for column, value := range row.Cells {
			if column == domain.StatusColumn || column == domain.ErrorDetailsColumn {
				continue
			}
			data[column] = value
		}

		campaignRow := domain.NewCampaignRow(campaign.CampaignNumber, domain.ResourceTypeFacility, name, data)
		if code := row.Get(domain.ColumnFacilityCode); code != "" {
			// Facility already known downstream: pre-completed, no create.
			campaignRow = campaignRow.WithDownstreamID(code)
		}
		incoming = append(incoming, campaignRow)
	}

	delta, err := p.reconciler.Reconcile(ctx, campaign.CampaignNumber, domain.ResourceTypeFacility, incoming)
	if err != nil {
		return ProcessResult{}, err
	}

	completed, failed, err := p.createFacilities(ctx, campaign)
	result := ProcessResult{
		Inserted:  delta.Inserted,
		Updated:   delta.Updated,
		Unchanged: delta.Unchanged,
		Completed: completed,
		Failed:    failed,
	}
	if err != nil {
		return result, err
	}

	if _, _, err := p.mapper.Reconcile(ctx, campaign.CampaignNumber, req.Rows); err != nil {
		return result, err
	}
	if _, err := p.mapper.SyncFacilitySheetData(ctx, campaign.CampaignNumber, req.Rows); err != nil {
		return result, err
	}

	return result, nil
}

// createFacilities submits pending/failed rows to the facility service in
// fixed-size batches, item by item. A failed item marks only its own row
// failed; processing continues.
func (p *FacilityProcessor) createFacilities(ctx context.Context, campaign domain.Campaign) (int, int, error) {
	rows, err := p.reconciler.PendingRows(ctx, campaign.CampaignNumber, domain.ResourceTypeFacility)
	if err != nil {
		return 0, 0, err
	}

	var completed, failed int
	for _, batch := range chunkRows(rows, p.reconciler.BatchSize()) {
		for _, row := range batch {
			facilityCode, err := p.facilities.Create(ctx, p.transform(campaign.TenantID, row))
			if err != nil {
				log.Printf("[FACILITY] create failed for %s: %v", row.UniqueIdentifier, err)
				failed++
				p.reconciler.PersistRow(row.WithStatus(domain.RowStatusFailed))
				continue
			}

			updated := row.WithDownstreamID(facilityCode)
			updated.SetValue(domain.ColumnFacilityCode, facilityCode)
			completed++
			p.reconciler.PersistRow(updated)
		}
	}
	return completed, failed, nil
}
