package processor

import (
	"context"
	"fmt"
	"log"

	"github.com/hcm-console/project-factory/internal/boundary"
	"github.com/hcm-console/project-factory/internal/clients"
	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/sheet"
	"github.com/hcm-console/project-factory/internal/validation"
)

// BoundaryProcessor reconciles target sheets and drives project creation in
// boundary-hierarchy order: a child project's parent field must reference
// the already-assigned ID of its parent's project, so creates run strictly
// in topological order.
type BoundaryProcessor struct {
	reconciler *Reconciler
	boundaries clients.BoundaryService
	schemas    clients.SchemaService
	projects   clients.ProjectService
	bounds     validation.TargetBounds
}

// BoundaryProcessorOption customizes the processor.
type BoundaryProcessorOption func(*BoundaryProcessor)

// WithMicroplanBounds switches target validation to the microplan range.
func WithMicroplanBounds() BoundaryProcessorOption {
	return func(p *BoundaryProcessor) {
		p.bounds = validation.MicroplanBounds
	}
}

// NewBoundaryProcessor wires a processor for boundary/target sheets.
func NewBoundaryProcessor(
	reconciler *Reconciler,
	boundaries clients.BoundaryService,
	schemas clients.SchemaService,
	projects clients.ProjectService,
	opts ...BoundaryProcessorOption,
) *BoundaryProcessor {
	p := &BoundaryProcessor{
		reconciler: reconciler,
		boundaries: boundaries,
		schemas:    schemas,
		projects:   projects,
		bounds:     validation.StandardBounds,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *BoundaryProcessor) Type() domain.ResourceType {
	return domain.ResourceTypeBoundary
}

// Process validates the target sheet, enriches the boundary selection, rolls
// targets up the hierarchy, reconciles rows, and creates or updates projects
// in dependency order.
func (p *BoundaryProcessor) Process(ctx context.Context, req ProcessRequest) (ProcessResult, error) {
	campaign := req.Campaign

	schema, err := p.schemas.SheetSchema(ctx, campaign.TenantID, domain.ResourceTypeBoundary)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("target sheet schema unavailable: %w", err)
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
		validation.ValidateTargets(req.Rows, schema, p.bounds),
		validation.ValidateUnique(req.Rows, schema, ""),
		validation.ValidateBoundaryCodes(req.Rows, domain.ColumnBoundaryCode, boundary.CodeSet(enriched)),
	)
	if len(sheetErrors) > 0 {
		sheet.Annotate(req.Rows, sheetErrors)
		return ProcessResult{SheetErrors: sheetErrors}, nil
	}

	targetColumns := schema.TargetColumns()
	sheetData := make(map[string]map[string]any, len(req.Rows))
	for _, row := range req.Rows {
		code := row.Get(domain.ColumnBoundaryCode)
		if code == "" {
			continue
		}
		values := make(map[string]any, len(targetColumns))
		for _, column := range targetColumns {
			if value, ok := validation.ParseTarget(row.Get(column.Name)); ok {
				values[column.Name] = value
			}
		}
		sheetData[code] = values
	}

	totals := boundary.RollUpTargets(enriched, sheetData)

	incoming := make([]domain.CampaignRow, 0, len(enriched))
	for _, node := range enriched {
		data := make(map[string]any, len(totals[node.Code])+1)
		data[domain.ColumnBoundaryCode] = node.Code
		for column, value := range totals[node.Code] {
			data[column] = value
		}
		incoming = append(incoming, domain.NewCampaignRow(campaign.CampaignNumber, domain.ResourceTypeBoundary, node.Code, data))
	}

	delta, err := p.reconciler.Reconcile(ctx, campaign.CampaignNumber, domain.ResourceTypeBoundary, incoming)
	if err != nil {
		return ProcessResult{}, err
	}

	completed, failed, err := p.createProjects(ctx, campaign, enriched)
	if err != nil {
		return ProcessResult{Inserted: delta.Inserted, Updated: delta.Updated, Unchanged: delta.Unchanged}, err
	}

	return ProcessResult{
		Inserted:  delta.Inserted,
		Updated:   delta.Updated,
		Unchanged: delta.Unchanged,
		Completed: completed,
		Failed:    failed,
	}, nil
}

// createProjects walks the boundary set in topological order, creating a
// project per pending/failed row and updating targets on rows already
// carrying a project ID. A child whose declared parent has no assigned
// project ID fails explicitly; processing continues with the next row.
func (p *BoundaryProcessor) createProjects(ctx context.Context, campaign domain.Campaign, enriched []domain.BoundaryNode) (int, int, error) {
	ordered, err := boundary.TopologicalOrder(enriched)
	if err != nil {
		return 0, 0, err
	}

	beneficiaries, err := p.schemas.BeneficiaryMappings(ctx, campaign.TenantID, campaign.ProjectType)
	if err != nil {
		return 0, 0, fmt.Errorf("beneficiary target config unavailable: %w", err)
	}

	rows, err := p.reconciler.AllRows(ctx, campaign.CampaignNumber, domain.ResourceTypeBoundary)
	if err != nil {
		return 0, 0, err
	}

	byCode := make(map[string]domain.CampaignRow, len(rows))
	codeToProject := make(map[string]string)
	for _, row := range rows {
		byCode[row.UniqueIdentifier] = row
		if row.UniqueIDAfterProcess != nil {
			codeToProject[row.UniqueIdentifier] = *row.UniqueIDAfterProcess
		}
	}

	var completed, failed int
	for _, node := range ordered {
		row, ok := byCode[node.Code]
		if !ok {
			continue
		}
		if row.Status != domain.RowStatusPending && row.Status != domain.RowStatusFailed {
			continue
		}

		targets := targetsFromRow(row, beneficiaries)

		if row.UniqueIDAfterProcess != nil {
			if err := p.updateProject(ctx, campaign, row, targets); err != nil {
				log.Printf("[PROJECT] update failed for boundary %s: %v", node.Code, err)
				failed++
				p.reconciler.PersistRow(row.WithStatus(domain.RowStatusFailed))
				continue
			}
			completed++
			p.reconciler.PersistRow(row.WithStatus(domain.RowStatusCompleted))
			continue
		}

		var parent *string
		if node.Parent != nil {
			parentProject, created := codeToProject[*node.Parent]
			if !created {
				log.Printf("[PROJECT] boundary %s declares parent %s with no project yet; failing row", node.Code, *node.Parent)
				failed++
				p.reconciler.PersistRow(row.WithStatus(domain.RowStatusFailed))
				continue
			}
			parent = &parentProject
		}

		projectID, err := p.projects.Create(ctx, clients.ProjectCreateRequest{
			TenantID:     campaign.TenantID,
			Name:         node.Code,
			ProjectType:  campaign.ProjectType,
			BoundaryCode: node.Code,
			BoundaryType: node.Level,
			Parent:       parent,
			StartDate:    campaign.StartDate,
			EndDate:      campaign.EndDate,
			Targets:      targets,
		})
		if err != nil {
			log.Printf("[PROJECT] create failed for boundary %s: %v", node.Code, err)
			failed++
			p.reconciler.PersistRow(row.WithStatus(domain.RowStatusFailed))
			continue
		}

		codeToProject[node.Code] = projectID
		completed++
		p.reconciler.PersistRow(row.WithDownstreamID(projectID))
	}

	return completed, failed, nil
}

func (p *BoundaryProcessor) updateProject(ctx context.Context, campaign domain.Campaign, row domain.CampaignRow, targets []clients.ProjectTarget) error {
	projectID := *row.UniqueIDAfterProcess

	existing, err := p.projects.Search(ctx, campaign.TenantID, []string{projectID})
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return fmt.Errorf("project %s not found", projectID)
	}

	return p.projects.Update(ctx, clients.ProjectUpdateRequest{
		ID:       projectID,
		TenantID: campaign.TenantID,
		Targets:  mergeTargets(existing[0].Targets, targets),
	})
}

// targetsFromRow sums the row's target columns per configured beneficiary
// mapping.
func targetsFromRow(row domain.CampaignRow, beneficiaries []domain.BeneficiaryTargetMapping) []clients.ProjectTarget {
	targets := make([]clients.ProjectTarget, 0, len(beneficiaries))
	for _, mapping := range beneficiaries {
		var total int64
		for _, column := range mapping.Columns {
			total += rowInt(row, column)
		}
		targets = append(targets, clients.ProjectTarget{
			BeneficiaryType: mapping.BeneficiaryType,
			TotalNo:         total,
		})
	}
	return targets
}

// mergeTargets overwrites the target value for a beneficiary type already
// present on the project and appends entries for new beneficiary types.
func mergeTargets(existing, desired []clients.ProjectTarget) []clients.ProjectTarget {
	merged := make([]clients.ProjectTarget, len(existing))
	copy(merged, existing)

	for _, target := range desired {
		replaced := false
		for i := range merged {
			if merged[i].BeneficiaryType == target.BeneficiaryType {
				merged[i].TotalNo = target.TotalNo
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, target)
		}
	}
	return merged
}
