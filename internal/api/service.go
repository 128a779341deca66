package api

import (
	"context"
	"fmt"

	"github.com/hcm-console/project-factory/internal/clients"
	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/processor"
	"github.com/hcm-console/project-factory/internal/repository"
	"github.com/hcm-console/project-factory/internal/sheet"
)

// Request describes one sheet processing submission.
type Request struct {
	TenantID       string
	CampaignNumber string
	ResourceType   domain.ResourceType
	FileName       string
	Payload        []byte
	Localization   sheet.Localizer
}

// Summary is the processing outcome reported back to the console.
type Summary struct {
	CampaignNumber string              `json:"campaignNumber"`
	ResourceType   domain.ResourceType `json:"resourceType"`
	RowCount       int                 `json:"rowCount"`
	Inserted       int                 `json:"inserted"`
	Updated        int                 `json:"updated"`
	Unchanged      int                 `json:"unchanged"`
	Completed      int                 `json:"completed"`
	Failed         int                 `json:"failed"`
	SheetErrors    []domain.SheetError `json:"sheetErrors,omitempty"`
}

// RowView is the per-row status exposed on the status endpoint.
type RowView struct {
	UniqueIdentifier     string           `json:"uniqueIdentifier"`
	Status               domain.RowStatus `json:"status"`
	UniqueIDAfterProcess *string          `json:"uniqueIdAfterProcess,omitempty"`
	Data                 map[string]any   `json:"data"`
}

// StatusReport aggregates the stored rows for one campaign resource.
type StatusReport struct {
	CampaignNumber string              `json:"campaignNumber"`
	ResourceType   domain.ResourceType `json:"resourceType"`
	Total          int                 `json:"total"`
	Pending        int                 `json:"pending"`
	Completed      int                 `json:"completed"`
	Failed         int                 `json:"failed"`
	Rows           []RowView           `json:"rows"`
}

// Service parses uploaded sheets, resolves the campaign, and dispatches to
// the processor registered for the resource type.
type Service struct {
	campaigns clients.CampaignService
	registry  *processor.Registry
	rows      repository.RowRepository
}

// NewService wires the processing front door.
func NewService(campaigns clients.CampaignService, registry *processor.Registry, rows repository.RowRepository) *Service {
	return &Service{campaigns: campaigns, registry: registry, rows: rows}
}

// Process runs one uploaded sheet through validation, reconciliation, and
// downstream resource creation.
func (s *Service) Process(ctx context.Context, req Request) (Summary, error) {
	campaigns, err := s.campaigns.Search(ctx, req.TenantID, []string{req.CampaignNumber})
	if err != nil {
		return Summary{}, fmt.Errorf("campaign lookup failed: %w", err)
	}
	if len(campaigns) == 0 {
		return Summary{}, fmt.Errorf("campaign %s not found", req.CampaignNumber)
	}
	campaign := campaigns[0]

	rows, err := sheet.Parse(req.FileName, req.Payload, req.Localization)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to parse sheet: %w", err)
	}

	proc, err := s.registry.For(req.ResourceType)
	if err != nil {
		return Summary{}, err
	}

	result, err := proc.Process(ctx, processor.ProcessRequest{Campaign: campaign, Rows: rows})
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		CampaignNumber: campaign.CampaignNumber,
		ResourceType:   req.ResourceType,
		RowCount:       len(rows),
		Inserted:       result.Inserted,
		Updated:        result.Updated,
		Unchanged:      result.Unchanged,
		Completed:      result.Completed,
		Failed:         result.Failed,
		SheetErrors:    result.SheetErrors,
	}, nil
}

// Status reports the stored row states for a campaign resource.
func (s *Service) Status(ctx context.Context, resourceType domain.ResourceType, campaignNumber string) (StatusReport, error) {
	rows, err := s.rows.ListByCampaign(ctx, resourceType, campaignNumber)
	if err != nil {
		return StatusReport{}, fmt.Errorf("failed to load rows: %w", err)
	}

	report := StatusReport{
		CampaignNumber: campaignNumber,
		ResourceType:   resourceType,
		Total:          len(rows),
		Rows:           make([]RowView, 0, len(rows)),
	}
	for _, row := range rows {
		switch row.Status {
		case domain.RowStatusPending:
			report.Pending++
		case domain.RowStatusCompleted:
			report.Completed++
		case domain.RowStatusFailed:
			report.Failed++
		}
		report.Rows = append(report.Rows, RowView{
			UniqueIdentifier:     row.UniqueIdentifier,
			Status:               row.Status,
			UniqueIDAfterProcess: row.UniqueIDAfterProcess,
			Data:                 row.Data,
		})
	}
	return report, nil
}
