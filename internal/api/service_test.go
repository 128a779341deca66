package api

import (
	"context"
	"testing"

	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/processor"
	"github.com/hcm-console/project-factory/internal/sheet"
)

type stubCampaigns struct {
	campaigns []domain.Campaign
}

func (s *stubCampaigns) Search(ctx context.Context, tenantID string, ids []string) ([]domain.Campaign, error) {
	return s.campaigns, nil
}

type stubProcessor struct {
	resourceType domain.ResourceType
	result       processor.ProcessResult
	requests     []processor.ProcessRequest
}

func (s *stubProcessor) Type() domain.ResourceType {
	return s.resourceType
}

func (s *stubProcessor) Process(ctx context.Context, req processor.ProcessRequest) (processor.ProcessResult, error) {
	s.requests = append(s.requests, req)
	return s.result, nil
}

type stubRows struct {
	rows []domain.CampaignRow
}

func (s *stubRows) ListByCampaign(ctx context.Context, resourceType domain.ResourceType, campaignNumber string, statuses ...domain.RowStatus) ([]domain.CampaignRow, error) {
	return s.rows, nil
}

func (s *stubRows) Upsert(ctx context.Context, rows []domain.CampaignRow) error {
	return nil
}

func TestServiceProcessParsesAndDispatches(t *testing.T) {
	campaigns := &stubCampaigns{campaigns: []domain.Campaign{{CampaignNumber: "CMP-1", TenantID: "mz"}}}
	proc := &stubProcessor{
		resourceType: domain.ResourceTypeBoundary,
		result:       processor.ProcessResult{Inserted: 2, Completed: 2},
	}
	service := NewService(campaigns, processor.NewRegistry(proc), &stubRows{})

	payload := []byte("Code,Target\nmeta,\nB1,10\nB2,20\n")
	summary, err := service.Process(context.Background(), Request{
		TenantID:       "mz",
		CampaignNumber: "CMP-1",
		ResourceType:   domain.ResourceTypeBoundary,
		FileName:       "targets.csv",
		Payload:        payload,
		Localization:   sheet.Localizer{"Code": domain.ColumnBoundaryCode},
	})
	if err != nil {
		t.Fatalf("process returned error: %v", err)
	}

	if summary.RowCount != 2 || summary.Inserted != 2 || summary.Completed != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(proc.requests) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(proc.requests))
	}
	dispatched := proc.requests[0]
	if dispatched.Campaign.CampaignNumber != "CMP-1" {
		t.Fatalf("campaign not resolved: %+v", dispatched.Campaign)
	}
	if dispatched.Rows[0].Get(domain.ColumnBoundaryCode) != "B1" {
		t.Fatalf("localized headers not mapped: %v", dispatched.Rows[0].Cells)
	}
}

func TestServiceProcessRejectsUnknownCampaign(t *testing.T) {
	service := NewService(&stubCampaigns{}, processor.NewRegistry(), &stubRows{})

	_, err := service.Process(context.Background(), Request{
		TenantID:       "mz",
		CampaignNumber: "CMP-404",
		ResourceType:   domain.ResourceTypeBoundary,
		FileName:       "targets.csv",
		Payload:        []byte("Code\nmeta\nB1\n"),
	})
	if err == nil {
		t.Fatalf("expected error for unknown campaign")
	}
}

func TestServiceStatusAggregatesRowStates(t *testing.T) {
	rows := &stubRows{rows: []domain.CampaignRow{
		domain.NewCampaignRow("CMP-1", domain.ResourceTypeFacility, "Clinic A", nil),
		domain.NewCampaignRow("CMP-1", domain.ResourceTypeFacility, "Clinic B", nil).WithStatus(domain.RowStatusFailed),
		domain.NewCampaignRow("CMP-1", domain.ResourceTypeFacility, "Clinic C", nil).WithDownstreamID("FAC-001"),
	}}
	service := NewService(&stubCampaigns{}, processor.NewRegistry(), rows)

	report, err := service.Status(context.Background(), domain.ResourceTypeFacility, "CMP-1")
	if err != nil {
		t.Fatalf("status returned error: %v", err)
	}
	if report.Total != 3 || report.Pending != 1 || report.Failed != 1 || report.Completed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("expected all rows listed, got %d", len(report.Rows))
	}
}
