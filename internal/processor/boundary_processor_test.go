package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/sheet"
)

func boundaryFixtures() (*stubBoundaryService, *stubSchemaService, domain.Campaign) {
	boundaries := &stubBoundaryService{
		tree: []domain.BoundaryTreeNode{
			{
				Code:         "PROV_A",
				BoundaryType: "Province",
				Children: []domain.BoundaryTreeNode{
					{Code: "DIST_B", BoundaryType: "District"},
				},
			},
		},
	}
	schemas := &stubSchemaService{
		schema: domain.SheetSchema{
			Columns: []domain.ColumnRule{
				{Name: domain.ColumnBoundaryCode, Required: true},
				{Name: "TARGET_HOUSEHOLDS", Required: true, IsTarget: true},
			},
		},
		beneficiaries: []domain.BeneficiaryTargetMapping{
			{BeneficiaryType: "HOUSEHOLD", Columns: []string{"TARGET_HOUSEHOLDS"}},
		},
	}
	campaign := domain.Campaign{
		CampaignNumber: "CMP-1",
		TenantID:       "mz",
		ProjectType:    "bednet",
		HierarchyType:  "ADMIN",
		StartDate:      1700000000000,
		EndDate:        1800000000000,
		Boundaries: []domain.BoundarySelection{
			{Code: "PROV_A", IncludeAllChildren: true},
		},
	}
	return boundaries, schemas, campaign
}

func TestBoundaryProcessorCreatesProjectsParentFirst(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	boundaries, schemas, campaign := boundaryFixtures()
	projects := newStubProjectService()
	processor := NewBoundaryProcessor(reconciler, boundaries, schemas, projects)

	req := ProcessRequest{
		Campaign: campaign,
		Rows: []sheet.Row{
			{Number: 3, Cells: map[string]string{domain.ColumnBoundaryCode: "DIST_B", "TARGET_HOUSEHOLDS": "40"}},
		},
	}

	result, err := processor.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if len(result.SheetErrors) != 0 {
		t.Fatalf("unexpected sheet errors: %v", result.SheetErrors)
	}
	if result.Completed != 2 || result.Failed != 0 {
		t.Fatalf("expected both boundaries completed, got %+v", result)
	}

	if len(projects.created) != 2 {
		t.Fatalf("expected 2 project creates, got %d", len(projects.created))
	}
	if projects.created[0].BoundaryCode != "PROV_A" {
		t.Fatalf("parent project must be created first, got %s", projects.created[0].BoundaryCode)
	}
	child := projects.created[1]
	if child.BoundaryCode != "DIST_B" {
		t.Fatalf("expected DIST_B second, got %s", child.BoundaryCode)
	}
	if child.Parent == nil || *child.Parent != "proj-PROV_A" {
		t.Fatalf("child must reference the parent's assigned project ID, got %v", child.Parent)
	}

	// The province has no sheet row; its target rolls up from the district.
	if projects.created[0].Targets[0].TotalNo != 40 {
		t.Fatalf("expected rolled-up province target 40, got %d", projects.created[0].Targets[0].TotalNo)
	}

	stored, _ := rows.get("CMP-1", domain.ResourceTypeBoundary, "DIST_B")
	if stored.Status != domain.RowStatusCompleted || stored.UniqueIDAfterProcess == nil {
		t.Fatalf("district row should record its project: %+v", stored)
	}
}

func TestBoundaryProcessorFailedParentFailsChild(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	boundaries, schemas, campaign := boundaryFixtures()
	projects := newStubProjectService()
	projects.failFor["PROV_A"] = errors.New("project service unavailable")
	processor := NewBoundaryProcessor(reconciler, boundaries, schemas, projects)

	req := ProcessRequest{
		Campaign: campaign,
		Rows: []sheet.Row{
			{Number: 3, Cells: map[string]string{domain.ColumnBoundaryCode: "DIST_B", "TARGET_HOUSEHOLDS": "40"}},
		},
	}

	result, err := processor.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if result.Completed != 0 || result.Failed != 2 {
		t.Fatalf("parent and child should both fail, got %+v", result)
	}

	parent, _ := rows.get("CMP-1", domain.ResourceTypeBoundary, "PROV_A")
	child, _ := rows.get("CMP-1", domain.ResourceTypeBoundary, "DIST_B")
	if parent.Status != domain.RowStatusFailed || child.Status != domain.RowStatusFailed {
		t.Fatalf("expected failed rows, got parent=%s child=%s", parent.Status, child.Status)
	}
}

func TestBoundaryProcessorRetryPicksUpFailedRows(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	boundaries, schemas, campaign := boundaryFixtures()
	projects := newStubProjectService()
	projects.failFor["PROV_A"] = errors.New("transient outage")
	processor := NewBoundaryProcessor(reconciler, boundaries, schemas, projects)

	req := ProcessRequest{
		Campaign: campaign,
		Rows: []sheet.Row{
			{Number: 3, Cells: map[string]string{domain.ColumnBoundaryCode: "DIST_B", "TARGET_HOUSEHOLDS": "40"}},
		},
	}

	if _, err := processor.Process(context.Background(), req); err != nil {
		t.Fatalf("first pass returned error: %v", err)
	}

	// Same sheet again after the outage clears: rows are unchanged but still
	// failed, so creation retries them.
	delete(projects.failFor, "PROV_A")
	result, err := processor.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("second pass returned error: %v", err)
	}
	if result.Inserted != 0 || result.Updated != 0 {
		t.Fatalf("identical re-upload should not mutate rows, got %+v", result)
	}
	if result.Completed != 2 {
		t.Fatalf("failed rows should complete on retry, got %+v", result)
	}
}

func TestBoundaryProcessorUpdatesExistingProjectTargets(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	boundaries, schemas, campaign := boundaryFixtures()
	projects := newStubProjectService()
	processor := NewBoundaryProcessor(reconciler, boundaries, schemas, projects)

	first := ProcessRequest{
		Campaign: campaign,
		Rows: []sheet.Row{
			{Number: 3, Cells: map[string]string{domain.ColumnBoundaryCode: "DIST_B", "TARGET_HOUSEHOLDS": "40"}},
		},
	}
	if _, err := processor.Process(context.Background(), first); err != nil {
		t.Fatalf("first pass returned error: %v", err)
	}

	second := ProcessRequest{
		Campaign: campaign,
		Rows: []sheet.Row{
			{Number: 3, Cells: map[string]string{domain.ColumnBoundaryCode: "DIST_B", "TARGET_HOUSEHOLDS": "75"}},
		},
	}
	result, err := processor.Process(context.Background(), second)
	if err != nil {
		t.Fatalf("second pass returned error: %v", err)
	}
	if result.Updated != 2 {
		t.Fatalf("changed targets should update both boundary rows, got %+v", result)
	}
	if len(projects.created) != 2 {
		t.Fatalf("no new projects expected, got %d creates", len(projects.created))
	}
	if len(projects.updated) != 2 {
		t.Fatalf("expected target updates for both projects, got %d", len(projects.updated))
	}
	if projects.updated[0].Targets[0].TotalNo != 75 && projects.updated[1].Targets[0].TotalNo != 75 {
		t.Fatalf("updated targets not propagated: %+v", projects.updated)
	}
}

func TestBoundaryProcessorAnnotatesValidationErrors(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	boundaries, schemas, campaign := boundaryFixtures()
	projects := newStubProjectService()
	processor := NewBoundaryProcessor(reconciler, boundaries, schemas, projects)

	sheetRows := []sheet.Row{
		{Number: 3, Cells: map[string]string{domain.ColumnBoundaryCode: "DIST_B", "TARGET_HOUSEHOLDS": "5.5"}},
		{Number: 4, Cells: map[string]string{domain.ColumnBoundaryCode: "NOT_SELECTED", "TARGET_HOUSEHOLDS": "10"}},
	}
	result, err := processor.Process(context.Background(), ProcessRequest{Campaign: campaign, Rows: sheetRows})
	if err != nil {
		t.Fatalf("process returned error: %v", err)
	}

	if len(result.SheetErrors) != 2 {
		t.Fatalf("expected 2 sheet errors, got %v", result.SheetErrors)
	}
	if sheetRows[0].Cells[domain.StatusColumn] != domain.StatusInvalid {
		t.Fatalf("invalid row not annotated: %v", sheetRows[0].Cells)
	}
	if len(projects.created) != 0 {
		t.Fatalf("no projects may be created when validation fails")
	}
	if len(rows.order) != 0 {
		t.Fatalf("no rows may be persisted when validation fails")
	}
}

func TestBoundaryProcessorMicroplanBounds(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	boundaries, schemas, campaign := boundaryFixtures()
	projects := newStubProjectService()
	processor := NewBoundaryProcessor(reconciler, boundaries, schemas, projects, WithMicroplanBounds())

	req := ProcessRequest{
		Campaign: campaign,
		Rows: []sheet.Row{
			{Number: 3, Cells: map[string]string{domain.ColumnBoundaryCode: "DIST_B", "TARGET_HOUSEHOLDS": "50000000"}},
		},
	}
	result, err := processor.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if len(result.SheetErrors) != 0 {
		t.Fatalf("microplan bounds should accept 50M, got %v", result.SheetErrors)
	}
}
