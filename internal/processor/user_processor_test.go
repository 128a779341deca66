package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/sheet"
)

func userFixtures() (*stubSchemaService, domain.Campaign) {
	schemas := &stubSchemaService{
		schema: domain.SheetSchema{
			Columns: []domain.ColumnRule{
				{Name: domain.ColumnUserFullName, Required: true},
				{Name: domain.ColumnPhoneNumber, Required: true, Unique: true},
				{Name: domain.ColumnUserRole, Required: true},
			},
		},
	}
	campaign := domain.Campaign{CampaignNumber: "CMP-1", TenantID: "mz"}
	return schemas, campaign
}

func userRow(number int, name, phone, role, boundaries string) sheet.Row {
	cells := map[string]string{
		domain.ColumnUserFullName: name,
		domain.ColumnPhoneNumber:  phone,
		domain.ColumnUserRole:     role,
	}
	if boundaries != "" {
		cells[domain.ColumnBoundaryCode] = boundaries
	}
	return sheet.Row{Number: number, Cells: cells}
}

func TestUserProcessorCreatesEmployeesAndStoresCredentials(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	schemas, campaign := userFixtures()
	employees := &stubEmployeeService{}
	processor := NewUserProcessor(reconciler, schemas, employees, stubEncrypter{})

	req := ProcessRequest{
		Campaign: campaign,
		Rows: []sheet.Row{
			userRow(3, "Ana", "555-0100", "DISTRIBUTOR", "B1, B2"),
			userRow(4, "Berto", "555-0101", "SUPERVISOR", ""),
		},
	}

	result, err := processor.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if result.Completed != 2 || result.Failed != 0 {
		t.Fatalf("expected both users completed, got %+v", result)
	}

	if len(employees.batches) != 1 || len(employees.batches[0]) != 2 {
		t.Fatalf("expected one batch of two requests, got %+v", employees.batches)
	}
	first := employees.batches[0][0]
	if first.PhoneNumber != "555-0100" || first.Role != "DISTRIBUTOR" {
		t.Fatalf("unexpected request: %+v", first)
	}
	if len(first.Boundaries) != 2 || first.Boundaries[0] != "B1" {
		t.Fatalf("boundary codes not split into the request: %v", first.Boundaries)
	}

	row, _ := rows.get("CMP-1", domain.ResourceTypeUser, "555-0100")
	if row.Status != domain.RowStatusCompleted {
		t.Fatalf("expected completed row, got %s", row.Status)
	}
	if row.UniqueIDAfterProcess == nil || *row.UniqueIDAfterProcess != "uuid-555-0100" {
		t.Fatalf("user service UUID not recorded: %v", row.UniqueIDAfterProcess)
	}
	if row.Value(domain.ColumnUserName) != "enc(user-555-0100)" {
		t.Fatalf("credentials must be stored encrypted: %v", row.Data)
	}
	if row.Value(domain.ColumnPassword) != "enc(pass-555-0100)" {
		t.Fatalf("password must be stored encrypted: %v", row.Data)
	}
}

func TestUserProcessorBatchErrorFailsWholeBatch(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	schemas, campaign := userFixtures()
	employees := &stubEmployeeService{err: errors.New("hrms unavailable")}
	processor := NewUserProcessor(reconciler, schemas, employees, stubEncrypter{})

	req := ProcessRequest{
		Campaign: campaign,
		Rows: []sheet.Row{
			userRow(3, "Ana", "555-0100", "DISTRIBUTOR", ""),
			userRow(4, "Berto", "555-0101", "SUPERVISOR", ""),
		},
	}

	result, err := processor.Process(context.Background(), req)
	if err == nil {
		t.Fatalf("expected the batch error to propagate")
	}
	if result.Failed != 2 || result.Completed != 0 {
		t.Fatalf("every row in the failed batch must fail, got %+v", result)
	}

	for _, phone := range []string{"555-0100", "555-0101"} {
		row, _ := rows.get("CMP-1", domain.ResourceTypeUser, phone)
		if row.Status != domain.RowStatusFailed {
			t.Fatalf("row %s should be failed, got %s", phone, row.Status)
		}
	}
}

func TestUserProcessorMissingResultFailsOnlyThatRow(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	schemas, campaign := userFixtures()
	employees := &stubEmployeeService{skip: map[string]bool{"555-0101": true}}
	processor := NewUserProcessor(reconciler, schemas, employees, stubEncrypter{})

	req := ProcessRequest{
		Campaign: campaign,
		Rows: []sheet.Row{
			userRow(3, "Ana", "555-0100", "DISTRIBUTOR", ""),
			userRow(4, "Berto", "555-0101", "SUPERVISOR", ""),
		},
	}

	result, err := processor.Process(context.Background(), req)
	if err != nil {
		t.Fatalf("process returned error: %v", err)
	}
	if result.Completed != 1 || result.Failed != 1 {
		t.Fatalf("expected one completed and one failed, got %+v", result)
	}
}

func TestUserProcessorSheetNeverOverwritesCredentials(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	schemas, campaign := userFixtures()
	employees := &stubEmployeeService{}
	processor := NewUserProcessor(reconciler, schemas, employees, stubEncrypter{})

	first := ProcessRequest{
		Campaign: campaign,
		Rows:     []sheet.Row{userRow(3, "Ana", "555-0100", "DISTRIBUTOR", "")},
	}
	if _, err := processor.Process(context.Background(), first); err != nil {
		t.Fatalf("first pass returned error: %v", err)
	}

	// The operator edits the name; the re-uploaded sheet even carries junk in
	// the credential columns, which must be ignored.
	edited := userRow(3, "Ana Maria", "555-0100", "DISTRIBUTOR", "")
	edited.Cells[domain.ColumnUserName] = "tampered"
	edited.Cells[domain.ColumnPassword] = "tampered"

	second := ProcessRequest{Campaign: campaign, Rows: []sheet.Row{edited}}
	if _, err := processor.Process(context.Background(), second); err != nil {
		t.Fatalf("second pass returned error: %v", err)
	}

	row, _ := rows.get("CMP-1", domain.ResourceTypeUser, "555-0100")
	if row.Value(domain.ColumnUserName) != "enc(user-555-0100)" {
		t.Fatalf("credential column overwritten by sheet: %v", row.Data)
	}
	if row.Value(domain.ColumnUserFullName) != "Ana Maria" {
		t.Fatalf("edited name not applied: %v", row.Data)
	}
}

func TestRegistryDispatch(t *testing.T) {
	rows := newStubRowRepo()
	producer := &syncProducer{rows: rows, mappings: newStubMappingRepo()}
	sleeper := &sleepRecorder{}
	reconciler := newTestReconciler(rows, producer, sleeper)

	schemas, _ := userFixtures()
	users := NewUserProcessor(reconciler, schemas, &stubEmployeeService{}, stubEncrypter{})

	registry := NewRegistry(users)
	if _, err := registry.For(domain.ResourceTypeUser); err != nil {
		t.Fatalf("expected registered processor: %v", err)
	}
	if _, err := registry.For(domain.ResourceTypeBoundary); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}
