package processor

import (
	"context"
	"fmt"
	"log"

	"github.com/hcm-console/project-factory/internal/clients"
	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/sheet"
	"github.com/hcm-console/project-factory/internal/validation"
)

// UserProcessor reconciles user sheets and creates campaign workers through
// HRMS in batches. Creation is a single batch call per chunk returning
// per-item results keyed by phone number; generated credentials come back
// with each result and are stored encrypted on the row.
type UserProcessor struct {
	reconciler *Reconciler
	schemas    clients.SchemaService
	employees  clients.EmployeeService
	encrypter  clients.Encrypter
}

// NewUserProcessor wires a processor for user sheets.
func NewUserProcessor(
	reconciler *Reconciler,
	schemas clients.SchemaService,
	employees clients.EmployeeService,
	encrypter clients.Encrypter,
) *UserProcessor {
	return &UserProcessor{
		reconciler: reconciler,
		schemas:    schemas,
		employees:  employees,
		encrypter:  encrypter,
	}
}

func (p *UserProcessor) Type() domain.ResourceType {
	return domain.ResourceTypeUser
}

func (p *UserProcessor) Process(ctx context.Context, req ProcessRequest) (ProcessResult, error) {
	campaign := req.Campaign

	schema, err := p.schemas.SheetSchema(ctx, campaign.TenantID, domain.ResourceTypeUser)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("user sheet schema unavailable: %w", err)
	}

	sheetErrors := validation.Collect(
		validation.ValidateRequired(req.Rows, schema),
		validation.ValidateUnique(req.Rows, schema, domain.ColumnUserName),
	)
	if len(sheetErrors) > 0 {
		sheet.Annotate(req.Rows, sheetErrors)
		return ProcessResult{SheetErrors: sheetErrors}, nil
	}

	incoming := make([]domain.CampaignRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		phone := row.Get(domain.ColumnPhoneNumber)
		if phone == "" {
			continue
		}

		data := make(map[string]any, len(row.Cells))
		for column, value := range row.Cells {
			if column == domain.StatusColumn || column == domain.ErrorDetailsColumn {
				continue
			}
			// Credential columns are written by the creation engine only;
			// sheet values never overwrite them.
			if column == domain.ColumnUserName || column == domain.ColumnPassword {
				continue
			}
			data[column] = value
		}
		incoming = append(incoming, domain.NewCampaignRow(campaign.CampaignNumber, domain.ResourceTypeUser, phone, data))
	}

	delta, err := p.reconciler.Reconcile(ctx, campaign.CampaignNumber, domain.ResourceTypeUser, incoming)
	if err != nil {
		return ProcessResult{}, err
	}

	completed, failed, err := p.createEmployees(ctx, campaign)
	result := ProcessResult{
		Inserted:  delta.Inserted,
		Updated:   delta.Updated,
		Unchanged: delta.Unchanged,
		Completed: completed,
		Failed:    failed,
	}
	return result, err
}

// createEmployees submits pending/failed rows to HRMS chunk by chunk. A
// batch-level error fails every row in that batch and halts the remaining
// batches; rows committed by earlier batches stay completed.
func (p *UserProcessor) createEmployees(ctx context.Context, campaign domain.Campaign) (int, int, error) {
	rows, err := p.reconciler.PendingRows(ctx, campaign.CampaignNumber, domain.ResourceTypeUser)
	if err != nil {
		return 0, 0, err
	}

	var completed, failed int
	for _, batch := range chunkRows(rows, p.reconciler.BatchSize()) {
		requests := make([]clients.EmployeeCreateRequest, 0, len(batch))
		for _, row := range batch {
			requests = append(requests, clients.EmployeeCreateRequest{
				TenantID:    campaign.TenantID,
				Name:        rowString(row, domain.ColumnUserFullName),
				PhoneNumber: row.UniqueIdentifier,
				Role:        rowString(row, domain.ColumnUserRole),
				Boundaries:  validation.SplitBoundaryCodes(rowString(row, domain.ColumnBoundaryCode)),
			})
		}

		results, err := p.employees.CreateBatch(ctx, requests)
		if err != nil {
			log.Printf("[HRMS] batch create failed for %d rows: %v", len(batch), err)
			for _, row := range batch {
				failed++
				p.reconciler.PersistRow(row.WithStatus(domain.RowStatusFailed))
			}
			return completed, failed, err
		}

		for _, row := range batch {
			result, ok := results[row.UniqueIdentifier]
			if !ok {
				log.Printf("[HRMS] no result returned for phone %s; failing row", row.UniqueIdentifier)
				failed++
				p.reconciler.PersistRow(row.WithStatus(domain.RowStatusFailed))
				continue
			}

			updated, err := p.attachCredentials(row, result)
			if err != nil {
				log.Printf("[HRMS] failed to protect credentials for %s: %v", row.UniqueIdentifier, err)
				failed++
				p.reconciler.PersistRow(row.WithStatus(domain.RowStatusFailed))
				continue
			}

			completed++
			p.reconciler.PersistRow(updated)
		}
	}
	return completed, failed, nil
}

func (p *UserProcessor) attachCredentials(row domain.CampaignRow, result clients.EmployeeResult) (domain.CampaignRow, error) {
	userName, err := p.encrypter.Encrypt(result.UserName)
	if err != nil {
		return domain.CampaignRow{}, err
	}
	password, err := p.encrypter.Encrypt(result.Password)
	if err != nil {
		return domain.CampaignRow{}, err
	}

	updated := row.WithDownstreamID(result.UserServiceUUID)
	updated.SetValue(domain.ColumnUserName, userName)
	updated.SetValue(domain.ColumnPassword, password)
	return updated, nil
}
