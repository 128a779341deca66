package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hcm-console/project-factory/internal/bus"
	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/repository"
	"github.com/hcm-console/project-factory/internal/sheet"
	"github.com/hcm-console/project-factory/internal/validation"
)

// MappingReconciler diffs the desired facility/boundary associations read
// from the sheet against the mapping table. New pairs are inserted as
// TO_BE_MAPPED; stale pairs are soft-deleted to TO_BE_DEMAPPED, never hard
// deleted.
type MappingReconciler struct {
	mappings  repository.MappingRepository
	rows      repository.RowRepository
	producer  bus.Producer
	batchSize int
	settle    SettlePolicy
	sleep     sleepFunc
}

// MappingReconcilerOption customizes a MappingReconciler.
type MappingReconcilerOption func(*MappingReconciler)

// WithMappingBatchSize overrides the persistence batch size.
func WithMappingBatchSize(size int) MappingReconcilerOption {
	return func(m *MappingReconciler) {
		if size > 0 {
			m.batchSize = size
		}
	}
}

// WithMappingSettlePolicy overrides the settle delay policy.
func WithMappingSettlePolicy(policy SettlePolicy) MappingReconcilerOption {
	return func(m *MappingReconciler) {
		m.settle = policy
	}
}

// WithMappingSleep overrides the sleep implementation for tests.
func WithMappingSleep(sleep func(context.Context, time.Duration) error) MappingReconcilerOption {
	return func(m *MappingReconciler) {
		if sleep != nil {
			m.sleep = sleep
		}
	}
}

// NewMappingReconciler creates a reconciler over the mapping table.
func NewMappingReconciler(mappings repository.MappingRepository, rows repository.RowRepository, producer bus.Producer, opts ...MappingReconcilerOption) *MappingReconciler {
	m := &MappingReconciler{
		mappings:  mappings,
		rows:      rows,
		producer:  producer,
		batchSize: DefaultBatchSize,
		settle:    DefaultSettlePolicy,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Reconcile computes the desired (facility, boundary) pairs from sheet rows
// marked Active, diffs them against stored mapping rows, and persists the
// insert and soft-delete sets.
func (m *MappingReconciler) Reconcile(ctx context.Context, campaignNumber string, sheetRows []sheet.Row) (int, int, error) {
	desired := make(map[string]map[string]struct{})
	for _, row := range sheetRows {
		if !strings.EqualFold(row.Get(domain.ColumnFacilityUsage), domain.UsageActive) {
			continue
		}
		facility := row.Get(domain.ColumnFacilityName)
		raw := row.Get(domain.ColumnFacilityBoundaries)
		if facility == "" || raw == "" {
			continue
		}
		if desired[facility] == nil {
			desired[facility] = make(map[string]struct{})
		}
		for _, code := range validation.SplitBoundaryCodes(raw) {
			desired[facility][code] = struct{}{}
		}
	}

	existing, err := m.mappings.ListByCampaign(ctx, domain.ResourceTypeFacility, campaignNumber)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load existing mappings: %w", err)
	}

	existingKeys := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		existingKeys[row.Key()] = struct{}{}
	}

	var toBeMapped []domain.CampaignMappingRow
	for facility, codes := range desired {
		for code := range codes {
			if _, ok := existingKeys[facility+"|"+code]; ok {
				continue
			}
			toBeMapped = append(toBeMapped, domain.NewCampaignMappingRow(campaignNumber, domain.ResourceTypeFacility, facility, code))
		}
	}

	var toBeDemapped []domain.CampaignMappingRow
	for _, row := range existing {
		if row.Status == domain.MappingStatusToBeDemapped {
			continue
		}
		if _, wanted := desired[row.UniqueIdentifierForData][row.BoundaryCode]; wanted {
			continue
		}
		row.Status = domain.MappingStatusToBeDemapped
		row.UpdatedAt = time.Now()
		toBeDemapped = append(toBeDemapped, row)
	}

	for _, batch := range chunkMappings(toBeMapped, m.batchSize) {
		m.producer.Push(bus.TopicSaveMappingData, bus.Message{Mappings: batch})
	}
	for _, batch := range chunkMappings(toBeDemapped, m.batchSize) {
		m.producer.Push(bus.TopicUpdateMappingData, bus.Message{Mappings: batch})
	}

	if mutations := len(toBeMapped) + len(toBeDemapped); mutations > 0 {
		if err := m.sleep(ctx, m.settle.Delay(mutations)); err != nil {
			return len(toBeMapped), len(toBeDemapped), err
		}
	}
	return len(toBeMapped), len(toBeDemapped), nil
}

// SyncFacilitySheetData reconciles non-mapping attribute columns (usage
// flag, residing boundary text) back into stored facility rows whenever the
// sheet value differs, using the same update-batch-and-wait pattern.
func (m *MappingReconciler) SyncFacilitySheetData(ctx context.Context, campaignNumber string, sheetRows []sheet.Row) (int, error) {
	stored, err := m.rows.ListByCampaign(ctx, domain.ResourceTypeFacility, campaignNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to load facility rows: %w", err)
	}

	byName := make(map[string]domain.CampaignRow, len(stored))
	for _, row := range stored {
		byName[row.UniqueIdentifier] = row
	}

	syncedColumns := []string{domain.ColumnFacilityUsage, domain.ColumnFacilityBoundaries}

	var updates []domain.CampaignRow
	for _, sheetRow := range sheetRows {
		facility := sheetRow.Get(domain.ColumnFacilityName)
		row, ok := byName[facility]
		if !ok {
			continue
		}

		changed := false
		for _, column := range syncedColumns {
			if !looseEqual(row.Value(column), sheetRow.Get(column)) {
				row.SetValue(column, sheetRow.Get(column))
				changed = true
			}
		}
		if changed {
			row.UpdatedAt = time.Now()
			updates = append(updates, row)
		}
	}

	for _, batch := range chunkRows(updates, m.batchSize) {
		m.producer.Push(bus.TopicUpdateResourceData, bus.Message{Rows: batch})
	}
	if len(updates) > 0 {
		if err := m.sleep(ctx, m.settle.Delay(len(updates))); err != nil {
			return len(updates), err
		}
	}
	return len(updates), nil
}

func chunkMappings(rows []domain.CampaignMappingRow, size int) [][]domain.CampaignMappingRow {
	if len(rows) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultBatchSize
	}
	var chunks [][]domain.CampaignMappingRow
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
