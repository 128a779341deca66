package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hcm-console/project-factory/internal/domain"
)

type mappingRepository struct {
	pool *pgxpool.Pool
}

// NewMappingRepository wires a MappingRepository backed by pgxpool.
func NewMappingRepository(pool *pgxpool.Pool) MappingRepository {
	return &mappingRepository{pool: pool}
}

func (r *mappingRepository) ListByCampaign(ctx context.Context, resourceType domain.ResourceType, campaignNumber string) ([]domain.CampaignMappingRow, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("mapping repository not initialized")
	}

	rows, err := r.pool.Query(
		ctx,
		`SELECT id, campaign_number, type, unique_identifier_for_data, boundary_code, mapping_id, status, created_at, updated_at
		 FROM campaign_mapping_data
		 WHERE campaign_number = $1 AND type = $2
		 ORDER BY created_at`,
		campaignNumber,
		string(resourceType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list mapping data: %w", err)
	}
	defer rows.Close()

	var out []domain.CampaignMappingRow
	for rows.Next() {
		var (
			row       domain.CampaignMappingRow
			rowType   string
			rowStatus string
			mappingID pgtype.Text
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&row.ID,
			&row.CampaignNumber,
			&rowType,
			&row.UniqueIdentifierForData,
			&row.BoundaryCode,
			&mappingID,
			&rowStatus,
			&createdAt,
			&updatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan mapping row: %w", scanErr)
		}

		row.Type = domain.ResourceType(rowType)
		row.Status = domain.MappingStatus(rowStatus)
		if mappingID.Valid {
			value := mappingID.String
			row.MappingID = &value
		}
		if createdAt.Valid {
			row.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			row.UpdatedAt = updatedAt.Time
		}

		out = append(out, row)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate mapping data: %w", rowsErr)
	}
	return out, nil
}

func (r *mappingRepository) Upsert(ctx context.Context, rows []domain.CampaignMappingRow) error {
	if r.pool == nil {
		return fmt.Errorf("mapping repository not initialized")
	}

	for _, row := range rows {
		var mappingID any
		if row.MappingID != nil {
			mappingID = *row.MappingID
		}

		_, err := r.pool.Exec(
			ctx,
			`INSERT INTO campaign_mapping_data (id, campaign_number, type, unique_identifier_for_data, boundary_code, mapping_id, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (campaign_number, type, unique_identifier_for_data, boundary_code)
			 DO UPDATE SET mapping_id = EXCLUDED.mapping_id,
			               status = EXCLUDED.status,
			               updated_at = EXCLUDED.updated_at`,
			row.ID,
			row.CampaignNumber,
			string(row.Type),
			row.UniqueIdentifierForData,
			row.BoundaryCode,
			mappingID,
			string(row.Status),
			row.CreatedAt,
			row.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert mapping row %s: %w", row.Key(), err)
		}
	}
	return nil
}
