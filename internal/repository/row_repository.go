package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hcm-console/project-factory/internal/domain"
)

type rowRepository struct {
	pool *pgxpool.Pool
}

// NewRowRepository wires a RowRepository backed by pgxpool.
func NewRowRepository(pool *pgxpool.Pool) RowRepository {
	return &rowRepository{pool: pool}
}

func (r *rowRepository) ListByCampaign(ctx context.Context, resourceType domain.ResourceType, campaignNumber string, statuses ...domain.RowStatus) ([]domain.CampaignRow, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("row repository not initialized")
	}

	query := `SELECT id, campaign_number, type, unique_identifier, data, status, unique_id_after_process, created_at, updated_at
		 FROM resource_data
		 WHERE campaign_number = $1 AND type = $2`
	args := []any{campaignNumber, string(resourceType)}

	if len(statuses) > 0 {
		statusValues := make([]string, len(statuses))
		for i, status := range statuses {
			statusValues[i] = string(status)
		}
		query += ` AND status = ANY($3)`
		args = append(args, statusValues)
	}
	query += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resource data: %w", err)
	}
	defer rows.Close()

	var out []domain.CampaignRow
	for rows.Next() {
		var (
			row         domain.CampaignRow
			rowType     string
			rowStatus   string
			dataJSON    []byte
			downstream  pgtype.Text
			createdAt   pgtype.Timestamptz
			updatedAt   pgtype.Timestamptz
		)
		if scanErr := rows.Scan(
			&row.ID,
			&row.CampaignNumber,
			&rowType,
			&row.UniqueIdentifier,
			&dataJSON,
			&rowStatus,
			&downstream,
			&createdAt,
			&updatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan resource data row: %w", scanErr)
		}

		row.Type = domain.ResourceType(rowType)
		row.Status = domain.RowStatus(rowStatus)
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &row.Data); err != nil {
				return nil, fmt.Errorf("failed to decode resource data payload: %w", err)
			}
		}
		if downstream.Valid {
			value := downstream.String
			row.UniqueIDAfterProcess = &value
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
		return nil, fmt.Errorf("failed to iterate resource data: %w", rowsErr)
	}
	return out, nil
}

func (r *rowRepository) Upsert(ctx context.Context, rows []domain.CampaignRow) error {
	if r.pool == nil {
		return fmt.Errorf("row repository not initialized")
	}

	for _, row := range rows {
		dataJSON, err := json.Marshal(row.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal row data for %s: %w", row.UniqueIdentifier, err)
		}

		var downstream any
		if row.UniqueIDAfterProcess != nil {
			downstream = *row.UniqueIDAfterProcess
		}

		_, err = r.pool.Exec(
			ctx,
			`INSERT INTO resource_data (id, campaign_number, type, unique_identifier, data, status, unique_id_after_process, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (campaign_number, type, unique_identifier)
			 DO UPDATE SET data = EXCLUDED.data,
			               status = EXCLUDED.status,
			               unique_id_after_process = EXCLUDED.unique_id_after_process,
			               updated_at = EXCLUDED.updated_at`,
			row.ID,
			row.CampaignNumber,
			string(row.Type),
			row.UniqueIdentifier,
			dataJSON,
			string(row.Status),
			downstream,
			row.CreatedAt,
			row.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert resource data row %s: %w", row.UniqueIdentifier, err)
		}
	}
	return nil
}
