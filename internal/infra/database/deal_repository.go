package database

import (
	"context"
	"database/sql"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

type DealRepository struct {
	DB *sql.DB
}

func NewDealRepository(db *sql.DB) *DealRepository {
	return &DealRepository{DB: db}
}

func (r *DealRepository) Create(ctx context.Context, d *entity.Deal) error {
	query := `
		INSERT INTO deals (
			id, organization_id, user_id, lead_id, title, stage, value, priority,
			channel, company_id, contact_id, assigned_to, close_date,
			expected_close_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.DB.ExecContext(ctx, query,
		d.ID,
		d.OrganizationID,
		d.UserID,
		d.LeadID,
		d.Title,
		d.Stage,
		d.Value,
		string(d.Priority),
		d.Channel,
		nullStringPtr(d.CompanyID),
		nullStringPtr(d.ContactID),
		nullString(d.AssignedTo),
		d.CloseDate,
		d.ExpectedCloseDate,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert deal", err)
	}
	return nil
}

var _ entity.DealRepositoryInterface = (*DealRepository)(nil)
