package database

import (
	"context"
	"database/sql"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

type CompanyRepository struct {
	DB *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{DB: db}
}

// FindByName matches case-insensitively within one owner's companies.
func (r *CompanyRepository) FindByName(ctx context.Context, userID, name string) (*entity.Company, error) {
	query := `
		SELECT id, organization_id, user_id, name, created_at
		FROM companies
		WHERE user_id = $1 AND lower(name) = lower($2)
		LIMIT 1
	`
	var c entity.Company
	err := r.DB.QueryRowContext(ctx, query, userID, name).Scan(
		&c.ID, &c.OrganizationID, &c.UserID, &c.Name, &c.CreatedAt,
	)
	if err != nil {
		return nil, wrapErr("find company", err)
	}
	return &c, nil
}

func (r *CompanyRepository) Create(ctx context.Context, c *entity.Company) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO companies (id, organization_id, user_id, name, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.OrganizationID, c.UserID, c.Name, c.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert company", err)
	}
	return nil
}

var _ entity.CompanyRepositoryInterface = (*CompanyRepository)(nil)
