package database

import (
	"context"
	"database/sql"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

type ContactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

func (r *ContactRepository) FindByEmail(ctx context.Context, userID, email string) (*entity.Contact, error) {
	query := `
		SELECT id, organization_id, user_id, name, email, phone, company_id, created_at
		FROM contacts
		WHERE user_id = $1 AND lower(email) = lower($2)
		LIMIT 1
	`
	var (
		c           entity.Contact
		storedEmail sql.NullString
		phone       sql.NullString
		companyID   sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, userID, email).Scan(
		&c.ID, &c.OrganizationID, &c.UserID, &c.Name, &storedEmail, &phone, &companyID, &c.CreatedAt,
	)
	if err != nil {
		return nil, wrapErr("find contact", err)
	}
	c.Email = storedEmail.String
	c.Phone = phone.String
	c.CompanyID = stringPtr(companyID)
	return &c, nil
}

func (r *ContactRepository) Create(ctx context.Context, c *entity.Contact) error {
	query := `
		INSERT INTO contacts (id, organization_id, user_id, name, email, phone, company_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID,
		c.OrganizationID,
		c.UserID,
		c.Name,
		nullString(c.Email),
		nullString(c.Phone),
		nullStringPtr(c.CompanyID),
		c.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert contact", err)
	}
	return nil
}

var _ entity.ContactRepositoryInterface = (*ContactRepository)(nil)
