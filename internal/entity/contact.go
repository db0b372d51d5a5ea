package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Contact struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	CompanyID      *string   `json:"company_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewContact(orgID, userID, name, email, phone string, companyID *string) *Contact {
	return &Contact{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		UserID:         userID,
		Name:           name,
		Email:          email,
		Phone:          phone,
		CompanyID:      companyID,
		CreatedAt:      time.Now().UTC(),
	}
}

type ContactRepositoryInterface interface {
	FindByEmail(ctx context.Context, userID, email string) (*Contact, error)
	Create(ctx context.Context, c *Contact) error
}
