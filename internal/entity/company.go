package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Company struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewCompany(orgID, userID, name string) *Company {
	return &Company{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		UserID:         userID,
		Name:           name,
		CreatedAt:      time.Now().UTC(),
	}
}

type CompanyRepositoryInterface interface {
	// FindByName returns ErrNotFound (wrapped) when no company matches.
	FindByName(ctx context.Context, userID, name string) (*Company, error)
	Create(ctx context.Context, c *Company) error
}
