package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DealStageLead is the first stage of the sales pipeline.
const DealStageLead = "lead"

type DealPriority string

const (
	DealPriorityHigh   DealPriority = "high"
	DealPriorityMedium DealPriority = "medium"
	DealPriorityLow    DealPriority = "low"
)

type Deal struct {
	ID                string       `json:"id"`
	OrganizationID    string       `json:"organization_id"`
	UserID            string       `json:"user_id"`
	LeadID            string       `json:"lead_id"`
	Title             string       `json:"title"`
	Stage             string       `json:"stage"`
	Value             float64      `json:"value"`
	Priority          DealPriority `json:"priority"`
	Channel           string       `json:"channel"`
	CompanyID         *string      `json:"company_id"`
	ContactID         *string      `json:"contact_id"`
	AssignedTo        string       `json:"assigned_to"`
	CloseDate         time.Time    `json:"close_date"`
	ExpectedCloseDate time.Time    `json:"expected_close_date"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func NewDeal(orgID, userID, leadID string) *Deal {
	now := time.Now().UTC()
	return &Deal{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		UserID:         userID,
		LeadID:         leadID,
		Stage:          DealStageLead,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

type DealRepositoryInterface interface {
	Create(ctx context.Context, deal *Deal) error
}
