package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ActivityAction string

const (
	ActivityLeadCreated   ActivityAction = "lead_created"
	ActivityLeadUpdated   ActivityAction = "lead_updated"
	ActivityLeadConverted ActivityAction = "lead_converted"
	ActivityDealCreated   ActivityAction = "deal_created"
	ActivityProductLinked ActivityAction = "product_linked"
)

type Activity struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organization_id"`
	UserID         string            `json:"user_id"`
	EntityType     string            `json:"entity_type"`
	EntityID       string            `json:"entity_id"`
	Action         ActivityAction    `json:"action"`
	Description    string            `json:"description"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func NewActivity(orgID, userID, entityType, entityID string, action ActivityAction, description string) *Activity {
	return &Activity{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		UserID:         userID,
		EntityType:     entityType,
		EntityID:       entityID,
		Action:         action,
		Description:    description,
		CreatedAt:      time.Now().UTC(),
	}
}

type ActivityRepositoryInterface interface {
	Create(ctx context.Context, a *Activity) error
}
