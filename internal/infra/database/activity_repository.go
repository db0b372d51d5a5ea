package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

type ActivityRepository struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

// Create is idempotent on id so a redelivered queue message is harmless.
func (r *ActivityRepository) Create(ctx context.Context, a *entity.Activity) error {
	metadata := []byte("{}")
	if len(a.Metadata) > 0 {
		b, err := json.Marshal(a.Metadata)
		if err != nil {
			return err
		}
		metadata = b
	}

	query := `
		INSERT INTO activities (id, organization_id, user_id, entity_type, entity_id, action, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err := r.DB.ExecContext(ctx, query,
		a.ID,
		a.OrganizationID,
		a.UserID,
		a.EntityType,
		a.EntityID,
		string(a.Action),
		a.Description,
		metadata,
		a.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert activity", err)
	}
	return nil
}

// Log lets the repository stand in as the synchronous activity sink when no
// queue is configured.
func (r *ActivityRepository) Log(ctx context.Context, a *entity.Activity) error {
	return r.Create(ctx, a)
}

var _ entity.ActivityRepositoryInterface = (*ActivityRepository)(nil)
