package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

const (
	defaultLeadPageSize = 50
	maxLeadPageSize     = 200
)

var leadColumns = []string{
	"id", "organization_id", "user_id", "name", "email", "phone", "company_name",
	"job_title", "source", "priority", "status", "score", "expected_value",
	"assigned_to", "notes", "created_at", "updated_at",
}

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, organization_id, user_id, name, email, phone, company_name,
			job_title, source, priority, status, score, expected_value,
			assigned_to, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.OrganizationID,
		lead.UserID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.CompanyName,
		lead.JobTitle,
		string(lead.Source),
		string(lead.Priority),
		string(lead.Status),
		lead.Score,
		nullFloat(lead.ExpectedValue),
		nullString(lead.AssignedTo),
		lead.Notes,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return wrapErr("insert lead", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, orgID, id string) (*entity.Lead, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(leadColumns...)
	sb.From("leads")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("organization_id", orgID),
	)

	query, args := sb.Build()
	lead, err := scanLead(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrapErr("find lead", err)
	}
	return lead, nil
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	query, args := buildLeadListQuery(filter)
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list leads", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, wrapErr("scan lead", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list leads", err)
	}
	return leads, nil
}

func buildLeadListQuery(filter entity.LeadFilter) (string, []interface{}) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(leadColumns...)
	sb.From("leads")

	where := []string{sb.Equal("organization_id", filter.OrganizationID)}
	if filter.Status != "" {
		where = append(where, sb.Equal("status", string(filter.Status)))
	}
	if filter.Source != "" {
		where = append(where, sb.Equal("source", string(filter.Source)))
	}
	if filter.MinScore > 0 {
		where = append(where, sb.GreaterEqualThan("score", filter.MinScore))
	}
	sb.Where(where...)
	sb.OrderBy("score DESC", "created_at DESC")

	limit := filter.Limit
	if limit < 1 || limit > maxLeadPageSize {
		limit = defaultLeadPageSize
	}
	sb.Limit(limit)
	if filter.Offset > 0 {
		sb.Offset(filter.Offset)
	}

	return sb.Build()
}

// Update writes only the fields set on the patch.
func (r *LeadRepository) Update(ctx context.Context, orgID, id string, patch entity.LeadPatch) error {
	query, args := buildLeadUpdate(orgID, id, patch, time.Now().UTC())
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr("update lead", err)
	}
	return requireRow("update lead", res)
}

func buildLeadUpdate(orgID, id string, patch entity.LeadPatch, now time.Time) (string, []interface{}) {
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("leads")

	assignments := []string{}
	set := func(col string, v interface{}) {
		assignments = append(assignments, sb.Assign(col, v))
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.Phone != nil {
		set("phone", *patch.Phone)
	}
	if patch.CompanyName != nil {
		set("company_name", *patch.CompanyName)
	}
	if patch.JobTitle != nil {
		set("job_title", *patch.JobTitle)
	}
	if patch.Source != nil {
		set("source", string(*patch.Source))
	}
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.ExpectedValue != nil {
		set("expected_value", *patch.ExpectedValue)
	}
	if patch.AssignedTo != nil {
		set("assigned_to", nullString(*patch.AssignedTo))
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	set("updated_at", now)

	sb.Set(assignments...)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("organization_id", orgID),
	)
	return sb.Build()
}

func (r *LeadRepository) UpdateScore(ctx context.Context, id string, score int) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET score = $1, updated_at = NOW() WHERE id = $2`, score, id)
	if err != nil {
		return wrapErr("update lead score", err)
	}
	return requireRow("update lead score", res)
}

func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return wrapErr("update lead status", err)
	}
	return requireRow("update lead status", res)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		l             entity.Lead
		source        string
		priority      string
		status        string
		expectedValue sql.NullFloat64
		assignedTo    sql.NullString
	)
	err := row.Scan(
		&l.ID,
		&l.OrganizationID,
		&l.UserID,
		&l.Name,
		&l.Email,
		&l.Phone,
		&l.CompanyName,
		&l.JobTitle,
		&source,
		&priority,
		&status,
		&l.Score,
		&expectedValue,
		&assignedTo,
		&l.Notes,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Source = entity.LeadSource(source)
	l.Priority = entity.Priority(priority)
	l.Status = entity.LeadStatus(status)
	if expectedValue.Valid {
		v := expectedValue.Float64
		l.ExpectedValue = &v
	}
	l.AssignedTo = assignedTo.String
	return &l, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

var _ entity.LeadRepositoryInterface = (*LeadRepository)(nil)
