package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

var productColumns = []string{
	"id", "organization_id", "name", "description", "active", "stripe_linked",
	"stripe_link_status", "stripe_product_id", "stripe_synced_at", "created_at", "updated_at",
}

type ProductRepository struct {
	DB *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

// Create stores the product and its prices in one transaction so a product
// is never persisted without its prices.
func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr("begin product insert", err)
	}
	defer tx.Rollback()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("products")
	sb.Cols(productColumns...)
	sb.Values(
		p.ID, p.OrganizationID, p.Name, p.Description, p.Active, p.StripeLinked,
		string(p.StripeLinkStatus), nullString(p.StripeProductID), p.StripeSyncedAt, p.CreatedAt, p.UpdatedAt,
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return wrapErr("insert product", err)
	}

	for _, price := range p.Prices {
		query, args := buildPriceInsert(price)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return wrapErr("insert price", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapErr("commit product insert", err)
	}
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, orgID, id string) (*entity.Product, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(productColumns...)
	sb.From("products")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("organization_id", orgID),
	)

	query, args := sb.Build()
	p, err := scanProduct(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrapErr("find product", err)
	}
	return p, nil
}

// ListUnlinked returns active products not yet linked to Stripe, each with
// its active prices attached.
func (r *ProductRepository) ListUnlinked(ctx context.Context, orgID string) ([]*entity.Product, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(productColumns...)
	sb.From("products")
	sb.Where(
		sb.Equal("organization_id", orgID),
		sb.Equal("active", true),
		sb.Equal("stripe_linked", false),
	)
	sb.OrderBy("name ASC")

	query, args := sb.Build()
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list unlinked products", err)
	}
	defer rows.Close()

	var products []*entity.Product
	byID := make(map[string]*entity.Product)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapErr("scan product", err)
		}
		products = append(products, p)
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list unlinked products", err)
	}
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]interface{}, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	prices, err := listPrices(ctx, r.DB, func(sb *sqlbuilder.SelectBuilder) []string {
		return []string{sb.In("product_id", ids...), sb.Equal("active", true)}
	})
	if err != nil {
		return nil, err
	}
	for _, price := range prices {
		if p, ok := byID[price.ProductID]; ok {
			p.Prices = append(p.Prices, price)
		}
	}
	return products, nil
}

func (r *ProductRepository) MarkLinked(ctx context.Context, id, stripeProductID string, syncedAt time.Time) error {
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("products")
	sb.Set(
		sb.Assign("stripe_linked", true),
		sb.Assign("stripe_link_status", string(entity.LinkStatusLinked)),
		sb.Assign("stripe_product_id", stripeProductID),
		sb.Assign("stripe_synced_at", syncedAt),
		sb.Assign("updated_at", syncedAt),
	)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return wrapErr("mark product linked", err)
	}
	return requireRow("mark product linked", res)
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var (
		p               entity.Product
		linkStatus      string
		stripeProductID sql.NullString
		syncedAt        sql.NullTime
	)
	err := row.Scan(
		&p.ID,
		&p.OrganizationID,
		&p.Name,
		&p.Description,
		&p.Active,
		&p.StripeLinked,
		&linkStatus,
		&stripeProductID,
		&syncedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.StripeLinkStatus = entity.LinkStatus(linkStatus)
	p.StripeProductID = stripeProductID.String
	if syncedAt.Valid {
		t := syncedAt.Time
		p.StripeSyncedAt = &t
	}
	return &p, nil
}

var _ entity.ProductRepositoryInterface = (*ProductRepository)(nil)
