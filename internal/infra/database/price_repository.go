package database

import (
	"context"
	"database/sql"

	"github.com/huandu/go-sqlbuilder"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

var priceColumns = []string{
	"id", "product_id", "unit_amount", "currency", "type", "interval", "interval_count",
	"active", "stripe_linked", "stripe_price_id", "created_at",
}

type PriceRepository struct {
	DB *sql.DB
}

func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{DB: db}
}

func (r *PriceRepository) Create(ctx context.Context, p *entity.Price) error {
	query, args := buildPriceInsert(p)
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		return wrapErr("insert price", err)
	}
	return nil
}

func buildPriceInsert(p *entity.Price) (string, []interface{}) {
	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("prices")
	sb.Cols(priceColumns...)
	sb.Values(
		p.ID, p.ProductID, p.UnitAmount, p.Currency, string(p.Type), nullString(p.Interval),
		p.IntervalCount, p.Active, p.StripeLinked, nullString(p.StripePriceID), p.CreatedAt,
	)
	return sb.Build()
}

func (r *PriceRepository) ListByProduct(ctx context.Context, productID string) ([]*entity.Price, error) {
	return listPrices(ctx, r.DB, func(sb *sqlbuilder.SelectBuilder) []string {
		return []string{sb.Equal("product_id", productID)}
	})
}

func (r *PriceRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE prices SET active = false WHERE id = $1`, id)
	if err != nil {
		return wrapErr("deactivate price", err)
	}
	return requireRow("deactivate price", res)
}

func (r *PriceRepository) MarkLinked(ctx context.Context, id, stripePriceID string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE prices SET stripe_linked = true, stripe_price_id = $1 WHERE id = $2`, stripePriceID, id)
	if err != nil {
		return wrapErr("mark price linked", err)
	}
	return requireRow("mark price linked", res)
}

// ListPendingSync returns the oldest active, unlinked prices whose product is
// already linked to Stripe.
func (r *PriceRepository) ListPendingSync(ctx context.Context, limit int) ([]entity.PendingPriceSync, error) {
	query := `
		SELECT p.id, p.product_id, p.unit_amount, p.currency, p.type, p.interval, p.interval_count,
		       p.active, p.stripe_linked, p.stripe_price_id, p.created_at, pr.stripe_product_id
		FROM prices p
		JOIN products pr ON pr.id = p.product_id
		WHERE p.active AND NOT p.stripe_linked
		  AND pr.stripe_linked AND pr.stripe_product_id IS NOT NULL
		ORDER BY p.created_at ASC
		LIMIT $1
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, wrapErr("list pending prices", err)
	}
	defer rows.Close()

	var pending []entity.PendingPriceSync
	for rows.Next() {
		var (
			p               entity.Price
			typ             string
			interval        sql.NullString
			stripePriceID   sql.NullString
			stripeProductID string
		)
		if err := rows.Scan(
			&p.ID, &p.ProductID, &p.UnitAmount, &p.Currency, &typ, &interval,
			&p.IntervalCount, &p.Active, &p.StripeLinked, &stripePriceID, &p.CreatedAt, &stripeProductID,
		); err != nil {
			return nil, wrapErr("scan pending price", err)
		}
		p.Type = entity.PriceType(typ)
		p.Interval = interval.String
		p.StripePriceID = stripePriceID.String
		pending = append(pending, entity.PendingPriceSync{Price: &p, StripeProductID: stripeProductID})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list pending prices", err)
	}
	return pending, nil
}

func listPrices(ctx context.Context, db *sql.DB, where func(*sqlbuilder.SelectBuilder) []string) ([]*entity.Price, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(priceColumns...)
	sb.From("prices")
	sb.Where(where(sb)...)
	sb.OrderBy("created_at ASC")

	query, args := sb.Build()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list prices", err)
	}
	defer rows.Close()

	var prices []*entity.Price
	for rows.Next() {
		var (
			p             entity.Price
			typ           string
			interval      sql.NullString
			stripePriceID sql.NullString
		)
		if err := rows.Scan(
			&p.ID, &p.ProductID, &p.UnitAmount, &p.Currency, &typ, &interval,
			&p.IntervalCount, &p.Active, &p.StripeLinked, &stripePriceID, &p.CreatedAt,
		); err != nil {
			return nil, wrapErr("scan price", err)
		}
		p.Type = entity.PriceType(typ)
		p.Interval = interval.String
		p.StripePriceID = stripePriceID.String
		prices = append(prices, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list prices", err)
	}
	return prices, nil
}

var _ entity.PriceRepositoryInterface = (*PriceRepository)(nil)
