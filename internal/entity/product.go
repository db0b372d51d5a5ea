package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type LinkStatus string

const (
	LinkStatusUnlinked LinkStatus = "unlinked"
	LinkStatusLinked   LinkStatus = "linked"
)

type Product struct {
	ID               string     `json:"id"`
	OrganizationID   string     `json:"organization_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Active           bool       `json:"active"`
	StripeLinked     bool       `json:"stripe_linked"`
	StripeLinkStatus LinkStatus `json:"stripe_link_status"`
	StripeProductID  string     `json:"stripe_product_id,omitempty"`
	StripeSyncedAt   *time.Time `json:"stripe_synced_at,omitempty"`
	Prices           []*Price   `json:"prices,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func NewProduct(orgID, name, description string) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:               uuid.New().String(),
		OrganizationID:   orgID,
		Name:             name,
		Description:      description,
		Active:           true,
		StripeLinkStatus: LinkStatusUnlinked,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ActivePrices returns the prices that are still sellable.
func (p *Product) ActivePrices() []*Price {
	var out []*Price
	for _, pr := range p.Prices {
		if pr.Active {
			out = append(out, pr)
		}
	}
	return out
}

type PriceType string

const (
	PriceTypeOneTime   PriceType = "one_time"
	PriceTypeRecurring PriceType = "recurring"
)

type Price struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	UnitAmount    int64     `json:"unit_amount"`
	Currency      string    `json:"currency"`
	Type          PriceType `json:"type"`
	Interval      string    `json:"interval,omitempty"`
	IntervalCount int64     `json:"interval_count,omitempty"`
	Active        bool      `json:"active"`
	StripeLinked  bool      `json:"stripe_linked"`
	StripePriceID string    `json:"stripe_price_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

var (
	ErrInvalidPrice    = errors.New("invalid price")
	ErrLastActivePrice = errors.New("a product must keep at least one active price")
)

func NewPrice(productID string, unitAmount int64, currency string, typ PriceType, interval string, intervalCount int64) (*Price, error) {
	p := &Price{
		ID:            uuid.New().String(),
		ProductID:     productID,
		UnitAmount:    unitAmount,
		Currency:      currency,
		Type:          typ,
		Interval:      interval,
		IntervalCount: intervalCount,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Price) Validate() error {
	if p.UnitAmount < 0 || p.Currency == "" {
		return ErrInvalidPrice
	}
	switch p.Type {
	case PriceTypeOneTime:
		p.Interval, p.IntervalCount = "", 0
	case PriceTypeRecurring:
		if p.Interval == "" {
			return ErrInvalidPrice
		}
		if p.IntervalCount <= 0 {
			p.IntervalCount = 1
		}
	default:
		return ErrInvalidPrice
	}
	return nil
}

// PendingPriceSync is an active price of a Stripe-linked product that has no
// Stripe counterpart yet.
type PendingPriceSync struct {
	Price           *Price
	StripeProductID string
}

type ProductRepositoryInterface interface {
	// Create stores the product together with p.Prices atomically.
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, orgID, id string) (*Product, error)
	ListUnlinked(ctx context.Context, orgID string) ([]*Product, error)
	MarkLinked(ctx context.Context, id, stripeProductID string, syncedAt time.Time) error
}

type PriceRepositoryInterface interface {
	Create(ctx context.Context, p *Price) error
	ListByProduct(ctx context.Context, productID string) ([]*Price, error)
	Deactivate(ctx context.Context, id string) error
	MarkLinked(ctx context.Context, id, stripePriceID string) error
	ListPendingSync(ctx context.Context, limit int) ([]PendingPriceSync, error)
}
