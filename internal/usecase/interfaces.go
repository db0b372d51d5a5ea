package usecase

import (
	"context"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/integration/stripe"
)

// CatalogGateway is the external payment processor's product catalog.
type CatalogGateway interface {
	ListActiveProducts(ctx context.Context) ([]stripe.Product, error)
	GetProduct(ctx context.Context, id string) (*stripe.Product, error)
	CreateProduct(ctx context.Context, input stripe.CreateProductInput) (*stripe.Product, error)
	CreatePrice(ctx context.Context, input stripe.CreatePriceInput) (string, error)
	DeactivatePrice(ctx context.Context, id string) error
}

// ActivityLogger accepts fire-and-forget audit records.
type ActivityLogger interface {
	Log(ctx context.Context, a *entity.Activity) error
}

type DealNotifier interface {
	NotifyDealCreated(ctx context.Context, deal *entity.Deal, lead *entity.Lead) error
}
