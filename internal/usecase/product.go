package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
)

const stepSyncStripePrice = "sync_stripe_price"

// ProductUseCase manages products and their prices. Prices are immutable once
// created: a change is a new price plus deactivation of the old one.
type ProductUseCase struct {
	ProductRepo entity.ProductRepositoryInterface
	PriceRepo   entity.PriceRepositoryInterface
	Gateway     CatalogGateway
	Logger      *zap.Logger
}

func NewProductUseCase(
	productRepo entity.ProductRepositoryInterface,
	priceRepo entity.PriceRepositoryInterface,
	gateway CatalogGateway,
	logger *zap.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		ProductRepo: productRepo,
		PriceRepo:   priceRepo,
		Gateway:     gateway,
		Logger:      logger,
	}
}

type ProductOutput struct {
	Product  *entity.Product `json:"product"`
	Degraded []DegradedStep  `json:"degraded,omitempty"`
}

type PriceOutput struct {
	Price    *entity.Price  `json:"price"`
	Degraded []DegradedStep `json:"degraded,omitempty"`
}

func (uc *ProductUseCase) Create(ctx context.Context, actor entity.Actor, input CreateProductInput) (*ProductOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	product := entity.NewProduct(actor.OrganizationID, strings.TrimSpace(input.Name), strings.TrimSpace(input.Description))
	for _, in := range input.Prices {
		price, err := newPriceFromInput(product.ID, in)
		if err != nil {
			return nil, err
		}
		product.Prices = append(product.Prices, price)
	}

	if err := uc.ProductRepo.Create(ctx, product); err != nil {
		return nil, &PersistenceError{Op: "create product", Err: err}
	}

	uc.Logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.Int("prices", len(product.Prices)),
	)
	return &ProductOutput{Product: product}, nil
}

func (uc *ProductUseCase) Get(ctx context.Context, actor entity.Actor, productID string) (*entity.Product, error) {
	product, err := uc.load(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	prices, err := uc.PriceRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, &PersistenceError{Op: "list prices", Err: err}
	}
	product.Prices = prices
	return product, nil
}

// AddPrice stores a new price and, for a product already linked to Stripe,
// mirrors it there. A failed mirror leaves the price unlinked for a later
// reconciliation run.
func (uc *ProductUseCase) AddPrice(ctx context.Context, actor entity.Actor, productID string, input PriceInput) (*PriceOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	product, err := uc.load(ctx, actor, productID)
	if err != nil {
		return nil, err
	}

	price, err := newPriceFromInput(product.ID, input)
	if err != nil {
		return nil, err
	}
	if err := uc.PriceRepo.Create(ctx, price); err != nil {
		return nil, &PersistenceError{Op: "create price", Err: err}
	}

	out := &PriceOutput{Price: price}
	if d := uc.syncToStripe(ctx, product, price); d != nil {
		out.Degraded = append(out.Degraded, *d)
	}
	return out, nil
}

// ReplacePrice creates the new price before deactivating the old one so the
// product is never left without an active price.
func (uc *ProductUseCase) ReplacePrice(ctx context.Context, actor entity.Actor, productID, priceID string, input PriceInput) (*PriceOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	product, err := uc.load(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	old, _, err := uc.findPrice(ctx, product.ID, priceID)
	if err != nil {
		return nil, err
	}
	if !old.Active {
		return nil, newInvalidStateError("price is already inactive")
	}

	price, err := newPriceFromInput(product.ID, input)
	if err != nil {
		return nil, err
	}
	if err := uc.PriceRepo.Create(ctx, price); err != nil {
		return nil, &PersistenceError{Op: "create price", Err: err}
	}

	out := &PriceOutput{Price: price}
	if d := uc.syncToStripe(ctx, product, price); d != nil {
		out.Degraded = append(out.Degraded, *d)
	}

	if err := uc.PriceRepo.Deactivate(ctx, old.ID); err != nil {
		return nil, &PersistenceError{Op: "deactivate price", Err: err}
	}
	if d := uc.deactivateInStripe(ctx, old); d != nil {
		out.Degraded = append(out.Degraded, *d)
	}

	uc.Logger.Info("price replaced",
		zap.String("product_id", product.ID),
		zap.String("old_price_id", old.ID),
		zap.String("new_price_id", price.ID),
	)
	return out, nil
}

func (uc *ProductUseCase) DeactivatePrice(ctx context.Context, actor entity.Actor, productID, priceID string) ([]DegradedStep, error) {
	product, err := uc.load(ctx, actor, productID)
	if err != nil {
		return nil, err
	}
	price, all, err := uc.findPrice(ctx, product.ID, priceID)
	if err != nil {
		return nil, err
	}
	if !price.Active {
		return nil, nil
	}

	product.Prices = all
	if len(product.ActivePrices()) <= 1 {
		return nil, newInvalidStateError(entity.ErrLastActivePrice.Error())
	}

	if err := uc.PriceRepo.Deactivate(ctx, price.ID); err != nil {
		return nil, &PersistenceError{Op: "deactivate price", Err: err}
	}

	var degraded []DegradedStep
	if d := uc.deactivateInStripe(ctx, price); d != nil {
		degraded = append(degraded, *d)
	}
	return degraded, nil
}

type PriceSyncResult struct {
	Synced int
	Failed int
}

// SyncPendingPrices mirrors up to limit unlinked prices of linked products to
// Stripe. Each price is independent; failures stay pending for the next run.
func (uc *ProductUseCase) SyncPendingPrices(ctx context.Context, limit int) (PriceSyncResult, error) {
	var res PriceSyncResult
	if uc.Gateway == nil {
		return res, nil
	}

	pending, err := uc.PriceRepo.ListPendingSync(ctx, limit)
	if err != nil {
		return res, &PersistenceError{Op: "list pending prices", Err: err}
	}

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		stripePriceID, err := uc.Gateway.CreatePrice(ctx, stripePriceInput(p.StripeProductID, p.Price))
		if err == nil {
			err = uc.PriceRepo.MarkLinked(ctx, p.Price.ID, stripePriceID)
		}
		if err != nil {
			res.Failed++
			uc.Logger.Warn("pending price sync failed",
				zap.String("price_id", p.Price.ID),
				zap.String("stripe_product_id", p.StripeProductID),
				zap.Error(err),
			)
			continue
		}
		res.Synced++
	}
	return res, nil
}

func (uc *ProductUseCase) load(ctx context.Context, actor entity.Actor, productID string) (*entity.Product, error) {
	product, err := uc.ProductRepo.FindByID(ctx, actor.OrganizationID, productID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &NotFoundError{Resource: "product", ID: productID}
		}
		return nil, &PersistenceError{Op: "load product", Err: err}
	}
	return product, nil
}

func (uc *ProductUseCase) findPrice(ctx context.Context, productID, priceID string) (*entity.Price, []*entity.Price, error) {
	prices, err := uc.PriceRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, nil, &PersistenceError{Op: "list prices", Err: err}
	}
	for _, p := range prices {
		if p.ID == priceID {
			return p, prices, nil
		}
	}
	return nil, nil, &NotFoundError{Resource: "price", ID: priceID}
}

func (uc *ProductUseCase) syncToStripe(ctx context.Context, product *entity.Product, price *entity.Price) *DegradedStep {
	if !product.StripeLinked || product.StripeProductID == "" || uc.Gateway == nil {
		return nil
	}
	stripePriceID, err := uc.Gateway.CreatePrice(ctx, stripePriceInput(product.StripeProductID, price))
	if err == nil {
		err = uc.PriceRepo.MarkLinked(ctx, price.ID, stripePriceID)
	}
	if err != nil {
		uc.Logger.Warn("stripe price sync failed", zap.String("price_id", price.ID), zap.Error(err))
		return &DegradedStep{Step: stepSyncStripePrice, Error: err.Error()}
	}
	price.StripeLinked = true
	price.StripePriceID = stripePriceID
	return nil
}

func (uc *ProductUseCase) deactivateInStripe(ctx context.Context, price *entity.Price) *DegradedStep {
	if !price.StripeLinked || price.StripePriceID == "" || uc.Gateway == nil {
		return nil
	}
	if err := uc.Gateway.DeactivatePrice(ctx, price.StripePriceID); err != nil {
		uc.Logger.Warn("stripe price deactivation failed", zap.String("price_id", price.ID), zap.Error(err))
		return &DegradedStep{Step: "deactivate_stripe_price", Error: err.Error()}
	}
	return nil
}

func newPriceFromInput(productID string, in PriceInput) (*entity.Price, error) {
	price, err := entity.NewPrice(productID, in.UnitAmount, strings.ToLower(in.Currency), entity.PriceType(in.Type), in.Interval, in.IntervalCount)
	if err != nil {
		return nil, newValidationError("prices", "invalid price definition")
	}
	return price, nil
}
