package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/integration/stripe"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/observability"
)

type ApplyMappingsUseCase struct {
	ProductRepo entity.ProductRepositoryInterface
	PriceRepo   entity.PriceRepositoryInterface
	Gateway     CatalogGateway
	Activities  ActivityLogger
	Metrics     *observability.Metrics
	Logger      *zap.Logger

	now func() time.Time
}

func NewApplyMappingsUseCase(
	productRepo entity.ProductRepositoryInterface,
	priceRepo entity.PriceRepositoryInterface,
	gateway CatalogGateway,
	activities ActivityLogger,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *ApplyMappingsUseCase {
	return &ApplyMappingsUseCase{
		ProductRepo: productRepo,
		PriceRepo:   priceRepo,
		Gateway:     gateway,
		Activities:  activities,
		Metrics:     metrics,
		Logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Execute processes the mappings one by one in input order. A failing item
// never stops the batch and nothing is rolled back.
func (uc *ApplyMappingsUseCase) Execute(ctx context.Context, actor entity.Actor, input ApplyMappingsInput) (*ApplyMappingsOutput, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	results := make([]MappingResult, 0, len(input.Mappings))
	for _, m := range input.Mappings {
		r := uc.applyOne(ctx, actor, m)

		outcome := "success"
		if !r.Success {
			outcome = "failed"
		}
		uc.Metrics.RecordReconciliationItem(string(m.Action), outcome)
		results = append(results, r)
	}

	summary := summarize(results)
	uc.Logger.Info("catalog mappings applied",
		zap.String("organization_id", actor.OrganizationID),
		zap.Int("total", summary.Total),
		zap.Int("successful", summary.Successful),
		zap.Int("failed", summary.Failed),
	)

	return &ApplyMappingsOutput{Success: true, Results: results, Summary: summary}, nil
}

func summarize(results []MappingResult) ApplySummary {
	s := ApplySummary{Total: len(results)}
	for _, r := range results {
		if r.Success {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	s.Message = fmt.Sprintf("Processed %d mappings: %d successful, %d failed", s.Total, s.Successful, s.Failed)
	return s
}

func (uc *ApplyMappingsUseCase) applyOne(ctx context.Context, actor entity.Actor, m Mapping) MappingResult {
	switch m.Action {
	case ActionSkip:
		return MappingResult{ProductID: m.ProductID, Success: true, Action: ActionSkip, Message: "Skipped"}
	case ActionCreate:
		return uc.createAndLink(ctx, actor, m.ProductID)
	case ActionLink:
		return uc.link(ctx, actor, m.ProductID, m.StripeProductID)
	default:
		return failed(m.ProductID, m.Action, fmt.Sprintf("unknown action %q", m.Action))
	}
}

func (uc *ApplyMappingsUseCase) link(ctx context.Context, actor entity.Actor, productID, stripeProductID string) MappingResult {
	product, res, ok := uc.loadProduct(ctx, actor, productID, ActionLink)
	if !ok {
		return res
	}

	ext, err := uc.Gateway.GetProduct(ctx, stripeProductID)
	if err != nil {
		uc.Logger.Warn("stripe product lookup failed",
			zap.String("product_id", productID),
			zap.String("stripe_product_id", stripeProductID),
			zap.Error(err),
		)
		if errors.Is(err, stripe.ErrProductNotFound) {
			return failed(productID, ActionLink, "Stripe product not found: "+stripeProductID)
		}
		return failed(productID, ActionLink, "Failed to retrieve Stripe product: "+err.Error())
	}

	return uc.linkConfirmed(ctx, actor, product, ext.ID, ActionLink)
}

func (uc *ApplyMappingsUseCase) createAndLink(ctx context.Context, actor entity.Actor, productID string) MappingResult {
	product, res, ok := uc.loadProduct(ctx, actor, productID, ActionCreate)
	if !ok {
		return res
	}

	ext, err := uc.Gateway.CreateProduct(ctx, stripe.CreateProductInput{
		Name:        product.Name,
		Description: product.Description,
		Active:      product.Active,
		Metadata:    map[string]string{"product_id": product.ID},
	})
	if err != nil {
		uc.Logger.Warn("stripe product creation failed", zap.String("product_id", productID), zap.Error(err))
		return failed(productID, ActionCreate, "Failed to create Stripe product: "+err.Error())
	}

	return uc.linkConfirmed(ctx, actor, product, ext.ID, ActionCreate)
}

func (uc *ApplyMappingsUseCase) loadProduct(ctx context.Context, actor entity.Actor, productID string, action MappingAction) (*entity.Product, MappingResult, bool) {
	product, err := uc.ProductRepo.FindByID(ctx, actor.OrganizationID, productID)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, failed(productID, action, "Product not found"), false
		}
		return nil, failed(productID, action, "Failed to load product: "+err.Error()), false
	}
	return product, MappingResult{}, true
}

// linkConfirmed runs once the external id is known to exist. Only active
// prices are mirrored. Price failures are reported on the result without
// failing it.
func (uc *ApplyMappingsUseCase) linkConfirmed(ctx context.Context, actor entity.Actor, product *entity.Product, stripeProductID string, action MappingAction) MappingResult {
	if err := uc.ProductRepo.MarkLinked(ctx, product.ID, stripeProductID, uc.now()); err != nil {
		uc.Logger.Error("mark product linked failed",
			zap.String("product_id", product.ID),
			zap.String("stripe_product_id", stripeProductID),
			zap.Error(err),
		)
		r := failed(product.ID, action, "Failed to update product: "+err.Error())
		r.StripeProductID = stripeProductID
		return r
	}

	prices, err := uc.PriceRepo.ListByProduct(ctx, product.ID)
	var priceErrors []string
	if err != nil {
		priceErrors = append(priceErrors, "failed to load prices: "+err.Error())
	}

	linked, total := 0, 0
	for _, price := range prices {
		if !price.Active {
			continue
		}
		total++
		if price.StripeLinked {
			continue
		}
		if err := uc.linkPrice(ctx, stripeProductID, price); err != nil {
			uc.Logger.Warn("price link failed",
				zap.String("product_id", product.ID),
				zap.String("price_id", price.ID),
				zap.Error(err),
			)
			priceErrors = append(priceErrors, fmt.Sprintf("price %s: %v", price.ID, err))
			continue
		}
		linked++
	}

	if uc.Activities != nil {
		a := entity.NewActivity(product.OrganizationID, actor.UserID, "product", product.ID, entity.ActivityProductLinked,
			fmt.Sprintf("Product %s linked to Stripe product %s", product.Name, stripeProductID))
		a.Metadata = map[string]string{"stripe_product_id": stripeProductID, "action": string(action)}
		if err := uc.Activities.Log(ctx, a); err != nil {
			uc.Logger.Warn("activity log failed", zap.String("product_id", product.ID), zap.Error(err))
		}
	}

	verb := "Linked"
	if action == ActionCreate {
		verb = "Created and linked"
	}
	return MappingResult{
		ProductID:       product.ID,
		Success:         true,
		Action:          action,
		StripeProductID: stripeProductID,
		PricesLinked:    &linked,
		TotalPrices:     &total,
		PriceErrors:     priceErrors,
		Message:         fmt.Sprintf("%s to %s (%d/%d prices linked)", verb, stripeProductID, linked, total),
	}
}

func (uc *ApplyMappingsUseCase) linkPrice(ctx context.Context, stripeProductID string, price *entity.Price) error {
	stripePriceID, err := uc.Gateway.CreatePrice(ctx, stripePriceInput(stripeProductID, price))
	if err != nil {
		return fmt.Errorf("create stripe price: %w", err)
	}
	if err := uc.PriceRepo.MarkLinked(ctx, price.ID, stripePriceID); err != nil {
		return fmt.Errorf("mark price linked: %w", err)
	}
	price.StripeLinked = true
	price.StripePriceID = stripePriceID
	return nil
}

// stripePriceInput keys the request on the internal price and target product
// so concurrent syncs of the same price resolve to one Stripe price.
func stripePriceInput(stripeProductID string, price *entity.Price) stripe.CreatePriceInput {
	in := stripe.CreatePriceInput{
		ProductID:      stripeProductID,
		UnitAmount:     price.UnitAmount,
		Currency:       price.Currency,
		Metadata:       map[string]string{"price_id": price.ID},
		IdempotencyKey: priceIdempotencyKey(stripeProductID, price.ID),
	}
	if price.Type == entity.PriceTypeRecurring {
		in.Recurring = true
		in.Interval = price.Interval
		in.IntervalCount = price.IntervalCount
	}
	return in
}

func priceIdempotencyKey(stripeProductID, priceID string) string {
	return "price-" + priceID + "-" + stripeProductID
}

func failed(productID string, action MappingAction, msg string) MappingResult {
	return MappingResult{ProductID: productID, Success: false, Action: action, Error: msg}
}
