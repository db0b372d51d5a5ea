package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/integration/stripe"
)

func newProductFixture() (*ProductUseCase, *MockProductRepository, *MockPriceRepository, *MockCatalogGateway) {
	products := new(MockProductRepository)
	prices := new(MockPriceRepository)
	gateway := new(MockCatalogGateway)
	return NewProductUseCase(products, prices, gateway, zap.NewNop()), products, prices, gateway
}

func TestProductCreate_WithPrices(t *testing.T) {
	uc, products, prices, _ := newProductFixture()
	products.On("Create", mock.Anything, mock.MatchedBy(func(p *entity.Product) bool {
		return len(p.Prices) == 2
	})).Return(nil)

	out, err := uc.Create(context.Background(), testActor, CreateProductInput{
		Name: "Pro Plan",
		Prices: []PriceInput{
			{UnitAmount: 4900, Currency: "USD", Type: "recurring", Interval: "month"},
			{UnitAmount: 49000, Currency: "usd", Type: "recurring", Interval: "year"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "org-1", out.Product.OrganizationID)
	assert.Equal(t, entity.LinkStatusUnlinked, out.Product.StripeLinkStatus)
	require.Len(t, out.Product.Prices, 2)
	assert.Equal(t, "usd", out.Product.Prices[0].Currency)
	assert.Equal(t, int64(1), out.Product.Prices[0].IntervalCount)
	products.AssertExpectations(t)
	prices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductCreate_PriceInsertFailureStoresNothing(t *testing.T) {
	uc, products, prices, _ := newProductFixture()
	products.On("Create", mock.Anything, mock.AnythingOfType("*entity.Product")).Return(errors.New("insert price: db down"))

	out, err := uc.Create(context.Background(), testActor, CreateProductInput{
		Name:   "Pro Plan",
		Prices: []PriceInput{{UnitAmount: 4900, Currency: "usd", Type: "one_time"}},
	})

	assert.Nil(t, out)
	assert.True(t, IsPersistenceError(err))
	products.AssertNumberOfCalls(t, "Create", 1)
	prices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductCreate_RequiresAPrice(t *testing.T) {
	uc, products, _, _ := newProductFixture()

	_, err := uc.Create(context.Background(), testActor, CreateProductInput{Name: "Pro Plan"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "prices", verr.Field)
	products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductCreate_RecurringNeedsInterval(t *testing.T) {
	uc, _, _, _ := newProductFixture()

	_, err := uc.Create(context.Background(), testActor, CreateProductInput{
		Name:   "Pro Plan",
		Prices: []PriceInput{{UnitAmount: 100, Currency: "usd", Type: "recurring"}},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "prices[0].interval", verr.Field)
}

func TestAddPrice_SyncFailureIsDegraded(t *testing.T) {
	uc, products, prices, gateway := newProductFixture()
	product := &entity.Product{ID: "p-1", OrganizationID: "org-1", StripeLinked: true, StripeProductID: "prod_1"}

	products.On("FindByID", mock.Anything, "org-1", "p-1").Return(product, nil)
	prices.On("Create", mock.Anything, mock.Anything).Return(nil)
	gateway.On("CreatePrice", mock.Anything, mock.Anything).Return("", errors.New("stripe unavailable"))

	out, err := uc.AddPrice(context.Background(), testActor, "p-1", PriceInput{UnitAmount: 900, Currency: "usd", Type: "one_time"})

	require.NoError(t, err)
	assert.False(t, out.Price.StripeLinked)
	require.Len(t, out.Degraded, 1)
	assert.Equal(t, "sync_stripe_price", out.Degraded[0].Step)
	prices.AssertNotCalled(t, "MarkLinked", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddPrice_UnlinkedProductSkipsStripe(t *testing.T) {
	uc, products, prices, gateway := newProductFixture()
	products.On("FindByID", mock.Anything, "org-1", "p-1").Return(&entity.Product{ID: "p-1"}, nil)
	prices.On("Create", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.AddPrice(context.Background(), testActor, "p-1", PriceInput{UnitAmount: 900, Currency: "usd", Type: "one_time"})

	require.NoError(t, err)
	assert.Empty(t, out.Degraded)
	gateway.AssertNotCalled(t, "CreatePrice", mock.Anything, mock.Anything)
}

func TestReplacePrice_CreatesBeforeDeactivating(t *testing.T) {
	uc, products, prices, gateway := newProductFixture()
	old := &entity.Price{ID: "pr-old", Active: true, StripeLinked: true, StripePriceID: "price_old"}

	var calls []string
	products.On("FindByID", mock.Anything, "org-1", "p-1").Return(&entity.Product{ID: "p-1"}, nil)
	prices.On("ListByProduct", mock.Anything, "p-1").Return([]*entity.Price{old}, nil)
	prices.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) { calls = append(calls, "create") }).Return(nil)
	prices.On("Deactivate", mock.Anything, "pr-old").Run(func(mock.Arguments) { calls = append(calls, "deactivate") }).Return(nil)
	gateway.On("DeactivatePrice", mock.Anything, "price_old").Return(nil)

	out, err := uc.ReplacePrice(context.Background(), testActor, "p-1", "pr-old", PriceInput{UnitAmount: 5900, Currency: "usd", Type: "one_time"})

	require.NoError(t, err)
	assert.Equal(t, []string{"create", "deactivate"}, calls)
	assert.Equal(t, int64(5900), out.Price.UnitAmount)
	assert.NotEqual(t, "pr-old", out.Price.ID)
	gateway.AssertExpectations(t)
}

func TestReplacePrice_InactivePrice(t *testing.T) {
	uc, products, prices, _ := newProductFixture()
	products.On("FindByID", mock.Anything, "org-1", "p-1").Return(&entity.Product{ID: "p-1"}, nil)
	prices.On("ListByProduct", mock.Anything, "p-1").Return([]*entity.Price{{ID: "pr-old"}}, nil)

	_, err := uc.ReplacePrice(context.Background(), testActor, "p-1", "pr-old", PriceInput{UnitAmount: 1, Currency: "usd", Type: "one_time"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidState, verr.Code)
	prices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeactivatePrice_KeepsLastActivePrice(t *testing.T) {
	uc, products, prices, _ := newProductFixture()
	products.On("FindByID", mock.Anything, "org-1", "p-1").Return(&entity.Product{ID: "p-1"}, nil)
	prices.On("ListByProduct", mock.Anything, "p-1").Return([]*entity.Price{
		{ID: "pr-1", Active: true},
		{ID: "pr-2", Active: false},
	}, nil)

	_, err := uc.DeactivatePrice(context.Background(), testActor, "p-1", "pr-1")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, CodeInvalidState, verr.Code)
	assert.Equal(t, entity.ErrLastActivePrice.Error(), verr.Message)
	prices.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
}

func TestDeactivatePrice_MirrorsToStripe(t *testing.T) {
	uc, products, prices, gateway := newProductFixture()
	products.On("FindByID", mock.Anything, "org-1", "p-1").Return(&entity.Product{ID: "p-1"}, nil)
	prices.On("ListByProduct", mock.Anything, "p-1").Return([]*entity.Price{
		{ID: "pr-1", Active: true, StripeLinked: true, StripePriceID: "price_1"},
		{ID: "pr-2", Active: true},
	}, nil)
	prices.On("Deactivate", mock.Anything, "pr-1").Return(nil)
	gateway.On("DeactivatePrice", mock.Anything, "price_1").Return(errors.New("rate limited"))

	degraded, err := uc.DeactivatePrice(context.Background(), testActor, "p-1", "pr-1")

	require.NoError(t, err)
	require.Len(t, degraded, 1)
	assert.Equal(t, "deactivate_stripe_price", degraded[0].Step)
}

func TestDeactivatePrice_UnknownPrice(t *testing.T) {
	uc, products, prices, _ := newProductFixture()
	products.On("FindByID", mock.Anything, "org-1", "p-1").Return(&entity.Product{ID: "p-1"}, nil)
	prices.On("ListByProduct", mock.Anything, "p-1").Return([]*entity.Price{}, nil)

	_, err := uc.DeactivatePrice(context.Background(), testActor, "p-1", "pr-x")

	assert.True(t, IsNotFoundError(err))
}

func TestProductGet_NotFound(t *testing.T) {
	uc, products, _, _ := newProductFixture()
	products.On("FindByID", mock.Anything, "org-1", "p-x").Return(nil, entity.ErrNotFound)

	_, err := uc.Get(context.Background(), testActor, "p-x")

	assert.True(t, IsNotFoundError(err))
}

func TestSyncPendingPrices(t *testing.T) {
	uc, _, prices, gateway := newProductFixture()
	ok := &entity.Price{ID: "pr-1", UnitAmount: 100, Currency: "usd", Type: entity.PriceTypeOneTime, Active: true}
	bad := &entity.Price{ID: "pr-2", UnitAmount: 200, Currency: "usd", Type: entity.PriceTypeOneTime, Active: true}

	prices.On("ListPendingSync", mock.Anything, 25).Return([]entity.PendingPriceSync{
		{Price: ok, StripeProductID: "prod_1"},
		{Price: bad, StripeProductID: "prod_1"},
	}, nil)
	gateway.On("CreatePrice", mock.Anything, stripePriceInput("prod_1", ok)).Return("price_1", nil)
	gateway.On("CreatePrice", mock.Anything, stripePriceInput("prod_1", bad)).Return("", errors.New("card_declined"))
	prices.On("MarkLinked", mock.Anything, "pr-1", "price_1").Return(nil)

	res, err := uc.SyncPendingPrices(context.Background(), 25)

	require.NoError(t, err)
	assert.Equal(t, PriceSyncResult{Synced: 1, Failed: 1}, res)
	prices.AssertNotCalled(t, "MarkLinked", mock.Anything, "pr-2", mock.Anything)
}

func TestPriceSync_SameKeyFromRequestAndWorker(t *testing.T) {
	uc, products, prices, gateway := newProductFixture()
	product := &entity.Product{ID: "p-1", OrganizationID: "org-1", StripeLinked: true, StripeProductID: "prod_1"}

	var keys []string
	products.On("FindByID", mock.Anything, "org-1", "p-1").Return(product, nil)
	prices.On("Create", mock.Anything, mock.Anything).Return(nil)
	gateway.On("CreatePrice", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		keys = append(keys, args.Get(1).(stripe.CreatePriceInput).IdempotencyKey)
	}).Return("price_1", nil)
	prices.On("MarkLinked", mock.Anything, mock.Anything, "price_1").Return(nil)

	out, err := uc.AddPrice(context.Background(), testActor, "p-1", PriceInput{UnitAmount: 900, Currency: "usd", Type: "one_time"})
	require.NoError(t, err)

	pending := *out.Price
	pending.StripeLinked = false
	prices.On("ListPendingSync", mock.Anything, 10).Return([]entity.PendingPriceSync{
		{Price: &pending, StripeProductID: "prod_1"},
	}, nil)
	_, err = uc.SyncPendingPrices(context.Background(), 10)
	require.NoError(t, err)

	require.Len(t, keys, 2)
	assert.Equal(t, "price-"+out.Price.ID+"-prod_1", keys[0])
	assert.Equal(t, keys[0], keys[1])
}
