package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	stripego "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound = errors.New("stripe product not found")
	ErrNotConfigured   = errors.New("stripe is not configured")
	ErrUnavailable     = errors.New("stripe is temporarily unavailable")
)

type Config struct {
	SecretKey string
	Timeout   time.Duration
	// BaseURL overrides the Stripe API endpoint. Empty means the live API.
	BaseURL string
}

// Client talks to the Stripe catalog API through a dedicated client.API, so
// no package-level key is ever set. Calls go through a circuit breaker.
type Client struct {
	api     *client.API
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.SecretKey == "" {
		logger.Warn("stripe secret key not set, catalog calls will fail")
		return &Client{logger: logger}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	backendCfg := &stripego.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripego.Int64(1),
		LeveledLogger:     &stripego.LeveledLogger{Level: stripego.LevelError},
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripego.String(cfg.BaseURL)
		backendCfg.MaxNetworkRetries = stripego.Int64(0)
	}
	backend := stripego.GetBackendWithConfig(stripego.APIBackend, backendCfg)

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripego.Backends{API: backend, Connect: backend, Uploads: backend})

	return &Client{
		api:     api,
		breaker: newBreaker(logger),
		logger:  logger,
	}
}

func newBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		// A missing resource or a rejected request says nothing about
		// Stripe's health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *stripego.Error
			if errors.As(err, &se) {
				return se.HTTPStatusCode >= 400 && se.HTTPStatusCode < 500 && se.HTTPStatusCode != http.StatusTooManyRequests
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

func (c *Client) call(fn func() (interface{}, error)) (interface{}, error) {
	if c.api == nil {
		return nil, ErrNotConfigured
	}
	res, err := c.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return res, err
}

// ListActiveProducts pages through every active product in the account.
func (c *Client) ListActiveProducts(ctx context.Context) ([]Product, error) {
	res, err := c.call(func() (interface{}, error) {
		params := &stripego.ProductListParams{Active: stripego.Bool(true)}
		params.Context = ctx
		params.Limit = stripego.Int64(100)

		var out []Product
		it := c.api.Products.List(params)
		for it.Next() {
			out = append(out, toProduct(it.Product()))
		}
		if err := it.Err(); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list stripe products: %w", err)
	}
	products, _ := res.([]Product)
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	res, err := c.call(func() (interface{}, error) {
		params := &stripego.ProductParams{}
		params.Context = ctx
		return c.api.Products.Get(id, params)
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("get stripe product %s: %w", id, err)
	}
	p := toProduct(res.(*stripego.Product))
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, input CreateProductInput) (*Product, error) {
	res, err := c.call(func() (interface{}, error) {
		params := &stripego.ProductParams{
			Name:   stripego.String(input.Name),
			Active: stripego.Bool(input.Active),
		}
		if input.Description != "" {
			params.Description = stripego.String(input.Description)
		}
		for k, v := range input.Metadata {
			params.AddMetadata(k, v)
		}
		params.Context = ctx
		return c.api.Products.New(params)
	})
	if err != nil {
		return nil, fmt.Errorf("create stripe product: %w", err)
	}

	p := toProduct(res.(*stripego.Product))
	c.logger.Info("stripe product created", zap.String("stripe_product_id", p.ID), zap.String("name", p.Name))
	return &p, nil
}

// CreatePrice returns the id of the new Stripe price.
func (c *Client) CreatePrice(ctx context.Context, input CreatePriceInput) (string, error) {
	res, err := c.call(func() (interface{}, error) {
		params := &stripego.PriceParams{
			Product:    stripego.String(input.ProductID),
			UnitAmount: stripego.Int64(input.UnitAmount),
			Currency:   stripego.String(input.Currency),
		}
		if input.Recurring {
			params.Recurring = &stripego.PriceRecurringParams{
				Interval:      stripego.String(input.Interval),
				IntervalCount: stripego.Int64(input.IntervalCount),
			}
		}
		for k, v := range input.Metadata {
			params.AddMetadata(k, v)
		}
		if input.IdempotencyKey != "" {
			params.SetIdempotencyKey(input.IdempotencyKey)
		}
		params.Context = ctx
		return c.api.Prices.New(params)
	})
	if err != nil {
		return "", fmt.Errorf("create stripe price: %w", err)
	}
	return res.(*stripego.Price).ID, nil
}

// DeactivatePrice archives a price. Stripe prices cannot be edited or deleted.
func (c *Client) DeactivatePrice(ctx context.Context, id string) error {
	_, err := c.call(func() (interface{}, error) {
		params := &stripego.PriceParams{Active: stripego.Bool(false)}
		params.Context = ctx
		return c.api.Prices.Update(id, params)
	})
	if err != nil {
		return fmt.Errorf("deactivate stripe price %s: %w", id, err)
	}
	return nil
}

// Configured reports whether a secret key was provided.
func (c *Client) Configured() bool {
	return c.api != nil
}

func isNotFound(err error) bool {
	var se *stripego.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.HTTPStatusCode == http.StatusNotFound || se.Code == stripego.ErrorCodeResourceMissing
}

func toProduct(p *stripego.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Active:      p.Active,
	}
}
