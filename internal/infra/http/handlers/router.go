package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/infra/http/middleware"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/observability"
)

type RouterConfig struct {
	JWTSecret   []byte
	CORSOrigins []string
	Metrics     *observability.Metrics
	Logger      *zap.Logger

	Leads    *LeadHandler
	Catalog  *CatalogHandler
	Products *ProductHandler
	// Webhooks is nil when inbound lead capture is disabled.
	Webhooks *WebhookHandler
	Health   *HealthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.ZapLoggerMiddleware(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", WebhookTokenHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Handle)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	if cfg.Webhooks != nil {
		r.Post("/webhooks/leads/{platform}", cfg.Webhooks.Handle)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret, cfg.Logger))
		r.Use(chimw.Timeout(60 * time.Second))

		r.Route("/leads", func(r chi.Router) {
			r.Post("/", cfg.Leads.HandleCreate)
			r.Get("/", cfg.Leads.HandleList)
			r.Post("/convert", cfg.Leads.HandleConvert)
			r.Get("/{id}", cfg.Leads.HandleGet)
			r.Patch("/{id}", cfg.Leads.HandleUpdate)
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", cfg.Products.HandleCreate)
			r.Get("/{id}", cfg.Products.HandleGet)
			r.Post("/{id}/prices", cfg.Products.HandleAddPrice)
			r.Put("/{id}/prices/{priceId}", cfg.Products.HandleReplacePrice)
			r.Delete("/{id}/prices/{priceId}", cfg.Products.HandleDeactivatePrice)
		})

		r.Route("/admin/stripe", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/bulk-link", cfg.Catalog.HandleSuggest)
			r.Post("/bulk-link", cfg.Catalog.HandleApply)
		})
	})

	return r
}
