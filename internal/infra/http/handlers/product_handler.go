package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/usecase"
)

type ProductService interface {
	Create(ctx context.Context, actor entity.Actor, input usecase.CreateProductInput) (*usecase.ProductOutput, error)
	Get(ctx context.Context, actor entity.Actor, productID string) (*entity.Product, error)
	AddPrice(ctx context.Context, actor entity.Actor, productID string, input usecase.PriceInput) (*usecase.PriceOutput, error)
	ReplacePrice(ctx context.Context, actor entity.Actor, productID, priceID string, input usecase.PriceInput) (*usecase.PriceOutput, error)
	DeactivatePrice(ctx context.Context, actor entity.Actor, productID, priceID string) ([]usecase.DegradedStep, error)
}

type ProductHandler struct {
	Products ProductService
	Logger   *zap.Logger
}

func NewProductHandler(products ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{Products: products, Logger: logger}
}

func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateProductInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Products.Create(r.Context(), actorFrom(r), input)
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *ProductHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.Products.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (h *ProductHandler) HandleAddPrice(w http.ResponseWriter, r *http.Request) {
	var input usecase.PriceInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Products.AddPrice(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// HandleReplacePrice creates a new price and retires the old one.
func (h *ProductHandler) HandleReplacePrice(w http.ResponseWriter, r *http.Request) {
	var input usecase.PriceInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Products.ReplacePrice(r.Context(), actorFrom(r), chi.URLParam(r, "id"), chi.URLParam(r, "priceId"), input)
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ProductHandler) HandleDeactivatePrice(w http.ResponseWriter, r *http.Request) {
	degraded, err := h.Products.DeactivatePrice(r.Context(), actorFrom(r), chi.URLParam(r, "id"), chi.URLParam(r, "priceId"))
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "degraded": degraded})
}
