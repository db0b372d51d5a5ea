package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/usecase"
)

type MatchSuggester interface {
	Execute(ctx context.Context, actor entity.Actor) (*usecase.SuggestOutput, error)
}

type MappingApplier interface {
	Execute(ctx context.Context, actor entity.Actor, input usecase.ApplyMappingsInput) (*usecase.ApplyMappingsOutput, error)
}

// CatalogHandler serves the Stripe bulk-link admin endpoints.
type CatalogHandler struct {
	Suggest MatchSuggester
	Apply   MappingApplier
	Logger  *zap.Logger
}

func NewCatalogHandler(suggest MatchSuggester, apply MappingApplier, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{Suggest: suggest, Apply: apply, Logger: logger}
}

func (h *CatalogHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	out, err := h.Suggest.Execute(r.Context(), actorFrom(r))
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *CatalogHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var input usecase.ApplyMappingsInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Apply.Execute(r.Context(), actorFrom(r), input)
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
