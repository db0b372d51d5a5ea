package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/usecase"
)

type LeadCreator interface {
	Execute(ctx context.Context, actor entity.Actor, input usecase.CreateLeadInput) (*usecase.LeadOutput, error)
}

type LeadUpdater interface {
	Execute(ctx context.Context, actor entity.Actor, leadID string, input usecase.UpdateLeadInput) (*usecase.LeadOutput, error)
}

type LeadReader interface {
	Get(ctx context.Context, actor entity.Actor, id string) (*entity.Lead, error)
	List(ctx context.Context, actor entity.Actor, input usecase.ListLeadsInput) ([]*entity.Lead, error)
}

type LeadConverter interface {
	Execute(ctx context.Context, actor entity.Actor, input usecase.ConvertLeadInput) (*usecase.ConvertLeadOutput, error)
}

type LeadHandler struct {
	Create  LeadCreator
	Update  LeadUpdater
	Query   LeadReader
	Convert LeadConverter
	Logger  *zap.Logger
}

func NewLeadHandler(create LeadCreator, update LeadUpdater, query LeadReader, convert LeadConverter, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		Create:  create,
		Update:  update,
		Query:   query,
		Convert: convert,
		Logger:  logger,
	}
}

func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Create.Execute(r.Context(), actorFrom(r), input)
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Query.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lead": lead})
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := usecase.ListLeadsInput{
		Status: q.Get("status"),
		Source: q.Get("source"),
	}
	for name, dst := range map[string]*int{"min_score": &input.MinScore, "limit": &input.Limit, "offset": &input.Offset} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: name + " must be an integer", Code: usecase.CodeValidation, Field: name})
				return
			}
			*dst = n
		}
	}

	leads, err := h.Query.List(r.Context(), actorFrom(r), input)
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "count": len(leads)})
}

func (h *LeadHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Update.Execute(r.Context(), actorFrom(r), chi.URLParam(r, "id"), input)
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleConvert turns a qualified lead into a deal.
func (h *LeadHandler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var input usecase.ConvertLeadInput
	if !decodeJSON(w, r, &input) {
		return
	}

	out, err := h.Convert.Execute(r.Context(), actorFrom(r), input)
	if err != nil {
		handleError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
