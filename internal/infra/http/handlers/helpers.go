package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/piyapromdee/leaniverse-crm/internal/entity"
	"github.com/piyapromdee/leaniverse-crm/internal/infra/http/middleware"
	"github.com/piyapromdee/leaniverse-crm/internal/usecase"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON rejects unknown fields and bodies over 1 MiB.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Code: usecase.CodeInvalidJSON})
		return false
	}
	return true
}

// handleError maps use case errors onto HTTP status codes. Internal causes
// are logged, never returned to the caller.
func handleError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		validation  *usecase.ValidationError
		notFound    *usecase.NotFoundError
		persistence *usecase.PersistenceError
	)

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: validation.Error(),
			Code:  validation.Code,
			Field: validation.Field,
		})
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &persistence):
		logger.Error("persistence failure", zap.String("op", persistence.Op), zap.Error(persistence.Err))
		writeError(w, http.StatusInternalServerError, "failed to "+persistence.Op)
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func actorFrom(r *http.Request) entity.Actor {
	actor, _ := middleware.ActorFromContext(r.Context())
	return actor
}
