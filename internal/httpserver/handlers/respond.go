package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/catalog/internal/domain"
	"github.com/MrSnakeDoc/catalog/internal/logger"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

type errorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message,omitempty"`
	Entity  string              `json:"entity,omitempty"`
	ID      string              `json:"id,omitempty"`
	Field   string              `json:"field,omitempty"`
	Index   *int                `json:"index,omitempty"`
	Errors  []domain.FieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps an error code to its HTTP status.
func statusOf(code domain.ErrorCode) int {
	switch code {
	case domain.CodeEntityNotFound:
		return http.StatusNotFound
	case domain.CodeValidation, domain.CodeUnsupportedVersion:
		return http.StatusBadRequest
	case domain.CodeRelationNotFound:
		return http.StatusUnauthorized
	case domain.CodeExternalSourceConflict, domain.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err. Anything that is not a *domain.Error is an internal
// failure and its text is not echoed.
func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		log.Error("request failed", logger.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "InternalError",
			Message: http.StatusText(http.StatusInternalServerError),
		})
		return
	}

	writeJSON(w, statusOf(derr.Code), errorResponse{
		Error:   string(derr.Code),
		Message: derr.Message,
		Entity:  string(derr.Entity),
		ID:      derr.ID,
		Field:   derr.Field,
		Index:   derr.Index,
		Errors:  derr.Fields,
	})
}

// decode reads a JSON body into v, rejecting unknown fields and trailing data.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("body", "malformed request body: %v", err)
	}
	if dec.More() {
		return domain.Invalid("body", "request body must hold a single JSON object")
	}
	return nil
}

func badParam(name, value string) error {
	return domain.Invalid(name, "invalid value %q", value)
}
