package rest

import (
	"errors"
	"net/http"

	"listing-service/internal/contracts"
	"listing-service/internal/core/domain"

	"github.com/go-chi/render"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// WriteJSONError sends {"error": message} with the given status.
func WriteJSONError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, errorResponse{Error: message})
}

// RespondWithJSON sends payload as JSON.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	render.Status(r, code)
	render.JSON(w, r, payload)
}

// writeDomainError maps a use case error to a response. Unexpected errors
// become a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, contracts.ErrMalformedBody):
		WriteJSONError(w, r, http.StatusBadRequest, "Request body is not valid JSON")
	case errors.Is(err, domain.ErrListingNotFound):
		WriteJSONError(w, r, http.StatusNotFound, "Listing not found")
	case errors.Is(err, domain.ErrUnknownCatalog):
		WriteJSONError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrTokenInvalid):
		WriteJSONError(w, r, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotVerifiedBuilder):
		WriteJSONError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrKindMismatch):
		WriteJSONError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnsupportedMedia):
		WriteJSONError(w, r, http.StatusUnsupportedMediaType, err.Error())
	default:
		WriteJSONError(w, r, http.StatusInternalServerError, fallback)
	}
}
