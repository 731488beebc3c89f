package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"listing-service/internal/constants"
	"listing-service/internal/contextkeys"
	"listing-service/internal/contracts"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ListingHandler struct {
	findUC            usecases_port.FindListingsUseCasePort
	getUC             usecases_port.GetListingUseCasePort
	createUC          usecases_port.CreateListingUseCasePort
	updateUC          usecases_port.UpdateListingUseCasePort
	setVerificationUC usecases_port.SetVerificationUseCasePort
}

func NewListingHandler(
	findUC usecases_port.FindListingsUseCasePort,
	getUC usecases_port.GetListingUseCasePort,
	createUC usecases_port.CreateListingUseCasePort,
	updateUC usecases_port.UpdateListingUseCasePort,
	setVerificationUC usecases_port.SetVerificationUseCasePort,
) *ListingHandler {
	return &ListingHandler{
		findUC:            findUC,
		getUC:             getUC,
		createUC:          createUC,
		updateUC:          updateUC,
		setVerificationUC: setVerificationUC,
	}
}

// List returns a handler for a fixed catalog: GET /agents, GET /builders.
func (h *ListingHandler) List(catalog string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.find(w, r, catalog)
	}
}

// FindListings handles GET /listings?kind=property|project.
func (h *ListingHandler) FindListings(w http.ResponseWriter, r *http.Request) {
	kind := domain.Kind(strings.TrimSpace(r.URL.Query().Get("kind")))
	if kind != "" && !kind.Valid() {
		WriteJSONError(w, r, http.StatusBadRequest, "kind must be property or project")
		return
	}
	h.find(w, r, domain.CatalogForKind(kind))
}

func (h *ListingHandler) find(w http.ResponseWriter, r *http.Request, catalog string) {
	logger := contextkeys.LoggerFromContext(r.Context())
	handlerLogger := logger.WithFields(port.Fields{"handler": "FindListings", "catalog": catalog})

	result, err := h.findUC.Execute(r.Context(), catalog, r.URL.Query())
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCatalog) {
			writeDomainError(w, r, err, "")
			return
		}
		handlerLogger.Error("Use case failed", err, nil)
		WriteJSONError(w, r, http.StatusInternalServerError, "Failed to retrieve listings")
		return
	}

	RespondWithJSON(w, r, http.StatusOK, newListResponse(result))
}

// GetListing handles GET /listings/{listingID}.
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id, ok := listingIDParam(w, r)
	if !ok {
		return
	}
	principal, _ := contextkeys.PrincipalFromContext(r.Context())

	listing, err := h.getUC.Execute(r.Context(), principal, id)
	if err != nil {
		logFailure(r, "GetListing", err)
		writeDomainError(w, r, err, "Failed to retrieve listing")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, listing)
}

// CreateListing handles POST /listings.
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	listing, ok := decodeListing(w, r)
	if !ok {
		return
	}
	principal, _ := contextkeys.PrincipalFromContext(r.Context())

	created, err := h.createUC.Execute(r.Context(), principal, listing)
	if err != nil {
		logFailure(r, "CreateListing", err)
		writeDomainError(w, r, err, "Failed to create listing")
		return
	}
	RespondWithJSON(w, r, http.StatusCreated, created)
}

// UpdateListing handles PUT /listings/{listingID}.
func (h *ListingHandler) UpdateListing(w http.ResponseWriter, r *http.Request) {
	id, ok := listingIDParam(w, r)
	if !ok {
		return
	}
	listing, ok := decodeListing(w, r)
	if !ok {
		return
	}
	principal, _ := contextkeys.PrincipalFromContext(r.Context())

	updated, err := h.updateUC.Execute(r.Context(), principal, id, listing)
	if err != nil {
		logFailure(r, "UpdateListing", err)
		writeDomainError(w, r, err, "Failed to update listing")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, updated)
}

// SetVerification handles PATCH /listings/{listingID}/verification.
func (h *ListingHandler) SetVerification(w http.ResponseWriter, r *http.Request) {
	id, ok := listingIDParam(w, r)
	if !ok {
		return
	}

	var req VerificationRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<10)).Decode(&req); err != nil || req.Verified == nil {
		WriteJSONError(w, r, http.StatusBadRequest, `body must be {"verified": true|false}`)
		return
	}
	principal, _ := contextkeys.PrincipalFromContext(r.Context())

	listing, err := h.setVerificationUC.Execute(r.Context(), principal, id, *req.Verified)
	if err != nil {
		logFailure(r, "SetVerification", err)
		writeDomainError(w, r, err, "Failed to update verification")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, listing)
}

func listingIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		WriteJSONError(w, r, http.StatusBadRequest, "Invalid listing ID format")
		return uuid.Nil, false
	}
	return id, true
}

// decodeListing checks the body against the submission schema before decoding it.
func decodeListing(w http.ResponseWriter, r *http.Request) (*domain.Listing, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxListingBodyBytes))
	if err != nil {
		WriteJSONError(w, r, http.StatusRequestEntityTooLarge, "Request body is too large")
		return nil, false
	}
	if err := contracts.ValidateSubmission(body); err != nil {
		writeDomainError(w, r, err, "Failed to validate request body")
		return nil, false
	}

	var listing domain.Listing
	if err := json.Unmarshal(body, &listing); err != nil {
		WriteJSONError(w, r, http.StatusBadRequest, "Request body does not match the listing format")
		return nil, false
	}
	return &listing, true
}

func logFailure(r *http.Request, handler string, err error) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": handler})
	var verr *domain.ValidationError
	if errors.As(err, &verr) || errors.Is(err, domain.ErrListingNotFound) || errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrNotVerifiedBuilder) || errors.Is(err, domain.ErrKindMismatch) {
		logger.Warn("Request rejected", port.Fields{"error": err.Error()})
		return
	}
	logger.Error("Use case failed", err, nil)
}
