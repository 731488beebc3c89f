package rest

import (
	"io"
	"net/http"

	"listing-service/internal/constants"
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/domain"
	"listing-service/internal/core/port/usecases_port"
)

type CollaboratorHandler struct {
	uploadUC  usecases_port.UploadAssetUseCasePort
	geocodeUC usecases_port.GeocodeUseCasePort
}

func NewCollaboratorHandler(uploadUC usecases_port.UploadAssetUseCasePort, geocodeUC usecases_port.GeocodeUseCasePort) *CollaboratorHandler {
	return &CollaboratorHandler{uploadUC: uploadUC, geocodeUC: geocodeUC}
}

// UploadAsset handles POST /assets with a multipart "file" and optional "folder".
func (h *CollaboratorHandler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadBytes)
	if err := r.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		WriteJSONError(w, r, http.StatusBadRequest, "Expected a multipart form no larger than 10MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteJSONError(w, r, http.StatusBadRequest, `Form field "file" is required`)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		WriteJSONError(w, r, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	principal, _ := contextkeys.PrincipalFromContext(r.Context())
	media := domain.MediaFile{Name: header.Filename, ContentType: header.Header.Get("Content-Type"), Data: data}

	url, err := h.uploadUC.Execute(r.Context(), principal, r.FormValue("folder"), media)
	if err != nil {
		logFailure(r, "UploadAsset", err)
		writeDomainError(w, r, err, "Failed to store asset")
		return
	}
	RespondWithJSON(w, r, http.StatusCreated, UploadResponse{URL: url})
}

// Geocode handles GET /geocode?q=.
func (h *CollaboratorHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.geocodeUC.Execute(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		logFailure(r, "Geocode", err)
		WriteJSONError(w, r, http.StatusBadGateway, "Geocoding service is unavailable")
		return
	}
	RespondWithJSON(w, r, http.StatusOK, candidates)
}
