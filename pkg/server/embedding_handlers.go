package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/getsema/sema/internal"
	"github.com/getsema/sema/pkg/analysis"
	"github.com/getsema/sema/pkg/enrichment"
	"github.com/getsema/sema/pkg/models"
)

var log = internal.GetLogger()

var validate = validator.New()

// CreateEmbeddingsRequest is the payload of the embedding creation endpoint.
// An empty EmbeddingTypes list selects every supported kind.
type CreateEmbeddingsRequest struct {
	EmbeddingTypes []string                  `json:"embedding_types" validate:"omitempty,dive,required"`
	Filters        *models.EnrichmentFilters `json:"filters,omitempty"`
}

// CreateEmbeddingsResponse reports the outcome of an enrichment run. Success
// is false when enrichment soft-failed and no embeddings were produced.
type CreateEmbeddingsResponse struct {
	Success    bool                     `json:"success"`
	ContentID  string                   `json:"content_id"`
	Count      int                      `json:"count"`
	Embeddings []models.EmbeddingRecord `json:"embeddings"`
}

// CreateEmbeddingsHandler godoc
//
//	@Summary		Creates enrichment embeddings for a content artifact
//	@Description	derive statistical embedding records from the parsed file
//	@Tags			embedding
//	@Accept			json
//	@Produce		json
//	@Param			contentId	path		string						true	"Content ID"
//	@Param			body		body		CreateEmbeddingsRequest		true	"Enrichment request"
//	@Success		200			{object}	CreateEmbeddingsResponse
//	@Failure		400			{object}	APIError	"Bad Request"
//	@Failure		500			{object}	APIError	"Internal Server Error"
//	@Router			/api/v1/contents/{contentId}/embeddings [post]
func CreateEmbeddingsHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentID := chi.URLParam(r, "contentId")

		var request CreateEmbeddingsRequest
		if r.ContentLength > 0 {
			if err := decodeJSON(r, &request); err != nil {
				renderError(w, err, http.StatusBadRequest)
				return
			}
		}
		if err := validate.Struct(request); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}

		records, err := enrichment.CreateEnrichmentEmbeddings(
			r.Context(),
			appState,
			requestContextFromHeaders(r),
			contentID,
			request.EmbeddingTypes,
			request.Filters,
		)
		if err != nil {
			if errors.Is(err, models.ErrBadRequest) {
				renderError(w, err, http.StatusBadRequest)
				return
			}
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		response := CreateEmbeddingsResponse{
			Success:    len(records) > 0,
			ContentID:  contentID,
			Count:      len(records),
			Embeddings: records,
		}
		if err := encodeJSON(w, response); err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}
	}
}

// GetEmbeddingsHandler godoc
//
//	@Summary		Returns the stored embeddings for a content artifact
//	@Description	get embeddings by content id, optionally filtered by type
//	@Tags			embedding
//	@Produce		json
//	@Param			contentId	path		string	true	"Content ID"
//	@Param			type		query		string	false	"Embedding type filter"
//	@Success		200			{object}	[]models.EmbeddingRecord
//	@Failure		400			{object}	APIError	"Bad Request"
//	@Failure		500			{object}	APIError	"Internal Server Error"
//	@Router			/api/v1/contents/{contentId}/embeddings [get]
func GetEmbeddingsHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentID := chi.URLParam(r, "contentId")

		var filter models.EmbeddingFilter
		if typeParam := r.URL.Query().Get("type"); typeParam != "" {
			embeddingType, err := models.ParseEmbeddingType(typeParam)
			if err != nil {
				renderError(w, err, http.StatusBadRequest)
				return
			}
			filter.EmbeddingType = embeddingType
		}

		records, err := appState.EmbeddingStore.GetEmbeddings(r.Context(), contentID, filter)
		if err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		if err := encodeJSON(w, records); err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}
	}
}

// RunAnalysisRequest is the payload of the analysis endpoint. An empty
// AnalysisTypes list runs every supported analysis.
type RunAnalysisRequest struct {
	AnalysisTypes []string `json:"analysis_types" validate:"omitempty,dive,required"`
}

// RunAnalysisHandler godoc
//
//	@Summary		Runs exploratory data analysis over stored embeddings
//	@Description	analysis reads embeddings only and never touches raw content
//	@Tags			analysis
//	@Accept			json
//	@Produce		json
//	@Param			contentId	path		string				true	"Content ID"
//	@Param			body		body		RunAnalysisRequest	true	"Analysis request"
//	@Success		200			{object}	models.EDAResult
//	@Failure		400			{object}	APIError	"Bad Request"
//	@Failure		500			{object}	APIError	"Internal Server Error"
//	@Router			/api/v1/contents/{contentId}/analysis [post]
func RunAnalysisHandler(appState *models.AppState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		contentID := chi.URLParam(r, "contentId")

		var request RunAnalysisRequest
		if r.ContentLength > 0 {
			if err := decodeJSON(r, &request); err != nil {
				renderError(w, err, http.StatusBadRequest)
				return
			}
		}
		if err := validate.Struct(request); err != nil {
			renderError(w, err, http.StatusBadRequest)
			return
		}

		// A missing-embeddings result is a well-formed, unsuccessful 200
		// response, not an HTTP error.
		result, err := analysis.RunEDAAnalysis(
			r.Context(), appState, contentID, request.AnalysisTypes)
		if err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}

		if err := encodeJSON(w, result); err != nil {
			renderError(w, err, http.StatusInternalServerError)
			return
		}
	}
}
