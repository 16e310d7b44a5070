package enrichment

import (
	"context"
	"errors"

	"github.com/getsema/sema/pkg/models"
)

// CreateEnrichmentEmbeddings is the public entry point for embedding
// creation. Invalid enrichment kinds surface as a BadRequestError; every
// other failure, including missing content, malformed payloads and store
// write errors, soft-fails to an empty list so callers observe absence of
// enrichment rather than leaked infrastructure detail.
func CreateEnrichmentEmbeddings(
	ctx context.Context,
	appState *models.AppState,
	rctx *models.RequestContext,
	contentID string,
	kinds []string,
	filters *models.EnrichmentFilters,
) ([]models.EmbeddingRecord, error) {
	creator := NewCreator(appState)
	records, err := creator.Create(ctx, rctx, contentID, kinds, filters)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			return nil, err
		}
		log.Warnf("enrichment soft-failed for content %s: %v", contentID, err)
		return []models.EmbeddingRecord{}, nil
	}
	return records, nil
}
