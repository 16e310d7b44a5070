package analysis

import (
	"context"

	"github.com/getsema/sema/pkg/models"
)

// RunEDAAnalysis is the public entry point for exploratory analysis. It
// reads only the embedding store; raw content is never consulted.
func RunEDAAnalysis(
	ctx context.Context,
	appState *models.AppState,
	contentID string,
	analysisTypes []string,
) (*models.EDAResult, error) {
	return NewEngine(appState.EmbeddingStore).Run(ctx, contentID, analysisTypes)
}
