package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getsema/sema/pkg/models"
)

func record(contentID, column string, t models.EmbeddingType) models.EmbeddingRecord {
	return models.EmbeddingRecord{
		UUID:          models.EmbeddingUUID(contentID, column, t, "v1"),
		ContentID:     contentID,
		ColumnName:    column,
		EmbeddingType: t,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	records := []models.EmbeddingRecord{
		record("c1", "a", models.EmbeddingTypeStatistics),
		record("c1", "b", models.EmbeddingTypeStatistics),
		record("c2", "a", models.EmbeddingTypeStatistics),
	}
	require.NoError(t, store.PutEmbeddings(ctx, records))

	got, err := store.GetEmbeddings(ctx, "c1", models.EmbeddingFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ColumnName)
	assert.Equal(t, "b", got[1].ColumnName)
}

func TestGetUnknownContentID(t *testing.T) {
	store := NewStore()
	got, err := store.GetEmbeddings(context.Background(), "missing", models.EmbeddingFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFilterByType(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.PutEmbeddings(ctx, []models.EmbeddingRecord{
		record("c1", "a", models.EmbeddingTypeStatistics),
		record("c1", "a", models.EmbeddingTypeStructured),
	}))

	got, err := store.GetEmbeddings(ctx, "c1", models.EmbeddingFilter{
		EmbeddingType: models.EmbeddingTypeStructured,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.EmbeddingTypeStructured, got[0].EmbeddingType)
}

func TestUpsertPreservesPosition(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.PutEmbeddings(ctx, []models.EmbeddingRecord{
		record("c1", "a", models.EmbeddingTypeStatistics),
		record("c1", "b", models.EmbeddingTypeStatistics),
	}))

	updated := record("c1", "a", models.EmbeddingTypeStatistics)
	updated.Metadata = map[string]interface{}{"mean": 42.0}
	require.NoError(t, store.PutEmbeddings(ctx, []models.EmbeddingRecord{updated}))

	got, err := store.GetEmbeddings(ctx, "c1", models.EmbeddingFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ColumnName)
	assert.Equal(t, 42.0, got[0].Metadata["mean"])
}
