package enrichment

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getsema/sema/config"
	"github.com/getsema/sema/pkg/models"
	"github.com/getsema/sema/pkg/store/memstore"
)

type fakeLibrarian struct {
	metadata map[string]*models.ContentMetadata
}

func (f *fakeLibrarian) GetContentMetadata(
	_ context.Context,
	_ *models.RequestContext,
	contentID string,
) (*models.ContentMetadata, error) {
	m, ok := f.metadata[contentID]
	if !ok {
		return nil, models.NewContentNotFoundError(contentID, nil)
	}
	return m, nil
}

type fakeSteward struct {
	payloads map[string]*models.RawParsedPayload
}

func (f *fakeSteward) GetParsedFile(
	_ context.Context,
	_ *models.RequestContext,
	parsedFileID string,
) (*models.RawParsedPayload, error) {
	p, ok := f.payloads[parsedFileID]
	if !ok {
		return nil, models.NewContentNotFoundError(parsedFileID, nil)
	}
	return p, nil
}

func testAppState(contentID string, data []byte) *models.AppState {
	return &models.AppState{
		EmbeddingStore: memstore.NewStore(),
		Librarian: &fakeLibrarian{metadata: map[string]*models.ContentMetadata{
			contentID: {ContentID: contentID, ParsedFileID: "pf-" + contentID},
		}},
		ContentSteward: &fakeSteward{payloads: map[string]*models.RawParsedPayload{
			"pf-" + contentID: {
				ParsedFileID: "pf-" + contentID,
				Format:       "json_records",
				Data:         data,
			},
		}},
		Config: &config.Config{},
	}
}

func byColumn(records []models.EmbeddingRecord, column string) *models.EmbeddingRecord {
	for i := range records {
		if records[i].ColumnName == column {
			return &records[i]
		}
	}
	return nil
}

func TestCreateStatistics(t *testing.T) {
	data := []byte(`[
		{"amount": 10, "city": "Oslo"},
		{"amount": 20, "city": "Oslo"},
		{"amount": 30, "city": "Bergen"},
		{"amount": 40, "city": null},
		{"amount": 50, "city": "Oslo"}
	]`)
	appState := testAppState("c1", data)

	records, err := CreateEnrichmentEmbeddings(
		context.Background(), appState, nil, "c1", []string{"statistics"}, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)

	amount := byColumn(records, "amount")
	require.NotNil(t, amount)
	assert.Equal(t, 30.0, amount.Metadata["mean"])
	assert.Equal(t, 30.0, amount.Metadata["median"])
	assert.Equal(t, 10.0, amount.Metadata["min"])
	assert.Equal(t, 50.0, amount.Metadata["max"])
	assert.Equal(t, 5, amount.Metadata["count"])
	assert.Equal(t, 0, amount.Metadata["null_count"])

	city := byColumn(records, "city")
	require.NotNil(t, city)
	assert.Equal(t, 2, city.Metadata["unique_count"])
	assert.Equal(t, "Oslo", city.Metadata["most_common"])
	assert.Equal(t, 1, city.Metadata["null_count"])
}

func TestCreateCorrelations(t *testing.T) {
	data := []byte(`[
		{"x": 1, "y": 2},
		{"x": 2, "y": 4},
		{"x": 3, "y": 6},
		{"x": 4, "y": 8}
	]`)
	appState := testAppState("c1", data)

	records, err := CreateEnrichmentEmbeddings(
		context.Background(), appState, nil, "c1", []string{"correlations"}, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Empty(t, rec.ColumnName)
	matrix := rec.Metadata["correlations"].(map[string]interface{})
	xRow := matrix["x"].(map[string]interface{})
	yRow := matrix["y"].(map[string]interface{})
	assert.Equal(t, 1.0, xRow["x"])
	assert.Equal(t, 1.0, yRow["y"])
	assert.InDelta(t, 1.0, xRow["y"].(float64), 1e-12)
	assert.Equal(t, xRow["y"], yRow["x"])
}

func TestCreateSamplingBounds(t *testing.T) {
	rows := make([]byte, 0, 1024)
	rows = append(rows, '[')
	for i := 0; i < 500; i++ {
		if i > 0 {
			rows = append(rows, ',')
		}
		rows = append(rows, []byte(fmt.Sprintf(`{"v": %d}`, i))...)
	}
	rows = append(rows, ']')
	appState := testAppState("c1", rows)

	records, err := CreateEnrichmentEmbeddings(
		context.Background(), appState, nil, "c1", []string{"column_values"}, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.LessOrEqual(t, len(records[0].SampleValues), 100)
	preview := records[0].Metadata["sample_values"].([]interface{})
	assert.LessOrEqual(t, len(preview), 10)
	// Fixed-stride selection starts at the first row.
	assert.Equal(t, "0", fmt.Sprintf("%v", records[0].SampleValues[0]))
}

func TestCreateMissingValues(t *testing.T) {
	data := []byte(`[
		{"a": 1, "b": null},
		{"a": null, "b": null},
		{"a": 3, "b": 4}
	]`)
	appState := testAppState("c1", data)

	records, err := CreateEnrichmentEmbeddings(
		context.Background(), appState, nil, "c1", []string{"missing_values"}, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)

	a := byColumn(records, "a")
	require.NotNil(t, a)
	assert.Equal(t, 3, a.Metadata["total_count"])
	assert.Equal(t, 1, a.Metadata["null_count"])
	assert.Equal(t, 33.33, a.Metadata["missing_percentage"])
	assert.Equal(t, true, a.Metadata["has_missing"])

	b := byColumn(records, "b")
	require.NotNil(t, b)
	assert.Equal(t, 66.67, b.Metadata["missing_percentage"])
}

func TestCreateAllKindsPersisted(t *testing.T) {
	data := []byte(`[{"x": 1, "y": 2}, {"x": 2, "y": 4}, {"x": 3, "y": 6}]`)
	appState := testAppState("c1", data)

	records, err := CreateEnrichmentEmbeddings(
		context.Background(), appState, nil, "c1", nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, records)

	stored, err := appState.EmbeddingStore.GetEmbeddings(
		context.Background(), "c1", models.EmbeddingFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, len(records))

	structured, err := appState.EmbeddingStore.GetEmbeddings(
		context.Background(), "c1", models.EmbeddingFilter{
			EmbeddingType: models.EmbeddingTypeStructured,
		})
	require.NoError(t, err)
	require.Len(t, structured, 2)
	assert.Equal(t, 0, structured[0].Metadata["column_position"])
	assert.Equal(t, 3, structured[0].Metadata["row_count"])
}

func TestCreateIdempotent(t *testing.T) {
	data := []byte(`[{"x": 1}, {"x": 2}]`)
	appState := testAppState("c1", data)
	ctx := context.Background()

	_, err := CreateEnrichmentEmbeddings(ctx, appState, nil, "c1", nil, nil)
	require.NoError(t, err)
	first, err := appState.EmbeddingStore.GetEmbeddings(ctx, "c1", models.EmbeddingFilter{})
	require.NoError(t, err)

	_, err = CreateEnrichmentEmbeddings(ctx, appState, nil, "c1", nil, nil)
	require.NoError(t, err)
	second, err := appState.EmbeddingStore.GetEmbeddings(ctx, "c1", models.EmbeddingFilter{})
	require.NoError(t, err)

	assert.Len(t, second, len(first))
}

func TestCreateSoftFailsOnMissingContent(t *testing.T) {
	appState := testAppState("c1", []byte(`[{"x": 1}]`))

	records, err := CreateEnrichmentEmbeddings(
		context.Background(), appState, nil, "unknown", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestCreateUnsupportedKind(t *testing.T) {
	appState := testAppState("c1", []byte(`[{"x": 1}]`))

	_, err := CreateEnrichmentEmbeddings(
		context.Background(), appState, nil, "c1", []string{"sentiment"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}
