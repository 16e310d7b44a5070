package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

func testAppState() *models.AppState {
	data := []byte(`[
		{"amount": 10, "city": "Oslo"},
		{"amount": 20, "city": "Bergen"},
		{"amount": 30, "city": "Oslo"},
		{"amount": 40, "city": null},
		{"amount": 50, "city": "Oslo"}
	]`)
	return &models.AppState{
		EmbeddingStore: memstore.NewStore(),
		Librarian: &fakeLibrarian{metadata: map[string]*models.ContentMetadata{
			"c1": {ContentID: "c1", ParsedFileID: "pf1"},
		}},
		ContentSteward: &fakeSteward{payloads: map[string]*models.RawParsedPayload{
			"pf1": {ParsedFileID: "pf1", Format: "json_records", Data: data},
		}},
		Config: &config.Config{},
	}
}

func postJSON(t *testing.T, router http.Handler, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestCreateEmbeddingsRoute(t *testing.T) {
	router := setupRouter(testAppState())

	res := postJSON(t, router, "/api/v1/contents/c1/embeddings",
		CreateEmbeddingsRequest{EmbeddingTypes: []string{"statistics"}})
	require.Equal(t, http.StatusOK, res.Code)

	var response CreateEmbeddingsResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, "c1", response.ContentID)
	assert.Equal(t, 2, response.Count)
}

func TestCreateEmbeddingsUnknownKind(t *testing.T) {
	router := setupRouter(testAppState())

	res := postJSON(t, router, "/api/v1/contents/c1/embeddings",
		CreateEmbeddingsRequest{EmbeddingTypes: []string{"sentiment"}})
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCreateEmbeddingsSoftFailure(t *testing.T) {
	router := setupRouter(testAppState())

	res := postJSON(t, router, "/api/v1/contents/unknown/embeddings",
		CreateEmbeddingsRequest{})
	require.Equal(t, http.StatusOK, res.Code)

	var response CreateEmbeddingsResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.Equal(t, 0, response.Count)
}

func TestGetEmbeddingsRoute(t *testing.T) {
	appState := testAppState()
	router := setupRouter(appState)

	res := postJSON(t, router, "/api/v1/contents/c1/embeddings", CreateEmbeddingsRequest{})
	require.Equal(t, http.StatusOK, res.Code)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/contents/c1/embeddings?type=structured", nil)
	getRes := httptest.NewRecorder()
	router.ServeHTTP(getRes, req)
	require.Equal(t, http.StatusOK, getRes.Code)

	var records []models.EmbeddingRecord
	require.NoError(t, json.Unmarshal(getRes.Body.Bytes(), &records))
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, models.EmbeddingTypeStructured, rec.EmbeddingType)
	}
}

func TestGetEmbeddingsInvalidTypeFilter(t *testing.T) {
	router := setupRouter(testAppState())

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/contents/c1/embeddings?type=bogus", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRunAnalysisRoute(t *testing.T) {
	router := setupRouter(testAppState())

	res := postJSON(t, router, "/api/v1/contents/c1/embeddings", CreateEmbeddingsRequest{})
	require.Equal(t, http.StatusOK, res.Code)

	analysisRes := postJSON(t, router, "/api/v1/contents/c1/analysis",
		RunAnalysisRequest{AnalysisTypes: []string{"statistics", "missing_values"}})
	require.Equal(t, http.StatusOK, analysisRes.Code)

	var result models.EDAResult
	require.NoError(t, json.Unmarshal(analysisRes.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, []string{"statistics", "missing_values"}, result.AnalysisTypes)
	require.NotNil(t, result.SchemaInfo)
	assert.Contains(t, result.SchemaInfo.Columns, "amount")
	assert.Contains(t, result.SchemaInfo.Columns, "city")
}

func TestRunAnalysisNoEmbeddings(t *testing.T) {
	router := setupRouter(testAppState())

	res := postJSON(t, router, "/api/v1/contents/c1/analysis", RunAnalysisRequest{})
	require.Equal(t, http.StatusOK, res.Code)

	var result models.EDAResult
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "no embeddings found")
	assert.NotEmpty(t, result.Suggestion)
}

func TestRunAnalysisDeterministicBody(t *testing.T) {
	router := setupRouter(testAppState())

	res := postJSON(t, router, "/api/v1/contents/c1/embeddings", CreateEmbeddingsRequest{})
	require.Equal(t, http.StatusOK, res.Code)

	first := postJSON(t, router, "/api/v1/contents/c1/analysis", RunAnalysisRequest{})
	second := postJSON(t, router, "/api/v1/contents/c1/analysis", RunAnalysisRequest{})
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestHeartbeatAndVersionHeader(t *testing.T) {
	router := setupRouter(testAppState())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.NotEmpty(t, res.Header().Get(versionHeader))
}
