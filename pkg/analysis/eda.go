// Package analysis runs deterministic exploratory data analysis over
// embedding records. It never touches raw content: its only input is the
// embedding store, and identical stored embeddings always produce
// byte-identical results.
package analysis

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/getsema/sema/internal"
	"github.com/getsema/sema/pkg/models"
	"github.com/getsema/sema/pkg/stats"
)

var log = internal.GetLogger()

// allAnalysisTypes is the order analyses run in when the caller does not
// name any.
var allAnalysisTypes = []models.AnalysisType{
	models.AnalysisTypeStatistics,
	models.AnalysisTypeCorrelations,
	models.AnalysisTypeDistributions,
	models.AnalysisTypeMissingValues,
}

// Engine reconstructs schema information from stored embeddings and derives
// analysis results from it.
type Engine struct {
	store models.EmbeddingStore
}

func NewEngine(store models.EmbeddingStore) *Engine {
	return &Engine{store: store}
}

// Run performs the requested analyses for contentID. Unknown analysis type
// names are skipped with a warning. The absence of embeddings is the one
// hard failure, reported as an unsuccessful result rather than an error.
func (e *Engine) Run(
	ctx context.Context,
	contentID string,
	analysisTypes []string,
) (*models.EDAResult, error) {
	records, err := e.store.GetEmbeddings(ctx, contentID, models.EmbeddingFilter{})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &models.EDAResult{
			Success:    false,
			ContentID:  contentID,
			Error:      models.NewNoEmbeddingsError(contentID).Error(),
			Suggestion: "create embeddings for this content before requesting analysis",
		}, nil
	}

	schema := ExtractSchema(records)
	types := resolveAnalysisTypes(analysisTypes)

	results := &models.EDAResults{}
	performed := make([]string, 0, len(types))
	for _, t := range types {
		switch t {
		case models.AnalysisTypeStatistics:
			results.Statistics = e.statistics(schema)
		case models.AnalysisTypeCorrelations:
			results.Correlations = e.correlations(schema, records)
		case models.AnalysisTypeDistributions:
			results.Distributions = e.distributions(schema)
		case models.AnalysisTypeMissingValues:
			results.MissingValues = e.missingValues(schema)
		}
		performed = append(performed, string(t))
	}

	return &models.EDAResult{
		Success:       true,
		ContentID:     contentID,
		AnalysisTypes: performed,
		EDAResults:    results,
		SchemaInfo:    schema,
	}, nil
}


func resolveAnalysisTypes(names []string) []models.AnalysisType {
	if len(names) == 0 {
		return allAnalysisTypes
	}
	types := make([]models.AnalysisType, 0, len(names))
	seen := make(map[models.AnalysisType]bool, len(names))
	for _, name := range names {
		t := models.AnalysisType(name)
		switch t {
		case models.AnalysisTypeStatistics,
			models.AnalysisTypeCorrelations,
			models.AnalysisTypeDistributions,
			models.AnalysisTypeMissingValues:
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		default:
			log.Warnf("skipping unknown analysis type %q", name)
		}
	}
	return types
}

func isNumericDType(dtype string) bool {
	return dtype == models.DataTypeInt || dtype == models.DataTypeFloat
}

func isCategoricalDType(dtype string) bool {
	return dtype == models.DataTypeString || dtype == models.DataTypeObject
}

func (e *Engine) statistics(schema *models.SchemaInfo) map[string]interface{} {
	out := make(map[string]interface{}, len(schema.Columns))
	for _, col := range schema.Columns {
		meta := schema.Metadata[col]
		switch dtype := schema.DataTypes[col]; {
		case isNumericDType(dtype):
			out[col] = &models.NumericStatistics{
				Mean:      metaFloat(meta, "mean"),
				Median:    metaFloat(meta, "median"),
				Std:       metaFloat(meta, "std"),
				Min:       metaFloat(meta, "min"),
				Max:       metaFloat(meta, "max"),
				Count:     metaInt(meta, "count"),
				NullCount: metaInt(meta, "null_count"),
			}
		case isCategoricalDType(dtype):
			out[col] = &models.CategoricalStatistics{
				UniqueCount: metaInt(meta, "unique_count"),
				MostCommon:  meta["most_common"],
				Count:       metaInt(meta, "count"),
				NullCount:   metaInt(meta, "null_count"),
			}
		default:
			out[col] = &models.BasicStatistics{
				Count:     metaInt(meta, "count"),
				NullCount: metaInt(meta, "null_count"),
			}
		}
	}
	return out
}

// correlations builds a symmetric matrix over the numeric columns. Stored
// pairwise coefficients are preferred; missing pairs are recomputed from
// index-aligned sample values. Both orientations of a pair always carry the
// same value and the diagonal is exactly 1.0.
func (e *Engine) correlations(
	schema *models.SchemaInfo,
	records []models.EmbeddingRecord,
) *models.CorrelationAnalysis {
	var numeric []string
	for _, col := range schema.Columns {
		if isNumericDType(schema.DataTypes[col]) {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) < 2 {
		return &models.CorrelationAnalysis{
			Columns: numeric,
			Matrix:  map[string]map[string]float64{},
			Message: "at least 2 numeric columns are required for correlation analysis",
		}
	}

	stored := storedCorrelations(records)
	matrix := make(map[string]map[string]float64, len(numeric))
	for _, col := range numeric {
		matrix[col] = map[string]float64{col: 1.0}
	}
	for i, a := range numeric {
		for _, b := range numeric[i+1:] {
			r, ok := stored.lookup(a, b)
			if !ok {
				xs, ys := alignedSamples(schema, a, b)
				r = stats.Pearson(xs, ys)
			}
			matrix[a][b] = r
			matrix[b][a] = r
		}
	}

	return &models.CorrelationAnalysis{Columns: numeric, Matrix: matrix}
}

type correlationTable map[string]map[string]float64

// lookup returns the stored coefficient for a pair in either orientation.
func (t correlationTable) lookup(a, b string) (float64, bool) {
	if row, ok := t[a]; ok {
		if r, ok := row[b]; ok {
			return r, true
		}
	}
	if row, ok := t[b]; ok {
		if r, ok := row[a]; ok {
			return r, true
		}
	}
	return 0, false
}

// storedCorrelations extracts the pairwise coefficients persisted by
// correlation embeddings, if any.
func storedCorrelations(records []models.EmbeddingRecord) correlationTable {
	out := correlationTable{}
	for _, rec := range records {
		if rec.EmbeddingType != models.EmbeddingTypeCorrelations {
			continue
		}
		meta := canonicalMetadata(rec.Metadata)
		raw, ok := meta["correlations"].(map[string]interface{})
		if !ok {
			continue
		}
		for col, rowVal := range raw {
			rawRow, ok := rowVal.(map[string]interface{})
			if !ok {
				continue
			}
			row := out[col]
			if row == nil {
				row = map[string]float64{}
				out[col] = row
			}
			for other, v := range rawRow {
				if f, ok := toFloat(v); ok {
					row[other] = f
				}
			}
		}
	}
	return out
}

// alignedSamples pairs the sample values of two columns by index, keeping
// positions where both coerce to numeric.
func alignedSamples(schema *models.SchemaInfo, a, b string) ([]float64, []float64) {
	sa, sb := schema.SampleValues[a], schema.SampleValues[b]
	n := len(sa)
	if len(sb) < n {
		n = len(sb)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		x, okx := toFloat(sa[i])
		y, oky := toFloat(sb[i])
		if okx && oky {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return xs, ys
}

func (e *Engine) distributions(schema *models.SchemaInfo) map[string]interface{} {
	out := make(map[string]interface{}, len(schema.Columns))
	for _, col := range schema.Columns {
		meta := schema.Metadata[col]
		samples := schema.SampleValues[col]
		preview := samples
		if len(preview) > 10 {
			preview = preview[:10]
		}

		if isNumericDType(schema.DataTypes[col]) {
			dist := &models.NumericDistribution{SampleValues: preview}
			xs := coerceSamples(samples)

			if q := storedQuartiles(meta); q != nil {
				dist.Quartiles = q
			} else if len(xs) > 0 {
				dist.Quartiles = &models.Quartiles{
					Q1: stats.Percentile(xs, 25),
					Q2: stats.Percentile(xs, 50),
					Q3: stats.Percentile(xs, 75),
				}
			}

			dist.Skewness = metaFloat(meta, "skewness")
			if dist.Skewness == nil {
				if skew, ok := stats.Skewness(xs); ok {
					dist.Skewness = &skew
				}
			}
			dist.Kurtosis = metaFloat(meta, "kurtosis")
			if dist.Kurtosis == nil {
				if kurt, ok := stats.Kurtosis(xs); ok {
					dist.Kurtosis = &kurt
				}
			}
			out[col] = dist
			continue
		}

		dist := &models.CategoricalDistribution{SampleValues: preview}
		if counts, ok := meta["value_counts"].(map[string]interface{}); ok {
			dist.ValueCounts = counts
		}
		out[col] = dist
	}
	return out
}

func storedQuartiles(meta map[string]interface{}) *models.Quartiles {
	raw, ok := meta["quartiles"].(map[string]interface{})
	if !ok {
		return nil
	}
	q1, ok1 := toFloat(raw["q1"])
	q2, ok2 := toFloat(raw["q2"])
	q3, ok3 := toFloat(raw["q3"])
	if !ok1 || !ok2 || !ok3 {
		return nil
	}
	return &models.Quartiles{Q1: q1, Q2: q2, Q3: q3}
}

// missingValues recomputes the missing percentage from the stored counts so
// the published invariant, null_count over total_count rounded to 2 decimal
// places, holds regardless of what the embedding carried.
func (e *Engine) missingValues(schema *models.SchemaInfo) map[string]models.MissingValueReport {
	out := make(map[string]models.MissingValueReport, len(schema.Columns))
	for _, col := range schema.Columns {
		meta := schema.Metadata[col]

		var total, nulls int64
		if v := metaInt(meta, "total_count"); v != nil {
			total = *v
		}
		if v := metaInt(meta, "null_count"); v != nil {
			nulls = *v
		}

		var pct float64
		if total > 0 {
			pct = stats.Round2(float64(nulls) / float64(total) * 100)
		}
		out[col] = models.MissingValueReport{
			TotalCount:        total,
			NullCount:         nulls,
			MissingPercentage: pct,
			HasMissing:        nulls > 0,
		}
	}
	return out
}

// toFloat coerces a metadata or sample value to float64. Embeddings round
// trip through JSON, so numbers arrive as json.Number, float64 or
// stringified digits depending on the store.
func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func coerceSamples(samples []interface{}) []float64 {
	out := make([]float64, 0, len(samples))
	for _, v := range samples {
		if f, ok := toFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func metaFloat(meta map[string]interface{}, key string) *float64 {
	if meta == nil {
		return nil
	}
	v, ok := meta[key]
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func metaInt(meta map[string]interface{}, key string) *int64 {
	if meta == nil {
		return nil
	}
	v, ok := meta[key]
	if !ok {
		return nil
	}
	switch val := v.(type) {
	case int:
		n := int64(val)
		return &n
	case int64:
		return &val
	case float64:
		n := int64(val)
		return &n
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return &n
		}
		if f, err := val.Float64(); err == nil {
			n := int64(f)
			return &n
		}
		return nil
	default:
		return nil
	}
}
