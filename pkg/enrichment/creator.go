package enrichment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/getsema/sema/internal"
	"github.com/getsema/sema/pkg/models"
	"github.com/getsema/sema/pkg/stats"
	"github.com/getsema/sema/pkg/tabular"
)

var log = internal.GetLogger()

// creatorVersion participates in record identity. Bump it when the shape of
// generated metadata changes so stale records are replaced on the next run.
const creatorVersion = "v1"

const (
	maxSampleLimit  = 100
	maxPreviewLimit = 10
)

// Creator derives embedding records from parsed content. It is the single
// component with access to raw data: everything it emits downstream is
// bounded samples and derived statistics.
type Creator struct {
	librarian    models.Librarian
	steward      models.ContentSteward
	store        models.EmbeddingStore
	sampleLimit  int
	previewLimit int
}

func NewCreator(appState *models.AppState) *Creator {
	cfg := appState.Config.Enrichment
	return &Creator{
		librarian:    appState.Librarian,
		steward:      appState.ContentSteward,
		store:        appState.EmbeddingStore,
		sampleLimit:  clampLimit(cfg.SampleLimit, maxSampleLimit),
		previewLimit: clampLimit(cfg.PreviewLimit, maxPreviewLimit),
	}
}

// clampLimit bounds a configured limit to (0, max]; zero or negative selects
// the maximum.
func clampLimit(v, max int) int {
	if v <= 0 || v > max {
		return max
	}
	return v
}

type producerFunc func(c *Creator, contentID string, table *tabular.Table) []models.EmbeddingRecord

var producers = map[models.EmbeddingType]producerFunc{
	models.EmbeddingTypeColumnValues:  (*Creator).columnValueRecords,
	models.EmbeddingTypeStatistics:    (*Creator).statisticsRecords,
	models.EmbeddingTypeCorrelations:  (*Creator).correlationRecords,
	models.EmbeddingTypeDistributions: (*Creator).distributionRecords,
	models.EmbeddingTypeMissingValues: (*Creator).missingValueRecords,
	models.EmbeddingTypeStructured:    (*Creator).structuredRecords,
}

// allEmbeddingTypes is the deterministic order kinds are produced in when
// the caller does not name any.
var allEmbeddingTypes = []models.EmbeddingType{
	models.EmbeddingTypeColumnValues,
	models.EmbeddingTypeStatistics,
	models.EmbeddingTypeCorrelations,
	models.EmbeddingTypeDistributions,
	models.EmbeddingTypeMissingValues,
	models.EmbeddingTypeStructured,
}

// Create fetches the parsed file for contentID, derives the requested kinds
// of embedding records and persists them. An empty kinds list selects every
// supported kind. The returned records are in production order: per-kind,
// then per-column in table order.
func (c *Creator) Create(
	ctx context.Context,
	rctx *models.RequestContext,
	contentID string,
	kinds []string,
	filters *models.EnrichmentFilters,
) ([]models.EmbeddingRecord, error) {
	types, err := resolveKinds(kinds)
	if err != nil {
		return nil, err
	}

	metadata, err := c.librarian.GetContentMetadata(ctx, rctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("get content metadata: %w", err)
	}

	payload, err := c.steward.GetParsedFile(ctx, rctx, metadata.ParsedFileID)
	if err != nil {
		return nil, fmt.Errorf("get parsed file: %w", err)
	}

	table, err := tabular.Normalize(payload, filters)
	if err != nil {
		return nil, err
	}
	if table.Empty() {
		return nil, models.NewMalformedPayloadError("parsed file has no tabular data", nil)
	}

	var records []models.EmbeddingRecord
	for _, t := range types {
		records = append(records, producers[t](c, contentID, table)...)
	}

	now := time.Now().UTC()
	for i := range records {
		records[i].CreatedAt = now
	}

	if err := c.store.PutEmbeddings(ctx, records); err != nil {
		return nil, fmt.Errorf("put embeddings: %w", err)
	}
	return records, nil
}

func resolveKinds(kinds []string) ([]models.EmbeddingType, error) {
	if len(kinds) == 0 {
		return allEmbeddingTypes, nil
	}
	types := make([]models.EmbeddingType, 0, len(kinds))
	seen := make(map[models.EmbeddingType]bool, len(kinds))
	for _, k := range kinds {
		t, err := models.ParseEmbeddingType(k)
		if err != nil {
			return nil, err
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types, nil
}

func (c *Creator) newRecord(
	contentID, columnName string,
	embeddingType models.EmbeddingType,
) models.EmbeddingRecord {
	return models.EmbeddingRecord{
		UUID:          models.EmbeddingUUID(contentID, columnName, embeddingType, creatorVersion),
		ContentID:     contentID,
		ColumnName:    columnName,
		EmbeddingType: embeddingType,
	}
}

// sampleColumn returns a fixed-stride sample of the column's non-null values
// in natural order, bounded by the configured sample limit.
func (c *Creator) sampleColumn(table *tabular.Table, name string) []interface{} {
	values := table.NonNull(name)
	idx := stats.StrideSampleIndexes(len(values), c.sampleLimit)
	out := make([]interface{}, 0, len(idx))
	for _, i := range idx {
		out = append(out, values[i])
	}
	return out
}

func (c *Creator) preview(samples []interface{}) []interface{} {
	if len(samples) <= c.previewLimit {
		return samples
	}
	return samples[:c.previewLimit]
}

func (c *Creator) columnValueRecords(contentID string, table *tabular.Table) []models.EmbeddingRecord {
	records := make([]models.EmbeddingRecord, 0, len(table.Columns()))
	for _, name := range table.Columns() {
		samples := c.sampleColumn(table, name)
		rec := c.newRecord(contentID, name, models.EmbeddingTypeColumnValues)
		rec.SampleValues = samples
		rec.Metadata = map[string]interface{}{
			"dtype":         table.DType(name),
			"count":         len(table.NonNull(name)),
			"null_count":    table.NullCount(name),
			"sample_values": c.preview(samples),
		}
		records = append(records, rec)
	}
	return records
}

func (c *Creator) statisticsRecords(contentID string, table *tabular.Table) []models.EmbeddingRecord {
	records := make([]models.EmbeddingRecord, 0, len(table.Columns()))
	for _, name := range table.Columns() {
		rec := c.newRecord(contentID, name, models.EmbeddingTypeStatistics)
		rec.SampleValues = c.sampleColumn(table, name)

		meta := map[string]interface{}{
			"dtype":      table.DType(name),
			"count":      len(table.NonNull(name)),
			"null_count": table.NullCount(name),
		}
		if table.IsNumeric(name) {
			xs := table.NumericColumn(name)
			min, max, _ := stats.MinMax(xs)
			meta["mean"] = stats.Mean(xs)
			meta["median"] = stats.Median(xs)
			meta["std"] = stats.StdDev(xs)
			meta["min"] = min
			meta["max"] = max
			// Undefined for fewer than 3 values; omitted, never zeroed.
			if skew, ok := stats.Skewness(xs); ok {
				meta["skewness"] = skew
			}
			if kurt, ok := stats.Kurtosis(xs); ok {
				meta["kurtosis"] = kurt
			}
		} else {
			counts, mostCommon := valueCounts(table.NonNull(name))
			meta["unique_count"] = len(counts)
			if mostCommon != "" {
				meta["most_common"] = mostCommon
			}
		}
		rec.Metadata = meta
		records = append(records, rec)
	}
	return records
}

func (c *Creator) correlationRecords(contentID string, table *tabular.Table) []models.EmbeddingRecord {
	var numeric []string
	for _, name := range table.Columns() {
		if table.IsNumeric(name) {
			numeric = append(numeric, name)
		}
	}
	if len(numeric) < 2 {
		return nil
	}

	// One upper-triangle pass, mirrored, so the persisted matrix is
	// symmetric with an exact 1.0 diagonal.
	matrix := make(map[string]interface{}, len(numeric))
	rows := make(map[string]map[string]interface{}, len(numeric))
	for _, name := range numeric {
		row := map[string]interface{}{name: 1.0}
		rows[name] = row
		matrix[name] = row
	}
	for i, a := range numeric {
		for _, b := range numeric[i+1:] {
			xs, ys := table.AlignedNumericColumns(a, b)
			r := stats.Pearson(xs, ys)
			rows[a][b] = r
			rows[b][a] = r
		}
	}

	rec := c.newRecord(contentID, "", models.EmbeddingTypeCorrelations)
	rec.Metadata = map[string]interface{}{
		"columns":      numeric,
		"correlations": matrix,
	}
	return []models.EmbeddingRecord{rec}
}

func (c *Creator) distributionRecords(contentID string, table *tabular.Table) []models.EmbeddingRecord {
	records := make([]models.EmbeddingRecord, 0, len(table.Columns()))
	for _, name := range table.Columns() {
		rec := c.newRecord(contentID, name, models.EmbeddingTypeDistributions)
		rec.SampleValues = c.sampleColumn(table, name)

		meta := map[string]interface{}{"dtype": table.DType(name)}
		if table.IsNumeric(name) {
			xs := table.NumericColumn(name)
			meta["quartiles"] = map[string]interface{}{
				"q1": stats.Percentile(xs, 25),
				"q2": stats.Percentile(xs, 50),
				"q3": stats.Percentile(xs, 75),
			}
			if skew, ok := stats.Skewness(xs); ok {
				meta["skewness"] = skew
			}
			if kurt, ok := stats.Kurtosis(xs); ok {
				meta["kurtosis"] = kurt
			}
		} else {
			counts, _ := valueCounts(table.NonNull(name))
			meta["value_counts"] = counts
		}
		rec.Metadata = meta
		records = append(records, rec)
	}
	return records
}

func (c *Creator) missingValueRecords(contentID string, table *tabular.Table) []models.EmbeddingRecord {
	records := make([]models.EmbeddingRecord, 0, len(table.Columns()))
	total := table.Len()
	for _, name := range table.Columns() {
		nulls := table.NullCount(name)
		var pct float64
		if total > 0 {
			pct = stats.Round2(float64(nulls) / float64(total) * 100)
		}
		rec := c.newRecord(contentID, name, models.EmbeddingTypeMissingValues)
		rec.Metadata = map[string]interface{}{
			"total_count":        total,
			"null_count":         nulls,
			"missing_percentage": pct,
			"has_missing":        nulls > 0,
		}
		records = append(records, rec)
	}
	return records
}

func (c *Creator) structuredRecords(contentID string, table *tabular.Table) []models.EmbeddingRecord {
	records := make([]models.EmbeddingRecord, 0, len(table.Columns()))
	for pos, name := range table.Columns() {
		samples := c.sampleColumn(table, name)
		rec := c.newRecord(contentID, name, models.EmbeddingTypeStructured)
		rec.SampleValues = samples
		rec.Metadata = map[string]interface{}{
			"dtype":           table.DType(name),
			"count":           len(table.NonNull(name)),
			"null_count":      table.NullCount(name),
			"column_position": pos,
			"row_count":       table.Len(),
			"sample_values":   c.preview(samples),
		}
		records = append(records, rec)
	}
	return records
}

// valueCounts tallies stringified values and returns the tally plus the most
// common value, ties broken by lexicographic order for determinism.
func valueCounts(values []interface{}) (map[string]interface{}, string) {
	counts := make(map[string]interface{}, len(values))
	tally := make(map[string]int, len(values))
	for _, v := range values {
		tally[fmt.Sprintf("%v", v)]++
	}

	keys := make([]string, 0, len(tally))
	for k := range tally {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mostCommon string
	var best int
	for _, k := range keys {
		counts[k] = tally[k]
		if tally[k] > best {
			best = tally[k]
			mostCommon = k
		}
	}
	return counts, mostCommon
}
