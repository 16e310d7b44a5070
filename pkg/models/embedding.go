package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EmbeddingType identifies the kind of statistical artifact an
// EmbeddingRecord carries. The same set of names doubles as the enrichment
// kinds a caller may request.
type EmbeddingType string

const (
	EmbeddingTypeColumnValues  EmbeddingType = "column_values"
	EmbeddingTypeStatistics    EmbeddingType = "statistics"
	EmbeddingTypeCorrelations  EmbeddingType = "correlations"
	EmbeddingTypeDistributions EmbeddingType = "distributions"
	EmbeddingTypeMissingValues EmbeddingType = "missing_values"
	// EmbeddingTypeStructured is the canonical schema kind consumed first
	// by the schema reconstructor.
	EmbeddingTypeStructured EmbeddingType = "structured"
)

// ParseEmbeddingType validates a caller-supplied enrichment kind.
func ParseEmbeddingType(s string) (EmbeddingType, error) {
	switch t := EmbeddingType(s); t {
	case EmbeddingTypeColumnValues,
		EmbeddingTypeStatistics,
		EmbeddingTypeCorrelations,
		EmbeddingTypeDistributions,
		EmbeddingTypeMissingValues,
		EmbeddingTypeStructured:
		return t, nil
	default:
		return "", NewBadRequestError(fmt.Sprintf("unsupported enrichment type: %q", s))
	}
}

// EmbeddingRecord is the unit of persisted knowledge about one column, or
// one cross-column artifact when ColumnName is empty. Records never contain
// full raw data: metadata holds derived statistics and SampleValues holds a
// bounded, representatively sampled subset of the column.
type EmbeddingRecord struct {
	UUID          uuid.UUID              `json:"uuid"`
	ContentID     string                 `json:"content_id"`
	ColumnName    string                 `json:"column_name,omitempty"`
	EmbeddingType EmbeddingType          `json:"embedding_type"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	SampleValues  []interface{}          `json:"sample_values,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

// embeddingNamespace is the fixed namespace for content-addressed record
// identity.
var embeddingNamespace = uuid.MustParse("8f3c2a14-6b9d-4e71-9c5a-2d8f0b1e4c63")

// EmbeddingUUID derives a deterministic identity for a record from its
// content identifier, column, kind and the creator version. Re-running the
// same enrichment therefore upserts instead of accumulating duplicates.
func EmbeddingUUID(contentID, columnName string, embeddingType EmbeddingType, version string) uuid.UUID {
	name := contentID + "|" + columnName + "|" + string(embeddingType) + "|" + version
	return uuid.NewSHA1(embeddingNamespace, []byte(name))
}

// EnrichmentFilters optionally restricts which columns are processed and
// which rows are sampled from during embedding creation.
type EnrichmentFilters struct {
	Columns []string `json:"columns,omitempty"`
	Rows    []int    `json:"rows,omitempty"`
}

// SchemaInfo is the in-memory reconstruction of per-column type, metadata
// and sample data from a set of embeddings. It is rebuilt from scratch on
// every analysis request and never persisted.
type SchemaInfo struct {
	Columns      []string                          `json:"columns"`
	DataTypes    map[string]string                 `json:"data_types"`
	SampleValues map[string][]interface{}          `json:"sample_values"`
	Metadata     map[string]map[string]interface{} `json:"metadata"`
}

// Normalized data types produced by the schema reconstructor.
const (
	DataTypeInt     = "int"
	DataTypeFloat   = "float"
	DataTypeString  = "string"
	DataTypeObject  = "object"
	DataTypeBool    = "bool"
	DataTypeDate    = "date"
	DataTypeUnknown = "unknown"
)
