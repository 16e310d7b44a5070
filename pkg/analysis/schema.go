package analysis

import (
	"strings"

	"github.com/getsema/sema/pkg/models"
)

// Alias tables for schema reconstruction. Embedding records written by
// earlier creator versions, or by other platform services, disagree on
// field names; reconstruction accepts all known spellings and emits one
// canonical form.
var (
	columnNameKeys = []string{"column_name", "column", "field_name"}
	sampleKeys     = []string{"sample_values", "samples", "values"}
	nestedMetaKeys = []string{"metadata", "stats"}

	dtypeAliases = map[string]string{
		"int":            models.DataTypeInt,
		"int8":           models.DataTypeInt,
		"int16":          models.DataTypeInt,
		"int32":          models.DataTypeInt,
		"int64":          models.DataTypeInt,
		"integer":        models.DataTypeInt,
		"long":           models.DataTypeInt,
		"float":          models.DataTypeFloat,
		"float32":        models.DataTypeFloat,
		"float64":        models.DataTypeFloat,
		"double":         models.DataTypeFloat,
		"decimal":        models.DataTypeFloat,
		"number":         models.DataTypeFloat,
		"numeric":        models.DataTypeFloat,
		"str":            models.DataTypeString,
		"string":         models.DataTypeString,
		"text":           models.DataTypeString,
		"varchar":        models.DataTypeString,
		"char":           models.DataTypeString,
		"object":         models.DataTypeObject,
		"category":       models.DataTypeObject,
		"mixed":          models.DataTypeObject,
		"dict":           models.DataTypeObject,
		"json":           models.DataTypeObject,
		"bool":           models.DataTypeBool,
		"boolean":        models.DataTypeBool,
		"date":           models.DataTypeDate,
		"datetime":       models.DataTypeDate,
		"datetime64":     models.DataTypeDate,
		"datetime64[ns]": models.DataTypeDate,
		"timestamp":      models.DataTypeDate,
		"time":           models.DataTypeDate,
	}

	metadataKeyAliases = map[string]string{
		"standard_deviation": "std",
		"stddev":             "std",
		"minimum":            "min",
		"maximum":            "max",
		"average":            "mean",
		"avg":                "mean",
		"nulls":              "null_count",
		"null_values":        "null_count",
		"non_null_count":     "count",
		"valid_count":        "count",
		"total":              "total_count",
		"row_count":          "total_count",
		"correlation":        "correlations",
		"correlation_matrix": "correlations",
		"counts":             "value_counts",
		"frequencies":        "value_counts",
		"skew":               "skewness",
	}
)

// ExtractSchema reconstructs per-column schema information from embedding
// records. Records are consumed in order; when two records describe the same
// column the later one wins field by field.
func ExtractSchema(records []models.EmbeddingRecord) *models.SchemaInfo {
	schema := &models.SchemaInfo{
		Columns:      []string{},
		DataTypes:    map[string]string{},
		SampleValues: map[string][]interface{}{},
		Metadata:     map[string]map[string]interface{}{},
	}

	seen := make(map[string]bool)
	for _, rec := range records {
		name := columnName(rec)
		if name == "" {
			continue
		}
		if !seen[name] {
			seen[name] = true
			schema.Columns = append(schema.Columns, name)
		}

		meta := canonicalMetadata(rec.Metadata)
		if dtype, ok := meta["dtype"].(string); ok {
			schema.DataTypes[name] = normalizeDType(dtype)
		}
		if _, ok := schema.DataTypes[name]; !ok {
			schema.DataTypes[name] = models.DataTypeUnknown
		}

		if samples := recordSamples(rec, meta); len(samples) > 0 {
			schema.SampleValues[name] = samples
		}

		if len(meta) > 0 {
			if schema.Metadata[name] == nil {
				schema.Metadata[name] = map[string]interface{}{}
			}
			for k, v := range meta {
				schema.Metadata[name][k] = v
			}
		}
	}
	return schema
}

// columnName resolves a record's column, falling back to metadata aliases
// for records produced without the dedicated field.
func columnName(rec models.EmbeddingRecord) string {
	if rec.ColumnName != "" {
		return rec.ColumnName
	}
	for _, key := range columnNameKeys {
		if v, ok := rec.Metadata[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// canonicalMetadata flattens nested metadata holders and rewrites aliased
// keys to their canonical names.
func canonicalMetadata(meta map[string]interface{}) map[string]interface{} {
	if meta == nil {
		return nil
	}
	src := meta
	for _, key := range nestedMetaKeys {
		if nested, ok := meta[key].(map[string]interface{}); ok {
			merged := make(map[string]interface{}, len(meta)+len(nested))
			for k, v := range meta {
				if k == key {
					continue
				}
				merged[k] = v
			}
			for k, v := range nested {
				merged[k] = v
			}
			src = merged
			break
		}
	}

	out := make(map[string]interface{}, len(src))
	for k, v := range src {
		if canonical, ok := metadataKeyAliases[k]; ok {
			k = canonical
		}
		out[k] = v
	}
	return out
}

func normalizeDType(dtype string) string {
	if canonical, ok := dtypeAliases[strings.ToLower(dtype)]; ok {
		return canonical
	}
	return models.DataTypeUnknown
}

func recordSamples(rec models.EmbeddingRecord, meta map[string]interface{}) []interface{} {
	if len(rec.SampleValues) > 0 {
		return rec.SampleValues
	}
	for _, key := range sampleKeys {
		if v, ok := meta[key].([]interface{}); ok && len(v) > 0 {
			return v
		}
	}
	return nil
}
