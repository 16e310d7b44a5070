package models

// AnalysisType identifies one exploratory analysis the EDA engine can run.
type AnalysisType string

const (
	AnalysisTypeStatistics    AnalysisType = "statistics"
	AnalysisTypeCorrelations  AnalysisType = "correlations"
	AnalysisTypeDistributions AnalysisType = "distributions"
	AnalysisTypeMissingValues AnalysisType = "missing_values"
)

// NumericStatistics is the statistics result for a numeric column. Fields
// absent from the embedding metadata stay nil; values are never fabricated.
type NumericStatistics struct {
	Mean      *float64 `json:"mean"`
	Median    *float64 `json:"median"`
	Std       *float64 `json:"std"`
	Min       *float64 `json:"min"`
	Max       *float64 `json:"max"`
	Count     *int64   `json:"count"`
	NullCount *int64   `json:"null_count"`
}

// CategoricalStatistics is the statistics result for a string or object
// column.
type CategoricalStatistics struct {
	UniqueCount *int64      `json:"unique_count"`
	MostCommon  interface{} `json:"most_common"`
	Count       *int64      `json:"count"`
	NullCount   *int64      `json:"null_count"`
}

// BasicStatistics is the statistics result for columns of any other type.
type BasicStatistics struct {
	Count     *int64 `json:"count"`
	NullCount *int64 `json:"null_count"`
}

// Quartiles holds the 25th, 50th and 75th percentiles of a numeric column.
type Quartiles struct {
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
}

// NumericDistribution describes the shape of a numeric column.
type NumericDistribution struct {
	Skewness     *float64      `json:"skewness"`
	Kurtosis     *float64      `json:"kurtosis"`
	Quartiles    *Quartiles    `json:"quartiles"`
	SampleValues []interface{} `json:"sample_values"`
}

// CategoricalDistribution describes the value frequencies of a
// non-numeric column.
type CategoricalDistribution struct {
	ValueCounts  map[string]interface{} `json:"value_counts"`
	SampleValues []interface{}          `json:"sample_values"`
}

// CorrelationAnalysis is the whole-table correlation result. The matrix is
// symmetric by construction with an exact 1.0 diagonal.
type CorrelationAnalysis struct {
	Columns []string                      `json:"columns"`
	Matrix  map[string]map[string]float64 `json:"matrix"`
	Message string                        `json:"message,omitempty"`
}

// MissingValueReport summarizes null counts for one column.
type MissingValueReport struct {
	TotalCount        int64   `json:"total_count"`
	NullCount         int64   `json:"null_count"`
	MissingPercentage float64 `json:"missing_percentage"`
	HasMissing        bool    `json:"has_missing"`
}

// EDAResults holds the per-analysis-type results. Statistics and
// Distributions map column names to per-type result structs
// (NumericStatistics / CategoricalStatistics / BasicStatistics and
// NumericDistribution / CategoricalDistribution respectively).
type EDAResults struct {
	Statistics    map[string]interface{}        `json:"statistics,omitempty"`
	Correlations  *CorrelationAnalysis          `json:"correlations,omitempty"`
	Distributions map[string]interface{}        `json:"distributions,omitempty"`
	MissingValues map[string]MissingValueReport `json:"missing_values,omitempty"`
}

// EDAResult is the full response of RunEDAAnalysis. It carries no
// timestamps so that repeated runs over a fixed embedding set serialize
// byte-identically.
type EDAResult struct {
	Success       bool        `json:"success"`
	ContentID     string      `json:"content_id"`
	AnalysisTypes []string    `json:"analysis_types,omitempty"`
	EDAResults    *EDAResults `json:"eda_results,omitempty"`
	SchemaInfo    *SchemaInfo `json:"schema_info,omitempty"`
	Error         string      `json:"error,omitempty"`
	Suggestion    string      `json:"suggestion,omitempty"`
}
