package tabular

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/getsema/sema/internal"
	"github.com/getsema/sema/pkg/models"
)

var log = internal.GetLogger()

// Supported parsed-file formats. Parsing of arbitrary file formats happens
// upstream; the normalizer only interprets the parsed representations the
// platform emits.
const (
	FormatJSONL       = "jsonl"
	FormatJSONRecords = "json_records"
	FormatStructured  = "json_structured"
	FormatJSONColumns = "json_columns"
)

// Normalize converts a parsed payload into a column-oriented table,
// applying the optional column and row filters. It returns a
// MalformedPayloadError when the payload cannot be interpreted.
func Normalize(
	payload *models.RawParsedPayload,
	filters *models.EnrichmentFilters,
) (*Table, error) {
	if payload == nil {
		return nil, models.NewMalformedPayloadError("nil payload", nil)
	}

	var records []map[string]interface{}
	var err error

	switch strings.ToLower(payload.Format) {
	case FormatJSONL:
		records, err = decodeJSONL(payload.Data)
	case FormatJSONRecords, FormatStructured:
		records, err = decodeRecords(payload.Data)
	case FormatJSONColumns:
		return normalizeColumns(payload.Data, filters)
	default:
		return nil, models.NewMalformedPayloadError(
			"unsupported format type: "+payload.Format, nil)
	}
	if err != nil {
		return nil, err
	}

	return fromRecords(records, filters), nil
}

// decodeJSONL decodes one JSON object per line. Invalid lines are skipped
// with a warning rather than failing the whole payload.
func decodeJSONL(data []byte) ([]map[string]interface{}, error) {
	lines := bytes.Split(data, []byte("\n"))
	records := make([]map[string]interface{}, 0, len(lines))
	for i, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var rec map[string]interface{}
		if err := decodeNumberPreserving(line, &rec); err != nil {
			log.Warnf("skipping invalid JSON line %d: %v", i+1, err)
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, models.NewMalformedPayloadError("no valid JSON records", nil)
	}
	return records, nil
}

// decodeRecords decodes either a JSON array of objects or a single object.
func decodeRecords(data []byte) ([]map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, models.NewMalformedPayloadError("empty payload", nil)
	}

	if trimmed[0] == '[' {
		var records []map[string]interface{}
		if err := decodeNumberPreserving(trimmed, &records); err != nil {
			return nil, models.NewMalformedPayloadError("invalid JSON array", err)
		}
		return records, nil
	}

	var rec map[string]interface{}
	if err := decodeNumberPreserving(trimmed, &rec); err != nil {
		return nil, models.NewMalformedPayloadError(
			"payload must be a JSON object or array", err)
	}
	return []map[string]interface{}{rec}, nil
}

// normalizeColumns decodes a column-oriented payload: a JSON object mapping
// column names to value arrays.
func normalizeColumns(
	data []byte,
	filters *models.EnrichmentFilters,
) (*Table, error) {
	var cols map[string][]interface{}
	if err := decodeNumberPreserving(data, &cols); err != nil {
		return nil, models.NewMalformedPayloadError("invalid column payload", err)
	}

	// Column order in a JSON object is not preserved by encoding/json, so
	// sort names for a stable table layout.
	names := make([]string, 0, len(cols))
	for name := range cols {
		names = append(names, name)
	}
	sort.Strings(names)
	names = filterColumns(names, filters)

	var rows int
	for _, name := range names {
		if len(cols[name]) > rows {
			rows = len(cols[name])
		}
	}

	t := &Table{columns: names, data: make(map[string][]interface{}, len(names))}
	for _, name := range names {
		col := make([]interface{}, rows)
		copy(col, cols[name])
		t.data[name] = col
	}
	t.rows = rows
	return applyRowFilter(t, filters), nil
}

// fromRecords builds a table from row-major records. Column order is the
// first-seen order across records; cells absent from a record are nil.
func fromRecords(
	records []map[string]interface{},
	filters *models.EnrichmentFilters,
) *Table {
	var names []string
	seen := make(map[string]bool)
	for _, rec := range records {
		// Within one record, visit keys in sorted order so first-seen
		// column order is deterministic.
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	names = filterColumns(names, filters)

	t := &Table{
		columns: names,
		data:    make(map[string][]interface{}, len(names)),
		rows:    len(records),
	}
	for _, name := range names {
		col := make([]interface{}, len(records))
		for i, rec := range records {
			col[i] = rec[name]
		}
		t.data[name] = col
	}
	return applyRowFilter(t, filters)
}

func filterColumns(names []string, filters *models.EnrichmentFilters) []string {
	if filters == nil || len(filters.Columns) == 0 {
		return names
	}
	allowed := make(map[string]bool, len(filters.Columns))
	for _, c := range filters.Columns {
		allowed[c] = true
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if allowed[name] {
			out = append(out, name)
		}
	}
	return out
}

func applyRowFilter(t *Table, filters *models.EnrichmentFilters) *Table {
	if filters == nil || len(filters.Rows) == 0 {
		return t
	}
	idx := make([]int, 0, len(filters.Rows))
	for _, i := range filters.Rows {
		if i >= 0 && i < t.rows {
			idx = append(idx, i)
		}
	}

	out := &Table{
		columns: t.columns,
		data:    make(map[string][]interface{}, len(t.columns)),
		rows:    len(idx),
	}
	for _, name := range t.columns {
		col := make([]interface{}, len(idx))
		for j, i := range idx {
			col[j] = t.data[name][i]
		}
		out.data[name] = col
	}
	return out
}

// decodeNumberPreserving decodes JSON with numbers kept as json.Number so
// integer columns survive without float drift.
func decodeNumberPreserving(data []byte, v interface{}) error {
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	return d.Decode(v)
}
