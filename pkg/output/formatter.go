// Package output renders analysis results as JSON, YAML, CSV or an aligned table.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Formatter renders a value
type Formatter interface {
	Format(data any, pretty bool) ([]byte, error)
}

// NewFormatter returns the formatter for a format name, JSON for unknown names
func NewFormatter(format string, precision int) Formatter {
	switch format {
	case "yaml":
		return &YAMLFormatter{}
	case "csv":
		return &CSVFormatter{Precision: precision}
	case "table":
		return &TableFormatter{Precision: precision}
	default:
		return &JSONFormatter{}
	}
}

// JSONFormatter renders JSON
type JSONFormatter struct{}

func (f *JSONFormatter) Format(data any, pretty bool) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// YAMLFormatter renders YAML using the JSON field names
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(data any, _ bool) ([]byte, error) {
	generic, err := toGeneric(data, false)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CSVFormatter renders flattened key paths. A list of records becomes one
// row per record; anything else becomes key,value rows.
type CSVFormatter struct {
	Precision int
}

func (f *CSVFormatter) Format(data any, _ bool) ([]byte, error) {
	generic, err := toGeneric(data, true)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if records, ok := recordList(generic); ok {
		columns := recordColumns(records)
		if err := w.Write(columns); err != nil {
			return nil, err
		}
		for _, rec := range records {
			values := flattenMap(rec)
			row := make([]string, len(columns))
			for i, col := range columns {
				if v, ok := values[col]; ok {
					row[i] = formatScalar(v, f.Precision)
				}
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	} else {
		if err := w.Write([]string{"key", "value"}); err != nil {
			return nil, err
		}
		for _, kv := range flatten(generic) {
			if err := w.Write([]string{kv.key, formatScalar(kv.value, f.Precision)}); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

var titleCaser = cases.Title(language.English)

// TableFormatter renders an aligned two-column table with title-cased keys
type TableFormatter struct {
	Precision int
}

func (f *TableFormatter) Format(data any, _ bool) ([]byte, error) {
	generic, err := toGeneric(data, true)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, kv := range flatten(generic) {
		fmt.Fprintf(tw, "%s\t%s\n", Title(kv.key), formatScalar(kv.value, f.Precision))
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Title turns a key path like "fillers.rate_per_minute" into "Fillers / Rate Per Minute"
func Title(key string) string {
	parts := strings.Split(key, ".")
	for i, p := range parts {
		parts[i] = titleCaser.String(strings.ReplaceAll(p, "_", " "))
	}
	return strings.Join(parts, " / ")
}

type keyValue struct {
	key   string
	value any
}

// toGeneric converts any JSON-encodable value into maps, slices and scalars.
// With useNumber set, numbers stay json.Number so integers keep their form.
func toGeneric(data any, useNumber bool) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var generic any
	dec := json.NewDecoder(bytes.NewReader(raw))
	if useNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return generic, nil
}

func flatten(v any) []keyValue {
	var out []keyValue
	var walk func(prefix string, v any)
	walk = func(prefix string, v any) {
		switch t := v.(type) {
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				walk(join(prefix, k), t[k])
			}
		case []any:
			if len(t) == 0 {
				out = append(out, keyValue{prefix, ""})
			}
			for i, item := range t {
				walk(join(prefix, strconv.Itoa(i)), item)
			}
		default:
			out = append(out, keyValue{prefix, t})
		}
	}
	walk("", v)
	return out
}

func flattenMap(v map[string]any) map[string]any {
	out := make(map[string]any)
	for _, kv := range flatten(v) {
		out[kv.key] = kv.value
	}
	return out
}

func recordList(v any) ([]map[string]any, bool) {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil, false
	}
	records := make([]map[string]any, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		records[i] = m
	}
	return records, true
}

func recordColumns(records []map[string]any) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range records {
		for _, kv := range flatten(rec) {
			if !seen[kv.key] {
				seen[kv.key] = true
				columns = append(columns, kv.key)
			}
		}
	}
	return columns
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func formatScalar(v any, precision int) string {
	switch t := v.(type) {
	case nil:
		return ""
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := t.Float64(); err == nil {
			if precision <= 0 {
				return strconv.FormatFloat(f, 'g', -1, 64)
			}
			return strconv.FormatFloat(f, 'f', precision, 64)
		}
		return t.String()
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
