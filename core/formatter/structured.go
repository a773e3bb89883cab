package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

// StructuredFormatter renders documents through a data encoder (json or yaml).
// Every document is a mapping: values as {name, count, values}, records as
// {count, data} and errors as {error}.
type StructuredFormatter struct {
	name        string
	description string
	encode      func(w io.Writer, doc any, compact bool) error
}

type valuesDoc struct {
	Name   string `json:"name" yaml:"name"`
	Count  int    `json:"count" yaml:"count"`
	Values []any  `json:"values" yaml:"values"`
}

type recordsDoc struct {
	Count int      `json:"count" yaml:"count"`
	Data  []Record `json:"data" yaml:"data"`
}

type errorDoc struct {
	Error string `json:"error" yaml:"error"`
}

// NewJSONFormatter creates the json formatter. FormatOptions.Compact drops indentation.
func NewJSONFormatter() *StructuredFormatter {
	return &StructuredFormatter{
		name:        "json",
		description: "JSON output format",
		encode: func(w io.Writer, doc any, compact bool) error {
			enc := json.NewEncoder(w)
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(doc)
		},
	}
}

// NewYAMLFormatter creates the yaml formatter.
func NewYAMLFormatter() *StructuredFormatter {
	return &StructuredFormatter{
		name:        "yaml",
		description: "YAML output format",
		encode: func(w io.Writer, doc any, _ bool) error {
			enc := yaml.NewEncoder(w)
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

// Name returns the formatter name.
func (f *StructuredFormatter) Name() string {
	return f.name
}

// Description returns the formatter description.
func (f *StructuredFormatter) Description() string {
	return f.description
}

// FormatValues writes the sequence. Non-finite values are written as their
// text form ("inf", "-inf", "nan") so both encoders accept them.
func (f *StructuredFormatter) FormatValues(w io.Writer, name string, values []float64, opts FormatOptions) error {
	doc := valuesDoc{Name: name, Count: len(values), Values: make([]any, len(values))}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			doc.Values[i] = FloatToString(v)
		} else {
			doc.Values[i] = v
		}
	}
	return f.encode(w, doc, opts.Compact)
}

// FormatRecords writes the records, restricted to opts.Columns when set.
func (f *StructuredFormatter) FormatRecords(w io.Writer, records []Record, opts FormatOptions) error {
	data := filterRecords(records, opts.Columns)
	return f.encode(w, recordsDoc{Count: len(data), Data: data}, opts.Compact)
}

// FormatError writes {error: message}.
func (f *StructuredFormatter) FormatError(w io.Writer, err error) error {
	return f.encode(w, errorDoc{Error: err.Error()}, false)
}

func filterRecords(records []Record, columns []string) []Record {
	if len(columns) == 0 {
		return append([]Record{}, records...)
	}
	result := make([]Record, len(records))
	for i, record := range records {
		kept := make(Record, len(columns))
		for _, col := range columns {
			if val, ok := record[col]; ok {
				kept[col] = val
			}
		}
		result[i] = kept
	}
	return result
}

func init() {
	for _, f := range []Formatter{NewJSONFormatter(), NewYAMLFormatter()} {
		if err := Register(f); err != nil {
			fmt.Printf("failed to register %s formatter: %v\n", f.Name(), err)
		}
	}
}
