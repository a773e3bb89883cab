package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// TableFormatter writes records as space-aligned columns with an upper-case header.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the formatter name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Description returns the formatter description.
func (f *TableFormatter) Description() string {
	return "Aligned text table output"
}

// FormatValues writes one row per value with its position. The value
// column is headed by name ("value" when empty).
func (f *TableFormatter) FormatValues(w io.Writer, name string, values []float64, opts FormatOptions) error {
	if name == "" {
		name = "value"
	}
	records := make([]Record, len(values))
	for i, v := range values {
		records[i] = Record{"index": i, name: v}
	}
	opts.Columns = []string{"index", name}
	return f.FormatRecords(w, records, opts)
}

// FormatRecords writes the records as a table.
func (f *TableFormatter) FormatRecords(w io.Writer, records []Record, opts FormatOptions) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No records found.")
		return err
	}

	columns := opts.columns(records)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	cells := make([]string, len(columns))
	if !opts.NoHeader {
		for i, col := range columns {
			cells[i] = strings.ToUpper(col)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	for _, record := range records {
		for i, col := range columns {
			cells[i] = formatValue(record[col], opts.MaxWidth)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

// FormatError writes "Error: message".
func (f *TableFormatter) FormatError(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "Error: %s\n", err)
	return werr
}

// formatValue renders one cell. Floats use FloatToString, booleans yes/no,
// nil "-"; values longer than maxWidth (when > 3) are cut with "...".
func formatValue(val any, maxWidth int) string {
	var s string
	switch v := val.(type) {
	case nil:
		s = "-"
	case string:
		s = v
	case bool:
		s = "no"
		if v {
			s = "yes"
		}
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case float32:
		s = FloatToString(float64(v))
	case float64:
		s = FloatToString(v)
	case fmt.Stringer:
		s = v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			s = fmt.Sprint(v)
		} else {
			s = string(b)
		}
	}

	if maxWidth > 3 && len(s) > maxWidth {
		s = s[:maxWidth-3] + "..."
	}
	return s
}

func init() {
	if err := Register(NewTableFormatter()); err != nil {
		fmt.Printf("failed to register table formatter: %v\n", err)
	}
}
