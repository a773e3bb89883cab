package formatter

import (
	"fmt"
	"io"
	"strings"
)

// ArrayFormatter formats output as wrapped C-style array initializers.
type ArrayFormatter struct{}

// NewArrayFormatter creates a new array formatter.
func NewArrayFormatter() *ArrayFormatter {
	return &ArrayFormatter{}
}

// Name returns the formatter name.
func (f *ArrayFormatter) Name() string {
	return "array"
}

// Description returns the formatter description.
func (f *ArrayFormatter) Description() string {
	return "Wrapped array initializer output"
}

// FormatValues formats values as `name[] = { ... };` wrapped at the text width.
func (f *ArrayFormatter) FormatValues(w io.Writer, name string, values []float64, opts FormatOptions) error {
	if name == "" {
		name = "values"
	}

	tokens := make([]string, len(values))
	for i, v := range values {
		tokens[i] = FloatToString(v)
	}

	if len(tokens) == 0 {
		_, err := fmt.Fprintf(w, "%s[] = {};\n", name)
		return err
	}

	body := JoinWrapped(tokens, 2, opts.textWidth())
	_, err := fmt.Fprintf(w, "%s[] = {\n  %s\n};\n", name, body)
	return err
}

// FormatRecords formats each record as one wrapped `{ key=value, ... }` line.
func (f *ArrayFormatter) FormatRecords(w io.Writer, records []Record, opts FormatOptions) error {
	columns := opts.columns(records)

	for _, record := range records {
		tokens := make([]string, 0, len(columns))
		for _, col := range columns {
			val, ok := record[col]
			if !ok {
				continue
			}
			tokens = append(tokens, col+"="+formatValue(val, opts.MaxWidth))
		}
		body := strings.TrimSuffix(JoinWrapped(tokens, 2, opts.textWidth()), ",")
		if _, err := fmt.Fprintf(w, "{ %s }\n", body); err != nil {
			return err
		}
	}
	return nil
}

// FormatError formats an error message as a comment line.
func (f *ArrayFormatter) FormatError(w io.Writer, err error) error {
	_, werr := fmt.Fprintf(w, "/* error: %s */\n", err.Error())
	return werr
}

func init() {
	if err := Register(NewArrayFormatter()); err != nil {
		fmt.Printf("failed to register array formatter: %v\n", err)
	}
}
