package formatter

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// WrapText appends token to sb as a ", "-terminated list item, breaking onto a new
// line indented by two spaces when the item would push the current line past width.
// *length tracks the visual width of the current line and is updated accordingly.
func WrapText(sb *strings.Builder, length *int, token string, width int) {
	n := utf8.RuneCountInString(token)
	if *length+n+2 <= width {
		sb.WriteString(token)
		sb.WriteString(", ")
		*length += n + 2
		return
	}

	sb.WriteString("\n  ")
	sb.WriteString(token)
	sb.WriteString(", ")
	*length = n + 4
}

// FloatToString renders v in its default short form: up to six significant
// digits, switching to exponent notation for very large or small magnitudes.
func FloatToString(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// JoinWrapped renders tokens as a wrapped list whose first line already holds
// indent characters. The trailing separator space is trimmed.
func JoinWrapped(tokens []string, indent, width int) string {
	var sb strings.Builder
	length := indent
	for _, tok := range tokens {
		WrapText(&sb, &length, tok, width)
	}
	return strings.TrimRight(sb.String(), " ")
}
