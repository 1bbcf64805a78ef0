package core

// convert.go provides conversions between CSV text and typed values.
//
// Weights are rendered the way the dataset files are written:
// shortest round-trip decimal, with a trailing ".0" on integral values,
// so that exporting an imported file does not rewrite every weight.

import (
	"math"
	"strconv"
	"strings"
)

// SplitTags splits a Tags cell on the separator, trims each piece and drops empties.
func SplitTags(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, TagSeparator)
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// JoinTags joins tag names with the separator.
func JoinTags(tags []string) string {
	return strings.Join(tags, TagSeparator)
}

// ParseWeight parses a Weight cell.
// An empty cell yields DefaultWeight. ok is false when the text is not a
// finite decimal number; the caller decides whether the value is in range.
// Go literal forms such as hex floats (0x1p4) and digit separators (1_000)
// are rejected.
func ParseWeight(s string) (weight float64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultWeight, true
	}
	if !isDecimal(s) {
		return 0, false
	}

	w, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, false
	}
	return w, true
}

// isDecimal reports whether s uses only the characters of a plain decimal
// or exponent literal: digits, one leading sign, '.', and e/E with a sign.
func isDecimal(s string) bool {
	s = strings.TrimLeft(s, "+-")
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c == '.', c == 'e', c == 'E', c == '+', c == '-':
		default:
			return false
		}
	}
	return s != ""
}

// FormatWeight renders a weight for export.
func FormatWeight(w float64) string {
	s := strconv.FormatFloat(w, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(w, 0) && !math.IsNaN(w) {
		s += ".0"
	}
	return s
}

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanHeader(h))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// CleanHeader removes common spreadsheet artifacts from a header cell:
// surrounding whitespace, an Excel formula prefix (="...") and surrounding quotes.
// Data cells are only trimmed, since names legitimately carry quotes (O'Brien).
func CleanHeader(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// field returns the trimmed value of a column, and whether the column exists in the row.
func (idx HeaderIndex) field(record []string, name string) (string, bool) {
	pos, ok := idx[strings.ToLower(name)]
	if !ok || pos >= len(record) {
		return "", false
	}
	return record[pos], true
}

// Row builds a Row from a raw CSV record using the header index.
// Missing columns produce empty fields.
func (idx HeaderIndex) Row(record []string) Row {
	get := func(name string) string {
		v, _ := idx.field(record, name)
		return v
	}
	return Row{
		Name:     get("Name"),
		Position: get("Position"),
		Gender:   get("Gender"),
		Weight:   get("Weight"),
		Tags:     get("Tags"),
	}
}

// Missing returns the required columns absent from the header.
func (idx HeaderIndex) Missing() []string {
	var missing []string
	for _, spec := range FieldSpecs {
		if !spec.Required {
			continue
		}
		if _, ok := idx[strings.ToLower(spec.Name)]; !ok {
			missing = append(missing, spec.Name)
		}
	}
	return missing
}
