package core

// validation.go provides row-level validation for CSV data before insertion.
//
// Validation happens at two levels:
//  1. Header validation: reports required columns absent from the file
//  2. Row validation: checks each cell against its FieldSpec and the store's vocabulary
//
// Every check runs for every row so that one message lists all of a row's
// problems. A row with any error is rejected whole.

import (
	"fmt"
	"strings"
)

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldNumeric
	FieldTagList
)

// FieldSpec defines validation rules for a single CSV column.
type FieldSpec struct {
	Name     string    // Column header name (matched case-insensitively)
	Type     FieldType // Expected data type
	Required bool      // Value must be present and non-empty
}

// FieldSpecs describes the names CSV.
var FieldSpecs = []FieldSpec{
	{Name: "Name", Type: FieldText, Required: true},
	{Name: "Position", Type: FieldEnum, Required: true},
	{Name: "Gender", Type: FieldEnum, Required: true},
	{Name: "Weight", Type: FieldNumeric},
	{Name: "Tags", Type: FieldTagList},
}

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	return e.Message
}

// RowValidator validates rows against the store's vocabulary.
type RowValidator struct {
	vocab *Vocabulary
}

// NewRowValidator creates a validator for the given vocabulary.
func NewRowValidator(vocab *Vocabulary) *RowValidator {
	return &RowValidator{vocab: vocab}
}

// Validate checks a row and resolves it to database ids.
// The entry is only meaningful when no errors are returned.
func (v *RowValidator) Validate(row Row) (NameEntry, []ValidationError) {
	var (
		entry NameEntry
		errs  []ValidationError
	)

	entry.Name = strings.TrimSpace(row.Name)
	if entry.Name == "" {
		errs = append(errs, ValidationError{Field: "Name", Message: "missing or empty Name"})
	}

	entry.Position = strings.TrimSpace(row.Position)
	if entry.Position == "" {
		errs = append(errs, ValidationError{Field: "Position", Message: "missing Position"})
	} else if id, ok := v.vocab.Positions[entry.Position]; ok {
		entry.PositionID = id
	} else {
		errs = append(errs, ValidationError{
			Field:   "Position",
			Value:   entry.Position,
			Message: fmt.Sprintf("unknown position '%s'", entry.Position),
		})
	}

	entry.Gender = strings.TrimSpace(row.Gender)
	if entry.Gender == "" {
		errs = append(errs, ValidationError{Field: "Gender", Message: "missing Gender"})
	} else if id, ok := v.vocab.Genders[entry.Gender]; ok {
		entry.GenderID = id
	} else {
		errs = append(errs, ValidationError{
			Field:   "Gender",
			Value:   entry.Gender,
			Message: fmt.Sprintf("unknown gender '%s'", entry.Gender),
		})
	}

	if err := validateWeight(row.Weight, &entry); err != nil {
		errs = append(errs, *err)
	}

	seen := make(map[string]bool)
	for _, tag := range row.TagList() {
		if seen[tag] {
			continue
		}
		seen[tag] = true

		id, ok := v.vocab.Tags[tag]
		if !ok {
			errs = append(errs, ValidationError{
				Field:   "Tags",
				Value:   tag,
				Message: fmt.Sprintf("unknown tag '%s'", tag),
			})
			continue
		}
		entry.Tags = append(entry.Tags, tag)
		entry.TagIDs = append(entry.TagIDs, id)
	}

	return entry, errs
}

// validateWeight parses the Weight cell into entry.
// Messages quote the text that was supplied, not a substituted default.
func validateWeight(raw string, entry *NameEntry) *ValidationError {
	raw = strings.TrimSpace(raw)
	w, ok := ParseWeight(raw)
	if !ok {
		return &ValidationError{
			Field:   "Weight",
			Value:   raw,
			Message: fmt.Sprintf("invalid weight '%s' (must be a number)", raw),
		}
	}
	if w <= 0 {
		return &ValidationError{
			Field:   "Weight",
			Value:   raw,
			Message: fmt.Sprintf("invalid weight '%s' (must be > 0)", raw),
		}
	}
	entry.Weight = w
	return nil
}

// FormatRowErrors renders a row's errors as a single report line.
// row is the 1-based CSV record number, counting the header as row 1.
func FormatRowErrors(row int, errs []ValidationError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return fmt.Sprintf("Row %d: %s", row, strings.Join(msgs, ", "))
}

// ValidateHeaders checks that all required columns exist in the CSV header.
// Returns the header index, or an error listing missing columns.
func ValidateHeaders(headers []string) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	if missing := idx.Missing(); len(missing) > 0 {
		return idx, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}
