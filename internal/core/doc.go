// Package core provides the domain model for the names dataset.
//
// The dataset is a flat CSV of names, one row per name:
//
//	Name,Position,Gender,Weight,Tags
//	Angus,first,male,1.0,Blades - Skovlan|Blades In The Dark
//
// This package is independent of any store or transport. It can be used by
// the importer, the cleaning tools, the web server, or tests without
// modification.
//
// # Rows and Entries
//
// A [Row] is the raw CSV record, kept as text so that tools which rewrite
// the file leave untouched fields alone. A [NameEntry] is a row that passed
// validation against a [Vocabulary] and carries the database ids needed to
// insert it.
//
// # Validation
//
// [RowValidator] runs every check for a row and returns all failures, so a
// report line names every problem at once:
//
//	Row 7: unknown position 'middle', invalid weight 'heavy' (must be a number)
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB008: Database errors (duplicates, constraints, connections, schema)
//   - VAL003-VAL007: Validation errors (required fields, vocabulary, weights)
//   - FILE002-FILE006: File errors (format, empty, not found)
//   - RULE001, CFG001: Rule table and configuration errors
package core
