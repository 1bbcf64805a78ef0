// Package core provides the domain model for the names dataset.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When a command fails, the code printed next to the message identifies the
// cause without digging through logs.
//
// Error codes are grouped by category:
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate name: A name with this text already exists
//	        Action: Names are unique regardless of position; rename or drop the row
//	        Patterns: "unique constraint failed", "duplicate key"
//
//	DB003 - Foreign key: Referenced record does not exist
//	        Action: Run bootstrap so the reference tables are seeded
//	        Patterns: "foreign key constraint", "violates foreign key"
//
//	DB004 - Connection refused: Unable to connect to database
//	        Action: Check NAMES_DB_DSN and that the server is running
//	        Patterns: "connection refused"
//
//	DB006 - Timeout: Operation timed out
//	        Action: Raise IMPORT_TIMEOUT or try again
//	        Patterns: "timeout", "context deadline exceeded"
//
//	DB008 - Schema missing: The database has not been bootstrapped
//	        Action: Run `namesdb bootstrap` first
//	        Patterns: "no such table", "does not exist"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL003 - Required field: Required field is empty
//	         Patterns: "missing or empty", "missing position", "missing gender"
//
//	VAL004 - Missing column: Required column is missing from CSV
//	         Patterns: "missing required column"
//
//	VAL006 - Unknown value: Value is not in the store's vocabulary
//	         Patterns: "unknown position", "unknown gender", "unknown tag"
//
//	VAL007 - Invalid weight: Weight must be a positive number
//	         Patterns: "invalid weight"
//
// # File Errors (FILE001-FILE099)
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Patterns: "invalid csv"
//
//	FILE003 - Unsupported columns: Rewriting the file would drop columns
//	          Patterns: "unsupported column"
//
//	FILE005 - Empty file: The file has no header row
//	          Patterns: "empty file"
//
//	FILE006 - File not found: The input file does not exist
//	          Patterns: "no such file", "cannot find the file"
//
// # Rule Errors (RULE001-RULE099)
//
//	RULE001 - Invalid rules: The heritage rule table could not be used
//	          Patterns: "heritage rules"
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Invalid configuration: An environment setting is invalid
//	         Patterns: "config validation" (checked first)
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Re-run with LOG_LEVEL=debug for details
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. Multiple patterns can map to the same code
// (e.g., DB001 matches both the SQLite and the PostgreSQL wording).
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	duplicateName = UserMessage{
		Message: "A name with this text already exists",
		Action:  "Names are unique regardless of position; rename or drop the row",
		Code:    "DB001",
	}
	missingReference = UserMessage{
		Message: "Referenced record does not exist",
		Action:  "Run bootstrap so the reference tables are seeded",
		Code:    "DB003",
	}
	timedOut = UserMessage{
		Message: "Operation timed out",
		Action:  "Raise IMPORT_TIMEOUT or try again",
		Code:    "DB006",
	}
	schemaMissing = UserMessage{
		Message: "The database has not been bootstrapped",
		Action:  "Run `namesdb bootstrap` first",
		Code:    "DB008",
	}
	requiredField = UserMessage{
		Message: "Required field is empty",
		Action:  "Ensure every row has a Name, Position and Gender",
		Code:    "VAL003",
	}
	fileNotFound = UserMessage{
		Message: "File not found",
		Action:  "Check the path, or run export first",
		Code:    "FILE006",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// Configuration messages quote setting names like IMPORT_TIMEOUT,
	// so they are matched before the database patterns.
	{
		pattern: "config validation",
		msg: UserMessage{
			Message: "Configuration is invalid",
			Action:  "Check the environment variables and .env file",
			Code:    "CFG001",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB008)
	// =========================================================================
	{pattern: "unique constraint failed", msg: duplicateName},
	{pattern: "duplicate key", msg: duplicateName},
	{pattern: "foreign key constraint", msg: missingReference},
	{pattern: "violates foreign key", msg: missingReference},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Check NAMES_DB_DSN and that the server is running",
			Code:    "DB004",
		},
	},
	{pattern: "context deadline exceeded", msg: timedOut},
	{pattern: "timeout", msg: timedOut},
	{pattern: "no such table", msg: schemaMissing},
	{pattern: "does not exist", msg: schemaMissing},

	// =========================================================================
	// Validation Errors (VAL003-VAL007)
	// =========================================================================
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from CSV",
			Action:  "The header must contain Name, Position and Gender",
			Code:    "VAL004",
		},
	},
	{pattern: "missing or empty", msg: requiredField},
	{pattern: "missing position", msg: requiredField},
	{pattern: "missing gender", msg: requiredField},
	{
		pattern: "unknown position",
		msg: UserMessage{
			Message: "Value is not in the allowed list",
			Action:  "Positions are first, last, title and nickname",
			Code:    "VAL006",
		},
	},
	{
		pattern: "unknown gender",
		msg: UserMessage{
			Message: "Value is not in the allowed list",
			Action:  "Genders are any, male, female, ambiguous and queer",
			Code:    "VAL006",
		},
	},
	{
		pattern: "unknown tag",
		msg: UserMessage{
			Message: "Tag does not exist in the store",
			Action:  "Check the spelling or add the tag to the tags table",
			Code:    "VAL006",
		},
	},
	{
		pattern: "invalid weight",
		msg: UserMessage{
			Message: "Weight must be a positive number",
			Action:  "Leave Weight empty for the default of 1.0",
			Code:    "VAL007",
		},
	},

	// =========================================================================
	// File Errors (FILE002-FILE006)
	// =========================================================================
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated with balanced quotes",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported column",
		msg: UserMessage{
			Message: "The CSV has columns that would be lost on rewrite",
			Action:  "Remove or rename the extra columns, or run with --dry-run",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file is empty",
			Action:  "The first line must be the header Name,Position,Gender,Weight,Tags",
			Code:    "FILE005",
		},
	},
	{pattern: "no such file", msg: fileNotFound},
	{pattern: "cannot find the file", msg: fileNotFound},

	// =========================================================================
	// Rule Errors
	// =========================================================================
	{
		pattern: "heritage rules",
		msg: UserMessage{
			Message: "The heritage rule table could not be used",
			Action:  "Check the rules file against the embedded default",
			Code:    "RULE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Re-run with LOG_LEVEL=debug for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := errors.New("UNIQUE constraint failed: names.name")
//	msg := MapError(err)
//	// msg.Code == "DB001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "File not found (Code: FILE006). Check the path, or run export first"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
