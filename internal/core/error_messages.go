// Package core provides the business logic for the gradebook.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Errors are matched first by sentinel (errors.Is), then by
// message pattern for errors coming from lower layers.
//
// # Row Errors (ROW001-ROW099)
//
//	ROW001 - Malformed row: A row has fewer fields than the header
//	         Action: The row is shown in the table but left out of statistics
//	ROW002 - Row not found: The row no longer exists
//	         Action: Reload the table and try again
//
// # Grade Errors (GRD001-GRD099)
//
//	GRD001 - Invalid grade: A grade is not a whole number from 2 to 5
//	         Action: The cell is ignored in statistics; correct it to include it
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL003 - Required field: Name or class is empty
//	         Action: Fill in the student's name and class
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Invalid file: the text could not be split into rows
//	FILE004 - No file was selected
//	FILE005 - Empty file: no header row
//	FILE006 - Unknown export format
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - No table: nothing has been uploaded or entered yet
//	         Action: Upload a file or add a student first
//	TBL002 - Student not found
//
// # Navigation (NAV001-NAV099)
//
//	NAV001 - Unknown page or API route
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Too many requests
//	RATE002 - Too many imports running at once
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Support staff should check the application
// logs for the original technical error when users report ERR000.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorKind maps a sentinel error to its user message.
type errorKind struct {
	target error
	msg    UserMessage
}

// errorKinds is checked with errors.Is before any pattern.
var errorKinds = []errorKind{
	{ErrMissingRequiredField, UserMessage{
		Message: "Student name and class are required",
		Action:  "Fill in the student's name and class",
		Code:    "VAL003",
	}},
	{ErrNoTable, UserMessage{
		Message: "No table has been loaded yet",
		Action:  "Upload a file or add a student first",
		Code:    "TBL001",
	}},
	{ErrStudentNotFound, UserMessage{
		Message: "Student not found",
		Action:  "Check the name; it must match exactly",
		Code:    "TBL002",
	}},
	{ErrRowNotFound, UserMessage{
		Message: "The row no longer exists",
		Action:  "Reload the table and try again",
		Code:    "ROW002",
	}},
	{ErrMalformedRow, UserMessage{
		Message: "A row has fewer fields than the header",
		Action:  "The row is shown in the table but left out of statistics",
		Code:    "ROW001",
	}},
	{ErrInvalidGrade, UserMessage{
		Message: "A grade is not a whole number from 2 to 5",
		Action:  "The cell is ignored in statistics; correct it to include it",
		Code:    "GRD001",
	}},
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller parts",
		Code:    "FILE001",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "Too many imports are running",
		Action:  "Please wait a moment and upload again",
		Code:    "RATE002",
	}},
	{ErrEmptyFile, UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Upload a file with a header row and student rows",
		Code:    "FILE005",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first matching pattern wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller parts",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller parts",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "The file could not be read as a table",
			Action:  "Save the file as text with one student per line",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid separator",
		msg: UserMessage{
			Message: "The field separator is not usable",
			Action:  "Use a single character such as ';' as separator",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unknown export kind",
		msg: UserMessage{
			Message: "Unknown export format",
			Action:  "Choose txt, csv or xlsx",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid row index",
		msg: UserMessage{
			Message: "The row no longer exists",
			Action:  "Reload the table and try again",
			Code:    "ROW002",
		},
	},
	{
		pattern: "unknown grouping",
		msg: UserMessage{
			Message: "Unknown statistics grouping",
			Action:  "Choose class or student",
			Code:    "TBL003",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the submitted data and try again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "page not found",
		msg: UserMessage{
			Message: "Page not found",
			Action:  "Check the address or go back to the gradebook",
			Code:    "NAV001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(fmt.Errorf("import: %w", ErrEmptyFile))
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
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
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
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

// NewUserError wraps err with its mapped message. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
