// Package core provides the users service behind the data table demo.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Connection refused: Unable to connect to database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
//	DB002 - Connection reset: Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB003 - Deadlock: Database was busy with conflicting operations
//	        Action: Please try again
//	        Patterns: "deadlock"
//
//	DB004 - Timeout: Operation timed out
//	        Action: Narrow your filters or try again later
//	        Patterns: "timeout"
//
// # Query Errors (QRY001-QRY099)
//
// Errors raised while reading list parameters from the URL:
//
//	QRY001 - Invalid sort: The table cannot be sorted by that column
//	         Action: Pick a sortable column header
//	         Patterns: "invalid sort column", "invalid sort direction"
//
//	QRY002 - Invalid date: A date filter could not be read
//	         Action: Use YYYY-MM-DD
//	         Patterns: "invalid date"
//
// # User Errors (USR001-USR099)
//
//	USR001 - User not found: The user no longer exists
//	         Action: Refresh the table
//	         Patterns: "user not found"
//
// # Table Errors (TBL001-TBL099)
//
// Errors related to table sessions and events:
//
//	TBL001 - Session expired: Table session not found
//	         Action: Reload the page to start a new session
//	         Patterns: "table session not found"
//
//	TBL002 - Unknown event: The table received an event it does not handle
//	         Action: Reload the page
//	         Patterns: "unknown table event"
//
//	TBL003 - Invalid event: A table control sent a malformed value
//	         Action: Check the value and try again
//	         Patterns: "invalid table event", "cannot be filtered"
//
//	TBL004 - Invalid state: The table state could not be verified
//	         Action: Reload the page
//	         Patterns: "invalid state token"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Unsupported format: Export format is not supported
//	         Action: Choose CSV, Excel or PDF
//	         Patterns: "unsupported export format"
//
//	EXP002 - Export disabled: Export is not available for this table
//	         Action: Contact an administrator to enable exports
//	         Patterns: "export not configured"
//
//	EXP003 - Export too large: Too many rows to export at once
//	         Action: Apply filters to narrow the export
//	         Patterns: "export too large"
//
//	EXP004 - Exports busy: Other exports are still running
//	         Action: Wait a few seconds and export again
//	         Patterns: "too many concurrent exports"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Action: Narrow your filters or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.
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

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters:
//   - More specific patterns should come before general ones
//   - Multiple patterns can map to the same error code
var errorPatterns = []errorPattern{
	// =========================================================================
	// Request Errors (REQ001-REQ002)
	// Matched before DB004 so deadline errors are not reported as database timeouts.
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Narrow your filters or check your connection",
			Code:    "REQ002",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB004)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Narrow your filters or try again later",
			Code:    "DB004",
		},
	},

	// =========================================================================
	// Query Errors (QRY001-QRY002)
	// =========================================================================
	{
		pattern: "invalid sort column",
		msg: UserMessage{
			Message: "The table cannot be sorted by that column",
			Action:  "Pick a sortable column header",
			Code:    "QRY001",
		},
	},
	{
		pattern: "invalid sort direction",
		msg: UserMessage{
			Message: "The table cannot be sorted that way",
			Action:  "Pick a sortable column header",
			Code:    "QRY001",
		},
	},
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "A date filter could not be read",
			Action:  "Use YYYY-MM-DD",
			Code:    "QRY002",
		},
	},

	// =========================================================================
	// User Errors (USR001)
	// =========================================================================
	{
		pattern: "user not found",
		msg: UserMessage{
			Message: "The user no longer exists",
			Action:  "Refresh the table",
			Code:    "USR001",
		},
	},

	// =========================================================================
	// Table Errors (TBL001-TBL004)
	// =========================================================================
	{
		pattern: "table session not found",
		msg: UserMessage{
			Message: "Table session not found",
			Action:  "Reload the page to start a new session",
			Code:    "TBL001",
		},
	},
	{
		pattern: "unknown table event",
		msg: UserMessage{
			Message: "The table received an unsupported action",
			Action:  "Reload the page",
			Code:    "TBL002",
		},
	},
	{
		pattern: "invalid table event",
		msg: UserMessage{
			Message: "A table control sent an invalid value",
			Action:  "Check the value and try again",
			Code:    "TBL003",
		},
	},
	{
		pattern: "cannot be filtered",
		msg: UserMessage{
			Message: "This column cannot be filtered",
			Action:  "Check the value and try again",
			Code:    "TBL003",
		},
	},
	{
		pattern: "invalid state token",
		msg: UserMessage{
			Message: "The table state could not be verified",
			Action:  "Reload the page",
			Code:    "TBL004",
		},
	},

	// =========================================================================
	// Export Errors (EXP001-EXP004)
	// =========================================================================
	{
		pattern: "unsupported export format",
		msg: UserMessage{
			Message: "Export format is not supported",
			Action:  "Choose CSV, Excel or PDF",
			Code:    "EXP001",
		},
	},
	{
		pattern: "export not configured",
		msg: UserMessage{
			Message: "Export is not available for this table",
			Action:  "Contact an administrator to enable exports",
			Code:    "EXP002",
		},
	},
	{
		pattern: "export too large",
		msg: UserMessage{
			Message: "Too many rows to export at once",
			Action:  "Apply filters to narrow the export",
			Code:    "EXP003",
		},
	},
	{
		pattern: "too many concurrent exports",
		msg: UserMessage{
			Message: "Other exports are still running",
			Action:  "Wait a few seconds and export again",
			Code:    "EXP004",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("export users: %w", ErrExportTooLarge)
//	msg := MapError(err)
//	// msg.Code == "EXP003"
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

// UserError pairs a technical error with its user-friendly message.
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
