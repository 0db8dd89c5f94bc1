package core

// error_messages.go maps load failures to user-facing messages with codes
// for support reference.
//
// # Error Codes Reference
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File not found: A source file is missing from the college directory
//	          Action: Check that majors, students, instructors and grades files exist
//	          Matches: ErrFileNotFound
//
// # Record Errors (REC001-REC099)
//
//	REC001 - Malformed record: A line has the wrong number of fields
//	         Action: Check the delimiter and field count on the reported line
//	         Matches: ErrMalformedRecord
//
//	REC002 - Blank field: A required field is empty
//	         Action: Fill in the reported field (only grades may be blank)
//	         Matches: ErrBlankField
//
//	REC003 - Invalid value: A field holds a value outside its allowed set
//	         Action: Use R for required or E for elective courses
//	         Matches: ErrInvalidValue
//
// # Reference Errors (REF001-REF099)
//
//	REF001 - Unknown major: A student's major is not declared in the majors file
//	REF002 - Unknown student: A grade references a CWID missing from the students file
//	REF003 - Unknown instructor: A grade references a CWID missing from the instructors file
//
// # Service Errors (COL001-COL099, DB001-DB099, REQ001-REQ099)
//
//	COL001 - Unknown college: No college directory with that name
//	         Patterns: "unknown college"
//	COL002 - Busy: Every load slot stayed occupied
//	         Patterns: "too many concurrent loads"
//	DB001  - Store unavailable: No database is configured
//	         Patterns: "store not configured"
//	DB002  - Connection refused: Unable to connect to database
//	         Patterns: "connection refused"
//	DB003  - No saved load: Nothing was saved for that college or load ID
//	         Patterns: "no saved load"
//	REQ001 - Request cancelled
//	         Patterns: "context canceled"
//	REQ002 - Request timeout
//	         Patterns: "context deadline exceeded"
//	REQ003 - Invalid load ID: The load ID is not a UUID
//	         Patterns: "invalid load id"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// Typed load failures are matched with errors.Is first. Other errors fall
// back to case-insensitive substring patterns; the first match wins.

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

type errorKind struct {
	target error
	msg    UserMessage
}

// errorKinds maps the typed load failures to user messages.
var errorKinds = []errorKind{
	{ErrFileNotFound, UserMessage{
		Message: "A source file is missing",
		Action:  "Check that majors, students, instructors and grades files exist",
		Code:    "FILE001",
	}},
	{ErrMalformedRecord, UserMessage{
		Message: "A line has the wrong number of fields",
		Action:  "Check the delimiter and field count on the reported line",
		Code:    "REC001",
	}},
	{ErrBlankField, UserMessage{
		Message: "A required field is empty",
		Action:  "Fill in the reported field; only the grade may be blank",
		Code:    "REC002",
	}},
	{ErrInvalidValue, UserMessage{
		Message: "A field holds a value outside its allowed set",
		Action:  "Use R for required or E for elective courses",
		Code:    "REC003",
	}},
	{ErrUnknownMajor, UserMessage{
		Message: "A student's major is not offered",
		Action:  "Add the major to the majors file or correct the student's major",
		Code:    "REF001",
	}},
	{ErrUnknownStudent, UserMessage{
		Message: "A grade references an unknown student",
		Action:  "Add the student to the students file or correct the CWID",
		Code:    "REF002",
	}},
	{ErrUnknownInstructor, UserMessage{
		Message: "A grade references an unknown instructor",
		Action:  "Add the instructor to the instructors file or correct the CWID",
		Code:    "REF003",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns covers failures raised outside the core load.
var errorPatterns = []errorPattern{
	{
		pattern: "unknown college",
		msg: UserMessage{
			Message: "College not found",
			Action:  "Verify the college name matches a data directory",
			Code:    "COL001",
		},
	},
	{
		pattern: "too many concurrent loads",
		msg: UserMessage{
			Message: "The server is busy loading other colleges",
			Action:  "Please try again in a few moments",
			Code:    "COL002",
		},
	},
	{
		pattern: "store not configured",
		msg: UserMessage{
			Message: "No database is configured",
			Action:  "Set DATABASE_URL to enable persistence",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB002",
		},
	},
	{
		pattern: "no saved load",
		msg: UserMessage{
			Message: "No saved load found",
			Action:  "Persist the college first, or check the load_id",
			Code:    "DB003",
		},
	},
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
			Action:  "Try again later",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid load id",
		msg: UserMessage{
			Message: "Invalid load ID",
			Action:  "Use the load_id returned when the college was saved",
			Code:    "REQ003",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a user-friendly message.
// Returns the zero UserMessage for a nil error.
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

// IsLoadFailure reports whether err is one of the typed load failures,
// as opposed to an I/O, configuration or unexpected error.
func IsLoadFailure(err error) bool {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return true
		}
	}
	return false
}
