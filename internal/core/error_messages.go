package core

// error_messages.go maps technical errors to user-facing messages with a
// support code and the response type suffix reported to API clients.
//
// Typed errors from the domain packages are matched with errors.Is and
// errors.As first. Untyped errors fall back to case-insensitive substring
// patterns. The first rule that matches wins, so specific rules come first.

import (
	"errors"
	"strings"

	"github.com/JonMunkholm/csvsearch/internal/census"
	"github.com/JonMunkholm/csvsearch/internal/csv"
	"github.com/JonMunkholm/csvsearch/internal/resource"
	"github.com/JonMunkholm/csvsearch/internal/search"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Kind    string // Machine-readable kind, reported as "error_<kind>"
}

type errorRule struct {
	match func(error) bool
	msg   UserMessage
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func as[T error]() func(error) bool {
	return func(err error) bool {
		var target T
		return errors.As(err, &target)
	}
}

func contains(pattern string) func(error) bool {
	return func(err error) bool {
		return strings.Contains(strings.ToLower(err.Error()), pattern)
	}
}

var errorRules = []errorRule{
	// File errors
	{is(resource.ErrOutsideRoot), UserMessage{
		Message: "File is outside the data directory",
		Action:  "Load a file from the data/resources folder",
		Code:    "FILE001",
		Kind:    "file_outside_resources_folder",
	}},
	{is(resource.ErrNotFound), UserMessage{
		Message: "File not found",
		Action:  "Check the path and file name",
		Code:    "FILE002",
		Kind:    "file_not_found",
	}},
	{is(ErrFileNotLoaded), UserMessage{
		Message: "File has not been loaded",
		Action:  "Load the file with /loadcsv first",
		Code:    "FILE003",
		Kind:    "file_not_loaded",
	}},
	{is(ErrTooManyFiles), UserMessage{
		Message: "Maximum number of loaded files reached",
		Action:  "Restart the server or reload an already loaded file",
		Code:    "FILE004",
		Kind:    "max_number_files_loaded",
	}},
	{is(ErrManifest), UserMessage{
		Message: "Preload manifest could not be read",
		Action:  "Check the manifest path and YAML syntax",
		Code:    "FILE005",
		Kind:    "manifest",
	}},

	// Parse errors
	{is(csv.ErrInconsistentColumns), UserMessage{
		Message: "Rows do not all have the same number of columns",
		Action:  "Make every row have as many fields as the first row",
		Code:    "PARSE001",
		Kind:    "data_in_incorrect_format",
	}},
	{as[*csv.FactoryFailure](), UserMessage{
		Message: "A row does not match the requested record type",
		Action:  "Check the column count and numeric fields, or view as raw",
		Code:    "PARSE002",
		Kind:    "data_in_incorrect_format",
	}},
	{as[*csv.ReadError](), UserMessage{
		Message: "The file could not be read",
		Action:  "Check that the file is readable text",
		Code:    "PARSE003",
		Kind:    "parsing_file",
	}},
	{is(ErrTooManyParses), UserMessage{
		Message: "The server is busy parsing other files",
		Action:  "Please wait a moment and try again",
		Code:    "PARSE004",
		Kind:    "busy",
	}},

	// Search errors
	{is(search.ErrNoHeader), UserMessage{
		Message: "Column names need a header row",
		Action:  "Set ifHeader=true or search by column index",
		Code:    "SRCH001",
		Kind:    "no_header_row_cannot_access_column_name",
	}},
	{as[*search.ColumnNotFoundError](), UserMessage{
		Message: "Column name not found",
		Action:  "Use one of the column names in the header row",
		Code:    "SRCH002",
		Kind:    "column_name_not_found",
	}},
	{is(search.ErrEmptyValue), UserMessage{
		Message: "Search value is required",
		Action:  "Provide a searchKey",
		Code:    "SRCH003",
		Kind:    "invalid_search_key",
	}},
	{is(search.ErrInvalidArgument), UserMessage{
		Message: "Invalid search argument",
		Action:  "Column indexes start at 0 and must be within the row width",
		Code:    "SRCH004",
		Kind:    "illegal_argument",
	}},
	{is(ErrUnknownRecordKind), UserMessage{
		Message: "Unknown record type",
		Action:  "Use one of: raw, student, star",
		Code:    "SRCH005",
		Kind:    "unknown_record_type",
	}},

	// Census errors
	{is(census.ErrInvalidLocation), UserMessage{
		Message: "State and county are required",
		Action:  "Provide both state and county parameters",
		Code:    "CEN001",
		Kind:    "bad_request",
	}},
	{is(census.ErrStateNotFound), UserMessage{
		Message: "State not found",
		Action:  "Use the full state name, e.g. California",
		Code:    "CEN002",
		Kind:    "state_not_found",
	}},
	{is(census.ErrCountyNotFound), UserMessage{
		Message: "County not found in state",
		Action:  "Use the full county name, e.g. Orange County",
		Code:    "CEN003",
		Kind:    "county_not_found",
	}},
	{as[*census.DatasourceError](), UserMessage{
		Message: "Census data source failed",
		Action:  "Please try again in a few moments",
		Code:    "CEN004",
		Kind:    "datasource_failure",
	}},

	// Request errors
	{is(ErrMissingParameter), UserMessage{
		Message: "A required parameter is missing",
		Action:  "Check the request parameters",
		Code:    "REQ001",
		Kind:    "bad_request",
	}},
	{contains("context canceled"), UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ002",
		Kind:    "cancelled",
	}},
	{contains("context deadline exceeded"), UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "REQ003",
		Kind:    "timeout",
	}},
	{is(ErrInvalidParameter), UserMessage{
		Message: "A request parameter has an invalid value",
		Action:  "Check the request parameters",
		Code:    "REQ004",
		Kind:    "bad_request",
	}},

	// Rate limiting
	{contains("rate limit"), UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
		Kind:    "rate_limited",
	}},
}

// defaultMessage is returned when no rule matches (ERR000). Support staff
// should check the logs for the technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Kind:    "internal",
}

// MapError converts a technical error to a user-friendly message.
// If no rule matches, a generic fallback message with code ERR000 is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("open: %w", resource.ErrNotFound))
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, rule := range errorRules {
		if rule.match(err) {
			return rule.msg
		}
	}

	return defaultMessage
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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

// NewUserError maps err and keeps the original for logging.
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
