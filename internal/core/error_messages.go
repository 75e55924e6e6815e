package core

// Error Codes Reference
//
// Users can quote these codes to support staff. Codes are grouped by category:
//
//	CFG001  - API key not configured
//	VAL001  - Domain or company name missing
//	VAL002  - Domain is not a valid host name
//	VAL003  - Company name cannot be used as a folder name
//	API001  - Upstream rejected the credentials (401/403)
//	API002  - Upstream quota exhausted (429)
//	API003  - Upstream returned another non-success status
//	API004  - Upstream unreachable
//	RES001  - No emails found for the domain
//	FILE001 - Artifact not found
//	FILE002 - Artifact could not be written
//	RATE001 - Too many requests from this client
//	RATE002 - Too many searches in progress
//	REQ001  - Request cancelled
//	REQ002  - Request timed out
//	ERR000  - Anything else; check the logs for the technical error
//
// Typed and sentinel errors are matched first with errors.Is/As. Errors that
// arrive only as text fall through to the pattern table.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/contactfinder/internal/artifact"
	"github.com/JonMunkholm/contactfinder/internal/catalog"
	"github.com/JonMunkholm/contactfinder/internal/hunter"
)

var (
	// ErrMissingInput is returned when domain or company name is empty.
	ErrMissingInput = errors.New("please provide both domain and company name")

	// ErrInvalidDomain is returned when the domain is not a host name.
	ErrInvalidDomain = errors.New("invalid domain")
)

// ValidationError names the request field that failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NoResultsError reports a search that found nothing.
type NoResultsError struct {
	Domain  string
	Company string
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no emails found for %s (%s)", e.Company, e.Domain)
}

func (e *NoResultsError) Unwrap() error {
	return hunter.ErrNoResults
}

// WriteError wraps a failure to persist an artifact.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return "write results: " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

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

// errorPatterns maps technical error text (case-insensitive) to user messages.
// The first matching pattern wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The request timed out",
			Action:  "Please try again in a few moments",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "too many concurrent searches",
		msg:     msgTooManySearches,
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

var msgTooManySearches = UserMessage{
	Message: "Too many searches in progress",
	Action:  "Please wait a moment and try again",
	Code:    "RATE002",
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		noResults *NoResultsError
		status    *hunter.StatusError
		transport *hunter.TransportError
	)

	switch {
	case errors.Is(err, ErrMissingInput):
		return UserMessage{
			Message: "Please provide both domain and company name.",
			Action:  "Fill in both fields and search again",
			Code:    "VAL001",
		}
	case errors.Is(err, ErrInvalidDomain):
		return UserMessage{
			Message: "The domain is not a valid host name.",
			Action:  "Enter a bare domain such as example.com",
			Code:    "VAL002",
		}
	case errors.Is(err, artifact.ErrInvalidCompany):
		return UserMessage{
			Message: "The company name cannot be used as a folder name.",
			Action:  "Remove slashes and leading dots from the company name",
			Code:    "VAL003",
		}
	case errors.Is(err, hunter.ErrMissingAPIKey):
		return UserMessage{
			Message: "API key not found. Please set HUNTER_API_KEY in your environment.",
			Action:  "Set HUNTER_API_KEY or run `contactfinder key set`",
			Code:    "CFG001",
		}
	case errors.As(err, &noResults):
		return UserMessage{
			Message: fmt.Sprintf("No emails found for %s (%s).", noResults.Company, noResults.Domain),
			Action:  "Check the domain spelling or try another domain",
			Code:    "RES001",
		}
	case errors.Is(err, hunter.ErrNoResults):
		return UserMessage{
			Message: "No emails found.",
			Action:  "Check the domain spelling or try another domain",
			Code:    "RES001",
		}
	case errors.As(err, &status):
		return statusMessage(status)
	case errors.Is(err, context.DeadlineExceeded):
		return errorPatterns[0].msg
	case errors.Is(err, context.Canceled):
		return errorPatterns[1].msg
	case errors.As(err, &transport):
		return UserMessage{
			Message: "Could not reach the email search service: " + transport.Error(),
			Action:  "Check your network connection and try again",
			Code:    "API004",
		}
	case errors.Is(err, ErrTooManySearches):
		return msgTooManySearches
	case errors.Is(err, artifact.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return UserMessage{
			Message: "The requested file was not found",
			Action:  "Run the search again to regenerate it",
			Code:    "FILE001",
		}
	}

	var werr *WriteError
	if errors.As(err, &werr) {
		return UserMessage{
			Message: "The results could not be saved",
			Action:  "Check that the output directory is writable",
			Code:    "FILE002",
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

func statusMessage(e *hunter.StatusError) UserMessage {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return UserMessage{
			Message: "The email search service rejected the API key: " + e.Error(),
			Action:  "Check that HUNTER_API_KEY is valid",
			Code:    "API001",
		}
	case http.StatusTooManyRequests:
		return UserMessage{
			Message: "The email search service quota is exhausted",
			Action:  "Wait for the quota to reset or upgrade the plan",
			Code:    "API002",
		}
	default:
		return UserMessage{
			Message: "Error: " + e.Error(),
			Action:  "Please try again later",
			Code:    "API003",
		}
	}
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

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
