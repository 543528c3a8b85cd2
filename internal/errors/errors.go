package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Validation errors (VALIDATION-001 to VALIDATION-099)
	ErrCodeValidationMissingField ErrorCode = "VALIDATION-001"
	ErrCodeValidationBadPayload   ErrorCode = "VALIDATION-002"

	// Provider errors (PROVIDER-001 to PROVIDER-099)
	ErrCodeProviderConfig    ErrorCode = "PROVIDER-001"
	ErrCodeProviderAuth      ErrorCode = "PROVIDER-002"
	ErrCodeProviderAPI       ErrorCode = "PROVIDER-003"
	ErrCodeProviderRateLimit ErrorCode = "PROVIDER-004"
	ErrCodeProviderTimeout   ErrorCode = "PROVIDER-005"

	// Parse errors (PARSE-001 to PARSE-099)
	ErrCodeParseMalformed ErrorCode = "PARSE-001"
	ErrCodeParseSchema    ErrorCode = "PARSE-002"

	// Trace errors (TRACE-001 to TRACE-099)
	ErrCodeTraceInit   ErrorCode = "TRACE-001"
	ErrCodeTraceExport ErrorCode = "TRACE-002"

	// Store errors (STORE-001 to STORE-099)
	ErrCodeStoreOpen     ErrorCode = "STORE-001"
	ErrCodeStoreQuery    ErrorCode = "STORE-002"
	ErrCodeStoreNotFound ErrorCode = "STORE-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid   ErrorCode = "CONFIG-001"
	ErrCodeConfigUnmarshal ErrorCode = "CONFIG-002"
)

// VibesanaError represents an enhanced error with code, suggestions, and documentation
type VibesanaError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *VibesanaError) Error() string {
	var b strings.Builder

	// Error code and message
	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	// Add cause if present
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	// Add suggestions
	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *VibesanaError) Unwrap() error {
	return e.Cause
}

// New creates a new VibesanaError
func New(code ErrorCode, message string) *VibesanaError {
	return &VibesanaError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new VibesanaError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *VibesanaError {
	return &VibesanaError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *VibesanaError) WithSuggestion(suggestion string) *VibesanaError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *VibesanaError) WithSuggestions(suggestions ...string) *VibesanaError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Common error constructors for frequently used errors

// NewDescriptionRequiredError creates the error returned when a breakdown
// request arrives without a usable description.
func NewDescriptionRequiredError() *VibesanaError {
	return New(ErrCodeValidationMissingField, "Task description is required")
}

// NewProviderAuthError creates a provider authentication error
func NewProviderAuthError(provider string) *VibesanaError {
	return New(ErrCodeProviderAuth, fmt.Sprintf("authentication failed for provider: %s", provider)).
		WithSuggestion(fmt.Sprintf("Set the %s_API_KEY environment variable", strings.ToUpper(provider))).
		WithSuggestion("Check if your API key is valid and not expired")
}

// NewProviderAPIError creates a provider API failure error
func NewProviderAPIError(provider string, status int) *VibesanaError {
	return New(ErrCodeProviderAPI, fmt.Sprintf("%s API error: %d", provider, status)).
		WithSuggestion("Check provider status and retry the request later")
}

// NewStoreNotFoundError creates a task not found error
func NewStoreNotFoundError(id string) *VibesanaError {
	return New(ErrCodeStoreNotFound, fmt.Sprintf("task not found: %s", id)).
		WithSuggestion("List tasks to see valid identifiers")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *VibesanaError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Check environment variables and the optional config file")
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if ve, ok := err.(*VibesanaError); ok && ve.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
