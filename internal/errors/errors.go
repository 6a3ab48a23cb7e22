// Package errors provides shared error types for the MediaWiki client.
package errors

import (
	"errors"
	"fmt"
)

// APIError is an error envelope returned by api.php instead of data.
type APIError struct {
	Code string // MediaWiki error code, e.g. "badcontinue"
	Info string // human-readable message from the server
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error [%s]: %s", e.Code, e.Info)
}

// NotFoundError indicates the wiki has no such page, user or entity.
type NotFoundError struct {
	EntityType string // "page", "user", "entity"
	Identifier string // title, user name or entity id
	Err        error  // underlying API error, if any
}

func (e *NotFoundError) Error() string {
	if e.EntityType != "" {
		return fmt.Sprintf("%s not found: %s", e.EntityType, e.Identifier)
	}
	return fmt.Sprintf("not found: %s", e.Identifier)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// HTTPError is a non-retryable HTTP status from the server.
type HTTPError struct {
	StatusCode int
	Body       string // truncated response body
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// ValidationError indicates invalid input parameters.
type ValidationError struct {
	Field   string // field name that failed validation
	Value   string // the invalid value (may be empty for sensitive data)
	Message string // human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Field != "" && e.Value != "" {
		return fmt.Sprintf("validation failed for %s=%q: %s", e.Field, e.Value, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// notFoundCodes maps API error codes to the kind of thing that is missing.
var notFoundCodes = map[string]string{
	"missingtitle":   "page",
	"nosuchpageid":   "page",
	"nosuchuser":     "user",
	"no-such-entity": "entity",
}

// FromAPI builds the error for an API error envelope. Codes that mean
// "does not exist" become a NotFoundError wrapping the APIError.
func FromAPI(code, info, identifier string) error {
	apiErr := &APIError{Code: code, Info: info}
	if kind, ok := notFoundCodes[code]; ok {
		return &NotFoundError{EntityType: kind, Identifier: identifier, Err: apiErr}
	}
	return apiErr
}

// IsAPIError returns true if err is or wraps an APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// APIErrorCode returns the MediaWiki error code carried by err, or "".
func APIErrorCode(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return ""
}

// IsNotFound returns true if err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation returns true if err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsHTTPStatus returns true if err carries the given HTTP status.
func IsHTTPStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}
