// Package apperror defines the application error taxonomy shared by every feature.
// Usecases return *Error values carrying a stable code; the HTTP boundary maps the
// Kind to a status and renders the code in the error envelope.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindAuthentication
	KindAuthorization
	KindConflict
)

// Stable error codes rendered to clients.
const (
	CodeProjectNotFound    = "PROJECT_NOT_FOUND"
	CodeIssueNotFound      = "ISSUE_NOT_FOUND"
	CodeValidation         = "VALIDATION_ERROR"
	CodeAuthentication     = "AUTHENTICATION_ERROR"
	CodeAuthorization      = "AUTHORIZATION_ERROR"
	CodeConflict           = "CONFLICT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeRouteNotFound      = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetails returns a copy of e with details attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// NotFound builds a not-found error with a resource specific code.
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Validation builds a validation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: message}
}

// Authentication builds an authentication error wrapping the cause.
func Authentication(message string, cause error) *Error {
	return &Error{Kind: KindAuthentication, Code: CodeAuthentication, Message: message, Err: cause}
}

// Forbidden builds an ownership violation error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Code: CodeAuthorization, Message: message}
}

// Conflict builds a uniqueness conflict error.
func Conflict(message string, cause error) *Error {
	return &Error{Kind: KindConflict, Code: CodeConflict, Message: message, Err: cause}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal server error", Err: cause}
}

// As extracts an *Error from err. Errors outside the taxonomy are reported as internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
