package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Common application errors
var (
	ErrNotFound        = NewNotFoundError("resource", "")
	ErrAlreadyExists   = NewAlreadyExistsError("resource", "")
	ErrInvalidArgument = NewValidationError("", "invalid argument")
	ErrInternal        = NewInternalError("internal server error", nil)
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// Code returns the machine readable error code
func (e *ValidationError) Code() string {
	return "validation_error"
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	Key      string
}

// NewNotFoundError creates a new not found error for the resource identified by key
func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		Key:      key,
	}
}

func (e *NotFoundError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) HTTPStatus() int {
	return http.StatusNotFound
}

func (e *NotFoundError) Code() string {
	return "not_found"
}

// AlreadyExistsError represents a resource already exists error
type AlreadyExistsError struct {
	Resource string
	Key      string
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, key string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Key:      key,
	}
}

func (e *AlreadyExistsError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s already exists: %s", e.Resource, e.Key)
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e *AlreadyExistsError) HTTPStatus() int {
	return http.StatusConflict
}

func (e *AlreadyExistsError) Code() string {
	return "already_exists"
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

func (e *InternalError) Code() string {
	return "internal_error"
}

// HTTPStatuser is implemented by errors that map onto an HTTP response.
type HTTPStatuser interface {
	error
	HTTPStatus() int
	Code() string
}

// HTTPStatusOf finds the first HTTPStatuser in err's chain and returns its
// status and code. Unknown errors map to 500.
func HTTPStatusOf(err error) (int, string) {
	var s HTTPStatuser
	if stderrors.As(err, &s) {
		return s.HTTPStatus(), s.Code()
	}
	return http.StatusInternalServerError, "internal_error"
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return stderrors.As(err, &nf)
}
