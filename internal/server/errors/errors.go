package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/serenolabs/sereno/internal/server/repository"
)

// DomainError represents a domain-specific error with additional context.
type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// ErrorCode represents different types of domain errors.
type ErrorCode string

const (
	// CodeInvalidInput indicates invalid user input.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeNotFound indicates a resource was not found or is not owned by the
	// caller; the two are deliberately indistinguishable.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a resource already exists.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeUnauthenticated indicates a missing or invalid credential on a
	// route that requires one.
	CodeUnauthenticated ErrorCode = "UNAUTHENTICATED"

	// CodeInternal indicates an internal server error.
	CodeInternal ErrorCode = "INTERNAL"

	// CodeUnavailable indicates an upstream dependency is unavailable.
	CodeUnavailable ErrorCode = "UNAVAILABLE"
)

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewInvalidInput creates a new invalid input error.
func NewInvalidInput(message string) *DomainError {
	return &DomainError{
		Code:    CodeInvalidInput,
		Message: message,
	}
}

// NewNotFound creates a new not found error.
func NewNotFound(message string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: message,
	}
}

// NewAlreadyExists creates a new already exists error.
func NewAlreadyExists(message string) *DomainError {
	return &DomainError{
		Code:    CodeAlreadyExists,
		Message: message,
	}
}

// NewUnauthenticated creates a new unauthenticated error.
func NewUnauthenticated(message string) *DomainError {
	return &DomainError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

// NewInternal creates a new internal error.
func NewInternal(message string, err error) *DomainError {
	return &DomainError{
		Code:    CodeInternal,
		Message: message,
		Err:     err,
	}
}

// ToHTTPStatus converts an error to the HTTP status code and user-visible
// message for the response body. Repository sentinel errors and generic
// errors are handled here as well, so no raw internal detail crosses the
// transport boundary.
func ToHTTPStatus(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainCodeToHTTPStatus(domainErr.Code), domainErr.Message
	}

	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusNotFound, "resource not found"
	}

	if errors.Is(err, repository.ErrDuplicate) {
		return http.StatusConflict, "resource already exists"
	}

	return http.StatusInternalServerError, "internal server error"
}

// domainCodeToHTTPStatus maps domain error codes to HTTP status codes.
func domainCodeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
