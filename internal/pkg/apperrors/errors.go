// Package apperrors holds the sentinels shared by the services, the repository and the HTTP layer.
// Handlers map them to status codes, the importer flattens them into per-row messages.
package apperrors

import (
	"errors"
	"fmt"
)

// Request and access errors.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("resource conflict")
)

// Infrastructure errors.
var (
	ErrDatabase       = errors.New("database error")
	ErrInternalServer = errors.New("internal server error")
)

// Upload errors reject the whole file before any row is touched.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrEmptyFile           = errors.New("the uploaded file is empty")
	ErrMalformedFile       = errors.New("the uploaded file could not be read")
)

const CodeDatabase = "DB_ERROR"

// ValidationError names the offending field so the API can echo it back.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

// AppError carries a message that is safe to show to operators while keeping the
// underlying cause for logs and errors.Is.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return "[" + e.Code + "] " + e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func WrapDatabaseError(cause error, message string) error {
	return &AppError{Code: CodeDatabase, Message: message, Cause: fmt.Errorf("%w: %w", ErrDatabase, cause)}
}

// Cause returns the innermost operator-facing message. Import results use it for row errors.
func Cause(err error) string {
	if err == nil {
		return ""
	}
	if vErr := new(ValidationError); errors.As(err, &vErr) {
		return vErr.Message
	}
	if appErr := new(AppError); errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
