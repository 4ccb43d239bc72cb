package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"designspace/domain/core"
)

// AppError is a coded error raised at service and adapter boundaries. Domain
// packages return core sentinels; AppError adds a stable code on the way out.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeSchemaInvalid = "SCHEMA_INVALID"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeEmptyDataset  = "EMPTY_DATASET"
	CodeStructural    = "STRUCTURAL_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeIOError       = "IO_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap adds context, keeping the code of a wrapped AppError or deriving one
// from the domain sentinel underneath.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: GetCode(err), Message: message, Cause: err}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode forces a code onto an error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// IsAppError checks if an error chain holds an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the outermost AppError code, or the code implied by a domain
// sentinel, or CodeInternalError.
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case stderrors.Is(err, core.ErrInvalidSchema):
		return CodeSchemaInvalid
	case stderrors.Is(err, core.ErrEmptyDataset):
		return CodeEmptyDataset
	case stderrors.Is(err, core.ErrInvalidAlpha):
		return CodeInvalidInput
	case core.IsNotFoundError(err):
		return CodeNotFound
	case core.IsStructuralError(err):
		return CodeStructural
	}
	return CodeInternalError
}

// HTTPStatus maps an error to a response status
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidInput, CodeSchemaInvalid, CodeEmptyDataset:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeStructural:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func IOError(path string, cause error) *AppError {
	return &AppError{Code: CodeIOError, Message: fmt.Sprintf("cannot access %s", path), Cause: cause}
}
