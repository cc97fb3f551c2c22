package errors

import (
	"fmt"
	"net/http"

	"vidinsights/domain/core"
)

// AppError represents a structured application error
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped
// AppError or deriving one from the domain taxonomy.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    codeForDomain(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// FromDomain converts any error into an AppError with a taxonomy code
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return &AppError{
		Code:    codeForDomain(err),
		Message: err.Error(),
		Cause:   err,
	}
}

func codeForDomain(err error) string {
	switch {
	case core.IsDataIntegrityError(err):
		return CodeDataIntegrity
	case core.IsInvalidModelSpecError(err):
		return CodeInvalidModelSpec
	case core.IsDimensionMismatchError(err):
		return CodeDimensionMismatch
	case core.IsInsufficientSampleError(err):
		return CodeInsufficientSample
	}
	return CodeInternalError
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HTTPStatus maps an error code to the status the API responds with
func HTTPStatus(code string) int {
	switch code {
	case CodeInvalidModelSpec, CodeDimensionMismatch, CodeInvalidInput:
		return http.StatusBadRequest
	case CodeInsufficientSample:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// IsWarning reports whether the code is surfaced as a user warning instead of a failure
func IsWarning(code string) bool {
	return code == CodeInsufficientSample
}

// Predefined error codes
const (
	CodeConfigInvalid      = "CONFIG_INVALID"
	CodeDataIntegrity      = "DATA_INTEGRITY"
	CodeInvalidModelSpec   = "INVALID_MODEL_SPEC"
	CodeDimensionMismatch  = "DIMENSION_MISMATCH"
	CodeInsufficientSample = "INSUFFICIENT_SAMPLE"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnavailable        = "UNAVAILABLE"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
