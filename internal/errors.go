package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidData      ErrorCode = "INVALID_DATA"
	ErrCodeInvalidFormat    ErrorCode = "INVALID_FORMAT"
	ErrCodeInvalidDelimiter ErrorCode = "INVALID_DELIMITER"
	ErrCodeInvalidEncoding  ErrorCode = "INVALID_ENCODING"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeEmptyFields      ErrorCode = "EMPTY_FIELDS"
	ErrCodeEmptyRoles       ErrorCode = "EMPTY_ROLES"
	ErrCodeEmptyOverrides   ErrorCode = "EMPTY_OVERRIDES"

	ErrCodeRolesNotResolved      ErrorCode = "ROLES_NOT_RESOLVED"
	ErrCodeMalformedCategoryTree ErrorCode = "MALFORMED_CATEGORY_TREE"
	ErrCodeCategoryNotFound      ErrorCode = "CATEGORY_NOT_FOUND"

	ErrCodeProcessStarted  ErrorCode = "PROCESS_STARTED"
	ErrCodeFileNotPrepared ErrorCode = "FILE_NOT_PREPARED"
)

type AppError struct {
	Type       ErrorType `json:"type"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"-"`
	Cause      error     `json:"-"`
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

// Is matches two AppErrors by code so sentinel errors survive WithCause copies.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// WithCause returns a copy carrying the underlying error. The sentinel
// itself is never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	copied := *e
	copied.Cause = cause
	return &copied
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrInvalidData      = NewValidationError("invalid data kind, expected courses or users", ErrCodeInvalidData)
	ErrInvalidFormat    = NewValidationError("invalid output format, expected csv or xls", ErrCodeInvalidFormat)
	ErrInvalidDelimiter = NewValidationError("invalid csv delimiter", ErrCodeInvalidDelimiter)
	ErrInvalidEncoding  = NewValidationError("invalid output encoding", ErrCodeInvalidEncoding)
	ErrInvalidRole      = NewValidationError("unknown role in requested roles", ErrCodeInvalidRole)
	ErrEmptyFields      = NewValidationError("no output fields requested", ErrCodeEmptyFields)
	ErrEmptyRoles       = NewValidationError("user export requires at least one role", ErrCodeEmptyRoles)
	ErrEmptyOverrides   = NewValidationError("overrides enabled but no override values supplied", ErrCodeEmptyOverrides)

	ErrRolesNotResolved      = NewInternalErrorWithCode("user records requested before roles were resolved", ErrCodeRolesNotResolved)
	ErrMalformedCategoryTree = NewInternalErrorWithCode("category parent chain contains a cycle", ErrCodeMalformedCategoryTree)
	ErrCategoryNotFound      = NewNotFoundError("course category not found", ErrCodeCategoryNotFound)

	ErrProcessStarted  = NewConflictError("export has already been prepared", ErrCodeProcessStarted)
	ErrFileNotPrepared = NewConflictError("export file has not been prepared", ErrCodeFileNotPrepared)
)

func NewInternalErrorWithCode(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType `json:"type"`
		Code    ErrorCode `json:"code"`
		Message string    `json:"message"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
	})
}
