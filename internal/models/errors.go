package models

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures so transport layers can map them to a
// status without inspecting message text.
type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "VALIDATION"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeStorage      ErrorCode = "STORAGE_UNAVAILABLE"
)

// Error is a domain-level error carrying a semantic code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

var (
	ErrTaskNotFound  = NewError(ErrCodeNotFound, "Task not found")
	ErrNotAuthorized = NewError(ErrCodeForbidden, "Not authorized")
	ErrUserNotFound  = NewError(ErrCodeNotFound, "User not found")
	ErrBadLogin      = NewError(ErrCodeUnauthorized, "Invalid credentials")
)

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
