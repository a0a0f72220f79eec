package apperr

import (
	"errors"
	"fmt"
)

// Code classifies an application error so the HTTP layer can map it to a
// status without inspecting messages.
type Code string

const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeValidation          Code = "VALIDATION_ERROR"
	CodeExpired             Code = "EXPIRED"
	CodeMinimumNotMet       Code = "MINIMUM_NOT_MET"
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeStorageUnavailable  Code = "STORAGE_UNAVAILABLE"
	CodePersistenceConflict Code = "PERSISTENCE_CONFLICT"
)

// Error is a typed application error with a human-readable message
// suitable for direct display.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func Expired(format string, args ...interface{}) *Error {
	return &Error{Code: CodeExpired, Message: fmt.Sprintf(format, args...)}
}

func MinimumNotMet(format string, args ...interface{}) *Error {
	return &Error{Code: CodeMinimumNotMet, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...interface{}) *Error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// StorageUnavailable wraps a persistence-layer failure, keeping the cause
// for logs while presenting a stable message to callers.
func StorageUnavailable(cause error) *Error {
	return &Error{Code: CodeStorageUnavailable, Message: "storage unavailable", cause: cause}
}

func PersistenceConflict(format string, args ...interface{}) *Error {
	return &Error{Code: CodePersistenceConflict, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of err if it is an application error,
// or an empty code otherwise.
func CodeOf(err error) Code {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
