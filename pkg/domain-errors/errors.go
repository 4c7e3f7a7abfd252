// Package domainerrors provides coded errors shared by every layer.
// Services attach a Code describing the failure class; transport layers map
// codes to HTTP statuses without inspecting message text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure. The string value doubles as the wire
// error code in JSON responses.
type Code string

const (
	// CodeInternal marks unexpected failures. Details are logged, never
	// returned to callers.
	CodeInternal Code = "internal_error"

	// CodeBadRequest marks syntactically broken requests (unparseable body,
	// missing body).
	CodeBadRequest Code = "bad_request"

	// CodeValidation marks well-formed input that violates business rules.
	CodeValidation Code = "validation_failed"

	// CodeInvalidInput marks a single field that failed parsing at a trust
	// boundary (ids, refs).
	CodeInvalidInput Code = "invalid_input"

	// CodeConflict marks uniqueness or state conflicts (duplicate external
	// ref, already-active record).
	CodeConflict Code = "conflict"

	// CodeNotFound marks an absent local record.
	CodeNotFound Code = "not_found"

	// CodeUnauthorized marks a missing or upstream-rejected credential.
	CodeUnauthorized Code = "unauthorized"

	// CodeForbidden marks a valid credential without sufficient rights.
	CodeForbidden Code = "forbidden"

	// CodeInvariantViolation marks a broken internal invariant. Surfacing one
	// to a caller is itself a bug.
	CodeInvariantViolation Code = "invariant_violation"

	// CodeTimeout marks an upstream call that exceeded its deadline.
	CodeTimeout Code = "timeout"

	// CodeUnavailable marks an upstream dependency that could not serve the
	// request (unreachable, malformed reply, overload).
	CodeUnavailable Code = "unavailable"
)

// Error is a coded domain error. It may wrap a cause for logging while the
// code and message stay caller-safe.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error, preserving the
// cause for errors.Is/As chains. A nil cause behaves like New.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return New(code, message)
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	for errors.As(err, &domainErr) {
		if domainErr.Code == code {
			return true
		}
		err = domainErr.Unwrap()
	}
	return false
}

// Is is shorthand for HasCode, reading naturally in assertions.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code in the chain, or CodeInternal when the
// error carries none.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// MessageOf returns the outermost caller-safe message, or empty when the
// error carries none.
func MessageOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return ""
}
