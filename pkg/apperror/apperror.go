// Package apperror defines the user-facing error taxonomy: each error carries an
// HTTP status and a machine-readable code.
package apperror

import (
	"errors"
	"net/http"
)

const (
	CodeInvalidPayload      = "INVALID_PAYLOAD"
	CodeNotFound            = "NOT_FOUND"
	CodePatientNotFound     = "PATIENT_NOT_FOUND"
	CodeDoctorNotFound      = "DOCTOR_NOT_FOUND"
	CodeOutOfSchedule       = "OUT_OF_SCHEDULE"
	CodeDailyLimitReached   = "DAILY_LIMIT_REACHED"
	CodePastDateTime        = "PAST_DATETIME"
	CodeInvalidStatus       = "INVALID_STATUS"
	CodeAlreadyCancelled    = "ALREADY_CANCELLED"
	CodeAlreadyCompleted    = "ALREADY_COMPLETED"
	CodeAccessDenied        = "ACCESS_DENIED"
	CodeForbiddenTransition = "FORBIDDEN_TRANSITION"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL_ERROR"
)

// Error is a rejected operation
type Error struct {
	Status  int
	Code    string
	Message string

	// base is the sentinel a WithMessage copy was derived from
	base *Error
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the originating sentinel, so errors.Is matches a copy made by
// WithMessage against it. Distinct sentinels sharing a code do not match.
func (e *Error) Unwrap() error {
	if e.base == nil {
		return nil
	}
	return e.base
}

// WithMessage returns a copy carrying a more specific message
func (e *Error) WithMessage(message string) *Error {
	base := e
	if e.base != nil {
		base = e.base
	}
	return &Error{Status: e.Status, Code: e.Code, Message: message, base: base}
}

// As extracts an *Error from the chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of err, or CodeInternal for unknown errors
func CodeOf(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}

func InvalidPayload(message string) *Error {
	return New(http.StatusBadRequest, CodeInvalidPayload, message)
}
