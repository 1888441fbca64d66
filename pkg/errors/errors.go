// Package errors defines the typed error taxonomy shared by every concept
// module and the synchronization orchestrator. Callers always receive a
// structured kind plus a safe message; raw store diagnostics stay in Cause.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and for the HTTP layer embedding
// this module.
type Kind string

const (
	// KindBadValues marks malformed or missing required input.
	KindBadValues Kind = "BAD_VALUES"
	// KindNotFound marks an absent record or referenced id.
	KindNotFound Kind = "NOT_FOUND"
	// KindState marks an illegal concept-level transition, such as a
	// duplicate friend request or collaborating with no active session.
	KindState Kind = "STATE"
	// KindConflict marks a lost compare-and-set, such as appending to a
	// collaborative session out of turn.
	KindConflict Kind = "CONFLICT"
	// KindUnauthorized marks an actor that is not a permitted participant.
	KindUnauthorized Kind = "UNAUTHORIZED"
	// KindInternal marks unexpected failures inside this module.
	KindInternal Kind = "INTERNAL"
	// KindDatabase marks a store transport failure. The message is always
	// safe to surface; the raw diagnostic lives in Cause.
	KindDatabase Kind = "DATABASE"
)

// AppError is the structured error every concept action and workflow
// returns. The Kind/Message pair is the caller-visible payload.
type AppError struct {
	Kind       Kind   `json:"kind"`
	Message    string `json:"message"`
	Cause      error  `json:"-"`
	HTTPStatus int    `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches an underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// NewBadValuesError creates a malformed-input error.
func NewBadValuesError(message string) *AppError {
	return &AppError{Kind: KindBadValues, Message: message, HTTPStatus: http.StatusBadRequest}
}

// NewNotFoundError creates a missing-record error for the named resource.
func NewNotFoundError(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource), HTTPStatus: http.StatusNotFound}
}

// NewStateError creates an illegal-transition error.
func NewStateError(message string) *AppError {
	return &AppError{Kind: KindState, Message: message, HTTPStatus: http.StatusPreconditionFailed}
}

// NewConflictError creates a concurrent-update error.
func NewConflictError(message string) *AppError {
	return &AppError{Kind: KindConflict, Message: message, HTTPStatus: http.StatusConflict}
}

// NewUnauthorizedError creates a not-permitted error.
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{Kind: KindUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// NewInternalError creates an unexpected-failure error.
func NewInternalError(message string) *AppError {
	return &AppError{Kind: KindInternal, Message: message, HTTPStatus: http.StatusInternalServerError}
}

// NewDatabaseError wraps a store transport failure with a safe message.
func NewDatabaseError(operation string, err error) *AppError {
	return &AppError{
		Kind:       KindDatabase,
		Message:    fmt.Sprintf("store operation '%s' failed", operation),
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// GetAppError extracts an AppError from an error chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Kind == kind
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool { return IsKind(err, KindNotFound) }

// IsBadValues reports whether err is a malformed-input error.
func IsBadValues(err error) bool { return IsKind(err, KindBadValues) }

// IsState reports whether err is an illegal-transition error.
func IsState(err error) bool { return IsKind(err, KindState) }

// IsConflict reports whether err is a concurrent-update error.
func IsConflict(err error) bool { return IsKind(err, KindConflict) }

// IsUnauthorized reports whether err is a not-permitted error.
func IsUnauthorized(err error) bool { return IsKind(err, KindUnauthorized) }

// IsDatabase reports whether err is a store transport error.
func IsDatabase(err error) bool { return IsKind(err, KindDatabase) }

// Wrap adds context to an existing error. AppErrors keep their kind;
// anything else becomes an internal error. The wrapped error is left
// untouched so callers can wrap the same error more than once.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		wrapped := *appErr
		wrapped.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return &wrapped
	}
	return NewInternalError(message).WithCause(err)
}
