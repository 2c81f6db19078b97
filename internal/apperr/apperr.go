// Package apperr classifies operation failures so callers can distinguish
// caller-fixable errors from system faults without string matching.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind identifies the failure category of an operation.
type Kind string

const (
	// KindValidation marks malformed or out-of-range input.
	KindValidation Kind = "validation"
	// KindNotFound marks a missing referenced entity.
	KindNotFound Kind = "not_found"
	// KindAuthorization marks an actor lacking permission.
	KindAuthorization Kind = "authorization"
	// KindTransient marks conflicts and timeouts that are worth retrying.
	KindTransient Kind = "transient"
	// KindRender marks document generation failures.
	KindRender Kind = "render"
	// KindDelivery marks notification dispatch failures.
	KindDelivery Kind = "delivery"
	// KindInternal marks unclassified infrastructure faults.
	KindInternal Kind = "internal"
)

// Error carries a failure kind alongside the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validationf builds a validation error from a format string.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a not-found error from a format string.
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Authorizationf builds an authorization error from a format string.
func Authorizationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

// KindOf classifies an arbitrary error. Unknown errors are treated as
// internal faults; database conflict/timeout classes map to transient so the
// batch controller retries them.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindNotFound
	}

	if errors.Is(err, context.DeadlineExceeded) || isTransientMessage(err) {
		return KindTransient
	}

	return KindInternal
}

// IsKind reports whether err classifies to the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the human-readable portion of a classified error, falling
// back to the raw error text for unclassified causes.
func Message(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func isTransientMessage(err error) bool {
	text := strings.ToLower(err.Error())
	for _, marker := range []string{
		"deadlock",
		"serialization",
		"could not serialize",
		"connection reset",
		"connection refused",
		"timeout",
		"too many connections",
		"database is locked",
	} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
