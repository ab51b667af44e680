package types

import (
	"errors"
	"fmt"
)

// Kind classifies an action failure.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindNotUnique   Kind = "not_unique"
	KindBadRequest  Kind = "bad_request"
	KindServerError Kind = "server_error"
)

// ActionError is the only error type the action layer returns. Field holds
// the offending field name (or the action name for server errors) and is
// prefixed onto the message, so callers get diagnostics like
// "name: Library name 'x' is already in use".
type ActionError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ActionError) Unwrap() error {
	return e.Cause
}

// NotFound reports a missing row, parent scope, or join link.
func NotFound(field, format string, args ...interface{}) *ActionError {
	return &ActionError{Kind: KindNotFound, Code: 404, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotUnique reports a uniqueness invariant that would be violated.
func NotUnique(field, format string, args ...interface{}) *ActionError {
	return &ActionError{Kind: KindNotUnique, Code: 409, Field: field, Message: fmt.Sprintf(format, args...)}
}

// BadRequest reports a domain validation failure.
func BadRequest(field, format string, args ...interface{}) *ActionError {
	return &ActionError{Kind: KindBadRequest, Code: 400, Field: field, Message: fmt.Sprintf(format, args...)}
}

// ServerError wraps an unexpected storage failure with the originating
// action name, preserving the cause for errors.Is/As.
func ServerError(action string, cause error) *ActionError {
	return &ActionError{Kind: KindServerError, Code: 500, Field: action, Message: cause.Error(), Cause: cause}
}

func isKind(err error, kind Kind) bool {
	var ae *ActionError
	return errors.As(err, &ae) && ae.Kind == kind
}

func IsNotFound(err error) bool    { return isKind(err, KindNotFound) }
func IsNotUnique(err error) bool   { return isKind(err, KindNotUnique) }
func IsBadRequest(err error) bool  { return isKind(err, KindBadRequest) }
func IsServerError(err error) bool { return isKind(err, KindServerError) }
