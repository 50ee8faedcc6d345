package service

import (
	"errors"
	"fmt"

	"event_hub/constants"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessable
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnprocessable:
		return "unprocessable"
	default:
		return "internal"
	}
}

// Error is a business-rule failure. Message is safe to show to the caller;
// Fields carries extra diagnostic values for the response body.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, fields map[string]any) *Error {
	return &Error{Kind: kind, Message: message, Fields: fields}
}

func validation(message string, fields map[string]any) *Error {
	return newError(KindValidation, message, fields)
}

func forbidden(message string, fields map[string]any) *Error {
	return newError(KindForbidden, message, fields)
}

func notFound(message string) *Error {
	return newError(KindNotFound, message, nil)
}

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: constants.ERROR_INTERNAL_ERROR, Err: err}
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// KindOf reports the kind of err; errors that are not *Error are internal.
func KindOf(err error) Kind {
	if svcErr, ok := AsError(err); ok {
		return svcErr.Kind
	}
	return KindInternal
}
