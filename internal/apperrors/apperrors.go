// Package apperrors defines the error kinds raised while compiling and
// executing connection queries.
//
// Every rejection carries enough context (argument, field, operator, raw
// value) for a caller to render a precise message. Errors implement the
// graphql-go ExtendedError interface so the kind is exposed to clients as
// extensions.code.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind string

const (
	KindUnsupportedArgument        Kind = "UNSUPPORTED_ARGUMENT"
	KindMutuallyExclusiveArguments Kind = "MUTUALLY_EXCLUSIVE_ARGUMENTS"
	KindInvalidCursor              Kind = "INVALID_CURSOR"
	KindInvalidArgument            Kind = "INVALID_ARGUMENT"
	KindUnknownOperator            Kind = "UNKNOWN_OPERATOR"
	KindUnknownField               Kind = "UNKNOWN_FIELD"
	KindUnsupportedScalarKind      Kind = "UNSUPPORTED_SCALAR_KIND"
	KindStorageFailure             Kind = "STORAGE_FAILURE"
)

// Client reports whether errors of this kind are caused by the request
// rather than by the server or its configuration.
func (k Kind) Client() bool {
	switch k {
	case KindUnsupportedScalarKind, KindStorageFailure:
		return false
	default:
		return true
	}
}

// Error is the concrete error type for every Kind.
type Error struct {
	Kind      Kind
	Argument  string
	Arguments []string
	Field     string
	Operator  string
	Value     interface{}
	Message   string
	Err       error
}

func (e *Error) Error() string {
	if e.Kind == KindStorageFailure && e.Err != nil {
		return e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", strings.ToLower(string(e.Kind)), e.Err)
	}
	return strings.ToLower(string(e.Kind))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: k})
// tests for a kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Extensions implements gqlerrors.ExtendedError.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{"code": string(e.Kind)}
	if e.Argument != "" {
		ext["argument"] = e.Argument
	}
	if len(e.Arguments) > 0 {
		ext["arguments"] = e.Arguments
	}
	if e.Field != "" {
		ext["field"] = e.Field
	}
	if e.Operator != "" {
		ext["operator"] = e.Operator
	}
	return ext
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind reports whether err's chain contains an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

func UnsupportedArgument(arg string) *Error {
	return &Error{
		Kind:     KindUnsupportedArgument,
		Argument: arg,
		Message:  fmt.Sprintf("argument %q is currently unsupported", arg),
	}
}

func MutuallyExclusiveArguments(args []string) *Error {
	return &Error{
		Kind:      KindMutuallyExclusiveArguments,
		Arguments: append([]string(nil), args...),
		Message:   fmt.Sprintf("You can only use one of arguments: %s.", strings.Join(args, ", ")),
	}
}

// InvalidCursor reports a cursor argument that failed to decode.
func InvalidCursor(arg, raw string, cause error) *Error {
	msg := fmt.Sprintf("argument %q has invalid value %q", arg, raw)
	if arg == "" {
		msg = fmt.Sprintf("invalid cursor %q", raw)
	}
	return &Error{
		Kind:     KindInvalidCursor,
		Argument: arg,
		Value:    raw,
		Message:  msg,
		Err:      cause,
	}
}

func InvalidArgument(arg string, value interface{}, reason string) *Error {
	return &Error{
		Kind:     KindInvalidArgument,
		Argument: arg,
		Value:    value,
		Message:  fmt.Sprintf("argument %q has invalid value %v: %s", arg, value, reason),
	}
}

func UnknownOperator(field, op string) *Error {
	return &Error{
		Kind:     KindUnknownOperator,
		Field:    field,
		Operator: op,
		Message:  fmt.Sprintf("operator %q is not supported for field %q", op, field),
	}
}

func UnknownField(field string) *Error {
	return &Error{
		Kind:    KindUnknownField,
		Field:   field,
		Message: fmt.Sprintf("field %q cannot be filtered", field),
	}
}

// UnsupportedScalarKind reports a field wired to a scalar kind with no
// default operator set. The subject names the scalar, or the scalar and
// operator when an explicit operator does not apply to it.
func UnsupportedScalarKind(scalar, detail string) *Error {
	msg := fmt.Sprintf("scalar kind %q has no default operator set", scalar)
	if detail != "" {
		msg = fmt.Sprintf("scalar kind %q: %s", scalar, detail)
	}
	return &Error{
		Kind:    KindUnsupportedScalarKind,
		Value:   scalar,
		Message: msg,
	}
}

// StorageFailure wraps an error returned by the storage collaborator.
func StorageFailure(cause error) *Error {
	return &Error{Kind: KindStorageFailure, Err: cause}
}
