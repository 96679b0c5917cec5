// Package gatewayerr implements the typed error-kind taxonomy from the
// gateway's error handling design: every fallible operation returns one of
// these kinds instead of panicking, and the gateway layer maps kinds to
// canonical JSON-RPC error codes.
package gatewayerr

import (
	"errors"
	"fmt"
)

// Kind enumerates the error taxonomy. Kinds are used for propagation policy
// decisions (surfaced immediately vs. converted vs. process-fatal), not for
// wire representation directly.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindCapacity
	KindTimeout
	KindTransport
	KindSandbox
	KindConsistency
	KindFatal
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindCapacity:
		return "capacity"
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindSandbox:
		return "sandbox"
	case KindConsistency:
		return "consistency"
	case KindFatal:
		return "fatal"
	default:
		return "internal"
	}
}

// Error is the structured error value threaded through the gateway. It never
// carries a stack trace or language-runtime exception; it is a plain typed
// value returned from fallible operations.
type Error struct {
	Kind    Kind
	Message string
	Data    any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newErr(kind Kind, msg string, data any) *Error {
	return &Error{Kind: kind, Message: msg, Data: data}
}

func Validation(msg string, data any) *Error  { return newErr(KindValidation, msg, data) }
func NotFound(msg string, data any) *Error    { return newErr(KindNotFound, msg, data) }
func Capacity(msg string, data any) *Error    { return newErr(KindCapacity, msg, data) }
func Timeout(msg string, data any) *Error     { return newErr(KindTimeout, msg, data) }
func Transport(msg string, data any) *Error   { return newErr(KindTransport, msg, data) }
func Sandbox(msg string, data any) *Error     { return newErr(KindSandbox, msg, data) }
func Consistency(msg string, data any) *Error { return newErr(KindConsistency, msg, data) }
func Fatal(msg string, data any) *Error       { return newErr(KindFatal, msg, data) }
func Internal(msg string, data any) *Error    { return newErr(KindInternal, msg, data) }

// Wrap attaches a causal error to an existing gatewayerr.Error, preserving its
// kind and data while recording the underlying failure for logs.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Data: e.Data, cause: cause}
}

// As extracts a *Error from err, mirroring errors.As without importing it at
// every call site.
func As(err error) (*Error, bool) {
	var ge *Error
	ok := errors.As(err, &ge)
	return ge, ok
}
