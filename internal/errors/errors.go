// Package errors defines the closed set of GSM error kinds and the
// error value that carries them through the VM's stack and sinks.
package errors

import "fmt"

// Kind is the closed set of recoverable error kinds a GSM instruction can
// raise. InternalInvariant is the one kind that is not recoverable: it
// marks a precondition violation rather than a user-facing failure.
type Kind string

const (
	StackUnderflow      Kind = "StackUnderflow"
	TypeMismatch        Kind = "TypeMismatch"
	DivisionByZero      Kind = "DivisionByZero"
	IndexError          Kind = "IndexError"
	UndefinedRef        Kind = "UndefinedRef"
	SubNotSupported     Kind = "SubNotSupported"
	SubRefOnNonStructured Kind = "SubRefOnNonStructured"
	NoLValue            Kind = "NoLValue"
	UnknownFunction     Kind = "UnknownFunction"
	UnknownParam        Kind = "UnknownParam"
	AmbiguousParam      Kind = "AmbiguousParam"
	NoOverloadMatch     Kind = "NoOverloadMatch"
	MissingParam        Kind = "MissingParam"
	HandlerFailure      Kind = "HandlerFailure"
	NonBoolBranch       Kind = "NonBoolBranch"
	InternalInvariant   Kind = "InternalInvariant"
)

// GSMError is a recoverable error, reported to an error sink and also
// representable as a first-class err-kind Value on the operand stack.
type GSMError struct {
	Kind    Kind
	Message string
}

func New(kind Kind, format string, args ...interface{}) *GSMError {
	e := &GSMError{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if kind == InternalInvariant {
		maybeAbort(e)
	}
	return e
}

// Suppressed builds an error with an empty message: the convention (§7) for
// "already reported, don't report again" propagation through the stack.
func Suppressed(kind Kind) *GSMError {
	return &GSMError{Kind: kind}
}

func (e *GSMError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Reported is true when this error carries text that should be written to
// the error sink. An empty message means the error was already reported by
// whoever produced the original failure further down the call chain.
func (e *GSMError) Reported() bool {
	return e.Message != ""
}
