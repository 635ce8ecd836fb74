// Package errs defines the interpreter's error taxonomy, each kind
// carrying the source line of the node that caused it. Construction goes
// through github.com/samber/oops so every error picks up a stack trace
// and a structured "code" tag that log/metric sinks can key on.
package errs

import (
	"fmt"

	"github.com/samber/oops"
)

// Kind is one of the five taxonomy categories from the error-handling
// design: lexical and parse errors are fatal before a session starts;
// semantic errors are fatal to the session at the point they are
// detected; runtime errors abort only the current turn; external errors
// originate in a collaborator (IOHandler or IntentRecognizer).
type Kind string

const (
	Lexical  Kind = "lexical"
	Parse    Kind = "parse"
	Semantic Kind = "semantic"
	Runtime  Kind = "runtime"
	External Kind = "external"
)

// Error is the interpreter's error type: a Kind, the offending line, and
// a wrapped oops.OopsError carrying the message and stack trace.
type Error struct {
	Kind Kind
	Line int
	err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error at line %d: %s", e.Kind, e.Line, e.err.Error())
}

func (e *Error) Unwrap() error { return e.err }

func build(kind Kind, line int, format string, args ...interface{}) *Error {
	return &Error{
		Kind: kind,
		Line: line,
		err: oops.
			Code(string(kind)).
			With("line", line).
			Errorf(format, args...),
	}
}

// Lex reports a lexical error: unknown character, unterminated string,
// bad escape.
func Lex(line int, format string, args ...interface{}) *Error {
	return build(Lexical, line, format, args...)
}

// ParseErr reports a parse error: unexpected token, unknown intent
// attribute, duplicate state block, missing initial state.
func ParseErr(line int, format string, args ...interface{}) *Error {
	return build(Parse, line, format, args...)
}

// Semantic reports a semantic error: a transition names an unknown state
// or intent.
func Semantic(line int, format string, args ...interface{}) *Error {
	return build(Semantic, line, format, args...)
}

// Runtime reports a runtime error: undefined variable, type mismatch,
// division by zero, index out of range, argument-count mismatch, or
// state-entry cap exceeded.
func Runtime(line int, format string, args ...interface{}) *Error {
	return build(Runtime, line, format, args...)
}

// External wraps a failure originating inside a collaborator (IOHandler
// or IntentRecognizer), preserving the underlying cause.
func External(line int, cause error, context string) *Error {
	return &Error{
		Kind: External,
		Line: line,
		err: oops.
			Code(string(External)).
			With("line", line).
			With("context", context).
			Wrap(cause),
	}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
