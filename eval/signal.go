package eval

import "github.com/amoghasbhardwaj/botlang/value"

// SignalKind distinguishes the three ways executing a block can end.
type SignalKind int

const (
	// Normal means the block ran to completion with no escape.
	Normal SignalKind = iota
	// Return means a `return` statement fired; Value holds its result.
	Return
	// Goto means a `goto` statement fired; State names the target.
	Goto
)

// Signal is the non-local control-flow result of executing a statement
// or block. Every composite statement (if/while/for/block) propagates a
// non-Normal Signal upward unchanged, until it is caught by a function
// call boundary (Return) or the Dialogue Engine (Goto).
type Signal struct {
	Kind  SignalKind
	Value value.Value // meaningful only when Kind == Return
	State string      // meaningful only when Kind == Goto
}

// NormalSignal is the canonical "keep going" result.
var NormalSignal = Signal{Kind: Normal}

// ReturnSignal builds a Return signal carrying v.
func ReturnSignal(v value.Value) Signal { return Signal{Kind: Return, Value: v} }

// GotoSignal builds a Goto signal targeting state.
func GotoSignal(state string) Signal { return Signal{Kind: Goto, State: state} }
