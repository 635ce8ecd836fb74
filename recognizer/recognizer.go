// Package recognizer defines the IntentRecognizer collaborator contract
// and two implementations: a deterministic rule-based matcher and an
// out-of-process plugin transport for network-backed classifiers.
package recognizer

import (
	"context"

	"github.com/amoghasbhardwaj/botlang/ast"
)

// Context carries what an IntentRecognizer is allowed to see about the
// running dialogue: the active state's name and a read-only snapshot of
// global variables. The engine never inspects these itself.
type Context struct {
	StateName string
	Globals   map[string]string
}

// Result is what recognize() returns: the classified intent name (or
// "unknown"), a confidence in [0,1], and any entities extracted from the
// utterance.
type Result struct {
	Intent     string
	Confidence float64
	Entities   map[string]string
}

// IntentRecognizer maps a free-form utterance, together with the active
// bot's intent catalogue and dialogue context, to a Result. The engine
// never inspects Confidence or Entities itself — only scripts do, via
// special variables.
type IntentRecognizer interface {
	Recognize(ctx context.Context, utterance string, intents []*ast.IntentDef, dctx Context) (Result, error)
}

// Unknown is the canonical "no match" result.
func Unknown() Result {
	return Result{Intent: "unknown", Confidence: 0, Entities: map[string]string{}}
}
