// Package session wires one running bot to its own Environment, Evaluator
// and Dialogue Engine, and supplies a concurrent Manager and a durable
// store for hosts that need to keep many sessions alive across restarts.
package session

import (
	"context"

	"github.com/amoghasbhardwaj/botlang/ast"
	"github.com/amoghasbhardwaj/botlang/builtin"
	"github.com/amoghasbhardwaj/botlang/dialogue"
	"github.com/amoghasbhardwaj/botlang/eval"
	"github.com/amoghasbhardwaj/botlang/recognizer"
	"github.com/amoghasbhardwaj/botlang/value"
)

// Session is one running conversation: its own Environment (so globals
// and special variables never leak across sessions sharing the same
// immutable *ast.BotDef) and its own Engine.
type Session struct {
	Bot    *ast.BotDef
	Env    *value.Environment
	Engine *dialogue.Engine
}

// New constructs a fresh Session for bot, using io for output/input and
// rec to classify intents.
func New(bot *ast.BotDef, io builtin.IOHandler, rec recognizer.IntentRecognizer) *Session {
	env := value.NewEnvironment()
	ev := eval.New(bot, env, io)
	engine := dialogue.New(bot, ev, rec)
	return &Session{Bot: bot, Env: env, Engine: engine}
}

// Start begins the session: initializes globals and enters the initial
// state.
func (s *Session) Start(ctx context.Context) error {
	return s.Engine.Start(ctx)
}

// Turn processes one utterance.
func (s *Session) Turn(ctx context.Context, text string) error {
	return s.Engine.Turn(ctx, text)
}

// Ended reports whether the session reached a final state.
func (s *Session) Ended() bool {
	return s.Engine.Ended()
}

// ID returns the session's ulid-derived identifier.
func (s *Session) ID() string {
	return s.Engine.SessionID
}
