// Package dialogue drives the per-bot state machine: start/enter/turn/exit
// as described by the interpreter design, plus the instrumentation
// (structured logging, Prometheus metrics, a tracing span per turn) a
// production deployment of the engine carries.
package dialogue

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/amoghasbhardwaj/botlang/ast"
	"github.com/amoghasbhardwaj/botlang/errs"
	"github.com/amoghasbhardwaj/botlang/eval"
	"github.com/amoghasbhardwaj/botlang/metrics"
	"github.com/amoghasbhardwaj/botlang/recognizer"
	"github.com/amoghasbhardwaj/botlang/value"
)

// maxStateEntriesPerTurn caps chained goto/transition re-entry within a
// single turn; exceeding it is a RuntimeError rather than a stack
// overflow or an infinite loop.
const maxStateEntriesPerTurn = 64

// Engine drives one bot's dialogue session: the current state, the bot
// definition, the shared Evaluator/Environment, and the IntentRecognizer
// collaborator.
type Engine struct {
	SessionID string

	bot        *ast.BotDef
	eval       *eval.Evaluator
	recognizer recognizer.IntentRecognizer
	current    *ast.StateDef
	ended      bool

	log    *logrus.Entry
	tracer trace.Tracer
}

// New constructs an Engine for bot, wiring ev (already bound to bot and
// an Environment) and rec as the intent-classification collaborator.
func New(bot *ast.BotDef, ev *eval.Evaluator, rec recognizer.IntentRecognizer) *Engine {
	sessionID := ulid.Make().String()
	e := &Engine{
		SessionID:  sessionID,
		bot:        bot,
		eval:       ev,
		recognizer: rec,
		log: logrus.WithFields(logrus.Fields{
			"bot":        bot.Name,
			"session_id": sessionID,
		}),
		tracer: otel.Tracer("botlang/dialogue"),
	}
	ev.CurrentState = e.CurrentStateName
	return e
}

// CurrentStateName implements the `current_state()` built-in's data
// source.
func (e *Engine) CurrentStateName() string {
	if e.current == nil {
		return ""
	}
	return e.current.Name
}

// Ended reports whether the session has reached a final state.
func (e *Engine) Ended() bool { return e.ended }

// Start initializes global variables in declaration order, then enters
// the bot's unique initial state.
func (e *Engine) Start(ctx context.Context) error {
	for _, v := range e.bot.Variables {
		var val value.Value = value.NullValue
		if v.Init != nil {
			result, err := e.eval.Eval(v.Init)
			if err != nil {
				return err
			}
			val = result
		}
		e.eval.Env.Define(v.Name, val)
	}

	initial := e.bot.InitialState()
	if initial == nil {
		return errs.Semantic(e.bot.LineNo, "bot %q has no initial state", e.bot.Name)
	}
	e.log.Debug("starting dialogue session")
	return e.enterChain(ctx, initial.Name, new(int))
}

// enterChain runs enter(S), following any chained Goto tail-recursively
// (converted from recursion to a loop so a long goto chain does not grow
// the call stack) while enforcing the per-turn state-entry cap.
func (e *Engine) enterChain(ctx context.Context, stateName string, entries *int) error {
	for {
		*entries++
		if *entries > maxStateEntriesPerTurn {
			return errs.Runtime(e.bot.LineNo, "state-entry cap (%d) exceeded in a single turn", maxStateEntriesPerTurn)
		}

		state, ok := e.bot.StateIndex[stateName]
		if !ok {
			return errs.Semantic(e.bot.LineNo, "goto references unknown state %q", stateName)
		}
		e.current = state
		metrics.StateEntries.WithLabelValues(e.bot.Name, state.Name).Inc()
		e.log.WithField("state", state.Name).Debug("entering state")

		if state.OnEnter != nil {
			sig, err := e.eval.ExecBlock(state.OnEnter)
			if err != nil {
				return err
			}
			if sig.Kind == eval.Goto {
				stateName = sig.State
				continue
			}
		}
		if state.IsFinal {
			e.ended = true
			e.log.Debug("session reached final state")
		}
		return nil
	}
}

// Turn processes one user utterance: classify intent, rewrite the
// special variables, run on_message, find the first matching transition
// (or run fallback), and chase any resulting goto chain.
func (e *Engine) Turn(ctx context.Context, text string) error {
	if e.ended {
		return errs.Runtime(e.bot.LineNo, "session has already reached a final state")
	}

	ctx, span := e.tracer.Start(ctx, "dialogue.turn", trace.WithAttributes(
		attribute.String("bot", e.bot.Name),
		attribute.String("session_id", e.SessionID),
		attribute.String("state", e.CurrentStateName()),
	))
	defer span.End()

	start := time.Now()
	outcome, err := e.turn(ctx, text)
	metrics.TurnDuration.WithLabelValues(e.bot.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RuntimeErrors.WithLabelValues(e.bot.Name).Inc()
		metrics.TurnsProcessed.WithLabelValues(e.bot.Name, "error").Inc()
		e.log.WithError(err).Warn("runtime error during turn")
		return err
	}
	metrics.TurnsProcessed.WithLabelValues(e.bot.Name, outcome).Inc()
	return nil
}

// turn returns the outcome label used for metrics alongside any error.
func (e *Engine) turn(ctx context.Context, text string) (string, error) {
	env := e.eval.Env
	env.Assign("_user_input", value.String{Value: text})

	dctx := recognizer.Context{StateName: e.CurrentStateName(), Globals: e.globalsSnapshot()}
	result, recErr := e.recognizer.Recognize(ctx, text, e.bot.Intents, dctx)
	if recErr != nil {
		// External recognizer failures surface to the script as "unknown",
		// per the external-error contract — not a fatal turn abort.
		e.log.WithError(recErr).Warn("intent recognizer failed, treating as unknown")
		result = recognizer.Unknown()
	}

	env.Assign("_intent", value.String{Value: result.Intent})
	env.Assign("_confidence", value.Float{Value: result.Confidence})
	env.Assign("_entities", value.NewMapFromStrings(result.Entities))

	state := e.current
	entries := new(int)

	if state.OnMessage != nil {
		sig, err := e.eval.ExecBlock(state.OnMessage)
		if err != nil {
			return "", err
		}
		if sig.Kind == eval.Goto {
			return "goto", e.enterChain(ctx, sig.State, entries)
		}
	}

	for _, t := range state.Transitions {
		if t.IntentName != result.Intent {
			continue
		}
		if t.Guard != nil {
			guardVal, err := e.eval.Eval(t.Guard)
			if err != nil {
				return "", err
			}
			if !value.IsTruthy(guardVal) {
				continue
			}
		}
		return "transition", e.exit(ctx, state, t.TargetState, entries)
	}

	if state.Fallback != nil {
		sig, err := e.eval.ExecBlock(state.Fallback)
		if err != nil {
			return "", err
		}
		if sig.Kind == eval.Goto {
			return "goto", e.enterChain(ctx, sig.State, entries)
		}
		return "fallback", nil
	}
	return "silent", nil
}

// exit runs on_exit for the departing state, then enters the transition
// target — unless a Goto inside on_exit supersedes that target, per the
// tie-break rule.
func (e *Engine) exit(ctx context.Context, state *ast.StateDef, target string, entries *int) error {
	if state.OnExit != nil {
		sig, err := e.eval.ExecBlock(state.OnExit)
		if err != nil {
			return err
		}
		if sig.Kind == eval.Goto {
			return e.enterChain(ctx, sig.State, entries)
		}
	}
	return e.enterChain(ctx, target, entries)
}

func (e *Engine) globalsSnapshot() map[string]string {
	out := map[string]string{}
	for _, v := range e.bot.Variables {
		val, ok := e.eval.Env.Lookup(v.Name)
		if !ok {
			continue
		}
		out[v.Name] = value.ToDisplayString(val)
	}
	return out
}
