package dialogue_test

import (
	"context"

	"github.com/amoghasbhardwaj/botlang/ast"
	"github.com/amoghasbhardwaj/botlang/dialogue"
	"github.com/amoghasbhardwaj/botlang/eval"
	"github.com/amoghasbhardwaj/botlang/lexer"
	"github.com/amoghasbhardwaj/botlang/parser"
	"github.com/amoghasbhardwaj/botlang/recognizer"
	"github.com/amoghasbhardwaj/botlang/value"
)

// recordingIO is a deterministic IOHandler double that records every
// output line, used to assert the exact output sequence the end-to-end
// scenarios specify.
type recordingIO struct {
	outputs []string
	inputs  []string
	idx     int
}

func (r *recordingIO) Output(text string) { r.outputs = append(r.outputs, text) }
func (r *recordingIO) Input(prompt string) (string, error) {
	if r.idx >= len(r.inputs) {
		return "", nil
	}
	line := r.inputs[r.idx]
	r.idx++
	return line, nil
}
func (r *recordingIO) Debug(string) {}

// buildEngine parses src (expected to declare exactly one bot), wires a
// fresh Environment/Evaluator/recordingIO, and returns the started Engine
// plus the IO double for output assertions.
func buildEngine(src string, rec recognizer.IntentRecognizer) (*dialogue.Engine, *recordingIO, *ast.BotDef) {
	prog, err := parser.ParseProgram(lexer.New(src))
	if err != nil {
		panic(err)
	}
	bot := prog.Bots[0]
	env := value.NewEnvironment()
	io := &recordingIO{}
	ev := eval.New(bot, env, io)
	engine := dialogue.New(bot, ev, rec)
	return engine, io, bot
}

func startEngine(engine *dialogue.Engine) error {
	return engine.Start(context.Background())
}
