package dialogue_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amoghasbhardwaj/botlang/recognizer"
)

var _ = Describe("Dialogue Engine", func() {
	ctx := context.Background()

	It("runs the hello-bot scenario: enter, transition, final", func() {
		src := `
bot "Hello" {
  intent Hi { patterns: ["hi"] }
  state S initial {
    on_enter { say "hello" }
    when Hi -> E
  }
  state E final {
    on_enter { say "bye" }
  }
}`
		engine, io, _ := buildEngine(src, &recognizer.MockIntentRecognizer{})
		Expect(startEngine(engine)).To(Succeed())
		Expect(io.outputs).To(Equal([]string{"hello"}))

		Expect(engine.Turn(ctx, "hi")).To(Succeed())
		Expect(io.outputs).To(Equal([]string{"hello", "bye"}))
		Expect(engine.Ended()).To(BeTrue())
	})

	It("stays silent with no fallback, then uses fallback once added", func() {
		src := `
bot "Hello" {
  intent Hi { patterns: ["hi"] }
  state S initial {
    on_enter { say "hello" }
    when Hi -> E
    fallback { say "?" }
  }
  state E final {
    on_enter { say "bye" }
  }
}`
		engine, io, _ := buildEngine(src, &recognizer.MockIntentRecognizer{})
		Expect(startEngine(engine)).To(Succeed())
		Expect(io.outputs).To(Equal([]string{"hello"}))

		Expect(engine.Turn(ctx, "abc")).To(Succeed())
		Expect(io.outputs).To(Equal([]string{"hello", "?"}))
		Expect(engine.Ended()).To(BeFalse())
	})

	It("accumulates arithmetic state across repeated transitions", func() {
		src := `
bot "Counter" {
  intent Hi { patterns: ["hi"] }
  var n = 0
  state S initial {
    on_enter { set n = n + 1 say "n=" + str(n) }
    when Hi -> S
  }
}`
		engine, io, _ := buildEngine(src, &recognizer.MockIntentRecognizer{})
		Expect(startEngine(engine)).To(Succeed())

		for i := 0; i < 3; i++ {
			Expect(engine.Turn(ctx, "hi")).To(Succeed())
		}
		Expect(io.outputs).To(Equal([]string{"n=1", "n=2", "n=3", "n=4"}))
	})

	It("does not take a transition whose guard fails", func() {
		src := `
bot "Guarded" {
  intent Hi { patterns: ["hi"] }
  state S initial {
    when Hi -> T if _confidence > 0.5
  }
  state T final {
    on_enter { say "moved" }
  }
}`
		confidence := 0.3
		engine, io, _ := buildEngine(src, &recognizer.MockIntentRecognizer{ConfidenceOverride: &confidence})
		Expect(startEngine(engine)).To(Succeed())

		Expect(engine.Turn(ctx, "hi")).To(Succeed())
		Expect(io.outputs).To(BeEmpty())
		Expect(engine.Ended()).To(BeFalse())
	})

	It("enforces the per-turn state-entry cap on an unconditional self-goto", func() {
		src := `
bot "Loopy" {
  state S initial {
    on_enter { goto S }
  }
}`
		engine, _, _ := buildEngine(src, &recognizer.MockIntentRecognizer{})
		err := startEngine(engine)
		Expect(err).To(HaveOccurred())
	})

	It("honors a Goto from on_exit over the pending transition target", func() {
		src := `
bot "Redirect" {
  intent Hi { patterns: ["hi"] }
  state S initial {
    when Hi -> T
    on_exit { goto U }
  }
  state T final {
    on_enter { say "wrong" }
  }
  state U final {
    on_enter { say "right" }
  }
}`
		engine, io, _ := buildEngine(src, &recognizer.MockIntentRecognizer{})
		Expect(startEngine(engine)).To(Succeed())
		Expect(engine.Turn(ctx, "hi")).To(Succeed())
		Expect(io.outputs).To(Equal([]string{"right"}))
	})
})
