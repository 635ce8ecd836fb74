package ast

import "testing"

func TestBotDefInitialState(t *testing.T) {
	bot := &BotDef{
		States: []*StateDef{
			{Name: "A"},
			{Name: "B", IsInitial: true},
		},
	}
	got := bot.InitialState()
	if got == nil || got.Name != "B" {
		t.Fatalf("InitialState() = %v, want state B", got)
	}
}

func TestBotDefInitialStateNone(t *testing.T) {
	bot := &BotDef{States: []*StateDef{{Name: "A"}}}
	if got := bot.InitialState(); got != nil {
		t.Fatalf("InitialState() = %v, want nil", got)
	}
}

func TestBinaryExpressionString(t *testing.T) {
	expr := &BinaryExpression{
		Operator: "+",
		Left:     &IntegerLiteral{Value: 1},
		Right:    &IntegerLiteral{Value: 2},
	}
	want := "(1 + 2)"
	if got := expr.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestCallExpressionString(t *testing.T) {
	expr := &CallExpression{
		Name: "f",
		Args: []Expression{&IntegerLiteral{Value: 1}, &StringLiteral{Value: "x"}},
	}
	want := `f(1, "x")`
	if got := expr.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestListLiteralString(t *testing.T) {
	lit := &ListLiteral{Items: []Expression{&IntegerLiteral{Value: 1}, &IntegerLiteral{Value: 2}}}
	want := "[1, 2]"
	if got := lit.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
