package lexer

import (
	"testing"

	"github.com/amoghasbhardwaj/botlang/token"
)

func TestNextTokenStructural(t *testing.T) {
	input := `bot "Demo" { state S initial final { when Hi -> E if _confidence >= 0.5 } }`

	expected := []struct {
		typ     token.Type
		literal string
	}{
		{token.BOT, "bot"},
		{token.STRING, "Demo"},
		{token.LBRACE, "{"},
		{token.STATE, "state"},
		{token.IDENT, "S"},
		{token.INITIAL, "initial"},
		{token.FINAL, "final"},
		{token.LBRACE, "{"},
		{token.WHEN, "when"},
		{token.IDENT, "Hi"},
		{token.ARROW, "->"},
		{token.IDENT, "E"},
		{token.IF, "if"},
		{token.IDENT, "_confidence"},
		{token.GE, ">="},
		{token.FLOAT, "0.5"},
		{token.RBRACE, "}"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, want := range expected {
		got := l.NextToken()
		if got.Type != want.typ {
			t.Fatalf("token %d: type = %s, want %s", i, got.Type, want.typ)
		}
		if got.Literal != want.literal {
			t.Fatalf("token %d: literal = %q, want %q", i, got.Literal, want.literal)
		}
	}
}

func TestNextTokenLineNumbers(t *testing.T) {
	input := "say 1\nsay 2\n\nsay 3"
	wantLines := []int{1, 1, 2, 2, 4, 4}

	l := New(input)
	for i, wantLine := range wantLines {
		tok := l.NextToken()
		if tok.Line != wantLine {
			t.Fatalf("token %d (%q): line = %d, want %d", i, tok.Literal, tok.Line, wantLine)
		}
	}
}

func TestNextTokenComments(t *testing.T) {
	input := "say 1 # trailing comment\nsay 2"
	l := New(input)

	tok := l.NextToken()
	if tok.Type != token.SAY {
		t.Fatalf("expected SAY, got %s", tok.Type)
	}
	tok = l.NextToken()
	if tok.Type != token.INT || tok.Literal != "1" {
		t.Fatalf("expected INT 1, got %s %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.SAY {
		t.Fatalf("comment was not skipped, got %s", tok.Type)
	}
}

func TestNextTokenUnicodeIdentifier(t *testing.T) {
	input := `var 你好 = "hi"`
	l := New(input)

	l.NextToken() // var
	tok := l.NextToken()
	if tok.Type != token.IDENT || tok.Literal != "你好" {
		t.Fatalf("expected unicode identifier 你好, got %s %q", tok.Type, tok.Literal)
	}
}

func TestNextTokenUnterminatedString(t *testing.T) {
	l := New(`say "unterminated`)
	l.NextToken() // say
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL for unterminated string, got %s", tok.Type)
	}
}

func TestNextTokenStringEscapes(t *testing.T) {
	l := New(`"a\nb\t\"c\""`)
	tok := l.NextToken()
	want := "a\nb\t\"c\""
	if tok.Literal != want {
		t.Fatalf("literal = %q, want %q", tok.Literal, want)
	}
}

func TestNextTokenNumbers(t *testing.T) {
	cases := []struct {
		input string
		typ   token.Type
		lit   string
	}{
		{"42", token.INT, "42"},
		{"3.14", token.FLOAT, "3.14"},
		{"3.", token.INT, "3"}, // trailing dot with no digit is not part of the number
	}
	for _, c := range cases {
		l := New(c.input)
		tok := l.NextToken()
		if tok.Type != c.typ || tok.Literal != c.lit {
			t.Errorf("input %q: got %s %q, want %s %q", c.input, tok.Type, tok.Literal, c.typ, c.lit)
		}
	}
}
