package token

import "testing"

func TestLookupIdent(t *testing.T) {
	cases := map[string]Type{
		"bot":        BOT,
		"intent":     INTENT,
		"state":      STATE,
		"var":        VAR,
		"func":       FUNC,
		"say":        SAY,
		"ask":        ASK,
		"set":        SET,
		"goto":       GOTO,
		"call":       CALL,
		"return":     RETURN,
		"if":         IF,
		"elif":       ELIF,
		"else":       ELSE,
		"while":      WHILE,
		"for":        FOR,
		"in":         IN,
		"and":        AND,
		"or":         OR,
		"not":        NOT,
		"true":       BOOL,
		"false":      BOOL,
		"null":       NULL,
		"initial":    INITIAL,
		"final":      FINAL,
		"on_enter":   ON_ENTER,
		"when":       WHEN,
		"fallback":   FALLBACK,
		"patterns":   PATTERNS,
		"myVariable": IDENT,
		"_entities":  IDENT,
	}

	for ident, want := range cases {
		if got := LookupIdent(ident); got != want {
			t.Errorf("LookupIdent(%q) = %s, want %s", ident, got, want)
		}
	}
}
