package recognizer

import (
	"context"
	"regexp"
	"strings"

	"github.com/gobwas/glob"

	"github.com/amoghasbhardwaj/botlang/ast"
)

// RuleBased is the deterministic fallback recognizer: for each intent, in
// declaration order, each of its patterns is tried one of three ways: a
// pattern wrapped in `/slashes/` is a regular expression; a pattern
// containing glob metacharacters (`* ? [`) is compiled as a glob; any
// other (bare) pattern is matched as a case-insensitive substring. The
// first intent with a matching pattern wins.
type RuleBased struct {
	cache map[string]matcher
}

// matcher is a compiled pattern's case-insensitive match test.
type matcher func(lowerUtterance string) bool

// NewRuleBased constructs an empty RuleBased recognizer; compiled
// matchers are cached across calls since intent catalogues are immutable
// once parsed.
func NewRuleBased() *RuleBased {
	return &RuleBased{cache: map[string]matcher{}}
}

func (r *RuleBased) compile(pattern string) (matcher, error) {
	if m, ok := r.cache[pattern]; ok {
		return m, nil
	}

	var m matcher
	switch {
	case strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") && len(pattern) >= 2:
		re, err := regexp.Compile("(?i)" + pattern[1:len(pattern)-1])
		if err != nil {
			return nil, err
		}
		m = re.MatchString

	case strings.ContainsAny(pattern, "*?["):
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, err
		}
		m = g.Match

	default:
		needle := strings.ToLower(pattern)
		m = func(lower string) bool { return strings.Contains(lower, needle) }
	}

	r.cache[pattern] = m
	return m, nil
}

// Recognize implements IntentRecognizer.
func (r *RuleBased) Recognize(_ context.Context, utterance string, intents []*ast.IntentDef, _ Context) (Result, error) {
	lower := strings.ToLower(utterance)
	for _, intent := range intents {
		for _, pattern := range intent.Patterns {
			m, err := r.compile(pattern)
			if err != nil {
				continue
			}
			if m(lower) {
				return Result{Intent: intent.Name, Confidence: 1.0, Entities: map[string]string{}}, nil
			}
		}
	}
	return Unknown(), nil
}

// MockIntentRecognizer is the deterministic test double described by the
// end-to-end scenarios: recognize returns the intent whose first pattern
// is a literal substring of the utterance, else "unknown".
type MockIntentRecognizer struct {
	// ConfidenceOverride, if non-nil, is returned instead of 1.0 — used to
	// exercise guard conditions like `_confidence > 0.5`.
	ConfidenceOverride *float64
	EntitiesOverride   map[string]string
}

func (m *MockIntentRecognizer) Recognize(_ context.Context, utterance string, intents []*ast.IntentDef, _ Context) (Result, error) {
	for _, intent := range intents {
		if len(intent.Patterns) == 0 {
			continue
		}
		if strings.Contains(utterance, intent.Patterns[0]) {
			confidence := 1.0
			if m.ConfidenceOverride != nil {
				confidence = *m.ConfidenceOverride
			}
			entities := m.EntitiesOverride
			if entities == nil {
				entities = map[string]string{}
			}
			return Result{Intent: intent.Name, Confidence: confidence, Entities: entities}, nil
		}
	}
	return Unknown(), nil
}
