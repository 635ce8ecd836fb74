package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTruthy(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", NullValue, false},
		{"false", False, false},
		{"true", True, true},
		{"zero int", Integer{Value: 0}, false},
		{"nonzero int", Integer{Value: 1}, true},
		{"zero float", Float{Value: 0}, false},
		{"empty string", String{Value: ""}, false},
		{"nonempty string", String{Value: "x"}, true},
		{"empty list", &List{}, false},
		{"nonempty list", &List{Items: []Value{Integer{Value: 1}}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, IsTruthy(c.v))
		})
	}
}

func TestEqualCrossNumericType(t *testing.T) {
	assert.True(t, Equal(Integer{Value: 3}, Float{Value: 3.0}))
	assert.False(t, Equal(Integer{Value: 3}, Float{Value: 3.5}))
	assert.False(t, Equal(Integer{Value: 1}, String{Value: "1"}))
}

func TestEqualLists(t *testing.T) {
	a := &List{Items: []Value{Integer{Value: 1}, String{Value: "x"}}}
	b := &List{Items: []Value{Integer{Value: 1}, String{Value: "x"}}}
	c := &List{Items: []Value{Integer{Value: 1}, String{Value: "y"}}}
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
}

func TestToDisplayString(t *testing.T) {
	assert.Equal(t, "null", ToDisplayString(NullValue))
	assert.Equal(t, "true", ToDisplayString(True))
	assert.Equal(t, "false", ToDisplayString(False))
	assert.Equal(t, "42", ToDisplayString(Integer{Value: 42}))
	assert.Equal(t, "[1, 2]", ToDisplayString(&List{Items: []Value{Integer{Value: 1}, Integer{Value: 2}}}))
}

func TestEqualMaps(t *testing.T) {
	a := NewMapFromStrings(map[string]string{"city": "Boston"})
	b := NewMapFromStrings(map[string]string{"city": "Boston"})
	c := NewMapFromStrings(map[string]string{"city": "Reno"})
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, &List{}))
}

func TestMapTruthiness(t *testing.T) {
	assert.False(t, IsTruthy(NewMapFromStrings(map[string]string{})))
	assert.True(t, IsTruthy(NewMapFromStrings(map[string]string{"city": "Boston"})))
}

func TestEnvironmentDefineAndLookup(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", Integer{Value: 1})
	v, ok := env.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, Integer{Value: 1}, v)

	_, ok = env.Lookup("y")
	assert.False(t, ok)
}

func TestEnvironmentAssignWalksOuterFrame(t *testing.T) {
	env := NewEnvironment()
	env.Define("x", Integer{Value: 1})

	env.Push()
	env.Assign("x", Integer{Value: 2})
	v, _ := env.Lookup("x")
	assert.Equal(t, Integer{Value: 2}, v, "assign should update the global frame that already holds x")

	env.Pop()
	v, _ = env.Lookup("x")
	assert.Equal(t, Integer{Value: 2}, v, "the update must be visible after popping back to global")
}

func TestEnvironmentAssignUndefinedCreatesGlobal(t *testing.T) {
	env := NewEnvironment()
	env.Push()
	env.Assign("y", Integer{Value: 9})
	env.Pop()

	v, ok := env.Lookup("y")
	assert.True(t, ok, "assigning an unbound name from a local frame must create it globally")
	assert.Equal(t, Integer{Value: 9}, v)
}

func TestEnvironmentDefineIsLocalOnly(t *testing.T) {
	env := NewEnvironment()
	env.Push()
	env.Define("local", Integer{Value: 5})
	env.Pop()

	_, ok := env.Lookup("local")
	assert.False(t, ok, "a local-frame Define must not leak after Pop")
}
