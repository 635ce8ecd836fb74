package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amoghasbhardwaj/botlang/value"
)

func call(t *testing.T, name string, args ...value.Value) value.Value {
	t.Helper()
	fn, ok := Lookup(name)
	require.True(t, ok, "built-in %q not registered", name)
	v, err := fn(nil, args, 1)
	require.NoError(t, err)
	return v
}

func TestStringBuiltins(t *testing.T) {
	assert.Equal(t, value.Integer{Value: 5}, call(t, "length", value.String{Value: "hello"}))
	assert.Equal(t, value.String{Value: "HELLO"}, call(t, "upper", value.String{Value: "hello"}))
	assert.Equal(t, value.String{Value: "hello"}, call(t, "lower", value.String{Value: "HELLO"}))
	assert.Equal(t, value.String{Value: "hi"}, call(t, "trim", value.String{Value: "  hi  "}))
	assert.Equal(t, value.True, call(t, "contains", value.String{Value: "hello"}, value.String{Value: "ell"}))
	assert.Equal(t, value.True, call(t, "startswith", value.String{Value: "hello"}, value.String{Value: "he"}))
	assert.Equal(t, value.True, call(t, "endswith", value.String{Value: "hello"}, value.String{Value: "lo"}))
	assert.Equal(t, value.String{Value: "hexxo"}, call(t, "replace", value.String{Value: "hello"}, value.String{Value: "ll"}, value.String{Value: "xx"}))
}

func TestSplitAndJoin(t *testing.T) {
	split := call(t, "split", value.String{Value: "a,b,c"}, value.String{Value: ","})
	list, ok := split.(*value.List)
	require.True(t, ok)
	require.Len(t, list.Items, 3)

	joined := call(t, "join", list, value.String{Value: "-"})
	assert.Equal(t, value.String{Value: "a-b-c"}, joined)
}

func TestConversionBuiltins(t *testing.T) {
	assert.Equal(t, value.String{Value: "42"}, call(t, "str", value.Integer{Value: 42}))
	assert.Equal(t, value.String{Value: "null"}, call(t, "str", value.NullValue))
	assert.Equal(t, value.Integer{Value: 3}, call(t, "int", value.Float{Value: 3.9}))
	assert.Equal(t, value.Integer{Value: 7}, call(t, "int", value.String{Value: "7"}))
	assert.Equal(t, value.Float{Value: 2.5}, call(t, "float", value.String{Value: "2.5"}))
	assert.Equal(t, value.True, call(t, "bool", value.Integer{Value: 1}))
	assert.Equal(t, value.False, call(t, "bool", value.Integer{Value: 0}))
}

func TestCoercionIdempotence(t *testing.T) {
	x := value.Integer{Value: 7}
	once := call(t, "str", x)
	twice := call(t, "str", once)
	assert.Equal(t, once, twice)

	i1 := call(t, "int", x)
	i2 := call(t, "int", i1)
	assert.Equal(t, i1, i2)
}

func TestListBuiltins(t *testing.T) {
	list := &value.List{Items: []value.Value{value.Integer{Value: 1}, value.Integer{Value: 2}, value.Integer{Value: 3}}}
	assert.Equal(t, value.Integer{Value: 1}, call(t, "first", list))
	assert.Equal(t, value.Integer{Value: 3}, call(t, "last", list))

	appended := call(t, "append", list, value.Integer{Value: 4})
	assert.Equal(t, appended, list, "append mutates and returns the same list")
	assert.Len(t, list.Items, 4)

	popped := call(t, "pop", list)
	assert.Equal(t, value.Integer{Value: 4}, popped)
	assert.Len(t, list.Items, 3)

	sliced := call(t, "slice", list, value.Integer{Value: 0}, value.Integer{Value: 2})
	slicedList := sliced.(*value.List)
	assert.Len(t, slicedList.Items, 2)
}

func TestSliceClampsOutOfRange(t *testing.T) {
	list := &value.List{Items: []value.Value{value.Integer{Value: 1}, value.Integer{Value: 2}}}
	sliced := call(t, "slice", list, value.Integer{Value: -5}, value.Integer{Value: 50})
	slicedList := sliced.(*value.List)
	assert.Len(t, slicedList.Items, 2)
}

func TestMathBuiltins(t *testing.T) {
	assert.Equal(t, value.Integer{Value: 5}, call(t, "abs", value.Integer{Value: -5}))
	assert.Equal(t, value.Integer{Value: 2}, call(t, "min", value.Integer{Value: 2}, value.Integer{Value: 5}))
	assert.Equal(t, value.Integer{Value: 5}, call(t, "max", value.Integer{Value: 2}, value.Integer{Value: 5}))
	assert.Equal(t, value.Integer{Value: 3}, call(t, "round", value.Float{Value: 2.5}))
	assert.Equal(t, value.Integer{Value: -3}, call(t, "round", value.Float{Value: -2.5}))
}

func TestFormatBuiltin(t *testing.T) {
	got := call(t, "format", value.String{Value: "{} has {} items"}, value.String{Value: "cart"}, value.Integer{Value: 3})
	assert.Equal(t, value.String{Value: "cart has 3 items"}, got)
}

func TestMatchBuiltin(t *testing.T) {
	assert.Equal(t, value.True, call(t, "match", value.String{Value: "^h.*o$"}, value.String{Value: "hello"}))
	assert.Equal(t, value.False, call(t, "match", value.String{Value: "^z"}, value.String{Value: "hello"}))
}

func TestArityErrors(t *testing.T) {
	fn, _ := Lookup("length")
	_, err := fn(nil, []value.Value{}, 1)
	require.Error(t, err)
}

func TestCurrentStateBuiltinUsesContext(t *testing.T) {
	fn, _ := Lookup("current_state")
	ctx := &Context{CurrentState: func() string { return "S" }}
	v, err := fn(ctx, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, value.String{Value: "S"}, v)
}
