// Package value defines the runtime values the Evaluator produces and
// consumes: null, boolean, integer, floating-point, string, list and map
// (the shape `_entities` takes). There are no user-defined types (no
// structs, no pointers) — every Value is one of these seven shapes.
package value

import (
	"fmt"
	"strings"
)

// Type names the runtime category of a Value, used in error messages and
// by the `type`-checking built-ins.
type Type string

const (
	NullType    Type = "null"
	BooleanType Type = "boolean"
	IntegerType Type = "integer"
	FloatType   Type = "float"
	StringType  Type = "string"
	ListType    Type = "list"
	MapType     Type = "map"
)

// Value is any runtime value the Evaluator can produce.
type Value interface {
	Type() Type
	String() string
}

// Null is the sole null value; compare with ==.
type Null struct{}

func (Null) Type() Type     { return NullType }
func (Null) String() string { return "null" }

// NullValue is the canonical Null instance.
var NullValue = Null{}

// Boolean wraps a bool.
type Boolean struct{ Value bool }

func (b Boolean) Type() Type     { return BooleanType }
func (b Boolean) String() string { return fmt.Sprintf("%t", b.Value) }

// True and False are the canonical Boolean instances.
var (
	True  = Boolean{Value: true}
	False = Boolean{Value: false}
)

// BoolOf returns the canonical Boolean for b.
func BoolOf(b bool) Boolean {
	if b {
		return True
	}
	return False
}

// Integer wraps an int64.
type Integer struct{ Value int64 }

func (i Integer) Type() Type     { return IntegerType }
func (i Integer) String() string { return fmt.Sprintf("%d", i.Value) }

// Float wraps a float64.
type Float struct{ Value float64 }

func (f Float) Type() Type     { return FloatType }
func (f Float) String() string { return fmt.Sprintf("%g", f.Value) }

// String wraps a Go string.
type String struct{ Value string }

func (s String) Type() Type     { return StringType }
func (s String) String() string { return s.Value }

// List is a mutable, ordered sequence of Values. Lists are reference
// types: assigning a List copies the reference, not the backing slice,
// so `append`/`pop` mutate shared lists in place.
type List struct{ Items []Value }

func (l *List) Type() Type { return ListType }
func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		if s, ok := it.(String); ok {
			parts[i] = fmt.Sprintf("%q", s.Value)
		} else {
			parts[i] = it.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Map is a string-keyed value mapping, the shape `_entities` takes. There
// is no map literal syntax — Map values only arise from the
// IntentRecognizer collaborator — but Index reads from them like any
// other composite.
type Map struct{ Items map[string]Value }

// NewMapFromStrings builds a Map value from a string-to-string mapping,
// the shape an IntentResult's entities arrive in.
func NewMapFromStrings(entities map[string]string) *Map {
	items := make(map[string]Value, len(entities))
	for k, v := range entities {
		items[k] = String{Value: v}
	}
	return &Map{Items: items}
}

func (m *Map) Type() Type { return MapType }
func (m *Map) String() string {
	parts := make([]string, 0, len(m.Items))
	for k, v := range m.Items {
		parts = append(parts, fmt.Sprintf("%s: %s", k, v.String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ToDisplayString implements the `str(x)` conversion rule: null becomes
// "null", booleans become "true"/"false", numbers use their canonical
// decimal form, and lists/maps recursively display their elements
// unquoted.
func ToDisplayString(v Value) string {
	switch t := v.(type) {
	case Null:
		return "null"
	case Boolean:
		if t.Value {
			return "true"
		}
		return "false"
	case Integer:
		return fmt.Sprintf("%d", t.Value)
	case Float:
		return fmt.Sprintf("%g", t.Value)
	case String:
		return t.Value
	case *List:
		parts := make([]string, len(t.Items))
		for i, it := range t.Items {
			parts[i] = ToDisplayString(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *Map:
		parts := make([]string, 0, len(t.Items))
		for k, it := range t.Items {
			parts = append(parts, k+": "+ToDisplayString(it))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return v.String()
	}
}

// IsTruthy implements the language's truthiness rule: null and false are
// falsy, the integer/float zero is falsy, the empty string and empty
// list are falsy; everything else is truthy.
func IsTruthy(v Value) bool {
	switch t := v.(type) {
	case Null:
		return false
	case Boolean:
		return t.Value
	case Integer:
		return t.Value != 0
	case Float:
		return t.Value != 0
	case String:
		return t.Value != ""
	case *List:
		return len(t.Items) > 0
	case *Map:
		return len(t.Items) > 0
	default:
		return true
	}
}

// Equal implements the `==`/`!=` operator's equality rule: same dynamic
// type required except integer/float, which compare numerically across
// types.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x.Value == y.Value
	case String:
		y, ok := b.(String)
		return ok && x.Value == y.Value
	case Integer:
		switch y := b.(type) {
		case Integer:
			return x.Value == y.Value
		case Float:
			return float64(x.Value) == y.Value
		}
		return false
	case Float:
		switch y := b.(type) {
		case Integer:
			return x.Value == float64(y.Value)
		case Float:
			return x.Value == y.Value
		}
		return false
	case *List:
		y, ok := b.(*List)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	case *Map:
		y, ok := b.(*Map)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for k, v := range x.Items {
			yv, ok := y.Items[k]
			if !ok || !Equal(v, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
