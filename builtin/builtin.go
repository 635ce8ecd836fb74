// Package builtin implements the fixed, name-indexed built-in function
// table: string, conversion, list, math and utility functions available
// to every bot script without a `func` declaration.
package builtin

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/amoghasbhardwaj/botlang/errs"
	"github.com/amoghasbhardwaj/botlang/value"
)

// IOHandler is the interactive-shell collaborator: the evaluator and the
// `print` built-in call into it and never assume anything about the
// transport behind it (a terminal, a socket, a test double).
type IOHandler interface {
	// Output emits a line to the user.
	Output(text string)
	// Input emits prompt, then returns one line of user input with its
	// trailing newline stripped.
	Input(prompt string) (string, error)
	// Debug is an optional diagnostic channel; implementations may no-op.
	Debug(text string)
}

// Context carries the state a handful of built-ins need beyond their
// arguments: `print` writes to the debug channel, `current_state` reads
// the Dialogue Engine's current state.
type Context struct {
	IO           IOHandler
	CurrentState func() string
}

// Func is the signature every built-in implements.
type Func func(ctx *Context, args []value.Value, line int) (value.Value, error)

// Table maps built-in name to implementation.
var Table = map[string]Func{
	"length":        biLength,
	"upper":         biUpper,
	"lower":         biLower,
	"trim":          biTrim,
	"contains":      biContains,
	"startswith":    biStartsWith,
	"endswith":      biEndsWith,
	"replace":       biReplace,
	"split":         biSplit,
	"join":          biJoin,
	"str":           biStr,
	"int":           biInt,
	"float":         biFloat,
	"bool":          biBool,
	"first":         biFirst,
	"last":          biLast,
	"append":        biAppend,
	"pop":           biPop,
	"slice":         biSlice,
	"abs":           biAbs,
	"min":           biMin,
	"max":           biMax,
	"round":         biRound,
	"print":         biPrint,
	"format":        biFormat,
	"match":         biMatch,
	"current_state": biCurrentState,
}

// Lookup reports the Func registered under name, if any.
func Lookup(name string) (Func, bool) {
	f, ok := Table[name]
	return f, ok
}

func arityErr(line int, name string, want, got int) error {
	return errs.Runtime(line, "%s expects %d argument(s), got %d", name, want, got)
}

func typeErr(line int, name string, argIdx int, want value.Type, got value.Value) error {
	return errs.Runtime(line, "%s argument %d: expected %s, got %s", name, argIdx+1, want, got.Type())
}

// ---------------------------------------------------------------------------
// String built-ins
// ---------------------------------------------------------------------------

func biLength(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityErr(line, "length", 1, len(args))
	}
	switch v := args[0].(type) {
	case value.String:
		return value.Integer{Value: int64(len([]rune(v.Value)))}, nil
	case *value.List:
		return value.Integer{Value: int64(len(v.Items))}, nil
	default:
		return nil, errs.Runtime(line, "length: expected string or list, got %s", v.Type())
	}
}

func biUpper(ctx *Context, args []value.Value, line int) (value.Value, error) {
	s, err := stringArg(args, line, "upper", 0)
	if err != nil {
		return nil, err
	}
	return value.String{Value: strings.ToUpper(s)}, nil
}

func biLower(ctx *Context, args []value.Value, line int) (value.Value, error) {
	s, err := stringArg(args, line, "lower", 0)
	if err != nil {
		return nil, err
	}
	return value.String{Value: strings.ToLower(s)}, nil
}

func biTrim(ctx *Context, args []value.Value, line int) (value.Value, error) {
	s, err := stringArg(args, line, "trim", 0)
	if err != nil {
		return nil, err
	}
	return value.String{Value: strings.TrimSpace(s)}, nil
}

func biContains(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityErr(line, "contains", 2, len(args))
	}
	s, err := stringArg(args, line, "contains", 0)
	if err != nil {
		return nil, err
	}
	sub, err := stringArg(args, line, "contains", 1)
	if err != nil {
		return nil, err
	}
	return value.BoolOf(strings.Contains(s, sub)), nil
}

func biStartsWith(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityErr(line, "startswith", 2, len(args))
	}
	s, err := stringArg(args, line, "startswith", 0)
	if err != nil {
		return nil, err
	}
	p, err := stringArg(args, line, "startswith", 1)
	if err != nil {
		return nil, err
	}
	return value.BoolOf(strings.HasPrefix(s, p)), nil
}

func biEndsWith(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityErr(line, "endswith", 2, len(args))
	}
	s, err := stringArg(args, line, "endswith", 0)
	if err != nil {
		return nil, err
	}
	p, err := stringArg(args, line, "endswith", 1)
	if err != nil {
		return nil, err
	}
	return value.BoolOf(strings.HasSuffix(s, p)), nil
}

func biReplace(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 3 {
		return nil, arityErr(line, "replace", 3, len(args))
	}
	s, err := stringArg(args, line, "replace", 0)
	if err != nil {
		return nil, err
	}
	a, err := stringArg(args, line, "replace", 1)
	if err != nil {
		return nil, err
	}
	b, err := stringArg(args, line, "replace", 2)
	if err != nil {
		return nil, err
	}
	return value.String{Value: strings.ReplaceAll(s, a, b)}, nil
}

func biSplit(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityErr(line, "split", 2, len(args))
	}
	s, err := stringArg(args, line, "split", 0)
	if err != nil {
		return nil, err
	}
	sep, err := stringArg(args, line, "split", 1)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(s, sep)
	items := make([]value.Value, len(parts))
	for i, p := range parts {
		items[i] = value.String{Value: p}
	}
	return &value.List{Items: items}, nil
}

func biJoin(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityErr(line, "join", 2, len(args))
	}
	list, ok := args[0].(*value.List)
	if !ok {
		return nil, typeErr(line, "join", 0, value.ListType, args[0])
	}
	sep, err := stringArg(args, line, "join", 1)
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(list.Items))
	for i, it := range list.Items {
		parts[i] = value.ToDisplayString(it)
	}
	return value.String{Value: strings.Join(parts, sep)}, nil
}

func stringArg(args []value.Value, line int, name string, idx int) (string, error) {
	if idx >= len(args) {
		return "", arityErr(line, name, idx+1, len(args))
	}
	s, ok := args[idx].(value.String)
	if !ok {
		return "", typeErr(line, name, idx, value.StringType, args[idx])
	}
	return s.Value, nil
}

// ---------------------------------------------------------------------------
// Conversion built-ins
// ---------------------------------------------------------------------------

func biStr(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityErr(line, "str", 1, len(args))
	}
	return value.String{Value: value.ToDisplayString(args[0])}, nil
}

func biInt(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityErr(line, "int", 1, len(args))
	}
	switch v := args[0].(type) {
	case value.Integer:
		return v, nil
	case value.Float:
		return value.Integer{Value: int64(v.Value)}, nil
	case value.Boolean:
		if v.Value {
			return value.Integer{Value: 1}, nil
		}
		return value.Integer{Value: 0}, nil
	case value.String:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Value), 10, 64)
		if err != nil {
			return nil, errs.Runtime(line, "int: %q is not a base-10 integer", v.Value)
		}
		return value.Integer{Value: n}, nil
	default:
		return nil, errs.Runtime(line, "int: cannot convert %s", v.Type())
	}
}

func biFloat(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityErr(line, "float", 1, len(args))
	}
	switch v := args[0].(type) {
	case value.Float:
		return v, nil
	case value.Integer:
		return value.Float{Value: float64(v.Value)}, nil
	case value.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Value), 64)
		if err != nil {
			return nil, errs.Runtime(line, "float: %q is not a number", v.Value)
		}
		return value.Float{Value: f}, nil
	default:
		return nil, errs.Runtime(line, "float: cannot convert %s", v.Type())
	}
}

func biBool(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityErr(line, "bool", 1, len(args))
	}
	return value.BoolOf(value.IsTruthy(args[0])), nil
}

// ---------------------------------------------------------------------------
// List built-ins
// ---------------------------------------------------------------------------

func listArg(args []value.Value, line int, name string, idx int) (*value.List, error) {
	if idx >= len(args) {
		return nil, arityErr(line, name, idx+1, len(args))
	}
	l, ok := args[idx].(*value.List)
	if !ok {
		return nil, typeErr(line, name, idx, value.ListType, args[idx])
	}
	return l, nil
}

func biFirst(ctx *Context, args []value.Value, line int) (value.Value, error) {
	l, err := listArg(args, line, "first", 0)
	if err != nil {
		return nil, err
	}
	if len(l.Items) == 0 {
		return nil, errs.Runtime(line, "first: list is empty")
	}
	return l.Items[0], nil
}

func biLast(ctx *Context, args []value.Value, line int) (value.Value, error) {
	l, err := listArg(args, line, "last", 0)
	if err != nil {
		return nil, err
	}
	if len(l.Items) == 0 {
		return nil, errs.Runtime(line, "last: list is empty")
	}
	return l.Items[len(l.Items)-1], nil
}

func biAppend(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityErr(line, "append", 2, len(args))
	}
	l, err := listArg(args, line, "append", 0)
	if err != nil {
		return nil, err
	}
	l.Items = append(l.Items, args[1])
	return l, nil
}

func biPop(ctx *Context, args []value.Value, line int) (value.Value, error) {
	l, err := listArg(args, line, "pop", 0)
	if err != nil {
		return nil, err
	}
	if len(l.Items) == 0 {
		return nil, errs.Runtime(line, "pop: list is empty")
	}
	last := l.Items[len(l.Items)-1]
	l.Items = l.Items[:len(l.Items)-1]
	return last, nil
}

func biSlice(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 3 {
		return nil, arityErr(line, "slice", 3, len(args))
	}
	l, err := listArg(args, line, "slice", 0)
	if err != nil {
		return nil, err
	}
	start, ok := args[1].(value.Integer)
	if !ok {
		return nil, typeErr(line, "slice", 1, value.IntegerType, args[1])
	}
	end, ok := args[2].(value.Integer)
	if !ok {
		return nil, typeErr(line, "slice", 2, value.IntegerType, args[2])
	}
	n := int64(len(l.Items))
	s := clamp(start.Value, 0, n)
	e := clamp(end.Value, 0, n)
	if e < s {
		e = s
	}
	out := make([]value.Value, e-s)
	copy(out, l.Items[s:e])
	return &value.List{Items: out}, nil
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ---------------------------------------------------------------------------
// Math built-ins
// ---------------------------------------------------------------------------

func biAbs(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityErr(line, "abs", 1, len(args))
	}
	switch v := args[0].(type) {
	case value.Integer:
		if v.Value < 0 {
			return value.Integer{Value: -v.Value}, nil
		}
		return v, nil
	case value.Float:
		return value.Float{Value: math.Abs(v.Value)}, nil
	default:
		return nil, typeErr(line, "abs", 0, value.IntegerType, v)
	}
}

func numericPair(args []value.Value, line int, name string) (float64, float64, bool, error) {
	if len(args) != 2 {
		return 0, 0, false, arityErr(line, name, 2, len(args))
	}
	af, aIsFloat, err := asNumber(args[0], line, name, 0)
	if err != nil {
		return 0, 0, false, err
	}
	bf, bIsFloat, err := asNumber(args[1], line, name, 1)
	if err != nil {
		return 0, 0, false, err
	}
	return af, bf, aIsFloat || bIsFloat, nil
}

func asNumber(v value.Value, line int, name string, idx int) (float64, bool, error) {
	switch n := v.(type) {
	case value.Integer:
		return float64(n.Value), false, nil
	case value.Float:
		return n.Value, true, nil
	default:
		return 0, false, typeErr(line, name, idx, value.IntegerType, v)
	}
}

func biMin(ctx *Context, args []value.Value, line int) (value.Value, error) {
	a, b, isFloat, err := numericPair(args, line, "min")
	if err != nil {
		return nil, err
	}
	r := math.Min(a, b)
	if isFloat {
		return value.Float{Value: r}, nil
	}
	return value.Integer{Value: int64(r)}, nil
}

func biMax(ctx *Context, args []value.Value, line int) (value.Value, error) {
	a, b, isFloat, err := numericPair(args, line, "max")
	if err != nil {
		return nil, err
	}
	r := math.Max(a, b)
	if isFloat {
		return value.Float{Value: r}, nil
	}
	return value.Integer{Value: int64(r)}, nil
}

func biRound(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 1 {
		return nil, arityErr(line, "round", 1, len(args))
	}
	f, _, err := asNumber(args[0], line, "round", 0)
	if err != nil {
		return nil, err
	}
	return value.Integer{Value: int64(math.Round(f))}, nil
}

// ---------------------------------------------------------------------------
// Utility built-ins
// ---------------------------------------------------------------------------

func biPrint(ctx *Context, args []value.Value, line int) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.ToDisplayString(a)
	}
	if ctx != nil && ctx.IO != nil {
		ctx.IO.Debug(strings.Join(parts, " "))
	}
	return value.NullValue, nil
}

func biFormat(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) < 1 {
		return nil, arityErr(line, "format", 1, len(args))
	}
	tmpl, ok := args[0].(value.String)
	if !ok {
		return nil, typeErr(line, "format", 0, value.StringType, args[0])
	}
	var out strings.Builder
	rest := args[1:]
	idx := 0
	s := tmpl.Value
	for {
		i := strings.Index(s, "{}")
		if i == -1 {
			out.WriteString(s)
			break
		}
		out.WriteString(s[:i])
		if idx < len(rest) {
			out.WriteString(value.ToDisplayString(rest[idx]))
			idx++
		}
		s = s[i+2:]
	}
	return value.String{Value: out.String()}, nil
}

func biMatch(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 2 {
		return nil, arityErr(line, "match", 2, len(args))
	}
	pat, err := stringArg(args, line, "match", 0)
	if err != nil {
		return nil, err
	}
	s, err := stringArg(args, line, "match", 1)
	if err != nil {
		return nil, err
	}
	re, rerr := regexp.Compile(pat)
	if rerr != nil {
		return nil, errs.Runtime(line, "match: invalid pattern %q: %v", pat, rerr)
	}
	return value.BoolOf(re.MatchString(s)), nil
}

func biCurrentState(ctx *Context, args []value.Value, line int) (value.Value, error) {
	if len(args) != 0 {
		return nil, arityErr(line, "current_state", 0, len(args))
	}
	if ctx == nil || ctx.CurrentState == nil {
		return value.NullValue, nil
	}
	return value.String{Value: ctx.CurrentState()}, nil
}
