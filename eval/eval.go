// Package eval walks the AST: it evaluates expressions to Values and
// executes statements/blocks, yielding a Signal that tells the caller
// whether control fell through, returned, or escaped via goto.
package eval

import (
	"math"
	"strings"

	"github.com/amoghasbhardwaj/botlang/ast"
	"github.com/amoghasbhardwaj/botlang/builtin"
	"github.com/amoghasbhardwaj/botlang/errs"
	"github.com/amoghasbhardwaj/botlang/value"
)

// Evaluator ties together one bot definition, its Environment, and the
// IOHandler collaborator used by say/ask/print.
type Evaluator struct {
	Bot *ast.BotDef
	Env *value.Environment
	IO  builtin.IOHandler

	// CurrentState feeds the `current_state()` built-in; the Dialogue
	// Engine assigns this once it knows its own current state.
	CurrentState func() string
}

// New constructs an Evaluator for bot, using env as its Environment.
func New(bot *ast.BotDef, env *value.Environment, io builtin.IOHandler) *Evaluator {
	return &Evaluator{Bot: bot, Env: env, IO: io}
}

func (e *Evaluator) builtinCtx() *builtin.Context {
	return &builtin.Context{IO: e.IO, CurrentState: e.CurrentState}
}

// ExecBlock runs every statement in block in order, stopping early and
// propagating the first non-Normal Signal.
func (e *Evaluator) ExecBlock(block *ast.Block) (Signal, error) {
	if block == nil {
		return NormalSignal, nil
	}
	for _, stmt := range block.Statements {
		sig, err := e.execStatement(stmt)
		if err != nil {
			return NormalSignal, err
		}
		if sig.Kind != Normal {
			return sig, nil
		}
	}
	return NormalSignal, nil
}

func (e *Evaluator) execStatement(stmt ast.Statement) (Signal, error) {
	switch s := stmt.(type) {
	case *ast.SayStatement:
		v, err := e.Eval(s.Value)
		if err != nil {
			return NormalSignal, err
		}
		e.IO.Output(value.ToDisplayString(v))
		return NormalSignal, nil

	case *ast.AskStatement:
		v, err := e.Eval(s.Prompt)
		if err != nil {
			return NormalSignal, err
		}
		line, ioErr := e.IO.Input(value.ToDisplayString(v))
		if ioErr != nil {
			return NormalSignal, errs.External(s.LineNo, ioErr, "IOHandler.Input")
		}
		e.Env.Assign(s.Target, value.String{Value: line})
		return NormalSignal, nil

	case *ast.SetStatement:
		v, err := e.Eval(s.Value)
		if err != nil {
			return NormalSignal, err
		}
		e.Env.Assign(s.Name, v)
		return NormalSignal, nil

	case *ast.GotoStatement:
		return GotoSignal(s.TargetState), nil

	case *ast.CallStatement:
		_, err := e.Eval(s.Call)
		if err != nil {
			return NormalSignal, err
		}
		return NormalSignal, nil

	case *ast.ReturnStatement:
		if s.Value == nil {
			return ReturnSignal(value.NullValue), nil
		}
		v, err := e.Eval(s.Value)
		if err != nil {
			return NormalSignal, err
		}
		return ReturnSignal(v), nil

	case *ast.IfStatement:
		for _, branch := range s.Branches {
			cond, err := e.Eval(branch.Cond)
			if err != nil {
				return NormalSignal, err
			}
			if value.IsTruthy(cond) {
				return e.ExecBlock(branch.Body)
			}
		}
		if s.Else != nil {
			return e.ExecBlock(s.Else)
		}
		return NormalSignal, nil

	case *ast.WhileStatement:
		for {
			cond, err := e.Eval(s.Cond)
			if err != nil {
				return NormalSignal, err
			}
			if !value.IsTruthy(cond) {
				return NormalSignal, nil
			}
			sig, err := e.ExecBlock(s.Body)
			if err != nil {
				return NormalSignal, err
			}
			if sig.Kind != Normal {
				return sig, nil
			}
		}

	case *ast.ForStatement:
		iter, err := e.Eval(s.Iterable)
		if err != nil {
			return NormalSignal, err
		}
		var items []value.Value
		switch t := iter.(type) {
		case *value.List:
			items = t.Items
		case value.String:
			for _, r := range t.Value {
				items = append(items, value.String{Value: string(r)})
			}
		default:
			return NormalSignal, errs.Runtime(s.LineNo, "for: cannot iterate over %s", iter.Type())
		}
		for _, item := range items {
			e.Env.Assign(s.Var, item)
			sig, err := e.ExecBlock(s.Body)
			if err != nil {
				return NormalSignal, err
			}
			if sig.Kind != Normal {
				return sig, nil
			}
		}
		return NormalSignal, nil

	case *ast.ExpressionStatement:
		_, err := e.Eval(s.Value)
		if err != nil {
			return NormalSignal, err
		}
		return NormalSignal, nil

	default:
		return NormalSignal, errs.Runtime(stmt.Line(), "unhandled statement type %T", stmt)
	}
}

// Eval evaluates expr to a Value.
func (e *Evaluator) Eval(expr ast.Expression) (value.Value, error) {
	switch x := expr.(type) {
	case *ast.IntegerLiteral:
		return value.Integer{Value: x.Value}, nil
	case *ast.FloatLiteral:
		return value.Float{Value: x.Value}, nil
	case *ast.StringLiteral:
		return value.String{Value: x.Value}, nil
	case *ast.BooleanLiteral:
		return value.BoolOf(x.Value), nil
	case *ast.NullLiteral:
		return value.NullValue, nil
	case *ast.ListLiteral:
		items := make([]value.Value, len(x.Items))
		for i, it := range x.Items {
			v, err := e.Eval(it)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return &value.List{Items: items}, nil
	case *ast.Identifier:
		v, ok := e.Env.Lookup(x.Name)
		if !ok {
			return nil, errs.Runtime(x.LineNo, "undefined variable %q", x.Name)
		}
		return v, nil
	case *ast.SpecialVar:
		v, ok := e.Env.Lookup(x.Name)
		if !ok {
			return value.NullValue, nil
		}
		return v, nil
	case *ast.UnaryExpression:
		return e.evalUnary(x)
	case *ast.BinaryExpression:
		return e.evalBinary(x)
	case *ast.CallExpression:
		return e.evalCall(x)
	case *ast.IndexExpression:
		return e.evalIndex(x)
	default:
		return nil, errs.Runtime(expr.Line(), "unhandled expression type %T", expr)
	}
}

func (e *Evaluator) evalUnary(x *ast.UnaryExpression) (value.Value, error) {
	right, err := e.Eval(x.Right)
	if err != nil {
		return nil, err
	}
	switch x.Operator {
	case "-":
		switch r := right.(type) {
		case value.Integer:
			return value.Integer{Value: -r.Value}, nil
		case value.Float:
			return value.Float{Value: -r.Value}, nil
		default:
			return nil, errs.Runtime(x.LineNo, "unary -: expected number, got %s", r.Type())
		}
	case "not":
		return value.BoolOf(!value.IsTruthy(right)), nil
	default:
		return nil, errs.Runtime(x.LineNo, "unknown unary operator %q", x.Operator)
	}
}

func (e *Evaluator) evalBinary(x *ast.BinaryExpression) (value.Value, error) {
	// Short-circuit operators evaluate the right side only when needed,
	// and return whichever operand last determined the result — not a
	// coerced boolean.
	if x.Operator == "and" || x.Operator == "or" {
		left, err := e.Eval(x.Left)
		if err != nil {
			return nil, err
		}
		leftTruthy := value.IsTruthy(left)
		if x.Operator == "and" && !leftTruthy {
			return left, nil
		}
		if x.Operator == "or" && leftTruthy {
			return left, nil
		}
		return e.Eval(x.Right)
	}

	left, err := e.Eval(x.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.Eval(x.Right)
	if err != nil {
		return nil, err
	}

	switch x.Operator {
	case "+":
		return e.evalPlus(x.LineNo, left, right)
	case "-", "*", "/", "%":
		return e.evalArith(x.LineNo, x.Operator, left, right)
	case "==":
		return value.BoolOf(value.Equal(left, right)), nil
	case "!=":
		return value.BoolOf(!value.Equal(left, right)), nil
	case "<", ">", "<=", ">=":
		return e.evalCompare(x.LineNo, x.Operator, left, right)
	default:
		return nil, errs.Runtime(x.LineNo, "unknown binary operator %q", x.Operator)
	}
}

// evalPlus implements the overloaded `+`: numeric addition when both
// sides are numbers, string concatenation when either side is a string
// (the other coerced with str()'s rule). List concatenation is not
// supported.
func (e *Evaluator) evalPlus(line int, left, right value.Value) (value.Value, error) {
	_, leftIsStr := left.(value.String)
	_, rightIsStr := right.(value.String)
	if leftIsStr || rightIsStr {
		return value.String{Value: value.ToDisplayString(left) + value.ToDisplayString(right)}, nil
	}
	return e.evalArith(line, "+", left, right)
}

func (e *Evaluator) evalArith(line int, op string, left, right value.Value) (value.Value, error) {
	lf, lIsFloat, lok := numeric(left)
	rf, rIsFloat, rok := numeric(right)
	if !lok || !rok {
		return nil, errs.Runtime(line, "arithmetic %s: operands must be numbers, got %s and %s", op, left.Type(), right.Type())
	}

	switch op {
	case "+":
		return numResult(lf+rf, lIsFloat || rIsFloat), nil
	case "-":
		return numResult(lf-rf, lIsFloat || rIsFloat), nil
	case "*":
		return numResult(lf*rf, lIsFloat || rIsFloat), nil
	case "/":
		if rf == 0 {
			return nil, errs.Runtime(line, "division by zero")
		}
		result := lf / rf
		isFloat := lIsFloat || rIsFloat || math.Trunc(result) != result
		return numResult(result, isFloat), nil
	case "%":
		if rf == 0 {
			return nil, errs.Runtime(line, "division by zero")
		}
		return numResult(math.Mod(lf, rf), lIsFloat || rIsFloat), nil
	default:
		return nil, errs.Runtime(line, "unknown arithmetic operator %q", op)
	}
}

func numeric(v value.Value) (f float64, isFloat bool, ok bool) {
	switch n := v.(type) {
	case value.Integer:
		return float64(n.Value), false, true
	case value.Float:
		return n.Value, true, true
	default:
		return 0, false, false
	}
}

func numResult(f float64, isFloat bool) value.Value {
	if isFloat {
		return value.Float{Value: f}
	}
	return value.Integer{Value: int64(f)}
}

func (e *Evaluator) evalCompare(line int, op string, left, right value.Value) (value.Value, error) {
	if lf, lIsF, lok := numeric(left); lok {
		if rf, rIsF, rok := numeric(right); rok {
			_ = lIsF
			_ = rIsF
			return value.BoolOf(compareFloat(op, lf, rf)), nil
		}
	}
	if ls, lok := left.(value.String); lok {
		if rs, rok := right.(value.String); rok {
			return value.BoolOf(compareString(op, ls.Value, rs.Value)), nil
		}
	}
	return nil, errs.Runtime(line, "comparison %s: incomparable types %s and %s", op, left.Type(), right.Type())
}

func compareFloat(op string, a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	}
	return false
}

func compareString(op string, a, b string) bool {
	c := strings.Compare(a, b)
	switch op {
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	case ">=":
		return c >= 0
	}
	return false
}

// evalCall resolves name first against the bot's user-defined functions,
// then the built-in table.
func (e *Evaluator) evalCall(x *ast.CallExpression) (value.Value, error) {
	args := make([]value.Value, len(x.Args))
	for i, a := range x.Args {
		v, err := e.Eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if fn, ok := e.Bot.FuncIndex[x.Name]; ok {
		return e.callUserFunc(x.LineNo, fn, args)
	}
	if bi, ok := builtin.Lookup(x.Name); ok {
		return bi(e.builtinCtx(), args, x.LineNo)
	}
	return nil, errs.Runtime(x.LineNo, "call to unknown function %q", x.Name)
}

func (e *Evaluator) callUserFunc(line int, fn *ast.FunctionDef, args []value.Value) (value.Value, error) {
	if len(args) > len(fn.Params) {
		return nil, errs.Runtime(line, "%s: expected at most %d argument(s), got %d", fn.Name, len(fn.Params), len(args))
	}

	e.Env.Push()
	defer e.Env.Pop()

	for i, param := range fn.Params {
		if i < len(args) {
			e.Env.Define(param.Name, args[i])
			continue
		}
		if param.Default == nil {
			return nil, errs.Runtime(line, "%s: missing required argument %q", fn.Name, param.Name)
		}
		dv, err := e.Eval(param.Default)
		if err != nil {
			return nil, err
		}
		e.Env.Define(param.Name, dv)
	}

	sig, err := e.ExecBlock(fn.Body)
	if err != nil {
		return nil, err
	}
	if sig.Kind == Return {
		return sig.Value, nil
	}
	return value.NullValue, nil
}

func (e *Evaluator) evalIndex(x *ast.IndexExpression) (value.Value, error) {
	target, err := e.Eval(x.Target)
	if err != nil {
		return nil, err
	}
	key, err := e.Eval(x.Key)
	if err != nil {
		return nil, err
	}

	switch t := target.(type) {
	case *value.List:
		idx, ok := key.(value.Integer)
		if !ok {
			return nil, errs.Runtime(x.LineNo, "list index must be an integer, got %s", key.Type())
		}
		if idx.Value < 0 || idx.Value >= int64(len(t.Items)) {
			return nil, errs.Runtime(x.LineNo, "index %d out of range (length %d)", idx.Value, len(t.Items))
		}
		return t.Items[idx.Value], nil
	case *value.Map:
		k, ok := key.(value.String)
		if !ok {
			return nil, errs.Runtime(x.LineNo, "map index must be a string, got %s", key.Type())
		}
		if v, ok := t.Items[k.Value]; ok {
			return v, nil
		}
		return value.NullValue, nil
	default:
		return nil, errs.Runtime(x.LineNo, "cannot index %s", target.Type())
	}
}
