// Package parser implements a recursive-descent parser with Pratt-style
// precedence climbing for expressions, turning a token stream into the
// typed AST. There is no error recovery — the first unexpected token is
// fatal.
package parser

import (
	"strconv"

	"github.com/amoghasbhardwaj/botlang/ast"
	"github.com/amoghasbhardwaj/botlang/errs"
	"github.com/amoghasbhardwaj/botlang/lexer"
	"github.com/amoghasbhardwaj/botlang/token"
)

// Precedence levels, low to high: or < and < equality < relational <
// additive < multiplicative < unary < primary.
const (
	_ int = iota
	LOWEST
	OR_PREC
	AND_PREC
	EQUALITY
	RELATIONAL
	SUM
	PRODUCT
	UNARY
	INDEXP
)

var precedences = map[token.Type]int{
	token.OR:       OR_PREC,
	token.AND:      AND_PREC,
	token.EQ:       EQUALITY,
	token.NEQ:      EQUALITY,
	token.LT:       RELATIONAL,
	token.GT:       RELATIONAL,
	token.LE:       RELATIONAL,
	token.GE:       RELATIONAL,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.STAR:     PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LPAREN:   INDEXP,
	token.LBRACKET: INDEXP,
}

type prefixParseFn func() ast.Expression
type infixParseFn func(ast.Expression) ast.Expression

// Parser holds the state of a single parse. ParseProgram constructs one
// with New and runs it once; the first *errs.Error encountered is fatal
// and stops the parse.
type Parser struct {
	l         *lexer.Lexer
	curToken  token.Token
	peekToken token.Token
	err       *errs.Error

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New constructs a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.IDENT:    p.parseIdentifierOrSpecialVar,
		token.INT:      p.parseIntegerLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.STRING:   p.parseStringLiteral,
		token.BOOL:     p.parseBooleanLiteral,
		token.NULL:     p.parseNullLiteral,
		token.MINUS:    p.parseUnaryExpression,
		token.NOT:      p.parseUnaryExpression,
		token.LPAREN:   p.parseGroupedExpression,
		token.LBRACKET: p.parseListLiteral,
	}

	p.infixParseFns = map[token.Type]infixParseFn{
		token.PLUS:     p.parseBinaryExpression,
		token.MINUS:    p.parseBinaryExpression,
		token.STAR:     p.parseBinaryExpression,
		token.SLASH:    p.parseBinaryExpression,
		token.PERCENT:  p.parseBinaryExpression,
		token.EQ:       p.parseBinaryExpression,
		token.NEQ:      p.parseBinaryExpression,
		token.LT:       p.parseBinaryExpression,
		token.GT:       p.parseBinaryExpression,
		token.LE:       p.parseBinaryExpression,
		token.GE:       p.parseBinaryExpression,
		token.AND:      p.parseBinaryExpression,
		token.OR:       p.parseBinaryExpression,
		token.LPAREN:   p.parseCallExpression,
		token.LBRACKET: p.parseIndexExpression,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Err returns the fatal parse error, if any occurred.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// fail records a fatal ParseError, the kind covering unexpected tokens,
// unknown intent attributes, duplicate blocks, and a missing/duplicate
// initial state. Only the first failure is kept. A failure while the
// current token is ILLEGAL is recorded as a LexicalError naming that token.
func (p *Parser) fail(line int, format string, args ...interface{}) {
	if p.curToken.Type == token.ILLEGAL {
		p.failLex(p.curToken.Line, "illegal token %q", p.curToken.Literal)
		return
	}
	if p.err == nil {
		p.err = errs.ParseErr(line, format, args...)
	}
}

// failLex records a fatal LexicalError — used when the token stream
// itself carries an ILLEGAL token the lexer could not classify.
func (p *Parser) failLex(line int, format string, args ...interface{}) {
	if p.err == nil {
		p.err = errs.Lex(line, format, args...)
	}
}

// failSemantic records a fatal SemanticError — used when a declaration
// references a name that is never actually defined, such as a transition
// naming an intent the bot never declares.
func (p *Parser) failSemantic(line int, format string, args ...interface{}) {
	if p.err == nil {
		p.err = errs.Semantic(line, format, args...)
	}
}

func (p *Parser) failed() bool { return p.err != nil }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peekToken.Type == t }

// expect asserts the current token's type, recording a fatal error naming
// the token and line if it does not match. A current token the lexer
// could not classify (ILLEGAL) is reported as a LexicalError; any other
// mismatch is a ParseError.
func (p *Parser) expect(t token.Type) bool {
	if p.curIs(t) {
		return true
	}
	if p.curToken.Type == token.ILLEGAL {
		p.failLex(p.curToken.Line, "illegal token %q", p.curToken.Literal)
		return false
	}
	p.fail(p.curToken.Line, "unexpected token %s (%q), expected %s", p.curToken.Type, p.curToken.Literal, t)
	return false
}

// expectAndAdvance asserts the current token then advances past it.
func (p *Parser) expectAndAdvance(t token.Type) bool {
	if !p.expect(t) {
		return false
	}
	p.nextToken()
	return true
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the full source as a sequence of bot definitions.
// Returns a nil Program and a non-nil error on the first syntax problem.
func ParseProgram(l *lexer.Lexer) (*ast.Program, error) {
	p := New(l)
	prog := p.parseProgram()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(token.EOF) && !p.failed() {
		prog.Bots = append(prog.Bots, p.parseBot())
	}
	return prog
}

func (p *Parser) parseBot() *ast.BotDef {
	line := p.curToken.Line
	if !p.expectAndAdvance(token.BOT) {
		return nil
	}
	if !p.expect(token.STRING) {
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()
	if !p.expectAndAdvance(token.LBRACE) {
		return nil
	}

	bot := &ast.BotDef{
		LineNo:      line,
		Name:        name,
		IntentIndex: map[string]*ast.IntentDef{},
		StateIndex:  map[string]*ast.StateDef{},
		VarIndex:    map[string]*ast.VariableDef{},
		FuncIndex:   map[string]*ast.FunctionDef{},
	}

	initialCount := 0
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) && !p.failed() {
		switch p.curToken.Type {
		case token.INTENT:
			item := p.parseIntentDef()
			if item != nil {
				if _, exists := bot.IntentIndex[item.Name]; exists {
					p.fail(item.LineNo, "duplicate intent %q", item.Name)
					return bot
				}
				bot.Intents = append(bot.Intents, item)
				bot.IntentIndex[item.Name] = item
			}
		case token.STATE:
			item := p.parseStateDef()
			if item != nil {
				if _, exists := bot.StateIndex[item.Name]; exists {
					p.fail(item.LineNo, "duplicate state %q", item.Name)
					return bot
				}
				bot.States = append(bot.States, item)
				bot.StateIndex[item.Name] = item
				if item.IsInitial {
					initialCount++
				}
			}
		case token.VAR:
			item := p.parseVariableDef()
			if item != nil {
				if _, exists := bot.VarIndex[item.Name]; exists {
					p.fail(item.LineNo, "duplicate var %q", item.Name)
					return bot
				}
				bot.Variables = append(bot.Variables, item)
				bot.VarIndex[item.Name] = item
			}
		case token.FUNC:
			item := p.parseFunctionDef()
			if item != nil {
				if _, exists := bot.FuncIndex[item.Name]; exists {
					p.fail(item.LineNo, "duplicate func %q", item.Name)
					return bot
				}
				bot.Functions = append(bot.Functions, item)
				bot.FuncIndex[item.Name] = item
			}
		default:
			p.fail(p.curToken.Line, "unexpected token %s inside bot body", p.curToken.Type)
			return bot
		}
	}
	if !p.expectAndAdvance(token.RBRACE) {
		return bot
	}

	if len(bot.States) > 0 && initialCount == 0 {
		p.fail(line, "bot %q has no initial state", bot.Name)
	}
	if initialCount > 1 {
		p.fail(line, "bot %q has %d initial states, exactly one is required", bot.Name, initialCount)
	}
	if p.failed() {
		return bot
	}

	for _, state := range bot.States {
		for _, t := range state.Transitions {
			if _, ok := bot.IntentIndex[t.IntentName]; !ok {
				p.failSemantic(t.LineNo, "transition on state %q names undeclared intent %q", state.Name, t.IntentName)
				return bot
			}
		}
	}
	return bot
}

func (p *Parser) parseIntentDef() *ast.IntentDef {
	line := p.curToken.Line
	p.nextToken() // consume 'intent'
	if !p.expect(token.IDENT) {
		return nil
	}
	intent := &ast.IntentDef{LineNo: line, Name: p.curToken.Literal}
	p.nextToken()
	if !p.expectAndAdvance(token.LBRACE) {
		return nil
	}

	seen := map[token.Type]bool{}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) && !p.failed() {
		attr := p.curToken.Type
		if seen[attr] {
			p.fail(p.curToken.Line, "duplicate intent attribute %q", p.curToken.Literal)
			return intent
		}
		switch attr {
		case token.PATTERNS:
			p.nextToken()
			if !p.expectAndAdvance(token.COLON) {
				return intent
			}
			intent.Patterns = p.parseStringListLiteral()
		case token.DESCRIPTION:
			p.nextToken()
			if !p.expectAndAdvance(token.COLON) {
				return intent
			}
			if !p.expect(token.STRING) {
				return intent
			}
			intent.Description = p.curToken.Literal
			p.nextToken()
		case token.EXAMPLES:
			p.nextToken()
			if !p.expectAndAdvance(token.COLON) {
				return intent
			}
			intent.Examples = p.parseStringListLiteral()
		default:
			p.fail(p.curToken.Line, "unknown intent attribute %q", p.curToken.Literal)
			return intent
		}
		seen[attr] = true
	}
	if len(intent.Patterns) == 0 {
		p.fail(line, "intent %q missing required patterns attribute", intent.Name)
	}
	if !p.expectAndAdvance(token.RBRACE) {
		return intent
	}
	return intent
}

// parseStringListLiteral parses `[ "a", "b" ]` as a plain string slice
// (intent attributes are metadata, not expressions).
func (p *Parser) parseStringListLiteral() []string {
	if !p.expectAndAdvance(token.LBRACKET) {
		return nil
	}
	var out []string
	if p.curIs(token.RBRACKET) {
		p.nextToken()
		return out
	}
	for {
		if !p.expect(token.STRING) {
			return out
		}
		out = append(out, p.curToken.Literal)
		p.nextToken()
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectAndAdvance(token.RBRACKET) {
		return out
	}
	return out
}

func (p *Parser) parseStateDef() *ast.StateDef {
	line := p.curToken.Line
	p.nextToken() // consume 'state'
	if !p.expect(token.IDENT) {
		return nil
	}
	state := &ast.StateDef{LineNo: line, Name: p.curToken.Literal}
	p.nextToken()

	for p.curIs(token.INITIAL) || p.curIs(token.FINAL) {
		if p.curIs(token.INITIAL) {
			if state.IsInitial {
				p.fail(p.curToken.Line, "duplicate 'initial' modifier on state %q", state.Name)
				return state
			}
			state.IsInitial = true
		} else {
			if state.IsFinal {
				p.fail(p.curToken.Line, "duplicate 'final' modifier on state %q", state.Name)
				return state
			}
			state.IsFinal = true
		}
		p.nextToken()
	}

	if !p.expectAndAdvance(token.LBRACE) {
		return state
	}

	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) && !p.failed() {
		switch p.curToken.Type {
		case token.ON_ENTER:
			if state.OnEnter != nil {
				p.fail(p.curToken.Line, "duplicate on_enter block on state %q", state.Name)
				return state
			}
			p.nextToken()
			state.OnEnter = p.parseBlock()
		case token.ON_EXIT:
			if state.OnExit != nil {
				p.fail(p.curToken.Line, "duplicate on_exit block on state %q", state.Name)
				return state
			}
			p.nextToken()
			state.OnExit = p.parseBlock()
		case token.ON_MESSAGE:
			if state.OnMessage != nil {
				p.fail(p.curToken.Line, "duplicate on_message block on state %q", state.Name)
				return state
			}
			p.nextToken()
			state.OnMessage = p.parseBlock()
		case token.FALLBACK:
			if state.Fallback != nil {
				p.fail(p.curToken.Line, "duplicate fallback block on state %q", state.Name)
				return state
			}
			p.nextToken()
			state.Fallback = p.parseBlock()
		case token.WHEN:
			t := p.parseTransition()
			if t != nil {
				state.Transitions = append(state.Transitions, t)
			}
		default:
			p.fail(p.curToken.Line, "unexpected token %s inside state %q", p.curToken.Type, state.Name)
			return state
		}
	}
	if !p.expectAndAdvance(token.RBRACE) {
		return state
	}
	return state
}

func (p *Parser) parseTransition() *ast.Transition {
	line := p.curToken.Line
	p.nextToken() // consume 'when'
	if !p.expect(token.IDENT) {
		return nil
	}
	t := &ast.Transition{LineNo: line, IntentName: p.curToken.Literal}
	p.nextToken()
	if !p.expectAndAdvance(token.ARROW) {
		return t
	}
	if !p.expect(token.IDENT) {
		return t
	}
	t.TargetState = p.curToken.Literal
	p.nextToken()
	if p.curIs(token.IF) {
		p.nextToken()
		t.Guard = p.parseExpression(LOWEST)
	}
	return t
}

func (p *Parser) parseVariableDef() *ast.VariableDef {
	line := p.curToken.Line
	p.nextToken() // consume 'var'
	if !p.expect(token.IDENT) {
		return nil
	}
	v := &ast.VariableDef{LineNo: line, Name: p.curToken.Literal}
	p.nextToken()
	if p.curIs(token.ASSIGN) {
		p.nextToken()
		v.Init = p.parseExpression(LOWEST)
	}
	return v
}

func (p *Parser) parseFunctionDef() *ast.FunctionDef {
	line := p.curToken.Line
	p.nextToken() // consume 'func'
	if !p.expect(token.IDENT) {
		return nil
	}
	fn := &ast.FunctionDef{LineNo: line, Name: p.curToken.Literal}
	p.nextToken()
	if !p.expectAndAdvance(token.LPAREN) {
		return fn
	}
	for !p.curIs(token.RPAREN) && !p.failed() {
		if !p.expect(token.IDENT) {
			return fn
		}
		param := &ast.Param{Name: p.curToken.Literal}
		p.nextToken()
		if p.curIs(token.ASSIGN) {
			p.nextToken()
			param.Default = p.parseExpression(LOWEST)
		}
		fn.Params = append(fn.Params, param)
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expectAndAdvance(token.RPAREN) {
		return fn
	}
	fn.Body = p.parseBlock()
	return fn
}

// parseBlock parses `{ stmt* }`.
func (p *Parser) parseBlock() *ast.Block {
	line := p.curToken.Line
	block := &ast.Block{LineNo: line}
	if !p.expectAndAdvance(token.LBRACE) {
		return block
	}
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) && !p.failed() {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
	}
	p.expectAndAdvance(token.RBRACE)
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.SAY:
		return p.parseSayStatement()
	case token.ASK:
		return p.parseAskStatement()
	case token.SET:
		return p.parseSetStatement()
	case token.GOTO:
		return p.parseGotoStatement()
	case token.CALL:
		return p.parseCallStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseSayStatement() ast.Statement {
	line := p.curToken.Line
	p.nextToken()
	return &ast.SayStatement{LineNo: line, Value: p.parseExpression(LOWEST)}
}

func (p *Parser) parseAskStatement() ast.Statement {
	line := p.curToken.Line
	p.nextToken()
	prompt := p.parseExpression(LOWEST)
	if !p.expectAndAdvance(token.ARROW) {
		return &ast.AskStatement{LineNo: line, Prompt: prompt}
	}
	if !p.expect(token.IDENT) {
		return &ast.AskStatement{LineNo: line, Prompt: prompt}
	}
	target := p.curToken.Literal
	p.nextToken()
	return &ast.AskStatement{LineNo: line, Prompt: prompt, Target: target}
}

func (p *Parser) parseSetStatement() ast.Statement {
	line := p.curToken.Line
	p.nextToken()
	if !p.expect(token.IDENT) {
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()
	if !p.expectAndAdvance(token.ASSIGN) {
		return &ast.SetStatement{LineNo: line, Name: name}
	}
	return &ast.SetStatement{LineNo: line, Name: name, Value: p.parseExpression(LOWEST)}
}

func (p *Parser) parseGotoStatement() ast.Statement {
	line := p.curToken.Line
	p.nextToken()
	if !p.expect(token.IDENT) {
		return nil
	}
	target := p.curToken.Literal
	p.nextToken()
	return &ast.GotoStatement{LineNo: line, TargetState: target}
}

func (p *Parser) parseCallStatement() ast.Statement {
	line := p.curToken.Line
	p.nextToken() // consume 'call'
	if !p.expect(token.IDENT) {
		return nil
	}
	call := p.parseIdentifierOrSpecialVar()
	callExpr, ok := p.finishCallIfPresent(call).(*ast.CallExpression)
	if !ok {
		p.fail(line, "expected function call after 'call'")
		return nil
	}
	return &ast.CallStatement{LineNo: line, Call: callExpr}
}

// finishCallIfPresent parses a trailing `(args)` onto expr if the current
// token is '(' — used by the `call` statement, which always names a
// function directly.
func (p *Parser) finishCallIfPresent(expr ast.Expression) ast.Expression {
	if !p.curIs(token.LPAREN) {
		return expr
	}
	return p.parseCallExpression(expr)
}

func (p *Parser) parseReturnStatement() ast.Statement {
	line := p.curToken.Line
	p.nextToken()
	stmt := &ast.ReturnStatement{LineNo: line}
	if p.curIs(token.RBRACE) || p.curIs(token.EOF) {
		return stmt
	}
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	line := p.curToken.Line
	stmt := &ast.IfStatement{LineNo: line}

	p.nextToken() // consume 'if'
	cond := p.parseExpression(LOWEST)
	body := p.parseBlock()
	stmt.Branches = append(stmt.Branches, ast.IfBranch{Cond: cond, Body: body})

	for p.curIs(token.ELIF) {
		p.nextToken()
		c := p.parseExpression(LOWEST)
		b := p.parseBlock()
		stmt.Branches = append(stmt.Branches, ast.IfBranch{Cond: c, Body: b})
	}
	if p.curIs(token.ELSE) {
		p.nextToken()
		stmt.Else = p.parseBlock()
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	line := p.curToken.Line
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	body := p.parseBlock()
	return &ast.WhileStatement{LineNo: line, Cond: cond, Body: body}
}

func (p *Parser) parseForStatement() ast.Statement {
	line := p.curToken.Line
	p.nextToken() // consume 'for'
	if !p.expect(token.IDENT) {
		return nil
	}
	loopVar := p.curToken.Literal
	p.nextToken()
	if !p.expectAndAdvance(token.IN) {
		return nil
	}
	iterable := p.parseExpression(LOWEST)
	body := p.parseBlock()
	return &ast.ForStatement{LineNo: line, Var: loopVar, Iterable: iterable, Body: body}
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	line := p.curToken.Line
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	return &ast.ExpressionStatement{LineNo: line, Value: expr}
}

// parseExpression is the Pratt-parsing core: a prefix parser produces the
// left operand, then infix parsers consume operators whose precedence
// exceeds the caller's floor, building up the tree left-to-right.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.fail(p.curToken.Line, "no prefix parse function for %s (%q)", p.curToken.Type, p.curToken.Literal)
		return nil
	}
	left := prefix()

	for !p.failed() && precedence < p.curPrecedence() {
		infix := p.infixParseFns[p.curToken.Type]
		if infix == nil {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifierOrSpecialVar() ast.Expression {
	line := p.curToken.Line
	name := p.curToken.Literal
	p.nextToken()
	if len(name) > 0 && name[0] == '_' {
		return &ast.SpecialVar{LineNo: line, Name: name}
	}
	return &ast.Identifier{LineNo: line, Name: name}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	line := p.curToken.Line
	val, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		p.fail(line, "invalid integer literal %q", p.curToken.Literal)
		return nil
	}
	p.nextToken()
	return &ast.IntegerLiteral{LineNo: line, Value: val}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	line := p.curToken.Line
	val, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.fail(line, "invalid float literal %q", p.curToken.Literal)
		return nil
	}
	p.nextToken()
	return &ast.FloatLiteral{LineNo: line, Value: val}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	lit := &ast.StringLiteral{LineNo: p.curToken.Line, Value: p.curToken.Literal}
	p.nextToken()
	return lit
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	lit := &ast.BooleanLiteral{LineNo: p.curToken.Line, Value: p.curToken.Literal == "true"}
	p.nextToken()
	return lit
}

func (p *Parser) parseNullLiteral() ast.Expression {
	lit := &ast.NullLiteral{LineNo: p.curToken.Line}
	p.nextToken()
	return lit
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	line := p.curToken.Line
	op := p.curToken.Literal
	p.nextToken()
	return &ast.UnaryExpression{LineNo: line, Operator: op, Right: p.parseExpression(UNARY)}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken() // consume '('
	expr := p.parseExpression(LOWEST)
	p.expectAndAdvance(token.RPAREN)
	return expr
}

func (p *Parser) parseListLiteral() ast.Expression {
	line := p.curToken.Line
	lit := &ast.ListLiteral{LineNo: line}
	p.nextToken() // consume '['
	if p.curIs(token.RBRACKET) {
		p.nextToken()
		return lit
	}
	for {
		lit.Items = append(lit.Items, p.parseExpression(LOWEST))
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expectAndAdvance(token.RBRACKET)
	return lit
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	line := p.curToken.Line
	op := p.curToken.Literal
	precedence := precedences[p.curToken.Type]
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinaryExpression{LineNo: line, Operator: op, Left: left, Right: right}
}

// parseCallExpression requires left to be a plain Identifier — the AST's
// Call node carries a function name, not an arbitrary callee.
func (p *Parser) parseCallExpression(left ast.Expression) ast.Expression {
	line := p.curToken.Line
	ident, ok := left.(*ast.Identifier)
	if !ok {
		p.fail(line, "only a plain name may be called")
		return left
	}
	call := &ast.CallExpression{LineNo: line, Name: ident.Name}
	p.nextToken() // consume '('
	if p.curIs(token.RPAREN) {
		p.nextToken()
		return call
	}
	for {
		call.Args = append(call.Args, p.parseExpression(LOWEST))
		if p.curIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expectAndAdvance(token.RPAREN)
	return call
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	line := p.curToken.Line
	p.nextToken() // consume '['
	key := p.parseExpression(LOWEST)
	p.expectAndAdvance(token.RBRACKET)
	return &ast.IndexExpression{LineNo: line, Target: left, Key: key}
}
