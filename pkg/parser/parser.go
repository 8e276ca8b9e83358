// Package parser implements the Lox recursive-descent parser.
//
// Grammar, lowest to highest binding:
//
//	program        → declaration* EOF
//	declaration    → "fun" function | "var" IDENTIFIER ( "=" expression )? ";" | statement
//	statement      → exprStmt | ifStmt | forStmt | returnStmt | printStmt
//	               | whileStmt | breakStmt | block
//	function       → IDENTIFIER "(" parameters? ")" block
//	expression     → comma
//	comma          → assignment ( "," assignment )*
//	assignment     → IDENTIFIER "=" assignment | conditional
//	conditional    → logic_or ( "?" conditional ":" conditional )?
//	logic_or       → logic_and ( "or" logic_and )*
//	logic_and      → equality ( "and" equality )*
//	equality       → comparison ( ( "!=" | "==" ) comparison )*
//	comparison     → addition ( ( ">" | ">=" | "<" | "<=" ) addition )*
//	addition       → multiplication ( ( "+" | "-" ) multiplication )*
//	multiplication → unary ( ( "/" | "*" ) unary )*
//	unary          → ( "!" | "-" ) unary | ( "+" | "/" | "*" ) unary | call
//	call           → primary ( "(" arguments? ")" )*
//	arguments      → assignment ( "," assignment )*
//	primary        → "true" | "false" | "nil" | NUMBER | STRING | IDENTIFIER
//	               | "(" expression ")"
//
// The ( "+" | "/" | "*" ) unary form is an error production: it is reported
// and its operand parsed so later errors are still found.
package parser

import (
	"fmt"

	"github.com/thomasrohde/golox/pkg/ast"
	"github.com/thomasrohde/golox/pkg/diagnostics"
	"github.com/thomasrohde/golox/pkg/lexer"
)

// maxArgs caps both parameter and argument lists.
const maxArgs = 255

type parser struct {
	tokens    []lexer.Token
	pos       int
	diags     []diagnostics.Diagnostic
	loopDepth int
}

// Parse turns an EOF-terminated token slice into statements. A declaration
// containing a syntax error is reported and left out of the result; if any
// diagnostics are returned the statements must not be interpreted.
func Parse(tokens []lexer.Token) ([]ast.Stmt, []diagnostics.Diagnostic) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], lexer.Token{Type: lexer.TokEOF, Line: line})
	}

	p := &parser{tokens: tokens}
	var stmts []ast.Stmt
	for !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.diags
}

// ParseSource tokenizes source and parses it. Scanner diagnostics come
// first, followed by parser diagnostics.
func ParseSource(source string) ([]ast.Stmt, []diagnostics.Diagnostic) {
	tokens, scanDiags := lexer.Tokenize(source)
	stmts, parseDiags := Parse(tokens)
	return stmts, append(scanDiags, parseDiags...)
}

// IsIncomplete reports whether every diagnostic sits at end of input, i.e.
// the source is a valid prefix that more lines could complete.
func IsIncomplete(diags []diagnostics.Diagnostic) bool {
	if len(diags) == 0 {
		return false
	}
	for _, d := range diags {
		if !d.AtEnd {
			return false
		}
	}
	return true
}

// --- Token helpers ---

func (p *parser) current() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) atEnd() bool {
	return p.peek() == lexer.TokEOF
}

func (p *parser) advance() lexer.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *parser) check(typ lexer.TokenType) bool {
	if p.atEnd() {
		return false
	}
	return p.peek() == typ
}

// match consumes the current token if it has one of the given types.
func (p *parser) match(types ...lexer.TokenType) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) expect(typ lexer.TokenType, msg string) (lexer.Token, bool) {
	if p.check(typ) {
		return p.advance(), true
	}
	p.errorAt(p.current(), msg)
	return p.current(), false
}

func (p *parser) errorAt(tok lexer.Token, msg string) {
	if tok.Type == lexer.TokEOF {
		p.diags = append(p.diags, diagnostics.MakeEndDiag(diagnostics.EParse, msg, tok.Line))
		return
	}
	p.diags = append(p.diags, diagnostics.MakeDiag(diagnostics.EParse, msg, tok.Line, tok.Lexeme))
}

// synchronize discards tokens until just past a ';' or just before a
// keyword that starts a statement.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == lexer.TokSemicolon {
			return
		}
		switch p.peek() {
		case lexer.TokClass, lexer.TokFun, lexer.TokVar, lexer.TokFor,
			lexer.TokIf, lexer.TokWhile, lexer.TokPrint, lexer.TokReturn:
			return
		}
		p.advance()
	}
}

// --- Declarations ---

func (p *parser) declaration() ast.Stmt {
	var stmt ast.Stmt
	switch {
	case p.match(lexer.TokFun):
		if fn := p.function("function"); fn != nil {
			stmt = fn
		}
	case p.match(lexer.TokVar):
		stmt = p.varDeclaration()
	default:
		stmt = p.statement()
	}
	if stmt == nil {
		p.synchronize()
	}
	return stmt
}

func (p *parser) function(kind string) *ast.Function {
	name, ok := p.expect(lexer.TokIdentifier, fmt.Sprintf("Expect %s name.", kind))
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokLeftParen, fmt.Sprintf("Expect '(' after %s name.", kind)); !ok {
		return nil
	}

	var params []lexer.Token
	if !p.check(lexer.TokRightParen) {
		for {
			if len(params) >= maxArgs {
				p.errorAt(p.current(), fmt.Sprintf("Can't have more than %d parameters.", maxArgs))
			}
			param, ok := p.expect(lexer.TokIdentifier, "Expect parameter name.")
			if !ok {
				return nil
			}
			params = append(params, param)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}
	if _, ok := p.expect(lexer.TokRightParen, "Expect ')' after parameters."); !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokLeftBrace, fmt.Sprintf("Expect '{' before %s body.", kind)); !ok {
		return nil
	}

	// A break inside the body must not escape to a loop enclosing the declaration.
	enclosingLoops := p.loopDepth
	p.loopDepth = 0
	body, ok := p.block()
	p.loopDepth = enclosingLoops
	if !ok {
		return nil
	}

	return &ast.Function{Name: name, Params: params, Body: body}
}

func (p *parser) varDeclaration() ast.Stmt {
	name, ok := p.expect(lexer.TokIdentifier, "Expect variable name.")
	if !ok {
		return nil
	}

	var init ast.Expr
	if p.match(lexer.TokEqual) {
		init = p.expression()
		if init == nil {
			return nil
		}
	}

	if _, ok := p.expect(lexer.TokSemicolon, "Expect ';' after variable declaration."); !ok {
		return nil
	}
	return &ast.Var{Name: name, Initializer: init}
}

// --- Statements ---

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(lexer.TokFor):
		return p.forStatement()
	case p.match(lexer.TokIf):
		return p.ifStatement()
	case p.match(lexer.TokPrint):
		return p.printStatement()
	case p.match(lexer.TokReturn):
		return p.returnStatement()
	case p.match(lexer.TokWhile):
		return p.whileStatement()
	case p.match(lexer.TokBreak):
		return p.breakStatement()
	case p.match(lexer.TokLeftBrace):
		stmts, ok := p.block()
		if !ok {
			return nil
		}
		return &ast.Block{Statements: stmts}
	default:
		return p.expressionStatement()
	}
}

// forStatement desugars
//
//	for (init; cond; incr) body
//
// into
//
//	{ init; while (cond) { body; incr; } }
func (p *parser) forStatement() ast.Stmt {
	if _, ok := p.expect(lexer.TokLeftParen, "Expect '(' after 'for'."); !ok {
		return nil
	}

	var init ast.Stmt
	switch {
	case p.match(lexer.TokSemicolon):
	case p.match(lexer.TokVar):
		if init = p.varDeclaration(); init == nil {
			return nil
		}
	default:
		if init = p.expressionStatement(); init == nil {
			return nil
		}
	}

	var cond ast.Expr
	if !p.check(lexer.TokSemicolon) {
		if cond = p.expression(); cond == nil {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokSemicolon, "Expect ';' after loop condition."); !ok {
		return nil
	}

	var incr ast.Expr
	if !p.check(lexer.TokRightParen) {
		if incr = p.expression(); incr == nil {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokRightParen, "Expect ')' after for clauses."); !ok {
		return nil
	}

	p.loopDepth++
	body := p.statement()
	p.loopDepth--
	if body == nil {
		return nil
	}

	if incr != nil {
		body = &ast.Block{Statements: []ast.Stmt{body, &ast.Expression{Expression: incr}}}
	}
	if cond == nil {
		cond = &ast.Literal{Value: true}
	}
	body = &ast.While{Condition: cond, Body: body}
	if init != nil {
		body = &ast.Block{Statements: []ast.Stmt{init, body}}
	}
	return body
}

func (p *parser) ifStatement() ast.Stmt {
	if _, ok := p.expect(lexer.TokLeftParen, "Expect '(' after 'if'."); !ok {
		return nil
	}
	cond := p.expression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokRightParen, "Expect ')' after if condition."); !ok {
		return nil
	}

	then := p.statement()
	if then == nil {
		return nil
	}
	var els ast.Stmt
	if p.match(lexer.TokElse) {
		if els = p.statement(); els == nil {
			return nil
		}
	}
	return &ast.If{Condition: cond, Then: then, Else: els}
}

func (p *parser) printStatement() ast.Stmt {
	value := p.expression()
	if value == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokSemicolon, "Expect ';' after value."); !ok {
		return nil
	}
	return &ast.Print{Expression: value}
}

func (p *parser) returnStatement() ast.Stmt {
	keyword := p.previous()
	var value ast.Expr
	if !p.check(lexer.TokSemicolon) {
		if value = p.expression(); value == nil {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokSemicolon, "Expect ';' after return value."); !ok {
		return nil
	}
	return &ast.Return{Keyword: keyword, Value: value}
}

func (p *parser) whileStatement() ast.Stmt {
	if _, ok := p.expect(lexer.TokLeftParen, "Expect '(' after 'while'."); !ok {
		return nil
	}
	cond := p.expression()
	if cond == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokRightParen, "Expect ')' after condition."); !ok {
		return nil
	}

	p.loopDepth++
	body := p.statement()
	p.loopDepth--
	if body == nil {
		return nil
	}
	return &ast.While{Condition: cond, Body: body}
}

func (p *parser) breakStatement() ast.Stmt {
	keyword := p.previous()
	// Reported without unwinding; the enclosing declaration stays intact.
	if p.loopDepth == 0 {
		p.errorAt(keyword, "Can't use 'break' outside of a loop.")
	}
	if _, ok := p.expect(lexer.TokSemicolon, "Expect ';' after 'break'."); !ok {
		return nil
	}
	return &ast.Break{Keyword: keyword}
}

func (p *parser) expressionStatement() ast.Stmt {
	expr := p.expression()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokSemicolon, "Expect ';' after expression."); !ok {
		return nil
	}
	return &ast.Expression{Expression: expr}
}

// block parses declarations up to the closing brace; the opening brace has
// already been consumed.
func (p *parser) block() ([]ast.Stmt, bool) {
	var stmts []ast.Stmt
	for !p.check(lexer.TokRightBrace) && !p.atEnd() {
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if _, ok := p.expect(lexer.TokRightBrace, "Expect '}' after block."); !ok {
		return nil, false
	}
	return stmts, true
}

// --- Expressions ---

func (p *parser) expression() ast.Expr {
	return p.comma()
}

func (p *parser) comma() ast.Expr {
	return p.leftAssoc(p.assignment, lexer.TokComma)
}

func (p *parser) assignment() ast.Expr {
	expr := p.conditional()
	if expr == nil {
		return nil
	}

	if p.match(lexer.TokEqual) {
		equals := p.previous()
		value := p.assignment()
		if value == nil {
			return nil
		}
		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}
		}
		p.errorAt(equals, "Invalid assignment target.")
	}
	return expr
}

// conditional is right-associative: both branches recurse into conditional.
func (p *parser) conditional() ast.Expr {
	cond := p.logicOr()
	if cond == nil {
		return nil
	}
	if !p.match(lexer.TokQuestion) {
		return cond
	}

	then := p.conditional()
	if then == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokColon, "Expect ':' after then branch of conditional expression."); !ok {
		return nil
	}
	els := p.conditional()
	if els == nil {
		return nil
	}
	return &ast.Conditional{Condition: cond, Then: then, Else: els}
}

func (p *parser) logicOr() ast.Expr {
	return p.logical(p.logicAnd, lexer.TokOr)
}

func (p *parser) logicAnd() ast.Expr {
	return p.logical(p.equality, lexer.TokAnd)
}

func (p *parser) logical(next func() ast.Expr, op lexer.TokenType) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}
	for p.match(op) {
		operator := p.previous()
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.Logical{Left: left, Operator: operator, Right: right}
	}
	return left
}

func (p *parser) equality() ast.Expr {
	return p.leftAssoc(p.comparison, lexer.TokBangEqual, lexer.TokEqualEqual)
}

func (p *parser) comparison() ast.Expr {
	return p.leftAssoc(p.addition,
		lexer.TokGreater, lexer.TokGreaterEqual, lexer.TokLess, lexer.TokLessEqual)
}

func (p *parser) addition() ast.Expr {
	return p.leftAssoc(p.multiplication, lexer.TokMinus, lexer.TokPlus)
}

func (p *parser) multiplication() ast.Expr {
	return p.leftAssoc(p.unary, lexer.TokSlash, lexer.TokStar)
}

// leftAssoc parses next ( op next )* into a left-leaning chain of Binary nodes.
func (p *parser) leftAssoc(next func() ast.Expr, ops ...lexer.TokenType) ast.Expr {
	left := next()
	if left == nil {
		return nil
	}
	for p.match(ops...) {
		operator := p.previous()
		right := next()
		if right == nil {
			return nil
		}
		left = &ast.Binary{Left: left, Operator: operator, Right: right}
	}
	return left
}

func (p *parser) unary() ast.Expr {
	if p.match(lexer.TokBang, lexer.TokMinus) {
		operator := p.previous()
		right := p.unary()
		if right == nil {
			return nil
		}
		return &ast.Unary{Operator: operator, Right: right}
	}

	// Binary operator missing its left operand.
	if p.match(lexer.TokPlus, lexer.TokSlash, lexer.TokStar) {
		p.errorAt(p.previous(), "Not allowed as a unary operator.")
		return p.unary()
	}

	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	if expr == nil {
		return nil
	}
	for p.match(lexer.TokLeftParen) {
		if expr = p.finishCall(expr); expr == nil {
			return nil
		}
	}
	return expr
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	if !p.check(lexer.TokRightParen) {
		for {
			if len(args) >= maxArgs {
				p.errorAt(p.current(), fmt.Sprintf("Can't have more than %d arguments.", maxArgs))
			}
			// assignment, not expression: a comma here separates arguments.
			arg := p.assignment()
			if arg == nil {
				return nil
			}
			args = append(args, arg)
			if !p.match(lexer.TokComma) {
				break
			}
		}
	}

	paren, ok := p.expect(lexer.TokRightParen, "Expect ')' after arguments.")
	if !ok {
		return nil
	}
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.match(lexer.TokFalse):
		return &ast.Literal{Value: false}
	case p.match(lexer.TokTrue):
		return &ast.Literal{Value: true}
	case p.match(lexer.TokNil):
		return &ast.Literal{Value: nil}
	case p.match(lexer.TokNumber, lexer.TokString):
		return &ast.Literal{Value: p.previous().Literal}
	case p.match(lexer.TokIdentifier):
		return &ast.Variable{Name: p.previous()}
	case p.match(lexer.TokLeftParen):
		expr := p.expression()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRightParen, "Expect ')' after expression."); !ok {
			return nil
		}
		return &ast.Grouping{Expression: expr}
	}

	p.errorAt(p.current(), "Expect expression.")
	return nil
}
