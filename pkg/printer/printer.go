// Package printer renders Lox ASTs as canonical source, as Lisp-style
// trees, and in reverse Polish notation.
package printer

import (
	"strconv"
	"strings"

	"github.com/thomasrohde/golox/pkg/ast"
	"github.com/thomasrohde/golox/pkg/lexer"
)

const indent = "  "

// Binding strength of each expression form, loosest first.
const (
	precComma = iota + 1
	precAssign
	precConditional
	precOr
	precAnd
	precEquality
	precComparison
	precAddition
	precMultiplication
	precUnary
	precCall
	precPrimary
)

var binaryPrecedence = map[lexer.TokenType]int{
	lexer.TokComma:        precComma,
	lexer.TokEqualEqual:   precEquality,
	lexer.TokBangEqual:    precEquality,
	lexer.TokGreater:      precComparison,
	lexer.TokGreaterEqual: precComparison,
	lexer.TokLess:         precComparison,
	lexer.TokLessEqual:    precComparison,
	lexer.TokPlus:         precAddition,
	lexer.TokMinus:        precAddition,
	lexer.TokStar:         precMultiplication,
	lexer.TokSlash:        precMultiplication,
}

func precedence(e ast.Expr) int {
	switch expr := e.(type) {
	case *ast.Binary:
		return binaryPrecedence[expr.Operator.Type]
	case *ast.Logical:
		if expr.Operator.Type == lexer.TokOr {
			return precOr
		}
		return precAnd
	case *ast.Assign:
		return precAssign
	case *ast.Conditional:
		return precConditional
	case *ast.Unary:
		return precUnary
	case *ast.Call:
		return precCall
	default:
		return precPrimary
	}
}

// wrap formats child, parenthesizing it when it binds looser than min.
func wrap(child ast.Expr, min int) string {
	s := Expr(child)
	if precedence(child) < min {
		return "(" + s + ")"
	}
	return s
}

// Format pretty-prints statements back to Lox source. Parsing the result
// yields the same tree; desugared for loops come back as a block and while.
func Format(stmts []ast.Stmt) string {
	if len(stmts) == 0 {
		return ""
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments checks if a source string contains Lox comments (// prefix).
// Comments are not kept in the AST, so formatting drops them.
func HasComments(source string) bool {
	inString := false
	for i := 0; i < len(source); i++ {
		switch {
		case source[i] == '"':
			inString = !inString
		case !inString && source[i] == '/' && i+1 < len(source) && source[i+1] == '/':
			return true
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	return strings.Repeat(indent, depth) + formatInline(s, depth)
}

// formatInline formats s without leading indentation, for statements that
// follow "if (...)", "else" or "while (...)" on the same line.
func formatInline(s ast.Stmt, depth int) string {
	switch stmt := s.(type) {
	case *ast.Expression:
		return Expr(stmt.Expression) + ";"
	case *ast.Print:
		return "print " + Expr(stmt.Expression) + ";"
	case *ast.Var:
		if stmt.Initializer == nil {
			return "var " + stmt.Name.Lexeme + ";"
		}
		return "var " + stmt.Name.Lexeme + " = " + Expr(stmt.Initializer) + ";"
	case *ast.Block:
		return formatBlock(stmt.Statements, depth)
	case *ast.If:
		out := "if (" + Expr(stmt.Condition) + ") " + formatInline(stmt.Then, depth)
		if stmt.Else != nil {
			out += " else " + formatInline(stmt.Else, depth)
		}
		return out
	case *ast.While:
		return "while (" + Expr(stmt.Condition) + ") " + formatInline(stmt.Body, depth)
	case *ast.Function:
		params := make([]string, len(stmt.Params))
		for i, p := range stmt.Params {
			params[i] = p.Lexeme
		}
		return "fun " + stmt.Name.Lexeme + "(" + strings.Join(params, ", ") + ") " + formatBlock(stmt.Body, depth)
	case *ast.Return:
		if stmt.Value == nil {
			return "return;"
		}
		return "return " + Expr(stmt.Value) + ";"
	case *ast.Break:
		return "break;"
	}
	return ""
}

func formatBlock(stmts []ast.Stmt, depth int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

// Expr formats an expression as Lox source. Grouping nodes keep their
// parentheses; others are added only where precedence requires them.
func Expr(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.Literal:
		return formatLiteral(expr.Value, true)
	case *ast.Grouping:
		return "(" + Expr(expr.Expression) + ")"
	case *ast.Variable:
		return expr.Name.Lexeme
	case *ast.Assign:
		return expr.Name.Lexeme + " = " + wrap(expr.Value, precAssign)
	case *ast.Unary:
		return expr.Operator.Lexeme + wrap(expr.Right, precUnary)
	case *ast.Binary:
		prec := precedence(expr)
		sep := " " + expr.Operator.Lexeme + " "
		if expr.Operator.Type == lexer.TokComma {
			sep = ", "
		}
		return wrap(expr.Left, prec) + sep + wrap(expr.Right, prec+1)
	case *ast.Logical:
		prec := precedence(expr)
		return wrap(expr.Left, prec) + " " + expr.Operator.Lexeme + " " + wrap(expr.Right, prec+1)
	case *ast.Conditional:
		return wrap(expr.Condition, precOr) + " ? " +
			wrap(expr.Then, precConditional) + " : " + wrap(expr.Else, precConditional)
	case *ast.Call:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = wrap(a, precAssign)
		}
		return wrap(expr.Callee, precCall) + "(" + strings.Join(args, ", ") + ")"
	}
	return ""
}

// formatLiteral renders a literal value. Strings are quoted when printing
// source and left bare in the tree printers.
func formatLiteral(v any, quote bool) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		if quote {
			return `"` + val + `"`
		}
		return val
	}
	return ""
}
