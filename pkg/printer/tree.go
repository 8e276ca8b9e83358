package printer

import (
	"strings"

	"github.com/thomasrohde/golox/pkg/ast"
)

// AST renders an expression as a fully parenthesized prefix tree, e.g.
// "(* (- 123) (group 45.67))".
func AST(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.Literal:
		return formatLiteral(expr.Value, false)
	case *ast.Grouping:
		return parenthesize("group", expr.Expression)
	case *ast.Variable:
		return expr.Name.Lexeme
	case *ast.Assign:
		return parenthesize("= "+expr.Name.Lexeme, expr.Value)
	case *ast.Unary:
		return parenthesize(expr.Operator.Lexeme, expr.Right)
	case *ast.Binary:
		return parenthesize(expr.Operator.Lexeme, expr.Left, expr.Right)
	case *ast.Logical:
		return parenthesize(expr.Operator.Lexeme, expr.Left, expr.Right)
	case *ast.Conditional:
		return parenthesize("if", expr.Condition, expr.Then, expr.Else)
	case *ast.Call:
		return parenthesize("call", append([]ast.Expr{expr.Callee}, expr.Args...)...)
	}
	return ""
}

func parenthesize(name string, exprs ...ast.Expr) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(name)
	for _, e := range exprs {
		b.WriteString(" ")
		b.WriteString(AST(e))
	}
	b.WriteString(")")
	return b.String()
}

// RPN renders an expression in reverse Polish notation, e.g.
// "1 2 + 4 3 - *". Groupings vanish; a conditional prints its branches
// before its condition, followed by "?".
func RPN(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.Literal:
		return formatLiteral(expr.Value, false)
	case *ast.Grouping:
		return RPN(expr.Expression)
	case *ast.Variable:
		return expr.Name.Lexeme
	case *ast.Assign:
		return expr.Name.Lexeme + " " + RPN(expr.Value) + " ="
	case *ast.Unary:
		return RPN(expr.Right) + " " + expr.Operator.Lexeme
	case *ast.Binary:
		return RPN(expr.Left) + " " + RPN(expr.Right) + " " + expr.Operator.Lexeme
	case *ast.Logical:
		return RPN(expr.Left) + " " + RPN(expr.Right) + " " + expr.Operator.Lexeme
	case *ast.Conditional:
		return RPN(expr.Then) + " " + RPN(expr.Else) + " " + RPN(expr.Condition) + " ?"
	case *ast.Call:
		parts := make([]string, 0, len(expr.Args)+2)
		parts = append(parts, RPN(expr.Callee))
		for _, a := range expr.Args {
			parts = append(parts, RPN(a))
		}
		parts = append(parts, "call")
		return strings.Join(parts, " ")
	}
	return ""
}
