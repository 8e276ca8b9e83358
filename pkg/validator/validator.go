// Package validator implements static checks over a parsed Lox program.
package validator

import (
	"github.com/thomasrohde/golox/pkg/ast"
	"github.com/thomasrohde/golox/pkg/diagnostics"
)

type validator struct {
	diags   []diagnostics.Diagnostic
	fnDepth int
}

// Validate reports statically detectable errors the parser does not catch.
// It currently rejects return statements outside of a function body.
func Validate(stmts []ast.Stmt) []diagnostics.Diagnostic {
	v := &validator{}
	v.validateStatements(stmts)
	return v.diags
}

func (v *validator) validateStatements(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		v.validateStmt(stmt)
	}
}

func (v *validator) validateStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		v.validateStatements(s.Statements)
	case *ast.If:
		v.validateStmt(s.Then)
		if s.Else != nil {
			v.validateStmt(s.Else)
		}
	case *ast.While:
		v.validateStmt(s.Body)
	case *ast.Function:
		v.fnDepth++
		v.validateStatements(s.Body)
		v.fnDepth--
	case *ast.Return:
		if v.fnDepth == 0 {
			v.diags = append(v.diags, diagnostics.MakeDiag(
				diagnostics.EReturnTop, "Can't return from top-level code.",
				s.Keyword.Line, s.Keyword.Lexeme))
		}
	}
}
