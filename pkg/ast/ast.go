// Package ast defines the Lox AST node types.
package ast

import "github.com/thomasrohde/golox/pkg/lexer"

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Expressions ---

// Literal holds nil, a bool, a float64 or a string.
type Literal struct {
	Value any
}

func (n *Literal) Kind() string { return "Literal" }
func (n *Literal) exprNode()    {}

type Grouping struct {
	Expression Expr
}

func (n *Grouping) Kind() string { return "Grouping" }
func (n *Grouping) exprNode()    {}

type Unary struct {
	Operator lexer.Token
	Right    Expr
}

func (n *Unary) Kind() string { return "Unary" }
func (n *Unary) exprNode()    {}

// Binary covers arithmetic, comparison, equality and the comma operator.
type Binary struct {
	Left     Expr
	Operator lexer.Token
	Right    Expr
}

func (n *Binary) Kind() string { return "Binary" }
func (n *Binary) exprNode()    {}

// Logical is a short-circuiting "and" / "or".
type Logical struct {
	Left     Expr
	Operator lexer.Token
	Right    Expr
}

func (n *Logical) Kind() string { return "Logical" }
func (n *Logical) exprNode()    {}

type Conditional struct {
	Condition Expr
	Then      Expr
	Else      Expr
}

func (n *Conditional) Kind() string { return "Conditional" }
func (n *Conditional) exprNode()    {}

type Variable struct {
	Name lexer.Token
}

func (n *Variable) Kind() string { return "Variable" }
func (n *Variable) exprNode()    {}

type Assign struct {
	Name  lexer.Token
	Value Expr
}

func (n *Assign) Kind() string { return "Assign" }
func (n *Assign) exprNode()    {}

// Call keeps the closing paren token to locate runtime errors.
type Call struct {
	Callee Expr
	Paren  lexer.Token
	Args   []Expr
}

func (n *Call) Kind() string { return "Call" }
func (n *Call) exprNode()    {}

// --- Statements ---

type Expression struct {
	Expression Expr
}

func (n *Expression) Kind() string { return "Expression" }
func (n *Expression) stmtNode()    {}

type Print struct {
	Expression Expr
}

func (n *Print) Kind() string { return "Print" }
func (n *Print) stmtNode()    {}

// Var declares Name; Initializer is nil for "var x;".
type Var struct {
	Name        lexer.Token
	Initializer Expr
}

func (n *Var) Kind() string { return "Var" }
func (n *Var) stmtNode()    {}

type Block struct {
	Statements []Stmt
}

func (n *Block) Kind() string { return "Block" }
func (n *Block) stmtNode()    {}

type If struct {
	Condition Expr
	Then      Stmt
	Else      Stmt // optional
}

func (n *If) Kind() string { return "If" }
func (n *If) stmtNode()    {}

type While struct {
	Condition Expr
	Body      Stmt
}

func (n *While) Kind() string { return "While" }
func (n *While) stmtNode()    {}

type Function struct {
	Name   lexer.Token
	Params []lexer.Token
	Body   []Stmt
}

func (n *Function) Kind() string { return "Function" }
func (n *Function) stmtNode()    {}

// Return carries an optional Value; nil means "return;".
type Return struct {
	Keyword lexer.Token
	Value   Expr
}

func (n *Return) Kind() string { return "Return" }
func (n *Return) stmtNode()    {}

type Break struct {
	Keyword lexer.Token
}

func (n *Break) Kind() string { return "Break" }
func (n *Break) stmtNode()    {}
