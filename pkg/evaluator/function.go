package evaluator

import (
	"github.com/thomasrohde/golox/pkg/ast"
)

// Callable is implemented by every value that can appear as the callee of a
// call expression.
type Callable interface {
	Value
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
	Name() string
}

// Function is a user-defined function closed over the scope it was declared in.
type Function struct {
	decl    *ast.Function
	closure *Env
}

func (*Function) loxValue() {}

// NewFunction binds decl to its defining environment.
func NewFunction(decl *ast.Function, closure *Env) *Function {
	return &Function{decl: decl, closure: closure}
}

func (f *Function) Arity() int { return len(f.decl.Params) }

func (f *Function) Name() string { return f.decl.Name.Lexeme }

// Call runs the body in a fresh scope whose parent is the closure, so each
// invocation gets its own parameter bindings.
func (f *Function) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnv(f.closure)
	for i, param := range f.decl.Params {
		env.Define(param.Lexeme, args[i])
	}

	c, err := in.executeBlock(f.decl.Body, env)
	if err != nil {
		return nil, err
	}
	switch c.kind {
	case completionReturn:
		return c.value, nil
	case completionBreak:
		return nil, strayBreak(c.token)
	}
	return LoxNil{}, nil
}

// NativeFunction is a host function exposed to Lox code.
type NativeFunction struct {
	name  string
	arity int
	fn    func(in *Interpreter, args []Value) (Value, error)
}

func (*NativeFunction) loxValue() {}

// NewNative creates a native function. fn receives exactly arity arguments;
// errors it returns should be *RuntimeError so they are reported with a line.
func NewNative(name string, arity int, fn func(in *Interpreter, args []Value) (Value, error)) *NativeFunction {
	return &NativeFunction{name: name, arity: arity, fn: fn}
}

func (n *NativeFunction) Arity() int { return n.arity }

func (n *NativeFunction) Name() string { return n.name }

func (n *NativeFunction) Call(in *Interpreter, args []Value) (Value, error) {
	return n.fn(in, args)
}

// clockNative returns the seconds elapsed since the interpreter was created.
func clockNative(in *Interpreter, _ []Value) (Value, error) {
	return LoxNumber{Value: clockSince(in.start)}, nil
}
