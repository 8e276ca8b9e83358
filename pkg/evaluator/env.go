package evaluator

import (
	"fmt"

	"github.com/thomasrohde/golox/pkg/diagnostics"
	"github.com/thomasrohde/golox/pkg/lexer"
)

// Env is a scoped environment for variable bindings.
// It supports enclosing-chained lookup for lexical scoping. Closures keep
// their defining Env alive, so an Env may outlive the block that created it.
type Env struct {
	values    map[string]Value
	enclosing *Env
}

// NewEnv creates a new environment with an optional enclosing scope.
func NewEnv(enclosing *Env) *Env {
	return &Env{
		values:    make(map[string]Value),
		enclosing: enclosing,
	}
}

// Child creates a new child scope whose enclosing scope is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Enclosing returns the parent scope, or nil for the global scope.
func (e *Env) Enclosing() *Env {
	return e.enclosing
}

// Define binds name in this scope, replacing any existing local binding.
func (e *Env) Define(name string, val Value) {
	e.values[name] = val
}

// declare binds name in this scope without a value.
func (e *Env) declare(name string) {
	e.values[name] = uninitialized{}
}

// Get looks up a variable, traversing enclosing scopes. The token locates
// the error if the name is undefined or still uninitialized.
func (e *Env) Get(name lexer.Token) (Value, error) {
	for env := e; env != nil; env = env.enclosing {
		val, ok := env.values[name.Lexeme]
		if !ok {
			continue
		}
		if _, unset := val.(uninitialized); unset {
			return nil, &RuntimeError{
				Code:    diagnostics.EUninitialized,
				Token:   name,
				Message: fmt.Sprintf("Uninitialized variable '%s'.", name.Lexeme),
			}
		}
		return val, nil
	}
	return nil, undefinedVariable(name)
}

// Assign overwrites the nearest existing binding of name.
func (e *Env) Assign(name lexer.Token, val Value) error {
	for env := e; env != nil; env = env.enclosing {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = val
			return nil
		}
	}
	return undefinedVariable(name)
}

// Lookup returns the value bound to name in this scope or an enclosing one
// without raising errors. Uninitialized bindings report ok == false.
func (e *Env) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.enclosing {
		if val, ok := env.values[name]; ok {
			if _, unset := val.(uninitialized); unset {
				return nil, false
			}
			return val, true
		}
	}
	return nil, false
}

func undefinedVariable(name lexer.Token) *RuntimeError {
	return &RuntimeError{
		Code:    diagnostics.EUndefined,
		Token:   name,
		Message: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme),
	}
}
