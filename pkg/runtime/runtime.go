// Package runtime provides the top-level Lox runtime orchestrator.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/thomasrohde/golox/pkg/ast"
	"github.com/thomasrohde/golox/pkg/diagnostics"
	"github.com/thomasrohde/golox/pkg/evaluator"
	"github.com/thomasrohde/golox/pkg/parser"
	"github.com/thomasrohde/golox/pkg/printer"
	"github.com/thomasrohde/golox/pkg/validator"
)

// Runtime wires together the Lox pipeline: scan, parse, validate, interpret.
// It owns one interpreter, so globals persist from one Run to the next.
// A Runtime must not be used from more than one goroutine.
type Runtime struct {
	interp   *evaluator.Interpreter
	stdout   io.Writer
	reporter diagnostics.Reporter
	logger   *slog.Logger
	trace    func(event evaluator.TraceEvent)
	natives  []*evaluator.NativeFunction
	echo     bool
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithStdout sets the writer print statements write to.
func WithStdout(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.stdout = w
	}
}

// WithReporter sets the sink every static and runtime diagnostic is
// reported to, in addition to being returned.
func WithReporter(r diagnostics.Reporter) Option {
	return func(rt *Runtime) {
		rt.reporter = r
	}
}

// WithLogger sets the logger passed to the interpreter.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// WithNatives exposes host functions to Lox code as globals.
func WithNatives(natives ...*evaluator.NativeFunction) Option {
	return func(rt *Runtime) {
		rt.natives = append(rt.natives, natives...)
	}
}

// WithEcho makes RunLine print the value of a trailing expression statement.
func WithEcho(enabled bool) Option {
	return func(rt *Runtime) {
		rt.echo = enabled
	}
}

// New creates a new Runtime with the given options.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		stdout: os.Stdout,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(rt)
	}

	interpOpts := []evaluator.Option{
		evaluator.WithStdout(rt.stdout),
		evaluator.WithLogger(rt.logger),
	}
	if rt.reporter != nil {
		interpOpts = append(interpOpts, evaluator.WithReporter(rt.reporter))
	}
	if rt.trace != nil {
		interpOpts = append(interpOpts, evaluator.WithTrace(rt.trace))
	}
	if len(rt.natives) > 0 {
		interpOpts = append(interpOpts, evaluator.WithNatives(rt.natives...))
	}
	rt.interp = evaluator.New(interpOpts...)
	return rt
}

// Interpreter returns the underlying interpreter.
func (rt *Runtime) Interpreter() *evaluator.Interpreter {
	return rt.interp
}

// Run parses, validates, and executes a Lox program. Static errors are
// returned as *DiagnosticError and nothing is executed; runtime errors are
// returned as *evaluator.RuntimeError.
func (rt *Runtime) Run(ctx context.Context, source string) error {
	stmts, err := rt.compile(source)
	if err != nil {
		return err
	}
	return rt.interpret(ctx, stmts)
}

// RunLine is Run for one REPL entry. With echo enabled, a trailing
// expression statement is printed as if it were a print statement.
func (rt *Runtime) RunLine(ctx context.Context, source string) error {
	stmts, err := rt.compile(source)
	if err != nil {
		return err
	}
	if rt.echo && len(stmts) > 0 {
		if es, ok := stmts[len(stmts)-1].(*ast.Expression); ok {
			stmts = append(stmts[:len(stmts)-1:len(stmts)-1], &ast.Print{Expression: es.Expression})
		}
	}
	return rt.interpret(ctx, stmts)
}

func (rt *Runtime) compile(source string) ([]ast.Stmt, error) {
	stmts, diags := parser.ParseSource(source)
	if len(diags) == 0 {
		diags = validator.Validate(stmts)
	}
	if len(diags) > 0 {
		rt.report(diags)
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	return stmts, nil
}

func (rt *Runtime) interpret(ctx context.Context, stmts []ast.Stmt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return rt.interp.Interpret(stmts)
}

func (rt *Runtime) report(diags []diagnostics.Diagnostic) {
	if rt.reporter == nil {
		return
	}
	for _, d := range diags {
		rt.reporter.Report(d)
	}
}

// Check parses and validates a Lox program without executing it.
func (rt *Runtime) Check(source string) []diagnostics.Diagnostic {
	stmts, diags := parser.ParseSource(source)
	if len(diags) > 0 {
		return diags
	}
	return validator.Validate(stmts)
}

// Format parses and formats a Lox program.
func (rt *Runtime) Format(source string) (string, error) {
	stmts, diags := parser.ParseSource(source)
	if len(diags) > 0 {
		return "", &DiagnosticError{Diagnostics: diags}
	}
	return printer.Format(stmts), nil
}

// ParseExpr parses source as a single expression. A trailing semicolon is
// optional.
func (rt *Runtime) ParseExpr(source string) (ast.Expr, error) {
	src := strings.TrimRight(strings.TrimSpace(source), ";")
	stmts, diags := parser.ParseSource(src + ";")
	if len(diags) > 0 {
		return nil, &DiagnosticError{Diagnostics: diags}
	}
	if len(stmts) == 1 {
		if es, ok := stmts[0].(*ast.Expression); ok {
			return es.Expression, nil
		}
	}
	return nil, &DiagnosticError{Diagnostics: []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EParse, "Expect a single expression.", 1, ""),
	}}
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
