package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/thomasrohde/golox/pkg/ast"
	"github.com/thomasrohde/golox/pkg/diagnostics"
	"github.com/thomasrohde/golox/pkg/lexer"
)

// maxCallDepth bounds nested Lox calls so runaway recursion becomes a
// runtime error instead of exhausting the goroutine stack.
const maxCallDepth = 10000

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart     TraceEventType = "run_start"
	TraceRunEnd       TraceEventType = "run_end"
	TraceCallStart    TraceEventType = "call_start"
	TraceCallEnd      TraceEventType = "call_end"
	TraceRuntimeError TraceEventType = "runtime_error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	Event     TraceEventType    `json:"event"`
	Line      int               `json:"line,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// RuntimeError represents an error raised while executing a Lox program.
// Token locates the error in the source.
type RuntimeError struct {
	Code    string
	Token   lexer.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Diagnostic converts the error into its reportable form.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	where := e.Token.Lexeme
	if e.Code == diagnostics.EReturnTop {
		// Formats as a runtime error rather than a static one.
		where = ""
	}
	return diagnostics.MakeDiag(e.Code, e.Message, e.Token.Line, where)
}

type completionKind int

const (
	completionNormal completionKind = iota
	completionReturn
	completionBreak
)

// completion is the outcome of executing a statement. value is set for
// completionReturn; token is the keyword that caused a non-normal outcome.
type completion struct {
	kind  completionKind
	value Value
	token lexer.Token
}

var normal = completion{kind: completionNormal}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithStdout sets the writer print statements write to.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) {
		in.stdout = w
	}
}

// WithReporter sets the sink runtime errors are reported to.
func WithReporter(r diagnostics.Reporter) Option {
	return func(in *Interpreter) {
		in.reporter = r
	}
}

// WithLogger sets the logger used for debug records.
func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) {
		in.logger = l
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event TraceEvent)) Option {
	return func(in *Interpreter) {
		in.trace = fn
	}
}

// WithNatives registers host functions as globals alongside clock. A native
// with the same name as a built-in replaces it.
func WithNatives(natives ...*NativeFunction) Option {
	return func(in *Interpreter) {
		in.natives = append(in.natives, natives...)
	}
}

// Interpreter executes Lox statements. Globals persist across calls to
// Interpret, which lets a REPL feed it one line at a time. An Interpreter
// must not be used from more than one goroutine.
type Interpreter struct {
	globals  *Env
	env      *Env
	stdout   io.Writer
	reporter diagnostics.Reporter
	logger   *slog.Logger
	trace    func(event TraceEvent)
	natives  []*NativeFunction
	start    int64 // monotonic creation time, read by clock()
	depth    int
}

// New creates an Interpreter whose global scope holds the native functions.
func New(opts ...Option) *Interpreter {
	globals := NewEnv(nil)
	in := &Interpreter{
		globals: globals,
		env:     globals,
		stdout:  os.Stdout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		start:   clockNow(),
	}
	for _, opt := range opts {
		opt(in)
	}

	globals.Define("clock", NewNative("clock", 0, clockNative))
	for _, n := range in.natives {
		globals.Define(n.name, n)
	}
	return in
}

// Globals returns the global scope.
func (in *Interpreter) Globals() *Env {
	return in.globals
}

func (in *Interpreter) emit(event TraceEventType, line int) {
	if in.trace != nil {
		in.trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Event:     event,
			Line:      line,
		})
	}
}

func (in *Interpreter) emitWithData(event TraceEventType, line int, data map[string]string) {
	if in.trace != nil {
		in.trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Event:     event,
			Line:      line,
			Data:      data,
		})
	}
}

// Interpret executes stmts in order. It stops at the first runtime error,
// reports it to the configured Reporter and returns it.
func (in *Interpreter) Interpret(stmts []ast.Stmt) error {
	in.emit(TraceRunStart, 0)
	err := in.interpret(stmts)
	if err != nil {
		in.reportError(err)
	}
	in.emit(TraceRunEnd, 0)
	return err
}

func (in *Interpreter) interpret(stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		c, err := in.execute(stmt)
		if err != nil {
			return err
		}
		switch c.kind {
		case completionReturn:
			return &RuntimeError{
				Code:    diagnostics.EReturnTop,
				Token:   c.token,
				Message: "Can't return from top-level code.",
			}
		case completionBreak:
			return strayBreak(c.token)
		}
	}
	return nil
}

func (in *Interpreter) reportError(err error) {
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		in.logger.Debug("host error", slog.String("error", err.Error()))
		return
	}
	in.logger.Debug("runtime error",
		slog.String("code", rerr.Code),
		slog.Int("line", rerr.Token.Line),
		slog.String("message", rerr.Message))
	in.emitWithData(TraceRuntimeError, rerr.Token.Line, map[string]string{
		"code":    rerr.Code,
		"message": rerr.Message,
	})
	if in.reporter != nil {
		in.reporter.Report(rerr.Diagnostic())
	}
}

// --- Statements ---

func (in *Interpreter) execute(stmt ast.Stmt) (completion, error) {
	switch s := stmt.(type) {
	case *ast.Expression:
		_, err := in.evaluate(s.Expression)
		return normal, err

	case *ast.Print:
		val, err := in.evaluate(s.Expression)
		if err != nil {
			return normal, err
		}
		if _, err := fmt.Fprintln(in.stdout, Stringify(val)); err != nil {
			return normal, fmt.Errorf("print: %w", err)
		}
		return normal, nil

	case *ast.Var:
		if s.Initializer == nil {
			in.env.declare(s.Name.Lexeme)
			return normal, nil
		}
		val, err := in.evaluate(s.Initializer)
		if err != nil {
			return normal, err
		}
		in.env.Define(s.Name.Lexeme, val)
		return normal, nil

	case *ast.Block:
		return in.executeBlock(s.Statements, in.env.Child())

	case *ast.If:
		cond, err := in.evaluate(s.Condition)
		if err != nil {
			return normal, err
		}
		if Truthiness(cond) {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
		return normal, nil

	case *ast.While:
		return in.executeWhile(s)

	case *ast.Function:
		in.env.Define(s.Name.Lexeme, NewFunction(s, in.env))
		return normal, nil

	case *ast.Return:
		var val Value = LoxNil{}
		if s.Value != nil {
			v, err := in.evaluate(s.Value)
			if err != nil {
				return normal, err
			}
			val = v
		}
		return completion{kind: completionReturn, value: val, token: s.Keyword}, nil

	case *ast.Break:
		return completion{kind: completionBreak, token: s.Keyword}, nil

	default:
		return normal, fmt.Errorf("unknown statement type: %T", stmt)
	}
}

// executeBlock runs stmts in env and restores the current scope on every
// exit path.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Env) (completion, error) {
	previous := in.env
	in.env = env
	defer func() { in.env = previous }()

	for _, stmt := range stmts {
		c, err := in.execute(stmt)
		if err != nil || c.kind != completionNormal {
			return c, err
		}
	}
	return normal, nil
}

func (in *Interpreter) executeWhile(s *ast.While) (completion, error) {
	for {
		cond, err := in.evaluate(s.Condition)
		if err != nil {
			return normal, err
		}
		if !Truthiness(cond) {
			return normal, nil
		}

		c, err := in.execute(s.Body)
		if err != nil {
			return normal, err
		}
		switch c.kind {
		case completionBreak:
			return normal, nil
		case completionReturn:
			return c, nil
		}
	}
}

// --- Expressions ---

func (in *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return FromLiteral(e.Value), nil

	case *ast.Grouping:
		return in.evaluate(e.Expression)

	case *ast.Unary:
		return in.evalUnary(e)

	case *ast.Binary:
		return in.evalBinary(e)

	case *ast.Logical:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Operator.Type == lexer.TokOr {
			if Truthiness(left) {
				return left, nil
			}
		} else if !Truthiness(left) {
			return left, nil
		}
		return in.evaluate(e.Right)

	case *ast.Conditional:
		cond, err := in.evaluate(e.Condition)
		if err != nil {
			return nil, err
		}
		if Truthiness(cond) {
			return in.evaluate(e.Then)
		}
		return in.evaluate(e.Else)

	case *ast.Variable:
		return in.env.Get(e.Name)

	case *ast.Assign:
		val, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if err := in.env.Assign(e.Name, val); err != nil {
			return nil, err
		}
		return val, nil

	case *ast.Call:
		return in.evalCall(e)

	default:
		return nil, fmt.Errorf("unknown expression type: %T", expr)
	}
}

func (in *Interpreter) evalUnary(e *ast.Unary) (Value, error) {
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case lexer.TokBang:
		return LoxBool{Value: !Truthiness(right)}, nil
	case lexer.TokMinus:
		n, ok := right.(LoxNumber)
		if !ok {
			return nil, typeError(e.Operator, "Operand must be a number.")
		}
		return LoxNumber{Value: -n.Value}, nil
	default:
		return nil, fmt.Errorf("unknown unary operator: %s", e.Operator.Lexeme)
	}
}

func (in *Interpreter) evalBinary(e *ast.Binary) (Value, error) {
	left, err := in.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	// The comma operator discards its left operand.
	if e.Operator.Type == lexer.TokComma {
		return in.evaluate(e.Right)
	}
	right, err := in.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case lexer.TokEqualEqual:
		return LoxBool{Value: Equal(left, right)}, nil
	case lexer.TokBangEqual:
		return LoxBool{Value: !Equal(left, right)}, nil
	case lexer.TokPlus:
		return add(e.Operator, left, right)
	}

	l, lok := left.(LoxNumber)
	r, rok := right.(LoxNumber)
	if !lok || !rok {
		return nil, typeError(e.Operator, "Operands must be numbers.")
	}

	switch e.Operator.Type {
	case lexer.TokMinus:
		return LoxNumber{Value: l.Value - r.Value}, nil
	case lexer.TokStar:
		return LoxNumber{Value: l.Value * r.Value}, nil
	case lexer.TokSlash:
		q := l.Value / r.Value
		if math.IsInf(q, 0) {
			return nil, &RuntimeError{Code: diagnostics.EDivZero, Token: e.Operator, Message: "Division by zero."}
		}
		return LoxNumber{Value: q}, nil
	case lexer.TokGreater:
		return LoxBool{Value: l.Value > r.Value}, nil
	case lexer.TokGreaterEqual:
		return LoxBool{Value: l.Value >= r.Value}, nil
	case lexer.TokLess:
		return LoxBool{Value: l.Value < r.Value}, nil
	case lexer.TokLessEqual:
		return LoxBool{Value: l.Value <= r.Value}, nil
	default:
		return nil, fmt.Errorf("unknown binary operator: %s", e.Operator.Lexeme)
	}
}

// add implements "+": numeric addition, or concatenation of display forms
// when either operand is a string.
func add(op lexer.Token, left, right Value) (Value, error) {
	l, lnum := left.(LoxNumber)
	r, rnum := right.(LoxNumber)
	if lnum && rnum {
		return LoxNumber{Value: l.Value + r.Value}, nil
	}

	_, lstr := left.(LoxString)
	_, rstr := right.(LoxString)
	if lstr || rstr {
		return LoxString{Value: Stringify(left) + Stringify(right)}, nil
	}
	return nil, typeError(op, "Operands must be two numbers or two strings.")
}

func (in *Interpreter) evalCall(e *ast.Call) (Value, error) {
	callee, err := in.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		arg, err := in.evaluate(argExpr)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, &RuntimeError{
			Code:    diagnostics.ENotCallable,
			Token:   e.Paren,
			Message: "Can only call functions and classes.",
		}
	}
	if len(args) != fn.Arity() {
		return nil, &RuntimeError{
			Code:    diagnostics.EArity,
			Token:   e.Paren,
			Message: fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)),
		}
	}

	if in.depth >= maxCallDepth {
		return nil, &RuntimeError{
			Code:    diagnostics.EStackOverflow,
			Token:   e.Paren,
			Message: "Stack overflow.",
		}
	}
	in.depth++
	defer func() { in.depth-- }()

	line := e.Paren.Line
	debug := in.logger.Enabled(context.Background(), slog.LevelDebug)
	if debug {
		in.logger.Debug("call",
			slog.String("fn", fn.Name()),
			slog.Int("args", len(args)),
			slog.Int("depth", in.depth))
	}
	in.emitWithData(TraceCallStart, line, map[string]string{"fn": fn.Name()})

	result, err := fn.Call(in, args)

	in.emitWithData(TraceCallEnd, line, map[string]string{"fn": fn.Name()})
	if err != nil {
		// Natives have no source position; blame the call site. The
		// native's error may be shared, so it is copied first.
		var rerr *RuntimeError
		if errors.As(err, &rerr) && rerr.Token.Line == 0 {
			placed := *rerr
			placed.Token = e.Paren
			return nil, &placed
		}
		return nil, err
	}
	if debug {
		in.logger.Debug("return",
			slog.String("fn", fn.Name()),
			slog.String("type", TypeName(result)),
			slog.String("value", Stringify(result)),
			slog.Int("depth", in.depth))
	}
	return result, nil
}

// strayBreak reports a break that escaped every loop. The parser rejects
// these; trees built by other means hit this instead.
func strayBreak(keyword lexer.Token) *RuntimeError {
	return &RuntimeError{
		Code:    diagnostics.EBreakOutside,
		Token:   keyword,
		Message: "Can't use 'break' outside of a loop.",
	}
}

func typeError(op lexer.Token, msg string) *RuntimeError {
	return &RuntimeError{Code: diagnostics.EType, Token: op, Message: msg}
}
