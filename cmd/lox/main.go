// Command lox is the golox CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/thomasrohde/golox/pkg/ast"
	"github.com/thomasrohde/golox/pkg/config"
	"github.com/thomasrohde/golox/pkg/diagnostics"
	"github.com/thomasrohde/golox/pkg/evaluator"
	"github.com/thomasrohde/golox/pkg/printer"
	"github.com/thomasrohde/golox/pkg/runtime"
)

// Exit codes follow sysexits.h.
const (
	exitOK      = 0
	exitUsage   = 64
	exitSyntax  = 65
	exitNoInput = 66
	exitRuntime = 70
	exitConfig  = 78
)

const usage = `usage: lox [script]
       lox <command> [options]

commands:
  run <file|->        run a script
  repl                start an interactive session
  check <file|->      report syntax errors without running
  fmt <file> [--write] print the canonical form of a script
  ast <expr>          print an expression as a parenthesized tree
  rpn <expr>          print an expression in reverse Polish notation
  trace <file.jsonl>  summarize a trace written by run --trace
  config              print the effective configuration

options:
  --pretty            human-readable diagnostics
  --json              JSON diagnostics
  --trace             write trace events to stderr as NDJSON
`

func main() {
	os.Exit(newCLI().run(os.Args[1:]))
}

// cli holds the process streams so commands can be driven from tests.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	dir    string // project directory searched for .lox.yaml
}

func newCLI() *cli {
	dir, _ := os.Getwd()
	return &cli{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, dir: dir}
}

func (c *cli) run(args []string) int {
	if len(args) == 0 {
		return c.cmdRepl(nil)
	}

	cmd := args[0]
	switch cmd {
	case "run":
		return c.cmdRun(args[1:])
	case "repl":
		return c.cmdRepl(args[1:])
	case "check":
		return c.cmdCheck(args[1:])
	case "fmt":
		return c.cmdFmt(args[1:])
	case "ast":
		return c.cmdExpr(args[1:], printer.AST)
	case "rpn":
		return c.cmdExpr(args[1:], printer.RPN)
	case "trace":
		return c.cmdTrace(args[1:])
	case "config":
		return c.cmdConfig(args[1:])
	case "help", "--help", "-h":
		fmt.Fprint(c.stdout, usage)
		return exitOK
	}

	// lox script.lox
	if len(args) == 1 && !strings.HasPrefix(cmd, "-") {
		return c.cmdRun(args)
	}
	fmt.Fprint(c.stderr, usage)
	return exitUsage
}

// options are the flags shared by every command.
type options struct {
	pretty     bool
	json       bool
	trace      bool
	write      bool
	positional []string
}

func parseOptions(args []string) options {
	var o options
	for _, arg := range args {
		switch arg {
		case "--pretty":
			o.pretty = true
		case "--json":
			o.json = true
		case "--trace":
			o.trace = true
		case "--write":
			o.write = true
		default:
			o.positional = append(o.positional, arg)
		}
	}
	return o
}

// loadConfig reads settings and applies command-line overrides.
func (c *cli) loadConfig(o options) (*config.Config, int) {
	cfg, err := config.Load(c.dir)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EConfig, err.Error(), 0, "")
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostic(diag, true))
		return nil, exitConfig
	}
	if o.pretty {
		cfg.Pretty = true
	}
	if o.json {
		cfg.Pretty = false
	}
	if o.trace {
		cfg.Trace = true
	}
	return cfg, exitOK
}

// runtimeOptions builds the runtime wiring every executing command shares.
func (c *cli) runtimeOptions(cfg *config.Config) []runtime.Option {
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))

	opts := []runtime.Option{
		runtime.WithStdout(c.stdout),
		runtime.WithReporter(&streamReporter{w: c.stderr, pretty: cfg.Pretty}),
		runtime.WithLogger(logger),
	}
	if cfg.Trace {
		enc := json.NewEncoder(c.stderr)
		opts = append(opts, runtime.WithTrace(func(ev evaluator.TraceEvent) {
			_ = enc.Encode(ev)
		}))
	}
	return opts
}

// streamReporter prints each diagnostic as soon as it is reported.
type streamReporter struct {
	w      io.Writer
	pretty bool
}

func (r *streamReporter) Report(d diagnostics.Diagnostic) {
	fmt.Fprintln(r.w, diagnostics.FormatDiagnostic(d, r.pretty))
}

func (c *cli) cmdRun(args []string) int {
	o := parseOptions(args)
	if len(o.positional) != 1 {
		fmt.Fprintln(c.stderr, "usage: lox run <file|-> [--pretty|--json] [--trace]")
		return exitUsage
	}
	cfg, code := c.loadConfig(o)
	if code != exitOK {
		return code
	}

	source, code := c.readSource(o.positional[0], cfg.Pretty)
	if code != exitOK {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt := runtime.New(c.runtimeOptions(cfg)...)
	return exitCodeFor(rt.Run(ctx, source), c.stderr)
}

// exitCodeFor maps a Run error to an exit code. Diagnostics have already
// been reported; anything else is printed here.
func exitCodeFor(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}
	var diagErr *runtime.DiagnosticError
	if errors.As(err, &diagErr) {
		return exitSyntax
	}
	var rtErr *evaluator.RuntimeError
	if errors.As(err, &rtErr) {
		return exitRuntime
	}
	fmt.Fprintln(stderr, err.Error())
	return exitRuntime
}

func (c *cli) cmdCheck(args []string) int {
	o := parseOptions(args)
	if len(o.positional) != 1 {
		fmt.Fprintln(c.stderr, "usage: lox check <file|-> [--pretty|--json]")
		return exitUsage
	}
	cfg, code := c.loadConfig(o)
	if code != exitOK {
		return code
	}

	source, code := c.readSource(o.positional[0], cfg.Pretty)
	if code != exitOK {
		return code
	}

	diags := runtime.New().Check(source)
	if len(diags) > 0 {
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics(diags, cfg.Pretty))
		return exitSyntax
	}

	if cfg.Pretty {
		fmt.Fprintln(c.stdout, "No errors found.")
	} else {
		fmt.Fprintln(c.stdout, "[]")
	}
	return exitOK
}

func (c *cli) cmdFmt(args []string) int {
	o := parseOptions(args)
	if len(o.positional) != 1 {
		fmt.Fprintln(c.stderr, "usage: lox fmt <file> [--write]")
		return exitUsage
	}
	cfg, code := c.loadConfig(o)
	if code != exitOK {
		return code
	}

	file := o.positional[0]
	source, code := c.readSource(file, cfg.Pretty)
	if code != exitOK {
		return code
	}

	formatted, err := runtime.New().Format(source)
	if err != nil {
		var diagErr *runtime.DiagnosticError
		if errors.As(err, &diagErr) {
			fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, cfg.Pretty))
			return exitSyntax
		}
		fmt.Fprintln(c.stderr, err.Error())
		return exitSyntax
	}

	if printer.HasComments(source) {
		fmt.Fprintln(c.stderr, "warning: comments are not preserved by the formatter")
	}

	if o.write && file != "-" {
		if err := os.WriteFile(file, []byte(formatted), 0644); err != nil {
			fmt.Fprintf(c.stderr, "error writing file: %s\n", err)
			return exitNoInput
		}
		return exitOK
	}
	fmt.Fprint(c.stdout, formatted)
	return exitOK
}

// cmdExpr parses its arguments, or stdin when there are none, as one
// expression and prints it with render.
func (c *cli) cmdExpr(args []string, render func(e ast.Expr) string) int {
	o := parseOptions(args)
	cfg, code := c.loadConfig(o)
	if code != exitOK {
		return code
	}

	source := strings.Join(o.positional, " ")
	if source == "" {
		if source, code = c.readSource("-", cfg.Pretty); code != exitOK {
			return code
		}
	}

	expr, err := runtime.New().ParseExpr(source)
	if err != nil {
		var diagErr *runtime.DiagnosticError
		if errors.As(err, &diagErr) {
			fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics(diagErr.Diagnostics, cfg.Pretty))
		}
		return exitSyntax
	}
	fmt.Fprintln(c.stdout, render(expr))
	return exitOK
}

func (c *cli) cmdConfig(args []string) int {
	o := parseOptions(args)
	cfg, code := c.loadConfig(o)
	if code != exitOK {
		return code
	}
	if cfg.Path != "" {
		fmt.Fprintf(c.stdout, "# %s\n", cfg.Path)
	} else {
		fmt.Fprintln(c.stdout, "# defaults")
	}
	if err := cfg.Encode(c.stdout); err != nil {
		fmt.Fprintln(c.stderr, err.Error())
		return exitConfig
	}
	return exitOK
}

func (c *cli) readSource(file string, pretty bool) (string, int) {
	if file == "-" {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			fmt.Fprintf(c.stderr, "error reading stdin: %s\n", err)
			return "", exitNoInput
		}
		return string(data), exitOK
	}

	source, err := os.ReadFile(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), 0, "")
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, pretty))
		return "", exitNoInput
	}
	return string(source), exitOK
}
