package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/golox/pkg/parser"
	"github.com/thomasrohde/golox/pkg/runtime"
)

const contPrompt = "... "

// prompter reads one line of input. *liner.State implements it.
type prompter interface {
	Prompt(prompt string) (string, error)
}

func (c *cli) cmdRepl(args []string) int {
	o := parseOptions(args)
	if len(o.positional) > 0 {
		fmt.Fprintln(c.stderr, "usage: lox repl [--pretty|--json] [--trace]")
		return exitUsage
	}
	cfg, code := c.loadConfig(o)
	if code != exitOK {
		return code
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath := historyPath(cfg.HistoryFile); histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	opts := append(c.runtimeOptions(cfg), runtime.WithEcho(cfg.EchoExpressions))
	c.repl(context.Background(), runtime.New(opts...), ln, cfg.Prompt, ln.AppendHistory)
	return exitOK
}

// repl runs entries until end of input or :quit. Errors are reported by the
// runtime and never end the session; globals carry over between entries.
func (c *cli) repl(ctx context.Context, rt *runtime.Runtime, p prompter, prompt string, remember func(string)) {
	for {
		src, ok := readByParseProbe(p, prompt, contPrompt)
		if !ok {
			fmt.Fprintln(c.stdout)
			return
		}

		switch strings.TrimSpace(src) {
		case "":
			continue
		case ":quit":
			return
		}

		_ = rt.RunLine(ctx, src)
		if remember != nil {
			remember(strings.ReplaceAll(src, "\n", " "))
		}
	}
}

// readByParseProbe reads lines until they form a complete entry: one that
// parses, or fails somewhere other than end of input. An empty continuation
// line submits what was typed so far.
func readByParseProbe(p prompter, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = p.Prompt(prompt)
		} else {
			line, err = p.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl-C discards the pending entry.
			return "", true
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, diags := parser.ParseSource(src)
		if len(diags) > 0 && parser.IsIncomplete(diags) {
			continue
		}
		return src, true
	}
}

// historyPath resolves a relative history file against the home directory.
func historyPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, name)
}
