// Package testutil provides shared test helpers for golox tests.
package testutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ScenariosDir is the relative path from the module root to the golden scenarios.
const ScenariosDir = "testdata/scenarios"

// Exit codes a scenario can expect.
const (
	ExitOK           = 0
	ExitSyntaxError  = 65
	ExitRuntimeError = 70
)

// Scenario is a Lox program annotated with its expected behavior:
//
//	print 1 + 2; // expect: 3
//	print x;     // expect runtime error: Undefined variable 'x'.
//	print ;      // Error at ';': Expect expression.
//	             // [line 3] Error at end: Expect ';' after value.
type Scenario struct {
	Name   string
	Path   string
	Source string

	// Stdout lists the printed lines in order.
	Stdout []string
	// StaticErrors lists expected syntax diagnostics in pretty form,
	// "[line N] Error...".
	StaticErrors []string
	// RuntimeError is the expected runtime error message, if any.
	RuntimeError     string
	RuntimeErrorLine int
}

var (
	expectOutput  = regexp.MustCompile(`// expect: ?(.*)`)
	expectRuntime = regexp.MustCompile(`// expect runtime error: (.+)`)
	expectStatic  = regexp.MustCompile(`// (\[line (\d+)\] )?(Error.*)`)
)

// ExitCode returns the exit code the CLI should produce for the scenario.
func (s *Scenario) ExitCode() int {
	switch {
	case len(s.StaticErrors) > 0:
		return ExitSyntaxError
	case s.RuntimeError != "":
		return ExitRuntimeError
	default:
		return ExitOK
	}
}

// LoadScenario reads a .lox file and collects its expectations.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s := &Scenario{
		Name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path:   path,
		Source: string(data),
	}

	sc := bufio.NewScanner(strings.NewReader(s.Source))
	for lineNo := 1; sc.Scan(); lineNo++ {
		line := sc.Text()

		if m := expectOutput.FindStringSubmatch(line); m != nil {
			s.Stdout = append(s.Stdout, m[1])
			continue
		}
		if m := expectRuntime.FindStringSubmatch(line); m != nil {
			if s.RuntimeError != "" {
				return nil, fmt.Errorf("%s:%d: more than one runtime error expectation", path, lineNo)
			}
			s.RuntimeError = m[1]
			s.RuntimeErrorLine = lineNo
			continue
		}
		if m := expectStatic.FindStringSubmatch(line); m != nil {
			errLine := lineNo
			if m[2] != "" {
				errLine, _ = strconv.Atoi(m[2])
			}
			s.StaticErrors = append(s.StaticErrors, fmt.Sprintf("[line %d] %s", errLine, m[3]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if len(s.StaticErrors) > 0 && (len(s.Stdout) > 0 || s.RuntimeError != "") {
		return nil, fmt.Errorf("%s: a program with syntax errors cannot expect output", path)
	}
	return s, nil
}

// ListScenarios returns all .lox files under root, sorted by path.
func ListScenarios(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".lox" {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
