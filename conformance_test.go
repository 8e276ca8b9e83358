package golox_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/thomasrohde/golox/internal/testutil"
	"github.com/thomasrohde/golox/pkg/diagnostics"
	"github.com/thomasrohde/golox/pkg/evaluator"
	"github.com/thomasrohde/golox/pkg/runtime"
)

func TestConformance(t *testing.T) {
	paths, err := testutil.ListScenarios(testutil.ScenariosDir)
	if err != nil {
		t.Fatalf("listing scenarios: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no scenarios found")
	}

	for _, path := range paths {
		scenario, err := testutil.LoadScenario(path)
		if err != nil {
			t.Fatalf("failed to load scenario: %v", err)
		}
		t.Run(scenario.Name, func(t *testing.T) {
			runScenario(t, scenario)
		})
	}
}

func runScenario(t *testing.T, scenario *testutil.Scenario) {
	t.Helper()

	var stdout bytes.Buffer
	var reported diagnostics.Collector
	rt := runtime.New(runtime.WithStdout(&stdout), runtime.WithReporter(&reported))

	runErr := rt.Run(context.Background(), scenario.Source)

	if got := exitCodeFor(runErr); got != scenario.ExitCode() {
		t.Errorf("exit code: got %d, want %d (error: %v)", got, scenario.ExitCode(), runErr)
	}

	var gotLines []string
	if out := stdout.String(); out != "" {
		gotLines = strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	}
	if diff := cmp.Diff(scenario.Stdout, gotLines, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}

	var static []string
	for _, d := range reported.Diagnostics {
		if !diagnostics.IsRuntime(d.Code) {
			static = append(static, diagnostics.FormatDiagnostic(d, true))
		}
	}
	if diff := cmp.Diff(scenario.StaticErrors, static, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("static diagnostics mismatch (-want +got):\n%s", diff)
	}

	if scenario.RuntimeError == "" {
		return
	}
	var rtErr *evaluator.RuntimeError
	if !errors.As(runErr, &rtErr) {
		t.Fatalf("expected runtime error %q, got %v", scenario.RuntimeError, runErr)
	}
	if rtErr.Message != scenario.RuntimeError {
		t.Errorf("runtime error: got %q, want %q", rtErr.Message, scenario.RuntimeError)
	}
	if rtErr.Token.Line != scenario.RuntimeErrorLine {
		t.Errorf("runtime error line: got %d, want %d", rtErr.Token.Line, scenario.RuntimeErrorLine)
	}
}

func exitCodeFor(err error) int {
	var diagErr *runtime.DiagnosticError
	var rtErr *evaluator.RuntimeError
	switch {
	case err == nil:
		return testutil.ExitOK
	case errors.As(err, &diagErr):
		return testutil.ExitSyntaxError
	case errors.As(err, &rtErr):
		return testutil.ExitRuntimeError
	default:
		return -1
	}
}

// Verify scenarios directory exists
func TestScenariosExist(t *testing.T) {
	root := testutil.ScenariosDir
	info, err := os.Stat(root)
	if err != nil {
		t.Skipf("scenarios directory not found: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("scenarios path is not a directory: %s", root)
	}
}
