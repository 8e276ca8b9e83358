package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/thomasrohde/golox/pkg/diagnostics"
	"github.com/thomasrohde/golox/pkg/evaluator"
)

// TraceSummary aggregates the events of one or more traced runs.
type TraceSummary struct {
	TotalEvents   int            `json:"totalEvents"`
	Runs          int            `json:"runs"`
	Calls         int            `json:"calls"`
	CallsByFn     map[string]int `json:"callsByFn"`
	RuntimeErrors int            `json:"runtimeErrors"`
	StartTime     string         `json:"startTime,omitempty"`
	EndTime       string         `json:"endTime,omitempty"`
	DurationMs    float64        `json:"durationMs"`
}

func (c *cli) cmdTrace(args []string) int {
	var file string
	textOutput := false

	for _, arg := range args {
		switch arg {
		case "--text":
			textOutput = true
		case "--json":
			textOutput = false
		default:
			if !strings.HasPrefix(arg, "-") {
				file = arg
			}
		}
	}

	if file == "" {
		fmt.Fprintln(c.stderr, "usage: lox trace <file.jsonl> [--json|--text]")
		return exitUsage
	}

	f, err := os.Open(file)
	if err != nil {
		diag := diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), 0, "")
		fmt.Fprintln(c.stderr, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diag}, false))
		return exitNoInput
	}
	defer f.Close()

	summary := computeTraceSummary(f)

	if textOutput {
		printTraceSummaryText(c.stdout, summary)
	} else {
		b, _ := json.Marshal(summary)
		fmt.Fprintln(c.stdout, string(b))
	}
	return exitOK
}

// computeTraceSummary reads NDJSON trace events. Lines that are not trace
// events, such as log records or diagnostics sharing stderr, are skipped.
func computeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{
		CallsByFn: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event evaluator.TraceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil || event.Event == "" {
			continue
		}

		summary.TotalEvents++

		switch event.Event {
		case evaluator.TraceRunStart:
			summary.Runs++
			if summary.StartTime == "" {
				summary.StartTime = event.Timestamp
			}
		case evaluator.TraceRunEnd:
			summary.EndTime = event.Timestamp
		case evaluator.TraceCallStart:
			summary.Calls++
			if fn, ok := event.Data["fn"]; ok {
				summary.CallsByFn[fn]++
			}
		case evaluator.TraceRuntimeError:
			summary.RuntimeErrors++
		}
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := time.Parse(time.RFC3339Nano, summary.StartTime)
		end, err2 := time.Parse(time.RFC3339Nano, summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Microseconds()) / 1000
		}
	}

	return summary
}

func printTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Runs: %d\n", s.Runs)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Calls: %d\n", s.Calls)

	names := make([]string, 0, len(s.CallsByFn))
	for name := range s.CallsByFn {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.CallsByFn[name])
	}

	fmt.Fprintf(w, "Runtime errors: %d\n", s.RuntimeErrors)
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.3fms\n", s.DurationMs)
	}
}
