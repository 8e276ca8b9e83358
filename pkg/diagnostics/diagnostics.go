// Package diagnostics defines Lox diagnostic types for scan, parse, validation and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Diagnostic code constants.
const (
	// Static errors: any of these suppresses interpretation.
	EScan      = "E_SCAN"
	EParse     = "E_PARSE"
	EReturnTop = "E_RETURN_TOP"

	// Runtime errors.
	EType          = "E_TYPE"
	EArity         = "E_ARITY"
	ENotCallable   = "E_NOT_CALLABLE"
	EUndefined     = "E_UNDEFINED"
	EUninitialized = "E_UNINITIALIZED"
	EDivZero       = "E_DIV_ZERO"
	EStackOverflow = "E_STACK_OVERFLOW"
	EBreakOutside  = "E_BREAK_OUTSIDE"

	// Host errors.
	EIO     = "E_IO"
	EConfig = "E_CONFIG"
)

var runtimeCodes = map[string]bool{
	EType:          true,
	EArity:         true,
	ENotCallable:   true,
	EUndefined:     true,
	EUninitialized: true,
	EDivZero:       true,
	EStackOverflow: true,
	EBreakOutside:  true,
}

// IsRuntime reports whether code belongs to the runtime error family.
func IsRuntime(code string) bool {
	return runtimeCodes[code]
}

// Diagnostic represents a scan, parse, validation, or runtime diagnostic.
// Where is the offending lexeme; AtEnd marks errors reported at end of input.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Where   string `json:"where,omitempty"`
	AtEnd   bool   `json:"atEnd,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, line int, where string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Line:    line,
		Where:   where,
	}
}

// MakeEndDiag creates a Diagnostic located at end of input.
func MakeEndDiag(code, message string, line int) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Line:    line,
		AtEnd:   true,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	var out string
	// A top-level return caught at runtime has no lexeme attached.
	switch {
	case IsRuntime(d.Code) || (d.Code == EReturnTop && d.Where == ""):
		out = fmt.Sprintf("%s\n[line %d]", d.Message, d.Line)
	case d.Line == 0:
		// Host errors (I/O, config) have no source position.
		out = fmt.Sprintf("Error: %s", d.Message)
	default:
		where := ""
		switch {
		case d.AtEnd:
			where = " at end"
		case d.Where != "":
			where = fmt.Sprintf(" at '%s'", d.Where)
		}
		out = fmt.Sprintf("[line %d] Error%s: %s", d.Line, where, d.Message)
	}
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n")
}

// Reporter is the error sink for diagnostics the core catches instead of
// propagating.
type Reporter interface {
	Report(d Diagnostic)
}

// Collector is a Reporter that records every diagnostic it receives.
type Collector struct {
	Diagnostics []Diagnostic
}

// Report records d.
func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// HadError reports whether anything was recorded.
func (c *Collector) HadError() bool {
	return len(c.Diagnostics) > 0
}

// Reset clears recorded diagnostics, e.g. between REPL lines.
func (c *Collector) Reset() {
	c.Diagnostics = nil
}
