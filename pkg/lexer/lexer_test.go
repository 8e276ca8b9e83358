package lexer

import (
	"testing"

	"github.com/thomasrohde/golox/pkg/diagnostics"
)

// helper to tokenize and fail on error
func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, diags := Tokenize(source)
	if len(diags) > 0 {
		t.Fatalf("unexpected lex diagnostics: %v", diags)
	}
	return tokens
}

// helper that strips the trailing EOF for easier assertions
func mustTokenizeNoEOF(t *testing.T, source string) []Token {
	t.Helper()
	tokens := mustTokenize(t, source)
	if len(tokens) == 0 {
		t.Fatal("expected at least one token (EOF)")
	}
	if tokens[len(tokens)-1].Type != TokEOF {
		t.Fatal("last token is not EOF")
	}
	return tokens[:len(tokens)-1]
}

func tokenTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, tok := range tokens {
		types[i] = tok.Type
	}
	return types
}

// ---------------------------------------------------------------------------
// Test: empty input produces only EOF
// ---------------------------------------------------------------------------
func TestEmptyInput(t *testing.T) {
	tokens := mustTokenize(t, "")
	if len(tokens) != 1 {
		t.Fatalf("expected 1 token (EOF), got %d", len(tokens))
	}
	if tokens[0].Type != TokEOF {
		t.Errorf("expected TokEOF, got %v", tokens[0].Type)
	}
	if tokens[0].Line != 1 {
		t.Errorf("expected EOF on line 1, got %d", tokens[0].Line)
	}
}

// ---------------------------------------------------------------------------
// Test: all keywords
// ---------------------------------------------------------------------------
func TestKeywords(t *testing.T) {
	tests := []struct {
		keyword  string
		expected TokenType
	}{
		{"and", TokAnd},
		{"break", TokBreak},
		{"class", TokClass},
		{"else", TokElse},
		{"false", TokFalse},
		{"for", TokFor},
		{"fun", TokFun},
		{"if", TokIf},
		{"nil", TokNil},
		{"or", TokOr},
		{"print", TokPrint},
		{"return", TokReturn},
		{"super", TokSuper},
		{"this", TokThis},
		{"true", TokTrue},
		{"var", TokVar},
		{"while", TokWhile},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.keyword)
			if len(tokens) != 1 {
				t.Fatalf("expected 1 token, got %d", len(tokens))
			}
			if tokens[0].Type != tt.expected {
				t.Errorf("got %v, want %v", tokens[0].Type, tt.expected)
			}
			if tokens[0].Lexeme != tt.keyword {
				t.Errorf("got lexeme %q, want %q", tokens[0].Lexeme, tt.keyword)
			}
		})
	}
}

func TestKeywordPrefixIsIdentifier(t *testing.T) {
	for _, src := range []string{"orchid", "variable", "format", "nil_", "_while", "iffy"} {
		tokens := mustTokenizeNoEOF(t, src)
		if len(tokens) != 1 || tokens[0].Type != TokIdentifier {
			t.Errorf("%q: expected a single identifier, got %v", src, tokens)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: operators and punctuation
// ---------------------------------------------------------------------------
func TestOperators(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "(){},.-+;/*?: ! != = == > >= < <=")
	want := []TokenType{
		TokLeftParen, TokRightParen, TokLeftBrace, TokRightBrace,
		TokComma, TokDot, TokMinus, TokPlus, TokSemicolon, TokSlash, TokStar,
		TokQuestion, TokColon,
		TokBang, TokBangEqual, TokEqual, TokEqualEqual,
		TokGreater, TokGreaterEqual, TokLess, TokLessEqual,
	}
	got := tokenTypes(tokens)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTwoCharOperatorsGreedy(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "===")
	got := tokenTypes(tokens)
	if len(got) != 2 || got[0] != TokEqualEqual || got[1] != TokEqual {
		t.Errorf("expected [EQUAL_EQUAL EQUAL], got %v", got)
	}
}

// ---------------------------------------------------------------------------
// Test: numbers
// ---------------------------------------------------------------------------
func TestNumbers(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"0", 0},
		{"42", 42},
		{"3.14", 3.14},
		{"123.456", 123.456},
		{"007", 7},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			tokens := mustTokenizeNoEOF(t, tt.source)
			if len(tokens) != 1 || tokens[0].Type != TokNumber {
				t.Fatalf("expected a single number token, got %v", tokens)
			}
			if v, ok := tokens[0].Literal.(float64); !ok || v != tt.want {
				t.Errorf("got literal %v, want %v", tokens[0].Literal, tt.want)
			}
		})
	}
}

func TestNumberTrailingDot(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "12.")
	got := tokenTypes(tokens)
	if len(got) != 2 || got[0] != TokNumber || got[1] != TokDot {
		t.Fatalf("expected [NUMBER DOT], got %v", got)
	}
	if tokens[0].Lexeme != "12" {
		t.Errorf("got lexeme %q, want %q", tokens[0].Lexeme, "12")
	}
}

func TestNumberLeadingDot(t *testing.T) {
	got := tokenTypes(mustTokenizeNoEOF(t, ".5"))
	if len(got) != 2 || got[0] != TokDot || got[1] != TokNumber {
		t.Errorf("expected [DOT NUMBER], got %v", got)
	}
}

// ---------------------------------------------------------------------------
// Test: strings
// ---------------------------------------------------------------------------
func TestStrings(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, `"hello" ""`)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(tokens))
	}
	if tokens[0].Literal != "hello" || tokens[0].Lexeme != `"hello"` {
		t.Errorf("got literal %v lexeme %q", tokens[0].Literal, tokens[0].Lexeme)
	}
	if tokens[1].Literal != "" {
		t.Errorf("expected empty string literal, got %v", tokens[1].Literal)
	}
}

func TestMultilineString(t *testing.T) {
	tokens := mustTokenize(t, "\"one\ntwo\" x")
	if tokens[0].Literal != "one\ntwo" {
		t.Errorf("got literal %q", tokens[0].Literal)
	}
	if tokens[0].Line != 1 {
		t.Errorf("string token should carry its start line, got %d", tokens[0].Line)
	}
	if tokens[1].Line != 2 {
		t.Errorf("identifier after string should be on line 2, got %d", tokens[1].Line)
	}
}

func TestUnterminatedString(t *testing.T) {
	tokens, diags := Tokenize(`print "oops;`)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", diags)
	}
	d := diags[0]
	if d.Code != diagnostics.EScan || d.Message != "Unterminated string." {
		t.Errorf("unexpected diagnostic: %+v", d)
	}
	if !d.AtEnd {
		t.Error("unterminated string should be reported at end of input")
	}
	if got := tokenTypes(tokens); len(got) != 2 || got[0] != TokPrint || got[1] != TokEOF {
		t.Errorf("expected [PRINT EOF], got %v", got)
	}
}

// ---------------------------------------------------------------------------
// Test: comments, whitespace and line tracking
// ---------------------------------------------------------------------------
func TestCommentsIgnored(t *testing.T) {
	tokens := mustTokenizeNoEOF(t, "// leading comment\nvar x; // trailing\n// last")
	got := tokenTypes(tokens)
	want := []TokenType{TokVar, TokIdentifier, TokSemicolon}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLineNumbers(t *testing.T) {
	tokens := mustTokenize(t, "a\n\nb\r\n\tc")
	wantLines := []int{1, 3, 4, 4}
	for i, want := range wantLines {
		if tokens[i].Line != want {
			t.Errorf("token %d (%v): got line %d, want %d", i, tokens[i].Type, tokens[i].Line, want)
		}
	}
}

// ---------------------------------------------------------------------------
// Test: unexpected characters are reported and skipped
// ---------------------------------------------------------------------------
func TestUnexpectedCharacters(t *testing.T) {
	tokens, diags := Tokenize("var @ x # = 1;")
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", diags)
	}
	if diags[0].Message != "Unexpected character '@'." {
		t.Errorf("got message %q", diags[0].Message)
	}
	if diags[1].Message != "Unexpected character '#'." {
		t.Errorf("got message %q", diags[1].Message)
	}
	got := tokenTypes(tokens)
	want := []TokenType{TokVar, TokIdentifier, TokEqual, TokNumber, TokSemicolon, TokEOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: TokNumber, Lexeme: "1.5", Literal: 1.5, Line: 1}
	if got := tok.String(); got != "NUMBER 1.5 1.5" {
		t.Errorf("got %q", got)
	}
	if got := New(TokSemicolon, ";", 2).String(); got != "SEMICOLON ; <nil>" {
		t.Errorf("got %q", got)
	}
	if got := TokenType(999).String(); got != "token(999)" {
		t.Errorf("got %q", got)
	}
}
