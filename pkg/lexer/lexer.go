// Package lexer implements the Lox tokenizer.
package lexer

import (
	"fmt"
	"strconv"

	"github.com/thomasrohde/golox/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Single-character tokens
	TokLeftParen  TokenType = iota // (
	TokRightParen                  // )
	TokLeftBrace                   // {
	TokRightBrace                  // }
	TokComma                       // ,
	TokDot                         // .
	TokMinus                       // -
	TokPlus                        // +
	TokSemicolon                   // ;
	TokSlash                       // /
	TokStar                        // *
	TokQuestion                    // ?
	TokColon                       // :

	// One or two character tokens
	TokBang         // !
	TokBangEqual    // !=
	TokEqual        // =
	TokEqualEqual   // ==
	TokGreater      // >
	TokGreaterEqual // >=
	TokLess         // <
	TokLessEqual    // <=

	// Literals
	TokIdentifier
	TokString
	TokNumber

	// Keywords
	TokAnd
	TokBreak
	TokClass
	TokElse
	TokFalse
	TokFun
	TokFor
	TokIf
	TokNil
	TokOr
	TokPrint
	TokReturn
	TokSuper
	TokThis
	TokTrue
	TokVar
	TokWhile

	// Special
	TokEOF
)

var tokenNames = [...]string{
	TokLeftParen:    "LEFT_PAREN",
	TokRightParen:   "RIGHT_PAREN",
	TokLeftBrace:    "LEFT_BRACE",
	TokRightBrace:   "RIGHT_BRACE",
	TokComma:        "COMMA",
	TokDot:          "DOT",
	TokMinus:        "MINUS",
	TokPlus:         "PLUS",
	TokSemicolon:    "SEMICOLON",
	TokSlash:        "SLASH",
	TokStar:         "STAR",
	TokQuestion:     "QUESTION",
	TokColon:        "COLON",
	TokBang:         "BANG",
	TokBangEqual:    "BANG_EQUAL",
	TokEqual:        "EQUAL",
	TokEqualEqual:   "EQUAL_EQUAL",
	TokGreater:      "GREATER",
	TokGreaterEqual: "GREATER_EQUAL",
	TokLess:         "LESS",
	TokLessEqual:    "LESS_EQUAL",
	TokIdentifier:   "IDENTIFIER",
	TokString:       "STRING",
	TokNumber:       "NUMBER",
	TokAnd:          "AND",
	TokBreak:        "BREAK",
	TokClass:        "CLASS",
	TokElse:         "ELSE",
	TokFalse:        "FALSE",
	TokFun:          "FUN",
	TokFor:          "FOR",
	TokIf:           "IF",
	TokNil:          "NIL",
	TokOr:           "OR",
	TokPrint:        "PRINT",
	TokReturn:       "RETURN",
	TokSuper:        "SUPER",
	TokThis:         "THIS",
	TokTrue:         "TRUE",
	TokVar:          "VAR",
	TokWhile:        "WHILE",
	TokEOF:          "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token represents a single lexer token. Literal holds a float64 for
// numbers, a string for strings, and nil otherwise.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal any
	Line    int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %v", t.Type, t.Lexeme, t.Literal)
}

// New builds a token without a literal value.
func New(typ TokenType, lexeme string, line int) Token {
	return Token{Type: typ, Lexeme: lexeme, Line: line}
}

var keywords = map[string]TokenType{
	"and":    TokAnd,
	"break":  TokBreak,
	"class":  TokClass,
	"else":   TokElse,
	"false":  TokFalse,
	"for":    TokFor,
	"fun":    TokFun,
	"if":     TokIf,
	"nil":    TokNil,
	"or":     TokOr,
	"print":  TokPrint,
	"return": TokReturn,
	"super":  TokSuper,
	"this":   TokThis,
	"true":   TokTrue,
	"var":    TokVar,
	"while":  TokWhile,
}

type scanner struct {
	source string
	start  int
	pos    int
	line   int
	tokens []Token
	diags  []diagnostics.Diagnostic
}

func newScanner(source string) *scanner {
	return &scanner{
		source: source,
		line:   1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	return ch
}

func (s *scanner) match(expected byte) bool {
	if s.atEnd() || s.source[s.pos] != expected {
		return false
	}
	s.pos++
	return true
}

func (s *scanner) add(typ TokenType) {
	s.addLiteral(typ, nil)
}

func (s *scanner) addLiteral(typ TokenType, literal any) {
	s.tokens = append(s.tokens, Token{
		Type:    typ,
		Lexeme:  s.source[s.start:s.pos],
		Literal: literal,
		Line:    s.line,
	})
}

func (s *scanner) lexError(line int, msg string) {
	s.diags = append(s.diags, diagnostics.MakeDiag(diagnostics.EScan, msg, line, ""))
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) scanToken() {
	ch := s.advance()
	switch ch {
	case '(':
		s.add(TokLeftParen)
	case ')':
		s.add(TokRightParen)
	case '{':
		s.add(TokLeftBrace)
	case '}':
		s.add(TokRightBrace)
	case ',':
		s.add(TokComma)
	case '.':
		s.add(TokDot)
	case '-':
		s.add(TokMinus)
	case '+':
		s.add(TokPlus)
	case ';':
		s.add(TokSemicolon)
	case '*':
		s.add(TokStar)
	case '?':
		s.add(TokQuestion)
	case ':':
		s.add(TokColon)
	case '!':
		if s.match('=') {
			s.add(TokBangEqual)
		} else {
			s.add(TokBang)
		}
	case '=':
		if s.match('=') {
			s.add(TokEqualEqual)
		} else {
			s.add(TokEqual)
		}
	case '<':
		if s.match('=') {
			s.add(TokLessEqual)
		} else {
			s.add(TokLess)
		}
	case '>':
		if s.match('=') {
			s.add(TokGreaterEqual)
		} else {
			s.add(TokGreater)
		}
	case '/':
		if s.match('/') {
			// Comment runs to end of line
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			s.add(TokSlash)
		}
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '"':
		s.scanString()
	default:
		switch {
		case isDigit(ch):
			s.scanNumber()
		case isAlpha(ch):
			s.scanIdentOrKeyword()
		default:
			s.lexError(s.line, fmt.Sprintf("Unexpected character '%c'.", ch))
		}
	}
}

func (s *scanner) scanString() {
	startLine := s.line
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.diags = append(s.diags, diagnostics.MakeEndDiag(diagnostics.EScan, "Unterminated string.", startLine))
		return
	}
	s.advance() // closing "

	value := s.source[s.start+1 : s.pos-1]
	s.tokens = append(s.tokens, Token{
		Type:    TokString,
		Lexeme:  s.source[s.start:s.pos],
		Literal: value,
		Line:    startLine,
	})
}

func (s *scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}

	// Fractional part needs a digit after the dot.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	text := s.source[s.start:s.pos]
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.lexError(s.line, fmt.Sprintf("Invalid number literal '%s'.", text))
		return
	}
	s.addLiteral(TokNumber, value)
}

func (s *scanner) scanIdentOrKeyword() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	text := s.source[s.start:s.pos]
	if typ, ok := keywords[text]; ok {
		s.add(typ)
		return
	}
	s.add(TokIdentifier)
}

// Tokenize breaks source code into a slice of tokens terminated by TokEOF.
// Scanning continues past bad characters so every lexical error in the
// source is reported; the returned tokens omit the offending characters.
func Tokenize(source string) ([]Token, []diagnostics.Diagnostic) {
	s := newScanner(source)
	for !s.atEnd() {
		s.start = s.pos
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{Type: TokEOF, Line: s.line})
	return s.tokens, s.diags
}
