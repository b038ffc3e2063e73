// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"strings"

	"github.com/db47h/logsim/internal/lex"
)

// TokenType is the type of a lexical token.
//
type TokenType = lex.Type

// Token is a lexical token. Its Value depends on its type:
//
//	TokenHeading	Section
//	TokenName	ID of the name in the symbol table
//	TokenNumber	string of decimal digits
//	TokenKind	Kind
//	others		the source text or nil
//
type Token = lex.Item

// Tokens
const (
	TokenEOF    TokenType = lex.EOF
	TokenIgnore TokenType = iota
	TokenHeading
	TokenNewline
	TokenCurlyOpen
	TokenCurlyClose
	TokenComma
	TokenSemicolon
	TokenDot
	TokenArrow
	TokenName
	TokenNumber
	TokenKind
	TokenIs
	TokenAre
	TokenHas
	TokenHave
)

// Section identifies a section of a circuit description.
//
type Section int

// Sections, in canonical order.
//
const (
	SectionDevices Section = iota
	SectionInit
	SectionConnections
	SectionMonitor

	sectionCount
)

var sectionNames = [...]string{
	SectionDevices:     "DEVICES",
	SectionInit:        "INIT",
	SectionConnections: "CONNECTIONS",
	SectionMonitor:     "MONITOR",
}

func (s Section) String() string {
	if s < 0 || s >= sectionCount {
		return "unknown section"
	}
	return sectionNames[s]
}

// heading keywords are case insensitive.
var headings = map[string]Section{
	"devices":     SectionDevices,
	"init":        SectionInit,
	"connections": SectionConnections,
	"monitor":     SectionMonitor,
	"monitors":    SectionMonitor,
}

var connectives = map[string]TokenType{
	"is":   TokenIs,
	"are":  TokenAre,
	"has":  TokenHas,
	"have": TokenHave,
}

var fillers = map[string]bool{
	"a":      true,
	"an":     true,
	"gate":   true,
	"gates":  true,
	"input":  true,
	"inputs": true,
}

var tokenNames = map[TokenType]string{
	TokenEOF:        "end of file",
	TokenNewline:    "end of line",
	TokenCurlyOpen:  "'{'",
	TokenCurlyClose: "'}'",
	TokenComma:      "','",
	TokenSemicolon:  "';'",
	TokenDot:        "'.'",
	TokenArrow:      "'=>'",
	TokenIs:         "'is'",
	TokenAre:        "'are'",
	TokenHas:        "'has'",
	TokenHave:       "'have'",
}

// Scanner turns a circuit description into a stream of tokens. Names are
// interned in the symbol table as they are scanned. Lexical errors are
// reported to a Diagnostics sink and the offending characters skipped.
//
type Scanner struct {
	names *Names
	diags *Diagnostics
	l     *lex.Lexer
	peek  []Token
}

// NewScanner returns a new Scanner for src.
//
func NewScanner(names *Names, diags *Diagnostics, src string) *Scanner {
	s := &Scanner{names: names, diags: diags}
	s.l = lex.New(strings.NewReader(src), s.lexInit)
	return s
}

// Next returns the next token. Once the input is exhausted, Next keeps
// returning TokenEOF.
//
func (s *Scanner) Next() Token {
	if len(s.peek) > 0 {
		t := s.peek[0]
		s.peek = s.peek[1:]
		return t
	}
	return s.l.Lex()
}

// Peek returns the next token without consuming it.
//
func (s *Scanner) Peek() Token {
	if len(s.peek) == 0 {
		s.peek = append(s.peek, s.l.Lex())
	}
	return s.peek[0]
}

// SkipLeadingNewlines discards newline and ignored tokens.
//
func (s *Scanner) SkipLeadingNewlines() {
	for t := s.Peek(); t.Type == TokenNewline || t.Type == TokenIgnore; t = s.Peek() {
		s.Next()
	}
}

// Describe returns a human readable description of t for use in messages.
//
func (s *Scanner) Describe(t Token) string {
	switch t.Type {
	case TokenName:
		return "'" + s.names.Name(t.Value.(ID)) + "'"
	case TokenNumber:
		return "number " + t.Value.(string)
	case TokenKind:
		return "device kind " + t.Value.(Kind).String()
	case TokenHeading:
		return "heading " + t.Value.(Section).String()
	}
	if n, ok := tokenNames[t.Type]; ok {
		return n
	}
	return t.String()
}

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\f' || r == '\v'
}

func (s *Scanner) errorf(code ErrorCode, pos lex.Pos, format string, args ...interface{}) {
	if s.diags != nil {
		s.diags.AddLexical(code, int(pos), format, args...)
	}
}

func (s *Scanner) lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		return lexEOF
	case r == '\n':
		l.Emit(TokenNewline, "\n")
	case isBlank(r):
		l.AcceptWhile(isBlank)
	case r == '#':
		l.AcceptWhile(func(r rune) bool { return r != '\n' })
	case r == '/':
		if l.Next() == '*' {
			return s.lexComment
		}
		l.Backup()
		s.errorf(CodeUnexpectedSymbol, l.Start(), "unexpected character '/'")
	case isLetter(r):
		return s.lexIdent
	case isDigit(r):
		return lexNumber
	case r == '{':
		l.Emit(TokenCurlyOpen, "{")
	case r == '}':
		l.Emit(TokenCurlyClose, "}")
	case r == ',':
		l.Emit(TokenComma, ",")
	case r == ';':
		l.Emit(TokenSemicolon, ";")
	case r == '.':
		l.Emit(TokenDot, ".")
	case r == '=':
		if l.Next() == '>' {
			l.Emit(TokenArrow, "=>")
			break
		}
		l.Backup()
		s.errorf(CodeMissingArrow, l.Start(), "unexpected '=', expected '=>'")
	case !lex.ValidRune(r):
		s.errorf(CodeUnexpectedSymbol, l.Start(), "invalid UTF-8 encoding")
	default:
		s.errorf(CodeUnexpectedSymbol, l.Start(), "unexpected character %q", r)
	}
	return nil
}

func (s *Scanner) lexComment(l *lex.Lexer) lex.StateFn {
	for r := l.Next(); r != lex.EOF; r = l.Next() {
		if r == '*' {
			if l.Next() == '/' {
				return nil
			}
			l.Backup()
		}
	}
	s.errorf(CodePrematureEOF, l.Start(), "unterminated comment")
	return lexEOF
}

func (s *Scanner) lexIdent(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.Grow(8)
	buf.WriteRune(l.Current())
	r := l.Next()
	for isLetter(r) || isDigit(r) || r == '_' {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	word := buf.String()
	lw := strings.ToLower(word)
	if sec, ok := headings[lw]; ok {
		l.Emit(TokenHeading, sec)
	} else if t, ok := connectives[word]; ok {
		l.Emit(t, word)
	} else if k, ok := KindByName(word); ok {
		l.Emit(TokenKind, k)
	} else if fillers[word] {
		l.Emit(TokenIgnore, nil)
	} else {
		l.Emit(TokenName, s.names.Lookup(word)[0])
	}
	return nil
}

func lexNumber(l *lex.Lexer) lex.StateFn {
	var buf strings.Builder
	buf.WriteRune(l.Current())
	r := l.Next()
	for isDigit(r) {
		buf.WriteRune(r)
		r = l.Next()
	}
	l.Backup()
	l.Emit(TokenNumber, buf.String())
	return nil
}

// lexEOF places the lexer in End-Of-File state.
// Once in this state, the lexer will only emit EOF.
//
func lexEOF(l *lex.Lexer) lex.StateFn {
	l.Emit(TokenEOF, "end of input")
	return lexEOF
}
