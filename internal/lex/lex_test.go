package lex_test

import (
	"strings"
	"testing"
	"unicode"

	"github.com/db47h/logsim/internal/lex"
)

const (
	tEOF  lex.Type = lex.EOF
	tWord lex.Type = iota
	tPunct
)

func lexInit(l *lex.Lexer) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		return lexEOF
	case unicode.IsSpace(r):
		l.AcceptWhile(unicode.IsSpace)
	case unicode.IsLetter(r):
		return lexWord
	default:
		l.Emit(tPunct, r)
	}
	return nil
}

func lexWord(l *lex.Lexer) lex.StateFn {
	var b strings.Builder
	b.WriteRune(l.Current())
	for r := l.Next(); unicode.IsLetter(r); r = l.Next() {
		b.WriteRune(r)
	}
	l.Backup()
	l.Emit(tWord, b.String())
	return nil
}

func lexEOF(l *lex.Lexer) lex.StateFn {
	l.Emit(tEOF, "end of input")
	return lexEOF
}

func TestLexer(t *testing.T) {
	td := []struct {
		in    string
		types []lex.Type
		pos   []lex.Pos
	}{
		{"", []lex.Type{tEOF}, []lex.Pos{0}},
		{"abc", []lex.Type{tWord, tEOF}, []lex.Pos{0, 3}},
		{"  ab, cd ", []lex.Type{tWord, tPunct, tWord, tEOF}, []lex.Pos{2, 4, 6, 9}},
		{"é,x", []lex.Type{tWord, tPunct, tWord, tEOF}, []lex.Pos{0, 2, 3, 4}},
	}
	for _, d := range td {
		l := lex.New(strings.NewReader(d.in), lexInit)
		for i, typ := range d.types {
			it := l.Lex()
			if it.Type != typ {
				t.Fatalf("%q: item %d: expected type %d, got %d (%v)", d.in, i, typ, it.Type, it)
			}
			if it.Pos != d.pos[i] {
				t.Fatalf("%q: item %d: expected pos %d, got %d", d.in, i, d.pos[i], it.Pos)
			}
		}
		// EOF is sticky
		if it := l.Lex(); it.Type != tEOF {
			t.Fatalf("%q: expected EOF after end of input, got %v", d.in, it)
		}
	}
}

func TestLexer_Backup(t *testing.T) {
	l := lex.New(strings.NewReader("ab"), lexInit)
	if r := l.Next(); r != 'a' {
		t.Fatalf("expected 'a', got %q", r)
	}
	l.Backup()
	if l.Offset() != 0 {
		t.Fatalf("expected offset 0 after Backup, got %d", l.Offset())
	}
	if r := l.Peek(); r != 'a' {
		t.Fatalf("Peek: expected 'a', got %q", r)
	}
	if r := l.Next(); r != 'a' {
		t.Fatalf("expected 'a', got %q", r)
	}
	if r := l.Next(); r != 'b' {
		t.Fatalf("expected 'b', got %q", r)
	}
	if r := l.Next(); r != lex.EOF {
		t.Fatalf("expected EOF, got %q", r)
	}
}
