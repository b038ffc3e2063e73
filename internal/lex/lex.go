// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package lex provides a small state-function based lexer engine.
//
// A lexer is driven by state functions. Each state function consumes runes
// with Next, Backup and AcceptWhile and emits items with Emit. Returning nil
// from a state function resets the lexer to its initial state for the next
// token.
//
// Items are produced lazily: Lex runs state functions only until at least one
// item is available. A Lexer cannot be rewound.
//
package lex

import (
	"fmt"
	"io"
	"unicode/utf8"
)

// EOF is both the rune returned by Next at end of input and the item type
// emitted by lexers once the input is exhausted.
//
const EOF = -1

// Type is an item type. Values are defined by client packages; EOF is the
// only predefined type.
//
type Type int

// Pos is a byte offset in the input.
//
type Pos int

// Item is a lexed item.
//
type Item struct {
	Type  Type
	Pos   Pos
	Value interface{}
}

func (i Item) String() string {
	switch v := i.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case rune:
		return fmt.Sprintf("%q", v)
	case nil:
		return "<nil>"
	default:
		return fmt.Sprint(v)
	}
}

// Interface is the interface implemented by lexers.
//
type Interface interface {
	Lex() Item
}

// StateFn is a lexer state function.
//
type StateFn func(l *Lexer) StateFn

// Lexer is the lexer engine.
//
type Lexer struct {
	r     io.RuneReader
	init  StateFn
	state StateFn
	items []Item

	cur   rune // last rune returned by Next
	sz    int  // byte size of cur
	undo  bool // set by Backup
	pos   Pos  // offset of the byte following cur
	start Pos  // offset of the current token
}

// New returns a new Lexer reading from r. The init state function is used
// at the start of every token.
//
func New(r io.RuneReader, init StateFn) *Lexer {
	return &Lexer{r: r, init: init, cur: EOF}
}

// Lex returns the next item in the input stream.
//
func (l *Lexer) Lex() Item {
	for len(l.items) == 0 {
		if l.state == nil {
			l.state = l.init
			l.start = l.pos
		}
		l.state = l.state(l)
	}
	i := l.items[0]
	l.items = l.items[1:]
	return i
}

// Next returns the next rune in the input. It returns EOF at end of input.
//
func (l *Lexer) Next() rune {
	if l.undo {
		l.undo = false
		l.pos += Pos(l.sz)
		return l.cur
	}
	r, sz, err := l.r.ReadRune()
	if err != nil {
		l.cur, l.sz = EOF, 0
		return EOF
	}
	l.cur, l.sz = r, sz
	l.pos += Pos(sz)
	return r
}

// Current returns the last rune returned by Next.
//
func (l *Lexer) Current() rune {
	return l.cur
}

// Backup undoes the last call to Next. It can only be called once per call
// of Next.
//
func (l *Lexer) Backup() {
	if l.undo {
		panic("lex: Backup called twice")
	}
	l.undo = true
	l.pos -= Pos(l.sz)
}

// Peek returns the next rune without consuming it.
//
func (l *Lexer) Peek() rune {
	r := l.Next()
	l.Backup()
	return r
}

// AcceptWhile consumes runes while f returns true. The first rejected rune is
// left in the input.
//
func (l *Lexer) AcceptWhile(f func(r rune) bool) {
	r := l.Next()
	for r != EOF && f(r) {
		r = l.Next()
	}
	l.Backup()
}

// Emit emits an item of type t with value v, positioned at the start of the
// current token.
//
func (l *Lexer) Emit(t Type, v interface{}) {
	l.items = append(l.items, Item{Type: t, Pos: l.start, Value: v})
}

// Start returns the offset of the current token.
//
func (l *Lexer) Start() Pos {
	return l.start
}

// Offset returns the offset of the next unread rune.
//
func (l *Lexer) Offset() Pos {
	return l.pos
}

// Ignore discards the runes read so far in the current token.
//
func (l *Lexer) Ignore() {
	l.start = l.pos
}

// ValidRune reports whether r is a valid (decoded) rune.
//
func ValidRune(r rune) bool {
	return r != utf8.RuneError && r != EOF
}
