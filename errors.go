// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/db47h/logsim/internal/translate"
)

var f = translate.From

// ErrorCode identifies a kind of diagnostic reported while compiling a circuit
// description.
//
type ErrorCode int

// Error codes.
//
const (
	CodeMissingSection ErrorCode = iota
	CodeMissingColon
	CodeMissingSemicolon
	CodeInvalidDeviceName
	CodeMissingDelimiter
	CodeMissingPort
	CodeInvalidOutput
	CodeInvalidInput
	CodeMissingArrow
	CodeInputsNotConnected
	CodeUnexpectedSymbol
	CodePrematureEOF
	CodeCommaNotSemicolon
	CodeDuplicateConnection
	CodeSyntax
	CodeSemantic

	codeCount
)

var codeNames = [...]string{
	CodeMissingSection:      "missing section",
	CodeMissingColon:        "missing colon",
	CodeMissingSemicolon:    "missing semicolon",
	CodeInvalidDeviceName:   "invalid device name",
	CodeMissingDelimiter:    "missing delimiter",
	CodeMissingPort:         "missing port",
	CodeInvalidOutput:       "invalid output",
	CodeInvalidInput:        "invalid input",
	CodeMissingArrow:        "missing arrow",
	CodeInputsNotConnected:  "inputs not connected",
	CodeUnexpectedSymbol:    "unexpected symbol",
	CodePrematureEOF:        "premature end of file",
	CodeCommaNotSemicolon:   "comma instead of semicolon",
	CodeDuplicateConnection: "duplicate connection",
	CodeSyntax:              "syntax error",
	CodeSemantic:            "semantic error",
}

func (c ErrorCode) String() string {
	if c < 0 || c >= codeCount {
		return "unknown error"
	}
	return codeNames[c]
}

// Class returns the default class of diagnostics with code c.
//
func (c ErrorCode) Class() Class {
	switch c {
	case CodeInvalidOutput, CodeInvalidInput, CodeInputsNotConnected, CodeDuplicateConnection, CodeSemantic:
		return Semantic
	}
	return Syntactic
}

// Class is the class of a diagnostic.
//
type Class int

// Diagnostic classes.
//
const (
	Lexical Class = iota
	Syntactic
	Semantic
)

func (c Class) String() string {
	switch c {
	case Lexical:
		return "LexicalError"
	case Syntactic:
		return "SyntaxError"
	default:
		return "SemanticError"
	}
}

// A Diagnostic is an error found in a circuit description.
//
type Diagnostic struct {
	Code    ErrorCode
	ID      ID // symbol table id reserved for Code
	Class   Class
	Name    string // source name
	Pos     int    // byte offset in the source
	Line    int    // 1-based
	Col     int    // 1-based, in runes
	Message string

	text string // source line
}

func (d *Diagnostic) Error() string {
	return f("%s:%d:%d: %v: %s", d.Name, d.Line, d.Col, d.Class, d.Message)
}

// Show returns a multi-line representation of d with the offending source
// line and a caret under the error position.
//
func (d *Diagnostic) Show() string {
	var b strings.Builder
	b.WriteString(f("Error on line %d:", d.Line))
	b.WriteString("\n    ")
	b.WriteString(d.text)
	b.WriteString("\n    ")
	n := 0
	for _, r := range d.text {
		if n >= d.Col-1 {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
		n++
	}
	b.WriteString("^\n")
	b.WriteString(d.Class.String())
	b.WriteString(": ")
	b.WriteString(d.Message)
	b.WriteByte('\n')
	return b.String()
}

// Diagnostics accumulates diagnostics for a single source. Adding a
// diagnostic never stops the caller.
//
type Diagnostics struct {
	name  string
	src   string
	codes []ID
	list  []*Diagnostic
}

// NewDiagnostics returns a new diagnostics sink for the named source. It
// reserves one error code id per ErrorCode in names.
//
func NewDiagnostics(names *Names, name, src string) *Diagnostics {
	return &Diagnostics{
		name:  name,
		src:   src,
		codes: names.UniqueErrorCodes(int(codeCount)),
	}
}

// CodeID returns the symbol table id reserved for code.
//
func (d *Diagnostics) CodeID(code ErrorCode) ID {
	return d.codes[code]
}

// Add records a diagnostic of the default class for code at byte offset pos.
//
func (d *Diagnostics) Add(code ErrorCode, pos int, format string, args ...interface{}) {
	d.add(code, code.Class(), pos, f(format, args...))
}

// AddLexical records a lexical diagnostic.
//
func (d *Diagnostics) AddLexical(code ErrorCode, pos int, format string, args ...interface{}) {
	d.add(code, Lexical, pos, f(format, args...))
}

func (d *Diagnostics) add(code ErrorCode, class Class, pos int, msg string) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(d.src) {
		pos = len(d.src)
	}
	before := d.src[:pos]
	bol := strings.LastIndexByte(before, '\n') + 1
	eol := strings.IndexByte(d.src[pos:], '\n')
	if eol < 0 {
		eol = len(d.src)
	} else {
		eol += pos
	}
	d.list = append(d.list, &Diagnostic{
		Code:    code,
		ID:      d.codes[code],
		Class:   class,
		Name:    d.name,
		Pos:     pos,
		Line:    strings.Count(before, "\n") + 1,
		Col:     utf8.RuneCountInString(d.src[bol:pos]) + 1,
		Message: msg,
		text:    strings.TrimRight(d.src[bol:eol], "\r"),
	})
}

// Len returns the number of recorded diagnostics.
//
func (d *Diagnostics) Len() int {
	return len(d.list)
}

// List returns the recorded diagnostics in source order.
//
func (d *Diagnostics) List() []*Diagnostic {
	l := make([]*Diagnostic, len(d.list))
	copy(l, d.list)
	sort.SliceStable(l, func(i, j int) bool { return l[i].Pos < l[j].Pos })
	return l
}

// Count returns the number of diagnostics with the given code.
//
func (d *Diagnostics) Count(code ErrorCode) int {
	n := 0
	for _, e := range d.list {
		if e.Code == code {
			n++
		}
	}
	return n
}

// Report returns a human readable report of all diagnostics in source order.
// It returns an empty string if there are none.
//
func (d *Diagnostics) Report() string {
	var b strings.Builder
	for _, e := range d.List() {
		b.WriteString(e.Show())
	}
	return b.String()
}

// Err returns nil if no diagnostics were recorded, or an *ErrorList.
//
func (d *Diagnostics) Err() error {
	if len(d.list) == 0 {
		return nil
	}
	return &ErrorList{Name: d.name, Errs: d.List()}
}

// ErrorList is the error returned by Compile when a circuit description
// contains errors.
//
type ErrorList struct {
	Name string
	Errs []*Diagnostic
}

func (e *ErrorList) Error() string {
	switch len(e.Errs) {
	case 0:
		return f("%s: no errors", e.Name)
	case 1:
		return e.Errs[0].Error()
	}
	return f("%s (and %d more errors)", e.Errs[0].Error(), len(e.Errs)-1)
}

// Report returns a human readable report of all errors.
//
func (e *ErrorList) Report() string {
	var b strings.Builder
	for _, d := range e.Errs {
		b.WriteString(d.Show())
	}
	return b.String()
}

// Unwrap returns the individual diagnostics.
//
func (e *ErrorList) Unwrap() []error {
	errs := make([]error, len(e.Errs))
	for i, d := range e.Errs {
		errs[i] = d
	}
	return errs
}

// UnpackErrors returns the diagnostics in err if it is or wraps an *ErrorList.
//
func UnpackErrors(err error) []*Diagnostic {
	if l, ok := err.(*ErrorList); ok {
		return l.Errs
	}
	if c, ok := err.(interface{ Cause() error }); ok {
		return UnpackErrors(c.Cause())
	}
	return nil
}
