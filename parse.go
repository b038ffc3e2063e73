// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/db47h/logsim/internal/lex"
	"github.com/db47h/logsim/internal/translate"
	"github.com/pkg/errors"
)

// maxRange caps the number of names produced by a single range.
const maxRange = 1 << 16

// Parser parses a circuit description into a Circuit. Errors are accumulated
// in a Diagnostics sink: parsing never stops at the first error.
//
type Parser struct {
	c     *Circuit
	diags *Diagnostics
	s     *Scanner
	tok   Token // last token returned by next
	back  bool  // next returns tok again
	end   lex.Pos

	seen     [sectionCount]bool
	declared []ID           // devices declared in the current section
	declPos  map[ID]lex.Pos // declaration position of each device
	eof      bool           // premature EOF reported
}

// NewParser returns a parser that builds circuit c from src. name is used in
// error messages.
//
func NewParser(c *Circuit, name, src string) *Parser {
	diags := NewDiagnostics(c.Names, name, src)
	return &Parser{
		c:       c,
		diags:   diags,
		s:       NewScanner(c.Names, diags, src),
		end:     lex.Pos(len(src)),
		declPos: make(map[ID]lex.Pos),
	}
}

// Diagnostics returns the diagnostics recorded by p.
//
func (p *Parser) Diagnostics() *Diagnostics { return p.diags }

// Report returns the error report, or an empty string if the description is
// valid.
//
func (p *Parser) Report() string { return p.diags.Report() }

// Parse parses the whole input. It returns true if no error was found, in
// which case the circuit can be simulated.
//
func (p *Parser) Parse() bool {
	p.s.SkipLeadingNewlines()
loop:
	for {
		t := p.next()
		switch t.Type {
		case TokenEOF:
			break loop
		case TokenNewline, TokenSemicolon:
		case TokenHeading:
			p.section(t)
		case TokenName:
			if p.peek().Type == TokenCurlyOpen {
				p.errorf(CodeSyntax, t, "unknown section %s", p.s.Describe(t))
				p.next()
				p.skipBlock()
				continue
			}
			fallthrough
		default:
			p.errorf(CodeUnexpectedSymbol, t, "unexpected %s, expected a section heading", p.s.Describe(t))
			p.skipToHeading()
		}
	}
	for _, sec := range []Section{SectionDevices, SectionConnections} {
		if !p.seen[sec] {
			p.diags.Add(CodeMissingSection, int(p.end), "missing %v section", sec)
		}
	}
	return p.diags.Len() == 0
}

func (p *Parser) next() Token {
	if p.back {
		p.back = false
		return p.tok
	}
	for {
		t := p.s.Next()
		if t.Type != TokenIgnore {
			p.tok = t
			return t
		}
	}
}

func (p *Parser) peek() Token {
	if p.back {
		return p.tok
	}
	for {
		t := p.s.Peek()
		if t.Type != TokenIgnore {
			return t
		}
		p.s.Next()
	}
}

func (p *Parser) errorf(code ErrorCode, t Token, format string, args ...interface{}) {
	p.diags.Add(code, int(t.Pos), format, args...)
}

func (p *Parser) errorAt(code ErrorCode, pos lex.Pos, format string, args ...interface{}) {
	p.diags.Add(code, int(pos), format, args...)
}

func (p *Parser) prematureEOF(t Token) {
	if !p.eof {
		p.eof = true
		p.errorf(CodePrematureEOF, t, "unexpected end of file, missing '}'")
	}
}

// unclosed reports a heading found inside a section. The heading is left for
// Parse to resume at.
//
func (p *Parser) unclosed(t Token) {
	p.errorf(CodeMissingDelimiter, t, "missing '}' before %s", p.s.Describe(t))
	p.tok, p.back = t, true
}

func (p *Parser) skipToHeading() {
	for t := p.peek(); t.Type != TokenHeading && t.Type != TokenEOF; t = p.peek() {
		p.next()
	}
}

// skipBlock skips tokens up to the '}' matching an already consumed '{'.
//
func (p *Parser) skipBlock() {
	depth := 1
	for {
		t := p.next()
		switch t.Type {
		case TokenCurlyOpen:
			depth++
		case TokenCurlyClose:
			if depth--; depth == 0 {
				return
			}
		case TokenEOF:
			p.prematureEOF(t)
			return
		}
	}
}

// recover skips the rest of the current statement, starting with the last
// consumed token. It returns false if the enclosing section ended.
//
func (p *Parser) recover() bool {
	if p.back {
		return false
	}
	t := p.tok
	for {
		switch t.Type {
		case TokenNewline, TokenSemicolon:
			return true
		case TokenCurlyClose:
			return false
		case TokenEOF:
			p.prematureEOF(t)
			return false
		case TokenHeading:
			p.unclosed(t)
			return false
		}
		t = p.next()
	}
}

// endStatement expects the end of a statement. It returns false if the
// enclosing section ended.
//
func (p *Parser) endStatement() bool {
	t := p.next()
	switch t.Type {
	case TokenNewline, TokenSemicolon:
		return true
	case TokenCurlyClose:
		return false
	case TokenEOF:
		p.prematureEOF(t)
		return false
	case TokenHeading:
		p.unclosed(t)
		return false
	case TokenComma:
		p.errorf(CodeCommaNotSemicolon, t, "unexpected ',', expected end of statement")
	default:
		p.errorf(CodeMissingSemicolon, t, "unexpected %s, expected end of statement", p.s.Describe(t))
	}
	return p.recover()
}

func (p *Parser) section(h Token) {
	sec := h.Value.(Section)
	if sec != SectionDevices && !p.seen[SectionDevices] {
		p.errorf(CodeMissingSection, h, "%v section must come after the DEVICES section", sec)
	}
	if p.seen[sec] {
		p.errorf(CodeSyntax, h, "duplicate %v section", sec)
	}
	p.seen[sec] = true

	t := p.next()
	for t.Type == TokenNewline {
		t = p.next()
	}
	switch t.Type {
	case TokenCurlyOpen:
	case TokenEOF:
		p.prematureEOF(t)
		return
	default:
		p.errorf(CodeMissingDelimiter, t, "expected '{' after %v, got %s", sec, p.s.Describe(t))
		p.skipToHeading()
		return
	}

	p.declared = p.declared[:0]
	switch sec {
	case SectionDevices, SectionInit:
		for p.declaration(sec) {
		}
		p.checkDeclared(sec)
	case SectionConnections:
		for p.connection() {
		}
		p.checkConnected()
	case SectionMonitor:
		for p.monitorPoint() {
		}
	}
}

type declName struct {
	name string
	pos  lex.Pos
}

// declaration parses one DEVICES or INIT statement. It returns false if the
// section ended.
//
func (p *Parser) declaration(sec Section) bool {
	names, conn, more := p.nameList()
	if names == nil {
		return more
	}
	var ok bool
	switch conn.Type {
	case TokenIs, TokenAre:
		ok = p.typeDeclaration(sec, names)
	default:
		ok = p.attrDeclaration(sec, names)
	}
	if !ok {
		return p.recover()
	}
	return p.endStatement()
}

// nameList parses a device list up to and including its connective. It
// returns a nil list if there is no declaration to process, with more set to
// false if the section ended.
//
func (p *Parser) nameList() (list []declName, conn Token, more bool) {
	var (
		ranged bool
		comma  bool
		want   = true // expecting a name
		arrow  lex.Pos
	)
	for {
		t := p.next()
		switch t.Type {
		case TokenCurlyClose:
			if len(list) > 0 || comma || ranged {
				p.errorf(CodeSyntax, t, "unexpected '}', incomplete declaration")
			}
			return nil, t, false
		case TokenEOF:
			p.prematureEOF(t)
			return nil, t, false
		case TokenNewline, TokenSemicolon:
			if len(list) == 0 && !comma && !ranged {
				continue
			}
			p.errorf(CodeSyntax, t, "incomplete declaration, expected 'is', 'are', 'has' or 'have'")
			return nil, t, true
		case TokenName:
			if !want {
				p.errorf(CodeMissingDelimiter, t, "missing ',' before %s", p.s.Describe(t))
				return nil, t, p.recover()
			}
			list = append(list, declName{p.c.Names.Name(t.Value.(ID)), t.Pos})
			want = false
		case TokenComma:
			if ranged {
				p.errorf(CodeSyntax, t, "cannot mix ',' and '=>' in a device list")
				return nil, t, p.recover()
			}
			if want {
				p.errorf(CodeUnexpectedSymbol, t, "unexpected ',', expected a device name")
				return nil, t, p.recover()
			}
			comma, want = true, true
		case TokenArrow:
			switch {
			case comma:
				p.errorf(CodeSyntax, t, "cannot mix ',' and '=>' in a device list")
				return nil, t, p.recover()
			case ranged:
				p.errorf(CodeSyntax, t, "a range must have exactly two endpoints")
				return nil, t, p.recover()
			case want:
				p.errorf(CodeSyntax, t, "missing start of range")
				return nil, t, p.recover()
			}
			ranged, want, arrow = true, true, t.Pos
		case TokenIs, TokenAre, TokenHas, TokenHave:
			if want {
				p.errorf(CodeSyntax, t, "missing device name before %s", p.s.Describe(t))
				return nil, t, p.recover()
			}
			if ranged {
				var ok bool
				if list, ok = p.expandRange(list, arrow); !ok {
					return nil, t, p.recover()
				}
			}
			return list, t, true
		case TokenHeading:
			p.unclosed(t)
			return nil, t, false
		case TokenNumber, TokenKind:
			p.errorf(CodeInvalidDeviceName, t, "%s is not a valid device name", p.s.Describe(t))
			return nil, t, p.recover()
		default:
			p.errorf(CodeUnexpectedSymbol, t, "unexpected %s in device list", p.s.Describe(t))
			return nil, t, p.recover()
		}
	}
}

// splitName splits a name into its alphabetic base and numeric suffix.
//
func splitName(s string) (base, digits string) {
	i := len(s)
	for i > 0 && isDigit(rune(s[i-1])) {
		i--
	}
	return s[:i], s[i:]
}

// ExpandRange expands the range lo => hi into the list of names it denotes.
// Both names must share the same base and end with a number. Leading zeros in
// lo set the minimum width of the generated suffixes.
//
func ExpandRange(lo, hi string) ([]string, error) {
	lb, ld := splitName(lo)
	hb, hd := splitName(hi)
	if ld == "" || hd == "" {
		return nil, errors.New("range endpoints must end with a number")
	}
	if lb != hb {
		return nil, errors.Errorf("name bases are inconsistent: %q and %q", lb, hb)
	}
	i, err1 := strconv.Atoi(ld)
	j, err2 := strconv.Atoi(hd)
	if err1 != nil || err2 != nil || j-i >= maxRange {
		return nil, errors.New("range too large")
	}
	if i > j {
		return nil, errRangeOrder
	}
	width := 0
	if len(ld) > 1 && ld[0] == '0' {
		width = len(ld)
	}
	names := make([]string, 0, j-i+1)
	for n := i; n <= j; n++ {
		names = append(names, fmt.Sprintf("%s%0*d", lb, width, n))
	}
	return names, nil
}

var errRangeOrder = errors.New("incorrect order of range values")

func (p *Parser) expandRange(list []declName, arrow lex.Pos) ([]declName, bool) {
	names, err := ExpandRange(list[0].name, list[1].name)
	if err != nil {
		code := CodeSyntax
		if err == errRangeOrder {
			code = CodeSemantic
		}
		p.errorAt(code, arrow, "%s", translate.Error(err))
		return nil, false
	}
	out := make([]declName, len(names))
	for i, n := range names {
		out[i] = declName{n, list[0].pos}
	}
	return out, true
}

func (p *Parser) typeDeclaration(sec Section, names []declName) bool {
	t := p.next()
	if t.Type != TokenKind {
		if t.Type == TokenName {
			p.errorf(CodeSyntax, t, "unknown device kind %s", p.s.Describe(t))
		} else {
			p.errorf(CodeSyntax, t, "expected a device kind, got %s", p.s.Describe(t))
		}
		return false
	}
	kind := t.Value.(Kind)
	switch {
	case kind == RC:
		p.errorf(CodeSemantic, t, "%v devices are not supported", kind)
		return true
	case sec == SectionDevices && kind.Autonomous():
		p.errorf(CodeSyntax, t, "%v devices must be declared in the INIT section", kind)
		return true
	case sec == SectionInit && !kind.Autonomous():
		p.errorf(CodeSyntax, t, "%v devices must be declared in the DEVICES section", kind)
		return true
	}
	for _, n := range names {
		id := p.c.Names.Lookup(n.name)[0]
		if err := p.c.Devices.MakeDevice(id, kind); err != nil {
			if errors.Cause(err) == ErrDevicePresent {
				p.errorAt(CodeSemantic, n.pos, "device %q already exists", n.name)
			} else {
				p.errorAt(CodeSemantic, n.pos, "%s: %s", n.name, translate.Error(err))
			}
			continue
		}
		p.declared = append(p.declared, id)
		p.declPos[id] = n.pos
	}
	return true
}

func (p *Parser) attrDeclaration(sec Section, names []declName) bool {
	t := p.next()
	if t.Type != TokenNumber {
		p.errorf(CodeSyntax, t, "expected a number, got %s", p.s.Describe(t))
		return false
	}
	digits := t.Value.(string)
	for _, n := range names {
		var dev *Device
		if id, ok := p.c.Names.Query(n.name); ok {
			dev = p.c.Devices.Get(id)
		}
		if dev == nil {
			p.errorAt(CodeSemantic, n.pos, "device %q does not exist", n.name)
			continue
		}
		if sec == SectionDevices {
			p.setInputs(dev, n, t, digits)
		} else {
			p.setAttribute(dev, n, t, digits)
		}
	}
	return true
}

func (p *Parser) setInputs(dev *Device, n declName, t Token, digits string) {
	count, err := strconv.Atoi(digits)
	if err != nil {
		count = MaxInputs + 1
	}
	err = p.c.Devices.SetInputs(dev.ID, count)
	switch err {
	case nil:
	case ErrInputsFixed:
		p.errorf(CodeSemantic, t, "inputs cannot be specified for %v device %q", dev.Kind, n.name)
	case ErrXorInputs:
		p.errorf(CodeSemantic, t, "XOR gate %q must have exactly 2 inputs", n.name)
	case ErrNotInputs:
		p.errorf(CodeSemantic, t, "too many inputs for NOT gate %q", n.name)
	case ErrTooManyInputs:
		p.errorf(CodeSemantic, t, "maximum number of inputs is %d", MaxInputs)
	case ErrInputsSet:
		p.errorf(CodeSemantic, t, "inputs of %q already specified", n.name)
	default:
		p.errorf(CodeSemantic, t, "%s: %s", n.name, translate.Error(err))
	}
}

func (p *Parser) setAttribute(dev *Device, n declName, t Token, digits string) {
	ds := p.c.Devices
	switch dev.Kind {
	case Switch:
		if digits != "0" && digits != "1" {
			p.errorf(CodeSemantic, t, "switch state must be 0 or 1")
			return
		}
		ds.SetSwitch(dev.ID, digits == "1")
	case Clock:
		hp, err := strconv.Atoi(digits)
		if err != nil || hp <= 0 {
			p.errorf(CodeSemantic, t, "clock half period must be a positive number")
			return
		}
		ds.SetHalfPeriod(dev.ID, hp)
	case SigGen:
		seq := make([]bool, len(digits))
		for i := range digits {
			switch digits[i] {
			case '0':
			case '1':
				seq[i] = true
			default:
				p.errorf(CodeSemantic, t, "signal sequence must only contain 0 and 1")
				return
			}
		}
		ds.SetSequence(dev.ID, seq)
	default:
		p.errorf(CodeSemantic, t, "%v device %q has no initial value", dev.Kind, n.name)
	}
}

// checkDeclared checks the devices declared in the section that just ended.
//
func (p *Parser) checkDeclared(sec Section) {
	for _, id := range p.declared {
		dev := p.c.Devices.Get(id)
		name := p.c.Names.Name(id)
		pos := p.declPos[id]
		switch {
		case sec == SectionInit && dev.Kind == SigGen:
			if len(dev.Sequence()) == 0 {
				p.errorAt(CodeSemantic, pos, "no sequence specified for signal generator %q", name)
			}
		case sec == SectionDevices:
			switch p.c.Devices.Validate(id) {
			case nil:
			case ErrNoOutputs:
				p.errorAt(CodeSemantic, pos, "no outputs for device %q", name)
			default:
				p.errorAt(CodeSemantic, pos, "no inputs specified for gate %q", name)
			}
		}
	}
}

type pinRef struct {
	dev    string
	pin    string
	hasPin bool
	pos    lex.Pos
	devID  ID
	pinID  ID
}

// pinRef parses DEV or DEV.PIN starting with the already consumed token t.
//
func (p *Parser) pinRef(t Token, needPin bool) (r pinRef, ok bool) {
	switch t.Type {
	case TokenName:
	case TokenHeading:
		p.unclosed(t)
		return r, false
	case TokenNumber, TokenKind, TokenIs, TokenAre, TokenHas, TokenHave:
		p.errorf(CodeInvalidDeviceName, t, "%s is not a valid device name", p.s.Describe(t))
		return r, false
	case TokenNewline, TokenSemicolon, TokenCurlyClose, TokenEOF:
		p.errorf(CodeSyntax, t, "expected a device name, got %s", p.s.Describe(t))
		return r, false
	default:
		p.errorf(CodeUnexpectedSymbol, t, "unexpected %s, expected a device name", p.s.Describe(t))
		return r, false
	}
	r.devID = t.Value.(ID)
	r.dev = p.c.Names.Name(r.devID)
	r.pos = t.Pos
	r.pinID = None
	if p.peek().Type != TokenDot {
		if needPin {
			p.errorf(CodeMissingPort, t, "missing input name, expected %s.<input>", r.dev)
			return r, false
		}
		return r, true
	}
	p.next()
	t = p.next()
	switch t.Type {
	case TokenName:
		r.pinID = t.Value.(ID)
		r.pin = p.c.Names.Name(r.pinID)
	case TokenNumber:
		r.pin = t.Value.(string)
		r.pinID = p.c.Names.Lookup(r.pin)[0]
	case TokenHeading:
		p.unclosed(t)
		return r, false
	default:
		p.errorf(CodeMissingPort, t, "expected a pin name after '.', got %s", p.s.Describe(t))
		return r, false
	}
	r.hasPin = true
	return r, true
}

func (r *pinRef) String() string {
	if r.hasPin {
		return r.dev + "." + r.pin
	}
	return r.dev
}

// connection parses one CONNECTIONS statement. It returns false if the
// section ended.
//
func (p *Parser) connection() bool {
	t := p.next()
	switch t.Type {
	case TokenNewline, TokenSemicolon:
		return true
	case TokenCurlyClose:
		return false
	case TokenEOF:
		p.prematureEOF(t)
		return false
	case TokenHeading:
		p.unclosed(t)
		return false
	}
	src, ok := p.pinRef(t, false)
	if !ok {
		return p.recover()
	}
	t = p.next()
	if t.Type == TokenHeading {
		p.unclosed(t)
		return false
	}
	if t.Type != TokenArrow {
		p.errorf(CodeMissingArrow, t, "expected '=>' after %s, got %s", src.String(), p.s.Describe(t))
		return p.recover()
	}
	dst, ok := p.pinRef(p.next(), true)
	if !ok {
		return p.recover()
	}
	p.connect(&src, &dst)
	return p.endStatement()
}

func (p *Parser) connect(src, dst *pinRef) {
	ds := p.c.Devices
	sd, dd := ds.Get(src.devID), ds.Get(dst.devID)
	if sd == nil {
		p.errorAt(CodeInvalidOutput, src.pos, "device %q does not exist", src.dev)
		return
	}
	if _, ok := sd.Outputs[src.pinID]; !ok {
		if src.hasPin {
			p.errorAt(CodeInvalidOutput, src.pos, "%q is not an output of %q", src.pin, src.dev)
		} else {
			p.errorAt(CodeInvalidOutput, src.pos, "device %q has no default output, expected one of %s", src.dev, p.outputList(sd))
		}
		return
	}
	if dd == nil {
		p.errorAt(CodeInvalidInput, dst.pos, "device %q does not exist", dst.dev)
		return
	}
	if _, ok := dd.Inputs[dst.pinID]; !ok {
		p.errorAt(CodeInvalidInput, dst.pos, "%q is not an input of %q", dst.pin, dst.dev)
		return
	}
	err := p.c.Network.MakeConnection(src.devID, src.pinID, dst.devID, dst.pinID)
	if err == ErrInputConnected {
		prev, _ := p.c.Network.GetConnectedOutput(dst.devID, dst.pinID)
		p.errorAt(CodeDuplicateConnection, dst.pos, "input %s is already connected to %s", dst.String(), ds.SignalName(prev.Device, prev.Pin))
	} else if err != nil {
		p.errorAt(CodeSemantic, dst.pos, "%s", translate.Error(err))
	}
}

func (p *Parser) outputList(d *Device) string {
	var l []string
	for _, out := range p.c.Devices.OutputIDs(d) {
		l = append(l, p.c.Devices.SignalName(d.ID, out))
	}
	return strings.Join(l, ", ")
}

// checkConnected reports unconnected inputs at the end of the CONNECTIONS
// section.
//
func (p *Parser) checkConnected() {
	un := p.c.Network.Unconnected()
	if len(un) == 0 {
		return
	}
	l := make([]string, len(un))
	for i, pr := range un {
		l[i] = p.c.Devices.SignalName(pr.Device, pr.Pin)
	}
	p.errorf(CodeInputsNotConnected, p.tok, "not all inputs are connected: %s", strings.Join(l, ", "))
}

// monitorPoint parses one MONITOR entry. It returns false if the section
// ended.
//
func (p *Parser) monitorPoint() bool {
	t := p.next()
	switch t.Type {
	case TokenCurlyClose:
		return false
	case TokenEOF:
		p.prematureEOF(t)
		return false
	case TokenComma, TokenNewline, TokenSemicolon:
		return true
	case TokenHeading:
		p.unclosed(t)
		return false
	case TokenName:
	case TokenNumber, TokenKind, TokenIs, TokenAre, TokenHas, TokenHave:
		p.errorf(CodeInvalidDeviceName, t, "%s is not a valid device name", p.s.Describe(t))
		return true
	default:
		p.errorf(CodeUnexpectedSymbol, t, "unexpected %s in monitor list", p.s.Describe(t))
		return true
	}
	r, ok := p.pinRef(t, false)
	if !ok {
		if p.back {
			return false
		}
		switch p.tok.Type {
		case TokenCurlyClose:
			return false
		case TokenEOF:
			p.prematureEOF(p.tok)
			return false
		}
		return true
	}
	if n := p.peek(); n.Type == TokenName {
		p.errorf(CodeMissingDelimiter, n, "missing ',' before %s", p.s.Describe(n))
	}
	p.monitor(&r)
	return true
}

func (p *Parser) monitor(r *pinRef) {
	if p.c.Devices.Get(r.devID) == nil {
		p.errorAt(CodeSemantic, r.pos, "device %q does not exist", r.dev)
		return
	}
	switch p.c.Monitors.MakeMonitor(r.devID, r.pinID) {
	case nil:
	case ErrNotOutput:
		p.errorAt(CodeInvalidOutput, r.pos, "%s is not an output", r.String())
	case ErrMonitorPresent:
		p.errorAt(CodeSemantic, r.pos, "already monitoring %s", r.String())
	}
}
