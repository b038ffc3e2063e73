// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// Kind is a device kind.
//
type Kind int

// Device kinds.
//
const (
	Switch Kind = iota
	Clock
	SigGen
	And
	Nand
	Or
	Nor
	Xor
	Not
	DType
	RC // reserved, not implemented

	kindCount
)

var kindNames = [...]string{
	Switch: "SWITCH",
	Clock:  "CLOCK",
	SigGen: "SIGGEN",
	And:    "AND",
	Nand:   "NAND",
	Or:     "OR",
	Nor:    "NOR",
	Xor:    "XOR",
	Not:    "NOT",
	DType:  "DTYPE",
	RC:     "RC",
}

var kinds = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k, n := range kindNames {
		m[n] = Kind(k)
	}
	return m
}()

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// KindByName returns the device kind for the given keyword.
//
func KindByName(name string) (Kind, bool) {
	k, ok := kinds[name]
	return k, ok
}

// Autonomous returns true for input-free devices whose output only depends on
// their own state (switches, clocks and signal generators).
//
func (k Kind) Autonomous() bool {
	return k == Switch || k == Clock || k == SigGen
}

// Gate returns true for combinational logic gates.
//
func (k Kind) Gate() bool {
	return k >= And && k <= Not
}

// MaxInputs is the maximum number of inputs of AND, NAND, OR and NOR gates.
//
const MaxInputs = 16

// D-type pin names.
//
const (
	PinCLK   = "CLK"
	PinDATA  = "DATA"
	PinSET   = "SET"
	PinCLEAR = "CLEAR"
	PinQ     = "Q"
	PinQBAR  = "QBAR"
)

// Errors returned by Devices methods.
//
var (
	ErrDevicePresent   = errors.New("device already exists")
	ErrDeviceAbsent    = errors.New("device does not exist")
	ErrKindUnsupported = errors.New("device kind not supported")
	ErrInputsFixed     = errors.New("inputs cannot be specified for this device")
	ErrXorInputs       = errors.New("XOR gates must have exactly 2 inputs")
	ErrNotInputs       = errors.New("too many inputs for a NOT gate")
	ErrTooManyInputs   = errors.Errorf("maximum number of inputs is %d", MaxInputs)
	ErrInputsSet       = errors.New("inputs already specified")
	ErrNoInputs        = errors.New("no inputs specified")
	ErrNoOutputs       = errors.New("device has no output")
	ErrWrongKind       = errors.New("operation not supported by this device kind")
	ErrBadPeriod       = errors.New("clock half period must be positive")
	ErrEmptySequence   = errors.New("empty signal sequence")
)

// PinRef identifies a pin of a device. Pin is None for the unnamed output of
// single output devices.
//
type PinRef struct {
	Device ID
	Pin    ID
}

// Device is a device in a circuit.
//
type Device struct {
	ID      ID
	Kind    Kind
	Inputs  map[ID]*PinRef // input pin -> connected output, nil if unconnected
	Outputs map[ID]bool    // output pin -> current value

	inputsSet  bool // input count given with SetInputs
	state      bool // SWITCH
	halfPeriod int  // CLOCK
	phase      int
	seq        []bool // SIGGEN
	step       int
	clk        bool // DTYPE: CLK value at the previous tick
}

// Devices is the device registry of a circuit.
//
type Devices struct {
	names *Names
	list  []*Device
	m     map[ID]*Device

	clk, data, set, clear, q, qbar ID
}

// NewDevices returns a new empty device registry using the given symbol table.
//
func NewDevices(names *Names) *Devices {
	d := &Devices{names: names, m: make(map[ID]*Device)}
	ids := names.Lookup(PinCLK, PinDATA, PinSET, PinCLEAR, PinQ, PinQBAR)
	d.clk, d.data, d.set, d.clear, d.q, d.qbar = ids[0], ids[1], ids[2], ids[3], ids[4], ids[5]
	return d
}

// Names returns the symbol table used by d.
//
func (d *Devices) Names() *Names { return d.names }

// Get returns the device with the given id or nil if no such device exists.
//
func (d *Devices) Get(id ID) *Device {
	return d.m[id]
}

// All returns all devices in declaration order. The returned slice must not
// be modified.
//
func (d *Devices) All() []*Device {
	return d.list
}

// Find returns the ids of all devices of the given kind, in declaration
// order.
//
func (d *Devices) Find(kind Kind) []ID {
	var ids []ID
	for _, dev := range d.list {
		if dev.Kind == kind {
			ids = append(ids, dev.ID)
		}
	}
	return ids
}

func (d *Devices) add(id ID, kind Kind) (*Device, error) {
	if _, ok := d.m[id]; ok {
		return nil, ErrDevicePresent
	}
	dev := &Device{
		ID:      id,
		Kind:    kind,
		Inputs:  make(map[ID]*PinRef),
		Outputs: make(map[ID]bool),
	}
	d.list = append(d.list, dev)
	d.m[id] = dev
	return dev, nil
}

// AddInput adds an unconnected input pin to a device.
//
func (d *Devices) AddInput(id, pin ID) error {
	dev := d.m[id]
	if dev == nil {
		return ErrDeviceAbsent
	}
	dev.Inputs[pin] = nil
	return nil
}

// AddOutput adds an output pin to a device.
//
func (d *Devices) AddOutput(id, pin ID) error {
	dev := d.m[id]
	if dev == nil {
		return ErrDeviceAbsent
	}
	dev.Outputs[pin] = false
	return nil
}

func (d *Devices) numberedInputs(dev *Device, n int) {
	for i := 1; i <= n; i++ {
		dev.Inputs[d.names.Lookup(strconv.Itoa(i))[0]] = nil
	}
}

// MakeGate creates a logic gate. XOR and NOT gates get their fixed inputs.
// AND, NAND, OR and NOR gates are created without inputs; use SetInputs to
// add them.
//
func (d *Devices) MakeGate(id ID, kind Kind) error {
	if !kind.Gate() {
		return errors.Wrap(ErrWrongKind, kind.String())
	}
	dev, err := d.add(id, kind)
	if err != nil {
		return err
	}
	dev.Outputs[None] = false
	switch kind {
	case Xor:
		d.numberedInputs(dev, 2)
	case Not:
		d.numberedInputs(dev, 1)
	}
	return nil
}

// MakeDType creates a D-type flip-flop.
//
func (d *Devices) MakeDType(id ID) error {
	dev, err := d.add(id, DType)
	if err != nil {
		return err
	}
	for _, p := range []ID{d.clk, d.data, d.set, d.clear} {
		dev.Inputs[p] = nil
	}
	dev.Outputs[d.q] = false
	dev.Outputs[d.qbar] = true
	return nil
}

// MakeSwitch creates a switch in the given state.
//
func (d *Devices) MakeSwitch(id ID, state bool) error {
	dev, err := d.add(id, Switch)
	if err != nil {
		return err
	}
	dev.state = state
	dev.Outputs[None] = state
	return nil
}

// MakeClock creates a clock whose output toggles every halfPeriod ticks.
//
func (d *Devices) MakeClock(id ID, halfPeriod int) error {
	if halfPeriod <= 0 {
		return ErrBadPeriod
	}
	dev, err := d.add(id, Clock)
	if err != nil {
		return err
	}
	dev.halfPeriod = halfPeriod
	dev.Outputs[None] = false
	return nil
}

// MakeSignalGenerator creates a signal generator cycling through seq, one
// value per tick. An empty sequence outputs a constant low signal until one is
// set with SetSequence.
//
func (d *Devices) MakeSignalGenerator(id ID, seq []bool) error {
	dev, err := d.add(id, SigGen)
	if err != nil {
		return err
	}
	dev.seq = append([]bool(nil), seq...)
	dev.Outputs[None] = false
	return nil
}

// MakeDevice creates a device of the given kind with default settings:
// switches are off, clocks have a half period of 1 and signal generators
// have an empty sequence.
//
func (d *Devices) MakeDevice(id ID, kind Kind) error {
	switch {
	case kind.Gate():
		return d.MakeGate(id, kind)
	case kind == DType:
		return d.MakeDType(id)
	case kind == Switch:
		return d.MakeSwitch(id, false)
	case kind == Clock:
		return d.MakeClock(id, 1)
	case kind == SigGen:
		return d.MakeSignalGenerator(id, nil)
	}
	return errors.Wrap(ErrKindUnsupported, kind.String())
}

// SetInputs adds n numbered inputs "1".."n" to a gate.
//
// DTYPE devices and input-free devices reject any input count. XOR gates
// only accept 2 (their fixed count). NOT gates reject counts of 2 and more;
// smaller counts leave the gate unchanged. Other gates accept up to MaxInputs
// inputs, once.
//
func (d *Devices) SetInputs(id ID, n int) error {
	dev := d.m[id]
	if dev == nil {
		return ErrDeviceAbsent
	}
	switch dev.Kind {
	case Xor:
		if n != 2 {
			return ErrXorInputs
		}
		return nil
	case Not:
		if n >= 2 {
			return ErrNotInputs
		}
		return nil
	case And, Nand, Or, Nor:
		if n > MaxInputs || n < 0 {
			return ErrTooManyInputs
		}
		if dev.inputsSet {
			return ErrInputsSet
		}
		dev.inputsSet = true
		d.numberedInputs(dev, n)
		return nil
	}
	return ErrInputsFixed
}

// SetSwitch sets the state of a switch.
//
func (d *Devices) SetSwitch(id ID, state bool) error {
	dev := d.m[id]
	if dev == nil {
		return ErrDeviceAbsent
	}
	if dev.Kind != Switch {
		return errors.Wrap(ErrWrongKind, dev.Kind.String())
	}
	dev.state = state
	dev.Outputs[None] = state
	return nil
}

// SetHalfPeriod sets the half period of a clock.
//
func (d *Devices) SetHalfPeriod(id ID, halfPeriod int) error {
	dev := d.m[id]
	if dev == nil {
		return ErrDeviceAbsent
	}
	if dev.Kind != Clock {
		return errors.Wrap(ErrWrongKind, dev.Kind.String())
	}
	if halfPeriod <= 0 {
		return ErrBadPeriod
	}
	dev.halfPeriod = halfPeriod
	return nil
}

// SetSequence sets the output sequence of a signal generator.
//
func (d *Devices) SetSequence(id ID, seq []bool) error {
	dev := d.m[id]
	if dev == nil {
		return ErrDeviceAbsent
	}
	if dev.Kind != SigGen {
		return errors.Wrap(ErrWrongKind, dev.Kind.String())
	}
	if len(seq) == 0 {
		return ErrEmptySequence
	}
	dev.seq = append(dev.seq[:0], seq...)
	return nil
}

// Sequence returns the sequence of a signal generator.
//
func (dev *Device) Sequence() []bool { return dev.seq }

// HalfPeriod returns the half period of a clock.
//
func (dev *Device) HalfPeriod() int { return dev.halfPeriod }

// SwitchState returns the state of a switch.
//
func (dev *Device) SwitchState() bool { return dev.state }

// Validate checks that a device has the inputs and outputs required by its
// kind.
//
func (d *Devices) Validate(id ID) error {
	dev := d.m[id]
	if dev == nil {
		return ErrDeviceAbsent
	}
	if len(dev.Outputs) == 0 {
		return ErrNoOutputs
	}
	switch {
	case dev.Kind == DType:
		if len(dev.Inputs) != 4 || len(dev.Outputs) != 2 {
			return ErrNoInputs
		}
	case dev.Kind.Gate():
		if len(dev.Inputs) == 0 {
			return ErrNoInputs
		}
		if _, ok := dev.Outputs[None]; !ok || len(dev.Outputs) != 1 {
			return ErrNoOutputs
		}
	}
	return nil
}

// reset restores the power-on state of all devices. Switch states are kept.
//
func (d *Devices) reset() {
	for _, dev := range d.list {
		switch dev.Kind {
		case Switch:
			dev.Outputs[None] = dev.state
		case DType:
			dev.clk = false
			dev.Outputs[d.q] = false
			dev.Outputs[d.qbar] = true
		default:
			dev.phase, dev.step = 0, 0
			dev.Outputs[None] = false
		}
	}
}

// SignalName returns the printable name of an output: "dev" for unnamed
// outputs, "dev.pin" otherwise.
//
func (d *Devices) SignalName(dev, pin ID) string {
	if pin == None {
		return d.names.Name(dev)
	}
	return d.names.Name(dev) + "." + d.names.Name(pin)
}

// ParseSignalName returns the device and pin ids for a signal name of the
// form "dev" or "dev.pin". Names that are not in the symbol table are
// reported as absent.
//
func (d *Devices) ParseSignalName(s string) (dev, pin ID, ok bool) {
	pin = None
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			if pin, ok = d.names.Query(s[i+1:]); !ok {
				return None, None, false
			}
			s = s[:i]
			break
		}
	}
	dev, ok = d.names.Query(s)
	if !ok {
		return None, None, false
	}
	return dev, pin, true
}

// InputIDs returns the input pins of a device in pin order.
//
func (d *Devices) InputIDs(dev *Device) []ID {
	ids := make([]ID, 0, len(dev.Inputs))
	for id := range dev.Inputs {
		ids = append(ids, id)
	}
	d.sortPins(ids)
	return ids
}

// OutputIDs returns the output pins of a device in pin order, the unnamed
// output first.
//
func (d *Devices) OutputIDs(dev *Device) []ID {
	ids := make([]ID, 0, len(dev.Outputs))
	for id := range dev.Outputs {
		ids = append(ids, id)
	}
	d.sortPins(ids)
	return ids
}

func (d *Devices) sortPins(ids []ID) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if a == None || b == None {
			return a == None && b != None
		}
		sa, sb := d.names.Name(a), d.names.Name(b)
		na, ea := strconv.Atoi(sa)
		nb, eb := strconv.Atoi(sb)
		if ea == nil && eb == nil {
			return na < nb
		}
		return sa < sb
	})
}
