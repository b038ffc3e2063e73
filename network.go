// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"log"
	"strings"

	"github.com/pkg/errors"
)

// Errors returned by Network methods.
//
var (
	ErrNotInput           = errors.New("pin is not an input")
	ErrNotOutput          = errors.New("pin is not an output")
	ErrInputConnected     = errors.New("input is already connected")
	ErrInputsNotConnected = errors.New("not all inputs are connected")
	ErrOscillation        = errors.New("network oscillates")
)

// DefaultIterationFactor is the default value of Network.IterationFactor.
//
const DefaultIterationFactor = 2

// Network connects device outputs to device inputs and runs the simulation.
//
// Each call to Execute advances the simulation by one tick:
//
//	- clocks, signal generators and switches update their outputs
//	- gates are evaluated in declaration order, reading the latest values,
//	  until no output changes
//	- D-type flip-flops latch DATA on rising edges of CLK, then SET and CLEAR
//	  are applied (CLEAR wins), and gates settle again if any Q changed.
//	  Flip-flops latch simultaneously: a flip-flop clocked by another one's
//	  output sees that change on the next tick
//
// If the gates do not settle within IterationFactor*len(devices)+1 passes,
// Execute returns an error whose cause is ErrOscillation.
//
type Network struct {
	// IterationFactor bounds the number of settle passes per tick. Values
	// <= 0 select DefaultIterationFactor.
	IterationFactor int
	// Verbose enables logging of each tick.
	Verbose bool

	devices *Devices
	ticks   int
	checked bool
	in      []bool // scratch input values
	q       []bool // next Q of each flip-flop
}

// NewNetwork returns a new network for the given devices.
//
func NewNetwork(devices *Devices) *Network {
	return &Network{IterationFactor: DefaultIterationFactor, devices: devices}
}

// Devices returns the devices of the network.
//
func (n *Network) Devices() *Devices { return n.devices }

// MakeConnection connects output srcOut of device srcDev to input dstIn of
// device dstDev.
//
func (n *Network) MakeConnection(srcDev, srcOut, dstDev, dstIn ID) error {
	src, dst := n.devices.Get(srcDev), n.devices.Get(dstDev)
	if src == nil || dst == nil {
		return ErrDeviceAbsent
	}
	if _, ok := src.Outputs[srcOut]; !ok {
		return ErrNotOutput
	}
	p, ok := dst.Inputs[dstIn]
	if !ok {
		return ErrNotInput
	}
	if p != nil {
		return ErrInputConnected
	}
	dst.Inputs[dstIn] = &PinRef{Device: srcDev, Pin: srcOut}
	n.checked = false
	return nil
}

// GetConnectedOutput returns the output connected to input in of device dev.
// It returns false if the device or input does not exist or if the input is
// not connected.
//
func (n *Network) GetConnectedOutput(dev, in ID) (PinRef, bool) {
	d := n.devices.Get(dev)
	if d == nil {
		return PinRef{None, None}, false
	}
	p := d.Inputs[in]
	if p == nil {
		return PinRef{None, None}, false
	}
	return *p, true
}

// GetOutputSignal returns the current value of an output.
//
func (n *Network) GetOutputSignal(dev, out ID) (v bool, ok bool) {
	d := n.devices.Get(dev)
	if d == nil {
		return false, false
	}
	v, ok = d.Outputs[out]
	return v, ok
}

// GetInputSignal returns the current value of the output connected to an
// input.
//
func (n *Network) GetInputSignal(dev, in ID) (v bool, ok bool) {
	p, ok := n.GetConnectedOutput(dev, in)
	if !ok {
		return false, false
	}
	return n.GetOutputSignal(p.Device, p.Pin)
}

// Unconnected returns the unconnected inputs of all devices, in declaration
// and pin order.
//
func (n *Network) Unconnected() []PinRef {
	var l []PinRef
	for _, d := range n.devices.All() {
		for _, in := range n.devices.InputIDs(d) {
			if d.Inputs[in] == nil {
				l = append(l, PinRef{Device: d.ID, Pin: in})
			}
		}
	}
	return l
}

// CheckNetwork checks that all devices are complete and that all inputs are
// connected.
//
func (n *Network) CheckNetwork() error {
	for _, d := range n.devices.All() {
		if err := n.devices.Validate(d.ID); err != nil {
			return errors.Wrapf(err, "device %s", n.devices.names.Name(d.ID))
		}
	}
	if un := n.Unconnected(); len(un) > 0 {
		s := make([]string, len(un))
		for i, p := range un {
			s[i] = n.devices.SignalName(p.Device, p.Pin)
		}
		return errors.Wrap(ErrInputsNotConnected, strings.Join(s, ", "))
	}
	n.checked = true
	return nil
}

// Ticks returns the number of ticks executed since the network was created or
// last reset.
//
func (n *Network) Ticks() int { return n.ticks }

// Reset restores all devices to their power-on state and resets the tick
// counter. Connections and switch states are kept.
//
func (n *Network) Reset() {
	n.ticks = 0
	n.devices.reset()
}

// Execute runs the simulation for one tick.
//
func (n *Network) Execute() error {
	if !n.checked {
		if err := n.CheckNetwork(); err != nil {
			return err
		}
	}
	for _, d := range n.devices.All() {
		switch d.Kind {
		case Switch:
			d.Outputs[None] = d.state
		case Clock:
			d.phase++
			if d.phase >= d.halfPeriod {
				d.phase = 0
				d.Outputs[None] = !d.Outputs[None]
			}
		case SigGen:
			if len(d.seq) > 0 {
				d.Outputs[None] = d.seq[d.step%len(d.seq)]
				d.step++
			}
		}
	}
	passes, ok := n.settle()
	if ok && n.latch() {
		var p int
		p, ok = n.settle()
		passes += p
	}
	if !ok {
		if n.Verbose {
			log.Printf("logsim: tick %d did not settle after %d passes", n.ticks+1, passes)
		}
		return errors.Wrapf(ErrOscillation, "tick %d", n.ticks+1)
	}
	n.ticks++
	if n.Verbose {
		log.Printf("logsim: tick %d settled in %d passes", n.ticks, passes)
	}
	return nil
}

func (n *Network) input(d *Device, pin ID) bool {
	p := d.Inputs[pin]
	if p == nil {
		return false
	}
	return n.devices.m[p.Device].Outputs[p.Pin]
}

// settle evaluates gates until no output changes. It returns the number of
// passes and false if the network did not settle.
//
func (n *Network) settle() (int, bool) {
	devs := n.devices.All()
	factor := n.IterationFactor
	if factor <= 0 {
		factor = DefaultIterationFactor
	}
	limit := factor*len(devs) + 1
	for i := 1; i <= limit; i++ {
		changed := false
		for _, d := range devs {
			if !d.Kind.Gate() {
				continue
			}
			in := n.in[:0]
			for pin := range d.Inputs {
				in = append(in, n.input(d, pin))
			}
			n.in = in
			v := gates[d.Kind](in)
			if d.Outputs[None] != v {
				d.Outputs[None] = v
				changed = true
			}
		}
		if !changed {
			return i, true
		}
	}
	return limit, false
}

// latch updates D-type flip-flops. All flip-flops sample their inputs before
// any Q output changes, so a flip-flop fed by another one on the same clock
// sees the value from before the edge. It returns true if any output changed.
//
func (n *Network) latch() bool {
	ds := n.devices
	next := n.q[:0]
	for _, d := range ds.All() {
		if d.Kind != DType {
			continue
		}
		q := d.Outputs[ds.q]
		clk := n.input(d, ds.clk)
		if clk && !d.clk {
			q = n.input(d, ds.data)
		}
		d.clk = clk
		if n.input(d, ds.set) {
			q = true
		}
		if n.input(d, ds.clear) {
			q = false
		}
		next = append(next, q)
	}
	n.q = next

	changed := false
	for _, d := range ds.All() {
		if d.Kind != DType {
			continue
		}
		q := next[0]
		next = next[1:]
		if q != d.Outputs[ds.q] || q == d.Outputs[ds.qbar] {
			changed = true
		}
		d.Outputs[ds.q] = q
		d.Outputs[ds.qbar] = !q
	}
	return changed
}
