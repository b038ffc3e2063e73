// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Errors returned by Monitors methods.
//
var (
	ErrMonitorPresent = errors.New("already monitoring this output")
	ErrMonitorAbsent  = errors.New("output is not monitored")
)

// Monitors records the history of selected outputs, one sample per tick.
//
type Monitors struct {
	devices *Devices
	network *Network
	points  []PinRef
	signals map[PinRef][]bool
}

// NewMonitors returns a new monitor set for the devices in network.
//
func NewMonitors(network *Network) *Monitors {
	return &Monitors{
		devices: network.Devices(),
		network: network,
		signals: make(map[PinRef][]bool),
	}
}

// MakeMonitor starts monitoring output out of device dev. The history of the
// new monitor is empty.
//
func (m *Monitors) MakeMonitor(dev, out ID) error {
	d := m.devices.Get(dev)
	if d == nil {
		return ErrDeviceAbsent
	}
	if _, ok := d.Outputs[out]; !ok {
		return ErrNotOutput
	}
	p := PinRef{dev, out}
	if _, ok := m.signals[p]; ok {
		return ErrMonitorPresent
	}
	m.points = append(m.points, p)
	m.signals[p] = []bool{}
	return nil
}

// RemoveMonitor stops monitoring an output and discards its history.
//
func (m *Monitors) RemoveMonitor(dev, out ID) error {
	p := PinRef{dev, out}
	if _, ok := m.signals[p]; !ok {
		return ErrMonitorAbsent
	}
	delete(m.signals, p)
	for i, q := range m.points {
		if q == p {
			m.points = append(m.points[:i], m.points[i+1:]...)
			break
		}
	}
	return nil
}

// RecordSignals appends the current value of every monitored output to its
// history.
//
func (m *Monitors) RecordSignals() {
	for _, p := range m.points {
		v, _ := m.network.GetOutputSignal(p.Device, p.Pin)
		m.signals[p] = append(m.signals[p], v)
	}
}

// ResetMonitors clears the history of all monitors.
//
func (m *Monitors) ResetMonitors() {
	for _, p := range m.points {
		m.signals[p] = nil
	}
}

// Points returns the monitored outputs in the order they were added.
//
func (m *Monitors) Points() []PinRef {
	return append([]PinRef(nil), m.points...)
}

// Signals returns the recorded history of an output.
//
func (m *Monitors) Signals(dev, out ID) ([]bool, bool) {
	s, ok := m.signals[PinRef{dev, out}]
	return s, ok
}

// GetSignalNames returns the names of monitored outputs, in monitoring order,
// and the names of all other outputs in device and pin order.
//
func (m *Monitors) GetSignalNames() (monitored, unmonitored []string) {
	for _, p := range m.points {
		monitored = append(monitored, m.devices.SignalName(p.Device, p.Pin))
	}
	for _, d := range m.devices.All() {
		for _, out := range m.devices.OutputIDs(d) {
			if _, ok := m.signals[PinRef{d.ID, out}]; !ok {
				unmonitored = append(unmonitored, m.devices.SignalName(d.ID, out))
			}
		}
	}
	return monitored, unmonitored
}

// Waveform writes the recorded signals to w, one line per monitored output.
// High samples are drawn as '-' and low samples as '_'.
//
func (m *Monitors) Waveform(w io.Writer) error {
	names, _ := m.GetSignalNames()
	width := 0
	for _, n := range names {
		if len(n) > width {
			width = len(n)
		}
	}
	var b strings.Builder
	for i, p := range m.points {
		b.WriteString(names[i])
		b.WriteString(strings.Repeat(" ", width-len(names[i])))
		b.WriteString(" : ")
		for _, v := range m.signals[p] {
			if v {
				b.WriteByte('-')
			} else {
				b.WriteByte('_')
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
