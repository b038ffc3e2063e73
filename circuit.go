// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

import (
	"github.com/pkg/errors"
)

// Circuit is a simulation session. It owns its symbol table, devices, network
// and monitors.
//
type Circuit struct {
	Names    *Names
	Devices  *Devices
	Network  *Network
	Monitors *Monitors
}

// NewCircuit returns a new empty circuit.
//
func NewCircuit() *Circuit {
	names := NewNames()
	devices := NewDevices(names)
	network := NewNetwork(devices)
	return &Circuit{
		Names:    names,
		Devices:  devices,
		Network:  network,
		Monitors: NewMonitors(network),
	}
}

// Compile builds a circuit from a circuit description. name is the source name
// used in error messages.
//
// If src contains errors, Compile returns a nil circuit and an *ErrorList
// holding all diagnostics. Use ErrorList.Report for a human readable report.
//
func Compile(name, src string) (*Circuit, error) {
	c := NewCircuit()
	p := NewParser(c, name, src)
	if !p.Parse() {
		return nil, p.Diagnostics().Err()
	}
	return c, nil
}

// SetSwitch sets the state of the named switch.
//
func (c *Circuit) SetSwitch(name string, state bool) error {
	id, ok := c.Names.Query(name)
	if !ok {
		return errors.Wrap(ErrDeviceAbsent, name)
	}
	return errors.Wrap(c.Devices.SetSwitch(id, state), name)
}

// Monitor starts monitoring a signal given by name ("dev" or "dev.out").
//
func (c *Circuit) Monitor(signal string) error {
	dev, out, ok := c.Devices.ParseSignalName(signal)
	if !ok {
		return errors.Wrap(ErrDeviceAbsent, signal)
	}
	return errors.Wrap(c.Monitors.MakeMonitor(dev, out), signal)
}

// Step executes one tick and records monitored signals. Signals are not
// recorded if the tick fails.
//
func (c *Circuit) Step() error {
	if err := c.Network.Execute(); err != nil {
		return err
	}
	c.Monitors.RecordSignals()
	return nil
}

// Run executes n ticks. It stops at the first failing tick.
//
func (c *Circuit) Run(n int) error {
	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Reset restores the power-on state of the circuit and clears monitor
// histories.
//
func (c *Circuit) Reset() {
	c.Network.Reset()
	c.Monitors.ResetMonitors()
}

// DeviceList returns all devices in declaration order.
//
func (c *Circuit) DeviceList() []*Device {
	return c.Devices.All()
}

// GetConnectedOutput returns the output connected to input in of device dev.
//
func (c *Circuit) GetConnectedOutput(dev, in ID) (PinRef, bool) {
	return c.Network.GetConnectedOutput(dev, in)
}

// Traces returns the recorded history of each monitored signal, keyed by
// signal name.
//
func (c *Circuit) Traces() map[string][]bool {
	m := make(map[string][]bool)
	for _, p := range c.Monitors.Points() {
		s, _ := c.Monitors.Signals(p.Device, p.Pin)
		m[c.Devices.SignalName(p.Device, p.Pin)] = append([]bool(nil), s...)
	}
	return m
}
