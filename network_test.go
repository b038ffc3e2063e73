// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim_test

import (
	"testing"

	"github.com/db47h/logsim"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testNet struct {
	*testing.T
	names   *logsim.Names
	devices *logsim.Devices
	net     *logsim.Network
}

func newTestNet(t *testing.T) *testNet {
	names, ds := newDevices()
	return &testNet{t, names, ds, logsim.NewNetwork(ds)}
}

func (n *testNet) id(s string) logsim.ID {
	if s == "" {
		return logsim.None
	}
	return n.names.Lookup(s)[0]
}

func (n *testNet) connect(src, out, dst, in string) {
	n.Helper()
	if err := n.net.MakeConnection(n.id(src), n.id(out), n.id(dst), n.id(in)); err != nil {
		n.Fatalf("%s.%s => %s.%s: %v", src, out, dst, in, err)
	}
}

func (n *testNet) out(dev, pin string) bool {
	n.Helper()
	v, ok := n.net.GetOutputSignal(n.id(dev), n.id(pin))
	if !ok {
		n.Fatalf("no output %s.%s", dev, pin)
	}
	return v
}

func (n *testNet) exec() {
	n.Helper()
	if err := n.net.Execute(); err != nil {
		n.Fatal(err)
	}
}

func TestNetwork_MakeConnection(t *testing.T) {
	n := newTestNet(t)
	sw, g, f := n.id("SW"), n.id("G"), n.id("F")
	n.devices.MakeSwitch(sw, false)
	n.devices.MakeGate(g, logsim.Xor)
	n.devices.MakeDType(f)
	one, q := n.id("1"), n.id("Q")

	td := []struct {
		src, out, dst, in logsim.ID
		err               error
	}{
		{n.id("X"), logsim.None, g, one, logsim.ErrDeviceAbsent},
		{sw, logsim.None, n.id("X"), one, logsim.ErrDeviceAbsent},
		{f, logsim.None, g, one, logsim.ErrNotOutput},
		{sw, logsim.None, g, q, logsim.ErrNotInput},
		{f, q, g, one, nil},
		{sw, logsim.None, g, one, logsim.ErrInputConnected},
	}
	for i, d := range td {
		if err := n.net.MakeConnection(d.src, d.out, d.dst, d.in); err != d.err {
			t.Errorf("%d: expected error %v, got %v", i, d.err, err)
		}
	}
	src, ok := n.net.GetConnectedOutput(g, one)
	if !ok || src.Device != f || src.Pin != q {
		t.Fatalf("GetConnectedOutput = %v, %v", src, ok)
	}
	if _, ok = n.net.GetConnectedOutput(g, n.id("2")); ok {
		t.Fatal("GetConnectedOutput returned true for an unconnected input")
	}
}

func TestNetwork_unconnected(t *testing.T) {
	n := newTestNet(t)
	n.devices.MakeSwitch(n.id("SW"), false)
	n.devices.MakeGate(n.id("G"), logsim.Xor)
	n.connect("SW", "", "G", "2")

	err := n.net.Execute()
	require.Error(t, err)
	assert.Equal(t, logsim.ErrInputsNotConnected, errors.Cause(err))
	assert.Contains(t, err.Error(), "G.1")
	assert.Equal(t, 0, n.net.Ticks())

	n.connect("SW", "", "G", "1")
	assert.NoError(t, n.net.Execute())
	assert.Equal(t, 1, n.net.Ticks())
}

func TestNetwork_oscillation(t *testing.T) {
	var msgs []string
	for i := 0; i < 2; i++ {
		n := newTestNet(t)
		n.devices.MakeGate(n.id("N"), logsim.Not)
		n.connect("N", "", "N", "1")
		err := n.net.Execute()
		if errors.Cause(err) != logsim.ErrOscillation {
			t.Fatalf("expected ErrOscillation, got %v", err)
		}
		if n.net.Ticks() != 0 {
			t.Fatalf("failed tick counted")
		}
		msgs = append(msgs, err.Error())
	}
	if msgs[0] != msgs[1] {
		t.Fatalf("oscillation is not deterministic: %q != %q", msgs[0], msgs[1])
	}
}

func TestNetwork_switchNot(t *testing.T) {
	n := newTestNet(t)
	n.devices.MakeSwitch(n.id("SW"), false)
	n.devices.MakeGate(n.id("N"), logsim.Not)
	n.connect("SW", "", "N", "1")

	n.exec()
	if !n.out("N", "") {
		t.Fatal("NOT(0) != 1")
	}
	n.devices.SetSwitch(n.id("SW"), true)
	n.exec()
	if n.out("N", "") {
		t.Fatal("NOT(1) != 0")
	}
	if v, ok := n.net.GetInputSignal(n.id("N"), n.id("1")); !ok || !v {
		t.Fatal("GetInputSignal(N.1) != 1")
	}
}

// chain of gates declared in reverse order must settle in a single tick.
func TestNetwork_settle(t *testing.T) {
	n := newTestNet(t)
	n.devices.MakeGate(n.id("N3"), logsim.Not)
	n.devices.MakeGate(n.id("N2"), logsim.Not)
	n.devices.MakeGate(n.id("N1"), logsim.Not)
	n.devices.MakeSwitch(n.id("SW"), true)
	n.connect("SW", "", "N1", "1")
	n.connect("N1", "", "N2", "1")
	n.connect("N2", "", "N3", "1")
	n.exec()
	if n.out("N1", "") || !n.out("N2", "") || n.out("N3", "") {
		t.Fatal("network did not settle")
	}
}

func TestNetwork_clock(t *testing.T) {
	n := newTestNet(t)
	n.devices.MakeClock(n.id("C1"), 1)
	n.devices.MakeClock(n.id("C2"), 2)
	n.devices.MakeSignalGenerator(n.id("S"), []bool{false, true, true, false})

	want := map[string]string{
		"C1": "101010",
		"C2": "011001",
		"S":  "011001",
	}
	got := make(map[string]string)
	for i := 0; i < 6; i++ {
		n.exec()
		for k := range want {
			got[k] += bit(n.out(k, ""))
		}
	}
	assert.Equal(t, want, got)

	n.net.Reset()
	assert.Equal(t, 0, n.net.Ticks())
	assert.False(t, n.out("C1", ""))
	n.exec()
	assert.True(t, n.out("C1", ""))
	assert.False(t, n.out("S", ""))
}

func bit(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func newDTypeNet(t *testing.T) *testNet {
	n := newTestNet(t)
	for _, s := range []string{"CLK", "D", "SET", "CLR"} {
		n.devices.MakeSwitch(n.id(s), false)
	}
	n.devices.MakeDType(n.id("F"))
	n.devices.MakeGate(n.id("N"), logsim.Not)
	n.connect("CLK", "", "F", "CLK")
	n.connect("D", "", "F", "DATA")
	n.connect("SET", "", "F", "SET")
	n.connect("CLR", "", "F", "CLEAR")
	n.connect("F", "Q", "N", "1")
	return n
}

func (n *testNet) set(sw string, v bool) {
	n.Helper()
	if err := n.devices.SetSwitch(n.id(sw), v); err != nil {
		n.Fatal(err)
	}
}

func TestNetwork_DType(t *testing.T) {
	n := newDTypeNet(t)
	td := []struct {
		clk, d, set, clr bool
		q                bool
	}{
		{false, true, false, false, false}, // no edge
		{true, true, false, false, true},   // rising edge
		{true, false, false, false, true},  // clock high, no edge
		{false, false, false, false, true}, // falling edge
		{true, false, false, false, false}, // rising edge
		{false, false, true, false, true},  // SET
		{false, false, true, true, false},  // CLEAR wins
		{false, true, false, false, false},
	}
	for i, d := range td {
		n.set("CLK", d.clk)
		n.set("D", d.d)
		n.set("SET", d.set)
		n.set("CLR", d.clr)
		n.exec()
		q, qbar := n.out("F", "Q"), n.out("F", "QBAR")
		if q != d.q || qbar == q {
			t.Fatalf("tick %d: Q = %v, QBAR = %v, expected Q = %v", i+1, q, qbar, d.q)
		}
		// downstream logic sees the latched value in the same tick
		if n.out("N", "") == q {
			t.Fatalf("tick %d: NOT(Q) not updated", i+1)
		}
	}
}

func TestNetwork_shiftRegister(t *testing.T) {
	for _, order := range [][]string{{"F0", "F1"}, {"F1", "F0"}} {
		n := newTestNet(t)
		for _, s := range []string{"CK", "D", "Z"} {
			n.devices.MakeSwitch(n.id(s), false)
		}
		for _, f := range order {
			n.devices.MakeDType(n.id(f))
			n.connect("CK", "", f, "CLK")
			n.connect("Z", "", f, "SET")
			n.connect("Z", "", f, "CLEAR")
		}
		n.connect("D", "", "F0", "DATA")
		n.connect("F0", "Q", "F1", "DATA")

		state := func() string { return bit(n.out("F0", "Q")) + bit(n.out("F1", "Q")) }
		td := []struct {
			ck, d bool
			want  string
		}{
			{false, true, "00"},
			{true, true, "10"}, // one edge: data is in F0 only
			{false, false, "10"},
			{true, false, "01"},
			{false, false, "01"},
			{true, false, "00"},
		}
		for i, d := range td {
			n.set("CK", d.ck)
			n.set("D", d.d)
			n.exec()
			if got := state(); got != d.want {
				t.Fatalf("%v, tick %d: F0.Q F1.Q = %s, expected %s", order, i+1, got, d.want)
			}
		}
	}
}
