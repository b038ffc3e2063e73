// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package logictest provides utility functions for testing circuits.
//
package logictest

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/db47h/logsim"
	"github.com/google/go-cmp/cmp"
)

// Compile compiles a circuit description. It fails the test with the error
// report if src contains errors.
//
func Compile(t testing.TB, src string) *logsim.Circuit {
	t.Helper()
	c, err := logsim.Compile(t.Name(), src)
	if err != nil {
		if l, ok := err.(*logsim.ErrorList); ok {
			t.Fatalf("compile failed:\n%s", l.Report())
		}
		t.Fatal(err)
	}
	return c
}

// Traces maps signal names to their history, in 0/1 notation.
//
type Traces map[string]string

// Bits converts a string of '0' and '1' to a slice of bool. '_' and '-' are
// accepted for low and high.
//
func Bits(s string) []bool {
	v := make([]bool, 0, len(s))
	for _, r := range s {
		switch r {
		case '0', '_':
			v = append(v, false)
		case '1', '-':
			v = append(v, true)
		default:
			panic("logictest: invalid bit " + strconv.QuoteRune(r))
		}
	}
	return v
}

// String converts a slice of bool to 0/1 notation.
//
func String(v []bool) string {
	var b strings.Builder
	for _, x := range v {
		if x {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// Record returns the recorded history of all monitored signals of c.
//
func Record(c *logsim.Circuit) Traces {
	tr := make(Traces)
	for k, v := range c.Traces() {
		tr[k] = String(v)
	}
	return tr
}

// CompareTraces fails the test with a diff if got differs from want.
//
func CompareTraces(t testing.TB, want, got Traces) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("trace mismatch (-want +got):\n%s", diff)
	}
}

func randBool() bool {
	return rand.Int63()&(1<<62) != 0
}

func inputString(names []string, v []bool) string {
	var b strings.Builder
	for i, n := range names {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(n)
		b.WriteRune('=')
		if v[i] {
			b.WriteRune('1')
		} else {
			b.WriteRune('0')
		}
	}
	return b.String()
}

// inputSets returns the input combinations to test: all of them for up to 12
// inputs, all 0, all 1 and 4096 random sets otherwise.
//
func inputSets(n int) [][]bool {
	var sets [][]bool
	if n <= 12 {
		for i := 0; i < 1<<uint(n); i++ {
			s := make([]bool, n)
			for j := range s {
				s[j] = i&(1<<uint(j)) != 0
			}
			sets = append(sets, s)
		}
		return sets
	}
	rand.Seed(time.Now().UnixNano())
	zero, one := make([]bool, n), make([]bool, n)
	for i := range one {
		one[i] = true
	}
	sets = append(sets, zero, one)
	for i := 0; i < 1<<12; i++ {
		s := make([]bool, n)
		for j := range s {
			s[j] = randBool()
		}
		sets = append(sets, s)
	}
	return sets
}

// TruthTable checks a gate of the given kind with n inputs against fn.
//
func TruthTable(t *testing.T, kind logsim.Kind, n int, fn func(in []bool) bool) {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "DEVICES {\n G is %v\n", kind)
	if kind != logsim.Xor && kind != logsim.Not {
		fmt.Fprintf(&b, " G has %d\n", n)
	}
	fmt.Fprintf(&b, "}\nINIT {\n S1 => S%d are SWITCH\n}\nCONNECTIONS {\n", n)
	ins := make([]string, n)
	for i := range ins {
		ins[i] = "S" + strconv.Itoa(i+1)
		fmt.Fprintf(&b, " %s => G.%d\n", ins[i], i+1)
	}
	b.WriteString("}\n")

	c := Compile(t, b.String())
	g, _ := c.Names.Query("G")
	for _, in := range inputSets(n) {
		for i, v := range in {
			if err := c.SetSwitch(ins[i], v); err != nil {
				t.Fatal(err)
			}
		}
		if err := c.Step(); err != nil {
			t.Fatal(err)
		}
		got, _ := c.Network.GetOutputSignal(g, logsim.None)
		if want := fn(in); got != want {
			t.Fatalf("%v: %s => %v, expected %v", kind, inputString(ins, in), got, want)
		}
	}
}

// CompareCircuits takes two circuit descriptions and compares the values of
// the given outputs for the same states of the given switches. Both
// descriptions must declare the switches and outputs.
//
func CompareCircuits(t *testing.T, src1, src2 string, switches, outputs []string) {
	t.Helper()
	c1, c2 := Compile(t, src1), Compile(t, src2)
	type sig struct{ dev, pin logsim.ID }
	lookup := func(c *logsim.Circuit) []sig {
		var l []sig
		for _, o := range outputs {
			dev, pin, ok := c.Devices.ParseSignalName(o)
			if !ok {
				t.Fatalf("no output %s", o)
			}
			l = append(l, sig{dev, pin})
		}
		return l
	}
	o1, o2 := lookup(c1), lookup(c2)

	start := time.Now()
	sets := inputSets(len(switches))
	for _, in := range sets {
		for i, v := range in {
			if err := c1.SetSwitch(switches[i], v); err != nil {
				t.Fatal(err)
			}
			if err := c2.SetSwitch(switches[i], v); err != nil {
				t.Fatal(err)
			}
		}
		if err := c1.Step(); err != nil {
			t.Fatal(err)
		}
		if err := c2.Step(); err != nil {
			t.Fatal(err)
		}
		for i, name := range outputs {
			v1, _ := c1.Network.GetOutputSignal(o1[i].dev, o1[i].pin)
			v2, _ := c2.Network.GetOutputSignal(o2[i].dev, o2[i].pin)
			if v1 != v2 {
				t.Fatalf("\nExpected %s => %s=%v\nGot %v", inputString(switches, in), name, v1, v2)
			}
		}
	}
	t.Logf("%d devices. %d ticks in %v", len(c1.DeviceList())+len(c2.DeviceList()), len(sets), time.Since(start))
}
