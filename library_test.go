// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/db47h/logsim/logictest"
	"github.com/stretchr/testify/require"
)

func loadCircuit(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func TestLibrary_halfAdder(t *testing.T) {
	logictest.CompareCircuits(t,
		loadCircuit(t, "halfadder.def"),
		loadCircuit(t, "halfadder_nand.def"),
		[]string{"A", "B"}, []string{"S", "C"})
}

func TestLibrary_mux(t *testing.T) {
	logictest.CompareCircuits(t,
		loadCircuit(t, "mux.def"),
		loadCircuit(t, "mux_nand.def"),
		[]string{"A", "B", "SEL"}, []string{"OUT"})
}

func TestLibrary_register(t *testing.T) {
	c := logictest.Compile(t, loadCircuit(t, "register.def"))
	set := func(name string, v bool) {
		t.Helper()
		require.NoError(t, c.SetSwitch(name, v))
	}
	step := func() bool {
		t.Helper()
		require.NoError(t, c.Step())
		tr := c.Traces()["R.Q"]
		return tr[len(tr)-1]
	}

	want := false
	for i := 0; i < 1000; i++ {
		in, load := rand.Intn(2) == 1, rand.Intn(2) == 1
		set("IN", in)
		set("LOAD", load)
		set("CLK", true)
		if load {
			want = in
		}
		if got := step(); got != want {
			t.Fatalf("cycle %d, IN=%v LOAD=%v: got %v, expected %v", i, in, load, got, want)
		}
		// no edge
		set("IN", !want)
		set("CLK", false)
		if got := step(); got != want {
			t.Fatalf("cycle %d, falling edge: got %v, expected %v", i, got, want)
		}
	}
	require.Len(t, c.Traces()["R.Q"], 2000)
}

func TestLibrary_counter(t *testing.T) {
	c := logictest.Compile(t, loadCircuit(t, "counter.def"))
	const edges = 20
	// rising edges at ticks 4, 12, 20...
	require.NoError(t, c.Run(8*edges+4))
	tr := c.Traces()
	for m := 0; m <= edges; m++ {
		k := 8*m + 2 // tick 8m+3, the last one before edge m+1
		want := (8 - m%8) % 8
		got := 0
		for i, s := range []string{"F0.Q", "F1.Q", "F2.Q"} {
			if tr[s][k] {
				got |= 1 << uint(i)
			}
		}
		if got != want {
			t.Fatalf("after %d edges: got %d, expected %d", m, got, want)
		}
	}
}
