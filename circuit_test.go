// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/db47h/logsim"
	"github.com/db47h/logsim/logictest"
	"github.com/pkg/errors"
)

func TestCompile_errors(t *testing.T) {
	c, err := logsim.Compile("bad.def", "DEVICES {\n A is FOO\n}\n")
	if c != nil {
		t.Fatal("Compile returned a circuit for an invalid description")
	}
	l, ok := err.(*logsim.ErrorList)
	if !ok {
		t.Fatalf("expected *ErrorList, got %T", err)
	}
	if len(l.Errs) != 2 || l.Errs[0].Name != "bad.def" {
		t.Fatalf("unexpected errors:\n%s", l.Report())
	}
}

func TestCircuit_switchNot(t *testing.T) {
	c := logictest.Compile(t, `
		DEVICES { N is NOT }
		INIT { SW is SWITCH }
		CONNECTIONS { SW => N.1 }
		MONITOR { N }
	`)
	if err := c.Run(2); err != nil {
		t.Fatal(err)
	}
	if err := c.SetSwitch("SW", true); err != nil {
		t.Fatal(err)
	}
	if err := c.Run(2); err != nil {
		t.Fatal(err)
	}
	logictest.CompareTraces(t, logictest.Traces{"N": "1100"}, logictest.Record(c))

	if err := c.SetSwitch("N", true); errors.Cause(err) != logsim.ErrWrongKind {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
	if err := c.SetSwitch("X", true); errors.Cause(err) != logsim.ErrDeviceAbsent {
		t.Fatalf("expected ErrDeviceAbsent, got %v", err)
	}
}

func TestCircuit_dtype(t *testing.T) {
	c := logictest.Compile(t, `
		DEVICES {
			F is DTYPE
		}
		INIT {
			CLK is CLOCK
			D is SIGGEN; D has 1001
			Z is SWITCH
		}
		CONNECTIONS {
			CLK => F.CLK; D => F.DATA
			Z => F.SET; Z => F.CLEAR
		}
		MONITOR {
			CLK, D, F.Q, F.QBAR
		}
	`)
	if err := c.Run(4); err != nil {
		t.Fatal(err)
	}
	logictest.CompareTraces(t, logictest.Traces{
		"CLK":    "1010",
		"D":      "1001",
		"F.Q":    "1100",
		"F.QBAR": "0011",
	}, logictest.Record(c))
}

func TestCircuit_oscillation(t *testing.T) {
	c := logictest.Compile(t, `
		DEVICES { N is NOT }
		CONNECTIONS { N => N.1 }
		MONITOR { N }
	`)
	err := c.Run(3)
	if errors.Cause(err) != logsim.ErrOscillation {
		t.Fatalf("expected ErrOscillation, got %v", err)
	}
	if s := logictest.Record(c)["N"]; s != "" {
		t.Fatalf("failed tick recorded: %q", s)
	}
	if c.Network.Ticks() != 0 {
		t.Fatalf("expected 0 ticks, got %d", c.Network.Ticks())
	}
}

func TestCircuit_reset(t *testing.T) {
	c := logictest.Compile(t, `
		DEVICES { }
		INIT { C is CLOCK; C has 2 }
		CONNECTIONS { }
		MONITOR { C }
	`)
	for _, n := range []int{3, 0, 7} {
		c.Reset()
		if err := c.Run(n); err != nil {
			t.Fatal(err)
		}
		want := "0110011"[:n]
		logictest.CompareTraces(t, logictest.Traces{"C": want}, logictest.Record(c))
	}
	if err := c.Monitor("C"); errors.Cause(err) != logsim.ErrMonitorPresent {
		t.Fatalf("expected ErrMonitorPresent, got %v", err)
	}
}

func ExampleCompile() {
	c, err := logsim.Compile("example.def", `
DEVICES {
	N is a NOT gate
}
INIT {
	CLK is a CLOCK
}
CONNECTIONS {
	CLK => N.1
}
MONITOR {
	CLK, N
}
`)
	if err != nil {
		fmt.Print(err.(*logsim.ErrorList).Report())
		return
	}
	if err = c.Run(4); err != nil {
		fmt.Println(err)
		return
	}
	c.Monitors.Waveform(os.Stdout)

	// Output:
	// CLK : -_-_
	// N   : _-_-
}

func ExampleParser_Report() {
	c := logsim.NewCircuit()
	p := logsim.NewParser(c, "bad.def", `DEVICES {
	G is NAND
	G has 18
}
CONNECTIONS {
}
`)
	if !p.Parse() {
		fmt.Print(p.Report())
	}

	// Output:
	// Error on line 2:
	//     	G is NAND
	//     	^
	// SemanticError: no inputs specified for gate "G"
	// Error on line 3:
	//     	G has 18
	//     	      ^
	// SemanticError: maximum number of inputs is 16
}
