/*
Package logsim compiles and simulates digital logic circuits described in a
small text language.

A circuit description is made of sections:

	DEVICES {
		G1, G2 are NAND gates
		G1, G2 have 2 inputs
		F1 is a DTYPE
		X1 => X3 are XOR       # range: X1, X2, X3
	}
	INIT {
		SW1, SW2 are SWITCH
		SW2 has 1              # initial state
		CLK is a CLOCK
		CLK has 2              # half period, in ticks
		S is a SIGGEN; S has 0110
	}
	CONNECTIONS {
		SW1 => G1.1
		...
		CLK => F1.CLK
	}
	MONITOR {
		G1, F1.Q
	}

DEVICES must come first. DEVICES and CONNECTIONS are mandatory, INIT and
MONITOR are optional. Statements end with a newline or a semicolon.
Device kinds are AND, NAND, OR, NOR (1 to 16 inputs), XOR (2 inputs), NOT (1
input), DTYPE (inputs CLK, DATA, SET, CLEAR; outputs Q, QBAR), SWITCH, CLOCK
and SIGGEN. Gate inputs are named "1" to "N". Single output devices have an
unnamed output referred to by the device name alone.

Compile parses a description and returns a Circuit, or an *ErrorList with all
the errors found:

	c, err := logsim.Compile("adder.def", src)
	if err != nil {
		if l, ok := err.(*logsim.ErrorList); ok {
			fmt.Print(l.Report())
		}
		return err
	}
	c.SetSwitch("SW1", true)
	if err := c.Run(10); err != nil {
		return err // errors.Cause(err) == logsim.ErrOscillation
	}
	c.Monitors.Waveform(os.Stdout)

Each tick, autonomous devices (switches, clocks and signal generators) update
first, then gates settle, then D-type flip-flops latch on rising clock edges.

*/
package logsim
