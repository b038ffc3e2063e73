package logictest_test

import (
	"testing"

	"github.com/db47h/logsim/logictest"
)

func TestCompareCircuits(t *testing.T) {
	or := `
		DEVICES {
			G is OR; G has 2
		}
		INIT { A, B are SWITCH }
		CONNECTIONS { A => G.1; B => G.2 }
	`
	// a OR b = NAND(NOT a, NOT b)
	nands := `
		DEVICES {
			NA, NB, G are NAND
			NA, NB have 1
			G has 2
		}
		INIT { A, B are SWITCH }
		CONNECTIONS {
			A => NA.1
			B => NB.1
			NA => G.1; NB => G.2
		}
	`
	logictest.CompareCircuits(t, or, nands, []string{"A", "B"}, []string{"G"})
}

func TestBits(t *testing.T) {
	for _, s := range []string{"", "0", "1", "0110", "1111000010"} {
		if got := logictest.String(logictest.Bits(s)); got != s {
			t.Errorf("String(Bits(%q)) = %q", s, got)
		}
	}
	if got := logictest.String(logictest.Bits("_--_")); got != "0110" {
		t.Errorf("String(Bits(\"_--_\")) = %q", got)
	}
}
