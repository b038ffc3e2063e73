// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim_test

import (
	"strconv"
	"testing"
	"testing/quick"

	"github.com/db47h/logsim"
	"github.com/db47h/logsim/logictest"
)

func count(in []bool) int {
	n := 0
	for _, v := range in {
		if v {
			n++
		}
	}
	return n
}

func TestGates(t *testing.T) {
	td := []struct {
		kind logsim.Kind
		fn   func(in []bool) bool
	}{
		{logsim.And, func(in []bool) bool { return count(in) == len(in) }},
		{logsim.Nand, func(in []bool) bool { return count(in) != len(in) }},
		{logsim.Or, func(in []bool) bool { return count(in) > 0 }},
		{logsim.Nor, func(in []bool) bool { return count(in) == 0 }},
	}
	for _, d := range td {
		for _, n := range []int{1, 2, 3, 16} {
			d, n := d, n
			t.Run(d.kind.String()+strconv.Itoa(n), func(t *testing.T) {
				logictest.TruthTable(t, d.kind, n, d.fn)
			})
		}
	}
	t.Run("XOR", func(t *testing.T) {
		logictest.TruthTable(t, logsim.Xor, 2, func(in []bool) bool { return in[0] != in[1] })
	})
	t.Run("NOT", func(t *testing.T) {
		logictest.TruthTable(t, logsim.Not, 1, func(in []bool) bool { return !in[0] })
	})
}

func TestGateFunc(t *testing.T) {
	if logsim.GateFunc(logsim.DType) != nil || logsim.GateFunc(logsim.Switch) != nil {
		t.Fatal("GateFunc returned a function for a non gate kind")
	}
	and, nand := logsim.GateFunc(logsim.And), logsim.GateFunc(logsim.Nand)
	or, nor := logsim.GateFunc(logsim.Or), logsim.GateFunc(logsim.Nor)
	f := func(in []bool) bool {
		return and(in) == !nand(in) && or(in) == !nor(in) && (!and(in) || or(in) || len(in) == 0)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}
