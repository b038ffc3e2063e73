// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logsim

// gate computes the output of a combinational gate from its input values.
// All gate functions are symmetric so input order does not matter.
//
type gate func(in []bool) bool

func and(in []bool) bool {
	for _, v := range in {
		if !v {
			return false
		}
	}
	return true
}

func or(in []bool) bool {
	for _, v := range in {
		if v {
			return true
		}
	}
	return false
}

func xor(in []bool) bool {
	r := false
	for _, v := range in {
		r = r != v
	}
	return r
}

var gates = [...]gate{
	And:  and,
	Nand: func(in []bool) bool { return !and(in) },
	Or:   or,
	Nor:  func(in []bool) bool { return !or(in) },
	Xor:  xor,
	Not:  func(in []bool) bool { return !and(in) },
}

// GateFunc returns the logic function of a gate kind, or nil if kind is not a
// combinational gate.
//
func GateFunc(kind Kind) func(in []bool) bool {
	if !kind.Gate() {
		return nil
	}
	return gates[kind]
}
