// Package alu implements bit-exact reference models of the 6502-family
// ADC and SBC instructions, across binary and decimal (BCD) mode, for the
// NMOS 6502, a binary-only NMOS variant, and the CMOS 65C02.
package alu

import "fmt"

// Status byte bit positions, matching the 6502 processor status register
// layout used for the on-disk reference-table encoding: N V 1 1 D 0 Z C.
const (
	PNegative = uint8(0x80)
	POverflow = uint8(0x40)
	ps1       = uint8(0x20) // always 1 in the encoded byte
	ps2       = uint8(0x10) // always 1 in the encoded byte
	PDecimal  = uint8(0x08)
	PZero     = uint8(0x02)
	PCarry    = uint8(0x01)
)

// Result is the 4-tuple produced by an ADC or SBC evaluation: the resulting
// accumulator byte and the N/V/Z/C flags. It is a plain value type with an
// explicit encode/decode to the canonical on-disk status byte; it carries no
// implicit host endianness or struct padding.
type Result struct {
	A uint8
	N bool
	V bool
	Z bool
	C bool
}

// Encode serializes r to the canonical two-byte (accumulator, status)
// record the reference tables store. d is the caller's decimal-mode flag at
// the time of the operation; it is not a model output but is folded into
// the status byte because the on-disk format records it alongside N/V/Z/C.
func (r Result) Encode(d bool) (a, p uint8) {
	p = ps1 | ps2
	if r.N {
		p |= PNegative
	}
	if r.V {
		p |= POverflow
	}
	if d {
		p |= PDecimal
	}
	if r.Z {
		p |= PZero
	}
	if r.C {
		p |= PCarry
	}
	return r.A, p
}

// Decode is the inverse of Encode: it returns the Result plus, separately,
// the decimal flag that was encoded alongside it (D is not a field of
// Result).
func Decode(a, p uint8) (r Result, d bool) {
	r.A = a
	r.N = p&PNegative != 0
	r.V = p&POverflow != 0
	r.Z = p&PZero != 0
	r.C = p&PCarry != 0
	d = p&PDecimal != 0
	return r, d
}

// String implements fmt.Stringer for use in test failure output.
func (r Result) String() string {
	return fmt.Sprintf("{A:%#02x N:%t V:%t Z:%t C:%t}", r.A, r.N, r.V, r.Z, r.C)
}
