// Package difftest runs the ALU differential test: for every point in the
// (decimal, carry-in, accumulator, operand) cube, it compares a package alu
// Variant's ADC and SBC output against a hardware-derived reftable.Table and
// reports the result.
package difftest

import (
	"fmt"

	"github.com/go6502/conform/alu"
	"github.com/go6502/conform/hooks"
	"github.com/go6502/conform/reftable"
	"github.com/go6502/conform/report"
)

// MaxMismatches bounds how many report.ALUMismatch records Run keeps, so a
// badly wrong Variant doesn't blow up memory with up to 2^19 records (one
// per ADC and SBC evaluation in the cube).
const MaxMismatches = 1000

// Run walks the full cube for variant against table, invoking h's progress
// and mismatch hooks as it goes. It returns aggregate counters and up to
// MaxMismatches individual mismatches.
func Run(variant alu.Variant, table *reftable.Table, h hooks.Hooks) (report.Counters, []report.ALUMismatch) {
	if h == nil {
		h = hooks.NopHooks{}
	}

	var counters report.Counters
	var mismatches []report.ALUMismatch

	const total = 2 * 2 * 256 * 256
	done := 0

	for d := 0; d < 2; d++ {
		decimal := d != 0
		for c := 0; c < 2; c++ {
			carryIn := c != 0
			for a := 0; a < 256; a++ {
				for op := 0; op < 256; op++ {
					acc, operand := uint8(a), uint8(op)

					adcGot := variant.ADC(decimal, carryIn, acc, operand)
					adcGotAcc, adcGotStatus := adcGot.Encode(decimal)
					adcWantAcc, adcWantStatus := table.ADC(decimal, carryIn, acc, operand)
					counters.Checked++
					if adcGotAcc != adcWantAcc || adcGotStatus != adcWantStatus {
						counters.Mismatches++
						m := report.ALUMismatch{
							Op: "ADC", Decimal: decimal, CarryIn: carryIn, A: acc, Operand: operand,
							Got:  [2]uint8{adcGotAcc, adcGotStatus},
							Want: [2]uint8{adcWantAcc, adcWantStatus},
						}
						h.MismatchFound("ADC", mismatchDetail(m))
						if len(mismatches) < MaxMismatches {
							mismatches = append(mismatches, m)
						}
					}

					sbcGot := variant.SBC(decimal, carryIn, acc, operand)
					sbcGotAcc, sbcGotStatus := sbcGot.Encode(decimal)
					sbcWantAcc, sbcWantStatus := table.SBC(decimal, carryIn, acc, operand)
					counters.Checked++
					if sbcGotAcc != sbcWantAcc || sbcGotStatus != sbcWantStatus {
						counters.Mismatches++
						m := report.ALUMismatch{
							Op: "SBC", Decimal: decimal, CarryIn: carryIn, A: acc, Operand: operand,
							Got:  [2]uint8{sbcGotAcc, sbcGotStatus},
							Want: [2]uint8{sbcWantAcc, sbcWantStatus},
						}
						h.MismatchFound("SBC", mismatchDetail(m))
						if len(mismatches) < MaxMismatches {
							mismatches = append(mismatches, m)
						}
					}

					done++
				}
			}
			h.Progress("alu cube", done, total)
		}
	}

	return counters, mismatches
}

// mismatchDetail formats m for a host's MismatchFound hook, cheap enough to
// build unconditionally since a conforming Variant produces none of these.
func mismatchDetail(m report.ALUMismatch) string {
	return fmt.Sprintf("decimal=%t carryIn=%t A=%#02x op=%#02x got=(A=%#02x P=%#02x) want=(A=%#02x P=%#02x)",
		m.Decimal, m.CarryIn, m.A, m.Operand, m.Got[0], m.Got[1], m.Want[0], m.Want[1])
}
