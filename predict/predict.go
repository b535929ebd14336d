// Package predict computes the expected cycle count for a synthesized
// codegen fragment, independently of whatever oracle actually measures it,
// so the timing core can compare the two and flag a mismatch.
package predict

import (
	"github.com/go6502/conform/codegen"
	"github.com/go6502/conform/hooks"
)

// Predict returns overhead + instruction + crossing-extra for t run with
// params p. t.Overhead accounts for the real setup instructions Synthesize
// writes ahead of the measured opcode (LDX/LDY/STX/STY for indexed
// addressing, a flag-forcing preamble for FamilyRelative); since the oracle
// measures the whole fragment including that preamble, Predict must count
// it too. BRK additionally asks h for any host-specific platform overhead
// around taking an interrupt.
func Predict(t codegen.Template, p codegen.Params, h hooks.Hooks) int {
	if h == nil {
		h = hooks.NopHooks{}
	}

	cycles := t.Overhead + t.BaseCycles

	if t.Family == codegen.FamilyRelative && p.Taken {
		cycles++
	}

	if t.PageCrossing && crosses(t, p) {
		cycles++
	}

	if t.Family == codegen.FamilyBRK {
		cycles += h.IRQPlatformOverhead()
	}

	return cycles
}

// crosses reports whether the indexed access t and p describe would cross a
// page boundary, the only condition under which PageCrossing families spend
// an extra cycle.
func crosses(t codegen.Template, p codegen.Params) bool {
	switch t.Family {
	case codegen.FamilyAbsoluteX, codegen.FamilyAbsoluteY, codegen.FamilyIndirectY:
		// For (zp),Y the crossing is decided by the pointer's target
		// (p.Absolute), not by the zero-page cell holding it.
		return (p.Absolute&0xFF)+uint16(p.Index) > 0xFF
	case codegen.FamilyRelative:
		if !p.Taken {
			return false
		}
		target := uint16(int32(p.BranchPC) + int32(p.Branch))
		return p.BranchPC&0xFF00 != target&0xFF00
	default:
		return false
	}
}
