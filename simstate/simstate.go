// Package simstate implements the restricted CPU model used by package
// discriminator: a minimal state (accumulator, carry, decimal flag) and a
// single encoded "operation" space covering LDA/ADC/SBC/CMP/ORA/AND/EOR plus
// the flag-only instructions CLD/SED/CLC/SEC and the shift/rotate family.
// It exists to let the discriminator search exercise exactly the operations
// that can distinguish CPU variants, without pulling in the full opcode
// dispatch of package simcpu.
package simstate

import "github.com/go6502/conform/alu"

// State is the restricted machine state the discriminator search operates
// over. The negative and zero flags are not tracked because nothing in this
// restricted instruction set reads them back in.
type State struct {
	A uint8
	C bool
	D bool
}

// Operation encoding: op < 0x100 is LDA with immediate operand op; ranges of
// 0x100 continue through ADC, SBC, CMP, ORA, AND, EOR; op in [0x700,0x707]
// selects one of eight flag-only or shift/rotate instructions. This mirrors
// the encoding used by the upstream bounded-search harness this package's
// Step function is modeled on.
const (
	OpLDABase = 0x000
	OpADCBase = 0x100
	OpSBCBase = 0x200
	OpCMPBase = 0x300
	OpORABase = 0x400
	OpANDBase = 0x500
	OpEORBase = 0x600

	OpCLD = 0x700
	OpSED = 0x701
	OpCLC = 0x702
	OpSEC = 0x703
	OpLSR = 0x704
	OpASL = 0x705
	OpROR = 0x706
	OpROL = 0x707
)

// MaxOp is one past the largest valid encoded operation.
const MaxOp = OpROL + 1

// Step applies one encoded operation to s under the given ALU variant and
// returns the resulting state. alu.V1 ignores s.D and always runs the
// binary-mode ALU regardless of what ADC/SBC is asked to do here.
func Step(variant alu.Variant, s State, op int) State {
	switch {
	case op < OpADCBase:
		s.A = uint8(op)
	case op < OpSBCBase:
		res := variant.ADC(s.D, s.C, s.A, uint8(op-OpADCBase))
		s.A, s.C = res.A, res.C
	case op < OpCMPBase:
		res := variant.SBC(s.D, s.C, s.A, uint8(op-OpSBCBase))
		s.A, s.C = res.A, res.C
	case op < OpORABase:
		// CMP: identical to SBC but the accumulator is not written back,
		// only the carry flag (the borrow-complement of "less than"), and it
		// always runs SBC in binary mode regardless of the live D flag.
		res := variant.SBC(false, s.C, s.A, uint8(op-OpCMPBase))
		s.C = res.C
	case op < OpANDBase:
		s.A |= uint8(op - OpORABase)
	case op < OpEORBase:
		s.A &= uint8(op - OpANDBase)
	case op < OpCLD:
		s.A ^= uint8(op - OpEORBase)
	case op == OpCLD:
		s.D = false
	case op == OpSED:
		s.D = true
	case op == OpCLC:
		s.C = false
	case op == OpSEC:
		s.C = true
	case op == OpLSR:
		newC := s.A&0x01 != 0
		s.A >>= 1
		s.C = newC
	case op == OpASL:
		newC := s.A&0x80 != 0
		s.A <<= 1
		s.C = newC
	case op == OpROR:
		newC := s.A&0x01 != 0
		s.A = (s.A >> 1) | boolToCarryBit(s.C)
		s.C = newC
	case op == OpROL:
		newC := s.A&0x80 != 0
		s.A = (s.A << 1) | boolToU8(s.C)
		s.C = newC
	}
	return s
}

func boolToCarryBit(b bool) uint8 {
	if b {
		return 0x80
	}
	return 0
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
