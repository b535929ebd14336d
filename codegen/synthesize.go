package codegen

import (
	"fmt"

	"github.com/go6502/conform/alu"
	"github.com/go6502/conform/arena"
)

// Params carries the operand values a fragment is synthesized with. Which
// fields apply depends on the Template's Family; callers only need to set
// the ones relevant to the family they're synthesizing.
type Params struct {
	ZeroPage       uint8  // operand byte for ZeroPage*/IndirectX/IndirectY families
	Absolute       uint16 // operand word for Absolute*/JMP*/JSR families, and the pointer target for Indirect* overhead setup
	Index          uint8  // X or Y register value used to decide page-crossing
	Branch         int8   // signed displacement for FamilyRelative
	Taken          bool   // whether the branch in FamilyRelative is taken
	BranchPC       uint16 // PC immediately after the two-byte branch opcode, for page-cross checks
	Immediate      uint8  // operand byte for FamilyImmediate
	IndirectLo     uint16 // address of the indirect pointer cell, for FamilyJMPIndirect
	IndirectTarget uint16 // address the indirect jump should land on, written into the pointer cell
}

// UnsupportedFamily is returned by Synthesize when asked to emit a Family
// it has no encoding for.
type UnsupportedFamily struct {
	Family Family
}

func (e *UnsupportedFamily) Error() string {
	return fmt.Sprintf("codegen: unsupported family %d", e.Family)
}

// Opcodes used only to synthesize a family's overhead preamble, never as a
// Template's own Opcode.
const (
	opLDXImm = 0xA2
	opLDYImm = 0xA0
	opSTXZP  = 0x86
	opSTYZP  = 0x84
	opPHP    = 0x08
	opPLA    = 0x68
	opPHA    = 0x48
	opPLP    = 0x28
	opORAImm = 0x09
	opANDImm = 0x29
)

// synthesizeOverhead writes the real setup instructions t.Overhead costs,
// ahead of the measured opcode: LDX/LDY for the indexed families, a
// pointer-cell setup for the (zp,X)/(zp),Y families, and a status-forcing
// PHP/PLA/ORA-or-AND/PHA/PLP sequence for FamilyRelative. Driving these
// registers through synthesized instructions (instead of a caller poking
// the simulator's Chip fields directly) means the oracle's measured cycle
// count actually includes the overhead predict.Predict expects.
func synthesizeOverhead(a *arena.Arena, t Template, p Params) {
	switch t.Family {
	case FamilyZeroPageX, FamilyAbsoluteX:
		a.Emit(opLDXImm, p.Index)
	case FamilyZeroPageY, FamilyAbsoluteY:
		a.Emit(opLDYImm, p.Index)
	case FamilyIndirectX:
		lo, hi := uint8(p.Absolute), uint8(p.Absolute>>8)
		a.Emit(opLDXImm, lo)
		a.Emit(opSTXZP, p.ZeroPage)
		a.Emit(opLDXImm, hi)
		a.Emit(opSTXZP, p.ZeroPage+1)
		a.Emit(opLDXImm, p.Index)
	case FamilyIndirectY:
		lo, hi := uint8(p.Absolute), uint8(p.Absolute>>8)
		a.Emit(opLDYImm, lo)
		a.Emit(opSTYZP, p.ZeroPage)
		a.Emit(opLDYImm, hi)
		a.Emit(opSTYZP, p.ZeroPage+1)
		a.Emit(opLDYImm, p.Index)
	case FamilyRelative:
		wantBitSet := p.Taken == t.BranchWhenSet
		a.EmitByte(opPHP)
		a.EmitByte(opPLA)
		if wantBitSet {
			a.Emit(opORAImm, t.BranchFlagMask)
		} else {
			a.Emit(opANDImm, ^t.BranchFlagMask)
		}
		a.EmitByte(opPHA)
		a.EmitByte(opPLP)
	}
}

// Synthesize writes t's fragment into a starting at its current cursor,
// preceded by any overhead setup instructions t.Overhead accounts for and
// followed by an RTS (per the rule that every measured fragment must return
// control to its caller), and returns the address execution should start
// at. variant controls whether the indirect-JMP page-wrap bug is
// reproduced.
func Synthesize(a *arena.Arena, t Template, p Params, variant alu.Variant) (uint16, error) {
	entry := a.Addr()
	synthesizeOverhead(a, t, p)

	switch t.Family {
	case FamilyImplied, FamilyAccumulator:
		a.EmitByte(t.Opcode)
	case FamilyImmediate:
		a.Emit(t.Opcode, p.Immediate)
	case FamilyZeroPage, FamilyZeroPageX, FamilyZeroPageY:
		a.Emit(t.Opcode, p.ZeroPage)
	case FamilyIndirectX, FamilyIndirectY:
		a.Emit(t.Opcode, p.ZeroPage)
	case FamilyAbsolute, FamilyAbsoluteX, FamilyAbsoluteY:
		lo, hi := uint8(p.Absolute), uint8(p.Absolute>>8)
		a.Emit(t.Opcode, lo, hi)
	case FamilyRelative:
		a.Emit(t.Opcode, uint8(p.Branch))
	case FamilyJMPAbsolute, FamilyJSRAbsolute:
		lo, hi := uint8(p.Absolute), uint8(p.Absolute>>8)
		a.Emit(t.Opcode, lo, hi)
	case FamilyJMPIndirect:
		ptr := p.IndirectLo
		lo, hi := uint8(ptr), uint8(ptr>>8)
		a.Emit(t.Opcode, lo, hi)

		targetLo, targetHi := uint8(p.IndirectTarget), uint8(p.IndirectTarget>>8)
		a.Bank().Write(ptr, targetLo)
		a.Bank().Write(ptr+1, targetHi)
		if !SkipsIndirectJMPWorkaround(variant) && uint8(ptr) == 0xFF {
			// Reproduce the NMOS bug: the CPU fetches the high byte from
			// ptr&0xFF00 instead of ptr+1 when the pointer's low byte is
			// 0xFF. Pre-write the correct high byte there too, so a buggy
			// read still resolves to the intended target instead of
			// whatever else lives at the start of that page.
			a.Bank().Write(ptr&0xFF00, targetHi)
		}
	case FamilyBRK:
		a.Emit(t.Opcode, 0x00) // BRK's second byte is a padding signature byte
	case FamilyRTS, FamilyRTI:
		a.EmitByte(t.Opcode)
	default:
		return 0, &UnsupportedFamily{Family: t.Family}
	}

	if t.Family != FamilyRTS && t.Family != FamilyRTI && t.Family != FamilyJMPAbsolute && t.Family != FamilyJMPIndirect {
		a.EmitByte(0x60) // RTS
	}

	return entry, nil
}
