package codegen

import (
	"testing"

	"github.com/go6502/conform/alu"
	"github.com/go6502/conform/arena"
	"github.com/go6502/conform/membank"
)

func newArena(t *testing.T) *arena.Arena {
	t.Helper()
	bank, err := membank.New(0x200, nil)
	if err != nil {
		t.Fatalf("membank.New: %v", err)
	}
	a, err := arena.New(bank, 0x100)
	if err != nil {
		t.Fatalf("arena.New: %v", err)
	}
	return a
}

func TestSynthesizeImmediateEndsInRTS(t *testing.T) {
	a := newArena(t)
	tpl := Templates[0xA9] // LDA #imm
	entry, err := Synthesize(a, tpl, Params{Immediate: 0x42}, alu.V0)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if entry != 0x100 {
		t.Fatalf("entry = %#04x, want 0x100", entry)
	}
	// LDA #imm is opcode, immediate, then RTS.
	wantBytes := []uint8{0xA9, 0x42, 0x60}
	for i, want := range wantBytes {
		got := a.Peek(entry + uint16(i))
		if got != want {
			t.Errorf("byte %d = %#02x, want %#02x", i, got, want)
		}
	}
}

func TestUnsupportedFamily(t *testing.T) {
	a := newArena(t)
	bad := Template{Mnemonic: "???", Opcode: 0xFF, Family: Family(999)}
	if _, err := Synthesize(a, bad, Params{}, alu.V0); err == nil {
		t.Fatalf("expected an UnsupportedFamily error")
	}
}

func TestSynthesizeJMPIndirectWritesPageWrapWorkaround(t *testing.T) {
	a := newArena(t)
	tpl := Templates[0x6C] // JMP (ind)
	ptr := uint16(0x01FF)  // low byte 0xFF: the page-wrap bug case
	target := uint16(0x0245)
	p := Params{IndirectLo: ptr, IndirectTarget: target}

	if _, err := Synthesize(a, tpl, p, alu.V0); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got := a.Peek(ptr); got != uint8(target) {
		t.Errorf("pointer cell lo = %#02x, want %#02x", got, uint8(target))
	}
	if got := a.Peek(ptr + 1); got != uint8(target>>8) {
		t.Errorf("pointer cell hi (correct addressing) = %#02x, want %#02x", got, uint8(target>>8))
	}
	if got := a.Peek(ptr & 0xFF00); got != uint8(target>>8) {
		t.Errorf("page-wrap workaround byte at %#04x = %#02x, want %#02x (the hi byte a buggy read fetches)",
			ptr&0xFF00, got, uint8(target>>8))
	}
}

func TestSynthesizeJMPIndirectSkipsWorkaroundForCMOS(t *testing.T) {
	a := newArena(t)
	tpl := Templates[0x6C]
	ptr := uint16(0x01FF)
	target := uint16(0x0345)
	p := Params{IndirectLo: ptr, IndirectTarget: target}

	if _, err := Synthesize(a, tpl, p, alu.V2); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	// The fragment itself starts at 0x100, so the untouched byte there is the
	// JMP opcode, not a target-high byte.
	if got := a.Peek(ptr & 0xFF00); got != tpl.Opcode {
		t.Errorf("workaround byte at %#04x = %#02x, want untouched %#02x (V2 never reads from there)", ptr&0xFF00, got, tpl.Opcode)
	}
}

func TestSynthesizeAbsoluteXEmitsLDXPreamble(t *testing.T) {
	a := newArena(t)
	tpl := Templates[0xBD] // LDA abs,X
	entry, err := Synthesize(a, tpl, Params{Absolute: 0x1000, Index: 0x05}, alu.V0)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	wantBytes := []uint8{0xA2, 0x05, 0xBD, 0x00, 0x10, 0x60}
	for i, want := range wantBytes {
		got := a.Peek(entry + uint16(i))
		if got != want {
			t.Errorf("byte %d = %#02x, want %#02x", i, got, want)
		}
	}
}

func TestSynthesizeIndirectXEmitsPointerSetupPreamble(t *testing.T) {
	a := newArena(t)
	tpl := Templates[0xA1] // LDA (zp,X)
	entry, err := Synthesize(a, tpl, Params{Absolute: 0x1234, ZeroPage: 0x80, Index: 0x04}, alu.V0)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	wantBytes := []uint8{
		0xA2, 0x34, // LDX #lo
		0x86, 0x80, // STX $80
		0xA2, 0x12, // LDX #hi
		0x86, 0x81, // STX $81
		0xA2, 0x04, // LDX #index
		0xA1, 0x80, // LDA (zp,X)
		0x60, // RTS
	}
	for i, want := range wantBytes {
		got := a.Peek(entry + uint16(i))
		if got != want {
			t.Errorf("byte %d = %#02x, want %#02x", i, got, want)
		}
	}
}

func TestSynthesizeRelativeEmitsFlagForcingPreamble(t *testing.T) {
	a := newArena(t)
	tpl := Templates[0xD0] // BNE, branches when Z clear
	entry, err := Synthesize(a, tpl, Params{Branch: 0x10, Taken: true}, alu.V0)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	// Taken==true, BranchWhenSet==false: forcing the branch taken means
	// forcing Z clear, i.e. AND #^0x02.
	wantBytes := []uint8{0x08, 0x68, 0x29, ^uint8(0x02), 0x48, 0x28, 0xD0, 0x10, 0x60}
	for i, want := range wantBytes {
		got := a.Peek(entry + uint16(i))
		if got != want {
			t.Errorf("byte %d = %#02x, want %#02x", i, got, want)
		}
	}
}

func TestSkipsIndirectJMPWorkaround(t *testing.T) {
	if SkipsIndirectJMPWorkaround(alu.V0) {
		t.Errorf("V0 should reproduce the indirect-JMP bug")
	}
	if !SkipsIndirectJMPWorkaround(alu.V2) {
		t.Errorf("V2 should skip the indirect-JMP bug")
	}
}
