package arena

import (
	"testing"

	"github.com/go6502/conform/membank"
)

func TestNewRejectsUnalignedBase(t *testing.T) {
	bank, err := membank.New(0x1000, nil)
	if err != nil {
		t.Fatalf("membank.New: %v", err)
	}
	if _, err := New(bank, 0x201); err == nil {
		t.Fatalf("New with unaligned base succeeded, want an error")
	}
}

func TestEmitAdvancesCursorAndWritesThrough(t *testing.T) {
	bank, err := membank.New(0x1000, nil)
	if err != nil {
		t.Fatalf("membank.New: %v", err)
	}
	a, err := New(bank, 0x100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	start := a.Emit(0x01, 0x02, 0x03)
	if start != 0x100 {
		t.Fatalf("Emit returned start %#04x, want 0x100", start)
	}
	if a.Addr() != 0x103 {
		t.Fatalf("Addr() after Emit = %#04x, want 0x103", a.Addr())
	}
	for i, want := range []uint8{0x01, 0x02, 0x03} {
		if got := a.Peek(0x100 + uint16(i)); got != want {
			t.Errorf("Peek(%#04x) = %#02x, want %#02x", 0x100+i, got, want)
		}
	}
}

func TestResetRewindsWithoutClearing(t *testing.T) {
	bank, _ := membank.New(0x1000, nil)
	a, _ := New(bank, 0x100)
	a.Emit(0xAA, 0xBB)
	a.Reset(0x00)
	if a.Addr() != 0x100 {
		t.Fatalf("Addr() after Reset(0) = %#04x, want 0x100", a.Addr())
	}
	if a.Peek(0x100) != 0xAA {
		t.Fatalf("Reset cleared previously written data")
	}
}

func TestAllocateRejectsOddSize(t *testing.T) {
	bank, _ := membank.New(0x10000, nil)
	_, err := Allocate(bank, 0x10000, 0x201)
	af, ok := err.(*AllocationFailure)
	if !ok || af.Reason != SizeNotAligned {
		t.Fatalf("Allocate(odd size) = %v, want *AllocationFailure{Reason: SizeNotAligned}", err)
	}
}

func TestAllocateRejectsUndersize(t *testing.T) {
	bank, _ := membank.New(0x10000, nil)
	_, err := Allocate(bank, 0x10000, 0x100)
	af, ok := err.(*AllocationFailure)
	if !ok || af.Reason != SizeNotAligned {
		t.Fatalf("Allocate(one page) = %v, want *AllocationFailure{Reason: SizeNotAligned}", err)
	}
}

func TestAllocateRejectsOversize(t *testing.T) {
	bank, _ := membank.New(0x10000, nil)
	_, err := Allocate(bank, 0x1000, 0x2000)
	af, ok := err.(*AllocationFailure)
	if !ok || af.Reason != OutOfMemory {
		t.Fatalf("Allocate(bigger than capacity) = %v, want *AllocationFailure{Reason: OutOfMemory}", err)
	}
}

func TestAllocateAnchorIsMidpointAndResetWorks(t *testing.T) {
	bank, _ := membank.New(0x10000, nil)
	a, err := Allocate(bank, 0x10000, 0x2000)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if a.Anchor() != 0x1000 {
		t.Fatalf("Anchor() = %#04x, want 0x1000", a.Anchor())
	}
	a.ResetToAnchor()
	if a.Addr() != 0x1000 {
		t.Fatalf("Addr() after ResetToAnchor = %#04x, want 0x1000", a.Addr())
	}
}

func TestFreeThenEmitBytePanics(t *testing.T) {
	bank, _ := membank.New(0x10000, nil)
	a, err := Allocate(bank, 0x10000, 0x2000)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	a.Free()
	defer func() {
		if recover() == nil {
			t.Fatalf("EmitByte after Free did not panic")
		}
	}()
	a.EmitByte(0xEA)
}

func TestCrossesPage(t *testing.T) {
	if CrossesPage(0x10FE, 0x01) {
		t.Errorf("0x10FE + 1 should not cross (0x10FF)")
	}
	if !CrossesPage(0x10FE, 0x02) {
		t.Errorf("0x10FE + 2 should cross into 0x1100")
	}
}
