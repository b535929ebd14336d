// Package arena provides a page-aligned code buffer for synthesizing
// 6502/65C02 instruction fragments at controlled addresses, so the timing
// core can deliberately place an instruction to cross (or not cross) a page
// boundary.
package arena

import (
	"fmt"

	"github.com/go6502/conform/membank"
)

// pageSize is the 6502 memory page size; addressing-mode page-crossing
// penalties are defined relative to it.
const pageSize = 0x100

// Arena is a scratch code buffer backed by a membank.Bank. base is the
// start of the page the arena writes fragments into; anchor is the
// page-aligned midpoint (base + size/2) that Allocate sets and
// ResetToAnchor rewinds the write cursor to. Reset instead takes a
// per-call offset within the base page.
type Arena struct {
	bank   membank.Bank
	base   uint16
	write  uint16
	size   int
	anchor uint16
	freed  bool
}

// New creates an Arena whose fragments are written starting at base, which
// must be page-aligned.
func New(bank membank.Bank, base uint16) (*Arena, error) {
	if base%pageSize != 0 {
		return nil, fmt.Errorf("arena: base %#04x is not page-aligned", base)
	}
	return &Arena{bank: bank, base: base, write: base}, nil
}

// AllocationReason enumerates why Allocate refused a request.
type AllocationReason int

const (
	_ AllocationReason = iota
	// SizeNotAligned means size was odd or smaller than two pages.
	SizeNotAligned
	// OutOfMemory means size does not fit within the backing bank's capacity.
	OutOfMemory
)

// AllocationFailure is returned by Allocate when size cannot be satisfied.
type AllocationFailure struct {
	Reason AllocationReason
	Size   int
}

func (e *AllocationFailure) Error() string {
	switch e.Reason {
	case SizeNotAligned:
		return fmt.Sprintf("arena: size %d must be even and at least two pages", e.Size)
	case OutOfMemory:
		return fmt.Sprintf("arena: size %d does not fit in the backing bank", e.Size)
	default:
		return fmt.Sprintf("arena: allocation of size %d failed", e.Size)
	}
}

// Allocate carves a fresh Arena of size bytes out of bank, which must have
// at least capacity bytes backing it. size must be even and span at least
// two pages; base is the first page-aligned address (0, since Allocate
// always owns the bank from its start), and anchor — the address
// ResetToAnchor rewinds the write cursor to — is base + size/2, giving a
// full page of headroom on either side to place a fragment across (or
// clear of) a page boundary.
func Allocate(bank membank.Bank, capacity, size int) (*Arena, error) {
	if size <= 0 || size%2 != 0 || size < 2*pageSize {
		return nil, &AllocationFailure{Reason: SizeNotAligned, Size: size}
	}
	if size > capacity {
		return nil, &AllocationFailure{Reason: OutOfMemory, Size: size}
	}
	a := &Arena{bank: bank, base: 0, write: 0, size: size, anchor: uint16(size / 2)}
	return a, nil
}

// Free releases a. A freed Arena must not be written to again; EmitByte
// panics if called afterward, catching a use-after-free in the harness
// itself rather than silently letting it write into memory another
// allocation now owns.
func (a *Arena) Free() {
	a.freed = true
}

// Anchor returns the page-aligned midpoint Allocate computed for a
// (base + size/2). It is meaningless for an Arena built with New rather
// than Allocate, which never sets size.
func (a *Arena) Anchor() uint16 {
	return a.anchor
}

// ResetToAnchor rewinds the write cursor to a's Anchor, the default
// fragment-synthesis address Allocate sets up.
func (a *Arena) ResetToAnchor() {
	a.write = a.anchor
}

// Reset rewinds the write cursor to anchor (an offset within the arena's
// page) without clearing previously written bytes.
func (a *Arena) Reset(anchor uint8) {
	a.write = a.base + uint16(anchor)
}

// Addr returns the address the next byte will be written to.
func (a *Arena) Addr() uint16 {
	return a.write
}

// Peek reads back a byte previously written to the arena's backing bank,
// without disturbing the write cursor. It's mainly useful for tests that
// want to verify exactly what Synthesize emitted.
func (a *Arena) Peek(addr uint16) uint8 {
	return a.bank.Read(addr)
}

// Bank returns the backing membank.Bank, for callers (e.g. an Oracle) that
// need to drive a simulator over the same memory the arena wrote into.
func (a *Arena) Bank() membank.Bank {
	return a.bank
}

// EmitByte writes one byte at the current cursor and advances it.
func (a *Arena) EmitByte(b uint8) uint16 {
	if a.freed {
		panic("arena: EmitByte called on a freed Arena")
	}
	addr := a.write
	a.bank.Write(addr, b)
	a.write++
	return addr
}

// Emit writes a sequence of bytes starting at the current cursor and
// returns the address the sequence started at.
func (a *Arena) Emit(bs ...uint8) uint16 {
	start := a.write
	for _, b := range bs {
		a.EmitByte(b)
	}
	return start
}

// CrossesPage reports whether an indexed access starting at base with the
// given index would cross into the next page, the definition used
// throughout the timing core's "extra cycle on page crossing" rule.
func CrossesPage(base uint16, index uint8) bool {
	return (base&0xFF)+uint16(index) > 0xFF
}
