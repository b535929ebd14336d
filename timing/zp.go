package timing

import "github.com/go6502/conform/membank"

// PreserveZeroPage snapshots the zero page of bank, runs fn, then restores
// every byte fn may have written. This lets the timing core reuse a single
// small scratch bank across many measurements without fragments
// corrupting each other's state, and without requiring the host to expose
// a full memory reset between measurements. Only bytes hooks.Hooks reports
// as safe to write are restored; bytes the host reserves for itself are
// left alone (and fragments must not target them in the first place).
func PreserveZeroPage(bank membank.Bank, safeToWrite func(addr uint8) bool, fn func()) {
	var snapshot [256]uint8
	for addr := 0; addr < 256; addr++ {
		if safeToWrite(uint8(addr)) {
			snapshot[addr] = bank.Read(uint16(addr))
		}
	}

	fn()

	for addr := 0; addr < 256; addr++ {
		if safeToWrite(uint8(addr)) {
			bank.Write(uint16(addr), snapshot[addr])
		}
	}
}
