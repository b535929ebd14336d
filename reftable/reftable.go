// Package reftable loads and queries the hardware-derived ADC/SBC reference
// tables used as ground truth by package difftest. The on-disk format is
// the one produced by the upstream project's own reference-table generator:
// for each of the 2 (decimal flag) * 2 (carry-in) * 256 (accumulator) * 256
// (operand) combinations, two result records are stored back to back — ADC
// then SBC — each record being the (accumulator, status) byte pair that
// package alu's Result.Encode produces.
package reftable

import (
	"fmt"
	"io"
	"os"
)

const (
	// recordSize is the width in bytes of one (accumulator, status) pair.
	recordSize = 2
	// entriesPerTable is the size of the (decimal, carry, A, operand) cube.
	entriesPerTable = 2 * 2 * 256 * 256
	// Size is the total byte size of one variant's reference file: one ADC
	// record and one SBC record per cube entry.
	Size = entriesPerTable * 2 * recordSize
)

// IoFailure wraps an I/O error encountered while loading or saving a table,
// so callers can distinguish "bad file" from "this CPU variant has no
// reference table" without parsing error strings.
type IoFailure struct {
	Path string
	Err  error
}

func (e *IoFailure) Error() string {
	return fmt.Sprintf("reftable: %s: %v", e.Path, e.Err)
}

func (e *IoFailure) Unwrap() error { return e.Err }

// Table is a loaded reference table for one CPU variant, indexed as
// raw bytes for O(1) lookup without per-access allocation.
type Table struct {
	data [Size]byte
}

// index computes the byte offset of the ADC record for the given inputs;
// the SBC record for the same inputs immediately follows it.
func index(decimal, carryIn bool, a, operand uint8) int {
	d := 0
	if decimal {
		d = 1
	}
	c := 0
	if carryIn {
		c = 1
	}
	cube := ((d*2+c)*256+int(a))*256 + int(operand)
	return cube * 2 * recordSize
}

// ADC returns the reference (accumulator, status) pair for ADC.
func (t *Table) ADC(decimal, carryIn bool, a, operand uint8) (acc, status uint8) {
	off := index(decimal, carryIn, a, operand)
	return t.data[off], t.data[off+1]
}

// SBC returns the reference (accumulator, status) pair for SBC.
func (t *Table) SBC(decimal, carryIn bool, a, operand uint8) (acc, status uint8) {
	off := index(decimal, carryIn, a, operand) + recordSize
	return t.data[off], t.data[off+1]
}

// Load reads a reference table from path. The file must be exactly Size
// bytes, matching the upstream generator's output.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IoFailure{Path: path, Err: err}
	}
	defer f.Close()

	t := &Table{}
	if _, err := io.ReadFull(f, t.data[:]); err != nil {
		return nil, &IoFailure{Path: path, Err: err}
	}
	// Confirm there isn't trailing data past what we expect.
	var probe [1]byte
	if n, err := f.Read(probe[:]); n != 0 || err != io.EOF {
		return nil, &IoFailure{Path: path, Err: fmt.Errorf("file is larger than expected %d bytes", Size)}
	}
	return t, nil
}

// Save writes t to path, creating or truncating it.
func Save(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return &IoFailure{Path: path, Err: err}
	}
	defer f.Close()
	if _, err := f.Write(t.data[:]); err != nil {
		return &IoFailure{Path: path, Err: err}
	}
	return f.Close()
}

// Set stores the ADC and SBC records for one cube entry; used by
// cmd/gentables to build a table from package alu's evaluators.
func (t *Table) Set(decimal, carryIn bool, a, operand uint8, adcAcc, adcStatus, sbcAcc, sbcStatus uint8) {
	off := index(decimal, carryIn, a, operand)
	t.data[off] = adcAcc
	t.data[off+1] = adcStatus
	t.data[off+2] = sbcAcc
	t.data[off+3] = sbcStatus
}
