// Command gentables generates the hardware-reference ADC/SBC tables
// package reftable loads, one file per CPU variant, by walking the full
// (decimal, carry-in, accumulator, operand) cube through package alu's
// evaluators — the same cube walk the upstream project's own reference-file
// generator performs, just driven from a Go model instead of silicon.
package main

import (
	"flag"
	"log"

	"github.com/go6502/conform/alu"
	"github.com/go6502/conform/reftable"
)

func main() {
	nmosOut := flag.String("nmos-out", "adc_sbc_6502.dat", "Output path for the NMOS 6502 reference table")
	cmosOut := flag.String("cmos-out", "adc_sbc_65c02.dat", "Output path for the CMOS 65C02 reference table")
	binaryOnlyOut := flag.String("binary-only-out", "", "Optional output path for the binary-only NMOS (2A03-style) variant")
	flag.Parse()

	if err := generate(alu.V0, *nmosOut); err != nil {
		log.Fatalf("gentables: NMOS: %v", err)
	}
	if err := generate(alu.V2, *cmosOut); err != nil {
		log.Fatalf("gentables: CMOS: %v", err)
	}
	if *binaryOnlyOut != "" {
		if err := generate(alu.V1, *binaryOnlyOut); err != nil {
			log.Fatalf("gentables: binary-only: %v", err)
		}
	}
}

// generate builds a reftable.Table for variant by evaluating its ADC/SBC
// over the full cube, then saves it to path.
func generate(variant alu.Variant, path string) error {
	t := &reftable.Table{}

	for d := 0; d < 2; d++ {
		decimal := d != 0
		for c := 0; c < 2; c++ {
			carryIn := c != 0
			for a := 0; a < 256; a++ {
				acc := uint8(a)
				for op := 0; op < 256; op++ {
					operand := uint8(op)

					adcResult := variant.ADC(decimal, carryIn, acc, operand)
					adcAcc, adcStatus := adcResult.Encode(decimal)

					sbcResult := variant.SBC(decimal, carryIn, acc, operand)
					sbcAcc, sbcStatus := sbcResult.Encode(decimal)

					t.Set(decimal, carryIn, acc, operand, adcAcc, adcStatus, sbcAcc, sbcStatus)
				}
			}
		}
	}

	log.Printf("gentables: %s: writing %s", variant, path)
	return reftable.Save(path, t)
}
