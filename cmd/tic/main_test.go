package main

import (
	"testing"

	"github.com/go6502/conform/alu"
)

func TestParseVariantName(t *testing.T) {
	cases := []struct {
		name string
		want alu.Variant
	}{
		{"nmos", alu.V0}, {"6502", alu.V0},
		{"2a03", alu.V1},
		{"cmos", alu.V2}, {"65c02", alu.V2},
		{"NMOS", alu.V0}, // case-insensitive
	}
	for _, c := range cases {
		got, err := parseVariantName(c.name)
		if err != nil {
			t.Errorf("parseVariantName(%q): %v", c.name, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseVariantName(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestParseVariantNameRejectsUnknown(t *testing.T) {
	if _, err := parseVariantName("z80"); err == nil {
		t.Fatalf("parseVariantName(\"z80\") succeeded, want an error")
	}
}

func TestResolveVariantFallsBackToNMOSTableFor2A03(t *testing.T) {
	v, path, err := resolveVariant("2a03", "nmos.dat", "", "cmos.dat")
	if err != nil {
		t.Fatalf("resolveVariant: %v", err)
	}
	if v != alu.V1 {
		t.Errorf("variant = %v, want V1", v)
	}
	if path != "nmos.dat" {
		t.Errorf("path = %q, want fallback to the NMOS table", path)
	}
}

func TestResolveVariantUsesExplicit2A03Table(t *testing.T) {
	_, path, err := resolveVariant("2a03", "nmos.dat", "2a03.dat", "cmos.dat")
	if err != nil {
		t.Fatalf("resolveVariant: %v", err)
	}
	if path != "2a03.dat" {
		t.Errorf("path = %q, want the explicit 2a03 table", path)
	}
}

func TestParseMSMArgsDefaultsWhenNoPositionalArgs(t *testing.T) {
	nreps, minC, maxC, err := parseMSMArgs(nil, 8, 6, 40)
	if err != nil {
		t.Fatalf("parseMSMArgs: %v", err)
	}
	if nreps != 8 || minC != 6 || maxC != 40 {
		t.Errorf("got (%d,%d,%d), want (8,6,40)", nreps, minC, maxC)
	}
}

func TestParseMSMArgsFromPositionalArgs(t *testing.T) {
	nreps, minC, maxC, err := parseMSMArgs([]string{"10", "6", "20"}, 1, 1, 1)
	if err != nil {
		t.Fatalf("parseMSMArgs: %v", err)
	}
	if nreps != 10 || minC != 6 || maxC != 20 {
		t.Errorf("got (%d,%d,%d), want (10,6,20)", nreps, minC, maxC)
	}
}

func TestParseMSMArgsRejectsWrongArgCount(t *testing.T) {
	if _, _, _, err := parseMSMArgs([]string{"1", "2"}, 0, 0, 0); err == nil {
		t.Fatalf("parseMSMArgs with 2 args succeeded, want an error")
	}
}
