package discriminator

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"

	"github.com/go6502/conform/alu"
	"github.com/go6502/conform/simstate"
)

// From a D-set initial state no single operation can discriminate, since an
// accepted sequence must end with D clear; the shortest discriminator is
// SBC(0x0a), which V0 and V2 disagree on, followed by CLD.
func TestSearchFindsTwoOpDiscriminator(t *testing.T) {
	initials := []InitialState{
		{A: 0x00, C: false, D: true},
	}
	got, ok := Search([]alu.Variant{alu.V0, alu.V2}, initials, 2)
	if !ok {
		t.Fatalf("Search found no discriminator within length 2, but SBC(0x0a) then CLD is known to diverge")
	}
	if len(got.Ops) != 2 {
		t.Fatalf("got sequence length %d, want 2", len(got.Ops))
	}
	if got.Ops[0] != simstate.OpSBCBase+0x0a || got.Ops[1] != simstate.OpCLD {
		t.Fatalf("got ops %#03x, want the SBC(0x0a), CLD discriminator [%#03x %#03x]", got.Ops, simstate.OpSBCBase+0x0a, simstate.OpCLD)
	}
	wantFinals := [][]uint8{{0x9f, 0x8f}}
	if diff := deep.Equal(got.Finals, wantFinals); diff != nil {
		t.Fatalf("Finals diff: %v\ngot: %s", diff, spew.Sdump(got.Finals))
	}
}

func TestSearchEndsWithDecimalClear(t *testing.T) {
	initials := []InitialState{{A: 0x00, C: false, D: true}}
	got, ok := Search([]alu.Variant{alu.V0, alu.V2}, initials, 2)
	if !ok {
		t.Fatalf("Search found nothing")
	}
	for i, v := range []alu.Variant{alu.V0, alu.V2} {
		s := initials[0]
		for _, op := range got.Ops {
			s = simstate.Step(v, s, op)
		}
		if s.D {
			t.Fatalf("final state for variant %d still has D set, sequence %v", i, got.Ops)
		}
	}
}

func TestNoDiscriminatorWhenVariantsIdentical(t *testing.T) {
	initials := []InitialState{{A: 0x00, C: false, D: false}}
	_, ok := Search([]alu.Variant{alu.V0, alu.V1}, initials, 1)
	if ok {
		t.Fatalf("found a discriminator between V0 and V1 in binary mode, which must always agree")
	}
}

// TestEvaluateRejectsPerInitialOnlyDivergence pins a case where SBC(0x0a) in
// decimal mode separates V0 from V2 at each initial individually (0x9f vs
// 0x8f starting from A=0x00, 0x0f vs 0xff starting from A=0x10) but neither
// variant's own result is constant across the two initials — V0 lands on
// 0x9f from one and 0x0f from the other. A discriminator must isolate the
// variants by a fixed per-variant target, so this sequence is not one even
// though an evaluate that only compares variants within a single initial
// state would wrongly accept it.
func TestEvaluateRejectsPerInitialOnlyDivergence(t *testing.T) {
	initials := []InitialState{
		{A: 0x00, C: false, D: true},
		{A: 0x10, C: false, D: true},
	}
	seq := []int{simstate.OpSBCBase + 0x0a, simstate.OpCLD}
	if _, ok := evaluate([]alu.Variant{alu.V0, alu.V2}, initials, seq); ok {
		t.Fatalf("evaluate accepted a sequence where variants' finals depend on the starting state, want rejection")
	}
}
