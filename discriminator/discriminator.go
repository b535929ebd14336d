// Package discriminator searches for a short sequence of simstate
// operations that, starting from every initial state in a declared set,
// converges to a final accumulator value that differs between two (or
// three) CPU variants — a test vector that can tell the variants apart by
// running a handful of instructions and reading back the accumulator.
//
// The search is a bounded, exhaustive enumeration over operation sequences:
// at each position it tries every candidate operation and recurses, relying
// on Go's call stack for backtracking, the same shape as a recursive
// instruction-sequence enumerator. There is no model-checker backend; no
// SAT/SMT solver is wired into this module.
package discriminator

import "github.com/go6502/conform/simstate"
import "github.com/go6502/conform/alu"

// Candidates is the default operation set tried at every position in the
// search: the eight flag-only/shift instructions plus representative
// immediate operands for ADC/SBC, the only operations whose behavior can
// differ across variants.
var Candidates = defaultCandidates()

func defaultCandidates() []int {
	ops := []int{simstate.OpCLD, simstate.OpSED, simstate.OpCLC, simstate.OpSEC,
		simstate.OpLSR, simstate.OpASL, simstate.OpROR, simstate.OpROL}
	for _, base := range []int{simstate.OpADCBase, simstate.OpSBCBase} {
		for _, operand := range []int{0x00, 0x01, 0x09, 0x0a, 0x50, 0x99, 0xff} {
			ops = append(ops, base+operand)
		}
	}
	return ops
}

// InitialState is one starting point the discriminator must separate the
// variants from; a real search declares several, typically sweeping the
// decimal and carry flags and a handful of accumulator values.
type InitialState = simstate.State

// Result is a discovered sequence along with the final accumulator value it
// converges to for each variant, keyed by index into the Variants slice
// passed to Search.
type Result struct {
	Ops    []int
	Finals [][]uint8 // Finals[i][j]: final A for initials[i] under variants[j]
}

// Search looks for an operation sequence of length up to maxLen that, for
// every state in initials, drives all of variants to their own final
// accumulator value while any two variants disagree on at least one
// initial's final value, and every run ends with D cleared (so the
// discovered vector is safe to apply without leaving decimal mode set).
// It returns the first such sequence found by depth-first search over
// Candidates, or ok=false if none exists within maxLen.
func Search(variants []alu.Variant, initials []InitialState, maxLen int) (Result, bool) {
	var found Result
	ok := false

	for length := 1; length <= maxLen && !ok; length++ {
		seq := make([]int, 0, length)
		searchExactLength(variants, initials, length, &seq, &found, &ok)
	}

	return found, ok
}

// searchExactLength performs the depth-first enumeration for one fixed
// sequence length, so Search can try shorter sequences first.
func searchExactLength(variants []alu.Variant, initials []InitialState, length int, seq *[]int, found *Result, ok *bool) {
	var rec func(depth int)
	rec = func(depth int) {
		if *ok {
			return
		}
		if depth == length {
			if r, good := evaluate(variants, initials, *seq); good {
				*found = r
				*ok = true
			}
			return
		}
		for _, op := range Candidates {
			*seq = append(*seq, op)
			rec(depth + 1)
			*seq = (*seq)[:len(*seq)-1]
			if *ok {
				return
			}
		}
	}
	rec(0)
}

// evaluate applies seq to every initial state under every variant and
// checks the convergence predicate: all runs end with D clear, each
// variant converges to the SAME final accumulator value (its target)
// regardless of which declared initial it started from, and at least two
// variants' targets disagree. A sequence that only separates variants for
// some initial states but not others is not a valid discriminator — it
// must isolate the variants by a fixed per-variant constant, matching
// `all_ok`'s convergence predicate.
func evaluate(variants []alu.Variant, initials []InitialState, seq []int) (Result, bool) {
	if len(initials) == 0 {
		return Result{}, false
	}

	targets := make([]uint8, len(variants))
	finals := make([][]uint8, len(initials))

	for i, init := range initials {
		row := make([]uint8, len(variants))
		for j, v := range variants {
			s := init
			for _, op := range seq {
				s = simstate.Step(v, s, op)
			}
			if s.D {
				return Result{}, false
			}
			if i == 0 {
				targets[j] = s.A
			} else if s.A != targets[j] {
				return Result{}, false
			}
			row[j] = s.A
		}
		finals[i] = row
	}

	anyDiffer := false
	for j := 1; j < len(targets); j++ {
		if targets[j] != targets[0] {
			anyDiffer = true
		}
	}
	if !anyDiffer {
		return Result{}, false
	}
	return Result{Ops: append([]int(nil), seq...), Finals: finals}, true
}
