// Package timing implements the instruction-timing conformance core: for
// each synthesized fragment, compare an independently computed prediction
// (package predict) against what a concrete Oracle actually measures,
// across a parameter sweep whose density is controlled by a Level.
package timing

import (
	"github.com/go6502/conform/codegen"
	"github.com/go6502/conform/hooks"
	"github.com/go6502/conform/membank"
	"github.com/go6502/conform/predict"
	"github.com/go6502/conform/report"
)

// Oracle is the abstract "run this fragment and tell me how many cycles it
// took" contract. A concrete Oracle might be backed by real hardware over a
// serial link, or — as package simcpu supplies — a tick-accurate simulator.
type Oracle interface {
	Measure(entry uint16) (cycles int, err error)
}

// Level selects how densely the parameter space (operand values, index
// register values, zero-page addresses) is swept. The mapping from Level to
// a concrete step size mirrors the upstream project's STEP_SIZE table:
// level 7 is exhaustive (step 1), level 0 is the coarsest useful sweep
// (step 255).
type Level int

// stepForLevel lists the recognized step sizes from finest (step 1, most
// exhaustive) to coarsest; Step indexes it with 7-l, so a higher Level
// means denser coverage.
var stepForLevel = [8]int{1, 3, 5, 15, 17, 51, 85, 255}

// Step returns the parameter-sweep step size for this Level, clamping to
// the defined range.
func (l Level) Step() int {
	if l < 0 {
		l = 0
	}
	if l > 7 {
		l = 7
	}
	return stepForLevel[7-l]
}

// Driver runs the timing core's sweep against a single Oracle.
type Driver struct {
	Oracle Oracle
	Hooks  hooks.Hooks

	// ZeroPage, if set, is snapshotted and restored around every
	// measurement (bytes hooks.Hooks reports as safe to write only), so a
	// fragment that happens to use a zero-page scratch cell a later
	// measurement also uses can't leak state between them. Leave nil to
	// skip preservation, e.g. when every fragment already targets disjoint
	// memory.
	ZeroPage membank.Bank
}

// New creates a Driver. If h is nil, hooks.NopHooks{} is used.
func New(o Oracle, h hooks.Hooks) *Driver {
	if h == nil {
		h = hooks.NopHooks{}
	}
	return &Driver{Oracle: o, Hooks: h}
}

// measure runs the fragment at entry through the Oracle and returns the
// measured cycle count. The caller is expected to have already
// synthesized the fragment into the arena the Oracle's Chip shares; entry
// is the address execution should begin at.
func (d *Driver) measure(entry uint16) (int, error) {
	return d.Oracle.Measure(entry)
}

// RunOne measures a single (Template, Params) case that the caller has
// already synthesized at entry, comparing the Oracle's measurement against
// predict.Predict, and returns
// a *report.TimingMismatch if they disagree (nil otherwise).
func (d *Driver) RunOne(t codegen.Template, p codegen.Params, entry uint16) (*report.TimingMismatch, error) {
	predicted := predict.Predict(t, p, d.Hooks)

	var measured int
	var err error
	if d.ZeroPage != nil {
		PreserveZeroPage(d.ZeroPage, d.Hooks.ZPSafeForWrite, func() {
			measured, err = d.measure(entry)
		})
	} else {
		measured, err = d.measure(entry)
	}
	if err != nil {
		return nil, err
	}
	if predicted != measured {
		return &report.TimingMismatch{
			Mnemonic:  t.Mnemonic,
			Opcode:    t.Opcode,
			Params:    paramBytes(p),
			Predicted: predicted,
			Measured:  measured,
		}, nil
	}
	return nil, nil
}

func paramBytes(p codegen.Params) []uint8 {
	return []uint8{p.ZeroPage, uint8(p.Absolute), uint8(p.Absolute >> 8), p.Index, p.Immediate}
}

// Sweep runs RunOne across a parameter sweep at the given Level for a
// read/write family template (ZeroPage*/Absolute*/Indirect* with an index
// register), stepping the index register by Level.Step() and re-
// synthesizing the fragment fresh each time via synth. It returns
// aggregate counters and every mismatch found.
func (d *Driver) Sweep(t codegen.Template, level Level, synth func(index uint8) (codegen.Params, uint16, error)) (report.Counters, []report.TimingMismatch) {
	var counters report.Counters
	var mismatches []report.TimingMismatch

	step := level.Step()
	for idx := 0; ; idx += step {
		index := uint8(idx)
		p, entry, err := synth(index)
		if err != nil {
			break
		}
		counters.Checked++
		mm, err := d.RunOne(t, p, entry)
		if err != nil {
			counters.Mismatches++
			continue
		}
		if mm != nil {
			counters.Mismatches++
			if len(mismatches) < 1000 {
				mismatches = append(mismatches, *mm)
			}
		}
		d.Hooks.Progress(t.Mnemonic, idx, 256)
		if idx+step > 255 {
			break
		}
	}

	return counters, mismatches
}
