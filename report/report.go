// Package report defines the plain result types produced by the
// differential ALU tester and the instruction-timing driver. It imposes no
// formatting policy; callers decide how (or whether) to print these.
package report

// Counters summarizes an ALU differential run over the full input cube.
type Counters struct {
	Checked   uint64
	Mismatches uint64
}

// ALUMismatch records one divergence between a Variant's output and the
// reference table, enough to reproduce it outside the harness.
type ALUMismatch struct {
	Op       string // "ADC" or "SBC"
	Decimal  bool
	CarryIn  bool
	A        uint8
	Operand  uint8
	Got      [2]uint8 // encoded (accumulator, status) from the model
	Want     [2]uint8 // encoded (accumulator, status) from the reference table
}

// TimingMismatch records one instruction fragment whose predicted cycle
// count didn't match what the oracle measured.
type TimingMismatch struct {
	Mnemonic  string
	Opcode    uint8
	Params    []uint8
	Predicted int
	Measured  int
}
