package simcpu

// haltSentinel is an opcode byte this simulator never implements; it is
// written at the return address so that, should execution ever continue
// from there, the next decode halts the chip instead of running on into
// whatever memory follows.
const haltSentinel = 0x02

// rtsCycles is the cycle count of the RTS that codegen.Synthesize appends
// to every fragment; Measure subtracts it so that only the fragment's own
// instructions are counted.
const rtsCycles = 6

// Oracle adapts a Chip into the timing.Oracle contract: run from entry
// until the fragment's trailing RTS returns to a sentinel address, and
// report how many ticks that took, not counting the RTS itself.
type Oracle struct {
	chip   *Chip
	retAddr uint16
}

// NewOracle builds an Oracle backed by chip. retAddr is an address in
// chip's RAM that holds (or will be made to hold) haltSentinel — typically
// a scratch cell just outside the arena used to synthesize fragments.
func NewOracle(chip *Chip, retAddr uint16) *Oracle {
	return &Oracle{chip: chip, retAddr: retAddr}
}

// Measure runs chip starting at entry with the stack primed so a trailing
// RTS returns to retAddr, and counts ticks until that RTS has retired with
// PC at retAddr. The trailing RTS's own rtsCycles are excluded from the
// result. If the chip instead halts on an unimplemented opcode, the ticks
// counted up to that point are returned as they are.
func (o *Oracle) Measure(entry uint16) (int, error) {
	c := o.chip
	c.ram.Write(o.retAddr, haltSentinel)

	// Prime the stack as if a JSR had called entry, so the fragment's own
	// internal RTS (emitted by codegen.Synthesize) returns to retAddr.
	ret := o.retAddr - 1
	c.push(uint8(ret >> 8))
	c.push(uint8(ret))
	c.PC = entry
	c.opDone = true
	c.tickDone = true

	cycles := 0
	for {
		err := c.Tick()
		if err != nil {
			if _, ok := err.(HaltOpcode); ok {
				return cycles, nil
			}
			return cycles, err
		}
		cycles++
		if c.OpDone() {
			c.TickDone()
			if c.PC == o.retAddr {
				return cycles - rtsCycles, nil
			}
		}
	}
}
