// Package simcpu implements a tick-based 6502/65C02 simulator sufficient to
// execute the fragments package codegen synthesizes, and to back a real
// timing.Oracle instead of a stub. It is not a general-purpose emulator: it
// only implements the opcodes codegen.Templates can synthesize, and its
// cycle accounting is instruction-grained rather than bus-signal-grained,
// since this harness's only use for it is counting total cycles.
package simcpu

import (
	"fmt"

	"github.com/go6502/conform/alu"
	"github.com/go6502/conform/irq"
	"github.com/go6502/conform/membank"
)

const (
	pNegative  = uint8(0x80)
	pOverflow  = uint8(0x40)
	pS1        = uint8(0x20)
	pB         = uint8(0x10)
	pDecimal   = uint8(0x08)
	pInterrupt = uint8(0x04)
	pZero      = uint8(0x02)
	pCarry     = uint8(0x01)

	nmiVector   = uint16(0xFFFA)
	resetVector = uint16(0xFFFC)
	irqVector   = uint16(0xFFFE)
)

// InvalidCPUState is returned for programming errors in how a Chip is
// driven (e.g. calling Tick without a prior TickDone once an instruction
// finished).
type InvalidCPUState struct {
	Reason string
}

func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// HaltOpcode is returned when the simulated program executes an opcode this
// simulator has no semantics for — either a true JAM opcode or simply one
// outside the representative set this harness implements.
type HaltOpcode struct {
	Opcode uint8
}

func (e HaltOpcode) Error() string {
	return fmt.Sprintf("HALT(%#02x) executed", e.Opcode)
}

// Chip is a small tick-driven 6502/65C02 core. Callers drive it by calling
// Tick() repeatedly until TickDone reports the current instruction has
// retired, mirroring the real part's per-cycle bus behavior closely enough
// to let an Oracle count ticks.
type Chip struct {
	A, X, Y, S, P uint8
	PC            uint16

	variant alu.Variant
	ram     membank.Bank
	irq     irq.Sender
	nmi     irq.Sender

	halted     bool
	haltOpcode uint8
	nmiPrev    bool

	op           uint8
	opTicksLeft  int
	opDone       bool
	tickDone     bool
	interrupting bool
}

// ChipDef configures a new Chip.
type ChipDef struct {
	Variant alu.Variant
	Ram     membank.Bank
	Irq     irq.Sender
	Nmi     irq.Sender
}

// Init creates a Chip in powered-on state.
func Init(def ChipDef) (*Chip, error) {
	if !def.Variant.Valid() {
		return nil, InvalidCPUState{Reason: fmt.Sprintf("variant %v is invalid", def.Variant)}
	}
	c := &Chip{variant: def.Variant, ram: def.Ram, irq: def.Irq, nmi: def.Nmi, tickDone: true}
	c.PowerOn()
	return c, nil
}

// PowerOn resets registers to their documented post-power-on state and
// powers on the backing RAM.
func (c *Chip) PowerOn() {
	c.ram.PowerOn()
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0xFD
	c.P = pS1 | pInterrupt
	c.halted = false
	c.opDone = true
	c.tickDone = true
	c.loadResetVector()
}

func (c *Chip) loadResetVector() {
	lo := c.ram.Read(resetVector)
	hi := c.ram.Read(resetVector + 1)
	c.PC = uint16(hi)<<8 | uint16(lo)
}

// SetPC overrides the program counter directly, used by the oracle adapter
// to start execution at a synthesized fragment's entry point.
func (c *Chip) SetPC(pc uint16) {
	c.PC = pc
}

// Halted reports whether the simulator has executed an opcode it can't
// continue past.
func (c *Chip) Halted() bool {
	return c.halted
}

// TickDone must be called once opDone is observed true and before the next
// Tick call, acknowledging the instruction has fully retired. This
// handshake catches callers who Tick() past instruction completion without
// consuming the result.
func (c *Chip) TickDone() {
	c.tickDone = true
}

// OpDone reports whether the in-flight instruction has finished all of its
// cycles.
func (c *Chip) OpDone() bool {
	return c.opDone
}

// Tick advances the simulator by one clock cycle. Once an instruction's
// full cycle count has elapsed, its effects are applied atomically and
// OpDone becomes true; the caller must call TickDone before the next Tick.
func (c *Chip) Tick() error {
	if c.halted {
		return HaltOpcode{Opcode: c.haltOpcode}
	}
	if c.opDone && !c.tickDone {
		return InvalidCPUState{Reason: "Tick called without an intervening TickDone after the previous instruction completed"}
	}

	if c.opDone {
		if n, serviced := c.pollInterrupts(); serviced {
			c.interrupting = true
			c.opTicksLeft = n
		} else {
			c.op = c.ram.Read(c.PC)
			n, err := c.decode(c.op)
			if err != nil {
				c.halted = true
				c.haltOpcode = c.op
				return err
			}
			c.interrupting = false
			c.opTicksLeft = n
		}
		c.opDone = false
	}

	c.opTicksLeft--

	if c.opTicksLeft == 0 {
		if !c.interrupting {
			c.execute(c.op)
		}
		c.opDone = true
		c.tickDone = false
	}

	return nil
}

// pollInterrupts checks irq/nmi between instructions and, if one is due,
// pushes PC and status and jumps to its vector the same way BRK does except
// for the pushed status byte's B flag, which distinguishes a hardware
// interrupt from a software one. NMI is edge-triggered (serviced once per
// rising edge of Raised()); IRQ is level-triggered and masked by the
// interrupt-disable flag, matching real 6502 behavior.
func (c *Chip) pollInterrupts() (ticks int, serviced bool) {
	if c.nmi != nil {
		raised := c.nmi.Raised()
		edge := raised && !c.nmiPrev
		c.nmiPrev = raised
		if edge {
			c.serviceInterrupt(nmiVector)
			return 7, true
		}
	}
	if c.irq != nil && c.P&pInterrupt == 0 && c.irq.Raised() {
		c.serviceInterrupt(irqVector)
		return 7, true
	}
	return 0, false
}

func (c *Chip) serviceInterrupt(vector uint16) {
	c.push(uint8(c.PC >> 8))
	c.push(uint8(c.PC))
	c.push(c.P | pS1)
	c.P |= pInterrupt
	lo := uint16(c.ram.Read(vector))
	hi := uint16(c.ram.Read(vector + 1))
	c.PC = hi<<8 | lo
}

func (c *Chip) fetch(off uint16) uint8 {
	return c.ram.Read(c.PC + off)
}

func (c *Chip) fetchWord(off uint16) uint16 {
	lo := uint16(c.ram.Read(c.PC + off))
	hi := uint16(c.ram.Read(c.PC + off + 1))
	return hi<<8 | lo
}

func (c *Chip) push(v uint8) {
	c.ram.Write(0x0100+uint16(c.S), v)
	c.S--
}

func (c *Chip) pop() uint8 {
	c.S++
	return c.ram.Read(0x0100 + uint16(c.S))
}

func (c *Chip) setNZ(v uint8) {
	if v == 0 {
		c.P |= pZero
	} else {
		c.P &^= pZero
	}
	if v&0x80 != 0 {
		c.P |= pNegative
	} else {
		c.P &^= pNegative
	}
}

func crossesPage(base uint16, index uint8) bool {
	return (base&0xFF)+uint16(index) > 0xFF
}
