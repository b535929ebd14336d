package simcpu

import "github.com/go6502/conform/alu"

// decode returns the total cycle count for op and validates it is one of
// the opcodes this simulator implements; the actual register/memory
// effects are applied later by execute once that many ticks have elapsed.
func (c *Chip) decode(op uint8) (int, error) {
	switch op {
	case 0xA9: // LDA #imm
		return 2, nil
	case 0xA5: // LDA zp
		return 3, nil
	case 0xB5: // LDA zp,X
		return 4, nil
	case 0xAD: // LDA abs
		return 4, nil
	case 0xBD: // LDA abs,X
		return 4 + extra(c.addrAbsCrosses(1, c.X)), nil
	case 0xB9: // LDA abs,Y
		return 4 + extra(c.addrAbsCrosses(1, c.Y)), nil
	case 0xA1: // LDA (zp,X)
		return 6, nil
	case 0xB1: // LDA (zp),Y
		return 5 + extra(c.addrIndirectYCrosses(1, c.Y)), nil

	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91: // STA family
		switch op {
		case 0x85:
			return 3, nil
		case 0x95:
			return 4, nil
		case 0x8D:
			return 4, nil
		case 0x9D, 0x99:
			return 5, nil
		case 0x81, 0x91:
			return 6, nil
		}

	case 0x69: // ADC #imm
		return 2, nil
	case 0x6D: // ADC abs
		return 4, nil
	case 0xE9: // SBC #imm
		return 2, nil
	case 0xED: // SBC abs
		return 4, nil

	case 0x0A: // ASL A
		return 2, nil
	case 0x06: // ASL zp
		return 5, nil
	case 0x16: // ASL zp,X
		return 6, nil
	case 0x0E: // ASL abs
		return 6, nil
	case 0x1E: // ASL abs,X
		return 7, nil

	case 0xD0: // BNE
		return c.branchCycles(1), nil
	case 0x4C: // JMP abs
		return 3, nil
	case 0x6C: // JMP (abs)
		return 5, nil
	case 0x20: // JSR abs
		return 6, nil
	case 0x60: // RTS
		return 6, nil
	case 0x00: // BRK
		return 7, nil
	case 0x40: // RTI
		return 6, nil
	case 0xEA: // NOP
		return 2, nil

	case 0xA2: // LDX #imm
		return 2, nil
	case 0xA0: // LDY #imm
		return 2, nil
	case 0x86: // STX zp
		return 3, nil
	case 0x84: // STY zp
		return 3, nil
	case 0x08: // PHP
		return 3, nil
	case 0x68: // PLA
		return 4, nil
	case 0x48: // PHA
		return 3, nil
	case 0x28: // PLP
		return 4, nil
	case 0x09: // ORA #imm
		return 2, nil
	case 0x29: // AND #imm
		return 2, nil
	}

	return 0, HaltOpcode{Opcode: op}
}

func extra(crosses bool) int {
	if crosses {
		return 1
	}
	return 0
}

func (c *Chip) addrAbsCrosses(off uint16, index uint8) bool {
	base := c.fetchWord(off)
	return crossesPage(base, index)
}

func (c *Chip) addrIndirectYCrosses(off uint16, index uint8) bool {
	zp := c.fetch(off)
	base := uint16(c.ram.Read(uint16(zp))) | uint16(c.ram.Read(uint16(zp+1)))<<8
	return crossesPage(base, index)
}

func (c *Chip) branchCycles(off uint16) int {
	// The base cost is 2 cycles, +1 if the branch is taken, +1 more if
	// taking it crosses a page. Since BNE's condition depends on Z, which
	// is only known at decode time (not yet mutated this instruction),
	// reading c.P here is safe.
	taken := c.P&pZero == 0
	if !taken {
		return 2
	}
	disp := int8(c.fetch(off))
	from := c.PC + 1 + off
	to := uint16(int32(from) + int32(disp))
	if from&0xFF00 != to&0xFF00 {
		return 4
	}
	return 3
}

// execute applies op's full effect once its cycle count has elapsed. PC is
// advanced by the instruction's total length as part of this, except for
// control-flow instructions that set PC directly.
func (c *Chip) execute(op uint8) {
	switch op {
	case 0xA9:
		v := c.fetch(1)
		c.A = v
		c.setNZ(v)
		c.PC += 2
	case 0xA5:
		addr := uint16(c.fetch(1))
		c.A = c.ram.Read(addr)
		c.setNZ(c.A)
		c.PC += 2
	case 0xB5:
		addr := uint16(c.fetch(1) + c.X)
		c.A = c.ram.Read(addr)
		c.setNZ(c.A)
		c.PC += 2
	case 0xAD:
		addr := c.fetchWord(1)
		c.A = c.ram.Read(addr)
		c.setNZ(c.A)
		c.PC += 3
	case 0xBD:
		addr := c.fetchWord(1) + uint16(c.X)
		c.A = c.ram.Read(addr)
		c.setNZ(c.A)
		c.PC += 3
	case 0xB9:
		addr := c.fetchWord(1) + uint16(c.Y)
		c.A = c.ram.Read(addr)
		c.setNZ(c.A)
		c.PC += 3
	case 0xA1:
		zp := c.fetch(1) + c.X
		addr := uint16(c.ram.Read(uint16(zp))) | uint16(c.ram.Read(uint16(zp+1)))<<8
		c.A = c.ram.Read(addr)
		c.setNZ(c.A)
		c.PC += 2
	case 0xB1:
		zp := c.fetch(1)
		addr := uint16(c.ram.Read(uint16(zp)))|uint16(c.ram.Read(uint16(zp+1)))<<8
		addr += uint16(c.Y)
		c.A = c.ram.Read(addr)
		c.setNZ(c.A)
		c.PC += 2

	case 0x85:
		c.ram.Write(uint16(c.fetch(1)), c.A)
		c.PC += 2
	case 0x95:
		c.ram.Write(uint16(c.fetch(1)+c.X), c.A)
		c.PC += 2
	case 0x8D:
		c.ram.Write(c.fetchWord(1), c.A)
		c.PC += 3
	case 0x9D:
		c.ram.Write(c.fetchWord(1)+uint16(c.X), c.A)
		c.PC += 3
	case 0x99:
		c.ram.Write(c.fetchWord(1)+uint16(c.Y), c.A)
		c.PC += 3
	case 0x81:
		zp := c.fetch(1) + c.X
		addr := uint16(c.ram.Read(uint16(zp))) | uint16(c.ram.Read(uint16(zp+1)))<<8
		c.ram.Write(addr, c.A)
		c.PC += 2
	case 0x91:
		zp := c.fetch(1)
		addr := uint16(c.ram.Read(uint16(zp)))|uint16(c.ram.Read(uint16(zp+1)))<<8
		addr += uint16(c.Y)
		c.ram.Write(addr, c.A)
		c.PC += 2

	case 0x69:
		c.doADC(c.fetch(1))
		c.PC += 2
	case 0x6D:
		c.doADC(c.ram.Read(c.fetchWord(1)))
		c.PC += 3
	case 0xE9:
		c.doSBC(c.fetch(1))
		c.PC += 2
	case 0xED:
		c.doSBC(c.ram.Read(c.fetchWord(1)))
		c.PC += 3

	case 0x0A:
		c.A = c.doASL(c.A)
		c.PC += 1
	case 0x06:
		addr := uint16(c.fetch(1))
		c.ram.Write(addr, c.doASL(c.ram.Read(addr)))
		c.PC += 2
	case 0x16:
		addr := uint16(c.fetch(1) + c.X)
		c.ram.Write(addr, c.doASL(c.ram.Read(addr)))
		c.PC += 2
	case 0x0E:
		addr := c.fetchWord(1)
		c.ram.Write(addr, c.doASL(c.ram.Read(addr)))
		c.PC += 3
	case 0x1E:
		addr := c.fetchWord(1) + uint16(c.X)
		c.ram.Write(addr, c.doASL(c.ram.Read(addr)))
		c.PC += 3

	case 0xD0:
		disp := int8(c.fetch(1))
		taken := c.P&pZero == 0
		c.PC += 2
		if taken {
			c.PC = uint16(int32(c.PC) + int32(disp))
		}
	case 0x4C:
		c.PC = c.fetchWord(1)
	case 0x6C:
		ptr := c.fetchWord(1)
		var hi uint16
		if c.variant != alu.V2 && uint8(ptr) == 0xFF {
			// Reproduce the NMOS indirect-JMP page-wrap bug: the high byte
			// is fetched from the start of the same page instead of the
			// next page.
			hi = ptr & 0xFF00
		} else {
			hi = ptr + 1
		}
		lo := uint16(c.ram.Read(ptr))
		h := uint16(c.ram.Read(hi))
		c.PC = h<<8 | lo
	case 0x20:
		target := c.fetchWord(1)
		ret := c.PC + 2
		c.push(uint8(ret >> 8))
		c.push(uint8(ret))
		c.PC = target
	case 0x60:
		lo := uint16(c.pop())
		hi := uint16(c.pop())
		c.PC = (hi<<8 | lo) + 1
	case 0x00:
		c.PC += 2 // BRK's signature byte
		c.push(uint8(c.PC >> 8))
		c.push(uint8(c.PC))
		c.push(c.P | pB | pS1)
		c.P |= pInterrupt
		lo := uint16(c.ram.Read(irqVector))
		hi := uint16(c.ram.Read(irqVector + 1))
		c.PC = hi<<8 | lo
	case 0x40:
		c.P = c.pop() | pS1
		lo := uint16(c.pop())
		hi := uint16(c.pop())
		c.PC = hi<<8 | lo
	case 0xEA:
		c.PC += 1

	case 0xA2:
		v := c.fetch(1)
		c.X = v
		c.setNZ(v)
		c.PC += 2
	case 0xA0:
		v := c.fetch(1)
		c.Y = v
		c.setNZ(v)
		c.PC += 2
	case 0x86:
		c.ram.Write(uint16(c.fetch(1)), c.X)
		c.PC += 2
	case 0x84:
		c.ram.Write(uint16(c.fetch(1)), c.Y)
		c.PC += 2
	case 0x08:
		c.push(c.P | pB | pS1)
		c.PC += 1
	case 0x68:
		c.A = c.pop()
		c.setNZ(c.A)
		c.PC += 1
	case 0x48:
		c.push(c.A)
		c.PC += 1
	case 0x28:
		c.P = c.pop()&^pB | pS1
		c.PC += 1
	case 0x09:
		c.A |= c.fetch(1)
		c.setNZ(c.A)
		c.PC += 2
	case 0x29:
		c.A &= c.fetch(1)
		c.setNZ(c.A)
		c.PC += 2
	}
}

func (c *Chip) doADC(operand uint8) {
	decimal := c.P&pDecimal != 0
	carry := c.P&pCarry != 0
	r := c.variant.ADC(decimal, carry, c.A, operand)
	c.A, c.P = r.Encode(decimal)
}

func (c *Chip) doSBC(operand uint8) {
	decimal := c.P&pDecimal != 0
	carry := c.P&pCarry != 0
	r := c.variant.SBC(decimal, carry, c.A, operand)
	c.A, c.P = r.Encode(decimal)
}

func (c *Chip) doASL(v uint8) uint8 {
	if v&0x80 != 0 {
		c.P |= pCarry
	} else {
		c.P &^= pCarry
	}
	v <<= 1
	c.setNZ(v)
	return v
}
