package cpu

import "fmt"

// InstructionSetCB holds the 256 CB-prefixed instructions, dispatched
// after a second fetch.
var InstructionSetCB [256]Instruction

// cbRegisterNames indexes the operand encoding of the CB set.
var cbRegisterNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// cbRead returns the operand value for register index i; index 6 is the
// byte at (HL).
func (c *CPU) cbRead(i uint8) uint8 {
	switch i {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.readByte(c.hl())
	default:
		return c.A
	}
}

// cbWrite stores the operand value for register index i.
func (c *CPU) cbWrite(i uint8, v uint8) {
	switch i {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.writeByte(c.hl(), v)
	default:
		c.A = v
	}
}

func init() {
	rotations := []struct {
		name string
		fn   func(*CPU, uint8) uint8
	}{
		{"RLC", (*CPU).rotateLeftCarry},
		{"RRC", (*CPU).rotateRightCarry},
		{"RL", (*CPU).rotateLeft},
		{"RR", (*CPU).rotateRight},
		{"SLA", (*CPU).shiftLeftArithmetic},
		{"SRA", (*CPU).shiftRightArithmetic},
		{"SWAP", (*CPU).swap},
		{"SRL", (*CPU).shiftRightLogical},
	}

	for op, rot := range rotations {
		for reg := uint8(0); reg < 8; reg++ {
			op, rot, reg := op, rot, reg
			InstructionSetCB[uint8(op)<<3|reg] = Instruction{
				name: fmt.Sprintf("%s %s", rot.name, cbRegisterNames[reg]),
				fn: func(c *CPU) {
					c.cbWrite(reg, rot.fn(c, c.cbRead(reg)))
				},
			}
		}
	}

	for b := uint8(0); b < 8; b++ {
		for reg := uint8(0); reg < 8; reg++ {
			b, reg := b, reg
			InstructionSetCB[0x40|b<<3|reg] = Instruction{
				name: fmt.Sprintf("BIT %d, %s", b, cbRegisterNames[reg]),
				fn: func(c *CPU) {
					c.testBit(c.cbRead(reg), b)
				},
			}
			InstructionSetCB[0x80|b<<3|reg] = Instruction{
				name: fmt.Sprintf("RES %d, %s", b, cbRegisterNames[reg]),
				fn: func(c *CPU) {
					c.cbWrite(reg, c.cbRead(reg)&^(1<<b))
				},
			}
			InstructionSetCB[0xC0|b<<3|reg] = Instruction{
				name: fmt.Sprintf("SET %d, %s", b, cbRegisterNames[reg]),
				fn: func(c *CPU) {
					c.cbWrite(reg, c.cbRead(reg)|1<<b)
				},
			}
		}
	}
}
