// Package cpu implements the 8-bit interpreter: a fetch/dispatch loop
// over two 256-entry instruction tables, interrupt servicing and the
// cycle accounting every other component is driven by.
package cpu

import (
	"github.com/tbeaumont/go-dmg/internal/bus"
	"github.com/tbeaumont/go-dmg/internal/interrupts"
	"github.com/tbeaumont/go-dmg/pkg/log"
)

// ClockSpeed is the T-cycle rate of the machine.
const ClockSpeed = 4194304

// CPU is the processor state: the register file, the interrupt master
// enable and the halt latches.
type CPU struct {
	A, F uint8
	B, C uint8
	D, E uint8
	H, L uint8
	SP   uint16
	PC   uint16

	ime       bool
	eiPending bool
	halted    bool
	stopped   bool

	// ticks accumulates the T-cycles charged by the current step
	ticks uint32

	b   *bus.Bus
	irq *interrupts.Service
	log log.Logger
}

// New returns a CPU wired to the given bus and interrupt service, in the
// post-boot state.
func New(b *bus.Bus, irq *interrupts.Service, logger log.Logger) *CPU {
	c := &CPU{
		b:   b,
		irq: irq,
		log: logger,
	}
	c.Reset()
	return c
}

// Reset restores the register file to its post-boot-ROM values.
func (c *CPU) Reset() {
	c.setAF(0x01B0)
	c.setBC(0x0013)
	c.setDE(0x00D8)
	c.setHL(0x014D)
	c.SP = 0xFFFE
	c.PC = 0x0100

	c.ime = false
	c.eiPending = false
	c.halted = false
	c.stopped = false
	c.ticks = 0
}

// Step executes one instruction and returns the T-cycles it consumed.
// Interrupts are sampled only here, never mid-instruction.
func (c *CPU) Step() uint32 {
	c.ticks = 0

	// EI takes effect after the instruction that follows it
	pendingEI := c.eiPending

	if c.halted || c.stopped {
		// HALT wakes on any pending interrupt regardless of IME;
		// whether it is serviced still depends on IME below
		if c.irq.Flag&c.irq.Enable != 0 {
			c.halted = false
			c.stopped = false
		} else {
			c.ticks = 4
			return c.ticks
		}
	}

	c.serviceInterrupts()

	opcode := c.readOperand()
	InstructionSet[opcode].fn(c)

	if pendingEI && c.eiPending {
		c.ime = true
		c.eiPending = false
	}

	return c.ticks
}

// serviceInterrupts dispatches the highest priority pending and enabled
// interrupt: clear its IF bit, clear IME, push PC and jump to the vector.
// 20 T-cycles.
func (c *CPU) serviceInterrupts() {
	if !c.ime || c.irq.Flag&c.irq.Enable == 0 {
		return
	}

	i := c.irq.Next()
	c.ime = false

	c.SP--
	c.writeByte(c.SP, uint8(c.PC>>8))
	c.SP--
	c.writeByte(c.SP, uint8(c.PC))
	c.PC = interrupts.Vector(i)

	c.ticks += 12
}

// readByte reads one byte from the bus, charging 4 T-cycles.
func (c *CPU) readByte(address uint16) uint8 {
	c.ticks += 4
	return c.b.Read(address)
}

// writeByte writes one byte to the bus, charging 4 T-cycles.
func (c *CPU) writeByte(address uint16, value uint8) {
	c.ticks += 4
	c.b.Write(address, value)
}

// readOperand fetches the byte at PC and post-increments PC.
func (c *CPU) readOperand() uint8 {
	value := c.readByte(c.PC)
	c.PC++
	return value
}

// readOperand16 fetches a little-endian 16-bit operand.
func (c *CPU) readOperand16() uint16 {
	low := c.readOperand()
	high := c.readOperand()
	return uint16(high)<<8 | uint16(low)
}

// Register pair accessors. F's low nibble is not writable and is masked
// on every store.

func (c *CPU) af() uint16 { return uint16(c.A)<<8 | uint16(c.F) }
func (c *CPU) bc() uint16 { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) de() uint16 { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) hl() uint16 { return uint16(c.H)<<8 | uint16(c.L) }

func (c *CPU) setAF(v uint16) { c.A = uint8(v >> 8); c.F = uint8(v) & 0xF0 }
func (c *CPU) setBC(v uint16) { c.B = uint8(v >> 8); c.C = uint8(v) }
func (c *CPU) setDE(v uint16) { c.D = uint8(v >> 8); c.E = uint8(v) }
func (c *CPU) setHL(v uint16) { c.H = uint8(v >> 8); c.L = uint8(v) }

// IME reports the interrupt master enable latch.
func (c *CPU) IME() bool {
	return c.ime
}

// Halted reports whether the CPU is waiting for an interrupt.
func (c *CPU) Halted() bool {
	return c.halted
}
