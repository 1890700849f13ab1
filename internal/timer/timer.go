// Package timer implements the divider and the configurable timer. DIV is
// the visible high byte of a 16-bit counter that increments every T-cycle;
// TIMA ticks at the rate selected by TAC and requests an interrupt on
// overflow.
package timer

import (
	"github.com/tbeaumont/go-dmg/internal/interrupts"
	"github.com/tbeaumont/go-dmg/internal/types"
	"github.com/tbeaumont/go-dmg/pkg/bits"
)

// IOBus is the slice of the bus the timer needs: registration of its
// register handlers and the interrupt fast path.
type IOBus interface {
	RegisterIOHandler(address uint16, read func(uint16) uint8, write func(uint16, uint8))
	RequestInterrupt(mask uint8)
}

// periods maps TAC bits 1..0 to T-cycles per TIMA tick.
var periods = [4]uint32{1024, 16, 64, 256}

// Controller is the timer state: the free-running divider and the
// TIMA/TMA/TAC registers.
type Controller struct {
	div  uint16 // full 16-bit divider; reads see bits 15..8
	tima uint8
	tma  uint8
	tac  uint8

	// counter accumulates T-cycles towards the next TIMA tick
	counter uint32

	b IOBus
}

// NewController returns a timer wired to the given bus.
func NewController(b IOBus) *Controller {
	c := &Controller{b: b}

	b.RegisterIOHandler(types.DIV,
		func(uint16) uint8 { return uint8(c.div >> 8) },
		func(uint16, uint8) {
			// any write zeroes the full divider
			c.div = 0
		},
	)
	b.RegisterIOHandler(types.TIMA,
		func(uint16) uint8 { return c.tima },
		func(_ uint16, v uint8) {
			c.tima = v
			c.counter = 0
		},
	)
	b.RegisterIOHandler(types.TMA,
		func(uint16) uint8 { return c.tma },
		func(_ uint16, v uint8) { c.tma = v },
	)
	b.RegisterIOHandler(types.TAC,
		func(uint16) uint8 { return c.tac | 0xF8 },
		func(_ uint16, v uint8) {
			wasEnabled := c.enabled()
			c.tac = v & 0x07
			if wasEnabled != c.enabled() {
				c.counter = 0
			}
		},
	)

	return c
}

func (c *Controller) enabled() bool {
	return bits.Test(c.tac, 2)
}

// Step advances the timer by the given number of T-cycles.
func (c *Controller) Step(cycles uint32) {
	c.div += uint16(cycles)

	if !c.enabled() {
		return
	}

	period := periods[c.tac&0x03]
	c.counter += cycles
	for c.counter >= period {
		c.counter -= period
		c.tima++
		if c.tima == 0 {
			c.tima = c.tma
			c.b.RequestInterrupt(interrupts.TimerFlag)
		}
	}
}

// Reset returns every register to its power-on value.
func (c *Controller) Reset() {
	c.div = 0
	c.tima = 0
	c.tma = 0
	c.tac = 0
	c.counter = 0
}
