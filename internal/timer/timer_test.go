package timer

import (
	"testing"

	"github.com/tbeaumont/go-dmg/internal/types"
)

// fakeBus records registered handlers and requested interrupts.
type fakeBus struct {
	readers    map[uint16]func(uint16) uint8
	writers    map[uint16]func(uint16, uint8)
	interrupts uint8
}

func newFakeBus() *fakeBus {
	return &fakeBus{
		readers: map[uint16]func(uint16) uint8{},
		writers: map[uint16]func(uint16, uint8){},
	}
}

func (f *fakeBus) RegisterIOHandler(address uint16, read func(uint16) uint8, write func(uint16, uint8)) {
	f.readers[address] = read
	f.writers[address] = write
}

func (f *fakeBus) RequestInterrupt(mask uint8) {
	f.interrupts |= mask
}

func (f *fakeBus) read(address uint16) uint8     { return f.readers[address](address) }
func (f *fakeBus) write(address uint16, v uint8) { f.writers[address](address, v) }

func TestController_DIVCountsTCycles(t *testing.T) {
	b := newFakeBus()
	c := NewController(b)

	// DIV is the high byte, so 256 T-cycles per visible increment
	c.Step(255)
	if got := b.read(types.DIV); got != 0 {
		t.Errorf("DIV should still read 0, got %d", got)
	}
	c.Step(1)
	if got := b.read(types.DIV); got != 1 {
		t.Errorf("DIV should read 1, got %d", got)
	}
}

func TestController_DIVWriteZeroesFullCounter(t *testing.T) {
	b := newFakeBus()
	c := NewController(b)

	c.Step(1000)
	b.write(types.DIV, 0x5A)
	if got := b.read(types.DIV); got != 0 {
		t.Errorf("DIV should read 0 after write, got %d", got)
	}
	c.Step(255)
	if got := b.read(types.DIV); got != 0 {
		t.Errorf("full 16-bit counter not erased, DIV=%d", got)
	}
}

func TestController_TIMADisabledByDefault(t *testing.T) {
	b := newFakeBus()
	c := NewController(b)

	c.Step(100000)
	if got := b.read(types.TIMA); got != 0 {
		t.Errorf("TIMA should not tick with TAC bit 2 clear, got %d", got)
	}
}

func TestController_TIMAFrequencies(t *testing.T) {
	for tac, period := range map[uint8]uint32{0x04: 1024, 0x05: 16, 0x06: 64, 0x07: 256} {
		b := newFakeBus()
		c := NewController(b)
		b.write(types.TAC, tac)

		c.Step(period - 1)
		if got := b.read(types.TIMA); got != 0 {
			t.Errorf("TAC=0x%02X: TIMA ticked early, got %d", tac, got)
		}
		c.Step(1)
		if got := b.read(types.TIMA); got != 1 {
			t.Errorf("TAC=0x%02X: TIMA should read 1 after %d cycles, got %d", tac, period, got)
		}
	}
}

func TestController_OverflowReloadsAndInterrupts(t *testing.T) {
	b := newFakeBus()
	c := NewController(b)

	b.write(types.TMA, 0x23)
	b.write(types.TAC, 0x05) // enabled, 16 cycles per tick
	b.write(types.TIMA, 0xFF)

	c.Step(16)

	if got := b.read(types.TIMA); got != 0x23 {
		t.Errorf("TIMA should reload from TMA on overflow, got 0x%02X", got)
	}
	if b.interrupts&0x04 == 0 {
		t.Error("overflow should request the timer interrupt")
	}
}

func TestController_TIMAWriteResetsSubCounter(t *testing.T) {
	b := newFakeBus()
	c := NewController(b)

	b.write(types.TAC, 0x04) // enabled, 1024 cycles per tick
	c.Step(1000)
	b.write(types.TIMA, 0x00)

	// the 1000 accumulated cycles must have been discarded
	c.Step(1023)
	if got := b.read(types.TIMA); got != 0 {
		t.Errorf("sub-counter not reset by TIMA write, TIMA=%d", got)
	}
	c.Step(1)
	if got := b.read(types.TIMA); got != 1 {
		t.Errorf("expected TIMA=1, got %d", got)
	}
}

func TestController_TACToggleResetsSubCounter(t *testing.T) {
	b := newFakeBus()
	c := NewController(b)

	b.write(types.TAC, 0x04)
	c.Step(1000)

	b.write(types.TAC, 0x00) // disable
	b.write(types.TAC, 0x04) // re-enable

	c.Step(1023)
	if got := b.read(types.TIMA); got != 0 {
		t.Errorf("sub-counter not reset by TAC toggle, TIMA=%d", got)
	}
}

func TestController_TACReadsHighBitsSet(t *testing.T) {
	b := newFakeBus()
	c := NewController(b)
	_ = c

	b.write(types.TAC, 0x05)
	if got := b.read(types.TAC); got != 0xFD {
		t.Errorf("TAC should read 0xFD, got 0x%02X", got)
	}
}
