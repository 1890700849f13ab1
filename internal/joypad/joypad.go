// Package joypad implements the P1 register and the 8-bit button latch
// the driver feeds once per frame.
package joypad

import (
	"github.com/tbeaumont/go-dmg/internal/interrupts"
	"github.com/tbeaumont/go-dmg/internal/types"
)

// Button bit positions in the driver latch. 0 = pressed, 1 = released.
const (
	ButtonRight uint8 = 1 << iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

// IOBus is the slice of the bus the joypad needs.
type IOBus interface {
	RegisterIOHandler(address uint16, read func(uint16) uint8, write func(uint16, uint8))
	RequestInterrupt(mask uint8)
}

// State holds the button latch and the P1 select bits.
//
//	Bit 5 - P15 select action keys    (0=Select)
//	Bit 4 - P14 select direction keys (0=Select)
//	Bit 3 - Down  or Start            (0=Pressed, read only)
//	Bit 2 - Up    or Select           (0=Pressed, read only)
//	Bit 1 - Left  or B                (0=Pressed, read only)
//	Bit 0 - Right or A                (0=Pressed, read only)
type State struct {
	// latch is the driver-supplied button vector: bit 0 Right .. bit 7
	// Start, 0 = pressed
	latch uint8
	sel   uint8 // last written P1 bits 4..5

	b IOBus
}

// New returns a joypad with every button released.
func New(b IOBus) *State {
	s := &State{
		latch: 0xFF,
		sel:   0x30,
		b:     b,
	}

	b.RegisterIOHandler(types.P1,
		func(uint16) uint8 { return s.read() },
		func(_ uint16, v uint8) {
			s.sel = v & 0x30
		},
	)

	return s
}

// read composes P1 from the select bits and the latch. Unused high bits
// read set; with neither group selected the key bits read released.
func (s *State) read() uint8 {
	p1 := 0xC0 | s.sel | 0x0F
	if s.sel&types.Bit4 == 0 {
		p1 &= 0xF0 | s.latch&0x0F
	}
	if s.sel&types.Bit5 == 0 {
		p1 &= 0xF0 | s.latch>>4
	}
	return p1
}

// SetState replaces the button latch. Any released-to-pressed transition
// requests the joypad interrupt.
func (s *State) SetState(latch uint8) {
	pressed := s.latch &^ latch // bits going 1 -> 0
	s.latch = latch
	if pressed != 0 {
		s.b.RequestInterrupt(interrupts.JoypadFlag)
	}
}

// Reset releases every button and deselects both key groups.
func (s *State) Reset() {
	s.latch = 0xFF
	s.sel = 0x30
}
