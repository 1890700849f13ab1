// Package interrupts implements the interrupt flag and enable registers
// shared by every interrupt source in the machine.
package interrupts

import (
	"github.com/tbeaumont/go-dmg/internal/types"
)

const (
	// VBlankFlag is requested when the pixel unit enters VBlank.
	VBlankFlag = types.Bit0
	// LCDFlag is requested by the STAT register conditions.
	LCDFlag = types.Bit1
	// TimerFlag is requested when TIMA overflows.
	TimerFlag = types.Bit2
	// SerialFlag is requested when a serial transfer completes.
	SerialFlag = types.Bit3
	// JoypadFlag is requested when a button goes from released to
	// pressed.
	JoypadFlag = types.Bit4
)

// Service holds the pending (IF) and enabled (IE) interrupt bits. The bus
// exposes them at 0xFF0F and 0xFFFF; components request interrupts by
// setting bits in Flag.
type Service struct {
	Flag   uint8 // pending interrupts (types.IF)
	Enable uint8 // enabled interrupts (types.IE)
}

// NewService returns a Service with no interrupts pending or enabled.
func NewService() *Service {
	return &Service{}
}

// Request requests the given interrupt by setting its bit in Flag.
func (s *Service) Request(flag uint8) {
	s.Flag |= flag
}

// Pending reports whether any requested interrupt is also enabled.
func (s *Service) Pending() bool {
	return s.Flag&s.Enable != 0
}

// Next returns the index (0..4) of the highest priority pending and
// enabled interrupt and clears its Flag bit. The lowest set bit wins. It
// returns 0xFF if nothing is pending.
func (s *Service) Next() uint8 {
	triggered := s.Flag & s.Enable
	for i := uint8(0); i < 5; i++ {
		if triggered&(1<<i) != 0 {
			s.Flag &^= 1 << i
			return i
		}
	}
	return 0xFF
}

// Vector returns the service routine address of interrupt index i.
func Vector(i uint8) uint16 {
	return 0x0040 + uint16(i)*8
}

// Reset clears all pending and enabled interrupts.
func (s *Service) Reset() {
	s.Flag = 0
	s.Enable = 0
}
