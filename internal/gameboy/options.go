package gameboy

import (
	"github.com/tbeaumont/go-dmg/pkg/log"
)

// Opt modifies a GameBoy under construction.
type Opt func(gb *GameBoy)

// WithLogger replaces the default logger.
func WithLogger(logger log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.log = logger
	}
}
