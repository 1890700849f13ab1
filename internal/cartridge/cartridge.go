// Package cartridge models the game cartridge: the ROM image, the memory
// bank controller that maps it into the address space, any external RAM
// and the optional real-time clock.
package cartridge

import (
	"fmt"

	"github.com/tbeaumont/go-dmg/pkg/log"
)

const (
	// bankSize is the size of one switchable ROM bank.
	bankSize = 0x4000
	// ramBankSize is the size of one switchable RAM bank.
	ramBankSize = 0x2000
)

// Cartridge is the capability the bus programs against: ROM reads in
// 0x0000-0x7FFF, banking control writes in the same range, and external
// RAM accesses in 0xA000-0xBFFF.
type Cartridge interface {
	// Read returns the ROM byte mapped at address (0x0000-0x7FFF).
	Read(address uint16) uint8
	// Write consumes a banking control write (0x0000-0x7FFF).
	Write(address uint16, value uint8)
	// ReadRAM reads external RAM or an RTC register (0xA000-0xBFFF).
	ReadRAM(address uint16) uint8
	// WriteRAM writes external RAM or an RTC register (0xA000-0xBFFF).
	WriteRAM(address uint16, value uint8)

	// Bank0 and BankN return the ROM slices currently mapped at
	// 0x0000-0x3FFF and 0x4000-0x7FFF. The bus seeds its read page
	// table from them.
	Bank0() []byte
	BankN() []byte

	// Save returns the battery save blob; Load restores it.
	Save() []byte
	Load(data []byte)

	Header() Header
}

// New parses the header of the given ROM image and returns the matching
// cartridge variant. The image must be at least 0x150 bytes long.
func New(rom []byte, logger log.Logger) (Cartridge, error) {
	if len(rom) < 0x150 {
		return nil, fmt.Errorf("cartridge: ROM too small (%d bytes, need at least 0x150)", len(rom))
	}

	header := parseHeader(rom[0x100:0x150])

	// pad the image so every bank slice is fully addressable
	rom = padROM(rom)

	logger.Infof("cartridge: %s", header)

	switch header.CartridgeType {
	case ROM:
		return newROMCartridge(rom, header), nil
	case MBC1, MBC1RAM, MBC1RAMBATT:
		return newMBC1Cartridge(rom, header, logger), nil
	case MBC3TIMERBATT, MBC3TIMERRAMBATT, MBC3, MBC3RAM, MBC3RAMBATT:
		return newMBC3Cartridge(rom, header, logger), nil
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBAT:
		return newMBC5Cartridge(rom, header, logger), nil
	}

	return nil, fmt.Errorf("cartridge: unsupported cartridge type 0x%02X", uint8(header.CartridgeType))
}

// padROM extends the image with 0xFF to a whole number of banks, at least
// two, so bank slices never run off the end.
func padROM(rom []byte) []byte {
	size := len(rom)
	if size < 2*bankSize {
		size = 2 * bankSize
	} else if size%bankSize != 0 {
		size += bankSize - size%bankSize
	}
	if size == len(rom) {
		return rom
	}
	padded := make([]byte, size)
	for i := len(rom); i < size; i++ {
		padded[i] = 0xFF
	}
	copy(padded, rom)
	return padded
}
