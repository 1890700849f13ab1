package cartridge

import (
	"github.com/tbeaumont/go-dmg/pkg/log"
)

// mbc1Cartridge supports up to 2 MiB of ROM and 32 KiB of external RAM.
// A secondary 2-bit register selects either the RAM bank (RAM mode) or
// the upper ROM bank bits (ROM mode).
type mbc1Cartridge struct {
	rom    []byte
	ram    []byte
	header Header
	log    log.Logger

	romBank    uint32
	secondary  uint32 // RAM bank or upper ROM bits, depending on mode
	ramEnabled bool
	ramMode    bool // false = ROM banking mode, true = RAM banking mode
}

func newMBC1Cartridge(rom []byte, header Header, logger log.Logger) *mbc1Cartridge {
	return &mbc1Cartridge{
		rom:     rom,
		ram:     make([]byte, header.RAMSize),
		header:  header,
		log:     logger,
		romBank: 1,
	}
}

// romBankOffset returns the byte offset of the currently mapped switchable
// bank, wrapped to the actual ROM size.
func (c *mbc1Cartridge) romBankOffset() uint32 {
	bank := c.romBank & 0x1F
	if !c.ramMode {
		bank |= c.secondary << 5
	}
	if bank == 0 {
		bank = 1
	}
	banks := uint32(len(c.rom) / bankSize)
	if bank >= banks {
		c.log.Debugf("mbc1: ROM bank %d out of range, wrapping to %d", bank, bank%banks)
		bank %= banks
	}
	return bank * bankSize
}

// ramBankOffset returns the byte offset of the selected RAM bank. The
// secondary register feeds RAM banking only in RAM mode; in ROM mode the
// RAM is locked to bank 0.
func (c *mbc1Cartridge) ramBankOffset() uint32 {
	if !c.ramMode || len(c.ram) <= ramBankSize {
		return 0
	}
	return (c.secondary & 0x03) * ramBankSize
}

func (c *mbc1Cartridge) Read(address uint16) uint8 {
	if address < bankSize {
		return c.rom[address]
	}
	return c.rom[c.romBankOffset()+uint32(address-bankSize)]
}

func (c *mbc1Cartridge) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		c.romBank = uint32(value & 0x1F)
		if c.romBank == 0 {
			c.romBank = 1
		}
	case address < 0x6000:
		c.secondary = uint32(value & 0x03)
	default:
		c.ramMode = value&0x01 == 0x01
	}
}

func (c *mbc1Cartridge) ReadRAM(address uint16) uint8 {
	if !c.ramEnabled || len(c.ram) == 0 {
		return 0xFF
	}
	offset := c.ramBankOffset() + uint32(address&0x1FFF)
	if offset >= uint32(len(c.ram)) {
		return 0xFF
	}
	return c.ram[offset]
}

func (c *mbc1Cartridge) WriteRAM(address uint16, value uint8) {
	if !c.ramEnabled || len(c.ram) == 0 {
		return
	}
	offset := c.ramBankOffset() + uint32(address&0x1FFF)
	if offset >= uint32(len(c.ram)) {
		return
	}
	c.ram[offset] = value
}

func (c *mbc1Cartridge) Bank0() []byte { return c.rom[:bankSize] }
func (c *mbc1Cartridge) BankN() []byte {
	offset := c.romBankOffset()
	return c.rom[offset : offset+bankSize]
}

// Save returns a copy of the external RAM array.
func (c *mbc1Cartridge) Save() []byte {
	data := make([]byte, len(c.ram))
	copy(data, c.ram)
	return data
}

// Load restores the external RAM array from a battery save.
func (c *mbc1Cartridge) Load(data []byte) {
	copy(c.ram, data)
}

func (c *mbc1Cartridge) Header() Header { return c.header }
