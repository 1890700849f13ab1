package cartridge

import (
	"github.com/tbeaumont/go-dmg/pkg/log"
)

// mbc5Cartridge supports up to 8 MiB of ROM (9-bit bank number) and
// 128 KiB of external RAM. Unlike the other controllers, bank 0 may be
// mapped into the switchable region.
type mbc5Cartridge struct {
	rom    []byte
	ram    []byte
	header Header
	log    log.Logger

	romBank    uint32
	ramBank    uint32
	ramEnabled bool
}

func newMBC5Cartridge(rom []byte, header Header, logger log.Logger) *mbc5Cartridge {
	return &mbc5Cartridge{
		rom:     rom,
		ram:     make([]byte, header.RAMSize),
		header:  header,
		log:     logger,
		romBank: 1,
	}
}

func (c *mbc5Cartridge) romBankOffset() uint32 {
	bank := c.romBank & 0x1FF
	banks := uint32(len(c.rom) / bankSize)
	if bank >= banks {
		c.log.Debugf("mbc5: ROM bank %d out of range, wrapping to %d", bank, bank%banks)
		bank %= banks
	}
	return bank * bankSize
}

func (c *mbc5Cartridge) Read(address uint16) uint8 {
	if address < bankSize {
		return c.rom[address]
	}
	return c.rom[c.romBankOffset()+uint32(address-bankSize)]
}

func (c *mbc5Cartridge) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case address < 0x3000:
		c.romBank = c.romBank&0x100 | uint32(value)
	case address < 0x4000:
		c.romBank = c.romBank&0x0FF | uint32(value&0x01)<<8
	case address < 0x6000:
		c.ramBank = uint32(value & 0x0F)
	}
}

func (c *mbc5Cartridge) ReadRAM(address uint16) uint8 {
	if !c.ramEnabled || len(c.ram) == 0 {
		return 0xFF
	}
	offset := c.ramBank*ramBankSize + uint32(address&0x1FFF)
	if offset >= uint32(len(c.ram)) {
		return 0xFF
	}
	return c.ram[offset]
}

func (c *mbc5Cartridge) WriteRAM(address uint16, value uint8) {
	if !c.ramEnabled || len(c.ram) == 0 {
		return
	}
	offset := c.ramBank*ramBankSize + uint32(address&0x1FFF)
	if offset >= uint32(len(c.ram)) {
		return
	}
	c.ram[offset] = value
}

func (c *mbc5Cartridge) Bank0() []byte { return c.rom[:bankSize] }
func (c *mbc5Cartridge) BankN() []byte {
	offset := c.romBankOffset()
	return c.rom[offset : offset+bankSize]
}

// Save returns a copy of the external RAM array.
func (c *mbc5Cartridge) Save() []byte {
	data := make([]byte, len(c.ram))
	copy(data, c.ram)
	return data
}

// Load restores the external RAM array from a battery save.
func (c *mbc5Cartridge) Load(data []byte) {
	copy(c.ram, data)
}

func (c *mbc5Cartridge) Header() Header { return c.header }
