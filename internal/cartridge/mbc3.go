package cartridge

import (
	"github.com/tbeaumont/go-dmg/pkg/log"
)

// mbc3Cartridge supports up to 2 MiB of ROM, 32 KiB of external RAM and,
// on the timer variants, a battery-backed real-time clock mapped into the
// external RAM window.
type mbc3Cartridge struct {
	rom    []byte
	ram    []byte
	header Header
	log    log.Logger

	romBank    uint32
	ramBank    uint8 // 0x00-0x03 selects RAM, 0x08-0x0C an RTC register
	ramEnabled bool

	clock *rtc
}

func newMBC3Cartridge(rom []byte, header Header, logger log.Logger) *mbc3Cartridge {
	c := &mbc3Cartridge{
		rom:     rom,
		ram:     make([]byte, header.RAMSize),
		header:  header,
		log:     logger,
		romBank: 1,
	}
	if header.HasRTC() {
		c.clock = newRTC()
	}
	return c
}

func (c *mbc3Cartridge) romBankOffset() uint32 {
	bank := c.romBank
	banks := uint32(len(c.rom) / bankSize)
	if bank >= banks {
		c.log.Debugf("mbc3: ROM bank %d out of range, wrapping to %d", bank, bank%banks)
		bank %= banks
	}
	return bank * bankSize
}

func (c *mbc3Cartridge) Read(address uint16) uint8 {
	if address < bankSize {
		return c.rom[address]
	}
	return c.rom[c.romBankOffset()+uint32(address-bankSize)]
}

func (c *mbc3Cartridge) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		c.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		c.romBank = uint32(value & 0x7F)
		if c.romBank == 0 {
			c.romBank = 1
		}
	case address < 0x6000:
		if value <= 0x03 || (c.clock != nil && value >= rtcSeconds && value <= rtcDaysHigh) {
			c.ramBank = value
		}
	default:
		if c.clock != nil {
			c.clock.latch(value)
		}
	}
}

func (c *mbc3Cartridge) ReadRAM(address uint16) uint8 {
	if !c.ramEnabled {
		return 0xFF
	}
	if c.ramBank >= rtcSeconds {
		if c.clock == nil {
			return 0xFF
		}
		return c.clock.read(c.ramBank)
	}
	offset := uint32(c.ramBank)*ramBankSize + uint32(address&0x1FFF)
	if offset >= uint32(len(c.ram)) {
		return 0xFF
	}
	return c.ram[offset]
}

func (c *mbc3Cartridge) WriteRAM(address uint16, value uint8) {
	if !c.ramEnabled {
		return
	}
	if c.ramBank >= rtcSeconds {
		if c.clock != nil {
			c.clock.write(c.ramBank, value)
		}
		return
	}
	offset := uint32(c.ramBank)*ramBankSize + uint32(address&0x1FFF)
	if offset >= uint32(len(c.ram)) {
		return
	}
	c.ram[offset] = value
}

func (c *mbc3Cartridge) Bank0() []byte { return c.rom[:bankSize] }
func (c *mbc3Cartridge) BankN() []byte {
	offset := c.romBankOffset()
	return c.rom[offset : offset+bankSize]
}

// Save returns the external RAM array with the clock block appended on
// timer variants.
func (c *mbc3Cartridge) Save() []byte {
	data := make([]byte, len(c.ram))
	copy(data, c.ram)
	if c.clock != nil {
		c.clock.update()
		data = append(data, c.clock.save()...)
	}
	return data
}

// Load restores external RAM and, when present, the trailing clock block.
func (c *mbc3Cartridge) Load(data []byte) {
	copy(c.ram, data)
	if c.clock != nil && len(data) >= len(c.ram)+rtcSaveSize {
		c.clock.load(data[len(c.ram):])
	}
}

func (c *mbc3Cartridge) Header() Header { return c.header }
