package cartridge

// romCartridge is a flat 32 KiB cartridge with no banking hardware and no
// external RAM. Control writes are discarded.
type romCartridge struct {
	rom    []byte
	header Header
}

func newROMCartridge(rom []byte, header Header) *romCartridge {
	return &romCartridge{rom: rom, header: header}
}

func (c *romCartridge) Read(address uint16) uint8 {
	if int(address) < len(c.rom) {
		return c.rom[address]
	}
	return 0xFF
}

func (c *romCartridge) Write(address uint16, value uint8) {}

func (c *romCartridge) ReadRAM(address uint16) uint8 { return 0xFF }

func (c *romCartridge) WriteRAM(address uint16, value uint8) {}

func (c *romCartridge) Bank0() []byte { return c.rom[:bankSize] }
func (c *romCartridge) BankN() []byte { return c.rom[bankSize : 2*bankSize] }

func (c *romCartridge) Save() []byte     { return nil }
func (c *romCartridge) Load(data []byte) {}

func (c *romCartridge) Header() Header { return c.header }
