package types

// HardwareAddress represents the address of a hardware register. The
// hardware registers are mapped to memory addresses 0xFF00 - 0xFF7F &
// 0xFFFF.
type HardwareAddress = uint16

const (
	// P1 is the joypad register. Writing bits 4/5 selects the direction
	// or action keys; bits 0-3 read back the selected key states
	// (0 = pressed).
	P1 HardwareAddress = 0xFF00
	// SB is the serial transfer data register.
	SB HardwareAddress = 0xFF01
	// SC is the serial transfer control register.
	SC HardwareAddress = 0xFF02
	// DIV is the divider register. Internally a 16-bit counter
	// incremented every T-cycle; only bits 15..8 are readable, and any
	// write zeroes the full counter.
	DIV HardwareAddress = 0xFF04
	// TIMA is the timer counter. Incremented at the rate selected by
	// TAC; on overflow it is reloaded from TMA and a timer interrupt is
	// requested.
	TIMA HardwareAddress = 0xFF05
	// TMA is the timer modulo, loaded into TIMA on overflow.
	TMA HardwareAddress = 0xFF06
	// TAC is the timer control register. Bit 2 enables TIMA, bits 1..0
	// select the tick period.
	TAC HardwareAddress = 0xFF07
	// IF is the interrupt flag register.
	//
	//	Bit 0: VBlank  (INT 0x40)
	//	Bit 1: LCD     (INT 0x48)
	//	Bit 2: Timer   (INT 0x50)
	//	Bit 3: Serial  (INT 0x58)
	//	Bit 4: Joypad  (INT 0x60)
	IF HardwareAddress = 0xFF0F
	// LCDC is the LCD control register.
	//
	//	Bit 7: LCD enable
	//	Bit 6: Window tile map     (0=9800-9BFF, 1=9C00-9FFF)
	//	Bit 5: Window enable
	//	Bit 4: BG/Win tile data    (0=8800-97FF, 1=8000-8FFF)
	//	Bit 3: BG tile map         (0=9800-9BFF, 1=9C00-9FFF)
	//	Bit 2: OBJ size            (0=8x8, 1=8x16)
	//	Bit 1: OBJ enable
	//	Bit 0: BG enable
	LCDC HardwareAddress = 0xFF40
	// STAT is the LCD status register. Bits 1..0 report the mode, bit 2
	// the LY==LYC flag; bits 3-6 enable the STAT interrupt sources.
	STAT HardwareAddress = 0xFF41
	// SCY is the background viewport Y position.
	SCY HardwareAddress = 0xFF42
	// SCX is the background viewport X position.
	SCX HardwareAddress = 0xFF43
	// LY is the current scanline, 0..153. Read-only.
	LY HardwareAddress = 0xFF44
	// LYC is the scanline compare register.
	LYC HardwareAddress = 0xFF45
	// DMA is the OAM DMA source register; writing starts a 160-byte
	// transfer from value<<8 to OAM.
	DMA HardwareAddress = 0xFF46
	// BGP is the background palette.
	BGP HardwareAddress = 0xFF47
	// OBP0 is object palette 0.
	OBP0 HardwareAddress = 0xFF48
	// OBP1 is object palette 1.
	OBP1 HardwareAddress = 0xFF49
	// WY is the window Y position.
	WY HardwareAddress = 0xFF4A
	// WX is the window X position (plus 7).
	WX HardwareAddress = 0xFF4B
	// IE is the interrupt enable register.
	IE HardwareAddress = 0xFFFF
)
