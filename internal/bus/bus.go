// Package bus implements the 64 KiB address space. A 256-entry page table
// per direction serves VRAM, WRAM and echo RAM directly, and the read table
// also serves the currently mapped ROM banks; everything else falls through
// to range dispatch: cartridge banking writes and external RAM, OAM, the
// I/O register file, HRAM and the interrupt enable register.
package bus

import (
	"github.com/tbeaumont/go-dmg/internal/cartridge"
	"github.com/tbeaumont/go-dmg/internal/interrupts"
	"github.com/tbeaumont/go-dmg/internal/scheduler"
	"github.com/tbeaumont/go-dmg/internal/types"
	"github.com/tbeaumont/go-dmg/pkg/log"
)

// Memory map boundaries.
const (
	romEnd        = 0x7FFF
	vramStart     = 0x8000
	vramEnd       = 0x9FFF
	extRAMStart   = 0xA000
	extRAMEnd     = 0xBFFF
	wramStart     = 0xC000
	wramEnd       = 0xDFFF
	echoStart     = 0xE000
	echoEnd       = 0xFDFF
	oamStart      = 0xFE00
	oamEnd        = 0xFE9F
	unusableStart = 0xFEA0
	unusableEnd   = 0xFEFF
	ioStart       = 0xFF00
	ioEnd         = 0xFF7F
	hramStart     = 0xFF80
	hramEnd       = 0xFFFE
)

const (
	pageSize  = 256
	pageCount = 256

	// dmaDuration is the length of an OAM DMA transfer in T-cycles.
	dmaDuration = 640
)

// IOReadHandler replaces the default buffer read for one I/O address.
type IOReadHandler = func(address uint16) uint8

// IOWriteHandler replaces the default buffer write for one I/O address.
// The handler must persist whatever state it wants readable.
type IOWriteHandler = func(address uint16, value uint8)

// Bus is the memory bus. All RAM regions are owned here; the cartridge
// and the I/O handlers own the rest.
type Bus struct {
	wram [0x2000]uint8
	vram [0x2000]uint8
	oam  [0xA0]uint8
	hram [0x7F]uint8
	io   [0x80]uint8

	// page tables; a nil entry takes the slow path
	readPages  [pageCount][]uint8
	writePages [pageCount][]uint8

	ioReaders [0x80]IOReadHandler
	ioWriters [0x80]IOWriteHandler

	cart cartridge.Cartridge
	irq  *interrupts.Service
	s    *scheduler.Scheduler
	log  log.Logger

	// dmaActive restricts the CPU to HRAM while OAM DMA runs
	dmaActive bool
}

// New returns a bus wired to the given cartridge, interrupt service and
// scheduler.
func New(cart cartridge.Cartridge, irq *interrupts.Service, s *scheduler.Scheduler, logger log.Logger) *Bus {
	b := &Bus{
		cart: cart,
		irq:  irq,
		s:    s,
		log:  logger,
	}
	b.seedPageTables()

	// the interrupt flag register lives on the interrupt service; only
	// the low five bits exist and the high bits read back set
	b.RegisterIOHandler(types.IF,
		func(uint16) uint8 { return b.irq.Flag | 0xE0 },
		func(_ uint16, v uint8) { b.irq.Flag = v & 0x1F },
	)
	b.RegisterIOHandler(types.DMA,
		func(uint16) uint8 { return b.io[types.DMA-ioStart] },
		func(_ uint16, v uint8) { b.startDMA(v) },
	)

	return b
}

// seedPageTables installs the fast paths: VRAM, WRAM and the echo region
// on both tables, ROM on the read table only. Banking writes land on the
// slow path precisely because the ROM write pages stay nil.
func (b *Bus) seedPageTables() {
	for i := range b.readPages {
		b.readPages[i] = nil
		b.writePages[i] = nil
	}

	b.remapROM()

	for i := 0; i < 0x20; i++ {
		page := b.vram[i*pageSize : (i+1)*pageSize]
		b.readPages[vramStart/pageSize+i] = page
		b.writePages[vramStart/pageSize+i] = page
	}
	for i := 0; i < 0x20; i++ {
		page := b.wram[i*pageSize : (i+1)*pageSize]
		b.readPages[wramStart/pageSize+i] = page
		b.writePages[wramStart/pageSize+i] = page
	}
	// echo RAM mirrors the first 0x1E00 bytes of WRAM
	for i := 0; i < 0x1E; i++ {
		page := b.wram[i*pageSize : (i+1)*pageSize]
		b.readPages[echoStart/pageSize+i] = page
		b.writePages[echoStart/pageSize+i] = page
	}
}

// remapROM points the read pages for 0x0000-0x7FFF at the cartridge's
// currently mapped banks. Called after every banking control write.
func (b *Bus) remapROM() {
	bank0, bankN := b.cart.Bank0(), b.cart.BankN()
	for i := 0; i < 0x40; i++ {
		b.readPages[i] = bank0[i*pageSize : (i+1)*pageSize]
		b.readPages[0x40+i] = bankN[i*pageSize : (i+1)*pageSize]
	}
}

// Read returns the byte at the given address.
func (b *Bus) Read(address uint16) uint8 {
	if b.dmaActive && (address < hramStart || address > hramEnd) {
		return 0xFF
	}
	return b.read(address)
}

// read is the CPU-visible read without the DMA restriction; the DMA
// engine itself copies through it.
func (b *Bus) read(address uint16) uint8 {
	if page := b.readPages[address>>8]; page != nil {
		return page[address&0xFF]
	}

	switch {
	case address <= romEnd:
		return b.cart.Read(address)
	case address >= extRAMStart && address <= extRAMEnd:
		return b.cart.ReadRAM(address)
	case address >= oamStart && address <= oamEnd:
		return b.oam[address-oamStart]
	case address >= unusableStart && address <= unusableEnd:
		return 0xFF
	case address >= ioStart && address <= ioEnd:
		return b.readIO(address)
	case address >= hramStart && address <= hramEnd:
		return b.hram[address-hramStart]
	case address == types.IE:
		return b.irq.Enable
	}

	b.log.Warnf("bus: read from unmapped address 0x%04X", address)
	return 0xFF
}

// Write stores the byte at the given address.
func (b *Bus) Write(address uint16, value uint8) {
	if b.dmaActive && (address < hramStart || address > hramEnd) && address != types.DMA {
		return
	}

	if page := b.writePages[address>>8]; page != nil {
		page[address&0xFF] = value
		return
	}

	switch {
	case address <= romEnd:
		// banking control; the mapped banks may have moved
		b.cart.Write(address, value)
		b.remapROM()
	case address >= extRAMStart && address <= extRAMEnd:
		b.cart.WriteRAM(address, value)
	case address >= oamStart && address <= oamEnd:
		b.oam[address-oamStart] = value
	case address >= unusableStart && address <= unusableEnd:
		// writes to the unusable region are dropped
	case address >= ioStart && address <= ioEnd:
		b.writeIO(address, value)
	case address >= hramStart && address <= hramEnd:
		b.hram[address-hramStart] = value
	case address == types.IE:
		b.irq.Enable = value
	default:
		b.log.Warnf("bus: write to unmapped address 0x%04X = 0x%02X", address, value)
	}
}

// Read16 reads a little-endian 16-bit value as two 8-bit accesses.
func (b *Bus) Read16(address uint16) uint16 {
	low := b.Read(address)
	high := b.Read(address + 1)
	return uint16(high)<<8 | uint16(low)
}

// Write16 writes a little-endian 16-bit value as two 8-bit accesses.
func (b *Bus) Write16(address uint16, value uint16) {
	b.Write(address, uint8(value))
	b.Write(address+1, uint8(value>>8))
}

func (b *Bus) readIO(address uint16) uint8 {
	offset := address - ioStart
	if h := b.ioReaders[offset]; h != nil {
		return h(address)
	}
	return b.io[offset]
}

func (b *Bus) writeIO(address uint16, value uint8) {
	offset := address - ioStart
	if h := b.ioWriters[offset]; h != nil {
		h(address, value)
		return
	}
	b.io[offset] = value
}

// RegisterIOHandler installs callbacks for one I/O address. A nil read
// handler keeps the default buffer read; likewise for writes.
func (b *Bus) RegisterIOHandler(address uint16, read IOReadHandler, write IOWriteHandler) {
	if address < ioStart || address > ioEnd {
		b.log.Warnf("bus: cannot register I/O handler for 0x%04X", address)
		return
	}
	offset := address - ioStart
	if read != nil {
		b.ioReaders[offset] = read
	}
	if write != nil {
		b.ioWriters[offset] = write
	}
}

// RequestInterrupt ORs the mask into IF directly, bypassing the I/O
// handler for 0xFF0F.
func (b *Bus) RequestInterrupt(mask uint8) {
	b.irq.Request(mask)
}

// startDMA copies 160 bytes from value<<8 into OAM and restricts the CPU
// to HRAM until the transfer window closes 640 T-cycles later.
func (b *Bus) startDMA(value uint8) {
	src := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.oam[i] = b.read(src + i)
	}
	b.io[types.DMA-ioStart] = value

	b.dmaActive = true
	b.s.Deschedule(scheduler.DMATransfer)
	b.s.Schedule(scheduler.DMATransfer, dmaDuration, func() {
		b.dmaActive = false
	})
}

// DMAActive reports whether an OAM DMA transfer is in flight.
func (b *Bus) DMAActive() bool {
	return b.dmaActive
}

// VRAM exposes video RAM to the pixel unit, which renders from it
// directly rather than through CPU-visible reads.
func (b *Bus) VRAM() *[0x2000]uint8 {
	return &b.vram
}

// OAM exposes object attribute memory to the pixel unit.
func (b *Bus) OAM() *[0xA0]uint8 {
	return &b.oam
}

// Reset zeroes every RAM region and the I/O buffer and re-seeds the page
// tables.
func (b *Bus) Reset() {
	b.wram = [0x2000]uint8{}
	b.vram = [0x2000]uint8{}
	b.oam = [0xA0]uint8{}
	b.hram = [0x7F]uint8{}
	b.io = [0x80]uint8{}
	b.dmaActive = false
	b.seedPageTables()
}
