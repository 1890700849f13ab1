// Package ppu implements the pixel unit: a four-mode per-scanline state
// machine that scans OAM, renders background, window and objects into a
// 160x144 RGBA framebuffer, and drives the VBlank and STAT interrupts.
package ppu

import (
	"github.com/tbeaumont/go-dmg/internal/bus"
	"github.com/tbeaumont/go-dmg/internal/interrupts"
	"github.com/tbeaumont/go-dmg/internal/types"
	"github.com/tbeaumont/go-dmg/pkg/log"
)

const (
	// ScreenWidth is the width of the screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the screen in pixels.
	ScreenHeight = 144
)

// Modes as reported in STAT bits 1..0.
const (
	// ModeHBlank (mode 0) pads each visible scanline to 456 T-cycles.
	ModeHBlank = iota
	// ModeVBlank (mode 1) covers scanlines 144-153.
	ModeVBlank
	// ModeOAM (mode 2) is the sprite scan at the start of each line.
	ModeOAM
	// ModeDrawing (mode 3) renders the line into the framebuffer.
	ModeDrawing
)

// Mode durations in T-cycles.
const (
	oamScanCycles = 80
	drawingCycles = 172
	hblankCycles  = 204
	lineCycles    = 456

	// ScanlinesPerFrame counts the 144 visible lines plus 10 VBlank
	// lines.
	ScanlinesPerFrame = 154
	// CyclesPerFrame is one full pass of the state machine.
	CyclesPerFrame = ScanlinesPerFrame * lineCycles
)

// LCDC bits.
const (
	lcdcBGEnable = 1 << iota
	lcdcOBJEnable
	lcdcOBJSize
	lcdcBGTileMap
	lcdcTileData
	lcdcWinEnable
	lcdcWinTileMap
	lcdcEnable
)

// STAT bits.
const (
	statLYCEqual  = types.Bit2
	statHBlankInt = types.Bit3
	statVBlankInt = types.Bit4
	statOAMInt    = types.Bit5
	statLYCInt    = types.Bit6
)

// maxSprites is the hardware limit of sprites per scanline.
const maxSprites = 10

// shades is the fixed four-entry RGBA table: white, light grey, dark
// grey, black.
var shades = [4]uint32{0xFFFFFFFF, 0xFFAAAAAA, 0xFF555555, 0xFF000000}

// sprite is one OAM record, as collected during the OAM scan.
type sprite struct {
	y, x  uint8
	tile  uint8
	flags uint8
}

// PPU is the pixel unit state.
type PPU struct {
	mode       uint8
	ly         uint8
	cycles     uint32 // intra-mode cycle accumulator
	frameReady bool

	// wly counts the window's own line, advancing only on scanlines
	// where the window was drawn
	wly uint8

	// register mirrors, kept live through the I/O handlers
	lcdc uint8
	stat uint8
	scy  uint8
	scx  uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	spriteBuffer [maxSprites]sprite
	spriteCount  uint8

	framebuffer [ScreenWidth * ScreenHeight]uint32

	b   *bus.Bus
	log log.Logger
}

// New returns a pixel unit wired to the bus, with its registers exposed
// at 0xFF40-0xFF4B.
func New(b *bus.Bus, logger log.Logger) *PPU {
	p := &PPU{
		b:   b,
		log: logger,
	}
	p.Reset()
	p.registerIOHandlers()
	return p
}

// Reset restores the post-boot register values and whitens the
// framebuffer.
func (p *PPU) Reset() {
	p.mode = ModeOAM
	p.ly = 0
	p.wly = 0
	p.cycles = 0
	p.frameReady = false
	p.spriteCount = 0

	p.lcdc = 0x91
	p.stat = 0x00
	p.scy = 0
	p.scx = 0
	p.lyc = 0
	p.bgp = 0xFC
	p.obp0 = 0xFF
	p.obp1 = 0xFF
	p.wy = 0
	p.wx = 0

	for i := range p.framebuffer {
		p.framebuffer[i] = shades[0]
	}
}

// Step advances the state machine by the given number of T-cycles. With
// the LCD disabled the unit is frozen and nothing fires.
func (p *PPU) Step(cycles uint32) {
	if p.lcdc&lcdcEnable == 0 {
		return
	}

	p.cycles += cycles
	for p.advance() {
	}
}

// advance performs at most one mode transition, reporting whether the
// accumulated cycles were enough for one.
func (p *PPU) advance() bool {
	switch p.mode {
	case ModeOAM:
		if p.cycles < oamScanCycles {
			return false
		}
		p.cycles -= oamScanCycles
		p.scanOAM()
		p.setMode(ModeDrawing)
	case ModeDrawing:
		if p.cycles < drawingCycles {
			return false
		}
		p.cycles -= drawingCycles
		p.renderScanline()
		p.setMode(ModeHBlank)
	case ModeHBlank:
		if p.cycles < hblankCycles {
			return false
		}
		p.cycles -= hblankCycles
		p.setLY(p.ly + 1)
		if p.ly >= ScreenHeight {
			p.setMode(ModeVBlank)
			p.frameReady = true
			p.b.RequestInterrupt(interrupts.VBlankFlag)
		} else {
			p.setMode(ModeOAM)
		}
	case ModeVBlank:
		if p.cycles < lineCycles {
			return false
		}
		p.cycles -= lineCycles
		if p.ly+1 >= ScanlinesPerFrame {
			p.setLY(0)
			p.wly = 0
			p.setMode(ModeOAM)
		} else {
			p.setLY(p.ly + 1)
		}
	}
	return true
}

// setMode switches the state machine, mirrors the mode into STAT and
// posts the STAT interrupt the new mode is configured for.
func (p *PPU) setMode(mode uint8) {
	p.mode = mode
	p.stat = p.stat&0xFC | mode

	var request bool
	switch mode {
	case ModeHBlank:
		request = p.stat&statHBlankInt != 0
	case ModeVBlank:
		request = p.stat&statVBlankInt != 0
	case ModeOAM:
		request = p.stat&statOAMInt != 0
	}
	if request {
		p.b.RequestInterrupt(interrupts.LCDFlag)
	}
}

// setLY moves to a new scanline and runs the LY==LYC comparison.
func (p *PPU) setLY(ly uint8) {
	p.ly = ly
	if p.ly == p.lyc {
		p.stat |= statLYCEqual
		if p.stat&statLYCInt != 0 {
			p.b.RequestInterrupt(interrupts.LCDFlag)
		}
	} else {
		p.stat &^= statLYCEqual
	}
}

// scanOAM collects up to ten sprites whose Y interval contains the
// current line, in OAM order.
func (p *PPU) scanOAM() {
	p.spriteCount = 0

	oam := p.b.OAM()
	height := int16(8)
	if p.lcdc&lcdcOBJSize != 0 {
		height = 16
	}

	for i := 0; i < 40; i++ {
		y := int16(oam[i*4]) - 16
		line := int16(p.ly)
		if line < y || line >= y+height {
			continue
		}
		if p.spriteCount >= maxSprites {
			break
		}
		p.spriteBuffer[p.spriteCount] = sprite{
			y:     oam[i*4],
			x:     oam[i*4+1],
			tile:  oam[i*4+2],
			flags: oam[i*4+3],
		}
		p.spriteCount++
	}

	if p.spriteCount > maxSprites {
		panic("ppu: sprite buffer overflow")
	}
}

// renderScanline draws the three layers of the current line in order:
// background, window, objects.
func (p *PPU) renderScanline() {
	if p.ly >= ScreenHeight {
		return
	}

	if p.lcdc&lcdcBGEnable != 0 {
		p.renderBackground()
	}
	if p.lcdc&lcdcWinEnable != 0 {
		p.renderWindow()
	}
	if p.lcdc&lcdcOBJEnable != 0 {
		p.renderSprites()
	}
}

// tileAddress resolves a tile index through the LCDC bit 4 addressing
// mode to a VRAM-local tile data offset.
func (p *PPU) tileAddress(index uint8) uint16 {
	if p.lcdc&lcdcTileData != 0 {
		return uint16(index) * 16
	}
	return uint16(0x1000 + int(int8(index))*16)
}

// tilePixel returns the 2-bit colour id of pixel (x, y) of the tile at
// the given VRAM-local address. Bit 7 is the leftmost pixel; the two
// bitplanes of a row live in consecutive bytes.
func (p *PPU) tilePixel(vram *[0x2000]uint8, tileAddr uint16, x, y uint8) uint8 {
	addr := tileAddr + uint16(y)*2
	bit := 7 - x
	return (vram[addr+1]>>bit)&1<<1 | (vram[addr]>>bit)&1
}

// shade maps a 2-bit colour id through an 8-bit palette to an RGBA
// value.
func shade(palette, colorID uint8) uint32 {
	return shades[palette>>(colorID*2)&0x03]
}

func (p *PPU) renderBackground() {
	vram := p.b.VRAM()

	tileMap := uint16(0x1800)
	if p.lcdc&lcdcBGTileMap != 0 {
		tileMap = 0x1C00
	}

	y := p.ly + p.scy
	tileY := uint16(y / 8)
	pixelY := y % 8

	for x := uint8(0); x < ScreenWidth; x++ {
		scrolled := x + p.scx
		tileX := uint16(scrolled / 8)
		pixelX := scrolled % 8

		index := vram[tileMap+tileY*32+tileX]
		colorID := p.tilePixel(vram, p.tileAddress(index), pixelX, pixelY)
		p.framebuffer[int(p.ly)*ScreenWidth+int(x)] = shade(p.bgp, colorID)
	}
}

func (p *PPU) renderWindow() {
	if p.ly < p.wy || p.wx > 166 {
		return
	}

	vram := p.b.VRAM()

	tileMap := uint16(0x1800)
	if p.lcdc&lcdcWinTileMap != 0 {
		tileMap = 0x1C00
	}

	tileY := uint16(p.wly / 8)
	pixelY := p.wly % 8

	drawn := false
	for x := 0; x < ScreenWidth; x++ {
		winX := x - (int(p.wx) - 7)
		if winX < 0 {
			continue
		}

		tileX := uint16(winX / 8)
		pixelX := uint8(winX % 8)

		index := vram[tileMap+tileY*32+tileX]
		colorID := p.tilePixel(vram, p.tileAddress(index), pixelX, pixelY)
		p.framebuffer[int(p.ly)*ScreenWidth+x] = shade(p.bgp, colorID)
		drawn = true
	}

	// the window keeps its own line counter, advancing only on lines it
	// was drawn on
	if drawn {
		p.wly++
	}
}

func (p *PPU) renderSprites() {
	if p.spriteCount == 0 {
		return
	}

	vram := p.b.VRAM()
	height := uint8(8)
	if p.lcdc&lcdcOBJSize != 0 {
		height = 16
	}

	// reverse index order: earlier OAM entries win overlaps
	for i := int(p.spriteCount) - 1; i >= 0; i-- {
		spr := p.spriteBuffer[i]

		spriteY := int(spr.y) - 16
		spriteX := int(spr.x) - 8

		yOffset := uint8(int(p.ly) - spriteY)
		if spr.flags&types.Bit6 != 0 { // Y flip
			yOffset = height - 1 - yOffset
		}

		tile := spr.tile
		if height == 16 {
			tile &= 0xFE
		}

		palette := p.obp0
		if spr.flags&types.Bit4 != 0 {
			palette = p.obp1
		}

		for x := 0; x < 8; x++ {
			screenX := spriteX + x
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}

			pixelX := uint8(x)
			if spr.flags&types.Bit5 != 0 { // X flip
				pixelX = uint8(7 - x)
			}

			colorID := p.tilePixel(vram, uint16(tile)*16, pixelX, yOffset)
			if colorID == 0 {
				// colour 0 is transparent
				continue
			}

			idx := int(p.ly)*ScreenWidth + screenX
			if spr.flags&types.Bit7 != 0 {
				// behind the background: only draw over BG colour 0
				if p.framebuffer[idx] != shade(p.bgp, 0) {
					continue
				}
			}

			p.framebuffer[idx] = shade(palette, colorID)
		}
	}
}

// registerIOHandlers routes 0xFF40-0xFF4B (save for DMA, which the bus
// owns) through the cached mirrors.
func (p *PPU) registerIOHandlers() {
	p.b.RegisterIOHandler(types.LCDC,
		func(uint16) uint8 { return p.lcdc },
		func(_ uint16, v uint8) { p.lcdc = v },
	)
	p.b.RegisterIOHandler(types.STAT,
		func(uint16) uint8 { return p.stat },
		func(_ uint16, v uint8) {
			// mode and LY==LYC bits are not writable
			p.stat = v&0xF8 | p.stat&0x07
		},
	)
	p.b.RegisterIOHandler(types.SCY,
		func(uint16) uint8 { return p.scy },
		func(_ uint16, v uint8) { p.scy = v },
	)
	p.b.RegisterIOHandler(types.SCX,
		func(uint16) uint8 { return p.scx },
		func(_ uint16, v uint8) { p.scx = v },
	)
	p.b.RegisterIOHandler(types.LY,
		func(uint16) uint8 { return p.ly },
		func(uint16, uint8) {}, // read-only
	)
	p.b.RegisterIOHandler(types.LYC,
		func(uint16) uint8 { return p.lyc },
		func(_ uint16, v uint8) { p.lyc = v },
	)
	p.b.RegisterIOHandler(types.BGP,
		func(uint16) uint8 { return p.bgp },
		func(_ uint16, v uint8) { p.bgp = v },
	)
	p.b.RegisterIOHandler(types.OBP0,
		func(uint16) uint8 { return p.obp0 },
		func(_ uint16, v uint8) { p.obp0 = v },
	)
	p.b.RegisterIOHandler(types.OBP1,
		func(uint16) uint8 { return p.obp1 },
		func(_ uint16, v uint8) { p.obp1 = v },
	)
	p.b.RegisterIOHandler(types.WY,
		func(uint16) uint8 { return p.wy },
		func(_ uint16, v uint8) { p.wy = v },
	)
	p.b.RegisterIOHandler(types.WX,
		func(uint16) uint8 { return p.wx },
		func(_ uint16, v uint8) { p.wx = v },
	)
}

// Framebuffer returns the 160x144 row-major RGBA pixels; pixel (x, y)
// lives at index y*160 + x.
func (p *PPU) Framebuffer() []uint32 {
	return p.framebuffer[:]
}

// FrameReady reports whether a VBlank has been entered since the last
// ClearFrameReady.
func (p *PPU) FrameReady() bool {
	return p.frameReady
}

// ClearFrameReady rearms the frame flag.
func (p *PPU) ClearFrameReady() {
	p.frameReady = false
}

// Mode returns the current STAT mode.
func (p *PPU) Mode() uint8 {
	return p.mode
}

// LY returns the current scanline.
func (p *PPU) LY() uint8 {
	return p.ly
}
