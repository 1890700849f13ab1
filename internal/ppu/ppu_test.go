package ppu

import (
	"testing"

	"github.com/tbeaumont/go-dmg/internal/bus"
	"github.com/tbeaumont/go-dmg/internal/cartridge"
	"github.com/tbeaumont/go-dmg/internal/interrupts"
	"github.com/tbeaumont/go-dmg/internal/scheduler"
	"github.com/tbeaumont/go-dmg/internal/types"
	"github.com/tbeaumont/go-dmg/pkg/log"
)

func newTestPPU(t *testing.T) (*PPU, *bus.Bus, *interrupts.Service) {
	t.Helper()

	rom := make([]byte, 0x8000)
	cart, err := cartridge.New(rom, log.NewNullLogger())
	if err != nil {
		t.Fatalf("failed to create cartridge: %v", err)
	}
	irq := interrupts.NewService()
	b := bus.New(cart, irq, scheduler.NewScheduler(), log.NewNullLogger())
	return New(b, log.NewNullLogger()), b, irq
}

func TestPPU_ModeSequence(t *testing.T) {
	p, _, _ := newTestPPU(t)

	if p.Mode() != ModeOAM {
		t.Fatalf("expected OAM scan at reset, got %d", p.Mode())
	}

	p.Step(80)
	if p.Mode() != ModeDrawing {
		t.Fatalf("expected drawing after 80 cycles, got %d", p.Mode())
	}

	p.Step(172)
	if p.Mode() != ModeHBlank {
		t.Fatalf("expected HBlank after 252 cycles, got %d", p.Mode())
	}

	p.Step(204)
	if p.Mode() != ModeOAM || p.LY() != 1 {
		t.Fatalf("expected OAM scan of line 1, got mode %d LY %d", p.Mode(), p.LY())
	}
}

func TestPPU_FrameTiming(t *testing.T) {
	p, _, _ := newTestPPU(t)

	// S6: a full frame of stepping produces exactly one ready frame and
	// wraps LY back to 0
	for c := 0; c < CyclesPerFrame; c += 4 {
		p.Step(4)
	}

	if !p.FrameReady() {
		t.Error("frame should be ready after 70224 cycles")
	}
	if p.LY() != 0 {
		t.Errorf("LY should have wrapped to 0, got %d", p.LY())
	}
	if p.Mode() != ModeOAM {
		t.Errorf("expected OAM scan after wrap, got mode %d", p.Mode())
	}
}

func TestPPU_VBlankInterrupt(t *testing.T) {
	p, _, irq := newTestPPU(t)

	// run the 144 visible lines
	for line := 0; line < ScreenHeight; line++ {
		p.Step(lineCycles)
	}

	if p.Mode() != ModeVBlank {
		t.Fatalf("expected VBlank at line 144, got mode %d LY %d", p.Mode(), p.LY())
	}
	if irq.Flag&interrupts.VBlankFlag == 0 {
		t.Error("entering VBlank should request the VBlank interrupt")
	}
}

func TestPPU_LCDDisabledFreezes(t *testing.T) {
	p, b, irq := newTestPPU(t)

	b.Write(types.LCDC, 0x00)
	p.Step(CyclesPerFrame)

	if p.LY() != 0 || p.Mode() != ModeOAM {
		t.Errorf("disabled LCD should freeze the state machine, LY=%d mode=%d", p.LY(), p.Mode())
	}
	if irq.Flag != 0 {
		t.Errorf("disabled LCD should fire no interrupts, IF=0x%02X", irq.Flag)
	}
}

func TestPPU_LYCCompare(t *testing.T) {
	p, b, irq := newTestPPU(t)

	b.Write(types.LYC, 2)
	b.Write(types.STAT, 0x40) // LYC interrupt enable

	p.Step(lineCycles) // line 0 -> 1
	if b.Read(types.STAT)&statLYCEqual != 0 {
		t.Error("LYC flag should be clear at LY=1")
	}
	if irq.Flag&interrupts.LCDFlag != 0 {
		t.Error("no STAT interrupt expected before LY==LYC")
	}

	p.Step(lineCycles) // line 1 -> 2
	if b.Read(types.STAT)&statLYCEqual == 0 {
		t.Error("LYC flag should be set at LY=2")
	}
	if irq.Flag&interrupts.LCDFlag == 0 {
		t.Error("STAT interrupt expected at LY==LYC")
	}
}

func TestPPU_STATWritePreservesLowBits(t *testing.T) {
	p, b, _ := newTestPPU(t)

	p.Step(80) // move into drawing so the mode bits are non-zero
	b.Write(types.STAT, 0xFF)
	got := b.Read(types.STAT)
	if got&0x03 != ModeDrawing {
		t.Errorf("STAT mode bits must not be writable, got 0x%02X", got)
	}
}

func TestPPU_LYReadOnly(t *testing.T) {
	p, b, _ := newTestPPU(t)

	p.Step(lineCycles)
	b.Write(types.LY, 0x42)
	if got := b.Read(types.LY); got != 1 {
		t.Errorf("LY should be read-only, got %d", got)
	}
}

func TestPPU_RenderBackground(t *testing.T) {
	p, b, _ := newTestPPU(t)

	b.Write(types.BGP, 0xE4) // identity palette

	// tile 1: row 0 entirely colour 1
	b.Write(0x8010, 0xFF)
	b.Write(0x8011, 0x00)
	// map the top-left tile to tile 1
	b.Write(0x9800, 0x01)

	p.Step(80 + 172) // scan + draw line 0

	fb := p.Framebuffer()
	for x := 0; x < 8; x++ {
		if fb[x] != shades[1] {
			t.Fatalf("pixel %d: expected light grey, got 0x%08X", x, fb[x])
		}
	}
	if fb[8] != shades[0] {
		t.Errorf("pixel 8: expected white, got 0x%08X", fb[8])
	}
}

func TestPPU_RenderBackgroundSignedAddressing(t *testing.T) {
	p, b, _ := newTestPPU(t)

	b.Write(types.LCDC, 0x81) // LCD + BG, signed tile data
	b.Write(types.BGP, 0xE4)

	// tile 0 in signed mode lives at 0x9000
	b.Write(0x9000, 0xFF)
	b.Write(0x9001, 0xFF) // colour 3
	b.Write(0x9800, 0x00)

	p.Step(80 + 172)

	if got := p.Framebuffer()[0]; got != shades[3] {
		t.Errorf("expected black from signed tile 0, got 0x%08X", got)
	}

	// tile -1 lives just below 0x9000
	if p.tileAddress(0xFF) != 0x0FF0 {
		t.Errorf("tile -1 should resolve to 0x0FF0, got 0x%04X", p.tileAddress(0xFF))
	}
}

func TestPPU_RenderSprites(t *testing.T) {
	p, b, _ := newTestPPU(t)

	b.Write(types.LCDC, 0x93) // LCD + BG + OBJ
	b.Write(types.BGP, 0xE4)
	b.Write(types.OBP0, 0xE4)

	// tile 2: row 0 entirely colour 2
	b.Write(0x8020, 0x00)
	b.Write(0x8021, 0xFF)

	// sprite 0 at screen (4, 0)
	b.Write(0xFE00, 16) // y
	b.Write(0xFE01, 12) // x
	b.Write(0xFE02, 2)  // tile
	b.Write(0xFE03, 0)  // attributes

	p.Step(80 + 172)

	fb := p.Framebuffer()
	for x := 4; x < 12; x++ {
		if fb[x] != shades[2] {
			t.Fatalf("pixel %d: expected dark grey sprite, got 0x%08X", x, fb[x])
		}
	}
	if fb[3] != shades[0] || fb[12] != shades[0] {
		t.Error("sprite drew outside its 8 pixel span")
	}
}

func TestPPU_SpriteBehindBackground(t *testing.T) {
	p, b, _ := newTestPPU(t)

	b.Write(types.LCDC, 0x93)
	b.Write(types.BGP, 0xE4)
	b.Write(types.OBP0, 0xE4)

	// background colour 1 over the first tile
	b.Write(0x8010, 0xFF)
	b.Write(0x8011, 0x00)
	b.Write(0x9800, 0x01)

	// sprite tile 2, colour 2, priority behind
	b.Write(0x8020, 0x00)
	b.Write(0x8021, 0xFF)
	b.Write(0xFE00, 16)
	b.Write(0xFE01, 8)
	b.Write(0xFE02, 2)
	b.Write(0xFE03, 0x80)

	p.Step(80 + 172)

	fb := p.Framebuffer()
	// the sprite overlaps non-zero background on pixels 0-7 and loses
	for x := 0; x < 8; x++ {
		if fb[x] != shades[1] {
			t.Fatalf("pixel %d: behind-priority sprite drew over background, got 0x%08X", x, fb[x])
		}
	}
}

func TestPPU_SpriteColourZeroTransparent(t *testing.T) {
	p, b, _ := newTestPPU(t)

	b.Write(types.LCDC, 0x93)
	b.Write(types.OBP0, 0xE4)

	// tile 2 row 0: left half colour 2, right half colour 0
	b.Write(0x8020, 0x00)
	b.Write(0x8021, 0xF0)

	b.Write(0xFE00, 16)
	b.Write(0xFE01, 8)
	b.Write(0xFE02, 2)
	b.Write(0xFE03, 0)

	p.Step(80 + 172)

	fb := p.Framebuffer()
	for x := 0; x < 4; x++ {
		if fb[x] != shades[2] {
			t.Fatalf("pixel %d: expected sprite colour, got 0x%08X", x, fb[x])
		}
	}
	for x := 4; x < 8; x++ {
		if fb[x] != shades[0] {
			t.Fatalf("pixel %d: colour 0 should be transparent, got 0x%08X", x, fb[x])
		}
	}
}

func TestPPU_OAMScanLimit(t *testing.T) {
	p, b, _ := newTestPPU(t)

	// 40 sprites all on line 0; only the first 10 may be collected
	for i := uint16(0); i < 40; i++ {
		b.Write(0xFE00+i*4, 16)
		b.Write(0xFE01+i*4, uint8(8+i))
	}

	p.Step(80)
	if p.spriteCount != maxSprites {
		t.Errorf("expected %d sprites, got %d", maxSprites, p.spriteCount)
	}
}

func TestPPU_WindowLineCounter(t *testing.T) {
	p, b, _ := newTestPPU(t)

	b.Write(types.LCDC, 0xA1) // LCD + BG + window
	b.Write(types.WY, 2)
	b.Write(types.WX, 7)

	p.ly = 0
	p.renderScanline()
	if p.wly != 0 {
		t.Errorf("window line counter advanced above WY, wly=%d", p.wly)
	}

	p.ly = 2
	p.renderScanline()
	if p.wly != 1 {
		t.Errorf("window line counter should advance on drawn lines, wly=%d", p.wly)
	}

	// off-screen WX suppresses the window and the counter
	b.Write(types.WX, 200)
	p.ly = 3
	p.renderScanline()
	if p.wly != 1 {
		t.Errorf("window line counter advanced on a skipped line, wly=%d", p.wly)
	}
}

func TestPPU_WindowUsesOwnLineCounter(t *testing.T) {
	p, b, _ := newTestPPU(t)

	b.Write(types.LCDC, 0xB1)
	b.Write(types.BGP, 0xE4)
	b.Write(types.WY, 10)
	b.Write(types.WX, 7)

	// window tile map row 0 points at tile 1, whose row 0 is colour 3
	b.Write(0x8010, 0xFF)
	b.Write(0x8011, 0xFF)
	b.Write(0x9800, 0x01)

	// first window line lands on LY=10 and must render window row 0
	p.ly = 10
	p.renderScanline()

	if got := p.Framebuffer()[10*ScreenWidth]; got != shades[3] {
		t.Errorf("window row 0 not rendered at LY=10, got 0x%08X", got)
	}
}
