// Package gameboy wires the components into a machine and drives them
// frame by frame: the interpreter steps, then the pixel unit, timer and
// scheduler are advanced by the same cycle count.
package gameboy

import (
	"github.com/tbeaumont/go-dmg/internal/bus"
	"github.com/tbeaumont/go-dmg/internal/cartridge"
	"github.com/tbeaumont/go-dmg/internal/cpu"
	"github.com/tbeaumont/go-dmg/internal/interrupts"
	"github.com/tbeaumont/go-dmg/internal/joypad"
	"github.com/tbeaumont/go-dmg/internal/ppu"
	"github.com/tbeaumont/go-dmg/internal/scheduler"
	"github.com/tbeaumont/go-dmg/internal/timer"
	"github.com/tbeaumont/go-dmg/pkg/log"
)

const (
	// ClockSpeed is the T-cycle rate of the machine.
	ClockSpeed = cpu.ClockSpeed
	// CyclesPerFrame is the frame length the driver runs in.
	CyclesPerFrame = ppu.CyclesPerFrame
)

// GameBoy owns every component of the machine.
type GameBoy struct {
	CPU        *cpu.CPU
	PPU        *ppu.PPU
	Bus        *bus.Bus
	Timer      *timer.Controller
	Joypad     *joypad.State
	Interrupts *interrupts.Service
	Scheduler  *scheduler.Scheduler

	cart cartridge.Cartridge
	log  log.Logger

	totalCycles uint64
}

// New builds a machine around the given ROM image. It fails on images
// smaller than the cartridge header or with an unsupported controller
// type.
func New(rom []byte, opts ...Opt) (*GameBoy, error) {
	g := &GameBoy{log: log.New()}
	for _, opt := range opts {
		opt(g)
	}

	cart, err := cartridge.New(rom, g.log)
	if err != nil {
		return nil, err
	}
	g.cart = cart

	g.Scheduler = scheduler.NewScheduler()
	g.Interrupts = interrupts.NewService()
	g.Bus = bus.New(cart, g.Interrupts, g.Scheduler, g.log)
	g.Timer = timer.NewController(g.Bus)
	g.PPU = ppu.New(g.Bus, g.log)
	g.Joypad = joypad.New(g.Bus)
	g.CPU = cpu.New(g.Bus, g.Interrupts, g.log)

	return g, nil
}

// RunFrame executes instructions until at least one frame worth of
// T-cycles has elapsed. After each instruction the pixel unit and timer
// advance by the same count and due scheduler events fire.
func (g *GameBoy) RunFrame() {
	var frameCycles uint64
	for frameCycles < CyclesPerFrame {
		n := g.CPU.Step()

		g.PPU.Step(n)
		g.Timer.Step(n)
		g.Scheduler.Advance(uint64(n))
		g.Scheduler.Process()

		frameCycles += uint64(n)
	}
	g.totalCycles += frameCycles
}

// Step executes a single instruction and advances the rest of the
// machine by its cost.
func (g *GameBoy) Step() uint32 {
	n := g.CPU.Step()
	g.PPU.Step(n)
	g.Timer.Step(n)
	g.Scheduler.Advance(uint64(n))
	g.Scheduler.Process()
	g.totalCycles += uint64(n)
	return n
}

// Reset restores the post-boot state: register file, RAM regions, page
// tables and an empty scheduler queue. Only valid between frames.
func (g *GameBoy) Reset() {
	g.Scheduler.Reset()
	g.Bus.Reset()
	g.Interrupts.Reset()
	g.CPU.Reset()
	g.PPU.Reset()
	g.Timer.Reset()
	g.Joypad.Reset()
	g.totalCycles = 0
}

// Framebuffer returns the current 160x144 row-major RGBA pixels.
func (g *GameBoy) Framebuffer() []uint32 {
	return g.PPU.Framebuffer()
}

// FrameReady reports whether the pixel unit has completed a frame since
// the last ClearFrameReady.
func (g *GameBoy) FrameReady() bool {
	return g.PPU.FrameReady()
}

// ClearFrameReady rearms the frame flag.
func (g *GameBoy) ClearFrameReady() {
	g.PPU.ClearFrameReady()
}

// SetJoypad latches the 8-bit joypad vector for the coming frame:
// bit 0 Right .. bit 7 Start, 0 = pressed.
func (g *GameBoy) SetJoypad(state uint8) {
	g.Joypad.SetState(state)
}

// Cycle returns the total T-cycles executed since power-on.
func (g *GameBoy) Cycle() uint64 {
	return g.totalCycles
}

// Title returns the game title from the cartridge header.
func (g *GameBoy) Title() string {
	return g.cart.Header().Title
}

// HasBattery reports whether the cartridge keeps a battery save.
func (g *GameBoy) HasBattery() bool {
	return g.cart.Header().HasBattery()
}

// BatterySave returns the battery save blob, or nil for cartridges
// without one.
func (g *GameBoy) BatterySave() []byte {
	if !g.HasBattery() {
		return nil
	}
	return g.cart.Save()
}

// LoadBatterySave restores a previously saved blob. It does nothing for
// cartridges without a battery.
func (g *GameBoy) LoadBatterySave(data []byte) {
	if len(data) == 0 || !g.HasBattery() {
		return
	}
	g.cart.Load(data)
}
