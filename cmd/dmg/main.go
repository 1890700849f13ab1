// Command dmg is a headless driver for the emulation core: it runs a ROM
// for a number of frames, optionally printing a digest of every frame
// and persisting the battery save.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/cespare/xxhash"
	"github.com/tbeaumont/go-dmg/internal/gameboy"
	"github.com/tbeaumont/go-dmg/pkg/log"
	"github.com/tbeaumont/go-dmg/pkg/utils"
)

var (
	romPath   = flag.String("rom", "", "ROM image to run (.gb, .zip, .gz or .7z)")
	frames    = flag.Int("frames", 60, "number of frames to execute")
	savePath  = flag.String("save", "", "battery save file to load and write back")
	printHash = flag.Bool("hash", false, "print an xxhash digest of every frame")
)

func main() {
	flag.Parse()

	if *romPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New()

	rom, err := utils.LoadFile(*romPath)
	if err != nil {
		logger.Errorf("failed to read ROM: %v", err)
		os.Exit(1)
	}

	gb, err := gameboy.New(rom, gameboy.WithLogger(logger))
	if err != nil {
		logger.Errorf("failed to load ROM: %v", err)
		os.Exit(1)
	}

	if *savePath != "" && gb.HasBattery() {
		if data, err := os.ReadFile(*savePath); err == nil {
			gb.LoadBatterySave(data)
			logger.Infof("loaded battery save from %s", *savePath)
		}
	}

	raw := make([]byte, len(gb.Framebuffer())*4)
	for frame := 0; frame < *frames; frame++ {
		gb.ClearFrameReady()
		gb.RunFrame()

		if *printHash {
			for i, px := range gb.Framebuffer() {
				binary.LittleEndian.PutUint32(raw[i*4:], px)
			}
			fmt.Printf("%d %016x\n", frame, xxhash.Sum64(raw))
		}
	}

	logger.Infof("ran %d frames (%d T-cycles)", *frames, gb.Cycle())

	if *savePath != "" && gb.HasBattery() {
		if err := os.WriteFile(*savePath, gb.BatterySave(), 0o644); err != nil {
			logger.Errorf("failed to write battery save: %v", err)
			os.Exit(1)
		}
		logger.Infof("wrote battery save to %s", *savePath)
	}
}
