package cartridge

import "fmt"

// Type identifies the memory bank controller on the cartridge, parsed
// from header byte 0x0147.
type Type uint8

const (
	ROM              Type = 0x00
	MBC1             Type = 0x01
	MBC1RAM          Type = 0x02
	MBC1RAMBATT      Type = 0x03
	MBC3TIMERBATT    Type = 0x0F
	MBC3TIMERRAMBATT Type = 0x10
	MBC3             Type = 0x11
	MBC3RAM          Type = 0x12
	MBC3RAMBATT      Type = 0x13
	MBC5             Type = 0x19
	MBC5RAM          Type = 0x1A
	MBC5RAMBATT      Type = 0x1B
	MBC5RUMBLE       Type = 0x1C
	MBC5RUMBLERAM    Type = 0x1D
	MBC5RUMBLERAMBAT Type = 0x1E
)

func (t Type) String() string {
	switch t {
	case ROM:
		return "ROM"
	case MBC1, MBC1RAM, MBC1RAMBATT:
		return "MBC1"
	case MBC3TIMERBATT, MBC3TIMERRAMBATT, MBC3, MBC3RAM, MBC3RAMBATT:
		return "MBC3"
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBAT:
		return "MBC5"
	}
	return fmt.Sprintf("unknown (0x%02X)", uint8(t))
}

// ramSizes maps header byte 0x0149 to the external RAM size in bytes.
var ramSizes = map[uint8]uint32{
	0x00: 0,
	0x01: 2 * 1024,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Header represents the cartridge header located at 0x0100-0x014F. It
// describes the game and the hardware the cartridge carries.
type Header struct {
	// 0x0134-0x0143 - title of the game, zero terminated
	Title string

	// 0x0147 - memory bank controller variant
	CartridgeType Type

	// 0x0148 - ROM size in bytes (32 KiB << code)
	ROMSize uint32

	// 0x0149 - external RAM size in bytes
	RAMSize uint32

	OldLicenseeCode uint8
	MaskROMVersion  uint8
	HeaderChecksum  uint8
	GlobalChecksum  uint16
}

// parseHeader parses the 0x50 bytes of header starting at 0x0100.
func parseHeader(header []byte) Header {
	h := Header{}

	// the title runs to the first NUL, at most 16 bytes
	title := header[0x34:0x44]
	for i, c := range title {
		if c == 0 {
			title = title[:i]
			break
		}
	}
	h.Title = string(title)

	h.CartridgeType = Type(header[0x47])
	h.ROMSize = (32 * 1024) << header[0x48]
	h.RAMSize = ramSizes[header[0x49]]
	h.OldLicenseeCode = header[0x4B]
	h.MaskROMVersion = header[0x4C]
	h.HeaderChecksum = header[0x4D]
	h.GlobalChecksum = uint16(header[0x4E])<<8 | uint16(header[0x4F])

	return h
}

// HasBattery reports whether the cartridge keeps its RAM across power
// cycles.
func (h Header) HasBattery() bool {
	switch h.CartridgeType {
	case MBC1RAMBATT, MBC3TIMERBATT, MBC3TIMERRAMBATT, MBC3RAMBATT,
		MBC5RAMBATT, MBC5RUMBLERAMBAT:
		return true
	}
	return false
}

// HasRTC reports whether the cartridge carries a real-time clock.
func (h Header) HasRTC() bool {
	return h.CartridgeType == MBC3TIMERBATT || h.CartridgeType == MBC3TIMERRAMBATT
}

func (h Header) String() string {
	return fmt.Sprintf("%s (%s, ROM %dKiB, RAM %dKiB)",
		h.Title, h.CartridgeType, h.ROMSize/1024, h.RAMSize/1024)
}
