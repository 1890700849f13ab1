package cartridge

import (
	"encoding/binary"
	"time"
)

// rtcRegister indexes the clock registers selected through the 0x4000
// region (0x08-0x0C).
const (
	rtcSeconds = 0x08
	rtcMinutes = 0x09
	rtcHours   = 0x0A
	rtcDaysLow = 0x0B
	// rtcDaysHigh carries day bit 8 (bit 0), the halt flag (bit 6) and
	// the day counter carry (bit 7).
	rtcDaysHigh = 0x0C
)

// rtcSaveSize is the length of the clock block appended to battery saves:
// five live registers, five latched registers, six bytes of padding and
// the unix timestamp of the last update.
const rtcSaveSize = 24

// rtc is the MBC3 real-time clock. The live registers advance with the
// wall clock; a rising-edge latch snapshots them into the read-visible
// set.
type rtc struct {
	Seconds  uint8
	Minutes  uint8
	Hours    uint8
	DaysLow  uint8
	DaysHigh uint8

	LatchedSeconds  uint8
	LatchedMinutes  uint8
	LatchedHours    uint8
	LatchedDaysLow  uint8
	LatchedDaysHigh uint8

	lastUpdate time.Time
	latchValue uint8

	// now is the clock source, replaceable in tests.
	now func() time.Time
}

func newRTC() *rtc {
	r := &rtc{now: time.Now}
	r.lastUpdate = r.now()
	return r
}

// update folds the wall-clock time elapsed since the last update into the
// live registers. Halted clocks (DaysHigh bit 6) do not advance.
func (r *rtc) update() {
	elapsed := r.now().Sub(r.lastUpdate)
	if r.DaysHigh&0x40 != 0 || elapsed < time.Second {
		return
	}
	r.lastUpdate = r.lastUpdate.Add(elapsed.Truncate(time.Second))

	seconds := uint64(elapsed / time.Second)
	seconds += uint64(r.Seconds)
	r.Seconds = uint8(seconds % 60)

	minutes := seconds/60 + uint64(r.Minutes)
	r.Minutes = uint8(minutes % 60)

	hours := minutes/60 + uint64(r.Hours)
	r.Hours = uint8(hours % 24)

	days := hours/24 + uint64(r.DaysLow) + uint64(r.DaysHigh&0x01)<<8
	if days >= 512 {
		days %= 512
		r.DaysHigh |= 0x80 // day counter carry sticks until written
	}
	r.DaysLow = uint8(days)
	r.DaysHigh = r.DaysHigh&0xFE | uint8(days>>8)&0x01
}

// latch handles a write to the 0x6000 region: a 0x00 -> 0x01 edge
// snapshots the live clock into the latched registers.
func (r *rtc) latch(value uint8) {
	if r.latchValue == 0x00 && value == 0x01 {
		r.update()
		r.LatchedSeconds = r.Seconds
		r.LatchedMinutes = r.Minutes
		r.LatchedHours = r.Hours
		r.LatchedDaysLow = r.DaysLow
		r.LatchedDaysHigh = r.DaysHigh
	}
	r.latchValue = value
}

// read returns the latched value of the selected register.
func (r *rtc) read(register uint8) uint8 {
	switch register {
	case rtcSeconds:
		return r.LatchedSeconds
	case rtcMinutes:
		return r.LatchedMinutes
	case rtcHours:
		return r.LatchedHours
	case rtcDaysLow:
		return r.LatchedDaysLow
	case rtcDaysHigh:
		return r.LatchedDaysHigh
	}
	return 0xFF
}

// write sets a live register, re-anchoring the clock so the new value
// counts forward from now.
func (r *rtc) write(register, value uint8) {
	r.update()
	switch register {
	case rtcSeconds:
		r.Seconds = value & 0x3F
	case rtcMinutes:
		r.Minutes = value & 0x3F
	case rtcHours:
		r.Hours = value & 0x1F
	case rtcDaysLow:
		r.DaysLow = value
	case rtcDaysHigh:
		r.DaysHigh = value & 0xC1
	}
	r.lastUpdate = r.now()
}

// save serialises the clock into a fixed 24-byte block.
func (r *rtc) save() []byte {
	data := make([]byte, rtcSaveSize)
	data[0] = r.Seconds
	data[1] = r.Minutes
	data[2] = r.Hours
	data[3] = r.DaysLow
	data[4] = r.DaysHigh
	data[5] = r.LatchedSeconds
	data[6] = r.LatchedMinutes
	data[7] = r.LatchedHours
	data[8] = r.LatchedDaysLow
	data[9] = r.LatchedDaysHigh
	binary.LittleEndian.PutUint64(data[16:], uint64(r.lastUpdate.Unix()))
	return data
}

// load restores the clock from a save block and folds in the time the
// machine was off.
func (r *rtc) load(data []byte) {
	if len(data) < rtcSaveSize {
		return
	}
	r.Seconds = data[0]
	r.Minutes = data[1]
	r.Hours = data[2]
	r.DaysLow = data[3]
	r.DaysHigh = data[4]
	r.LatchedSeconds = data[5]
	r.LatchedMinutes = data[6]
	r.LatchedHours = data[7]
	r.LatchedDaysLow = data[8]
	r.LatchedDaysHigh = data[9]
	r.lastUpdate = time.Unix(int64(binary.LittleEndian.Uint64(data[16:])), 0)
	r.update()
}
