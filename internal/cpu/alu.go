package cpu

// add adds n (plus the carry flag for ADC) to the A register.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) add(n uint8, withCarry bool) {
	carry := uint16(0)
	if withCarry && c.isFlagSet(FlagCarry) {
		carry = 1
	}
	sum := uint16(c.A) + uint16(n) + carry
	half := uint16(c.A&0x0F) + uint16(n&0x0F) + carry
	c.setFlags(uint8(sum) == 0, false, half > 0x0F, sum > 0xFF)
	c.A = uint8(sum)
}

// sub subtracts n (plus the carry flag for SBC) from the A register.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Set if borrow.
func (c *CPU) sub(n uint8, withCarry bool) {
	carry := int16(0)
	if withCarry && c.isFlagSet(FlagCarry) {
		carry = 1
	}
	diff := int16(c.A) - int16(n) - carry
	half := int16(c.A&0x0F) - int16(n&0x0F) - carry
	c.setFlags(uint8(diff) == 0, true, half < 0, diff < 0)
	c.A = uint8(diff)
}

// and performs a bitwise AND on the A register.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset. H - Set. C - Reset.
func (c *CPU) and(n uint8) {
	c.A &= n
	c.setFlags(c.A == 0, false, true, false)
}

// or performs a bitwise OR on the A register. Only Z may end up set.
func (c *CPU) or(n uint8) {
	c.A |= n
	c.setFlags(c.A == 0, false, false, false)
}

// xor performs a bitwise XOR on the A register. Only Z may end up set.
func (c *CPU) xor(n uint8) {
	c.A ^= n
	c.setFlags(c.A == 0, false, false, false)
}

// compare subtracts n from A for flags only, discarding the result.
func (c *CPU) compare(n uint8) {
	c.setFlags(c.A == n, true, n&0x0F > c.A&0x0F, n > c.A)
}

// increment returns n+1.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Not affected.
func (c *CPU) increment(n uint8) uint8 {
	n++
	c.setFlag(FlagZero, n == 0)
	c.setFlag(FlagSubtract, false)
	c.setFlag(FlagHalfCarry, n&0x0F == 0)
	return n
}

// decrement returns n-1.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Not affected.
func (c *CPU) decrement(n uint8) uint8 {
	n--
	c.setFlag(FlagZero, n == 0)
	c.setFlag(FlagSubtract, true)
	c.setFlag(FlagHalfCarry, n&0x0F == 0x0F)
	return n
}

// addHL adds a 16-bit value to HL.
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func (c *CPU) addHL(v uint16) {
	hl := c.hl()
	sum := uint32(hl) + uint32(v)
	c.setFlag(FlagSubtract, false)
	c.setFlag(FlagHalfCarry, hl&0x0FFF+v&0x0FFF > 0x0FFF)
	c.setFlag(FlagCarry, sum > 0xFFFF)
	c.setHL(uint16(sum))
	c.ticks += 4
}

// addSPSigned fetches a signed offset and returns SP plus it. H and C
// come from the unsigned addition of the low bytes; Z and N are reset.
func (c *CPU) addSPSigned() uint16 {
	offset := c.readOperand()
	result := uint16(int32(c.SP) + int32(int8(offset)))
	c.setFlags(false, false,
		c.SP&0x0F+uint16(offset&0x0F) > 0x0F,
		c.SP&0xFF+uint16(offset) > 0xFF)
	return result
}

// daa applies the post-BCD correction to A, driven by the N, H and C
// flags left by the previous arithmetic instruction.
func (c *CPU) daa() {
	if !c.isFlagSet(FlagSubtract) {
		if c.isFlagSet(FlagCarry) || c.A > 0x99 {
			c.A += 0x60
			c.setFlag(FlagCarry, true)
		}
		if c.isFlagSet(FlagHalfCarry) || c.A&0x0F > 0x09 {
			c.A += 0x06
		}
	} else {
		if c.isFlagSet(FlagCarry) {
			c.A -= 0x60
		}
		if c.isFlagSet(FlagHalfCarry) {
			c.A -= 0x06
		}
	}
	c.setFlag(FlagZero, c.A == 0)
	c.setFlag(FlagHalfCarry, false)
}
