package cpu

// jump fetches a 16-bit target and jumps when condition holds. The taken
// path charges an extra internal cycle.
func (c *CPU) jump(condition bool) {
	address := c.readOperand16()
	if condition {
		c.PC = address
		c.ticks += 4
	}
}

// jumpRelative fetches a signed offset and adds it to PC when condition
// holds.
func (c *CPU) jumpRelative(condition bool) {
	offset := int8(c.readOperand())
	if condition {
		c.PC = uint16(int32(c.PC) + int32(offset))
		c.ticks += 4
	}
}

// call pushes the return address and jumps when condition holds.
func (c *CPU) call(condition bool) {
	address := c.readOperand16()
	if condition {
		c.push(c.PC)
		c.PC = address
		c.ticks += 4
	}
}

// ret pops the return address unconditionally.
func (c *CPU) ret() {
	c.PC = c.pop()
	c.ticks += 4
}

// retConditional charges the extra condition-test cycle, then returns
// when condition holds.
func (c *CPU) retConditional(condition bool) {
	c.ticks += 4
	if condition {
		c.PC = c.pop()
		c.ticks += 4
	}
}

// rst pushes PC and jumps to the fixed vector.
func (c *CPU) rst(vector uint8) {
	c.push(c.PC)
	c.PC = uint16(vector)
	c.ticks += 4
}
