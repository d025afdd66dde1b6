package pins

// MCP3008 SPI framing, shared by the backends that drive the ADC over
// a raw SPI exchange. The chip wants three bytes per sample: a start
// bit, then single-ended mode with the channel number in the top
// nibble, then padding while the conversion clocks out. The reply
// carries the 10-bit result in the low bits of the last two bytes.

// mcp3008Request builds the three-byte exchange for channel.
func mcp3008Request(channel int) [3]byte {
	return [3]byte{0x01, byte(0x80 | channel<<4), 0x00}
}

// mcp3008Value extracts the sample from the three-byte reply.
func mcp3008Value(reply [3]byte) uint16 {
	return uint16(reply[1]&0x03)<<8 | uint16(reply[2])
}
