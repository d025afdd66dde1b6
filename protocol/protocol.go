// Package protocol implements the single-character pin I/O command protocol
package protocol

// Version is the protocol revision reported by the version command
const Version byte = '2'

// Command tags recognized at the top of the command loop
const (
	TagRead        byte = 'R' // sample all digital inputs
	TagWrite       byte = 'W' // set digital outputs from index/value pairs
	TagAnalogRead  byte = 'A' // sample one analog channel
	TagVersion     byte = 'V' // report protocol version
	TagBeginStream byte = 'B' // start continuous input streaming
	TagStop        byte = 'S' // stop streaming
	TagError       byte = 'E' // error reply tag
)

// Terminator closes every command and every response
const Terminator byte = ';'

// interCommandByte reports whether b may appear between commands
// without meaning anything. A bare terminator is an empty command and
// is treated the same way.
func interCommandByte(b byte) bool {
	switch b {
	case Terminator, ' ', '\r', '\n', '\t':
		return true
	}
	return false
}

// commandTag reports whether b starts a command.
func commandTag(b byte) bool {
	switch b {
	case TagRead, TagWrite, TagAnalogRead, TagVersion, TagBeginStream, TagStop:
		return true
	}
	return false
}
