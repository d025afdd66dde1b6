package protocol

import (
	"bytes"
	"io"
	"testing"

	"remoteio/pins"
)

// scriptStream feeds the engine a canned byte sequence and captures
// everything it writes back. ReadByte fails with io.EOF once the
// script runs out, which is how each test's Run call returns.
type scriptStream struct {
	in  []byte
	pos int
	out bytes.Buffer
}

func (s *scriptStream) ReadByte() (byte, error) {
	if s.pos >= len(s.in) {
		return 0, io.EOF
	}
	b := s.in[s.pos]
	s.pos++
	return b, nil
}

func (s *scriptStream) Buffered() int {
	return len(s.in) - s.pos
}

func (s *scriptStream) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func newTestEngine(script string) (*Engine, *pins.Mem, *scriptStream) {
	driver := pins.NewMem()
	cfg := pins.DefaultConfig()
	driver.Configure(cfg)
	stream := &scriptStream{in: []byte(script)}
	return New(stream, driver, cfg), driver, stream
}

func runEngine(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Run(); err != io.EOF {
		t.Fatalf("Expected io.EOF when the script runs out, got %v", err)
	}
}

func TestReadReportsLevels(t *testing.T) {
	testCases := []struct {
		name     string
		lowPins  []int
		expected string
	}{
		{"all high", nil, "R111111;\r\n"},
		{"lowest pin low", []int{2}, "R111110;\r\n"},
		{"highest pin low", []int{7}, "R011111;\r\n"},
		{"all low", []int{2, 3, 4, 5, 6, 7}, "R000000;\r\n"},
	}

	for _, tc := range testCases {
		engine, driver, stream := newTestEngine("R;")
		for _, pin := range tc.lowPins {
			driver.SetInput(pin, false)
		}
		runEngine(t, engine)
		if got := stream.out.String(); got != tc.expected {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.expected, got)
		}
	}
}

func TestWriteSetsOutput(t *testing.T) {
	engine, driver, stream := newTestEngine("W51;")
	runEngine(t, engine)
	if got := stream.out.String(); got != "W;\r\n" {
		t.Errorf("Expected write acknowledgment, got %q", got)
	}
	if !driver.Output(13) {
		t.Error("Expected output pin 13 high after W51;")
	}
}

func TestWriteLastValueWins(t *testing.T) {
	engine, driver, stream := newTestEngine("W51;W50;")
	runEngine(t, engine)
	if got := stream.out.String(); got != "W;\r\nW;\r\n" {
		t.Errorf("Expected two acknowledgments, got %q", got)
	}
	if driver.Output(13) {
		t.Error("Expected output pin 13 low after the second write")
	}
}

func TestWriteEmpty(t *testing.T) {
	engine, driver, stream := newTestEngine("W;")
	runEngine(t, engine)
	if got := stream.out.String(); got != "W;\r\n" {
		t.Errorf("Expected acknowledgment for empty write, got %q", got)
	}
	for pin := 8; pin < 14; pin++ {
		if driver.Output(pin) {
			t.Errorf("Expected pin %d untouched, got high", pin)
		}
	}
}

func TestWriteMultiplePairs(t *testing.T) {
	engine, driver, stream := newTestEngine("W0111;")
	runEngine(t, engine)
	if got := stream.out.String(); got != "W;\r\n" {
		t.Errorf("Expected one acknowledgment, got %q", got)
	}
	if !driver.Output(8) || !driver.Output(9) {
		t.Error("Expected output pins 8 and 9 high after W0111;")
	}
}

func TestWriteBadValueKeepsEarlierPairs(t *testing.T) {
	engine, driver, stream := newTestEngine("W011x")
	runEngine(t, engine)
	if got := stream.out.String(); got != "E;\r\n" {
		t.Errorf("Expected error reply, got %q", got)
	}
	if !driver.Output(8) {
		t.Error("Expected the pair before the bad byte to stay applied")
	}
	if driver.Output(9) {
		t.Error("Expected the aborted pair not to be applied")
	}
}

func TestWriteBadIndexAborts(t *testing.T) {
	engine, driver, stream := newTestEngine("W9R;")
	runEngine(t, engine)
	// The error reply comes before any terminator: the command is
	// abandoned on the spot and the next byte parses at top level.
	if got := stream.out.String(); got != "E;\r\nR111111;\r\n" {
		t.Errorf("Expected error then read reply, got %q", got)
	}
	for pin := 8; pin < 14; pin++ {
		if driver.Output(pin) {
			t.Errorf("Expected no writes, pin %d is high", pin)
		}
	}
}

func TestAnalogRead(t *testing.T) {
	testCases := []struct {
		name     string
		script   string
		channel  int
		value    uint16
		expected string
	}{
		{"mid scale", "A0;", 0, 675, "A0675;\r\n"},
		{"zero single digit", "A3;", 3, 0, "A30;\r\n"},
		{"full scale", "A5;", 5, 1023, "A51023;\r\n"},
	}

	for _, tc := range testCases {
		engine, driver, stream := newTestEngine(tc.script)
		driver.SetAnalog(tc.channel, tc.value)
		runEngine(t, engine)
		if got := stream.out.String(); got != tc.expected {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.expected, got)
		}
	}
}

func TestAnalogReadBadChannel(t *testing.T) {
	testCases := []struct {
		name   string
		script string
	}{
		{"channel out of range", "A7;"},
		{"not a digit", "Ax;"},
	}

	for _, tc := range testCases {
		engine, _, stream := newTestEngine(tc.script)
		runEngine(t, engine)
		if got := stream.out.String(); got != "E;\r\n" {
			t.Errorf("%s: expected error reply, got %q", tc.name, got)
		}
	}
}

func TestVersion(t *testing.T) {
	engine, _, stream := newTestEngine("V;")
	runEngine(t, engine)
	if got := stream.out.String(); got != "V2;\r\n" {
		t.Errorf("Expected V2;, got %q", got)
	}
}

func TestUnknownByteRecovery(t *testing.T) {
	garbage := []byte{'z', 'r', 'w', '0', '!', 0x00, 0xFF}

	for _, b := range garbage {
		engine, _, stream := newTestEngine(string([]byte{b}) + "V;")
		runEngine(t, engine)
		expected := "E;\r\nV2;\r\n"
		if got := stream.out.String(); got != expected {
			t.Errorf("Byte 0x%02x: expected %q, got %q", b, expected, got)
		}
	}
}

func TestSeparatorsAndEmptyCommandsSkipped(t *testing.T) {
	engine, _, stream := newTestEngine(" \r\n\t;;V;")
	runEngine(t, engine)
	if got := stream.out.String(); got != "V2;\r\n" {
		t.Errorf("Expected only the version reply, got %q", got)
	}
}

func TestTopLevelStopAcknowledged(t *testing.T) {
	engine, _, stream := newTestEngine("SV;")
	runEngine(t, engine)
	if got := stream.out.String(); got != "S;\r\nV2;\r\n" {
		t.Errorf("Expected stop acknowledgment then version, got %q", got)
	}
}

func TestStatsAndFramingHook(t *testing.T) {
	engine, _, _ := newTestEngine("zzV;")
	var seen []byte
	engine.OnFramingError = func(b byte) { seen = append(seen, b) }
	runEngine(t, engine)

	commands, framingErrs := engine.Stats()
	if commands != 1 {
		t.Errorf("Expected 1 command dispatched, got %d", commands)
	}
	if framingErrs != 2 {
		t.Errorf("Expected 2 framing errors, got %d", framingErrs)
	}
	if len(seen) != 2 || seen[0] != 'z' || seen[1] != 'z' {
		t.Errorf("Expected the hook to see both bad bytes, got %v", seen)
	}
}

func TestAppendDecimal(t *testing.T) {
	testCases := []struct {
		value    uint16
		expected string
	}{
		{0, "0"},
		{7, "7"},
		{42, "42"},
		{675, "675"},
		{1023, "1023"},
		{65535, "65535"},
	}

	for _, tc := range testCases {
		got := string(appendDecimal(nil, tc.value))
		if got != tc.expected {
			t.Errorf("appendDecimal(%d): expected %q, got %q", tc.value, tc.expected, got)
		}
	}
}
