package host

import (
	"errors"
	"io"
	"strings"
	"testing"

	"remoteio/pins"
	"remoteio/protocol"
)

// newTestLink wires a client to a real engine over an in-process pipe
// pair and returns the client plus the mem driver behind the engine.
func newTestLink(t *testing.T) (*Client, *pins.Mem) {
	t.Helper()
	deviceRead, hostWrite := io.Pipe()
	hostRead, deviceWrite := io.Pipe()

	driver := pins.NewMem()
	cfg := pins.DefaultConfig()
	driver.Configure(cfg)

	stream := protocol.NewIOStream(struct {
		io.Reader
		io.Writer
	}{deviceRead, deviceWrite})
	engine := protocol.New(stream, driver, cfg)
	go engine.Run()

	t.Cleanup(func() {
		hostWrite.Close()
		deviceWrite.Close()
	})

	return NewClient(struct {
		io.Reader
		io.Writer
	}{hostRead, hostWrite}), driver
}

func TestClientVersion(t *testing.T) {
	client, _ := newTestLink(t)
	version, err := client.Version()
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != "2" {
		t.Errorf("Expected version 2, got %q", version)
	}
}

func TestClientReadInputs(t *testing.T) {
	client, driver := newTestLink(t)
	driver.SetInput(2, false)

	levels, err := client.ReadInputs()
	if err != nil {
		t.Fatalf("ReadInputs failed: %v", err)
	}
	if len(levels) != 6 {
		t.Fatalf("Expected 6 inputs, got %d", len(levels))
	}
	if levels[0] {
		t.Error("Expected the first input low")
	}
	for i := 1; i < 6; i++ {
		if !levels[i] {
			t.Errorf("Expected input offset %d high", i)
		}
	}
}

func TestClientSetOutputs(t *testing.T) {
	client, driver := newTestLink(t)

	if err := client.SetOutput(5, true); err != nil {
		t.Fatalf("SetOutput failed: %v", err)
	}
	if !driver.Output(13) {
		t.Error("Expected pin 13 high after SetOutput(5, true)")
	}

	err := client.SetOutputs([]OutputPair{
		{Index: 0, High: true},
		{Index: 1, High: true},
		{Index: 5, High: false},
	})
	if err != nil {
		t.Fatalf("SetOutputs failed: %v", err)
	}
	if !driver.Output(8) || !driver.Output(9) || driver.Output(13) {
		t.Error("Expected pins 8 and 9 high and pin 13 low")
	}
}

func TestClientSetOutputValidation(t *testing.T) {
	client, _ := newTestLink(t)
	if err := client.SetOutput(12, true); err == nil {
		t.Error("Expected an error for an index no digit can carry")
	}
}

func TestClientSetOutputRejectedByDevice(t *testing.T) {
	client, _ := newTestLink(t)
	// Index 7 is a valid digit but beyond the device's output range.
	// The stray value digit after the rejected index draws a second
	// error reply, which stays unread here.
	err := client.SetOutput(7, true)
	if !errors.Is(err, ErrRemoteFraming) {
		t.Errorf("Expected ErrRemoteFraming, got %v", err)
	}
}

func TestClientReadAnalog(t *testing.T) {
	client, driver := newTestLink(t)
	driver.SetAnalog(0, 675)

	value, err := client.ReadAnalog(0)
	if err != nil {
		t.Fatalf("ReadAnalog failed: %v", err)
	}
	if value != 675 {
		t.Errorf("Expected 675, got %d", value)
	}
}

func TestClientReadAnalogBadChannel(t *testing.T) {
	client, _ := newTestLink(t)
	if _, err := client.ReadAnalog(12); err == nil {
		t.Error("Expected an error for a channel no digit can carry")
	}
	if _, err := client.ReadAnalog(7); !errors.Is(err, ErrRemoteFraming) {
		t.Errorf("Expected ErrRemoteFraming for channel 7, got %v", err)
	}
}

func TestClientStop(t *testing.T) {
	client, _ := newTestLink(t)
	if err := client.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}

func TestClientStream(t *testing.T) {
	client, driver := newTestLink(t)
	driver.SetInput(4, false)

	stop := make(chan struct{})
	frames := make(chan []bool)
	done := make(chan error, 1)
	go func() { done <- client.Stream(stop, frames) }()

	frame, ok := <-frames
	if !ok {
		t.Fatal("Expected at least one frame")
	}
	if len(frame) != 6 || frame[2] {
		t.Errorf("Expected input offset 2 low, got %v", frame)
	}

	close(stop)
	for range frames {
	}
	if err := <-done; err != nil {
		t.Errorf("Expected a clean stream shutdown, got %v", err)
	}
}

// scriptedClient feeds canned response bytes with no device behind
// them.
func scriptedClient(response string) *Client {
	return NewClient(struct {
		io.Reader
		io.Writer
	}{strings.NewReader(response), io.Discard})
}

func TestClientBadResponses(t *testing.T) {
	testCases := []struct {
		name     string
		response string
	}{
		{"wrong tag", "W;\r\n"},
		{"missing terminator", "V2\r\n"},
		{"empty payload", ";\r\n"},
		{"unterminated line", strings.Repeat("V", 64)},
	}

	for _, tc := range testCases {
		client := scriptedClient(tc.response)
		if _, err := client.Version(); !errors.Is(err, ErrBadResponse) {
			t.Errorf("%s: expected ErrBadResponse, got %v", tc.name, err)
		}
	}
}

func TestClientRemoteFraming(t *testing.T) {
	client := scriptedClient("E;\r\n")
	if _, err := client.Version(); !errors.Is(err, ErrRemoteFraming) {
		t.Errorf("Expected ErrRemoteFraming, got %v", err)
	}
}

func TestClientLinkError(t *testing.T) {
	client := scriptedClient("")
	if _, err := client.Version(); !errors.Is(err, io.EOF) {
		t.Errorf("Expected the link error to surface, got %v", err)
	}
}
