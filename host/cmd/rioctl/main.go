package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ergochat/readline"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"remoteio/host"
	"remoteio/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	timeout = flag.Int("timeout", 0, "Serial read timeout in milliseconds (0 = block)")
	verbose = flag.Bool("verbose", false, "Enable verbose output")
)

var log = logrus.New()

func main() {
	flag.Parse()

	log.Formatter = new(logrus.TextFormatter)
	log.Level = logrus.InfoLevel
	if *verbose {
		log.Level = logrus.DebugLevel
	}

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	cfg.ReadTimeout = *timeout

	port, err := serial.Open(cfg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer port.Close()
	log.Debugf("opened %s at %d baud", *device, *baud)

	client := host.NewClient(port)

	// With arguments, run one command and exit. Without, drop into
	// the interactive console.
	if args := flag.Args(); len(args) > 0 {
		if err := runCommand(client, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := repl(client); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(client *host.Client, args []string) error {
	verb, rest := args[0], args[1:]
	log.Debugf("running %s %v", verb, rest)

	switch verb {
	case "version":
		return cmdVersion(client)
	case "read":
		return cmdRead(client)
	case "write":
		return cmdWrite(client, rest)
	case "analog":
		return cmdAnalog(client, rest)
	case "watch":
		return cmdWatch(client, rest)
	case "stream":
		return cmdStream(client)
	default:
		return fmt.Errorf("unknown command %q (type 'help' for available commands)", verb)
	}
}

func cmdVersion(client *host.Client) error {
	version, err := client.Version()
	if err != nil {
		return err
	}
	fmt.Printf("Protocol version %s\n", version)
	return nil
}

func cmdRead(client *host.Client) error {
	levels, err := client.ReadInputs()
	if err != nil {
		return err
	}
	printLevels(levels)
	return nil
}

func cmdWrite(client *host.Client, args []string) error {
	if len(args) == 0 || len(args)%2 != 0 {
		return fmt.Errorf("write wants INDEX LEVEL pairs")
	}
	pairs := make([]host.OutputPair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		index, err := strconv.Atoi(args[i])
		if err != nil {
			return fmt.Errorf("bad output index %q", args[i])
		}
		high, err := parseLevel(args[i+1])
		if err != nil {
			return err
		}
		pairs = append(pairs, host.OutputPair{Index: index, High: high})
	}
	return client.SetOutputs(pairs)
}

func cmdAnalog(client *host.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("analog wants a channel number")
	}
	channel, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad channel %q", args[0])
	}
	value, err := client.ReadAnalog(channel)
	if err != nil {
		return err
	}
	fmt.Printf("channel %d: %d\n", channel, value)
	return nil
}

// cmdWatch polls the inputs at a fixed interval and prints changes.
// Every sample is current, which is the advantage polling has over
// the stream command.
func cmdWatch(client *host.Client, args []string) error {
	interval := 500 * time.Millisecond
	if len(args) == 1 {
		ms, err := strconv.Atoi(args[0])
		if err != nil || ms <= 0 {
			return fmt.Errorf("bad interval %q", args[0])
		}
		interval = time.Duration(ms) * time.Millisecond
	} else if len(args) > 1 {
		return fmt.Errorf("watch wants at most an interval in milliseconds")
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	var last []bool
	for {
		levels, err := client.ReadInputs()
		if err != nil {
			return err
		}
		if !levelsEqual(levels, last) {
			printLevels(levels)
			last = levels
		}
		select {
		case <-sig:
			return nil
		case <-time.After(interval):
		}
	}
}

// cmdStream runs the device's continuous stream until interrupted.
// Frames queue up in the link while this process is busy, so slow
// consumers see stale levels; watch is usually the better choice.
func cmdStream(client *host.Client) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	stop := make(chan struct{})
	go func() {
		<-sig
		close(stop)
	}()

	frames := make(chan []bool, 16)
	done := make(chan error, 1)
	go func() { done <- client.Stream(stop, frames) }()

	var last []bool
	for frame := range frames {
		if !levelsEqual(frame, last) {
			printLevels(frame)
			last = frame
		}
	}
	return <-done
}

func printLevels(levels []bool) {
	parts := make([]string, len(levels))
	for i, high := range levels {
		parts[i] = fmt.Sprintf("%d=%s", i, levelName(high))
	}
	fmt.Println(strings.Join(parts, " "))
}

func levelName(high bool) string {
	if high {
		return "high"
	}
	return "low"
}

func parseLevel(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "on", "high":
		return true, nil
	case "0", "off", "low":
		return false, nil
	}
	return false, fmt.Errorf("bad level %q, want 0 or 1", s)
}

func levelsEqual(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// repl reads commands interactively. With a terminal on stdin it uses
// readline with history, otherwise it falls back to plain line
// reading so piped scripts behave the same.
func repl(client *host.Client) error {
	fmt.Println("remoteio console (type 'help' for available commands, 'quit' to exit)")
	getLine, closeLine := lineReader()
	defer closeLine()

	for {
		line, err := getLine()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		args := strings.Fields(line)
		switch args[0] {
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			printHelp()
		default:
			if err := runCommand(client, args); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		}
	}
}

func lineReader() (func() (string, error), func()) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		historyPath := ""
		if home, err := os.UserHomeDir(); err == nil {
			historyPath = filepath.Join(home, ".rioctl_history")
		}
		rl, err := readline.NewFromConfig(&readline.Config{
			Prompt:       "> ",
			HistoryFile:  historyPath,
			HistoryLimit: 500,
		})
		if err == nil {
			return rl.Readline, func() { rl.Close() }
		}
		log.Debugf("readline unavailable (%v), using plain input", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	return func() (string, error) {
		fmt.Print("> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return scanner.Text(), nil
	}, func() {}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  version               - Report the device protocol version")
	fmt.Println("  read                  - Sample all digital inputs")
	fmt.Println("  write INDEX LEVEL ... - Drive outputs, e.g. write 5 1")
	fmt.Println("  analog CHANNEL        - Sample an analog channel")
	fmt.Println("  watch [MS]            - Poll inputs and print changes")
	fmt.Println("  stream                - Continuous input stream (watch is usually better)")
	fmt.Println("  help                  - Show this help message")
	fmt.Println("  quit/exit/q           - Exit the console")
	fmt.Println()
}
