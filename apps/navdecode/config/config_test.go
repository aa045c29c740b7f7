package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.bug.st/serial"
)

// TestParseConfig checks that a config is parsed and the durations come
// out correctly.
func TestParseConfig(t *testing.T) {
	data := []byte(`
input: [/dev/ttyACM0, /dev/ttyACM1]
baudRate: 115200
parity: even
dataBits: 7
stopBits: 1.5
readTimeoutMilliseconds: 500
waitTimeOnEOFMilliseconds: 100
timeoutOnEOFMilliseconds: 20000
checkParity: true
prns: [1, 3, 17]
logs:
  file: navdecode.log
  level: debug
  compress: true
status:
  address: ":8080"
  summaryInterval: 90s
`)

	want := Config{
		Input:                     []string{"/dev/ttyACM0", "/dev/ttyACM1"},
		BaudRate:                  115200,
		Parity:                    "even",
		DataBits:                  7,
		StopBits:                  1.5,
		ReadTimeoutMilliseconds:   500,
		WaitTimeOnEOFMilliseconds: 100,
		TimeoutOnEOFMilliseconds:  20000,
		SleepTimeSeconds:          defaultSleepTimeSeconds,
		CheckParity:               true,
		PRNs:                      []int{1, 3, 17},
		Logs: LogConfig{
			File:       "navdecode.log",
			Level:      "debug",
			MaxSizeMB:  defaultMaxSizeMB,
			MaxAgeDays: defaultMaxAgeDays,
			MaxBackups: defaultMaxBackups,
			Compress:   true,
		},
		Status: StatusConfig{
			Address:         ":8080",
			SummaryInterval: "90s",
			RecentEvents:    defaultRecentEvents,
		},
	}

	got, err := parseConfigFromBytes(data)
	if err != nil {
		t.Fatal(err)
	}

	if !cmp.Equal(want, *got) {
		t.Error(cmp.Diff(want, *got))
	}

	if got.WaitTimeOnEOF() != 100*time.Millisecond {
		t.Errorf("want 100ms got %v", got.WaitTimeOnEOF())
	}
	if got.TimeoutOnEOF() != 20*time.Second {
		t.Errorf("want 20s got %v", got.TimeoutOnEOF())
	}
	if got.SleepTime() != 2*time.Second {
		t.Errorf("want 2s got %v", got.SleepTime())
	}

	level, err := got.LogLevel()
	if err != nil {
		t.Fatal(err)
	}
	if level != slog.LevelDebug {
		t.Errorf("want debug got %v", level)
	}

	interval, err := got.SummaryInterval()
	if err != nil {
		t.Fatal(err)
	}
	if interval != 90*time.Second {
		t.Errorf("want 90s got %v", interval)
	}

	if !got.WantPRN(17) || got.WantPRN(2) {
		t.Error("PRN filter is wrong")
	}

	if got.ReadTimeout() != 500*time.Millisecond {
		t.Errorf("want 500ms got %v", got.ReadTimeout())
	}
	mode, err := got.SerialMode()
	if err != nil {
		t.Fatal(err)
	}
	wantMode := serial.Mode{BaudRate: 115200, DataBits: 7, Parity: serial.EvenParity,
		StopBits: serial.OnePointFiveStopBits}
	if !cmp.Equal(wantMode, *mode) {
		t.Error(cmp.Diff(wantMode, *mode))
	}
}

// TestSerialMode checks the conversion of the serial line settings.
func TestSerialMode(t *testing.T) {
	var testData = []struct {
		description string
		config      Config
		want        serial.Mode
	}{
		{"defaults", Config{BaudRate: 9600},
			serial.Mode{BaudRate: 9600, DataBits: 8, Parity: serial.NoParity, StopBits: serial.OneStopBit}},
		{"odd", Config{BaudRate: 9600, Parity: "ODD", StopBits: 2},
			serial.Mode{BaudRate: 9600, DataBits: 8, Parity: serial.OddParity, StopBits: serial.TwoStopBits}},
		{"mark", Config{BaudRate: 4800, Parity: "mark", DataBits: 7},
			serial.Mode{BaudRate: 4800, DataBits: 7, Parity: serial.MarkParity, StopBits: serial.OneStopBit}},
		{"space", Config{BaudRate: 4800, Parity: "space", StopBits: 1},
			serial.Mode{BaudRate: 4800, DataBits: 8, Parity: serial.SpaceParity, StopBits: serial.OneStopBit}},
	}

	for _, td := range testData {
		got, err := td.config.SerialMode()
		if err != nil {
			t.Errorf("%s: %v", td.description, err)
			continue
		}
		if !cmp.Equal(td.want, *got) {
			t.Errorf("%s: %s", td.description, cmp.Diff(td.want, *got))
		}
	}
}

func TestPresent(t *testing.T) {
	got := present([]string{"/dev/ttyACM0", "/dev/ttyACM1", "/dev/ttyUSB0"},
		[]string{"/dev/ttyUSB0", "/dev/ttyACM1", "/dev/ttyS0"})
	want := []string{"/dev/ttyACM1", "/dev/ttyUSB0"}
	if !cmp.Equal(want, got) {
		t.Error(cmp.Diff(want, got))
	}
}

// TestEmptyConfig checks the defaults.
func TestEmptyConfig(t *testing.T) {
	got, err := parseConfigFromBytes([]byte{})
	if err != nil {
		t.Fatal(err)
	}

	level, _ := got.LogLevel()
	if level != slog.LevelInfo {
		t.Errorf("want info got %v", level)
	}
	interval, _ := got.SummaryInterval()
	if interval != 0 {
		t.Errorf("want no summary got %v", interval)
	}
	if !got.WantPRN(32) {
		t.Error("an empty PRN list should allow all satellites")
	}
	if got.Status.RecentEvents != defaultRecentEvents {
		t.Errorf("want %d got %d", defaultRecentEvents, got.Status.RecentEvents)
	}
}

func TestBadConfig(t *testing.T) {
	var testData = []struct {
		description string
		yaml        string
		wantError   string
	}{
		{"bad PRN", "prns: [0]", "PRN 0 out of range 1-32"},
		{"bad level", "logs:\n  level: chatty", `bad log level "chatty"`},
		{"bad interval", "status:\n  summaryInterval: often", `bad summary interval "often"`},
		{"not YAML", "input: [", "not a valid config file"},
		{"bad parity", "baudRate: 9600\nparity: sometimes", `config: illegal parity value "sometimes"`},
		{"bad stop bits", "baudRate: 9600\nstopBits: 3", "config: stop bit value must be 1, 1.5 or 2"},
	}

	for _, td := range testData {
		_, err := parseConfigFromBytes([]byte(td.yaml))
		if err == nil {
			t.Errorf("%s: expected an error", td.description)
			continue
		}
		if !strings.HasPrefix(err.Error(), td.wantError) {
			t.Errorf("%s: want %s got %s", td.description, td.wantError, err.Error())
		}
	}
}

// TestWaitAndConnectToInput checks that the first input that can be opened
// is used, even if it only appears after a while.
func TestWaitAndConnectToInput(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")

	config := Config{Input: []string{a, b}, SleepTimeSeconds: 1}

	const expectedContents = "Hello world"
	go func() {
		time.Sleep(1500 * time.Millisecond)
		// Create the file under another name and then rename it, so that
		// it's complete when it appears.
		tmp := filepath.Join(dir, "t")
		os.WriteFile(tmp, []byte(expectedContents), 0o644)
		os.Rename(tmp, b)
	}()

	reader, err := config.WaitAndConnectToInput(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	contents, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	if expectedContents != string(contents) {
		t.Errorf("want %s got %s", expectedContents, string(contents))
	}
}

func TestWaitAndConnectToInputCancelled(t *testing.T) {
	config := Config{Input: []string{filepath.Join(t.TempDir(), "missing")}, SleepTimeSeconds: 1}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := config.WaitAndConnectToInput(ctx, nil)
	if err != context.DeadlineExceeded {
		t.Errorf("want %v got %v", context.DeadlineExceeded, err)
	}
}
