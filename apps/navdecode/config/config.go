// The config package reads the YAML config file of the navdecode tool and
// connects to its input.
//
// An example config file:
//
//	input: [/dev/ttyACM0, /dev/ttyACM1]
//	baudRate: 115200
//	parity: none
//	dataBits: 8
//	stopBits: 1
//	readTimeoutMilliseconds: 500
//	waitTimeOnEOFMilliseconds: 100
//	timeoutOnEOFMilliseconds: 20000
//	sleepTimeSeconds: 2
//	checkParity: true
//	prns: [1, 3, 17]
//	logs:
//	  file: navdecode.log
//	  level: info
//	  maxSizeMB: 25
//	  maxAgeDays: 7
//	  maxBackups: 5
//	  compress: true
//	status:
//	  address: ":8080"
//	  summaryInterval: 1m
//	  recentEvents: 50
//
// The input list gives the devices that the receiver might appear as.  A
// serial USB device may appear under a different name each time it's
// reconnected, so the list is searched until one of them can be opened.
// If a baud rate is given the input is opened as a serial port, otherwise
// as a plain file.  A serial input list may be empty, in which case all of
// the serial ports on the machine are tried.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goblimey/go-gpsnav/nav/utils"

	"go.bug.st/serial"
	"gopkg.in/yaml.v3"
)

// LogConfig controls the event log.
type LogConfig struct {
	File       string `yaml:"file"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	MaxBackups int    `yaml:"maxBackups"`
	Compress   bool   `yaml:"compress"`
}

// StatusConfig controls the status page and the periodic summary.
type StatusConfig struct {
	// Address is the listen address of the status server, for example
	// ":8080".  Empty means don't serve.
	Address string `yaml:"address"`

	// SummaryInterval is the time between summaries in the event log, for
	// example "1m".  Empty means no summary.
	SummaryInterval string `yaml:"summaryInterval"`

	// RecentEvents is the number of decode events shown on the status page.
	RecentEvents int `yaml:"recentEvents"`
}

// Config contains the values from the config file.
type Config struct {
	Input    []string `yaml:"input"`
	BaudRate int      `yaml:"baudRate"`

	// Serial line settings, used when BaudRate is set.
	Parity                  string  `yaml:"parity"`
	DataBits                int     `yaml:"dataBits"`
	StopBits                float64 `yaml:"stopBits"`
	ReadTimeoutMilliseconds uint    `yaml:"readTimeoutMilliseconds"`

	WaitTimeOnEOFMilliseconds uint `yaml:"waitTimeOnEOFMilliseconds"`
	TimeoutOnEOFMilliseconds  uint `yaml:"timeoutOnEOFMilliseconds"`

	// SleepTimeSeconds is the time to sleep between connection attempts.
	SleepTimeSeconds uint `yaml:"sleepTimeSeconds"`

	CheckParity bool `yaml:"checkParity"`

	// PRNs lists the satellites to decode.  Empty means all of them.
	PRNs []int `yaml:"prns"`

	Logs   LogConfig    `yaml:"logs"`
	Status StatusConfig `yaml:"status"`
}

// Default values.
const (
	defaultSleepTimeSeconds = 2
	defaultMaxSizeMB        = 25
	defaultMaxAgeDays       = 7
	defaultMaxBackups       = 5
	defaultRecentEvents     = 50
)

// GetConfig gets the config from the given file.
func GetConfig(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return getConfigFromReader(file)
}

// getConfigFromReader gets the config from the given reader and fills in
// the defaults.
func getConfigFromReader(configReader io.Reader) (*Config, error) {
	var config Config
	dec := yaml.NewDecoder(configReader)
	if err := dec.Decode(&config); err != nil && err != io.EOF {
		em := fmt.Sprintf("not a valid config file: %s", err.Error())
		return nil, errors.New(em)
	}

	if config.SleepTimeSeconds == 0 {
		config.SleepTimeSeconds = defaultSleepTimeSeconds
	}
	if config.Logs.MaxSizeMB <= 0 {
		config.Logs.MaxSizeMB = defaultMaxSizeMB
	}
	if config.Logs.MaxAgeDays <= 0 {
		config.Logs.MaxAgeDays = defaultMaxAgeDays
	}
	if config.Logs.MaxBackups <= 0 {
		config.Logs.MaxBackups = defaultMaxBackups
	}
	if config.Status.RecentEvents <= 0 {
		config.Status.RecentEvents = defaultRecentEvents
	}

	if _, err := config.LogLevel(); err != nil {
		return nil, err
	}
	if _, err := config.SummaryInterval(); err != nil {
		return nil, err
	}
	if config.BaudRate > 0 {
		if _, err := config.SerialMode(); err != nil {
			return nil, err
		}
	}
	for _, prn := range config.PRNs {
		if prn < 1 || prn > utils.MaxPRN {
			return nil, fmt.Errorf("PRN %d out of range 1-%d", prn, utils.MaxPRN)
		}
	}

	return &config, nil
}

// parseConfigFromBytes gets the config from a byte slice.
func parseConfigFromBytes(data []byte) (*Config, error) {
	return getConfigFromReader(bytes.NewReader(data))
}

// WaitTimeOnEOF returns the time to wait between reads when the input
// returns EOF.
func (config *Config) WaitTimeOnEOF() time.Duration {
	return time.Duration(config.WaitTimeOnEOFMilliseconds) * time.Millisecond
}

// TimeoutOnEOF returns the time after which a stream of EOFs means that
// the input has been lost.
func (config *Config) TimeoutOnEOF() time.Duration {
	return time.Duration(config.TimeoutOnEOFMilliseconds) * time.Millisecond
}

// SleepTime returns the time to sleep between attempts to connect.
func (config *Config) SleepTime() time.Duration {
	return time.Duration(config.SleepTimeSeconds) * time.Second
}

// LogLevel returns the event log level.  The default is Info.
func (config *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if config.Logs.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(config.Logs.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("bad log level %q: %w", config.Logs.Level, err)
	}
	return level, nil
}

// SummaryInterval returns the time between summaries, zero for none.
func (config *Config) SummaryInterval() (time.Duration, error) {
	if config.Status.SummaryInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(config.Status.SummaryInterval)
	if err != nil {
		return 0, fmt.Errorf("bad summary interval %q: %w", config.Status.SummaryInterval, err)
	}
	return d, nil
}

// SerialMode returns the settings for a serial input.
func (config *Config) SerialMode() (*serial.Mode, error) {
	mode := serial.Mode{BaudRate: config.BaudRate, DataBits: config.DataBits}
	if mode.DataBits == 0 {
		mode.DataBits = 8
	}

	switch strings.ToLower(config.Parity) {
	case "", "none":
		mode.Parity = serial.NoParity
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	case "mark":
		mode.Parity = serial.MarkParity
	case "space":
		mode.Parity = serial.SpaceParity
	default:
		return nil, fmt.Errorf("config: illegal parity value %q", config.Parity)
	}

	switch config.StopBits {
	case 0, 1:
		mode.StopBits = serial.OneStopBit
	case 1.5:
		mode.StopBits = serial.OnePointFiveStopBits
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("config: stop bit value must be 1, 1.5 or 2.  Got %g", config.StopBits)
	}

	return &mode, nil
}

// ReadTimeout returns the read timeout for a serial input, zero for none.
func (config *Config) ReadTimeout() time.Duration {
	return time.Duration(config.ReadTimeoutMilliseconds) * time.Millisecond
}

// WantPRN returns true if the satellite should be decoded.
func (config *Config) WantPRN(prn int) bool {
	if len(config.PRNs) == 0 {
		return true
	}
	for _, p := range config.PRNs {
		if p == prn {
			return true
		}
	}
	return false
}

// WaitAndConnectToInput tries repeatedly, potentially forever, to connect
// to one of the inputs.  It returns an error only if the context is
// cancelled.
func (config *Config) WaitAndConnectToInput(ctx context.Context, logger *slog.Logger) (io.ReadCloser, error) {
	if logger == nil {
		logger = utils.DiscardLogger()
	}

	for {
		reader := config.findInput(logger)
		if reader != nil {
			return reader, nil
		}

		logger.Debug("failed to connect to an input - retrying", "inputs", config.Input)

		select {
		case <-time.After(config.SleepTime()):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// findInput returns a connection to the first input in the list that can
// be opened for reading, or nil if none of them can.
func (config *Config) findInput(logger *slog.Logger) io.ReadCloser {
	if config.BaudRate > 0 {
		return config.findSerialInput(logger)
	}

	for _, name := range config.Input {
		file, err := os.Open(name)
		if err == nil {
			logger.Info("connected to input", "file", name)
			return file
		}
	}
	return nil
}

// findSerialInput opens the first of the configured serial ports that's
// present.  The device names "/dev/ttyACM0" etc on a Raspberry Pi don't
// relate to the physical USB sockets.  They are used in turn, so if the
// device loses power briefly it comes back with the next name.
func (config *Config) findSerialInput(logger *slog.Logger) io.ReadCloser {
	mode, err := config.SerialMode()
	if err != nil {
		logger.Error("serial settings", "error", err)
		return nil
	}

	ports, err := serial.GetPortsList()
	if err != nil {
		logger.Debug("cannot list serial ports", "error", err)
		ports = nil
	}

	names := config.Input
	if len(names) == 0 {
		names = ports
	} else if len(ports) > 0 {
		names = present(names, ports)
	}

	for _, name := range names {
		port, err := serial.Open(name, mode)
		if err != nil {
			continue
		}
		if timeout := config.ReadTimeout(); timeout > 0 {
			if err := port.SetReadTimeout(timeout); err != nil {
				logger.Warn("cannot set read timeout", "device", name, "error", err)
			}
		}
		logger.Info("connected to serial input", "device", name, "baud", config.BaudRate)
		return port
	}
	return nil
}

// present returns the names that appear in the list of known ports, in
// the order given.
func present(names, known []string) []string {
	result := make([]string, 0, len(names))
	for _, name := range names {
		for _, k := range known {
			if name == k {
				result = append(result, name)
				break
			}
		}
	}
	return result
}
