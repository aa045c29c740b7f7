package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kylelemons/godebug/diff"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goblimey/go-gpsnav/apps/navdecode/config"
	"github.com/goblimey/go-gpsnav/metrics"
	"github.com/goblimey/go-gpsnav/nav/almanac"
	"github.com/goblimey/go-gpsnav/nav/ephemeris"
	"github.com/goblimey/go-gpsnav/nav/fields"
	"github.com/goblimey/go-gpsnav/nav/frame"
	"github.com/goblimey/go-gpsnav/nav/framelog"
	"github.com/goblimey/go-gpsnav/nav/header"
	"github.com/goblimey/go-gpsnav/nav/subframe1"
	"github.com/goblimey/go-gpsnav/nav/subframe2"
	"github.com/goblimey/go-gpsnav/nav/subframe3"
	"github.com/goblimey/go-gpsnav/receiver"
)

func newHeader(subframeID int, towCount uint) *header.Header {
	return header.New(0x8b, 0, false, towCount, false, false, subframeID, slog.LevelInfo)
}

func pack(write func(*frame.Frame)) []byte {
	var fr frame.Frame
	write(&fr)
	return frame.Pack(fr, true)
}

// ephemerisRecords returns frame log records holding subframes 1, 2 and 3
// for one satellite.
func ephemerisRecords(t *testing.T, prn int) []byte {
	t.Helper()
	sf1 := subframe1.New(newHeader(1, 10000), 161, 1, 2, 0, 0x147, false,
		0, 7200, 0, 0, 0, slog.LevelInfo)
	sf2 := subframe2.New(newHeader(2, 10001), 0x47, 0, 0, 0, 0, 0, 0,
		2702000000*fields.SqrtALSB, 7200, false, 0, slog.LevelInfo)
	sf3 := subframe3.New(newHeader(3, 10002), 0, 0, 0, 0, 0, 0, 0, 0x47, 0, slog.LevelInfo)

	var buf bytes.Buffer
	writer := framelog.NewWriter(&buf)
	for _, write := range []func(*frame.Frame){sf1.Write, sf2.Write, sf3.Write} {
		if err := writer.Write(prn, pack(write)); err != nil {
			t.Fatal(err)
		}
	}
	return buf.Bytes()
}

func TestRun(t *testing.T) {
	input := ephemerisRecords(t, 5)
	var output bytes.Buffer
	cfg := config.Config{}

	err := run(context.Background(), &cfg, bytes.NewReader(input), &output, nil, prometheus.NewRegistry())

	if err != nil {
		t.Fatalf("want nil error got %v", err)
	}
	got := output.String()
	for _, want := range []string{
		"PRN 5 subframe 1 tow 60000",
		"PRN 5 subframe 2 tow 60006",
		"PRN 5 subframe 3 tow 60012",
		"ready: ephemeris",
		"ephemeris PRN 5 week 161 TOW 60012 valid true",
		"IODC 327 IODE 71/71",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

// TestRunBadCRC checks that a damaged record is dropped and counted.
func TestRunBadCRC(t *testing.T) {
	input := ephemerisRecords(t, 7)
	// Damage the second record.
	input[framelog.RecordLengthBytes+10] ^= 0xff
	var output bytes.Buffer
	cfg := config.Config{}
	reg := prometheus.NewRegistry()

	err := run(context.Background(), &cfg, bytes.NewReader(input), &output, nil, reg)

	if err != nil {
		t.Fatalf("want nil error got %v", err)
	}
	got := output.String()
	if strings.Contains(got, "subframe 2") {
		t.Errorf("damaged subframe was displayed:\n%s", got)
	}
	if strings.Contains(got, "ready: ephemeris") {
		t.Errorf("ephemeris without subframe 2:\n%s", got)
	}

	// A second collector on the same registry shares the counters.
	collector, err := metrics.New(reg)
	if err != nil {
		t.Fatal(err)
	}
	if n := testutil.ToFloat64(collector.FrameCRCErrors); n < 1 {
		t.Errorf("want at least one CRC error got %v", n)
	}
	if n := testutil.ToFloat64(collector.Subframes.WithLabelValues("3")); n != 1 {
		t.Errorf("want one subframe 3 got %v", n)
	}
}

// TestRunBadConfig checks that a bad log level is reported.
func TestRunBadConfig(t *testing.T) {
	cfg := config.Config{Logs: config.LogConfig{Level: "loud"}}

	err := run(context.Background(), &cfg, bytes.NewReader(nil), &bytes.Buffer{}, nil, prometheus.NewRegistry())

	if err == nil {
		t.Error("expected an error")
	}
}

// TestRunCancel checks that run stops when the context is cancelled while
// it's waiting for an input to appear.
func TestRunCancel(t *testing.T) {
	name := filepath.Join(t.TempDir(), "missing")
	cfg := config.Config{Input: []string{name}, SleepTimeSeconds: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, &cfg, nil, &bytes.Buffer{}, nil, prometheus.NewRegistry())

	if err != nil {
		t.Errorf("want nil error got %v", err)
	}
}

func TestSummary(t *testing.T) {
	const want = `2 satellites
PRN subframes rejected ephemerides almanacs last TOW
  3         2        1           1        0    60006
 12         1        0           0        1      600
`
	s := newSummary()
	s.Add(receiver.Event{PRN: 12, Subframe: 5, TOW: 600, Almanac: &almanac.Almanac{}})
	s.Add(receiver.Event{PRN: 3, Subframe: 1, TOW: 60000})
	s.Add(receiver.Event{PRN: 3, Err: errors.New("parity check failed")})
	s.Add(receiver.Event{PRN: 3, Subframe: 2, TOW: 60006, Ephemeris: &ephemeris.Ephemeris{}})

	got := s.String()

	if want != got {
		t.Error(diff.Diff(want, got))
	}
	if s.Satellites() != 2 {
		t.Errorf("want 2 satellites got %d", s.Satellites())
	}
	if s.Subframes() != 3 {
		t.Errorf("want 3 subframes got %d", s.Subframes())
	}
}

// TestNewLogger checks that the event log is written to the log file.
func TestNewLogger(t *testing.T) {
	name := filepath.Join(t.TempDir(), "navdecode.log")
	cfg := config.Config{Logs: config.LogConfig{File: name, Level: "debug", MaxSizeMB: 1}}
	var stderr bytes.Buffer

	logger, closer, err := newLogger(&cfg, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hello", "prn", 5)
	closer.Close()

	contents, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	for _, got := range []string{string(contents), stderr.String()} {
		if !strings.Contains(got, "msg=hello prn=5") {
			t.Errorf("log does not contain the message: %q", got)
		}
	}
}
