// navdecode reads GPS navigation subframes in frame log format from a file,
// the standard input or a receiver on a serial line, decodes them and
// writes a readable version of the results to the standard output.
//
// Each frame log record carries one subframe from one satellite.  The
// tool decodes subframes 1 to 5, assembles the ephemeris for each
// satellite from subframes 1, 2 and 3 and collects the almanac, the
// ionospheric model and the UTC model from subframes 4 and 5.  It prints
// a line for each subframe and the full record each time one becomes
// ready.  For example:
//
//	PRN 5 subframe 3 tow 60012 time 2022-05-08 16:40:12 +0000 UTC ready: ephemeris
//	ephemeris PRN 5 week 161 TOW 60012 valid true
//	IODC 327 IODE 71/71, health 0, URA index 2, fit interval false, AODO 0
//	...
//
// Usage:
//
//	navdecode [-c config.yaml] [file]
//
// Examples:
//
//	navdecode frames.log
//
//	navdecode - # take input from the standard input channel.
//
//	navdecode -c navdecode.yaml
//
// With just a file name the tool reads the file and stops.  With a config
// file and no file name it reads from the inputs listed in the config,
// reconnecting whenever the input is lost, and runs until it's killed.
// The config can also ask for a rotating event log, a status web page
// with Prometheus metrics and a periodic summary in the event log.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/goblimey/go-gpsnav/apps/appcore"
	"github.com/goblimey/go-gpsnav/apps/navdecode/config"
	"github.com/goblimey/go-gpsnav/metrics"
	"github.com/goblimey/go-gpsnav/nav/decoder"
	"github.com/goblimey/go-gpsnav/nav/framelog"
	"github.com/goblimey/go-gpsnav/nav/satellite"
	"github.com/goblimey/go-gpsnav/nav/utils"
	"github.com/goblimey/go-gpsnav/receiver"
	"github.com/goblimey/go-gpsnav/status"
	circularQueue "github.com/goblimey/go-gpsnav/status/circular_queue"
	"github.com/goblimey/go-gpsnav/status/reportfeed"
)

// channelCapacity is the size of the buffers between the stages.
const channelCapacity = 64

func main() {
	var configFileName string
	flag.StringVar(&configFileName, "c", "", "YAML config file")
	flag.StringVar(&configFileName, "config", "", "YAML config file")
	flag.Parse()

	appName := os.Args[0]

	// Without a config, the zero EOF timeout makes the tool stop at the
	// end of the input.
	cfg := &config.Config{}
	if len(configFileName) > 0 {
		var err error
		cfg, err = config.GetConfig(configFileName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
			os.Exit(-1)
		}
	}

	if flag.NArg() == 0 && len(cfg.Input) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [-c config] file\n", appName)
		os.Exit(-1)
	}

	logger, closer, err := newLogger(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(-1)
	}
	defer closer.Close()

	var reader io.Reader
	if flag.NArg() > 0 {
		r, err := openFile(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot open %s - %v\n", appName, flag.Arg(0), err)
			os.Exit(-1)
		}
		defer r.Close()
		reader = r
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, reader, os.Stdout, logger, nil); err != nil {
		logger.Error("stopped", "error", err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(-1)
	}
}

// run decodes the records from the reader, or from the inputs in the config
// if the reader is nil, and writes the results to the writer.  It returns
// at the end of the input or when the context is cancelled.  The metrics
// are registered with reg, or the default registry if that's nil.
func run(ctx context.Context, cfg *config.Config, reader io.Reader, writer io.Writer,
	logger *slog.Logger, reg prometheus.Registerer) error {

	if logger == nil {
		logger = utils.DiscardLogger()
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	interval, err := cfg.SummaryInterval()
	if err != nil {
		return err
	}

	collector, err := metrics.New(reg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	feed := reportfeed.New(nil, circularQueue.NewCircularQueue(cfg.Status.RecentEvents))
	sum := newSummary()

	if len(cfg.Status.Address) > 0 {
		server := status.New(feed, collector, logger)
		go func() {
			if err := server.ListenAndServe(ctx, cfg.Status.Address); err != nil {
				logger.Error("status server", "error", err)
			}
		}()
	}

	if interval > 0 {
		cr := cron.New()
		cr.AddFunc("@every "+interval.String(), func() {
			report := sum.String()
			logger.Info("summary", "satellites", sum.Satellites(), "subframes", sum.Subframes())
			feed.RecordSummary(report)
		})
		cr.Start()
		defer cr.Stop()
	}

	decoderOpts := []decoder.Option{decoder.WithLogLevel(level)}
	if cfg.CheckParity {
		decoderOpts = append(decoderOpts, decoder.WithParityCheck())
	}
	rcv := receiver.New(satellite.Table{}, logger, collector,
		receiver.WithPRNFilter(cfg.WantPRN),
		receiver.WithDecoderOptions(decoderOpts...))

	recordChan := make(chan framelog.Record, channelCapacity)
	eventChan := make(chan receiver.Event, channelCapacity)

	displayDone := make(chan error, 1)
	go func() {
		displayDone <- displayEvents(eventChan, writer, feed, sum)
	}()

	receiverDone := make(chan error, 1)
	go func() {
		receiverDone <- rcv.Run(ctx, recordChan, eventChan)
	}()

	core := appcore.New(cfg, []chan framelog.Record{recordChan}, nil, logger,
		framelog.WithBadCRCHandler(func(err error) {
			collector.AddFrameCRCErrors(1)
		}))

	var inputErr error
	if reader != nil {
		inputErr = core.HandleRecordsUntilEOF(ctx, reader)
	} else {
		inputErr = core.HandleRecords(ctx)
	}

	// Closing the record channel stops the receiver once it has dealt
	// with everything sent to it.
	close(recordChan)
	receiverErr := <-receiverDone
	close(eventChan)
	displayErr := <-displayDone

	logger.Info("finished", "satellites", sum.Satellites(), "subframes", sum.Subframes())

	for _, err := range []error{inputErr, receiverErr, displayErr} {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return nil
}

// displayEvents receives events from the given channel, writes a readable
// display of each to the writer and records them for the status page.
// It returns when the channel is closed or a write fails.
func displayEvents(eventChan <-chan receiver.Event, writer io.Writer,
	feed *reportfeed.ReportFeed, sum *summary) error {

	var writeErr error
	// Keep draining the channel after a failure so the sender isn't
	// blocked.
	for event := range eventChan {
		sum.Add(event)
		feed.AddEvent(event)

		if writeErr != nil {
			continue
		}

		display := event.String() + "\n"
		if event.Ephemeris != nil {
			display += event.Ephemeris.String()
		}
		if event.Almanac != nil {
			display += event.Almanac.String()
		}
		if event.Iono != nil {
			display += event.Iono.String()
		}
		if event.UTCModel != nil {
			display += event.UTCModel.String()
		}
		_, writeErr = writer.Write([]byte(display))
	}
	return writeErr
}

// newLogger creates the event logger.  If the config names a log file, the
// log is written to that file, rotated by size, as well as to the given
// writer.  The returned closer closes the log file.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}

	var closer io.Closer = io.NopCloser(nil)
	if len(cfg.Logs.File) > 0 {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Logs.File,
			MaxSize:    cfg.Logs.MaxSizeMB,
			MaxAge:     cfg.Logs.MaxAgeDays,
			MaxBackups: cfg.Logs.MaxBackups,
			Compress:   cfg.Logs.Compress,
		}
		w = io.MultiWriter(w, rotator)
		closer = rotator
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closer, nil
}

// openFile opens the given file and returns a ReadCloser connected to it.
// If the file name is "-" it returns os.Stdin.
func openFile(fileName string) (io.ReadCloser, error) {
	if fileName == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	return os.Open(fileName)
}
