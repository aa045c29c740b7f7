// This is the core of the navdecode application.  It contains functionality
// to read from an input file (typically either a frame log file or a serial
// line connected to a receiver which is sending frame log records) and to
// pass the records on to whatever is consuming them.
package appcore

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/goblimey/go-gpsnav/apps/navdecode/config"
	"github.com/goblimey/go-gpsnav/clock"
	fileHandler "github.com/goblimey/go-gpsnav/file_handler"
	"github.com/goblimey/go-gpsnav/nav/framelog"
	"github.com/goblimey/go-gpsnav/nav/utils"
)

type AppCore struct {
	Conf     *config.Config
	Channels []chan framelog.Record

	clock      clock.Clock
	logger     *slog.Logger
	readerOpts []framelog.ReaderOption
}

// New creates an AppCore.  The clock and logger may be nil.
func New(conf *config.Config, channels []chan framelog.Record, clk clock.Clock,
	logger *slog.Logger, readerOpts ...framelog.ReaderOption) *AppCore {

	if logger == nil {
		logger = utils.DiscardLogger()
	}
	appCore := AppCore{
		Conf:       conf,
		Channels:   channels,
		clock:      clk,
		logger:     logger,
		readerOpts: readerOpts,
	}
	return &appCore
}

// HandleRecords repeatedly searches for and reads the input file(s)
// specified in the config, extracts the frame log records and sends them
// to the channels.  It runs until the context is cancelled.
//
// It's assumed that the input files are the device names of a receiver
// that is sending data on a serial connection and will do so indefinitely.
// If the device is connecting on a serial USB connection and connectivity
// is lost and then restored, the device name this time may be different
// from the one used last time.  The config should specify all the possible
// device file names.
func (appCore *AppCore) HandleRecords(ctx context.Context) error {
	for {
		r, err := appCore.Conf.WaitAndConnectToInput(ctx, appCore.logger)
		if err != nil {
			return err
		}

		err = appCore.HandleRecordsUntilEOF(ctx, r)
		r.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		appCore.logger.Info("input lost - reconnecting", "error", err)

		select {
		case <-time.After(appCore.Conf.SleepTime()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// HandleRecordsUntilEOF takes the given reader, creates a file handler and
// runs it.  Whenever it receives a record from the handler, it sends it to
// each of the AppCore's channels.  It's assumed that something is
// listening to each channel.  It returns when the handler gives up, with
// the handler's error.  A plain end of file gives nil.
func (appCore *AppCore) HandleRecordsUntilEOF(ctx context.Context, reader io.Reader) error {
	recordChan := make(chan framelog.Record)

	fh := fileHandler.New(recordChan, appCore.Conf.WaitTimeOnEOF(), appCore.Conf.TimeoutOnEOF(),
		appCore.clock, appCore.logger, appCore.readerOpts...)

	errChan := make(chan error, 1)
	go func() {
		errChan <- fh.Handle(ctx, reader)
	}()

	// The handler closes the record channel when it's finished.
	for record := range recordChan {
		for _, ch := range appCore.Channels {
			if ch == nil {
				continue
			}
			select {
			case ch <- record:
			case <-ctx.Done():
			}
		}
	}

	err := <-errChan
	if err == io.EOF {
		return nil
	}
	return err
}
