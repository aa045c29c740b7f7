package filehandler

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dolmen-go/contextio"

	"github.com/goblimey/go-gpsnav/clock"
	"github.com/goblimey/go-gpsnav/nav/framelog"
	"github.com/goblimey/go-gpsnav/nav/pushback"
	"github.com/goblimey/go-gpsnav/nav/utils"
)

// byteChannelCapacity is the size of the buffer between the input and the
// frame log reader.
const byteChannelCapacity = 4096

// Handler reads a stream of bytes containing frame log records, from a
// file, a pipe or a serial device, and issues the records on a channel.
type Handler struct {
	RecordChan         chan framelog.Record // Records are issued on this channel.
	RetryIntervalOnEOF time.Duration        // The time to wait between retries on EOF.
	EOFTimeout         time.Duration        // Give up retrying after this time has elapsed.

	clock      clock.Clock
	logger     *slog.Logger
	readerOpts []framelog.ReaderOption
}

// New creates a handler.  The record channel is closed when Handle
// returns.  If the clock is nil the system clock is used.
func New(recordChan chan framelog.Record, retryIntervalOnEOF, eofTimeout time.Duration,
	clk clock.Clock, logger *slog.Logger, readerOpts ...framelog.ReaderOption) *Handler {

	if clk == nil {
		clk = clock.NewSystemClock()
	}
	if logger == nil {
		logger = utils.DiscardLogger()
	}

	handler := Handler{
		RecordChan:         recordChan,
		RetryIntervalOnEOF: retryIntervalOnEOF,
		EOFTimeout:         eofTimeout,
		clock:              clk,
		logger:             logger,
		readerOpts:         readerOpts,
	}
	return &handler
}

// Handle reads the input and sends the bytes to a frame log reader, which
// issues the records on the record channel.  It returns when the input
// fails, when the EOF timeout expires or when the context is cancelled.
// Before it returns it waits for the reader to finish and closes the
// record channel.
func (handler *Handler) Handle(ctx context.Context, reader io.Reader) error {

	// An EOF on a read is not necessarily fatal.  It can just mean that there
	// is no data to read just now, but there may be some in the future.  If
	// EOFTimeout is zero, we return on the first EOF.  Otherwise we retry
	// reads for that duration and then return.  On any other read error we
	// stop immediately.
	//
	// If the input is a file that's not being written, the caller should
	// use a zero timeout so that Handle processes the file and returns.  If
	// it's a serial line fed by a receiver, the subframes arrive every six
	// seconds from each satellite, so the timeout should be a few times
	// that.  When it expires the connection has probably been lost and the
	// caller should reconnect and call Handle again.

	// timeOfFirstEOF is set when the read has returned EOF one or more times
	// in a row.
	var timeOfFirstEOF *time.Time

	byteChan := make(chan byte, byteChannelCapacity)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(handler.RecordChan)
		r := framelog.NewReader(pushback.New(byteChan), handler.logger, handler.readerOpts...)
		for {
			record, err := r.Next()
			if err != nil {
				handler.logger.Debug("input done", "junkBytes", r.JunkBytes(), "crcErrors", r.CRCErrors())
				return
			}
			select {
			case handler.RecordChan <- record:
			case <-ctx.Done():
				return
			}
		}
	}()

	// On return close the byte channel and wait until the reader has
	// dealt with everything that was sent to it.
	defer func() {
		close(byteChan)
		<-done
	}()

	// A read on a context reader fails once the context is cancelled.
	input := contextio.NewReader(ctx, reader)

	buf := make([]byte, 1024)
	for {
		n, err := input.Read(buf)

		if n > 0 {
			// Reset the timeout mechanism and send the data on.
			timeOfFirstEOF = nil
			for _, b := range buf[:n] {
				select {
				case byteChan <- b:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}

		if err == nil {
			continue
		}

		if err != io.EOF {
			return err
		}

		if handler.EOFTimeout == 0 {
			return err
		}

		if n > 0 || timeOfFirstEOF == nil {
			t := handler.clock.Now()
			timeOfFirstEOF = &t
		} else if handler.clock.Now().Sub(*timeOfFirstEOF) > handler.EOFTimeout {
			// The timeout has elapsed.  Give up.
			return err
		}

		select {
		case <-time.After(handler.RetryIntervalOnEOF):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
